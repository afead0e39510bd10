package trio

import (
	"bytes"
	"fmt"

	"github.com/benbjohnson/immutable"
	"github.com/pkg/errors"
)

// Work represents a partial assignment of the input register's bits under
// exploration by the solver.
//
// The assignment map is persistent so extending a Work item returns a new
// item that shares structure with its parent. Branches never observe each
// other's assignments and backtracking is simply discarding an item.
type Work struct {
	id int

	// Number of output digits matched so far.
	Step int

	// Next digit guess to try at the current step (0-7).
	Inner int

	// Absolute bit index to assigned value.
	bits *immutable.SortedMap
}

// NewWork returns an empty assignment at step zero.
func NewWork() *Work {
	return &Work{bits: immutable.NewSortedMap(&uintComparer{})}
}

// ID returns an autoincrementing ID assigned by the solver.
func (w *Work) ID() int { return w.id }

// Clone returns a copy of the item. The assignment map is shared.
func (w *Work) Clone() *Work {
	other := *w
	return &other
}

// Len returns the number of assigned bits.
func (w *Work) Len() int { return w.bits.Len() }

// Get returns the value assigned to bit index.
func (w *Work) Get(index uint) (value, ok bool) {
	v, ok := w.bits.Get(index)
	if !ok {
		return false, false
	}
	return v.(bool), true
}

// BitValue returns the assigned value of an input register bit.
// Implements Binding.
func (w *Work) BitValue(name string, index uint) (value, ok bool) {
	if name != InputRegister {
		return false, false
	}
	return w.Get(index)
}

// Set returns a copy of the item with bit index assigned to value. Returns
// ErrConstraintConflict if the bit already holds the opposite value.
//
// Bits beyond the register width are always zero.
func (w *Work) Set(index uint, value bool) (*Work, error) {
	if index >= WordWidth {
		if value {
			return nil, errors.Wrapf(ErrConstraintConflict, "%s[%d] beyond register width", InputRegister, index)
		}
		return w, nil
	}

	if prev, ok := w.Get(index); ok {
		if prev != value {
			return nil, errors.Wrapf(ErrConstraintConflict, "%s[%d] != %s", InputRegister, index, formatBool(value))
		}
		return w, nil
	}

	other := w.Clone()
	other.bits = w.bits.Set(index, value)
	return other, nil
}

// AddAt returns a copy of the item with the 3 bits of value assigned to bits
// offset through offset+2. The receiver is never modified so a conflict
// leaves it as it was.
func (w *Work) AddAt(offset uint, value uint8) (*Work, error) {
	other := w
	for b := uint(0); b < DigitWidth; b++ {
		var err error
		if other, err = other.Set(offset+b, value&(1<<b) != 0); err != nil {
			return nil, err
		}
	}
	return other, nil
}

// Value returns the 64-bit value described by the assignment.
// Unassigned bits are zero.
func (w *Work) Value() uint64 {
	var v uint64
	itr := w.bits.Iterator()
	for !itr.Done() {
		k, value := itr.Next()
		if value.(bool) {
			v |= 1 << k.(uint)
		}
	}
	return v
}

// String returns the assigned bits in index order.
func (w *Work) String() string {
	var buf bytes.Buffer
	itr := w.bits.Iterator()
	for !itr.Done() {
		k, value := itr.Next()
		if buf.Len() > 0 {
			buf.WriteRune(' ')
		}
		fmt.Fprintf(&buf, "%s[%d]=%s", InputRegister, k.(uint), formatBool(value.(bool)))
	}
	return buf.String()
}

// Dump returns the contents of the item as a string.
func (w *Work) Dump() string {
	var buf bytes.Buffer
	fmt.Fprintln(&buf, "WORK ITEM")
	fmt.Fprintln(&buf, "=========")
	fmt.Fprintf(&buf, "id=%d\n", w.id)
	fmt.Fprintf(&buf, "step=%d\n", w.Step)
	fmt.Fprintf(&buf, "inner=%d\n", w.Inner)
	fmt.Fprintf(&buf, "value=%d\n", w.Value())
	fmt.Fprintln(&buf, "")
	fmt.Fprintln(&buf, "== BITS")
	fmt.Fprintln(&buf, w.String())
	return buf.String()
}

func formatBool(v bool) string {
	if v {
		return "1"
	}
	return "0"
}

// uintComparer compares two unsigned integers. Implements immutable.Comparer.
type uintComparer struct{}

// Compare returns -1 if a is less than b, returns 1 if a is greater than b, and
// returns 0 if a is equal to b. Panic if a or b is not a uint.
func (c *uintComparer) Compare(a, b interface{}) int {
	if i, j := a.(uint), b.(uint); i < j {
		return -1
	} else if i > j {
		return 1
	}
	return 0
}
