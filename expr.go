package trio

import (
	"fmt"
	"math/bits"
	"strings"
)

// Bit represents a symbolic expression for a single bit.
type Bit interface {
	bit()
	String() string
}

func (*RegisterBit) bit() {}
func (*LiteralBit) bit()  {}
func (*NotBit) bit()      {}
func (*XorBit) bit()      {}

// RegisterBit represents a bit of a named register's initial value.
type RegisterBit struct {
	Name  string
	Index uint // 0 is the least significant bit
}

// NewRegisterBit returns a new instance of RegisterBit.
func NewRegisterBit(name string, index uint) *RegisterBit {
	return &RegisterBit{Name: name, Index: index}
}

// String returns the string representation of the bit.
func (b *RegisterBit) String() string {
	return fmt.Sprintf("%s[%d]", b.Name, b.Index)
}

// LiteralBit represents a constant bit.
type LiteralBit struct {
	Value bool
}

// Shared literal bits.
var (
	True  = &LiteralBit{Value: true}
	False = &LiteralBit{Value: false}
)

// NewLiteralBit returns the shared literal for v.
func NewLiteralBit(v bool) *LiteralBit {
	if v {
		return True
	}
	return False
}

// String returns the string representation of the bit.
func (b *LiteralBit) String() string {
	if b.Value {
		return "1"
	}
	return "0"
}

// NotBit represents the negation of a bit.
type NotBit struct {
	X Bit
}

// NewNotBit returns the negation of x. Literals are flipped and double
// negations are removed.
func NewNotBit(x Bit) Bit {
	switch x := x.(type) {
	case *LiteralBit:
		return NewLiteralBit(!x.Value)
	case *NotBit:
		return x.X
	}
	return &NotBit{X: x}
}

// String returns the string representation of the bit.
func (b *NotBit) String() string {
	return fmt.Sprintf("(not %s)", b.X)
}

// XorBit represents the exclusive-or of two bits.
type XorBit struct {
	X Bit
	Y Bit
}

// NewXorBit returns the exclusive-or of x & y. A literal operand collapses the
// expression to the other operand or its negation.
func NewXorBit(x, y Bit) Bit {
	if y, ok := y.(*LiteralBit); ok {
		if y.Value {
			return NewNotBit(x)
		}
		return x
	}
	if x, ok := x.(*LiteralBit); ok {
		if x.Value {
			return NewNotBit(y)
		}
		return y
	}
	return &XorBit{X: x, Y: y}
}

// String returns the string representation of the bit.
func (b *XorBit) String() string {
	return fmt.Sprintf("(xor %s %s)", b.X, b.Y)
}

// TraceBit follows x back to a single register bit through any number of
// negations. Returns the register bit and whether it appears negated.
// Returns nil if x is not of that shape.
func TraceBit(x Bit) (rb *RegisterBit, negated bool) {
	for {
		switch y := x.(type) {
		case *RegisterBit:
			return y, negated
		case *NotBit:
			x, negated = y.X, !negated
		default:
			return nil, false
		}
	}
}

// Num represents a symbolic expression for a bit-vector.
type Num interface {
	num()
	String() string
}

func (*BitsNum) num()    {}
func (*XorNum) num()     {}
func (*Mod8Num) num()    {}
func (*DivPow2Num) num() {}

// BitsNum represents a fully bit-decomposed vector.
type BitsNum struct {
	Bits []Bit // most significant bit first
}

// NewBitsNum returns a new vector over a copy of a.
func NewBitsNum(a []Bit) *BitsNum {
	other := make([]Bit, len(a))
	copy(other, a)
	return &BitsNum{Bits: other}
}

// NewNamedNum returns a vector whose bits are the bits of a named register.
func NewNamedNum(name string, width uint) *BitsNum {
	a := make([]Bit, width)
	for i := range a {
		a[i] = NewRegisterBit(name, width-uint(i)-1)
	}
	return &BitsNum{Bits: a}
}

// NewLiteralNum returns the minimal-width vector for v. Zero is one bit wide.
func NewLiteralNum(v uint64) *BitsNum {
	width := bits.Len64(v)
	if width == 0 {
		width = 1
	}
	a := make([]Bit, width)
	for i := range a {
		a[i] = NewLiteralBit(v&(1<<uint(width-i-1)) != 0)
	}
	return &BitsNum{Bits: a}
}

// Width returns the number of bits in the vector.
func (n *BitsNum) Width() uint { return uint(len(n.Bits)) }

// At returns the bit at index i, counted from the least significant bit.
// Bits beyond the width are false.
func (n *BitsNum) At(i uint) Bit {
	if i >= n.Width() {
		return False
	}
	return n.Bits[len(n.Bits)-int(i)-1]
}

// Pad returns the vector left-padded with false bits to width.
// Returns n if it is already at least width bits wide.
func (n *BitsNum) Pad(width uint) *BitsNum {
	if n.Width() >= width {
		return n
	}
	a := make([]Bit, 0, width)
	for i := n.Width(); i < width; i++ {
		a = append(a, False)
	}
	return &BitsNum{Bits: append(a, n.Bits...)}
}

// Low returns the low width bits of the vector, padding with false bits if
// the vector is narrower.
func (n *BitsNum) Low(width uint) *BitsNum {
	padded := n.Pad(width)
	return &BitsNum{Bits: padded.Bits[padded.Width()-width : padded.Width() : padded.Width()]}
}

// Xor returns the element-wise exclusive-or of n & other after padding both
// to the same width.
func (n *BitsNum) Xor(other *BitsNum) *BitsNum {
	width := n.Width()
	if other.Width() > width {
		width = other.Width()
	}
	x, y := n.Pad(width), other.Pad(width)

	a := make([]Bit, width)
	for i := range a {
		a[i] = NewXorBit(x.Bits[i], y.Bits[i])
	}
	return &BitsNum{Bits: a}
}

// Mod8 returns the low 3 bits of the vector.
func (n *BitsNum) Mod8() *BitsNum {
	return n.Low(DigitWidth)
}

// ShiftRight returns the vector with the low k bits dropped.
func (n *BitsNum) ShiftRight(k uint64) *BitsNum {
	if k >= uint64(n.Width()) {
		return &BitsNum{}
	}
	w := n.Width() - uint(k)
	return &BitsNum{Bits: n.Bits[:w:w]}
}

// String returns the string representation of the vector.
func (n *BitsNum) String() string {
	a := make([]string, len(n.Bits))
	for i, b := range n.Bits {
		a[i] = b.String()
	}
	return fmt.Sprintf("(bits %s)", strings.Join(a, " "))
}

// XorNum represents an unreduced exclusive-or of two vectors.
type XorNum struct {
	X Num
	Y Num
}

// String returns the string representation of the expression.
func (n *XorNum) String() string {
	return fmt.Sprintf("(xor %s %s)", n.X, n.Y)
}

// Mod8Num represents an unreduced truncation to the low 3 bits.
type Mod8Num struct {
	X Num
}

// String returns the string representation of the expression.
func (n *Mod8Num) String() string {
	return fmt.Sprintf("(mod8 %s)", n.X)
}

// DivPow2Num represents an unreduced division by a power of two.
type DivPow2Num struct {
	X     Num
	Shift Num
}

// String returns the string representation of the expression.
func (n *DivPow2Num) String() string {
	return fmt.Sprintf("(divpow2 %s %s)", n.X, n.Shift)
}

// Xor returns the exclusive-or of x & y. Reduced to bits if both sides are
// bit-decomposed.
func Xor(x, y Num) Num {
	if x, ok := x.(*BitsNum); ok {
		if y, ok := y.(*BitsNum); ok {
			return x.Xor(y)
		}
	}
	return &XorNum{X: x, Y: y}
}

// Mod8 returns x truncated to its low 3 bits. Reduced to bits if x is
// bit-decomposed. Truncating twice is the same as truncating once.
func Mod8(x Num) Num {
	switch x := x.(type) {
	case *BitsNum:
		return x.Mod8()
	case *Mod8Num:
		return x
	}
	return &Mod8Num{X: x}
}

// DivPow2 returns x divided by 2^shift. Reduced to bits if x is
// bit-decomposed and shift is a known constant.
func DivPow2(x, shift Num) Num {
	if x, ok := x.(*BitsNum); ok {
		if k, ok := Constant(shift); ok {
			return x.ShiftRight(k)
		}
	}
	return &DivPow2Num{X: x, Shift: shift}
}

// Constant returns the value of x if it is a vector of literal bits.
func Constant(x Num) (uint64, bool) {
	n, ok := x.(*BitsNum)
	if !ok {
		return 0, false
	}

	var v uint64
	for _, b := range n.Bits {
		lit, ok := b.(*LiteralBit)
		if !ok {
			return 0, false
		}
		v <<= 1
		if lit.Value {
			v |= 1
		}
	}
	return v, true
}

// IsBitsNum returns true if x is bit-decomposed.
func IsBitsNum(x Num) bool {
	_, ok := x.(*BitsNum)
	return ok
}

// CompareBit returns an integer comparing two bit expressions structurally.
// The result will be 0 if a==b, -1 if a < b, and +1 if a > b.
func CompareBit(a, b Bit) int {
	if ak, bk := bitKind(a), bitKind(b); ak < bk {
		return -1
	} else if ak > bk {
		return 1
	}

	switch a := a.(type) {
	case *LiteralBit:
		return compareBool(a.Value, b.(*LiteralBit).Value)
	case *RegisterBit:
		b := b.(*RegisterBit)
		if cmp := strings.Compare(a.Name, b.Name); cmp != 0 {
			return cmp
		}
		return compareUint(a.Index, b.Index)
	case *NotBit:
		return CompareBit(a.X, b.(*NotBit).X)
	case *XorBit:
		b := b.(*XorBit)
		if cmp := CompareBit(a.X, b.X); cmp != 0 {
			return cmp
		}
		return CompareBit(a.Y, b.Y)
	default:
		panic("unreachable")
	}
}

// CompareNum returns an integer comparing two vector expressions structurally.
func CompareNum(a, b Num) int {
	if ak, bk := numKind(a), numKind(b); ak < bk {
		return -1
	} else if ak > bk {
		return 1
	}

	switch a := a.(type) {
	case *BitsNum:
		b := b.(*BitsNum)
		if cmp := compareUint(a.Width(), b.Width()); cmp != 0 {
			return cmp
		}
		for i := range a.Bits {
			if cmp := CompareBit(a.Bits[i], b.Bits[i]); cmp != 0 {
				return cmp
			}
		}
		return 0
	case *XorNum:
		b := b.(*XorNum)
		if cmp := CompareNum(a.X, b.X); cmp != 0 {
			return cmp
		}
		return CompareNum(a.Y, b.Y)
	case *Mod8Num:
		return CompareNum(a.X, b.(*Mod8Num).X)
	case *DivPow2Num:
		b := b.(*DivPow2Num)
		if cmp := CompareNum(a.X, b.X); cmp != 0 {
			return cmp
		}
		return CompareNum(a.Shift, b.Shift)
	default:
		panic("unreachable")
	}
}

func compareBool(a, b bool) int {
	if a == b {
		return 0
	} else if !a {
		return -1
	}
	return 1
}

func compareUint(a, b uint) int {
	if a < b {
		return -1
	} else if a > b {
		return 1
	}
	return 0
}

// bitKind returns a numeric value for the type of bit expression.
// Only used internally for equality checks and sorting.
func bitKind(x Bit) int {
	switch x.(type) {
	case *LiteralBit:
		return 1
	case *RegisterBit:
		return 2
	case *NotBit:
		return 3
	case *XorBit:
		return 4
	default:
		panic("unreachable")
	}
}

// numKind returns a numeric value for the type of vector expression.
func numKind(x Num) int {
	switch x.(type) {
	case *BitsNum:
		return 1
	case *XorNum:
		return 2
	case *Mod8Num:
		return 3
	case *DivPow2Num:
		return 4
	default:
		panic("unreachable")
	}
}

// Binding supplies known values for register bits.
type Binding interface {
	// Returns the value of bit index of the named register, if known.
	BitValue(name string, index uint) (value, ok bool)
}

// RegisterBinding binds every bit of a single register to a concrete value.
type RegisterBinding struct {
	Name  string
	Value uint64
}

// BitValue returns the bit of the bound value. Bits of other registers are unknown.
func (b RegisterBinding) BitValue(name string, index uint) (value, ok bool) {
	if name != b.Name {
		return false, false
	} else if index >= WordWidth {
		return false, true
	}
	return b.Value&(1<<index) != 0, true
}

// SubstituteBit returns x with every bound register bit replaced by a literal.
func SubstituteBit(x Bit, binding Binding) Bit {
	switch x := x.(type) {
	case *LiteralBit:
		return x
	case *RegisterBit:
		if v, ok := binding.BitValue(x.Name, x.Index); ok {
			return NewLiteralBit(v)
		}
		return x
	case *NotBit:
		if y := SubstituteBit(x.X, binding); y != x.X {
			return NewNotBit(y)
		}
		return x
	case *XorBit:
		y, z := SubstituteBit(x.X, binding), SubstituteBit(x.Y, binding)
		if y != x.X || z != x.Y {
			return NewXorBit(y, z)
		}
		return x
	default:
		panic("unreachable")
	}
}

// Substitute returns x with every bound register bit replaced by a literal.
// The tree is rebuilt through the reducing constructors so lazy nodes
// collapse once their operands become known.
func Substitute(x Num, binding Binding) Num {
	switch x := x.(type) {
	case *BitsNum:
		a := make([]Bit, len(x.Bits))
		for i, b := range x.Bits {
			a[i] = SubstituteBit(b, binding)
		}
		return &BitsNum{Bits: a}
	case *XorNum:
		return Xor(Substitute(x.X, binding), Substitute(x.Y, binding))
	case *Mod8Num:
		return Mod8(Substitute(x.X, binding))
	case *DivPow2Num:
		return DivPow2(Substitute(x.X, binding), Substitute(x.Shift, binding))
	default:
		panic("unreachable")
	}
}

// Eval returns the concrete value of x under binding. Returns false if x
// still depends on unbound bits.
func Eval(x Num, binding Binding) (uint64, bool) {
	return Constant(Substitute(x, binding))
}
