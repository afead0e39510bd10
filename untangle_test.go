package trio_test

import (
	"testing"

	"github.com/benbjohnson/trio"
)

func TestUntangle(t *testing.T) {
	a := trio.NewNamedNum(trio.InputRegister, trio.WordWidth)
	lazy := &trio.DivPow2Num{X: a, Shift: a.Mod8()}

	t.Run("XorWithBits", func(t *testing.T) {
		eq := trio.Untangle(2, trio.Mod8(trio.Xor(a.Mod8().Xor(trio.NewLiteralNum(1)), lazy)))
		if got, exp := eq.LHS.String(), "(bits A[2] (not A[1]) (not A[0]))"; got != exp {
			t.Fatalf("LHS=%s, expected %s", got, exp)
		}

		rhs, ok := eq.RHS.(*trio.Mod8Num)
		if !ok {
			t.Fatalf("unexpected RHS: %s", eq.RHS)
		} else if rhs.X != trio.Num(lazy) {
			t.Fatalf("unexpected RHS operand: %s", rhs.X)
		}
	})

	t.Run("BitsOnRight", func(t *testing.T) {
		eq := trio.Untangle(5, &trio.Mod8Num{X: &trio.XorNum{X: lazy, Y: a.Mod8()}})
		if got, exp := eq.LHS.String(), "(bits (not A[2]) A[1] (not A[0]))"; got != exp {
			t.Fatalf("LHS=%s, expected %s", got, exp)
		} else if got, exp := eq.RHS.String(), trio.Mod8(lazy).String(); got != exp {
			t.Fatalf("RHS=%s, expected %s", got, exp)
		}
	})

	t.Run("Nested", func(t *testing.T) {
		inner := trio.Mod8(trio.Xor(a.ShiftRight(3), lazy))
		eq := trio.Untangle(0, trio.Mod8(trio.Xor(a, inner)))

		// Both bit-decomposed halves move left.
		exp := a.Mod8().Xor(a.ShiftRight(3).Mod8())
		if trio.CompareNum(eq.LHS, exp) != 0 {
			t.Fatalf("LHS=%s, expected %s", eq.LHS, exp)
		} else if trio.CompareNum(eq.RHS, trio.Mod8(lazy)) != 0 {
			t.Fatalf("RHS=%s, expected %s", eq.RHS, trio.Mod8(lazy))
		}
	})

	t.Run("Bits", func(t *testing.T) {
		rhs := a.ShiftRight(3).Mod8()
		eq := trio.Untangle(4, rhs)
		if eq.RHS != trio.Num(rhs) {
			t.Fatalf("unexpected RHS: %s", eq.RHS)
		} else if got, exp := eq.String(), "(bits 1 0 0) = (bits A[5] A[4] A[3])"; got != exp {
			t.Fatalf("String()=%s, expected %s", got, exp)
		}
	})

	t.Run("NoBitsSide", func(t *testing.T) {
		rhs := trio.Mod8(&trio.XorNum{X: lazy, Y: lazy})
		if eq := trio.Untangle(1, rhs); eq.RHS != rhs {
			t.Fatalf("unexpected RHS: %s", eq.RHS)
		}
	})

	t.Run("BothBitsSides", func(t *testing.T) {
		rhs := &trio.Mod8Num{X: &trio.XorNum{X: a, Y: a}}
		if eq := trio.Untangle(1, rhs); eq.RHS != trio.Num(rhs) {
			t.Fatalf("unexpected RHS: %s", eq.RHS)
		}
	})
}

func TestUntangleOutputs(t *testing.T) {
	prog := MustParseProgram(t, Canonical)
	eqs := MustEquations(t, prog, 0)
	if got, exp := len(eqs), len(prog); got != exp {
		t.Fatalf("len(eqs)=%d, expected %d", got, exp)
	}

	// Each equation isolates the digit's lazy shift on the right.
	for i, eq := range eqs {
		if !trio.IsBitsNum(eq.LHS) {
			t.Fatalf("eq #%d: unexpected LHS: %s", i, eq.LHS)
		}
		rhs, ok := eq.RHS.(*trio.Mod8Num)
		if !ok {
			t.Fatalf("eq #%d: unexpected RHS: %s", i, eq.RHS)
		} else if _, ok := rhs.X.(*trio.DivPow2Num); !ok {
			t.Fatalf("eq #%d: unexpected RHS operand: %s", i, rhs.X)
		}
	}

	// Equation for the first digit: 2 xor ((A mod 8) xor 1) on the left.
	if got, exp := eqs[0].LHS.String(), "(bits A[2] (not A[1]) (not A[0]))"; got != exp {
		t.Fatalf("LHS=%s, expected %s", got, exp)
	}
}
