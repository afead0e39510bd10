package trio

import (
	"fmt"
	"log"
)

// Equation represents the requirement LHS = RHS between two vectors.
type Equation struct {
	LHS Num
	RHS Num
}

// String returns the string representation of the equation.
func (eq Equation) String() string {
	return fmt.Sprintf("%s = %s", eq.LHS, eq.RHS)
}

// Untangle returns the equation target = rhs with references to the unknown
// input isolated on the right hand side.
//
// While the right hand side has the shape mod8(xor(X, Y)) with exactly one
// of X & Y bit-decomposed, that half is moved to the left:
//
//	lhs = mod8(xor(bits, y))  =>  xor(lhs, mod8(bits)) = mod8(y)
//
// Each rewrite removes one level of nesting so the loop terminates. Shapes
// that do not match are left as they are.
func Untangle(target uint8, rhs Num) Equation {
	eq := Equation{LHS: NewLiteralNum(uint64(target)), RHS: rhs}
	for {
		other, ok := untangleStep(eq)
		if !ok {
			return eq
		}
		eq = other
	}
}

// untangleStep applies a single rewrite to eq, if possible.
func untangleStep(eq Equation) (Equation, bool) {
	mod8, ok := eq.RHS.(*Mod8Num)
	if !ok {
		return eq, false
	}
	xor, ok := mod8.X.(*XorNum)
	if !ok {
		return eq, false
	}
	known, other, ok := splitBits(xor.X, xor.Y)
	if !ok {
		return eq, false
	}

	return Equation{
		LHS: Xor(eq.LHS, known.Mod8()),
		RHS: Mod8(other),
	}, true
}

// splitBits returns the bit-decomposed operand and the other operand.
// Returns false unless exactly one of x & y is bit-decomposed.
func splitBits(x, y Num) (*BitsNum, Num, bool) {
	xb, xok := x.(*BitsNum)
	yb, yok := y.(*BitsNum)
	switch {
	case xok && !yok:
		return xb, y, true
	case yok && !xok:
		return yb, x, true
	default:
		return nil, nil, false
	}
}

// UntangleOutputs pairs every program digit with its symbolic output and
// untangles each equation. Returns one equation per program digit.
func UntangleOutputs(prog Program, outputs []Num) []Equation {
	assert(len(outputs) >= len(prog), "untangle: %d outputs for %d digits", len(outputs), len(prog))

	eqs := make([]Equation, len(prog))
	for i, digit := range prog {
		eqs[i] = Untangle(digit, outputs[i])
		log.Printf("[untangle] #%d: %s", i, eqs[i])
	}
	return eqs
}
