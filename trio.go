package trio

import (
	"fmt"

	"github.com/pkg/errors"
)

// Machine dimensions.
const (
	WordWidth  = 64 // register width, in bits
	DigitWidth = 3  // width of an instruction or output digit, in bits
	DigitMask  = 1<<DigitWidth - 1
)

// DefaultMaxSteps is the default step ceiling for a concrete run.
const DefaultMaxSteps = 1000

var (
	// ErrTimeout is returned when a run exceeds its step ceiling.
	ErrTimeout = errors.New("trio: step limit exceeded")

	// ErrUnreachable is returned for an opcode or operand outside the
	// defined range. It indicates a malformed instruction stream.
	ErrUnreachable = errors.New("trio: unreachable instruction")

	// ErrConstraintConflict is returned when a bit is assigned a value that
	// disagrees with an earlier assignment.
	ErrConstraintConflict = errors.New("trio: constraint conflict")

	// ErrNoSolution is returned when the search space is exhausted.
	ErrNoSolution = errors.New("trio: no solution found")

	// ErrBranchLimit is returned when the solver exceeds its branch budget.
	ErrBranchLimit = errors.New("trio: branch limit exceeded")
)

// assert panics if condition is false.
func assert(condition bool, format string, args ...interface{}) {
	if !condition {
		panic(fmt.Sprintf("assert: "+format, args...))
	}
}
