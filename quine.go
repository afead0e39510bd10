package trio

import (
	"context"
	"log"

	"github.com/pkg/errors"
)

// Result represents the outcome of a quine search.
type Result struct {
	// Reported value of register A. With CollectAll this is the smallest
	// accepted value; otherwise it is the first in search order.
	Value uint64

	// Every accepted value in ascending order. Only set with CollectAll.
	Values []uint64

	Stats Stats
}

// FindQuine searches for a value of register A that makes the program in
// in output itself. The program is first executed symbolically from the
// input registers to derive one equation per digit, then the solver
// searches bit assignments satisfying them.
//
// The solver is returned alongside the result so callers can export its
// statistics even when the search fails.
func FindQuine(ctx context.Context, in *Input, config Config) (*Result, *Solver, error) {
	if err := config.Validate(); err != nil {
		return nil, nil, err
	}

	a, b, c := in.Registers()
	eqs, err := Equations(in.Program, a, b, c, config.MaxSteps)
	if err != nil {
		return nil, nil, errors.Wrap(err, "symbolic execution")
	}

	s, err := config.NewSolver(in, eqs)
	if err != nil {
		return nil, nil, err
	}

	if config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, config.Timeout)
		defer cancel()
	}

	var result Result
	if config.CollectAll {
		values, err := s.SolveAll(ctx)
		if err != nil {
			return nil, s, err
		}
		result.Value, _ = Minimum(values)
		result.Values = values
	} else {
		if result.Value, err = s.Solve(ctx); err != nil {
			return nil, s, err
		}
	}
	result.Stats = s.Stats()

	log.Printf("[solve] A=%d branches=%d conflicts=%d verifications=%d (%s)",
		result.Value, result.Stats.Branches, result.Stats.Conflicts, result.Stats.Verifications, result.Stats.SolveTime)
	return &result, s, nil
}
