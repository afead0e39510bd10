package trio_test

import (
	"context"
	"math/rand"
	"testing"

	"github.com/benbjohnson/trio"
	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
)

// NewSolver returns a solver for the fixture's program.
func NewSolver(tb testing.TB, fx *Fixture) *trio.Solver {
	tb.Helper()
	in := fx.Input
	return trio.NewSolver(in.Program, MustEquations(tb, in.Program, in.A), in.B, in.C)
}

func TestSolver_Solve(t *testing.T) {
	t.Run("Canonical", func(t *testing.T) {
		fx := MustReadFixture(t, "canonical")
		s := NewSolver(t, fx)

		value, err := s.Solve(context.Background())
		if err != nil {
			t.Fatal(err)
		}

		// Whatever value is found must reproduce the program.
		output, err := trio.Run(fx.Input.Program, value, 0, 0, trio.DefaultMaxSteps)
		if err != nil {
			t.Fatal(err)
		} else if got, exp := trio.JoinDigits(output), Canonical; got != exp {
			t.Fatalf("A=%d: output=%s, expected %s", value, got, exp)
		}

		stats := s.Stats()
		if got, exp := stats.Accepted, 1; got != exp {
			t.Fatalf("Accepted=%d, expected %d", got, exp)
		} else if got, exp := stats.MaxDepth, len(fx.Input.Program); got != exp {
			t.Fatalf("MaxDepth=%d, expected %d", got, exp)
		}
	})

	t.Run("FirstInStackOrder", func(t *testing.T) {
		fx := MustReadFixture(t, "example_quine")
		s := NewSolver(t, fx)
		if value, err := s.Solve(context.Background()); err != nil {
			t.Fatal(err)
		} else if got, exp := value, uint64(117440); got != exp {
			t.Fatalf("Solve()=%d, expected %d", got, exp)
		}
	})

	t.Run("ErrNoSolution", func(t *testing.T) {
		// Output is always 3 so it can never print a 5.
		prog := MustParseProgram(t, "5,3")
		s := trio.NewSolver(prog, MustEquations(t, prog, 0), 0, 0)
		if _, err := s.Solve(context.Background()); err != trio.ErrNoSolution {
			t.Fatalf("unexpected error: %v", err)
		}

		// Every guess for the first digit conflicts.
		if got, exp := s.Stats().Conflicts, 8; got != exp {
			t.Fatalf("Conflicts=%d, expected %d", got, exp)
		}
	})

	t.Run("ErrBranchLimit", func(t *testing.T) {
		s := NewSolver(t, MustReadFixture(t, "canonical"))
		s.MaxBranches = 5
		if _, err := s.Solve(context.Background()); !errors.Is(err, trio.ErrBranchLimit) {
			t.Fatalf("unexpected error: %v", err)
		} else if got, exp := s.Stats().Branches, 5; got != exp {
			t.Fatalf("Branches=%d, expected %d", got, exp)
		}
	})

	t.Run("ErrTimeout", func(t *testing.T) {
		s := NewSolver(t, MustReadFixture(t, "canonical"))
		s.MaxSteps = 10
		if _, err := s.Solve(context.Background()); !errors.Is(err, trio.ErrTimeout) {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("Canceled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		s := NewSolver(t, MustReadFixture(t, "canonical"))
		if _, err := s.Solve(ctx); err != context.Canceled {
			t.Fatalf("unexpected error: %v", err)
		}
	})
}

func TestSolver_SolveAll(t *testing.T) {
	for _, name := range []string{"canonical", "example_quine"} {
		t.Run(name, func(t *testing.T) {
			fx := MustReadFixture(t, name)
			s := NewSolver(t, fx)

			values, err := s.SolveAll(context.Background())
			if err != nil {
				t.Fatal(err)
			} else if diff := cmp.Diff(fx.Solutions, values); diff != "" {
				t.Fatal(diff)
			}

			if m, ok := trio.Minimum(values); !ok {
				t.Fatal("expected minimum")
			} else if got, exp := m, fx.Solutions[0]; got != exp {
				t.Fatalf("Minimum()=%d, expected %d", got, exp)
			}

			stats := s.Stats()
			if got, exp := stats.Accepted, len(fx.Solutions); got != exp {
				t.Fatalf("Accepted=%d, expected %d", got, exp)
			} else if got, exp := stats.Verifications, stats.Accepted+stats.Rejected; got != exp {
				t.Fatalf("Verifications=%d, expected %d", got, exp)
			}
		})
	}

	t.Run("AfterSolve", func(t *testing.T) {
		fx := MustReadFixture(t, "canonical")
		s := NewSolver(t, fx)

		first, err := s.Solve(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		rest, err := s.SolveAll(context.Background())
		if err != nil {
			t.Fatal(err)
		}

		// Values are never reported twice.
		if got, exp := len(rest), len(fx.Solutions)-1; got != exp {
			t.Fatalf("len(rest)=%d, expected %d", got, exp)
		}
		for _, v := range rest {
			if v == first {
				t.Fatalf("duplicate value: %d", v)
			}
		}
	})

	t.Run("Searchers", func(t *testing.T) {
		fx := MustReadFixture(t, "canonical")
		for _, searcher := range []trio.Searcher{
			trio.NewBFSSearcher(),
			trio.NewRandomSearcher(rand.New(rand.NewSource(0))),
		} {
			s := NewSolver(t, fx)
			s.Searcher = searcher

			values, err := s.SolveAll(context.Background())
			if err != nil {
				t.Fatal(err)
			} else if diff := cmp.Diff(fx.Solutions, values); diff != "" {
				t.Fatalf("%T: %s", searcher, diff)
			}
		}
	})
}

func TestConstrain(t *testing.T) {
	prog := MustParseProgram(t, Canonical)
	eqs := MustEquations(t, prog, 0)

	// Guessing a digit for step i pins the 3 bits the output digit is read
	// from, at offset 3i + (g xor 2), to out xor g xor 1.
	for step := 0; step < 4; step++ {
		for g := uint8(0); g < 8; g++ {
			w, err := trio.NewWork().AddAt(uint(step*3), g)
			if err != nil {
				t.Fatal(err)
			}

			w, err = trio.Constrain(w, eqs[step])
			offset := uint(step*3) + uint(g^2)
			if offset < uint(step*3)+3 {
				// The groups overlap so some guesses conflict. Accepted
				// guesses must agree on the overlapping bits.
				if err != nil {
					if !errors.Is(err, trio.ErrConstraintConflict) {
						t.Fatalf("step=%d g=%d: unexpected error: %v", step, g, err)
					}
					continue
				}
			} else if err != nil {
				t.Fatalf("step=%d g=%d: unexpected error: %v", step, g, err)
			}

			exp := prog[step] ^ g ^ 1
			for b := uint(0); b < 3; b++ {
				if v, ok := w.Get(offset + b); !ok {
					t.Fatalf("step=%d g=%d: bit %d unassigned", step, g, offset+b)
				} else if v != (exp&(1<<b) != 0) {
					t.Fatalf("step=%d g=%d: bit %d=%v", step, g, offset+b, v)
				}
			}
		}
	}
}

func TestMinimum(t *testing.T) {
	if _, ok := trio.Minimum(nil); ok {
		t.Fatal("expected no minimum")
	} else if m, _ := trio.Minimum([]uint64{9, 3, 7}); m != 3 {
		t.Fatalf("Minimum()=%d, expected 3", m)
	}
}

func TestNewSearcher(t *testing.T) {
	for _, name := range []string{"", "dfs", "bfs", "random"} {
		if _, err := trio.NewSearcher(name, 0); err != nil {
			t.Fatalf("%q: %s", name, err)
		}
	}
	if _, err := trio.NewSearcher("astar", 0); err == nil {
		t.Fatal("expected error")
	}
}

func TestDFSSearcher(t *testing.T) {
	s := trio.NewDFSSearcher()
	a, b := trio.NewWork(), trio.NewWork()
	s.AddWork(a)
	s.AddWork(b)
	if got := s.SelectWork(); got != b {
		t.Fatal("expected last item first")
	} else if got := s.SelectWork(); got != a {
		t.Fatal("expected first item second")
	} else if got := s.SelectWork(); got != nil {
		t.Fatal("expected nil")
	}
}

func TestBFSSearcher(t *testing.T) {
	s := trio.NewBFSSearcher()
	a, b := trio.NewWork(), trio.NewWork()
	s.AddWork(a)
	s.AddWork(b)
	if got, exp := s.Len(), 2; got != exp {
		t.Fatalf("Len()=%d, expected %d", got, exp)
	} else if got := s.SelectWork(); got != a {
		t.Fatal("expected first item first")
	} else if got := s.SelectWork(); got != b {
		t.Fatal("expected last item second")
	} else if got := s.SelectWork(); got != nil {
		t.Fatal("expected nil")
	}
}

func TestRandomSearcher(t *testing.T) {
	s := trio.NewRandomSearcher(rand.New(rand.NewSource(1)))
	items := []*trio.Work{trio.NewWork(), trio.NewWork(), trio.NewWork(), trio.NewWork()}
	for _, w := range items {
		s.AddWork(w)
	}

	seen := make(map[*trio.Work]bool)
	for i := len(items); i > 0; i-- {
		w := s.SelectWork()
		if w == nil {
			t.Fatalf("unexpected nil with %d remaining", i)
		} else if seen[w] {
			t.Fatal("item selected twice")
		}
		seen[w] = true

		if got, exp := s.Len(), i-1; got != exp {
			t.Fatalf("Len()=%d, expected %d", got, exp)
		}
	}

	if got, exp := len(seen), len(items); got != exp {
		t.Fatalf("selected=%d, expected %d", got, exp)
	} else if got := s.SelectWork(); got != nil {
		t.Fatal("expected nil")
	}
}
