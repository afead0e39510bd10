package trio

import (
	"context"
	"log"
	"math/rand"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// WorkStatus represents where a Work item is in the search.
type WorkStatus string

const (
	WorkStatusExploring = WorkStatus("exploring") // step < program length
	WorkStatusVerifying = WorkStatus("verifying") // step == program length
	WorkStatusAccepted  = WorkStatus("accepted")  // verified by a concrete run
	WorkStatusRejected  = WorkStatus("rejected")  // concrete output differs
)

// Equations runs prog symbolically from the given initial registers and
// returns one untangled equation per program digit.
func Equations(prog Program, a, b, c uint64, maxSteps int) ([]Equation, error) {
	e := NewExecutor(prog, a, b, c)
	e.MaxSteps = maxSteps
	outputs, err := e.Execute(len(prog))
	if err != nil {
		return nil, err
	}
	return UntangleOutputs(prog, outputs), nil
}

// Solver searches for a value of register A that makes the program output
// its own instruction stream.
//
// Each step of the search guesses the 3 bits of A consumed by one loop
// iteration and then applies that step's untangled equation, which pins down
// the bits the output digit depends on. Conflicting assignments abandon the
// branch. Complete assignments are verified with a concrete run.
type Solver struct {
	prog Program
	eqs  []Equation
	b, c uint64

	root      *Work
	started   bool
	workIDSeq int
	stats     Stats

	// Step ceiling for each verification run.
	MaxSteps int

	// Maximum number of Work items created. Zero is unlimited.
	MaxBranches int

	// Search strategy for the solver. Defaults to depth-first.
	Searcher Searcher
}

// NewSolver returns a new solver for prog using one equation per program
// digit. Registers B & C are loaded with b & c for verification runs.
func NewSolver(prog Program, eqs []Equation, b, c uint64) *Solver {
	assert(len(eqs) == len(prog), "solver: %d equations for %d digits", len(eqs), len(prog))

	s := &Solver{
		prog:     prog,
		eqs:      eqs,
		b:        b,
		c:        c,
		MaxSteps: DefaultMaxSteps,
		Searcher: NewDFSSearcher(),
	}
	s.root = NewWork()
	s.root.id = s.nextWorkID()
	return s
}

// Root returns the initial Work item.
func (s *Solver) Root() *Work { return s.root }

// Stats returns statistics for the search so far.
func (s *Solver) Stats() Stats { return s.stats }

// nextWorkID returns the next autoincrementing Work ID.
func (s *Solver) nextWorkID() int {
	s.workIDSeq++
	return s.workIDSeq
}

// Solve returns the first verified value in search order. This is not
// necessarily the smallest. Returns ErrNoSolution if the search is exhausted.
func (s *Solver) Solve(ctx context.Context) (uint64, error) {
	return s.Next(ctx)
}

// SolveAll continues the search until exhaustion and returns every verified
// value not yet returned, in ascending order. Returns ErrNoSolution if none were found.
func (s *Solver) SolveAll(ctx context.Context) ([]uint64, error) {
	var values []uint64
	for {
		v, err := s.Next(ctx)
		if errors.Is(err, ErrNoSolution) {
			break
		} else if err != nil {
			return values, err
		}
		values = append(values, v)
	}

	if len(values) == 0 {
		return nil, ErrNoSolution
	}
	sort.Slice(values, func(i, j int) bool { return values[i] < values[j] })
	return values, nil
}

// Next continues the search until the next verified value.
// Returns ErrNoSolution once the searcher has no more Work items.
func (s *Solver) Next(ctx context.Context) (uint64, error) {
	t := time.Now()
	defer func() { s.stats.SolveTime += time.Since(t) }()

	if !s.started {
		s.started = true
		s.Searcher.AddWork(s.root)
	}

	for {
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		default:
		}

		w := s.Searcher.SelectWork()
		if w == nil {
			return 0, ErrNoSolution
		}

		// Complete assignments are verified against a concrete run.
		if w.Status(len(s.prog)) == WorkStatusVerifying {
			value, ok, err := s.verify(w)
			if err != nil {
				return 0, err
			} else if ok {
				return value, nil
			}
			continue
		}

		child, err := s.expand(w)
		if err != nil {
			return 0, err
		} else if child == nil {
			log.Printf("[solve] %s#%d: exhausted at step %d", indent(w.Step), w.id, w.Step)
			continue
		}

		// Revisit the parent for its remaining guesses after the child.
		if w.Inner < 1<<DigitWidth {
			s.Searcher.AddWork(w)
		}
		s.Searcher.AddWork(child)
	}
}

// expand tries the remaining digit guesses of w in order and returns the
// first Work item that extends it without conflict. Returns nil if all
// guesses conflict.
func (s *Solver) expand(w *Work) (*Work, error) {
	for w.Inner < 1<<DigitWidth {
		guess := uint8(w.Inner)
		w.Inner++

		child, err := s.apply(w, guess)
		if errors.Is(err, ErrConstraintConflict) {
			s.stats.Conflicts++
			log.Printf("[solve] %s#%d: [%d][X] guess=%d: %s", indent(w.Step), w.id, w.Step, guess, err)
			continue
		} else if err != nil {
			return nil, err
		}

		if s.MaxBranches > 0 && s.stats.Branches >= s.MaxBranches {
			return nil, errors.Wrapf(ErrBranchLimit, "after %d branches", s.stats.Branches)
		}
		s.stats.Branches++
		if child.Step > s.stats.MaxDepth {
			s.stats.MaxDepth = child.Step
		}

		log.Printf("[solve] %s#%d: [%d][Y] guess=%d -> #%d %s", indent(w.Step), w.id, w.Step, guess, child.id, child)
		return child, nil
	}
	return nil, nil
}

// apply returns a child of w with guess assigned to the bits of the current
// step and the step's equation applied.
func (s *Solver) apply(w *Work, guess uint8) (*Work, error) {
	next, err := w.AddAt(uint(w.Step*DigitWidth), guess)
	if err != nil {
		return nil, err
	}
	if next, err = Constrain(next, s.eqs[w.Step]); err != nil {
		return nil, err
	}

	child := next.Clone()
	child.id = s.nextWorkID()
	child.Step, child.Inner = w.Step+1, 0
	return child, nil
}

// verify runs the program with the value assembled from w and reports
// whether the output reproduces the program.
func (s *Solver) verify(w *Work) (uint64, bool, error) {
	value := w.Value()
	s.stats.Verifications++

	output, err := Run(s.prog, value, s.b, s.c, s.MaxSteps)
	if err != nil {
		return 0, false, errors.Wrapf(err, "verify A=%d", value)
	}

	if !s.prog.Equal(output) {
		s.stats.Rejected++
		log.Printf("[verify] #%d: %s A=%d output=%s", w.id, WorkStatusRejected, value, JoinDigits(output))
		return value, false, nil
	}
	s.stats.Accepted++
	log.Printf("[verify] #%d: %s A=%d", w.id, WorkStatusAccepted, value)
	return value, true, nil
}

// Status returns the search status of w for a program of n digits.
func (w *Work) Status(n int) WorkStatus {
	if w.Step < n {
		return WorkStatusExploring
	}
	return WorkStatusVerifying
}

// Constrain applies eq to the assignment in w. Both sides are reduced with
// the current assignment. Wherever one side of a bit position is a literal
// and the other traces back to a bit of the input register, that bit is
// assigned. Positions that cannot be traced are left unconstrained. This is
// repeated until no new bits are assigned.
func Constrain(w *Work, eq Equation) (*Work, error) {
	for {
		n := w.Len()

		var err error
		if w, err = constrainOnce(w, eq); err != nil {
			return nil, err
		} else if w.Len() == n {
			return w, nil
		}
	}
}

func constrainOnce(w *Work, eq Equation) (*Work, error) {
	lhs, ok := Substitute(eq.LHS, w).(*BitsNum)
	if !ok {
		return w, nil
	}
	rhs, ok := Substitute(eq.RHS, w).(*BitsNum)
	if !ok {
		return w, nil
	}

	width := lhs.Width()
	if rhs.Width() > width {
		width = rhs.Width()
	}

	for i := uint(0); i < width; i++ {
		var err error
		if w, err = constrainBit(w, lhs.At(i), rhs.At(i)); err != nil {
			return nil, err
		}
	}
	return w, nil
}

// constrainBit requires x & y to be equal.
func constrainBit(w *Work, x, y Bit) (*Work, error) {
	xl, xok := x.(*LiteralBit)
	yl, yok := y.(*LiteralBit)

	switch {
	case xok && yok:
		if xl.Value != yl.Value {
			return nil, errors.Wrapf(ErrConstraintConflict, "%s != %s", x, y)
		}
		return w, nil
	case xok:
		return assignTraced(w, y, xl.Value)
	case yok:
		return assignTraced(w, x, yl.Value)
	default:
		return w, nil
	}
}

// assignTraced assigns the input bit behind x so that x evaluates to value.
func assignTraced(w *Work, x Bit, value bool) (*Work, error) {
	rb, negated := TraceBit(x)
	if rb == nil || rb.Name != InputRegister {
		return w, nil
	}
	return w.Set(rb.Index, value != negated)
}

// Minimum returns the smallest of values. Returns false if values is empty.
func Minimum(values []uint64) (uint64, bool) {
	if len(values) == 0 {
		return 0, false
	}
	m := values[0]
	for _, v := range values[1:] {
		if v < m {
			m = v
		}
	}
	return m, true
}

func indent(depth int) string {
	return strings.Repeat("  ", depth)
}

// Stats represents statistics for a solver's search.
type Stats struct {
	Branches      int // Work items created
	Conflicts     int // guesses abandoned on conflicting bits
	Verifications int // concrete verification runs
	Accepted      int
	Rejected      int
	MaxDepth      int // deepest step reached
	SolveTime     time.Duration
}

// Searcher represents a strategy for choosing the next Work item to explore.
type Searcher interface {
	// Removes and returns the next item to explore. Returns nil if empty.
	SelectWork() *Work

	// Adds an item to the searcher.
	AddWork(w *Work)

	// Returns the number of pending items.
	Len() int
}

// NewSearcher returns a searcher by name: "dfs", "bfs", or "random".
func NewSearcher(name string, seed int64) (Searcher, error) {
	switch name {
	case "", "dfs":
		return NewDFSSearcher(), nil
	case "bfs":
		return NewBFSSearcher(), nil
	case "random":
		return NewRandomSearcher(rand.New(rand.NewSource(seed))), nil
	default:
		return nil, errors.Errorf("unknown searcher: %q", name)
	}
}

// DFSSearcher represents a searcher with a depth-first search strategy.
type DFSSearcher struct {
	items []*Work
}

// NewDFSSearcher returns a new instance of DFSSearcher.
func NewDFSSearcher() *DFSSearcher {
	return &DFSSearcher{}
}

// SelectWork returns the most recently added item.
func (s *DFSSearcher) SelectWork() *Work {
	if len(s.items) == 0 {
		return nil
	}
	w := s.items[len(s.items)-1]
	s.items[len(s.items)-1] = nil
	s.items = s.items[:len(s.items)-1]
	return w
}

// AddWork adds a new item to the searcher.
func (s *DFSSearcher) AddWork(w *Work) {
	s.items = append(s.items, w)
}

// Len returns the number of pending items.
func (s *DFSSearcher) Len() int { return len(s.items) }

// BFSSearcher represents a searcher with a breadth-first search strategy.
type BFSSearcher struct {
	items []*Work
}

// NewBFSSearcher returns a new instance of BFSSearcher.
func NewBFSSearcher() *BFSSearcher {
	return &BFSSearcher{}
}

// SelectWork returns the least recently added item.
func (s *BFSSearcher) SelectWork() *Work {
	if len(s.items) == 0 {
		return nil
	}
	w := s.items[0]
	s.items[0] = nil
	s.items = s.items[1:]
	return w
}

// AddWork adds a new item to the searcher.
func (s *BFSSearcher) AddWork(w *Work) {
	s.items = append(s.items, w)
}

// Len returns the number of pending items.
func (s *BFSSearcher) Len() int { return len(s.items) }

// RandomSearcher represents a searcher that picks a uniformly random pending
// item on each selection. The order is reproducible for a given seed. The
// search still visits every item so the set of accepted values matches the
// other strategies.
type RandomSearcher struct {
	items []*Work
	rand  *rand.Rand
}

// NewRandomSearcher returns a new instance of RandomSearcher.
func NewRandomSearcher(rand *rand.Rand) *RandomSearcher {
	return &RandomSearcher{
		rand: rand,
	}
}

// SelectWork returns a random pending item.
func (s *RandomSearcher) SelectWork() *Work {
	if len(s.items) == 0 {
		return nil
	}
	i := s.rand.Intn(len(s.items))
	w := s.items[i]
	copy(s.items[i:], s.items[i+1:])
	s.items[len(s.items)-1] = nil
	s.items = s.items[:len(s.items)-1]
	return w
}

// AddWork adds a new item to the searcher.
func (s *RandomSearcher) AddWork(w *Work) {
	s.items = append(s.items, w)
}

// Len returns the number of pending items.
func (s *RandomSearcher) Len() int { return len(s.items) }
