package trio

import (
	"fmt"
	"log"
	"strconv"

	"github.com/pkg/errors"
)

// InputRegister is the name of the symbolic value loaded into register A.
const InputRegister = "A"

// ErrNoOutput is returned when the program halts without emitting a digit,
// so re-running it can never produce more output.
var ErrNoOutput = errors.New("trio: program halted without output")

// SymbolicState represents the symbolic mirror of the machine registers.
type SymbolicState struct {
	Registers [3]Num // A, B, C
	Outputs   []Num  // one per emitted digit

	// Human readable forms of the same computations.
	Texts       [3]string
	OutputTexts []string
}

// NewSymbolicState returns a state with A bound to the named input and B & C
// holding the constants b & c.
func NewSymbolicState(b, c uint64) *SymbolicState {
	return &SymbolicState{
		Registers: [3]Num{NewNamedNum(InputRegister, WordWidth), NewLiteralNum(b), NewLiteralNum(c)},
		Texts:     [3]string{InputRegister, strconv.FormatUint(b, 10), strconv.FormatUint(c, 10)},
	}
}

// Register returns the expression currently held by r.
func (s *SymbolicState) Register(r Register) Num { return s.Registers[r] }

// Combo resolves a combo operand to an expression.
func (s *SymbolicState) Combo(operand uint8) (Num, string, error) {
	if operand <= 3 {
		return NewLiteralNum(uint64(operand)), strconv.Itoa(int(operand)), nil
	} else if r, ok := ComboRegister(operand); ok {
		return s.Registers[r], "(" + s.Texts[r] + ")", nil
	}
	return nil, "", errors.Wrapf(ErrUnreachable, "invalid combo operand %d", operand)
}

// Executor runs the concrete machine and the symbolic state in lock-step.
// Control flow always follows the concrete machine.
type Executor struct {
	machine *Machine
	state   *SymbolicState

	// Maximum number of instructions executed across all passes.
	MaxSteps int
}

// NewExecutor returns a new executor for prog with the given initial registers.
func NewExecutor(prog Program, a, b, c uint64) *Executor {
	return &Executor{
		machine:  NewMachine(prog, a, b, c),
		state:    NewSymbolicState(b, c),
		MaxSteps: DefaultMaxSteps,
	}
}

// Machine returns the concrete machine.
func (e *Executor) Machine() *Machine { return e.machine }

// State returns the symbolic state.
func (e *Executor) State() *SymbolicState { return e.state }

// Step executes the next instruction on both the symbolic state and the
// concrete machine. Returns false if the machine has halted.
func (e *Executor) Step() (bool, error) {
	m := e.machine
	if m.Halted() {
		return false, nil
	}

	pc := m.PC
	op, operand := Opcode(m.prog[pc]), m.prog[pc+1]
	log.Printf("[exec] %02d: %s %s", pc, op, formatOperand(op, operand))

	if err := e.executeInstr(op, operand); err != nil {
		return false, errors.Wrapf(err, "pc=%d", pc)
	}
	return m.Step()
}

func (e *Executor) executeInstr(op Opcode, operand uint8) error {
	switch op {
	case DIV_A:
		return e.executeDivInstr(RegA, operand)
	case DIV_B:
		return e.executeDivInstr(RegB, operand)
	case DIV_C:
		return e.executeDivInstr(RegC, operand)
	case XOR_LIT:
		return e.executeXorLitInstr(operand)
	case MOD8:
		return e.executeMod8Instr(operand)
	case JUMP_IF_A_NONZERO:
		return nil // control flow follows the concrete machine
	case XOR_BC:
		return e.executeXorBCInstr()
	case EMIT:
		return e.executeEmitInstr(operand)
	default:
		return errors.Wrapf(ErrUnreachable, "invalid opcode %d", op)
	}
}

func (e *Executor) executeDivInstr(dst Register, operand uint8) error {
	s := e.state
	shift, text, err := s.Combo(operand)
	if err != nil {
		return err
	}
	s.Registers[dst] = DivPow2(s.Registers[RegA], shift)
	s.Texts[dst] = fmt.Sprintf("(%s) >> %s", s.Texts[RegA], text)
	return nil
}

func (e *Executor) executeXorLitInstr(operand uint8) error {
	s := e.state
	s.Registers[RegB] = Xor(s.Registers[RegB], NewLiteralNum(uint64(operand)))
	s.Texts[RegB] = fmt.Sprintf("(%s) x %d", s.Texts[RegB], operand)
	return nil
}

func (e *Executor) executeMod8Instr(operand uint8) error {
	s := e.state
	x, text, err := s.Combo(operand)
	if err != nil {
		return err
	}
	s.Registers[RegB] = Mod8(x)
	s.Texts[RegB] = text + " % 8"
	return nil
}

func (e *Executor) executeXorBCInstr() error {
	s := e.state
	s.Registers[RegB] = Xor(s.Registers[RegB], s.Registers[RegC])
	s.Texts[RegB] = fmt.Sprintf("%s x %s", s.Texts[RegB], s.Texts[RegC])
	return nil
}

func (e *Executor) executeEmitInstr(operand uint8) error {
	s := e.state
	x, text, err := s.Combo(operand)
	if err != nil {
		return err
	}
	s.Outputs = append(s.Outputs, Mod8(x))
	s.OutputTexts = append(s.OutputTexts, text+" % 8")
	log.Printf("[exec] output #%d: %s", len(s.Outputs)-1, s.OutputTexts[len(s.OutputTexts)-1])
	return nil
}

// Execute runs until at least n symbolic outputs exist. Whenever the concrete
// machine halts early the program counter is reset and the program runs
// again over the current registers, extending the output by another pass.
func (e *Executor) Execute(n int) ([]Num, error) {
	m := e.machine
	emitted := len(e.state.Outputs)
	for len(e.state.Outputs) < n {
		if m.Steps() >= e.MaxSteps {
			return e.state.Outputs, errors.Wrapf(ErrTimeout, "after %d steps with %d/%d outputs", m.Steps(), len(e.state.Outputs), n)
		}

		ok, err := e.Step()
		if err != nil {
			return e.state.Outputs, err
		} else if ok {
			continue
		}

		// Halted before producing enough output; run another pass.
		if len(e.state.Outputs) == emitted {
			return e.state.Outputs, ErrNoOutput
		}
		emitted = len(e.state.Outputs)
		log.Printf("[exec] restart: %d/%d outputs", emitted, n)
		m.Reset()
	}
	return e.state.Outputs, nil
}
