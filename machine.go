package trio

import (
	"github.com/pkg/errors"
)

// Machine represents the concrete state of the three-register machine.
type Machine struct {
	prog Program

	A, B, C uint64
	PC      int
	Output  []uint8

	steps int
}

// NewMachine returns a new machine for prog with the given initial registers.
func NewMachine(prog Program, a, b, c uint64) *Machine {
	return &Machine{prog: prog, A: a, B: b, C: c}
}

// Program returns the instruction stream executed by the machine.
func (m *Machine) Program() Program { return m.prog }

// Steps returns the number of instructions executed so far.
func (m *Machine) Steps() int { return m.steps }

// Halted returns true if the program counter addresses the last slot or beyond.
func (m *Machine) Halted() bool {
	return m.PC < 0 || m.PC >= len(m.prog)-1
}

// Reset moves the program counter back to the start of the program.
// Registers and output are kept.
func (m *Machine) Reset() {
	m.PC = 0
}

// Combo resolves a combo operand against the current registers.
func (m *Machine) Combo(operand uint8) (uint64, error) {
	switch operand {
	case 0, 1, 2, 3:
		return uint64(operand), nil
	case 4:
		return m.A, nil
	case 5:
		return m.B, nil
	case 6:
		return m.C, nil
	default:
		return 0, errors.Wrapf(ErrUnreachable, "invalid combo operand %d at pc=%d", operand, m.PC)
	}
}

// Step executes a single instruction. Returns false if the machine has halted.
func (m *Machine) Step() (bool, error) {
	if m.Halted() {
		return false, nil
	}

	op, operand := Opcode(m.prog[m.PC]), m.prog[m.PC+1]
	jumped := false

	switch op {
	case DIV_A, DIV_B, DIV_C:
		v, err := m.Combo(operand)
		if err != nil {
			return false, err
		}
		result := shr(m.A, v)
		switch op {
		case DIV_A:
			m.A = result
		case DIV_B:
			m.B = result
		default:
			m.C = result
		}
	case XOR_LIT:
		m.B ^= uint64(operand)
	case MOD8:
		v, err := m.Combo(operand)
		if err != nil {
			return false, err
		}
		m.B = v & DigitMask
	case JUMP_IF_A_NONZERO:
		if m.A != 0 {
			m.PC, jumped = int(operand), true
		}
	case XOR_BC:
		m.B ^= m.C
	case EMIT:
		v, err := m.Combo(operand)
		if err != nil {
			return false, err
		}
		m.Output = append(m.Output, uint8(v&DigitMask))
	default:
		return false, errors.Wrapf(ErrUnreachable, "invalid opcode %d at pc=%d", op, m.PC)
	}

	if !jumped {
		m.PC += 2
	}
	m.steps++
	return true, nil
}

// Run steps the machine until it halts and returns the output. Returns
// ErrTimeout if the machine has not halted after maxSteps instructions.
func (m *Machine) Run(maxSteps int) ([]uint8, error) {
	for n := 0; ; n++ {
		if n >= maxSteps {
			if m.Halted() {
				return m.Output, nil
			}
			return m.Output, errors.Wrapf(ErrTimeout, "after %d steps at pc=%d", maxSteps, m.PC)
		}
		if ok, err := m.Step(); err != nil {
			return m.Output, err
		} else if !ok {
			return m.Output, nil
		}
	}
}

// Run executes prog with the given initial registers and returns its output.
func Run(prog Program, a, b, c uint64, maxSteps int) ([]uint8, error) {
	return NewMachine(prog, a, b, c).Run(maxSteps)
}

// shr returns x shifted right by n bits. Shifts of the full width or more are zero.
func shr(x, n uint64) uint64 {
	if n >= WordWidth {
		return 0
	}
	return x >> n
}
