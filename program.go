package trio

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Opcode represents a machine instruction.
type Opcode uint8

// Machine instructions.
const (
	DIV_A             = Opcode(iota) // A = A >> combo
	XOR_LIT                          // B = B xor literal
	MOD8                             // B = combo mod 8
	JUMP_IF_A_NONZERO                // pc = literal if A != 0
	XOR_BC                           // B = B xor C
	EMIT                             // output combo mod 8
	DIV_B                            // B = A >> combo
	DIV_C                            // C = A >> combo
)

var opcodes = [...]string{
	DIV_A:             "adv",
	XOR_LIT:           "bxl",
	MOD8:              "bst",
	JUMP_IF_A_NONZERO: "jnz",
	XOR_BC:            "bxc",
	EMIT:              "out",
	DIV_B:             "bdv",
	DIV_C:             "cdv",
}

// String returns the mnemonic of the opcode.
func (op Opcode) String() string {
	if int(op) < len(opcodes) {
		return opcodes[op]
	}
	return fmt.Sprintf("Opcode<%d>", op)
}

// IsValid returns true if op is one of the eight defined instructions.
func (op Opcode) IsValid() bool {
	return int(op) < len(opcodes)
}

// Register identifies one of the three machine registers.
type Register int

// Machine registers.
const (
	RegA = Register(iota)
	RegB
	RegC
)

var registers = [...]string{RegA: "A", RegB: "B", RegC: "C"}

// String returns the name of the register.
func (r Register) String() string {
	if r >= 0 && int(r) < len(registers) {
		return registers[r]
	}
	return fmt.Sprintf("Register<%d>", int(r))
}

// ComboRegister returns the register a combo operand refers to.
// Returns false if the operand is a literal or invalid.
func ComboRegister(operand uint8) (Register, bool) {
	if operand >= 4 && operand <= 6 {
		return Register(operand - 4), true
	}
	return 0, false
}

// Program represents an instruction stream of 3-bit values.
type Program []uint8

// ParseProgram parses a comma-separated list of digits.
func ParseProgram(s string) (Program, error) {
	var prog Program
	for _, field := range strings.Split(s, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		v, err := strconv.ParseUint(field, 10, 8)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid program digit %q", field)
		}
		prog = append(prog, uint8(v))
	}
	if err := prog.Validate(); err != nil {
		return nil, err
	}
	return prog, nil
}

// Validate returns an error if the stream has an odd length or contains a
// value outside the 3-bit range.
func (p Program) Validate() error {
	if len(p)%2 != 0 {
		return errors.Errorf("program length must be even: %d", len(p))
	}
	for i, v := range p {
		if v > DigitMask {
			return errors.Wrapf(ErrUnreachable, "digit out of range at %d: %d", i, v)
		}
	}
	return nil
}

// Equal returns true if output reproduces the program verbatim.
func (p Program) Equal(output []uint8) bool {
	if len(p) != len(output) {
		return false
	}
	for i := range p {
		if p[i] != output[i] {
			return false
		}
	}
	return true
}

// String returns the comma-joined decimal form of the program.
func (p Program) String() string {
	return JoinDigits(p)
}

// Disassemble returns one line per instruction pair.
func (p Program) Disassemble() string {
	var sb strings.Builder
	for pc := 0; pc+1 < len(p); pc += 2 {
		op, operand := Opcode(p[pc]), p[pc+1]
		fmt.Fprintf(&sb, "%02d: %s %s\n", pc, op, formatOperand(op, operand))
	}
	return sb.String()
}

// formatOperand returns the operand as a literal or register name,
// depending on how op interprets it.
func formatOperand(op Opcode, operand uint8) string {
	switch op {
	case XOR_LIT, JUMP_IF_A_NONZERO:
		return strconv.Itoa(int(operand))
	case XOR_BC:
		return "-"
	}
	if r, ok := ComboRegister(operand); ok {
		return r.String()
	} else if operand > 6 {
		return "?"
	}
	return strconv.Itoa(int(operand))
}

// JoinDigits returns digits as a comma-joined decimal string.
func JoinDigits(digits []uint8) string {
	a := make([]string, len(digits))
	for i, d := range digits {
		a[i] = strconv.Itoa(int(d))
	}
	return strings.Join(a, ",")
}
