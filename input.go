package trio

import (
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Input represents a parsed puzzle input: initial registers and a program.
type Input struct {
	A, B, C uint64
	Program Program
}

// Registers returns the initial register values in order A, B, C.
func (in *Input) Registers() (a, b, c uint64) {
	return in.A, in.B, in.C
}

// ParseInput parses "Register X: n" lines followed by a "Program: ..." line.
// Blank lines are ignored. Registers that are not listed are zero.
func ParseInput(r io.Reader) (*Input, error) {
	var in Input
	var hasProgram bool

	scanner := bufio.NewScanner(r)
	for lineNo := 1; scanner.Scan(); lineNo++ {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		key, value, ok := strings.Cut(line, ":")
		if !ok {
			return nil, errors.Errorf("line %d: expected 'key: value': %q", lineNo, line)
		}
		key, value = strings.TrimSpace(key), strings.TrimSpace(value)

		switch key {
		case "Register A", "Register B", "Register C":
			v, err := strconv.ParseUint(value, 10, 64)
			if err != nil {
				return nil, errors.Wrapf(err, "line %d: invalid register value", lineNo)
			}
			switch key[len(key)-1] {
			case 'A':
				in.A = v
			case 'B':
				in.B = v
			case 'C':
				in.C = v
			}
		case "Program":
			prog, err := ParseProgram(value)
			if err != nil {
				return nil, errors.Wrapf(err, "line %d", lineNo)
			}
			in.Program, hasProgram = prog, true
		default:
			return nil, errors.Errorf("line %d: unknown key: %q", lineNo, key)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	} else if !hasProgram {
		return nil, errors.New("program not found")
	}
	return &in, nil
}

// ReadInputFile parses the input file at path.
func ReadInputFile(path string) (*Input, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	in, err := ParseInput(f)
	if err != nil {
		return nil, errors.Wrap(err, path)
	}
	return in, nil
}
