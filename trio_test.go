package trio_test

import (
	"bytes"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/benbjohnson/trio"
	"golang.org/x/tools/txtar"
)

// Canonical is the two-register xor/shift program that reproduces itself.
const Canonical = "2,4,1,2,7,5,1,3,4,4,5,5,0,3,3,0"

// Fixture represents a test case read from a txtar archive under testdata/.
type Fixture struct {
	Comment   string
	Input     *trio.Input
	InputData []byte

	// Comma-joined output of a plain run from the input registers.
	Output string

	// Every value of A that reproduces the program, ascending.
	Solutions []uint64
}

// MustReadFixture reads testdata/<name>.txtar. Fatal on error.
func MustReadFixture(tb testing.TB, name string) *Fixture {
	tb.Helper()

	ar, err := txtar.ParseFile(filepath.Join("testdata", name+".txtar"))
	if err != nil {
		tb.Fatal(err)
	}

	fx := &Fixture{Comment: string(ar.Comment)}
	for _, f := range ar.Files {
		switch f.Name {
		case "input":
			if fx.Input, err = trio.ParseInput(bytes.NewReader(f.Data)); err != nil {
				tb.Fatalf("%s: %s", name, err)
			}
			fx.InputData = f.Data
		case "output":
			fx.Output = strings.TrimSpace(string(f.Data))
		case "solutions":
			for _, s := range strings.Split(strings.TrimSpace(string(f.Data)), ",") {
				v, err := strconv.ParseUint(s, 10, 64)
				if err != nil {
					tb.Fatalf("%s: %s", name, err)
				}
				fx.Solutions = append(fx.Solutions, v)
			}
		default:
			tb.Fatalf("%s: unexpected file: %s", name, f.Name)
		}
	}

	if fx.Input == nil {
		tb.Fatalf("%s: input not found", name)
	}
	return fx
}

// MustParseProgram parses a comma-separated program. Fatal on error.
func MustParseProgram(tb testing.TB, s string) trio.Program {
	tb.Helper()
	prog, err := trio.ParseProgram(s)
	if err != nil {
		tb.Fatal(err)
	}
	return prog
}

// MustEquations returns the untangled equations for prog run from A=a. Fatal on error.
func MustEquations(tb testing.TB, prog trio.Program, a uint64) []trio.Equation {
	tb.Helper()
	eqs, err := trio.Equations(prog, a, 0, 0, trio.DefaultMaxSteps)
	if err != nil {
		tb.Fatal(err)
	}
	return eqs
}
