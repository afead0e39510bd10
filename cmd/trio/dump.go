package main

import (
	"context"
	"fmt"
	"io"

	"github.com/benbjohnson/trio"
	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"
)

// DumpCommand represents a command for printing the symbolic form of a program.
type DumpCommand struct {
	MaxSteps int
	Raw      bool
}

// NewDumpCommand returns a new instance of DumpCommand.
func NewDumpCommand() *DumpCommand {
	return &DumpCommand{MaxSteps: trio.DefaultMaxSteps}
}

// Command returns the cobra command for "dump".
func (c *DumpCommand) Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dump [flags] <input>",
		Short: "Print the disassembly, symbolic outputs and equations of a program",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.Run(cmd.Context(), cmd.OutOrStdout(), args[0])
		},
	}
	cmd.Flags().IntVar(&c.MaxSteps, "max-steps", c.MaxSteps, "step ceiling")
	cmd.Flags().BoolVar(&c.Raw, "raw", false, "dump equation trees")
	return cmd
}

// Run executes the "dump" subcommand.
func (c *DumpCommand) Run(ctx context.Context, w io.Writer, path string) error {
	in, err := trio.ReadInputFile(path)
	if err != nil {
		return err
	}

	a, b, cc := in.Registers()
	e := trio.NewExecutor(in.Program, a, b, cc)
	e.MaxSteps = c.MaxSteps
	outputs, err := e.Execute(len(in.Program))
	if err != nil {
		return err
	}
	eqs := trio.UntangleOutputs(in.Program, outputs)

	fmt.Fprintln(w, "== PROGRAM")
	fmt.Fprint(w, in.Program.Disassemble())
	fmt.Fprintln(w, "")

	fmt.Fprintln(w, "== OUTPUTS")
	for i, text := range e.State().OutputTexts[:len(in.Program)] {
		fmt.Fprintf(w, "#%d: %s\n", i, text)
	}
	fmt.Fprintln(w, "")

	fmt.Fprintln(w, "== EQUATIONS")
	for i, eq := range eqs {
		fmt.Fprintf(w, "#%d: %s\n", i, eq)
	}

	if c.Raw {
		fmt.Fprintln(w, "")
		fmt.Fprintln(w, "== TREES")
		config := spew.ConfigState{Indent: "  ", DisablePointerAddresses: true, DisableCapacities: true}
		config.Fdump(w, eqs)
	}
	return nil
}
