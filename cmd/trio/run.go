package main

import (
	"context"
	"fmt"
	"io"

	"github.com/benbjohnson/trio"
	"github.com/spf13/cobra"
)

// RunCommand represents a command for running a program concretely.
type RunCommand struct {
	MaxSteps int
}

// NewRunCommand returns a new instance of RunCommand.
func NewRunCommand() *RunCommand {
	return &RunCommand{MaxSteps: trio.DefaultMaxSteps}
}

// Command returns the cobra command for "run".
func (c *RunCommand) Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <input>",
		Short: "Run a program and print its output",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.Run(cmd.Context(), cmd.OutOrStdout(), args[0])
		},
	}
	cmd.Flags().IntVar(&c.MaxSteps, "max-steps", c.MaxSteps, "step ceiling")
	return cmd
}

// Run executes the "run" subcommand.
func (c *RunCommand) Run(ctx context.Context, w io.Writer, path string) error {
	in, err := trio.ReadInputFile(path)
	if err != nil {
		return err
	}

	a, b, cc := in.Registers()
	output, err := trio.Run(in.Program, a, b, cc, c.MaxSteps)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, trio.JoinDigits(output))
	return nil
}
