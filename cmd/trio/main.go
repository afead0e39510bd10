package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	cmd := NewRootCommand(os.Stdout, os.Stderr)
	cmd.SetArgs(args)
	return cmd.ExecuteContext(ctx)
}

// NewRootCommand returns the "trio" command with all subcommands attached.
func NewRootCommand(stdout, stderr io.Writer) *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "trio",
		Short: "Trio finds inputs that make a three-register program print itself.",
		Long: `
Trio is a tool for running and solving programs for a three-register machine
with 3-bit instructions. Input files list the initial registers and the
program:

	Register A: 729
	Register B: 0
	Register C: 0

	Program: 0,1,5,4,3,0
`[1:],
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			log.SetFlags(0)
			if verbose {
				log.SetOutput(stderr)
			} else {
				log.SetOutput(io.Discard)
			}
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose")

	cmd.AddCommand(
		NewRunCommand().Command(),
		NewSolveCommand().Command(),
		NewDumpCommand().Command(),
	)
	return cmd
}
