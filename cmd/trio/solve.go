package main

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"strconv"
	"strings"

	"github.com/benbjohnson/trio"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// SolveCommand represents a command for finding quine values.
type SolveCommand struct {
	Config     trio.Config
	ConfigPath string
	Metrics    bool
}

// NewSolveCommand returns a new instance of SolveCommand.
func NewSolveCommand() *SolveCommand {
	return &SolveCommand{Config: trio.DefaultConfig()}
}

// Command returns the cobra command for "solve".
func (c *SolveCommand) Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "solve [flags] <input>...",
		Short: "Find the value of register A that makes each program print itself",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.loadConfig(cmd); err != nil {
				return err
			}
			return c.Run(cmd.Context(), cmd.OutOrStdout(), args)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&c.ConfigPath, "config", "", "TOML configuration file")
	flags.BoolVar(&c.Config.CollectAll, "all", c.Config.CollectAll, "search exhaustively and report the smallest value")
	flags.BoolVar(&c.Metrics, "metrics", false, "print solver metrics")
	flags.StringVar(&c.Config.Searcher, "searcher", c.Config.Searcher, "search strategy: dfs, bfs, random")
	flags.Int64Var(&c.Config.Seed, "seed", c.Config.Seed, "random searcher seed")
	flags.IntVar(&c.Config.MaxSteps, "max-steps", c.Config.MaxSteps, "step ceiling per run")
	flags.IntVar(&c.Config.MaxBranches, "max-branches", c.Config.MaxBranches, "work item budget, 0 is unlimited")
	flags.DurationVar(&c.Config.Timeout, "timeout", c.Config.Timeout, "search time limit, 0 is unlimited")
	return cmd
}

// loadConfig reads the configuration file, if any. Flags set on the command
// line take precedence over the file.
func (c *SolveCommand) loadConfig(cmd *cobra.Command) error {
	if c.ConfigPath == "" {
		return nil
	}

	config, err := trio.LoadConfig(c.ConfigPath)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("all") {
		config.CollectAll = c.Config.CollectAll
	}
	if flags.Changed("searcher") {
		config.Searcher = c.Config.Searcher
	}
	if flags.Changed("seed") {
		config.Seed = c.Config.Seed
	}
	if flags.Changed("max-steps") {
		config.MaxSteps = c.Config.MaxSteps
	}
	if flags.Changed("max-branches") {
		config.MaxBranches = c.Config.MaxBranches
	}
	if flags.Changed("timeout") {
		config.Timeout = c.Config.Timeout
	}
	c.Config = config
	return nil
}

// Run executes the "solve" subcommand. Inputs are solved concurrently and
// reported in argument order.
func (c *SolveCommand) Run(ctx context.Context, w io.Writer, paths []string) error {
	registry := prometheus.NewRegistry()
	results := make([]*trio.Result, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			in, err := trio.ReadInputFile(path)
			if err != nil {
				return err
			}

			result, s, err := trio.FindQuine(ctx, in, c.Config)
			if s != nil {
				if err := registry.Register(trio.NewStatsCollector(s, prometheus.Labels{"input": path, "arg": strconv.Itoa(i)})); err != nil {
					return err
				}
			}
			if errors.Is(err, trio.ErrNoSolution) {
				return nil
			} else if err != nil {
				return errors.Wrap(err, path)
			}
			results[i] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i, result := range results {
		if len(paths) > 1 {
			fmt.Fprintf(w, "%s: ", paths[i])
		}
		if result == nil {
			fmt.Fprintln(w, "no solution found")
			continue
		}
		fmt.Fprintln(w, result.Value)

		if c.Config.CollectAll && len(result.Values) > 1 {
			fmt.Fprintf(w, "  candidates: %s\n", formatValues(result.Values))
		}
	}

	if c.Metrics {
		families, err := registry.Gather()
		if err != nil {
			return err
		}
		return trio.WriteMetrics(w, families)
	}
	return nil
}

func formatValues(values []uint64) string {
	a := make([]string, len(values))
	for i, v := range values {
		a[i] = strconv.FormatUint(v, 10)
	}
	return strings.Join(a, ",")
}
