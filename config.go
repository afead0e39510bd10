package trio

import (
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

// Config represents the settings used to search for a quine value.
type Config struct {
	// Step ceiling for every concrete or symbolic run.
	MaxSteps int `toml:"max-steps"`

	// Search strategy: "dfs", "bfs", or "random".
	Searcher string `toml:"searcher"`

	// Seed for the random searcher.
	Seed int64 `toml:"seed"`

	// Maximum number of Work items created. Zero is unlimited.
	MaxBranches int `toml:"max-branches"`

	// Wall clock limit for the search. Zero is unlimited.
	Timeout time.Duration `toml:"timeout"`

	// If true, the whole search space is explored and the smallest
	// accepted value is reported instead of the first.
	CollectAll bool `toml:"collect-all"`
}

// DefaultConfig returns a configuration with default settings.
func DefaultConfig() Config {
	return Config{
		MaxSteps: DefaultMaxSteps,
		Searcher: "dfs",
	}
}

// LoadConfig reads a TOML configuration file. Settings missing from the file
// keep their default values. Unknown keys are rejected.
func LoadConfig(path string) (Config, error) {
	config := DefaultConfig()
	md, err := toml.DecodeFile(path, &config)
	if err != nil {
		return config, errors.Wrapf(err, "load config %s", path)
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, key := range undecoded {
			keys[i] = key.String()
		}
		sort.Strings(keys)
		return config, errors.Errorf("load config %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	return config, config.Validate()
}

// Validate returns an error if any setting is out of range.
func (c Config) Validate() error {
	if c.MaxSteps <= 0 {
		return errors.Errorf("max-steps must be positive: %d", c.MaxSteps)
	} else if c.MaxBranches < 0 {
		return errors.Errorf("max-branches must not be negative: %d", c.MaxBranches)
	} else if c.Timeout < 0 {
		return errors.Errorf("timeout must not be negative: %s", c.Timeout)
	}
	if _, err := NewSearcher(c.Searcher, c.Seed); err != nil {
		return err
	}
	return nil
}

// NewSolver returns a solver for eqs configured with c.
func (c Config) NewSolver(in *Input, eqs []Equation) (*Solver, error) {
	searcher, err := NewSearcher(c.Searcher, c.Seed)
	if err != nil {
		return nil, err
	}

	_, b, regC := in.Registers()
	s := NewSolver(in.Program, eqs, b, regC)
	s.MaxSteps = c.MaxSteps
	s.MaxBranches = c.MaxBranches
	s.Searcher = searcher
	return s, nil
}
