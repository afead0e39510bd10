package trio

import (
	"io"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
)

// StatsCollector exports the statistics of a solver as Prometheus metrics.
// Values are read from the solver on every collection so it must not be
// gathered while the solver is running.
type StatsCollector struct {
	solver *Solver

	branches      *prometheus.Desc
	conflicts     *prometheus.Desc
	verifications *prometheus.Desc
	accepted      *prometheus.Desc
	rejected      *prometheus.Desc
	maxDepth      *prometheus.Desc
	solveTime     *prometheus.Desc
}

// NewStatsCollector returns a collector for s. Labels are attached to every
// metric so collectors for several solvers can share a registry.
func NewStatsCollector(s *Solver, labels prometheus.Labels) *StatsCollector {
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName("trio", "solver", name), help, nil, labels)
	}
	return &StatsCollector{
		solver:        s,
		branches:      desc("branches_total", "Number of work items created."),
		conflicts:     desc("conflicts_total", "Number of guesses abandoned on conflicting bits."),
		verifications: desc("verifications_total", "Number of concrete verification runs."),
		accepted:      desc("accepted_total", "Number of candidates that reproduced the program."),
		rejected:      desc("rejected_total", "Number of candidates rejected by verification."),
		maxDepth:      desc("max_depth", "Deepest search step reached."),
		solveTime:     desc("solve_seconds_total", "Time spent searching."),
	}
}

// Describe implements prometheus.Collector.
func (c *StatsCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.branches
	ch <- c.conflicts
	ch <- c.verifications
	ch <- c.accepted
	ch <- c.rejected
	ch <- c.maxDepth
	ch <- c.solveTime
}

// Collect implements prometheus.Collector.
func (c *StatsCollector) Collect(ch chan<- prometheus.Metric) {
	stats := c.solver.Stats()
	ch <- prometheus.MustNewConstMetric(c.branches, prometheus.CounterValue, float64(stats.Branches))
	ch <- prometheus.MustNewConstMetric(c.conflicts, prometheus.CounterValue, float64(stats.Conflicts))
	ch <- prometheus.MustNewConstMetric(c.verifications, prometheus.CounterValue, float64(stats.Verifications))
	ch <- prometheus.MustNewConstMetric(c.accepted, prometheus.CounterValue, float64(stats.Accepted))
	ch <- prometheus.MustNewConstMetric(c.rejected, prometheus.CounterValue, float64(stats.Rejected))
	ch <- prometheus.MustNewConstMetric(c.maxDepth, prometheus.GaugeValue, float64(stats.MaxDepth))
	ch <- prometheus.MustNewConstMetric(c.solveTime, prometheus.CounterValue, stats.SolveTime.Seconds())
}

// WriteMetrics writes gathered metric families in the Prometheus text format.
func WriteMetrics(w io.Writer, families []*dto.MetricFamily) error {
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}
