package telemetry

import (
	"log/slog"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for one stats window.
type WindowStats struct {
	WindowEndFrame int64   `csv:"window_end"`
	SimTimeSec     float64 `csv:"sim_time"`

	// Population counts at window end
	Active  int `csv:"active"`
	Full    int `csv:"full"`
	Reduced int `csv:"reduced"`
	Minimal int `csv:"minimal"`
	Culled  int `csv:"culled"`

	// Events during the window
	Registered   int `csv:"registered"`
	Unregistered int `csv:"unregistered"`

	// Step timing over the window
	AvgStepUS float64 `csv:"avg_step_us"`
	StdStepUS float64 `csv:"std_step_us"`
	P95StepUS float64 `csv:"p95_step_us"`
	MaxStepUS float64 `csv:"max_step_us"`

	// Controller state as last observed
	Quality        string  `csv:"quality"`
	QualityChanges int     `csv:"quality_changes"`
	MemoryMB       float64 `csv:"memory_mb"`
	Thermal        string  `csv:"thermal"`
}

// TierCounts is a per-tier population snapshot.
type TierCounts struct {
	Active  int
	Full    int
	Reduced int
	Minimal int
	Culled  int
}

// Collector accumulates per-step samples and event counts until the
// window is flushed.
type Collector struct {
	windowSec float64

	stepSeconds    []float64
	registered     int
	unregistered   int
	qualityChanges int
	lastFlushSim   float64
}

// NewCollector creates a stats collector flushing every windowSec of
// simulation time.
func NewCollector(windowSec float64) *Collector {
	if windowSec <= 0 {
		windowSec = 5
	}
	return &Collector{
		windowSec:   windowSec,
		stepSeconds: make([]float64, 0, 512),
	}
}

// RecordStep records one step's wall duration.
func (c *Collector) RecordStep(d time.Duration) {
	c.stepSeconds = append(c.stepSeconds, d.Seconds())
}

// RecordRegistered counts entities registered this window.
func (c *Collector) RecordRegistered(n int) {
	c.registered += n
}

// RecordUnregistered counts entities unregistered this window.
func (c *Collector) RecordUnregistered(n int) {
	c.unregistered += n
}

// RecordQualityChange counts controller adjustments this window.
func (c *Collector) RecordQualityChange() {
	c.qualityChanges++
}

// ShouldFlush reports whether a full window has elapsed.
func (c *Collector) ShouldFlush(simTime float64) bool {
	return simTime-c.lastFlushSim >= c.windowSec
}

// Flush aggregates the window and resets the accumulators.
func (c *Collector) Flush(frame int64, simTime float64, counts TierCounts, quality string, memoryMB float64, thermal string) WindowStats {
	s := WindowStats{
		WindowEndFrame: frame,
		SimTimeSec:     simTime,
		Active:         counts.Active,
		Full:           counts.Full,
		Reduced:        counts.Reduced,
		Minimal:        counts.Minimal,
		Culled:         counts.Culled,
		Registered:     c.registered,
		Unregistered:   c.unregistered,
		Quality:        quality,
		QualityChanges: c.qualityChanges,
		MemoryMB:       memoryMB,
		Thermal:        thermal,
	}

	if n := len(c.stepSeconds); n > 0 {
		mean, std := stat.MeanStdDev(c.stepSeconds, nil)
		sorted := make([]float64, n)
		copy(sorted, c.stepSeconds)
		sort.Float64s(sorted)

		s.AvgStepUS = mean * 1e6
		if n > 1 {
			s.StdStepUS = std * 1e6
		}
		s.P95StepUS = stat.Quantile(0.95, stat.Empirical, sorted, nil) * 1e6
		s.MaxStepUS = sorted[n-1] * 1e6
	}

	c.stepSeconds = c.stepSeconds[:0]
	c.registered = 0
	c.unregistered = 0
	c.qualityChanges = 0
	c.lastFlushSim = simTime

	return s
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndFrame,
		"sim_time", s.SimTimeSec,
		"active", s.Active,
		"full", s.Full,
		"reduced", s.Reduced,
		"minimal", s.Minimal,
		"culled", s.Culled,
		"registered", s.Registered,
		"unregistered", s.Unregistered,
		"avg_step_us", s.AvgStepUS,
		"p95_step_us", s.P95StepUS,
		"max_step_us", s.MaxStepUS,
		"quality", s.Quality,
		"quality_changes", s.QualityChanges,
		"memory_mb", s.MemoryMB,
		"thermal", s.Thermal,
	)
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int64("window_end", s.WindowEndFrame),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("active", s.Active),
		slog.Int("full", s.Full),
		slog.Int("reduced", s.Reduced),
		slog.Int("minimal", s.Minimal),
		slog.Int("culled", s.Culled),
		slog.Int("registered", s.Registered),
		slog.Int("unregistered", s.Unregistered),
		slog.Float64("avg_step_us", s.AvgStepUS),
		slog.Float64("std_step_us", s.StdStepUS),
		slog.Float64("p95_step_us", s.P95StepUS),
		slog.Float64("max_step_us", s.MaxStepUS),
		slog.String("quality", s.Quality),
		slog.Int("quality_changes", s.QualityChanges),
		slog.Float64("memory_mb", s.MemoryMB),
		slog.String("thermal", s.Thermal),
	)
}
