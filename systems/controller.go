package systems

import (
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/bubblefield/config"
)

// ThermalState mirrors the host platform's thermal reporting.
type ThermalState uint8

const (
	ThermalNominal ThermalState = iota
	ThermalThrottled
)

func (t ThermalState) String() string {
	if t == ThermalThrottled {
		return "throttled"
	}
	return "nominal"
}

// PlatformSample is one poll of the host telemetry. Absent signals are
// treated as "no pressure", never as an error.
type PlatformSample struct {
	MemoryMB   float64
	HasMemory  bool
	Thermal    ThermalState
	HasThermal bool
}

// AdaptiveController is the closed-loop regulator. It observes measured
// frame times plus memory/thermal signals and walks the quality ladder
// to keep the pipeline inside the frame budget. It never touches entity
// data, only the Profile.
type AdaptiveController struct {
	targetFPS    float64
	lowHeadroom  float64
	highHeadroom float64
	cooldown     time.Duration
	memCeiling   float64
	cfg          *config.Config

	window []float64 // frame-time samples, seconds
	idx    int
	count  int

	lastAdjust time.Time
	lastSample PlatformSample
}

// NewAdaptiveController creates a controller from config.
func NewAdaptiveController(cfg *config.Config) *AdaptiveController {
	perf := cfg.Performance
	return &AdaptiveController{
		targetFPS:    perf.TargetFPS,
		lowHeadroom:  perf.LowHeadroom,
		highHeadroom: perf.HighHeadroom,
		cooldown:     time.Duration(perf.AdjustCooldown * float64(time.Second)),
		memCeiling:   perf.MemoryCeilingMB,
		cfg:          cfg,
		window:       make([]float64, perf.FrameWindow),
	}
}

// Observe records one measured frame time into the rolling window.
func (c *AdaptiveController) Observe(frame time.Duration) {
	if frame <= 0 {
		return
	}
	c.window[c.idx] = frame.Seconds()
	c.idx = (c.idx + 1) % len(c.window)
	if c.count < len(c.window) {
		c.count++
	}
}

// ImpliedFPS returns the frame rate implied by the rolling average, or
// 0 when no samples have been observed yet.
func (c *AdaptiveController) ImpliedFPS() float64 {
	if c.count == 0 {
		return 0
	}
	avg := stat.Mean(c.window[:c.count], nil)
	if avg <= 0 {
		return 0
	}
	return 1 / avg
}

// LastSample returns the most recent platform telemetry seen.
func (c *AdaptiveController) LastSample() PlatformSample {
	return c.lastSample
}

// Regulate runs one control interval against the profile. It compares
// the implied frame rate to the target: below lowHeadroom of target the
// quality steps down; above highHeadroom it steps up, unless thermal
// throttling or memory pressure is in effect, during which quality may
// only decrease. Changes are rate-limited to one per cooldown interval.
// Returns true if the profile was changed.
func (c *AdaptiveController) Regulate(now time.Time, sample PlatformSample, p *Profile) bool {
	c.lastSample = sample

	memPressure := sample.HasMemory && c.memCeiling > 0 && sample.MemoryMB > c.memCeiling
	throttled := sample.HasThermal && sample.Thermal == ThermalThrottled

	fps := c.ImpliedFPS()
	if fps == 0 && !memPressure {
		return false
	}

	var want Quality
	switch {
	case memPressure || (fps > 0 && fps < c.targetFPS*c.lowHeadroom):
		if p.Quality == QualityLow {
			return false
		}
		want = p.Quality - 1
	case fps > c.targetFPS*c.highHeadroom:
		if throttled || memPressure {
			return false // lockout: only decreases while under pressure
		}
		if p.Quality == QualityHigh {
			return false
		}
		want = p.Quality + 1
	default:
		return false
	}

	if !c.lastAdjust.IsZero() && now.Sub(c.lastAdjust) < c.cooldown {
		return false
	}

	*p = ProfileFor(want, c.cfg)
	c.lastAdjust = now
	// Old samples reflect the previous bundle; measure the new one fresh.
	c.count = 0
	c.idx = 0
	return true
}
