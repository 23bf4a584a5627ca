package sim

import (
	"time"

	"github.com/pthm-cable/bubblefield/systems"
	"github.com/pthm-cable/bubblefield/telemetry"
)

// BubbleView is one bubble's render-ready state: the spring position
// with wave displacement already composed in, the breathing scale, and
// the synchronized phase.
type BubbleView struct {
	ID    uint32
	X     float32
	Y     float32
	Z     float32
	Scale float32
	Phase float32
	Tier  uint8
}

// Views returns the latest published frame. The slice is immutable
// once published and safe to read from any goroutine while the next
// frame computes.
func (s *Simulation) Views() []BubbleView {
	return *s.views.Load()
}

// Diagnostics is a point-in-time summary for hosts and tooling.
type Diagnostics struct {
	Frame      int64
	SimTime    float64
	LastStep   time.Duration
	ImpliedFPS float64
	Quality    string
	Tiers      telemetry.TierCounts
	Registered int
	MemoryMB   float64
	Thermal    string
}

// Diagnostics reports the current frame counters, tier census and
// controller readings.
func (s *Simulation) Diagnostics() Diagnostics {
	sample := s.controller.LastSample()
	thermal := "unknown"
	if sample.HasThermal {
		thermal = sample.Thermal.String()
	}
	memMB := 0.0
	if sample.HasMemory {
		memMB = sample.MemoryMB
	}

	return Diagnostics{
		Frame:      s.frame,
		SimTime:    s.simTime,
		LastStep:   s.lastStep,
		ImpliedFPS: s.controller.ImpliedFPS(),
		Quality:    s.profile.Quality.String(),
		Tiers:      s.tierCounts,
		Registered: len(s.entities),
		MemoryMB:   memMB,
		Thermal:    thermal,
	}
}

// Viewpoint returns the viewer pose in effect this frame.
func (s *Simulation) Viewpoint() systems.Viewpoint {
	return s.view
}

// PerfStats returns the rolling per-phase timing breakdown.
func (s *Simulation) PerfStats() telemetry.PerfStats {
	return s.perf.Stats()
}
