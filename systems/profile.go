package systems

import (
	"strings"

	"github.com/pthm-cable/bubblefield/config"
)

// Quality is the discrete quality ladder the adaptive controller walks.
// Each level maps to a fixed, pre-validated parameter bundle rather than
// continuously tuned values.
type Quality uint8

const (
	QualityLow Quality = iota
	QualityMedium
	QualityHigh
)

func (q Quality) String() string {
	switch q {
	case QualityLow:
		return "low"
	case QualityMedium:
		return "medium"
	case QualityHigh:
		return "high"
	default:
		return "unknown"
	}
}

// QualityFromString parses a quality name, defaulting to high.
func QualityFromString(s string) Quality {
	switch strings.ToLower(s) {
	case "low":
		return QualityLow
	case "medium":
		return QualityMedium
	default:
		return QualityHigh
	}
}

// Profile is the global quality/scheduling parameter set. Exactly one
// instance exists per simulation; it is written only by the adaptive
// controller and read by the scheduler and LOD selector.
type Profile struct {
	Quality Quality

	// Scheduler knobs
	MaxActive int
	BatchSize int
	Workers   int

	// LOD knobs
	RenderDistance float32
	FullRatio      float32
	ReducedRatio   float32
	LODInterval    int32 // frames between LOD passes

	// Motion knobs
	RichWaveform bool    // extra harmonics at full tier
	DampingScale float32 // >1 tightens motion under reduced quality
}

// ProfileFor returns the parameter bundle for a quality level, derived
// from the configured baseline (which is the high-quality bundle).
func ProfileFor(q Quality, cfg *config.Config) Profile {
	p := Profile{
		Quality:        q,
		MaxActive:      cfg.Population.MaxActive,
		BatchSize:      cfg.Scheduler.BatchSize,
		Workers:        cfg.Derived.Workers,
		RenderDistance: float32(cfg.LOD.RenderDistance),
		FullRatio:      float32(cfg.LOD.FullRatio),
		ReducedRatio:   float32(cfg.LOD.ReducedRatio),
		LODInterval:    int32(cfg.LOD.UpdateInterval),
		RichWaveform:   true,
		DampingScale:   1,
	}

	switch q {
	case QualityMedium:
		p.RenderDistance *= 0.75
		p.FullRatio *= 0.85
		p.ReducedRatio *= 0.85
		p.MaxActive = p.MaxActive * 3 / 4
		p.BatchSize = maxInt(16, p.BatchSize/2)
		p.LODInterval *= 2
		p.RichWaveform = false
		p.DampingScale = 1.15
	case QualityLow:
		p.RenderDistance *= 0.5
		p.FullRatio *= 0.7
		p.ReducedRatio *= 0.7
		p.MaxActive /= 2
		p.BatchSize = maxInt(8, p.BatchSize/4)
		p.Workers = maxInt(1, p.Workers/2)
		p.LODInterval *= 4
		p.RichWaveform = false
		p.DampingScale = 1.3
	}

	if p.MaxActive < 1 {
		p.MaxActive = 1
	}
	return p
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
