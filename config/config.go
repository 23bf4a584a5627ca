// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"fmt"
	"math"
	"os"
	"runtime"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	Physics     PhysicsConfig     `yaml:"physics"`
	Wave        WaveConfig        `yaml:"wave"`
	Coupling    CouplingConfig    `yaml:"coupling"`
	Scheduler   SchedulerConfig   `yaml:"scheduler"`
	LOD         LODConfig         `yaml:"lod"`
	Performance PerformanceConfig `yaml:"performance"`
	Population  PopulationConfig  `yaml:"population"`
	Telemetry   TelemetryConfig   `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// PhysicsConfig holds spring-damper defaults applied at registration.
type PhysicsConfig struct {
	DT              float64 `yaml:"dt"`               // seconds per step
	SpringStiffness float64 `yaml:"spring_stiffness"` // default spring constant k
	SpringDamping   float64 `yaml:"spring_damping"`   // default damping coefficient c
	Mass            float64 `yaml:"mass"`             // default entity mass
}

// WaveConfig holds oscillator parameters.
type WaveConfig struct {
	Frequency       float64 `yaml:"frequency"`        // wave phase advance, rad/s
	BreathFrequency float64 `yaml:"breath_frequency"` // breathing phase advance, rad/s
	WaveAmplitude   float64 `yaml:"wave_amplitude"`
	BreathAmplitude float64 `yaml:"breath_amplitude"`
	HarmonicRatio   float64 `yaml:"harmonic_ratio"` // 0 = golden ratio
	FreqModSpread   float64 `yaml:"freq_mod_spread"` // per-entity FreqMod jitter around 1.0
	NoiseAmplitude  float64 `yaml:"noise_amplitude"` // magnitude of the (1+noise) term
	NoiseScale      float64 `yaml:"noise_scale"`     // time scaling fed to the noise field
}

// CouplingConfig holds the weak phase-coupling strengths.
// Values outside [0, 1] are clamped at use, never rejected.
type CouplingConfig struct {
	Strength     float64 `yaml:"strength"`      // coupling force gain, ~0.3-0.5
	SyncStrength float64 `yaml:"sync_strength"` // lerp weight toward the coupled phase, ~0.7-0.8
}

// SchedulerConfig holds batch execution parameters.
type SchedulerConfig struct {
	BatchSize         int `yaml:"batch_size"`         // entities per work chunk
	Workers           int `yaml:"workers"`            // 0 = GOMAXPROCS
	ParallelThreshold int `yaml:"parallel_threshold"` // below this, run single-threaded
}

// LODConfig holds level-of-detail selection parameters.
type LODConfig struct {
	RenderDistance float64 `yaml:"render_distance"` // cull beyond this
	FullRatio      float64 `yaml:"full_ratio"`      // <= ratio*renderDistance -> full tier
	ReducedRatio   float64 `yaml:"reduced_ratio"`   // <= ratio*renderDistance -> reduced tier
	UpdateInterval int     `yaml:"update_interval"` // frames between LOD passes
	SubBatches     int     `yaml:"sub_batches"`     // rotating fraction reassigned per pass
	ViewHalfAngle  float64 `yaml:"view_half_angle"` // view cone half-angle, degrees
}

// PerformanceConfig holds the adaptive controller parameters.
type PerformanceConfig struct {
	TargetFPS       float64 `yaml:"target_fps"`
	LowHeadroom     float64 `yaml:"low_headroom"`      // below this fraction of target -> decrease quality
	HighHeadroom    float64 `yaml:"high_headroom"`     // above this fraction of target -> increase quality
	AdjustCooldown  float64 `yaml:"adjust_cooldown"`   // seconds between quality changes
	FrameWindow     int     `yaml:"frame_window"`      // frame-time samples averaged per decision
	MemoryCeilingMB float64 `yaml:"memory_ceiling_mb"` // above this, quality may only decrease
	StartQuality    string  `yaml:"start_quality"`     // low, medium, high
}

// PopulationConfig holds entity buffer parameters.
type PopulationConfig struct {
	Initial   int `yaml:"initial"`    // entities spawned by the CLI runner
	Capacity  int `yaml:"capacity"`   // initial slot capacity; grows by doubling
	MaxActive int `yaml:"max_active"` // hard ceiling on simulated entities
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	PerfWindow  int     `yaml:"perf_window"`  // ticks per perf rolling window
	StatsWindow float64 `yaml:"stats_window"` // seconds per stats window
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	DT32          float32 // Physics.DT as float32
	TargetFrame   float64 // seconds per frame at TargetFPS
	HarmonicRatio float32 // HarmonicRatio with golden-ratio fallback
	Workers       int     // Scheduler.Workers resolved against GOMAXPROCS
	ViewCos       float32 // cosine of the view cone half-angle
}

// goldenRatio is the default harmonic ratio; an irrational ratio keeps
// the composed waveform from repeating visibly.
const goldenRatio = 1.6180339887

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults
// if path is empty. Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.computeDerived()

	return cfg, nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	if c.Physics.DT <= 0 {
		c.Physics.DT = 1.0 / 72.0
	}
	c.Derived.DT32 = float32(c.Physics.DT)

	if c.Performance.TargetFPS <= 0 {
		c.Performance.TargetFPS = 72
	}
	c.Derived.TargetFrame = 1.0 / c.Performance.TargetFPS

	hr := c.Wave.HarmonicRatio
	if hr <= 0 {
		hr = goldenRatio
	}
	c.Derived.HarmonicRatio = float32(hr)

	workers := c.Scheduler.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	c.Derived.Workers = workers

	half := c.LOD.ViewHalfAngle
	if half <= 0 || half >= 180 {
		half = 180 // no cone restriction
	}
	c.Derived.ViewCos = float32(math.Cos(half * math.Pi / 180))

	if c.LOD.SubBatches <= 0 {
		c.LOD.SubBatches = 1
	}
	if c.LOD.UpdateInterval <= 0 {
		c.LOD.UpdateInterval = 1
	}
	if c.Scheduler.BatchSize <= 0 {
		c.Scheduler.BatchSize = 64
	}
	if c.Performance.FrameWindow <= 0 {
		c.Performance.FrameWindow = 60
	}
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
