package main

import (
	"flag"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"github.com/pthm-cable/bubblefield/components"
	"github.com/pthm-cable/bubblefield/config"
	"github.com/pthm-cable/bubblefield/sim"
	"github.com/pthm-cable/bubblefield/systems"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	logStats := flag.Bool("log-stats", false, "Output window stats via slog")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	maxTicks := flag.Int("max-ticks", 0, "Stop after N ticks (0 = unlimited)")
	entities := flag.Int("entities", 0, "Initial bubble count (0 = use config)")
	spread := flag.Float64("spread", 10, "Half-extent of the spawn volume")

	flag.Parse()

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	s := sim.New(sim.Options{
		Seed:      rngSeed,
		OutputDir: *outputDir,
		LogStats:  *logStats,
	})
	defer s.Shutdown()

	// Scatter the initial population around the origin. Rest positions
	// double as spawn positions, so the field starts settled.
	count := *entities
	if count <= 0 {
		count = cfg.Population.Initial
	}
	rng := rand.New(rand.NewSource(rngSeed))
	half := float32(*spread)
	for i := 0; i < count; i++ {
		s.Register(components.Position{
			X: (rng.Float32()*2 - 1) * half,
			Y: (rng.Float32()*2 - 1) * half,
			Z: (rng.Float32()*2 - 1) * half,
		})
	}
	s.SetViewpoint(systems.NewViewpoint(0, 0, -half*1.5, 0, 0, 1))

	slog.Info("starting simulation",
		"seed", rngSeed,
		"entities", count,
		"max_ticks", *maxTicks,
		"dt", cfg.Physics.DT,
	)

	dt := cfg.Derived.DT32
	for tick := 0; ; tick++ {
		s.Step(dt)

		if *maxTicks > 0 && tick+1 >= *maxTicks {
			d := s.Diagnostics()
			slog.Info("max ticks reached",
				"tick", tick+1,
				"sim_time", d.SimTime,
				"quality", d.Quality,
				"active", d.Tiers.Active,
			)
			return
		}
	}
}
