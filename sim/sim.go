// Package sim orchestrates the bubble simulation: entity registration,
// the per-frame fork-join step, LOD selection, adaptive quality control,
// and telemetry. It owns the entity state store; callers drive it with
// Step from any host loop.
package sim

import (
	"log/slog"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/bubblefield/components"
	"github.com/pthm-cable/bubblefield/config"
	"github.com/pthm-cable/bubblefield/systems"
	"github.com/pthm-cable/bubblefield/telemetry"
)

// Options configures a new simulation.
type Options struct {
	Seed      int64
	Platform  PlatformReader // nil = default runtime sampler
	OutputDir string         // empty = CSV output disabled
	LogStats  bool
}

// Simulation holds the complete simulation state.
type Simulation struct {
	world *ecs.World
	rng   *rand.Rand

	mapper *ecs.Map7[
		components.Position,
		components.Velocity,
		components.Spring,
		components.Force,
		components.Wave,
		components.LOD,
		components.Bubble,
	]
	filter *ecs.Filter7[
		components.Position,
		components.Velocity,
		components.Spring,
		components.Force,
		components.Wave,
		components.LOD,
		components.Bubble,
	]

	// Individual component mappers for lookups
	posMap   *ecs.Map1[components.Position]
	velMap   *ecs.Map1[components.Velocity]
	sprMap   *ecs.Map1[components.Spring]
	forceMap *ecs.Map1[components.Force]
	waveMap  *ecs.Map1[components.Wave]
	lodMap   *ecs.Map1[components.LOD]

	// Public id -> entity
	entities map[uint32]ecs.Entity
	nextID   uint32

	profile    systems.Profile
	controller *systems.AdaptiveController
	noise      *systems.NoiseSource
	platform   PlatformReader

	parallel *parallelState

	perf      *telemetry.PerfCollector
	collector *telemetry.Collector
	output    *telemetry.OutputManager
	logStats  bool

	// Queued external calls, applied at the next frame boundary
	pendingMu       sync.Mutex
	pendingSpawns   []pendingSpawn
	pendingRemovals []uint32
	pendingForces   []pendingForce
	pendingView     *systems.Viewpoint
	pendingConfig   *config.Config

	view    systems.Viewpoint
	viewCos float32

	frame     int64
	simTime   float64
	lastStep  time.Duration
	lodCursor int32

	tierCounts telemetry.TierCounts

	views    atomic.Pointer[[]BubbleView]
	shutdown bool
}

type pendingSpawn struct {
	id  uint32
	pos components.Position
}

type pendingForce struct {
	id uint32
	f  components.Force
}

// New creates a simulation from the loaded config.
func New(opts Options) *Simulation {
	cfg := config.Cfg()
	world := ecs.NewWorld()

	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	platform := opts.Platform
	if platform == nil {
		platform = RuntimePlatform{}
	}

	s := &Simulation{
		world: world,
		rng:   rand.New(rand.NewSource(seed)),
		mapper: ecs.NewMap7[
			components.Position,
			components.Velocity,
			components.Spring,
			components.Force,
			components.Wave,
			components.LOD,
			components.Bubble,
		](world),
		filter: ecs.NewFilter7[
			components.Position,
			components.Velocity,
			components.Spring,
			components.Force,
			components.Wave,
			components.LOD,
			components.Bubble,
		](world),
		posMap:     ecs.NewMap1[components.Position](world),
		velMap:     ecs.NewMap1[components.Velocity](world),
		sprMap:     ecs.NewMap1[components.Spring](world),
		forceMap:   ecs.NewMap1[components.Force](world),
		waveMap:    ecs.NewMap1[components.Wave](world),
		lodMap:     ecs.NewMap1[components.LOD](world),
		entities:   make(map[uint32]ecs.Entity, cfg.Population.Capacity),
		nextID:     1,
		profile:    systems.ProfileFor(systems.QualityFromString(cfg.Performance.StartQuality), cfg),
		controller: systems.NewAdaptiveController(cfg),
		noise:      systems.NewNoiseSource(seed, cfg.Wave.NoiseAmplitude, cfg.Wave.NoiseScale),
		platform:   platform,
		perf:       telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow),
		collector:  telemetry.NewCollector(cfg.Telemetry.StatsWindow),
		logStats:   opts.LogStats,
		view:       systems.NewViewpoint(0, 0, 0, 0, 0, 0),
		viewCos:    cfg.Derived.ViewCos,
	}
	s.parallel = newParallelState(s.profile.Workers)

	if opts.OutputDir != "" {
		om, err := telemetry.NewOutputManager(opts.OutputDir)
		if err != nil {
			slog.Error("output disabled", "error", err)
		} else {
			s.output = om
			if err := om.WriteConfig(cfg); err != nil {
				slog.Error("writing config snapshot", "error", err)
			}
		}
	}

	empty := make([]BubbleView, 0)
	s.views.Store(&empty)

	return s
}

// Profile returns a copy of the active quality/scheduling profile.
func (s *Simulation) Profile() systems.Profile {
	return s.profile
}

// SetViewpoint queues a viewer update for the next frame boundary.
func (s *Simulation) SetViewpoint(v systems.Viewpoint) {
	s.pendingMu.Lock()
	s.pendingView = &v
	s.pendingMu.Unlock()
}

// ApplyConfig queues a live configuration update for the next frame
// boundary. Only tunables are swapped; entity state is untouched.
func (s *Simulation) ApplyConfig(cfg *config.Config) {
	s.pendingMu.Lock()
	s.pendingConfig = cfg
	s.pendingMu.Unlock()
}

// Step advances the simulation by dt seconds. Frames are strictly
// sequential: the next step never starts before this one's publish
// completes.
func (s *Simulation) Step(dt float32) {
	if s.shutdown {
		return
	}
	start := time.Now()
	s.perf.StartTick()

	// Control: apply queued external calls, then regulate quality.
	s.perf.StartPhase(telemetry.PhaseControl)
	s.applyQueued()
	if s.lastStep > 0 {
		s.controller.Observe(s.lastStep)
	}
	sample := s.platform.Sample()
	if s.controller.Regulate(time.Now(), sample, &s.profile) {
		s.collector.RecordQualityChange()
		s.parallel.ensureWorkers(s, s.profile.Workers)
		slog.Info("quality adjusted",
			"quality", s.profile.Quality.String(),
			"implied_fps", s.controller.ImpliedFPS(),
			"render_distance", s.profile.RenderDistance,
			"max_active", s.profile.MaxActive,
			"batch_size", s.profile.BatchSize,
			"workers", s.profile.Workers,
		)
	}

	// Snapshot: assemble read-only inputs for every active entity.
	s.perf.StartPhase(telemetry.PhaseSnapshot)
	n := s.buildSnapshots()

	// Integrate: fork-join over batches; entities never see each other.
	s.perf.StartPhase(telemetry.PhaseIntegrate)
	s.compute(n, dt)

	// Publish: barrier has passed, write all outputs back at once.
	s.perf.StartPhase(telemetry.PhasePublish)
	s.publish(n)
	s.applyQueuedRemovals()

	// LOD reassignment on its slower cadence.
	s.perf.StartPhase(telemetry.PhaseLOD)
	s.updateLOD()

	s.perf.StartPhase(telemetry.PhaseTelemetry)
	s.frame++
	s.simTime += float64(dt)
	s.flushTelemetry()

	s.perf.EndTick()
	s.lastStep = time.Since(start)
	s.collector.RecordStep(s.lastStep)
}

// applyQueued drains queued registrations, forces, viewpoint and config
// updates at the frame boundary. Unregistrations are deferred until
// after this frame's publish.
func (s *Simulation) applyQueued() {
	s.pendingMu.Lock()
	spawns := s.pendingSpawns
	forces := s.pendingForces
	view := s.pendingView
	cfg := s.pendingConfig
	s.pendingSpawns = nil
	s.pendingForces = nil
	s.pendingView = nil
	s.pendingConfig = nil
	s.pendingMu.Unlock()

	if cfg != nil {
		s.applyConfigNow(cfg)
	}
	if view != nil {
		s.view = *view
	}

	for _, sp := range spawns {
		s.spawn(sp.id, sp.pos)
	}
	if len(spawns) > 0 {
		s.collector.RecordRegistered(len(spawns))
	}

	for _, pf := range forces {
		entity, ok := s.entities[pf.id]
		if !ok || !s.world.Alive(entity) {
			continue
		}
		f := s.forceMap.Get(entity)
		if f == nil {
			continue
		}
		f.X += pf.f.X
		f.Y += pf.f.Y
		f.Z += pf.f.Z
	}
}

// applyConfigNow swaps live tunables from a freshly loaded config. The
// profile is rebuilt at the current quality level so controller state
// carries over.
func (s *Simulation) applyConfigNow(cfg *config.Config) {
	// Workers are idle between frames, so swapping the shared config
	// here is race-free.
	*config.Cfg() = *cfg
	s.viewCos = cfg.Derived.ViewCos
	s.controller = systems.NewAdaptiveController(cfg)
	s.profile = systems.ProfileFor(s.profile.Quality, cfg)
	s.parallel.ensureWorkers(s, s.profile.Workers)
	slog.Info("config applied", "quality", s.profile.Quality.String())
}

// updateLOD reassigns quality tiers in rotating sub-batches on a slower
// cadence than physics. Tier selection is purely the profile's
// thresholds applied to distance and the view cone.
func (s *Simulation) updateLOD() {
	interval := s.profile.LODInterval
	if interval <= 0 {
		interval = 1
	}
	if s.frame%int64(interval) != 0 {
		return
	}

	cfg := config.Cfg()
	subBatches := int32(cfg.LOD.SubBatches)
	if subBatches < 1 {
		subBatches = 1
	}
	cursor := s.lodCursor
	s.lodCursor = (s.lodCursor + 1) % subBatches

	var idx int32
	query := s.filter.Query()
	for query.Next() {
		pos, _, _, _, _, lod, _ := query.Get()
		which := idx % subBatches
		idx++
		if which != cursor {
			continue
		}

		dist, visible := systems.Visibility(pos.X, pos.Y, pos.Z, s.view, s.viewCos)
		lod.Distance = dist
		lod.Visible = visible
		lod.Tier = systems.AssignTier(dist, visible, &s.profile)
	}
}

// flushTelemetry emits window stats and perf records on their cadence.
func (s *Simulation) flushTelemetry() {
	if !s.collector.ShouldFlush(s.simTime) {
		return
	}

	sample := s.controller.LastSample()
	thermal := "unknown"
	if sample.HasThermal {
		thermal = sample.Thermal.String()
	}
	memMB := 0.0
	if sample.HasMemory {
		memMB = sample.MemoryMB
	}

	stats := s.collector.Flush(s.frame, s.simTime, s.tierCounts,
		s.profile.Quality.String(), memMB, thermal)
	if s.logStats {
		stats.LogStats()
	}
	if s.output != nil {
		if err := s.output.WriteStats(stats); err != nil {
			slog.Error("writing stats", "error", err)
		}
		if err := s.output.WritePerf(s.perf.Stats().ToCSV(s.frame)); err != nil {
			slog.Error("writing perf", "error", err)
		}
	}
}

// Shutdown drives outstanding batch work to completion, then releases
// workers and output files. The simulation cannot be stepped afterward.
func (s *Simulation) Shutdown() {
	if s.shutdown {
		return
	}
	s.shutdown = true
	s.parallel.stopWorkers()
	if s.output != nil {
		if err := s.output.Close(); err != nil {
			slog.Error("closing output", "error", err)
		}
	}
}
