package sim

import (
	"sync"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/bubblefield/components"
	"github.com/pthm-cable/bubblefield/config"
	"github.com/pthm-cable/bubblefield/systems"
	"github.com/pthm-cable/bubblefield/telemetry"
)

// entitySnapshot captures read-only state for parallel processing. The
// read phase is fully separated from the write phase, so no entity can
// observe another entity's half-updated state within a frame.
type entitySnapshot struct {
	Entity ecs.Entity
	ID     uint32
	Pos    components.Position
	Vel    components.Velocity
	Spring components.Spring
	Force  components.Force
	Wave   components.Wave
	Tier   uint8
}

// intent captures computed outputs to apply after the barrier.
type intent struct {
	Pos   components.Position
	Vel   components.Velocity
	Wave  components.Wave
	Sync  float32 // synchronized phase exposed to consumers
	DispX float32 // wave displacement, composed at publish
	DispY float32
	DispZ float32
	Scale float32 // breathing scale
}

// workChunk represents a batch of entities for one worker.
type workChunk struct {
	start, end int
	dt         float32
}

// parallelState holds resources for the fork-join step: snapshot and
// intent buffers plus a persistent worker pool.
type parallelState struct {
	snapshots  []entitySnapshot
	intents    []intent
	numWorkers int

	workChan chan workChunk // sends batches to workers
	doneChan chan struct{}  // workers signal batch completion
	stopChan chan struct{}  // signals workers to exit
	wg       sync.WaitGroup
	running  bool
}

func newParallelState(workers int) *parallelState {
	if workers < 1 {
		workers = 1
	}
	return &parallelState{
		numWorkers: workers,
		snapshots:  make([]entitySnapshot, 0, 512),
		intents:    make([]intent, 0, 512),
	}
}

// startWorkers launches persistent worker goroutines.
func (p *parallelState) startWorkers(s *Simulation) {
	if p.running {
		return
	}

	p.workChan = make(chan workChunk, p.numWorkers)
	p.doneChan = make(chan struct{}, p.numWorkers)
	p.stopChan = make(chan struct{})
	p.running = true

	for i := 0; i < p.numWorkers; i++ {
		p.wg.Add(1)
		go p.worker(s)
	}
}

// stopWorkers signals all workers to exit and waits for them, so no
// batch is ever abandoned mid-flight.
func (p *parallelState) stopWorkers() {
	if !p.running {
		return
	}

	close(p.stopChan)
	p.wg.Wait()
	close(p.workChan)
	close(p.doneChan)
	p.running = false
}

// ensureWorkers resizes the pool when the controller retunes the worker
// count. Safe between frames only; the caller holds no batches in
// flight at that point.
func (p *parallelState) ensureWorkers(s *Simulation, workers int) {
	if workers < 1 {
		workers = 1
	}
	if workers == p.numWorkers {
		return
	}
	wasRunning := p.running
	p.stopWorkers()
	p.numWorkers = workers
	if wasRunning {
		p.startWorkers(s)
	}
}

// worker processes batches until stopped.
func (p *parallelState) worker(s *Simulation) {
	defer p.wg.Done()

	for {
		select {
		case <-p.stopChan:
			return
		case chunk, ok := <-p.workChan:
			if !ok {
				return
			}
			s.computeChunk(chunk.start, chunk.end, chunk.dt)
			p.doneChan <- struct{}{}
		}
	}
}

// buildSnapshots assembles read-only inputs for every active entity,
// honoring the profile's active cap, and refreshes the per-tier counts.
// Culled entities are counted but not stepped.
func (s *Simulation) buildSnapshots() int {
	p := s.parallel
	p.snapshots = p.snapshots[:0]
	counts := telemetry.TierCounts{}

	query := s.filter.Query()
	for query.Next() {
		entity := query.Entity()
		pos, vel, spr, force, wave, lod, bubble := query.Get()

		switch lod.Tier {
		case components.TierFull:
			counts.Full++
		case components.TierReduced:
			counts.Reduced++
		case components.TierMinimal:
			counts.Minimal++
		default:
			counts.Culled++
			continue
		}

		if len(p.snapshots) >= s.profile.MaxActive {
			continue
		}
		counts.Active++

		p.snapshots = append(p.snapshots, entitySnapshot{
			Entity: entity,
			ID:     bubble.ID,
			Pos:    *pos,
			Vel:    *vel,
			Spring: *spr,
			Force:  *force,
			Wave:   *wave,
			Tier:   lod.Tier,
		})
	}

	s.tierCounts = counts

	n := len(p.snapshots)
	if cap(p.intents) < n {
		p.intents = make([]intent, n)
	}
	p.intents = p.intents[:n]
	return n
}

// compute runs the integrate phase, serial below the parallel threshold
// and fork-join above it. Per-entity computation is side-effect-free
// with respect to other entities, so any batch decomposition produces
// identical results.
func (s *Simulation) compute(n int, dt float32) {
	if n == 0 {
		return
	}

	cfg := config.Cfg()
	if n < cfg.Scheduler.ParallelThreshold || s.profile.Workers <= 1 {
		s.computeChunk(0, n, dt)
		return
	}

	p := s.parallel
	if !p.running {
		p.startWorkers(s)
	}

	batch := s.profile.BatchSize
	if batch < 1 {
		batch = 1
	}
	chunks := (n + batch - 1) / batch

	// Dispatch from a separate goroutine so the barrier loop below can
	// drain completions regardless of how many batches there are.
	go func() {
		for start := 0; start < n; start += batch {
			end := start + batch
			if end > n {
				end = n
			}
			p.workChan <- workChunk{start: start, end: end, dt: dt}
		}
	}()

	for i := 0; i < chunks; i++ {
		<-p.doneChan
	}
}

// computeChunk processes one batch of entities. Pure math over the
// snapshot buffers; no shared state is touched.
func (s *Simulation) computeChunk(i0, i1 int, dt float32) {
	cfg := config.Cfg()
	waveFreq := float32(cfg.Wave.Frequency)
	breathFreq := float32(cfg.Wave.BreathFrequency)
	coupling := float32(cfg.Coupling.Strength)
	syncStrength := float32(cfg.Coupling.SyncStrength)
	harmonicRatio := cfg.Derived.HarmonicRatio
	noiseTime := s.simTime

	p := s.parallel
	for i := i0; i < i1; i++ {
		snap := &p.snapshots[i]
		out := &p.intents[i]

		// Phase coupling: both phases advance at their natural rates,
		// then the synchronized phase feeds back as the wave phase so
		// the population drifts into coherence instead of diverging.
		wave := snap.Wave
		systems.AdvancePhases(&wave, waveFreq, breathFreq, dt)
		sync := systems.SynchronizedPhase(wave.Phase, wave.BreathPhase, coupling, syncStrength)
		wave.Phase = sync

		// Spring-damper motion toward the rest position; the consumed
		// force is zeroed at publish.
		pos := snap.Pos
		vel := snap.Vel
		systems.StepSpring(&pos, &vel, snap.Spring, snap.Force, s.profile.DampingScale, dt)

		// Oscillatory displacement, composed additively on top of the
		// spring output. Tier gates the waveform richness.
		amp := wave.WaveAmp
		rich := false
		switch snap.Tier {
		case components.TierFull:
			rich = s.profile.RichWaveform
		case components.TierReduced:
			amp *= 0.6
		default:
			amp = 0 // minimal tier keeps breathing only
		}

		noise := s.noise.Sample(snap.ID, noiseTime)
		dx, dy, dz := systems.WaveDisplacement(sync, amp, noise, harmonicRatio, rich)

		out.Pos = pos
		out.Vel = vel
		out.Wave = wave
		out.Sync = sync
		out.DispX = dx
		out.DispY = dy
		out.DispZ = dz
		out.Scale = systems.BreathScale(wave.BreathPhase, wave.BreathAmp)
	}
}
