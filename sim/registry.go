package sim

import (
	"github.com/pthm-cable/bubblefield/components"
	"github.com/pthm-cable/bubblefield/config"
	"github.com/pthm-cable/bubblefield/systems"
)

// Register queues a new bubble anchored at the given rest position and
// returns its id immediately. The entity materializes at the next frame
// boundary; until then its id is valid but queries return nothing.
func (s *Simulation) Register(pos components.Position) uint32 {
	s.pendingMu.Lock()
	id := s.nextID
	s.nextID++
	s.pendingSpawns = append(s.pendingSpawns, pendingSpawn{id: id, pos: pos})
	s.pendingMu.Unlock()
	return id
}

// Unregister queues removal of a bubble. The entity survives through
// the current frame's publish and disappears afterward; unknown ids are
// ignored.
func (s *Simulation) Unregister(id uint32) {
	s.pendingMu.Lock()
	s.pendingRemovals = append(s.pendingRemovals, id)
	s.pendingMu.Unlock()
}

// ApplyForce queues an impulse for the next frame. Forces accumulate
// when applied to the same bubble repeatedly within one frame, and are
// consumed by a single integration step.
func (s *Simulation) ApplyForce(id uint32, fx, fy, fz float32) {
	s.pendingMu.Lock()
	s.pendingForces = append(s.pendingForces, pendingForce{
		id: id,
		f:  components.Force{X: fx, Y: fy, Z: fz},
	})
	s.pendingMu.Unlock()
}

// Count returns the number of live bubbles.
func (s *Simulation) Count() int {
	return len(s.entities)
}

// spawn materializes a queued registration. Spring parameters come from
// config with safety floors applied, and each bubble gets its own
// frequency jitter and starting phases so the field never moves in
// lockstep at birth.
func (s *Simulation) spawn(id uint32, pos components.Position) {
	cfg := config.Cfg()

	spring := components.Spring{
		RestX:     pos.X,
		RestY:     pos.Y,
		RestZ:     pos.Z,
		Stiffness: float32(cfg.Physics.SpringStiffness),
		Damping:   float32(cfg.Physics.SpringDamping),
		Mass:      float32(cfg.Physics.Mass),
	}
	systems.ClampSpring(&spring)

	spread := float32(cfg.Wave.FreqModSpread)
	wave := components.Wave{
		Phase:       s.rng.Float32() * systems.TwoPi,
		BreathPhase: s.rng.Float32() * systems.TwoPi,
		FreqMod:     1 + (s.rng.Float32()*2-1)*spread,
		WaveAmp:     float32(cfg.Wave.WaveAmplitude),
		BreathAmp:   float32(cfg.Wave.BreathAmplitude),
	}

	vel := components.Velocity{}
	force := components.Force{}
	lod := components.LOD{Tier: components.TierFull, Visible: true}
	bubble := components.Bubble{ID: id}

	entity := s.mapper.NewEntity(&pos, &vel, &spring, &force, &wave, &lod, &bubble)
	s.entities[id] = entity
}

// applyQueuedRemovals drains deferred unregistrations. Runs after
// publish so a bubble removed mid-frame still contributes its final
// frame of output.
func (s *Simulation) applyQueuedRemovals() {
	s.pendingMu.Lock()
	removals := s.pendingRemovals
	s.pendingRemovals = nil
	s.pendingMu.Unlock()

	removed := 0
	for _, id := range removals {
		entity, ok := s.entities[id]
		if !ok {
			continue
		}
		if s.world.Alive(entity) {
			s.mapper.Remove(entity)
		}
		delete(s.entities, id)
		removed++
	}
	if removed > 0 {
		s.collector.RecordUnregistered(removed)
	}
}

// publish writes all intents back to the store in one single-threaded
// pass and swaps in the new view buffer. Wave displacement stays out of
// the spring state; it is composed here on top of the physical
// position.
func (s *Simulation) publish(n int) {
	p := s.parallel
	views := make([]BubbleView, n)

	for i := 0; i < n; i++ {
		snap := &p.snapshots[i]
		out := &p.intents[i]

		entity := snap.Entity
		if !s.world.Alive(entity) {
			continue
		}

		*s.posMap.Get(entity) = out.Pos
		*s.velMap.Get(entity) = out.Vel
		*s.waveMap.Get(entity) = out.Wave
		*s.forceMap.Get(entity) = components.Force{}

		views[i] = BubbleView{
			ID:    snap.ID,
			X:     out.Pos.X + out.DispX,
			Y:     out.Pos.Y + out.DispY,
			Z:     out.Pos.Z + out.DispZ,
			Scale: out.Scale,
			Phase: out.Sync,
			Tier:  snap.Tier,
		}
	}

	s.views.Store(&views)
}
