package main

import (
	"math"
	"math/cmplx"
	"math/rand"

	"github.com/pthm-cable/bubblefield/components"
	"github.com/pthm-cable/bubblefield/config"
	"github.com/pthm-cable/bubblefield/sim"
	"github.com/pthm-cable/bubblefield/systems"
)

// quietPlatform keeps the adaptive controller idle during evaluation
// runs, so quality changes cannot contaminate the measurement.
type quietPlatform struct{}

func (quietPlatform) Sample() systems.PlatformSample { return systems.PlatformSample{} }

const (
	evalEntities  = 150
	spawnHalf     = 5.0
	kickMagnitude = 40.0
	settleDist    = 0.01
)

// FitnessEvaluator runs headless simulations and scores a parameter
// vector by how quickly a kicked field settles and how coherent the
// coupled phases end up.
type FitnessEvaluator struct {
	params   *ParamVector
	maxTicks int
	seeds    []int64
	baseCfg  *config.Config

	lastSettleSec float64
	lastCoherence float64
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, maxTicks int, seeds []int64, baseCfg *config.Config) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:   params,
		maxTicks: maxTicks,
		seeds:    seeds,
		baseCfg:  baseCfg,
	}
}

// LastSettleSec returns the mean settle time of the most recent
// evaluation, in simulation seconds.
func (fe *FitnessEvaluator) LastSettleSec() float64 {
	return fe.lastSettleSec
}

// LastCoherence returns the mean phase coherence of the most recent
// evaluation, in [0, 1].
func (fe *FitnessEvaluator) LastCoherence() float64 {
	return fe.lastCoherence
}

// runResult holds the metrics from one simulation run.
type runResult struct {
	settleTicks int     // ticks until every bubble is within settleDist of rest
	peakDist    float64 // worst excursion from rest across the run
	coherence   float64 // phase alignment at the end of the run, [0, 1]
}

// Evaluate computes fitness for a parameter vector (lower = better).
// Settle time dominates; residual ringing and phase incoherence add
// penalties on top.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	cfg := fe.copyConfig()
	fe.params.ApplyToConfig(cfg, x)
	// Motion under measurement is pure spring response.
	cfg.Wave.WaveAmplitude = 0
	cfg.Wave.NoiseAmplitude = 0
	*config.Cfg() = *cfg

	var totalFitness, totalSettle, totalCoherence float64
	for _, seed := range fe.seeds {
		res := fe.run(seed)

		fitness := float64(res.settleTicks)
		if res.settleTicks >= fe.maxTicks {
			fitness *= 2 // never settled
		}
		fitness += res.peakDist * 100
		fitness += (1 - res.coherence) * 200

		totalFitness += fitness
		totalSettle += float64(res.settleTicks) * cfg.Physics.DT
		totalCoherence += res.coherence
	}

	n := float64(len(fe.seeds))
	fe.lastSettleSec = totalSettle / n
	fe.lastCoherence = totalCoherence / n
	return totalFitness / n
}

// run executes one headless simulation: spawn a field at rest, kick
// every bubble with a random impulse, and watch it come back.
func (fe *FitnessEvaluator) run(seed int64) runResult {
	s := sim.New(sim.Options{Seed: seed, Platform: quietPlatform{}})
	defer s.Shutdown()

	rng := rand.New(rand.NewSource(seed))
	rests := make(map[uint32]components.Position, evalEntities)
	for i := 0; i < evalEntities; i++ {
		pos := components.Position{
			X: (rng.Float32()*2 - 1) * spawnHalf,
			Y: (rng.Float32()*2 - 1) * spawnHalf,
			Z: (rng.Float32()*2 - 1) * spawnHalf,
		}
		rests[s.Register(pos)] = pos
	}

	dt := config.Cfg().Derived.DT32
	s.Step(dt)

	for id := range rests {
		theta := rng.Float64() * 2 * math.Pi
		phi := math.Acos(2*rng.Float64() - 1)
		s.ApplyForce(id,
			float32(kickMagnitude*math.Sin(phi)*math.Cos(theta)),
			float32(kickMagnitude*math.Sin(phi)*math.Sin(theta)),
			float32(kickMagnitude*math.Cos(phi)),
		)
	}

	res := runResult{settleTicks: fe.maxTicks}
	for tick := 0; tick < fe.maxTicks; tick++ {
		s.Step(dt)

		worst := 0.0
		for _, v := range s.Views() {
			rest := rests[v.ID]
			dx := float64(v.X - rest.X)
			dy := float64(v.Y - rest.Y)
			dz := float64(v.Z - rest.Z)
			if d := math.Sqrt(dx*dx + dy*dy + dz*dz); d > worst {
				worst = d
			}
		}
		if worst > res.peakDist {
			res.peakDist = worst
		}
		if worst < settleDist {
			res.settleTicks = tick
			break
		}
	}

	res.coherence = phaseCoherence(s.Views())
	return res
}

// phaseCoherence is the length of the mean phase vector: 1.0 when all
// phases align, 0 when they are uniformly scattered.
func phaseCoherence(views []sim.BubbleView) float64 {
	if len(views) == 0 {
		return 0
	}
	var sum complex128
	for _, v := range views {
		sum += cmplx.Exp(complex(0, float64(v.Phase)))
	}
	return cmplx.Abs(sum) / float64(len(views))
}

// copyConfig returns a mutable copy of the base config.
func (fe *FitnessEvaluator) copyConfig() *config.Config {
	cfg := *fe.baseCfg
	return &cfg
}
