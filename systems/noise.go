package systems

import "github.com/ojrac/opensimplex-go"

// laneSpacing separates entity lanes in the noise field far enough that
// neighboring ids stay visually uncorrelated.
const laneSpacing = 37.61

// NoiseSource produces the small per-entity noise term fed into the
// oscillator. It is a pure function of entity id and simulation time,
// not stored random state, so results are identical regardless of batch
// decomposition or replay.
type NoiseSource struct {
	noise     opensimplex.Noise
	amplitude float64
	timeScale float64
}

// NewNoiseSource creates a noise source. Amplitude is the half-range of
// the returned values; timeScale compresses or stretches the field
// along the time axis.
func NewNoiseSource(seed int64, amplitude, timeScale float64) *NoiseSource {
	return &NoiseSource{
		noise:     opensimplex.New(seed),
		amplitude: amplitude,
		timeScale: timeScale,
	}
}

// Sample returns the noise value for an entity at simulation time t.
func (n *NoiseSource) Sample(id uint32, t float64) float32 {
	if n == nil || n.amplitude == 0 {
		return 0
	}
	return float32(n.noise.Eval2(float64(id)*laneSpacing, t*n.timeScale) * n.amplitude)
}
