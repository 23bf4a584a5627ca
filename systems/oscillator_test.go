package systems

import (
	"math"
	"testing"
)

// ---------- wave displacement ----------

func TestWaveDisplacement_ZeroAmplitudeIsStill(t *testing.T) {
	x, y, z := WaveDisplacement(1.3, 0, 0.2, 1.618, true)
	if x != 0 || y != 0 || z != 0 {
		t.Errorf("zero amplitude should produce no displacement, got (%f, %f, %f)", x, y, z)
	}
}

func TestWaveDisplacement_Deterministic(t *testing.T) {
	x1, y1, z1 := WaveDisplacement(2.1, 0.15, 0.05, 1.618, true)
	x2, y2, z2 := WaveDisplacement(2.1, 0.15, 0.05, 1.618, true)
	if x1 != x2 || y1 != y2 || z1 != z2 {
		t.Error("identical inputs produced different displacements")
	}
}

func TestWaveDisplacement_PlainHasNoDepthTerm(t *testing.T) {
	_, _, z := WaveDisplacement(2.1, 0.15, 0, 1.618, false)
	if z != 0 {
		t.Errorf("plain waveform should not displace depth axis, got %f", z)
	}
}

func TestWaveDisplacement_RichDiffersFromPlain(t *testing.T) {
	_, yPlain, _ := WaveDisplacement(2.1, 0.15, 0, 1.618, false)
	_, yRich, zRich := WaveDisplacement(2.1, 0.15, 0, 1.618, true)
	if yPlain == yRich && zRich == 0 {
		t.Error("rich waveform should add harmonic content")
	}
}

func TestWaveDisplacement_BoundedByAmplitude(t *testing.T) {
	// With |noise| <= 0.1 the composite of unit-bounded harmonics stays
	// within a small multiple of the amplitude.
	amp := float32(0.15)
	for p := float32(0); p < TwoPi; p += 0.01 {
		x, y, z := WaveDisplacement(p, amp, 0.1, 1.618, true)
		limit := float64(amp) * 3
		if math.Abs(float64(x)) > limit || math.Abs(float64(y)) > limit || math.Abs(float64(z)) > limit {
			t.Fatalf("displacement (%f, %f, %f) exceeded bound at phase %f", x, y, z, p)
		}
	}
}

// ---------- breathing ----------

func TestBreathScale_OscillatesAroundOne(t *testing.T) {
	amp := float32(0.1)
	min, max := float32(10), float32(-10)
	for p := float32(0); p < TwoPi; p += 0.01 {
		s := BreathScale(p, amp)
		if s < min {
			min = s
		}
		if s > max {
			max = s
		}
	}
	if math.Abs(float64(min-0.9)) > 0.01 || math.Abs(float64(max-1.1)) > 0.01 {
		t.Errorf("expected scale range [0.9, 1.1], got [%f, %f]", min, max)
	}
}

func TestBreathScale_NeverCollapses(t *testing.T) {
	for p := float32(0); p < TwoPi; p += 0.01 {
		if s := BreathScale(p, 5.0); s < 0.1 {
			t.Fatalf("scale %f below floor at phase %f", s, p)
		}
	}
}

// ---------- noise ----------

func TestNoiseSource_DeterministicPerEntity(t *testing.T) {
	a := NewNoiseSource(42, 0.05, 0.25)
	b := NewNoiseSource(42, 0.05, 0.25)

	if a.Sample(7, 1.5) != b.Sample(7, 1.5) {
		t.Error("same seed and inputs produced different noise")
	}
	if a.Sample(7, 1.5) == a.Sample(8, 1.5) {
		t.Error("different entity ids should land on different noise lanes")
	}
}

func TestNoiseSource_ZeroAmplitudeSilent(t *testing.T) {
	n := NewNoiseSource(42, 0, 0.25)
	if v := n.Sample(1, 2.0); v != 0 {
		t.Errorf("zero amplitude should return 0, got %f", v)
	}
}

func TestNoiseSource_Bounded(t *testing.T) {
	n := NewNoiseSource(42, 0.05, 0.25)
	for i := uint32(0); i < 50; i++ {
		for ts := 0.0; ts < 10; ts += 0.5 {
			v := math.Abs(float64(n.Sample(i, ts)))
			if v > 0.05 {
				t.Fatalf("noise %f exceeded amplitude for id %d t %f", v, i, ts)
			}
		}
	}
}
