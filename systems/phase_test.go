package systems

import (
	"math"
	"testing"

	"github.com/pthm-cable/bubblefield/components"
)

// ---------- phase accumulation ----------

func TestAdvancePhases_StaysWrapped(t *testing.T) {
	w := components.Wave{FreqMod: 1}
	dt := float32(1.0 / 72.0)

	for i := 0; i < 10000; i++ {
		AdvancePhases(&w, 2.0, 0.5, dt)
		if w.Phase < 0 || w.Phase >= TwoPi {
			t.Fatalf("wave phase %f out of [0, 2pi) at step %d", w.Phase, i)
		}
		if w.BreathPhase < 0 || w.BreathPhase >= TwoPi {
			t.Fatalf("breath phase %f out of [0, 2pi) at step %d", w.BreathPhase, i)
		}
	}
}

func TestAdvancePhases_FreqModScalesRate(t *testing.T) {
	fast := components.Wave{FreqMod: 1.2}
	slow := components.Wave{FreqMod: 0.8}
	dt := float32(1.0 / 72.0)

	AdvancePhases(&fast, 2.0, 0.5, dt)
	AdvancePhases(&slow, 2.0, 0.5, dt)

	if fast.Phase <= slow.Phase {
		t.Errorf("higher freq mod should advance further: %f vs %f", fast.Phase, slow.Phase)
	}
}

func TestAdvancePhases_ZeroFreqModTreatedAsUnit(t *testing.T) {
	w := components.Wave{FreqMod: 0}
	ref := components.Wave{FreqMod: 1}
	dt := float32(1.0 / 72.0)

	AdvancePhases(&w, 2.0, 0.5, dt)
	AdvancePhases(&ref, 2.0, 0.5, dt)

	if w.Phase != ref.Phase {
		t.Errorf("zero freq mod should behave like 1, got %f want %f", w.Phase, ref.Phase)
	}
}

// ---------- phase coupling ----------

func TestSynchronizedPhase_ZeroSyncKeepsWavePhase(t *testing.T) {
	out := SynchronizedPhase(1.0, 2.5, 0.4, 0)
	if math.Abs(float64(out-1.0)) > 1e-6 {
		t.Errorf("sync 0 should leave wave phase untouched, got %f", out)
	}
}

func TestSynchronizedPhase_EqualPhasesStayPut(t *testing.T) {
	out := SynchronizedPhase(1.5, 1.5, 0.4, 0.75)
	if math.Abs(float64(out-1.5)) > 1e-6 {
		t.Errorf("aligned phases should not move, got %f", out)
	}
}

func TestSynchronizedPhase_StrengthsClamped(t *testing.T) {
	// Out-of-range strengths must behave like their clamped values, not
	// overshoot or fail.
	over := SynchronizedPhase(1.0, 2.0, 5.0, 3.0)
	capped := SynchronizedPhase(1.0, 2.0, 1.0, 1.0)
	if math.Abs(float64(over-capped)) > 1e-6 {
		t.Errorf("over-range strengths should clamp: %f vs %f", over, capped)
	}

	under := SynchronizedPhase(1.0, 2.0, -1.0, -0.5)
	if math.Abs(float64(under-1.0)) > 1e-6 {
		t.Errorf("negative strengths should clamp to independence, got %f", under)
	}
}

func TestSynchronizedPhase_OppositePhasesConverge(t *testing.T) {
	// Two phases starting pi apart, fed back each step, must strictly
	// approach each other under moderate coupling.
	wave := float32(math.Pi)
	breath := float32(0)

	prevDiff := phaseDistance(wave, breath)
	for i := 0; i < 200; i++ {
		wave = SynchronizedPhase(wave, breath, 0.4, 0.8)
		diff := phaseDistance(wave, breath)
		if diff >= prevDiff && prevDiff > 1e-5 {
			t.Fatalf("phase distance did not shrink at step %d: %f -> %f", i, prevDiff, diff)
		}
		prevDiff = diff
	}

	if prevDiff > 0.01 {
		t.Errorf("phases did not converge, final distance %f", prevDiff)
	}
}

func TestSynchronizedPhase_TwoEntitiesConverge(t *testing.T) {
	// Two entities start with wave phases pi apart but share breathing
	// behavior. Coupled with feedback, their synchronized phases must
	// strictly approach each other.
	a := components.Wave{Phase: 0, BreathPhase: 1.0, FreqMod: 1}
	b := components.Wave{Phase: math.Pi, BreathPhase: 1.0, FreqMod: 1}
	dt := float32(1.0 / 72.0)

	prevDiff := phaseDistance(a.Phase, b.Phase)
	for i := 0; i < 500; i++ {
		AdvancePhases(&a, 2.0, 1.4, dt)
		AdvancePhases(&b, 2.0, 1.4, dt)
		a.Phase = SynchronizedPhase(a.Phase, a.BreathPhase, 0.5, 0.8)
		b.Phase = SynchronizedPhase(b.Phase, b.BreathPhase, 0.5, 0.8)

		diff := phaseDistance(a.Phase, b.Phase)
		if diff >= prevDiff && prevDiff > 1e-5 {
			t.Fatalf("phase distance did not shrink at step %d: %f -> %f", i, prevDiff, diff)
		}
		prevDiff = diff
	}

	if prevDiff > 0.01 {
		t.Errorf("entities did not converge, final distance %f", prevDiff)
	}
}

// phaseDistance is the shortest angular distance between two phases.
func phaseDistance(a, b float32) float32 {
	d := WrapPhase(a - b)
	if d > math.Pi {
		d = TwoPi - d
	}
	return d
}

// ---------- wrapping ----------

func TestWrapPhase_Ranges(t *testing.T) {
	cases := []struct {
		in, want float32
	}{
		{0, 0},
		{TwoPi, 0},
		{TwoPi + 1, 1},
		{-1, TwoPi - 1},
		{3 * TwoPi, 0},
	}
	for _, c := range cases {
		got := WrapPhase(c.in)
		if math.Abs(float64(got-c.want)) > 1e-5 {
			t.Errorf("WrapPhase(%f) = %f, want %f", c.in, got, c.want)
		}
	}
}
