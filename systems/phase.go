package systems

import "github.com/pthm-cable/bubblefield/components"

// AdvancePhases accumulates both phases at their natural frequencies
// scaled by the entity's frequency modulation factor, then re-wraps.
func AdvancePhases(w *components.Wave, waveFreq, breathFreq, dt float32) {
	mod := w.FreqMod
	if mod <= 0 {
		mod = 1
	}
	w.Phase = WrapPhase(w.Phase + waveFreq*mod*dt)
	w.BreathPhase = WrapPhase(w.BreathPhase + breathFreq*mod*dt)
}

// SynchronizedPhase couples the wave phase toward the breathing phase
// with a weak feedback term:
//
//	diff  = wavePhase - breathPhase
//	force = sin(diff) * coupling
//	out   = lerp(wavePhase, breathPhase + force, sync)
//
// Small coupling (~0.3-0.5) and sync (~0.7-0.8) strengths give coherent
// but not mechanically identical motion. Out-of-range strengths are
// clamped to [0, 1]; at 0 the phases stay fully independent, at 1 they
// lock. This never fails, only degrades toward one of those extremes.
func SynchronizedPhase(wavePhase, breathPhase, coupling, sync float32) float32 {
	coupling = clamp01(coupling)
	sync = clamp01(sync)

	diff := wavePhase - breathPhase
	force := sin32(diff) * coupling

	return WrapPhase(lerp(wavePhase, breathPhase+force, sync))
}
