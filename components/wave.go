package components

// Wave holds the oscillatory state driving displacement and breathing.
// Both phases advance at their own natural frequency scaled by FreqMod
// and are re-wrapped to [0, 2pi) after every accumulation.
type Wave struct {
	Phase       float32 // wave phase, radians in [0, 2pi)
	BreathPhase float32 // breathing phase, radians in [0, 2pi)
	FreqMod     float32 // multiplicative frequency modulation, centered at 1.0
	WaveAmp     float32 // wave displacement amplitude
	BreathAmp   float32 // breathing scale amplitude
}
