package systems

// WaveDisplacement computes the oscillatory displacement for one entity
// from its synchronized phase. The result is composed additively on top
// of the spring-damper position at publish time; it never feeds back
// into the physics state.
//
// Vertical is the primary axis; a weaker 0.7-frequency term sways the
// horizontal axis. When rich is set, a harmonic at harmonicRatio and a
// sin*cos cross term are layered in. The default harmonic ratio is the
// golden ratio, so the composite never lines up into a visible repeat.
func WaveDisplacement(phase, amp, noise, harmonicRatio float32, rich bool) (x, y, z float32) {
	n := 1 + noise

	y = sin32(phase) * n
	x = sin32(phase*0.7) * 0.3 * n

	if rich {
		z = cos32(phase*harmonicRatio) * 0.5 * n
		y += sin32(phase) * cos32(phase*0.5)
	}

	return x * amp, y * amp, z * amp
}

// BreathScale converts the breathing phase into a scale factor around
// 1.0. The floor keeps a bubble from collapsing through zero even with
// an out-of-range amplitude.
func BreathScale(breathPhase, amp float32) float32 {
	s := 1 + amp*sin32(breathPhase)
	if s < 0.1 {
		s = 0.1
	}
	return s
}
