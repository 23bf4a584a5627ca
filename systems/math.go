// Package systems contains the physics, oscillator, and control systems
// for the bubble simulation. Everything here is plain math over plain
// buffers; ECS iteration and scheduling live in the sim package.
package systems

import "math"

// TwoPi is the phase wrap interval.
const TwoPi = 2 * math.Pi

// clamp01 clamps a float32 value to the [0, 1] range.
func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// lerp linearly interpolates between a and b.
func lerp(a, b, t float32) float32 {
	return a + (b-a)*t
}

// sin32 and cos32 wrap the float64 math package rather than a cheaper
// polynomial approximation; phase errors accumulate across thousands
// of steps.
func sin32(x float32) float32 {
	return float32(math.Sin(float64(x)))
}

func cos32(x float32) float32 {
	return float32(math.Cos(float64(x)))
}

func sqrt32(x float32) float32 {
	return float32(math.Sqrt(float64(x)))
}

// WrapPhase wraps a phase angle to [0, 2pi). Phases are re-wrapped after
// every accumulation to avoid unbounded growth and precision loss.
func WrapPhase(p float32) float32 {
	wrapped := float32(math.Mod(float64(p), TwoPi))
	if wrapped < 0 {
		wrapped += TwoPi
	}
	return wrapped
}
