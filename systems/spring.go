package systems

import "github.com/pthm-cable/bubblefield/components"

// Floors for physical constants. Non-positive mass or stiffness would
// blow up the integrator, so violating inputs are clamped here and at
// registration, never stored or propagated.
const (
	MinMass      = 1e-3
	MinStiffness = 1e-3
)

// ClampSpring enforces the positivity invariants on a spring record.
func ClampSpring(s *components.Spring) {
	if s.Mass < MinMass {
		s.Mass = MinMass
	}
	if s.Stiffness < MinStiffness {
		s.Stiffness = MinStiffness
	}
	if s.Damping < 0 {
		s.Damping = 0
	}
}

// StepSpring advances position and velocity one step toward the rest
// position under spring, damping, and accumulated external force:
//
//	F = -k*(x - rest) - c*v + applied
//	a = F/m; v' = v + a*dt; x' = x + v'*dt
//
// Semi-implicit integration (velocity first) keeps the system stable
// under repeated small steps. dampingScale tightens the damping curve
// under reduced quality. The caller is responsible for zeroing the
// consumed force afterward.
func StepSpring(
	pos *components.Position,
	vel *components.Velocity,
	spr components.Spring,
	force components.Force,
	dampingScale float32,
	dt float32,
) {
	mass := spr.Mass
	if mass < MinMass {
		mass = MinMass
	}
	k := spr.Stiffness
	if k < MinStiffness {
		k = MinStiffness
	}
	c := spr.Damping * dampingScale
	if c < 0 {
		c = 0
	}

	invMass := 1 / mass

	ax := (-k*(pos.X-spr.RestX) - c*vel.X + force.X) * invMass
	ay := (-k*(pos.Y-spr.RestY) - c*vel.Y + force.Y) * invMass
	az := (-k*(pos.Z-spr.RestZ) - c*vel.Z + force.Z) * invMass

	vel.X += ax * dt
	vel.Y += ay * dt
	vel.Z += az * dt

	pos.X += vel.X * dt
	pos.Y += vel.Y * dt
	pos.Z += vel.Z * dt
}
