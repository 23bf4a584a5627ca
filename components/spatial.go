// Package components defines ECS components for the bubble simulation.
package components

// Position represents an entity's world position.
// For bubbles this is the spring-damper state; wave displacement is
// composed on top of it at publish time and never written back.
type Position struct {
	X, Y, Z float32
}

// Velocity represents an entity's velocity.
type Velocity struct {
	X, Y, Z float32
}
