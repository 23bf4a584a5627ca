package components

// Spring holds the spring-damper parameters pulling an entity toward
// its rest position. Mass and Stiffness must stay strictly positive;
// writers clamp them, they are never stored as zero or negative.
type Spring struct {
	RestX, RestY, RestZ float32 // anchor the entity is pulled toward
	Stiffness           float32 // spring constant k, > 0
	Damping             float32 // damping coefficient c, >= 0
	Mass                float32 // > 0
}

// Force accumulates external impulses (touch, controller contact).
// It is consumed and zeroed by the next physics step, so forces act
// as instantaneous impulses rather than persistent biases.
type Force struct {
	X, Y, Z float32
}
