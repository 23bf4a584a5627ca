// Package main provides CMA-ES search for spring and coupling
// parameters that settle quickly without ringing.
package main

import (
	"github.com/pthm-cable/bubblefield/config"
)

// ParamSpec defines a single tunable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value
}

// ParamVector holds the set of all tunable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard set of tunable parameters.
// Mass is locked: stiffness and damping are expressed relative to it,
// so freeing all three only adds a redundant search axis.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			{Name: "spring_stiffness", Path: "physics.spring_stiffness", Min: 5.0, Max: 80.0, Default: 25.0},
			{Name: "spring_damping", Path: "physics.spring_damping", Min: 1.0, Max: 30.0, Default: 8.0},
			{Name: "coupling_strength", Path: "coupling.strength", Min: 0.05, Max: 1.0, Default: 0.4},
			{Name: "sync_strength", Path: "coupling.sync_strength", Min: 0.3, Max: 1.0, Default: 0.75},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		val := v[i]
		if val < spec.Min {
			val = spec.Min
		}
		if val > spec.Max {
			val = spec.Max
		}
		clamped[i] = val
	}
	return clamped
}

// ApplyToConfig applies parameter values to a Config struct.
// Order must match Specs order.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	clamped := pv.Clamp(values)

	cfg.Physics.SpringStiffness = clamped[0]
	cfg.Physics.SpringDamping = clamped[1]
	cfg.Coupling.Strength = clamped[2]
	cfg.Coupling.SyncStrength = clamped[3]
}

// ExtractFromConfig extracts current parameter values from a Config.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	return []float64{
		cfg.Physics.SpringStiffness,
		cfg.Physics.SpringDamping,
		cfg.Coupling.Strength,
		cfg.Coupling.SyncStrength,
	}
}
