package sim

import (
	"runtime"

	"github.com/pthm-cable/bubblefield/systems"
)

// PlatformReader reports platform health signals to the adaptive
// controller. Hosts with real thermal APIs supply their own
// implementation; the default reads Go runtime memory only.
type PlatformReader interface {
	Sample() systems.PlatformSample
}

// RuntimePlatform samples heap usage from the Go runtime. It has no
// thermal source, so the controller treats thermal state as unknown.
type RuntimePlatform struct{}

func (RuntimePlatform) Sample() systems.PlatformSample {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return systems.PlatformSample{
		MemoryMB:  float64(m.HeapAlloc) / (1024 * 1024),
		HasMemory: true,
	}
}

// StaticPlatform reports fixed readings. Useful for hosts that poll
// their platform APIs on their own cadence and push the latest values.
type StaticPlatform struct {
	Memory   float64
	Thermal  systems.ThermalState
	HasTherm bool
}

func (p StaticPlatform) Sample() systems.PlatformSample {
	return systems.PlatformSample{
		MemoryMB:   p.Memory,
		HasMemory:  true,
		Thermal:    p.Thermal,
		HasThermal: p.HasTherm,
	}
}
