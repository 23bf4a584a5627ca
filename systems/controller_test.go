package systems

import (
	"testing"
	"time"

	"github.com/pthm-cable/bubblefield/config"
)

func newTestController(t *testing.T) (*AdaptiveController, Profile) {
	t.Helper()
	config.MustInit("")
	cfg := config.Cfg()
	return NewAdaptiveController(cfg), ProfileFor(QualityHigh, cfg)
}

// fill saturates the rolling window with a constant frame time.
func fill(c *AdaptiveController, frame time.Duration) {
	for i := 0; i < config.Cfg().Performance.FrameWindow; i++ {
		c.Observe(frame)
	}
}

// ---------- regulation ----------

func TestRegulate_SlowFramesStepDown(t *testing.T) {
	c, p := newTestController(t)
	now := time.Now()

	// 20ms frames against a 72 fps target: implied 50 fps, well under
	// the low headroom band.
	fill(c, 20*time.Millisecond)

	if !c.Regulate(now, PlatformSample{}, &p) {
		t.Fatal("expected quality step down")
	}
	if p.Quality != QualityMedium {
		t.Errorf("expected medium quality, got %s", p.Quality)
	}
}

func TestRegulate_FastFramesStepUp(t *testing.T) {
	c, _ := newTestController(t)
	p := ProfileFor(QualityLow, config.Cfg())
	now := time.Now()

	fill(c, 5*time.Millisecond) // implied 200 fps

	if !c.Regulate(now, PlatformSample{}, &p) {
		t.Fatal("expected quality step up")
	}
	if p.Quality != QualityMedium {
		t.Errorf("expected medium quality, got %s", p.Quality)
	}
}

func TestRegulate_OnTargetHolds(t *testing.T) {
	c, p := newTestController(t)

	// Right at the 72 fps budget: inside the headroom band, no change.
	fill(c, time.Second/72)

	if c.Regulate(time.Now(), PlatformSample{}, &p) {
		t.Error("expected no change within headroom band")
	}
	if p.Quality != QualityHigh {
		t.Errorf("profile changed to %s", p.Quality)
	}
}

func TestRegulate_NoSamplesNoChange(t *testing.T) {
	c, p := newTestController(t)
	if c.Regulate(time.Now(), PlatformSample{}, &p) {
		t.Error("controller acted with an empty window")
	}
}

func TestRegulate_LadderBounds(t *testing.T) {
	c, _ := newTestController(t)
	p := ProfileFor(QualityLow, config.Cfg())

	fill(c, 50*time.Millisecond)
	if c.Regulate(time.Now(), PlatformSample{}, &p) {
		t.Error("quality stepped below the ladder floor")
	}

	c2, _ := newTestController(t)
	p2 := ProfileFor(QualityHigh, config.Cfg())
	fill(c2, time.Millisecond)
	if c2.Regulate(time.Now(), PlatformSample{}, &p2) {
		t.Error("quality stepped above the ladder ceiling")
	}
}

// ---------- cooldown ----------

func TestRegulate_CooldownRateLimits(t *testing.T) {
	c, p := newTestController(t)
	now := time.Now()

	fill(c, 20*time.Millisecond)
	if !c.Regulate(now, PlatformSample{}, &p) {
		t.Fatal("expected first step down")
	}

	// Window resets after a change; refill with slow frames and try
	// again inside the cooldown interval.
	fill(c, 20*time.Millisecond)
	if c.Regulate(now.Add(100*time.Millisecond), PlatformSample{}, &p) {
		t.Error("second change inside cooldown interval")
	}

	cooldown := time.Duration(config.Cfg().Performance.AdjustCooldown * float64(time.Second))
	if !c.Regulate(now.Add(cooldown+time.Millisecond), PlatformSample{}, &p) {
		t.Error("expected change after cooldown elapsed")
	}
	if p.Quality != QualityLow {
		t.Errorf("expected low quality after two steps, got %s", p.Quality)
	}
}

// ---------- thermal and memory lockouts ----------

func TestRegulate_ThrottledNeverRaises(t *testing.T) {
	c, _ := newTestController(t)
	p := ProfileFor(QualityLow, config.Cfg())
	throttled := PlatformSample{Thermal: ThermalThrottled, HasThermal: true}

	fill(c, time.Millisecond) // plenty of headroom
	if c.Regulate(time.Now(), throttled, &p) {
		t.Error("quality raised while thermally throttled")
	}
	if p.Quality != QualityLow {
		t.Errorf("profile changed to %s under throttle", p.Quality)
	}
}

func TestRegulate_ThrottledStillLowers(t *testing.T) {
	c, p := newTestController(t)
	throttled := PlatformSample{Thermal: ThermalThrottled, HasThermal: true}

	fill(c, 20*time.Millisecond)
	if !c.Regulate(time.Now(), throttled, &p) {
		t.Error("throttle must not block a step down")
	}
}

func TestRegulate_MemoryPressureForcesDown(t *testing.T) {
	c, p := newTestController(t)
	over := PlatformSample{
		MemoryMB:  config.Cfg().Performance.MemoryCeilingMB + 100,
		HasMemory: true,
	}

	// Fast frames would otherwise ask for a raise; memory pressure wins.
	fill(c, time.Millisecond)
	if !c.Regulate(time.Now(), over, &p) {
		t.Fatal("expected step down under memory pressure")
	}
	if p.Quality != QualityMedium {
		t.Errorf("expected medium quality, got %s", p.Quality)
	}
}

// ---------- window ----------

func TestImpliedFPS(t *testing.T) {
	c, _ := newTestController(t)

	if c.ImpliedFPS() != 0 {
		t.Error("empty window should imply 0 fps")
	}

	fill(c, 10*time.Millisecond)
	fps := c.ImpliedFPS()
	if fps < 99 || fps > 101 {
		t.Errorf("expected ~100 fps from 10ms frames, got %f", fps)
	}
}
