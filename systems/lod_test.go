package systems

import (
	"testing"

	"github.com/pthm-cable/bubblefield/components"
	"github.com/pthm-cable/bubblefield/config"
)

func testProfile(t *testing.T, q Quality) Profile {
	t.Helper()
	config.MustInit("")
	return ProfileFor(q, config.Cfg())
}

// ---------- tier assignment ----------

func TestAssignTier_Bands(t *testing.T) {
	p := testProfile(t, QualityHigh)
	rd := p.RenderDistance

	cases := []struct {
		dist float32
		want uint8
	}{
		{0, components.TierFull},
		{rd * p.FullRatio * 0.99, components.TierFull},
		{rd * p.FullRatio * 1.01, components.TierReduced},
		{rd * p.ReducedRatio * 0.99, components.TierReduced},
		{rd * p.ReducedRatio * 1.01, components.TierMinimal},
		{rd * 0.99, components.TierMinimal},
		{rd * 1.01, components.TierCulled},
	}
	for _, c := range cases {
		if got := AssignTier(c.dist, true, &p); got != c.want {
			t.Errorf("AssignTier(%f) = %d, want %d", c.dist, got, c.want)
		}
	}
}

func TestAssignTier_MonotoneInDistance(t *testing.T) {
	p := testProfile(t, QualityHigh)

	prev := uint8(components.TierFull)
	for d := float32(0); d < p.RenderDistance*1.2; d += 0.05 {
		tier := AssignTier(d, true, &p)
		if tier < prev {
			t.Fatalf("tier improved with distance: %d -> %d at %f", prev, tier, d)
		}
		prev = tier
	}
}

func TestAssignTier_InvisibleAlwaysCulled(t *testing.T) {
	p := testProfile(t, QualityHigh)
	if got := AssignTier(0.5, false, &p); got != components.TierCulled {
		t.Errorf("invisible entity got tier %d, want culled", got)
	}
}

func TestAssignTier_LowQualityShrinksBands(t *testing.T) {
	high := testProfile(t, QualityHigh)
	low := testProfile(t, QualityLow)

	// Same distance, tighter thresholds at low quality.
	d := high.RenderDistance * high.FullRatio * 0.9
	if AssignTier(d, true, &high) != components.TierFull {
		t.Fatal("expected full tier at high quality")
	}
	if AssignTier(d, true, &low) == components.TierFull {
		t.Error("low quality should not keep full tier at this distance")
	}
}

// ---------- visibility ----------

func TestVisibility_Distance(t *testing.T) {
	view := NewViewpoint(0, 0, 0, 0, 0, 1)
	dist, _ := Visibility(3, 4, 0, view, -1)
	if dist < 4.999 || dist > 5.001 {
		t.Errorf("expected distance 5, got %f", dist)
	}
}

func TestVisibility_ConeCulling(t *testing.T) {
	view := NewViewpoint(0, 0, 0, 0, 0, 1)
	viewCos := float32(0.5) // 60 degree half-angle

	if _, visible := Visibility(0, 0, 10, view, viewCos); !visible {
		t.Error("point straight ahead should be visible")
	}
	if _, visible := Visibility(0, 0, -10, view, viewCos); visible {
		t.Error("point behind the viewer should be culled")
	}
}

func TestVisibility_ZeroDirectionOmnidirectional(t *testing.T) {
	view := NewViewpoint(0, 0, 0, 0, 0, 0)
	if _, visible := Visibility(0, 0, -10, view, 0.5); !visible {
		t.Error("omnidirectional viewer should see everything")
	}
}

func TestVisibility_AtViewerAlwaysVisible(t *testing.T) {
	view := NewViewpoint(1, 2, 3, 0, 0, 1)
	if _, visible := Visibility(1, 2, 3, view, 0.99); !visible {
		t.Error("point at the viewer position should be visible")
	}
}

func TestNewViewpoint_NormalizesDirection(t *testing.T) {
	view := NewViewpoint(0, 0, 0, 0, 0, 10)
	if view.DirZ < 0.999 || view.DirZ > 1.001 {
		t.Errorf("expected normalized direction, got %f", view.DirZ)
	}
}
