package components

// Quality tiers, ordered from best to worst. Tier comparisons rely on
// this ordering: a higher value never renders more detail.
const (
	TierFull    uint8 = 0 // all harmonics, every-frame updates
	TierReduced uint8 = 1 // primary waveform only
	TierMinimal uint8 = 2 // breathing only
	TierCulled  uint8 = 3 // beyond render distance or outside the view cone
)

// LOD holds the per-entity quality assignment. Recomputed on a slower
// cadence than physics, in rotating sub-batches.
type LOD struct {
	Tier     uint8
	Distance float32 // last computed distance to the viewer
	Visible  bool
}

// Bubble carries the stable public identity handed out at registration.
type Bubble struct {
	ID uint32
}
