package systems

import "github.com/pthm-cable/bubblefield/components"

// Viewpoint describes the viewer for LOD selection: a position and a
// normalized look direction.
type Viewpoint struct {
	X, Y, Z          float32
	DirX, DirY, DirZ float32
}

// NewViewpoint builds a viewpoint, normalizing the look direction. A
// zero direction degrades to an omnidirectional viewer.
func NewViewpoint(x, y, z, dx, dy, dz float32) Viewpoint {
	mag := sqrt32(dx*dx + dy*dy + dz*dz)
	if mag > 0 {
		dx /= mag
		dy /= mag
		dz /= mag
	}
	return Viewpoint{X: x, Y: y, Z: z, DirX: dx, DirY: dy, DirZ: dz}
}

// Visibility returns the distance from the viewpoint to a position and
// whether the position falls inside the view cone. viewCos is the
// cosine of the cone's half-angle; -1 disables the cone test.
func Visibility(px, py, pz float32, view Viewpoint, viewCos float32) (dist float32, visible bool) {
	dx := px - view.X
	dy := py - view.Y
	dz := pz - view.Z
	dist = sqrt32(dx*dx + dy*dy + dz*dz)

	// At or very near the viewer, direction is meaningless.
	if dist < 1e-4 {
		return dist, true
	}
	if view.DirX == 0 && view.DirY == 0 && view.DirZ == 0 {
		return dist, true
	}

	dot := (dx*view.DirX + dy*view.DirY + dz*view.DirZ) / dist
	return dist, dot >= viewCos
}

// AssignTier maps a distance and visibility result through the active
// profile's thresholds. The selector holds no policy of its own: tiers
// are purely a function of the supplied thresholds, and the assignment
// is monotone non-improving in distance.
func AssignTier(dist float32, visible bool, p *Profile) uint8 {
	if !visible || dist > p.RenderDistance {
		return components.TierCulled
	}
	if dist <= p.RenderDistance*p.FullRatio {
		return components.TierFull
	}
	if dist <= p.RenderDistance*p.ReducedRatio {
		return components.TierReduced
	}
	return components.TierMinimal
}
