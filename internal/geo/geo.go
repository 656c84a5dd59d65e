package geo

import "math"

// Position is a point in world space. The game client reports
// single-precision coordinates, so the compact float32 representation is kept
// on the type and arithmetic is carried out in float64.
type Position struct {
	X float32 `json:"x"`
	Y float32 `json:"y"`
	Z float32 `json:"z"`
}

// Direction is one of the eight travel headings the input surface can
// express. Diagonals are driven by holding two primitives at once.
type Direction string

const (
	DirForward       Direction = "forward"
	DirBackward      Direction = "backward"
	DirLeft          Direction = "left"
	DirRight         Direction = "right"
	DirForwardLeft   Direction = "forwardLeft"
	DirForwardRight  Direction = "forwardRight"
	DirBackwardLeft  Direction = "backwardLeft"
	DirBackwardRight Direction = "backwardRight"
)

// sectorOrder lists the eight headings clockwise starting at bearing zero.
var sectorOrder = [8]Direction{
	DirForward,
	DirForwardRight,
	DirRight,
	DirBackwardRight,
	DirBackward,
	DirBackwardLeft,
	DirLeft,
	DirForwardLeft,
}

// Distance returns the straight-line distance between two positions.
func Distance(a, b Position) float64 {
	return math.Sqrt(DistanceSquared(a, b))
}

// DistanceSquared returns the squared distance between two positions. Callers
// comparing against a threshold should prefer it over Distance to skip the
// square root.
func DistanceSquared(a, b Position) float64 {
	dx := float64(b.X) - float64(a.X)
	dy := float64(b.Y) - float64(a.Y)
	dz := float64(b.Z) - float64(a.Z)
	return dx*dx + dy*dy + dz*dz
}

// HorizontalDistance returns the distance between two positions projected
// onto the X-Z plane. Height noise from slopes and jumps must not break
// dedup or progress checks, so those go through this instead of Distance.
func HorizontalDistance(a, b Position) float64 {
	dx := float64(b.X) - float64(a.X)
	dz := float64(b.Z) - float64(a.Z)
	return math.Hypot(dx, dz)
}

// BearingDegrees returns the compass bearing from one position to another in
// [0,360), measured clockwise from +Z.
func BearingDegrees(from, to Position) float64 {
	dx := float64(to.X) - float64(from.X)
	dz := float64(to.Z) - float64(from.Z)
	deg := math.Atan2(dx, dz) * 180 / math.Pi
	if deg < 0 {
		deg += 360
	}
	return deg
}

// DirectionTo buckets the bearing between two positions into one of the
// eight headings. Sectors are 45 degrees wide and centred on the compass
// points, so bearings in [337.5,360) and [0,22.5) both map to forward.
func DirectionTo(from, to Position) Direction {
	deg := BearingDegrees(from, to)
	sector := int((deg+22.5)/45) % 8
	return sectorOrder[sector]
}

// NormalizeAngleDelta reduces an angle difference to [-180,180] so its sign
// gives the shortest turn direction.
func NormalizeAngleDelta(angle float64) float64 {
	for angle > 180 {
		angle -= 360
	}
	for angle < -180 {
		angle += 360
	}
	return angle
}
