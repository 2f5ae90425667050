package math

import "math"

// Orient returns twice the signed area of triangle (a, b, p).
// Positive when p lies to the left of a->b, negative to the right,
// zero when collinear. Exact for integral coordinates below 2^25.
func Orient(a, b, p Vec2) float64 {
	return (b.X-a.X)*(p.Y-a.Y) - (b.Y-a.Y)*(p.X-a.X)
}

// TriangleArea2 returns twice the signed area of triangle (a, b, c).
func TriangleArea2(a, b, c Vec2) float64 {
	return Orient(a, b, c)
}

// PointInTriangle reports whether p lies inside or on the boundary of
// triangle (a, b, c). Either winding is accepted.
func PointInTriangle(p, a, b, c Vec2) bool {
	d1 := Orient(a, b, p)
	d2 := Orient(b, c, p)
	d3 := Orient(c, a, p)

	hasNeg := d1 < 0 || d2 < 0 || d3 < 0
	hasPos := d1 > 0 || d2 > 0 || d3 > 0
	return !(hasNeg && hasPos)
}

// PointOnSegment reports whether p lies on the segment a-b, endpoints included.
func PointOnSegment(p, a, b Vec2) bool {
	if Orient(a, b, p) != 0 {
		return false
	}
	return p.X >= math.Min(a.X, b.X) && p.X <= math.Max(a.X, b.X) &&
		p.Y >= math.Min(a.Y, b.Y) && p.Y <= math.Max(a.Y, b.Y)
}

// Bounds is an axis-aligned bounding box.
type Bounds struct {
	Min, Max Vec2
}

// EmptyBounds returns a box that contains nothing; Extend grows it.
func EmptyBounds() Bounds {
	return Bounds{
		Min: Vec2{math.Inf(1), math.Inf(1)},
		Max: Vec2{math.Inf(-1), math.Inf(-1)},
	}
}

// Extend returns the box grown to contain p.
func (b Bounds) Extend(p Vec2) Bounds {
	b.Min.X = min(b.Min.X, p.X)
	b.Min.Y = min(b.Min.Y, p.Y)
	b.Max.X = max(b.Max.X, p.X)
	b.Max.Y = max(b.Max.Y, p.Y)
	return b
}

// Empty reports whether no point has been added.
func (b Bounds) Empty() bool {
	return b.Min.X > b.Max.X || b.Min.Y > b.Max.Y
}

// Contains reports whether p lies inside or on the box.
func (b Bounds) Contains(p Vec2) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X && p.Y >= b.Min.Y && p.Y <= b.Max.Y
}

// Center returns the midpoint of the box.
func (b Bounds) Center() Vec2 {
	return Vec2{(b.Min.X + b.Max.X) / 2, (b.Min.Y + b.Max.Y) / 2}
}
