package spatial

import "math"

// Rect is an axis-aligned rectangle positioned by its center.
type Rect struct {
	Center Vec2
	Dim    Vec2 // full width/height, mm
}

func (r Rect) HalfDim() Vec2 { return Vec2{r.Dim.X / 2, r.Dim.Y / 2} }

func (r Rect) Min() Vec2 {
	h := r.HalfDim()
	return Vec2{r.Center.X - h.X, r.Center.Y - h.Y}
}

func (r Rect) Max() Vec2 {
	h := r.HalfDim()
	return Vec2{r.Center.X + h.X, r.Center.Y + h.Y}
}

// At returns a copy of r translated so its center is at pos.
func (r Rect) At(pos Vec2) Rect { return Rect{Center: pos, Dim: r.Dim} }

// Corners returns the four corners in consistent winding order, starting
// top-left: used by the navigable grid to spread a mover's cell_weight
// contribution across the cells its footprint touches.
func (r Rect) Corners() [4]Vec2 {
	min, max := r.Min(), r.Max()
	return [4]Vec2{
		{min.X, min.Y},
		{max.X, min.Y},
		{max.X, max.Y},
		{min.X, max.Y},
	}
}

// Overlaps implements the separating-axis test for two axis-aligned
// rectangles: they overlap unless one is entirely to one side of the other
// on the X or Y axis.
func Overlaps(a, b Rect) bool {
	aMin, aMax := a.Min(), a.Max()
	bMin, bMax := b.Min(), b.Max()
	if aMax.X <= bMin.X+Epsilon || bMax.X <= aMin.X+Epsilon {
		return false
	}
	if aMax.Y <= bMin.Y+Epsilon || bMax.Y <= aMin.Y+Epsilon {
		return false
	}
	return true
}

// PenetrationDepth returns the minimum-translation vector that would move a
// out of overlap with b along the axis of least penetration, or the zero
// vector if they do not overlap. Direction points away from b.
func PenetrationDepth(a, b Rect) Vec2 {
	if !Overlaps(a, b) {
		return Vec2{}
	}
	aMin, aMax := a.Min(), a.Max()
	bMin, bMax := b.Min(), b.Max()

	overlapX := math.Min(aMax.X, bMax.X) - math.Max(aMin.X, bMin.X)
	overlapY := math.Min(aMax.Y, bMax.Y) - math.Max(aMin.Y, bMin.Y)

	dir := a.Center.Sub(b.Center)
	if overlapX < overlapY {
		sign := 1.0
		if dir.X < 0 {
			sign = -1.0
		}
		return Vec2{overlapX * sign, 0}
	}
	sign := 1.0
	if dir.Y < 0 {
		sign = -1.0
	}
	return Vec2{0, overlapY * sign}
}

// ContainsPoint is a point-in-rectangle test usable for both screen-space
// picking and world-space queries; callers convert coordinate spaces before
// calling in.
func (r Rect) ContainsPoint(p Vec2) bool {
	min, max := r.Min(), r.Max()
	return p.X >= min.X && p.X <= max.X && p.Y >= min.Y && p.Y <= max.Y
}

// Segment is a static line segment, used for floor borders.
type Segment struct {
	A, B Vec2
}

// IntersectsRect reports whether the segment crosses into or through rect:
// either endpoint lies inside it, or the segment properly crosses one of
// its four edges.
func (s Segment) IntersectsRect(r Rect) bool {
	min, max := r.Min(), r.Max()

	// Trivial accept: either endpoint inside the rect.
	if r.ContainsPoint(s.A) || r.ContainsPoint(s.B) {
		return true
	}

	edges := [4]Segment{
		{Vec2{min.X, min.Y}, Vec2{max.X, min.Y}},
		{Vec2{max.X, min.Y}, Vec2{max.X, max.Y}},
		{Vec2{max.X, max.Y}, Vec2{min.X, max.Y}},
		{Vec2{min.X, max.Y}, Vec2{min.X, min.Y}},
	}
	for _, e := range edges {
		if segmentsIntersect(s, e) {
			return true
		}
	}
	return false
}

func segmentsIntersect(p, q Segment) bool {
	d1 := cross(q.B.Sub(q.A), p.A.Sub(q.A))
	d2 := cross(q.B.Sub(q.A), p.B.Sub(q.A))
	d3 := cross(p.B.Sub(p.A), q.A.Sub(p.A))
	d4 := cross(p.B.Sub(p.A), q.B.Sub(p.A))

	if ((d1 > 0) != (d2 > 0)) && ((d3 > 0) != (d4 > 0)) {
		return true
	}
	return false
}

func cross(a, b Vec2) float64 { return a.X*b.Y - a.Y*b.X }
