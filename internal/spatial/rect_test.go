package spatial

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOverlaps(t *testing.T) {
	a := Rect{Center: Vec2{0, 0}, Dim: Vec2{10, 10}}
	b := Rect{Center: Vec2{5, 0}, Dim: Vec2{10, 10}}
	c := Rect{Center: Vec2{20, 0}, Dim: Vec2{10, 10}}

	assert.True(t, Overlaps(a, b))
	assert.False(t, Overlaps(a, c))
}

func TestPenetrationDepthZeroWhenDisjoint(t *testing.T) {
	a := Rect{Center: Vec2{0, 0}, Dim: Vec2{10, 10}}
	c := Rect{Center: Vec2{20, 0}, Dim: Vec2{10, 10}}
	assert.Equal(t, Vec2{}, PenetrationDepth(a, c))
}

func TestPenetrationDepthPointsAwayFromB(t *testing.T) {
	a := Rect{Center: Vec2{0, 0}, Dim: Vec2{10, 10}}
	b := Rect{Center: Vec2{8, 0}, Dim: Vec2{10, 10}}
	d := PenetrationDepth(a, b)
	assert.Less(t, d.X, 0.0)
}

func TestContainsPoint(t *testing.T) {
	r := Rect{Center: Vec2{0, 0}, Dim: Vec2{10, 10}}
	assert.True(t, r.ContainsPoint(Vec2{4, 4}))
	assert.False(t, r.ContainsPoint(Vec2{6, 6}))
}

func TestSegmentIntersectsRect(t *testing.T) {
	r := Rect{Center: Vec2{0, 0}, Dim: Vec2{10, 10}}
	through := Segment{A: Vec2{-10, 0}, B: Vec2{10, 0}}
	miss := Segment{A: Vec2{-10, 20}, B: Vec2{10, 20}}

	assert.True(t, through.IntersectsRect(r))
	assert.False(t, miss.IntersectsRect(r))
}

func TestCorners(t *testing.T) {
	r := Rect{Center: Vec2{0, 0}, Dim: Vec2{2, 2}}
	c := r.Corners()
	assert.Equal(t, Vec2{-1, -1}, c[0])
	assert.Equal(t, Vec2{1, 1}, c[2])
}
