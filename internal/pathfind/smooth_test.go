package pathfind

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i4sim/engine/internal/spatial"
)

func TestSmoothShortPathUnchanged(t *testing.T) {
	wp := []spatial.Vec2{{X: 0, Y: 0}, {X: 5, Y: 0}}
	out := Smooth(wp, DefaultSegmentsPerCorner)
	assert.Equal(t, wp, out)
}

func TestSmoothStartsAndEndsAtExactPoints(t *testing.T) {
	wp := []spatial.Vec2{{X: 0, Y: 0}, {X: 5, Y: 0}, {X: 5, Y: 5}, {X: 10, Y: 5}}
	out := Smooth(wp, DefaultSegmentsPerCorner)
	require.NotEmpty(t, out)
	assert.Equal(t, wp[0], out[0])
	assert.Equal(t, wp[len(wp)-1], out[len(out)-1])
}

func TestSmoothProducesSegmentsPerCornerSamples(t *testing.T) {
	wp := []spatial.Vec2{{X: 0, Y: 0}, {X: 5, Y: 0}, {X: 10, Y: 0}}
	out := Smooth(wp, 5)
	// 1 interior corner * 5 samples, plus exact start (sample t=0 duplicates
	// start endpoint conceptually but is still emitted) - so total length is
	// 1 (start) + 5 (corner samples) + 1 (end) = 7.
	assert.Len(t, out, 7)
}

func TestQuadraticBezierEndpoints(t *testing.T) {
	a := spatial.Vec2{X: 0, Y: 0}
	b := spatial.Vec2{X: 5, Y: 5}
	c := spatial.Vec2{X: 10, Y: 0}
	assert.Equal(t, a, quadraticBezier(a, b, c, 0))
	assert.Equal(t, c, quadraticBezier(a, b, c, 1))
}
