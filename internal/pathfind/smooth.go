package pathfind

import (
	"github.com/i4sim/engine/internal/navgrid"
	"github.com/i4sim/engine/internal/spatial"
)

// DefaultSegmentsPerCorner is the default sample count per smoothed corner.
const DefaultSegmentsPerCorner = 5

// Smooth turns a sequence of raw cell-center waypoints into a
// quadratic-Bezier-smoothed path consumed front-first by a mover.
//
// cells must already have its first and last elements replaced by the exact
// start and destination positions (the caller does this, since Smooth has
// no notion of "exact" vs "cell center" — see CellCenters below for the
// helper that builds that sequence).
func Smooth(waypoints []spatial.Vec2, segmentsPerCorner int) []spatial.Vec2 {
	if len(waypoints) <= 2 {
		out := make([]spatial.Vec2, len(waypoints))
		copy(out, waypoints)
		return out
	}
	if segmentsPerCorner < 2 {
		segmentsPerCorner = 2
	}

	result := make([]spatial.Vec2, 0, len(waypoints)*segmentsPerCorner)
	result = append(result, waypoints[0])

	for i := 1; i < len(waypoints)-1; i++ {
		prev, b, next := waypoints[i-1], waypoints[i], waypoints[i+1]
		a := prev.Midpoint(b)
		c := b.Midpoint(next)
		for s := 0; s < segmentsPerCorner; s++ {
			t := float64(s) / float64(segmentsPerCorner-1)
			result = append(result, quadraticBezier(a, b, c, t))
		}
	}

	result = append(result, waypoints[len(waypoints)-1])
	return result
}

func quadraticBezier(a, b, c spatial.Vec2, t float64) spatial.Vec2 {
	u := 1 - t
	term1 := a.Scale(u * u)
	term2 := b.Scale(2 * u * t)
	term3 := c.Scale(t * t)
	return term1.Add(term2).Add(term3)
}

// CellCenters walks a cell path (as returned by FindPath) into world-space
// waypoints, replacing the first and last cell centers with the caller's
// exact start/destination positions.
func CellCenters(grid *navgrid.Grid, path []navgrid.Cell, start, destination spatial.Vec2) []spatial.Vec2 {
	if len(path) == 0 {
		return nil
	}
	out := make([]spatial.Vec2, len(path))
	for i, c := range path {
		out[i] = grid.CellCenter(c)
	}
	out[0] = start
	out[len(out)-1] = destination
	return out
}
