// Package navgrid implements the uniform cell grid over the factory floor:
// cell lookup, saturating congestion weights ("heatmap"), and the
// corner-contribution update used once per mover per tick.
package navgrid

import (
	"math"

	"github.com/i4sim/engine/internal/spatial"
)

// Cell is a grid coordinate.
type Cell struct {
	X, Y int
}

// Grid is a uniform grid over the floor. Its key set defines which cells are
// navigable; a cell absent from weights is non-navigable.
type Grid struct {
	CellSize spatial.Vec2
	Origin   spatial.Vec2
	weights  map[Cell]uint
}

// New builds a grid whose navigable cells are exactly those passed in cells,
// all starting at weight 0.
func New(cellSize, origin spatial.Vec2, cells []Cell) *Grid {
	g := &Grid{CellSize: cellSize, Origin: origin, weights: make(map[Cell]uint, len(cells))}
	for _, c := range cells {
		g.weights[c] = 0
	}
	return g
}

// NewRect builds a fully navigable rectangular grid of width x height cells.
func NewRect(cellSize, origin spatial.Vec2, width, height int) *Grid {
	cells := make([]Cell, 0, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			cells = append(cells, Cell{x, y})
		}
	}
	return New(cellSize, origin, cells)
}

// CellOf maps a world point to its containing cell.
func (g *Grid) CellOf(p spatial.Vec2) Cell {
	rel := p.Sub(g.Origin)
	x := int(math.Floor(rel.X / g.CellSize.X))
	y := int(math.Floor(rel.Y / g.CellSize.Y))
	return Cell{x, y}
}

// CellCenter returns the world-space center of a cell.
func (g *Grid) CellCenter(c Cell) spatial.Vec2 {
	return spatial.Vec2{
		X: g.Origin.X + (float64(c.X)+0.5)*g.CellSize.X,
		Y: g.Origin.Y + (float64(c.Y)+0.5)*g.CellSize.Y,
	}
}

// Contains reports whether c is a navigable cell.
func (g *Grid) Contains(c Cell) bool {
	_, ok := g.weights[c]
	return ok
}

// Weight returns the current congestion weight of c (0 if c is unknown).
func (g *Grid) Weight(c Cell) uint {
	return g.weights[c]
}

// AddWeight increases the weight of c by delta, if c is navigable.
func (g *Grid) AddWeight(c Cell, delta uint) {
	if _, ok := g.weights[c]; ok {
		g.weights[c] += delta
	}
}

// SubWeight decreases the weight of c by delta, saturating at zero.
func (g *Grid) SubWeight(c Cell, delta uint) {
	w, ok := g.weights[c]
	if !ok {
		return
	}
	if delta >= w {
		g.weights[c] = 0
		return
	}
	g.weights[c] = w - delta
}

// ClearWeights resets every navigable cell's weight to zero.
func (g *Grid) ClearWeights() {
	for c := range g.weights {
		g.weights[c] = 0
	}
}

// Cells returns every navigable cell. Order is unspecified.
func (g *Grid) Cells() []Cell {
	out := make([]Cell, 0, len(g.weights))
	for c := range g.weights {
		out = append(out, c)
	}
	return out
}

// Diagonal returns the length of the cell diagonal, used by the pathfinder's
// replan-distance trigger.
func (g *Grid) Diagonal() float64 {
	return g.CellSize.Length()
}

// ApplyFootprint spreads a mover's cell_weight contribution across the grid
// cells containing its four footprint corners, cell_weight/4 each. It is
// the caller's responsibility to call RemoveFootprint with the previous
// footprint before calling this again for the same mover.
func (g *Grid) ApplyFootprint(rect spatial.Rect, cellWeight uint) {
	share := cellWeight / 4
	for _, corner := range rect.Corners() {
		g.AddWeight(g.CellOf(corner), share)
	}
}

// RemoveFootprint is the inverse of ApplyFootprint.
func (g *Grid) RemoveFootprint(rect spatial.Rect, cellWeight uint) {
	share := cellWeight / 4
	for _, corner := range rect.Corners() {
		g.SubWeight(g.CellOf(corner), share)
	}
}
