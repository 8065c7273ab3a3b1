package navgrid

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/i4sim/engine/internal/spatial"
)

func TestCellOf(t *testing.T) {
	g := NewRect(spatial.Vec2{X: 10, Y: 10}, spatial.Vec2{}, 10, 10)
	assert.Equal(t, Cell{0, 0}, g.CellOf(spatial.Vec2{X: 5, Y: 5}))
	assert.Equal(t, Cell{1, 0}, g.CellOf(spatial.Vec2{X: 15, Y: 5}))
	assert.Equal(t, Cell{-1, 0}, g.CellOf(spatial.Vec2{X: -5, Y: 5}))
}

func TestWeightSaturatesAtZero(t *testing.T) {
	g := NewRect(spatial.Vec2{X: 10, Y: 10}, spatial.Vec2{}, 5, 5)
	c := Cell{1, 1}
	g.AddWeight(c, 3)
	assert.EqualValues(t, 3, g.Weight(c))
	g.SubWeight(c, 10)
	assert.EqualValues(t, 0, g.Weight(c))
}

func TestUnknownCellNotNavigable(t *testing.T) {
	g := NewRect(spatial.Vec2{X: 10, Y: 10}, spatial.Vec2{}, 2, 2)
	assert.False(t, g.Contains(Cell{5, 5}))
	assert.EqualValues(t, 0, g.Weight(Cell{5, 5}))
	g.AddWeight(Cell{5, 5}, 4)
	assert.EqualValues(t, 0, g.Weight(Cell{5, 5}))
}

func TestApplyRemoveFootprintRoundTrips(t *testing.T) {
	g := NewRect(spatial.Vec2{X: 10, Y: 10}, spatial.Vec2{}, 10, 10)
	rect := spatial.Rect{Center: spatial.Vec2{X: 25, Y: 25}, Dim: spatial.Vec2{X: 4, Y: 4}}

	g.ApplyFootprint(rect, 8)
	total := uint(0)
	for _, c := range g.Cells() {
		total += g.Weight(c)
	}
	assert.EqualValues(t, 8, total)

	g.RemoveFootprint(rect, 8)
	for _, c := range g.Cells() {
		assert.Zero(t, g.Weight(c))
	}
}

func TestClearWeights(t *testing.T) {
	g := NewRect(spatial.Vec2{X: 10, Y: 10}, spatial.Vec2{}, 3, 3)
	g.AddWeight(Cell{0, 0}, 5)
	g.ClearWeights()
	assert.Zero(t, g.Weight(Cell{0, 0}))
}
