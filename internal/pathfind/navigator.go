package pathfind

import (
	"github.com/i4sim/engine/internal/navgrid"
	"github.com/i4sim/engine/internal/spatial"
)

// HeatmapThreshold and HeatmapThrottleTicks are the default tunables for the
// heatmap replan variant.
const (
	HeatmapThreshold     uint = 3
	HeatmapThrottleTicks      = 10
)

// ReplanState is the small piece of per-agent state the heatmap variant
// needs: a throttle counter so the congestion check only runs once every
// HeatmapThrottleTicks ticks once the agent has a path.
type ReplanState struct {
	ticksSinceCheck int
}

// Navigator composes the graph, grid and smoothing config used to turn a
// start/goal pair into a consumable path, and the replan-trigger policy.
type Navigator struct {
	Graph             *Graph
	Grid              *navgrid.Grid
	SegmentsPerCorner int
}

// NewNavigator builds a Navigator over grid's current navigable cell set.
func NewNavigator(grid *navgrid.Grid) *Navigator {
	return &Navigator{
		Graph:             BuildGraph(grid),
		Grid:              grid,
		SegmentsPerCorner: DefaultSegmentsPerCorner,
	}
}

// FindSmoothPath runs A* from start to destination and returns a
// Bezier-smoothed, front-first-consumable path, or ok=false if no path
// exists.
func (n *Navigator) FindSmoothPath(start, destination spatial.Vec2) ([]spatial.Vec2, bool) {
	startCell := n.Grid.CellOf(start)
	goalCell := n.Grid.CellOf(destination)

	cells, ok := FindPath(n.Graph, n.Grid, startCell, goalCell)
	if !ok {
		return nil, false
	}
	waypoints := CellCenters(n.Grid, cells, start, destination)
	return Smooth(waypoints, n.SegmentsPerCorner), true
}

// NeedsBaseReplan is the base A* replan trigger: replan when the path is
// empty, or the agent has drifted at least a cell diagonal away from the
// head of its current path.
func (n *Navigator) NeedsBaseReplan(hasPath bool, agentCenter, pathHead spatial.Vec2) bool {
	if !hasPath {
		return true
	}
	return agentCenter.DistanceTo(pathHead) >= n.Grid.Diagonal()
}

// NeedsHeatmapReplan is the heatmap replan trigger: once every
// HeatmapThrottleTicks ticks (and only while the agent has a path), force a
// replan if the current or next path cell's congestion weight, after
// subtracting the agent's own corner contribution, exceeds
// HeatmapThreshold.
func (n *Navigator) NeedsHeatmapReplan(state *ReplanState, hasPath bool, currentCell, nextCell navgrid.Cell, selfContribution uint) bool {
	if !hasPath {
		state.ticksSinceCheck = 0
		return false
	}
	state.ticksSinceCheck++
	if state.ticksSinceCheck < HeatmapThrottleTicks {
		return false
	}
	state.ticksSinceCheck = 0

	adjusted := func(c navgrid.Cell) uint {
		w := n.Grid.Weight(c)
		if w > selfContribution {
			return w - selfContribution
		}
		return 0
	}
	return adjusted(currentCell) > HeatmapThreshold || adjusted(nextCell) > HeatmapThreshold
}

// Rebuild regenerates the search graph from the grid's current navigable
// cell set. Call after the set of navigable cells changes (not after mere
// weight changes).
func (n *Navigator) Rebuild() {
	n.Graph = BuildGraph(n.Grid)
}
