package pathfind

import (
	"math"

	"github.com/i4sim/engine/internal/navgrid"
)

// QueueCapacity is the fixed capacity of the A* open-set heap.
const QueueCapacity = 250

const sqrt2 = math.Sqrt2

// octile is the admissible heuristic for 8-directional movement on a
// uniform grid with straight cost 1 and diagonal cost sqrt2:
// h = (|dx|+|dy|) + (sqrt2-2)*min(|dx|,|dy|).
func octile(dx, dy int) float64 {
	adx, ady := math.Abs(float64(dx)), math.Abs(float64(dy))
	mn := math.Min(adx, ady)
	return (adx + ady) + (sqrt2-2)*mn
}

// FindPath runs A* from start to goal over graph, using grid's live cell
// weights as a heatmap penalty on the source vertex of each edge. It returns
// the sequence of cells from start to goal inclusive, or ok=false if no path
// exists (start/goal not navigable, or the open set overflowed its fixed
// capacity and the search could not complete).
func FindPath(graph *Graph, grid *navgrid.Grid, start, goal navgrid.Cell) ([]navgrid.Cell, bool) {
	if !graph.has(start) || !graph.has(goal) {
		return nil, false
	}
	if start == goal {
		return []navgrid.Cell{start}, true
	}

	open := newCapacityHeap(QueueCapacity)
	best := make(map[navgrid.Cell]*vertex, QueueCapacity)

	startVertex := &vertex{cell: start, g: 0, h: octile(goal.X-start.X, goal.Y-start.Y)}
	startVertex.f = startVertex.g + startVertex.h
	open.Push(startVertex)
	best[start] = startVertex

	for open.Len() > 0 {
		current := open.Pop()
		if current.cell == goal {
			return reconstruct(current), true
		}

		edgeWeight := float64(grid.Weight(current.cell))

		visit := func(nb navgrid.Cell, stepCost float64) {
			tentativeG := current.g + stepCost + edgeWeight
			if existing, ok := best[nb]; ok && tentativeG >= existing.g {
				return
			}
			v := &vertex{
				cell:  nb,
				g:     tentativeG,
				h:     octile(goal.X-nb.X, goal.Y-nb.Y),
				prev:  current,
				steps: current.steps + 1,
			}
			v.f = v.g + v.h
			best[nb] = v
			open.Push(v)
		}

		node := graph.nodes[current.cell]
		for _, nb := range node.straight {
			visit(nb, 1.0)
		}
		for _, nb := range node.diagonal {
			if !graph.cornerCellsFree(current.cell, nb) {
				continue
			}
			visit(nb, sqrt2)
		}
	}
	return nil, false
}

func reconstruct(end *vertex) []navgrid.Cell {
	var out []navgrid.Cell
	for v := end; v != nil; v = v.prev {
		out = append(out, v.cell)
	}
	// reverse into start->goal order
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}
