package pathfind

import "github.com/i4sim/engine/internal/navgrid"

var straightDirs = [4]navgrid.Cell{{0, -1}, {1, 0}, {0, 1}, {-1, 0}}
var diagonalDirs = [4]navgrid.Cell{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}}

// node holds a cell's static adjacency, split into straight and diagonal
// neighbors. Diagonal neighbors are precomputed without regard to
// corner-cutting; the corner check happens at search time because it only
// depends on the two cardinal cells being navigable, which this struct
// already encodes via Straight.
type node struct {
	cell      navgrid.Cell
	straight  []navgrid.Cell
	diagonal  []navgrid.Cell
}

// Graph is the A* search graph built once from a grid's navigable cell set.
// Nodes carry no back-pointers other than their (X,Y) key; the Graph is an
// arena of nodes keyed by cell.
type Graph struct {
	nodes map[navgrid.Cell]*node
}

// BuildGraph constructs a Graph from every navigable cell in g. Rebuild
// whenever the grid's navigable cell set changes (grid weights alone do not
// require a rebuild).
func BuildGraph(g *navgrid.Grid) *Graph {
	cells := g.Cells()
	graph := &Graph{nodes: make(map[navgrid.Cell]*node, len(cells))}
	for _, c := range cells {
		graph.nodes[c] = &node{cell: c}
	}
	for _, c := range cells {
		n := graph.nodes[c]
		for _, d := range straightDirs {
			nb := navgrid.Cell{X: c.X + d.X, Y: c.Y + d.Y}
			if _, ok := graph.nodes[nb]; ok {
				n.straight = append(n.straight, nb)
			}
		}
		for _, d := range diagonalDirs {
			nb := navgrid.Cell{X: c.X + d.X, Y: c.Y + d.Y}
			if _, ok := graph.nodes[nb]; ok {
				n.diagonal = append(n.diagonal, nb)
			}
		}
	}
	return graph
}

// cornerCellsFree reports whether both cardinal neighbors adjacent to a
// diagonal step from `from` to `to` are present in the graph, preventing the
// search from cutting through a non-navigable corner.
func (gr *Graph) cornerCellsFree(from, to navgrid.Cell) bool {
	corner1 := navgrid.Cell{X: to.X, Y: from.Y}
	corner2 := navgrid.Cell{X: from.X, Y: to.Y}
	_, ok1 := gr.nodes[corner1]
	_, ok2 := gr.nodes[corner2]
	return ok1 && ok2
}

func (gr *Graph) has(c navgrid.Cell) bool {
	_, ok := gr.nodes[c]
	return ok
}
