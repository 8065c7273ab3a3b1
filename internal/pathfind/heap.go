package pathfind

import "github.com/i4sim/engine/internal/navgrid"

// vertex is one node of the A* search graph, keyed by grid cell. prev
// reconstructs the path; steps counts hops from start.
type vertex struct {
	cell       navgrid.Cell
	g, h, f    float64
	prev       *vertex
	steps      int
	cellWeight uint
	index      int // heap slot, maintained by the heap methods
}

// capacityHeap is an explicit fixed-capacity binary min-heap keyed on f,
// used instead of container/heap because capacity and tie-break behavior
// matter here: insertions past capacity are silently dropped rather than
// growing the queue.
type capacityHeap struct {
	items []*vertex
	cap   int
}

func newCapacityHeap(capacity int) *capacityHeap {
	return &capacityHeap{items: make([]*vertex, 0, capacity), cap: capacity}
}

func (h *capacityHeap) Len() int { return len(h.items) }

// Push inserts v, returning false if the heap is at capacity (the insertion
// is silently dropped).
func (h *capacityHeap) Push(v *vertex) bool {
	if len(h.items) >= h.cap {
		return false
	}
	v.index = len(h.items)
	h.items = append(h.items, v)
	h.siftUp(v.index)
	return true
}

func (h *capacityHeap) Pop() *vertex {
	if len(h.items) == 0 {
		return nil
	}
	top := h.items[0]
	n := len(h.items) - 1
	h.items[0] = h.items[n]
	h.items[0].index = 0
	h.items = h.items[:n]
	if n > 0 {
		h.siftDown(0)
	}
	return top
}

func (h *capacityHeap) less(i, j int) bool {
	if h.items[i].f != h.items[j].f {
		return h.items[i].f < h.items[j].f
	}
	// Tie-break: on equal f the lower heap slot wins, so siftUp/siftDown
	// never swap equal-f items and the heap's current order decides.
	return i < j
}

func (h *capacityHeap) swap(i, j int) {
	h.items[i], h.items[j] = h.items[j], h.items[i]
	h.items[i].index = i
	h.items[j].index = j
}

func (h *capacityHeap) siftUp(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if !h.less(i, parent) {
			break
		}
		h.swap(i, parent)
		i = parent
	}
}

func (h *capacityHeap) siftDown(i int) {
	n := len(h.items)
	for {
		left, right := 2*i+1, 2*i+2
		smallest := i
		if left < n && h.less(left, smallest) {
			smallest = left
		}
		if right < n && h.less(right, smallest) {
			smallest = right
		}
		if smallest == i {
			return
		}
		h.swap(i, smallest)
		i = smallest
	}
}
