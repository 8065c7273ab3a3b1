package product

import (
	"fmt"
	"sync"
)

// historyLimit bounds the per-type completed-interactions ring kept for
// operator visibility; it is additive and never substitutes for the
// completed/in-progress trackers below.
const historyLimit = 20

// Supervisor owns every product's progression through its recipe and the
// aggregate completed/in-progress trackers. All mutation is expected to
// happen on the supervisor's own goroutine/actor; external readers must go
// through the Snapshot* methods, which return copies.
type Supervisor struct {
	mu sync.RWMutex

	sequence    map[Type]int
	inProgress  map[string]*Product
	completed   map[string]Snapshot
	history     map[Type][]string
}

// NewSupervisor constructs an empty supervisor.
func NewSupervisor() *Supervisor {
	return &Supervisor{
		sequence:   make(map[Type]int),
		inProgress: make(map[string]*Product),
		completed:  make(map[string]Snapshot),
		history:    make(map[Type][]string),
	}
}

// CreateProduct assigns the next sequential id of the form "type_N" and
// begins tracking a fresh Product of Type t.
func (s *Supervisor) CreateProduct(t Type) *Product {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sequence[t]++
	id := fmt.Sprintf("%s_%d", t, s.sequence[t])
	p := New(id, t)
	s.inProgress[id] = p
	return p
}

// Get returns the in-progress product for id, if any.
func (s *Supervisor) Get(id string) (*Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.inProgress[id]
	return p, ok
}

// Advance records that producer/mover `performedBy` completed the product's
// current recipe step, moving it to the completed tracker if that was the
// last step.
func (s *Supervisor) Advance(id, performedBy string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.inProgress[id]
	if !ok {
		return
	}
	if p.Advance(performedBy) {
		delete(s.inProgress, id)
		snap := p.Snapshot()
		s.completed[id] = snap
		s.pushHistory(p.Type, snap.CompletedInteractions)
	}
}

func (s *Supervisor) pushHistory(t Type, completedInteractions []string) {
	h := s.history[t]
	h = append(h, completedInteractions...)
	if len(h) > historyLimit {
		h = h[len(h)-historyLimit:]
	}
	s.history[t] = h
}

// Tick increments every in-progress product's tick counter, and its
// distance/processing-ticks deltas if supplied by the caller; called once
// per engine tick by the cycle actor.
func (s *Supervisor) Tick(distanceDelta map[string]float64, processingDelta map[string]uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, p := range s.inProgress {
		p.Ticks++
		if d, ok := distanceDelta[id]; ok {
			p.Distance += d
		}
		if d, ok := processingDelta[id]; ok {
			p.ProcessingTicks += d
		}
	}
}

// SnapshotInProgress returns read-only copies of every in-progress product.
func (s *Supervisor) SnapshotInProgress() []Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Snapshot, 0, len(s.inProgress))
	for _, p := range s.inProgress {
		out = append(out, p.Snapshot())
	}
	return out
}

// SnapshotCompleted returns read-only copies of every completed product.
func (s *Supervisor) SnapshotCompleted() []Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Snapshot, 0, len(s.completed))
	for _, snap := range s.completed {
		out = append(out, snap)
	}
	return out
}

// History returns a copy of the bounded completed-interaction log for t.
func (s *Supervisor) History(t Type) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h := s.history[t]
	out := make([]string, len(h))
	copy(out, h)
	return out
}

// Reset clears every tracked product and resets sequence counters.
func (s *Supervisor) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sequence = make(map[Type]int)
	s.inProgress = make(map[string]*Product)
	s.completed = make(map[string]Snapshot)
	s.history = make(map[Type][]string)
}
