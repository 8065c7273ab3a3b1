package environment

import (
	"sync/atomic"

	"github.com/i4sim/engine/internal/ident"
	"github.com/i4sim/engine/internal/interaction"
	"github.com/i4sim/engine/internal/mover"
	"github.com/i4sim/engine/internal/producer"
	"github.com/i4sim/engine/internal/spatial"
	"github.com/i4sim/engine/internal/steering"
)

// MoverView is a read-only projection of a mover's render-relevant state.
type MoverView struct {
	ID             string
	Position       spatial.Vec2
	Velocity       spatial.Vec2
	Dimension      spatial.Vec2
	State          string
	HasDestination bool
	Destination    spatial.Vec2
	Path           []spatial.Vec2
}

// ProducerView is a read-only projection of a producer's render-relevant
// state.
type ProducerView struct {
	ID                  string
	Position            spatial.Vec2
	Dimension           spatial.Vec2
	State               string
	Queue               []string
	ServiceRequester    string
	ProcessingCountdown uint
}

// Snapshot is the atomically published per-tick view consumed by the render
// thread without touching the live movers/producers maps.
type Snapshot struct {
	Movers         []MoverView
	Producers      []ProducerView
	CollisionCount uint64
}

// Snapshot returns the most recently published snapshot, or an empty one
// before the first Update.
func (r *Registry) Snapshot() *Snapshot {
	if s := r.snapshot.Load(); s != nil {
		return s
	}
	return &Snapshot{}
}

func (r *Registry) publishSnapshot() {
	movers := r.AllMovers()
	producers := r.AllProducers()

	snap := &Snapshot{
		Movers:         make([]MoverView, 0, len(movers)),
		Producers:      make([]ProducerView, 0, len(producers)),
		CollisionCount: atomic.LoadUint64(&r.collisionCount),
	}
	for _, m := range movers {
		path := make([]spatial.Vec2, len(m.Path))
		copy(path, m.Path)
		snap.Movers = append(snap.Movers, MoverView{
			ID:             m.ID,
			Position:       m.Position,
			Velocity:       m.Velocity,
			Dimension:      m.Dimension,
			State:          m.State.String(),
			HasDestination: m.HasDestination,
			Destination:    m.Destination,
			Path:           path,
		})
	}
	for _, p := range producers {
		queue := make([]string, len(p.Queue))
		copy(queue, p.Queue)
		snap.Producers = append(snap.Producers, ProducerView{
			ID:                  p.ID,
			Position:            p.Position,
			Dimension:           p.Dimension,
			State:               p.State.String(),
			Queue:               queue,
			ServiceRequester:    p.ServiceRequester,
			ProcessingCountdown: p.ProcessingCountdown,
		})
	}
	r.snapshot.Store(snap)
}

// Update advances the whole floor by one tick: recompute congestion weights
// from current mover footprints, tick producers, then navigate and steer
// every mover, in that order. Producers tick before movers so a producer
// that finishes processing this tick is already idle by the time a queued
// mover's navigation is evaluated in the same tick. It finishes by
// publishing a fresh Snapshot.
func (r *Registry) Update() {
	r.recomputeGridWeights()
	r.tickProducers()
	r.tickMovers()
	r.publishSnapshot()
}

func (r *Registry) recomputeGridWeights() {
	r.grid.ClearWeights()
	r.movers.Range(func(_ string, m *mover.Mover) bool {
		if !m.IsAlive() || m.Disabled {
			return true
		}
		r.grid.ApplyFootprint(m.Rect(), m.CellWeight)
		return true
	})
}

func (r *Registry) tickProducers() {
	r.producers.Range(func(_ string, p *producer.Producer) bool {
		requester, i, completed := p.Tick()
		if completed && r.onCompleted != nil {
			r.onCompleted(p.ID, requester, i)
		}
		return true
	})
}

func (r *Registry) tickMovers() {
	all := r.AllMovers()
	positionOf := func(id string) spatial.Vec2 {
		if m, ok := r.movers.Load(id); ok {
			return m.Position
		}
		return spatial.Vec2{}
	}

	r.countCollisions(all, positionOf)

	for _, m := range all {
		m.Tick()
		if m.Disabled || !m.IsAlive() {
			continue
		}

		neighborIDs := r.hash.Neighbors(m.Position, r.cfg.NeighborRadius, m.ID, positionOf)
		steeringNeighbors := make([]steering.Neighbor, 0, len(neighborIDs))
		for _, id := range neighborIDs {
			other, ok := r.movers.Load(id)
			if !ok {
				continue
			}
			steeringNeighbors = append(steeringNeighbors, steering.Neighbor{Rect: other.Rect(), Velocity: other.Velocity})
		}

		r.navigate(m)

		agent := steering.Agent{Rect: m.Rect(), Velocity: m.Velocity}
		composite := steering.Composite{
			Border:     steering.BorderRepulsion(agent, r.borders),
			Collision:  steering.ImmediateCollision(agent, steeringNeighbors),
			Predictive: steering.PredictiveAvoidance(agent, steeringNeighbors),
		}
		target, hasTarget := m.SeekTarget()
		composite.Seek = steering.SeekArrive(m.Position, target, m.Velocity, mover.MaxSpeed, r.cfg.BrakingRadius, hasTarget)

		newPosition, newVelocity := steering.Integrate(m.Position, m.Velocity, composite, mover.MaxForce, mover.MaxSpeed)
		m.ApplyMotion(newPosition, newVelocity)
		r.hash.Upsert(m.ID, m.Position)

		m.AdvancePath(r.cfg.ArrivalRadius)

		if m.ConsumeArrival(r.cfg.ArrivalRadius) {
			r.enqueueAtDestination(m)
			if r.onArrived != nil {
				r.onArrived(m.ID)
			}
		}
	}
}

// enqueueAtDestination binds an arriving mover into the queue of whichever
// producer's processer position matches the mover's destination, so the
// next Perform served for that producer has a requester to pop.
func (r *Registry) enqueueAtDestination(m *mover.Mover) {
	r.producers.Range(func(_ string, p *producer.Producer) bool {
		if p.ProcesserPosition.DistanceTo(m.Destination) <= r.cfg.ArrivalRadius {
			p.Enqueue(m.ID)
			return false
		}
		return true
	})
}

// navigate runs the replan-trigger policy and, if it fires, requests a
// fresh path from the navigator.
func (r *Registry) navigate(m *mover.Mover) {
	wasReset := m.ConsumeReset()
	hasPath := len(m.Path) > 0 && !wasReset

	if !m.HasDestination {
		return
	}

	head, hasHead := m.PathHead()
	if wasReset {
		head = m.Position
	}

	needsBase := r.navigator.NeedsBaseReplan(hasPath && hasHead, m.Position, head)

	currentCell := r.grid.CellOf(m.Position)
	nextCell := currentCell
	if hasHead {
		nextCell = r.grid.CellOf(head)
	}
	needsHeatmap := r.navigator.NeedsHeatmapReplan(&m.ReplanState, hasPath, currentCell, nextCell, m.CellWeight/4)

	if !needsBase && !needsHeatmap {
		return
	}
	if path, ok := r.navigator.FindSmoothPath(m.Position, m.Destination); ok {
		m.Path = path
	} else {
		m.DestinationUnreachable = true
	}
}

// countCollisions runs SAT overlap detection once per unique mover pair and
// bumps the registry-wide collision counter at most once per cooldown window
// per pair.
func (r *Registry) countCollisions(all []*mover.Mover, positionOf func(string) spatial.Vec2) {
	for _, m := range all {
		if m.Disabled || !m.IsAlive() {
			continue
		}
		neighborIDs := r.hash.Neighbors(m.Position, r.cfg.NeighborRadius, m.ID, positionOf)
		for _, id := range neighborIDs {
			if id <= m.ID {
				continue // unordered pair already visited (or is self)
			}
			other, ok := r.movers.Load(id)
			if !ok || other.Disabled || !other.IsAlive() {
				continue
			}
			if !spatial.Overlaps(m.Rect(), other.Rect()) {
				continue
			}
			if m.Collided == 0 && other.Collided == 0 {
				m.RegisterCollision()
				other.RegisterCollision()
				atomic.AddUint64(&r.collisionCount, 1)
			}
		}
	}
}

// FullReset restores every mover and producer to its registered initial
// pose. A soft reset (hard=false) repositions units for a new run without
// discarding historical counters; a hard reset also zeroes collision,
// distance, transport, and interaction counters.
func (r *Registry) FullReset(hard bool) {
	r.movers.Range(func(id string, m *mover.Mover) bool {
		if initial, ok := r.initialMoverPose[id]; ok {
			m.Position = initial.position
		}
		m.Velocity = spatial.Vec2{}
		m.HasDestination = false
		m.Path = nil
		m.Disabled = false
		m.State = ident.Alive
		if hard {
			m.Collided = 0
			m.Distance = 0
			m.TransportCount = 0
		}
		r.hash.Upsert(id, m.Position)
		return true
	})
	r.producers.Range(func(id string, p *producer.Producer) bool {
		if initial, ok := r.initialProducerPose[id]; ok {
			p.Position = initial
		}
		p.Queue = nil
		p.ServiceRequester = ""
		p.ProcessingCountdown = 0
		if hard {
			p.InteractionCounter = map[interaction.Interaction]*producer.Counter{}
		}
		return true
	})
	if hard {
		atomic.StoreUint64(&r.collisionCount, 0)
	}
	r.recomputeGridWeights()
	r.publishSnapshot()
}
