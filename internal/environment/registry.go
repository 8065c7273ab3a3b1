// Package environment implements the indexed collections of movers and
// producers, spatial hashing for neighbor queries, and the per-tick update
// entrypoint that drives navigation, steering, and congestion bookkeeping.
package environment

import (
	"sync/atomic"

	"github.com/puzpuzpuz/xsync/v3"
	"github.com/rs/zerolog"

	"github.com/i4sim/engine/internal/interaction"
	"github.com/i4sim/engine/internal/mover"
	"github.com/i4sim/engine/internal/navgrid"
	"github.com/i4sim/engine/internal/pathfind"
	"github.com/i4sim/engine/internal/producer"
	"github.com/i4sim/engine/internal/spatial"
)

// Config bundles the per-tick tunables a floor is configured with.
type Config struct {
	ArrivalRadius     float64
	NeighborRadius    float64
	BrakingRadius     float64
	SegmentsPerCorner int
}

// DefaultConfig returns sane defaults for a floor whose cell size is small
// relative to mover footprints.
func DefaultConfig() Config {
	return Config{
		ArrivalRadius:     2,
		NeighborRadius:    40,
		BrakingRadius:     30,
		SegmentsPerCorner: pathfind.DefaultSegmentsPerCorner,
	}
}

// MoverArrivedFunc is invoked once when a mover arrives at a bound
// transport destination, so the caller can fire Complete to the broker.
type MoverArrivedFunc func(moverID string)

// ProducerCompletedFunc is invoked once when a producer's processing
// countdown reaches zero.
type ProducerCompletedFunc func(producerID, requesterID string, i interaction.Interaction)

// Registry is the exclusive owner of every mover and producer on the floor,
// indexed by id (xsync.MapOf, concurrent-read-safe for the render thread)
// and spatially hashed for neighbor queries.
type Registry struct {
	movers    *xsync.MapOf[string, *mover.Mover]
	producers *xsync.MapOf[string, *producer.Producer]

	grid      *navgrid.Grid
	navigator *pathfind.Navigator
	borders   []spatial.Segment

	hash *spatialHash
	cfg  Config
	log  zerolog.Logger

	onArrived   MoverArrivedFunc
	onCompleted ProducerCompletedFunc

	initialMoverPose    map[string]pose
	initialProducerPose map[string]spatial.Vec2

	snapshot       atomic.Pointer[Snapshot]
	collisionCount uint64
}

type pose struct {
	position spatial.Vec2
}

// New constructs a Registry over grid and borders.
func New(grid *navgrid.Grid, borders []spatial.Segment, cfg Config, log zerolog.Logger) *Registry {
	return &Registry{
		movers:              xsync.NewMapOf[string, *mover.Mover](),
		producers:           xsync.NewMapOf[string, *producer.Producer](),
		grid:                grid,
		navigator:           pathfind.NewNavigator(grid),
		borders:             borders,
		hash:                newSpatialHash(grid.CellSize.Length()),
		cfg:                 cfg,
		log:                 log.With().Str("component", "environment").Logger(),
		initialMoverPose:    make(map[string]pose),
		initialProducerPose: make(map[string]spatial.Vec2),
	}
}

// OnMoverArrived registers the callback fired when a mover reaches a bound
// transport destination.
func (r *Registry) OnMoverArrived(fn MoverArrivedFunc) { r.onArrived = fn }

// OnProducerCompleted registers the callback fired when a producer finishes
// processing.
func (r *Registry) OnProducerCompleted(fn ProducerCompletedFunc) { r.onCompleted = fn }

// AddMover registers m and remembers its initial pose for FullReset.
func (r *Registry) AddMover(m *mover.Mover) {
	r.movers.Store(m.ID, m)
	r.hash.Upsert(m.ID, m.Position)
	r.initialMoverPose[m.ID] = pose{position: m.Position}
}

// AddProducer registers p and remembers its initial pose for FullReset.
func (r *Registry) AddProducer(p *producer.Producer) {
	r.producers.Store(p.ID, p)
	r.initialProducerPose[p.ID] = p.Position
}

// Mover looks up a mover by id.
func (r *Registry) Mover(id string) (*mover.Mover, bool) { return r.movers.Load(id) }

// Producer looks up a producer by id.
func (r *Registry) Producer(id string) (*producer.Producer, bool) { return r.producers.Load(id) }

// AllMovers returns a snapshot slice of every mover (weak references into
// live state; callers in the cycle actor may mutate, render-thread callers
// should treat as read-only).
func (r *Registry) AllMovers() []*mover.Mover {
	out := make([]*mover.Mover, 0, r.movers.Size())
	r.movers.Range(func(_ string, m *mover.Mover) bool {
		out = append(out, m)
		return true
	})
	return out
}

// AllProducers returns a snapshot slice of every producer.
func (r *Registry) AllProducers() []*producer.Producer {
	out := make([]*producer.Producer, 0, r.producers.Size())
	r.producers.Range(func(_ string, p *producer.Producer) bool {
		out = append(out, p)
		return true
	})
	return out
}

// Grid exposes the navigable grid for blueprint/demo wiring.
func (r *Registry) Grid() *navgrid.Grid { return r.grid }
