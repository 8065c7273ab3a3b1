package environment

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i4sim/engine/internal/ident"
	"github.com/i4sim/engine/internal/interaction"
	"github.com/i4sim/engine/internal/mover"
	"github.com/i4sim/engine/internal/navgrid"
	"github.com/i4sim/engine/internal/producer"
	"github.com/i4sim/engine/internal/spatial"
)

func newTestRegistry(width, height int) *Registry {
	grid := navgrid.NewRect(spatial.Vec2{X: 10, Y: 10}, spatial.Vec2{}, width, height)
	return New(grid, nil, DefaultConfig(), zerolog.Nop())
}

func TestAddMoverRegistersInitialPoseForReset(t *testing.T) {
	r := newTestRegistry(10, 10)
	m := mover.New("m1", "cart", spatial.Vec2{X: 50, Y: 50}, spatial.Vec2{X: 4, Y: 4})
	r.AddMover(m)

	got, ok := r.Mover("m1")
	require.True(t, ok)
	assert.Equal(t, m, got)

	m.Position = spatial.Vec2{X: 90, Y: 90}
	r.FullReset(false)
	assert.Equal(t, spatial.Vec2{X: 50, Y: 50}, m.Position)
}

func TestUpdateMovesMoverTowardDestination(t *testing.T) {
	r := newTestRegistry(20, 20)
	m := mover.New("m1", "cart", spatial.Vec2{X: 15, Y: 15}, spatial.Vec2{X: 4, Y: 4})
	m.StartTransport(spatial.Vec2{X: 150, Y: 15}, "product_1")
	r.AddMover(m)

	initialDistance := m.Position.DistanceTo(m.Destination)
	for i := 0; i < 20; i++ {
		r.Update()
	}
	assert.Less(t, m.Position.DistanceTo(m.Destination), initialDistance)
}

func TestUpdateFiresOnArrivedOnce(t *testing.T) {
	r := newTestRegistry(20, 20)
	m := mover.New("m1", "cart", spatial.Vec2{X: 15, Y: 15}, spatial.Vec2{X: 4, Y: 4})
	m.StartTransport(spatial.Vec2{X: 17, Y: 15}, "product_1")
	r.AddMover(m)

	var arrivals int
	r.OnMoverArrived(func(id string) { arrivals++ })

	for i := 0; i < 30; i++ {
		r.Update()
	}
	assert.Equal(t, 1, arrivals)
}

func TestUpdateCompletesProducerProcessing(t *testing.T) {
	r := newTestRegistry(10, 10)
	p := producer.New("p1", "press", spatial.Vec2{X: 50, Y: 50}, spatial.Vec2{X: 40, Y: 50}, nil)
	p.Enqueue("m1")
	require.True(t, p.StartProcessing(interaction.PlaceHousing, 2))
	r.AddProducer(p)

	var completedRequester string
	var completed bool
	r.OnProducerCompleted(func(producerID, requesterID string, i interaction.Interaction) {
		completedRequester = requesterID
		completed = true
	})

	r.Update()
	assert.False(t, completed)
	r.Update()
	assert.True(t, completed)
	assert.Equal(t, "m1", completedRequester)
}

func TestCollisionCounterIncrementsOncePerPairPerWindow(t *testing.T) {
	r := newTestRegistry(20, 20)
	a := mover.New("a", "cart", spatial.Vec2{X: 50, Y: 50}, spatial.Vec2{X: 8, Y: 8})
	b := mover.New("b", "cart", spatial.Vec2{X: 52, Y: 50}, spatial.Vec2{X: 8, Y: 8})
	r.AddMover(a)
	r.AddMover(b)

	r.Update()
	firstCount := r.Snapshot().CollisionCount
	assert.EqualValues(t, 1, firstCount)

	r.Update()
	assert.Equal(t, firstCount, r.Snapshot().CollisionCount)
}

func TestFullResetHardClearsCounters(t *testing.T) {
	r := newTestRegistry(20, 20)
	m := mover.New("m1", "cart", spatial.Vec2{X: 15, Y: 15}, spatial.Vec2{X: 4, Y: 4})
	m.ApplyMotion(spatial.Vec2{X: 20, Y: 15}, spatial.Vec2{X: 1, Y: 0})
	r.AddMover(m)
	assert.Greater(t, m.Distance, 0.0)

	r.FullReset(true)
	assert.Zero(t, m.Distance)
}

func TestSnapshotReflectsRegisteredUnits(t *testing.T) {
	r := newTestRegistry(10, 10)
	m := mover.New("m1", "cart", spatial.Vec2{X: 15, Y: 15}, spatial.Vec2{X: 4, Y: 4})
	r.AddMover(m)
	r.Update()

	snap := r.Snapshot()
	require.Len(t, snap.Movers, 1)
	assert.Equal(t, "m1", snap.Movers[0].ID)
	assert.Equal(t, ident.Alive.String(), snap.Movers[0].State)
}
