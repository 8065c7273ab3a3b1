package engine

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i4sim/engine/internal/broker"
	"github.com/i4sim/engine/internal/bus"
	"github.com/i4sim/engine/internal/config"
	"github.com/i4sim/engine/internal/environment"
	"github.com/i4sim/engine/internal/interaction"
	"github.com/i4sim/engine/internal/mover"
	"github.com/i4sim/engine/internal/navgrid"
	"github.com/i4sim/engine/internal/producer"
	"github.com/i4sim/engine/internal/product"
	"github.com/i4sim/engine/internal/spatial"
)

// fakeBroker acks every Create and Complete it observes for any of units,
// standing in for a real external broker (or internal/broker/dummy) in this
// test.
func fakeBroker(b bus.Bus, units ...string) {
	creates := b.Subscribe(broker.TopicCreate)
	go func() {
		for range creates {
			for _, unit := range units {
				_ = b.Publish(broker.TopicCreateAck, "Acknowledge", broker.AckPayload{Name: unit})
			}
		}
	}()
	for _, unit := range units {
		unit := unit
		completes := b.Subscribe(broker.TopicComplete(unit))
		go func() {
			for range completes {
				_ = b.Publish(broker.TopicCompleteAck(unit), "Acknowledge", broker.AckPayload{Name: unit})
			}
		}()
	}
}

// requestAndPerform simulates the external broker deciding to bind unit to
// interaction i with the given serviceRequester: a RequestCost/Perform pair,
// exactly as internal/broker/dummy would issue them.
func requestAndPerform(t *testing.T, b bus.Bus, unit string, i interaction.Interaction, serviceRequester string) {
	t.Helper()
	require.NoError(t, b.Publish(broker.TopicRequestCost(unit), "RequestCost",
		broker.RequestCostPayload{ServiceRequester: serviceRequester, InteractionElement: i.ToURL()}))
	time.Sleep(10 * time.Millisecond)
	require.NoError(t, b.Publish(broker.TopicPerform(unit), "Perform",
		broker.PerformPayload{InteractionElement: i.ToURL()}))
}

// TestEngineTransportThenProductionAdvancesSupervisor drives a full
// Transport -> queue -> production chain: a mover delivers a real product id
// to a producer, the producer completes PlaceHousing, and the product's
// recipe cursor must advance against that exact product, not a disguised
// no-op.
func TestEngineTransportThenProductionAdvancesSupervisor(t *testing.T) {
	grid := navgrid.NewRect(spatial.Vec2{X: 10, Y: 10}, spatial.Vec2{}, 20, 20)
	reg := environment.New(grid, nil, environment.DefaultConfig(), zerolog.Nop())

	processerPos := spatial.Vec2{X: 17, Y: 15}
	p := producer.New("p1", "standard", spatial.Vec2{X: 19, Y: 15}, processerPos,
		map[interaction.Interaction]uint{interaction.PlaceHousing: 1})
	reg.AddProducer(p)

	b := bus.NewLoopback()
	defer b.Close()
	fakeBroker(b, "m1", "p1")

	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.TargetUPS = 500
	cfg.TargetFPS = 0 // render loop falls back to one frame per second; render is a no-op

	e, err := New(reg, cfg, b, func() {}, zerolog.Nop())
	require.NoError(t, err)

	prod := e.Supervisor.CreateProduct(product.Trimmer)
	require.Equal(t, "Trimmer_1", prod.ID)

	m := mover.New("m1", "cart", spatial.Vec2{X: 15, Y: 15}, spatial.Vec2{X: 4, Y: 4})
	m.StartTransport(processerPos, prod.ID)
	reg.AddMover(m)

	moverCompleteAcks := b.Subscribe(broker.TopicCompleteAck("m1"))
	producerCompleteAcks := b.Subscribe(broker.TopicCompleteAck("p1"))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	go func() {
		_ = e.Run(ctx, []broker.CreatePayload{{Name: "m1", Model: "cart"}, {Name: "p1", Model: "standard"}})
	}()

	select {
	case <-moverCompleteAcks:
	case <-time.After(time.Second):
		t.Fatal("transport arrival never reached a Complete ack")
	}

	// The mover's arrival enqueued it at p1; the broker now binds p1 to
	// PlaceHousing on the queued mover's behalf.
	requestAndPerform(t, b, "p1", interaction.PlaceHousing, "m1")

	select {
	case <-producerCompleteAcks:
	case <-time.After(time.Second):
		t.Fatal("production never reached a Complete ack")
	}

	got, ok := e.Supervisor.Get(prod.ID)
	require.True(t, ok, "product should still be in progress after only its first recipe step")
	assert.Equal(t, 1, got.Cursor)
	assert.Equal(t, []string{"PlaceHousing@p1"}, got.CompletedInteractions)
	assert.Empty(t, e.Supervisor.SnapshotCompleted())
}
