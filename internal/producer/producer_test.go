package producer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i4sim/engine/internal/ident"
	"github.com/i4sim/engine/internal/interaction"
	"github.com/i4sim/engine/internal/spatial"
)

func newTestProducer() *Producer {
	costs := map[interaction.Interaction]uint{interaction.PlaceHousing: 5}
	return New("p1", "press", spatial.Vec2{}, spatial.Vec2{X: 10, Y: 0}, costs)
}

func TestStartProcessingRequiresAliveAndIdle(t *testing.T) {
	p := newTestProducer()
	assert.False(t, p.StartProcessing(interaction.PlaceHousing, 5)) // empty queue

	p.Enqueue("m1")
	assert.True(t, p.StartProcessing(interaction.PlaceHousing, 5))
	assert.Equal(t, "m1", p.ServiceRequester)
	assert.EqualValues(t, 5, p.ProcessingCountdown)

	p.Enqueue("m2")
	assert.False(t, p.StartProcessing(interaction.PlaceHousing, 5)) // already processing
}

func TestTickCompletesAtZeroCountdown(t *testing.T) {
	p := newTestProducer()
	p.Enqueue("m1")
	require.True(t, p.StartProcessing(interaction.PlaceHousing, 2))

	_, _, done := p.Tick()
	assert.False(t, done)
	requester, i, done := p.Tick()
	assert.True(t, done)
	assert.Equal(t, "m1", requester)
	assert.Equal(t, interaction.PlaceHousing, i)
}

func TestOnlyOneServiceRequesterAtATime(t *testing.T) {
	p := newTestProducer()
	p.Enqueue("m1")
	p.Enqueue("m2")
	require.True(t, p.StartProcessing(interaction.PlaceHousing, 5))
	assert.Equal(t, "m1", p.ServiceRequester)
	assert.Len(t, p.Queue, 1)
	assert.False(t, p.StartProcessing(interaction.PlaceHousing, 5))
}

func TestToggleStateBailsQueueAndBlocksFurtherProcessing(t *testing.T) {
	p := newTestProducer()
	p.Enqueue("a")
	p.Enqueue("b")
	p.Enqueue("c")

	var bailed []string
	p.ToggleState(func(id string) { bailed = append(bailed, id) })

	assert.Equal(t, ident.Blocked, p.State)
	assert.Equal(t, []string{"a", "b", "c"}, bailed)
	assert.Empty(t, p.Queue)
	assert.False(t, p.StartProcessing(interaction.PlaceHousing, 5))
}

func TestRemoveByID(t *testing.T) {
	p := newTestProducer()
	p.Enqueue("a")
	p.Enqueue("b")
	p.Remove("a")
	assert.Equal(t, []string{"b"}, p.Queue)
}

func TestCostFallsBackToZeroWhenUnsupported(t *testing.T) {
	p := newTestProducer()
	cost, ok := p.Cost(interaction.RemoveAssy)
	assert.False(t, ok)
	assert.Zero(t, cost)
}

func TestTransportNeverSupportedByProducer(t *testing.T) {
	p := newTestProducer()
	_, ok := p.Cost(interaction.Transport)
	assert.False(t, ok)
}

func TestCostExpressionOverridesStaticCost(t *testing.T) {
	p := newTestProducer()
	p.Enqueue("a")
	p.Enqueue("b")

	expr, err := CompileCostExpr("Base + QueueLen * 2")
	require.NoError(t, err)
	p.SetCostExpression(interaction.PlaceHousing, expr)

	cost, ok := p.Cost(interaction.PlaceHousing)
	require.True(t, ok)
	assert.EqualValues(t, 5+2*2, cost)
}
