// Package dummy implements the broker side of the bidding protocol (C11)
// locally, against the same bus.Bus contract C10 runs over, using a simple
// FIFO of outstanding product steps instead of a real external broker.
// Its Procedure advances only when Tick is called; cmd/engine calls Tick
// from a ticker running at the configured update rate, so its produce
// cycle follows the update interval.
package dummy

import (
	"encoding/json"
	"sync"

	"github.com/rs/zerolog"

	"github.com/i4sim/engine/internal/broker"
	"github.com/i4sim/engine/internal/bus"
	"github.com/i4sim/engine/internal/interaction"
	"github.com/i4sim/engine/internal/product"
)

// Step is one outstanding product step: a unit asked to perform an
// interaction on behalf of ProductID, optionally at a destination
// (Transport).
type Step struct {
	UnitID      string
	ProductID   string
	Interaction interaction.Interaction
	Destination *broker.Location
}

// NewProduct registers a new product of type t with supervisor, returning
// its id. Callers seed the FIFO with the Steps that will carry and process
// it (see Enqueue), each stamped with this id as ProductID so the engine can
// resolve Supervisor.Advance to the right product once a producer completes
// a step on its behalf.
func NewProduct(supervisor *product.Supervisor, t product.Type) string {
	return supervisor.CreateProduct(t).ID
}

type phase int

const (
	phaseIdle phase = iota
	phaseAwaitingCost
	phaseAwaitingPerformAck
	phaseAwaitingComplete
)

// Procedure is the dummy broker's single outstanding-step state machine. It
// acknowledges every Create it observes immediately, then drains Steps one
// at a time via Tick.
type Procedure struct {
	bus bus.Bus
	log zerolog.Logger

	mu    sync.Mutex
	fifo  []Step
	phase phase
	current Step

	costCh       chan uint64
	performAckCh chan struct{}
	completeCh   chan struct{}
}

// New constructs a Procedure and starts acking every observed Create.
func New(b bus.Bus, log zerolog.Logger) *Procedure {
	p := &Procedure{
		bus:          b,
		log:          log.With().Str("component", "dummy-broker").Logger(),
		costCh:       make(chan uint64, 1),
		performAckCh: make(chan struct{}, 1),
		completeCh:   make(chan struct{}, 1),
	}
	p.ackCreates()
	return p
}

func (p *Procedure) ackCreates() {
	creates := p.bus.Subscribe(broker.TopicCreate)
	go func() {
		for env := range creates {
			var c broker.CreatePayload
			if err := json.Unmarshal(env.Payload, &c); err != nil {
				continue
			}
			_ = p.bus.Publish(broker.TopicCreateAck, "Acknowledge", broker.AckPayload{Name: c.Name})
		}
	}()
}

// Enqueue appends a product step to the FIFO.
func (p *Procedure) Enqueue(step Step) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.fifo = append(p.fifo, step)
}

// Tick advances the procedure by one step of its state machine. The caller
// sets the cadence; cmd/engine calls it at the configured update rate, so
// the dummy broker's request/perform/complete cadence tracks the update
// loop's rate.
func (p *Procedure) Tick() {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch p.phase {
	case phaseIdle:
		if len(p.fifo) == 0 {
			return
		}
		p.current = p.fifo[0]
		p.fifo = p.fifo[1:]
		p.requestCost(p.current)
		p.phase = phaseAwaitingCost

	case phaseAwaitingCost:
		select {
		case cost := <-p.costCh:
			if cost == 0 {
				p.phase = phaseIdle // unit couldn't service; drop the step
				return
			}
			p.perform(p.current)
			p.phase = phaseAwaitingPerformAck
		default:
		}

	case phaseAwaitingPerformAck:
		select {
		case <-p.performAckCh:
			p.awaitComplete(p.current)
			p.phase = phaseAwaitingComplete
		default:
		}

	case phaseAwaitingComplete:
		select {
		case <-p.completeCh:
			p.phase = phaseIdle
		default:
		}
	}
}

func (p *Procedure) requestCost(step Step) {
	responses := p.bus.Subscribe(broker.TopicResponseCost(step.UnitID))
	go func() {
		env, ok := <-responses
		if !ok {
			return
		}
		var resp broker.ResponseCostPayload
		if err := json.Unmarshal(env.Payload, &resp); err == nil {
			p.costCh <- resp.Cost
		}
	}()
	_ = p.bus.Publish(broker.TopicRequestCost(step.UnitID), "RequestCost", broker.RequestCostPayload{
		ServiceRequester:   step.ProductID,
		InteractionElement: step.Interaction.ToURL(),
		Destination:        step.Destination,
	})
}

func (p *Procedure) perform(step Step) {
	acks := p.bus.Subscribe(broker.TopicPerformAck(step.UnitID))
	go func() {
		if _, ok := <-acks; ok {
			p.performAckCh <- struct{}{}
		}
	}()
	_ = p.bus.Publish(broker.TopicPerform(step.UnitID), "Perform", broker.PerformPayload{
		InteractionElement: step.Interaction.ToURL(),
		Destination:        step.Destination,
	})
}

func (p *Procedure) awaitComplete(step Step) {
	completes := p.bus.Subscribe(broker.TopicComplete(step.UnitID))
	go func() {
		if _, ok := <-completes; ok {
			_ = p.bus.Publish(broker.TopicCompleteAck(step.UnitID), "Acknowledge", broker.AckPayload{Name: step.UnitID})
			p.completeCh <- struct{}{}
		}
	}()
}
