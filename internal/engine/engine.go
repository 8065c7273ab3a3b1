// Package engine wires the environment registry, tick scheduler, product
// supervisor, and bidding broker session into one top-level value, driven
// through Run (broker session plus tick scheduler) and Event. It has no
// per-call Tick or Render method: updates and renders come from the tick
// scheduler's own loops.
package engine

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/i4sim/engine/internal/broker"
	"github.com/i4sim/engine/internal/bus"
	"github.com/i4sim/engine/internal/config"
	"github.com/i4sim/engine/internal/cycle"
	"github.com/i4sim/engine/internal/environment"
	"github.com/i4sim/engine/internal/interaction"
	"github.com/i4sim/engine/internal/product"
)

// Event is a unit state transition requested from outside the tick loop
// (e.g. an operator toggling a producer Blocked/Alive).
type Event struct {
	UnitID string
	Toggle bool
}

// Engine is the top-level simulation value: one environment registry, one
// tick scheduler, one product supervisor, and one bidding session sharing
// a bus.
type Engine struct {
	Registry   *environment.Registry
	Cycle      *cycle.Cycle
	Supervisor *product.Supervisor
	Session    *broker.Session

	log zerolog.Logger
}

// New wires an Engine around an already-populated registry (see
// blueprint.Populate) and a bus shared with whatever broker counterpart
// (a real external broker, or internal/broker/dummy) is on the other end.
func New(reg *environment.Registry, cfg *config.Config, b bus.Bus, render func(), log zerolog.Logger) (*Engine, error) {
	supervisor := product.NewSupervisor()

	e := &Engine{
		Registry:   reg,
		Supervisor: supervisor,
		log:        log.With().Str("component", "engine").Logger(),
	}

	session := broker.NewSession(b, &handler{reg: reg}, cfg.BrokerRetryCount, cfg.BrokerRetryInterval, log)
	e.Session = session

	reg.OnMoverArrived(func(moverID string) {
		e.onMoverArrived(moverID)
	})
	reg.OnProducerCompleted(func(producerID, requesterID string, i interaction.Interaction) {
		e.onProducerCompleted(producerID, requesterID, i)
	})

	update := func() {
		reg.Update()
		supervisor.Tick(nil, nil)
	}
	c, err := cycle.New(cfg.Cycle(), log, update, render)
	if err != nil {
		return nil, err
	}
	e.Cycle = c

	return e, nil
}

// Run starts the Create handshake for units and the tick scheduler,
// blocking until ctx is canceled.
func (e *Engine) Run(ctx context.Context, units []broker.CreatePayload) error {
	go func() {
		if err := e.Session.Start(ctx, units); err != nil {
			e.log.Warn().Err(err).Msg("bidding session ended")
		}
	}()
	return e.Cycle.Run(ctx)
}

// Event applies an external state-change request.
func (e *Engine) Event(ev Event) {
	if !ev.Toggle {
		return
	}
	if p, ok := e.Registry.Producer(ev.UnitID); ok {
		p.ToggleState(func(moverID string) {
			if m, ok := e.Registry.Mover(moverID); ok {
				m.HasDestination = false
			}
		})
		_ = e.Session.StateChange(ev.UnitID, p.State.String())
	}
}

// onMoverArrived reports a Transport task's completion to the broker.
// Transport itself is not a recipe step (product.Recipes lists only
// production interactions a producer performs), so it does not advance
// the product supervisor; it only unblocks the mover for its next task.
func (e *Engine) onMoverArrived(moverID string) {
	m, ok := e.Registry.Mover(moverID)
	if !ok {
		return
	}
	if err := e.Session.Complete(context.Background(), moverID); err != nil {
		e.log.Warn().Err(err).Str("mover", moverID).Msg("transport completion not acknowledged")
	}
	m.CompleteTransport()
}

// onProducerCompleted reports a production interaction's completion and
// advances the owning product's recipe cursor. requesterID is the mover id
// the producer dequeued as its service requester (see producer.Queue); the
// product id is resolved through that mover's ServiceRequester, a weak
// reference left behind by the Transport leg that brought it here.
func (e *Engine) onProducerCompleted(producerID, requesterID string, i interaction.Interaction) {
	if m, ok := e.Registry.Mover(requesterID); ok && m.ServiceRequester != "" {
		e.Supervisor.Advance(m.ServiceRequester, producerID)
	}
	if p, ok := e.Registry.Producer(producerID); ok {
		p.FinishProcessing()
	}
	if err := e.Session.Complete(context.Background(), producerID); err != nil {
		e.log.Warn().Err(err).Str("producer", producerID).Msg("processing completion not acknowledged")
	}
}
