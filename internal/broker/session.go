package broker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/i4sim/engine/internal/bus"
	"github.com/i4sim/engine/internal/interaction"
)

// Handler is the engine-side contract a Session dispatches RequestCost and
// Perform messages to.
type Handler interface {
	// Cost answers what unitName would charge to perform i, returning
	// ok=false when the unit cannot service the request at all (Blocked,
	// or the interaction is unsupported); ResponseCost is then omitted
	// entirely rather than sent with a zero cost.
	Cost(unitName string, i interaction.Interaction, destination *Location) (cost uint64, ok bool)
	// Perform binds unitName to the task on behalf of serviceRequester (the
	// product id named in the RequestCost that preceded this Perform, or ""
	// if none was recorded). Completion is reported later via
	// Session.Complete, not as this call's return.
	Perform(unitName string, i interaction.Interaction, destination *Location, serviceRequester string) error
}

// ErrRetriesExhausted is returned when a message exceeds its retry budget
// without a matching acknowledgement.
var ErrRetriesExhausted = errors.New("broker: retries exhausted")

// Session runs one bidding-session lifetime: the strict sequential Create
// handshake, then the RequestCost/Perform dispatch loop, until Purge.
type Session struct {
	id            string
	bus           bus.Bus
	log           zerolog.Logger
	handler       Handler
	retryCount    int
	retryInterval time.Duration

	// pendingServiceRequester remembers the serviceRequester named in the
	// most recent RequestCost for a unit, so the Perform that follows it
	// can be attributed to the right product. Only ever touched from the
	// serve loop's single goroutine, so it needs no lock of its own.
	pendingServiceRequester map[string]string
}

// NewSession constructs a Session identified by a fresh correlation id.
func NewSession(b bus.Bus, handler Handler, retryCount int, retryInterval time.Duration, log zerolog.Logger) *Session {
	id := uuid.NewString()
	return &Session{
		id:                      id,
		bus:                     b,
		log:                     log.With().Str("component", "broker").Str("session", id).Logger(),
		handler:                 handler,
		retryCount:              retryCount,
		retryInterval:           retryInterval,
		pendingServiceRequester: make(map[string]string),
	}
}

// Start runs the Create handshake for every unit in order — unit N+1 is not
// announced until unit N's Acknowledge arrives — then subscribes to every
// unit's requestCost and perform topics and serves them until ctx is
// canceled. On Create failure it purges and returns the error; the caller
// (supervisor) is expected to stop the bidding session.
func (s *Session) Start(ctx context.Context, units []CreatePayload) error {
	for _, unit := range units {
		if err := s.createOne(ctx, unit); err != nil {
			_ = s.Purge()
			return err
		}
	}
	return s.serve(ctx, units)
}

func (s *Session) createOne(ctx context.Context, unit CreatePayload) error {
	acks := s.bus.Subscribe(topicCreateAck)
	for attempt := 0; attempt < s.retryCount; attempt++ {
		if err := s.bus.Publish(topicCreate, messageTypeCreate, unit); err != nil {
			return err
		}
		if waitForAck(ctx, acks, unit.Name, s.retryInterval) {
			return nil
		}
	}
	return fmt.Errorf("%w: create %q", ErrRetriesExhausted, unit.Name)
}

func waitForAck(ctx context.Context, acks <-chan bus.Envelope, name string, timeout time.Duration) bool {
	deadline := time.After(timeout)
	for {
		select {
		case <-ctx.Done():
			return false
		case <-deadline:
			return false
		case env, ok := <-acks:
			if !ok {
				return false
			}
			var ack AckPayload
			if err := json.Unmarshal(env.Payload, &ack); err != nil {
				continue
			}
			if ack.Name == name {
				return true
			}
		}
	}
}

// serve fans every unit's requestCost/perform subscription into one
// dispatch loop, mirroring the engine-side protocol handler.
func (s *Session) serve(ctx context.Context, units []CreatePayload) error {
	type inbound struct {
		unit    string
		kind    string
		payload json.RawMessage
	}
	merged := make(chan inbound, 64)

	fanIn := func(unit, kind string, ch <-chan bus.Envelope) {
		for {
			select {
			case <-ctx.Done():
				return
			case env, ok := <-ch:
				if !ok {
					return
				}
				select {
				case merged <- inbound{unit: unit, kind: kind, payload: env.Payload}:
				case <-ctx.Done():
					return
				}
			}
		}
	}

	for _, unit := range units {
		go fanIn(unit.Name, messageTypeRequestCost, s.bus.Subscribe(topicRequestCost(unit.Name)))
		go fanIn(unit.Name, messageTypePerform, s.bus.Subscribe(topicPerform(unit.Name)))
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg := <-merged:
			switch msg.kind {
			case messageTypeRequestCost:
				s.handleRequestCost(msg.unit, msg.payload)
			case messageTypePerform:
				s.handlePerform(msg.unit, msg.payload)
			}
		}
	}
}

func (s *Session) handleRequestCost(unit string, raw json.RawMessage) {
	var req RequestCostPayload
	if err := json.Unmarshal(raw, &req); err != nil {
		s.log.Warn().Err(err).Str("unit", unit).Msg("malformed RequestCost, dropping")
		return
	}
	i, ok := interaction.FromURL(req.InteractionElement)
	if !ok {
		s.log.Warn().Str("unit", unit).Str("interactionElement", req.InteractionElement).Msg("unknown interaction, dropping")
		return
	}
	s.pendingServiceRequester[unit] = req.ServiceRequester

	cost, ok := s.handler.Cost(unit, i, req.Destination)
	if !ok || cost == 0 {
		return // ResponseCost is omitted entirely when the unit cannot service the request
	}
	if err := s.bus.Publish(topicResponseCost(unit), messageTypeResponseCost, ResponseCostPayload{Cost: cost}); err != nil {
		s.log.Warn().Err(err).Str("unit", unit).Msg("failed to publish ResponseCost")
	}
}

func (s *Session) handlePerform(unit string, raw json.RawMessage) {
	var perform PerformPayload
	if err := json.Unmarshal(raw, &perform); err != nil {
		s.log.Warn().Err(err).Str("unit", unit).Msg("malformed Perform, dropping")
		return
	}
	i, ok := interaction.FromURL(perform.InteractionElement)
	if !ok {
		s.log.Warn().Str("unit", unit).Str("interactionElement", perform.InteractionElement).Msg("unknown interaction, dropping")
		return
	}
	serviceRequester := s.pendingServiceRequester[unit]
	delete(s.pendingServiceRequester, unit)

	if err := s.handler.Perform(unit, i, perform.Destination, serviceRequester); err != nil {
		s.log.Warn().Err(err).Str("unit", unit).Msg("perform failed")
		return
	}
	if err := s.bus.Publish(topicPerformAck(unit), messageTypeAck, AckPayload{Name: unit}); err != nil {
		s.log.Warn().Err(err).Str("unit", unit).Msg("failed to publish Perform ack")
	}
}

// Complete reports that unit finished its bound task, retrying up to the
// session's retry budget for a matching Complete ack. Exhaustion is logged
// and non-fatal: the product stays in the in-progress tracker.
func (s *Session) Complete(ctx context.Context, unit string) error {
	acks := s.bus.Subscribe(topicCompleteAck(unit))
	for attempt := 0; attempt < s.retryCount; attempt++ {
		if err := s.bus.Publish(topicComplete(unit), messageTypeComplete, CompletePayload{}); err != nil {
			return err
		}
		if waitForAck(ctx, acks, unit, s.retryInterval) {
			return nil
		}
	}
	err := fmt.Errorf("%w: complete %q", ErrRetriesExhausted, unit)
	s.log.Warn().Err(err).Msg("complete retries exhausted, leaving product in-progress")
	return err
}

// StateChange announces a unit's Alive/Blocked transition.
func (s *Session) StateChange(unit, state string) error {
	return s.bus.Publish(topicStateChange(unit), messageTypeStateChange, StateChangePayload{Name: unit, State: state})
}

// Purge publishes the bidding session's shutdown notice.
func (s *Session) Purge() error {
	return s.bus.Publish(topicPurge, messageTypePurge, PurgePayload{})
}
