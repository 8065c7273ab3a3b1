// Package producer implements the stationary production unit: its queue,
// interaction counters, Idle->Queued->Processing state machine, and cost
// computation (including the dynamic-cost expression extension).
package producer

import (
	"github.com/i4sim/engine/internal/ident"
	"github.com/i4sim/engine/internal/interaction"
	"github.com/i4sim/engine/internal/spatial"
)

// Counter tracks how many times an interaction has been performed and the
// cumulative ticks spent performing it.
type Counter struct {
	Count uint
	Ticks uint
}

// Producer is the stationary production unit of the floor.
type Producer struct {
	ident.Unit

	Position          spatial.Vec2
	Dimension         spatial.Vec2
	ProcesserPosition spatial.Vec2

	InteractionCost    map[interaction.Interaction]uint
	InteractionCounter map[interaction.Interaction]*Counter
	costExprs          map[interaction.Interaction]*CostExpr

	Queue               []string // mover ids, FIFO except removal by id
	ServiceRequester     string
	ProcessingCountdown  uint
	EmptyQueuedTicks     uint
	CurrentInteraction   interaction.Interaction
}

// New constructs an idle Producer with the given static interaction costs.
func New(id string, model ident.Model, position, processerPosition spatial.Vec2, costs map[interaction.Interaction]uint) *Producer {
	if costs == nil {
		costs = map[interaction.Interaction]uint{}
	}
	return &Producer{
		Unit:               ident.Unit{ID: id, Model: model, State: ident.Alive},
		Position:           position,
		ProcesserPosition:  processerPosition,
		InteractionCost:    costs,
		InteractionCounter: make(map[interaction.Interaction]*Counter),
	}
}

// Rect returns the producer's current world-space footprint.
func (p *Producer) Rect() spatial.Rect {
	return spatial.Rect{Center: p.Position, Dim: p.Dimension}
}

// SetCostExpression installs an expr-lang override for i's cost. Pass a nil
// program to remove an existing override.
func (p *Producer) SetCostExpression(i interaction.Interaction, expr *CostExpr) {
	if p.costExprs == nil {
		p.costExprs = make(map[interaction.Interaction]*CostExpr)
	}
	if expr == nil {
		delete(p.costExprs, i)
		return
	}
	p.costExprs[i] = expr
}

// Cost returns the cost of performing i here and whether it is supported at
// all. Transport is never supported by a producer (it is costed by the
// mover); non-Transport interactions fall back to 0 if unsupported.
func (p *Producer) Cost(i interaction.Interaction) (uint, bool) {
	if i == interaction.Transport {
		return 0, false
	}
	base, ok := p.InteractionCost[i]
	if !ok {
		return 0, false
	}
	if expr, hasExpr := p.costExprs[i]; hasExpr {
		if v, err := expr.Eval(base, len(p.Queue), p.EmptyQueuedTicks); err == nil {
			return v, true
		}
	}
	return base, true
}

// Enqueue appends moverID to the tail of the queue.
func (p *Producer) Enqueue(moverID string) {
	p.Queue = append(p.Queue, moverID)
}

// Remove deletes moverID from the queue wherever it sits (the queue is FIFO
// except for removals by id).
func (p *Producer) Remove(moverID string) {
	out := p.Queue[:0]
	for _, id := range p.Queue {
		if id != moverID {
			out = append(out, id)
		}
	}
	p.Queue = out
}

// IsQueued reports whether the producer currently has movers waiting.
func (p *Producer) IsQueued() bool { return len(p.Queue) > 0 }

// IsProcessing reports whether a service requester is currently bound.
func (p *Producer) IsProcessing() bool { return p.ServiceRequester != "" }

// StartProcessing binds the head of the queue as the service requester and
// begins the countdown for i. It requires the producer to be Alive and idle
// (no current service requester); returns false if either precondition
// fails or the queue is empty.
func (p *Producer) StartProcessing(i interaction.Interaction, cost uint) bool {
	if p.State != ident.Alive || p.IsProcessing() || len(p.Queue) == 0 {
		return false
	}
	p.ServiceRequester = p.Queue[0]
	p.Queue = p.Queue[1:]
	p.ProcessingCountdown = cost
	p.CurrentInteraction = i

	counter, ok := p.InteractionCounter[i]
	if !ok {
		counter = &Counter{}
		p.InteractionCounter[i] = counter
	}
	counter.Count++
	return true
}

// Tick advances the processing state machine by one tick. It returns the
// service requester id, the interaction it was bound for, and true exactly
// when the countdown reaches zero this tick (the caller should emit
// Complete to the broker and reset the binding via FinishProcessing).
func (p *Producer) Tick() (completedRequester string, completedInteraction interaction.Interaction, completed bool) {
	if p.IsProcessing() {
		if counter, ok := p.InteractionCounter[p.CurrentInteraction]; ok {
			counter.Ticks++
		}
		if p.ProcessingCountdown > 0 {
			p.ProcessingCountdown--
		}
		if p.ProcessingCountdown == 0 {
			return p.ServiceRequester, p.CurrentInteraction, true
		}
		return "", 0, false
	}
	if p.State == ident.Blocked || len(p.Queue) == 0 {
		p.EmptyQueuedTicks++
	}
	return "", 0, false
}

// FinishProcessing clears the service-requester binding after a Complete has
// been emitted for it.
func (p *Producer) FinishProcessing() {
	p.ServiceRequester = ""
	p.ProcessingCountdown = 0
}

// ToggleState flips Alive<->Blocked. When the producer becomes Blocked, it
// notifies every queued mover via the bailed callback, clears the queue, and
// cancels any current processing.
func (p *Producer) ToggleState(bailed func(moverID string)) {
	if p.State == ident.Alive {
		p.State = ident.Blocked
		for _, id := range p.Queue {
			if bailed != nil {
				bailed(id)
			}
		}
		p.Queue = nil
		p.ServiceRequester = ""
		p.ProcessingCountdown = 0
		return
	}
	p.State = ident.Alive
}
