package engine

import (
	"github.com/i4sim/engine/internal/broker"
	"github.com/i4sim/engine/internal/environment"
	"github.com/i4sim/engine/internal/interaction"
	"github.com/i4sim/engine/internal/spatial"
)

// handler implements broker.Handler against the environment registry: cost
// queries and Perform bindings resolve to the mover/producer they name.
type handler struct {
	reg *environment.Registry
}

func (h *handler) Cost(unit string, i interaction.Interaction, destination *broker.Location) (uint64, bool) {
	if i == interaction.Transport {
		m, ok := h.reg.Mover(unit)
		if !ok || !m.IsAlive() || m.Disabled || destination == nil {
			return 0, false
		}
		dest := spatial.Vec2{X: destination.X, Y: destination.Y}
		return uint64(m.TransportCost(dest)), true
	}

	p, ok := h.reg.Producer(unit)
	if !ok || !p.IsAlive() {
		return 0, false
	}
	cost, ok := p.Cost(i)
	return uint64(cost), ok
}

func (h *handler) Perform(unit string, i interaction.Interaction, destination *broker.Location, serviceRequester string) error {
	if i == interaction.Transport {
		m, ok := h.reg.Mover(unit)
		if !ok {
			return errUnitNotFound(unit)
		}
		var dest spatial.Vec2
		if destination != nil {
			dest = spatial.Vec2{X: destination.X, Y: destination.Y}
		}
		m.StartTransport(dest, serviceRequester)
		return nil
	}

	p, ok := h.reg.Producer(unit)
	if !ok {
		return errUnitNotFound(unit)
	}
	cost, _ := p.Cost(i)
	if !p.StartProcessing(i, cost) {
		return errCannotPerform(unit)
	}
	return nil
}
