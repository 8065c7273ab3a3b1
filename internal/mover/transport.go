package mover

import "github.com/i4sim/engine/internal/spatial"

// TransportCost returns the Manhattan-distance cost of a Transport
// interaction from the mover's current center to a producer's processer
// position.
func (m *Mover) TransportCost(processerPosition spatial.Vec2) uint {
	return uint(m.Position.Manhattan(processerPosition))
}

// StartTransport begins a Transport task: the mover's destination becomes
// the target producer's processer position, it is bound to the requesting
// product actor, and reset is set so the navigator discards any stale path
// on the next navigate call.
func (m *Mover) StartTransport(processerPosition spatial.Vec2, serviceRequester string) {
	m.Destination = processerPosition
	m.HasDestination = true
	m.ServiceRequester = serviceRequester
	m.Reset = true
	m.arrivalReported = false
}

// ConsumeArrival reports whether the mover has just arrived at its
// destination for the first time since StartTransport, so the caller fires
// exactly one Complete per transport task rather than once per tick spent
// parked at the destination.
func (m *Mover) ConsumeArrival(arrivalRadius float64) bool {
	if m.arrivalReported || !m.HasArrived(arrivalRadius) {
		return false
	}
	m.arrivalReported = true
	return true
}

// HasArrived reports whether the mover's center is within arrivalRadius of
// its destination.
func (m *Mover) HasArrived(arrivalRadius float64) bool {
	if !m.HasDestination {
		return false
	}
	return m.Position.DistanceTo(m.Destination) <= arrivalRadius
}

// CompleteTransport finalizes a Transport task: increments the transport
// counter and clears the destination binding. ServiceRequester is left
// intact (a weak reference to the product this mover delivered) since a
// producer completing its interaction later still needs to resolve the
// product id through the mover it dequeued; the next StartTransport
// overwrites it once this mover takes on new work. The caller is
// responsible for emitting Complete to the broker and awaiting
// Acknowledge before calling this.
func (m *Mover) CompleteTransport() {
	m.TransportCount++
	m.HasDestination = false
}

// ConsumeReset clears the reset flag, returning its prior value. The
// navigator calls this once per tick to decide whether to discard a stale
// path before planning.
func (m *Mover) ConsumeReset() bool {
	wasSet := m.Reset
	m.Reset = false
	if wasSet {
		m.Path = nil
	}
	return wasSet
}
