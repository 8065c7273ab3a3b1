// Package mover implements the per-agent transport unit model: pose and
// velocity, path consumption, blocked/free-direction queries, collision
// cooldown bookkeeping, and the transport task life cycle.
package mover

import (
	"github.com/i4sim/engine/internal/ident"
	"github.com/i4sim/engine/internal/pathfind"
	"github.com/i4sim/engine/internal/spatial"
)

// Default kinematic limits and collision cooldown; the collision cooldown
// duration is overridable per-mover via SetCooldownTicks rather than fixed.
const (
	MaxSpeed         = 2.0
	MaxForce         = 0.6
	DefaultCooldown  = 30 // ticks
	blockedCount     = 3
	blockedMultiplier = 5
)

// Direction is one of the four cardinal directions used by IsBlocked and
// GetFreeDirections.
type Direction int

const (
	North Direction = iota
	East
	South
	West
)

var cardinalUnit = map[Direction]spatial.Vec2{
	North: {X: 0, Y: -1},
	East:  {X: 1, Y: 0},
	South: {X: 0, Y: 1},
	West:  {X: -1, Y: 0},
}

// Mover is the autonomous rectangular transport agent of the floor.
type Mover struct {
	ident.Unit

	Position   spatial.Vec2
	Dimension  spatial.Vec2
	Velocity   spatial.Vec2
	Acceleration spatial.Vec2

	Destination         spatial.Vec2
	SwapDestination     spatial.Vec2
	HasDestination       bool
	DestinationUnreachable bool
	Reset                bool

	Path []spatial.Vec2 // consumed front-first

	CellWeight uint

	Collided uint // cooldown counter; >0 means "recently collided"

	Distance       float64
	TransportCount uint

	ServiceRequester string // product actor id, weak reference; "" if none
	Disabled         bool

	ReplanState pathfind.ReplanState

	cooldownTicks   uint
	arrivalReported bool
}

// New constructs a Mover at rest at position with the given footprint.
func New(id string, model ident.Model, position, dimension spatial.Vec2) *Mover {
	return &Mover{
		Unit:          ident.Unit{ID: id, Model: model, State: ident.Alive},
		Position:      position,
		Dimension:     dimension,
		cooldownTicks: DefaultCooldown,
	}
}

// Rect returns the mover's current world-space footprint.
func (m *Mover) Rect() spatial.Rect {
	return spatial.Rect{Center: m.Position, Dim: m.Dimension}
}

// SetCooldownTicks overrides the collision cooldown duration.
func (m *Mover) SetCooldownTicks(ticks uint) { m.cooldownTicks = ticks }

// Disable marks the mover disabled: its state becomes Blocked and its path
// is cleared.
func (m *Mover) Disable() {
	m.Disabled = true
	m.State = ident.Blocked
	m.Path = nil
}

// PathHead returns the next waypoint and whether one exists.
func (m *Mover) PathHead() (spatial.Vec2, bool) {
	if len(m.Path) == 0 {
		return spatial.Vec2{}, false
	}
	return m.Path[0], true
}

// AdvancePath pops every leading waypoint the mover has already reached
// (within arrivalRadius). It does not touch Distance; ApplyMotion
// accumulates traveled distance.
func (m *Mover) AdvancePath(arrivalRadius float64) {
	for len(m.Path) > 0 {
		head := m.Path[0]
		if m.Position.DistanceTo(head) > arrivalRadius {
			return
		}
		m.Path = m.Path[1:]
	}
}

// SeekTarget returns the point the seek-and-arrive behavior should steer
// toward: the head of the path if present, else the destination, and
// whether a target exists at all.
func (m *Mover) SeekTarget() (spatial.Vec2, bool) {
	if head, ok := m.PathHead(); ok {
		return head, true
	}
	if m.HasDestination {
		return m.Destination, true
	}
	return spatial.Vec2{}, false
}

// Tick advances the bookkeeping that must happen every tick regardless of
// steering outcome: collision cooldown decay. Cumulative distance is
// accumulated by ApplyMotion, not here.
func (m *Mover) Tick() {
	if m.Collided > 0 {
		m.Collided--
	}
}

// ApplyMotion integrates a new position/velocity computed by the steering
// composite and accumulates distance traveled.
func (m *Mover) ApplyMotion(newPosition, newVelocity spatial.Vec2) {
	m.Distance += m.Position.DistanceTo(newPosition)
	m.Position = newPosition
	m.Velocity = newVelocity
}

// RegisterCollision records a SAT overlap episode: only on a transition from
// collided==0 does it reset the cooldown counter, so repeated overlap on
// successive ticks doesn't retrigger it. It returns true the first time
// within a cooldown window, so the caller can decide whether to bump its own
// global tally.
func (m *Mover) RegisterCollision() (firstInWindow bool) {
	if m.Collided > 0 {
		return false
	}
	m.Collided = m.cooldownTicks
	return true
}

// IsBlocked simulates stepping distance = max_speed*blockedMultiplier in
// each of the four cardinal directions; a direction is blocked if the
// stepped rectangle intersects a border or SAT-collides with a neighbor.
// Returns true once at least `count` directions are blocked.
func (m *Mover) IsBlocked(neighbors []spatial.Rect, borders []spatial.Segment) bool {
	free := m.GetFreeDirections(neighbors, borders, MaxSpeed*blockedMultiplier)
	blocked := 0
	for _, isFree := range free {
		if !isFree {
			blocked++
		}
	}
	return blocked >= blockedCount
}

// GetFreeDirections tests each cardinal direction at testDistance and
// returns which are unobstructed.
func (m *Mover) GetFreeDirections(neighbors []spatial.Rect, borders []spatial.Segment, testDistance float64) map[Direction]bool {
	result := make(map[Direction]bool, 4)
	for dir, unit := range cardinalUnit {
		stepped := m.Rect().At(m.Position.Add(unit.Scale(testDistance)))
		blocked := false
		for _, seg := range borders {
			if seg.IntersectsRect(stepped) {
				blocked = true
				break
			}
		}
		if !blocked {
			for _, nb := range neighbors {
				if spatial.Overlaps(stepped, nb) {
					blocked = true
					break
				}
			}
		}
		result[dir] = !blocked
	}
	return result
}
