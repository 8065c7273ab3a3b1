// Package steering implements the four steering sub-behaviors and their
// priority-weighted combine: border repulsion, immediate-collision
// resolution, predictive avoidance, and seek-and-arrive.
package steering

import (
	"github.com/i4sim/engine/internal/spatial"
)

// Agent is the minimal view of a mover the steering behaviors need.
type Agent struct {
	Rect     spatial.Rect
	Velocity spatial.Vec2
}

// Neighbor is another agent considered for collision/predictive avoidance.
type Neighbor struct {
	Rect     spatial.Rect
	Velocity spatial.Vec2
}

// Force is a steering sub-behavior's output for one tick.
type Force struct {
	Vector spatial.Vec2
	Active bool
}

// BorderRepulsion repels penetration of the agent's rect into any static
// border segment.
func BorderRepulsion(agent Agent, borders []spatial.Segment) Force {
	var total spatial.Vec2
	active := false
	for _, seg := range borders {
		if !seg.IntersectsRect(agent.Rect) {
			continue
		}
		active = true
		// Push away from the segment's nearest point.
		away := agent.Rect.Center.Sub(nearestPointOnSegment(seg, agent.Rect.Center))
		if away.Length() < spatial.Epsilon {
			// Degenerate (center exactly on the segment): push along its
			// normal.
			dir := seg.B.Sub(seg.A).Normalize()
			away = spatial.Vec2{X: -dir.Y, Y: dir.X}
		}
		total = total.Add(away.Normalize())
	}
	return Force{Vector: total, Active: active}
}

func nearestPointOnSegment(seg spatial.Segment, p spatial.Vec2) spatial.Vec2 {
	ab := seg.B.Sub(seg.A)
	denom := ab.Dot(ab)
	if denom < spatial.Epsilon {
		return seg.A
	}
	t := p.Sub(seg.A).Dot(ab) / denom
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	return seg.A.Add(ab.Scale(t))
}

// ImmediateCollision repels overlap with any neighbor, SAT-tested at the
// agents' current positions.
func ImmediateCollision(agent Agent, neighbors []Neighbor) Force {
	var total spatial.Vec2
	active := false
	for _, n := range neighbors {
		pen := spatial.PenetrationDepth(agent.Rect, n.Rect)
		if pen.Length() < spatial.Epsilon {
			continue
		}
		active = true
		total = total.Add(pen.Normalize())
	}
	return Force{Vector: total, Active: active}
}

// PredictiveAvoidance extrapolates the agent and its neighbors one step
// ahead (at their current velocity) and steers to avoid impending overlap.
func PredictiveAvoidance(agent Agent, neighbors []Neighbor) Force {
	futureSelf := agent.Rect.At(agent.Rect.Center.Add(agent.Velocity))
	var total spatial.Vec2
	active := false
	for _, n := range neighbors {
		futureOther := n.Rect.At(n.Rect.Center.Add(n.Velocity))
		if !spatial.Overlaps(futureSelf, futureOther) {
			continue
		}
		active = true
		avoid := futureSelf.Center.Sub(futureOther.Center)
		total = total.Add(avoid.Normalize())
	}
	return Force{Vector: total, Active: active}
}

// SeekArrive seeks the head of the agent's path if present, else its
// destination, damping as it enters the braking radius.
func SeekArrive(agentPos, target spatial.Vec2, velocity spatial.Vec2, maxSpeed, brakingRadius float64, hasTarget bool) Force {
	if !hasTarget {
		return Force{}
	}
	toTarget := target.Sub(agentPos)
	dist := toTarget.Length()
	if dist < spatial.Epsilon {
		return Force{Active: true}
	}

	desiredSpeed := maxSpeed
	if dist < brakingRadius {
		desiredSpeed = maxSpeed * (dist / brakingRadius)
	}
	desired := toTarget.Normalize().Scale(desiredSpeed)
	return Force{Vector: desired.Sub(velocity), Active: true}
}
