package steering

import "github.com/i4sim/engine/internal/spatial"

// Composite combines the four sub-behaviors per a strict priority cascade:
// border and collision always contribute when active; the predictive force
// only contributes when neither border nor collision is active; seek only
// contributes when none of the above are active.
type Composite struct {
	Border     Force
	Collision  Force
	Predictive Force
	Seek       Force
}

// Weights returns the 0/1 weight assigned to each behavior under the
// priority rule.
func (c Composite) Weights() (border, collision, predictive, seek float64) {
	if c.Border.Active {
		border = 1
	}
	if c.Collision.Active {
		collision = 1
	}
	if c.Predictive.Active && !c.Border.Active && !c.Collision.Active {
		predictive = 1
	}
	if c.Seek.Active && !c.Border.Active && !c.Collision.Active && !c.Predictive.Active {
		seek = 1
	}
	return
}

// Acceleration sums the weighted forces and clamps to maxForce.
func (c Composite) Acceleration(maxForce float64) spatial.Vec2 {
	wb, wc, wp, ws := c.Weights()
	a := c.Border.Vector.Scale(wb).
		Add(c.Collision.Vector.Scale(wc)).
		Add(c.Predictive.Vector.Scale(wp)).
		Add(c.Seek.Vector.Scale(ws))
	return a.Limit(maxForce)
}

// Integrate applies one tick of the motion integration: accumulate
// acceleration, clamp to maxForce, add to velocity, clamp to maxSpeed, and
// advance position.
func Integrate(position, velocity spatial.Vec2, composite Composite, maxForce, maxSpeed float64) (newPosition, newVelocity spatial.Vec2) {
	a := composite.Acceleration(maxForce)
	v := velocity.Add(a).Limit(maxSpeed)
	p := position.Add(v)
	return p, v
}
