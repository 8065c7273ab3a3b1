package steering

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/i4sim/engine/internal/spatial"
)

func TestWeightsPriorityCascade(t *testing.T) {
	c := Composite{
		Border:     Force{Active: true},
		Collision:  Force{Active: true},
		Predictive: Force{Active: true},
		Seek:       Force{Active: true},
	}
	wb, wc, wp, ws := c.Weights()
	assert.Equal(t, 1.0, wb)
	assert.Equal(t, 1.0, wc)
	assert.Zero(t, wp)
	assert.Zero(t, ws)
}

func TestWeightsSeekOnlyWhenNothingElseActive(t *testing.T) {
	c := Composite{Seek: Force{Active: true}}
	_, _, _, ws := c.Weights()
	assert.Equal(t, 1.0, ws)
}

func TestWeightsPredictiveOnlyWithoutBorderOrCollision(t *testing.T) {
	c := Composite{Predictive: Force{Active: true}, Collision: Force{Active: true}}
	_, _, wp, _ := c.Weights()
	assert.Zero(t, wp)
}

func TestIntegrateClampsToMaxSpeedAndForce(t *testing.T) {
	composite := Composite{Seek: Force{Vector: spatial.Vec2{X: 100, Y: 0}, Active: true}}
	pos, vel := spatial.Vec2{}, spatial.Vec2{}
	newPos, newVel := Integrate(pos, vel, composite, 0.6, 2)

	assert.LessOrEqual(t, newVel.Length(), 2.0+spatial.Epsilon)
	assert.InDelta(t, newVel.Length(), 0.6, 1e-6)
	assert.Equal(t, newPos, pos.Add(newVel))
}

func TestBorderRepulsionActiveOnIntersection(t *testing.T) {
	agent := Agent{Rect: spatial.Rect{Center: spatial.Vec2{X: 0, Y: 0}, Dim: spatial.Vec2{X: 4, Y: 4}}}
	borders := []spatial.Segment{{A: spatial.Vec2{X: -10, Y: 0}, B: spatial.Vec2{X: 10, Y: 0}}}
	f := BorderRepulsion(agent, borders)
	assert.True(t, f.Active)
}

func TestImmediateCollisionInactiveWhenApart(t *testing.T) {
	agent := Agent{Rect: spatial.Rect{Center: spatial.Vec2{X: 0, Y: 0}, Dim: spatial.Vec2{X: 2, Y: 2}}}
	neighbors := []Neighbor{{Rect: spatial.Rect{Center: spatial.Vec2{X: 100, Y: 100}, Dim: spatial.Vec2{X: 2, Y: 2}}}}
	f := ImmediateCollision(agent, neighbors)
	assert.False(t, f.Active)
}

func TestSeekArriveDampensInsideBrakingRadius(t *testing.T) {
	f := SeekArrive(spatial.Vec2{X: 0, Y: 0}, spatial.Vec2{X: 1, Y: 0}, spatial.Vec2{}, 2, 10, true)
	assert.True(t, f.Active)
	assert.InDelta(t, 0.2, f.Vector.Length(), 1e-9) // 2 * (1/10) instead of full speed 2
}
