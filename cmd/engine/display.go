package main

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"

	"github.com/i4sim/engine/internal/environment"
	"github.com/i4sim/engine/internal/spatial"
)

// pixelScale maps world units to screen pixels 1:1, since movers already
// carry multi-unit footprints expressed directly in world units.
const pixelScale = 1

var (
	colBg       = color.RGBA{20, 40, 60, 255}
	colMover    = color.RGBA{255, 230, 120, 255}
	colProducer = color.RGBA{100, 180, 255, 255}
)

// display is the ebiten.Game adapter: it reads the registry's latest
// Snapshot on every Draw, never touching the live mover/producer maps from
// the render thread (see environment.Snapshot).
type display struct {
	reg           *environment.Registry
	width, height int
}

func newDisplay(reg *environment.Registry, width, height int) *display {
	return &display{reg: reg, width: width, height: height}
}

// Render is passed to engine.New as the render callback invoked by the
// tick scheduler's render loop; the actual pixel drawing happens in Draw,
// driven by ebiten's own frame loop once RunGame is called. Render exists
// so the tick scheduler still measures FPS even when no ebiten window is
// open (headless/CI runs).
func (d *display) Render() {}

func (d *display) Update() error { return nil }

func (d *display) Draw(screen *ebiten.Image) {
	screen.Fill(colBg)
	snap := d.reg.Snapshot()

	for _, p := range snap.Producers {
		drawRect(screen, p.Position, p.Dimension, colProducer)
	}
	for _, m := range snap.Movers {
		drawRect(screen, m.Position, m.Dimension, colMover)
	}

	ebitenutil.DebugPrint(screen, fmt.Sprintf("movers=%d producers=%d collisions=%d",
		len(snap.Movers), len(snap.Producers), snap.CollisionCount))
}

func drawRect(screen *ebiten.Image, center, dim spatial.Vec2, c color.Color) {
	x0 := int((center.X - dim.X/2) * pixelScale)
	y0 := int((center.Y - dim.Y/2) * pixelScale)
	w := int(dim.X * pixelScale)
	h := int(dim.Y * pixelScale)
	for y := y0; y < y0+h; y++ {
		for x := x0; x < x0+w; x++ {
			screen.Set(x, y, c)
		}
	}
}

func (d *display) Layout(outsideWidth, outsideHeight int) (int, int) {
	return d.windowWidth(), d.windowHeight()
}

func (d *display) windowWidth() int  { return d.width * pixelScale }
func (d *display) windowHeight() int { return d.height * pixelScale }
