// Command engine runs an i4sim floor from a JSON blueprint, optionally
// showing an ebiten window of movers and producers.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"

	"github.com/i4sim/engine/internal/blueprint"
	"github.com/i4sim/engine/internal/broker"
	"github.com/i4sim/engine/internal/broker/dummy"
	"github.com/i4sim/engine/internal/bus"
	"github.com/i4sim/engine/internal/config"
	"github.com/i4sim/engine/internal/engine"
	"github.com/i4sim/engine/internal/environment"
	"github.com/i4sim/engine/internal/interaction"
	"github.com/i4sim/engine/internal/product"
)

func main() {
	blueprintPath := flag.String("blueprint", "", "path to a floor blueprint JSON file (required)")
	configPath := flag.String("config", "", "optional YAML config file overriding defaults")
	gui := flag.Bool("gui", false, "show an ebiten window of the floor")
	flag.Parse()

	if *blueprintPath == "" {
		log.Fatalf("-blueprint is required")
	}

	var logger zerolog.Logger
	if isatty.IsTerminal(os.Stdout.Fd()) {
		logger = zerolog.New(zerolog.NewConsoleWriter()).With().Timestamp().Logger()
	} else {
		logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	}

	f, err := os.Open(*blueprintPath)
	if err != nil {
		log.Fatalf("opening blueprint: %v", err)
	}
	bp, err := blueprint.Decode(f)
	f.Close()
	if err != nil {
		log.Fatalf("decoding blueprint: %v", err)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	reg := environment.New(bp.Grid(), bp.Segments(), cfg.Environment(), logger)
	if err := bp.Populate(reg); err != nil {
		log.Fatalf("populating registry from blueprint: %v", err)
	}

	b := bus.NewLoopback()
	defer b.Close()

	cellWidth := bp.Width * int(bp.CellSize)
	cellHeight := bp.Height * int(bp.CellSize)
	display := newDisplay(reg, cellWidth, cellHeight)

	eng, err := engine.New(reg, cfg, b, display.Render, logger)
	if err != nil {
		log.Fatalf("wiring engine: %v", err)
	}
	eng.Cycle.Resume()

	proc := dummy.New(b, logger)
	seedDemand(proc, eng.Supervisor, bp)

	units := createPayloadsFromBlueprint(bp)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sig
		cancel()
	}()

	go func() {
		if err := eng.Run(ctx, units); err != nil {
			logger.Error().Err(err).Msg("engine run ended with error")
		}
	}()

	go func() {
		ticker := time.NewTicker(time.Duration(float64(time.Second) / cfg.TargetUPS))
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				proc.Tick()
			}
		}
	}()

	if *gui {
		ebiten.SetWindowSize(display.windowWidth(), display.windowHeight())
		ebiten.SetWindowTitle(fmt.Sprintf("i4sim | movers=%d producers=%d", len(bp.Movers), len(bp.Producers)))
		if err := ebiten.RunGame(display); err != nil {
			logger.Error().Err(err).Msg("ebiten run ended with error")
		}
		cancel()
		return
	}

	<-ctx.Done()
}

func createPayloadsFromBlueprint(bp *blueprint.Blueprint) []broker.CreatePayload {
	out := make([]broker.CreatePayload, 0, len(bp.Movers)+len(bp.Producers))
	for _, m := range bp.Movers {
		out = append(out, broker.CreatePayload{Name: m.ID, Model: m.Model, State: m.State})
	}
	for _, p := range bp.Producers {
		out = append(out, broker.CreatePayload{Name: p.ID, Model: p.Model, State: p.State})
	}
	return out
}

// seedDemand registers one Trimmer product per mover/producer pairing in the
// blueprint and enqueues its steps with proc: a Transport leg binding the
// mover to the producer's processer position, followed by the producer's
// recipe interactions in order. Movers beyond the producer count sit idle
// until an operator or a future routing pass gives them new demand.
func seedDemand(proc *dummy.Procedure, supervisor *product.Supervisor, bp *blueprint.Blueprint) {
	n := len(bp.Movers)
	if len(bp.Producers) < n {
		n = len(bp.Producers)
	}
	for i := 0; i < n; i++ {
		m := bp.Movers[i]
		p := bp.Producers[i]
		productID := dummy.NewProduct(supervisor, product.Trimmer)
		dest := &broker.Location{X: p.ProcesserPosition.X, Y: p.ProcesserPosition.Y}

		proc.Enqueue(dummy.Step{
			UnitID:      m.ID,
			ProductID:   productID,
			Interaction: interaction.Transport,
			Destination: dest,
		})
		for _, step := range product.Recipes[product.Trimmer] {
			proc.Enqueue(dummy.Step{
				UnitID:      p.ID,
				ProductID:   productID,
				Interaction: step,
			})
		}
	}
}
