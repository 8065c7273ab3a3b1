// Package cycle runs the update/render tick scheduler: two independent
// loops advancing at their own configured rates plus a once-per-second
// counter loop, joined under one errgroup so Run returns only after all
// three have exited. Stop only cancels the run; it does not wait.
package cycle

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	channerics "github.com/niceyeti/channerics/channels"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/sync/errgroup"
)

// Config bundles the scheduler's rate and lifecycle tunables.
type Config struct {
	TargetUPS      float64
	TargetFPS      float64
	TickCap        uint64 // 0 means unbounded
	AdjustmentHold time.Duration
}

// DefaultConfig returns the enumerated defaults.
func DefaultConfig() Config {
	return Config{
		TargetUPS:      30,
		TargetFPS:      60,
		TickCap:        0,
		AdjustmentHold: 2500 * time.Millisecond,
	}
}

var meter = otel.Meter("i4sim/cycle")

// Cycle owns the update and render loops. UpdateFunc and RenderFunc are
// supplied by the caller (the environment registry's Update and a
// display adapter's Render, respectively) and must not block.
type Cycle struct {
	cfg Config
	log zerolog.Logger

	updateFunc func()
	renderFunc func()

	mu               sync.Mutex
	paused           bool
	running          bool
	lastAdjustedAt   time.Time
	cancel           context.CancelFunc

	ticks        atomic.Uint64
	measuredUPS  atomic.Uint64 // bits of float64, via math.Float64bits
	measuredFPS  atomic.Uint64
	updateTicked atomic.Uint64 // counts within the current 1s window
	renderTicked atomic.Uint64

	tickCapReached chan struct{}
	tickCapOnce    sync.Once

	gauges struct {
		targetUPS metric.Float64ObservableGauge
		targetFPS metric.Float64ObservableGauge
		ups       metric.Float64ObservableGauge
		fps       metric.Float64ObservableGauge
		ticks     metric.Int64ObservableGauge
	}
	registration metric.Registration
}

// New constructs a Cycle bound to updateFunc/renderFunc. It starts paused,
// matching the update loop's "Starts paused" requirement; the render loop
// runs regardless of pause state so a paused scene still renders.
func New(cfg Config, log zerolog.Logger, updateFunc, renderFunc func()) (*Cycle, error) {
	c := &Cycle{
		cfg:            cfg,
		log:            log.With().Str("component", "cycle").Logger(),
		updateFunc:     updateFunc,
		renderFunc:     renderFunc,
		paused:         true,
		tickCapReached: make(chan struct{}),
	}
	if err := c.registerMetrics(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Cycle) registerMetrics() error {
	var err error
	c.gauges.targetUPS, err = meter.Float64ObservableGauge("i4sim_cycle_target_ups")
	if err != nil {
		return err
	}
	c.gauges.targetFPS, err = meter.Float64ObservableGauge("i4sim_cycle_target_fps")
	if err != nil {
		return err
	}
	c.gauges.ups, err = meter.Float64ObservableGauge("i4sim_cycle_ups")
	if err != nil {
		return err
	}
	c.gauges.fps, err = meter.Float64ObservableGauge("i4sim_cycle_fps")
	if err != nil {
		return err
	}
	c.gauges.ticks, err = meter.Int64ObservableGauge("i4sim_cycle_ticks")
	if err != nil {
		return err
	}

	c.registration, err = meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		o.ObserveFloat64(c.gauges.targetUPS, c.cfg.TargetUPS)
		o.ObserveFloat64(c.gauges.targetFPS, c.cfg.TargetFPS)
		o.ObserveFloat64(c.gauges.ups, c.UPS())
		o.ObserveFloat64(c.gauges.fps, c.FPS())
		o.ObserveInt64(c.gauges.ticks, int64(c.Ticks()))
		return nil
	}, c.gauges.targetUPS, c.gauges.targetFPS, c.gauges.ups, c.gauges.fps, c.gauges.ticks)
	return err
}

// ErrAlreadyRunning is returned by Run when the cycle is already started.
var ErrAlreadyRunning = errors.New("cycle: already running")

// Run starts the update, render, and counter loops and blocks until ctx is
// canceled, Stop is called, or the tick cap is reached. It joins all three
// loop goroutines via errgroup before returning, so callers can rely on
// every side effect having settled once Run returns.
func (c *Cycle) Run(ctx context.Context) error {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return ErrAlreadyRunning
	}
	runCtx, cancel := context.WithCancel(ctx)
	c.running = true
	c.cancel = cancel
	c.mu.Unlock()

	group, groupCtx := errgroup.WithContext(runCtx)

	group.Go(func() error {
		return c.updateLoop(groupCtx)
	})
	group.Go(func() error {
		return c.renderLoop(groupCtx)
	})
	group.Go(func() error {
		return c.counterLoop(groupCtx)
	})

	err := group.Wait()

	c.mu.Lock()
	c.running = false
	c.cancel = nil
	c.mu.Unlock()

	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Stop cancels the run context; Run's caller observes it return once every
// loop goroutine has exited.
func (c *Cycle) Stop() {
	c.mu.Lock()
	cancel := c.cancel
	c.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Pause/Resume gate the update loop only; the render loop is never paused.
// Both restart the adjustment-hold window (spec: "Adjusting target rates
// restarts an adjustment timer").
func (c *Cycle) Pause() {
	c.mu.Lock()
	c.paused = true
	c.lastAdjustedAt = time.Now()
	c.mu.Unlock()
}

func (c *Cycle) Resume() {
	c.mu.Lock()
	c.paused = false
	c.lastAdjustedAt = time.Now()
	c.mu.Unlock()
}

func (c *Cycle) Paused() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.paused
}

// SetTargetUPS/SetTargetFPS adjust the loop rates and restart the
// adjustment-hold window; they take effect on the next interval
// recomputation inside their respective loops.
func (c *Cycle) SetTargetUPS(ups float64) {
	c.mu.Lock()
	c.cfg.TargetUPS = ups
	c.lastAdjustedAt = time.Now()
	c.mu.Unlock()
}

func (c *Cycle) SetTargetFPS(fps float64) {
	c.mu.Lock()
	c.cfg.TargetFPS = fps
	c.lastAdjustedAt = time.Now()
	c.mu.Unlock()
}

// inAdjustmentHold reports whether an automatic corrector should hold off.
// Cycle itself performs no automatic correction, and nothing in the
// package calls this check.
func (c *Cycle) inAdjustmentHold() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return time.Since(c.lastAdjustedAt) < c.cfg.AdjustmentHold
}

func (c *Cycle) interval(hz float64) time.Duration {
	if hz <= 0 {
		return time.Second
	}
	return time.Duration(float64(time.Second) / hz)
}

func (c *Cycle) updateLoop(ctx context.Context) error {
	ticker := channerics.NewTicker(ctx.Done(), c.interval(c.cfg.TargetUPS))
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker:
			if c.Paused() {
				continue
			}
			c.updateFunc()
			c.updateTicked.Add(1)
			n := c.ticks.Add(1)
			if c.cfg.TickCap != 0 && n >= c.cfg.TickCap {
				c.tickCapOnce.Do(func() { close(c.tickCapReached) })
				return nil
			}
		}
	}
}

func (c *Cycle) renderLoop(ctx context.Context) error {
	ticker := channerics.NewTicker(ctx.Done(), c.interval(c.cfg.TargetFPS))
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.tickCapReached:
			return nil
		case <-ticker:
			c.renderFunc()
			c.renderTicked.Add(1)
		}
	}
}

// counterLoop samples the update/render tick counters once per second to
// derive measured UPS/FPS, consumed by the otel gauge callback.
func (c *Cycle) counterLoop(ctx context.Context) error {
	ticker := channerics.NewTicker(ctx.Done(), time.Second)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.tickCapReached:
			return nil
		case <-ticker:
			ups := c.updateTicked.Swap(0)
			fps := c.renderTicked.Swap(0)
			storeFloat(&c.measuredUPS, float64(ups))
			storeFloat(&c.measuredFPS, float64(fps))
		}
	}
}

// Ticks returns the number of update ticks stepped so far.
func (c *Cycle) Ticks() uint64 { return c.ticks.Load() }

// UPS/FPS return the most recently measured updates/frames per second.
func (c *Cycle) UPS() float64 { return loadFloat(&c.measuredUPS) }
func (c *Cycle) FPS() float64 { return loadFloat(&c.measuredFPS) }
