package engine

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/echolocation/engine/profiler"
	"github.com/Carmen-Shannon/echolocation/engine/renderer"
	"github.com/Carmen-Shannon/echolocation/engine/window"
	"github.com/Carmen-Shannon/echolocation/log"
)

var logger = log.New("engine")

// Effect is per-tick GPU work driven by the engine, such as an echolocation.Echolocator.
type Effect interface {
	// Update runs before the tick callback. Effects open and close their own compute frames.
	Update() error

	// Draw runs inside the tick's render frame.
	Draw() error

	// Release frees the effect's resources when the engine stops.
	Release(ctx context.Context) error
}

// Engine runs a fixed-rate, single-goroutine tick loop over a renderer and its effects.
// Each tick runs, in order: every effect's Update, the tick callback, BeginFrame, every effect's Draw,
// EndFrame and Present, then the profiler.
type Engine interface {
	// Run ticks until ctx is cancelled, Quit is called, the window closes or the tick limit is reached.
	// Effects and then the renderer are released before Run returns.
	//
	// Parameters:
	//   - ctx: cancelling it stops the loop
	//
	// Returns:
	//   - error: the first tick failure, including recovered panics, joined with any release failure
	Run(ctx context.Context) error

	// Quit stops a running loop after the current tick. Safe to call more than once and from any goroutine.
	Quit()

	// SetTickRate changes the tick rate in ticks per second. Takes effect immediately when running.
	//
	// Parameters:
	//   - tps: target ticks per second (defaults to 60 if <= 0)
	SetTickRate(tps float64)

	// SetTickCallback registers the function called each tick between Update and Draw.
	// A returned error stops the engine.
	//
	// Parameters:
	//   - callback: receives the time since the previous tick in seconds
	SetTickCallback(callback func(deltaTime float32) error)

	// AddEffect appends an effect. Effects update and draw in the order they were added.
	//
	// Parameters:
	//   - effect: the effect to drive
	AddEffect(effect Effect)

	// EnableProfiler logs a profiling sample once per second.
	EnableProfiler()

	// DisableProfiler stops profiling output.
	DisableProfiler()

	// Ticks returns the number of ticks run so far.
	//
	// Returns:
	//   - uint64: the completed tick count
	Ticks() uint64

	// Renderer returns the renderer the engine drives.
	Renderer() renderer.Renderer

	// Window returns the window the engine polls, or nil when headless.
	Window() window.Window
}

type engine struct {
	renderer renderer.Renderer
	window   window.Window
	effects  []Effect

	tickRate       time.Duration
	tickRateCh     chan time.Duration
	tickCallback   func(deltaTime float32) error
	maxTicks       uint64
	releaseTimeout time.Duration

	profiler         *profiler.Profiler
	profilingEnabled atomic.Bool

	ticks    atomic.Uint64
	running  atomic.Bool
	quitCh   chan struct{}
	quitOnce sync.Once
}

var _ Engine = &engine{}

// NewEngine creates an Engine. WithRenderer is required before Run.
//
// Parameters:
//   - options: functional options for engine configuration
//
// Returns:
//   - Engine: the engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		tickRate:       time.Second / 60,
		tickRateCh:     make(chan time.Duration, 1),
		releaseTimeout: 5 * time.Second,
		profiler:       profiler.NewProfiler(),
		quitCh:         make(chan struct{}),
	}
	for _, opt := range options {
		opt(e)
	}

	if e.window != nil && e.renderer != nil {
		e.window.SetResizeCallback(func(width, height int) {
			e.renderer.Resize(width, height)
		})
	}
	return e
}

func (e *engine) Run(ctx context.Context) error {
	if e.renderer == nil {
		return errors.New("engine: no renderer configured")
	}
	if !e.running.CompareAndSwap(false, true) {
		return errors.New("engine: already running")
	}
	defer e.running.Store(false)

	logger.Infof("engine started at %.0f ticks/s with %d effects", float64(time.Second)/float64(e.tickRate), len(e.effects))
	runErr := e.loop(ctx)
	releaseErr := e.release()
	logger.Infof("engine stopped after %d ticks", e.ticks.Load())
	return errors.Join(runErr, releaseErr)
}

func (e *engine) loop(ctx context.Context) error {
	ticker := time.NewTicker(e.tickRate)
	defer ticker.Stop()

	lastTick := time.Now()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-e.quitCh:
			return nil
		case rate := <-e.tickRateCh:
			e.tickRate = rate
			ticker.Reset(rate)
		case <-ticker.C:
			if ctx.Err() != nil || e.quitting() {
				return nil
			}
			if e.window != nil && !e.window.ProcessEvents() {
				logger.Info("window closed")
				return nil
			}

			start := time.Now()
			dt := float32(start.Sub(lastTick).Seconds())
			lastTick = start

			if err := e.tick(dt); err != nil {
				return fmt.Errorf("tick %d: %w", e.ticks.Load()+1, err)
			}
			n := e.ticks.Add(1)

			if e.profilingEnabled.Load() {
				e.profiler.Tick(time.Since(start), e.renderer.Stats())
			}
			if e.maxTicks > 0 && n >= e.maxTicks {
				return nil
			}
		}
	}
}

// tick runs one tick. A panic anywhere in it is returned as an error.
func (e *engine) tick(dt float32) (err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("tick recovered from panic: %v\n%s", r, debug.Stack())
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	for i, fx := range e.effects {
		if err := fx.Update(); err != nil {
			return fmt.Errorf("effect %d update: %w", i, err)
		}
	}
	if e.tickCallback != nil {
		if err := e.tickCallback(dt); err != nil {
			return err
		}
	}

	if err := e.renderer.BeginFrame(); err != nil {
		return err
	}
	var drawErr error
	for i, fx := range e.effects {
		if err := fx.Draw(); err != nil {
			drawErr = fmt.Errorf("effect %d draw: %w", i, err)
			break
		}
	}
	e.renderer.EndFrame()
	e.renderer.Present()
	return drawErr
}

// release frees effects newest first, then the renderer.
func (e *engine) release() error {
	ctx, cancel := context.WithTimeout(context.Background(), e.releaseTimeout)
	defer cancel()

	var errs []error
	for i := len(e.effects) - 1; i >= 0; i-- {
		if err := e.effects[i].Release(ctx); err != nil {
			errs = append(errs, fmt.Errorf("effect %d release: %w", i, err))
		}
	}
	e.renderer.Release()
	return errors.Join(errs...)
}

func (e *engine) Quit() {
	e.quitOnce.Do(func() {
		close(e.quitCh)
	})
}

func (e *engine) quitting() bool {
	select {
	case <-e.quitCh:
		return true
	default:
		return false
	}
}

func (e *engine) SetTickRate(tps float64) {
	rate := tickInterval(tps)
	if !e.running.Load() {
		e.tickRate = rate
		return
	}
	// Replace any update the loop has not picked up yet.
	select {
	case <-e.tickRateCh:
	default:
	}
	e.tickRateCh <- rate
}

func (e *engine) SetTickCallback(callback func(deltaTime float32) error) {
	e.tickCallback = callback
}

func (e *engine) AddEffect(effect Effect) {
	e.effects = append(e.effects, effect)
}

func (e *engine) EnableProfiler() {
	e.profilingEnabled.Store(true)
}

func (e *engine) DisableProfiler() {
	e.profilingEnabled.Store(false)
}

func (e *engine) Ticks() uint64 {
	return e.ticks.Load()
}

func (e *engine) Renderer() renderer.Renderer {
	return e.renderer
}

func (e *engine) Window() window.Window {
	return e.window
}

func tickInterval(tps float64) time.Duration {
	if tps <= 0 {
		tps = 60
	}
	return time.Duration(float64(time.Second) / tps)
}
