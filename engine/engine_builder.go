package engine

import (
	"time"

	"github.com/Carmen-Shannon/echolocation/engine/profiler"
	"github.com/Carmen-Shannon/echolocation/engine/renderer"
	"github.com/Carmen-Shannon/echolocation/engine/window"
)

// EngineBuilderOption is a functional option for configuring an Engine.
type EngineBuilderOption func(*engine)

// WithRenderer sets the renderer the engine opens frames on. The engine releases it when Run returns.
//
// Parameters:
//   - r: the renderer
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRenderer(r renderer.Renderer) EngineBuilderOption {
	return func(e *engine) {
		e.renderer = r
	}
}

// WithWindow polls the window every tick and stops when it closes. Resizes are forwarded to the renderer.
//
// Parameters:
//   - w: an open Window
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithWindow(w window.Window) EngineBuilderOption {
	return func(e *engine) {
		e.window = w
	}
}

// WithTickRate sets the tick rate in ticks per second. Values <= 0 select the default of 60.
//
// Parameters:
//   - tps: target ticks per second
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithTickRate(tps float64) EngineBuilderOption {
	return func(e *engine) {
		e.tickRate = tickInterval(tps)
	}
}

// WithTickCallback registers the per-tick game logic. See Engine.SetTickCallback.
func WithTickCallback(callback func(deltaTime float32) error) EngineBuilderOption {
	return func(e *engine) {
		e.tickCallback = callback
	}
}

// WithEffect appends an effect. Effects update and draw in the order they were added.
//
// Parameters:
//   - effect: the effect to drive
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithEffect(effect Effect) EngineBuilderOption {
	return func(e *engine) {
		e.effects = append(e.effects, effect)
	}
}

// WithMaxTicks stops Run after n ticks. Zero means no limit.
func WithMaxTicks(n uint64) EngineBuilderOption {
	return func(e *engine) {
		e.maxTicks = n
	}
}

// WithReleaseTimeout bounds how long Run waits for effects to release. Default 5 seconds.
func WithReleaseTimeout(d time.Duration) EngineBuilderOption {
	return func(e *engine) {
		if d > 0 {
			e.releaseTimeout = d
		}
	}
}

// WithProfiling enables or disables the periodic profiling log.
//
// Parameters:
//   - enabled: if true, logs a profiling sample once per interval
//   - options: options for the profiler, such as profiler.WithInterval
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiling(enabled bool, options ...profiler.ProfilerBuilderOption) EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled.Store(enabled)
		if len(options) > 0 {
			e.profiler = profiler.NewProfiler(options...)
		}
	}
}
