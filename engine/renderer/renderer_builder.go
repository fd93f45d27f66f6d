package renderer

import (
	"github.com/Carmen-Shannon/echolocation/engine/renderer/pipeline"
)

// RendererBuilderOption is a functional option applied to a renderer during construction via NewRenderer.
type RendererBuilderOption func(*renderer)

// WithPipelines registers pipelines as part of construction.
// NewRenderer fails if any of them cannot be created.
//
// Parameters:
//   - pipelines: the pipelines to register
//
// Returns:
//   - RendererBuilderOption: a function that queues the pipelines for registration
func WithPipelines(pipelines ...pipeline.Pipeline) RendererBuilderOption {
	return func(r *renderer) {
		r.pendingPipelines = append(r.pendingPipelines, pipelines...)
	}
}

// WithSurface presents frames to the given surface. Without a surface the WGPU backend renders
// to an offscreen target of the configured size.
//
// Parameters:
//   - surface: the surface source, typically a window.Window
//
// Returns:
//   - RendererBuilderOption: a function that sets the surface
func WithSurface(surface SurfaceSource) RendererBuilderOption {
	return func(r *renderer) {
		r.surface = surface
	}
}

// WithSize sets the render target size used when no surface is attached.
//
// Parameters:
//   - width: target width in pixels
//   - height: target height in pixels
//
// Returns:
//   - RendererBuilderOption: a function that sets the target size
func WithSize(width, height int) RendererBuilderOption {
	return func(r *renderer) {
		r.width, r.height = width, height
	}
}

// WithPresentMode sets the surface present mode which controls how frames are delivered to the display.
//
// Parameters:
//   - mode: the PresentMode to use (VSync or Uncapped)
//
// Returns:
//   - RendererBuilderOption: a function that applies the present mode option to a renderer
func WithPresentMode(mode PresentMode) RendererBuilderOption {
	return func(r *renderer) {
		r.pendingPresentMode = &mode
	}
}

// WithForceFallbackAdapter requests the platform's software WGPU adapter.
// Useful on machines without a usable GPU driver.
//
// Parameters:
//   - force: true to request the fallback adapter
//
// Returns:
//   - RendererBuilderOption: a function that sets the adapter preference
func WithForceFallbackAdapter(force bool) RendererBuilderOption {
	return func(r *renderer) {
		r.forceFallbackAdapter = force
	}
}
