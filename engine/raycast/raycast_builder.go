package raycast

import "time"

// RaycasterBuilderOption is a functional option applied to a raycaster during construction via NewRaycaster.
type RaycasterBuilderOption func(*raycaster)

// WithScene sets the geometry rays are evaluated against. Without a scene every ray misses.
//
// Parameters:
//   - scene: the scene to query
//
// Returns:
//   - RaycasterBuilderOption: a function that sets the scene
func WithScene(scene Scene) RaycasterBuilderOption {
	return func(r *raycaster) {
		r.scene = scene
	}
}

// WithWorkers sets the maximum number of pool workers. Ignored by the immediate backend.
//
// Parameters:
//   - n: the worker count
//
// Returns:
//   - RaycasterBuilderOption: a function that sets the worker count
func WithWorkers(n int) RaycasterBuilderOption {
	return func(r *raycaster) {
		r.workers = n
	}
}

// WithQueueSize sets the pool's task queue capacity.
//
// Parameters:
//   - n: the queue capacity
//
// Returns:
//   - RaycasterBuilderOption: a function that sets the queue capacity
func WithQueueSize(n int) RaycasterBuilderOption {
	return func(r *raycaster) {
		r.queueSize = n
	}
}

// WithChunkSize sets the number of rays evaluated per pool task.
//
// Parameters:
//   - n: rays per task
//
// Returns:
//   - RaycasterBuilderOption: a function that sets the chunk size
func WithChunkSize(n int) RaycasterBuilderOption {
	return func(r *raycaster) {
		r.chunkSize = n
	}
}

// WithIdleTimeout sets how long an idle pool worker lingers before exiting.
//
// Parameters:
//   - d: the idle timeout
//
// Returns:
//   - RaycasterBuilderOption: a function that sets the idle timeout
func WithIdleTimeout(d time.Duration) RaycasterBuilderOption {
	return func(r *raycaster) {
		r.idleTimeout = d
	}
}
