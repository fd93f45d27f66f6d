package raycast

// RaycasterBackendType identifies the execution strategy used to evaluate batches.
type RaycasterBackendType int

const (
	// BackendTypeWorkerPool evaluates batches in chunks on a dynamic worker pool.
	BackendTypeWorkerPool RaycasterBackendType = iota

	// BackendTypeImmediate evaluates a batch synchronously on the goroutine that flushes it.
	BackendTypeImmediate
)

func (t RaycasterBackendType) String() string {
	switch t {
	case BackendTypeWorkerPool:
		return "pool"
	case BackendTypeImmediate:
		return "immediate"
	default:
		return "unknown"
	}
}

// raycasterBackend executes flushed batches. Implementations must eventually call
// finish or chunkDone on every handle passed to run.
type raycasterBackend interface {
	run(h *batchHandle)
}

// evaluateRange writes results[from:to] of a batch by querying the scene.
func evaluateRange(scene Scene, h *batchHandle, from, to int) {
	for i := from; i < to; i++ {
		if scene == nil {
			h.results[i] = Hit{}
			continue
		}
		h.results[i] = scene.Raycast(h.commands[i])
	}
}
