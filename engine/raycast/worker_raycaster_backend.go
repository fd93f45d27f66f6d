package raycast

import (
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
)

// workerPoolBackend splits each batch into fixed-size chunks and evaluates them as pool tasks.
// A batch completes when its last chunk reports in.
type workerPoolBackend struct {
	scene     Scene
	pool      worker.DynamicWorkerPool
	chunkSize int
	taskID    atomic.Int64
}

var _ raycasterBackend = &workerPoolBackend{}

func newWorkerPoolBackend(scene Scene, workers, queueSize, chunkSize int, idleTimeout time.Duration) *workerPoolBackend {
	return &workerPoolBackend{
		scene:     scene,
		pool:      worker.NewDynamicWorkerPool(workers, queueSize, idleTimeout),
		chunkSize: chunkSize,
	}
}

func (b *workerPoolBackend) run(h *batchHandle) {
	n := len(h.commands)
	if n == 0 {
		h.finish()
		return
	}

	chunks := (n + b.chunkSize - 1) / b.chunkSize
	h.remaining.Store(int32(chunks))

	for c := 0; c < chunks; c++ {
		from := c * b.chunkSize
		to := min(from+b.chunkSize, n)
		b.pool.SubmitTask(worker.Task{
			ID: int(b.taskID.Add(1)),
			Do: func() (any, error) {
				defer h.chunkDone()
				evaluateRange(b.scene, h, from, to)
				return nil, nil
			},
		})
	}
}
