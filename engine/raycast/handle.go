package raycast

import (
	"context"
	"sync"
	"sync/atomic"
)

// Handle tracks one submitted batch.
// Results written into the batch's result slice are only safe to read once Poll reports StatusReady
// or Complete has returned.
type Handle interface {
	// Poll reports the batch's completion state without blocking.
	//
	// Returns:
	//   - Status: StatusReady once every result has been written, StatusPending otherwise
	Poll() Status

	// IsComplete is shorthand for Poll() == StatusReady.
	//
	// Returns:
	//   - bool: true once every result has been written
	IsComplete() bool

	// Complete blocks until the batch finishes. A batch that has not been flushed yet is started first.
	// Calling Complete on a finished batch returns immediately.
	Complete()

	// Wait is Complete with cancellation.
	//
	// Parameters:
	//   - ctx: context bounding the wait
	//
	// Returns:
	//   - error: ctx.Err() if the context ends before the batch finishes, nil otherwise
	Wait(ctx context.Context) error

	// Len returns the number of rays in the batch.
	//
	// Returns:
	//   - int: the batch size
	Len() int
}

type batchHandle struct {
	commands []Command
	results  []Hit

	remaining atomic.Int32
	done      chan struct{}
	doneOnce  *sync.Once
	startOnce *sync.Once
	start     func(*batchHandle)
	onDone    func()
}

var _ Handle = &batchHandle{}

func newBatchHandle(commands []Command, results []Hit, start func(*batchHandle), onDone func()) *batchHandle {
	return &batchHandle{
		commands:  commands,
		results:   results,
		done:      make(chan struct{}),
		doneOnce:  &sync.Once{},
		startOnce: &sync.Once{},
		start:     start,
		onDone:    onDone,
	}
}

func (h *batchHandle) Poll() Status {
	select {
	case <-h.done:
		return StatusReady
	default:
		return StatusPending
	}
}

func (h *batchHandle) IsComplete() bool {
	return h.Poll() == StatusReady
}

func (h *batchHandle) Complete() {
	h.launch()
	<-h.done
}

func (h *batchHandle) Wait(ctx context.Context) error {
	h.launch()
	select {
	case <-h.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (h *batchHandle) Len() int {
	return len(h.commands)
}

// launch hands the batch to its backend exactly once.
func (h *batchHandle) launch() {
	h.startOnce.Do(func() {
		h.start(h)
	})
}

// chunkDone marks one unit of work finished and closes the handle when the last one lands.
func (h *batchHandle) chunkDone() {
	if h.remaining.Add(-1) == 0 {
		h.finish()
	}
}

func (h *batchHandle) finish() {
	h.doneOnce.Do(func() {
		close(h.done)
		if h.onDone != nil {
			h.onDone()
		}
	})
}
