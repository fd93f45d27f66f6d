package raycast

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/echolocation/log"
)

var logger = log.New("raycast")

// Raycaster evaluates batches of rays asynchronously against a Scene.
// Submission and flushing are expected from a single goroutine; handles may be polled from anywhere.
type Raycaster interface {
	// SubmitBatch queues a batch for evaluation. Work does not start until Flush is called
	// or the returned handle is completed. The caller must not touch either slice until the handle is ready.
	//
	// Parameters:
	//   - commands: the rays to evaluate
	//   - results: destination for one Hit per command, written by index
	//
	// Returns:
	//   - Handle: the completion handle for the batch
	//   - error: ErrLengthMismatch or ErrReleased
	SubmitBatch(commands []Command, results []Hit) (Handle, error)

	// Flush starts every queued batch immediately.
	Flush()

	// Pending returns the number of batches submitted but not yet finished.
	//
	// Returns:
	//   - int: the in-flight batch count
	Pending() int

	// BackendType returns the execution strategy of this raycaster.
	//
	// Returns:
	//   - RaycasterBackendType: the backend type
	BackendType() RaycasterBackendType

	// Release flushes queued batches, waits for every outstanding batch and rejects further submissions.
	// Safe to call more than once.
	Release()
}

type raycaster struct {
	mu *sync.Mutex

	backendType RaycasterBackendType
	backend     raycasterBackend
	scene       Scene

	workers     int
	queueSize   int
	chunkSize   int
	idleTimeout time.Duration

	queued      []*batchHandle
	outstanding *sync.WaitGroup
	pending     atomic.Int32
	released    atomic.Bool
}

var _ Raycaster = &raycaster{}

// NewRaycaster creates a Raycaster using the requested backend.
//
// Parameters:
//   - backendType: the execution strategy
//   - options: functional options to configure the raycaster
//
// Returns:
//   - Raycaster: the configured raycaster
//   - error: if the backend type is unknown or an option is invalid
func NewRaycaster(backendType RaycasterBackendType, options ...RaycasterBuilderOption) (Raycaster, error) {
	r := &raycaster{
		mu:          &sync.Mutex{},
		backendType: backendType,
		workers:     4,
		queueSize:   256,
		chunkSize:   1024,
		idleTimeout: time.Second,
		outstanding: &sync.WaitGroup{},
	}
	for _, option := range options {
		option(r)
	}

	if r.chunkSize <= 0 || r.workers <= 0 || r.queueSize <= 0 {
		return nil, fmt.Errorf("raycast: workers, queue size and chunk size must be positive (got %d, %d, %d)",
			r.workers, r.queueSize, r.chunkSize)
	}

	switch backendType {
	case BackendTypeWorkerPool:
		r.backend = newWorkerPoolBackend(r.scene, r.workers, r.queueSize, r.chunkSize, r.idleTimeout)
	case BackendTypeImmediate:
		r.backend = &immediateBackend{scene: r.scene}
	default:
		return nil, fmt.Errorf("raycast: unsupported backend type %d", backendType)
	}
	return r, nil
}

func (r *raycaster) SubmitBatch(commands []Command, results []Hit) (Handle, error) {
	if r.released.Load() {
		return nil, ErrReleased
	}
	if len(commands) != len(results) {
		return nil, fmt.Errorf("%w: %d commands, %d results", ErrLengthMismatch, len(commands), len(results))
	}

	r.outstanding.Add(1)
	r.pending.Add(1)
	h := newBatchHandle(commands, results, r.backend.run, func() {
		r.pending.Add(-1)
		r.outstanding.Done()
	})

	r.mu.Lock()
	r.queued = append(r.queued, h)
	r.mu.Unlock()
	return h, nil
}

func (r *raycaster) Flush() {
	r.mu.Lock()
	queued := r.queued
	r.queued = nil
	r.mu.Unlock()

	for _, h := range queued {
		h.launch()
	}
}

func (r *raycaster) Pending() int {
	return int(r.pending.Load())
}

func (r *raycaster) BackendType() RaycasterBackendType {
	return r.backendType
}

func (r *raycaster) Release() {
	if r.released.Swap(true) {
		return
	}
	r.Flush()
	r.outstanding.Wait()
	logger.Infof("%s raycaster released", r.backendType)
}
