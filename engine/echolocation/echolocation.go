package echolocation

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/echolocation/engine/camera"
	"github.com/Carmen-Shannon/echolocation/engine/raycast"
	"github.com/Carmen-Shannon/echolocation/engine/renderer"
	"github.com/Carmen-Shannon/echolocation/log"
	"github.com/go-gl/mathgl/mgl32"
)

var logger = log.New("echolocation")

// Echolocator pipelines echolocation waves: each wave casts a sphere of rays from an emitter,
// and the hits reappear as fading points that light up in order of their distance.
// Several waves are in flight at once, each owning one slot of a fixed resource pool.
//
// Every method must be called from the same goroutine; the engine tick loop is the intended caller.
type Echolocator interface {
	// Trigger launches a wave from origin into the next pool slot.
	//
	// Parameters:
	//   - origin: the emitter position in world space
	//
	// Returns:
	//   - WaveInfo: the wave's id, slot and trigger time
	//   - error: ErrPoolExhausted under OverflowReject when the slot is still held, the raycaster's error, or ErrReleased
	Trigger(origin mgl32.Vec3) (WaveInfo, error)

	// Update reaps at most one finished wave, the oldest, and uploads its points.
	// Abandons a wave that has been pending longer than the stall timeout.
	//
	// Returns:
	//   - error: the renderer's error, or ErrReleased
	Update() error

	// Draw records one indirect draw per slot into the frame the caller has opened with BeginFrame.
	//
	// Returns:
	//   - error: the renderer's error, or ErrReleased
	Draw() error

	// Frame opens a render frame, draws every slot, then ends and presents the frame.
	//
	// Returns:
	//   - error: the renderer's error, or ErrReleased
	Frame() error

	// PendingCount returns the number of waves triggered but not yet reaped or abandoned.
	//
	// Returns:
	//   - int: the pending wave count
	PendingCount() int

	// SlotStates reports every pool slot.
	//
	// Returns:
	//   - []SlotState: one entry per slot, in index order
	SlotStates() []SlotState

	// Stats returns a snapshot of the lifetime counters.
	//
	// Returns:
	//   - Stats: the counters
	Stats() Stats

	// LiveCount reads a slot's drawn point count back from the GPU. Blocks; for diagnostics.
	//
	// Parameters:
	//   - slot: the pool slot
	//
	// Returns:
	//   - int: the instance count of the slot's draw arguments
	//   - error: the renderer's error, or ErrReleased
	LiveCount(slot int) (int, error)

	// Release waits for every pending and quarantined raycast, then frees the pool.
	// Later calls return nil; every other method returns ErrReleased afterwards.
	//
	// Parameters:
	//   - ctx: bounds the wait for outstanding raycasts
	//
	// Returns:
	//   - error: the context's error if it expires while waiting
	Release(ctx context.Context) error
}

type echolocator struct {
	cfg        Config
	colorTable *ColorTable
	mesh       *Mesh
	clock      func() time.Time
	camera     camera.Camera
	logger     log.Logger

	renderer  renderer.Renderer
	raycaster raycast.Raycaster

	pool       *ResourcePool
	sink       PointSink
	state      *pipelineState
	scheduler  *waveScheduler
	reaper     *waveReaper
	compositor *compositor

	released atomic.Bool
}

var _ Echolocator = &echolocator{}

// NewEcholocator builds the resource pool and the wave pipeline on top of a renderer and a raycaster.
// The echolocation pipelines are registered on the renderer as part of construction.
//
// Parameters:
//   - r: the renderer that owns the GPU side
//   - rc: the raycaster that evaluates each wave
//   - options: functional options applied on top of DefaultConfig
//
// Returns:
//   - Echolocator: the echolocator
//   - error: an error wrapping ErrInvalidConfig, or the renderer's error
func NewEcholocator(r renderer.Renderer, rc raycast.Raycaster, options ...EcholocatorBuilderOption) (Echolocator, error) {
	if r == nil || rc == nil {
		return nil, fmt.Errorf("%w: renderer and raycaster are required", ErrInvalidConfig)
	}

	e := &echolocator{
		cfg:       DefaultConfig(),
		clock:     time.Now,
		logger:    logger,
		renderer:  r,
		raycaster: rc,
	}
	for _, opt := range options {
		opt(e)
	}
	if err := e.cfg.Validate(); err != nil {
		return nil, err
	}
	if e.mesh == nil {
		e.mesh = QuadMesh()
	}

	var base map[string]mgl32.Vec4
	if e.colorTable != nil {
		base = e.colorTable.entries
	}
	table := NewColorTable(e.cfg.DefaultColor, base)
	for tag, color := range e.cfg.TagColors {
		table.set(tag, color)
	}
	e.colorTable = table

	allocator, err := NewSlotAllocator(e.cfg.MaxWaves)
	if err != nil {
		return nil, err
	}
	pool, err := NewResourcePool(r, PoolConfig{RayCount: e.cfg.RayCount, MaxWaves: e.cfg.MaxWaves, Mesh: e.mesh})
	if err != nil {
		return nil, err
	}
	e.pool = pool
	e.sink = NewPointSink(r, pool)

	epoch := e.clock()
	now := func() float32 {
		return float32(e.clock().Sub(epoch).Seconds())
	}

	seed := e.cfg.Seed
	if seed == 0 {
		seed = uint64(epoch.UnixNano())
	}

	e.state = newPipelineState(e.cfg, pool, now, e.logger)
	e.reaper = &waveReaper{state: e.state, renderer: r, sink: e.sink, colors: e.colorTable}
	e.scheduler = &waveScheduler{
		state:     e.state,
		allocator: allocator,
		raycaster: rc,
		reaper:    e.reaper,
		rng:       rand.New(rand.NewPCG(seed, seed^0x9E3779B97F4A7C15)),
	}
	e.compositor = &compositor{state: e.state, renderer: r, camera: e.camera}

	e.logger.Infof("echolocator ready: %d slots of %d rays, overflow %s", e.cfg.MaxWaves, e.cfg.RayCount, e.cfg.OverflowPolicy)
	return e, nil
}

func (e *echolocator) Trigger(origin mgl32.Vec3) (WaveInfo, error) {
	if e.released.Load() {
		return WaveInfo{}, ErrReleased
	}
	return e.scheduler.trigger(origin)
}

func (e *echolocator) Update() error {
	if e.released.Load() {
		return ErrReleased
	}
	_, err := e.reaper.reap()
	return err
}

func (e *echolocator) Draw() error {
	if e.released.Load() {
		return ErrReleased
	}
	return e.compositor.draw()
}

func (e *echolocator) Frame() error {
	if e.released.Load() {
		return ErrReleased
	}
	if err := e.renderer.BeginFrame(); err != nil {
		return err
	}
	err := e.compositor.draw()
	e.renderer.EndFrame()
	e.renderer.Present()
	return err
}

func (e *echolocator) PendingCount() int {
	return e.state.queue.len()
}

func (e *echolocator) SlotStates() []SlotState {
	e.state.sweepQuarantine()
	return e.state.slotStates()
}

func (e *echolocator) Stats() Stats {
	return e.state.snapshot()
}

func (e *echolocator) LiveCount(slot int) (int, error) {
	if e.released.Load() {
		return 0, ErrReleased
	}
	return e.sink.LiveCount(slot)
}

func (e *echolocator) Release(ctx context.Context) error {
	if !e.released.CompareAndSwap(false, true) {
		return nil
	}

	var errs []error
	for _, w := range e.state.queue.drain() {
		if err := w.Handle.Wait(ctx); err != nil {
			errs = append(errs, fmt.Errorf("wave %d: %w", w.ID, err))
		}
	}
	for slot, h := range e.state.quarantine {
		if err := h.Wait(ctx); err != nil {
			errs = append(errs, fmt.Errorf("quarantined slot %d: %w", slot, err))
		}
		delete(e.state.quarantine, slot)
	}
	e.pool.Release()

	e.logger.Infof("echolocator released after %d waves", e.state.stats.Triggered)
	return errors.Join(errs...)
}
