package echolocation

import (
	"fmt"
	"time"

	"github.com/Carmen-Shannon/echolocation/engine/raycast"
	"github.com/Carmen-Shannon/echolocation/engine/renderer"
)

// waveReaper is the consumer: it drains completed waves from the queue head into the GPU.
type waveReaper struct {
	state    *pipelineState
	renderer renderer.Renderer
	sink     PointSink
	colors   *ColorTable
}

// reap drains at most one wave, and only the queue head.
// A head still pending past the stall timeout is abandoned and its slot quarantined.
func (r *waveReaper) reap() (bool, error) {
	r.state.sweepQuarantine()

	head, ok := r.state.queue.head()
	if !ok {
		return false, nil
	}
	if head.Handle.Poll() == raycast.StatusPending {
		r.checkStall(head)
		return false, nil
	}

	r.state.queue.pop()
	return true, r.process(head)
}

// forceOne reaps the queue head, blocking until its raycast finishes.
func (r *waveReaper) forceOne() (PendingWave, error) {
	wave := r.state.queue.pop()
	return wave, r.process(wave)
}

func (r *waveReaper) checkStall(head PendingWave) {
	timeout := r.state.cfg.StallTimeout
	if timeout <= 0 {
		return
	}
	age := r.state.now() - head.TriggerTime
	if age < float32(timeout.Seconds()) {
		return
	}

	r.state.queue.pop()
	r.state.quarantine[head.Slot] = head.Handle
	r.state.stats.Stalled++
	err := fmt.Errorf("%w: wave %d pending for %s", ErrWaveStalled, head.ID, time.Duration(float64(age)*float64(time.Second)).Round(time.Millisecond))
	r.state.logger.Warningf("%v; slot %d quarantined until its raycast finishes", err, head.Slot)
}

// process converts the wave's results and records its compute frame.
func (r *waveReaper) process(wave PendingWave) error {
	wave.Handle.Complete()

	slot := r.state.pool.Slot(wave.Slot)
	hits := r.convert(slot)

	if err := r.renderer.BeginComputeFrame(); err != nil {
		return fmt.Errorf("wave %d: %w", wave.ID, err)
	}
	r.sink.Reset(wave.Slot)
	err := r.sink.Write(wave.Slot, slot.Records, GPUWaveParams{
		PropagationSpeed: r.state.cfg.PropagationSpeed,
		Timestamp:        wave.TriggerTime,
	})
	r.renderer.EndComputeFrame()
	if err != nil {
		return fmt.Errorf("wave %d: %w", wave.ID, err)
	}

	r.state.slots[wave.Slot].hits = hits
	r.state.stats.Reaped++
	r.state.stats.LastReapSlot = wave.Slot
	r.state.stats.LastReapHits = hits
	r.state.logger.Debugf("wave %d reaped from slot %d: %d of %d rays hit", wave.ID, wave.Slot, hits, len(slot.Results))
	return nil
}

// convert fills the slot's hit records from its raycast results, index for index.
// Misses keep their index with the default color and zero geometry.
func (r *waveReaper) convert(slot *PoolSlot) int {
	hits := 0
	for i, res := range slot.Results {
		if !res.HasHit() {
			slot.Records[i] = GPUHitRecord{Color: r.colors.Default()}
			continue
		}
		hits++
		slot.Records[i] = GPUHitRecord{
			Point:    res.Point,
			Distance: res.Distance,
			Normal:   res.Normal,
			HasHit:   1,
			Color:    r.colors.Resolve(res.Target),
			TargetID: res.Target.ID,
		}
	}
	return hits
}
