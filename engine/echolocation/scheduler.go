package echolocation

import (
	"fmt"
	"math/rand/v2"

	"github.com/Carmen-Shannon/echolocation/common"
	"github.com/Carmen-Shannon/echolocation/engine/raycast"
	"github.com/go-gl/mathgl/mgl32"
)

// WaveInfo identifies an accepted wave.
type WaveInfo struct {
	ID          uint64
	Slot        int
	TriggerTime float32 // seconds since the pipeline epoch
}

// waveScheduler is the producer: it fills a slot's commands and launches the raycast.
type waveScheduler struct {
	state     *pipelineState
	allocator SlotAllocator
	raycaster raycast.Raycaster
	reaper    *waveReaper
	rng       *rand.Rand
	lastID    uint64
}

func (s *waveScheduler) trigger(origin mgl32.Vec3) (WaveInfo, error) {
	slot := s.allocator.Peek()
	if s.state.busy(slot) {
		if err := s.overflow(slot); err != nil {
			return WaveInfo{}, err
		}
	}

	ps := s.state.pool.Slot(slot)
	for i := range ps.Commands {
		ps.Commands[i] = raycast.Command{
			Origin:      origin,
			Direction:   common.RandomUnitVector(s.rng),
			MaxDistance: s.state.cfg.MaxDistance,
		}
	}
	clear(ps.Results)

	handle, err := s.raycaster.SubmitBatch(ps.Commands, ps.Results)
	if err != nil {
		return WaveInfo{}, fmt.Errorf("slot %d: submit raycast: %w", slot, err)
	}

	// The allocator advances only once the wave is certain to be enqueued.
	if next := s.allocator.Next(); next != slot {
		panic(fmt.Sprintf("echolocation: allocator moved from %d to %d during trigger", slot, next))
	}
	s.lastID++
	wave := PendingWave{
		ID:          s.lastID,
		Slot:        slot,
		Handle:      handle,
		TriggerTime: s.state.now(),
	}
	s.state.queue.push(wave)
	s.state.slots[slot].waveID = wave.ID
	s.state.stats.Triggered++

	s.raycaster.Flush()
	s.state.logger.Debugf("wave %d triggered into slot %d at %.3fs", wave.ID, slot, wave.TriggerTime)
	return WaveInfo{ID: wave.ID, Slot: slot, TriggerTime: wave.TriggerTime}, nil
}

// overflow applies the overflow policy to a busy slot. It returns nil once the slot is free.
func (s *waveScheduler) overflow(slot int) error {
	switch s.state.cfg.OverflowPolicy {
	case OverflowForceComplete:
		for s.state.busy(slot) {
			if h, ok := s.state.quarantine[slot]; ok {
				h.Complete()
				delete(s.state.quarantine, slot)
				continue
			}
			wave, err := s.reaper.forceOne()
			if err != nil {
				return err
			}
			s.state.stats.Forced++
			s.state.logger.Noticef("wave %d in slot %d force-completed to free slot %d", wave.ID, wave.Slot, slot)
		}
		return nil
	case OverflowPanic:
		panic(fmt.Sprintf("echolocation: slot %d reused while wave %d is unfinished", slot, s.state.slots[slot].waveID))
	default:
		s.state.stats.Rejected++
		s.state.logger.Debugf("trigger rejected: slot %d still held by wave %d", slot, s.state.slots[slot].waveID)
		return fmt.Errorf("%w: slot %d is held by wave %d", ErrPoolExhausted, slot, s.state.slots[slot].waveID)
	}
}
