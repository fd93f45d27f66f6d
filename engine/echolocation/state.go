package echolocation

import (
	"github.com/Carmen-Shannon/echolocation/engine/raycast"
	"github.com/Carmen-Shannon/echolocation/log"
)

// Stats are the Echolocator's lifetime counters.
type Stats struct {
	Triggered uint64 // waves accepted by Trigger
	Rejected  uint64 // triggers refused under OverflowReject
	Reaped    uint64 // waves whose points were uploaded
	Forced    uint64 // waves completed synchronously under OverflowForceComplete
	Stalled   uint64 // waves abandoned by the stall timeout

	Pending     int // waves in the pending queue
	Quarantined int // slots held by abandoned waves whose raycast is still running

	LastReapSlot int // slot of the most recently reaped wave, -1 before the first reap
	LastReapHits int // rays that hit something in the most recently reaped wave
}

// SlotState describes one pool slot.
type SlotState struct {
	Index       int
	WaveID      uint64 // most recent wave triggered into the slot, 0 if never used
	InFlight    bool   // the wave is in the pending queue
	Quarantined bool   // an abandoned wave's raycast may still write the slot's CPU buffers
	Hits        int    // points the slot draws since its last reap
}

type slotInfo struct {
	waveID uint64
	hits   int
}

// pipelineState is shared by the scheduler, reaper and compositor. Only the tick goroutine touches it.
type pipelineState struct {
	cfg        Config
	pool       *ResourcePool
	queue      *pendingQueue
	quarantine map[int]raycast.Handle
	slots      []slotInfo
	stats      Stats

	now    func() float32
	logger log.Logger
}

func newPipelineState(cfg Config, pool *ResourcePool, now func() float32, logger log.Logger) *pipelineState {
	return &pipelineState{
		cfg:        cfg,
		pool:       pool,
		queue:      newPendingQueue(pool.Len()),
		quarantine: make(map[int]raycast.Handle),
		slots:      make([]slotInfo, pool.Len()),
		stats:      Stats{LastReapSlot: -1},
		now:        now,
		logger:     logger,
	}
}

// sweepQuarantine frees slots whose abandoned raycast has since finished.
func (s *pipelineState) sweepQuarantine() {
	for slot, h := range s.quarantine {
		if h.Poll() == raycast.StatusReady {
			delete(s.quarantine, slot)
			s.logger.Infof("slot %d released from quarantine", slot)
		}
	}
}

// busy reports whether slot still belongs to an unfinished wave.
func (s *pipelineState) busy(slot int) bool {
	s.sweepQuarantine()
	if _, ok := s.quarantine[slot]; ok {
		return true
	}
	return s.queue.occupies(slot)
}

func (s *pipelineState) slotStates() []SlotState {
	out := make([]SlotState, len(s.slots))
	for i, info := range s.slots {
		_, quarantined := s.quarantine[i]
		out[i] = SlotState{
			Index:       i,
			WaveID:      info.waveID,
			InFlight:    s.queue.occupies(i),
			Quarantined: quarantined,
			Hits:        info.hits,
		}
	}
	return out
}

func (s *pipelineState) snapshot() Stats {
	stats := s.stats
	stats.Pending = s.queue.len()
	stats.Quarantined = len(s.quarantine)
	return stats
}
