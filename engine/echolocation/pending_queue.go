package echolocation

import "github.com/Carmen-Shannon/echolocation/engine/raycast"

// PendingWave is a triggered wave whose raycast has not been reaped yet.
type PendingWave struct {
	ID          uint64
	Slot        int
	Handle      raycast.Handle
	TriggerTime float32 // seconds since the pipeline epoch
}

// pendingQueue is the FIFO of pending waves. It never holds more entries than there are slots.
type pendingQueue struct {
	waves []PendingWave
}

func newPendingQueue(capacity int) *pendingQueue {
	return &pendingQueue{waves: make([]PendingWave, 0, capacity)}
}

func (q *pendingQueue) push(w PendingWave) {
	q.waves = append(q.waves, w)
}

// head returns the oldest wave. ok is false when the queue is empty.
func (q *pendingQueue) head() (w PendingWave, ok bool) {
	if len(q.waves) == 0 {
		return PendingWave{}, false
	}
	return q.waves[0], true
}

func (q *pendingQueue) pop() PendingWave {
	w := q.waves[0]
	copy(q.waves, q.waves[1:])
	q.waves[len(q.waves)-1] = PendingWave{}
	q.waves = q.waves[:len(q.waves)-1]
	return w
}

func (q *pendingQueue) len() int {
	return len(q.waves)
}

// occupies reports whether a queued wave holds slot.
func (q *pendingQueue) occupies(slot int) bool {
	for _, w := range q.waves {
		if w.Slot == slot {
			return true
		}
	}
	return false
}

// drain removes and returns every queued wave in FIFO order.
func (q *pendingQueue) drain() []PendingWave {
	out := append([]PendingWave(nil), q.waves...)
	clear(q.waves)
	q.waves = q.waves[:0]
	return out
}
