package echolocation

import "fmt"

// SlotAllocator hands out pool slots in a fixed cycle 0..capacity-1.
type SlotAllocator interface {
	// Next returns the current slot and advances to the following one.
	//
	// Returns:
	//   - int: the slot assigned to the wave being triggered
	Next() int

	// Peek returns the slot Next would return, without advancing.
	//
	// Returns:
	//   - int: the upcoming slot
	Peek() int

	// Capacity returns the number of slots in the cycle.
	//
	// Returns:
	//   - int: the cycle length
	Capacity() int
}

type slotAllocator struct {
	current  int
	capacity int
}

var _ SlotAllocator = &slotAllocator{}

// NewSlotAllocator creates a SlotAllocator starting at slot 0.
//
// Parameters:
//   - capacity: the number of slots, must be positive
//
// Returns:
//   - SlotAllocator: the allocator
//   - error: ErrInvalidConfig when capacity is not positive
func NewSlotAllocator(capacity int) (SlotAllocator, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("%w: slot capacity must be positive, got %d", ErrInvalidConfig, capacity)
	}
	return &slotAllocator{capacity: capacity}, nil
}

func (a *slotAllocator) Next() int {
	slot := a.current
	a.current = (a.current + 1) % a.capacity
	return slot
}

func (a *slotAllocator) Peek() int {
	return a.current
}

func (a *slotAllocator) Capacity() int {
	return a.capacity
}
