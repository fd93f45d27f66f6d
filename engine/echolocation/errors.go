package echolocation

import "errors"

var (
	// ErrInvalidConfig is returned by constructors when a size or reference is invalid.
	ErrInvalidConfig = errors.New("echolocation: invalid configuration")

	// ErrPoolExhausted is returned by Trigger under OverflowReject when the next slot is still occupied.
	ErrPoolExhausted = errors.New("echolocation: no free slot")

	// ErrReleased is returned when using a released Echolocator.
	ErrReleased = errors.New("echolocation: released")

	// ErrWaveStalled marks a wave abandoned because its raycast outlived the stall timeout.
	ErrWaveStalled = errors.New("echolocation: wave stalled")
)
