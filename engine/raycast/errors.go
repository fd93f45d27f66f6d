package raycast

import "errors"

var (
	// ErrLengthMismatch is returned when a batch's command and result slices differ in length.
	ErrLengthMismatch = errors.New("raycast: command and result lengths differ")

	// ErrReleased is returned when submitting to a released Raycaster.
	ErrReleased = errors.New("raycast: raycaster released")
)
