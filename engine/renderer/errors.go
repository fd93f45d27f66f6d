package renderer

import "errors"

var (
	// ErrUnknownPipeline is returned when a pipeline key is not registered.
	ErrUnknownPipeline = errors.New("renderer: pipeline not registered")

	// ErrNoFrame is returned when recording outside of an open compute or render frame.
	ErrNoFrame = errors.New("renderer: no frame in progress")

	// ErrFrameInProgress is returned when opening a frame while one of the same kind is still open.
	ErrFrameInProgress = errors.New("renderer: frame already in progress")

	// ErrBufferReleased is returned when a released buffer is used.
	ErrBufferReleased = errors.New("renderer: buffer released")

	// ErrForeignBuffer is returned when a buffer created by a different backend is passed in.
	ErrForeignBuffer = errors.New("renderer: buffer belongs to another backend")

	// ErrBufferUsage is returned when a buffer lacks the usage flag an operation needs.
	ErrBufferUsage = errors.New("renderer: missing buffer usage")

	// ErrOutOfBounds is returned when an offset and size fall outside a buffer.
	ErrOutOfBounds = errors.New("renderer: range out of bounds")

	// ErrMissingBinding is returned when a bind group lacks a buffer its pipeline's shaders declare.
	ErrMissingBinding = errors.New("renderer: missing binding")

	// ErrBufferTooSmall is returned when a bound buffer is smaller than its declared type.
	ErrBufferTooSmall = errors.New("renderer: buffer smaller than binding type")

	// ErrReleased is returned when using a released renderer.
	ErrReleased = errors.New("renderer: released")
)
