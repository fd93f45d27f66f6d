package bind_group_provider

// BufferUsage is a bit set describing how a GPU buffer may be used.
// Backends translate it to their native usage flags.
type BufferUsage uint32

const (
	BufferUsageMapRead BufferUsage = 1 << iota
	BufferUsageCopySrc
	BufferUsageCopyDst
	BufferUsageIndex
	BufferUsageVertex
	BufferUsageUniform
	BufferUsageStorage
	BufferUsageIndirect
)

// Has reports whether every flag in other is set.
func (u BufferUsage) Has(other BufferUsage) bool {
	return u&other == other
}

// BufferDescriptor describes a buffer to be created by the Renderer.
type BufferDescriptor struct {
	Label string
	Size  uint64
	Usage BufferUsage
}

// Buffer is a backend-owned GPU buffer. Its size and usage never change after creation.
type Buffer interface {
	// Label returns the debug label the buffer was created with.
	//
	// Returns:
	//   - string: the debug label
	Label() string

	// Size returns the buffer size in bytes.
	//
	// Returns:
	//   - uint64: the buffer size
	Size() uint64

	// Usage returns the usage flags the buffer was created with.
	//
	// Returns:
	//   - BufferUsage: the usage flags
	Usage() BufferUsage

	// Release frees the backend resource. Only the first call has any effect.
	Release()

	// Released reports whether Release has been called.
	//
	// Returns:
	//   - bool: true once released
	Released() bool
}

// BindGroupHandle is the backend bind group object stored on a provider.
type BindGroupHandle interface {
	Release()
}
