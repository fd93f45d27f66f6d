package bind_group_provider

// BufferWrite describes a single GPU buffer write at a given byte offset.
// Writes are applied in order and are visible to all work submitted after them.
type BufferWrite struct {
	Buffer Buffer
	Offset uint64
	Data   []byte
}
