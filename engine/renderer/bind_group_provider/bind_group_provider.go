package bind_group_provider

import "sort"

// bindGroupProvider is the unexported implementation of BindGroupProvider.
type bindGroupProvider struct {
	// label is a debug label added for convenience.
	label string

	// bindGroup is the backend bind group created for this provider, or nil if not initialized with the Renderer.
	bindGroup BindGroupHandle
	// buffers holds the buffers bound by this provider, keyed by binding index.
	buffers map[int]Buffer

	// vertexBuffer is the vertex buffer for mesh providers, or nil.
	vertexBuffer Buffer
	// indexBuffer is the index buffer for mesh providers, or nil.
	indexBuffer Buffer
	// indexCount is the number of indices drawn per instance for mesh providers.
	indexCount int
}

// BindGroupProvider groups the buffers a pipeline binds together and the backend bind group built over them.
// A provider can also carry mesh vertex/index buffers so it can be passed as the mesh of a draw call.
//
// Usage pattern:
//  1. Create buffers with Renderer.CreateBuffer and attach them by binding index
//  2. Call Renderer.InitBindGroup(provider, pipelineKey) to build the backend bind group
//  3. Pass the provider to DispatchCompute or DrawCallIndirect
//  4. Call Release once the provider is no longer drawn or dispatched
type BindGroupProvider interface {
	// Release releases the bind group, every attached buffer and the mesh buffers.
	// Buffers shared with another provider are released once; later calls are no-ops.
	Release()

	// Label returns the debug label for this provider.
	//
	// Returns:
	//   - string: the debug label
	Label() string

	// BindGroup returns the backend bind group, or nil if not initialized.
	//
	// Returns:
	//   - BindGroupHandle: the bind group or nil
	BindGroup() BindGroupHandle

	// Buffer returns the buffer attached at binding, or nil.
	//
	// Parameters:
	//   - binding: the binding index
	//
	// Returns:
	//   - Buffer: the buffer or nil
	Buffer(binding int) Buffer

	// Buffers returns every attached buffer keyed by binding index.
	//
	// Returns:
	//   - map[int]Buffer: the attached buffers
	Buffers() map[int]Buffer

	// Bindings returns the attached binding indices in ascending order.
	//
	// Returns:
	//   - []int: the sorted binding indices
	Bindings() []int

	// VertexBuffer returns the mesh vertex buffer, or nil.
	//
	// Returns:
	//   - Buffer: the vertex buffer or nil
	VertexBuffer() Buffer

	// IndexBuffer returns the mesh index buffer, or nil.
	//
	// Returns:
	//   - Buffer: the index buffer or nil
	IndexBuffer() Buffer

	// IndexCount returns the number of indices for draw calls.
	//
	// Returns:
	//   - int: the index count
	IndexCount() int

	// SetBindGroup stores the backend bind group. Called by Renderer.InitBindGroup.
	//
	// Parameters:
	//   - bg: the created bind group
	SetBindGroup(bg BindGroupHandle)

	// SetBuffer attaches a buffer at binding.
	//
	// Parameters:
	//   - binding: the binding index
	//   - buf: the buffer to attach
	SetBuffer(binding int, buf Buffer)

	// SetVertexBuffer stores the mesh vertex buffer. Called by Renderer.InitMeshBuffers.
	//
	// Parameters:
	//   - buf: the vertex buffer
	SetVertexBuffer(buf Buffer)

	// SetIndexBuffer stores the mesh index buffer. Called by Renderer.InitMeshBuffers.
	//
	// Parameters:
	//   - buf: the index buffer
	SetIndexBuffer(buf Buffer)

	// SetIndexCount sets the number of indices for draw calls.
	//
	// Parameters:
	//   - count: the index count
	SetIndexCount(count int)
}

// Compile-time check that bindGroupProvider implements BindGroupProvider
var _ BindGroupProvider = &bindGroupProvider{}

// NewBindGroupProvider creates a new BindGroupProvider with the provided options.
//
// Parameters:
//   - label: the debug label
//   - options: a variadic list of options to configure the provider
//
// Returns:
//   - BindGroupProvider: a new instance of BindGroupProvider configured with the provided options
func NewBindGroupProvider(label string, options ...BindGroupProviderOption) BindGroupProvider {
	p := &bindGroupProvider{
		label:   label,
		buffers: make(map[int]Buffer),
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

func (p *bindGroupProvider) Label() string {
	return p.label
}

func (p *bindGroupProvider) BindGroup() BindGroupHandle {
	return p.bindGroup
}

func (p *bindGroupProvider) Buffer(binding int) Buffer {
	return p.buffers[binding]
}

func (p *bindGroupProvider) Buffers() map[int]Buffer {
	return p.buffers
}

func (p *bindGroupProvider) Bindings() []int {
	bindings := make([]int, 0, len(p.buffers))
	for b := range p.buffers {
		bindings = append(bindings, b)
	}
	sort.Ints(bindings)
	return bindings
}

func (p *bindGroupProvider) VertexBuffer() Buffer {
	return p.vertexBuffer
}

func (p *bindGroupProvider) IndexBuffer() Buffer {
	return p.indexBuffer
}

func (p *bindGroupProvider) IndexCount() int {
	return p.indexCount
}

func (p *bindGroupProvider) SetBindGroup(bg BindGroupHandle) {
	p.bindGroup = bg
}

func (p *bindGroupProvider) SetBuffer(binding int, buf Buffer) {
	if p.buffers == nil {
		p.buffers = make(map[int]Buffer)
	}
	p.buffers[binding] = buf
}

func (p *bindGroupProvider) SetVertexBuffer(buf Buffer) {
	p.vertexBuffer = buf
}

func (p *bindGroupProvider) SetIndexBuffer(buf Buffer) {
	p.indexBuffer = buf
}

func (p *bindGroupProvider) SetIndexCount(count int) {
	p.indexCount = count
}

func (p *bindGroupProvider) Release() {
	if p.bindGroup != nil {
		p.bindGroup.Release()
		p.bindGroup = nil
	}
	for i, buf := range p.buffers {
		if buf != nil && !buf.Released() {
			buf.Release()
		}
		delete(p.buffers, i)
	}
	if p.vertexBuffer != nil {
		p.vertexBuffer.Release()
		p.vertexBuffer = nil
	}
	if p.indexBuffer != nil {
		p.indexBuffer.Release()
		p.indexBuffer = nil
	}
}
