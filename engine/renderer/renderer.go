package renderer

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/Carmen-Shannon/echolocation/common"
	"github.com/Carmen-Shannon/echolocation/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/echolocation/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/echolocation/engine/renderer/shader"
	"github.com/Carmen-Shannon/echolocation/log"
	"github.com/cogentcore/webgpu/wgpu"
)

var logger = log.New("renderer")

// SurfaceSource supplies the presentation surface for the WGPU backend. window.Window satisfies it.
type SurfaceSource interface {
	SurfaceDescriptor() *wgpu.SurfaceDescriptor
	Width() int
	Height() int
}

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu *sync.Mutex

	pipelineCache map[string]pipeline.Pipeline
	reflections   map[string]shader.Reflection

	backendType RendererBackendType
	backend     rendererBackend
	released    atomic.Bool

	// Pre-creation config collected from builder options
	surface              SurfaceSource
	width, height        int
	forceFallbackAdapter bool
	pendingPresentMode   *PresentMode
	pendingPipelines     []pipeline.Pipeline
}

// Renderer is the GPU surface the echolocation pipeline drives.
//
// Work is recorded in two kinds of frames. A compute frame batches buffer writes, dispatches and
// buffer copies into one submission, executed in recording order. A render frame batches draw calls.
// Buffer writes staged with WriteBuffers are ordered before any work submitted after them.
type Renderer interface {
	// BackendType returns the backend in use.
	//
	// Returns:
	//   - RendererBackendType: the backend type
	BackendType() RendererBackendType

	// Pipeline retrieves the registered Pipeline associated with the given key, or nil.
	//
	// Parameters:
	//   - key: the pipeline key
	//
	// Returns:
	//   - pipeline.Pipeline: the pipeline or nil
	Pipeline(key string) pipeline.Pipeline

	// RegisterPipelines creates the backend objects for each pipeline and caches them by key.
	// Pipelines whose keys are already registered are skipped.
	//
	// Parameters:
	//   - pipelines: the pipelines to register
	//
	// Returns:
	//   - error: if backend pipeline creation fails
	RegisterPipelines(pipelines ...pipeline.Pipeline) error

	// Resize reconfigures the render target for a new size in pixels.
	//
	// Parameters:
	//   - width: the new width
	//   - height: the new height
	Resize(width, height int)

	// SetPresentMode changes how frames are presented. Takes effect on the next Resize.
	//
	// Parameters:
	//   - mode: the present mode
	SetPresentMode(mode PresentMode)

	// CreateBuffer allocates a zero-filled buffer.
	//
	// Parameters:
	//   - desc: label, size and usage of the buffer
	//
	// Returns:
	//   - bind_group_provider.Buffer: the new buffer
	//   - error: if the size is zero or the backend fails
	CreateBuffer(desc bind_group_provider.BufferDescriptor) (bind_group_provider.Buffer, error)

	// InitMeshBuffers creates and uploads vertex and index buffers for a mesh provider.
	//
	// Parameters:
	//   - provider: the mesh provider that receives the buffers
	//   - vertexData: raw vertex bytes
	//   - indexData: raw uint32 index bytes
	//   - indexCount: the number of indices
	//
	// Returns:
	//   - error: if buffer creation fails
	InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData, indexData []byte, indexCount int) error

	// InitBindGroup builds group 0 of the given pipeline over the provider's attached buffers.
	//
	// Parameters:
	//   - provider: the provider whose buffers are bound
	//   - pipelineKey: the pipeline whose layout is used
	//
	// Returns:
	//   - error: ErrUnknownPipeline or a backend error
	InitBindGroup(provider bind_group_provider.BindGroupProvider, pipelineKey string) error

	// WriteBuffers applies the writes in order.
	//
	// Parameters:
	//   - writes: the writes to apply
	WriteBuffers(writes []bind_group_provider.BufferWrite)

	// BeginComputeFrame opens a compute frame.
	//
	// Returns:
	//   - error: ErrFrameInProgress or a backend error
	BeginComputeFrame() error

	// DispatchCompute records a dispatch of the pipeline with the provider bound as group 0.
	//
	// Parameters:
	//   - pipelineKey: the compute pipeline key
	//   - computeProvider: the provider bound as group 0
	//   - workGroupCount: workgroups in x, y and z
	//
	// Returns:
	//   - error: ErrUnknownPipeline, ErrNoFrame or a backend error
	DispatchCompute(pipelineKey string, computeProvider bind_group_provider.BindGroupProvider, workGroupCount [3]uint32) error

	// CopyBufferToBuffer records a copy. It observes every dispatch recorded before it in the same frame.
	//
	// Parameters:
	//   - src: the source buffer, needs BufferUsageCopySrc
	//   - srcOffset: byte offset in src
	//   - dst: the destination buffer, needs BufferUsageCopyDst
	//   - dstOffset: byte offset in dst
	//   - size: number of bytes, a multiple of 4
	//
	// Returns:
	//   - error: ErrNoFrame, ErrBufferUsage, ErrOutOfBounds or a backend error
	CopyBufferToBuffer(src bind_group_provider.Buffer, srcOffset uint64, dst bind_group_provider.Buffer, dstOffset uint64, size uint64) error

	// EndComputeFrame submits the compute frame. A no-op when no frame is open.
	EndComputeFrame()

	// BeginFrame opens a render frame.
	//
	// Returns:
	//   - error: ErrFrameInProgress or a backend error
	BeginFrame() error

	// DrawCallIndirect records an indexed instanced draw whose arguments live in indirectBuffer.
	// bindGroups are bound in order starting at group 0.
	//
	// Parameters:
	//   - pipelineKey: the render pipeline key
	//   - meshProvider: provider holding vertex and index buffers
	//   - indirectBuffer: a 20-byte indexed indirect argument buffer
	//   - bindGroups: the providers bound as groups 0..n-1
	//
	// Returns:
	//   - error: ErrUnknownPipeline, ErrNoFrame or a backend error
	DrawCallIndirect(pipelineKey string, meshProvider bind_group_provider.BindGroupProvider, indirectBuffer bind_group_provider.Buffer, bindGroups []bind_group_provider.BindGroupProvider) error

	// EndFrame submits the render frame.
	EndFrame()

	// Present displays the last submitted frame.
	Present()

	// ReadBuffer copies size bytes at offset back to host memory, blocking until queued work finishes.
	//
	// Parameters:
	//   - buf: the buffer to read, needs BufferUsageCopySrc
	//   - offset: byte offset
	//   - size: number of bytes
	//
	// Returns:
	//   - []byte: a copy of the buffer contents
	//   - error: if the range is invalid or mapping fails
	ReadBuffer(buf bind_group_provider.Buffer, offset, size uint64) ([]byte, error)

	// Stats returns counters for the work recorded so far.
	//
	// Returns:
	//   - FrameStats: the current counters
	Stats() FrameStats

	// LastFrame returns the draw calls of the last completed render frame.
	//
	// Returns:
	//   - []DrawRecord: the draw calls in recording order
	LastFrame() []DrawRecord

	// Release frees every pipeline and backend resource. Safe to call more than once.
	Release()
}

var _ Renderer = &renderer{}

// NewRenderer creates a Renderer on the requested backend.
//
// Parameters:
//   - backendType: the backend to use
//   - options: functional options to configure the renderer
//
// Returns:
//   - Renderer: the renderer
//   - error: if the backend could not be initialized or a pre-registered pipeline failed
func NewRenderer(backendType RendererBackendType, options ...RendererBuilderOption) (Renderer, error) {
	r := &renderer{
		mu:            &sync.Mutex{},
		pipelineCache: make(map[string]pipeline.Pipeline),
		reflections:   make(map[string]shader.Reflection),
		backendType:   backendType,
		width:         1280,
		height:        720,
	}

	for _, opt := range options {
		opt(r)
	}

	switch backendType {
	case BackendTypeWGPU:
		var desc *wgpu.SurfaceDescriptor
		if r.surface != nil {
			desc = r.surface.SurfaceDescriptor()
			r.width, r.height = r.surface.Width(), r.surface.Height()
		}
		b, err := newWGPURendererBackend(desc, r.forceFallbackAdapter)
		if err != nil {
			return nil, fmt.Errorf("failed to create wgpu backend: %w", err)
		}
		r.backend = b
	case BackendTypeSoftware:
		r.backend = newSoftwareRendererBackend()
	default:
		return nil, fmt.Errorf("unsupported renderer backend type %d", backendType)
	}

	if r.pendingPresentMode != nil {
		r.backend.SetPresentMode(*r.pendingPresentMode)
	}
	r.backend.ConfigureSurface(r.width, r.height)

	if err := r.RegisterPipelines(r.pendingPipelines...); err != nil {
		r.Release()
		return nil, err
	}
	logger.Infof("%s renderer ready (%dx%d)", backendType, r.width, r.height)
	return r, nil
}

func (r *renderer) BackendType() RendererBackendType {
	return r.backendType
}

func (r *renderer) Resize(width, height int) {
	r.backend.ConfigureSurface(width, height)
}

func (r *renderer) SetPresentMode(mode PresentMode) {
	r.backend.SetPresentMode(mode)
}

func (r *renderer) Pipeline(key string) pipeline.Pipeline {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pipelineCache[key]
}

func (r *renderer) RegisterPipelines(pipelines ...pipeline.Pipeline) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range pipelines {
		key := p.PipelineKey()
		if _, exists := r.pipelineCache[key]; exists {
			continue
		}
		refl := reflectPipeline(p)
		switch p.Type() {
		case pipeline.PipelineTypeCompute:
			if declared := refl.WorkgroupSize[0]; declared != 0 && declared != p.WorkgroupSize() {
				return fmt.Errorf("compute pipeline %q: shader declares workgroup size %d, pipeline dispatches %d", key, declared, p.WorkgroupSize())
			}
			if err := r.backend.RegisterComputePipeline(p); err != nil {
				return fmt.Errorf("failed to register compute pipeline %q: %w", key, err)
			}
		case pipeline.PipelineTypeRender:
			if err := r.backend.RegisterRenderPipeline(p); err != nil {
				return fmt.Errorf("failed to register render pipeline %q: %w", key, err)
			}
		}
		r.pipelineCache[key] = p
		r.reflections[key] = refl
	}
	return nil
}

// reflectPipeline merges the reflection of every stage the pipeline carries.
func reflectPipeline(p pipeline.Pipeline) shader.Reflection {
	var merged shader.Reflection
	seen := make(map[[2]int]bool)
	for _, src := range []*pipeline.ShaderSource{p.ComputeShader(), p.VertexShader(), p.FragmentShader()} {
		if src == nil {
			continue
		}
		refl := shader.Reflect(src.Code)
		merged.WorkgroupSize = common.Coalesce(merged.WorkgroupSize, refl.WorkgroupSize)
		for _, b := range refl.Bindings {
			if k := [2]int{b.Group, b.Binding}; !seen[k] {
				seen[k] = true
				merged.Bindings = append(merged.Bindings, b)
			}
		}
	}
	return merged
}

// checkBindings verifies the provider covers every group 0 binding the pipeline's shaders declare.
func checkBindings(provider bind_group_provider.BindGroupProvider, key string, refl shader.Reflection) error {
	for _, b := range refl.Group(0) {
		buf := provider.Buffer(b.Binding)
		if buf == nil {
			return fmt.Errorf("%w: %q binding %d (%s) for pipeline %q", ErrMissingBinding, provider.Label(), b.Binding, b.Name, key)
		}
		if buf.Size() < b.MinSize {
			return fmt.Errorf("%w: %q binding %d (%s) is %d bytes, %s needs at least %d",
				ErrBufferTooSmall, provider.Label(), b.Binding, b.Name, buf.Size(), b.Type, b.MinSize)
		}
	}
	return nil
}

func (r *renderer) lookup(key string) (pipeline.Pipeline, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, exists := r.pipelineCache[key]
	if !exists {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPipeline, key)
	}
	return p, nil
}

func (r *renderer) CreateBuffer(desc bind_group_provider.BufferDescriptor) (bind_group_provider.Buffer, error) {
	if r.released.Load() {
		return nil, ErrReleased
	}
	if desc.Size == 0 {
		return nil, fmt.Errorf("buffer %q: size must be non-zero", desc.Label)
	}
	return r.backend.CreateBuffer(desc)
}

func (r *renderer) InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData, indexData []byte, indexCount int) error {
	return r.backend.InitMeshBuffers(provider, vertexData, indexData, indexCount)
}

func (r *renderer) InitBindGroup(provider bind_group_provider.BindGroupProvider, pipelineKey string) error {
	p, err := r.lookup(pipelineKey)
	if err != nil {
		return err
	}
	r.mu.Lock()
	refl := r.reflections[pipelineKey]
	r.mu.Unlock()
	if err := checkBindings(provider, pipelineKey, refl); err != nil {
		return err
	}
	return r.backend.InitBindGroup(provider, p)
}

func (r *renderer) WriteBuffers(writes []bind_group_provider.BufferWrite) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.backend.WriteBuffers(writes)
}

func (r *renderer) BeginComputeFrame() error {
	return r.backend.BeginComputeFrame()
}

func (r *renderer) EndComputeFrame() {
	r.backend.EndComputeFrame()
}

func (r *renderer) DispatchCompute(pipelineKey string, computeProvider bind_group_provider.BindGroupProvider, workGroupCount [3]uint32) error {
	p, err := r.lookup(pipelineKey)
	if err != nil {
		return err
	}
	return r.backend.DispatchCompute(p, computeProvider, workGroupCount)
}

func (r *renderer) CopyBufferToBuffer(src bind_group_provider.Buffer, srcOffset uint64, dst bind_group_provider.Buffer, dstOffset uint64, size uint64) error {
	if !src.Usage().Has(bind_group_provider.BufferUsageCopySrc) {
		return fmt.Errorf("%w: %q is not CopySrc", ErrBufferUsage, src.Label())
	}
	if !dst.Usage().Has(bind_group_provider.BufferUsageCopyDst) {
		return fmt.Errorf("%w: %q is not CopyDst", ErrBufferUsage, dst.Label())
	}
	if size%4 != 0 || srcOffset%4 != 0 || dstOffset%4 != 0 {
		return fmt.Errorf("copy %q -> %q: offsets and size must be 4-byte aligned", src.Label(), dst.Label())
	}
	if !checkRange(src.Size(), srcOffset, size) || !checkRange(dst.Size(), dstOffset, size) {
		return fmt.Errorf("%w: copy %q[%d:+%d] -> %q[%d:+%d]", ErrOutOfBounds,
			src.Label(), srcOffset, size, dst.Label(), dstOffset, size)
	}
	return r.backend.CopyBufferToBuffer(src, srcOffset, dst, dstOffset, size)
}

func (r *renderer) BeginFrame() error {
	return r.backend.BeginFrame()
}

func (r *renderer) DrawCallIndirect(pipelineKey string, meshProvider bind_group_provider.BindGroupProvider, indirectBuffer bind_group_provider.Buffer, bindGroups []bind_group_provider.BindGroupProvider) error {
	p, err := r.lookup(pipelineKey)
	if err != nil {
		return err
	}
	if !indirectBuffer.Usage().Has(bind_group_provider.BufferUsageIndirect) {
		return fmt.Errorf("%w: %q is not Indirect", ErrBufferUsage, indirectBuffer.Label())
	}
	return r.backend.DrawCallIndirect(p, meshProvider, indirectBuffer, bindGroups)
}

func (r *renderer) EndFrame() {
	r.backend.EndFrame()
}

func (r *renderer) Present() {
	r.backend.Present()
}

func (r *renderer) ReadBuffer(buf bind_group_provider.Buffer, offset, size uint64) ([]byte, error) {
	if buf.Released() {
		return nil, fmt.Errorf("%w: %q", ErrBufferReleased, buf.Label())
	}
	if !checkRange(buf.Size(), offset, size) {
		return nil, fmt.Errorf("%w: read %q[%d:+%d]", ErrOutOfBounds, buf.Label(), offset, size)
	}
	return r.backend.ReadBuffer(buf, offset, size)
}

func (r *renderer) Stats() FrameStats {
	return r.backend.Stats()
}

func (r *renderer) LastFrame() []DrawRecord {
	return r.backend.LastFrame()
}

func (r *renderer) Release() {
	if r.released.Swap(true) {
		return
	}
	r.mu.Lock()
	for key, p := range r.pipelineCache {
		p.Release()
		delete(r.pipelineCache, key)
	}
	r.mu.Unlock()
	r.backend.Release()
}
