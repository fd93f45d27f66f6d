package renderer

import (
	"github.com/Carmen-Shannon/echolocation/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/echolocation/engine/renderer/pipeline"
)

// RendererBackendType identifies the GPU backend implementation used by the Renderer.
type RendererBackendType int

const (
	// BackendTypeWGPU selects the WebGPU-based rendering backend.
	BackendTypeWGPU RendererBackendType = iota

	// BackendTypeSoftware selects the CPU backend. Buffers live in host memory, compute
	// pipelines run their CPU kernel and draw calls are recorded instead of rasterized.
	BackendTypeSoftware
)

func (t RendererBackendType) String() string {
	switch t {
	case BackendTypeWGPU:
		return "wgpu"
	case BackendTypeSoftware:
		return "software"
	default:
		return "unknown"
	}
}

// PresentMode controls how rendered frames are presented to the display surface.
type PresentMode int

const (
	// PresentModeVSync waits for the next vertical blank before presenting, capping frame rate
	// to the monitor's refresh rate. Eliminates tearing.
	PresentModeVSync PresentMode = iota

	// PresentModeUncapped presents frames immediately without waiting for vertical blank.
	// May cause screen tearing but provides the lowest latency.
	PresentModeUncapped
)

// FrameStats summarizes the work a backend has recorded.
type FrameStats struct {
	// Frames is the number of presented frames.
	Frames uint64
	// ComputeFrames is the number of submitted compute frames.
	ComputeFrames uint64
	// Dispatches is the total number of compute dispatches.
	Dispatches uint64
	// Copies is the total number of buffer-to-buffer copies.
	Copies uint64
	// DrawCalls is the number of draw calls recorded in the last completed render frame.
	DrawCalls int
	// LiveBuffers is the number of buffers created and not yet released.
	LiveBuffers int
}

// DrawRecord describes one indirect draw call of a completed frame.
// InstanceCount is resolved from the indirect buffer by the software backend only;
// GPU backends report -1 because the count never leaves the device.
type DrawRecord struct {
	PipelineKey   string
	Mesh          string
	BindGroups    []string
	IndexCount    uint32
	InstanceCount int64
	FirstIndex    uint32
	BaseVertex    int32
	FirstInstance uint32
}

// rendererBackend is implemented by every backend the Renderer can drive. Pipelines passed in
// have already been looked up from the renderer's cache.
type rendererBackend interface {
	ConfigureSurface(width, height int)
	SetPresentMode(mode PresentMode)

	RegisterRenderPipeline(p pipeline.Pipeline) error
	RegisterComputePipeline(p pipeline.Pipeline) error

	CreateBuffer(desc bind_group_provider.BufferDescriptor) (bind_group_provider.Buffer, error)
	InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData, indexData []byte, indexCount int) error
	InitBindGroup(provider bind_group_provider.BindGroupProvider, p pipeline.Pipeline) error
	WriteBuffers(writes []bind_group_provider.BufferWrite)

	BeginComputeFrame() error
	DispatchCompute(p pipeline.Pipeline, computeProvider bind_group_provider.BindGroupProvider, workGroupCount [3]uint32) error
	CopyBufferToBuffer(src bind_group_provider.Buffer, srcOffset uint64, dst bind_group_provider.Buffer, dstOffset uint64, size uint64) error
	EndComputeFrame()

	BeginFrame() error
	DrawCallIndirect(p pipeline.Pipeline, meshProvider bind_group_provider.BindGroupProvider, indirectBuffer bind_group_provider.Buffer, bindGroups []bind_group_provider.BindGroupProvider) error
	EndFrame()
	Present()

	ReadBuffer(buf bind_group_provider.Buffer, offset, size uint64) ([]byte, error)
	Stats() FrameStats
	LastFrame() []DrawRecord
	Release()
}

// checkRange validates that [offset, offset+size) lies inside a buffer of bufSize bytes.
func checkRange(bufSize, offset, size uint64) bool {
	return offset <= bufSize && size <= bufSize-offset
}
