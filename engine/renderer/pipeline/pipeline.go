package pipeline

import (
	"github.com/cogentcore/webgpu/wgpu"
)

// PipelineType defines the type of pipeline, either compute or render.
type PipelineType int

const (
	// PipelineTypeCompute represents a compute pipeline.
	PipelineTypeCompute PipelineType = iota

	// PipelineTypeRender represents a render pipeline.
	PipelineTypeRender
)

// ShaderSource is a WGSL module and the entry point a pipeline stage uses from it.
type ShaderSource struct {
	Label      string
	Code       string
	EntryPoint string
}

// ComputeKernel is the CPU form of a compute entry point, used by backends without a GPU.
// It is invoked once per global invocation id with the raw contents of group 0 keyed by binding.
type ComputeKernel func(bindings map[int][]byte, invocationID uint32)

type pipeline struct {
	pipelineType PipelineType
	pipelineKey  string

	vertexShader, fragmentShader, computeShader *ShaderSource
	vertexLayouts                               []wgpu.VertexBufferLayout

	computeKernel ComputeKernel
	workgroupSize uint32

	renderPipeline  *wgpu.RenderPipeline
	computePipeline *wgpu.ComputePipeline

	depthTestEnabled  bool
	depthWriteEnabled bool
	blendEnabled      bool
	cullMode          wgpu.CullMode
	topology          wgpu.PrimitiveTopology
	frontFace         wgpu.FrontFace
	writeMask         wgpu.ColorWriteMask
	blendState        *wgpu.BlendState
}

// Pipeline describes a compute or render pipeline and holds the backend object once registered.
type Pipeline interface {
	// Type returns whether this is a compute or render pipeline.
	//
	// Returns:
	//   - PipelineType: the pipeline type
	Type() PipelineType

	// PipelineKey returns the key the pipeline is cached under.
	//
	// Returns:
	//   - string: the pipeline key
	PipelineKey() string

	// VertexShader returns the vertex stage source, or nil for compute pipelines.
	//
	// Returns:
	//   - *ShaderSource: the vertex stage or nil
	VertexShader() *ShaderSource

	// FragmentShader returns the fragment stage source, or nil for compute pipelines.
	//
	// Returns:
	//   - *ShaderSource: the fragment stage or nil
	FragmentShader() *ShaderSource

	// ComputeShader returns the compute stage source, or nil for render pipelines.
	//
	// Returns:
	//   - *ShaderSource: the compute stage or nil
	ComputeShader() *ShaderSource

	// VertexLayouts returns the vertex buffer layouts consumed by the vertex stage.
	//
	// Returns:
	//   - []wgpu.VertexBufferLayout: the vertex buffer layouts
	VertexLayouts() []wgpu.VertexBufferLayout

	// ComputeKernel returns the CPU kernel mirroring the compute stage, or nil.
	//
	// Returns:
	//   - ComputeKernel: the CPU kernel or nil
	ComputeKernel() ComputeKernel

	// WorkgroupSize returns the number of invocations per workgroup declared by the compute stage.
	//
	// Returns:
	//   - uint32: invocations per workgroup
	WorkgroupSize() uint32

	// Pipeline returns the backend pipeline object, or nil if not registered with a GPU backend.
	//
	// Returns:
	//   - any: *wgpu.RenderPipeline, *wgpu.ComputePipeline or nil
	Pipeline() any

	DepthTestEnabled() bool
	DepthWriteEnabled() bool
	BlendEnabled() bool
	CullMode() wgpu.CullMode
	Topology() wgpu.PrimitiveTopology
	FrontFace() wgpu.FrontFace
	WriteMask() wgpu.ColorWriteMask
	BlendState() *wgpu.BlendState

	// SetRenderPipeline stores the created render pipeline. Called by the renderer backend.
	//
	// Parameters:
	//   - p: the render pipeline
	SetRenderPipeline(p *wgpu.RenderPipeline)

	// SetComputePipeline stores the created compute pipeline. Called by the renderer backend.
	//
	// Parameters:
	//   - p: the compute pipeline
	SetComputePipeline(p *wgpu.ComputePipeline)

	// Release frees the backend pipeline object if one was created.
	Release()
}

var _ Pipeline = &pipeline{}

// NewPipeline creates a new Pipeline with the given key, type and options.
// Render pipelines default to alpha blending disabled, depth test on and no culling.
//
// Parameters:
//   - pipelineKey: the unique key for the pipeline
//   - pipelineType: compute or render
//   - opts: functional options to configure the pipeline
//
// Returns:
//   - Pipeline: the configured pipeline
func NewPipeline(pipelineKey string, pipelineType PipelineType, opts ...PipelineBuilderOption) Pipeline {
	p := &pipeline{
		pipelineKey:       pipelineKey,
		pipelineType:      pipelineType,
		workgroupSize:     64,
		depthTestEnabled:  true,
		depthWriteEnabled: true,
		cullMode:          wgpu.CullModeNone,
		topology:          wgpu.PrimitiveTopologyTriangleList,
		frontFace:         wgpu.FrontFaceCCW,
		writeMask:         wgpu.ColorWriteMaskAll,
		blendState: &wgpu.BlendState{
			Color: wgpu.BlendComponent{
				SrcFactor: wgpu.BlendFactorSrcAlpha,
				DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
				Operation: wgpu.BlendOperationAdd,
			},
			Alpha: wgpu.BlendComponent{
				SrcFactor: wgpu.BlendFactorOne,
				DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
				Operation: wgpu.BlendOperationAdd,
			},
		},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *pipeline) Type() PipelineType {
	return p.pipelineType
}

func (p *pipeline) PipelineKey() string {
	return p.pipelineKey
}

func (p *pipeline) VertexShader() *ShaderSource {
	return p.vertexShader
}

func (p *pipeline) FragmentShader() *ShaderSource {
	return p.fragmentShader
}

func (p *pipeline) ComputeShader() *ShaderSource {
	return p.computeShader
}

func (p *pipeline) VertexLayouts() []wgpu.VertexBufferLayout {
	return p.vertexLayouts
}

func (p *pipeline) ComputeKernel() ComputeKernel {
	return p.computeKernel
}

func (p *pipeline) WorkgroupSize() uint32 {
	return p.workgroupSize
}

func (p *pipeline) Pipeline() any {
	switch p.pipelineType {
	case PipelineTypeRender:
		if p.renderPipeline == nil {
			return nil
		}
		return p.renderPipeline
	case PipelineTypeCompute:
		if p.computePipeline == nil {
			return nil
		}
		return p.computePipeline
	default:
		return nil
	}
}

func (p *pipeline) DepthTestEnabled() bool {
	return p.depthTestEnabled
}

func (p *pipeline) DepthWriteEnabled() bool {
	return p.depthWriteEnabled
}

func (p *pipeline) BlendEnabled() bool {
	return p.blendEnabled
}

func (p *pipeline) CullMode() wgpu.CullMode {
	return p.cullMode
}

func (p *pipeline) Topology() wgpu.PrimitiveTopology {
	return p.topology
}

func (p *pipeline) FrontFace() wgpu.FrontFace {
	return p.frontFace
}

func (p *pipeline) WriteMask() wgpu.ColorWriteMask {
	return p.writeMask
}

func (p *pipeline) BlendState() *wgpu.BlendState {
	return p.blendState
}

func (p *pipeline) SetRenderPipeline(rp *wgpu.RenderPipeline) {
	p.renderPipeline = rp
}

func (p *pipeline) SetComputePipeline(cp *wgpu.ComputePipeline) {
	p.computePipeline = cp
}

func (p *pipeline) Release() {
	if p.renderPipeline != nil {
		p.renderPipeline.Release()
		p.renderPipeline = nil
	}
	if p.computePipeline != nil {
		p.computePipeline.Release()
		p.computePipeline = nil
	}
}
