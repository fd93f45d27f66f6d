package pipeline

import "github.com/cogentcore/webgpu/wgpu"

// PipelineBuilderOption is a functional option applied to a pipeline during construction via NewPipeline.
type PipelineBuilderOption func(*pipeline)

// WithVertexShader sets the vertex stage of a render pipeline.
//
// Parameters:
//   - s: the vertex shader source and entry point
//
// Returns:
//   - PipelineBuilderOption: a function that sets the vertex stage
func WithVertexShader(s ShaderSource) PipelineBuilderOption {
	return func(p *pipeline) {
		p.vertexShader = &s
	}
}

// WithFragmentShader sets the fragment stage of a render pipeline.
//
// Parameters:
//   - s: the fragment shader source and entry point
//
// Returns:
//   - PipelineBuilderOption: a function that sets the fragment stage
func WithFragmentShader(s ShaderSource) PipelineBuilderOption {
	return func(p *pipeline) {
		p.fragmentShader = &s
	}
}

// WithComputeShader sets the compute stage of a compute pipeline.
//
// Parameters:
//   - s: the compute shader source and entry point
//
// Returns:
//   - PipelineBuilderOption: a function that sets the compute stage
func WithComputeShader(s ShaderSource) PipelineBuilderOption {
	return func(p *pipeline) {
		p.computeShader = &s
	}
}

// WithComputeKernel sets the CPU kernel executed by the software backend in place of the compute stage.
//
// Parameters:
//   - k: the CPU kernel
//
// Returns:
//   - PipelineBuilderOption: a function that sets the CPU kernel
func WithComputeKernel(k ComputeKernel) PipelineBuilderOption {
	return func(p *pipeline) {
		p.computeKernel = k
	}
}

// WithWorkgroupSize sets the invocations per workgroup. It must match @workgroup_size in the WGSL.
//
// Parameters:
//   - size: invocations per workgroup
//
// Returns:
//   - PipelineBuilderOption: a function that sets the workgroup size
func WithWorkgroupSize(size uint32) PipelineBuilderOption {
	return func(p *pipeline) {
		p.workgroupSize = size
	}
}

// WithVertexLayouts sets the vertex buffer layouts of a render pipeline.
//
// Parameters:
//   - layouts: the vertex buffer layouts
//
// Returns:
//   - PipelineBuilderOption: a function that sets the vertex layouts
func WithVertexLayouts(layouts ...wgpu.VertexBufferLayout) PipelineBuilderOption {
	return func(p *pipeline) {
		p.vertexLayouts = layouts
	}
}

func WithDepthTestEnabled(enabled bool) PipelineBuilderOption {
	return func(p *pipeline) {
		p.depthTestEnabled = enabled
	}
}

func WithDepthWriteEnabled(enabled bool) PipelineBuilderOption {
	return func(p *pipeline) {
		p.depthWriteEnabled = enabled
	}
}

// WithBlendEnabled toggles the pipeline's blend state. Transparent point sprites need it on.
func WithBlendEnabled(enabled bool) PipelineBuilderOption {
	return func(p *pipeline) {
		p.blendEnabled = enabled
	}
}

func WithCullMode(mode wgpu.CullMode) PipelineBuilderOption {
	return func(p *pipeline) {
		p.cullMode = mode
	}
}

func WithTopology(topology wgpu.PrimitiveTopology) PipelineBuilderOption {
	return func(p *pipeline) {
		p.topology = topology
	}
}

// WithBlendState replaces the default alpha blend state.
//
// Parameters:
//   - blendState: the blend state used when blending is enabled
//
// Returns:
//   - PipelineBuilderOption: a function that sets the blend state
func WithBlendState(blendState *wgpu.BlendState) PipelineBuilderOption {
	return func(p *pipeline) {
		p.blendState = blendState
	}
}
