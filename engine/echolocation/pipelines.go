package echolocation

import (
	"github.com/Carmen-Shannon/echolocation/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/echolocation/engine/renderer/shader"
)

const (
	// ComputePipelineKey is the key of the hit-to-point compute pipeline.
	ComputePipelineKey = "echo_compute"

	// RenderPipelineKey is the key of the point billboard render pipeline.
	RenderPipelineKey = "echo_points"
)

// NewComputePipeline describes the hit-to-point stage. The CPU kernel runs it on the software backend.
//
// Returns:
//   - pipeline.Pipeline: the unregistered compute pipeline
func NewComputePipeline() pipeline.Pipeline {
	return pipeline.NewPipeline(ComputePipelineKey, pipeline.PipelineTypeCompute,
		pipeline.WithComputeShader(pipeline.ShaderSource{
			Label:      "Echo Compute Shader",
			Code:       ComputeShaderSource,
			EntryPoint: "cs_main",
		}),
		pipeline.WithComputeKernel(computeKernel),
		pipeline.WithWorkgroupSize(WorkgroupSize),
	)
}

// NewRenderPipeline describes the point billboard stage. The quad vertex layout is read from the shader's VertexInput.
// Points blend over each other and test depth against the scene without writing it.
//
// Returns:
//   - pipeline.Pipeline: the unregistered render pipeline
func NewRenderPipeline() pipeline.Pipeline {
	vertex := pipeline.ShaderSource{
		Label:      "Echo Points Shader",
		Code:       PointsShaderSource,
		EntryPoint: "vs_main",
	}
	fragment := vertex
	fragment.EntryPoint = "fs_main"

	return pipeline.NewPipeline(RenderPipelineKey, pipeline.PipelineTypeRender,
		pipeline.WithVertexShader(vertex),
		pipeline.WithFragmentShader(fragment),
		pipeline.WithVertexLayouts(shader.Reflect(PointsShaderSource).VertexLayouts...),
		pipeline.WithBlendEnabled(true),
		pipeline.WithDepthWriteEnabled(false),
	)
}
