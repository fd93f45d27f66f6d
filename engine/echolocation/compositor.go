package echolocation

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/echolocation/engine/camera"
	"github.com/Carmen-Shannon/echolocation/engine/renderer"
	"github.com/Carmen-Shannon/echolocation/engine/renderer/bind_group_provider"
	"github.com/go-gl/mathgl/mgl32"
)

// compositor draws every slot every frame, whatever the state of its wave.
// A slot keeps drawing its previous points until its next wave is reaped.
type compositor struct {
	state    *pipelineState
	renderer renderer.Renderer
	camera   camera.Camera
}

func (c *compositor) draw() error {
	viewProj := mgl32.Ident4()
	if c.camera != nil {
		viewProj = c.camera.ViewProjectionMatrix()
	}
	frame := GPUFrameParams{
		ViewProj:      viewProj,
		Time:          c.state.now(),
		PointLifetime: float32(c.state.cfg.PointLifetime.Seconds()),
		PointSize:     c.state.cfg.PointSize,
	}
	pool := c.state.pool
	c.renderer.WriteBuffers([]bind_group_provider.BufferWrite{
		{Buffer: pool.FrameParams(), Data: frame.Marshal()},
	})

	var errs []error
	for i := range pool.Len() {
		slot := pool.Slot(i)
		err := c.renderer.DrawCallIndirect(RenderPipelineKey, pool.Mesh(), slot.DrawArgs,
			[]bind_group_provider.BindGroupProvider{slot.RenderGroup})
		if err != nil {
			errs = append(errs, fmt.Errorf("slot %d: %w", i, err))
		}
	}
	return errors.Join(errs...)
}
