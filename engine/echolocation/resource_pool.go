package echolocation

import (
	"fmt"
	"strconv"

	"github.com/Carmen-Shannon/echolocation/engine/raycast"
	"github.com/Carmen-Shannon/echolocation/engine/renderer"
	"github.com/Carmen-Shannon/echolocation/engine/renderer/bind_group_provider"
)

// PoolConfig sizes a ResourcePool.
type PoolConfig struct {
	RayCount int
	MaxWaves int
	Mesh     *Mesh
}

// PoolSlot is the fixed set of buffers one wave occupies for its lifetime.
// Buffer identities never change after NewResourcePool; only their contents are rewritten per wave.
type PoolSlot struct {
	Index int

	// CPU side, owned by the wave's raycast until its handle is ready.
	Commands []raycast.Command
	Results  []raycast.Hit
	Records  []GPUHitRecord

	RawHits    bind_group_provider.Buffer // rayCount hit records, compute input
	Points     bind_group_provider.Buffer // point header + rayCount point records, compute output and render input
	DrawArgs   bind_group_provider.Buffer // indexed indirect draw arguments
	WaveParams bind_group_provider.Buffer // compute uniform

	ComputeGroup bind_group_provider.BindGroupProvider
	RenderGroup  bind_group_provider.BindGroupProvider
}

// ResourcePool owns every CPU array and GPU buffer of every slot.
// It is not safe for concurrent use; the Echolocator drives it from the tick goroutine.
type ResourcePool struct {
	renderer renderer.Renderer
	rayCount int

	slots       []*PoolSlot
	mesh        bind_group_provider.BindGroupProvider
	frameParams bind_group_provider.Buffer

	released bool
}

// NewResourcePool allocates maxWaves slots up front and uploads the static draw arguments.
// The echolocation pipelines are registered on the renderer if they are not already.
// A failure part way releases whatever was already created.
//
// Parameters:
//   - r: the renderer that owns the GPU buffers
//   - cfg: ray count, slot count and the per-point mesh
//
// Returns:
//   - *ResourcePool: the pool
//   - error: ErrInvalidConfig for bad sizes or a missing mesh, or the renderer's error
func NewResourcePool(r renderer.Renderer, cfg PoolConfig) (*ResourcePool, error) {
	if r == nil {
		return nil, fmt.Errorf("%w: renderer is required", ErrInvalidConfig)
	}
	if cfg.RayCount <= 0 || cfg.MaxWaves <= 0 {
		return nil, fmt.Errorf("%w: ray count and max waves must be positive, got %d and %d",
			ErrInvalidConfig, cfg.RayCount, cfg.MaxWaves)
	}
	if err := cfg.Mesh.validate(); err != nil {
		return nil, err
	}
	if err := r.RegisterPipelines(NewComputePipeline(), NewRenderPipeline()); err != nil {
		return nil, err
	}

	p := &ResourcePool{
		renderer: r,
		rayCount: cfg.RayCount,
		slots:    make([]*PoolSlot, 0, cfg.MaxWaves),
	}

	p.mesh = bind_group_provider.NewBindGroupProvider(cfg.Mesh.Label)
	if err := r.InitMeshBuffers(p.mesh, cfg.Mesh.vertexBytes(), cfg.Mesh.indexBytes(), len(cfg.Mesh.Indices)); err != nil {
		p.Release()
		return nil, fmt.Errorf("failed to upload mesh %q: %w", cfg.Mesh.Label, err)
	}

	var frame GPUFrameParams
	frameParams, err := r.CreateBuffer(bind_group_provider.BufferDescriptor{
		Label: "echo_frame_params",
		Size:  uint64(frame.Size()),
		Usage: bind_group_provider.BufferUsageUniform | bind_group_provider.BufferUsageCopyDst,
	})
	if err != nil {
		p.Release()
		return nil, err
	}
	p.frameParams = frameParams

	args := GPUIndirectArgs{IndexCount: uint32(len(cfg.Mesh.Indices))}
	for i := range cfg.MaxWaves {
		slot, err := p.newSlot(i)
		if err != nil {
			p.Release()
			return nil, fmt.Errorf("failed to allocate slot %d: %w", i, err)
		}
		p.slots = append(p.slots, slot)
		r.WriteBuffers([]bind_group_provider.BufferWrite{{Buffer: slot.DrawArgs, Data: args.Marshal()}})
	}
	return p, nil
}

// newSlot creates one slot. The slot is appended to p.slots by the caller only on success,
// so a partial slot releases its own resources here.
func (p *ResourcePool) newSlot(index int) (_ *PoolSlot, err error) {
	s := &PoolSlot{
		Index:    index,
		Commands: make([]raycast.Command, p.rayCount),
		Results:  make([]raycast.Hit, p.rayCount),
		Records:  make([]GPUHitRecord, p.rayCount),
	}
	defer func() {
		if err != nil {
			s.release()
		}
	}()

	label := "echo_slot_" + strconv.Itoa(index)
	var wave GPUWaveParams

	specs := []struct {
		dst   *bind_group_provider.Buffer
		name  string
		size  uint64
		usage bind_group_provider.BufferUsage
	}{
		{&s.RawHits, "hits", uint64(p.rayCount) * hitRecordSize,
			bind_group_provider.BufferUsageStorage | bind_group_provider.BufferUsageCopyDst},
		{&s.Points, "points", pointHeaderSize + uint64(p.rayCount)*pointRecordSize,
			bind_group_provider.BufferUsageStorage | bind_group_provider.BufferUsageCopyDst | bind_group_provider.BufferUsageCopySrc},
		{&s.DrawArgs, "draw_args", drawArgsSize,
			bind_group_provider.BufferUsageIndirect | bind_group_provider.BufferUsageCopyDst | bind_group_provider.BufferUsageCopySrc},
		{&s.WaveParams, "wave_params", uint64(wave.Size()),
			bind_group_provider.BufferUsageUniform | bind_group_provider.BufferUsageCopyDst},
	}
	for _, spec := range specs {
		buf, err := p.renderer.CreateBuffer(bind_group_provider.BufferDescriptor{
			Label: label + "_" + spec.name,
			Size:  spec.size,
			Usage: spec.usage,
		})
		if err != nil {
			return nil, err
		}
		*spec.dst = buf
	}

	s.ComputeGroup = bind_group_provider.NewBindGroupProvider(label+"_compute", bind_group_provider.WithBuffers(map[int]bind_group_provider.Buffer{
		computeBindingParams: s.WaveParams,
		computeBindingHits:   s.RawHits,
		computeBindingPoints: s.Points,
	}))
	if err := p.renderer.InitBindGroup(s.ComputeGroup, ComputePipelineKey); err != nil {
		return nil, err
	}

	s.RenderGroup = bind_group_provider.NewBindGroupProvider(label+"_render", bind_group_provider.WithBuffers(map[int]bind_group_provider.Buffer{
		renderBindingFrame:  p.frameParams,
		renderBindingPoints: s.Points,
	}))
	if err := p.renderer.InitBindGroup(s.RenderGroup, RenderPipelineKey); err != nil {
		return nil, err
	}
	return s, nil
}

// Len returns the number of slots.
func (p *ResourcePool) Len() int {
	return len(p.slots)
}

// RayCount returns the number of rays each slot holds.
func (p *ResourcePool) RayCount() int {
	return p.rayCount
}

// Slot returns slot i.
func (p *ResourcePool) Slot(i int) *PoolSlot {
	return p.slots[i]
}

// Mesh returns the provider holding the point billboard's vertex and index buffers.
func (p *ResourcePool) Mesh() bind_group_provider.BindGroupProvider {
	return p.mesh
}

// FrameParams returns the render uniform shared by every slot's render group.
func (p *ResourcePool) FrameParams() bind_group_provider.Buffer {
	return p.frameParams
}

// Released reports whether Release has run.
func (p *ResourcePool) Released() bool {
	return p.released
}

// Release frees every buffer exactly once. Safe to call repeatedly and on a partially built pool.
func (p *ResourcePool) Release() {
	if p.released {
		return
	}
	p.released = true
	for _, s := range p.slots {
		s.release()
	}
	p.slots = nil
	if p.mesh != nil {
		p.mesh.Release()
		p.mesh = nil
	}
	if p.frameParams != nil {
		p.frameParams.Release()
		p.frameParams = nil
	}
}

// release frees the slot's resources. The shared frame params buffer may already be released
// through another slot's render group; providers skip released buffers.
func (s *PoolSlot) release() {
	if s.ComputeGroup != nil {
		s.ComputeGroup.Release()
		s.ComputeGroup = nil
	}
	if s.RenderGroup != nil {
		s.RenderGroup.Release()
		s.RenderGroup = nil
	}
	for _, buf := range []*bind_group_provider.Buffer{&s.RawHits, &s.Points, &s.DrawArgs, &s.WaveParams} {
		if *buf != nil {
			(*buf).Release()
			*buf = nil
		}
	}
	s.Commands, s.Results, s.Records = nil, nil, nil
}
