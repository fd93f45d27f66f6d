package renderer

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/echolocation/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/echolocation/engine/renderer/pipeline"
)

// softwareBuffer is a host-memory buffer owned by the software backend.
type softwareBuffer struct {
	owner    *softwareRendererBackendImpl
	label    string
	usage    bind_group_provider.BufferUsage
	data     []byte
	released bool
}

var _ bind_group_provider.Buffer = &softwareBuffer{}

func (b *softwareBuffer) Label() string {
	return b.label
}

func (b *softwareBuffer) Size() uint64 {
	return uint64(len(b.data))
}

func (b *softwareBuffer) Usage() bind_group_provider.BufferUsage {
	return b.usage
}

func (b *softwareBuffer) Released() bool {
	b.owner.mu.Lock()
	defer b.owner.mu.Unlock()
	return b.released
}

func (b *softwareBuffer) Release() {
	b.owner.mu.Lock()
	defer b.owner.mu.Unlock()
	if b.released {
		return
	}
	b.released = true
	b.owner.liveBuffers--
}

// softwareBindGroup snapshots which buffers a provider bound at InitBindGroup time.
type softwareBindGroup struct {
	label   string
	entries map[int]*softwareBuffer
}

func (g *softwareBindGroup) Release() {
	g.entries = nil
}

type softwareRendererBackendImpl struct {
	mu *sync.Mutex

	computeOpen bool
	computeOps  []func()

	frameOpen  bool
	frameDraws []DrawRecord
	lastFrame  []DrawRecord

	stats       FrameStats
	liveBuffers int
}

var _ rendererBackend = &softwareRendererBackendImpl{}

func newSoftwareRendererBackend() *softwareRendererBackendImpl {
	return &softwareRendererBackendImpl{mu: &sync.Mutex{}}
}

func (b *softwareRendererBackendImpl) ConfigureSurface(width, height int) {}

func (b *softwareRendererBackendImpl) SetPresentMode(mode PresentMode) {}

func (b *softwareRendererBackendImpl) RegisterRenderPipeline(p pipeline.Pipeline) error {
	if p.VertexShader() == nil || p.FragmentShader() == nil {
		return errors.New("both vertex and fragment shaders must be set to create a render pipeline")
	}
	return nil
}

func (b *softwareRendererBackendImpl) RegisterComputePipeline(p pipeline.Pipeline) error {
	if p.ComputeKernel() == nil {
		return errors.New("the software backend needs a CPU compute kernel")
	}
	if p.WorkgroupSize() == 0 {
		return errors.New("workgroup size must be non-zero")
	}
	return nil
}

func (b *softwareRendererBackendImpl) CreateBuffer(desc bind_group_provider.BufferDescriptor) (bind_group_provider.Buffer, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.liveBuffers++
	return &softwareBuffer{
		owner: b,
		label: desc.Label,
		usage: desc.Usage,
		data:  make([]byte, desc.Size),
	}, nil
}

func (b *softwareRendererBackendImpl) InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData, indexData []byte, indexCount int) error {
	if len(vertexData) > 0 {
		buf, _ := b.CreateBuffer(bind_group_provider.BufferDescriptor{
			Label: provider.Label() + " Vertex Buffer",
			Size:  uint64(len(vertexData)),
			Usage: bind_group_provider.BufferUsageVertex | bind_group_provider.BufferUsageCopyDst,
		})
		copy(buf.(*softwareBuffer).data, vertexData)
		provider.SetVertexBuffer(buf)
	}
	if len(indexData) > 0 {
		buf, _ := b.CreateBuffer(bind_group_provider.BufferDescriptor{
			Label: provider.Label() + " Index Buffer",
			Size:  uint64(len(indexData)),
			Usage: bind_group_provider.BufferUsageIndex | bind_group_provider.BufferUsageCopyDst,
		})
		copy(buf.(*softwareBuffer).data, indexData)
		provider.SetIndexBuffer(buf)
	}
	provider.SetIndexCount(indexCount)
	return nil
}

func (b *softwareRendererBackendImpl) InitBindGroup(provider bind_group_provider.BindGroupProvider, p pipeline.Pipeline) error {
	bindings := provider.Bindings()
	if len(bindings) == 0 {
		return fmt.Errorf("provider %q has no buffers to bind", provider.Label())
	}
	group := &softwareBindGroup{
		label:   provider.Label(),
		entries: make(map[int]*softwareBuffer, len(bindings)),
	}
	for _, binding := range bindings {
		buf, err := b.native(provider.Buffer(binding))
		if err != nil {
			return fmt.Errorf("provider %q binding %d: %w", provider.Label(), binding, err)
		}
		group.entries[binding] = buf
	}
	if old := provider.BindGroup(); old != nil {
		old.Release()
	}
	provider.SetBindGroup(group)
	return nil
}

func (b *softwareRendererBackendImpl) WriteBuffers(writes []bind_group_provider.BufferWrite) {
	for _, w := range writes {
		buf, err := b.native(w.Buffer)
		if err != nil {
			logger.Errorf("skipping write: %v", err)
			continue
		}
		if !buf.usage.Has(bind_group_provider.BufferUsageCopyDst) {
			logger.Errorf("skipping write to %q: not CopyDst", buf.label)
			continue
		}
		if !checkRange(uint64(len(buf.data)), w.Offset, uint64(len(w.Data))) {
			logger.Errorf("skipping write to %q: %d bytes at %d out of bounds", buf.label, len(w.Data), w.Offset)
			continue
		}
		copy(buf.data[w.Offset:], w.Data)
	}
}

func (b *softwareRendererBackendImpl) BeginComputeFrame() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.computeOpen {
		return ErrFrameInProgress
	}
	b.computeOpen = true
	b.computeOps = b.computeOps[:0]
	return nil
}

func (b *softwareRendererBackendImpl) DispatchCompute(p pipeline.Pipeline, computeProvider bind_group_provider.BindGroupProvider, workGroupCount [3]uint32) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.computeOpen {
		return ErrNoFrame
	}
	group, ok := computeProvider.BindGroup().(*softwareBindGroup)
	if !ok || group == nil || group.entries == nil {
		return fmt.Errorf("provider %q has no bind group; call InitBindGroup first", computeProvider.Label())
	}

	kernel := p.ComputeKernel()
	invocations := workGroupCount[0] * workGroupCount[1] * workGroupCount[2] * p.WorkgroupSize()
	b.computeOps = append(b.computeOps, func() {
		bindings := make(map[int][]byte, len(group.entries))
		for binding, buf := range group.entries {
			bindings[binding] = buf.data
		}
		for id := uint32(0); id < invocations; id++ {
			kernel(bindings, id)
		}
	})
	b.stats.Dispatches++
	return nil
}

func (b *softwareRendererBackendImpl) CopyBufferToBuffer(src bind_group_provider.Buffer, srcOffset uint64, dst bind_group_provider.Buffer, dstOffset uint64, size uint64) error {
	s, err := b.native(src)
	if err != nil {
		return err
	}
	d, err := b.native(dst)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.computeOpen {
		return ErrNoFrame
	}
	b.computeOps = append(b.computeOps, func() {
		copy(d.data[dstOffset:dstOffset+size], s.data[srcOffset:srcOffset+size])
	})
	b.stats.Copies++
	return nil
}

// EndComputeFrame runs the recorded work in order, matching queue submission semantics.
func (b *softwareRendererBackendImpl) EndComputeFrame() {
	b.mu.Lock()
	if !b.computeOpen {
		b.mu.Unlock()
		return
	}
	ops := b.computeOps
	b.computeOps = nil
	b.computeOpen = false
	b.stats.ComputeFrames++
	b.mu.Unlock()

	for _, op := range ops {
		op()
	}
}

func (b *softwareRendererBackendImpl) BeginFrame() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.frameOpen {
		return ErrFrameInProgress
	}
	b.frameOpen = true
	b.frameDraws = nil
	return nil
}

func (b *softwareRendererBackendImpl) DrawCallIndirect(p pipeline.Pipeline, meshProvider bind_group_provider.BindGroupProvider, indirectBuffer bind_group_provider.Buffer, bindGroups []bind_group_provider.BindGroupProvider) error {
	args, err := b.native(indirectBuffer)
	if err != nil {
		return err
	}
	if len(args.data) < 20 {
		return fmt.Errorf("%w: indirect buffer %q holds %d bytes, need 20", ErrOutOfBounds, args.label, len(args.data))
	}
	if meshProvider.VertexBuffer() == nil || meshProvider.IndexBuffer() == nil {
		return fmt.Errorf("mesh provider %q has no vertex or index buffer", meshProvider.Label())
	}

	labels := make([]string, len(bindGroups))
	for i, bg := range bindGroups {
		if bg.BindGroup() == nil {
			return fmt.Errorf("provider %q has no bind group; call InitBindGroup first", bg.Label())
		}
		labels[i] = bg.Label()
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.frameOpen {
		return ErrNoFrame
	}
	b.frameDraws = append(b.frameDraws, DrawRecord{
		PipelineKey:   p.PipelineKey(),
		Mesh:          meshProvider.Label(),
		BindGroups:    labels,
		IndexCount:    binary.LittleEndian.Uint32(args.data[0:4]),
		InstanceCount: int64(binary.LittleEndian.Uint32(args.data[4:8])),
		FirstIndex:    binary.LittleEndian.Uint32(args.data[8:12]),
		BaseVertex:    int32(binary.LittleEndian.Uint32(args.data[12:16])),
		FirstInstance: binary.LittleEndian.Uint32(args.data[16:20]),
	})
	return nil
}

func (b *softwareRendererBackendImpl) EndFrame() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.frameOpen {
		return
	}
	b.frameOpen = false
	b.lastFrame = b.frameDraws
	b.frameDraws = nil
	b.stats.DrawCalls = len(b.lastFrame)
}

func (b *softwareRendererBackendImpl) Present() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.stats.Frames++
}

func (b *softwareRendererBackendImpl) ReadBuffer(buf bind_group_provider.Buffer, offset, size uint64) ([]byte, error) {
	s, err := b.native(buf)
	if err != nil {
		return nil, err
	}
	out := make([]byte, size)
	copy(out, s.data[offset:offset+size])
	return out, nil
}

func (b *softwareRendererBackendImpl) Stats() FrameStats {
	b.mu.Lock()
	defer b.mu.Unlock()
	stats := b.stats
	stats.LiveBuffers = b.liveBuffers
	return stats
}

func (b *softwareRendererBackendImpl) LastFrame() []DrawRecord {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]DrawRecord(nil), b.lastFrame...)
}

func (b *softwareRendererBackendImpl) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.computeOps = nil
	b.frameDraws = nil
	b.lastFrame = nil
}

// native unwraps a buffer created by this backend.
func (b *softwareRendererBackendImpl) native(buf bind_group_provider.Buffer) (*softwareBuffer, error) {
	s, ok := buf.(*softwareBuffer)
	if !ok || s == nil || s.owner != b {
		return nil, ErrForeignBuffer
	}
	if s.Released() {
		return nil, fmt.Errorf("%w: %q", ErrBufferReleased, s.label)
	}
	return s, nil
}
