package renderer

import (
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/Carmen-Shannon/echolocation/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/echolocation/engine/renderer/pipeline"
	"github.com/cogentcore/webgpu/wgpu"
)

const offscreenFormat = wgpu.TextureFormatRGBA8Unorm

type wgpuRendererBackendImpl struct {
	mu     *sync.Mutex
	device *wgpu.Device
	queue  *wgpu.Queue

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	surface  *wgpu.Surface

	surfaceFormat        wgpu.TextureFormat
	depthTexture         *wgpu.Texture
	depthTextureView     *wgpu.TextureView
	offscreenTexture     *wgpu.Texture
	offscreenView        *wgpu.TextureView
	renderPassDescriptor *wgpu.RenderPassDescriptor

	presentMode wgpu.PresentMode // defaults to PresentModeImmediate (Uncapped)

	// Frame state for batched rendering across multiple draw calls
	frameEncoder *wgpu.CommandEncoder
	framePass    *wgpu.RenderPassEncoder
	frameSurface *wgpu.Texture
	frameView    *wgpu.TextureView
	frameDraws   []DrawRecord
	lastFrame    []DrawRecord

	// Compute frame state for batching all compute dispatches into a single GPU submission
	computeFrameEncoder *wgpu.CommandEncoder

	stats       FrameStats
	liveBuffers int
}

var _ rendererBackend = &wgpuRendererBackendImpl{}

// newWGPURendererBackend acquires an adapter and device. A nil surfaceDescriptor selects
// headless rendering into an offscreen texture.
func newWGPURendererBackend(surfaceDescriptor *wgpu.SurfaceDescriptor, forceFallbackAdapter bool) (*wgpuRendererBackendImpl, error) {
	runtime.LockOSThread()
	w := &wgpuRendererBackendImpl{
		mu:            &sync.Mutex{},
		instance:      wgpu.CreateInstance(nil),
		presentMode:   wgpu.PresentModeImmediate,
		surfaceFormat: offscreenFormat,
	}
	if surfaceDescriptor != nil {
		w.surface = w.instance.CreateSurface(surfaceDescriptor)
	}

	a, err := w.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: forceFallbackAdapter,
		CompatibleSurface:    w.surface,
	})
	if err != nil {
		w.Release()
		return nil, fmt.Errorf("failed to request adapter: %w", err)
	}
	w.adapter = a

	d, err := a.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Echolocation Device",
	})
	if err != nil {
		w.Release()
		return nil, fmt.Errorf("failed to request device: %w", err)
	}
	w.device = d
	w.queue = d.GetQueue()

	return w, nil
}

func (b *wgpuRendererBackendImpl) ConfigureSurface(width, height int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.releaseTargets()

	if b.surface != nil {
		capabilities := b.surface.GetCapabilities(b.adapter)
		b.surfaceFormat = capabilities.Formats[0]
		b.surface.Configure(b.adapter, b.device, &wgpu.SurfaceConfiguration{
			Usage:       wgpu.TextureUsageRenderAttachment,
			Format:      b.surfaceFormat,
			Width:       uint32(width),
			Height:      uint32(height),
			PresentMode: b.presentMode,
			AlphaMode:   capabilities.AlphaModes[0],
		})
	} else {
		tex, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
			Label: "Offscreen Color Texture",
			Size: wgpu.Extent3D{
				Width:              uint32(width),
				Height:             uint32(height),
				DepthOrArrayLayers: 1,
			},
			MipLevelCount: 1,
			SampleCount:   1,
			Dimension:     wgpu.TextureDimension2D,
			Format:        offscreenFormat,
			Usage:         wgpu.TextureUsageRenderAttachment | wgpu.TextureUsageCopySrc,
		})
		if err != nil {
			logger.Errorf("failed to create offscreen target: %v", err)
			return
		}
		b.offscreenTexture = tex
		b.offscreenView, err = tex.CreateView(nil)
		if err != nil {
			logger.Errorf("failed to create offscreen view: %v", err)
			return
		}
	}

	depthTexture, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: "Depth Texture",
		Size: wgpu.Extent3D{
			Width:              uint32(width),
			Height:             uint32(height),
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        wgpu.TextureFormatDepth24Plus,
		Usage:         wgpu.TextureUsageRenderAttachment,
	})
	if err != nil {
		logger.Errorf("failed to create depth texture: %v", err)
		return
	}
	b.depthTexture = depthTexture
	b.depthTextureView, err = depthTexture.CreateView(nil)
	if err != nil {
		logger.Errorf("failed to create depth view: %v", err)
		return
	}

	// The color View is set per frame to the swapchain or offscreen view.
	b.renderPassDescriptor = &wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				LoadOp:  wgpu.LoadOpClear,
				StoreOp: wgpu.StoreOpStore,
				ClearValue: wgpu.Color{
					R: 0.0, G: 0.0, B: 0.0, A: 1.0,
				},
			},
		},
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:            b.depthTextureView,
			DepthLoadOp:     wgpu.LoadOpClear,
			DepthStoreOp:    wgpu.StoreOpDiscard,
			DepthClearValue: 1.0,
		},
	}
}

// releaseTargets frees size-dependent textures. Caller must hold the mutex.
func (b *wgpuRendererBackendImpl) releaseTargets() {
	if b.depthTextureView != nil {
		b.depthTextureView.Release()
		b.depthTextureView = nil
	}
	if b.depthTexture != nil {
		b.depthTexture.Release()
		b.depthTexture = nil
	}
	if b.offscreenView != nil {
		b.offscreenView.Release()
		b.offscreenView = nil
	}
	if b.offscreenTexture != nil {
		b.offscreenTexture.Release()
		b.offscreenTexture = nil
	}
}

func (b *wgpuRendererBackendImpl) SetPresentMode(mode PresentMode) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch mode {
	case PresentModeVSync:
		b.presentMode = wgpu.PresentModeFifo
	case PresentModeUncapped:
		fallthrough
	default:
		b.presentMode = wgpu.PresentModeImmediate
	}
}

func (b *wgpuRendererBackendImpl) RegisterRenderPipeline(p pipeline.Pipeline) error {
	if p.VertexShader() == nil || p.FragmentShader() == nil {
		return errors.New("both vertex and fragment shaders must be set to create a render pipeline")
	}

	vertexShader := p.VertexShader()
	fragmentShader := p.FragmentShader()

	vs, err := b.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: vertexShader.Label,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: vertexShader.Code,
		},
	})
	if err != nil {
		return err
	}
	defer vs.Release()

	fs := vs
	if fragmentShader.Code != vertexShader.Code {
		fs, err = b.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
			Label: fragmentShader.Label,
			WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
				Code: fragmentShader.Code,
			},
		})
		if err != nil {
			return err
		}
		defer fs.Release()
	}

	colorTarget := wgpu.ColorTargetState{
		Format:    b.surfaceFormat,
		WriteMask: p.WriteMask(),
	}
	if p.BlendEnabled() {
		colorTarget.Blend = p.BlendState()
	}

	depthCompare := wgpu.CompareFunctionLess
	if !p.DepthTestEnabled() {
		depthCompare = wgpu.CompareFunctionAlways
	}

	// Layout is left nil so the bind group layouts are derived from the WGSL.
	created, err := b.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label: p.PipelineKey() + " Render Pipeline",
		Vertex: wgpu.VertexState{
			Module:     vs,
			EntryPoint: vertexShader.EntryPoint,
			Buffers:    p.VertexLayouts(),
		},
		Fragment: &wgpu.FragmentState{
			Module:     fs,
			EntryPoint: fragmentShader.EntryPoint,
			Targets:    []wgpu.ColorTargetState{colorTarget},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  p.Topology(),
			FrontFace: p.FrontFace(),
			CullMode:  p.CullMode(),
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
		DepthStencil: &wgpu.DepthStencilState{
			Format:            wgpu.TextureFormatDepth24Plus,
			DepthWriteEnabled: p.DepthWriteEnabled(),
			DepthCompare:      depthCompare,
			StencilFront: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
			StencilBack: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
		},
	})
	if err != nil {
		return err
	}

	p.SetRenderPipeline(created)
	return nil
}

func (b *wgpuRendererBackendImpl) RegisterComputePipeline(p pipeline.Pipeline) error {
	if p.ComputeShader() == nil {
		return errors.New("compute shader must be set to create a compute pipeline")
	}

	computeShader := p.ComputeShader()
	s, err := b.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: computeShader.Label,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: computeShader.Code,
		},
	})
	if err != nil {
		return err
	}
	defer s.Release()

	created, err := b.device.CreateComputePipeline(&wgpu.ComputePipelineDescriptor{
		Label: p.PipelineKey() + " Compute Pipeline",
		Compute: wgpu.ProgrammableStageDescriptor{
			Module:     s,
			EntryPoint: computeShader.EntryPoint,
		},
	})
	if err != nil {
		return err
	}

	p.SetComputePipeline(created)
	return nil
}

func (b *wgpuRendererBackendImpl) CreateBuffer(desc bind_group_provider.BufferDescriptor) (bind_group_provider.Buffer, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.createBuffer(desc)
}

// createBuffer allocates a device buffer. Caller must hold the mutex.
func (b *wgpuRendererBackendImpl) createBuffer(desc bind_group_provider.BufferDescriptor) (*wgpuBuffer, error) {
	buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: desc.Label,
		Size:  desc.Size,
		Usage: toWGPUUsage(desc.Usage),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create buffer %q: %w", desc.Label, err)
	}
	b.liveBuffers++
	return &wgpuBuffer{
		mu:     &sync.Mutex{},
		owner:  b,
		buffer: buf,
		label:  desc.Label,
		size:   desc.Size,
		usage:  desc.Usage,
	}, nil
}

func (b *wgpuRendererBackendImpl) bufferReleased() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.liveBuffers--
}

func (b *wgpuRendererBackendImpl) InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData, indexData []byte, indexCount int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(vertexData) > 0 {
		buf, err := b.createBuffer(bind_group_provider.BufferDescriptor{
			Label: provider.Label() + " Vertex Buffer",
			Size:  uint64(len(vertexData)),
			Usage: bind_group_provider.BufferUsageVertex | bind_group_provider.BufferUsageCopyDst,
		})
		if err != nil {
			return err
		}
		b.queue.WriteBuffer(buf.buffer, 0, vertexData)
		provider.SetVertexBuffer(buf)
	}

	if len(indexData) > 0 {
		buf, err := b.createBuffer(bind_group_provider.BufferDescriptor{
			Label: provider.Label() + " Index Buffer",
			Size:  uint64(len(indexData)),
			Usage: bind_group_provider.BufferUsageIndex | bind_group_provider.BufferUsageCopyDst,
		})
		if err != nil {
			return err
		}
		b.queue.WriteBuffer(buf.buffer, 0, indexData)
		provider.SetIndexBuffer(buf)
	}

	provider.SetIndexCount(indexCount)
	return nil
}

func (b *wgpuRendererBackendImpl) InitBindGroup(provider bind_group_provider.BindGroupProvider, p pipeline.Pipeline) error {
	var layout *wgpu.BindGroupLayout
	switch native := p.Pipeline().(type) {
	case *wgpu.ComputePipeline:
		layout = native.GetBindGroupLayout(0)
	case *wgpu.RenderPipeline:
		layout = native.GetBindGroupLayout(0)
	default:
		return fmt.Errorf("pipeline %q has not been registered with the wgpu backend", p.PipelineKey())
	}
	defer layout.Release()

	bindings := provider.Bindings()
	entries := make([]wgpu.BindGroupEntry, 0, len(bindings))
	for _, binding := range bindings {
		buf, err := b.native(provider.Buffer(binding))
		if err != nil {
			return fmt.Errorf("provider %q binding %d: %w", provider.Label(), binding, err)
		}
		entries = append(entries, wgpu.BindGroupEntry{
			Binding: uint32(binding),
			Buffer:  buf.buffer,
			Offset:  0,
			Size:    wgpu.WholeSize,
		})
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	bindGroup, err := b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   provider.Label() + " Bind Group",
		Layout:  layout,
		Entries: entries,
	})
	if err != nil {
		return err
	}
	if old := provider.BindGroup(); old != nil {
		old.Release()
	}
	provider.SetBindGroup(bindGroup)
	return nil
}

func (b *wgpuRendererBackendImpl) WriteBuffers(writes []bind_group_provider.BufferWrite) {
	for _, w := range writes {
		buf, err := b.native(w.Buffer)
		if err != nil {
			logger.Errorf("skipping write: %v", err)
			continue
		}
		if !checkRange(buf.size, w.Offset, uint64(len(w.Data))) {
			logger.Errorf("skipping write to %q: %d bytes at %d out of bounds", buf.label, len(w.Data), w.Offset)
			continue
		}
		b.mu.Lock()
		b.queue.WriteBuffer(buf.buffer, w.Offset, w.Data)
		b.mu.Unlock()
	}
}

func (b *wgpuRendererBackendImpl) BeginComputeFrame() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.computeFrameEncoder != nil {
		return ErrFrameInProgress
	}
	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		return err
	}
	b.computeFrameEncoder = encoder
	return nil
}

func (b *wgpuRendererBackendImpl) DispatchCompute(
	p pipeline.Pipeline,
	computeProvider bind_group_provider.BindGroupProvider,
	workGroupCount [3]uint32,
) error {
	computePipeline, ok := p.Pipeline().(*wgpu.ComputePipeline)
	if !ok {
		return fmt.Errorf("pipeline %q is not a registered compute pipeline", p.PipelineKey())
	}
	bindGroup, ok := computeProvider.BindGroup().(*wgpu.BindGroup)
	if !ok {
		return fmt.Errorf("provider %q has no bind group; call InitBindGroup first", computeProvider.Label())
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.computeFrameEncoder == nil {
		return ErrNoFrame
	}

	pass := b.computeFrameEncoder.BeginComputePass(nil)
	pass.SetPipeline(computePipeline)
	pass.SetBindGroup(0, bindGroup, nil)
	pass.DispatchWorkgroups(workGroupCount[0], workGroupCount[1], workGroupCount[2])
	pass.End()
	pass.Release()
	b.stats.Dispatches++
	return nil
}

func (b *wgpuRendererBackendImpl) CopyBufferToBuffer(src bind_group_provider.Buffer, srcOffset uint64, dst bind_group_provider.Buffer, dstOffset uint64, size uint64) error {
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
	if b.computeFrameEncoder == nil {
		return ErrNoFrame
	}
	b.computeFrameEncoder.CopyBufferToBuffer(s.buffer, srcOffset, d.buffer, dstOffset, size)
	b.stats.Copies++
	return nil
}

func (b *wgpuRendererBackendImpl) EndComputeFrame() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.computeFrameEncoder == nil {
		return
	}

	commandBuffer, err := b.computeFrameEncoder.Finish(nil)
	if err != nil {
		logger.Errorf("failed to finish compute frame: %v", err)
		b.computeFrameEncoder.Release()
		b.computeFrameEncoder = nil
		return
	}

	b.queue.Submit(commandBuffer)
	commandBuffer.Release()
	b.computeFrameEncoder.Release()
	b.computeFrameEncoder = nil
	b.stats.ComputeFrames++
}

func (b *wgpuRendererBackendImpl) BeginFrame() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	// A surface texture still held from the previous frame must be presented first.
	if b.frameSurface != nil || b.frameEncoder != nil {
		return ErrFrameInProgress
	}
	if b.renderPassDescriptor == nil {
		return errors.New("render target not configured")
	}

	var view *wgpu.TextureView
	if b.surface != nil {
		surfaceTexture, err := b.surface.GetCurrentTexture()
		if err != nil {
			return err
		}
		view, err = surfaceTexture.CreateView(nil)
		if err != nil {
			surfaceTexture.Release()
			return err
		}
		b.frameSurface = surfaceTexture
		b.frameView = view
	} else {
		view = b.offscreenView
	}

	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		b.releaseFrameSurface()
		return err
	}

	b.renderPassDescriptor.ColorAttachments[0].View = view
	b.frameEncoder = encoder
	b.framePass = encoder.BeginRenderPass(b.renderPassDescriptor)
	b.frameDraws = nil
	return nil
}

func (b *wgpuRendererBackendImpl) DrawCallIndirect(
	p pipeline.Pipeline,
	meshProvider bind_group_provider.BindGroupProvider,
	indirectBuffer bind_group_provider.Buffer,
	bindGroups []bind_group_provider.BindGroupProvider,
) error {
	renderPipeline, ok := p.Pipeline().(*wgpu.RenderPipeline)
	if !ok {
		return fmt.Errorf("pipeline %q is not a registered render pipeline", p.PipelineKey())
	}
	args, err := b.native(indirectBuffer)
	if err != nil {
		return err
	}
	vertices, err := b.native(meshProvider.VertexBuffer())
	if err != nil {
		return fmt.Errorf("mesh %q vertex buffer: %w", meshProvider.Label(), err)
	}
	indices, err := b.native(meshProvider.IndexBuffer())
	if err != nil {
		return fmt.Errorf("mesh %q index buffer: %w", meshProvider.Label(), err)
	}

	groups := make([]*wgpu.BindGroup, len(bindGroups))
	labels := make([]string, len(bindGroups))
	for i, bg := range bindGroups {
		native, ok := bg.BindGroup().(*wgpu.BindGroup)
		if !ok {
			return fmt.Errorf("provider %q has no bind group; call InitBindGroup first", bg.Label())
		}
		groups[i] = native
		labels[i] = bg.Label()
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.framePass == nil {
		return ErrNoFrame
	}

	b.framePass.SetPipeline(renderPipeline)
	for i, g := range groups {
		b.framePass.SetBindGroup(uint32(i), g, nil)
	}
	b.framePass.SetVertexBuffer(0, vertices.buffer, 0, wgpu.WholeSize)
	b.framePass.SetIndexBuffer(indices.buffer, wgpu.IndexFormatUint32, 0, wgpu.WholeSize)
	b.framePass.DrawIndexedIndirect(args.buffer, 0)

	b.frameDraws = append(b.frameDraws, DrawRecord{
		PipelineKey:   p.PipelineKey(),
		Mesh:          meshProvider.Label(),
		BindGroups:    labels,
		IndexCount:    uint32(meshProvider.IndexCount()),
		InstanceCount: -1,
	})
	return nil
}

func (b *wgpuRendererBackendImpl) EndFrame() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.framePass == nil {
		return
	}
	b.framePass.End()
	b.framePass.Release()
	b.framePass = nil

	commandBuffer, err := b.frameEncoder.Finish(nil)
	if err != nil {
		logger.Errorf("failed to finish render frame: %v", err)
		b.frameEncoder.Release()
		b.frameEncoder = nil
		b.releaseFrameSurface()
		return
	}

	b.queue.Submit(commandBuffer)

	commandBuffer.Release()
	b.frameEncoder.Release()
	b.frameEncoder = nil
	b.lastFrame = b.frameDraws
	b.frameDraws = nil
	b.stats.DrawCalls = len(b.lastFrame)
}

func (b *wgpuRendererBackendImpl) Present() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.stats.Frames++
	// Headless frames have nothing to present.
	if b.frameSurface == nil {
		return
	}
	b.surface.Present()
	b.releaseFrameSurface()
}

// releaseFrameSurface drops the acquired swapchain image. Caller must hold the mutex.
func (b *wgpuRendererBackendImpl) releaseFrameSurface() {
	if b.frameView != nil {
		b.frameView.Release()
		b.frameView = nil
	}
	if b.frameSurface != nil {
		b.frameSurface.Release()
		b.frameSurface = nil
	}
}

// ReadBuffer copies the range into a mappable staging buffer and blocks until the map completes.
func (b *wgpuRendererBackendImpl) ReadBuffer(buf bind_group_provider.Buffer, offset, size uint64) ([]byte, error) {
	src, err := b.native(buf)
	if err != nil {
		return nil, err
	}
	if !src.usage.Has(bind_group_provider.BufferUsageCopySrc) {
		return nil, fmt.Errorf("%w: %q is not CopySrc", ErrBufferUsage, src.label)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	// Copies must be 4-byte aligned, so widen the window and trim afterwards.
	alignedOffset := offset &^ 3
	alignedSize := (offset + size - alignedOffset + 3) &^ 3

	staging, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: src.label + " Staging Read",
		Size:  alignedSize,
		Usage: wgpu.BufferUsageMapRead | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create staging buffer: %w", err)
	}
	defer staging.Release()

	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create command encoder: %w", err)
	}
	encoder.CopyBufferToBuffer(src.buffer, alignedOffset, staging, 0, alignedSize)
	commands, err := encoder.Finish(nil)
	encoder.Release()
	if err != nil {
		return nil, fmt.Errorf("failed to finish encoder: %w", err)
	}
	b.queue.Submit(commands)
	commands.Release()

	done := make(chan error, 1)
	err = staging.MapAsync(wgpu.MapModeRead, 0, alignedSize, func(status wgpu.BufferMapAsyncStatus) {
		if status != wgpu.BufferMapAsyncStatusSuccess {
			done <- fmt.Errorf("failed to map buffer: %v", status)
		} else {
			done <- nil
		}
	})
	if err != nil {
		return nil, err
	}

	b.device.Poll(true, nil)
	if err := <-done; err != nil {
		return nil, err
	}

	mapped := staging.GetMappedRange(0, uint(alignedSize))
	start := offset - alignedOffset
	result := make([]byte, size)
	copy(result, mapped[start:start+size])
	staging.Unmap()

	return result, nil
}

func (b *wgpuRendererBackendImpl) Stats() FrameStats {
	b.mu.Lock()
	defer b.mu.Unlock()
	stats := b.stats
	stats.LiveBuffers = b.liveBuffers
	return stats
}

func (b *wgpuRendererBackendImpl) LastFrame() []DrawRecord {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]DrawRecord(nil), b.lastFrame...)
}

func (b *wgpuRendererBackendImpl) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.computeFrameEncoder != nil {
		b.computeFrameEncoder.Release()
		b.computeFrameEncoder = nil
	}
	if b.framePass != nil {
		b.framePass.Release()
		b.framePass = nil
	}
	if b.frameEncoder != nil {
		b.frameEncoder.Release()
		b.frameEncoder = nil
	}
	b.releaseFrameSurface()
	b.releaseTargets()

	if b.queue != nil {
		b.queue.Release()
		b.queue = nil
	}
	if b.device != nil {
		b.device.Release()
		b.device = nil
	}
	if b.adapter != nil {
		b.adapter.Release()
		b.adapter = nil
	}
	if b.surface != nil {
		b.surface.Release()
		b.surface = nil
	}
	if b.instance != nil {
		b.instance.Release()
		b.instance = nil
	}
}

// native unwraps a buffer created by this backend.
func (b *wgpuRendererBackendImpl) native(buf bind_group_provider.Buffer) (*wgpuBuffer, error) {
	w, ok := buf.(*wgpuBuffer)
	if !ok || w == nil || w.owner != b {
		return nil, ErrForeignBuffer
	}
	if w.Released() {
		return nil, fmt.Errorf("%w: %q", ErrBufferReleased, w.label)
	}
	return w, nil
}
