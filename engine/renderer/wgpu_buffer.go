package renderer

import (
	"sync"

	"github.com/Carmen-Shannon/echolocation/engine/renderer/bind_group_provider"
	"github.com/cogentcore/webgpu/wgpu"
)

// wgpuBuffer wraps a device buffer with the metadata the renderer validates against.
type wgpuBuffer struct {
	mu       *sync.Mutex
	owner    *wgpuRendererBackendImpl
	buffer   *wgpu.Buffer
	label    string
	size     uint64
	usage    bind_group_provider.BufferUsage
	released bool
}

var _ bind_group_provider.Buffer = &wgpuBuffer{}

func (b *wgpuBuffer) Label() string {
	return b.label
}

func (b *wgpuBuffer) Size() uint64 {
	return b.size
}

func (b *wgpuBuffer) Usage() bind_group_provider.BufferUsage {
	return b.usage
}

func (b *wgpuBuffer) Released() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.released
}

func (b *wgpuBuffer) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.released {
		return
	}
	b.released = true
	b.buffer.Release()
	b.buffer = nil
	b.owner.bufferReleased()
}

// toWGPUUsage maps renderer usage flags to wgpu usage flags.
func toWGPUUsage(u bind_group_provider.BufferUsage) wgpu.BufferUsage {
	var out wgpu.BufferUsage
	flags := []struct {
		from bind_group_provider.BufferUsage
		to   wgpu.BufferUsage
	}{
		{bind_group_provider.BufferUsageMapRead, wgpu.BufferUsageMapRead},
		{bind_group_provider.BufferUsageCopySrc, wgpu.BufferUsageCopySrc},
		{bind_group_provider.BufferUsageCopyDst, wgpu.BufferUsageCopyDst},
		{bind_group_provider.BufferUsageIndex, wgpu.BufferUsageIndex},
		{bind_group_provider.BufferUsageVertex, wgpu.BufferUsageVertex},
		{bind_group_provider.BufferUsageUniform, wgpu.BufferUsageUniform},
		{bind_group_provider.BufferUsageStorage, wgpu.BufferUsageStorage},
		{bind_group_provider.BufferUsageIndirect, wgpu.BufferUsageIndirect},
	}
	for _, f := range flags {
		if u.Has(f.from) {
			out |= f.to
		}
	}
	return out
}
