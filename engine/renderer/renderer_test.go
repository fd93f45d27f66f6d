package renderer

import (
	"encoding/binary"
	"errors"
	"strings"
	"testing"

	"github.com/Carmen-Shannon/echolocation/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/echolocation/engine/renderer/pipeline"
)

const (
	testComputeKey = "fill"
	testRenderKey  = "draw"

	testComputeShader = `
@group(0) @binding(0) var<storage, read_write> values: array<u32>;

@compute @workgroup_size(4)
fn main(@builtin(global_invocation_id) id: vec3<u32>) {
    values[id.x] = id.x + 1u;
}
`

	testRenderShader = `
@group(0) @binding(1) var<storage, read> points: array<vec4<f32>>;

@vertex
fn vs_main(@builtin(instance_index) i: u32) -> @builtin(position) vec4<f32> {
    return points[i];
}

@fragment
fn fs_main() -> @location(0) vec4<f32> {
    return vec4<f32>(1.0);
}
`
)

// fillKernel writes invocationID+1 into every u32 of binding 0 that it covers.
func fillKernel(bindings map[int][]byte, id uint32) {
	out := bindings[0]
	if int(id)*4+4 > len(out) {
		return
	}
	binary.LittleEndian.PutUint32(out[id*4:], id+1)
}

func newTestRenderer(t *testing.T) Renderer {
	t.Helper()
	r, err := NewRenderer(BackendTypeSoftware, WithPipelines(
		pipeline.NewPipeline(testComputeKey, pipeline.PipelineTypeCompute,
			pipeline.WithComputeShader(pipeline.ShaderSource{Label: "fill", Code: testComputeShader, EntryPoint: "main"}),
			pipeline.WithComputeKernel(fillKernel),
			pipeline.WithWorkgroupSize(4),
		),
		pipeline.NewPipeline(testRenderKey, pipeline.PipelineTypeRender,
			pipeline.WithVertexShader(pipeline.ShaderSource{Label: "draw", Code: testRenderShader, EntryPoint: "vs_main"}),
			pipeline.WithFragmentShader(pipeline.ShaderSource{Label: "draw", Code: testRenderShader, EntryPoint: "fs_main"}),
		),
	))
	if err != nil {
		t.Fatalf("unexpected error creating renderer: %v", err)
	}
	t.Cleanup(r.Release)
	return r
}

func mustBuffer(t *testing.T, r Renderer, label string, size uint64, usage bind_group_provider.BufferUsage) bind_group_provider.Buffer {
	t.Helper()
	buf, err := r.CreateBuffer(bind_group_provider.BufferDescriptor{Label: label, Size: size, Usage: usage})
	if err != nil {
		t.Fatalf("unexpected error creating buffer %q: %v", label, err)
	}
	return buf
}

func TestDispatchThenCopyObservesDispatch(t *testing.T) {
	r := newTestRenderer(t)

	storage := mustBuffer(t, r, "storage", 32, bind_group_provider.BufferUsageStorage|bind_group_provider.BufferUsageCopySrc)
	target := mustBuffer(t, r, "target", 8, bind_group_provider.BufferUsageCopyDst|bind_group_provider.BufferUsageCopySrc)
	provider := bind_group_provider.NewBindGroupProvider("fill", bind_group_provider.WithBuffer(0, storage))
	if err := r.InitBindGroup(provider, testComputeKey); err != nil {
		t.Fatalf("unexpected error building bind group: %v", err)
	}

	if err := r.BeginComputeFrame(); err != nil {
		t.Fatalf("unexpected error opening compute frame: %v", err)
	}
	if err := r.DispatchCompute(testComputeKey, provider, [3]uint32{2, 1, 1}); err != nil {
		t.Fatalf("unexpected dispatch error: %v", err)
	}
	if err := r.CopyBufferToBuffer(storage, 8, target, 0, 8); err != nil {
		t.Fatalf("unexpected copy error: %v", err)
	}
	r.EndComputeFrame()

	got, err := r.ReadBuffer(target, 0, 8)
	if err != nil {
		t.Fatalf("unexpected read error: %v", err)
	}
	if a, b := binary.LittleEndian.Uint32(got[0:]), binary.LittleEndian.Uint32(got[4:]); a != 3 || b != 4 {
		t.Fatalf("expected copied values [3 4]; got [%d %d]", a, b)
	}

	stats := r.Stats()
	if stats.Dispatches != 1 || stats.Copies != 1 || stats.ComputeFrames != 1 {
		t.Fatalf("unexpected stats %+v", stats)
	}
}

func TestWriteBuffersOrderedBeforeDispatch(t *testing.T) {
	r := newTestRenderer(t)

	storage := mustBuffer(t, r, "storage", 16, bind_group_provider.BufferUsageStorage|bind_group_provider.BufferUsageCopyDst|bind_group_provider.BufferUsageCopySrc)
	r.WriteBuffers([]bind_group_provider.BufferWrite{{Buffer: storage, Offset: 12, Data: []byte{9, 9, 9, 9}}})

	got, err := r.ReadBuffer(storage, 12, 4)
	if err != nil {
		t.Fatalf("unexpected read error: %v", err)
	}
	if binary.LittleEndian.Uint32(got) != 0x09090909 {
		t.Fatalf("expected written bytes to be visible; got %v", got)
	}

	// Writes to a buffer without CopyDst are dropped.
	readOnly := mustBuffer(t, r, "read-only", 4, bind_group_provider.BufferUsageStorage)
	r.WriteBuffers([]bind_group_provider.BufferWrite{{Buffer: readOnly, Data: []byte{1, 2, 3, 4}}})
	got, _ = r.ReadBuffer(readOnly, 0, 4)
	if binary.LittleEndian.Uint32(got) != 0 {
		t.Fatalf("expected write without CopyDst to be skipped; got %v", got)
	}
}

func TestDrawCallIndirectRecordsArguments(t *testing.T) {
	r := newTestRenderer(t)

	mesh := bind_group_provider.NewBindGroupProvider("quad")
	if err := r.InitMeshBuffers(mesh, make([]byte, 48), make([]byte, 24), 6); err != nil {
		t.Fatalf("unexpected mesh error: %v", err)
	}
	points := mustBuffer(t, r, "points", 64, bind_group_provider.BufferUsageStorage)
	group := bind_group_provider.NewBindGroupProvider("points", bind_group_provider.WithBuffer(1, points))
	if err := r.InitBindGroup(group, testRenderKey); err != nil {
		t.Fatalf("unexpected bind group error: %v", err)
	}

	args := mustBuffer(t, r, "args", 20, bind_group_provider.BufferUsageIndirect|bind_group_provider.BufferUsageCopyDst)
	raw := make([]byte, 20)
	binary.LittleEndian.PutUint32(raw[0:], 6)
	binary.LittleEndian.PutUint32(raw[4:], 17)
	r.WriteBuffers([]bind_group_provider.BufferWrite{{Buffer: args, Data: raw}})

	if err := r.DrawCallIndirect(testRenderKey, mesh, args, []bind_group_provider.BindGroupProvider{group}); !errors.Is(err, ErrNoFrame) {
		t.Fatalf("expected ErrNoFrame outside a frame; got %v", err)
	}

	if err := r.BeginFrame(); err != nil {
		t.Fatalf("unexpected error opening frame: %v", err)
	}
	if err := r.DrawCallIndirect(testRenderKey, mesh, args, []bind_group_provider.BindGroupProvider{group}); err != nil {
		t.Fatalf("unexpected draw error: %v", err)
	}
	r.EndFrame()
	r.Present()

	frame := r.LastFrame()
	if len(frame) != 1 {
		t.Fatalf("expected 1 draw; got %d", len(frame))
	}
	if frame[0].IndexCount != 6 || frame[0].InstanceCount != 17 || frame[0].Mesh != "quad" {
		t.Fatalf("unexpected draw record %+v", frame[0])
	}
	if stats := r.Stats(); stats.Frames != 1 || stats.DrawCalls != 1 {
		t.Fatalf("unexpected stats %+v", stats)
	}
}

func TestRendererErrors(t *testing.T) {
	r := newTestRenderer(t)

	src := mustBuffer(t, r, "src", 16, bind_group_provider.BufferUsageCopySrc)
	dst := mustBuffer(t, r, "dst", 16, bind_group_provider.BufferUsageCopyDst)
	noIndirect := mustBuffer(t, r, "plain", 20, bind_group_provider.BufferUsageStorage)
	mesh := bind_group_provider.NewBindGroupProvider("mesh")

	specs := []struct {
		name string
		run  func() error
		want error
	}{
		{"unknown pipeline dispatch", func() error {
			return r.DispatchCompute("missing", mesh, [3]uint32{1, 1, 1})
		}, ErrUnknownPipeline},
		{"unknown pipeline bind group", func() error {
			return r.InitBindGroup(mesh, "missing")
		}, ErrUnknownPipeline},
		{"copy from non CopySrc", func() error {
			return r.CopyBufferToBuffer(dst, 0, dst, 0, 4)
		}, ErrBufferUsage},
		{"copy out of bounds", func() error {
			return r.CopyBufferToBuffer(src, 8, dst, 0, 12)
		}, ErrOutOfBounds},
		{"copy outside compute frame", func() error {
			return r.CopyBufferToBuffer(src, 0, dst, 0, 4)
		}, ErrNoFrame},
		{"draw with non indirect args", func() error {
			return r.DrawCallIndirect(testRenderKey, mesh, noIndirect, nil)
		}, ErrBufferUsage},
		{"read out of bounds", func() error {
			_, err := r.ReadBuffer(src, 12, 8)
			return err
		}, ErrOutOfBounds},
		{"bind group missing declared binding", func() error {
			return r.InitBindGroup(mesh, testComputeKey)
		}, ErrMissingBinding},
		{"bind group buffer smaller than element", func() error {
			tiny := mustBuffer(t, r, "tiny", 8, bind_group_provider.BufferUsageStorage)
			return r.InitBindGroup(bind_group_provider.NewBindGroupProvider("tiny", bind_group_provider.WithBuffer(1, tiny)), testRenderKey)
		}, ErrBufferTooSmall},
	}

	for index, spec := range specs {
		if err := spec.run(); !errors.Is(err, spec.want) {
			t.Fatalf("[spec %d] %s: expected %v; got %v", index, spec.name, spec.want, err)
		}
	}

	if _, err := r.CreateBuffer(bind_group_provider.BufferDescriptor{Label: "empty"}); err == nil {
		t.Fatal("expected error creating a zero-size buffer")
	}
}

func TestFramesCannotNest(t *testing.T) {
	r := newTestRenderer(t)

	if err := r.BeginComputeFrame(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := r.BeginComputeFrame(); !errors.Is(err, ErrFrameInProgress) {
		t.Fatalf("expected ErrFrameInProgress; got %v", err)
	}
	r.EndComputeFrame()
	r.EndComputeFrame()

	if err := r.BeginFrame(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := r.BeginFrame(); !errors.Is(err, ErrFrameInProgress) {
		t.Fatalf("expected ErrFrameInProgress; got %v", err)
	}
	r.EndFrame()
}

func TestBufferReleaseAccounting(t *testing.T) {
	r := newTestRenderer(t)

	a := mustBuffer(t, r, "a", 4, bind_group_provider.BufferUsageStorage|bind_group_provider.BufferUsageCopySrc)
	b := mustBuffer(t, r, "b", 4, bind_group_provider.BufferUsageStorage)
	provider := bind_group_provider.NewBindGroupProvider("pair",
		bind_group_provider.WithBuffer(0, a),
		bind_group_provider.WithBuffer(1, b),
	)
	if live := r.Stats().LiveBuffers; live != 2 {
		t.Fatalf("expected 2 live buffers; got %d", live)
	}

	a.Release()
	provider.Release()
	provider.Release()
	if live := r.Stats().LiveBuffers; live != 0 {
		t.Fatalf("expected 0 live buffers after release; got %d", live)
	}
	if _, err := r.ReadBuffer(a, 0, 4); !errors.Is(err, ErrBufferReleased) {
		t.Fatalf("expected ErrBufferReleased; got %v", err)
	}

	r.Release()
	r.Release()
	if _, err := r.CreateBuffer(bind_group_provider.BufferDescriptor{Label: "late", Size: 4}); !errors.Is(err, ErrReleased) {
		t.Fatalf("expected ErrReleased after release; got %v", err)
	}
}

func TestWorkgroupSizeMismatch(t *testing.T) {
	_, err := NewRenderer(BackendTypeSoftware, WithPipelines(
		pipeline.NewPipeline("mismatch", pipeline.PipelineTypeCompute,
			pipeline.WithComputeShader(pipeline.ShaderSource{Label: "mismatch", Code: testComputeShader, EntryPoint: "main"}),
			pipeline.WithComputeKernel(fillKernel),
			pipeline.WithWorkgroupSize(8),
		),
	))
	if err == nil || !strings.Contains(err.Error(), "workgroup size 4") {
		t.Fatalf("expected a workgroup size mismatch error; got %v", err)
	}
}
