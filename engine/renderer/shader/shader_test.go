package shader

import (
	"strings"
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
)

const testTypes = `struct Sample {
    position: vec3<f32>,
    weight: f32,
    normal: vec3<f32>,
    flags: u32,
    color: vec4<f32>,
    id: u32,
}`

const testShader = `//@echo:include sample
struct SampleList {
    count: atomic<u32>,
    samples: array<Sample>,
}

// inputs
//@echo:group 0 1 storage_read samples_in array<sample>
//@echo:group 0 0 storage_uniform settings settings
//@echo:group 0 2 storage_read_write samples_out sample_list

struct Settings {
    view_proj: mat4x4<f32>,
    scale: f32,
}

@compute @workgroup_size(64)
fn cs_main(@builtin(global_invocation_id) id: vec3<u32>) {
}`

func newTestPreProcessor() PreProcessor {
	return NewPreProcessor(
		WithStruct("sample", testTypes, "Sample"),
		WithStruct("sample_list", "", "SampleList"),
		WithStruct("settings", "", "Settings"),
	)
}

func TestPreProcessorProcess(t *testing.T) {
	pp := newTestPreProcessor()
	out, err := pp.Process(testShader)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, exp := range []string{
		"struct Sample {",
		"@group(0) @binding(1) var<storage, read> samples_in: array<Sample>;",
		"@group(0) @binding(0) var<uniform> settings: Settings;",
		"@group(0) @binding(2) var<storage, read_write> samples_out: SampleList;",
	} {
		if !strings.Contains(out, exp) {
			t.Fatalf("expected output to contain %q:\n%s", exp, out)
		}
	}
	if strings.Contains(out, annotationPrefix) {
		t.Fatalf("expected every annotation to be replaced:\n%s", out)
	}

	decls := pp.Declarations()
	if len(decls) != 3 {
		t.Fatalf("expected 3 declarations, got %d", len(decls))
	}
	if *decls[0].Binding != 1 || decls[0].Args[1] != "samples_in" || decls[0].Line != 8 {
		t.Fatalf("unexpected first declaration %+v", decls[0])
	}

	// Declarations reset between calls.
	if _, err := pp.Process("fn f() {}"); err != nil || len(pp.Declarations()) != 0 {
		t.Fatalf("expected no declarations after a plain source, got %d (%v)", len(pp.Declarations()), err)
	}
}

func TestPreProcessorErrors(t *testing.T) {
	specs := []struct {
		source string
		expErr string
	}{
		{"//@echo:", "empty @echo annotation"},
		{"//@echo:include", "exactly one argument"},
		{"//@echo:include nothing", `unknown @echo:include argument "nothing"`},
		{"//@echo:include settings", `unknown @echo:include argument "settings"`},
		{"//@echo:group 0 x storage_read a sample", "invalid binding number"},
		{"//@echo:group 0 0 storage_write a sample", "unknown address space"},
		{"//@echo:group 0 0 storage_read a array<nothing>", `unknown struct type "nothing"`},
		{"//@echo:group 0 0 storage_read a", "exactly five arguments"},
		{"//@echo:bind 0 0", "unknown @echo annotation type"},
	}

	for specIndex, spec := range specs {
		_, err := newTestPreProcessor().Process("fn f() {}\n" + spec.source)
		if err == nil || !strings.Contains(err.Error(), spec.expErr) {
			t.Fatalf("[spec %d] expected error containing %q, got %v", specIndex, spec.expErr, err)
		}
		if !strings.Contains(err.Error(), "line 2") {
			t.Fatalf("[spec %d] expected the line number in %q", specIndex, err)
		}
	}
}

func TestMustProcessPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected a panic for an unknown include")
		}
	}()
	MustProcess("//@echo:include nothing")
}

func TestReflect(t *testing.T) {
	r := Reflect(MustProcess(testShader,
		WithStruct("sample", testTypes, "Sample"),
		WithStruct("sample_list", "", "SampleList"),
		WithStruct("settings", "", "Settings"),
	))

	structSpecs := []struct {
		name     string
		expSize  uint64
		expAlign uint64
	}{
		{"Sample", 64, 16},
		{"SampleList", 16, 16},
		{"Settings", 80, 16},
	}
	for specIndex, spec := range structSpecs {
		layout, ok := r.Structs[spec.name]
		if !ok {
			t.Fatalf("[spec %d] expected struct %q to be reflected", specIndex, spec.name)
		}
		if layout.Size != spec.expSize || layout.Align != spec.expAlign {
			t.Fatalf("[spec %d] expected %s to be %d bytes aligned to %d, got %+v", specIndex, spec.name, spec.expSize, spec.expAlign, layout)
		}
	}

	group := r.Group(0)
	if len(group) != 3 {
		t.Fatalf("expected 3 bindings in group 0, got %+v", group)
	}
	bindingSpecs := []struct {
		name     string
		expSize  uint64
		writable bool
	}{
		{"settings", 80, false},
		{"samples_in", 64, false},
		{"samples_out", 16, true},
	}
	for specIndex, spec := range bindingSpecs {
		b := group[specIndex]
		if b.Binding != specIndex || b.Name != spec.name || b.MinSize != spec.expSize || b.Writable() != spec.writable {
			t.Fatalf("[spec %d] unexpected binding %+v", specIndex, b)
		}
	}
	if len(r.Group(1)) != 0 {
		t.Fatalf("expected group 1 to be empty")
	}

	if r.WorkgroupSize != [3]uint32{64, 1, 1} {
		t.Fatalf("expected workgroup size [64 1 1], got %v", r.WorkgroupSize)
	}
	if r.EntryPoints[ShaderTypeCompute] != "cs_main" {
		t.Fatalf("expected compute entry point cs_main, got %q", r.EntryPoints[ShaderTypeCompute])
	}
	if _, ok := r.EntryPoints[ShaderTypeVertex]; ok {
		t.Fatalf("expected no vertex entry point")
	}
}

func TestReflectVertexLayouts(t *testing.T) {
	r := Reflect(`
struct VertexInput {
    @location(0) corner: vec2<f32>,
    @location(1) tint: vec4<f32>,
}

struct VertexOutput {
    @builtin(position) position: vec4<f32>,
    @location(0) color: vec4<f32>,
}

@vertex
fn vs_main(in: VertexInput, @builtin(instance_index) instance: u32) -> VertexOutput {
}

@fragment
fn fs_main(in: VertexOutput) -> @location(0) vec4<f32> {
}`)

	if len(r.VertexLayouts) != 1 {
		t.Fatalf("expected only the input struct to become a vertex layout, got %d", len(r.VertexLayouts))
	}
	layout := r.VertexLayouts[0]
	if layout.ArrayStride != 24 || len(layout.Attributes) != 2 {
		t.Fatalf("unexpected layout %+v", layout)
	}
	if a := layout.Attributes[1]; a.Format != wgpu.VertexFormatFloat32x4 || a.Offset != 8 || a.ShaderLocation != 1 {
		t.Fatalf("unexpected second attribute %+v", a)
	}
	if r.EntryPoints[ShaderTypeVertex] != "vs_main" || r.EntryPoints[ShaderTypeFragment] != "fs_main" {
		t.Fatalf("unexpected entry points %v", r.EntryPoints)
	}
	if r.WorkgroupSize != [3]uint32{} {
		t.Fatalf("expected no workgroup size without a compute stage, got %v", r.WorkgroupSize)
	}
}

func TestLayoutOf(t *testing.T) {
	structs := map[string]typeLayout{"Light": {48, 16}}

	specs := []struct {
		typeName string
		expOK    bool
		expSize  uint64
		expAlign uint64
	}{
		{"f16", true, 2, 2},
		{"vec3<f32>", true, 12, 16},
		{"vec3f", true, 12, 16},
		{"vec2h", true, 4, 4},
		{"mat3x3<f32>", true, 48, 16},
		{"mat4x2f", true, 32, 8},
		{"atomic<u32>", true, 4, 4},
		{"array<vec3<f32>, 4>", true, 64, 16},
		{"array<Light>", true, 48, 16},
		{"array<Light, 2>", true, 96, 16},
		{"vec3<bool>", false, 0, 0},
		{"atomic<f32>", false, 0, 0},
		{"Unknown", false, 0, 0},
	}

	for specIndex, spec := range specs {
		l, ok := layoutOf(spec.typeName, structs)
		if ok != spec.expOK {
			t.Fatalf("[spec %d] expected %s resolved=%t, got %t", specIndex, spec.typeName, spec.expOK, ok)
		}
		if ok && (l.size != spec.expSize || l.align != spec.expAlign) {
			t.Fatalf("[spec %d] expected %s to be %d bytes aligned to %d, got %+v", specIndex, spec.typeName, spec.expSize, spec.expAlign, l)
		}
	}
}

func TestStripComments(t *testing.T) {
	got := stripComments("a // line\nb /* block /* nested */ still */ c\n/* multi\nline */d")
	if exp := "a \nb  c\n\nd"; got != exp {
		t.Fatalf("expected %q, got %q", exp, got)
	}
}
