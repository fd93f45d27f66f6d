package echolocation

import (
	"testing"

	"github.com/Carmen-Shannon/echolocation/engine/renderer/shader"
)

func TestLayoutsMatchShaders(t *testing.T) {
	compute := shader.Reflect(ComputeShaderSource)
	points := shader.Reflect(PointsShaderSource)

	sizes := make(map[string]uintptr)
	for _, l := range Layouts() {
		sizes[l.Name] = l.Size
	}

	specs := []struct {
		name string
		refl shader.Reflection
	}{
		{"HitRecord", compute},
		{"PointRecord", compute},
		{"WaveParams", compute},
		{"PointRecord", points},
		{"FrameParams", points},
	}
	for specIndex, spec := range specs {
		layout, ok := spec.refl.Structs[spec.name]
		if !ok {
			t.Fatalf("[spec %d] struct %s not found in shader", specIndex, spec.name)
		}
		if uintptr(layout.Size) != sizes[spec.name] {
			t.Fatalf("[spec %d] %s is %d bytes in WGSL and %d bytes in Go", specIndex, spec.name, layout.Size, sizes[spec.name])
		}
	}
}

func TestBindingsMatchShaders(t *testing.T) {
	specs := []struct {
		source   string
		binding  int
		name     string
		writable bool
	}{
		{ComputeShaderSource, computeBindingParams, "params", false},
		{ComputeShaderSource, computeBindingHits, "hits", false},
		{ComputeShaderSource, computeBindingPoints, "out_points", true},
		{PointsShaderSource, renderBindingFrame, "frame", false},
		{PointsShaderSource, renderBindingPoints, "point_list", false},
	}

	for specIndex, spec := range specs {
		var found *shader.Binding
		for _, b := range shader.Reflect(spec.source).Group(0) {
			if b.Binding == spec.binding {
				found = &b
				break
			}
		}
		if found == nil {
			t.Fatalf("[spec %d] no binding %d declared", specIndex, spec.binding)
		}
		if found.Name != spec.name || found.Writable() != spec.writable {
			t.Fatalf("[spec %d] expected %s (writable %v) at binding %d; got %s (writable %v)",
				specIndex, spec.name, spec.writable, spec.binding, found.Name, found.Writable())
		}
	}
}

func TestComputeWorkgroupSize(t *testing.T) {
	if got := shader.Reflect(ComputeShaderSource).WorkgroupSize[0]; got != WorkgroupSize {
		t.Fatalf("expected the compute shader to declare workgroup size %d; got %d", WorkgroupSize, got)
	}
}
