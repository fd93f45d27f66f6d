package bind_group_provider

import (
	"reflect"
	"testing"
)

type fakeBuffer struct {
	label    string
	releases int
}

func (b *fakeBuffer) Label() string      { return b.label }
func (b *fakeBuffer) Size() uint64       { return 4 }
func (b *fakeBuffer) Usage() BufferUsage { return BufferUsageStorage }
func (b *fakeBuffer) Release()           { b.releases++ }
func (b *fakeBuffer) Released() bool     { return b.releases > 0 }

type fakeBindGroup struct {
	releases int
}

func (g *fakeBindGroup) Release() { g.releases++ }

func TestBindingsSorted(t *testing.T) {
	specs := []struct {
		bindings []int
		exp      []int
	}{
		{nil, []int{}},
		{[]int{0}, []int{0}},
		{[]int{3, 0, 1}, []int{0, 1, 3}},
	}

	for index, spec := range specs {
		p := NewBindGroupProvider("test")
		for _, b := range spec.bindings {
			p.SetBuffer(b, &fakeBuffer{})
		}
		if got := p.Bindings(); !reflect.DeepEqual(got, spec.exp) {
			t.Fatalf("[spec %d] expected bindings %v; got %v", index, spec.exp, got)
		}
	}
}

func TestReleaseSharedBufferOnce(t *testing.T) {
	shared := &fakeBuffer{label: "shared"}
	own := &fakeBuffer{label: "own"}
	vertices := &fakeBuffer{label: "vertices"}
	group := &fakeBindGroup{}

	a := NewBindGroupProvider("a", WithBuffers(map[int]Buffer{0: shared, 1: own}))
	b := NewBindGroupProvider("b", WithBuffer(2, shared))
	a.SetVertexBuffer(vertices)
	a.SetBindGroup(group)

	a.Release()
	b.Release()
	a.Release()

	if shared.releases != 1 {
		t.Fatalf("expected shared buffer released once; got %d", shared.releases)
	}
	if own.releases != 1 || vertices.releases != 1 || group.releases != 1 {
		t.Fatalf("expected every resource released once; got own=%d vertices=%d group=%d",
			own.releases, vertices.releases, group.releases)
	}
	if a.BindGroup() != nil || len(a.Buffers()) != 0 || a.VertexBuffer() != nil {
		t.Fatal("expected provider to drop its references after release")
	}
}

func TestBufferUsageHas(t *testing.T) {
	u := BufferUsageStorage | BufferUsageCopySrc
	if !u.Has(BufferUsageStorage) || !u.Has(BufferUsageStorage|BufferUsageCopySrc) {
		t.Fatal("expected usage to contain its flags")
	}
	if u.Has(BufferUsageCopyDst) || u.Has(BufferUsageCopySrc|BufferUsageIndirect) {
		t.Fatal("expected usage to reject missing flags")
	}
}
