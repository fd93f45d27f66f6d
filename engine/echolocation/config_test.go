package echolocation

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/Carmen-Shannon/echolocation/engine/raycast"
	"github.com/go-gl/mathgl/mgl32"
)

func TestConfigValidate(t *testing.T) {
	specs := []struct {
		descr  string
		mutate func(*Config)
		expErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"zero speed", func(c *Config) { c.PropagationSpeed = 0 }, ""},
		{"zero rays", func(c *Config) { c.RayCount = 0 }, "ray count"},
		{"negative waves", func(c *Config) { c.MaxWaves = -1 }, "max waves"},
		{"zero distance", func(c *Config) { c.MaxDistance = 0 }, "max distance"},
		{"zero lifetime", func(c *Config) { c.PointLifetime = 0 }, "point lifetime"},
		{"negative speed", func(c *Config) { c.PropagationSpeed = -1 }, "propagation speed"},
		{"zero size", func(c *Config) { c.PointSize = 0 }, "point size"},
		{"negative stall timeout", func(c *Config) { c.StallTimeout = -time.Second }, "stall timeout"},
		{"unknown policy", func(c *Config) { c.OverflowPolicy = 9 }, "overflow policy"},
	}

	for specIndex, spec := range specs {
		cfg := DefaultConfig()
		spec.mutate(&cfg)
		err := cfg.Validate()
		if spec.expErr == "" {
			if err != nil {
				t.Fatalf("[spec %d: %s] unexpected error: %v", specIndex, spec.descr, err)
			}
			continue
		}
		if !errors.Is(err, ErrInvalidConfig) || !strings.Contains(err.Error(), spec.expErr) {
			t.Fatalf("[spec %d: %s] expected ErrInvalidConfig mentioning %q, got %v", specIndex, spec.descr, spec.expErr, err)
		}
	}
}

func TestConfigValidateReportsEveryField(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RayCount = 0
	cfg.MaxWaves = 0
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "ray count") || !strings.Contains(err.Error(), "max waves") {
		t.Fatalf("expected both fields reported, got %v", err)
	}
}

func TestParseOverflowPolicy(t *testing.T) {
	specs := []struct {
		in    string
		exp   OverflowPolicy
		expOK bool
	}{
		{"reject", OverflowReject, true},
		{"force", OverflowForceComplete, true},
		{"panic", OverflowPanic, true},
		{"drop", OverflowReject, false},
	}

	for specIndex, spec := range specs {
		got, ok := ParseOverflowPolicy(spec.in)
		if got != spec.exp || ok != spec.expOK {
			t.Fatalf("[spec %d] expected %s/%t for %q, got %s/%t", specIndex, spec.exp, spec.expOK, spec.in, got, ok)
		}
	}
}

func TestSlotAllocatorCycles(t *testing.T) {
	a, err := NewSlotAllocator(3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	exp := []int{0, 1, 2, 0, 1, 2, 0}
	for i, want := range exp {
		if peek := a.Peek(); peek != want {
			t.Fatalf("[step %d] expected peek %d, got %d", i, want, peek)
		}
		if got := a.Next(); got != want {
			t.Fatalf("[step %d] expected slot %d, got %d", i, want, got)
		}
	}
	if a.Capacity() != 3 {
		t.Fatalf("expected capacity 3, got %d", a.Capacity())
	}
}

func TestSlotAllocatorRejectsEmptyCycle(t *testing.T) {
	for _, capacity := range []int{0, -2} {
		if _, err := NewSlotAllocator(capacity); !errors.Is(err, ErrInvalidConfig) {
			t.Fatalf("expected ErrInvalidConfig for capacity %d, got %v", capacity, err)
		}
	}
}

func TestColorTableResolve(t *testing.T) {
	red := mgl32.Vec4{1, 0, 0, 1}
	grey := mgl32.Vec4{0.5, 0.5, 0.5, 1}
	entries := map[string]mgl32.Vec4{"Enemy": red}
	table := NewColorTable(grey, entries)
	entries["Enemy"] = White

	specs := []struct {
		target *raycast.Target
		exp    mgl32.Vec4
	}{
		{nil, grey},
		{&raycast.Target{ID: 1, Tag: "Enemy"}, red},
		{&raycast.Target{ID: 2, Tag: "Pickup"}, grey},
		{&raycast.Target{ID: 3}, grey},
	}

	for specIndex, spec := range specs {
		if got := table.Resolve(spec.target); got != spec.exp {
			t.Fatalf("[spec %d] expected %v for %+v, got %v", specIndex, spec.exp, spec.target, got)
		}
	}
}

func TestMeshValidate(t *testing.T) {
	specs := []struct {
		descr string
		mesh  *Mesh
		expOK bool
	}{
		{"quad", QuadMesh(), true},
		{"nil", nil, false},
		{"no indices", &Mesh{Label: "m", Vertices: []mgl32.Vec2{{0, 0}}}, false},
		{"index out of range", &Mesh{Label: "m", Vertices: []mgl32.Vec2{{0, 0}}, Indices: []uint32{0, 1}}, false},
	}

	for specIndex, spec := range specs {
		err := spec.mesh.validate()
		if spec.expOK != (err == nil) {
			t.Fatalf("[spec %d: %s] expected ok %t, got %v", specIndex, spec.descr, spec.expOK, err)
		}
		if err != nil && !errors.Is(err, ErrInvalidConfig) {
			t.Fatalf("[spec %d: %s] expected ErrInvalidConfig, got %v", specIndex, spec.descr, err)
		}
	}
}
