package profiler

import (
	"testing"
	"time"

	"github.com/Carmen-Shannon/echolocation/engine/renderer"
)

func TestProfilerSamplesPerInterval(t *testing.T) {
	clock := time.Unix(0, 0)
	p := NewProfiler(WithInterval(time.Second), WithClock(func() time.Time { return clock }))

	specs := []struct {
		advance   time.Duration
		tick      time.Duration
		stats     renderer.FrameStats
		expSample bool
	}{
		{400 * time.Millisecond, 2 * time.Millisecond, renderer.FrameStats{Dispatches: 1}, false},
		{400 * time.Millisecond, 6 * time.Millisecond, renderer.FrameStats{Dispatches: 2}, false},
		{200 * time.Millisecond, 4 * time.Millisecond, renderer.FrameStats{Dispatches: 5, DrawCalls: 3, LiveBuffers: 7}, true},
		{500 * time.Millisecond, 1 * time.Millisecond, renderer.FrameStats{Dispatches: 6}, false},
	}

	for specIndex, spec := range specs {
		clock = clock.Add(spec.advance)
		s, ok := p.Tick(spec.tick, spec.stats)
		if ok != spec.expSample {
			t.Fatalf("[spec %d] expected sample %t, got %t", specIndex, spec.expSample, ok)
		}
		if !ok {
			continue
		}
		if s.Ticks != 3 || s.AvgTick != 4*time.Millisecond || s.MaxTick != 6*time.Millisecond {
			t.Fatalf("[spec %d] unexpected tick summary %+v", specIndex, s)
		}
		if s.Dispatches != 5 || s.DrawCalls != 3 || s.LiveBuffers != 7 {
			t.Fatalf("[spec %d] unexpected renderer summary %+v", specIndex, s)
		}
		if s.TicksPerSec != 3 {
			t.Fatalf("[spec %d] expected 3 ticks per second, got %g", specIndex, s.TicksPerSec)
		}
	}
	if p.Last().Ticks != 3 {
		t.Fatalf("expected the last sample to be kept, got %+v", p.Last())
	}
}

func TestProfilerCountersAreDeltas(t *testing.T) {
	clock := time.Unix(0, 0)
	p := NewProfiler(WithInterval(time.Second), WithClock(func() time.Time { return clock }))

	clock = clock.Add(time.Second)
	p.Tick(time.Millisecond, renderer.FrameStats{ComputeFrames: 10, Copies: 4})
	clock = clock.Add(time.Second)
	s, ok := p.Tick(time.Millisecond, renderer.FrameStats{ComputeFrames: 12, Copies: 9})
	if !ok || s.ComputeFrames != 2 || s.Copies != 5 {
		t.Fatalf("expected per-interval deltas, got %+v", s)
	}
}
