package profiler

import (
	"runtime"
	"time"

	"github.com/Carmen-Shannon/echolocation/engine/renderer"
	"github.com/Carmen-Shannon/echolocation/log"
)

var logger = log.New("engine")

// Sample summarizes one profiling interval.
type Sample struct {
	Ticks       int
	TicksPerSec float64
	AvgTick     time.Duration
	MaxTick     time.Duration

	// Renderer work recorded during the interval.
	ComputeFrames uint64
	Dispatches    uint64
	Copies        uint64
	DrawCalls     int // in the last frame of the interval
	LiveBuffers   int

	HeapMB      float64
	AllocRateMB float64 // MB allocated per second, including garbage
	NumGC       uint32
}

// Profiler accumulates tick durations and renderer counters, and logs a Sample once per interval.
type Profiler struct {
	interval time.Duration
	now      func() time.Time
	logger   log.Logger

	windowStart time.Time
	ticks       int
	total       time.Duration
	max         time.Duration
	lastStats   renderer.FrameStats

	memStats       runtime.MemStats
	lastTotalAlloc uint64
	last           Sample
}

// NewProfiler creates a Profiler. The interval defaults to one second.
//
// Parameters:
//   - options: functional options to configure the profiler
//
// Returns:
//   - *Profiler: the profiler
func NewProfiler(options ...ProfilerBuilderOption) *Profiler {
	p := &Profiler{
		interval: time.Second,
		now:      time.Now,
		logger:   logger,
	}
	for _, opt := range options {
		opt(p)
	}
	p.windowStart = p.now()
	return p
}

// Tick records one engine tick. When the interval has elapsed it logs and returns the interval's Sample.
//
// Parameters:
//   - tick: how long the tick took
//   - stats: the renderer's counters after the tick
//
// Returns:
//   - Sample: the completed interval, zero when bool is false
//   - bool: true if an interval completed on this tick
func (p *Profiler) Tick(tick time.Duration, stats renderer.FrameStats) (Sample, bool) {
	p.ticks++
	p.total += tick
	p.max = max(p.max, tick)

	now := p.now()
	elapsed := now.Sub(p.windowStart)
	if elapsed < p.interval {
		return Sample{}, false
	}

	runtime.ReadMemStats(&p.memStats)
	s := Sample{
		Ticks:         p.ticks,
		TicksPerSec:   float64(p.ticks) / elapsed.Seconds(),
		AvgTick:       p.total / time.Duration(p.ticks),
		MaxTick:       p.max,
		ComputeFrames: stats.ComputeFrames - p.lastStats.ComputeFrames,
		Dispatches:    stats.Dispatches - p.lastStats.Dispatches,
		Copies:        stats.Copies - p.lastStats.Copies,
		DrawCalls:     stats.DrawCalls,
		LiveBuffers:   stats.LiveBuffers,
		HeapMB:        float64(p.memStats.Alloc) / 1024 / 1024,
		AllocRateMB:   float64(p.memStats.TotalAlloc-p.lastTotalAlloc) / 1024 / 1024 / elapsed.Seconds(),
		NumGC:         p.memStats.NumGC,
	}

	p.logger.Infof("TPS: %.1f | tick avg %s max %s | compute %d dispatch %d copy %d | draws %d | buffers %d | heap %.2f MB (%.2f MB/s) | GC %d",
		s.TicksPerSec, s.AvgTick, s.MaxTick, s.ComputeFrames, s.Dispatches, s.Copies, s.DrawCalls, s.LiveBuffers, s.HeapMB, s.AllocRateMB, s.NumGC)

	p.windowStart = now
	p.ticks, p.total, p.max = 0, 0, 0
	p.lastStats = stats
	p.lastTotalAlloc = p.memStats.TotalAlloc
	p.last = s
	return s, true
}

// Last returns the most recently completed Sample.
func (p *Profiler) Last() Sample {
	return p.last
}
