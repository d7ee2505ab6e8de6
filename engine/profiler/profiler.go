package profiler

import (
	"runtime"
	"time"
)

// Profiler tracks frame rate and memory statistics for performance monitoring.
// Reports a Stats summary to its Sink at a configurable interval.
type Profiler struct {
	sink           Sink
	now            func() time.Time
	frameCount     int
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64
}

// NewProfiler creates a new Profiler with default settings.
// Update interval defaults to 1 second and the sink to NopSink.
//
// Parameters:
//   - options: functional options to configure the profiler
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(options ...ProfilerBuilderOption) *Profiler {
	p := &Profiler{
		sink:           NopSink(),
		now:            time.Now,
		updateInterval: time.Second,
		memStats:       runtime.MemStats{},
	}
	for _, option := range options {
		option(p)
	}
	p.lastTime = p.now()
	return p
}

// Sink returns the sink statistics are reported to.
func (p *Profiler) Sink() Sink {
	return p.sink
}

// Tick should be called once per frame to track frame timing.
// Reports statistics when the update interval has elapsed: FPS, heap usage,
// allocation rate, GC count and pause times, total memory.
//
// Returns:
//   - bool: true if stats were reported this tick, false otherwise
func (p *Profiler) Tick() bool {
	p.frameCount++
	currentTime := p.now()
	elapsed := currentTime.Sub(p.lastTime)
	if elapsed < p.updateInterval || elapsed <= 0 {
		return false
	}

	runtime.ReadMemStats(&p.memStats)
	stats := Stats{
		FPS: float64(p.frameCount) / elapsed.Seconds(),
		// Alloc is live heap, Sys is the process footprint obtained from the OS
		HeapMB: float64(p.memStats.Alloc) / 1024 / 1024,
		SysMB:  float64(p.memStats.Sys) / 1024 / 1024,
		// TotalAlloc only grows, so its delta is the allocation churn
		AllocRateMB: float64(p.memStats.TotalAlloc-p.lastTotalAlloc) / 1024 / 1024 / elapsed.Seconds(),
		GCCount:     p.memStats.NumGC,
	}
	stats.LastPauseUs, stats.MaxPauseUs = p.gcPauses()

	p.sink.Profile(stats)

	p.frameCount = 0
	p.lastTime = currentTime
	p.lastGCCount = p.memStats.NumGC
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return true
}

// gcPauses returns the last GC pause and the longest pause since the previous report, in microseconds.
func (p *Profiler) gcPauses() (last, longest uint64) {
	gcCount := p.memStats.NumGC
	if gcCount == 0 {
		return 0, 0
	}
	// PauseNs is a circular buffer of the last 256 pauses
	last = p.memStats.PauseNs[(gcCount-1)%256] / 1000
	start := p.lastGCCount
	if gcCount-start > 256 {
		start = gcCount - 256
	}
	for i := start; i < gcCount; i++ {
		if pause := p.memStats.PauseNs[i%256] / 1000; pause > longest {
			longest = pause
		}
	}
	return last, longest
}
