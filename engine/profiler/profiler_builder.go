package profiler

import "time"

// ProfilerBuilderOption is a functional option for configuring a Profiler via NewProfiler.
type ProfilerBuilderOption func(*Profiler)

// WithSink sets the destination for periodic statistics. A nil sink is ignored.
//
// Parameters:
//   - sink: the statistics sink
//
// Returns:
//   - ProfilerBuilderOption: option function to apply
func WithSink(sink Sink) ProfilerBuilderOption {
	return func(p *Profiler) {
		if sink != nil {
			p.sink = sink
		}
	}
}

// WithInterval sets how often Tick reports. Non-positive values are ignored.
func WithInterval(interval time.Duration) ProfilerBuilderOption {
	return func(p *Profiler) {
		if interval > 0 {
			p.updateInterval = interval
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) ProfilerBuilderOption {
	return func(p *Profiler) {
		if now != nil {
			p.now = now
		}
	}
}
