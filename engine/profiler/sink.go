package profiler

import (
	"log/slog"
	"time"
)

// FrameStats describes one rendered frame.
type FrameStats struct {
	Frame     uint64
	DrawCalls int
	Meshes    int
	Duration  time.Duration
}

// Stats is the periodic runtime summary produced by Profiler.Tick.
type Stats struct {
	FPS         float64
	HeapMB      float64
	AllocRateMB float64
	SysMB       float64
	GCCount     uint32
	LastPauseUs uint64
	MaxPauseUs  uint64
}

// Sink receives observability data from the engine. Implementations must be cheap; Frame is
// called once per rendered frame on the render thread.
type Sink interface {
	// Frame reports the statistics of one rendered frame.
	//
	// Parameters:
	//   - stats: the frame statistics
	Frame(stats FrameStats)

	// Profile reports a periodic runtime summary.
	//
	// Parameters:
	//   - stats: the runtime statistics
	Profile(stats Stats)

	// Event reports a named one-off occurrence with slog-style key/value attributes.
	//
	// Parameters:
	//   - name: the event name
	//   - attrs: alternating keys and values
	Event(name string, attrs ...any)
}

type logSink struct {
	logger *slog.Logger
}

var _ Sink = &logSink{}

// NewLogSink returns a Sink writing to logger: frames at debug level, profiles and events at info.
// A nil logger uses slog.Default().
//
// Parameters:
//   - logger: the destination logger
//
// Returns:
//   - Sink: the slog-backed sink
func NewLogSink(logger *slog.Logger) Sink {
	if logger == nil {
		logger = slog.Default()
	}
	return &logSink{logger: logger.With("component", "profiler")}
}

func (s *logSink) Frame(stats FrameStats) {
	s.logger.Debug("frame",
		"frame", stats.Frame,
		"draw_calls", stats.DrawCalls,
		"meshes", stats.Meshes,
		"duration", stats.Duration,
	)
}

func (s *logSink) Profile(stats Stats) {
	s.logger.Info("profile",
		"fps", stats.FPS,
		"heap_mb", stats.HeapMB,
		"alloc_rate_mb", stats.AllocRateMB,
		"gc", stats.GCCount,
		"gc_last_us", stats.LastPauseUs,
		"gc_max_us", stats.MaxPauseUs,
		"sys_mb", stats.SysMB,
	)
}

func (s *logSink) Event(name string, attrs ...any) {
	s.logger.Info(name, attrs...)
}

type nopSink struct{}

// NopSink returns a Sink that discards everything.
func NopSink() Sink {
	return nopSink{}
}

func (nopSink) Frame(FrameStats)     {}
func (nopSink) Profile(Stats)        {}
func (nopSink) Event(string, ...any) {}
