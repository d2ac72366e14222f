// Package profiler reports frame rate, render statistics and memory usage at a fixed interval.
package profiler

import (
	"runtime"
	"time"

	"github.com/Carmen-Shannon/oxy-gl/engine/logger"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/render_pass"
)

// Report is one interval's worth of statistics.
type Report struct {
	// FPS is the number of frames per second over the interval.
	FPS float64

	// Frames is the number of frames counted in the interval.
	Frames int

	// Average is the per-frame mean of the render statistics.
	Average render_pass.RenderInfo

	// Peak holds the largest value of each render statistic seen in the interval.
	Peak render_pass.RenderInfo

	// HeapMB is the live heap in megabytes.
	HeapMB float64

	// AllocRateMB is the allocation rate in megabytes per second.
	AllocRateMB float64

	// GCCount is the total number of completed collections.
	GCCount uint32

	// MaxPauseUs is the longest GC pause of the interval in microseconds.
	MaxPauseUs uint64

	// SysMB is the memory obtained from the OS in megabytes.
	SysMB float64
}

// Profiler tracks frame rate, render statistics and memory for performance monitoring.
// Outputs stats to the engine logger at a configurable interval.
type Profiler struct {
	frameCount     int
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64

	sum  render_pass.RenderInfo
	peak render_pass.RenderInfo
	last Report

	now func() time.Time
}

// NewProfiler creates a new Profiler.
//
// Parameters:
//   - options: functional options; the update interval defaults to 1 second
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(options ...ProfilerBuilderOption) *Profiler {
	p := &Profiler{
		updateInterval: time.Second,
		now:            time.Now,
	}
	for _, opt := range options {
		opt(p)
	}
	p.lastTime = p.now()
	return p
}

// Tick should be called once per frame with the statistics of that frame.
// Logs a report when the update interval has elapsed.
//
// Parameters:
//   - info: the render statistics of the frame just drawn
//
// Returns:
//   - bool: true if a report was produced this tick
func (p *Profiler) Tick(info render_pass.RenderInfo) bool {
	p.frameCount++
	p.sum.Add(info)
	p.peak = render_pass.RenderInfo{
		DrawCalls:       max(p.peak.DrawCalls, info.DrawCalls),
		VisibleObjects:  max(p.peak.VisibleObjects, info.VisibleObjects),
		VisibleFaces:    max(p.peak.VisibleFaces, info.VisibleFaces),
		VisibleVertices: max(p.peak.VisibleVertices, info.VisibleVertices),
	}

	currentTime := p.now()
	elapsed := currentTime.Sub(p.lastTime)
	if elapsed < p.updateInterval {
		return false
	}

	r := Report{
		FPS:    float64(p.frameCount) / elapsed.Seconds(),
		Frames: p.frameCount,
		Average: render_pass.RenderInfo{
			DrawCalls:       p.sum.DrawCalls / p.frameCount,
			VisibleObjects:  p.sum.VisibleObjects / p.frameCount,
			VisibleFaces:    p.sum.VisibleFaces / p.frameCount,
			VisibleVertices: p.sum.VisibleVertices / p.frameCount,
		},
		Peak: p.peak,
	}
	p.readMemory(&r, elapsed)

	logger.Info("profiler",
		"fps", int(r.FPS+0.5),
		"avg", r.Average.String(),
		"peak_draws", r.Peak.DrawCalls,
		"heap_mb", r.HeapMB,
		"alloc_mb_s", r.AllocRateMB,
		"gc", r.GCCount,
		"gc_max_us", r.MaxPauseUs,
		"sys_mb", r.SysMB,
	)

	p.last = r
	p.frameCount = 0
	p.sum = render_pass.RenderInfo{}
	p.peak = render_pass.RenderInfo{}
	p.lastTime = currentTime
	return true
}

// LastReport returns the most recent report, the zero Report before the first one.
func (p *Profiler) LastReport() Report {
	return p.last
}

// readMemory fills the memory fields of r from the runtime.
func (p *Profiler) readMemory(r *Report, elapsed time.Duration) {
	runtime.ReadMemStats(&p.memStats)
	// Alloc is live heap, TotalAlloc grows forever and tracks churn, Sys is the process footprint.
	r.HeapMB = float64(p.memStats.Alloc) / 1024 / 1024
	r.SysMB = float64(p.memStats.Sys) / 1024 / 1024
	allocDelta := p.memStats.TotalAlloc - p.lastTotalAlloc
	r.AllocRateMB = float64(allocDelta) / 1024 / 1024 / elapsed.Seconds()

	gcCount := p.memStats.NumGC
	r.GCCount = gcCount
	if gcCount > 0 {
		// PauseNs is a circular buffer of the last 256 pauses.
		startIdx := p.lastGCCount
		if gcCount-startIdx > 256 {
			startIdx = gcCount - 256
		}
		for i := startIdx; i < gcCount; i++ {
			r.MaxPauseUs = max(r.MaxPauseUs, p.memStats.PauseNs[i%256]/1000)
		}
	}
	p.lastGCCount = gcCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
}
