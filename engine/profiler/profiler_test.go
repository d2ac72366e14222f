package profiler

import (
	"io"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-gl/engine/logger"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/render_pass"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func TestProfilerReportsPerInterval(t *testing.T) {
	logger.SetOutput(io.Discard)
	clock := &fakeClock{t: time.Unix(100, 0)}
	p := NewProfiler(WithInterval(time.Second), WithClock(clock.now))

	frames := []render_pass.RenderInfo{
		{DrawCalls: 2, VisibleObjects: 4, VisibleFaces: 24, VisibleVertices: 48},
		{DrawCalls: 4, VisibleObjects: 2, VisibleFaces: 12, VisibleVertices: 24},
	}
	clock.advance(400 * time.Millisecond)
	assert.False(t, p.Tick(frames[0]))
	clock.advance(600 * time.Millisecond)
	require.True(t, p.Tick(frames[1]))

	r := p.LastReport()
	assert.Equal(t, 2, r.Frames)
	assert.InDelta(t, 2.0, r.FPS, 1e-9)
	assert.Equal(t, render_pass.RenderInfo{DrawCalls: 3, VisibleObjects: 3, VisibleFaces: 18, VisibleVertices: 36}, r.Average)
	assert.Equal(t, render_pass.RenderInfo{DrawCalls: 4, VisibleObjects: 4, VisibleFaces: 24, VisibleVertices: 48}, r.Peak)
	assert.Positive(t, r.SysMB)

	clock.advance(100 * time.Millisecond)
	assert.False(t, p.Tick(frames[0]), "the interval restarts after a report")
}

func TestProfilerBuilderIgnoresInvalidValues(t *testing.T) {
	p := NewProfiler(WithInterval(-time.Second), WithClock(nil))
	assert.Equal(t, time.Second, p.updateInterval)
	assert.NotNil(t, p.now)
	assert.Equal(t, Report{}, p.LastReport())
}
