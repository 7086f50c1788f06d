package profiler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTickReportsOncePerInterval(t *testing.T) {
	now := time.Unix(0, 0)
	p := NewProfiler(WithClock(func() time.Time { return now }), WithQuiet(true))
	assert.Zero(t, p.FPS())

	for range 59 {
		now = now.Add(time.Second / 60)
		assert.False(t, p.Tick())
	}
	now = now.Add(time.Second / 60)
	assert.True(t, p.Tick())
	assert.InDelta(t, 60, p.FPS(), 0.5)

	now = now.Add(100 * time.Millisecond)
	assert.False(t, p.Tick())
}

func TestWithInterval(t *testing.T) {
	now := time.Unix(0, 0)
	p := NewProfiler(WithClock(func() time.Time { return now }), WithInterval(500*time.Millisecond))
	now = now.Add(250 * time.Millisecond)
	assert.False(t, p.Tick())
	now = now.Add(250 * time.Millisecond)
	assert.True(t, p.Tick(), "logging mode also reports")
	assert.InDelta(t, 4, p.FPS(), 1e-9)
}
