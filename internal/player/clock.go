// Package player describes the playback clock the editor reads from.
package player

import (
	"math"
	"sync"
)

// Clock is the read side of a video player.
type Clock interface {
	// CurrentTimeMs returns the interpolated playback position.
	CurrentTimeMs() float64
	// FrameTimeMs returns the duration of one video frame.
	FrameTimeMs() float64
}

// Seeker is a Clock whose position can be set.
type Seeker interface {
	Clock
	SetTimeMs(ms float64)
}

// ManualClock is a Clock driven by explicit seeks. The CLI and tests use it
// in place of a real player.
type ManualClock struct {
	mu        sync.RWMutex
	currentMs float64
	frameMs   float64
}

// NewManualClock creates a clock at 0 ms for the given frame rate.
func NewManualClock(fps float64) *ManualClock {
	c := &ManualClock{}
	if fps > 0 {
		c.frameMs = 1000 / fps
	}
	return c
}

func (c *ManualClock) CurrentTimeMs() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.currentMs
}

func (c *ManualClock) FrameTimeMs() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.frameMs
}

// SetTimeMs seeks to ms, clamped at 0.
func (c *ManualClock) SetTimeMs(ms float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.currentMs = math.Max(0, ms)
}

// StepFrames moves the clock by n frames.
func (c *ManualClock) StepFrames(n int) {
	c.SetTimeMs(c.CurrentTimeMs() + float64(n)*c.FrameTimeMs())
}

// RoundedMs returns the clock position rounded to whole milliseconds.
func RoundedMs(c Clock) int32 {
	return int32(math.Round(c.CurrentTimeMs()))
}
