package player

import (
	"math"
	"testing"
)

func TestManualClock(t *testing.T) {
	c := NewManualClock(25)
	if c.FrameTimeMs() != 40 {
		t.Fatalf("FrameTimeMs = %v, want 40", c.FrameTimeMs())
	}
	c.SetTimeMs(1000.6)
	if got := RoundedMs(c); got != 1001 {
		t.Errorf("RoundedMs = %d, want 1001", got)
	}
	c.StepFrames(-100)
	if c.CurrentTimeMs() != 0 {
		t.Errorf("clock went below zero: %v", c.CurrentTimeMs())
	}
	c.StepFrames(3)
	if math.Abs(c.CurrentTimeMs()-120) > 1e-9 {
		t.Errorf("after 3 frames = %v, want 120", c.CurrentTimeMs())
	}
}
