// internal/types/action.go
package types

import "sort"

const (
	// MinPosition and MaxPosition bound an action's position.
	MinPosition int32 = 0
	MaxPosition int32 = 100
)

// Action is a single scripted point: a position reached at a time.
// Actions are compared by value; two actions with equal At and Pos are the
// same action for every lookup in the editor.
type Action struct {
	At  int32 `json:"at" yaml:"at"`   // Milliseconds from the start of the media
	Pos int32 `json:"pos" yaml:"pos"` // 0 (bottom) to 100 (top)
}

// NewAction creates an action with the given time and position.
func NewAction(at, pos int32) Action {
	return Action{At: at, Pos: pos}
}

// Clamped returns a copy of the action with Pos forced into [0,100].
func (a Action) Clamped() Action {
	a.Pos = ClampPosition(a.Pos)
	return a
}

// ClampPosition forces a position into the valid [0,100] range.
func ClampPosition(pos int32) int32 {
	if pos < MinPosition {
		return MinPosition
	}
	if pos > MaxPosition {
		return MaxPosition
	}
	return pos
}

// SortByTime sorts actions by time, keeping the relative order of equal times.
func SortByTime(actions []Action) {
	sort.SliceStable(actions, func(i, j int) bool {
		return actions[i].At < actions[j].At
	})
}

// IsSortedByTime reports whether actions are non-decreasing by time.
func IsSortedByTime(actions []Action) bool {
	for i := 1; i < len(actions); i++ {
		if actions[i].At < actions[i-1].At {
			return false
		}
	}
	return true
}

// Abs32 returns the absolute value of v.
func Abs32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}
