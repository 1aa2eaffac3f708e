package funscript

import (
	"sort"

	"github.com/bethropolis/funscripter/internal/types"
)

// lowerBound returns the first index with At >= t.
func lowerBound(actions []types.Action, t int32) int {
	return sort.Search(len(actions), func(i int) bool { return actions[i].At >= t })
}

// upperBound returns the first index with At > t.
func upperBound(actions []types.Action, t int32) int {
	return sort.Search(len(actions), func(i int) bool { return actions[i].At > t })
}

// indexOf returns the index of the first action equal to a, or -1.
func indexOf(actions []types.Action, a types.Action) int {
	for i := lowerBound(actions, a.At); i < len(actions) && actions[i].At == a.At; i++ {
		if actions[i] == a {
			return i
		}
	}
	return -1
}

// insertSorted inserts a after every action with the same time.
func insertSorted(actions []types.Action, a types.Action) []types.Action {
	i := upperBound(actions, a.At)
	actions = append(actions, types.Action{})
	copy(actions[i+1:], actions[i:])
	actions[i] = a
	return actions
}

// HasAction reports whether an action equal to a exists.
func (f *Funscript) HasAction(a types.Action) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return indexOf(f.actions, a) >= 0
}

// GetPositionAtTime returns the position at time t, interpolating linearly
// between the surrounding actions. Before the first action it returns the
// first position and after the last action the last position.
func (f *Funscript) GetPositionAtTime(t int32) int32 {
	f.mu.RLock()
	defer f.mu.RUnlock()

	switch n := len(f.actions); {
	case n == 0:
		return 0
	case n == 1:
		return f.actions[0].Pos
	case t <= f.actions[0].At:
		return f.actions[0].Pos
	case t >= f.actions[n-1].At:
		return f.actions[n-1].Pos
	}

	i := lowerBound(f.actions, t)
	next := f.actions[i]
	if next.At == t {
		return next.Pos
	}
	prev := f.actions[i-1]
	progress := float64(t-prev.At) / float64(next.At-prev.At)
	return prev.Pos + int32(progress*float64(next.Pos-prev.Pos))
}

// GetActionAtTime returns the action nearest to t within maxErr milliseconds.
// Equally near actions resolve to the later one.
func (f *Funscript) GetActionAtTime(t, maxErr int32) (types.Action, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return actionAtTime(f.actions, t, maxErr)
}

func actionAtTime(actions []types.Action, t, maxErr int32) (types.Action, bool) {
	if maxErr < 0 {
		return types.Action{}, false
	}
	var (
		best    types.Action
		bestErr int64 = -1
	)
	// int64 keeps t±maxErr from overflowing near the int32 limits.
	limit := int64(t) + int64(maxErr)
	for i := lowerBound(actions, clampTime(int64(t)-int64(maxErr))); i < len(actions); i++ {
		a := actions[i]
		if int64(a.At) > limit {
			break
		}
		e := int64(types.Abs32(a.At - t))
		if bestErr >= 0 && e > bestErr {
			break
		}
		best, bestErr = a, e
	}
	return best, bestErr >= 0
}

// GetNextActionAhead returns the first action strictly after t.
func (f *Funscript) GetNextActionAhead(t int32) (types.Action, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	i := upperBound(f.actions, t)
	if i >= len(f.actions) {
		return types.Action{}, false
	}
	return f.actions[i], true
}

// GetPreviousActionBehind returns the last action strictly before t.
func (f *Funscript) GetPreviousActionBehind(t int32) (types.Action, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	i := lowerBound(f.actions, t)
	if i == 0 {
		return types.Action{}, false
	}
	return f.actions[i-1], true
}

// GetClosestAction returns the action nearest to t.
func (f *Funscript) GetClosestAction(t int32) (types.Action, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	i := closestIndex(f.actions, t)
	if i < 0 {
		return types.Action{}, false
	}
	return f.actions[i], true
}

// GetClosestActionSelection returns the selected action nearest to t.
func (f *Funscript) GetClosestActionSelection(t int32) (types.Action, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	sel := f.selectionLocked()
	i := closestIndex(sel, t)
	if i < 0 {
		return types.Action{}, false
	}
	return sel[i], true
}

// closestIndex returns the index nearest to t, preferring the later one on ties.
func closestIndex(actions []types.Action, t int32) int {
	if len(actions) == 0 {
		return -1
	}
	i := lowerBound(actions, t)
	switch {
	case i == 0:
		return 0
	case i == len(actions):
		return i - 1
	}
	if int64(t)-int64(actions[i-1].At) < int64(actions[i].At)-int64(t) {
		return i - 1
	}
	return i
}

// GetLastStroke returns, in time order, the actions that make up the stroke
// ending at the action closest to t: up to two monotone runs of positions.
// It returns nil when the script has fewer than two actions.
func (f *Funscript) GetLastStroke(t int32) []types.Action {
	f.mu.RLock()
	defer f.mu.RUnlock()

	end := closestIndex(f.actions, t)
	if end < 1 {
		return nil
	}
	start, runs, dir := end, 0, 0
	for i := end; i > 0; i-- {
		d := sign(f.actions[i].Pos - f.actions[i-1].Pos)
		if d != 0 && d != dir {
			runs++
			if runs > 2 {
				break
			}
			dir = d
		}
		start = i - 1
	}
	return append([]types.Action(nil), f.actions[start:end+1]...)
}

func sign(v int32) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

func clampTime(t int64) int32 {
	const maxInt32 = 1<<31 - 1
	switch {
	case t < 0:
		return 0
	case t > maxInt32:
		return maxInt32
	}
	return int32(t)
}
