package funscript

import (
	"maps"
	"math"

	"github.com/bethropolis/funscripter/internal/types"
)

// selectedIndicesLocked resolves the selection against the live list, one
// index per selected action, in time order.
func (f *Funscript) selectedIndicesLocked() []int {
	if f.selectedTotalLocked() == len(f.actions) {
		// Everything is selected: no per-value lookups needed.
		all := make([]int, len(f.actions))
		for i := range all {
			all[i] = i
		}
		return all
	}
	remaining := maps.Clone(f.selected)
	idx := make([]int, 0, len(f.selected))
	for i, a := range f.actions {
		if remaining[a] == 0 {
			continue
		}
		remaining[a]--
		idx = append(idx, i)
	}
	return idx
}

// transformSelection replaces every selected action with fn's result,
// restores time order and reselects the new values. fn receives the
// action's rank within the selection and the selection size.
func (f *Funscript) transformSelection(fn func(rank, count int, a types.Action) types.Action) {
	f.mu.Lock()
	if len(f.selected) == 0 {
		f.mu.Unlock()
		return
	}
	everything := f.selectedTotalLocked() == len(f.actions)
	idx := f.selectedIndicesLocked()

	moved := make([]types.Action, len(idx))
	for rank, i := range idx {
		moved[rank] = fn(rank, len(idx), f.actions[i])
		f.actions[i] = moved[rank]
	}
	if !types.IsSortedByTime(f.actions) {
		types.SortByTime(f.actions)
	}

	if everything {
		f.selectAllLocked()
	} else {
		clear(f.selected)
		for _, a := range moved {
			f.selected[a]++
		}
	}
	f.mu.Unlock()
	f.NotifyActionsChanged()
}

// MoveSelectionTime shifts every selected action by offset milliseconds.
// The offset is reduced so no action moves below 0 ms or past the largest
// representable time.
func (f *Funscript) MoveSelectionTime(offset int32) {
	sel := f.Selection()
	if len(sel) == 0 {
		return
	}
	if first := sel[0].At; offset < 0 && first+offset < 0 {
		offset = -first
	}
	if last := sel[len(sel)-1].At; offset > 0 && last > math.MaxInt32-offset {
		offset = math.MaxInt32 - last
	}
	if offset == 0 {
		return
	}
	f.transformSelection(func(_, _ int, a types.Action) types.Action {
		a.At += offset
		return a
	})
}

// MoveSelectionPosition shifts every selected action's position by offset,
// clamped into [0,100].
func (f *Funscript) MoveSelectionPosition(offset int32) {
	f.transformSelection(func(_, _ int, a types.Action) types.Action {
		a.Pos = types.ClampPosition(a.Pos + offset)
		return a
	})
}

// EqualizeSelection spaces the selected actions evenly in time between the
// first and last selected action. Positions are unchanged.
func (f *Funscript) EqualizeSelection() {
	sel := f.Selection()
	if len(sel) < 3 {
		return
	}
	first, last := sel[0].At, sel[len(sel)-1].At
	step := float64(last-first) / float64(len(sel)-1)
	f.transformSelection(func(rank, _ int, a types.Action) types.Action {
		a.At = first + int32(math.Round(step*float64(rank)))
		return a
	})
}

// InvertSelection mirrors every selected position: pos = 100 - pos.
func (f *Funscript) InvertSelection() {
	f.transformSelection(func(_, _ int, a types.Action) types.Action {
		a.Pos = types.MaxPosition - types.ClampPosition(a.Pos)
		return a
	})
}
