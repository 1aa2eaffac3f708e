package funscript

import (
	"maps"

	"github.com/bethropolis/funscripter/internal/types"
)

// The selection counts selected occurrences per action value. A count never
// exceeds the number of equal actions in the list, so each selected entry
// stands for exactly one action.

// selectionLocked returns the selected actions in time order, one entry per
// selected occurrence.
func (f *Funscript) selectionLocked() []types.Action {
	if len(f.selected) == 0 {
		return nil
	}
	remaining := maps.Clone(f.selected)
	out := make([]types.Action, 0, len(f.selected))
	for _, a := range f.actions {
		if remaining[a] == 0 {
			continue
		}
		remaining[a]--
		out = append(out, a)
	}
	return out
}

func (f *Funscript) selectedTotalLocked() int {
	total := 0
	for _, n := range f.selected {
		total += n
	}
	return total
}

// pruneSelectionLocked caps every count at the number of equal actions.
func (f *Funscript) pruneSelectionLocked() {
	if len(f.selected) == 0 {
		return
	}
	present := countValues(f.actions)
	for a, n := range f.selected {
		if p := present[a]; p < n {
			if p == 0 {
				delete(f.selected, a)
			} else {
				f.selected[a] = p
			}
		}
	}
}

func (f *Funscript) deselectOneLocked(a types.Action) {
	if n := f.selected[a]; n > 1 {
		f.selected[a] = n - 1
	} else {
		delete(f.selected, a)
	}
}

func countValues(actions []types.Action) map[types.Action]int {
	counts := make(map[types.Action]int, len(actions))
	for _, a := range actions {
		counts[a]++
	}
	return counts
}

// Selection returns the selected actions in time order.
func (f *Funscript) Selection() []types.Action {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.selectionLocked()
}

// HasSelection reports whether any action is selected.
func (f *Funscript) HasSelection() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.selected) > 0
}

// SelectionCount returns the number of selected actions.
func (f *Funscript) SelectionCount() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.selectedTotalLocked()
}

// IsSelected reports whether a is selected.
func (f *Funscript) IsSelected(a types.Action) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.selected[a] > 0
}

// ToggleSelection flips the selection state of a and returns the new state.
// Actions that are not in the list cannot become selected.
func (f *Funscript) ToggleSelection(a types.Action) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.toggleLocked(a)
}

func (f *Funscript) toggleLocked(a types.Action) bool {
	if f.selected[a] > 0 {
		delete(f.selected, a)
		return false
	}
	if indexOf(f.actions, a) < 0 {
		return false
	}
	f.selected[a] = 1
	return true
}

// SetSelection selects or deselects a.
func (f *Funscript) SetSelection(a types.Action, selected bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.setSelectedLocked(a, selected)
}

func (f *Funscript) setSelectedLocked(a types.Action, selected bool) {
	if !selected {
		delete(f.selected, a)
		return
	}
	if f.selected[a] == 0 && indexOf(f.actions, a) >= 0 {
		f.selected[a] = 1
	}
}

// SelectAction selects a if it exists.
func (f *Funscript) SelectAction(a types.Action) {
	f.SetSelection(a, true)
}

// DeselectAction removes a from the selection.
func (f *Funscript) DeselectAction(a types.Action) {
	f.SetSelection(a, false)
}

// SelectTime toggles every action with from <= At <= to, optionally
// clearing the selection first. Equal actions toggle together.
func (f *Funscript) SelectTime(from, to int32, clearFirst bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if clearFirst {
		clear(f.selected)
	}
	if from > to {
		return
	}
	inRange := countValues(f.actions[lowerBound(f.actions, from):upperBound(f.actions, to)])
	for a, n := range inRange {
		if f.selected[a] > 0 {
			delete(f.selected, a)
		} else {
			f.selected[a] = n
		}
	}
}

// SelectAll selects every action.
func (f *Funscript) SelectAll() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.selectAllLocked()
}

func (f *Funscript) selectAllLocked() {
	f.selected = countValues(f.actions)
}

// ClearSelection deselects everything.
func (f *Funscript) ClearSelection() {
	f.mu.Lock()
	defer f.mu.Unlock()
	clear(f.selected)
}

// SetSelectionActions replaces the selection with the listed actions that
// exist. Listing a value twice selects two equal actions.
func (f *Funscript) SetSelectionActions(list []types.Action) {
	f.mu.Lock()
	defer f.mu.Unlock()
	clear(f.selected)
	for _, a := range list {
		f.selected[a]++
	}
	f.pruneSelectionLocked()
}

// RemoveSelectedActions deletes every selected action and clears the
// selection. Unselected actions equal to a selected one are kept.
func (f *Funscript) RemoveSelectedActions() {
	f.mu.Lock()
	if len(f.selected) == 0 {
		f.mu.Unlock()
		return
	}
	// Counts are consumed here; the selection is cleared afterwards.
	kept := f.actions[:0]
	for _, a := range f.actions {
		if f.selected[a] > 0 {
			f.selected[a]--
			continue
		}
		kept = append(kept, a)
	}
	f.actions = kept
	clear(f.selected)
	f.mu.Unlock()
	f.NotifyActionsChanged()
}

// SelectTopActions narrows the selection to its peaks. For each window of
// three consecutive selected actions, the lower of the first two and the
// lower of that and the third are deselected.
func (f *Funscript) SelectTopActions() {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range tripleDeselect(f.selectionLocked(), func(x, y types.Action) bool { return x.Pos < y.Pos }) {
		f.deselectOneLocked(a)
	}
}

// SelectBottomActions narrows the selection to its valleys, mirroring
// SelectTopActions.
func (f *Funscript) SelectBottomActions() {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range tripleDeselect(f.selectionLocked(), func(x, y types.Action) bool { return x.Pos > y.Pos }) {
		f.deselectOneLocked(a)
	}
}

// SelectMidActions keeps the selected actions whose position lies strictly
// between the positions of both selected neighbours.
func (f *Funscript) SelectMidActions() {
	f.mu.Lock()
	defer f.mu.Unlock()
	sel := f.selectionLocked()
	if len(sel) < 3 {
		return
	}
	clear(f.selected)
	for i := 1; i < len(sel)-1; i++ {
		prev, cur, next := sel[i-1].Pos, sel[i].Pos, sel[i+1].Pos
		if (prev < cur && cur < next) || (prev > cur && cur > next) {
			f.selected[sel[i]]++
		}
	}
}

// tripleDeselect walks consecutive triples and returns the actions to drop.
// below(x, y) reports whether x ranks below y and is dropped first.
func tripleDeselect(sel []types.Action, below func(x, y types.Action) bool) []types.Action {
	if len(sel) < 3 {
		return nil
	}
	var drop []types.Action
	for i := 1; i < len(sel)-1; i++ {
		prev, cur, next := sel[i-1], sel[i], sel[i+1]
		first := cur
		if below(prev, cur) {
			first = prev
		}
		second := next
		if below(first, next) {
			second = first
		}
		drop = append(drop, first)
		if first.At != second.At {
			drop = append(drop, second)
		}
	}
	return drop
}
