package funscript

import (
	"github.com/bethropolis/funscripter/internal/logger"
	"github.com/bethropolis/funscripter/internal/types"
)

// AddAction inserts a after any actions with the same time.
func (f *Funscript) AddAction(a types.Action) {
	f.mu.Lock()
	f.actions = insertSorted(f.actions, a)
	f.mu.Unlock()
	f.NotifyActionsChanged()
}

// RemoveAction removes the first action equal to a. With prune set, the
// selection drops any value no longer present. Absent actions are ignored.
func (f *Funscript) RemoveAction(a types.Action, prune bool) {
	f.mu.Lock()
	removed := f.removeLocked(a)
	if removed && prune {
		f.pruneSelectionLocked()
	}
	f.mu.Unlock()
	if removed {
		f.NotifyActionsChanged()
	}
}

// RemoveActions removes each listed action and prunes the selection once.
func (f *Funscript) RemoveActions(list []types.Action) {
	f.mu.Lock()
	for _, a := range list {
		f.removeLocked(a)
	}
	f.pruneSelectionLocked()
	f.mu.Unlock()
	f.NotifyActionsChanged()
}

// RemoveActionsInInterval removes every action with from <= At <= to.
func (f *Funscript) RemoveActionsInInterval(from, to int32) {
	if from > to {
		return
	}
	f.mu.Lock()
	lo, hi := lowerBound(f.actions, from), upperBound(f.actions, to)
	if lo >= hi {
		f.mu.Unlock()
		return
	}
	f.actions = append(f.actions[:lo], f.actions[hi:]...)
	f.pruneSelectionLocked()
	f.mu.Unlock()
	logger.DebugTagf("funscript", "removed %d action(s) in [%d, %d]", hi-lo, from, to)
	f.NotifyActionsChanged()
}

// EditAction sets the position of the action equal to old to updated.Pos.
// The time is left unchanged. It reports whether old was found.
func (f *Funscript) EditAction(old, updated types.Action) bool {
	f.mu.Lock()
	i := indexOf(f.actions, old)
	if i < 0 {
		f.mu.Unlock()
		return false
	}
	f.actions[i].Pos = updated.Pos
	f.pruneSelectionLocked()
	f.mu.Unlock()
	f.NotifyActionsChanged()
	return true
}

// MoveAction replaces the action equal to old with updated, time included,
// keeping its selection state. It reports whether old was found.
func (f *Funscript) MoveAction(old, updated types.Action) bool {
	f.mu.Lock()
	wasSelected := f.selected[old] > 0
	if !f.removeLocked(old) {
		f.mu.Unlock()
		return false
	}
	f.actions = insertSorted(f.actions, updated)
	if wasSelected {
		f.deselectOneLocked(old)
		f.selected[updated]++
	}
	f.mu.Unlock()
	f.NotifyActionsChanged()
	return true
}

// PasteAction inserts a, first removing an action at exactly the same time
// when the nearest action within errMs sits there.
func (f *Funscript) PasteAction(a types.Action, errMs int32) {
	f.mu.Lock()
	if existing, ok := actionAtTime(f.actions, a.At, errMs); ok && existing.At == a.At {
		f.removeLocked(existing)
		f.pruneSelectionLocked()
	}
	f.actions = insertSorted(f.actions, a)
	f.mu.Unlock()
	f.NotifyActionsChanged()
}

// AddEditAction edits the position of the nearest action within errMs of
// a.At, or adds a when there is none.
func (f *Funscript) AddEditAction(a types.Action, errMs int32) {
	if existing, ok := f.GetActionAtTime(a.At, errMs); ok {
		f.EditAction(existing, a)
		return
	}
	f.AddAction(a)
}

// SetActions replaces the whole action list. The selection is pruned.
func (f *Funscript) SetActions(list []types.Action) {
	actions := append([]types.Action(nil), list...)
	types.SortByTime(actions)
	f.mu.Lock()
	f.actions = actions
	f.pruneSelectionLocked()
	f.mu.Unlock()
	f.NotifyActionsChanged()
}

func (f *Funscript) removeLocked(a types.Action) bool {
	i := indexOf(f.actions, a)
	if i < 0 {
		return false
	}
	f.actions = append(f.actions[:i], f.actions[i+1:]...)
	return true
}
