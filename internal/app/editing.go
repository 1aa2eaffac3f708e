package app

import (
	"math"

	"github.com/bethropolis/funscripter/internal/core/history"
	"github.com/bethropolis/funscripter/internal/event"
	"github.com/bethropolis/funscripter/internal/funscript"
	"github.com/bethropolis/funscripter/internal/logger"
	"github.com/bethropolis/funscripter/internal/player"
	"github.com/bethropolis/funscripter/internal/types"
)

// Every editing command records exactly one undo step before it mutates
// anything, and none when it turns out to be a no-op.

func (a *App) currentMs() int32 {
	return player.RoundedMs(a.clock)
}

// frameMs is the nearest-match margin: one frame, or the configured
// default when the clock has no frame time.
func (a *App) frameMs() int32 {
	if ft := a.clock.FrameTimeMs(); ft > 0 {
		return int32(math.Round(ft))
	}
	return a.cfg.Editor.DefaultErrorMs
}

// moveStep is how far move left/right shifts actions.
func (a *App) moveStep() int32 {
	if a.cfg.Editor.MoveStepMs > 0 {
		return a.cfg.Editor.MoveStepMs
	}
	return max(a.frameMs(), 1)
}

func (a *App) snapshot(kind history.StateType, multi bool) {
	a.undo.Snapshot(kind, multi, a.ActiveScript(), true)
}

func (a *App) seek(ms int32) {
	if s, ok := a.clock.(player.Seeker); ok {
		s.SetTimeMs(float64(ms))
	}
}

func (a *App) mirroring() bool {
	return a.MirrorMode() && len(a.Scripts()) > 1
}

// AddEditAction adds an action at the playhead, or moves the position of
// the action already there. In mirror mode every script is edited.
func (a *App) AddEditAction(pos int32) {
	action := types.NewAction(a.currentMs(), pos).Clamped()
	errMs := a.frameMs()

	if a.mirroring() {
		a.snapshot(history.AddEditActions, true)
		for _, s := range a.Scripts() {
			s.AddEditAction(action, errMs)
		}
		return
	}
	a.snapshot(history.AddEditActions, false)
	a.ActiveScript().AddEditAction(action, errMs)
}

// RemoveAction removes the selection, or the action closest to the
// playhead. In mirror mode without a selection the closest action of every
// script is removed.
func (a *App) RemoveAction() {
	script := a.ActiveScript()
	now := a.currentMs()

	if a.mirroring() && !script.HasSelection() {
		a.snapshot(history.RemoveAction, true)
		for _, s := range a.Scripts() {
			if closest, ok := s.GetClosestAction(now); ok {
				s.RemoveAction(closest, true)
			}
		}
		return
	}
	if script.HasSelection() {
		a.snapshot(history.RemoveSelection, false)
		script.RemoveSelectedActions()
		return
	}
	if closest, ok := script.GetClosestAction(now); ok {
		a.snapshot(history.RemoveAction, false)
		script.RemoveAction(closest, true)
	}
}

// CopySelection puts the active script's selection on the clipboard.
func (a *App) CopySelection() error {
	sel := a.ActiveScript().Selection()
	if len(sel) == 0 {
		return nil
	}
	return a.clipboard.Copy(sel)
}

// CutSelection copies and then removes the selection.
func (a *App) CutSelection() error {
	script := a.ActiveScript()
	if !script.HasSelection() {
		return nil
	}
	err := a.CopySelection()
	a.snapshot(history.CutSelection, false)
	script.RemoveSelectedActions()
	return err
}

// PasteSelection pastes the clipboard so its first action lands on the
// playhead, replacing whatever lies in the pasted span. The playhead moves
// to the last pasted action.
func (a *App) PasteSelection() {
	copied := a.clipboard.Contents()
	if len(copied) == 0 {
		return
	}
	script := a.ActiveScript()
	now := a.currentMs()
	offset := now - copied[0].At

	a.snapshot(history.PasteSelection, false)
	if len(copied) >= 2 {
		script.RemoveActionsInInterval(now, now+(copied[len(copied)-1].At-copied[0].At))
	}
	for _, c := range copied {
		script.PasteAction(types.NewAction(c.At+offset, c.Pos), a.cfg.Editor.PasteErrorMs)
	}
	a.seek(copied[len(copied)-1].At + offset)
}

// PasteSelectionExact pastes the clipboard at its original times.
func (a *App) PasteSelectionExact() {
	copied := a.clipboard.Contents()
	if len(copied) == 0 {
		return
	}
	script := a.ActiveScript()

	a.snapshot(history.PasteSelection, false)
	if len(copied) >= 2 {
		script.RemoveActionsInInterval(copied[0].At, copied[len(copied)-1].At)
	}
	for _, c := range copied {
		script.PasteAction(c, a.cfg.Editor.PasteErrorMs)
	}
}

// withTemporarySelection runs fn with actions selected and clears the
// selection afterwards.
func withTemporarySelection(script *funscript.Funscript, actions []types.Action, fn func()) {
	script.SetSelectionActions(actions)
	fn()
	script.ClearSelection()
}

// EqualizeSelection spaces the selected actions evenly in time. Without a
// selection the action closest to the playhead is centred between its
// neighbours.
func (a *App) EqualizeSelection() {
	script := a.ActiveScript()
	if script.HasSelection() {
		if script.SelectionCount() >= 3 {
			a.snapshot(history.EqualizeActions, false)
			script.EqualizeSelection()
		}
		return
	}

	closest, ok := script.GetClosestAction(a.currentMs())
	if !ok {
		return
	}
	behind, okBehind := script.GetPreviousActionBehind(closest.At)
	front, okFront := script.GetNextActionAhead(closest.At)
	if !okBehind || !okFront {
		return
	}
	a.snapshot(history.EqualizeActions, false)
	withTemporarySelection(script, []types.Action{behind, closest, front}, script.EqualizeSelection)
}

// InvertSelection mirrors the selected positions, or the position of the
// action closest to the playhead when nothing is selected.
func (a *App) InvertSelection() {
	script := a.ActiveScript()
	if script.HasSelection() {
		a.snapshot(history.InvertActions, false)
		script.InvertSelection()
		return
	}
	closest, ok := script.GetClosestAction(a.currentMs())
	if !ok {
		return
	}
	a.snapshot(history.InvertActions, false)
	withTemporarySelection(script, []types.Action{closest}, script.InvertSelection)
}

// IsolateAction removes the neighbours of the action closest to the playhead.
func (a *App) IsolateAction() {
	script := a.ActiveScript()
	closest, ok := script.GetClosestAction(a.currentMs())
	if !ok {
		return
	}
	prev, okPrev := script.GetPreviousActionBehind(closest.At)
	next, okNext := script.GetNextActionAhead(closest.At)
	if !okPrev && !okNext {
		return
	}
	a.snapshot(history.IsolateAction, false)
	var drop []types.Action
	if okPrev {
		drop = append(drop, prev)
	}
	if okNext {
		drop = append(drop, next)
	}
	script.RemoveActions(drop)
}

// RepeatLastStroke pastes the stroke that ends at the action closest to the
// playhead so that it starts at the playhead. The playhead moves to the end
// of the repeated stroke.
func (a *App) RepeatLastStroke() {
	script := a.ActiveScript()
	now := a.currentMs()
	stroke := script.GetLastStroke(now)
	if len(stroke) < 2 {
		return
	}
	errMs := a.frameMs()
	offset := now - stroke[0].At

	a.snapshot(history.RepeatStroke, false)
	// Sitting on an action already: it stands in for the stroke's start.
	if _, onAction := script.GetActionAtTime(now, errMs); onAction {
		stroke = stroke[1:]
	}
	for _, s := range stroke {
		script.PasteAction(types.NewAction(s.At+offset, s.Pos), errMs)
	}
	a.seek(stroke[len(stroke)-1].At + offset)
}

// SelectTopPoints narrows the selection to its peaks.
func (a *App) SelectTopPoints() {
	a.snapshot(history.TopPoints, false)
	a.ActiveScript().SelectTopActions()
}

// SelectMiddlePoints narrows the selection to actions between a peak and a valley.
func (a *App) SelectMiddlePoints() {
	a.snapshot(history.MidPoints, false)
	a.ActiveScript().SelectMidActions()
}

// SelectBottomPoints narrows the selection to its valleys.
func (a *App) SelectBottomPoints() {
	a.snapshot(history.BottomPoints, false)
	a.ActiveScript().SelectBottomActions()
}

// SelectTime toggles the selection of the actions in [from, to].
func (a *App) SelectTime(from, to int32, clearFirst bool) {
	a.ActiveScript().SelectTime(from, to, clearFirst)
}

// SelectAll selects every action of the active script.
func (a *App) SelectAll() {
	a.ActiveScript().SelectAll()
}

// DeselectAll clears the active script's selection.
func (a *App) DeselectAll() {
	a.ActiveScript().ClearSelection()
}

// MoveActionsPosition moves the selection, or the action closest to the
// playhead, up by delta position units.
func (a *App) MoveActionsPosition(delta int32) {
	script := a.ActiveScript()
	if script.HasSelection() {
		a.snapshot(history.ActionsMoved, false)
		script.MoveSelectionPosition(delta)
		return
	}
	closest, ok := script.GetClosestAction(a.currentMs())
	if !ok {
		return
	}
	moved := types.NewAction(closest.At, types.ClampPosition(closest.Pos+delta))
	if moved == closest {
		return
	}
	a.snapshot(history.ActionsMoved, false)
	script.EditAction(closest, moved)
}

// MoveActionsTime moves the selection, or the action closest to the
// playhead, one step forward or back. A single action does not move past a
// neighbour. With seek set the playhead follows the moved actions.
func (a *App) MoveActionsTime(forward, seek bool) {
	script := a.ActiveScript()
	step := a.moveStep()
	if !forward {
		step = -step
	}

	if script.HasSelection() {
		a.snapshot(history.ActionsMoved, false)
		script.MoveSelectionTime(step)
		if seek {
			if closest, ok := script.GetClosestActionSelection(a.currentMs()); ok {
				a.seek(closest.At)
			}
		}
		return
	}

	closest, ok := script.GetClosestAction(a.currentMs())
	if !ok {
		return
	}
	moved := types.NewAction(closest.At+step, closest.Pos)
	if moved.At < 0 {
		return
	}
	if inRange, ok := script.GetActionAtTime(moved.At, a.frameMs()); ok {
		if (forward && inRange.At >= moved.At) || (!forward && inRange.At <= moved.At) {
			return
		}
	}
	a.snapshot(history.ActionsMoved, false)
	script.MoveAction(closest, moved)
	if seek {
		a.seek(moved.At)
	}
}

// MoveActionToCurrentPos moves the action closest to the playhead onto it.
func (a *App) MoveActionToCurrentPos() {
	script := a.ActiveScript()
	now := a.currentMs()
	closest, ok := script.GetClosestAction(now)
	if !ok || closest.At == now {
		return
	}
	a.snapshot(history.MoveActionToCurrentPos, false)
	script.MoveAction(closest, types.NewAction(now, closest.Pos))
}

// Undo reverts the last step and reports whether there was one.
func (a *App) Undo() bool {
	ctx, ok := a.undo.Undo(a.ActiveScript())
	if !ok {
		return false
	}
	logger.DebugTagf("undo", "App: undo %s", ctx)
	a.checkLockstep()
	a.eventManager.Dispatch(event.TypeUndo, event.HistoryData{Label: ctx.String(), Multi: ctx.Multi})
	return true
}

// Redo reapplies the last undone step and reports whether there was one.
func (a *App) Redo() bool {
	ctx, ok := a.undo.Redo(a.ActiveScript())
	if !ok {
		return false
	}
	logger.DebugTagf("undo", "App: redo %s", ctx)
	a.checkLockstep()
	a.eventManager.Dispatch(event.TypeRedo, event.HistoryData{Label: ctx.String(), Multi: ctx.Multi})
	return true
}

// checkLockstep logs scripts whose undo stacks drifted from the coordinator.
func (a *App) checkLockstep() {
	if !logger.DebugEnabled() {
		return
	}
	if ids := a.undo.CheckLockstep(); len(ids) > 0 {
		logger.Warnf("App: undo history out of step for %v", ids)
	}
}
