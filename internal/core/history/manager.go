// Package history provides snapshot based undo/redo for scripts and a
// coordinator that keeps several scripts' stacks moving together.
package history

import (
	"sync"

	"github.com/bethropolis/funscripter/internal/logger"
	"github.com/bethropolis/funscripter/internal/types"
)

const DefaultMaxHistory = 50

// Snapshotter is what the history manager needs from a script.
type Snapshotter interface {
	CaptureState() types.ScriptState
	RestoreState(types.ScriptState)
}

// Manager holds one script's undo and redo stacks of full state captures.
type Manager struct {
	target Snapshotter
	undo   boundedStack[types.ScriptState]
	redo   boundedStack[types.ScriptState]
	mutex  sync.Mutex
}

// NewManager creates a history manager.
func NewManager(target Snapshotter, maxHistory int) *Manager {
	if maxHistory <= 0 {
		maxHistory = DefaultMaxHistory
	}
	return &Manager{
		target: target,
		undo:   newBoundedStack[types.ScriptState](maxHistory),
		redo:   newBoundedStack[types.ScriptState](maxHistory),
	}
}

// Snapshot records the current state. Call it before the mutation it protects.
func (m *Manager) Snapshot(clearRedo bool) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if _, evicted := m.undo.push(m.target.CaptureState()); evicted {
		logger.DebugTagf("undo", "history: evicted oldest snapshot")
	}
	if clearRedo {
		m.redo.clear()
	}
	logger.DebugTagf("undo", "history: snapshot taken. undo=%d redo=%d", m.undo.len(), m.redo.len())
}

// Undo restores the last snapshot, saving the replaced state for Redo.
func (m *Manager) Undo() bool {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	state, ok := m.undo.pop()
	if !ok {
		logger.DebugTagf("undo", "history: nothing to undo")
		return false
	}
	m.redo.push(m.target.CaptureState())
	m.target.RestoreState(state)
	logger.DebugTagf("undo", "history: undo applied. undo=%d redo=%d", m.undo.len(), m.redo.len())
	return true
}

// Redo reapplies the last undone state.
func (m *Manager) Redo() bool {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	state, ok := m.redo.pop()
	if !ok {
		logger.DebugTagf("undo", "history: nothing to redo")
		return false
	}
	m.undo.push(m.target.CaptureState())
	m.target.RestoreState(state)
	logger.DebugTagf("undo", "history: redo applied. undo=%d redo=%d", m.undo.len(), m.redo.len())
	return true
}

// Trim drops the oldest entries until the stacks hold at most maxUndo and
// maxRedo states.
func (m *Manager) Trim(maxUndo, maxRedo int) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	for m.undo.len() > maxUndo && m.undo.dropOldest() {
	}
	for m.redo.len() > maxRedo && m.redo.dropOldest() {
	}
}

// ClearRedo empties the redo stack.
func (m *Manager) ClearRedo() {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.redo.clear()
}

// Clear resets both stacks. Call this on file load.
func (m *Manager) Clear() {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.undo.clear()
	m.redo.clear()
	logger.DebugTagf("undo", "history: cleared")
}

// CanUndo returns true if there are snapshots that can be undone.
func (m *Manager) CanUndo() bool {
	return m.UndoDepth() > 0
}

// CanRedo returns true if there are states that can be redone.
func (m *Manager) CanRedo() bool {
	return m.RedoDepth() > 0
}

func (m *Manager) UndoDepth() int {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return m.undo.len()
}

func (m *Manager) RedoDepth() int {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return m.redo.len()
}
