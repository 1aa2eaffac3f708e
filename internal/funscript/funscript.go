// internal/funscript/funscript.go
package funscript

import (
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/bethropolis/funscripter/internal/codec"
	"github.com/bethropolis/funscripter/internal/core/history"
	"github.com/bethropolis/funscripter/internal/event"
	"github.com/bethropolis/funscripter/internal/logger"
	"github.com/bethropolis/funscripter/internal/types"
	"github.com/google/uuid"
)

// Funscript is one editable script: a time ordered list of actions, a
// secondary raw recording track and a selection of actions.
type Funscript struct {
	id   uuid.UUID
	path string
	file *codec.File

	actions    []types.Action // Non-decreasing by At after every mutator
	rawActions []types.Action
	selected   map[types.Action]int // Selected occurrences per value

	changed  bool // Coalesces mutations into one event per Update
	unsaved  bool
	editTime time.Time

	eventManager *event.Manager
	history      *history.Manager
	mu           sync.RWMutex
}

// Option configures a new Funscript.
type Option func(*Funscript)

// WithHistoryDepth bounds the script's undo stacks.
func WithHistoryDepth(depth int) Option {
	return func(f *Funscript) {
		f.history = history.NewManager(f, depth)
	}
}

// WithEventManager sets the manager ActionsChanged events are dispatched on.
func WithEventManager(mgr *event.Manager) Option {
	return func(f *Funscript) {
		f.eventManager = mgr
	}
}

// New creates an empty script with default header values.
func New(opts ...Option) *Funscript {
	f := &Funscript{
		id:       uuid.New(),
		file:     codec.NewFile(),
		selected: make(map[types.Action]int),
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.history == nil {
		f.history = history.NewManager(f, history.DefaultMaxHistory)
	}
	return f
}

// ID returns the script's session-unique identifier.
func (f *Funscript) ID() uuid.UUID { return f.id }

// History returns the script's undo manager. Drive it through a
// history.Coordinator so all loaded scripts stay in step.
func (f *Funscript) History() *history.Manager { return f.history }

// SetEventManager sets the event manager for dispatching events
func (f *Funscript) SetEventManager(mgr *event.Manager) {
	f.eventManager = mgr
}

// Path returns the file the script was opened from or last saved to.
func (f *Funscript) Path() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.path
}

// SetPath changes where Save writes by default.
func (f *Funscript) SetPath(path string) {
	f.mu.Lock()
	f.path = path
	f.mu.Unlock()
}

// Name returns the file name without the .funscript extension.
func (f *Funscript) Name() string {
	base := filepath.Base(f.Path())
	if base == "." || base == string(filepath.Separator) {
		return "untitled"
	}
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Metadata returns a copy of the author metadata.
func (f *Funscript) Metadata() codec.Metadata {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.file.Metadata
}

// SetMetadata replaces the author metadata.
func (f *Funscript) SetMetadata(md codec.Metadata) {
	f.mu.Lock()
	f.file.Metadata = md
	f.mu.Unlock()
	f.markUnsaved()
}

// Header returns the version, inverted flag and range stored in the file.
func (f *Funscript) Header() (version string, inverted bool, rng int32) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.file.Version, f.file.Inverted, f.file.Range
}

// Actions returns a copy of the action list.
func (f *Funscript) Actions() []types.Action {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return append([]types.Action(nil), f.actions...)
}

// Len returns the number of actions.
func (f *Funscript) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.actions)
}

// RawActions returns a copy of the raw recording track.
func (f *Funscript) RawActions() []types.Action {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return append([]types.Action(nil), f.rawActions...)
}

// AddRawAction records a point on the raw track. The raw track is not
// covered by undo.
func (f *Funscript) AddRawAction(a types.Action) {
	f.mu.Lock()
	f.rawActions = insertSorted(f.rawActions, a)
	f.mu.Unlock()
	f.markUnsaved()
}

// CaptureState returns a deep copy of the actions and selection.
func (f *Funscript) CaptureState() types.ScriptState {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return types.ScriptState{
		Actions:   f.actions,
		Selection: f.selectionLocked(),
	}.Clone()
}

// RestoreState replaces the actions and selection with a captured state.
func (f *Funscript) RestoreState(st types.ScriptState) {
	st = st.Clone()
	f.mu.Lock()
	f.actions = st.Actions
	f.selected = make(map[types.Action]int, len(st.Selection))
	for _, a := range st.Selection {
		f.selected[a]++
	}
	f.pruneSelectionLocked()
	f.mu.Unlock()
	f.NotifyActionsChanged()
}

// NotifyActionsChanged marks the script dirty. The event fires on the next Update.
func (f *Funscript) NotifyActionsChanged() {
	f.mu.Lock()
	f.changed = true
	f.mu.Unlock()
	f.markUnsaved()
}

// HasChanged reports whether an ActionsChanged event is pending.
func (f *Funscript) HasChanged() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.changed
}

// HasUnsavedEdits reports whether the script changed since the last save or open.
func (f *Funscript) HasUnsavedEdits() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.unsaved
}

// EditTime returns when the script last became unsaved.
func (f *Funscript) EditTime() time.Time {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.editTime
}

// Update dispatches at most one ActionsChanged event for all mutations made
// since the previous call.
func (f *Funscript) Update() {
	f.mu.Lock()
	fire := f.changed
	f.changed = false
	mgr := f.eventManager
	f.mu.Unlock()

	if fire && mgr != nil {
		logger.DebugTagf("funscript", "actions changed: %s", f.id)
		mgr.Dispatch(event.TypeActionsChanged, event.ActionsChangedData{ScriptID: f.id})
	}
}

func (f *Funscript) markUnsaved() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.unsaved {
		f.unsaved = true
		f.editTime = time.Now()
	}
}
