package history

import (
	"slices"
	"sync"

	"github.com/bethropolis/funscripter/internal/logger"
	"github.com/google/uuid"
)

// Document is a script whose history the coordinator drives.
type Document interface {
	ID() uuid.UUID
	History() *Manager
}

// ScriptProvider lists the scripts loaded in the session, root first.
type ScriptProvider interface {
	LoadedScripts() []Document
}

// Context is one logical undo step. Multi steps snapshot every loaded script.
type Context struct {
	Kind      StateType
	Multi     bool
	Documents []uuid.UUID
}

func (c Context) String() string {
	if c.Multi {
		return c.Kind.String() + " (all scripts)"
	}
	return c.Kind.String()
}

// Coordinator pushes one context per user action and replays undo and redo
// on the scripts that action touched.
type Coordinator struct {
	provider ScriptProvider
	undo     boundedStack[Context]
	redo     boundedStack[Context]
	mutex    sync.Mutex
}

// NewCoordinator creates a coordinator bounded to maxHistory steps.
func NewCoordinator(provider ScriptProvider, maxHistory int) *Coordinator {
	if maxHistory <= 0 {
		maxHistory = DefaultMaxHistory
	}
	return &Coordinator{
		provider: provider,
		undo:     newBoundedStack[Context](maxHistory),
		redo:     newBoundedStack[Context](maxHistory),
	}
}

// Snapshot records the state of active, or of every loaded script when multi
// is set, before a mutation. A single-script snapshot without an active
// script records nothing.
func (c *Coordinator) Snapshot(kind StateType, multi bool, active Document, clearRedo bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	docs := c.targets(multi, active)
	if docs == nil {
		logger.Warnf("undo: %v snapshot without an active script ignored", kind)
		return
	}

	ctx := Context{Kind: kind, Multi: multi, Documents: ids(docs)}
	for _, doc := range docs {
		doc.History().Snapshot(clearRedo)
	}
	if evicted, ok := c.undo.push(ctx); ok {
		c.trim(evicted.Documents)
	}

	if clearRedo {
		// Scripts outside this step may still hold redo states from
		// contexts that are about to disappear.
		for _, doc := range c.provider.LoadedScripts() {
			doc.History().ClearRedo()
		}
		c.redo.clear()
	}
	logger.DebugTagf("undo", "coordinator: snapshot %q over %d script(s). undo=%d", ctx, len(docs), c.undo.len())
}

// Undo reverts the most recent step. It reports the step that was undone.
func (c *Coordinator) Undo(active Document) (Context, bool) {
	return c.replay(active, &c.undo, &c.redo, (*Manager).Undo)
}

// Redo reapplies the most recently undone step.
func (c *Coordinator) Redo(active Document) (Context, bool) {
	return c.replay(active, &c.redo, &c.undo, (*Manager).Redo)
}

func (c *Coordinator) replay(active Document, from, to *boundedStack[Context], apply func(*Manager) bool) (Context, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	ctx, ok := from.top()
	if !ok {
		return Context{}, false
	}
	docs := c.targets(ctx.Multi, active)
	if docs == nil {
		logger.Warnf("undo: cannot replay %q without an active script", ctx)
		return Context{}, false
	}
	from.pop()

	if !ctx.Multi && len(ctx.Documents) == 1 && ctx.Documents[0] != active.ID() {
		logger.Warnf("undo: %q was recorded on another script, replaying on the active one", ctx)
	}
	for _, doc := range docs {
		apply(doc.History())
	}
	ctx.Documents = ids(docs)
	if evicted, ok := to.push(ctx); ok {
		c.trim(evicted.Documents)
	}
	logger.DebugTagf("undo", "coordinator: replayed %q. undo=%d redo=%d", ctx, c.undo.len(), c.redo.len())
	return ctx, true
}

func (c *Coordinator) targets(multi bool, active Document) []Document {
	if multi {
		return c.provider.LoadedScripts()
	}
	if active == nil {
		return nil
	}
	return []Document{active}
}

// trim drops per-script states that no remaining context refers to.
func (c *Coordinator) trim(affected []uuid.UUID) {
	for _, doc := range c.provider.LoadedScripts() {
		if !slices.Contains(affected, doc.ID()) {
			continue
		}
		undo, redo := c.references(doc.ID())
		doc.History().Trim(undo, redo)
	}
}

// references counts the undo and redo contexts that include id.
func (c *Coordinator) references(id uuid.UUID) (undo, redo int) {
	for _, ctx := range c.undo.items {
		if slices.Contains(ctx.Documents, id) {
			undo++
		}
	}
	for _, ctx := range c.redo.items {
		if slices.Contains(ctx.Documents, id) {
			redo++
		}
	}
	return undo, redo
}

// CheckLockstep returns the loaded scripts whose stack depths differ from the
// number of coordinator steps that reference them. An empty result means
// every undo and redo will land on the state it was recorded for.
func (c *Coordinator) CheckLockstep() []uuid.UUID {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	var out []uuid.UUID
	for _, doc := range c.provider.LoadedScripts() {
		undo, redo := c.references(doc.ID())
		h := doc.History()
		if h.UndoDepth() != undo || h.RedoDepth() != redo {
			logger.Warnf("undo: script %s out of lockstep: undo %d/%d redo %d/%d",
				doc.ID(), h.UndoDepth(), undo, h.RedoDepth(), redo)
			out = append(out, doc.ID())
		}
	}
	return out
}

// ClearRedo drops every redo step.
func (c *Coordinator) ClearRedo() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	for _, doc := range c.provider.LoadedScripts() {
		doc.History().ClearRedo()
	}
	c.redo.clear()
}

// Clear drops all history, including that of every loaded script.
func (c *Coordinator) Clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	for _, doc := range c.provider.LoadedScripts() {
		doc.History().Clear()
	}
	c.undo.clear()
	c.redo.clear()
	logger.DebugTagf("undo", "coordinator: cleared")
}

// CanUndo returns true if there is a step to undo.
func (c *Coordinator) CanUndo() bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.undo.len() > 0
}

// CanRedo returns true if there is a step to redo.
func (c *Coordinator) CanRedo() bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.redo.len() > 0
}

// UndoHistory lists undo steps, most recent first.
func (c *Coordinator) UndoHistory() []Context {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.undo.newestFirst()
}

// RedoHistory lists redo steps, next to be redone first.
func (c *Coordinator) RedoHistory() []Context {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.redo.newestFirst()
}

func ids(docs []Document) []uuid.UUID {
	out := make([]uuid.UUID, len(docs))
	for i, d := range docs {
		out[i] = d.ID()
	}
	return out
}
