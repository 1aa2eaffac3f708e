package history

import (
	"testing"

	"github.com/bethropolis/funscripter/internal/types"
	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
)

// fakeScript is a minimal Snapshotter and Document.
type fakeScript struct {
	id      uuid.UUID
	actions []types.Action
	hist    *Manager
}

func newFakeScript(depth int) *fakeScript {
	s := &fakeScript{id: uuid.New()}
	s.hist = NewManager(s, depth)
	return s
}

func (s *fakeScript) CaptureState() types.ScriptState {
	return types.ScriptState{Actions: s.actions}.Clone()
}

func (s *fakeScript) RestoreState(st types.ScriptState) {
	s.actions = st.Clone().Actions
}

func (s *fakeScript) ID() uuid.UUID      { return s.id }
func (s *fakeScript) History() *Manager { return s.hist }

func (s *fakeScript) add(at, pos int32) {
	s.actions = append(s.actions, types.NewAction(at, pos))
}

type fakeSession struct{ scripts []*fakeScript }

func (f *fakeSession) LoadedScripts() []Document {
	out := make([]Document, len(f.scripts))
	for i, s := range f.scripts {
		out[i] = s
	}
	return out
}

func newSession(t *testing.T, n, depth int) (*fakeSession, *Coordinator) {
	t.Helper()
	sess := &fakeSession{}
	for i := 0; i < n; i++ {
		sess.scripts = append(sess.scripts, newFakeScript(depth))
	}
	return sess, NewCoordinator(sess, depth)
}

func assertLockstep(t *testing.T, c *Coordinator) {
	t.Helper()
	if bad := c.CheckLockstep(); len(bad) != 0 {
		t.Fatalf("scripts out of lockstep: %v", bad)
	}
}

func TestManagerUndoRedoRoundTrip(t *testing.T) {
	s := newFakeScript(10)
	s.add(0, 0)
	before := s.CaptureState()

	s.hist.Snapshot(true)
	s.add(100, 50)
	after := s.CaptureState()

	if !s.hist.Undo() {
		t.Fatal("Undo returned false")
	}
	if diff := cmp.Diff(before.Actions, s.actions); diff != "" {
		t.Errorf("undo state (-want +got):\n%s", diff)
	}
	if !s.hist.Redo() {
		t.Fatal("Redo returned false")
	}
	if diff := cmp.Diff(after.Actions, s.actions); diff != "" {
		t.Errorf("redo state (-want +got):\n%s", diff)
	}
	if s.hist.Redo() {
		t.Error("second Redo should be a no-op")
	}
}

func TestManagerEmptyStacksAreNoOps(t *testing.T) {
	s := newFakeScript(5)
	s.add(1, 1)
	if s.hist.Undo() || s.hist.Redo() {
		t.Fatal("expected no-ops on empty stacks")
	}
	if len(s.actions) != 1 {
		t.Errorf("state changed: %v", s.actions)
	}
}

func TestManagerSnapshotClearsRedo(t *testing.T) {
	s := newFakeScript(5)
	s.hist.Snapshot(true)
	s.add(1, 1)
	s.hist.Undo()
	if !s.hist.CanRedo() {
		t.Fatal("expected redo after undo")
	}
	s.hist.Snapshot(false)
	if !s.hist.CanRedo() {
		t.Fatal("snapshot without clearRedo dropped redo")
	}
	s.hist.Snapshot(true)
	if s.hist.CanRedo() {
		t.Error("snapshot with clearRedo kept redo")
	}
}

func TestManagerBoundedDropsOldest(t *testing.T) {
	const depth = 3
	s := newFakeScript(depth)
	for i := int32(0); i < 5; i++ {
		s.hist.Snapshot(true)
		s.add(i*10, i)
	}
	if got := s.hist.UndoDepth(); got != depth {
		t.Fatalf("UndoDepth = %d, want %d", got, depth)
	}
	for s.hist.Undo() {
	}
	// Oldest two snapshots (0 and 1 actions) were evicted.
	if len(s.actions) != 2 {
		t.Errorf("after undoing everything got %d actions, want 2", len(s.actions))
	}
}

func TestCoordinatorMultiScriptAtomicity(t *testing.T) {
	sess, c := newSession(t, 3, 10)
	for _, s := range sess.scripts {
		s.add(0, 10)
	}

	c.Snapshot(AddEditAction, true, sess.scripts[1], true)
	for _, s := range sess.scripts {
		s.add(500, 90)
	}

	ctx, ok := c.Undo(sess.scripts[2])
	if !ok || !ctx.Multi {
		t.Fatalf("Undo = %+v, %v", ctx, ok)
	}
	for i, s := range sess.scripts {
		if len(s.actions) != 1 {
			t.Errorf("script %d not restored: %v", i, s.actions)
		}
	}
	assertLockstep(t, c)

	if _, ok := c.Redo(sess.scripts[0]); !ok {
		t.Fatal("Redo failed")
	}
	for i, s := range sess.scripts {
		if len(s.actions) != 2 {
			t.Errorf("script %d not redone: %v", i, s.actions)
		}
	}
	assertLockstep(t, c)
}

func TestCoordinatorSingleScriptTouchesOnlyActive(t *testing.T) {
	sess, c := newSession(t, 2, 10)
	a, b := sess.scripts[0], sess.scripts[1]

	c.Snapshot(AddAction, false, a, true)
	a.add(1, 1)
	b.add(2, 2) // not protected

	c.Undo(a)
	if len(a.actions) != 0 {
		t.Errorf("active not restored: %v", a.actions)
	}
	if len(b.actions) != 1 {
		t.Errorf("other script changed: %v", b.actions)
	}
	assertLockstep(t, c)
}

func TestCoordinatorWithoutActiveIsNoOp(t *testing.T) {
	sess, c := newSession(t, 1, 10)
	c.Snapshot(AddAction, false, nil, true)
	if c.CanUndo() {
		t.Fatal("snapshot without active script was recorded")
	}

	c.Snapshot(AddAction, false, sess.scripts[0], true)
	if _, ok := c.Undo(nil); ok {
		t.Fatal("undo without active script replayed a single-script step")
	}
	if !c.CanUndo() {
		t.Error("step was popped although nothing was replayed")
	}
}

func TestCoordinatorBoundedEvictionKeepsLockstep(t *testing.T) {
	const depth = 4
	sess, c := newSession(t, 2, depth)
	a, b := sess.scripts[0], sess.scripts[1]

	for i := int32(0); i < 10; i++ {
		multi := i%3 == 0
		c.Snapshot(AddAction, multi, a, true)
		a.add(i, 0)
		if multi {
			b.add(i, 0)
		}
		assertLockstep(t, c)
	}
	if got := len(c.UndoHistory()); got != depth {
		t.Fatalf("coordinator depth = %d, want %d", got, depth)
	}

	for {
		if _, ok := c.Undo(a); !ok {
			break
		}
		assertLockstep(t, c)
	}
	// Steps 6..9 survive; a had 6 actions before step 6.
	if len(a.actions) != 6 {
		t.Errorf("a has %d actions after full undo, want 6", len(a.actions))
	}
	// Steps 6 and 9 touched b; it had 2 actions before step 6.
	if len(b.actions) != 2 {
		t.Errorf("b has %d actions after full undo, want 2", len(b.actions))
	}
}

func TestCoordinatorSnapshotClearsRedoEverywhere(t *testing.T) {
	sess, c := newSession(t, 2, 10)
	a, b := sess.scripts[0], sess.scripts[1]

	c.Snapshot(AddAction, true, a, true)
	a.add(1, 1)
	b.add(1, 1)
	c.Undo(a)

	c.Snapshot(AddAction, false, a, true)
	if c.CanRedo() || b.hist.CanRedo() {
		t.Error("redo survived a new edit")
	}
	assertLockstep(t, c)
}

func TestCheckLockstepDetectsBypass(t *testing.T) {
	sess, c := newSession(t, 2, 10)
	c.Snapshot(AddAction, true, sess.scripts[0], true)
	sess.scripts[1].hist.Snapshot(true) // bypasses the coordinator

	bad := c.CheckLockstep()
	if len(bad) != 1 || bad[0] != sess.scripts[1].id {
		t.Errorf("CheckLockstep = %v, want [%s]", bad, sess.scripts[1].id)
	}
}

func TestUndoHistoryLabels(t *testing.T) {
	sess, c := newSession(t, 1, 10)
	c.Snapshot(AddAction, false, sess.scripts[0], true)
	c.Snapshot(InvertActions, true, sess.scripts[0], true)

	var got []string
	for _, ctx := range c.UndoHistory() {
		got = append(got, ctx.String())
	}
	want := []string{"Invert (all scripts)", "Add action"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("labels (-want +got):\n%s", diff)
	}
	if StateType(-1).String() != "Unknown" {
		t.Error("out of range state should be Unknown")
	}
}
