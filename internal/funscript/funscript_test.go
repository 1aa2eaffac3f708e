package funscript

import (
	"errors"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/bethropolis/funscripter/internal/codec"
	"github.com/bethropolis/funscripter/internal/event"
	"github.com/bethropolis/funscripter/internal/types"
	"github.com/google/go-cmp/cmp"
)

func act(at, pos int32) types.Action { return types.NewAction(at, pos) }

func newScript(t *testing.T, actions ...types.Action) *Funscript {
	t.Helper()
	f := New()
	for _, a := range actions {
		f.AddAction(a)
	}
	return f
}

func assertSorted(t *testing.T, f *Funscript) {
	t.Helper()
	if !types.IsSortedByTime(f.Actions()) {
		t.Fatalf("actions not sorted: %v", f.Actions())
	}
}

func assertSelectionValid(t *testing.T, f *Funscript) {
	t.Helper()
	for _, s := range f.Selection() {
		if !f.HasAction(s) {
			t.Fatalf("selected %v is not in actions %v", s, f.Actions())
		}
	}
	if got, want := len(f.Selection()), f.SelectionCount(); got != want {
		t.Fatalf("Selection() has %d entries, SelectionCount() = %d", got, want)
	}
}

func TestSortednessUnderRandomEdits(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	f := New()
	for i := 0; i < 500; i++ {
		a := act(int32(rng.Intn(2000)), int32(rng.Intn(101)))
		switch rng.Intn(5) {
		case 0, 1:
			f.AddAction(a)
		case 2:
			if acts := f.Actions(); len(acts) > 0 {
				f.RemoveAction(acts[rng.Intn(len(acts))], true)
			}
		case 3:
			if acts := f.Actions(); len(acts) > 0 {
				f.EditAction(acts[rng.Intn(len(acts))], a)
			}
		case 4:
			f.PasteAction(a, 5)
		}
		assertSorted(t, f)
	}
}

func TestAddActionInsertsAfterEqualTimes(t *testing.T) {
	f := newScript(t, act(100, 1), act(100, 2), act(50, 0))
	f.AddAction(act(100, 3))
	want := []types.Action{act(50, 0), act(100, 1), act(100, 2), act(100, 3)}
	if diff := cmp.Diff(want, f.Actions()); diff != "" {
		t.Errorf("actions (-want +got):\n%s", diff)
	}
}

func TestSelectionValidAfterRemovals(t *testing.T) {
	f := newScript(t, act(0, 0), act(100, 50), act(200, 100), act(300, 0))
	f.SelectAll()

	f.RemoveAction(act(100, 50), true)
	assertSelectionValid(t, f)

	f.RemoveActions([]types.Action{act(200, 100)})
	assertSelectionValid(t, f)

	f.RemoveActionsInInterval(250, 400)
	assertSelectionValid(t, f)

	if diff := cmp.Diff([]types.Action{act(0, 0)}, f.Selection()); diff != "" {
		t.Errorf("selection (-want +got):\n%s", diff)
	}

	f.EditAction(act(0, 0), act(0, 70))
	assertSelectionValid(t, f)
	if f.HasSelection() {
		t.Error("edited value should no longer be selected")
	}
}

func TestRemoveActionMissingIsNoOp(t *testing.T) {
	f := newScript(t, act(0, 0))
	f.Update()
	f.RemoveAction(act(5, 5), true)
	if f.HasChanged() {
		t.Error("removing a missing action marked the script changed")
	}
	if f.EditAction(act(5, 5), act(5, 6)) {
		t.Error("EditAction on a missing action returned true")
	}
}

func TestEditActionKeepsTime(t *testing.T) {
	f := newScript(t, act(100, 10))
	if !f.EditAction(act(100, 10), act(900, 60)) {
		t.Fatal("EditAction returned false")
	}
	if diff := cmp.Diff([]types.Action{act(100, 60)}, f.Actions()); diff != "" {
		t.Errorf("actions (-want +got):\n%s", diff)
	}
}

func TestGetPositionAtTime(t *testing.T) {
	f := newScript(t, act(0, 0), act(1000, 100))
	tests := []struct {
		t    int32
		want int32
	}{
		{500, 50},
		{0, 0},
		{1000, 100},
		{2000, 100},
		{250, 25},
	}
	for _, tt := range tests {
		if got := f.GetPositionAtTime(tt.t); got != tt.want {
			t.Errorf("GetPositionAtTime(%d) = %d, want %d", tt.t, got, tt.want)
		}
	}

	if got := New().GetPositionAtTime(10); got != 0 {
		t.Errorf("empty script = %d, want 0", got)
	}
	if got := newScript(t, act(500, 42)).GetPositionAtTime(0); got != 42 {
		t.Errorf("single action = %d, want 42", got)
	}
	if got := newScript(t, act(500, 30), act(600, 90)).GetPositionAtTime(100); got != 30 {
		t.Errorf("before first action = %d, want 30", got)
	}
}

func TestGetActionAtTimeEarlyExit(t *testing.T) {
	f := newScript(t, act(100, 0), act(200, 50), act(300, 100))
	got, ok := f.GetActionAtTime(210, 60)
	if !ok || got != act(200, 50) {
		t.Errorf("GetActionAtTime(210, 60) = %v, %v; want (200,50)", got, ok)
	}
	if _, ok := f.GetActionAtTime(150, 10); ok {
		t.Error("expected no action within 10ms of 150")
	}
	// Equidistant: the later action wins.
	if got, _ := f.GetActionAtTime(150, 50); got != act(200, 50) {
		t.Errorf("tie resolved to %v, want (200,50)", got)
	}
}

func TestNeighbours(t *testing.T) {
	f := newScript(t, act(100, 0), act(200, 50), act(300, 100))
	if a, ok := f.GetNextActionAhead(200); !ok || a.At != 300 {
		t.Errorf("next ahead of 200 = %v, %v", a, ok)
	}
	if a, ok := f.GetPreviousActionBehind(200); !ok || a.At != 100 {
		t.Errorf("previous behind 200 = %v, %v", a, ok)
	}
	if _, ok := f.GetPreviousActionBehind(100); ok {
		t.Error("nothing is behind the first action")
	}
	if a, _ := f.GetClosestAction(240); a.At != 200 {
		t.Errorf("closest to 240 = %v", a)
	}
	f.SelectAction(act(300, 100))
	if a, ok := f.GetClosestActionSelection(0); !ok || a.At != 300 {
		t.Errorf("closest selected = %v, %v", a, ok)
	}
}

func TestPasteActionReplacesSameTime(t *testing.T) {
	f := newScript(t, act(100, 10), act(200, 20))
	f.PasteAction(act(100, 90), 1)
	f.PasteAction(act(150, 50), 1)
	want := []types.Action{act(100, 90), act(150, 50), act(200, 20)}
	if diff := cmp.Diff(want, f.Actions()); diff != "" {
		t.Errorf("actions (-want +got):\n%s", diff)
	}
}

func TestSelectTimeToggles(t *testing.T) {
	f := newScript(t, act(0, 0), act(100, 0), act(200, 0), act(300, 0))
	f.SelectTime(0, 150, true)
	f.SelectTime(100, 250, false)
	want := []types.Action{act(0, 0), act(200, 0)}
	if diff := cmp.Diff(want, f.Selection()); diff != "" {
		t.Errorf("selection (-want +got):\n%s", diff)
	}
	if f.ToggleSelection(act(999, 0)) {
		t.Error("missing action became selected")
	}
}

func TestSelectTopBottomMid(t *testing.T) {
	zigzag := []types.Action{act(0, 0), act(100, 100), act(200, 0), act(300, 100), act(400, 0)}

	f := newScript(t, zigzag...)
	f.SelectAll()
	f.SelectTopActions()
	if diff := cmp.Diff([]types.Action{act(100, 100), act(300, 100)}, f.Selection()); diff != "" {
		t.Errorf("top (-want +got):\n%s", diff)
	}

	f.SelectAll()
	f.SelectBottomActions()
	if diff := cmp.Diff([]types.Action{act(0, 0), act(200, 0), act(400, 0)}, f.Selection()); diff != "" {
		t.Errorf("bottom (-want +got):\n%s", diff)
	}

	g := newScript(t, act(0, 0), act(100, 50), act(200, 100), act(300, 50), act(400, 0))
	g.SelectAll()
	g.SelectMidActions()
	if diff := cmp.Diff([]types.Action{act(100, 50), act(300, 50)}, g.Selection()); diff != "" {
		t.Errorf("mid (-want +got):\n%s", diff)
	}
}

func TestMoveSelectionTime(t *testing.T) {
	f := newScript(t, act(100, 0), act(200, 50), act(300, 100))
	f.SelectAction(act(100, 0))
	f.SelectAction(act(200, 50))

	f.MoveSelectionTime(250)
	assertSorted(t, f)
	assertSelectionValid(t, f)
	want := []types.Action{act(300, 100), act(350, 0), act(450, 50)}
	if diff := cmp.Diff(want, f.Actions()); diff != "" {
		t.Errorf("actions (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]types.Action{act(350, 0), act(450, 50)}, f.Selection()); diff != "" {
		t.Errorf("selection (-want +got):\n%s", diff)
	}

	// Everything selected, offset larger than the first time.
	f.SelectAll()
	f.MoveSelectionTime(-1000)
	if first := f.Actions()[0]; first.At != 0 {
		t.Errorf("first action moved to %d, want 0", first.At)
	}
	if f.SelectionCount() != 3 {
		t.Errorf("fast path lost selection: %v", f.Selection())
	}
}

func TestRemoveSelectedKeepsUnselectedTwin(t *testing.T) {
	f := newScript(t, act(100, 50), act(200, 50), act(300, 0))
	f.SelectAction(act(100, 50))

	// The moved action lands on an identical, unselected one.
	f.MoveSelectionTime(100)
	assertSelectionValid(t, f)
	want := []types.Action{act(200, 50), act(200, 50), act(300, 0)}
	if diff := cmp.Diff(want, f.Actions()); diff != "" {
		t.Fatalf("actions (-want +got):\n%s", diff)
	}
	if n := f.SelectionCount(); n != 1 {
		t.Fatalf("SelectionCount() = %d, want 1", n)
	}

	f.RemoveSelectedActions()
	want = []types.Action{act(200, 50), act(300, 0)}
	if diff := cmp.Diff(want, f.Actions()); diff != "" {
		t.Errorf("actions (-want +got):\n%s", diff)
	}
}

func TestSelectAllCoversEqualActions(t *testing.T) {
	f := newScript(t, act(100, 50), act(100, 50), act(200, 0))
	f.SelectAll()
	if n := f.SelectionCount(); n != 3 {
		t.Fatalf("SelectionCount() = %d, want 3", n)
	}

	f.MoveSelectionTime(50)
	want := []types.Action{act(150, 50), act(150, 50), act(250, 0)}
	if diff := cmp.Diff(want, f.Actions()); diff != "" {
		t.Errorf("actions (-want +got):\n%s", diff)
	}

	f.DeselectAction(act(250, 0))
	f.MoveAction(act(150, 50), act(160, 50))
	assertSelectionValid(t, f)
	if diff := cmp.Diff([]types.Action{act(150, 50), act(160, 50)}, f.Selection()); diff != "" {
		t.Errorf("selection (-want +got):\n%s", diff)
	}
}

func TestMoveSelectionTimeStopsAtMaxTime(t *testing.T) {
	const maxTime = 1<<31 - 1
	f := newScript(t, act(100, 0), act(1000, 50))
	f.SelectAll()

	f.MoveSelectionTime(maxTime)
	want := []types.Action{act(maxTime-900, 0), act(maxTime, 50)}
	if diff := cmp.Diff(want, f.Actions()); diff != "" {
		t.Errorf("actions (-want +got):\n%s", diff)
	}
}

func TestMoveSelectionPositionClamps(t *testing.T) {
	f := newScript(t, act(0, 95), act(100, 50))
	f.SelectAction(act(0, 95))
	f.MoveSelectionPosition(10)
	want := []types.Action{act(0, 100), act(100, 50)}
	if diff := cmp.Diff(want, f.Actions()); diff != "" {
		t.Errorf("actions (-want +got):\n%s", diff)
	}
	if !f.IsSelected(act(0, 100)) {
		t.Error("moved action should stay selected")
	}
}

func TestEqualizeAndInvert(t *testing.T) {
	f := newScript(t, act(0, 10), act(10, 20), act(300, 30))
	f.SelectAll()
	f.EqualizeSelection()
	want := []types.Action{act(0, 10), act(150, 20), act(300, 30)}
	if diff := cmp.Diff(want, f.Actions()); diff != "" {
		t.Errorf("equalize (-want +got):\n%s", diff)
	}

	f.InvertSelection()
	want = []types.Action{act(0, 90), act(150, 80), act(300, 70)}
	if diff := cmp.Diff(want, f.Actions()); diff != "" {
		t.Errorf("invert (-want +got):\n%s", diff)
	}
}

func TestGetLastStroke(t *testing.T) {
	f := newScript(t, act(0, 0), act(100, 100), act(200, 0), act(300, 100))
	want := []types.Action{act(100, 100), act(200, 0), act(300, 100)}
	if diff := cmp.Diff(want, f.GetLastStroke(310)); diff != "" {
		t.Errorf("stroke (-want +got):\n%s", diff)
	}
	if got := newScript(t, act(0, 0)).GetLastStroke(0); got != nil {
		t.Errorf("single action stroke = %v, want nil", got)
	}
}

func TestUpdateDispatchesOncePerTick(t *testing.T) {
	events := event.NewManager()
	f := New(WithEventManager(events))
	count := 0
	events.Subscribe(event.TypeActionsChanged, func(e event.Event) bool {
		if data, ok := e.Data.(event.ActionsChangedData); !ok || data.ScriptID != f.ID() {
			t.Errorf("unexpected payload %#v", e.Data)
		}
		count++
		return false
	})

	f.AddAction(act(0, 0))
	f.AddAction(act(10, 10))
	f.RemoveAction(act(0, 0), true)
	f.Update()
	f.Update()

	if count != 1 {
		t.Errorf("dispatched %d events, want 1", count)
	}
}

func TestUndoRedoRoundTrip(t *testing.T) {
	f := newScript(t, act(0, 0), act(100, 100))
	f.SelectAction(act(0, 0))
	before := f.CaptureState()

	f.History().Snapshot(true)
	f.AddAction(act(50, 50))
	after := f.CaptureState()

	f.History().Undo()
	if diff := cmp.Diff(before, f.CaptureState()); diff != "" {
		t.Errorf("undo (-want +got):\n%s", diff)
	}
	f.History().Redo()
	if diff := cmp.Diff(after, f.CaptureState()); diff != "" {
		t.Errorf("redo (-want +got):\n%s", diff)
	}
}

func TestSaveOpenRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scene.funscript")

	f := newScript(t, act(0, 0), act(500, 120), act(1000, -20), act(250, 50))
	f.AddRawAction(act(5, 5))
	f.SetMetadata(codec.Metadata{Title: "Scene", Tags: []string{"slow"}})
	if err := f.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if f.HasUnsavedEdits() {
		t.Error("Save did not clear the unsaved flag")
	}

	g := New()
	if err := g.Open(path); err != nil {
		t.Fatalf("Open: %v", err)
	}
	want := []types.Action{act(0, 0), act(250, 50), act(500, 100), act(1000, 0)}
	if diff := cmp.Diff(want, g.Actions()); diff != "" {
		t.Errorf("actions (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]types.Action{act(5, 5)}, g.RawActions()); diff != "" {
		t.Errorf("raw actions (-want +got):\n%s", diff)
	}
	if g.Metadata().Title != "Scene" || g.Path() != path || g.Name() != "scene" {
		t.Errorf("metadata/path not restored: %+v %q", g.Metadata(), g.Path())
	}
}

func TestOpenMalformedKeepsState(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.funscript")
	if err := os.WriteFile(path, []byte(`{"actions":"nope"}`), 0644); err != nil {
		t.Fatal(err)
	}

	f := newScript(t, act(0, 10))
	err := f.Open(path)
	if err == nil {
		t.Fatal("expected error")
	}
	var pe *codec.ParseError
	if !errors.As(err, &pe) {
		t.Errorf("error %v does not wrap *codec.ParseError", err)
	}
	if diff := cmp.Diff([]types.Action{act(0, 10)}, f.Actions()); diff != "" {
		t.Errorf("state changed (-want +got):\n%s", diff)
	}
}

func TestSaveMinimal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "min.funscript")
	f := newScript(t, act(10, 20))
	if err := f.SaveMinimal(path); err != nil {
		t.Fatalf("SaveMinimal: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := string(data), `{"actions":[{"at":10,"pos":20}]}`; got != want {
		t.Errorf("got %s, want %s", got, want)
	}
}
