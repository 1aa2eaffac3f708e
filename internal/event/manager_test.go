package event

import "testing"

func TestDispatchOrderAndConsume(t *testing.T) {
	m := NewManager()
	var calls []int
	m.Subscribe(TypeActionsChanged, func(Event) bool { calls = append(calls, 1); return false })
	m.Subscribe(TypeActionsChanged, func(Event) bool { calls = append(calls, 2); return true })
	m.Subscribe(TypeActionsChanged, func(Event) bool { calls = append(calls, 3); return false })

	m.Dispatch(TypeActionsChanged, nil)

	if len(calls) != 2 || calls[0] != 1 || calls[1] != 2 {
		t.Fatalf("calls = %v, want [1 2]", calls)
	}
}

func TestUnsubscribe(t *testing.T) {
	m := NewManager()
	count := 0
	id := m.Subscribe(TypeScriptSaved, func(Event) bool { count++; return false })

	m.Dispatch(TypeScriptSaved, ScriptSavedData{FilePath: "a.funscript"})
	m.Unsubscribe(id)
	m.Unsubscribe(id) // second call is a no-op
	m.Dispatch(TypeScriptSaved, ScriptSavedData{FilePath: "a.funscript"})

	if count != 1 {
		t.Errorf("handler called %d times, want 1", count)
	}
}

func TestUnsubscribeDuringDispatch(t *testing.T) {
	m := NewManager()
	var id SubscriptionID
	calls := 0
	id = m.Subscribe(TypeUndo, func(Event) bool {
		calls++
		m.Unsubscribe(id)
		return false
	})
	m.Subscribe(TypeUndo, func(Event) bool { calls++; return false })

	m.Dispatch(TypeUndo, HistoryData{Label: "Add action"})
	if calls != 2 {
		t.Fatalf("calls = %d, want 2", calls)
	}
	m.Dispatch(TypeUndo, HistoryData{})
	if calls != 3 {
		t.Fatalf("calls = %d after unsubscribe, want 3", calls)
	}
}

func TestTypeString(t *testing.T) {
	if TypeActionsChanged.String() != "ActionsChanged" {
		t.Errorf("got %q", TypeActionsChanged.String())
	}
	if Type(999).String() != "Unknown" {
		t.Errorf("got %q", Type(999).String())
	}
}
