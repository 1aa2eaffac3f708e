package clipboard

import (
	"errors"
	"testing"

	"github.com/bethropolis/funscripter/internal/types"
	"github.com/google/go-cmp/cmp"
)

func TestInternalRegister(t *testing.T) {
	m := NewManager(false)
	if !m.Empty() {
		t.Fatal("new manager should be empty")
	}
	in := []types.Action{{At: 200, Pos: 1}, {At: 100, Pos: 2}}
	if err := m.Copy(in); err != nil {
		t.Fatalf("Copy: %v", err)
	}
	in[0].Pos = 99 // caller's slice must not alias the register

	want := []types.Action{{At: 100, Pos: 2}, {At: 200, Pos: 1}}
	if diff := cmp.Diff(want, m.Contents()); diff != "" {
		t.Errorf("contents (-want +got):\n%s", diff)
	}
}

func TestSystemClipboardRoundTrip(t *testing.T) {
	var system string
	m := NewManager(true)
	m.SetSystemAccess(
		func() (string, error) { return system, nil },
		func(s string) error { system = s; return nil },
	)

	if err := m.Copy([]types.Action{{At: 10, Pos: 20}}); err != nil {
		t.Fatalf("Copy: %v", err)
	}
	if system != `{"actions":[{"at":10,"pos":20}]}` {
		t.Errorf("system clipboard = %s", system)
	}

	// Another application put a script on the clipboard.
	system = `{"actions":[{"at":5,"pos":50},{"at":1,"pos":0}]}`
	want := []types.Action{{At: 1, Pos: 0}, {At: 5, Pos: 50}}
	if diff := cmp.Diff(want, m.Contents()); diff != "" {
		t.Errorf("contents (-want +got):\n%s", diff)
	}

	// Plain text falls back to the register.
	system = "hello"
	if diff := cmp.Diff([]types.Action{{At: 10, Pos: 20}}, m.Contents()); diff != "" {
		t.Errorf("fallback (-want +got):\n%s", diff)
	}
}

func TestSystemWriteFailureKeepsRegister(t *testing.T) {
	m := NewManager(true)
	m.SetSystemAccess(
		func() (string, error) { return "", errors.New("no clipboard") },
		func(string) error { return errors.New("no clipboard") },
	)
	if err := m.Copy([]types.Action{{At: 1, Pos: 1}}); err == nil {
		t.Error("expected write error")
	}
	if len(m.Contents()) != 1 {
		t.Error("register not updated")
	}
}
