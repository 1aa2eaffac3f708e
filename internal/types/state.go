// internal/types/state.go
package types

// ScriptState is a full capture of one script's editable state.
// It is what the undo system stores and restores.
type ScriptState struct {
	Actions   []Action
	Selection []Action
}

// Clone returns a deep copy so the capture never aliases live storage.
func (s ScriptState) Clone() ScriptState {
	return ScriptState{
		Actions:   cloneActions(s.Actions),
		Selection: cloneActions(s.Selection),
	}
}

func cloneActions(in []Action) []Action {
	if in == nil {
		return nil
	}
	out := make([]Action, len(in))
	copy(out, in)
	return out
}
