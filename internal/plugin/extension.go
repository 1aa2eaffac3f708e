package plugin

import "github.com/bethropolis/funscripter/internal/types"

// ExtAction is an action as seen by an extension.
type ExtAction struct {
	At       int32 `json:"at"`
	Pos      int32 `json:"pos"`
	Selected bool  `json:"selected"`
}

// ScriptContext is one script handed to an extension.
type ScriptContext struct {
	Name    string      `json:"name"`
	Actions []ExtAction `json:"actions"`
}

// Context is the copy of the session an extension works on. Whatever the
// extension leaves in Scripts replaces the scripts' actions and selection
// as a single undo step.
type Context struct {
	ActiveIndex   int             `json:"activeIndex"`
	CurrentTimeMs float64         `json:"currentTimeMs"`
	FrameTimeMs   float64         `json:"frameTimeMs"`
	Scripts       []ScriptContext `json:"scripts"`
}

// Extension bulk-edits scripts through a Context.
type Extension interface {
	Name() string
	Run(ctx *Context) error
}

// ExtensionFunc adapts a function to the Extension interface.
type ExtensionFunc struct {
	ExtName string
	Fn      func(ctx *Context) error
}

func (e ExtensionFunc) Name() string            { return e.ExtName }
func (e ExtensionFunc) Run(ctx *Context) error { return e.Fn(ctx) }

// NewScriptContext builds the extension view of a script.
func NewScriptContext(name string, actions, selection []types.Action) ScriptContext {
	selected := make(map[types.Action]int, len(selection))
	for _, a := range selection {
		selected[a]++
	}
	sc := ScriptContext{Name: name, Actions: make([]ExtAction, len(actions))}
	for i, a := range actions {
		sel := selected[a] > 0
		if sel {
			selected[a]--
		}
		sc.Actions[i] = ExtAction{At: a.At, Pos: a.Pos, Selected: sel}
	}
	return sc
}

// Split returns the actions and the selected subset, dropping entries with
// a negative time and clamping positions.
func (sc ScriptContext) Split() (actions, selection []types.Action) {
	actions = make([]types.Action, 0, len(sc.Actions))
	for _, ea := range sc.Actions {
		if ea.At < 0 {
			continue
		}
		a := types.NewAction(ea.At, ea.Pos).Clamped()
		actions = append(actions, a)
		if ea.Selected {
			selection = append(selection, a)
		}
	}
	return actions, selection
}
