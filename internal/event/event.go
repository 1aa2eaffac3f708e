// internal/event/events.go
package event

import "github.com/google/uuid"

// Type identifies the kind of event.
type Type int

// Define specific event types.
const (
	TypeUnknown Type = iota

	// Document Events
	TypeActionsChanged // Fired at most once per update tick after a script's actions changed
	TypeScriptLoaded   // Fired after a script is successfully opened
	TypeScriptSaved    // Fired after a script is successfully saved
	TypeScriptClosed   // Fired after a script is removed from the session
	TypeActiveChanged  // Fired when the active script index changes

	// History Events
	TypeUndo // Fired after an undo step was applied
	TypeRedo // Fired after a redo step was applied

	// Application Lifecycle Events
	TypeAppReady // Fired when the application is fully initialized
	TypeAppQuit  // Fired just before application termination begins
)

var typeNames = map[Type]string{
	TypeUnknown:        "Unknown",
	TypeActionsChanged: "ActionsChanged",
	TypeScriptLoaded:   "ScriptLoaded",
	TypeScriptSaved:    "ScriptSaved",
	TypeScriptClosed:   "ScriptClosed",
	TypeActiveChanged:  "ActiveChanged",
	TypeUndo:           "Undo",
	TypeRedo:           "Redo",
	TypeAppReady:       "AppReady",
	TypeAppQuit:        "AppQuit",
}

func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return "Unknown"
}

// Event is the structure passed through the event bus.
type Event struct {
	Type Type        // The kind of event
	Data interface{} // Payload carrying event-specific data
}

// --- Specific Event Data Structures ---

// ActionsChangedData identifies the script whose actions changed.
type ActionsChangedData struct {
	ScriptID uuid.UUID
}

// ScriptLoadedData contains info about the loaded script.
type ScriptLoadedData struct {
	ScriptID uuid.UUID
	FilePath string
}

// ScriptSavedData contains info about the saved script.
type ScriptSavedData struct {
	ScriptID uuid.UUID
	FilePath string
}

// ScriptClosedData identifies the removed script.
type ScriptClosedData struct {
	ScriptID uuid.UUID
}

// ActiveChangedData carries the previous and new active index.
type ActiveChangedData struct {
	Previous int
	Current  int
}

// HistoryData describes the undo or redo step that was applied.
type HistoryData struct {
	Label string
	Multi bool
}

// AppQuitData could contain exit code or reason later.
type AppQuitData struct{}

// AppReadyData could contain initial config or state later.
type AppReadyData struct{}
