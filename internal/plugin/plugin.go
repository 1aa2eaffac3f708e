// internal/plugin/plugin.go
package plugin

import (
	"github.com/bethropolis/funscripter/internal/event"
	"github.com/bethropolis/funscripter/internal/types"
	"github.com/google/uuid"
)

// CommandFunc defines the signature for commands registered by plugins.
// It takes arguments (e.g., from user input) and returns an error.
type CommandFunc func(args []string) error

// ScriptInfo describes a loaded script without exposing it.
type ScriptInfo struct {
	Index   int
	ID      uuid.UUID
	Name    string
	Path    string
	Unsaved bool
	Actions int
}

// EditorAPI defines the methods plugins can use to interact with the editor core.
// Methods that touch scripts must be called on the main loop; background
// goroutines hand work over with Post.
type EditorAPI interface {
	// --- Script Access (Read-Only) ---
	Scripts() []ScriptInfo
	ActiveScriptIndex() int
	ScriptActions(index int) []types.Action

	// --- Script Files ---
	SaveScriptCopy(index int, path string) error // Writes without touching the unsaved flag
	ReloadScript(path string) error              // Undoable reload of the script opened from path

	// --- Playback ---
	CurrentTimeMs() float64
	FrameTimeMs() float64

	// --- Main Loop ---
	Post(fn func())

	// --- Event Bus Interaction ---
	DispatchEvent(eventType event.Type, data interface{})
	SubscribeEvent(eventType event.Type, handler event.Handler) event.SubscriptionID
	UnsubscribeEvent(id event.SubscriptionID)

	// --- Command Registration ---
	RegisterCommand(name string, cmdFunc CommandFunc) error

	// --- Status ---
	SetStatusMessage(format string, args ...interface{})

	// --- Configuration ---
	GetPluginConfigValue(pluginName, key string) (interface{}, bool)

	// --- Extensions ---
	RunExtension(ext Extension) error
}

// Plugin defines the interface that all plugins must implement.
type Plugin interface {
	// Name returns the unique identifier name of the plugin.
	Name() string

	// Initialize is called once when the plugin is loaded.
	// Used for setup, subscribing to events, registering commands.
	Initialize(api EditorAPI) error

	// Shutdown is called once when the editor is closing.
	Shutdown() error
}
