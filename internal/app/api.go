// internal/app/api.go
package app

import (
	"github.com/bethropolis/funscripter/internal/event"
	"github.com/bethropolis/funscripter/internal/plugin"
	"github.com/bethropolis/funscripter/internal/types"
)

// Ensure appEditorAPI implements the plugin.EditorAPI interface.
var _ plugin.EditorAPI = (*appEditorAPI)(nil)

// appEditorAPI provides the concrete implementation of the EditorAPI interface.
type appEditorAPI struct {
	app *App // Reference back to the main application
}

// newEditorAPI creates a new API adapter instance.
func newEditorAPI(app *App) *appEditorAPI {
	return &appEditorAPI{app: app}
}

// --- Script Access ---

func (api *appEditorAPI) Scripts() []plugin.ScriptInfo {
	scripts := api.app.Scripts()
	out := make([]plugin.ScriptInfo, len(scripts))
	for i, s := range scripts {
		out[i] = plugin.ScriptInfo{
			Index:   i,
			ID:      s.ID(),
			Name:    s.Name(),
			Path:    s.Path(),
			Unsaved: s.HasUnsavedEdits(),
			Actions: s.Len(),
		}
	}
	return out
}

func (api *appEditorAPI) ActiveScriptIndex() int {
	return api.app.ActiveIndex()
}

func (api *appEditorAPI) ScriptActions(index int) []types.Action {
	s, err := api.app.Script(index)
	if err != nil {
		return nil
	}
	return s.Actions()
}

// --- Script Files ---

func (api *appEditorAPI) SaveScriptCopy(index int, path string) error {
	s, err := api.app.Script(index)
	if err != nil {
		return err
	}
	return s.SaveCopy(path)
}

func (api *appEditorAPI) ReloadScript(path string) error {
	return api.app.ReloadScript(path)
}

// --- Playback ---

func (api *appEditorAPI) CurrentTimeMs() float64 {
	return api.app.clock.CurrentTimeMs()
}

func (api *appEditorAPI) FrameTimeMs() float64 {
	return api.app.clock.FrameTimeMs()
}

// --- Main Loop ---

func (api *appEditorAPI) Post(fn func()) {
	api.app.Post(fn)
}

// --- Event Bus Interaction ---

func (api *appEditorAPI) DispatchEvent(eventType event.Type, data interface{}) {
	api.app.eventManager.Dispatch(eventType, data)
}

func (api *appEditorAPI) SubscribeEvent(eventType event.Type, handler event.Handler) event.SubscriptionID {
	return api.app.eventManager.Subscribe(eventType, handler)
}

func (api *appEditorAPI) UnsubscribeEvent(id event.SubscriptionID) {
	api.app.eventManager.Unsubscribe(id)
}

// --- Command Registration ---

func (api *appEditorAPI) RegisterCommand(name string, cmdFunc plugin.CommandFunc) error {
	return api.app.RegisterCommand(name, cmdFunc)
}

// --- Status ---

func (api *appEditorAPI) SetStatusMessage(format string, args ...interface{}) {
	api.app.SetStatusMessage(format, args...)
}

// --- Configuration ---

func (api *appEditorAPI) GetPluginConfigValue(pluginName, key string) (interface{}, bool) {
	return api.app.cfg.PluginValue(pluginName, key)
}

// --- Extensions ---

func (api *appEditorAPI) RunExtension(ext plugin.Extension) error {
	return api.app.RunExtension(ext)
}
