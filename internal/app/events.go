package app

import (
	"github.com/bethropolis/funscripter/internal/event"
	"github.com/bethropolis/funscripter/internal/logger"
)

// handleScriptSavedForStatus reports a save on the status line
func (a *App) handleScriptSavedForStatus(e event.Event) bool {
	if data, ok := e.Data.(event.ScriptSavedData); ok {
		a.SetStatusMessage("Saved %s", data.FilePath)
	}
	return false // Not consumed
}

// handleScriptLoadedForStatus reports an opened script on the status line
func (a *App) handleScriptLoadedForStatus(e event.Event) bool {
	data, ok := e.Data.(event.ScriptLoadedData)
	if !ok {
		logger.Warnf("App: Received ScriptLoaded event with unexpected data type: %T", e.Data)
		return false
	}
	a.SetStatusMessage("Opened %s", data.FilePath)
	return false
}

func (a *App) handleHistoryForStatus(e event.Event) bool {
	if data, ok := e.Data.(event.HistoryData); ok {
		verb := "Undo"
		if e.Type == event.TypeRedo {
			verb = "Redo"
		}
		a.SetStatusMessage("%s: %s", verb, data.Label)
	}
	return false
}
