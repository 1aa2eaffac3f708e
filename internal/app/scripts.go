package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bethropolis/funscripter/internal/codec"
	"github.com/bethropolis/funscripter/internal/core/history"
	"github.com/bethropolis/funscripter/internal/event"
	"github.com/bethropolis/funscripter/internal/funscript"
	"github.com/bethropolis/funscripter/internal/logger"
)

// ErrNoSuchScript is returned for an out of range script index.
var ErrNoSuchScript = errors.New("no such script")

// LoadedScripts lists the scripts for the undo coordinator, root first.
func (a *App) LoadedScripts() []history.Document {
	a.mu.RLock()
	defer a.mu.RUnlock()
	docs := make([]history.Document, len(a.scripts))
	for i, s := range a.scripts {
		docs[i] = s
	}
	return docs
}

// Scripts returns the loaded scripts, root first.
func (a *App) Scripts() []*funscript.Funscript {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return append([]*funscript.Funscript(nil), a.scripts...)
}

// Script returns the script at index.
func (a *App) Script(index int) (*funscript.Funscript, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if index < 0 || index >= len(a.scripts) {
		return nil, fmt.Errorf("%w: %d", ErrNoSuchScript, index)
	}
	return a.scripts[index], nil
}

// RootScript returns the first loaded script.
func (a *App) RootScript() *funscript.Funscript {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.scripts[0]
}

// ActiveScript returns the script edits apply to.
func (a *App) ActiveScript() *funscript.Funscript {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.scripts[a.active]
}

// ActiveIndex returns the index of the active script.
func (a *App) ActiveIndex() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.active
}

// SetActive makes the script at index the target of edits.
func (a *App) SetActive(index int) error {
	a.mu.Lock()
	if index < 0 || index >= len(a.scripts) {
		a.mu.Unlock()
		return fmt.Errorf("%w: %d", ErrNoSuchScript, index)
	}
	prev := a.active
	a.active = index
	a.mu.Unlock()

	if prev == index {
		return nil
	}
	a.eventManager.Dispatch(event.TypeActiveChanged, event.ActiveChangedData{Previous: prev, Current: index})
	return nil
}

// Open replaces every loaded script with the one at path, which becomes the
// root. On failure the session is left as it was.
func (a *App) Open(path string) error {
	script := a.newScript()
	if err := script.Open(path); err != nil {
		return err
	}

	a.mu.Lock()
	a.scripts = []*funscript.Funscript{script}
	a.active = 0
	a.mu.Unlock()

	// Contexts recorded against the previous scripts cannot be replayed.
	a.undo.Clear()
	a.eventManager.Dispatch(event.TypeScriptLoaded, event.ScriptLoadedData{ScriptID: script.ID(), FilePath: path})
	return nil
}

// AddScript opens path next to the loaded scripts and returns its index.
func (a *App) AddScript(path string) (int, error) {
	for _, s := range a.Scripts() {
		if s.Path() != "" && sameFile(s.Path(), path) {
			return -1, fmt.Errorf("script '%s' is already loaded", path)
		}
	}
	script := a.newScript()
	if err := script.Open(path); err != nil {
		return -1, err
	}

	a.mu.Lock()
	a.scripts = append(a.scripts, script)
	index := len(a.scripts) - 1
	a.mu.Unlock()

	a.undo.Clear()
	a.eventManager.Dispatch(event.TypeScriptLoaded, event.ScriptLoadedData{ScriptID: script.ID(), FilePath: path})
	return index, nil
}

// NewScript adds an empty script that will be saved to path.
func (a *App) NewScript(path string) int {
	script := a.newScript()
	script.SetPath(path)

	a.mu.Lock()
	a.scripts = append(a.scripts, script)
	index := len(a.scripts) - 1
	a.mu.Unlock()

	a.undo.Clear()
	return index
}

// CloseScript unloads the script at index. Closing the root leaves an empty
// untitled root behind.
func (a *App) CloseScript(index int) error {
	a.mu.Lock()
	if index < 0 || index >= len(a.scripts) {
		a.mu.Unlock()
		return fmt.Errorf("%w: %d", ErrNoSuchScript, index)
	}
	closed := a.scripts[index]
	if len(a.scripts) == 1 {
		a.scripts = []*funscript.Funscript{a.newScript()}
	} else {
		a.scripts = append(a.scripts[:index:index], a.scripts[index+1:]...)
	}
	if a.active >= len(a.scripts) || a.active == index {
		a.active = 0
	} else if a.active > index {
		a.active--
	}
	a.mu.Unlock()

	if closed.HasUnsavedEdits() {
		logger.Warnf("App: closed %s with unsaved changes", closed.Name())
	}
	a.undo.Clear()
	a.eventManager.Dispatch(event.TypeScriptClosed, event.ScriptClosedData{ScriptID: closed.ID()})
	return nil
}

// Save writes the script at index to its own path.
func (a *App) Save(index int) error {
	return a.SaveAs(index, "")
}

// SaveAs writes the script at index to path, which becomes its path.
func (a *App) SaveAs(index int, path string) error {
	script, err := a.Script(index)
	if err != nil {
		return err
	}
	if err := script.Save(path); err != nil {
		return err
	}
	a.eventManager.Dispatch(event.TypeScriptSaved, event.ScriptSavedData{ScriptID: script.ID(), FilePath: script.Path()})
	return nil
}

// SaveAll writes every script that has a path. The first error is returned
// after all scripts were tried.
func (a *App) SaveAll() error {
	var firstErr error
	for i, s := range a.Scripts() {
		if s.Path() == "" {
			continue
		}
		if err := a.Save(i); err != nil {
			logger.Errorf("App: saving %s failed: %v", s.Name(), err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// ReloadScript re-reads the script opened from path. The reload is a single
// undo step, so the on-disk version can be undone.
func (a *App) ReloadScript(path string) error {
	index := -1
	for i, s := range a.Scripts() {
		if s.Path() != "" && sameFile(s.Path(), path) {
			index = i
			break
		}
	}
	if index < 0 {
		return fmt.Errorf("script '%s' is not loaded", path)
	}
	script, _ := a.Script(index)

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file '%s': %w", path, err)
	}
	file, err := codec.Decode(data)
	if err != nil {
		return fmt.Errorf("failed to parse '%s': %w", path, err)
	}

	// Recorded over every script: undo must land on this script even when
	// another one is active by then.
	a.undo.Snapshot(history.ReloadFromDisk, true, script, true)
	script.ReplaceFile(file)
	logger.Infof("App: reloaded %s from disk (%d actions)", script.Name(), script.Len())
	return nil
}

func sameFile(a, b string) bool {
	return filepath.Clean(a) == filepath.Clean(b)
}
