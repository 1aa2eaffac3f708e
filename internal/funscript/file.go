package funscript

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bethropolis/funscripter/internal/codec"
	"github.com/bethropolis/funscripter/internal/logger"
	"github.com/bethropolis/funscripter/internal/types"
)

// Open reads and decodes path. On failure the current state is kept and the
// error wraps a *codec.ParseError for malformed input.
func (f *Funscript) Open(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file '%s': %w", path, err)
	}
	if err := f.Load(data); err != nil {
		return fmt.Errorf("failed to parse '%s': %w", path, err)
	}
	f.SetPath(path)
	logger.Infof("opened %s (%d actions)", path, f.Len())
	return nil
}

// Load replaces the script with a decoded document. The selection and undo
// history are reset.
func (f *Funscript) Load(data []byte) error {
	file, err := codec.Decode(data)
	if err != nil {
		return err
	}

	f.mu.Lock()
	clear(f.selected)
	f.replaceFileLocked(file)
	f.mu.Unlock()

	f.history.Clear()
	return nil
}

// ReplaceFile swaps in a decoded document: header, metadata, both tracks
// and the fields Save carries over. The selection is pruned and the undo
// history kept, so the swap can be recorded as an undo step. The script
// counts as saved afterwards.
func (f *Funscript) ReplaceFile(file *codec.File) {
	f.mu.Lock()
	f.replaceFileLocked(file)
	f.pruneSelectionLocked()
	f.mu.Unlock()
}

func (f *Funscript) replaceFileLocked(file *codec.File) {
	f.file = file
	f.actions = file.Actions
	f.rawActions = file.RawActions
	file.Actions, file.RawActions = nil, nil
	f.changed = true
	f.unsaved = false
}

// Save writes the script to path, or to the current path when path is empty,
// and clears the unsaved flag.
func (f *Funscript) Save(path string) error {
	if path == "" {
		path = f.Path()
	}
	if path == "" {
		return errors.New("no file path specified for saving")
	}
	if err := f.SaveCopy(path); err != nil {
		return err
	}

	f.mu.Lock()
	f.path = path
	f.unsaved = false
	f.mu.Unlock()
	logger.Infof("saved %s", path)
	return nil
}

// SaveCopy writes the script to path without changing its path or unsaved flag.
func (f *Funscript) SaveCopy(path string) error {
	data, err := f.Encode()
	if err != nil {
		return err
	}
	return writeFile(path, data)
}

// SaveMinimal writes only the actions to path.
func (f *Funscript) SaveMinimal(path string) error {
	data, err := codec.EncodeMinimal(f.Actions())
	if err != nil {
		return err
	}
	return writeFile(path, data)
}

// Encode returns the full document with sorted, clamped actions.
func (f *Funscript) Encode() ([]byte, error) {
	f.mu.Lock()
	types.SortByTime(f.actions)
	out := *f.file
	out.Actions = append([]types.Action(nil), f.actions...)
	out.RawActions = append([]types.Action(nil), f.rawActions...)
	f.mu.Unlock()
	return codec.Encode(&out)
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory '%s': %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write file '%s': %w", path, err)
	}
	return nil
}
