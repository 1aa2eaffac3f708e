// Package clipboard holds copied actions for cut, copy and paste.
package clipboard

import (
	"fmt"
	"sync"

	"github.com/atotto/clipboard"
	"github.com/bethropolis/funscripter/internal/codec"
	"github.com/bethropolis/funscripter/internal/logger"
	"github.com/bethropolis/funscripter/internal/types"
)

// Manager keeps the last copied actions in an internal register and, when
// enabled, mirrors them to the system clipboard as minimal funscript JSON.
type Manager struct {
	mu        sync.Mutex
	copied    []types.Action
	useSystem bool

	readSystem  func() (string, error)
	writeSystem func(string) error
}

// NewManager creates a new clipboard manager
func NewManager(useSystem bool) *Manager {
	if useSystem && clipboard.Unsupported {
		logger.Warnf("ClipboardManager: System clipboard unsupported here, using internal register")
		useSystem = false
	}
	return &Manager{
		useSystem:   useSystem,
		readSystem:  clipboard.ReadAll,
		writeSystem: clipboard.WriteAll,
	}
}

// SetSystemAccess replaces the system clipboard functions and turns
// mirroring on.
func (m *Manager) SetSystemAccess(read func() (string, error), write func(string) error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.readSystem, m.writeSystem = read, write
	m.useSystem = true
}

// Copy stores a time ordered copy of actions. The internal register is
// updated even when writing the system clipboard fails.
func (m *Manager) Copy(actions []types.Action) error {
	if len(actions) == 0 {
		return nil
	}
	copied := append([]types.Action(nil), actions...)
	types.SortByTime(copied)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.copied = copied
	logger.Debugf("ClipboardManager: Copied %d action(s)", len(copied))

	if !m.useSystem || m.writeSystem == nil {
		return nil
	}
	data, err := codec.EncodeMinimal(copied)
	if err != nil {
		return err
	}
	if err := m.writeSystem(string(data)); err != nil {
		return fmt.Errorf("failed to write system clipboard: %w", err)
	}
	return nil
}

// Contents returns the actions to paste, in time order. With the system
// clipboard enabled, a funscript on it takes precedence over the register.
func (m *Manager) Contents() []types.Action {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.useSystem && m.readSystem != nil {
		if text, err := m.readSystem(); err != nil {
			logger.Warnf("ClipboardManager: Reading system clipboard failed: %v", err)
		} else if text != "" {
			if file, err := codec.Decode([]byte(text)); err == nil && len(file.Actions) > 0 {
				return file.Actions
			}
			logger.Debugf("ClipboardManager: System clipboard holds no funscript, using register")
		}
	}
	return append([]types.Action(nil), m.copied...)
}

// Empty reports whether nothing has been copied.
func (m *Manager) Empty() bool {
	return len(m.Contents()) == 0
}
