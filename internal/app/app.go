// internal/app/app.go
package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bethropolis/funscripter/internal/config"
	"github.com/bethropolis/funscripter/internal/core/clipboard"
	"github.com/bethropolis/funscripter/internal/core/history"
	"github.com/bethropolis/funscripter/internal/event"
	"github.com/bethropolis/funscripter/internal/funscript"
	"github.com/bethropolis/funscripter/internal/logger"
	"github.com/bethropolis/funscripter/internal/player"
	"github.com/bethropolis/funscripter/internal/plugin"
)

// App owns the loaded scripts and routes every edit through the undo
// coordinator. All script access happens on the goroutine that calls
// Update; other goroutines hand work over with Post.
type App struct {
	cfg           *config.Config
	clock         player.Clock
	eventManager  *event.Manager
	pluginManager *plugin.Manager
	editorAPI     plugin.EditorAPI
	undo          *history.Coordinator
	clipboard     *clipboard.Manager

	mu         sync.RWMutex
	scripts    []*funscript.Funscript // Root script first
	active     int
	mirrorMode bool

	commands map[string]plugin.CommandFunc
	cmdMu    sync.RWMutex

	postMu sync.Mutex
	posted []func()

	quit     chan struct{}
	quitOnce sync.Once

	// Status Bar State
	statusMessage     string
	statusMessageTime time.Time
}

// Option configures a new App.
type Option func(*options)

type options struct {
	plugins   []plugin.Plugin
	clipboard *clipboard.Manager
}

// WithPlugins replaces the built-in plugin set.
func WithPlugins(plugins ...plugin.Plugin) Option {
	return func(o *options) { o.plugins = plugins }
}

// WithClipboard sets the clipboard used by copy and paste.
func WithClipboard(cb *clipboard.Manager) Option {
	return func(o *options) { o.clipboard = cb }
}

// NewApp creates an application with one empty root script.
func NewApp(cfg *config.Config, clock player.Clock, opts ...Option) (*App, error) {
	if cfg == nil {
		cfg = config.NewDefaultConfig()
	}
	if clock == nil {
		clock = player.NewManualClock(cfg.Editor.FrameRate)
	}
	o := options{plugins: builtinPlugins()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.clipboard == nil {
		o.clipboard = clipboard.NewManager(cfg.Editor.SystemClipboard)
	}

	a := &App{
		cfg:           cfg,
		clock:         clock,
		eventManager:  event.NewManager(),
		pluginManager: plugin.NewManager(),
		clipboard:     o.clipboard,
		mirrorMode:    cfg.Editor.MirrorMode,
		commands:      make(map[string]plugin.CommandFunc),
		quit:          make(chan struct{}),
	}
	a.undo = history.NewCoordinator(a, cfg.Editor.UndoDepth)
	a.scripts = []*funscript.Funscript{a.newScript()}

	// --- Create Editor API adapter ---
	a.editorAPI = newEditorAPI(a)

	// --- Subscribe Core Components (App level wiring) ---
	a.eventManager.Subscribe(event.TypeScriptSaved, a.handleScriptSavedForStatus)
	a.eventManager.Subscribe(event.TypeScriptLoaded, a.handleScriptLoadedForStatus)
	a.eventManager.Subscribe(event.TypeUndo, a.handleHistoryForStatus)
	a.eventManager.Subscribe(event.TypeRedo, a.handleHistoryForStatus)

	registerAppCommands(a)

	if err := registerPlugins(a.pluginManager, o.plugins); err != nil {
		logger.Warnf("App: %v", err)
	}
	// --- Initialize Plugins (triggers RegisterCommand via API) ---
	a.pluginManager.InitializePlugins(a.editorAPI)

	a.eventManager.Dispatch(event.TypeAppReady, event.AppReadyData{})
	return a, nil
}

func (a *App) newScript() *funscript.Funscript {
	return funscript.New(
		funscript.WithHistoryDepth(a.cfg.Editor.UndoDepth),
		funscript.WithEventManager(a.eventManager),
	)
}

// Run calls Update once per frame until ctx is done or Quit is called.
func (a *App) Run(ctx context.Context) error {
	defer a.Close()

	interval := time.Duration(a.clock.FrameTimeMs() * float64(time.Millisecond))
	if interval <= 0 {
		interval = time.Second / time.Duration(config.DefaultFrameRate)
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			a.Update()
			return nil
		case <-a.quit:
			a.Update()
			return nil
		case <-ticker.C:
			a.Update()
		}
	}
}

// Quit stops Run.
func (a *App) Quit() {
	a.quitOnce.Do(func() { close(a.quit) })
}

// Close shuts the plugins down. Unsaved scripts are reported, not saved.
func (a *App) Close() {
	a.eventManager.Dispatch(event.TypeAppQuit, event.AppQuitData{})
	a.pluginManager.ShutdownPlugins()
	for _, s := range a.Scripts() {
		if s.HasUnsavedEdits() {
			logger.Warnf("App: %s has unsaved changes", s.Name())
		}
	}
}

// Post queues fn to run on the next Update. Safe from any goroutine.
func (a *App) Post(fn func()) {
	a.postMu.Lock()
	a.posted = append(a.posted, fn)
	a.postMu.Unlock()
}

// Update runs the posted work and lets every script publish its pending
// change notification.
func (a *App) Update() {
	a.postMu.Lock()
	queue := a.posted
	a.posted = nil
	a.postMu.Unlock()

	for _, fn := range queue {
		fn()
	}
	for _, s := range a.Scripts() {
		s.Update()
	}
}

// EventManager returns the application's event bus.
func (a *App) EventManager() *event.Manager { return a.eventManager }

// History returns the undo coordinator.
func (a *App) History() *history.Coordinator { return a.undo }

// Clock returns the playback clock commands read the playhead from.
func (a *App) Clock() player.Clock { return a.clock }

// Config returns the active configuration.
func (a *App) Config() *config.Config { return a.cfg }

// SetStatusMessage updates the status message.
func (a *App) SetStatusMessage(format string, args ...interface{}) {
	a.mu.Lock()
	a.statusMessage = fmt.Sprintf(format, args...)
	a.statusMessageTime = time.Now()
	msg := a.statusMessage
	a.mu.Unlock()
	logger.Infof("%s", msg)
}

// StatusMessage returns the current status message, or "" once it timed out.
func (a *App) StatusMessage() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.statusMessageTime.IsZero() || time.Since(a.statusMessageTime) > config.MessageTimeout {
		return ""
	}
	return a.statusMessage
}

// MirrorMode reports whether add and remove edits apply to every script.
func (a *App) MirrorMode() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.mirrorMode
}

// SetMirrorMode turns mirror mode on or off.
func (a *App) SetMirrorMode(on bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.mirrorMode = on
}
