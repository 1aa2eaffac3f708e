package filewatch

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/bethropolis/funscripter/internal/event"
	"github.com/bethropolis/funscripter/internal/logger"
	"github.com/bethropolis/funscripter/internal/plugin"
	"github.com/bethropolis/funscripter/internal/utils"
	"github.com/fsnotify/fsnotify"
)

// Ensure FileWatch implements plugin.Plugin
var _ plugin.Plugin = (*FileWatch)(nil)

const (
	defaultEnabled  = true
	defaultDebounce = 250 * time.Millisecond
	// Changes this soon after our own save are the save itself.
	ownSaveWindow = 2 * time.Second
)

// FileWatch reloads a loaded script when its file changes on disk. The
// reload is an undoable step.
type FileWatch struct {
	api plugin.EditorAPI

	enabled  bool
	debounce time.Duration

	watchMu   sync.Mutex
	watcher   *fsnotify.Watcher
	dirs      map[string]struct{}  // Watched directories
	files     map[string]struct{}  // Script files reloads apply to
	savedAt   map[string]time.Time // Last save made by the editor itself
	debouncer utils.Debouncer
	subs      []event.SubscriptionID
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	reloadFor func(path string) // Test hook; defaults to posting ReloadScript
}

// New creates a new instance of the FileWatch plugin.
func New() plugin.Plugin {
	return &FileWatch{
		enabled:  defaultEnabled,
		debounce: defaultDebounce,
	}
}

// Name returns the unique name of the plugin.
func (p *FileWatch) Name() string {
	return "filewatch"
}

// Initialize reads configuration and starts watching the loaded scripts.
func (p *FileWatch) Initialize(api plugin.EditorAPI) error {
	p.api = api
	pluginName := p.Name()

	if enabledVal, ok := api.GetPluginConfigValue(pluginName, "enabled"); ok {
		if boolVal, isBool := enabledVal.(bool); isBool {
			p.enabled = boolVal
		} else {
			logger.Warnf("%s: Invalid type for 'enabled' config (%T), using default (%v)", pluginName, enabledVal, p.enabled)
		}
	}
	if debounceVal, ok := api.GetPluginConfigValue(pluginName, "debounce"); ok {
		if strVal, isStr := debounceVal.(string); isStr {
			if d, err := time.ParseDuration(strVal); err == nil && d > 0 {
				p.debounce = d
			} else {
				logger.Warnf("%s: Invalid 'debounce' config ('%s'), using default (%v)", pluginName, strVal, p.debounce)
			}
		}
	}
	logger.Infof("%s initialized. Enabled: %v, Debounce: %v", pluginName, p.enabled, p.debounce)
	if !p.enabled {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithCancel(context.Background())

	p.watchMu.Lock()
	p.watcher = watcher
	p.cancel = cancel
	p.dirs = make(map[string]struct{})
	p.files = make(map[string]struct{})
	p.savedAt = make(map[string]time.Time)
	if p.reloadFor == nil {
		p.reloadFor = p.postReload
	}
	p.watchMu.Unlock()

	refresh := func(event.Event) bool {
		p.refreshWatches()
		return false
	}
	p.subs = append(p.subs,
		api.SubscribeEvent(event.TypeScriptLoaded, refresh),
		api.SubscribeEvent(event.TypeScriptClosed, refresh),
		api.SubscribeEvent(event.TypeScriptSaved, p.handleScriptSaved),
	)
	p.refreshWatches()

	p.wg.Add(1)
	go p.watchLoop(ctx)
	return nil
}

// Shutdown stops watching and waits for the watch goroutine.
func (p *FileWatch) Shutdown() error {
	for _, id := range p.subs {
		p.api.UnsubscribeEvent(id)
	}
	p.subs = nil

	p.watchMu.Lock()
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	watcher := p.watcher
	p.watcher = nil
	p.watchMu.Unlock()
	p.debouncer.Stop()

	var err error
	if watcher != nil {
		err = watcher.Close()
	}
	p.wg.Wait()
	return err
}

// handleScriptSaved remembers saves made by the editor so their write
// events are not taken for outside changes.
func (p *FileWatch) handleScriptSaved(e event.Event) bool {
	data, ok := e.Data.(event.ScriptSavedData)
	if !ok || data.FilePath == "" {
		return false
	}
	p.watchMu.Lock()
	p.savedAt[filepath.Clean(data.FilePath)] = time.Now()
	p.watchMu.Unlock()
	p.refreshWatches()
	return false
}

// refreshWatches watches the directory of every loaded script. Editors
// often replace files by rename, which a file watch would miss.
func (p *FileWatch) refreshWatches() {
	files := make(map[string]struct{})
	dirs := make(map[string]struct{})
	for _, s := range p.api.Scripts() {
		if s.Path == "" {
			continue
		}
		path := filepath.Clean(s.Path)
		files[path] = struct{}{}
		dirs[filepath.Dir(path)] = struct{}{}
	}

	p.watchMu.Lock()
	defer p.watchMu.Unlock()
	if p.watcher == nil {
		return
	}
	p.files = files
	for dir := range dirs {
		if _, ok := p.dirs[dir]; ok {
			continue
		}
		if err := p.watcher.Add(dir); err != nil {
			logger.Debugf("%s: failed to watch '%s': %v", p.Name(), dir, err)
			continue
		}
		p.dirs[dir] = struct{}{}
	}
	for dir := range p.dirs {
		if _, ok := dirs[dir]; ok {
			continue
		}
		if err := p.watcher.Remove(dir); err != nil {
			logger.Debugf("%s: failed to unwatch '%s': %v", p.Name(), dir, err)
		}
		delete(p.dirs, dir)
	}
}

func (p *FileWatch) watchLoop(ctx context.Context) {
	defer p.wg.Done()
	p.watchMu.Lock()
	watcher := p.watcher
	p.watchMu.Unlock()
	if watcher == nil {
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-watcher.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				p.changed(filepath.Clean(ev.Name), time.Now())
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logger.Warnf("%s: watch error: %v", p.Name(), err)
		}
	}
}

// changed debounces a change of path and schedules its reload.
func (p *FileWatch) changed(path string, at time.Time) {
	p.watchMu.Lock()
	defer p.watchMu.Unlock()

	if _, ok := p.files[path]; !ok {
		return
	}
	if p.ownSaveLocked(path, at) {
		return
	}
	reload := p.reloadFor
	p.debouncer.Debounce(path, p.debounce, func() {
		p.watchMu.Lock()
		// The save event may arrive after the write it caused.
		own := p.ownSaveLocked(path, time.Now())
		p.watchMu.Unlock()
		if !own {
			reload(path)
		}
	})
}

func (p *FileWatch) ownSaveLocked(path string, at time.Time) bool {
	saved, ok := p.savedAt[path]
	if ok && at.Sub(saved) < ownSaveWindow {
		logger.Debugf("%s: ignoring own save of '%s'", p.Name(), path)
		return true
	}
	return false
}

// postReload hands the reload to the main loop.
func (p *FileWatch) postReload(path string) {
	p.api.Post(func() {
		if err := p.api.ReloadScript(path); err != nil {
			logger.Errorf("%s: %v", p.Name(), err)
			return
		}
		p.api.SetStatusMessage("Reloaded %s from disk", filepath.Base(path))
	})
}
