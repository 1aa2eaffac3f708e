package autobackup

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/bethropolis/funscripter/internal/config"
	"github.com/bethropolis/funscripter/internal/logger"
	"github.com/bethropolis/funscripter/internal/plugin"
)

// Ensure AutoBackup implements plugin.Plugin
var _ plugin.Plugin = (*AutoBackup)(nil)

const (
	// Default configuration values
	defaultEnabled  = true
	defaultInterval = 61 * time.Second

	backupExt = ".backup"
)

// AutoBackup periodically writes a copy of every loaded script into a
// backup directory, replacing the previous set of backups.
type AutoBackup struct {
	api plugin.EditorAPI // To interact with the editor

	// Configuration
	mutex    sync.RWMutex // Protects access to config fields below
	enabled  bool
	interval time.Duration
	dir      string

	// Runtime state
	stopChan chan struct{}  // Signals the backup goroutine to stop
	wg       sync.WaitGroup // Waits for the goroutine to finish
}

// New creates a new instance of the AutoBackup plugin.
func New() plugin.Plugin {
	return &AutoBackup{
		// Initialize with defaults, config will override in Initialize
		enabled:  defaultEnabled,
		interval: defaultInterval,
		dir:      defaultDir(),
	}
}

func defaultDir() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(os.TempDir(), config.AppName, "backup")
	}
	return filepath.Join(configDir, config.AppName, "backup")
}

// Name returns the unique name of the plugin.
func (p *AutoBackup) Name() string {
	return "autobackup"
}

// Initialize reads configuration and starts the backup loop if enabled.
func (p *AutoBackup) Initialize(api plugin.EditorAPI) error {
	p.api = api
	pluginName := p.Name()

	logger.Debugf("%s: Initializing...", pluginName)

	// --- Read Configuration ---
	p.mutex.Lock() // Lock for writing config initially

	if enabledVal, ok := api.GetPluginConfigValue(pluginName, "enabled"); ok {
		if boolVal, isBool := enabledVal.(bool); isBool {
			p.enabled = boolVal
		} else {
			logger.Warnf("%s: Invalid type for 'enabled' config (%T), using default (%v)", pluginName, enabledVal, p.enabled)
		}
	}

	if intervalVal, ok := api.GetPluginConfigValue(pluginName, "interval"); ok {
		if strVal, isStr := intervalVal.(string); isStr {
			parsedInterval, err := time.ParseDuration(strVal)
			if err != nil {
				logger.Warnf("%s: Invalid format for 'interval' config ('%s'): %v. Using default (%v)", pluginName, strVal, err, p.interval)
			} else if parsedInterval <= 0 {
				logger.Warnf("%s: 'interval' config must be positive ('%s'). Using default (%v)", pluginName, strVal, p.interval)
			} else {
				p.interval = parsedInterval
			}
		} else {
			logger.Warnf("%s: Invalid type for 'interval' config (%T), using default (%v)", pluginName, intervalVal, p.interval)
		}
	}

	if dirVal, ok := api.GetPluginConfigValue(pluginName, "dir"); ok {
		if strVal, isStr := dirVal.(string); isStr && strVal != "" {
			p.dir = strVal
		} else {
			logger.Warnf("%s: Invalid 'dir' config (%v), using default (%s)", pluginName, dirVal, p.dir)
		}
	}

	isEnabled := p.enabled // Read locked value
	interval := p.interval
	dir := p.dir
	p.mutex.Unlock() // Unlock after reading/setting config

	logger.Infof("%s initialized. Enabled: %v, Interval: %v, Dir: %s", pluginName, isEnabled, interval, dir)

	// --- Start Backup Goroutine ---
	if isEnabled {
		p.stopChan = make(chan struct{})
		p.wg.Add(1)
		go p.backupLoop(interval)
	}
	return nil
}

// Shutdown signals the backup goroutine to stop and waits for it.
func (p *AutoBackup) Shutdown() error {
	if p.stopChan != nil {
		logger.Debugf("%s: Shutting down...", p.Name())
		close(p.stopChan)
		p.wg.Wait()
		p.stopChan = nil
	}
	return nil
}

// backupLoop posts a backup to the main loop on every tick. Scripts are
// only read there.
func (p *AutoBackup) backupLoop(interval time.Duration) {
	defer p.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case now := <-ticker.C:
			p.api.Post(func() {
				if _, err := p.Backup(now); err != nil {
					logger.Errorf("%s: %v", p.Name(), err)
				}
			})
		case <-p.stopChan:
			logger.Debugf("%s: Received stop signal, exiting backup loop.", p.Name())
			return
		}
	}
}

// Backup writes every loaded script into the backup directory of the root
// script, after removing the backups written last time. It returns the
// files written. Nothing is written while the root script has no path.
// Must run on the main loop.
func (p *AutoBackup) Backup(now time.Time) ([]string, error) {
	scripts := p.api.Scripts()
	if len(scripts) == 0 || scripts[0].Path == "" {
		logger.Debugf("%s: root script has no path, skipping backup.", p.Name())
		return nil, nil
	}

	p.mutex.RLock()
	dir := filepath.Join(p.dir, strings.TrimSpace(scripts[0].Name))
	p.mutex.RUnlock()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create backup directory '%s': %w", dir, err)
	}
	removeOldBackups(dir)

	var written []string
	for _, s := range scripts {
		name := fmt.Sprintf("%s_%d-%d-%d.funscript%s", strings.TrimSpace(s.Name), now.Hour(), now.Minute(), now.Second(), backupExt)
		path := filepath.Join(dir, name)
		if err := p.api.SaveScriptCopy(s.Index, path); err != nil {
			logger.Errorf("%s: backup of '%s' failed: %v", p.Name(), s.Name, err)
			continue
		}
		logger.Infof("%s: Backup at \"%s\"", p.Name(), path)
		written = append(written, path)
	}
	return written, nil
}

func removeOldBackups(dir string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		logger.Warnf("autobackup: listing '%s' failed: %v", dir, err)
		return
	}
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != backupExt {
			continue
		}
		path := filepath.Join(dir, e.Name())
		logger.Debugf("autobackup: Removing \"%s\"", path)
		if err := os.Remove(path); err != nil {
			logger.Errorf("autobackup: %v", err)
		}
	}
}
