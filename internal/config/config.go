// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/bethropolis/funscripter/internal/logger"
	"github.com/spf13/pflag"
)

// Config holds the application's combined configuration.
type Config struct {
	Logger  logger.Config             `toml:"logger"`  // [logger] table
	Editor  EditorConfig              `toml:"editor"`  // Editing behaviour
	Plugins map[string]map[string]any `toml:"plugins"` // [plugins.<name>] tables, read by each plugin
}

// EditorConfig holds editing settings.
type EditorConfig struct {
	UndoDepth       int     `toml:"undo_depth"`
	MirrorMode      bool    `toml:"mirror_mode"` // Apply add/remove to every loaded script
	FrameRate       float64 `toml:"frame_rate"`  // Used when no player supplies a frame time
	DefaultErrorMs  int32   `toml:"default_error_ms"`
	PasteErrorMs    int32   `toml:"paste_error_ms"`
	MoveStepMs      int32   `toml:"move_step_ms"`
	SystemClipboard bool    `toml:"system_clipboard"`
}

// NewDefaultConfig creates a Config struct with default values.
func NewDefaultConfig() *Config {
	return &Config{
		Logger: logger.NewConfig(),
		Editor: EditorConfig{
			UndoDepth:       DefaultUndoDepth,
			FrameRate:       DefaultFrameRate,
			DefaultErrorMs:  DefaultErrorMs,
			PasteErrorMs:    DefaultPasteErrorMs,
			MoveStepMs:      DefaultMoveStepMs,
			SystemClipboard: SystemClipboard,
		},
		Plugins: make(map[string]map[string]any),
	}
}

// DefaultPath returns the config file location under the user config dir.
func DefaultPath() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(configDir, AppName, DefaultConfigFileName)
}

// loadFromFile decodes filePath over cfg. A missing file is not an error.
func loadFromFile(cfg *Config, filePath string) error {
	metadata, err := toml.DecodeFile(filePath, cfg)
	if errors.Is(err, fs.ErrNotExist) {
		logger.Debugf("Config file not found: %s", filePath)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to parse config file '%s': %w", filePath, err)
	}
	if undecoded := metadata.Undecoded(); len(undecoded) > 0 {
		logger.Warnf("Config file '%s': Unrecognized keys: %v", filePath, undecoded)
	}
	logger.Debugf("Loaded configuration from: %s", filePath)
	return nil
}

// validate checks config values and resets invalid ones to defaults.
func (c *Config) validate() {
	defaults := NewDefaultConfig()

	if c.Editor.UndoDepth <= 0 {
		c.Editor.UndoDepth = defaults.Editor.UndoDepth
	}
	if c.Editor.FrameRate <= 0 {
		c.Editor.FrameRate = defaults.Editor.FrameRate
	}
	if c.Editor.DefaultErrorMs < 0 {
		c.Editor.DefaultErrorMs = defaults.Editor.DefaultErrorMs
	}
	if c.Editor.PasteErrorMs < 0 {
		c.Editor.PasteErrorMs = defaults.Editor.PasteErrorMs
	}
	if c.Editor.MoveStepMs < 0 {
		c.Editor.MoveStepMs = defaults.Editor.MoveStepMs
	}
	if c.Logger.LogLevel == "" {
		c.Logger.LogLevel = defaults.Logger.LogLevel
	}
	if c.Plugins == nil {
		c.Plugins = make(map[string]map[string]any)
	}
}

// Load merges defaults, the TOML file at configFilePath (or DefaultPath when
// empty) and the flags that were set on fs, then validates the result.
// flags may be nil when no command line is involved.
func Load(configFilePath string, fs *pflag.FlagSet, flags *Flags) (*Config, error) {
	cfg := NewDefaultConfig()

	effectivePath := configFilePath
	if effectivePath == "" {
		effectivePath = DefaultPath()
	}
	if effectivePath != "" {
		if err := loadFromFile(cfg, effectivePath); err != nil {
			return nil, err
		}
	}

	if flags != nil && fs != nil {
		flags.ApplyOverrides(cfg, fs)
	}

	cfg.validate()
	return cfg, nil
}

// PluginValue returns a value from the [plugins.<plugin>] table.
func (c *Config) PluginValue(plugin, key string) (any, bool) {
	table, ok := c.Plugins[plugin]
	if !ok {
		return nil, false
	}
	v, ok := table[key]
	return v, ok
}
