package app

import (
	"fmt" // For error wrapping

	"github.com/bethropolis/funscripter/internal/logger"
	"github.com/bethropolis/funscripter/internal/plugin"

	// Import desired plugin packages here
	"github.com/bethropolis/funscripter/plugins/autobackup"
	"github.com/bethropolis/funscripter/plugins/filewatch"
	"github.com/bethropolis/funscripter/plugins/stats"
)

// builtinPlugins returns fresh instances of the bundled plugins.
func builtinPlugins() []plugin.Plugin {
	// Adding a new plugin means adding its constructor here.
	pluginConstructors := []func() plugin.Plugin{
		func() plugin.Plugin { return stats.New() },
		autobackup.New,
		filewatch.New,
	}
	plugins := make([]plugin.Plugin, len(pluginConstructors))
	for i, newPlugin := range pluginConstructors {
		plugins[i] = newPlugin()
	}
	return plugins
}

// registerPlugins registers plugins with the manager.
func registerPlugins(pm *plugin.Manager, plugins []plugin.Plugin) error {
	if pm == nil {
		return fmt.Errorf("plugin manager is nil")
	}

	var finalErr error
	for _, p := range plugins {
		pluginName := p.Name() // Get name for logging

		logger.Debugf("Registering plugin: %s", pluginName)
		err := pm.Register(p)
		if err != nil {
			// Log the error but continue registering others
			wrappedErr := fmt.Errorf("failed to register plugin '%s': %w", pluginName, err)
			logger.Errorf("%v", wrappedErr)
			if finalErr == nil {
				finalErr = wrappedErr // Store the first error encountered
			}
		}
	}

	return finalErr // Return the first error encountered, or nil
}
