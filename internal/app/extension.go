package app

import (
	"fmt"

	"github.com/bethropolis/funscripter/internal/core/history"
	"github.com/bethropolis/funscripter/internal/logger"
	"github.com/bethropolis/funscripter/internal/plugin"
)

// RunExtension hands ext a copy of every script and applies what it leaves
// behind as one undo step over all scripts. Nothing changes when ext fails
// or changes the number of scripts.
func (a *App) RunExtension(ext plugin.Extension) error {
	scripts := a.Scripts()
	ctx := &plugin.Context{
		ActiveIndex:   a.ActiveIndex(),
		CurrentTimeMs: a.clock.CurrentTimeMs(),
		FrameTimeMs:   a.clock.FrameTimeMs(),
		Scripts:       make([]plugin.ScriptContext, len(scripts)),
	}
	for i, s := range scripts {
		ctx.Scripts[i] = plugin.NewScriptContext(s.Name(), s.Actions(), s.Selection())
	}

	if err := ext.Run(ctx); err != nil {
		return fmt.Errorf("extension '%s' failed: %w", ext.Name(), err)
	}
	if len(ctx.Scripts) != len(scripts) {
		return fmt.Errorf("extension '%s' returned %d scripts, expected %d", ext.Name(), len(ctx.Scripts), len(scripts))
	}

	a.snapshot(history.Extension, true)
	for i, s := range scripts {
		actions, selection := ctx.Scripts[i].Split()
		s.SetActions(actions)
		s.SetSelectionActions(selection)
	}
	logger.Infof("App: extension '%s' applied to %d script(s)", ext.Name(), len(scripts))
	return nil
}
