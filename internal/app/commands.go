package app

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/bethropolis/funscripter/internal/logger"
	"github.com/bethropolis/funscripter/internal/player"
	"github.com/bethropolis/funscripter/internal/plugin"
)

// ErrUnknownCommand is returned by ExecuteCommand for unregistered names.
var ErrUnknownCommand = errors.New("unknown command")

// RegisterCommand adds a named command. Names are unique.
func (a *App) RegisterCommand(name string, cmdFunc plugin.CommandFunc) error {
	if name == "" || cmdFunc == nil {
		return fmt.Errorf("invalid command registration for '%s'", name)
	}
	a.cmdMu.Lock()
	defer a.cmdMu.Unlock()
	if _, exists := a.commands[name]; exists {
		return fmt.Errorf("command '%s' already registered", name)
	}
	a.commands[name] = cmdFunc
	logger.DebugTagf("command", "Registered command ':%s'", name)
	return nil
}

// ExecuteCommand runs a registered command.
func (a *App) ExecuteCommand(name string, args []string) error {
	a.cmdMu.RLock()
	cmdFunc, ok := a.commands[name]
	a.cmdMu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownCommand, name)
	}
	logger.DebugTagf("command", "Executing ':%s' %v", name, args)
	return cmdFunc(args)
}

// ExecuteLine splits a command line such as "up 10" and runs it.
func (a *App) ExecuteLine(line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	return a.ExecuteCommand(fields[0], fields[1:])
}

// Commands lists the registered command names in order.
func (a *App) Commands() []string {
	a.cmdMu.RLock()
	defer a.cmdMu.RUnlock()
	names := make([]string, 0, len(a.commands))
	for name := range a.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func intArg(args []string, i int, name string) (int32, error) {
	if i >= len(args) {
		return 0, fmt.Errorf("missing argument <%s>", name)
	}
	v, err := strconv.ParseInt(args[i], 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid <%s> '%s': %w", name, args[i], err)
	}
	return int32(v), nil
}

func optionalIntArg(args []string, i int, name string, def int32) (int32, error) {
	if i >= len(args) {
		return def, nil
	}
	return intArg(args, i, name)
}

// noArgs adapts an editing method to a command.
func noArgs(fn func()) plugin.CommandFunc {
	return func([]string) error {
		fn()
		return nil
	}
}

// registerAppCommands registers the built-in editing commands.
func registerAppCommands(app *App) {
	api := app.editorAPI

	commands := map[string]plugin.CommandFunc{
		"undo": func([]string) error {
			if !app.Undo() {
				api.SetStatusMessage("Nothing to undo")
			}
			return nil
		},
		"redo": func([]string) error {
			if !app.Redo() {
				api.SetStatusMessage("Nothing to redo")
			}
			return nil
		},
		"history": func([]string) error {
			steps := app.History().UndoHistory()
			labels := make([]string, len(steps))
			for i, s := range steps {
				labels[i] = s.String()
			}
			api.SetStatusMessage("Undo history: %s", strings.Join(labels, ", "))
			return nil
		},
		"save": func(args []string) error {
			if len(args) > 0 {
				return app.SaveAs(app.ActiveIndex(), args[0])
			}
			return app.Save(app.ActiveIndex())
		},
		"saveall": func([]string) error { return app.SaveAll() },
		"active": func(args []string) error {
			idx, err := intArg(args, 0, "index")
			if err != nil {
				return err
			}
			return app.SetActive(int(idx))
		},
		"mirror": func(args []string) error {
			on := !app.MirrorMode()
			if len(args) > 0 {
				v, err := strconv.ParseBool(args[0])
				if err != nil {
					return fmt.Errorf("invalid mirror value '%s': %w", args[0], err)
				}
				on = v
			}
			app.SetMirrorMode(on)
			api.SetStatusMessage("Mirror mode: %t", on)
			return nil
		},
		"seek": func(args []string) error {
			ms, err := intArg(args, 0, "ms")
			if err != nil {
				return err
			}
			seeker, ok := app.clock.(player.Seeker)
			if !ok {
				return errors.New("clock cannot seek")
			}
			seeker.SetTimeMs(float64(ms))
			return nil
		},
		"step": func(args []string) error {
			n, err := optionalIntArg(args, 0, "frames", 1)
			if err != nil {
				return err
			}
			clock, ok := app.clock.(*player.ManualClock)
			if !ok {
				return errors.New("clock cannot step")
			}
			clock.StepFrames(int(n))
			return nil
		},
		"add": func(args []string) error {
			pos, err := intArg(args, 0, "pos")
			if err != nil {
				return err
			}
			app.AddEditAction(pos)
			return nil
		},
		"remove":      noArgs(app.RemoveAction),
		"copy":        func([]string) error { return app.CopySelection() },
		"cut":         func([]string) error { return app.CutSelection() },
		"paste":       noArgs(app.PasteSelection),
		"paste-exact": noArgs(app.PasteSelectionExact),
		"equalize":    noArgs(app.EqualizeSelection),
		"invert":      noArgs(app.InvertSelection),
		"isolate":     noArgs(app.IsolateAction),
		"repeat":      noArgs(app.RepeatLastStroke),
		"top":         noArgs(app.SelectTopPoints),
		"mid":         noArgs(app.SelectMiddlePoints),
		"bottom":      noArgs(app.SelectBottomPoints),
		"selectall":   noArgs(app.SelectAll),
		"deselect":    noArgs(app.DeselectAll),
		"move-here":   noArgs(app.MoveActionToCurrentPos),
		"select": func(args []string) error {
			from, err := intArg(args, 0, "from")
			if err != nil {
				return err
			}
			to, err := intArg(args, 1, "to")
			if err != nil {
				return err
			}
			app.SelectTime(from, to, true)
			return nil
		},
		"up": func(args []string) error {
			n, err := optionalIntArg(args, 0, "amount", 1)
			if err != nil {
				return err
			}
			app.MoveActionsPosition(n)
			return nil
		},
		"down": func(args []string) error {
			n, err := optionalIntArg(args, 0, "amount", 1)
			if err != nil {
				return err
			}
			app.MoveActionsPosition(-n)
			return nil
		},
		"left":       noArgs(func() { app.MoveActionsTime(false, false) }),
		"right":      noArgs(func() { app.MoveActionsTime(true, false) }),
		"left-snap":  noArgs(func() { app.MoveActionsTime(false, true) }),
		"right-snap": noArgs(func() { app.MoveActionsTime(true, true) }),
	}

	// --- Register the commands ---
	for name, fn := range commands {
		if err := api.RegisterCommand(name, fn); err != nil {
			// Log error - registration should generally succeed unless name reused
			logger.Warnf("Failed to register ':%s' command: %v", name, err)
		}
	}
}
