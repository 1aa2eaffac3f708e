// Package plugintest provides an in-memory plugin.EditorAPI for plugin tests.
package plugintest

import (
	"fmt"
	"sync"

	"github.com/bethropolis/funscripter/internal/event"
	"github.com/bethropolis/funscripter/internal/funscript"
	"github.com/bethropolis/funscripter/internal/plugin"
	"github.com/bethropolis/funscripter/internal/types"
)

var _ plugin.EditorAPI = (*API)(nil)

// API is a plugin.EditorAPI over a list of scripts. Posted work runs when
// Drain is called.
type API struct {
	mu       sync.Mutex
	Loaded   []*funscript.Funscript
	Active   int
	TimeMs   float64
	FrameMs  float64
	Config   map[string]map[string]any
	Commands map[string]plugin.CommandFunc
	Status   []string
	Reloaded []string
	Events   *event.Manager

	posted []func()
}

// New creates an API over scripts.
func New(scripts ...*funscript.Funscript) *API {
	return &API{
		Loaded:   scripts,
		FrameMs:  1000.0 / 30,
		Config:   make(map[string]map[string]any),
		Commands: make(map[string]plugin.CommandFunc),
		Events:   event.NewManager(),
	}
}

func (a *API) Scripts() []plugin.ScriptInfo {
	out := make([]plugin.ScriptInfo, len(a.Loaded))
	for i, s := range a.Loaded {
		out[i] = plugin.ScriptInfo{Index: i, ID: s.ID(), Name: s.Name(), Path: s.Path(), Unsaved: s.HasUnsavedEdits(), Actions: s.Len()}
	}
	return out
}

func (a *API) ActiveScriptIndex() int { return a.Active }

func (a *API) ScriptActions(index int) []types.Action {
	if index < 0 || index >= len(a.Loaded) {
		return nil
	}
	return a.Loaded[index].Actions()
}

func (a *API) SaveScriptCopy(index int, path string) error {
	if index < 0 || index >= len(a.Loaded) {
		return fmt.Errorf("no such script: %d", index)
	}
	return a.Loaded[index].SaveCopy(path)
}

func (a *API) ReloadScript(path string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.Reloaded = append(a.Reloaded, path)
	return nil
}

func (a *API) CurrentTimeMs() float64 { return a.TimeMs }
func (a *API) FrameTimeMs() float64   { return a.FrameMs }

func (a *API) Post(fn func()) {
	a.mu.Lock()
	a.posted = append(a.posted, fn)
	a.mu.Unlock()
}

// Drain runs the posted work and returns how many functions ran.
func (a *API) Drain() int {
	a.mu.Lock()
	queue := a.posted
	a.posted = nil
	a.mu.Unlock()
	for _, fn := range queue {
		fn()
	}
	return len(queue)
}

// ReloadedPaths returns the paths passed to ReloadScript so far.
func (a *API) ReloadedPaths() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.Reloaded...)
}

func (a *API) DispatchEvent(eventType event.Type, data interface{}) {
	a.Events.Dispatch(eventType, data)
}

func (a *API) SubscribeEvent(eventType event.Type, handler event.Handler) event.SubscriptionID {
	return a.Events.Subscribe(eventType, handler)
}

func (a *API) UnsubscribeEvent(id event.SubscriptionID) { a.Events.Unsubscribe(id) }

func (a *API) RegisterCommand(name string, cmdFunc plugin.CommandFunc) error {
	if _, ok := a.Commands[name]; ok {
		return fmt.Errorf("command '%s' already registered", name)
	}
	a.Commands[name] = cmdFunc
	return nil
}

func (a *API) SetStatusMessage(format string, args ...interface{}) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.Status = append(a.Status, fmt.Sprintf(format, args...))
}

// LastStatus returns the most recent status message.
func (a *API) LastStatus() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.Status) == 0 {
		return ""
	}
	return a.Status[len(a.Status)-1]
}

// SetConfig sets a [plugins.<plugin>] value.
func (a *API) SetConfig(pluginName, key string, value any) {
	if a.Config[pluginName] == nil {
		a.Config[pluginName] = make(map[string]any)
	}
	a.Config[pluginName][key] = value
}

func (a *API) GetPluginConfigValue(pluginName, key string) (interface{}, bool) {
	v, ok := a.Config[pluginName][key]
	return v, ok
}

func (a *API) RunExtension(ext plugin.Extension) error {
	return fmt.Errorf("extensions are not supported by plugintest")
}
