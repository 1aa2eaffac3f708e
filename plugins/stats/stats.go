// plugins/stats/stats.go
package stats

import (
	"fmt"
	"math"

	"github.com/bethropolis/funscripter/internal/plugin" // Import the plugin interface definitions
	"github.com/bethropolis/funscripter/internal/types"
)

// Ensure Stats implements plugin.Plugin
var _ plugin.Plugin = (*Stats)(nil)

// Stats reports the stroke around the playhead of the active script.
type Stats struct {
	api plugin.EditorAPI // Store the API for later use
}

// Result describes the stroke around a point in time.
type Result struct {
	IntervalMs int32   // Time since the action behind
	HasFront   bool    // A stroke end exists ahead
	DurationMs int32   // Behind to front
	Speed      float64 // Position units per second
	From, To   int32   // Positions of behind and front
}

// New creates a new instance of the Stats plugin.
func New() *Stats {
	return &Stats{}
}

// Name returns the unique name of the plugin.
func (p *Stats) Name() string {
	return "stats"
}

// Initialize registers the :stats command.
func (p *Stats) Initialize(api plugin.EditorAPI) error {
	p.api = api
	if err := api.RegisterCommand("stats", p.executeStats); err != nil {
		return fmt.Errorf("failed to register 'stats' command: %w", err)
	}
	return nil
}

// Shutdown performs cleanup (nothing needed for this plugin).
func (p *Stats) Shutdown() error {
	return nil
}

// executeStats is the function called when the :stats command runs.
func (p *Stats) executeStats(args []string) error {
	if p.api == nil {
		return fmt.Errorf("stats plugin not initialized with API")
	}

	actions := p.api.ScriptActions(p.api.ActiveScriptIndex())
	now := int32(math.Round(p.api.CurrentTimeMs()))
	res, ok := Compute(actions, now)
	if !ok {
		p.api.SetStatusMessage("No action behind %d ms", now)
		return nil
	}
	p.api.SetStatusMessage("%s", res)
	return nil
}

// Compute measures the stroke at now. When an action sits exactly at now
// it is the stroke's front. It reports false when no action lies behind.
func Compute(actions []types.Action, now int32) (Result, bool) {
	var (
		behind, front   types.Action
		hasBehind, hasFront bool
	)
	for i, a := range actions {
		if a.At == now {
			front, hasFront = a, true
			if i > 0 {
				behind, hasBehind = actions[i-1], true
			}
			break
		}
		if a.At > now {
			front, hasFront = a, true
			break
		}
		behind, hasBehind = a, true
	}
	if !hasBehind {
		return Result{}, false
	}

	res := Result{IntervalMs: now - behind.At}
	if hasFront {
		res.HasFront = true
		res.DurationMs = front.At - behind.At
		res.From, res.To = behind.Pos, front.Pos
		if res.DurationMs > 0 {
			res.Speed = math.Abs(float64(front.Pos-behind.Pos)) / (float64(res.DurationMs) / 1000.0)
		}
	}
	return res, true
}

func (r Result) String() string {
	if !r.HasFront {
		return fmt.Sprintf("Interval: %d ms", r.IntervalMs)
	}
	arrow := "up"
	length := r.To - r.From
	if length < 0 {
		arrow, length = "down", -length
	}
	return fmt.Sprintf("Interval: %d ms, Speed: %.02f units/s, Duration: %d ms, %d -> %d = %d %s",
		r.IntervalMs, r.Speed, r.DurationMs, r.From, r.To, length, arrow)
}
