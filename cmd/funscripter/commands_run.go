package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/bethropolis/funscripter/internal/app"
	"github.com/bethropolis/funscripter/internal/logger"
	"github.com/bethropolis/funscripter/internal/player"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// session is a scripted editing session replayed by "run".
type session struct {
	FPS     float64  `yaml:"fps"`
	Mirror  bool     `yaml:"mirror"`
	Scripts []string `yaml:"scripts"` // Root first; relative to the session file
	Active  int      `yaml:"active"`
	Steps   []string `yaml:"steps"` // Command lines, e.g. "seek 1000" or "add 50"
	Save    bool     `yaml:"save"`
	Output  string   `yaml:"output"` // Save into this directory instead of in place
}

func loadSession(path string) (*session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read session '%s': %w", path, err)
	}
	var s session
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse session '%s': %w", path, err)
	}
	if len(s.Scripts) == 0 {
		return nil, fmt.Errorf("session '%s' lists no scripts", path)
	}
	base := filepath.Dir(path)
	resolve := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(base, p)
	}
	for i, p := range s.Scripts {
		s.Scripts[i] = resolve(p)
	}
	s.Output = resolve(s.Output)
	return &s, nil
}

// buildRunCmd creates the "run" command.
func buildRunCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run SESSION.yaml",
		Short: "Replay an editing session from a YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSession(args[0])
			if err != nil {
				return err
			}
			return c.runSession(cmd.OutOrStdout(), s)
		},
	}
	return cmd
}

func (c *cli) runSession(w io.Writer, s *session) error {
	fps := s.FPS
	if fps <= 0 {
		fps = c.cfg.Editor.FrameRate
	}
	a, err := app.NewApp(c.cfg, player.NewManualClock(fps), app.WithPlugins())
	if err != nil {
		return err
	}
	defer a.Close()

	if err := openScripts(a, s.Scripts); err != nil {
		return err
	}
	if err := a.SetActive(s.Active); err != nil {
		return err
	}
	a.SetMirrorMode(s.Mirror)

	for i, step := range s.Steps {
		if err := a.ExecuteLine(step); err != nil {
			return fmt.Errorf("step %d (%q): %w", i+1, step, err)
		}
		a.Update()
		if msg := a.StatusMessage(); msg != "" {
			logger.Debugf("step %d: %s", i+1, msg)
		}
	}

	if s.Save {
		if s.Output != "" {
			if err := os.MkdirAll(s.Output, 0o755); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}
		for i, script := range a.Scripts() {
			dest := ""
			if s.Output != "" {
				dest = filepath.Join(s.Output, filepath.Base(script.Path()))
			}
			if err := a.SaveAs(i, dest); err != nil {
				return err
			}
		}
	}

	for _, script := range a.Scripts() {
		fmt.Fprintf(w, "%s\t%d actions\t%d selected\n", script.Name(), script.Len(), script.SelectionCount())
	}
	for _, step := range a.History().UndoHistory() {
		fmt.Fprintf(w, "undo: %s\n", step)
	}
	return nil
}

// openScripts opens the root script and adds the others next to it.
func openScripts(a *app.App, paths []string) error {
	if len(paths) == 0 {
		return nil
	}
	if err := a.Open(paths[0]); err != nil {
		return err
	}
	for _, p := range paths[1:] {
		if _, err := a.AddScript(p); err != nil {
			return err
		}
	}
	return nil
}
