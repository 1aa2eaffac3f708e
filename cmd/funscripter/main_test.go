package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bethropolis/funscripter/internal/funscript"
	"github.com/bethropolis/funscripter/internal/types"
	"github.com/google/go-cmp/cmp"
)

func TestBuildRootCmdIncludesSubcommands(t *testing.T) {
	cmd := buildRootCmd()
	names := map[string]bool{}
	for _, sub := range cmd.Commands() {
		names[sub.Name()] = true
	}

	required := []string{"stat", "fmt", "shift", "invert", "run", "edit"}
	for _, name := range required {
		if !names[name] {
			t.Fatalf("expected subcommand %q to be registered", name)
		}
	}
}

// execute runs the root command with a config file that does not exist, so
// the user's own configuration never leaks into a test.
func execute(t *testing.T, stdin string, args ...string) string {
	t.Helper()
	cmd := buildRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	base := []string{"--config", filepath.Join(t.TempDir(), "none.toml"), "--loglevel", "error"}
	cmd.SetArgs(append(base, args...))
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("%v: %v\n%s", args, err, out.String())
	}
	return out.String()
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func readActions(t *testing.T, path string) []types.Action {
	t.Helper()
	s := funscript.New()
	if err := s.Open(path); err != nil {
		t.Fatal(err)
	}
	return s.Actions()
}

func TestStatJSON(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.funscript", `{
		"metadata": {"title": "Demo"},
		"actions": [{"at": 0, "pos": 0}, {"at": 500, "pos": 100}, {"at": 1000, "pos": 0}]
	}`)

	out := execute(t, "", "stat", "--format", "json", path)

	var rows []scriptStats
	if err := json.Unmarshal([]byte(out), &rows); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	want := []scriptStats{{
		File:       "a.funscript",
		Title:      "Demo",
		Actions:    3,
		DurationMs: 1000,
		AvgSpeed:   200,
		Strokes:    2,
		Range:      90,
	}}
	if diff := cmp.Diff(want, rows); diff != "" {
		t.Errorf("stats mismatch (-want +got):\n%s", diff)
	}
}

func TestStatText(t *testing.T) {
	path := writeFile(t, t.TempDir(), "a.funscript", `{"actions": [{"at": 0, "pos": 0}, {"at": 61500, "pos": 90}]}`)
	out := execute(t, "", "stat", path)
	if !strings.Contains(out, "0:01:01.500") {
		t.Errorf("expected formatted duration in:\n%s", out)
	}
}

func TestFmtSortsAndClamps(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.funscript", `{"actions": [{"at": 300, "pos": 150}, {"at": 100, "pos": -5}, {"at": -10, "pos": 50}]}`)
	outDir := filepath.Join(dir, "out")

	out := execute(t, "", "fmt", "--minimal", "-o", outDir, path)

	dest := filepath.Join(outDir, "a.funscript")
	if strings.TrimSpace(out) != dest {
		t.Errorf("printed %q, want %q", out, dest)
	}
	want := []types.Action{{At: 100, Pos: 0}, {At: 300, Pos: 100}}
	if diff := cmp.Diff(want, readActions(t, dest)); diff != "" {
		t.Errorf("actions mismatch (-want +got):\n%s", diff)
	}
	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "metadata") {
		t.Errorf("minimal output carries metadata: %s", data)
	}
}

func TestShift(t *testing.T) {
	path := writeFile(t, t.TempDir(), "a.funscript", `{"actions": [{"at": 100, "pos": 10}, {"at": 400, "pos": 90}]}`)

	execute(t, "", "shift", "--", "-250", path)

	// The offset shrinks so the first action lands on 0 ms.
	want := []types.Action{{At: 0, Pos: 10}, {At: 300, Pos: 90}}
	if diff := cmp.Diff(want, readActions(t, path)); diff != "" {
		t.Errorf("actions mismatch (-want +got):\n%s", diff)
	}
}

func TestInvert(t *testing.T) {
	path := writeFile(t, t.TempDir(), "a.funscript", `{"actions": [{"at": 100, "pos": 10}, {"at": 400, "pos": 100}]}`)

	execute(t, "", "invert", path)

	want := []types.Action{{At: 100, Pos: 90}, {At: 400, Pos: 0}}
	if diff := cmp.Diff(want, readActions(t, path)); diff != "" {
		t.Errorf("actions mismatch (-want +got):\n%s", diff)
	}
}

func TestRunSession(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.funscript", `{"actions": [{"at": 0, "pos": 0}]}`)
	writeFile(t, dir, "b.funscript", `{"actions": [{"at": 0, "pos": 100}]}`)
	session := writeFile(t, dir, "session.yaml", `
fps: 30
mirror: true
scripts:
  - a.funscript
  - b.funscript
steps:
  - seek 1000
  - add 50
  - seek 2000
  - add 70
  - undo
save: true
output: out
`)

	out := execute(t, "", "run", session)

	if !strings.Contains(out, "a\t2 actions") || !strings.Contains(out, "b\t2 actions") {
		t.Errorf("unexpected summary:\n%s", out)
	}
	if got := strings.Count(out, "undo: Add/Edit actions (all scripts)"); got != 1 {
		t.Errorf("expected one mirrored undo step, got %d:\n%s", got, out)
	}
	want := []types.Action{{At: 0, Pos: 100}, {At: 1000, Pos: 50}}
	if diff := cmp.Diff(want, readActions(t, filepath.Join(dir, "out", "b.funscript"))); diff != "" {
		t.Errorf("saved actions mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]types.Action{{At: 0, Pos: 100}}, readActions(t, filepath.Join(dir, "b.funscript"))); diff != "" {
		t.Errorf("source file was modified (-want +got):\n%s", diff)
	}
}

func TestRunSessionReportsFailingStep(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.funscript", `{"actions": []}`)
	session := writeFile(t, dir, "session.yaml", "scripts: [a.funscript]\nsteps: [\"add\"]\n")

	cmd := buildRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--config", filepath.Join(dir, "none.toml"), "--loglevel", "error", "run", session})
	err := cmd.Execute()
	if err == nil || !strings.Contains(err.Error(), "step 1") {
		t.Fatalf("expected step 1 to fail, got %v", err)
	}
}

func TestEditReadsCommandsFromStdin(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.funscript", `{"actions": [{"at": 0, "pos": 0}]}`)
	cfg := writeFile(t, dir, "config.toml", `
[plugins.autobackup]
enabled = false

[plugins.filewatch]
enabled = false
`)

	cmd := buildRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader("seek 500\nadd 80\nbogus\n"))
	cmd.SetArgs([]string{"--config", cfg, "--loglevel", "error", "edit", "--save", path})
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("edit: %v\n%s", err, out.String())
	}

	if !strings.Contains(out.String(), "unknown command") {
		t.Errorf("expected the bogus command to be reported:\n%s", out.String())
	}
	want := []types.Action{{At: 0, Pos: 0}, {At: 500, Pos: 80}}
	if diff := cmp.Diff(want, readActions(t, path)); diff != "" {
		t.Errorf("actions mismatch (-want +got):\n%s", diff)
	}
}
