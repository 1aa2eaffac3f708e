package main

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strings"

	"github.com/bethropolis/funscripter/internal/funscript"
	"github.com/bethropolis/funscripter/internal/types"
	"github.com/rivo/uniseg"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// scriptStats summarises one funscript file.
type scriptStats struct {
	File       string  `json:"file" yaml:"file"`
	Title      string  `json:"title" yaml:"title"`
	Actions    int     `json:"actions" yaml:"actions"`
	RawActions int     `json:"rawActions" yaml:"rawActions"`
	DurationMs int32   `json:"durationMs" yaml:"durationMs"`
	AvgSpeed   float64 `json:"avgSpeed" yaml:"avgSpeed"` // Position units per second
	Strokes    int     `json:"strokes" yaml:"strokes"`
	Inverted   bool    `json:"inverted" yaml:"inverted"`
	Range      int32   `json:"range" yaml:"range"`
}

// buildStatCmd creates the "stat" command.
func buildStatCmd(c *cli) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "stat FILE...",
		Short: "Summarise funscript files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rows := make([]scriptStats, 0, len(args))
			for _, path := range args {
				s := funscript.New()
				if err := s.Open(path); err != nil {
					return err
				}
				rows = append(rows, collectStats(path, s))
			}
			return writeStats(cmd.OutOrStdout(), format, rows)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format: text, json or yaml")
	return cmd
}

func collectStats(path string, s *funscript.Funscript) scriptStats {
	_, inverted, rng := s.Header()
	actions := s.Actions()
	st := scriptStats{
		File:       filepath.Base(path),
		Title:      s.Metadata().Title,
		Actions:    len(actions),
		RawActions: len(s.RawActions()),
		Inverted:   inverted,
		Range:      rng,
	}
	if len(actions) == 0 {
		return st
	}
	st.DurationMs = actions[len(actions)-1].At

	// A stroke is a run of moves in one direction.
	var (
		travel int64
		up     bool
	)
	for i := 1; i < len(actions); i++ {
		d := actions[i].Pos - actions[i-1].Pos
		if d == 0 {
			continue
		}
		travel += int64(types.Abs32(d))
		if st.Strokes == 0 || (d > 0) != up {
			st.Strokes++
			up = d > 0
		}
	}
	if span := actions[len(actions)-1].At - actions[0].At; span > 0 {
		st.AvgSpeed = math.Round(float64(travel)/(float64(span)/1000)*100) / 100
	}
	return st
}

func writeStats(w io.Writer, format string, rows []scriptStats) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(rows)
	case "text":
		writeStatsTable(w, rows)
		return nil
	}
	return fmt.Errorf("unknown format '%s' (want text, json or yaml)", format)
}

// writeStatsTable aligns columns by display width so titles in any script
// line up.
func writeStatsTable(w io.Writer, rows []scriptStats) {
	header := []string{"FILE", "TITLE", "ACTIONS", "STROKES", "DURATION", "SPEED"}
	cells := [][]string{header}
	for _, r := range rows {
		cells = append(cells, []string{
			r.File,
			r.Title,
			fmt.Sprint(r.Actions),
			fmt.Sprint(r.Strokes),
			formatMs(r.DurationMs),
			fmt.Sprintf("%.2f", r.AvgSpeed),
		})
	}

	widths := make([]int, len(header))
	for _, row := range cells {
		for i, cell := range row {
			widths[i] = max(widths[i], uniseg.StringWidth(cell))
		}
	}
	for _, row := range cells {
		var b strings.Builder
		for i, cell := range row {
			b.WriteString(cell)
			if i < len(row)-1 {
				b.WriteString(strings.Repeat(" ", widths[i]-uniseg.StringWidth(cell)+2))
			}
		}
		fmt.Fprintln(w, b.String())
	}
}

func formatMs(ms int32) string {
	total := ms / 1000
	return fmt.Sprintf("%d:%02d:%02d.%03d", total/3600, total/60%60, total%60, ms%1000)
}
