package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/bethropolis/funscripter/internal/app"
	"github.com/bethropolis/funscripter/internal/player"
	"github.com/spf13/cobra"
)

// buildEditCmd creates the "edit" command: a line based editor that keeps
// the scripts open with backups and file watching running.
func buildEditCmd(c *cli) *cobra.Command {
	var saveOnExit bool
	cmd := &cobra.Command{
		Use:   "edit FILE...",
		Short: "Edit scripts with commands read from standard input",
		Long: `Edit scripts with commands read from standard input, one per line,
e.g. "seek 1000", "add 50", "undo". "quit" or end of input stops.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return c.editSession(ctx, cmd.InOrStdin(), cmd.OutOrStdout(), args, saveOnExit)
		},
	}
	cmd.Flags().BoolVar(&saveOnExit, "save", false, "Save every script on exit")
	return cmd
}

func (c *cli) editSession(ctx context.Context, in io.Reader, out io.Writer, paths []string, saveOnExit bool) error {
	clock := player.NewManualClock(c.cfg.Editor.FrameRate)
	a, err := app.NewApp(c.cfg, clock)
	if err != nil {
		return err
	}
	if err := openScripts(a, paths); err != nil {
		a.Close()
		return err
	}
	if err := a.RegisterCommand("quit", func([]string) error {
		a.Quit()
		return nil
	}); err != nil {
		a.Close()
		return err
	}

	// Input is read off the main loop and handed over line by line.
	var lastStatus string
	go func() {
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			a.Post(func() {
				if err := a.ExecuteLine(line); err != nil {
					fmt.Fprintf(out, "error: %v\n", err)
					return
				}
				if msg := a.StatusMessage(); msg != "" && msg != lastStatus {
					lastStatus = msg
					fmt.Fprintln(out, msg)
				}
			})
		}
		a.Post(a.Quit)
	}()

	if err := a.Run(ctx); err != nil {
		return err
	}
	if saveOnExit {
		return a.SaveAll()
	}
	return nil
}
