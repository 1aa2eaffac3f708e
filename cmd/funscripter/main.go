// Package main provides the funscripter command line tool.
//
// It inspects and rewrites funscript files and replays editing sessions
// through the same editing core an interactive editor uses.
//
// # Basic Usage
//
//	funscripter stat video.funscript
//	funscripter fmt --minimal *.funscript
//	funscripter shift 250 video.funscript
//	funscripter run session.yaml
//	funscripter edit video.funscript video.roll.funscript
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/bethropolis/funscripter/internal/config"
	"github.com/bethropolis/funscripter/internal/logger"
	"github.com/spf13/cobra"
)

// Build information - populated by ldflags during build.
var (
	version = "dev"
	commit  = "none"
)

// cli carries what PersistentPreRunE prepared for the subcommands.
type cli struct {
	flags     config.Flags
	cfg       *config.Config
	logCloser io.Closer
}

func main() {
	rootCmd := buildRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// buildRootCmd creates the root command with all subcommands attached.
func buildRootCmd() *cobra.Command {
	c := &cli{}
	rootCmd := &cobra.Command{
		Use:          config.AppName,
		Short:        "Inspect, rewrite and edit funscript files",
		Version:      fmt.Sprintf("%s (commit: %s)", version, commit),
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if c.logCloser != nil {
				c.logCloser.Close()
			}
		},
	}
	c.flags.Register(rootCmd.PersistentFlags())

	rootCmd.AddCommand(
		buildStatCmd(c),
		buildFmtCmd(c),
		buildShiftCmd(c),
		buildInvertCmd(c),
		buildRunCmd(c),
		buildEditCmd(c),
	)
	return rootCmd
}

// setup loads the configuration and installs the logger.
func (c *cli) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(c.flags.ConfigFilePath, cmd.Flags(), &c.flags)
	if err != nil {
		return err
	}
	closer, err := logger.Setup(cfg.Logger)
	if err != nil {
		return err
	}
	logger.SetDebugFilter(c.flags.DebugLog)
	c.cfg, c.logCloser = cfg, closer
	logger.Debugf("Configuration loaded: undo depth %d, mirror %v", cfg.Editor.UndoDepth, cfg.Editor.MirrorMode)
	return nil
}
