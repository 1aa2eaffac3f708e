package main

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strconv"

	"github.com/bethropolis/funscripter/internal/funscript"
	"github.com/bethropolis/funscripter/internal/logger"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// rewriteFunc edits an opened script before it is written back.
type rewriteFunc func(s *funscript.Funscript)

type rewriteOptions struct {
	minimal bool
	outDir  string
}

func (o *rewriteOptions) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&o.minimal, "minimal", false, "Write only the actions")
	cmd.Flags().StringVarP(&o.outDir, "output", "o", "", "Write into this directory instead of in place")
}

// rewriteFiles opens, edits and writes every file concurrently. Files are
// independent, so one failure does not stop the others; the first error is
// returned.
func rewriteFiles(cmd *cobra.Command, paths []string, opts rewriteOptions, edit rewriteFunc) error {
	written := make([]string, len(paths))
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, path := range paths {
		g.Go(func() error {
			s := funscript.New()
			if err := s.Open(path); err != nil {
				return err
			}
			if edit != nil {
				edit(s)
			}
			dest := path
			if opts.outDir != "" {
				dest = filepath.Join(opts.outDir, filepath.Base(path))
			}
			var err error
			if opts.minimal {
				err = s.SaveMinimal(dest)
			} else {
				err = s.Save(dest)
			}
			if err != nil {
				return err
			}
			logger.Debugf("rewrote %s -> %s", path, dest)
			written[i] = dest
			return nil
		})
	}
	err := g.Wait()
	for _, dest := range written {
		if dest != "" {
			fmt.Fprintln(cmd.OutOrStdout(), dest)
		}
	}
	return err
}

// buildFmtCmd creates the "fmt" command.
func buildFmtCmd(c *cli) *cobra.Command {
	var opts rewriteOptions
	cmd := &cobra.Command{
		Use:   "fmt FILE...",
		Short: "Rewrite funscript files with sorted, clamped actions",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return rewriteFiles(cmd, args, opts, nil)
		},
	}
	opts.register(cmd)
	return cmd
}

// buildShiftCmd creates the "shift" command.
func buildShiftCmd(c *cli) *cobra.Command {
	var opts rewriteOptions
	cmd := &cobra.Command{
		Use:   "shift MS FILE...",
		Short: "Move every action by MS milliseconds",
		Long: `Move every action by MS milliseconds. A negative offset is
shortened so the first action lands no earlier than 0 ms.
Put -- before a negative offset: funscripter shift -- -250 a.funscript`,
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			offset, err := strconv.ParseInt(args[0], 10, 32)
			if err != nil {
				return fmt.Errorf("invalid offset '%s': %w", args[0], err)
			}
			return rewriteFiles(cmd, args[1:], opts, func(s *funscript.Funscript) {
				s.SelectAll()
				s.MoveSelectionTime(int32(offset))
				s.ClearSelection()
			})
		},
	}
	opts.register(cmd)
	return cmd
}

// buildInvertCmd creates the "invert" command.
func buildInvertCmd(c *cli) *cobra.Command {
	var opts rewriteOptions
	cmd := &cobra.Command{
		Use:   "invert FILE...",
		Short: "Mirror every position (pos = 100 - pos)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return rewriteFiles(cmd, args, opts, func(s *funscript.Funscript) {
				s.SelectAll()
				s.InvertSelection()
				s.ClearSelection()
			})
		},
	}
	opts.register(cmd)
	return cmd
}
