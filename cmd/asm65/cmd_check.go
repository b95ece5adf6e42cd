package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/dhamidi/asm65/workspace"
)

func newCheckCmd() *cobra.Command {
	var watch bool
	var interval time.Duration

	cmd := &cobra.Command{
		Use:   "check [dir]",
		Short: "Lex and parse every assembly file below a directory",
		Long: `Lex and parse every .asm, .s and .inc file below a directory
(default: the current directory) and report the first error of each file.

With --watch, keep polling for changes and report files as they change.`,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if watch && interval <= 0 {
				return fmt.Errorf("invalid --interval %s: must be positive", interval)
			}
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			ws := workspace.New(dir)
			out := cmd.OutOrStdout()

			if !watch {
				if err := ws.ScanAll(); err != nil {
					return fmt.Errorf("scan: %w", err)
				}
				files := ws.Files()
				failed := ws.Failed()
				report(out, failed)
				fmt.Fprintf(out, "%d file(s) checked, %d failed\n", len(files), len(failed))
				if len(failed) > 0 {
					return errors.New("check failed")
				}
				return nil
			}

			w := workspace.NewWatcher(ws,
				workspace.WithInterval(interval),
				workspace.WithChangeFunc(func(changed, removed []string) {
					var files []*workspace.File
					for _, path := range changed {
						if f := ws.GetFile(path); f != nil && f.Err != nil {
							files = append(files, f)
						} else {
							fmt.Fprintf(out, "%s: ok\n", path)
						}
					}
					report(out, files)
					for _, path := range removed {
						fmt.Fprintf(out, "%s: removed\n", path)
					}
				}),
			)
			w.Start()
			defer w.Stop()

			sigc := make(chan os.Signal, 1)
			signal.Notify(sigc, os.Interrupt, syscall.SIGTERM)
			defer signal.Stop(sigc)
			<-sigc
			return nil
		},
	}

	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "keep watching for changes")
	cmd.Flags().DurationVar(&interval, "interval", time.Second, "poll interval for --watch")

	return cmd
}

func report(w io.Writer, files []*workspace.File) {
	for _, f := range files {
		fmt.Fprintln(w, describe(f.Err))
		if len(f.Hints) > 0 {
			fmt.Fprintf(w, "\tdid you mean %s?\n", strings.Join(f.Hints, ", "))
		}
	}
}
