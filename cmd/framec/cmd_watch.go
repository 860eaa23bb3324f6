package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// isStyleOrMarkup reports whether a change to path can affect a compile
func isStyleOrMarkup(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".frame", ".css", ".scss", ".sass":
		return true
	}
	return false
}

// watchLoop calls rebuild once changes to relevant files settled for delay.
// It returns when ctx is done or the watcher is closed.
func watchLoop(ctx context.Context, w *fsnotify.Watcher, delay time.Duration, log *zap.Logger, rebuild func([]string)) {
	debounce := time.NewTimer(0)
	<-debounce.C

	var pending []string
	for {
		select {
		case <-ctx.Done():
			debounce.Stop()
			return
		case event, ok := <-w.Events:
			if !ok {
				return
			}
			if !isStyleOrMarkup(event.Name) || event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			pending = append(pending, event.Name)
			debounce.Reset(delay)
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			log.Warn("watcher error", zap.Error(err))
		case <-debounce.C:
			if len(pending) > 0 {
				changed := pending
				pending = nil
				rebuild(changed)
			}
		}
	}
}

func newWatchCmd(flags *globalFlags) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "watch <document>",
		Short: "Compile a document again whenever it or a stylesheet next to it changes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := args[0]
			s, err := flags.session(cmd, input)
			if err != nil {
				return err
			}
			if output == "" {
				output = defaultOutput(input)
			}

			build := func() {
				start := time.Now()
				doc, err := s.compile(input)
				if err != nil {
					fmt.Fprintln(s.errOut, errorStyle.Render("✗ "+err.Error()))
					return
				}
				defer doc.Close()
				if err := writeDocument(doc, output); err != nil {
					fmt.Fprintln(s.errOut, errorStyle.Render("✗ "+err.Error()))
					return
				}
				fmt.Fprintf(s.out, "%s %s %s\n", successStyle.Render("✓ wrote"), output,
					mutedStyle.Render(time.Since(start).Round(time.Millisecond).String()))
			}

			watcher, err := fsnotify.NewWatcher()
			if err != nil {
				return fmt.Errorf("failed to create file watcher: %w", err)
			}
			defer watcher.Close()
			dir := filepath.Dir(input)
			if err := watcher.Add(dir); err != nil {
				return fmt.Errorf("failed to watch %s: %w", dir, err)
			}
			for _, extra := range s.cfg.SassLoadPaths {
				if err := watcher.Add(extra); err != nil {
					s.log.Warn("cannot watch load path", zap.String("dir", extra), zap.Error(err))
				}
			}

			build()
			fmt.Fprintln(s.out, mutedStyle.Render("watching "+dir+", press Ctrl+C to stop"))

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			delay := time.Duration(s.cfg.Debounce) * time.Millisecond
			watchLoop(ctx, watcher, delay, s.log, func(changed []string) {
				s.log.Debug("files changed", zap.Strings("files", changed))
				build()
			})
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: input with a .fui extension)")
	return cmd
}
