package main

import (
	"errors"
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"c2c/internal/driver"
)

var watchCmd = &cobra.Command{
	Use:   "watch [flags] <tree>...",
	Short: "Relink module trees whenever they change",
	Long: `Link the module trees once, then watch their directories and link again each
time the content of the tree set changes. Reentrant mode rewrites the data files`,
	Args: cobra.MinimumNArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().Duration("settle", 150*time.Millisecond, "quiet period before relinking after a change")
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	cmd.SetContext(ctx)

	settle, err := cmd.Flags().GetDuration("settle")
	if err != nil {
		return fmt.Errorf("failed to get settle flag: %w", err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	watched := make(map[string]bool, len(args))
	dirs := make(map[string]bool)
	for _, p := range args {
		abs, err := filepath.Abs(p)
		if err != nil {
			return err
		}
		watched[abs] = true
		dir := filepath.Dir(abs)
		if !dirs[dir] {
			// каталоги, а не файлы: редакторы пересоздают файл при сохранении
			if err := w.Add(dir); err != nil {
				return fmt.Errorf("failed to watch %s: %w", dir, err)
			}
			dirs[dir] = true
		}
	}

	var last driver.Digest
	relink := func() {
		digest, err := driver.Fingerprint(args)
		if err != nil {
			printError(cmd.ErrOrStderr(), err)
			return
		}
		if digest == last {
			return
		}
		last = digest
		fmt.Fprintf(cmd.ErrOrStderr(), "c2c: linking %d modules at %s\n", len(args), time.Now().Format(time.TimeOnly))
		if err := linkOnce(cmd, args); err != nil {
			printError(cmd.ErrOrStderr(), err)
		}
	}
	relink()

	timer := time.NewTimer(settle)
	timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !watched[filepath.Clean(ev.Name)] {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				timer.Reset(settle)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			if errors.Is(err, fsnotify.ErrEventOverflow) {
				timer.Reset(settle)
				continue
			}
			return err
		case <-timer.C:
			relink()
		}
	}
}

// linkOnce runs the command selected by the options on the tree set.
func linkOnce(cmd *cobra.Command, args []string) error {
	if opts.Reentrant {
		return runReentrant(cmd, args)
	}
	return runLink(cmd, args)
}
