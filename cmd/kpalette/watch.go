package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

func NewWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch <input> <output> [k]",
		Short: "Re-run whenever the input file changes",
		Long: `Runs once, then watches the local input file and runs again after every
change. Edits arriving within the debounce window are batched.`,
		Args: cobra.RangeArgs(2, 3),
		RunE: runWatch,
	}

	cmd.Flags().Duration("debounce", 500*time.Millisecond, "Debounce window for batching changes")
	return cmd
}

func runWatch(cmd *cobra.Command, args []string) error {
	input, output := args[0], args[1]

	loc, err := parseLocation(input)
	if err != nil {
		return err
	}
	if loc.Remote() {
		return fmt.Errorf("watch needs a local input, got %s", input)
	}

	cfg, logger, err := setup(cmd, args[2:])
	if err != nil {
		return err
	}
	debounce, _ := cmd.Flags().GetDuration("debounce")

	target, err := filepath.Abs(input)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory: editors often replace files by rename.
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(target), err)
	}

	q := newQuantizer(cfg, logger, cmd.OutOrStdout())
	ctx := cmd.Context()

	run := func() {
		if _, err := q.Run(ctx, input, output); err != nil {
			logger.ErrorContext(ctx, "run failed", "input", input, "error", err)
		}
	}
	run()

	fmt.Fprintf(cmd.OutOrStdout(), "Watching %s for changes...\n", input)

	timer := time.NewTimer(0)
	if !timer.Stop() {
		<-timer.C
	}
	pending := false

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if shouldIgnoreEvent(event, target) {
				continue
			}
			if !pending {
				timer.Reset(debounce)
				pending = true
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "watch error: %v\n", err)
		case <-timer.C:
			pending = false
			run()
		}
	}
}

func shouldIgnoreEvent(event fsnotify.Event, target string) bool {
	name, err := filepath.Abs(event.Name)
	if err != nil || name != target {
		return true
	}

	return event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0
}
