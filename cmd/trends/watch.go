package trends

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/saadjs/kcal-trends/internal/logger"
	"github.com/saadjs/kcal-trends/internal/pipeline"
)

const watchDebounce = 250 * time.Millisecond

var (
	watchRange  string
	watchMetric string
	watchChart  bool
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-run trends whenever the database or export file changes",
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := parseRequest(watchRange, watchMetric)
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return withDB(func(sqldb *sql.DB) error {
			var mu sync.Mutex
			out := cmd.OutOrStdout()
			p := newPipeline(sqldb, func(snap *pipeline.Snapshot) {
				mu.Lock()
				defer mu.Unlock()
				fmt.Fprintf(out, "\n== %s ==\n", snap.CompletedAt.Format(time.DateTime))
				printSnapshot(out, snap, watchChart)
			})

			targets := watchTargets()
			watcher, err := newWatcher(targets)
			if err != nil {
				return err
			}
			defer watcher.Close()

			if err := p.Submit(ctx, req); err != nil {
				return err
			}
			logger.Info("watching for changes", "files", strings.Join(targets, ","))
			watchLoop(ctx, watcher, targets, func() {
				if ctx.Err() != nil {
					return
				}
				if err := p.Refresh(ctx); err != nil {
					logger.Warn("refresh failed", "error", err)
				}
			})
			p.Wait()
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().StringVar(&watchRange, "range", "this-week", "Period: this-week|last-week|30d|90d")
	watchCmd.Flags().StringVar(&watchMetric, "metric", "calories", "Metric: calories|protein|carbs|fat")
	watchCmd.Flags().BoolVar(&watchChart, "chart", false, "Plot the metric per day")
}

func watchTargets() []string {
	targets := []string{cfg.DBPath}
	if cfg.ExportFile != "" {
		targets = append(targets, cfg.ExportFile)
	}
	return targets
}

// newWatcher watches the parent directories so files that are replaced
// or created later are still seen.
func newWatcher(targets []string) (*fsnotify.Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}
	seen := map[string]bool{}
	for _, t := range targets {
		dir := filepath.Dir(t)
		if seen[dir] {
			continue
		}
		seen[dir] = true
		if err := watcher.Add(dir); err != nil {
			if closeErr := watcher.Close(); closeErr != nil {
				logger.Error("failed to close watcher", "error", closeErr)
			}
			return nil, fmt.Errorf("watch %s: %w", dir, err)
		}
	}
	return watcher, nil
}

// watchLoop calls onChange once per burst of writes to any target until
// ctx is done. SQLite journal and WAL files count as the database.
func watchLoop(ctx context.Context, watcher *fsnotify.Watcher, targets []string, onChange func()) {
	names := map[string]bool{}
	for _, t := range targets {
		base := filepath.Base(t)
		names[base] = true
		names[base+"-wal"] = true
		names[base+"-journal"] = true
	}

	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !names[filepath.Base(event.Name)] {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(watchDebounce, onChange)
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("file watcher error", "error", err)
		}
	}
}
