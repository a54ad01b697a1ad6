package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/zjrosen/prism/internal/log"
	"github.com/zjrosen/prism/internal/pubsub"
	"github.com/zjrosen/prism/internal/watcher"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Reload the snapshot on change and report invalidations",
	Long: `Watch the snapshot file and push every change into the registry.
Each reload prints the projections whose inputs may have changed.

Reloads are debounced (auto_reload_debounce_ms) so editors that write
in bursts trigger a single reload. With auto_reload off in the config,
or the auto-reload feature flag disabled, changes are reported but the
registry keeps serving the loaded snapshot. Stop with Ctrl+C.

Example:
  prism watch
  prism watch -s fixtures/snapshot.yaml`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(_ *cobra.Command, _ []string) error {
	eng, err := loadEngine()
	if err != nil {
		return err
	}
	defer eng.Close()

	w, err := watcher.New(watcher.Config{
		Path:        cfg.SnapshotPath,
		DebounceDur: time.Duration(cfg.AutoReloadDebounceMs) * time.Millisecond,
	})
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	changes, err := w.Start()
	if err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}
	defer func() {
		if stopErr := w.Stop(); stopErr != nil {
			log.ErrorErr(log.CatWatcher, "stopping watcher", stopErr)
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	updates := eng.registry.Subscribe(ctx)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	fmt.Printf("Watching %s (Ctrl+C to stop)\n", cfg.SnapshotPath)

	for {
		select {
		case <-changes:
			if !eng.autoReload() {
				fmt.Println(dimStyle.Render("snapshot changed; auto-reload is off, not reloading"))
				continue
			}
			if err := eng.reload(); err != nil {
				// Keep serving the previous snapshot; a half-written file
				// on the next save will trigger another reload.
				fmt.Printf("%s %v\n", cycleStyle.Render("reload failed:"), err)
				continue
			}
		case event, ok := <-updates:
			if !ok {
				return nil
			}
			if event.Type != pubsub.SourceUpdatedEvent {
				continue
			}
			fmt.Printf("%s source updated, projections to refresh: %s\n",
				dimStyle.Render(event.Timestamp.Format("15:04:05")),
				strings.Join(event.Payload.Projections, ", "))
		case sig := <-sigCh:
			fmt.Printf("\nReceived %s, stopping\n", sig)
			return nil
		}
	}
}
