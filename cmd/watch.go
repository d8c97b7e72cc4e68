package cmd

import (
	"time"

	"rudder/internal/watcher"
	"rudder/pkg/logging"

	"github.com/spf13/cobra"
)

var (
	watchFlags    runFlags
	watchDebounce time.Duration
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-reconcile whenever the declaration file changes",
	Long: `Watch runs an initial reconciliation and then watches the declaration
file, re-running the pipeline each time the file settles after a change.
Runs against one device are serialized; a change arriving mid-run is
picked up afterwards.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		w := watcher.New(watchFlags.declaration, watchDebounce)
		changes := make(chan struct{}, 1)
		if err := w.Start(ctx, changes); err != nil {
			return err
		}
		defer w.Stop()

		if err := runReconcile(ctx, &watchFlags); err != nil {
			// The watch keeps going; the next edit may fix the problem.
			logging.Error("Watch", err, "Reconciliation failed")
		}

		for {
			select {
			case <-ctx.Done():
				return nil
			case <-changes:
				logging.Info("Watch", "Declaration changed, reconciling")
				if err := runReconcile(ctx, &watchFlags); err != nil {
					logging.Error("Watch", err, "Reconciliation failed")
				}
			}
		}
	},
}

func init() {
	watchFlags.register(watchCmd)
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 500*time.Millisecond, "Settle time before re-reconciling")
	rootCmd.AddCommand(watchCmd)
}
