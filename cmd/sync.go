package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ganeti-netbox-sync/core/storage"
	"ganeti-netbox-sync/feature/syncer"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	syncInput   string
	syncDryRun  bool
	syncWorkers int
	syncReport  bool
)

// syncCmd reconciles one profile.
var syncCmd = &cobra.Command{
	Use:   "sync <profile>",
	Short: "Synchronize a Ganeti cluster's instances into its NetBox cluster",
	Long: `Reads the instance list of the profile's Ganeti cluster and makes the
NetBox cluster match it: stale virtual machines are removed, changed ones
updated and new ones created.

Examples:
  # Preview the changes
  sync eqiad --dry-run

  # Sync from a captured instance list
  sync eqiad -i instances.json
  sync eqiad -i s3://snapshots/eqiad/instances.json`,
	Args: cobra.ExactArgs(1),
	RunE: runSync,
}

func init() {
	syncCmd.Flags().StringVarP(&syncInput, "in-json", "i", "", "Read instances from a JSON file or s3://bucket/key instead of the Ganeti API")
	syncCmd.Flags().BoolVarP(&syncDryRun, "dry-run", "d", false, "Report the changes without applying them (implies --verbose)")
	syncCmd.Flags().IntVar(&syncWorkers, "workers", 0, "Concurrent catalog mutations (default sync.workers)")
	syncCmd.Flags().BoolVar(&syncReport, "json", false, "Write the run report to sync_<profile>_<unix>.json")

	RootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	cfg, l, err := setup(cmd, syncDryRun)
	if err != nil {
		return err
	}
	defer l.Sync()

	var opts []syncer.Option
	if _, _, ok := storage.ParseURL(syncInput); ok {
		client, err := storage.NewClient(cfg.Storage)
		if err != nil {
			return fmt.Errorf("failed to connect to storage: %w", err)
		}
		opts = append(opts, syncer.WithStorage(client))
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, err := syncer.NewService(cfg, l, opts...).Run(ctx, syncer.RunRequest{
		Profile:   args[0],
		DryRun:    syncDryRun,
		InputPath: syncInput,
		Workers:   syncWorkers,
	})
	if err != nil {
		return err
	}

	for _, f := range report.Failures {
		l.Warn("Instance not synchronized",
			zap.String("key", f.Key),
			zap.String("action", string(f.Action)),
			zap.String("error", f.Error),
		)
	}

	if syncReport {
		path := fmt.Sprintf("sync_%s_%d.json", report.Profile, time.Now().Unix())
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return err
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		l.Info("Report saved", zap.String("file", path))
	}

	return nil
}
