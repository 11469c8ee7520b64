package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"collectionbuilder/querybuilder/pkg/store/retention"
	"collectionbuilder/querybuilder/pkg/telemetry/health"

	"github.com/spf13/cobra"
)

var pruneFlags struct {
	maxAge time.Duration
	daemon bool
	listen string
}

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete queries that have not been saved recently",
	Long: `Delete stored queries whose last save is older than retention.max_age.

With --daemon the pruner runs on retention.schedule (standard cron syntax)
until interrupted. --listen additionally serves /health, /ready, /version
and /metrics on the given address.

Examples:
  querybuilder prune --max-age 720h
  querybuilder prune --daemon --listen :9102`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := current.cfg.Retention
		if pruneFlags.maxAge > 0 {
			cfg.MaxAge = pruneFlags.maxAge
		}
		pruner := retention.NewPruner(current.store, cfg, retention.WithMetrics(current.metrics))

		if !pruneFlags.daemon {
			removed, err := pruner.Prune(cmd.Context())
			for _, name := range removed {
				fmt.Fprintln(current.out, name)
			}
			return err
		}

		scheduler := retention.NewScheduler(pruner, cfg.Schedule)
		if err := scheduler.Start(cmd.Context()); err != nil {
			return err
		}
		if !scheduler.IsRunning() {
			return fmt.Errorf("retention.schedule is empty")
		}
		if next := scheduler.NextRun(); next != nil {
			current.logger.Info("waiting for next pruning", "next_run", next.Format(time.RFC3339))
		}

		var serveErr error
		if pruneFlags.listen != "" {
			serveErr = serve(cmd.Context(), pruneFlags.listen)
		} else {
			<-cmd.Context().Done()
		}
		scheduler.Stop()
		return serveErr
	},
}

// serve exposes health and metrics endpoints until ctx is cancelled.
func serve(ctx context.Context, addr string) error {
	checker := health.New(0)
	checker.RegisterCheck("store", current.store.Ping)

	mux := http.NewServeMux()
	health.Mount(mux, checker, health.VersionInfo{Version: Version, Commit: GitCommit, BuildDate: BuildDate})
	mux.Handle("/metrics", current.metrics.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		current.logger.Info("serving health and metrics", "address", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("failed to serve %s: %w", addr, err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func init() {
	rootCmd.AddCommand(pruneCmd)
	pruneCmd.Flags().DurationVar(&pruneFlags.maxAge, "max-age", 0, "override retention.max_age")
	pruneCmd.Flags().BoolVar(&pruneFlags.daemon, "daemon", false, "run on retention.schedule until interrupted")
	pruneCmd.Flags().StringVar(&pruneFlags.listen, "listen", "", "address serving health and metrics endpoints in daemon mode")
}
