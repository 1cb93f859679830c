package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/huangsam/contriboard/core"
	"github.com/huangsam/contriboard/internal/contract"
	"github.com/huangsam/contriboard/internal/httpapi"
	"github.com/huangsam/contriboard/schema"
	"github.com/spf13/cobra"
)

// unavailableSyncer answers every trigger with the error that kept the
// orchestrator from being built, so read endpoints still serve.
type unavailableSyncer struct{ err error }

func (u unavailableSyncer) Run(context.Context) (schema.RunSummary, error) {
	return schema.RunSummary{}, u.err
}

// runScheduled runs a sync pass every interval until ctx is done.
func runScheduled(ctx context.Context, syncer httpapi.Syncer, engine *core.Engine, interval time.Duration, snapshot bool) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			summary, err := syncer.Run(ctx)
			if err != nil {
				logger.Error("scheduled sync failed", slog.Any("err", err))
				continue
			}
			logger.Info("scheduled sync finished", "runId", summary.RunID,
				"repositories", len(summary.Results), "failed", summary.Failed())
			if snapshot {
				if _, err := engine.CaptureSnapshot(ctx, time.Now()); err != nil {
					logger.Error("scheduled snapshot failed", slog.Any("err", err))
				}
			}
		}
	}
}

// serveCmd starts the HTTP API.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve leaderboards, rankings and the sync trigger over HTTP.",
	Long: `Start the HTTP API.

Read endpoints live under /api:
  /api/contributors, /api/contributors/{username}, /api/contributors/{username}/timeline
  /api/activities, /api/leaderboard, /api/leaderboard/{type}, /api/rankings/{mode}, /api/stats

The sync trigger (/api/sync, GET or POST) requires
"Authorization: Bearer <trigger-secret>" and is disabled when no secret is set.
Prometheus metrics are exposed on /metrics.

Examples:
  # Serve on the default address with a trigger secret
  CONTRIBOARD_TRIGGER_SECRET=s3cret contriboard serve

  # Also sync every hour and capture the daily snapshot
  contriboard serve --listen :9090 --sync-interval 1h --snapshot-daily`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		ctx, stop := signal.NotifyContext(rootCtx, os.Interrupt, syscall.SIGTERM)
		defer stop()

		engine := newEngine()
		var syncer httpapi.Syncer
		orchestrator, publisher, err := newOrchestrator()
		if err != nil {
			contract.LogWarn("Sync trigger unavailable", err)
			syncer = unavailableSyncer{err: err}
		} else {
			defer func() { _ = publisher.Close() }()
			syncer = orchestrator
		}

		handler := httpapi.NewHandler(engine, syncer, cfg, logger)
		server := &http.Server{
			Addr:              cfg.Listen,
			Handler:           handler.Router(),
			ReadHeaderTimeout: 10 * time.Second,
		}

		if cfg.SyncInterval > 0 && orchestrator != nil {
			go runScheduled(ctx, orchestrator, engine, cfg.SyncInterval, cfg.SnapshotDaily)
		}

		go func() {
			logger.Info("starting http server", slog.String("addr", server.Addr))
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("server error", slog.Any("err", err))
				stop()
			}
		}()

		<-ctx.Done()
		logger.Info("shutting down server")

		ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancelShutdown()
		if err := server.Shutdown(ctxShutdown); err != nil {
			logger.Error("server shutdown error", slog.Any("err", err))
		}
		logger.Info("server stopped")
	},
}
