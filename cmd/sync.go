package cmd

import (
	"fmt"
	"time"

	"github.com/huangsam/contriboard/core"
	"github.com/huangsam/contriboard/internal/contract"
	"github.com/huangsam/contriboard/internal/events"
	"github.com/huangsam/contriboard/internal/outwriter"
	"github.com/spf13/cobra"
)

// newOrchestrator wires a sync orchestrator and its event publisher from cfg.
// The caller closes the publisher.
func newOrchestrator() (*core.Orchestrator, contract.EventPublisher, error) {
	sc, err := core.NewSyncContext(cfg, stores.GetStore(), logger)
	if err != nil {
		return nil, nil, err
	}
	publisher, err := events.NewPublisher(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create event publisher: %w", err)
	}
	return core.NewOrchestrator(sc, newEngine(), publisher), publisher, nil
}

// syncCmd runs one orchestration pass over every configured repository.
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Fetch new activity for every repository and rescore contributors.",
	Long: `Run one sync pass over the configured repositories.

For each repository the pass:
- Pulls commits, pull requests, reviews, comments and issues since the last sync
- Drops bot accounts and folds aliases into canonical usernames
- Stores new activities and recomputes every touched contributor
- Refreshes stale contributor profiles

Repositories are processed concurrently. A repository that fails is marked
failed and keeps its resume cursor; the others are unaffected.

Tokens are read from the tokens setting, usually CONTRIBOARD_TOKENS.

Examples:
  # Sync the default repositories
  CONTRIBOARD_TOKENS=ghp_a,ghp_b contriboard sync

  # Sync a custom set and print the outcome as JSON
  contriboard sync --repositories ethereum/EIPs,ethereum/ERCs --output json`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		orchestrator, publisher, err := newOrchestrator()
		if err != nil {
			contract.LogFatal("Cannot start sync", err)
		}
		defer func() { _ = publisher.Close() }()

		start := time.Now()
		summary, err := orchestrator.Run(rootCtx)
		if err != nil {
			contract.LogFatal("Sync failed", err)
		}
		if err := outwriter.NewOutWriter().WriteRun(summary, cfg, time.Since(start)); err != nil {
			contract.LogFatal("Cannot write sync outcome", err)
		}
		if summary.Failed() > 0 {
			contract.LogWarn("Sync incomplete", fmt.Errorf("%d repositories failed", summary.Failed()))
		}
	},
}
