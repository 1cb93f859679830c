package cmd

import (
	"github.com/huangsam/contriboard/internal/contract"
	"github.com/huangsam/contriboard/internal/outwriter"
	"github.com/spf13/cobra"
)

// statusCmd shows store health and per-repository sync state.
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display store statistics and the sync state of every repository.",
	Long: `Show the storage backend, record counts and the sync state machine of
each repository: idle, running or failed, when it last synced, and whether
a failed sync left a resume cursor behind.

Examples:
  contriboard status
  contriboard status --output json`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		store := stores.GetStore()
		status, err := store.GetStatus(rootCtx)
		if err != nil {
			contract.LogFatal("Failed to get store status", err)
		}
		states, err := store.ListSyncStates(rootCtx)
		if err != nil {
			contract.LogFatal("Failed to list sync states", err)
		}
		report := outwriter.StatusReport{Store: status, Repositories: states}
		if err := outwriter.NewOutWriter().WriteStatus(report, cfg); err != nil {
			contract.LogFatal("Cannot write status", err)
		}
	},
}
