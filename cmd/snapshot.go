package cmd

import (
	"fmt"
	"time"

	"github.com/huangsam/contriboard/internal/contract"
	"github.com/spf13/cobra"
)

// snapshotCmd captures one dated snapshot per active contributor.
var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Capture today's contributor snapshots.",
	Long: `Copy every contributor's current totals into a snapshot for one calendar day.

Snapshots feed the rising star index and the contributor history. A day is
captured at most once; running the command again for the same date writes
nothing new.

Examples:
  # Capture today's snapshot (UTC)
  contriboard snapshot

  # Backfill a specific day
  contriboard snapshot --date 2025-06-01`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		asOf := time.Now()
		if !cfg.SnapshotDate.IsZero() {
			asOf = cfg.SnapshotDate
		}
		result, err := newEngine().CaptureSnapshot(rootCtx, asOf)
		if err != nil {
			contract.LogFatal("Cannot capture snapshot", err)
		}
		fmt.Printf("Snapshot %s: %d captured, %d already present\n",
			result.Date.Format(time.DateOnly), result.Captured, result.Existing)
	},
}
