package cmd

import (
	"fmt"

	"github.com/huangsam/contriboard/internal/contract"
	"github.com/spf13/cobra"
)

// recomputeCmd rebuilds every contributor aggregate from the activity log.
var recomputeCmd = &cobra.Command{
	Use:   "recompute",
	Short: "Rescore every contributor from the stored activity log.",
	Long: `Rebuild every contributor aggregate from the stored activities.

A sync only rescores the contributors it touched. Run this after changing
weights, bot patterns or status thresholds so every contributor reflects the
current configuration. No network call is made.

Examples:
  # Rescore everyone after editing weights in .contriboard.yaml
  contriboard recompute`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		n, err := newEngine().RecomputeAll(rootCtx)
		if err != nil {
			contract.LogFatal("Cannot recompute contributors", err)
		}
		fmt.Printf("Recomputed %d contributors\n", n)
	},
}
