package cmd

import (
	"github.com/huangsam/contriboard/internal/contract"
	"github.com/huangsam/contriboard/internal/outwriter"
	"github.com/spf13/cobra"
)

// contributorCmd prints one contributor in detail.
var contributorCmd = &cobra.Command{
	Use:   "contributor <username>",
	Short: "Show a contributor's score, rank and per-repository breakdown.",
	Long: `Display one contributor with their overall rank, activity status,
rising star index and a per-repository breakdown.

Aliases are resolved at ingest time, so look up the canonical username.

Examples:
  contriboard contributor vbuterin
  contriboard contributor vbuterin --output csv`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		detail, err := newEngine().GetContributor(rootCtx, args[0])
		if err != nil {
			contract.LogFatal("Cannot load contributor", err)
		}
		if err := outwriter.NewOutWriter().WriteContributor(detail, cfg); err != nil {
			contract.LogFatal("Cannot write contributor", err)
		}
	},
}
