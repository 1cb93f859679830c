package cmd

import (
	"github.com/huangsam/contriboard/core"
	"github.com/huangsam/contriboard/internal/contract"
	"github.com/huangsam/contriboard/internal/outwriter"
	"github.com/huangsam/contriboard/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// leaderboardCmd prints a leaderboard or a paginated ranking.
var leaderboardCmd = &cobra.Command{
	Use:   "leaderboard",
	Short: "Show the top contributors on a leaderboard.",
	Long: `Rank contributors on one of the leaderboards.

Boards:
- overall       total activity score
- commits       commit count
- prs           pull requests opened plus merged
- reviews       submitted reviews
- comments      issue and pull request comments
- issues        issues opened
- rising-stars  growth over the snapshot window
- mentors       reviewers with at least mentor-min-reviews reviews

With --period or --repo the ranking is computed from the activity log for
that window or repository and printed one page at a time.

Examples:
  # Overall top 10
  contriboard leaderboard --limit 10

  # This week's reviewers in one repository
  contriboard leaderboard --board reviews --period weekly --repo ethereum/EIPs

  # Export rising stars to CSV
  contriboard leaderboard --board rising-stars --output csv --output-file stars.csv`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		engine := newEngine()
		period := viper.GetString("period")
		repo := viper.GetString("repo")

		if period == "" && repo == "" {
			board, err := engine.BuildLeaderboard(rootCtx, cfg.Board, cfg.ResultLimit)
			if err != nil {
				contract.LogFatal("Cannot build leaderboard", err)
			}
			if err := outwriter.NewOutWriter().WriteLeaderboard(board, cfg); err != nil {
				contract.LogFatal("Cannot write leaderboard", err)
			}
			return
		}

		page, err := engine.BuildRanking(rootCtx, core.RankingQuery{
			Mode:       cfg.Board,
			Period:     schema.RankingPeriod(period),
			Repository: repo,
			Page:       viper.GetInt("page"),
			Limit:      cfg.ResultLimit,
		})
		if err != nil {
			contract.LogFatal("Cannot build ranking", err)
		}
		if err := outwriter.NewOutWriter().WriteRanking(page, cfg); err != nil {
			contract.LogFatal("Cannot write ranking", err)
		}
	},
}
