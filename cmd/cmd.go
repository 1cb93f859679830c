// Package cmd defines the command-line interface for contriboard.
package cmd

import (
	"github.com/huangsam/contriboard/internal/contract"
	"github.com/huangsam/contriboard/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(snapshotCmd)
	rootCmd.AddCommand(recomputeCmd)
	rootCmd.AddCommand(leaderboardCmd)
	rootCmd.AddCommand(contributorCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(dbCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(versionCmd)

	// Add the db subcommands to the parent db command
	dbCmd.AddCommand(dbStatusCmd)
	dbCmd.AddCommand(dbClearCmd)
	dbCmd.AddCommand(dbMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().StringSlice("repositories", nil, "Repositories to sync as owner/name (default ethereum/EIPs,ethereum/ERCs,ethereum/RIPs)")
	rootCmd.PersistentFlags().String("lookback", contract.DefaultLookback, "How far back the first sync of a repository reaches")
	rootCmd.PersistentFlags().String("db-backend", string(schema.SQLiteBackend), "Storage backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("db-connect", "", "Database connection string (file path for sqlite, DSN for mysql/postgresql)")
	rootCmd.PersistentFlags().String("api-base-url", "", "Override the GitHub API base URL (GitHub Enterprise)")
	rootCmd.PersistentFlags().IntP("limit", "l", contract.DefaultResultLimit, "Number of results to display")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for numeric columns")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level: debug or info or warn or error")
	rootCmd.PersistentFlags().String("log-format", "text", "Log format: text or json")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of serveCmd to Viper
	serveCmd.Flags().String("listen", contract.DefaultListen, "Address the HTTP server listens on")
	serveCmd.Flags().StringSlice("cors-origins", nil, "Allowed CORS origins (default *)")
	serveCmd.Flags().String("sync-interval", "", "Run a sync pass on this interval while serving, e.g. 1h or 6 hours (empty = only on trigger)")
	serveCmd.Flags().Bool("snapshot-daily", false, "Capture the daily snapshot after every scheduled sync pass")
	if err := viper.BindPFlags(serveCmd.Flags()); err != nil {
		contract.LogFatal("Error binding serve flags", err)
	}

	// Bind all flags of snapshotCmd to Viper
	snapshotCmd.Flags().String("date", "", "Snapshot date as YYYY-MM-DD (default today, UTC)")
	if err := viper.BindPFlags(snapshotCmd.Flags()); err != nil {
		contract.LogFatal("Error binding snapshot flags", err)
	}

	// Bind all flags of leaderboardCmd to Viper
	leaderboardCmd.Flags().String("board", string(schema.OverallBoard), "Leaderboard type: overall, commits, prs, reviews, comments, issues, rising-stars, mentors")
	leaderboardCmd.Flags().String("period", "", "Ranking period: all or weekly or monthly (enables paginated rankings)")
	leaderboardCmd.Flags().String("repo", "", "Restrict the ranking to one repository")
	leaderboardCmd.Flags().Int("page", 1, "Ranking page, starting at 1")
	if err := viper.BindPFlags(leaderboardCmd.Flags()); err != nil {
		contract.LogFatal("Error binding leaderboard flags", err)
	}

	// Bind all flags of dbMigrateCmd to Viper
	dbMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(dbMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding db migrate flags", err)
	}
}
