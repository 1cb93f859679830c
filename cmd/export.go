package cmd

import (
	"fmt"

	"github.com/huangsam/contriboard/internal/contract"
	"github.com/huangsam/contriboard/internal/parquet"
	"github.com/spf13/cobra"
)

// exportCmd exports stored data to Parquet files.
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export activities, contributors and snapshots to Parquet for BI tools.",
	Long: `Export all stored data to Parquet format for use with analytics tools.

Writes three files into the directory given by --output-file:
- activities.parquet   the canonical activity log
- contributors.parquet current aggregates per contributor
- snapshots.parquet    the full daily snapshot history

Examples:
  # Export into ./contriboard-export
  contriboard export

  # Query with DuckDB
  contriboard export --output-file data
  duckdb -c "SELECT username, SUM(1) FROM read_parquet('data/activities.parquet') GROUP BY 1"`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		dir := cfg.OutputFile
		if dir == "" {
			dir = "contriboard-export"
		}
		result, err := parquet.ExportStore(rootCtx, stores.GetStore(), dir)
		if err != nil {
			contract.LogFatal("Failed to export data", err)
		}
		fmt.Printf("Exported %d activities, %d contributors and %d snapshots to %s\n",
			result.Activities, result.Contributors, result.Snapshots, result.Dir)
	},
}
