package cmd

import (
	"fmt"
	"maps"
	"slices"

	"github.com/huangsam/contriboard/internal/contract"
	"github.com/huangsam/contriboard/internal/iocache"
	"github.com/huangsam/contriboard/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// dbSetup loads minimal configuration needed for database maintenance.
// It does NOT open the store, so migrations can run on a fresh or broken database.
func dbSetup(_ *cobra.Command, _ []string) error {
	if err := readConfig(); err != nil {
		return err
	}

	backend := schema.DatabaseBackend(viper.GetString("db-backend"))
	if backend == "" {
		backend = schema.SQLiteBackend
	}
	connStr := viper.GetString("db-connect")

	// Basic validation for database backends
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return err
	}

	cfg.DBBackend = backend
	cfg.DBConnect = connStr
	return nil
}

// dbCmd focused on storage management.
//
// Note: db subcommands use minimal initialization (dbSetup) instead of the
// full sharedSetup. This avoids repository and credential validation for
// simple maintenance operations.
var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Manage the activity store",
	Long: `Manage the database holding activities, contributors, snapshots and sync state.

Supported backends: SQLite (default), MySQL, PostgreSQL, or None (disabled)

Subcommands:
  status  - Show record counts and connection info
  clear   - Remove all stored data
  migrate - Run database schema migrations`,
}

// dbStatusCmd shows store status.
var dbStatusCmd = &cobra.Command{
	Use:     "status",
	Short:   "Display store statistics and connection details",
	PreRunE: dbSetup,
	Run: func(_ *cobra.Command, _ []string) {
		mgr, err := iocache.OpenStore(cfg.DBBackend, cfg.DBConnect)
		if err != nil {
			contract.LogFatal("Failed to open store", err)
		}
		stores = mgr
		status, err := stores.GetStore().GetStatus(rootCtx)
		if err != nil {
			contract.LogFatal("Failed to get store status", err)
		}
		fmt.Printf("Backend: %s (connected: %t)\n", status.Backend, status.Connected)
		fmt.Printf("Activities: %d  Contributors: %d  Snapshots: %d\n",
			status.Activities, status.Contributors, status.Snapshots)
		for _, table := range slices.Sorted(maps.Keys(status.TableRows)) {
			fmt.Printf("  %s: %d rows\n", table, status.TableRows[table])
		}
	},
}

// dbClearCmd clears the store.
var dbClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all stored activity data",
	Long: `Delete all activities, contributors, snapshots and sync state.

WARNING: This action cannot be undone. Consider exporting data first.

For SQLite: Deletes the database file
For MySQL/PostgreSQL: Rolls back every migration

Examples:
  contriboard export --output-file backup
  contriboard db clear`,
	PreRunE: dbSetup,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ClearStore(cfg.DBBackend, cfg.DBConnect); err != nil {
			contract.LogFatal("Failed to clear store", err)
		}
		fmt.Println("Store cleared successfully.")
	},
}

// dbMigrateCmd runs database migrations for the store.
var dbMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage database schema versions for the activity store.

By default, migrates to the latest version. Use --target-version for specific versions.

Examples:
  # Migrate to latest version (default)
  contriboard db migrate

  # Rollback everything
  contriboard db migrate --target-version 0`,
	PreRunE: dbSetup,
	Run: func(_ *cobra.Command, _ []string) {
		targetVersion := viper.GetInt("target-version")
		result, err := iocache.Migrate(cfg.DBBackend, cfg.DBConnect, targetVersion)
		if err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
		if !result.Changed {
			fmt.Printf("Schema already at version %d.\n", result.ToVersion)
			return
		}
		fmt.Printf("Migrated schema from version %d to %d.\n", result.FromVersion, result.ToVersion)
	},
}
