package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/huangsam/contriboard/core"
	"github.com/huangsam/contriboard/internal/contract"
	"github.com/huangsam/contriboard/internal/iocache"
	"github.com/huangsam/contriboard/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// All linker flags will be set by goreleaser infra at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCtx is the root context for all operations.
var rootCtx = context.Background()

// cfg will hold the validated, final configuration.
var cfg = &contract.Config{}

// input holds the raw, unvalidated configuration from all sources (file, env, flags).
// Viper will unmarshal into this struct.
var input = &contract.ConfigRawInput{}

// logger is built from the log-level and log-format settings during setup.
var logger = contract.DiscardLogger()

// stores owns the store opened during setup; Execute closes it.
var stores *iocache.StoreManager

// rootCmd is the command-line entrypoint for all other commands.
var rootCmd = &cobra.Command{
	Use:   "contriboard",
	Short: "Aggregate and score contributor activity across GitHub repositories.",
	Long: `Contriboard ingests commits, pull requests, reviews, comments and issues from a
fixed set of GitHub repositories, scores every contributor, and serves
leaderboards and rankings from the results.`,
	Version:            version,
	SilenceErrors:      true,
	SilenceUsage:       true,
	DisableSuggestions: true,
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	setConfigSource()

	// Set environment variable prefix
	viper.SetEnvPrefix("CONTRIBOARD")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // Read in environment variables that match

	// Set defaults in Viper
	viper.SetDefault("limit", contract.DefaultResultLimit)
	viper.SetDefault("precision", contract.DefaultPrecision)
	viper.SetDefault("output", schema.TextOut)
	viper.SetDefault("lookback", contract.DefaultLookback)
	viper.SetDefault("db-backend", schema.SQLiteBackend)
	viper.SetDefault("db-connect", "")
	viper.SetDefault("listen", contract.DefaultListen)
	viper.SetDefault("kafka-topic", contract.DefaultKafkaTopic)
	viper.SetDefault("color", "yes")
}

// setConfigSource points viper at --config or the default .contriboard.yaml locations.
func setConfigSource() {
	if configFile := viper.GetString("config"); configFile != "" {
		viper.SetConfigFile(configFile)
		return
	}
	viper.SetConfigName(".contriboard") // Name of config file (without extension)
	viper.SetConfigType("yaml")         // We'll use YAML format
	viper.AddConfigPath(".")            // Look in the current directory
	viper.AddConfigPath("$HOME")        // Look in the home directory
}

// readConfig loads the config file if one exists. A missing file is fine.
func readConfig() error {
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}
	return nil
}

// loadConfig merges file, env and flags into cfg and builds the logger.
func loadConfig() error {
	// 1. Read config file. This merges defaults, file, env, and flags.
	if err := readConfig(); err != nil {
		return err
	}

	// 2. Unmarshal all resolved values from Viper into our raw input struct.
	if err := viper.Unmarshal(input); err != nil {
		return fmt.Errorf("unable to unmarshal config: %w", err)
	}

	// 3. Run all validation and complex parsing.
	if err := contract.ProcessAndValidate(cfg, input); err != nil {
		return err
	}

	logger = contract.NewLogger(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)
	return nil
}

// sharedSetup unmarshals config, runs validation and opens the store.
func sharedSetup(_ context.Context, _ *cobra.Command, _ []string) error {
	if err := loadConfig(); err != nil {
		return err
	}
	mgr, err := iocache.OpenStore(cfg.DBBackend, cfg.DBConnect)
	if err != nil {
		return fmt.Errorf("failed to initialize persistence: %w", err)
	}
	stores = mgr
	return nil
}

// sharedSetupWrapper wraps sharedSetup to provide context for Cobra's PreRunE.
func sharedSetupWrapper(cmd *cobra.Command, args []string) error {
	return sharedSetup(rootCtx, cmd, args)
}

// newEngine builds the scoring engine over the store opened during setup.
func newEngine() *core.Engine {
	return core.NewEngine(cfg, stores.GetStore(), contract.SystemClock{}, logger)
}

// Execute runs the root command.
func Execute() error {
	defer func() { _ = stores.Close() }()
	return rootCmd.Execute()
}
