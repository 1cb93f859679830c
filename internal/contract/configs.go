package contract

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/huangsam/contriboard/schema"
)

// Default values for configuration.
const (
	DefaultLookback            = "365 days"
	DefaultResultLimit         = 25
	MaxResultLimit             = 1000
	DefaultPrecision           = 1
	DefaultPerPage             = 100
	DefaultMaxRetries          = 4
	DefaultMaxRotations        = 3
	DefaultAcquireTimeout      = 2 * time.Minute
	DefaultRequestTimeout      = 30 * time.Second
	DefaultRateLimitThreshold  = 100
	DefaultRequestsPerSecond   = 10.0
	DefaultStaleSyncAfter      = 2 * time.Hour
	DefaultProfileRefreshAfter = 7 * 24 * time.Hour
	DefaultMentorMinReviews    = 5
	DefaultRisingStarWindow    = 30
	DefaultActiveDays          = 30
	DefaultOccasionalDays      = 90
	DefaultListen              = ":8080"
	DefaultKafkaTopic          = "contriboard.sync-runs"
)

// DefaultRepositories are synced when none are configured.
var DefaultRepositories = []string{"ethereum/EIPs", "ethereum/ERCs", "ethereum/RIPs"}

// DefaultBotPatterns match common automation accounts.
var DefaultBotPatterns = []string{"*[bot]", "*-bot", "dependabot*", "github-actions*", "renovate*"}

// DateTimeFormat is the default date time representation.
var DateTimeFormat = time.RFC3339

// Config holds the runtime configuration for the engine.
// This struct is the "final, validated" config.
type Config struct {
	Repositories []string
	Tokens       []string // Please use env var as these are secrets
	APIBaseURL   string

	Lookback            time.Duration
	PerPage             int
	MaxRetries          int
	MaxRotations        int
	AcquireTimeout      time.Duration
	RequestTimeout      time.Duration
	RateLimitThreshold  int
	RequestsPerSecond   float64
	StaleSyncAfter      time.Duration
	ProfileRefreshAfter time.Duration

	BotPatterns []string
	BotAllow    []string
	Aliases     map[string]string

	// Weights is the final weight per activity type, defaults merged with overrides
	Weights map[schema.ActivityType]float64

	MentorMinReviews int
	RisingStarWindow int
	ActiveDays       int
	OccasionalDays   int

	DBBackend schema.DatabaseBackend
	DBConnect string // Please use env var as this is plaintext

	Listen        string
	TriggerSecret string // Please use env var as this is plaintext
	CORSOrigins   []string
	SyncInterval  time.Duration // 0 disables scheduled sync while serving
	SnapshotDaily bool

	KafkaBrokers []string
	KafkaTopic   string

	Board        schema.LeaderboardType
	SnapshotDate time.Time

	Output      schema.OutputMode
	OutputFile  string
	ResultLimit int
	Precision   int
	Width       int // Terminal width override (0 = auto-detect)
	UseColors   bool

	LogLevel  string
	LogFormat string
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// --- Source settings ---
	Repositories       []string `mapstructure:"repositories"`
	Tokens             []string `mapstructure:"tokens"`
	APIBaseURL         string   `mapstructure:"api-base-url"`
	Lookback           string   `mapstructure:"lookback"`
	PerPage            int      `mapstructure:"per-page"`
	MaxRetries         int      `mapstructure:"max-retries"`
	MaxRotations       int      `mapstructure:"max-rotations"`
	AcquireTimeout     string   `mapstructure:"acquire-timeout"`
	RequestTimeout     string   `mapstructure:"request-timeout"`
	RateLimitThreshold int      `mapstructure:"rate-limit-threshold"`
	RequestsPerSecond  float64  `mapstructure:"requests-per-second"`
	StaleSyncAfter     string   `mapstructure:"stale-sync-after"`
	ProfileRefresh     string   `mapstructure:"profile-refresh"`

	// --- Identity settings ---
	Bots     []string          `mapstructure:"bots"`
	BotAllow []string          `mapstructure:"bot-allow"`
	Aliases  map[string]string `mapstructure:"aliases"`

	// --- Scoring settings ---
	Weights          map[string]float64 `mapstructure:"weights"`
	MentorMinReviews int                `mapstructure:"mentor-min-reviews"`
	RisingStarWindow int                `mapstructure:"rising-star-window"`
	ActiveDays       int                `mapstructure:"status-active-days"`
	OccasionalDays   int                `mapstructure:"status-occasional-days"`

	// --- Storage settings ---
	DBBackend string `mapstructure:"db-backend"`
	DBConnect string `mapstructure:"db-connect"`

	// --- Service settings ---
	Listen        string   `mapstructure:"listen"`
	TriggerSecret string   `mapstructure:"trigger-secret"`
	CORSOrigins   []string `mapstructure:"cors-origins"`
	SyncInterval  string   `mapstructure:"sync-interval"`
	SnapshotDaily bool     `mapstructure:"snapshot-daily"`
	KafkaBrokers  []string `mapstructure:"kafka-brokers"`
	KafkaTopic    string   `mapstructure:"kafka-topic"`

	// --- Command settings ---
	Board string `mapstructure:"board"`
	Date  string `mapstructure:"date"`

	// --- Output settings ---
	Output     string `mapstructure:"output"`
	OutputFile string `mapstructure:"output-file"`
	Limit      int    `mapstructure:"limit"`
	Precision  int    `mapstructure:"precision"`
	Width      int    `mapstructure:"width"`
	Color      string `mapstructure:"color"`
	LogLevel   string `mapstructure:"log-level"`
	LogFormat  string `mapstructure:"log-format"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	clone.Repositories = append([]string(nil), c.Repositories...)
	clone.Tokens = append([]string(nil), c.Tokens...)
	clone.BotPatterns = append([]string(nil), c.BotPatterns...)
	clone.BotAllow = append([]string(nil), c.BotAllow...)
	clone.KafkaBrokers = append([]string(nil), c.KafkaBrokers...)
	clone.CORSOrigins = append([]string(nil), c.CORSOrigins...)
	if c.Aliases != nil {
		clone.Aliases = make(map[string]string, len(c.Aliases))
		maps.Copy(clone.Aliases, c.Aliases)
	}
	if c.Weights != nil {
		clone.Weights = make(map[schema.ActivityType]float64, len(c.Weights))
		maps.Copy(clone.Weights, c.Weights)
	}
	return &clone
}

// ValidateForSync checks what an orchestration run needs before any network call.
func (c *Config) ValidateForSync() error {
	if len(c.Repositories) == 0 {
		return fmt.Errorf("%w: at least one repository is required", ErrConfig)
	}
	if len(c.Tokens) == 0 {
		return fmt.Errorf("%w: %w", ErrConfig, ErrNoCredentials)
	}
	if c.DBBackend == schema.NoneBackend {
		return fmt.Errorf("%w: sync requires a storage backend, got %s", ErrConfig, c.DBBackend)
	}
	return nil
}

// ProcessAndValidate performs all complex parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := processSourceInputs(cfg, input); err != nil {
		return fmt.Errorf("%w: %w", ErrConfig, err)
	}
	if err := processIdentityInputs(cfg, input); err != nil {
		return fmt.Errorf("%w: %w", ErrConfig, err)
	}
	if err := processScoringInputs(cfg, input); err != nil {
		return fmt.Errorf("%w: %w", ErrConfig, err)
	}
	if err := processServiceInputs(cfg, input); err != nil {
		return fmt.Errorf("%w: %w", ErrConfig, err)
	}
	if err := processOutputInputs(cfg, input); err != nil {
		return fmt.Errorf("%w: %w", ErrConfig, err)
	}
	return nil
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") && !strings.HasPrefix(connStr, "postgres://") && !strings.HasPrefix(connStr, "postgresql://") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' or be a postgres:// URL")
		}
	}
	return nil
}

// processSourceInputs validates repositories, credentials and client tuning.
func processSourceInputs(cfg *Config, input *ConfigRawInput) error {
	repos := splitList(input.Repositories)
	if len(repos) == 0 {
		repos = append([]string(nil), DefaultRepositories...)
	}
	seen := make(map[string]struct{}, len(repos))
	cfg.Repositories = cfg.Repositories[:0]
	for _, r := range repos {
		if _, _, err := schema.SplitRepository(r); err != nil {
			return err
		}
		if _, dup := seen[r]; dup {
			continue
		}
		seen[r] = struct{}{}
		cfg.Repositories = append(cfg.Repositories, r)
	}

	cfg.Tokens = splitList(input.Tokens)
	cfg.APIBaseURL = strings.TrimSpace(input.APIBaseURL)

	lookback := input.Lookback
	if lookback == "" {
		lookback = DefaultLookback
	}
	d, err := ParseLookbackDuration(lookback)
	if err != nil {
		return fmt.Errorf("invalid lookback: %w", err)
	}
	cfg.Lookback = d

	if cfg.PerPage, err = intInRange("per-page", input.PerPage, DefaultPerPage, 1, 100); err != nil {
		return err
	}
	if cfg.MaxRetries, err = intInRange("max-retries", input.MaxRetries, DefaultMaxRetries, 1, 20); err != nil {
		return err
	}
	if cfg.MaxRotations, err = intInRange("max-rotations", input.MaxRotations, DefaultMaxRotations, 1, 50); err != nil {
		return err
	}
	if input.RateLimitThreshold < 0 {
		return fmt.Errorf("rate-limit-threshold cannot be negative (received %d)", input.RateLimitThreshold)
	}
	cfg.RateLimitThreshold = input.RateLimitThreshold
	if input.RequestsPerSecond < 0 {
		return fmt.Errorf("requests-per-second cannot be negative (received %.2f)", input.RequestsPerSecond)
	}
	cfg.RequestsPerSecond = input.RequestsPerSecond
	if cfg.RequestsPerSecond == 0 {
		cfg.RequestsPerSecond = DefaultRequestsPerSecond
	}

	if cfg.AcquireTimeout, err = durationOrDefault("acquire-timeout", input.AcquireTimeout, DefaultAcquireTimeout); err != nil {
		return err
	}
	if cfg.RequestTimeout, err = durationOrDefault("request-timeout", input.RequestTimeout, DefaultRequestTimeout); err != nil {
		return err
	}
	if cfg.StaleSyncAfter, err = durationOrDefault("stale-sync-after", input.StaleSyncAfter, DefaultStaleSyncAfter); err != nil {
		return err
	}
	if cfg.ProfileRefreshAfter, err = durationOrDefault("profile-refresh", input.ProfileRefresh, DefaultProfileRefreshAfter); err != nil {
		return err
	}
	return nil
}

// processIdentityInputs normalizes the bot patterns and alias table.
func processIdentityInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.BotPatterns = splitList(input.Bots)
	if len(cfg.BotPatterns) == 0 {
		cfg.BotPatterns = append([]string(nil), DefaultBotPatterns...)
	}
	cfg.BotAllow = splitList(input.BotAllow)

	cfg.Aliases = make(map[string]string, len(input.Aliases))
	for alias, canonical := range input.Aliases {
		a := strings.ToLower(strings.TrimSpace(alias))
		c := strings.TrimSpace(canonical)
		if a == "" || c == "" {
			return fmt.Errorf("alias entries need both an alias and a canonical username (got %q -> %q)", alias, canonical)
		}
		if strings.EqualFold(a, c) {
			continue
		}
		cfg.Aliases[a] = c
	}
	for alias, canonical := range cfg.Aliases {
		if _, chained := cfg.Aliases[strings.ToLower(canonical)]; chained {
			return fmt.Errorf("alias %q points at %q which is itself an alias", alias, canonical)
		}
	}
	return nil
}

// ProcessWeightsRawInput converts raw weight overrides into the final weights map.
func ProcessWeightsRawInput(raw map[string]float64) (map[schema.ActivityType]float64, error) {
	weights := schema.GetDefaultWeights()
	for key, w := range raw {
		t := schema.ActivityType(strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(key), "-", "_")))
		if _, ok := schema.ValidActivityTypes[t]; !ok {
			return nil, fmt.Errorf("unknown activity type %q in weights", key)
		}
		if w < 0 {
			return nil, fmt.Errorf("weight for %s cannot be negative (received %.2f)", t, w)
		}
		weights[t] = w
	}
	return weights, nil
}

// processScoringInputs resolves weights and the derived-signal thresholds.
func processScoringInputs(cfg *Config, input *ConfigRawInput) error {
	weights, err := ProcessWeightsRawInput(input.Weights)
	if err != nil {
		return err
	}
	cfg.Weights = weights

	if cfg.MentorMinReviews, err = intInRange("mentor-min-reviews", input.MentorMinReviews, DefaultMentorMinReviews, 1, 10000); err != nil {
		return err
	}
	if cfg.RisingStarWindow, err = intInRange("rising-star-window", input.RisingStarWindow, DefaultRisingStarWindow, 2, 3650); err != nil {
		return err
	}
	if cfg.ActiveDays, err = intInRange("status-active-days", input.ActiveDays, DefaultActiveDays, 1, 3650); err != nil {
		return err
	}
	if cfg.OccasionalDays, err = intInRange("status-occasional-days", input.OccasionalDays, DefaultOccasionalDays, 1, 3650); err != nil {
		return err
	}
	if cfg.OccasionalDays < cfg.ActiveDays {
		return fmt.Errorf("status-occasional-days (%d) cannot be less than status-active-days (%d)", cfg.OccasionalDays, cfg.ActiveDays)
	}
	return nil
}

// processServiceInputs validates storage, HTTP and event settings.
func processServiceInputs(cfg *Config, input *ConfigRawInput) error {
	backend := input.DBBackend
	if backend == "" {
		backend = string(schema.SQLiteBackend)
	}
	cfg.DBBackend = schema.DatabaseBackend(strings.ToLower(backend))
	if _, ok := schema.ValidDatabaseBackends[cfg.DBBackend]; !ok {
		return fmt.Errorf("invalid db backend '%s'. must be sqlite, mysql, postgresql, none", input.DBBackend)
	}
	cfg.DBConnect = input.DBConnect
	if err := ValidateDatabaseConnectionString(cfg.DBBackend, cfg.DBConnect); err != nil {
		return err
	}

	cfg.Listen = input.Listen
	if cfg.Listen == "" {
		cfg.Listen = DefaultListen
	}
	cfg.TriggerSecret = input.TriggerSecret
	if cfg.TriggerSecret != "" && slices.Contains(cfg.Tokens, cfg.TriggerSecret) {
		return fmt.Errorf("trigger-secret must differ from every source token")
	}
	cfg.CORSOrigins = splitList(input.CORSOrigins)
	if len(cfg.CORSOrigins) == 0 {
		cfg.CORSOrigins = []string{"*"}
	}

	cfg.SyncInterval = 0
	if interval := strings.TrimSpace(input.SyncInterval); interval != "" && interval != "0" {
		d, err := ParseLookbackDuration(interval)
		if err != nil {
			return fmt.Errorf("invalid sync-interval: %w", err)
		}
		cfg.SyncInterval = d
	}
	cfg.SnapshotDaily = input.SnapshotDaily

	cfg.KafkaBrokers = splitList(input.KafkaBrokers)
	cfg.KafkaTopic = input.KafkaTopic
	if cfg.KafkaTopic == "" {
		cfg.KafkaTopic = DefaultKafkaTopic
	}

	cfg.Board = schema.LeaderboardType(strings.ToLower(input.Board))
	if cfg.Board == "" {
		cfg.Board = schema.OverallBoard
	}
	if _, ok := schema.ValidLeaderboardTypes[cfg.Board]; !ok {
		return fmt.Errorf("invalid leaderboard type '%s'", input.Board)
	}

	if input.Date != "" {
		d, err := time.Parse(time.DateOnly, input.Date)
		if err != nil {
			return fmt.Errorf("invalid date '%s'. Expected YYYY-MM-DD: %w", input.Date, err)
		}
		cfg.SnapshotDate = d
	}
	return nil
}

// processOutputInputs validates output format and terminal rendering options.
func processOutputInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width

	color := input.Color
	if color == "" {
		color = "yes"
	}
	colors, err := ParseBoolString(color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	limit := input.Limit
	if limit == 0 {
		limit = DefaultResultLimit
	}
	if limit < 0 || limit > MaxResultLimit {
		return fmt.Errorf("limit must be greater than 0 and cannot exceed %d (received %d)", MaxResultLimit, input.Limit)
	}
	cfg.ResultLimit = limit

	precision := input.Precision
	if precision == 0 {
		precision = DefaultPrecision
	}
	if precision < 1 || precision > 2 {
		return fmt.Errorf("precision must be 1 or 2 (received %d)", input.Precision)
	}
	cfg.Precision = precision

	output := input.Output
	if output == "" {
		output = string(schema.TextOut)
	}
	cfg.Output = schema.OutputMode(strings.ToLower(output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, parquet", input.Output)
	}

	cfg.LogLevel = input.LogLevel
	cfg.LogFormat = input.LogFormat
	if _, err := ParseLogLevel(cfg.LogLevel); err != nil {
		return err
	}
	return nil
}

// splitList flattens comma separated entries and drops blanks.
func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for part := range strings.SplitSeq(v, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

// intInRange applies a default for zero and checks inclusive bounds.
func intInRange(name string, value, def, lo, hi int) (int, error) {
	if value == 0 {
		value = def
	}
	if value < lo || value > hi {
		return 0, fmt.Errorf("%s must be between %d and %d (received %d)", name, lo, hi, value)
	}
	return value, nil
}

// durationOrDefault parses a duration flag, falling back to def when empty.
func durationOrDefault(name, value string, def time.Duration) (time.Duration, error) {
	if strings.TrimSpace(value) == "" {
		return def, nil
	}
	d, err := ParseLookbackDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", name, err)
	}
	return d, nil
}
