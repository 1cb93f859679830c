// Package core has core logic for scoring, snapshots, ranking and sync orchestration.
package core

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/huangsam/contriboard/internal/contract"
	"github.com/huangsam/contriboard/internal/credpool"
	"github.com/huangsam/contriboard/internal/normalize"
	"github.com/huangsam/contriboard/internal/source"
	"github.com/huangsam/contriboard/schema"
)

// Engine computes and reads contributor aggregates over a store.
// It holds no state of its own beyond its collaborators.
type Engine struct {
	cfg     *contract.Config
	store   contract.Store
	clock   contract.Clock
	logger  *slog.Logger
	weights map[schema.ActivityType]float64
}

// NewEngine builds an engine. A nil clock uses wall time and a nil logger discards logs.
func NewEngine(cfg *contract.Config, store contract.Store, clock contract.Clock, logger *slog.Logger) *Engine {
	if clock == nil {
		clock = contract.SystemClock{}
	}
	if logger == nil {
		logger = contract.DiscardLogger()
	}
	weights := cfg.Weights
	if len(weights) == 0 {
		weights = schema.GetDefaultWeights()
	}
	return &Engine{cfg: cfg, store: store, clock: clock, logger: logger, weights: weights}
}

// SyncContext carries the handles one orchestration run passes into every
// repository pipeline.
type SyncContext struct {
	Config   *contract.Config
	Store    contract.Store
	Pool     *credpool.Pool
	Source   *source.Client
	Pipeline *normalize.Pipeline
	Clock    contract.Clock
	Logger   *slog.Logger
}

// NewSyncContext wires the credential pool, source client and normalizer from cfg.
// Configuration problems are reported here, before any network call.
func NewSyncContext(cfg *contract.Config, store contract.Store, logger *slog.Logger) (*SyncContext, error) {
	if err := cfg.ValidateForSync(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = contract.DiscardLogger()
	}
	clock := contract.SystemClock{}

	pool, err := credpool.New(cfg.Tokens,
		credpool.WithThreshold(cfg.RateLimitThreshold),
		credpool.WithAcquireTimeout(cfg.AcquireTimeout),
		credpool.WithRequestsPerSecond(cfg.RequestsPerSecond),
		credpool.WithClock(clock),
		credpool.WithLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", contract.ErrConfig, err)
	}

	client := source.NewClient(pool,
		source.WithBaseURL(cfg.APIBaseURL),
		source.WithHTTPClient(&http.Client{Timeout: cfg.RequestTimeout}),
		source.WithPerPage(cfg.PerPage),
		source.WithMaxRetries(cfg.MaxRetries),
		source.WithMaxRotations(cfg.MaxRotations),
		source.WithClock(clock),
		source.WithLogger(logger),
	)

	filter, err := normalize.NewFilter(cfg.BotPatterns, cfg.BotAllow, cfg.Aliases)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", contract.ErrConfig, err)
	}

	return &SyncContext{
		Config:   cfg,
		Store:    store,
		Pool:     pool,
		Source:   client,
		Pipeline: normalize.NewPipeline(filter, logger),
		Clock:    clock,
		Logger:   logger,
	}, nil
}
