// Package outwriter has output and writer logic.
package outwriter

import (
	"time"

	"github.com/huangsam/contriboard/internal/contract"
	"github.com/huangsam/contriboard/schema"
)

// OutWriter provides a unified interface for all output operations.
// It encapsulates the various output formats and provides a clean API for the commands.
type OutWriter struct{}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WriteLeaderboard prints a leaderboard using the configured output format.
func (ow *OutWriter) WriteLeaderboard(board schema.Leaderboard, cfg *contract.Config) error {
	return WriteLeaderboard(board, cfg)
}

// WriteRanking prints one ranking page using the configured output format.
func (ow *OutWriter) WriteRanking(page schema.RankingPage, cfg *contract.Config) error {
	return WriteRanking(page, cfg)
}

// WriteContributor prints a contributor with rank and per-repository breakdown.
func (ow *OutWriter) WriteContributor(detail schema.ContributorDetail, cfg *contract.Config) error {
	return WriteContributor(detail, cfg)
}

// WriteStatus prints store and sync status using the configured output format.
func (ow *OutWriter) WriteStatus(report StatusReport, cfg *contract.Config) error {
	return WriteStatus(report, cfg)
}

// WriteRun prints the outcome of one sync run using the configured output format.
func (ow *OutWriter) WriteRun(summary schema.RunSummary, cfg *contract.Config, duration time.Duration) error {
	return WriteRun(summary, cfg, duration)
}
