package core

import (
	"context"
	"time"

	"github.com/huangsam/contriboard/internal/metrics"
	"github.com/huangsam/contriboard/schema"
)

// SnapshotResult reports what one capture wrote.
type SnapshotResult struct {
	Date     time.Time `json:"date"`
	Captured int       `json:"captured"`
	Existing int       `json:"existing"`
}

// snapshotDate reduces an instant to its UTC calendar day.
func snapshotDate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// CaptureSnapshot appends one snapshot per contributor with activity for the
// day of asOf. Snapshots that already exist are left untouched, so running it
// twice for the same day writes nothing the second time. Each aggregate is
// recomputed before it is captured, so the snapshot carries the configured
// weights and current status, and again after a new snapshot since the
// rising star index reads the snapshot history.
func (e *Engine) CaptureSnapshot(ctx context.Context, asOf time.Time) (SnapshotResult, error) {
	result := SnapshotResult{Date: snapshotDate(asOf)}
	usernames, err := e.store.ActivityUsernames(ctx)
	if err != nil {
		return result, err
	}

	now := e.clock.Now()
	for _, username := range usernames {
		c, err := e.RecomputeContributor(ctx, username)
		if err != nil {
			return result, err
		}
		created, err := e.store.InsertSnapshot(ctx, schema.ContributorSnapshot{
			Username:   c.Username,
			Date:       result.Date,
			Totals:     c.Totals,
			CapturedAt: now,
		})
		if err != nil {
			return result, err
		}
		if !created {
			result.Existing++
			continue
		}
		result.Captured++
		metrics.SnapshotsCapturedTotal.Inc()
		if _, err := e.RecomputeContributor(ctx, username); err != nil {
			return result, err
		}
	}

	e.logger.Info("captured snapshots", "date", result.Date.Format(time.DateOnly),
		"captured", result.Captured, "existing", result.Existing)
	return result, nil
}
