package core

import (
	"context"
	"fmt"

	"github.com/huangsam/contriboard/core/agg"
	"github.com/huangsam/contriboard/core/algo"
	"github.com/huangsam/contriboard/internal/contract"
	"github.com/huangsam/contriboard/internal/metrics"
	"github.com/huangsam/contriboard/schema"
)

// RecomputeContributor rebuilds the aggregate of username from its full
// activity log and stores it. Running it twice over the same log yields the
// same totals, so concurrent recomputations converge.
func (e *Engine) RecomputeContributor(ctx context.Context, username string) (schema.Contributor, error) {
	activities, err := e.store.ActivitiesForUser(ctx, username)
	if err != nil {
		return schema.Contributor{}, err
	}
	if len(activities) == 0 {
		return schema.Contributor{}, fmt.Errorf("contributor %s: %w", username, contract.ErrNotFound)
	}
	snapshots, err := e.store.RecentSnapshots(ctx, username, e.risingStarWindow())
	if err != nil {
		return schema.Contributor{}, err
	}

	c := e.buildContributor(username, activities, snapshots)
	if err := e.store.UpsertContributor(ctx, c); err != nil {
		return schema.Contributor{}, err
	}
	metrics.ContributorsRecomputedTotal.Inc()
	return c, nil
}

// buildContributor is the pure part of recomputation.
func (e *Engine) buildContributor(username string, activities []schema.Activity, snapshots []schema.ContributorSnapshot) schema.Contributor {
	now := e.clock.Now()
	out := agg.AggregateActivities(activities, e.weights)
	return schema.Contributor{
		Username:        username,
		RepositoryStats: out.Stats,
		Totals:          agg.SumTotals(out.Stats),
		ActivityStatus:  algo.StatusFor(out.LastActivityAt, now, e.activeDays(), e.occasionalDays()),
		RisingStarIndex: algo.RisingStarIndex(snapshots, e.risingStarWindow()),
		FirstActivityAt: out.FirstActivityAt,
		LastActivityAt:  out.LastActivityAt,
		UpdatedAt:       now,
	}
}

// currentStatus re-buckets a stored aggregate against the clock. The stored
// status only reflects the moment of the last recompute.
func (e *Engine) currentStatus(c schema.Contributor) schema.Contributor {
	c.ActivityStatus = algo.StatusFor(c.LastActivityAt, e.clock.Now(), e.activeDays(), e.occasionalDays())
	return c
}

// RecomputeAll rebuilds every contributor that has activity, for example after
// a weight change. It returns how many aggregates were written.
func (e *Engine) RecomputeAll(ctx context.Context) (int, error) {
	usernames, err := e.store.ActivityUsernames(ctx)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, u := range usernames {
		if err := ctx.Err(); err != nil {
			return n, err
		}
		if _, err := e.RecomputeContributor(ctx, u); err != nil {
			return n, fmt.Errorf("failed to recompute %s: %w", u, err)
		}
		n++
	}
	e.logger.Info("recomputed contributors", "count", n)
	return n, nil
}

func (e *Engine) activeDays() int {
	if e.cfg.ActiveDays > 0 {
		return e.cfg.ActiveDays
	}
	return contract.DefaultActiveDays
}

func (e *Engine) occasionalDays() int {
	if e.cfg.OccasionalDays > 0 {
		return e.cfg.OccasionalDays
	}
	return contract.DefaultOccasionalDays
}

func (e *Engine) mentorMinReviews() int {
	if e.cfg.MentorMinReviews > 0 {
		return e.cfg.MentorMinReviews
	}
	return contract.DefaultMentorMinReviews
}

func (e *Engine) risingStarWindow() int {
	if e.cfg.RisingStarWindow > 0 {
		return e.cfg.RisingStarWindow
	}
	return contract.DefaultRisingStarWindow
}
