package core

import (
	"context"
	"sort"
	"time"

	"github.com/huangsam/contriboard/core/algo"
	"github.com/huangsam/contriboard/internal/contract"
	"github.com/huangsam/contriboard/schema"
)

func clampLimit(limit int) int {
	if limit <= 0 {
		return contract.DefaultResultLimit
	}
	return min(limit, contract.MaxResultLimit)
}

// ListContributors returns one filtered page of contributor aggregates.
func (e *Engine) ListContributors(ctx context.Context, filter schema.ContributorFilter) (schema.ContributorPage, error) {
	filter.Limit = clampLimit(filter.Limit)
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	contributors, total, err := e.store.ListContributors(ctx, filter)
	if err != nil {
		return schema.ContributorPage{}, err
	}
	if contributors == nil {
		contributors = []schema.Contributor{}
	}
	for i := range contributors {
		contributors[i] = e.currentStatus(contributors[i])
	}
	return schema.ContributorPage{
		Contributors: contributors,
		Total:        total,
		Limit:        filter.Limit,
		Offset:       filter.Offset,
	}, nil
}

// GetContributor returns one contributor with its overall rank and recent snapshots.
func (e *Engine) GetContributor(ctx context.Context, username string) (schema.ContributorDetail, error) {
	c, err := e.store.GetContributor(ctx, username)
	if err != nil {
		return schema.ContributorDetail{}, err
	}
	candidates, _, err := e.allCandidates(ctx)
	if err != nil {
		return schema.ContributorDetail{}, err
	}
	snapshots, err := e.store.RecentSnapshots(ctx, c.Username, e.risingStarWindow())
	if err != nil {
		return schema.ContributorDetail{}, err
	}
	if snapshots == nil {
		snapshots = []schema.ContributorSnapshot{}
	}
	return schema.ContributorDetail{
		Contributor: e.currentStatus(c),
		Rank:        algo.RankOf(schema.OverallBoard, candidates, c.Username, e.boardOptions()),
		Snapshots:   snapshots,
	}, nil
}

// Timeline returns one page of activities, newest first. Pages start at 1.
func (e *Engine) Timeline(ctx context.Context, filter schema.ActivityFilter, page, limit int) (schema.ActivityTimeline, error) {
	if page < 1 {
		page = 1
	}
	filter.Limit = clampLimit(limit)
	filter.Offset = (page - 1) * filter.Limit
	activities, total, err := e.store.ListActivities(ctx, filter)
	if err != nil {
		return schema.ActivityTimeline{}, err
	}
	if activities == nil {
		activities = []schema.Activity{}
	}
	return schema.ActivityTimeline{
		Activities: activities,
		Total:      total,
		Page:       page,
		Limit:      filter.Limit,
		HasMore:    filter.Offset+len(activities) < total,
	}, nil
}

// Stats summarizes the whole data set: totals, recent activity counts and a
// per-repository breakdown that includes configured repositories with no data yet.
func (e *Engine) Stats(ctx context.Context) (schema.StatsSummary, error) {
	now := e.clock.Now()
	summary := schema.StatsSummary{ByType: make(map[string]int), GeneratedAt: now}

	contributors, err := e.store.AllContributors(ctx)
	if err != nil {
		return summary, err
	}
	repos := make(map[string]*schema.RepositorySummary)
	repoFor := func(name string) *schema.RepositorySummary {
		rs, ok := repos[name]
		if !ok {
			rs = &schema.RepositorySummary{Repository: name}
			repos[name] = rs
		}
		return rs
	}
	for _, name := range e.cfg.Repositories {
		repoFor(name)
	}

	activeSince := now.AddDate(0, 0, -e.activeDays())
	for _, c := range contributors {
		summary.TotalContributors++
		summary.TotalScore += c.Totals.ActivityScore
		if !c.LastActivityAt.Before(activeSince) {
			summary.ActiveContributors++
		}
		for _, st := range c.RepositoryStats {
			rs := repoFor(st.Repository)
			rs.Contributors++
			rs.Activities += st.Activities
			rs.Score += st.Score
		}
	}

	if summary.TotalActivities, err = e.store.CountActivities(ctx, time.Time{}, ""); err != nil {
		return summary, err
	}
	windows := []struct {
		d   time.Duration
		dst *int
	}{
		{24 * time.Hour, &summary.Recent.Last24h},
		{7 * 24 * time.Hour, &summary.Recent.Last7d},
		{30 * 24 * time.Hour, &summary.Recent.Last30d},
	}
	for _, w := range windows {
		if *w.dst, err = e.store.CountActivities(ctx, now.Add(-w.d), ""); err != nil {
			return summary, err
		}
	}

	counts, err := e.store.CountByUserAndType(ctx, time.Time{}, "")
	if err != nil {
		return summary, err
	}
	for _, c := range counts {
		summary.ByType[string(c.ActivityType)] += c.Count
	}

	states, err := e.store.ListSyncStates(ctx)
	if err != nil {
		return summary, err
	}
	for _, st := range states {
		rs := repoFor(st.Repository)
		rs.Status = st.Status
		rs.LastSyncAt = st.LastSyncAt
	}

	summary.Repositories = make([]schema.RepositorySummary, 0, len(repos))
	for _, rs := range repos {
		summary.Repositories = append(summary.Repositories, *rs)
	}
	sort.Slice(summary.Repositories, func(i, j int) bool {
		return summary.Repositories[i].Repository < summary.Repositories[j].Repository
	})
	return summary, nil
}
