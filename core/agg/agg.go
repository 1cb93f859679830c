// Package agg has aggregation logic for contributor activity logs.
package agg

import (
	"sort"
	"time"

	"github.com/huangsam/contriboard/schema"
)

// Aggregate is the per-repository breakdown of one contributor's activity log.
type Aggregate struct {
	Stats           []schema.RepositoryStats
	FirstActivityAt time.Time
	LastActivityAt  time.Time
}

// typeCounts counts activities of each type within one repository.
type typeCounts struct {
	counts map[schema.ActivityType]int
	last   time.Time
}

// AggregateActivities groups activities by repository and applies weights.
// The result does not depend on the order of activities, and repositories are
// sorted by name so that summing them always happens in the same order.
func AggregateActivities(activities []schema.Activity, weights map[schema.ActivityType]float64) Aggregate {
	byRepo := make(map[string]*typeCounts)
	var out Aggregate

	for _, a := range activities {
		tc, ok := byRepo[a.Repository]
		if !ok {
			tc = &typeCounts{counts: make(map[schema.ActivityType]int)}
			byRepo[a.Repository] = tc
		}
		tc.counts[a.ActivityType]++
		if a.Timestamp.After(tc.last) {
			tc.last = a.Timestamp
		}
		if out.FirstActivityAt.IsZero() || a.Timestamp.Before(out.FirstActivityAt) {
			out.FirstActivityAt = a.Timestamp
		}
		if a.Timestamp.After(out.LastActivityAt) {
			out.LastActivityAt = a.Timestamp
		}
	}

	repos := make([]string, 0, len(byRepo))
	for repo := range byRepo {
		repos = append(repos, repo)
	}
	sort.Strings(repos)

	out.Stats = make([]schema.RepositoryStats, 0, len(repos))
	for _, repo := range repos {
		tc := byRepo[repo]
		rs := StatsFromCounts(tc.counts, weights)
		rs.Repository = repo
		rs.LastActivityAt = tc.last
		out.Stats = append(out.Stats, rs)
	}
	return out
}

// StatsFromCounts turns per-type counts into counters and a weighted score.
// Types are visited in a fixed order so the float sum is reproducible.
func StatsFromCounts(counts map[schema.ActivityType]int, weights map[schema.ActivityType]float64) schema.RepositoryStats {
	var rs schema.RepositoryStats
	for _, t := range schema.AllActivityTypes {
		n := counts[t]
		if n == 0 {
			continue
		}
		rs.Score += float64(n) * weights[t]
		rs.Activities += n
		switch {
		case t == schema.Commit:
			rs.Commits += n
		case t == schema.PROpened:
			rs.PullRequests += n
		case t == schema.PRMerged:
			rs.PRsMerged += n
		case t.IsReview():
			rs.Reviews += n
		case t.IsComment():
			rs.Comments += n
		case t == schema.IssueOpened:
			rs.IssuesOpened += n
		}
	}
	return rs
}

// SumTotals derives the contributor totals from its repository breakdown.
// Totals are always a pure function of the breakdown.
func SumTotals(stats []schema.RepositoryStats) schema.Totals {
	var t schema.Totals
	for _, rs := range stats {
		t.ActivityScore += rs.Score
		t.Commits += rs.Commits
		t.PRsOpened += rs.PullRequests
		t.PRsMerged += rs.PRsMerged
		t.Reviews += rs.Reviews
		t.Comments += rs.Comments
		t.IssuesOpened += rs.IssuesOpened
		t.Activities += rs.Activities
	}
	return t
}

// TotalsByUser builds synthetic totals from grouped counts, as used by
// period rankings that read the activity log rather than the aggregates.
func TotalsByUser(counts []schema.ActivityCount, weights map[schema.ActivityType]float64) map[string]schema.Totals {
	grouped := make(map[string]map[schema.ActivityType]int)
	for _, c := range counts {
		m, ok := grouped[c.Username]
		if !ok {
			m = make(map[schema.ActivityType]int)
			grouped[c.Username] = m
		}
		m[c.ActivityType] += c.Count
	}
	out := make(map[string]schema.Totals, len(grouped))
	for user, m := range grouped {
		out[user] = SumTotals([]schema.RepositoryStats{StatsFromCounts(m, weights)})
	}
	return out
}
