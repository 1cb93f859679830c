package core

import (
	"context"
	"fmt"
	"time"

	"github.com/huangsam/contriboard/core/agg"
	"github.com/huangsam/contriboard/core/algo"
	"github.com/huangsam/contriboard/internal/contract"
	"github.com/huangsam/contriboard/schema"
)

// RankingQuery selects one page of a ranking.
type RankingQuery struct {
	Mode       schema.LeaderboardType
	Period     schema.RankingPeriod
	Repository string
	Page       int
	Limit      int
}

func (e *Engine) boardOptions() algo.BoardOptions {
	return algo.BoardOptions{MentorMinReviews: e.mentorMinReviews()}
}

func validBoard(t schema.LeaderboardType) error {
	if _, ok := schema.ValidLeaderboardTypes[t]; !ok {
		return fmt.Errorf("%w: unknown leaderboard type %q", contract.ErrInvalidInput, t)
	}
	return nil
}

func (e *Engine) allCandidates(ctx context.Context) ([]algo.Candidate, map[string]schema.Contributor, error) {
	contributors, err := e.store.AllContributors(ctx)
	if err != nil {
		return nil, nil, err
	}
	candidates := make([]algo.Candidate, 0, len(contributors))
	byName := make(map[string]schema.Contributor, len(contributors))
	for _, c := range contributors {
		c = e.currentStatus(c)
		candidates = append(candidates, algo.CandidateFromContributor(c))
		byName[c.Username] = c
	}
	return candidates, byName, nil
}

// BuildLeaderboard returns the top limit contributors of a board ordered by
// its key, ties broken by username. A limit of 0 returns every entry.
func (e *Engine) BuildLeaderboard(ctx context.Context, t schema.LeaderboardType, limit int) (schema.Leaderboard, error) {
	if t == "" {
		t = schema.OverallBoard
	}
	if err := validBoard(t); err != nil {
		return schema.Leaderboard{}, err
	}
	candidates, _, err := e.allCandidates(ctx)
	if err != nil {
		return schema.Leaderboard{}, err
	}
	sorted := algo.SortBoard(t, candidates, e.boardOptions())
	entries := algo.Entries(t, sorted, 0, limit)
	title, description := schema.BoardTitle(t)
	return schema.Leaderboard{
		Type:        t,
		Title:       title,
		Description: description,
		Entries:     entries,
		Count:       len(entries),
	}, nil
}

// ContributorRank returns the overall rank of username, or 0 if unknown.
func (e *Engine) ContributorRank(ctx context.Context, username string) (int, error) {
	candidates, _, err := e.allCandidates(ctx)
	if err != nil {
		return 0, err
	}
	return algo.RankOf(schema.OverallBoard, candidates, username, e.boardOptions()), nil
}

// periodStart returns the lower bound of a ranking period, zero for all time.
func periodStart(p schema.RankingPeriod, now time.Time) time.Time {
	switch p {
	case schema.WeeklyPeriod:
		return now.AddDate(0, 0, -7)
	case schema.MonthlyPeriod:
		return now.AddDate(0, 0, -30)
	default:
		return time.Time{}
	}
}

// BuildRanking returns a paginated ranking. The all-time ranking over every
// repository reads the stored aggregates; any other period or a repository
// filter reads grouped counts from the activity log.
func (e *Engine) BuildRanking(ctx context.Context, q RankingQuery) (schema.RankingPage, error) {
	if q.Mode == "" {
		q.Mode = schema.OverallBoard
	}
	if q.Period == "" {
		q.Period = schema.AllTimePeriod
	}
	if err := validBoard(q.Mode); err != nil {
		return schema.RankingPage{}, err
	}
	if _, ok := schema.ValidRankingPeriods[q.Period]; !ok {
		return schema.RankingPage{}, fmt.Errorf("%w: unknown ranking period %q", contract.ErrInvalidInput, q.Period)
	}
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit <= 0 {
		q.Limit = contract.DefaultResultLimit
	}
	if q.Limit > contract.MaxResultLimit {
		q.Limit = contract.MaxResultLimit
	}

	candidates, byName, err := e.allCandidates(ctx)
	if err != nil {
		return schema.RankingPage{}, err
	}
	if q.Period != schema.AllTimePeriod || q.Repository != "" {
		since := periodStart(q.Period, e.clock.Now())
		counts, err := e.store.CountByUserAndType(ctx, since, q.Repository)
		if err != nil {
			return schema.RankingPage{}, err
		}
		candidates = candidates[:0]
		for user, totals := range agg.TotalsByUser(counts, e.weights) {
			c := algo.CandidateFromContributor(byName[user])
			c.Username = user
			c.Totals = totals
			candidates = append(candidates, c)
		}
	}

	sorted := algo.SortBoard(q.Mode, candidates, e.boardOptions())
	total := len(sorted)
	totalPages := (total + q.Limit - 1) / q.Limit
	title, description := schema.BoardTitle(q.Mode)
	return schema.RankingPage{
		Mode:        q.Mode,
		Period:      q.Period,
		Repository:  q.Repository,
		Title:       title,
		Description: description,
		Entries:     algo.Entries(q.Mode, sorted, (q.Page-1)*q.Limit, q.Limit),
		Pagination: schema.Pagination{
			Page:        q.Page,
			Limit:       q.Limit,
			Total:       total,
			TotalPages:  totalPages,
			HasNextPage: q.Page < totalPages,
			HasPrevPage: q.Page > 1,
		},
	}, nil
}
