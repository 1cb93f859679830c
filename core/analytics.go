package core

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/huangsam/contriboard/internal/contract"
	"github.com/huangsam/contriboard/schema"
)

// AnalyticsRange resolves a timeline to a half-open [from, until) range.
// A custom timeline widens start and end to whole calendar months.
func AnalyticsRange(timeline schema.AnalyticsTimeline, start, end, now time.Time) (time.Time, time.Time, error) {
	now = now.UTC()
	switch timeline {
	case "", schema.Last30DaysTimeline:
		return now.AddDate(0, 0, -30), time.Time{}, nil
	case schema.LastMonthTimeline:
		return now.AddDate(0, -1, 0), time.Time{}, nil
	case schema.LastYearTimeline:
		return now.AddDate(-1, 0, 0), time.Time{}, nil
	case schema.AllTimeTimeline:
		return time.Time{}, time.Time{}, nil
	case schema.CustomTimeline:
		if start.IsZero() || end.IsZero() {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: custom timeline needs start and end", contract.ErrInvalidInput)
		}
		start, end = start.UTC(), end.UTC()
		from := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, time.UTC)
		until := time.Date(end.Year(), end.Month()+1, 1, 0, 0, 0, 0, time.UTC)
		if !until.After(from) {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: end is before start", contract.ErrInvalidInput)
		}
		return from, until, nil
	default:
		return time.Time{}, time.Time{}, fmt.Errorf("%w: unknown timeline %q", contract.ErrInvalidInput, timeline)
	}
}

// Analytics counts activities in [from, until) by type and by UTC day. An
// empty username covers every contributor; a zero bound leaves that side open.
func (e *Engine) Analytics(ctx context.Context, username, repository string, from, until time.Time) (schema.ContributorAnalytics, error) {
	if username != "" {
		c, err := e.store.GetContributor(ctx, username)
		if err != nil {
			return schema.ContributorAnalytics{}, err
		}
		username = c.Username
	}
	activities, _, err := e.store.ListActivities(ctx, schema.ActivityFilter{
		Username:   username,
		Repository: repository,
		Since:      from,
		Until:      until,
	})
	if err != nil {
		return schema.ContributorAnalytics{}, err
	}

	byType := make(map[schema.ActivityType]int)
	byDate := make(map[string]*schema.DailyActivity)
	for _, a := range activities {
		byType[a.ActivityType]++
		date := a.Timestamp.UTC().Format(time.DateOnly)
		day, ok := byDate[date]
		if !ok {
			day = &schema.DailyActivity{Date: date}
			byDate[date] = day
		}
		switch t := a.ActivityType; {
		case t == schema.Commit:
			day.Commits++
		case t.IsPullRequest():
			day.PullRequests++
		case t.IsReview():
			day.Reviews++
		case t.IsComment():
			day.Comments++
		}
	}

	out := schema.ContributorAnalytics{
		Username:       username,
		Repository:     repository,
		From:           from,
		Until:          until,
		Total:          len(activities),
		ActivityByType: []schema.TypeCount{},
		ActivityByDate: make([]schema.DailyActivity, 0, len(byDate)),
	}
	for _, t := range schema.AllActivityTypes {
		if n := byType[t]; n > 0 {
			out.ActivityByType = append(out.ActivityByType, schema.TypeCount{ActivityType: t, Count: n})
		}
	}
	for _, day := range byDate {
		out.ActivityByDate = append(out.ActivityByDate, *day)
	}
	sort.Slice(out.ActivityByDate, func(i, j int) bool {
		return out.ActivityByDate[i].Date < out.ActivityByDate[j].Date
	})
	return out, nil
}
