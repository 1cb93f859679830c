package iocache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/huangsam/contriboard/internal/contract"
	"github.com/huangsam/contriboard/schema"
)

var contributorColumns = []string{
	"username", "name", "repositories", "total_score", "total_activities",
	"first_activity_at", "last_activity_at", "activity_status", "rising_star_index",
	"repository_stats", "totals", "profile", "updated_at",
}

// contributorAggregateColumns are rewritten on every upsert. Name and profile
// only change through UpdateProfile.
var contributorAggregateColumns = []string{
	"repositories", "total_score", "total_activities",
	"first_activity_at", "last_activity_at", "activity_status", "rising_star_index",
	"repository_stats", "totals", "updated_at",
}

var contributorSortColumns = map[schema.SortKey]string{
	schema.SortByScore:        "total_score",
	schema.SortByActivities:   "total_activities",
	schema.SortByLastActivity: "last_activity_at",
}

// repositoriesKey encodes repository names so one can be matched with LIKE.
func repositoriesKey(stats []schema.RepositoryStats) string {
	if len(stats) == 0 {
		return ""
	}
	names := make([]string, 0, len(stats))
	for _, rs := range stats {
		names = append(names, rs.Repository)
	}
	return "," + strings.Join(names, ",") + ","
}

// UpsertContributor writes the aggregate of a contributor.
func (s *SQLStore) UpsertContributor(ctx context.Context, c schema.Contributor) error {
	if s.disabled() {
		return nil
	}

	stats := c.RepositoryStats
	if stats == nil {
		stats = []schema.RepositoryStats{}
	}
	statsJSON, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("failed to encode repository stats: %w", err)
	}
	totalsJSON, err := json.Marshal(c.Totals)
	if err != nil {
		return fmt.Errorf("failed to encode totals: %w", err)
	}
	var profileArg any
	if c.Profile != (schema.Profile{}) {
		b, err := json.Marshal(c.Profile)
		if err != nil {
			return fmt.Errorf("failed to encode profile: %w", err)
		}
		profileArg = string(b)
	}

	updatedAt := c.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = s.now()
	}
	status := c.ActivityStatus
	if status == "" {
		status = schema.DormantStatus
	}

	base := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		contributorsTable, strings.Join(contributorColumns, ", "), placeholders(len(contributorColumns)))

	var query string
	sets := make([]string, 0, len(contributorAggregateColumns))
	switch s.backend {
	case schema.MySQLBackend:
		for _, col := range contributorAggregateColumns {
			sets = append(sets, fmt.Sprintf("%s = new.%s", col, col))
		}
		query = base + " AS new ON DUPLICATE KEY UPDATE " + strings.Join(sets, ", ")
	default:
		for _, col := range contributorAggregateColumns {
			sets = append(sets, fmt.Sprintf("%s = excluded.%s", col, col))
		}
		query = base + " ON CONFLICT (username) DO UPDATE SET " + strings.Join(sets, ", ")
	}

	_, err = s.db.ExecContext(ctx, s.rebind(query),
		c.Username, c.Profile.Name, repositoriesKey(stats), c.Totals.ActivityScore, c.Totals.Activities,
		s.nullableTime(&c.FirstActivityAt), s.nullableTime(&c.LastActivityAt), string(status), c.RisingStarIndex,
		string(statsJSON), string(totalsJSON), profileArg, s.formatTime(updatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert contributor %s: %w", c.Username, err)
	}
	return nil
}

// GetContributor returns one contributor or contract.ErrNotFound.
func (s *SQLStore) GetContributor(ctx context.Context, username string) (schema.Contributor, error) {
	if s.disabled() {
		return schema.Contributor{}, contract.ErrNotFound
	}
	query := fmt.Sprintf("SELECT %s FROM %s WHERE username = ?", strings.Join(contributorColumns, ", "), contributorsTable)
	c, err := scanContributor(s.db.QueryRowContext(ctx, s.rebind(query), username))
	if errors.Is(err, sql.ErrNoRows) {
		return schema.Contributor{}, fmt.Errorf("contributor %s: %w", username, contract.ErrNotFound)
	}
	if err != nil {
		return schema.Contributor{}, fmt.Errorf("failed to read contributor %s: %w", username, err)
	}
	return c, nil
}

// ListContributors returns one filtered, ordered page plus the total match count.
func (s *SQLStore) ListContributors(ctx context.Context, filter schema.ContributorFilter) ([]schema.Contributor, int, error) {
	if s.disabled() {
		return nil, 0, nil
	}

	var conds []string
	var args []any
	if filter.Repository != "" {
		conds = append(conds, "repositories LIKE ? ESCAPE '!'")
		args = append(args, "%,"+likeEscaper.Replace(filter.Repository)+",%")
	}
	if filter.Search != "" {
		conds = append(conds, "(LOWER(username) LIKE ? ESCAPE '!' OR LOWER(name) LIKE ? ESCAPE '!')")
		pattern := likeContains(filter.Search)
		args = append(args, pattern, pattern)
	}
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := s.db.QueryRowContext(ctx, s.rebind("SELECT COUNT(*) FROM "+contributorsTable+where), args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count contributors: %w", err)
	}

	sortCol, ok := contributorSortColumns[filter.SortBy]
	if !ok {
		sortCol = contributorSortColumns[schema.SortByScore]
	}
	direction := "DESC"
	if filter.Ascending {
		direction = "ASC"
	}

	query := fmt.Sprintf("SELECT %s FROM %s%s ORDER BY %s %s, username ASC",
		strings.Join(contributorColumns, ", "), contributorsTable, where, sortCol, direction)
	if filter.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, filter.Limit, filter.Offset)
	}

	contributors, err := s.queryContributors(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, 0, err
	}
	return contributors, total, nil
}

// AllContributors returns every contributor ordered by username.
func (s *SQLStore) AllContributors(ctx context.Context) ([]schema.Contributor, error) {
	if s.disabled() {
		return nil, nil
	}
	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY username ASC", strings.Join(contributorColumns, ", "), contributorsTable)
	return s.queryContributors(ctx, query)
}

// UpdateProfile stores refreshed profile details for an existing contributor.
func (s *SQLStore) UpdateProfile(ctx context.Context, username string, profile schema.Profile) error {
	if s.disabled() {
		return nil
	}
	b, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("failed to encode profile: %w", err)
	}
	query := fmt.Sprintf("UPDATE %s SET name = ?, profile = ? WHERE username = ?", contributorsTable)
	if _, err := s.db.ExecContext(ctx, s.rebind(query), profile.Name, string(b), username); err != nil {
		return fmt.Errorf("failed to update profile of %s: %w", username, err)
	}
	return nil
}

func (s *SQLStore) queryContributors(ctx context.Context, query string, args ...any) ([]schema.Contributor, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query contributors: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var contributors []schema.Contributor
	for rows.Next() {
		c, err := scanContributor(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan contributor: %w", err)
		}
		contributors = append(contributors, c)
	}
	return contributors, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanContributor(row rowScanner) (schema.Contributor, error) {
	var (
		c                     schema.Contributor
		name, repositories    string
		totalScore            float64
		totalActivities       int
		firstAt, lastAt       dbTime
		status                string
		statsJSON, totalsJSON string
		profileJSON           sql.NullString
		updatedAt             dbTime
	)
	if err := row.Scan(
		&c.Username, &name, &repositories, &totalScore, &totalActivities,
		&firstAt, &lastAt, &status, &c.RisingStarIndex,
		&statsJSON, &totalsJSON, &profileJSON, &updatedAt,
	); err != nil {
		return c, err
	}

	if err := json.Unmarshal([]byte(statsJSON), &c.RepositoryStats); err != nil {
		return c, fmt.Errorf("failed to decode repository stats of %s: %w", c.Username, err)
	}
	if err := json.Unmarshal([]byte(totalsJSON), &c.Totals); err != nil {
		return c, fmt.Errorf("failed to decode totals of %s: %w", c.Username, err)
	}
	if profileJSON.Valid && profileJSON.String != "" {
		if err := json.Unmarshal([]byte(profileJSON.String), &c.Profile); err != nil {
			return c, fmt.Errorf("failed to decode profile of %s: %w", c.Username, err)
		}
	}
	if c.Profile.Name == "" {
		c.Profile.Name = name
	}
	c.FirstActivityAt = firstAt.Time
	c.LastActivityAt = lastAt.Time
	c.ActivityStatus = schema.ActivityStatus(status)
	c.UpdatedAt = updatedAt.Time
	return c, nil
}
