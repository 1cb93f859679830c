package iocache

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/huangsam/contriboard/schema"
)

var activityColumns = []string{
	"id", "repository", "activity_type", "entity_ref", "username", "occurred_at", "metadata", "ingested_at",
}

// insertIgnoreQuery builds an insert that leaves existing rows untouched.
// keyCol is only used by MySQL, which needs a no-op assignment.
func (s *SQLStore) insertIgnoreQuery(table string, columns []string, keyCol string) string {
	base := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", table, strings.Join(columns, ", "), placeholders(len(columns)))
	if s.backend == schema.MySQLBackend {
		return s.rebind(fmt.Sprintf("%s ON DUPLICATE KEY UPDATE %s = %s", base, keyCol, keyCol))
	}
	return s.rebind(base + " ON CONFLICT DO NOTHING")
}

// UpsertActivities inserts each activity unless its key already exists.
// The returned count only includes newly written rows.
func (s *SQLStore) UpsertActivities(ctx context.Context, activities []schema.Activity) (int, error) {
	if s.disabled() || len(activities) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, s.insertIgnoreQuery(activitiesTable, activityColumns, "id"))
	if err != nil {
		return 0, fmt.Errorf("failed to prepare activity insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	ingestedAt := s.formatTime(s.now())
	inserted := 0
	for _, a := range activities {
		id := a.ID
		if id == "" {
			id = schema.ActivityID(a.Repository, a.ActivityType, a.EntityRef)
		}
		meta, err := json.Marshal(a.Metadata)
		if err != nil {
			return 0, fmt.Errorf("failed to encode metadata for %s: %w", a.EntityRef, err)
		}
		res, err := stmt.ExecContext(ctx,
			id, a.Repository, string(a.ActivityType), a.EntityRef, a.Username,
			s.formatTime(a.Timestamp), string(meta), ingestedAt,
		)
		if err != nil {
			return 0, fmt.Errorf("failed to insert activity %s: %w", a.EntityRef, err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 1 {
			inserted++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit activities: %w", err)
	}
	return inserted, nil
}

// activityWhere renders the WHERE clause for a filter.
func (s *SQLStore) activityWhere(filter schema.ActivityFilter) (string, []any) {
	var conds []string
	var args []any
	if filter.Username != "" {
		conds = append(conds, "username = ?")
		args = append(args, filter.Username)
	}
	if filter.Repository != "" {
		conds = append(conds, "repository = ?")
		args = append(args, filter.Repository)
	}
	if len(filter.Types) > 0 {
		conds = append(conds, fmt.Sprintf("activity_type IN (%s)", placeholders(len(filter.Types))))
		for _, t := range filter.Types {
			args = append(args, string(t))
		}
	}
	if !filter.Since.IsZero() {
		conds = append(conds, "occurred_at >= ?")
		args = append(args, s.formatTime(filter.Since))
	}
	if !filter.Until.IsZero() {
		conds = append(conds, "occurred_at < ?")
		args = append(args, s.formatTime(filter.Until))
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// ListActivities returns one page of activities, newest first.
func (s *SQLStore) ListActivities(ctx context.Context, filter schema.ActivityFilter) ([]schema.Activity, int, error) {
	if s.disabled() {
		return nil, 0, nil
	}

	where, args := s.activityWhere(filter)

	var total int
	countQuery := s.rebind(fmt.Sprintf("SELECT COUNT(*) FROM %s%s", activitiesTable, where))
	if err := s.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count activities: %w", err)
	}

	query := fmt.Sprintf("SELECT %s FROM %s%s ORDER BY occurred_at DESC, id ASC",
		strings.Join(activityColumns[:7], ", "), activitiesTable, where)
	if filter.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, filter.Limit, filter.Offset)
	}

	activities, err := s.queryActivities(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, 0, err
	}
	return activities, total, nil
}

// ActivitiesForUser returns every activity of a username in chronological order.
func (s *SQLStore) ActivitiesForUser(ctx context.Context, username string) ([]schema.Activity, error) {
	if s.disabled() {
		return nil, nil
	}
	query := fmt.Sprintf("SELECT %s FROM %s WHERE username = ? ORDER BY occurred_at ASC, id ASC",
		strings.Join(activityColumns[:7], ", "), activitiesTable)
	return s.queryActivities(ctx, s.rebind(query), username)
}

func (s *SQLStore) queryActivities(ctx context.Context, query string, args ...any) ([]schema.Activity, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query activities: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var activities []schema.Activity
	for rows.Next() {
		var (
			a          schema.Activity
			activityTy string
			occurredAt dbTime
			meta       sql.NullString
		)
		if err := rows.Scan(&a.ID, &a.Repository, &activityTy, &a.EntityRef, &a.Username, &occurredAt, &meta); err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}
		a.ActivityType = schema.ActivityType(activityTy)
		a.Timestamp = occurredAt.Time
		if meta.Valid && meta.String != "" {
			if err := json.Unmarshal([]byte(meta.String), &a.Metadata); err != nil {
				return nil, fmt.Errorf("failed to decode metadata for %s: %w", a.ID, err)
			}
		}
		activities = append(activities, a)
	}
	return activities, rows.Err()
}

// CountActivities counts activities at or after since.
func (s *SQLStore) CountActivities(ctx context.Context, since time.Time, repository string) (int, error) {
	if s.disabled() {
		return 0, nil
	}
	where, args := s.activityWhere(schema.ActivityFilter{Since: since, Repository: repository})
	var n int
	if err := s.db.QueryRowContext(ctx, s.rebind("SELECT COUNT(*) FROM "+activitiesTable+where), args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count activities: %w", err)
	}
	return n, nil
}

// CountByUserAndType groups activity counts by username and type.
func (s *SQLStore) CountByUserAndType(ctx context.Context, since time.Time, repository string) ([]schema.ActivityCount, error) {
	if s.disabled() {
		return nil, nil
	}
	where, args := s.activityWhere(schema.ActivityFilter{Since: since, Repository: repository})
	query := fmt.Sprintf(
		"SELECT username, activity_type, COUNT(*) FROM %s%s GROUP BY username, activity_type ORDER BY username, activity_type",
		activitiesTable, where)

	rows, err := s.db.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to group activities: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var counts []schema.ActivityCount
	for rows.Next() {
		var c schema.ActivityCount
		var activityTy string
		if err := rows.Scan(&c.Username, &activityTy, &c.Count); err != nil {
			return nil, fmt.Errorf("failed to scan activity count: %w", err)
		}
		c.ActivityType = schema.ActivityType(activityTy)
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

// ActivityUsernames lists the distinct usernames in the activity log.
func (s *SQLStore) ActivityUsernames(ctx context.Context) ([]string, error) {
	if s.disabled() {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf("SELECT DISTINCT username FROM %s ORDER BY username", activitiesTable))
	if err != nil {
		return nil, fmt.Errorf("failed to list usernames: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan username: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}
