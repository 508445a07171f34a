package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rpggio/storyverse/internal/domain/activity"
)

// ActivityRepository implements repository.ActivityRepository for SQLite
type ActivityRepository struct {
	db *DB
}

// NewActivityRepository creates a new ActivityRepository
func NewActivityRepository(db *DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// Log inserts a new activity entry
func (r *ActivityRepository) Log(ctx context.Context, entry *activity.Entry) error {
	createdAt := entry.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	query := `
		INSERT INTO activity_log (kind, entity_id, actor_id, owner_id, summary, day, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		entry.Kind,
		entry.EntityID,
		nullString(entry.ActorID),
		nullString(entry.OwnerID),
		entry.Summary,
		createdAt.UTC().Format(activity.DayLayout),
		createdAt,
	)
	if err != nil {
		return fmt.Errorf("failed to log activity: %w", err)
	}

	id, err := result.LastInsertId()
	if err == nil {
		entry.ID = id
	}
	entry.CreatedAt = createdAt

	return nil
}

// List returns activity entries matching the given filters, newest first
func (r *ActivityRepository) List(ctx context.Context, opts activity.ListOptions) ([]activity.Entry, error) {
	query := `
		SELECT id, kind, entity_id, actor_id, owner_id, summary, created_at
		FROM activity_log
		WHERE 1 = 1
	`

	var args []any
	var conditions []string

	if opts.EntityID != "" {
		conditions = append(conditions, "entity_id = ?")
		args = append(args, opts.EntityID)
	}
	if opts.OwnerID != "" {
		conditions = append(conditions, "owner_id = ?")
		args = append(args, opts.OwnerID)
	}
	if len(opts.Kinds) > 0 {
		conditions = append(conditions, kindsCondition(opts.Kinds, &args))
	}

	if len(conditions) > 0 {
		query += " AND " + strings.Join(conditions, " AND ")
	}

	query += " ORDER BY created_at DESC, id DESC"

	if opts.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, opts.Limit)
		if opts.Offset > 0 {
			query += " OFFSET ?"
			args = append(args, opts.Offset)
		}
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list activity: %w", err)
	}
	defer rows.Close()

	var entries []activity.Entry
	for rows.Next() {
		var entry activity.Entry
		var actorID, ownerID sql.NullString
		if err := rows.Scan(
			&entry.ID,
			&entry.Kind,
			&entry.EntityID,
			&actorID,
			&ownerID,
			&entry.Summary,
			&entry.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan activity entry: %w", err)
		}
		entry.ActorID = actorID.String
		entry.OwnerID = ownerID.String
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating activity rows: %w", err)
	}

	return entries, nil
}

// DailyCounts groups an owner's activity by UTC day and kind
func (r *ActivityRepository) DailyCounts(ctx context.Context, ownerID string, since time.Time, kinds []activity.Kind) ([]activity.DayCount, error) {
	query := `
		SELECT day, kind, COUNT(*)
		FROM activity_log
		WHERE owner_id = ? AND day >= ?
	`
	args := []any{ownerID, since.UTC().Format(activity.DayLayout)}
	if len(kinds) > 0 {
		query += " AND " + kindsCondition(kinds, &args)
	}
	query += " GROUP BY day, kind ORDER BY day ASC, kind ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to count activity: %w", err)
	}
	defer rows.Close()

	var counts []activity.DayCount
	for rows.Next() {
		var c activity.DayCount
		if err := rows.Scan(&c.Day, &c.Kind, &c.Count); err != nil {
			return nil, fmt.Errorf("failed to scan activity count: %w", err)
		}
		counts = append(counts, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating activity counts: %w", err)
	}

	return counts, nil
}

func kindsCondition(kinds []activity.Kind, args *[]any) string {
	placeholders := make([]string, len(kinds))
	for i, kind := range kinds {
		placeholders[i] = "?"
		*args = append(*args, kind)
	}
	return fmt.Sprintf("kind IN (%s)", strings.Join(placeholders, ","))
}

func nullString(value string) sql.NullString {
	return sql.NullString{String: value, Valid: value != ""}
}
