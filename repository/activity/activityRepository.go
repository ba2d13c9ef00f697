// Package activityrepo persists the activity log. Writes are best-effort: the
// lending service records after commit and only logs failures, so a broken log
// table can never roll back a loan.
package activityrepo

import (
	"context"
	"database/sql"

	"github.com/Legend373/Legend-Library-Ms/model"
)

type Repo interface {
	Record(ctx context.Context, userID int64, eventType, details string) error
	ListRecent(ctx context.Context, limit int) ([]model.ActivityEvent, error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db} }

func (r *repo) Record(ctx context.Context, userID int64, eventType, details string) error {
	const q = `
INSERT INTO activity_log (user_id, event_type, details)
VALUES ($1,$2,$3)`
	_, err := r.db.ExecContext(ctx, q, userID, eventType, details)
	return err
}

func (r *repo) ListRecent(ctx context.Context, limit int) ([]model.ActivityEvent, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	const q = `
SELECT id, user_id, event_type, details, created_at
FROM activity_log
ORDER BY created_at DESC, id DESC
LIMIT $1`
	rows, err := r.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.ActivityEvent
	for rows.Next() {
		var ev model.ActivityEvent
		if err := rows.Scan(&ev.ID, &ev.UserID, &ev.EventType, &ev.Details, &ev.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}
