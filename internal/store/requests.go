package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type requestLog struct {
	db *sql.DB
}

func (l *requestLog) Append(ctx context.Context, userID, text string) error {
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO user_requests (id, user_id, request_text, timestamp) VALUES (?, ?, ?, ?)`,
		uuid.NewString(), userID, text, time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("append user request: %w", err)
	}
	return nil
}

// Recent returns up to limit requests for the user, newest first.
func (l *requestLog) Recent(ctx context.Context, userID string, limit int) ([]UserRequest, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := l.db.QueryContext(ctx, `SELECT id, user_id, request_text, timestamp
		FROM user_requests WHERE user_id = ? ORDER BY timestamp DESC, rowid DESC LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("query user requests: %w", err)
	}
	defer rows.Close()

	var out []UserRequest
	for rows.Next() {
		var (
			r  UserRequest
			ts int64
		)
		if err := rows.Scan(&r.ID, &r.UserID, &r.RequestText, &ts); err != nil {
			return nil, fmt.Errorf("scan user request: %w", err)
		}
		r.Timestamp = time.UnixMilli(ts)
		out = append(out, r)
	}
	return out, rows.Err()
}
