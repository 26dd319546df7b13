package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/abhisek/trigtutor/internal/analytics"
)

const (
	defaultUsername = "Nuevo Usuario"
	defaultAvatar   = "avatar1"
)

type userRepo struct {
	db *sql.DB
}

func (r *userRepo) Get(ctx context.Context, id string) (*UserData, error) {
	raw, err := r.load(ctx, r.db, id)
	if err != nil {
		return nil, err
	}

	var data UserData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("decode user %q: %w", id, err)
	}
	data.Profile.ID = id
	return &data, nil
}

// Save merges the top-level fields of data into the stored document. Fields
// omitted from the JSON encoding (a nil Progress) keep their stored value.
func (r *userRepo) Save(ctx context.Context, data *UserData) error {
	id := data.Profile.ID
	if id == "" {
		return errors.New("save user: empty profile id")
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	merged := map[string]json.RawMessage{}
	existing, err := r.load(ctx, tx, id)
	switch {
	case err == nil:
		if err := json.Unmarshal(existing, &merged); err != nil {
			return fmt.Errorf("decode stored user %q: %w", id, err)
		}
	case !errors.Is(err, ErrNotFound):
		return err
	}

	fields, err := encodeUser(data)
	if err != nil {
		return err
	}
	for k, v := range fields {
		merged[k] = v
	}

	if err := r.write(ctx, tx, id, merged); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *userRepo) EnsureProfile(ctx context.Context, id, email, displayName string) (*UserData, error) {
	data, err := r.Get(ctx, id)
	if err == nil {
		return data, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	data = &UserData{
		Profile: Profile{
			ID:       id,
			Username: defaultUsernameFor(email, displayName),
			Email:    email,
			Avatar:   defaultAvatar,
		},
		Analytics: analytics.Default(),
	}
	if err := r.Save(ctx, data); err != nil {
		return nil, err
	}
	return data, nil
}

func defaultUsernameFor(email, displayName string) string {
	if displayName != "" {
		return displayName
	}
	if local, _, _ := strings.Cut(email, "@"); local != "" {
		return local
	}
	return defaultUsername
}

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (r *userRepo) load(ctx context.Context, q querier, id string) ([]byte, error) {
	var raw string
	err := q.QueryRowContext(ctx, `SELECT data FROM users WHERE id = ?`, id).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load user %q: %w", id, err)
	}
	return []byte(raw), nil
}

func (r *userRepo) write(ctx context.Context, q querier, id string, doc map[string]json.RawMessage) error {
	b, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode user %q: %w", id, err)
	}
	_, err = q.ExecContext(ctx, `INSERT INTO users (id, data, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		id, string(b), time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("save user %q: %w", id, err)
	}
	return nil
}

// encodeUser renders data as top-level JSON fields with the profile id removed.
func encodeUser(data *UserData) (map[string]json.RawMessage, error) {
	cp := *data
	cp.Profile.ID = ""

	b, err := json.Marshal(cp)
	if err != nil {
		return nil, fmt.Errorf("encode user: %w", err)
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(b, &fields); err != nil {
		return nil, fmt.Errorf("encode user: %w", err)
	}
	return fields, nil
}
