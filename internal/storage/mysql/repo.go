package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"review_proxy/internal/adapters/observability"
	"review_proxy/internal/domain"
)

// Repo stores fixtures in the fixtures table, one row per file.
type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

// Migrate creates the fixtures table when missing.
func (r *Repo) Migrate(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, createFixturesSQL)
	return err
}

func (r *Repo) Load(ctx context.Context, file string) ([]byte, error) {
	var payload []byte
	err := r.db.QueryRowContext(ctx, getFixtureSQL, file).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		observability.ObserveFixture("mysql", "miss")
		return nil, fmt.Errorf("fixture %s: %w", file, domain.ErrNotFound)
	}
	if err != nil {
		observability.ObserveFixture("mysql", "error")
		return nil, err
	}
	observability.ObserveFixture("mysql", "load")
	return payload, nil
}

func (r *Repo) Put(ctx context.Context, file string, payload []byte) error {
	observability.ObserveFixture("mysql", "put")
	_, err := r.db.ExecContext(ctx, upsertFixtureSQL, file, string(payload))
	return err
}
