package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// SeedRepository tracks one-shot seeds in the seed_history table. It accepts
// any sqlx execution context so the check and the marker insert can share one
// transaction with the seeded rows.
type SeedRepository struct {
	db sqlx.ExtContext
}

// NewSeedRepository constructs a SeedRepository.
func NewSeedRepository(db sqlx.ExtContext) *SeedRepository {
	return &SeedRepository{db: db}
}

// HasRun reports whether the named seed was already executed.
func (r *SeedRepository) HasRun(ctx context.Context, name string) (bool, error) {
	const query = `SELECT 1 FROM seed_history WHERE name = $1 LIMIT 1`
	var marker int
	if err := sqlx.GetContext(ctx, r.db, &marker, query, name); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check seed history: %w", err)
	}
	return true, nil
}

// MarkRun records the named seed as executed.
func (r *SeedRepository) MarkRun(ctx context.Context, name string) error {
	const query = `INSERT INTO seed_history (name) VALUES ($1)`
	if _, err := r.db.ExecContext(ctx, query, name); err != nil {
		return fmt.Errorf("mark seed executed: %w", err)
	}
	return nil
}
