package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasRun(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSeedRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM seed_history WHERE name = $1 LIMIT 1")).
		WithArgs("users_v1").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))

	executed, err := repo.HasRun(context.Background(), "users_v1")
	require.NoError(t, err)
	assert.True(t, executed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHasRunNotExecuted(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSeedRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM seed_history WHERE name = $1 LIMIT 1")).
		WithArgs("users_v1").
		WillReturnError(sql.ErrNoRows)

	executed, err := repo.HasRun(context.Background(), "users_v1")
	require.NoError(t, err)
	assert.False(t, executed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkRun(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSeedRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO seed_history (name) VALUES ($1)")).
		WithArgs("users_v1").
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.MarkRun(context.Background(), "users_v1")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
