package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayush/account-service/internal/models"
)

var userCols = []string{"id", "name", "email", "password", "created_at"}

func newPgMock(t *testing.T) (pgxmock.PgxPoolIface, *PostgresStore) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		mock.Close()
	})
	return mock, NewPostgresStore(mock)
}

func TestPostgresStore_Migrate(t *testing.T) {
	mock, s := newPgMock(t)
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS users").
		WillReturnResult(pgxmock.NewResult("CREATE TABLE", 0))

	assert.NoError(t, s.Migrate(context.Background()))
}

func TestPostgresStore_Create(t *testing.T) {
	mock, s := newPgMock(t)
	now := time.Now().UTC()
	mock.ExpectQuery("INSERT INTO users").
		WithArgs("A", "a@x.com", "h").
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).
			AddRow("6f1c1a0e-3a7b-4f43-9a7d-0b8a1f0f2a11", now))

	u, err := s.Create(context.Background(), &models.User{Name: "A", Email: "a@x.com", Password: "h"})
	require.NoError(t, err)
	assert.Equal(t, "6f1c1a0e-3a7b-4f43-9a7d-0b8a1f0f2a11", u.ID)
	assert.Equal(t, "A", u.Name)
	assert.Equal(t, now, u.CreatedAt)
}

func TestPostgresStore_CreateDuplicate(t *testing.T) {
	mock, s := newPgMock(t)
	mock.ExpectQuery("INSERT INTO users").
		WithArgs("A", "a@x.com", "h").
		WillReturnError(&pgconn.PgError{Code: pgUniqueViolation})

	_, err := s.Create(context.Background(), &models.User{Name: "A", Email: "a@x.com", Password: "h"})
	assert.ErrorIs(t, err, models.ErrDuplicateEmail)
}

func TestPostgresStore_FindByEmail(t *testing.T) {
	mock, s := newPgMock(t)
	now := time.Now().UTC()
	mock.ExpectQuery("SELECT (.+) FROM users WHERE email").
		WithArgs("a@x.com").
		WillReturnRows(pgxmock.NewRows(userCols).AddRow("id-1", "A", "a@x.com", "h", now))

	u, err := s.FindByEmail(context.Background(), "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, &models.User{ID: "id-1", Name: "A", Email: "a@x.com", Password: "h", CreatedAt: now}, u)
}

func TestPostgresStore_FindByIDMissing(t *testing.T) {
	mock, s := newPgMock(t)
	mock.ExpectQuery("SELECT (.+) FROM users WHERE id").
		WithArgs("id-1").
		WillReturnRows(pgxmock.NewRows(userCols))

	_, err := s.FindByID(context.Background(), "id-1")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestPostgresStore_FindByIDMalformed(t *testing.T) {
	mock, s := newPgMock(t)
	mock.ExpectQuery("SELECT (.+) FROM users WHERE id").
		WithArgs("nope").
		WillReturnError(&pgconn.PgError{Code: pgInvalidText})

	_, err := s.FindByID(context.Background(), "nope")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestPostgresStore_UpdatePassword(t *testing.T) {
	mock, s := newPgMock(t)
	mock.ExpectExec("UPDATE users SET password").
		WithArgs("h2", "id-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec("UPDATE users SET password").
		WithArgs("h2", "id-2").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	assert.NoError(t, s.UpdatePassword(context.Background(), "id-1", "h2"))
	assert.ErrorIs(t, s.UpdatePassword(context.Background(), "id-2", "h2"), models.ErrNotFound)
}

func TestPostgresStore_DeleteByID(t *testing.T) {
	mock, s := newPgMock(t)
	mock.ExpectExec("DELETE FROM users").
		WithArgs("id-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec("DELETE FROM users").
		WithArgs("id-1").
		WillReturnError(errors.New("connection reset"))

	assert.NoError(t, s.DeleteByID(context.Background(), "id-1"))

	err := s.DeleteByID(context.Background(), "id-1")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, models.ErrNotFound)
}
