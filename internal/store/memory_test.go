package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayush/account-service/internal/models"
)

func TestMemoryStore_Lifecycle(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	created, err := s.Create(ctx, &models.User{Name: "A", Email: "a@x.com", Password: "h1"})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())

	_, err = s.Create(ctx, &models.User{Name: "B", Email: "a@x.com", Password: "h2"})
	assert.ErrorIs(t, err, models.ErrDuplicateEmail)

	byEmail, err := s.FindByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byEmail.ID)

	_, err = s.FindByEmail(ctx, "A@x.com")
	assert.ErrorIs(t, err, models.ErrNotFound, "email lookup is case-sensitive")

	require.NoError(t, s.UpdatePassword(ctx, created.ID, "h3"))
	byID, err := s.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "h3", byID.Password)

	require.NoError(t, s.DeleteByID(ctx, created.ID))
	_, err = s.FindByID(ctx, created.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
	_, err = s.FindByEmail(ctx, "a@x.com")
	assert.ErrorIs(t, err, models.ErrNotFound)

	assert.ErrorIs(t, s.UpdatePassword(ctx, created.ID, "h4"), models.ErrNotFound)
	assert.ErrorIs(t, s.DeleteByID(ctx, created.ID), models.ErrNotFound)
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	created, err := s.Create(ctx, &models.User{Name: "A", Email: "a@x.com", Password: "h1"})
	require.NoError(t, err)

	created.Password = "mutated"
	got, err := s.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "h1", got.Password)
}
