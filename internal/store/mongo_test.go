package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/ayush/account-service/internal/models"
)

const usersNS = "accounts.users"

func TestMongoStore(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("ensure indexes", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())
		assert.NoError(mt, NewMongoStore(mt.DB).EnsureIndexes(ctx))
	})

	mt.Run("create", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		u, err := NewMongoStore(mt.DB).Create(ctx, &models.User{Name: "A", Email: "a@x.com", Password: "h"})
		require.NoError(mt, err)
		assert.Len(mt, u.ID, 24)
		assert.Equal(mt, "a@x.com", u.Email)
	})

	mt.Run("create duplicate", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error collection: accounts.users index: email_unique",
		}))

		_, err := NewMongoStore(mt.DB).Create(ctx, &models.User{Name: "A", Email: "a@x.com", Password: "h"})
		assert.ErrorIs(mt, err, models.ErrDuplicateEmail)
	})

	mt.Run("find by email", func(mt *mtest.T) {
		oid := primitive.NewObjectID()
		created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, usersNS, mtest.FirstBatch, bson.D{
			{Key: "_id", Value: oid},
			{Key: "name", Value: "A"},
			{Key: "email", Value: "a@x.com"},
			{Key: "password", Value: "h"},
			{Key: "created_at", Value: created},
		}))

		u, err := NewMongoStore(mt.DB).FindByEmail(ctx, "a@x.com")
		require.NoError(mt, err)
		assert.Equal(mt, oid.Hex(), u.ID)
		assert.Equal(mt, "A", u.Name)
		assert.Equal(mt, "h", u.Password)
		assert.True(mt, created.Equal(u.CreatedAt))
	})

	mt.Run("find by email missing", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, usersNS, mtest.FirstBatch))

		_, err := NewMongoStore(mt.DB).FindByEmail(ctx, "nobody@x.com")
		assert.ErrorIs(mt, err, models.ErrNotFound)
	})

	mt.Run("find by malformed id", func(mt *mtest.T) {
		_, err := NewMongoStore(mt.DB).FindByID(ctx, "not-an-object-id")
		assert.ErrorIs(mt, err, models.ErrNotFound)
	})

	mt.Run("update password", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1},
			bson.E{Key: "nModified", Value: 1},
		))

		err := NewMongoStore(mt.DB).UpdatePassword(ctx, primitive.NewObjectID().Hex(), "h2")
		assert.NoError(mt, err)
	})

	mt.Run("update password missing", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 0},
			bson.E{Key: "nModified", Value: 0},
		))

		err := NewMongoStore(mt.DB).UpdatePassword(ctx, primitive.NewObjectID().Hex(), "h2")
		assert.ErrorIs(mt, err, models.ErrNotFound)
	})

	mt.Run("delete", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}))

		err := NewMongoStore(mt.DB).DeleteByID(ctx, primitive.NewObjectID().Hex())
		assert.NoError(mt, err)
	})

	mt.Run("delete missing", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}))

		err := NewMongoStore(mt.DB).DeleteByID(ctx, primitive.NewObjectID().Hex())
		assert.ErrorIs(mt, err, models.ErrNotFound)
	})
}
