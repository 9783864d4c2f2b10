package repository

import (
	"context"
	"testing"

	"inkwell/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatRepository_CreateAndGet(t *testing.T) {
	db := openTestDB(t)
	repo := NewChatRepository(db)
	ctx := context.Background()

	tu := &models.TelegramUser{
		TelegramID: 12345,
		Username:   "tg_handle",
		FirstName:  "Tele",
		IsActive:   true,
	}
	require.NoError(t, repo.Create(ctx, tu))
	require.NotZero(t, tu.ID)

	got, err := repo.GetByTelegramID(ctx, 12345)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "tg_handle", got.Username)
	assert.Nil(t, got.UserID)

	got, err = repo.GetByTelegramID(ctx, 99999)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestChatRepository_CreateDuplicate(t *testing.T) {
	db := openTestDB(t)
	repo := NewChatRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.TelegramUser{TelegramID: 777, IsActive: true}))

	err := repo.Create(ctx, &models.TelegramUser{TelegramID: 777, IsActive: true})
	require.Error(t, err)
	assert.True(t, models.IsValidation(err))
}

func TestChatRepository_Link(t *testing.T) {
	db := openTestDB(t)
	repo := NewChatRepository(db)
	ctx := context.Background()

	account := seedUser(t, db, "linked")
	other := seedUser(t, db, "latecomer")

	tu := &models.TelegramUser{TelegramID: 555, Username: "linked", IsActive: true}
	require.NoError(t, repo.Create(ctx, tu))

	require.NoError(t, repo.Link(ctx, tu, account.ID))
	require.NotNil(t, tu.UserID)
	assert.Equal(t, account.ID, *tu.UserID)

	got, err := repo.GetByTelegramID(ctx, 555)
	require.NoError(t, err)
	require.NotNil(t, got.UserID)
	assert.Equal(t, account.ID, *got.UserID)

	// The back-reference is written once; relinking is rejected.
	err = repo.Link(ctx, tu, other.ID)
	require.Error(t, err)
	assert.True(t, models.IsValidation(err))

	got, err = repo.GetByTelegramID(ctx, 555)
	require.NoError(t, err)
	assert.Equal(t, account.ID, *got.UserID)
}

func TestChatRepository_Counts(t *testing.T) {
	db := openTestDB(t)
	repo := NewChatRepository(db)
	ctx := context.Background()

	account := seedUser(t, db, "counted")

	linked := &models.TelegramUser{TelegramID: 1, Username: "counted", IsActive: true}
	require.NoError(t, repo.Create(ctx, linked))
	require.NoError(t, repo.Link(ctx, linked, account.ID))
	require.NoError(t, repo.Create(ctx, &models.TelegramUser{TelegramID: 2, IsActive: true}))
	require.NoError(t, repo.Create(ctx, &models.TelegramUser{TelegramID: 3, IsActive: true}))

	total, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)

	linkedCount, err := repo.CountLinked(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), linkedCount)
}
