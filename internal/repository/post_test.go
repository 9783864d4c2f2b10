package repository

import (
	"context"
	"testing"

	"inkwell/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := &models.User{Username: username, Email: username + "@example.com", Password: "x"}
	require.NoError(t, NewUserRepository(db).Create(context.Background(), user))
	return user
}

func TestPostRepository_CreateAndGet(t *testing.T) {
	db := openTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	owner := seedUser(t, db, "writer")

	post := &models.Post{Title: "First", Content: "Hello", UserID: owner.ID}
	require.NoError(t, repo.Create(ctx, post))
	require.NotZero(t, post.ID)

	got, err := repo.GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "First", got.Title)
	assert.Equal(t, "writer", got.Author)
}

func TestPostRepository_OwnerScoping(t *testing.T) {
	db := openTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	owner := seedUser(t, db, "owner")
	other := seedUser(t, db, "other")

	post := &models.Post{Title: "Mine", Content: "body", UserID: owner.ID}
	require.NoError(t, repo.Create(ctx, post))

	got, err := repo.GetOwned(ctx, post.ID, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, "Mine", got.Title)

	// Someone else's post reads as missing, not forbidden.
	_, err = repo.GetOwned(ctx, post.ID, other.ID)
	require.Error(t, err)
	assert.True(t, models.IsNotFound(err))
}

func TestPostRepository_List(t *testing.T) {
	db := openTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")

	require.NoError(t, repo.Create(ctx, &models.Post{Title: "A", Content: "a", UserID: alice.ID}))
	require.NoError(t, repo.Create(ctx, &models.Post{Title: "B", Content: "b", UserID: bob.ID}))

	// The list is public: both posts are visible regardless of owner.
	posts, err := repo.List(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, posts, 2)

	authors := map[string]string{}
	for _, p := range posts {
		authors[p.Title] = p.Author
	}
	assert.Equal(t, "alice", authors["A"])
	assert.Equal(t, "bob", authors["B"])

	posts, err = repo.List(ctx, 1, 0)
	require.NoError(t, err)
	assert.Len(t, posts, 1)

	posts, err = repo.List(ctx, 10, 2)
	require.NoError(t, err)
	assert.Empty(t, posts)
}

func TestPostRepository_Update(t *testing.T) {
	db := openTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	owner := seedUser(t, db, "editor")
	post := &models.Post{Title: "Draft", Content: "v1", UserID: owner.ID}
	require.NoError(t, repo.Create(ctx, post))

	post.Title = "Final"
	post.Content = "v2"
	require.NoError(t, repo.Update(ctx, post))

	got, err := repo.GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "Final", got.Title)
	assert.Equal(t, "v2", got.Content)
}

func TestPostRepository_DeleteOwned(t *testing.T) {
	db := openTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	owner := seedUser(t, db, "deleter")
	other := seedUser(t, db, "bystander")

	post := &models.Post{Title: "Doomed", Content: "x", UserID: owner.ID}
	require.NoError(t, repo.Create(ctx, post))

	// A non-owner cannot delete; the post survives.
	err := repo.DeleteOwned(ctx, post.ID, other.ID)
	require.Error(t, err)
	assert.True(t, models.IsNotFound(err))

	_, err = repo.GetByID(ctx, post.ID)
	require.NoError(t, err)

	require.NoError(t, repo.DeleteOwned(ctx, post.ID, owner.ID))

	_, err = repo.GetByID(ctx, post.ID)
	require.Error(t, err)
	assert.True(t, models.IsNotFound(err))

	// Deleting an already-deleted post reads as missing.
	err = repo.DeleteOwned(ctx, post.ID, owner.ID)
	require.Error(t, err)
	assert.True(t, models.IsNotFound(err))
}

func TestPostRepository_Count(t *testing.T) {
	db := openTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	owner := seedUser(t, db, "counter")

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	require.NoError(t, repo.Create(ctx, &models.Post{Title: "1", Content: "1", UserID: owner.ID}))
	require.NoError(t, repo.Create(ctx, &models.Post{Title: "2", Content: "2", UserID: owner.ID}))

	count, err = repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}
