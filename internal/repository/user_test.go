package repository

import (
	"context"
	"testing"

	"taskhive/internal/cache"
	"taskhive/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUser(username, email string) *models.User {
	return &models.User{
		Username: username,
		Email:    email,
		Password: "hashed",
		Role:     models.RoleClient,
	}
}

func TestUserRepository_CreateAndGet(t *testing.T) {
	db := setupRepoDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	user := newUser("alice", "alice@example.com")
	require.NoError(t, repo.Create(ctx, user))
	require.NotZero(t, user.ID)

	got, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)

	byEmail, err := repo.GetByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	require.NotNil(t, byEmail)
	assert.Equal(t, user.ID, byEmail.ID)
}

func TestUserRepository_GetByEmail_MissReturnsNil(t *testing.T) {
	db := setupRepoDB(t)
	repo := NewUserRepository(db)

	user, err := repo.GetByEmail(context.Background(), "nobody@example.com")
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestUserRepository_Create_Duplicate(t *testing.T) {
	db := setupRepoDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newUser("bob", "bob@example.com")))

	err := repo.Create(ctx, newUser("bob", "bob@example.com"))
	require.Error(t, err)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
}

func TestUserRepository_DeleteHidesFromReads(t *testing.T) {
	db := setupRepoDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	user := newUser("carol", "carol@example.com")
	require.NoError(t, repo.Create(ctx, user))
	require.NoError(t, repo.Delete(ctx, user))

	_, err := repo.GetByID(ctx, user.ID)
	assert.Error(t, err)

	byEmail, err := repo.GetByEmail(ctx, "carol@example.com")
	require.NoError(t, err)
	assert.Nil(t, byEmail)

	users, err := repo.List(ctx, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestUserRepository_GetByID_UsesCache(t *testing.T) {
	mr := miniredis.RunT(t)
	cache.SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { cache.SetClient(nil) })

	db := setupRepoDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	user := newUser("dave", "dave@example.com")
	require.NoError(t, repo.Create(ctx, user))

	// First read populates the cache.
	_, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, mr.Exists(cache.UserKey(user.ID)))

	// Second read is served from Redis even if the row changes underneath.
	require.NoError(t, db.Model(&models.User{}).Where("id = ?", user.ID).
		UpdateColumn("username", "renamed").Error)
	cached, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "dave", cached.Username)

	// Update invalidates, so the next read sees the new name.
	cached.Username = "dave2"
	require.NoError(t, repo.Update(ctx, cached))
	fresh, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "dave2", fresh.Username)
}

func TestUserRepository_DeviceTokens(t *testing.T) {
	db := setupRepoDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	user := newUser("erin", "erin@example.com")
	require.NoError(t, repo.Create(ctx, user))

	token := &models.DeviceToken{UserID: user.ID, Token: "tok-1", Platform: "ios"}
	require.NoError(t, repo.AddDeviceToken(ctx, token))

	tokens, err := repo.ListDeviceTokens(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, tokens, 1)

	require.NoError(t, repo.RemoveDeviceToken(ctx, token))
	tokens, err = repo.ListDeviceTokens(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, tokens)
}
