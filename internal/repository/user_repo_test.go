package repository

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/rei-nationwide/platform-api/internal/models"
)

func setupTestDB(t *testing.T, entities ...interface{}) *gorm.DB {
	t.Helper()
	// Named shared-cache DB so every pooled connection sees the same schema.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(entities...))
	return db
}

func TestUserRepositoryCreateAndFind(t *testing.T) {
	db := setupTestDB(t, &models.User{})
	repo := NewUserRepository(db)

	user := models.User{Email: "alice@example.com", PasswordHash: "hash", Name: "Alice", Role: models.RoleMember, IsActive: true}
	require.NoError(t, repo.Create(context.Background(), &user))
	require.NotZero(t, user.ID)

	found, err := repo.FindByEmail(context.Background(), "alice@example.com")
	require.NoError(t, err)
	require.Equal(t, user.ID, found.ID)
	require.Equal(t, "Alice", found.Name)

	byID, err := repo.GetByID(context.Background(), user.ID)
	require.NoError(t, err)
	require.Equal(t, "alice@example.com", byID.Email)
}

func TestUserRepositoryDuplicateEmail(t *testing.T) {
	db := setupTestDB(t, &models.User{})
	repo := NewUserRepository(db)

	first := models.User{Email: "dup@example.com", PasswordHash: "hash", Name: "First", Role: models.RoleMember, IsActive: true}
	require.NoError(t, repo.Create(context.Background(), &first))

	second := models.User{Email: "dup@example.com", PasswordHash: "hash", Name: "Second", Role: models.RoleMember, IsActive: true}
	err := repo.Create(context.Background(), &second)
	require.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestUserRepositoryMissingLookups(t *testing.T) {
	db := setupTestDB(t, &models.User{})
	repo := NewUserRepository(db)

	_, err := repo.FindByEmail(context.Background(), "ghost@example.com")
	require.ErrorIs(t, err, ErrUserNotFound)

	_, err = repo.GetByID(context.Background(), 404)
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserRepositoryTouchLogin(t *testing.T) {
	db := setupTestDB(t, &models.User{})
	repo := NewUserRepository(db)

	user := models.User{Email: "bob@example.com", PasswordHash: "hash", Name: "Bob", Role: models.RoleMember, IsActive: true}
	require.NoError(t, repo.Create(context.Background(), &user))
	require.Nil(t, user.LastLoginAt)

	at := time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)
	require.NoError(t, repo.TouchLogin(context.Background(), user.ID, at))

	stored, err := repo.GetByID(context.Background(), user.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.LastLoginAt)
	require.WithinDuration(t, at, *stored.LastLoginAt, time.Second)
}

func TestUserRepositoryListInsertionOrder(t *testing.T) {
	db := setupTestDB(t, &models.User{})
	repo := NewUserRepository(db)

	for _, email := range []string{"a@example.com", "b@example.com", "c@example.com"} {
		user := models.User{Email: email, PasswordHash: "hash", Name: email, Role: models.RoleMember, IsActive: true}
		require.NoError(t, repo.Create(context.Background(), &user))
	}

	users, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 3)
	require.Equal(t, "a@example.com", users[0].Email)
	require.Equal(t, "c@example.com", users[2].Email)
}
