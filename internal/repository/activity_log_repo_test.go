package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rei-nationwide/platform-api/internal/models"
)

func TestActivityLogListRecentNewestFirst(t *testing.T) {
	db := setupTestDB(t, &models.User{}, &models.ActivityLog{})
	repo := NewActivityLogRepository(db)

	base := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	for i, action := range []string{"login", "property_search", "skip_trace"} {
		entry := models.ActivityLog{Action: action, Endpoint: "/api/v1/test", CreatedAt: base.Add(time.Duration(i) * time.Minute)}
		require.NoError(t, repo.Create(context.Background(), &entry))
	}

	entries, err := repo.ListRecent(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, "skip_trace", entries[0].Action)
	require.Equal(t, "property_search", entries[1].Action)
}

func TestActivityLogJoinsActorFields(t *testing.T) {
	db := setupTestDB(t, &models.User{}, &models.ActivityLog{})
	userRepo := NewUserRepository(db)
	repo := NewActivityLogRepository(db)

	user := models.User{Email: "carol@example.com", PasswordHash: "hash", Name: "Carol", Role: models.RoleManager, IsActive: true}
	require.NoError(t, userRepo.Create(context.Background(), &user))

	entry := models.ActivityLog{UserID: &user.ID, Action: "login", Endpoint: "/api/v1/auth/login"}
	require.NoError(t, repo.Create(context.Background(), &entry))

	entries, err := repo.ListRecent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.NotNil(t, entries[0].UserName)
	require.Equal(t, "Carol", *entries[0].UserName)
	require.NotNil(t, entries[0].UserEmail)
	require.Equal(t, "carol@example.com", *entries[0].UserEmail)
}

func TestActivityLogToleratesMissingActor(t *testing.T) {
	db := setupTestDB(t, &models.User{}, &models.ActivityLog{})
	repo := NewActivityLogRepository(db)

	ghost := uint(999)
	system := models.ActivityLog{Action: "startup", Endpoint: ""}
	orphan := models.ActivityLog{UserID: &ghost, Action: "login", Endpoint: "/api/v1/auth/login"}
	require.NoError(t, repo.Create(context.Background(), &system))
	require.NoError(t, repo.Create(context.Background(), &orphan))

	entries, err := repo.ListRecent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	for _, entry := range entries {
		require.Nil(t, entry.UserName)
		require.Nil(t, entry.UserEmail)
	}
}
