package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	_ "github.com/lib/pq"

	"github.com/rryowa/fitness_session/internal/migrations"
	"github.com/rryowa/fitness_session/internal/models"
	"github.com/rryowa/fitness_session/internal/storage"
)

// Runs only against a disposable database named by DATABASE_URL.
func newTestStorage(t *testing.T) *Storage {
	t.Helper()
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL is not set")
	}

	db, err := sql.Open("postgres", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, migrations.RunMigrations(db, zaptest.NewLogger(t).Sugar()))
	return NewStorage(db)
}

func TestStorage_UsersSessionsActivities(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()
	require.NoError(t, s.Ping(ctx))

	username := fmt.Sprintf("user_%d", time.Now().UnixNano())
	account, err := s.CreateUser(ctx, models.Account{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "hash",
	})
	require.NoError(t, err)

	_, err = s.CreateUser(ctx, models.Account{Username: username, PasswordHash: "hash"})
	assert.ErrorIs(t, err, storage.ErrUserExists)

	got, err := s.GetUserByUsername(ctx, username)
	require.NoError(t, err)
	assert.Equal(t, account.ID, got.ID)

	selector := "sel_" + username
	require.NoError(t, s.CreateSession(ctx, models.RefreshSession{
		UserID:       account.ID,
		Selector:     selector,
		VerifierHash: "vh",
		ExpiresAt:    time.Now().Add(time.Hour),
		CreatedAt:    time.Now(),
	}))
	session, err := s.GetSessionBySelector(ctx, selector)
	require.NoError(t, err)
	assert.Equal(t, account.ID, session.UserID)
	require.NoError(t, s.DeleteSession(ctx, selector))
	_, err = s.GetSessionBySelector(ctx, selector)
	assert.ErrorIs(t, err, storage.ErrSessionNotFound)

	activity, err := s.CreateActivity(ctx, models.Activity{
		OwnerID: account.ID,
		Title:   "Run",
		Status:  models.StatusPlanned,
	})
	require.NoError(t, err)

	updated, err := s.UpdateActivityStatus(ctx, account.ID, activity.ID, models.StatusCompleted, time.Now())
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, updated.Status)

	_, err = s.UpdateActivityStatus(ctx, account.ID+1000, activity.ID, models.StatusPlanned, time.Now())
	assert.ErrorIs(t, err, storage.ErrActivityNotFound)

	list, err := s.ListActivities(ctx, account.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, s.DeleteActivity(ctx, account.ID, activity.ID))
	assert.ErrorIs(t, s.DeleteActivity(ctx, account.ID, activity.ID), storage.ErrActivityNotFound)
}
