package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/rryowa/fitness_session/internal/models"
)

var (
	ErrSessionNotFound  = errors.New("session not found")
	ErrUserNotFound     = errors.New("user not found")
	ErrUserExists       = errors.New("user already exists")
	ErrActivityNotFound = errors.New("activity not found")
	ErrStorageFailure   = errors.New("credential storage failure")
)

// CredentialStore is durable key/value storage for the client's token pair.
// Get reports a missing key as ok == false with a nil error; err is reserved
// for backend failures.
type CredentialStore interface {
	Get(ctx context.Context, name string) (string, bool, error)
	Set(ctx context.Context, name, value string) error
	Clear(ctx context.Context, name string) error
}

type Storage interface {
	UserRepository
	SessionRepository
	ActivityRepository
}

type UserRepository interface {
	CreateUser(ctx context.Context, account models.Account) (*models.Account, error)
	GetUserByUsername(ctx context.Context, username string) (*models.Account, error)
	GetUserByID(ctx context.Context, id int64) (*models.Account, error)
}

type SessionRepository interface {
	CreateSession(ctx context.Context, session models.RefreshSession) error
	GetSessionBySelector(ctx context.Context, selector string) (*models.RefreshSession, error)
	DeleteSession(ctx context.Context, selector string) error
}

type ActivityRepository interface {
	ListActivities(ctx context.Context, ownerID int64) ([]models.Activity, error)
	CreateActivity(ctx context.Context, activity models.Activity) (*models.Activity, error)
	UpdateActivityStatus(ctx context.Context, ownerID, id int64, status models.ActivityStatus, now time.Time) (*models.Activity, error)
	DeleteActivity(ctx context.Context, ownerID, id int64) error
}

type TokenStorage interface {
	InvalidateToken(ctx context.Context, token string, expiration time.Duration) error
	IsTokenInvalidated(ctx context.Context, token string) (bool, error)
}

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}
