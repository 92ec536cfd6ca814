package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rryowa/fitness_session/internal/models"
	"github.com/rryowa/fitness_session/internal/storage"
)

type SessionRepository struct {
	db storage.DBTX
}

func NewSessionRepository(db storage.DBTX) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) CreateSession(ctx context.Context, session models.RefreshSession) error {
	query := `INSERT INTO sessions (user_id, selector, verifier_hash, expires_at, created_at) VALUES ($1, $2, $3, $4, $5)`
	_, err := r.db.ExecContext(
		ctx,
		query,
		session.UserID,
		session.Selector,
		session.VerifierHash,
		session.ExpiresAt,
		session.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}
	return nil
}

func (r *SessionRepository) GetSessionBySelector(
	ctx context.Context,
	selector string,
) (*models.RefreshSession, error) {
	var session models.RefreshSession
	query := `SELECT id, user_id, selector, verifier_hash, expires_at, created_at FROM sessions WHERE selector = $1`
	err := r.db.QueryRowContext(ctx, query, selector).Scan(
		&session.ID,
		&session.UserID,
		&session.Selector,
		&session.VerifierHash,
		&session.ExpiresAt,
		&session.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("session with selector %s not found: %w", selector, storage.ErrSessionNotFound)
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return &session, nil
}

func (r *SessionRepository) DeleteSession(ctx context.Context, selector string) error {
	query := `DELETE FROM sessions WHERE selector = $1`
	_, err := r.db.ExecContext(ctx, query, selector)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
