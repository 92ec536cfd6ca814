package postgres

import (
	"context"
	"database/sql"
)

type Storage struct {
	db *sql.DB
	*UserRepository
	*SessionRepository
	*ActivityRepository
}

func NewStorage(db *sql.DB) *Storage {
	return &Storage{
		db:                 db,
		UserRepository:     NewUserRepository(db),
		SessionRepository:  NewSessionRepository(db),
		ActivityRepository: NewActivityRepository(db),
	}
}

func (s *Storage) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
