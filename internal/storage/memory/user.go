package memory

import (
	"context"
	"sync"

	"github.com/rryowa/fitness_session/internal/models"
	"github.com/rryowa/fitness_session/internal/storage"
)

type UserRepository struct {
	mu         sync.RWMutex
	byID       map[int64]models.Account
	byUsername map[string]int64
	nextID     int64
}

func NewUserRepository() *UserRepository {
	return &UserRepository{
		byID:       make(map[int64]models.Account),
		byUsername: make(map[string]int64),
	}
}

func (r *UserRepository) CreateUser(_ context.Context, account models.Account) (*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byUsername[account.Username]; ok {
		return nil, storage.ErrUserExists
	}

	r.nextID++
	account.ID = r.nextID
	r.byID[account.ID] = account
	r.byUsername[account.Username] = account.ID

	return &account, nil
}

func (r *UserRepository) GetUserByUsername(_ context.Context, username string) (*models.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byUsername[username]
	if !ok {
		return nil, storage.ErrUserNotFound
	}
	account := r.byID[id]
	return &account, nil
}

func (r *UserRepository) GetUserByID(_ context.Context, id int64) (*models.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	account, ok := r.byID[id]
	if !ok {
		return nil, storage.ErrUserNotFound
	}
	return &account, nil
}
