package memory

import "go.uber.org/zap"

// Storage bundles the memory repositories behind storage.Storage.
type Storage struct {
	*UserRepository
	*InMemorySessionManager
	*ActivityRepository
}

func NewStorage(log *zap.SugaredLogger) *Storage {
	return &Storage{
		UserRepository:         NewUserRepository(),
		InMemorySessionManager: NewSessionRepository(log),
		ActivityRepository:     NewActivityRepository(),
	}
}
