package memory

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/rryowa/fitness_session/internal/models"
	"github.com/rryowa/fitness_session/internal/storage"
)

type InMemorySessionManager struct {
	mu       sync.RWMutex
	sessions map[string]models.RefreshSession
	nextID   int64
	log      *zap.SugaredLogger
}

func NewSessionRepository(log *zap.SugaredLogger) *InMemorySessionManager {
	return &InMemorySessionManager{
		sessions: make(map[string]models.RefreshSession),
		log:      log,
	}
}

func (m *InMemorySessionManager) CreateSession(_ context.Context, session models.RefreshSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	session.ID = m.nextID
	m.sessions[session.Selector] = session
	m.log.Debugw("Session created", "sessionID", session.ID, "userID", session.UserID)

	return nil
}

func (m *InMemorySessionManager) GetSessionBySelector(_ context.Context, selector string) (*models.RefreshSession, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	session, ok := m.sessions[selector]
	if !ok {
		m.log.Debugw("Session not found", "selector", selector)
		return nil, storage.ErrSessionNotFound
	}

	return &session, nil
}

func (m *InMemorySessionManager) DeleteSession(_ context.Context, selector string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, selector)

	return nil
}
