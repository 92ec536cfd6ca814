package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"go.uber.org/zap"

	"github.com/rryowa/fitness_session/internal/client"
	"github.com/rryowa/fitness_session/internal/models"
	"github.com/rryowa/fitness_session/internal/storage"
	"github.com/rryowa/fitness_session/internal/util"
)

const (
	registerPath = "/auth/register/"
	loginPath    = "/token/"
	logoutPath   = "/auth/logout/"
	profilePath  = "/auth/me/"
)

// State is the client-side view of the session. It is derived from the
// stored tokens and the last profile fetch; nothing here is persisted.
type State struct {
	User    *models.User
	Loading bool
}

func (s State) Authenticated() bool {
	return s.User != nil
}

// SessionService is the entry point for the UI layer. It decides when the
// credential pair is created, renewed and destroyed.
type SessionService struct {
	pipeline *client.Pipeline
	store    storage.CredentialStore
	log      *zap.SugaredLogger

	mu    sync.RWMutex
	state State
}

func NewSessionService(pipeline *client.Pipeline, store storage.CredentialStore, log *zap.SugaredLogger) *SessionService {
	return &SessionService{
		pipeline: pipeline,
		store:    store,
		log:      log,
		state:    State{Loading: true},
	}
}

func (s *SessionService) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.state
}

func (s *SessionService) setState(st State) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = st
}

// Start validates stored credentials once at process start.
func (s *SessionService) Start(ctx context.Context) State {
	if err := s.RefreshUser(ctx); err != nil {
		s.log.Infow("starting unauthenticated", "error", err)
	}
	return s.State()
}

// Register creates an account. It does not log the user in.
func (s *SessionService) Register(ctx context.Context, data models.RegisterRequest) (*models.User, error) {
	req, err := client.NewRequest(http.MethodPost, registerPath, data)
	if err != nil {
		return nil, err
	}

	resp, err := s.pipeline.Send(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	if !resp.OK() {
		return nil, fmt.Errorf("%w: %w", ErrValidationFailed,
			util.ParseResponseError(resp.StatusCode, resp.Body, "Registration failed"))
	}

	var user models.User
	if err := resp.Decode(&user); err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	return &user, nil
}

// Login stores a fresh token pair and then loads the profile. A failed
// profile load is logged and leaves the session unauthenticated.
func (s *SessionService) Login(ctx context.Context, username, password string) error {
	req, err := client.NewRequest(http.MethodPost, loginPath, models.LoginRequest{
		Username: username,
		Password: password,
	})
	if err != nil {
		return err
	}

	resp, err := s.pipeline.Send(ctx, req)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}
	if !resp.OK() {
		return fmt.Errorf("%w: %w", ErrInvalidCredentials,
			util.ParseResponseError(resp.StatusCode, resp.Body, "Login failed"))
	}

	var tokens models.TokenPair
	if err := resp.Decode(&tokens); err != nil {
		return fmt.Errorf("login: %w", err)
	}
	if tokens.Access == "" || tokens.Refresh == "" {
		return fmt.Errorf("login: %w", errIncompleteTokens)
	}
	if err := storage.SavePair(ctx, s.store, tokens.Access, tokens.Refresh); err != nil {
		return err
	}
	s.log.Infow("logged in", "username", username)

	if err := s.RefreshUser(ctx); err != nil {
		s.log.Warnw("profile refresh after login failed", "error", err)
	}
	return nil
}

// Logout asks the server to invalidate the refresh token and then clears
// local credentials regardless of the outcome.
func (s *SessionService) Logout(ctx context.Context) {
	refresh, ok, err := s.store.Get(ctx, storage.RefreshTokenKey)
	if err != nil {
		s.log.Warnw("failed to read refresh token for logout", "error", err)
	}

	if ok {
		s.revoke(ctx, refresh)
	}

	if err := storage.ClearPair(context.WithoutCancel(ctx), s.store); err != nil {
		s.log.Errorw("failed to clear credentials on logout", "error", err)
	}
	s.setState(State{})
}

func (s *SessionService) revoke(ctx context.Context, refresh string) {
	req, err := client.NewRequest(http.MethodPost, logoutPath, models.LogoutRequest{Refresh: refresh})
	if err != nil {
		s.log.Warnw("failed to build logout request", "error", err)
		return
	}

	resp, err := s.pipeline.Execute(ctx, req)
	if err != nil {
		s.log.Warnw("server logout failed", "error", err)
		return
	}
	if !resp.OK() {
		s.log.Warnw("server logout rejected", "status", resp.StatusCode)
	}
}

func (s *SessionService) CurrentUser(ctx context.Context) (*models.User, error) {
	var user models.User
	if err := s.call(ctx, ErrProfileFailed, http.MethodGet, profilePath, nil, &user); err != nil {
		return nil, err
	}

	s.mu.Lock()
	if s.state.User != nil {
		s.state.User = &user
	}
	s.mu.Unlock()

	return &user, nil
}

// RefreshUser re-derives the session from storage. Without an access token
// the session is unauthenticated; otherwise the profile is fetched and any
// failure clears the credentials.
func (s *SessionService) RefreshUser(ctx context.Context) error {
	_, ok, err := s.store.Get(ctx, storage.AccessTokenKey)
	if err != nil {
		s.setState(State{})
		return fmt.Errorf("%w: get %s: %w", storage.ErrStorageFailure, storage.AccessTokenKey, err)
	}
	if !ok {
		s.setState(State{})
		return nil
	}

	user, err := s.CurrentUser(ctx)
	if err != nil {
		s.log.Warnw("failed to fetch user, clearing credentials", "error", err)
		if clearErr := storage.ClearPair(context.WithoutCancel(ctx), s.store); clearErr != nil {
			s.log.Errorw("failed to clear credentials", "error", clearErr)
		}
		s.setState(State{})
		return err
	}

	s.setState(State{User: user})
	return nil
}

// call executes an authenticated JSON request. A non-2xx status becomes op
// wrapping the server message; pipeline errors become op wrapping the cause.
func (s *SessionService) call(ctx context.Context, op error, method, path string, payload, out any) error {
	req, err := client.NewRequest(method, path, payload)
	if err != nil {
		return fmt.Errorf("%w: %w", op, err)
	}

	resp, err := s.pipeline.Execute(ctx, req)
	if err != nil {
		if errors.Is(err, ErrSessionExpired) {
			s.setState(State{})
		}
		return fmt.Errorf("%w: %w", op, err)
	}
	if !resp.OK() {
		return fmt.Errorf("%w: %w", op, util.ParseResponseError(resp.StatusCode, resp.Body, op.Error()))
	}

	if out == nil {
		return nil
	}
	if err := resp.Decode(out); err != nil {
		return fmt.Errorf("%w: %w", op, err)
	}
	return nil
}
