package backend

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/rryowa/fitness_session/internal/models"
	"github.com/rryowa/fitness_session/internal/storage"
)

const (
	minPasswordLength = 8

	msgRequired      = "This field is required."
	msgInvalidEmail  = "Enter a valid email address."
	msgPasswordShort = "This password is too short. It must contain at least 8 characters."
	msgPasswordMatch = "Password fields didn't match."
	msgUsernameTaken = "A user with that username already exists."
)

type AuthService struct {
	users    storage.UserRepository
	sessions storage.SessionRepository
	tokens   *TokenIssuer
	log      *zap.SugaredLogger
	now      func() time.Time
}

func NewAuthService(
	users storage.UserRepository,
	sessions storage.SessionRepository,
	tokens *TokenIssuer,
	log *zap.SugaredLogger,
) *AuthService {
	return &AuthService{
		users:    users,
		sessions: sessions,
		tokens:   tokens,
		log:      log,
		now:      time.Now,
	}
}

func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	if err := validateRegistration(req); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	account, err := s.users.CreateUser(ctx, models.Account{
		Username:     req.Username,
		Email:        req.Email,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		PasswordHash: string(hash),
		CreatedAt:    s.now().UTC(),
	})
	if err != nil {
		if errors.Is(err, storage.ErrUserExists) {
			return nil, &ValidationError{Fields: map[string][]string{"username": {msgUsernameTaken}}}
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.log.Infow("user registered", "userID", account.ID)
	profile := account.Profile()
	return &profile, nil
}

func validateRegistration(req models.RegisterRequest) error {
	errs := fieldErrors{}
	if strings.TrimSpace(req.Username) == "" {
		errs.add("username", msgRequired)
	}
	if strings.TrimSpace(req.Email) == "" {
		errs.add("email", msgRequired)
	} else if !strings.Contains(req.Email, "@") {
		errs.add("email", msgInvalidEmail)
	}
	if req.Password == "" {
		errs.add("password", msgRequired)
	} else if len(req.Password) < minPasswordLength {
		errs.add("password", msgPasswordShort)
	}
	if req.Password2 == "" {
		errs.add("password2", msgRequired)
	}
	if req.Password != "" && req.Password2 != "" && req.Password != req.Password2 {
		errs.add("password", msgPasswordMatch)
	}
	return errs.err()
}

func (s *AuthService) Login(ctx context.Context, username, password string) (*models.TokenPair, error) {
	account, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	now := s.now()
	access, err := s.tokens.CreateAccessToken(account.ID, now)
	if err != nil {
		return nil, err
	}
	refresh, selector, verifierHash, err := s.tokens.CreateRefreshToken()
	if err != nil {
		return nil, err
	}

	err = s.sessions.CreateSession(ctx, models.RefreshSession{
		UserID:       account.ID,
		Selector:     selector,
		VerifierHash: verifierHash,
		ExpiresAt:    now.Add(s.tokens.RefreshTTL()),
		CreatedAt:    now,
	})
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	return &models.TokenPair{Access: access, Refresh: refresh}, nil
}

// Refresh issues a new access token. The refresh token stays valid.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	session, err := s.lookupSession(ctx, refreshToken)
	if err != nil {
		return "", err
	}
	return s.tokens.CreateAccessToken(session.UserID, s.now())
}

// Logout drops the refresh session and blacklists the access token that
// authorised the call.
func (s *AuthService) Logout(ctx context.Context, userID int64, refreshToken, accessToken string) error {
	session, err := s.lookupSession(ctx, refreshToken)
	if err != nil {
		return err
	}
	if session.UserID != userID {
		return ErrRefreshInvalid
	}

	if err := s.sessions.DeleteSession(ctx, session.Selector); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if err := s.tokens.InvalidateAccessToken(ctx, accessToken); err != nil {
		return err
	}

	s.log.Infow("user logged out", "userID", userID)
	return nil
}

func (s *AuthService) Me(ctx context.Context, userID int64) (*models.User, error) {
	account, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	profile := account.Profile()
	return &profile, nil
}

// Authenticate resolves a bearer access token to a user id.
func (s *AuthService) Authenticate(ctx context.Context, accessToken string) (int64, error) {
	return s.tokens.ValidateAccessToken(ctx, accessToken)
}

func (s *AuthService) lookupSession(ctx context.Context, refreshToken string) (*models.RefreshSession, error) {
	selector, _, err := SplitRefreshToken(refreshToken)
	if err != nil {
		return nil, ErrRefreshInvalid
	}

	session, err := s.sessions.GetSessionBySelector(ctx, selector)
	if err != nil {
		if errors.Is(err, storage.ErrSessionNotFound) {
			return nil, ErrRefreshInvalid
		}
		return nil, fmt.Errorf("get session: %w", err)
	}

	if s.now().After(session.ExpiresAt) {
		if err := s.sessions.DeleteSession(ctx, selector); err != nil {
			s.log.Warnw("failed to delete expired session", "error", err)
		}
		return nil, ErrRefreshInvalid
	}
	if err := s.tokens.ValidateRefreshToken(refreshToken, session.VerifierHash); err != nil {
		return nil, ErrRefreshInvalid
	}
	return session, nil
}
