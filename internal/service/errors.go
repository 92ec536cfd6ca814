package service

import (
	"errors"

	"github.com/rryowa/fitness_session/internal/client"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrValidationFailed   = errors.New("validation failed")
	ErrSessionExpired     = client.ErrSessionExpired
	ErrProfileFailed      = errors.New("failed to fetch user details")
	ErrFetchFailed        = errors.New("failed to fetch activities")
	ErrCreateFailed       = errors.New("failed to create activity")
	ErrUpdateFailed       = errors.New("failed to update activity")
	ErrDeleteFailed       = errors.New("failed to delete activity")

	errIncompleteTokens = errors.New("token response is incomplete")
)
