package storage

import (
	"context"
	"fmt"
)

const (
	AccessTokenKey  = "access_token"
	RefreshTokenKey = "refresh_token"
)

// LoadPair reads both tokens. ok is true only when both are present.
func LoadPair(ctx context.Context, store CredentialStore) (access, refresh string, ok bool, err error) {
	access, hasAccess, err := store.Get(ctx, AccessTokenKey)
	if err != nil {
		return "", "", false, fmt.Errorf("%w: get %s: %w", ErrStorageFailure, AccessTokenKey, err)
	}
	refresh, hasRefresh, err := store.Get(ctx, RefreshTokenKey)
	if err != nil {
		return "", "", false, fmt.Errorf("%w: get %s: %w", ErrStorageFailure, RefreshTokenKey, err)
	}
	if !hasAccess || !hasRefresh {
		return "", "", false, nil
	}
	return access, refresh, true, nil
}

// SavePair writes access then refresh. If the refresh write fails the access
// write is undone so the store never holds exactly one token.
func SavePair(ctx context.Context, store CredentialStore, access, refresh string) error {
	if err := store.Set(ctx, AccessTokenKey, access); err != nil {
		return fmt.Errorf("%w: set %s: %w", ErrStorageFailure, AccessTokenKey, err)
	}
	if err := store.Set(ctx, RefreshTokenKey, refresh); err != nil {
		_ = store.Clear(ctx, AccessTokenKey)
		return fmt.Errorf("%w: set %s: %w", ErrStorageFailure, RefreshTokenKey, err)
	}
	return nil
}

// ClearPair attempts to clear both tokens and returns the first failure.
func ClearPair(ctx context.Context, store CredentialStore) error {
	errAccess := store.Clear(ctx, AccessTokenKey)
	errRefresh := store.Clear(ctx, RefreshTokenKey)
	if errAccess != nil {
		return fmt.Errorf("%w: clear %s: %w", ErrStorageFailure, AccessTokenKey, errAccess)
	}
	if errRefresh != nil {
		return fmt.Errorf("%w: clear %s: %w", ErrStorageFailure, RefreshTokenKey, errRefresh)
	}
	return nil
}
