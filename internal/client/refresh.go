package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/rryowa/fitness_session/internal/models"
	"github.com/rryowa/fitness_session/internal/storage"
)

var errEmptyAccess = errors.New("refresh response carries no access token")

// refresh exchanges the stored refresh token for a new access token and
// stores it. The refresh token itself is not rotated. Any failure clears
// both tokens and yields ErrSessionExpired.
func (p *Pipeline) refresh(ctx context.Context) (string, error) {
	refreshToken, ok, err := p.store.Get(ctx, storage.RefreshTokenKey)
	if err != nil {
		return "", fmt.Errorf("%w: get %s: %w", storage.ErrStorageFailure, storage.RefreshTokenKey, err)
	}
	if !ok {
		p.metrics.refreshed(refreshMissing)
		p.forget(ctx)
		return "", ErrSessionExpired
	}

	if !p.coalesce {
		return p.exchange(ctx, refreshToken)
	}

	v, err, shared := p.inflight.Do(refreshToken, func() (any, error) {
		return p.exchange(context.WithoutCancel(ctx), refreshToken)
	})
	if shared {
		p.log.Debugw("joined in-flight refresh")
	}
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (p *Pipeline) exchange(ctx context.Context, refreshToken string) (string, error) {
	req, err := NewRequest(http.MethodPost, RefreshPath, models.RefreshRequest{Refresh: refreshToken})
	if err != nil {
		return "", err
	}

	access, cause := p.requestAccess(ctx, req)
	if cause != nil {
		p.metrics.refreshed(refreshFailure)
		p.log.Warnw("token refresh failed, clearing credentials", "error", cause)
		p.forget(ctx)
		return "", fmt.Errorf("%w: %w", ErrSessionExpired, cause)
	}

	if err := p.store.Set(ctx, storage.AccessTokenKey, access); err != nil {
		return "", fmt.Errorf("%w: set %s: %w", storage.ErrStorageFailure, storage.AccessTokenKey, err)
	}
	p.metrics.refreshed(refreshSuccess)
	p.log.Debugw("access token refreshed")

	return access, nil
}

func (p *Pipeline) requestAccess(ctx context.Context, req Request) (string, error) {
	resp, err := p.send(ctx, req)
	if err != nil {
		return "", err
	}
	if !resp.OK() {
		return "", fmt.Errorf("refresh endpoint returned status %d", resp.StatusCode)
	}

	var out models.RefreshResponse
	if err := resp.Decode(&out); err != nil {
		return "", err
	}
	if out.Access == "" {
		return "", errEmptyAccess
	}
	return out.Access, nil
}

// forget clears both tokens even if the caller's context is already done.
func (p *Pipeline) forget(ctx context.Context) {
	if err := storage.ClearPair(context.WithoutCancel(ctx), p.store); err != nil {
		p.log.Errorw("failed to clear credentials", "error", err)
	}
}
