package client

import "errors"

var (
	// ErrSessionExpired means no usable access token could be obtained:
	// the refresh token is missing or the refresh call failed. Both tokens
	// have been cleared by the time it is returned.
	ErrSessionExpired = errors.New("session expired")
	ErrTransport      = errors.New("transport failure")
)
