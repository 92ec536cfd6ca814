package models

import "time"

// RefreshSession is the server-side record of an issued refresh token.
// Only the verifier hash is kept; the selector locates the row.
type RefreshSession struct {
	ID           int64     `json:"id"`
	UserID       int64     `json:"user_id"`
	Selector     string    `json:"selector"`
	VerifierHash string    `json:"verifier_hash"`
	ExpiresAt    time.Time `json:"expires_at"`
	CreatedAt    time.Time `json:"created_at"`
}
