package models

const (
	MwUserIDKey = "userID"
	MwTokenKey  = "token"
)

// ErrorResponse is the DRF-style error body written by the mock API.
type ErrorResponse struct {
	Detail string `json:"detail"`
	Code   string `json:"code,omitempty"`
}
