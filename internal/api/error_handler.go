package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/rryowa/fitness_session/internal/backend"
	"github.com/rryowa/fitness_session/internal/models"
	"github.com/rryowa/fitness_session/internal/storage"
)

const codeTokenNotValid = "token_not_valid"

func ErrorHandler(log *zap.SugaredLogger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, body := errorResponse(err)
		if status == http.StatusInternalServerError {
			log.Errorw("unhandled error", "error", err, "uri", c.Request().RequestURI)
		}

		if err := c.JSON(status, body); err != nil {
			log.Errorw("failed to write json response", "error", err)
		}
	}
}

func errorResponse(err error) (int, any) {
	var validationErr *backend.ValidationError
	if errors.As(err, &validationErr) {
		return http.StatusBadRequest, validationErr.Fields
	}

	switch {
	case errors.Is(err, backend.ErrInvalidCredentials):
		return http.StatusUnauthorized, models.ErrorResponse{Detail: "No active account found with the given credentials"}
	case isUnauthorizedTokenError(err):
		return http.StatusUnauthorized, models.ErrorResponse{Detail: "Token is invalid or expired", Code: codeTokenNotValid}
	case errors.Is(err, storage.ErrUserNotFound):
		return http.StatusUnauthorized, models.ErrorResponse{Detail: "User not found", Code: "user_not_found"}
	case errors.Is(err, storage.ErrActivityNotFound):
		return http.StatusNotFound, models.ErrorResponse{Detail: "Not found."}
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, models.ErrorResponse{Detail: fmt.Sprint(he.Message)}
	}

	return http.StatusInternalServerError, models.ErrorResponse{Detail: "internal server error"}
}

func isUnauthorizedTokenError(err error) bool {
	return errors.Is(err, backend.ErrTokenInvalid) ||
		errors.Is(err, backend.ErrTokenRevoked) ||
		errors.Is(err, backend.ErrTokenMalformed) ||
		errors.Is(err, backend.ErrInvalidUserID) ||
		errors.Is(err, backend.ErrRefreshInvalid)
}
