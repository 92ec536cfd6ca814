package controller

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/rryowa/fitness_session/internal/backend"
	"github.com/rryowa/fitness_session/internal/models"
)

// Pinger reports whether the storage behind the API is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Controller struct {
	zapLogger  *zap.SugaredLogger
	auth       *backend.AuthService
	activities *backend.ActivityService
	pinger     Pinger
}

func NewController(
	logger *zap.SugaredLogger,
	auth *backend.AuthService,
	activities *backend.ActivityService,
	pinger Pinger,
) *Controller {
	return &Controller{
		zapLogger:  logger,
		auth:       auth,
		activities: activities,
		pinger:     pinger,
	}
}

// (GET /api/ping).
func (c *Controller) CheckServer(ctx echo.Context) error {
	if c.pinger != nil {
		if err := c.pinger.Ping(ctx.Request().Context()); err != nil {
			c.zapLogger.Errorw("storage ping failed", "error", err)
			return echo.NewHTTPError(http.StatusServiceUnavailable, "storage unavailable")
		}
	}
	return ctx.JSON(http.StatusOK, "ok")
}

// (POST /api/auth/register/).
func (c *Controller) Register(ctx echo.Context) error {
	var req models.RegisterRequest
	if err := ctx.Bind(&req); err != nil {
		return malformedBody()
	}

	user, err := c.auth.Register(ctx.Request().Context(), req)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, user)
}

// (POST /api/token/).
func (c *Controller) Login(ctx echo.Context) error {
	var req models.LoginRequest
	if err := ctx.Bind(&req); err != nil {
		return malformedBody()
	}

	pair, err := c.auth.Login(ctx.Request().Context(), req.Username, req.Password)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, pair)
}

// (POST /api/token/refresh/).
func (c *Controller) Refresh(ctx echo.Context) error {
	var req models.RefreshRequest
	if err := ctx.Bind(&req); err != nil {
		return malformedBody()
	}

	access, err := c.auth.Refresh(ctx.Request().Context(), req.Refresh)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, models.RefreshResponse{Access: access})
}

// (POST /api/auth/logout/).
func (c *Controller) Logout(ctx echo.Context) error {
	var req models.LogoutRequest
	if err := ctx.Bind(&req); err != nil {
		return malformedBody()
	}

	token, _ := ctx.Get(models.MwTokenKey).(string)
	if err := c.auth.Logout(ctx.Request().Context(), userID(ctx), req.Refresh, token); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusResetContent)
}

// (GET /api/auth/me/).
func (c *Controller) Me(ctx echo.Context) error {
	user, err := c.auth.Me(ctx.Request().Context(), userID(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, user)
}

// (GET /api/activities/).
func (c *Controller) ListActivities(ctx echo.Context) error {
	list, err := c.activities.List(ctx.Request().Context(), userID(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, list)
}

// (POST /api/activities/).
func (c *Controller) CreateActivity(ctx echo.Context) error {
	var req models.CreateActivityRequest
	if err := ctx.Bind(&req); err != nil {
		return malformedBody()
	}

	activity, err := c.activities.Create(ctx.Request().Context(), userID(ctx), req)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, activity)
}

// (PATCH /api/activities/{id}/).
func (c *Controller) UpdateActivity(ctx echo.Context) error {
	id, err := activityID(ctx)
	if err != nil {
		return err
	}
	var req models.UpdateActivityRequest
	if err := ctx.Bind(&req); err != nil {
		return malformedBody()
	}

	activity, err := c.activities.Update(ctx.Request().Context(), userID(ctx), id, req)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, activity)
}

// (DELETE /api/activities/{id}/).
func (c *Controller) DeleteActivity(ctx echo.Context) error {
	id, err := activityID(ctx)
	if err != nil {
		return err
	}
	if err := c.activities.Delete(ctx.Request().Context(), userID(ctx), id); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func userID(ctx echo.Context) int64 {
	id, _ := ctx.Get(models.MwUserIDKey).(int64)
	return id
}

func activityID(ctx echo.Context) (int64, error) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusNotFound, "Not found.")
	}
	return id, nil
}

func malformedBody() error {
	return echo.NewHTTPError(http.StatusBadRequest, "Malformed request body.")
}
