package controller

import (
	_ "embed"
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/labstack/echo/v4"
)

//go:embed openapi.yaml
var openapiSpec []byte

func GetSwagger() (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(openapiSpec)
	if err != nil {
		return nil, fmt.Errorf("load openapi document: %w", err)
	}
	if err := doc.Validate(loader.Context); err != nil {
		return nil, fmt.Errorf("validate openapi document: %w", err)
	}
	return doc, nil
}

// RegisterHandlers mounts the API on g. requireAuth guards every route that
// needs a bearer access token.
func RegisterHandlers(g *echo.Group, c *Controller, requireAuth echo.MiddlewareFunc) {
	g.GET("/ping", c.CheckServer)

	g.POST("/auth/register/", c.Register)
	g.POST("/token/", c.Login)
	g.POST("/token/refresh/", c.Refresh)
	g.POST("/auth/logout/", c.Logout, requireAuth)
	g.GET("/auth/me/", c.Me, requireAuth)

	g.GET("/activities/", c.ListActivities, requireAuth)
	g.POST("/activities/", c.CreateActivity, requireAuth)
	g.PATCH("/activities/:id/", c.UpdateActivity, requireAuth)
	g.DELETE("/activities/:id/", c.DeleteActivity, requireAuth)
}
