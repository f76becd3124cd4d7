// Package router registers the desk's HTTP routes on an echo instance.
package router

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/dental-clinic-desk/internal/handler"
	"github.com/iliyamo/dental-clinic-desk/internal/middleware"
)

// Staff roles allowed on /v1.
var staffRoles = []string{"STAFF", "ADMIN"}

// RegisterRoutes registers the unauthenticated endpoints: the health check,
// the prometheus scrape endpoint and the recommendation lookup.
func RegisterRoutes(e *echo.Echo, metrics http.Handler, r *handler.RecommendHandler) {
	e.GET("/healthz", handler.Health)
	if metrics != nil {
		e.GET("/metrics", echo.WrapHandler(metrics))
	}
	e.POST("/v1/recommendations", r.Recommend)
}

// staffGroup builds the protected /v1 group. limit may be nil.
func staffGroup(e *echo.Echo, jwtSecret string, limit echo.MiddlewareFunc) *echo.Group {
	mw := []echo.MiddlewareFunc{
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(staffRoles...),
	}
	// after auth so the bucket can key on the operator
	if limit != nil {
		mw = append(mw, limit)
	}
	return e.Group("/v1", mw...)
}
