// Package router wires handlers to paths and attaches auth and role
// middleware per group.
package router

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/bqomis-portal/internal/handler"
	"github.com/iliyamo/bqomis-portal/internal/middleware"
	"github.com/iliyamo/bqomis-portal/internal/model"
)

// RegisterRoutes registers the unauthenticated operational endpoints.
// metrics may be nil.
func RegisterRoutes(e *echo.Echo, metrics http.Handler) {
	e.GET("/healthz", handler.Health)
	if metrics != nil {
		e.GET("/metrics", echo.WrapHandler(metrics))
	}
}

// orPass returns mw, or a middleware that does nothing when mw is nil.
func orPass(mw echo.MiddlewareFunc) echo.MiddlewareFunc {
	if mw == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	return mw
}

// RegisterAuth registers session endpoints under /v1/auth and the
// signed-in user's own endpoints under /v1/me.  limit runs after JWTAuth so
// rate limit keys see the caller; /v1/auth callers are keyed as anonymous.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, p *handler.ProfileHandler, jwtSecret string, limit echo.MiddlewareFunc) {
	limit = orPass(limit)
	g := e.Group("/v1/auth", limit)
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	// Logout takes a refresh token in the body or, failing that, a bearer
	// token; it does not go through JWTAuth so expired access tokens can
	// still revoke a refresh token.
	g.POST("/logout", a.Logout)

	me := e.Group("/v1/me",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleClient, model.RoleStaff, model.RoleAdmin, model.RoleTester),
		limit,
	)
	me.GET("", p.Get)
	me.PUT("", p.Update)
	me.POST("/password", p.ChangePassword)
	me.GET("/appointments", p.Appointments)
}
