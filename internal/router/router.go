// Package router wires handlers and middleware onto the Echo
// instance.  Route registration is split by audience: public and
// auth routes here, artist routes in artist_routes.go and the
// back-office routes in admin_routes.go.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/soundrail/distro/internal/config"
	"github.com/soundrail/distro/internal/handler"
	"github.com/soundrail/distro/internal/middleware"
)

// RegisterRoutes registers the unauthenticated routes.  /healthz is
// for load balancers and uptime probes.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the session endpoints under /v1/auth plus
// the authenticated /v1/me.  When Redis is available the
// credential endpoints sit behind a fixed-window rate limit, since
// they are the only routes worth brute-forcing.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string, rl config.RateLimitConfig, rdb *redis.Client) {
	g := e.Group("/v1/auth")
	if rl.Enabled && rdb != nil {
		g.Use(middleware.NewRateLimit(rl, rdb))
	}
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/logout", a.Logout)

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.GET("/me", a.Me)
}
