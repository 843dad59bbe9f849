package router

import (
	"github.com/labstack/echo/v4"

	"github.com/soundrail/distro/internal/handler"
	"github.com/soundrail/distro/internal/middleware"
	"github.com/soundrail/distro/internal/model"
)

// RegisterAdmin registers the back-office routes under
// /v1/admin.  Everything here requires the ADMIN role.
func RegisterAdmin(e *echo.Echo, a *handler.AdminHandler, jwtSecret string) {
	g := e.Group("/v1/admin")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole(model.RoleAdmin))

	g.GET("/users", a.ListUsers)
	g.PATCH("/users/:id/active", a.SetUserActive)

	g.GET("/releases", a.ListReleases)

	g.GET("/payouts", a.ListPayouts)
	g.PATCH("/payouts/:id", a.UpdatePayout)

	g.GET("/tickets", a.ListTickets)
	g.PATCH("/tickets/:id", a.UpdateTicket)

	g.POST("/earnings/import", a.ImportEarnings)
}
