package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/soundrail/distro/internal/config"
	"github.com/soundrail/distro/internal/handler"
	"github.com/soundrail/distro/internal/middleware"
	"github.com/soundrail/distro/internal/model"
)

// ArtistHandlers bundles the handlers registered on the artist
// surface so RegisterArtist does not grow a parameter per handler.
type ArtistHandlers struct {
	Releases *handler.ReleaseHandler
	Tracks   *handler.TrackHandler
	Splits   *handler.SplitShareHandler
	Earnings *handler.EarningsHandler
	Payouts  *handler.PayoutHandler
	Tickets  *handler.TicketHandler
}

// RegisterArtist registers every authenticated artist-facing route
// under /v1.  Admins pass the role check too: the back office
// occasionally walks the artist surface when reproducing a report.
//
// The earnings GETs are the expensive routes (attribution joins
// the full earnings table), so they get the Redis response cache
// when it is configured.  Cache keys include the authenticated
// user id, which keeps one artist's figures out of another's
// responses.
func RegisterArtist(e *echo.Echo, h ArtistHandlers, jwtSecret string, cc config.CacheConfig, rdb *redis.Client) {
	g := e.Group("/v1")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole(model.RoleArtist, model.RoleAdmin))

	g.POST("/releases", h.Releases.Create)
	g.GET("/releases", h.Releases.List)
	g.GET("/releases/:id", h.Releases.Get)
	g.PUT("/releases/:id", h.Releases.Update)
	g.DELETE("/releases/:id", h.Releases.Delete)

	g.POST("/releases/:id/tracks", h.Tracks.Create)
	g.GET("/releases/:id/tracks", h.Tracks.List)
	g.PUT("/tracks/:id", h.Tracks.Update)
	g.DELETE("/tracks/:id", h.Tracks.Delete)

	g.POST("/releases/:id/splits", h.Splits.Create)
	g.GET("/releases/:id/splits", h.Splits.List)
	g.POST("/splits/accept", h.Splits.Accept)
	g.POST("/splits/:id/resend", h.Splits.Resend)
	g.GET("/splits/mine", h.Splits.Mine)

	earnings := g.Group("/earnings")
	if cc.Enabled && rdb != nil {
		earnings.Use(middleware.NewRedisCache(cc, rdb))
	}
	earnings.GET("", h.Earnings.List)
	earnings.GET("/claims", h.Earnings.Claims)
	earnings.GET("/summary", h.Earnings.Summary)
	earnings.GET("/platforms", h.Earnings.ByPlatform)
	earnings.GET("/territories", h.Earnings.ByTerritory)
	earnings.GET("/periods", h.Earnings.ByPeriod)
	earnings.GET("/balance", h.Earnings.Balance)

	g.POST("/payouts", h.Payouts.Create)
	g.GET("/payouts", h.Payouts.List)
	g.GET("/payouts/:id", h.Payouts.Get)

	g.POST("/tickets", h.Tickets.Create)
	g.GET("/tickets", h.Tickets.List)
	g.GET("/tickets/:id", h.Tickets.Get)
	g.POST("/tickets/:id/messages", h.Tickets.Reply)
}
