package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/soundrail/distro/internal/config"
	"github.com/soundrail/distro/internal/database"
	"github.com/soundrail/distro/internal/handler"
	"github.com/soundrail/distro/internal/queue"
	"github.com/soundrail/distro/internal/repository"
	"github.com/soundrail/distro/internal/router"
	"github.com/soundrail/distro/internal/service"
)

func main() {
	// .env is a development convenience; in production the
	// variables come from the environment directly.
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, relying on environment")
	}
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis is optional: without it the response cache and the
	// auth rate limiter are skipped and everything else works.
	rdb := config.NewRedisClient()

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	releases := repository.NewReleaseRepo(db)
	tracks := repository.NewTrackRepo(db)
	shares := repository.NewSplitShareRepo(db)
	earnings := repository.NewEarningsRepo(db)
	payouts := repository.NewPayoutRepo(db)
	tickets := repository.NewTicketRepo(db)

	invites := service.NewSplitInviteService(db, releases, shares, users, cfg.AcceptBaseURL)
	royalties := service.NewRoyaltyService(releases, shares, earnings, payouts)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.Logger())

	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, users, tokens), cfg.JWTSecret, config.LoadRateLimitConfig(), rdb)
	router.RegisterArtist(e, router.ArtistHandlers{
		Releases: handler.NewReleaseHandler(releases, tracks),
		Tracks:   handler.NewTrackHandler(tracks),
		Splits:   handler.NewSplitShareHandler(users, shares, invites),
		Earnings: handler.NewEarningsHandler(royalties),
		Payouts:  handler.NewPayoutHandler(payouts, royalties, float64(cfg.MinPayout)),
		Tickets:  handler.NewTicketHandler(tickets),
	}, cfg.JWTSecret, config.LoadCacheConfig(), rdb)
	router.RegisterAdmin(e, handler.NewAdminHandler(users, tokens, releases, payouts, tickets, earnings), cfg.JWTSecret)

	// The notification consumer reconnects on its own; a broker
	// outage delays delivery but never blocks the API.
	go func() {
		if err := queue.StartNotifyConsumer(); err != nil {
			log.Printf("notify consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
