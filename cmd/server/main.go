// Command server runs the TicketHub HTTP API: show browsing, seat
// booking and the admin show management endpoints.
package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/tickethub/tickethub/internal/config"
	"github.com/tickethub/tickethub/internal/database"
	"github.com/tickethub/tickethub/internal/handler"
	"github.com/tickethub/tickethub/internal/middleware"
	"github.com/tickethub/tickethub/internal/queue"
	"github.com/tickethub/tickethub/internal/repository"
	"github.com/tickethub/tickethub/internal/router"
)

func main() {
	// .env is a convenience for local runs; deployed environments set
	// real variables and have no file.
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, relying on environment")
	}
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	defer db.Close()

	// Redis is optional: without it the rate limiter and response
	// cache become pass-throughs.
	rdb := config.NewRedisClient()

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	shows := repository.NewShowRepo(db)
	bookings := repository.NewBookingRepo(db)

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, users, tokens), cfg.JWTSecret)
	router.RegisterPublic(e, handler.NewPublicHandler(shows, bookings),
		middleware.NewResponseCache(config.LoadCacheConfig(), rdb))
	router.RegisterBookings(e, handler.NewBookingHandler(shows, bookings), cfg.JWTSecret)
	router.RegisterAdmin(e, handler.NewAdminHandler(shows), cfg.JWTSecret)

	// The audit-log consumer reconnects on its own; a missing broker
	// only costs the log lines.
	go func() {
		if err := queue.StartBookingConsumer(); err != nil {
			log.Printf("booking consumer stopped: %v", err)
		}
	}()

	log.Printf("listening on :%s (env=%s)", cfg.Port, cfg.Env)
	if err := e.Start(":" + cfg.Port); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}
