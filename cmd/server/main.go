package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/game-room-reservation/internal/config"
	"github.com/iliyamo/game-room-reservation/internal/database"
	"github.com/iliyamo/game-room-reservation/internal/engine"
	"github.com/iliyamo/game-room-reservation/internal/handler"
	"github.com/iliyamo/game-room-reservation/internal/middleware"
	"github.com/iliyamo/game-room-reservation/internal/monitoring"
	"github.com/iliyamo/game-room-reservation/internal/queue"
	"github.com/iliyamo/game-room-reservation/internal/repository"
	"github.com/iliyamo/game-room-reservation/internal/router"
	"github.com/iliyamo/game-room-reservation/internal/service"
)

func main() {
	_ = godotenv.Load() // .env is optional; real deployments set the environment directly
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	store := repository.NewStore(db)
	metrics := monitoring.New()
	logger := log.New(os.Stderr, "", log.LstdFlags)

	receipts := service.NewReceiptPublisher(queue.BrokerURL())
	lifecycle := engine.NewLifecycle(store.View(), store, receipts, metrics, logger)
	resolver := engine.NewPromotionResolver(store.View(), store)

	// Background worker rendering receipts from the broker. It runs
	// its own reconnect loop and never returns under normal operation.
	go func() {
		if err := queue.StartReceiptConsumer(); err != nil {
			log.Printf("receipt consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	e.HideBanner = true

	if rdb := config.NewRedisClient(); rdb != nil {
		e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
	} else {
		log.Printf("redis unavailable; rate limiting disabled")
	}

	router.Register(e, router.Handlers{
		Auth:       handler.NewAuthHandler(cfg, repository.NewAccountRepo(db), repository.NewTokenRepo(db)),
		Sessions:   handler.NewSessionHandler(lifecycle, store),
		Posts:      handler.NewPostHandler(store),
		Promotions: handler.NewPromotionHandler(resolver, store),
	}, cfg.JWTSecret)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
