// cmd/server/main.go
package main

import (
	"context"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"

	"github.com/simondev/simonsays/internal/auth"
	"github.com/simondev/simonsays/internal/cache"
	"github.com/simondev/simonsays/internal/database"
	"github.com/simondev/simonsays/internal/handlers"
	"github.com/simondev/simonsays/internal/service"
)

func main() {
	logger := logrus.New()
	logger.SetLevel(logrus.DebugLevel)

	if err := auth.Init(); err != nil {
		logger.Fatalf("init signing keys: %v", err)
	}

	ctx := context.Background()
	store, err := database.Connect(ctx)
	if err != nil {
		logger.Fatalf("connect to database: %v", err)
	}
	defer store.Pool.Close()

	// cache is optional; without REDIS_ADDR the server reads straight from
	// Postgres and logout only clears the cookie
	var cacheClient *cache.Client
	if os.Getenv("REDIS_ADDR") != "" {
		cacheClient, err = cache.Connect(ctx)
		if err != nil {
			logger.Fatalf("connect to redis: %v", err)
		}
	}

	sessions := service.NewSessions(store, logger)
	srv := handlers.New(store, sessions, cacheClient, logger)

	addr := ":8080"
	if port := os.Getenv("PORT"); port != "" {
		addr = ":" + port
	}
	logger.Infof("Running on %s", addr)
	if err := srv.Start(addr); err != nil {
		logger.Fatalf("server exited: %v", err)
	}
}
