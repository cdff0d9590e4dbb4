package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fayiz2005/Kaze/config"
	"github.com/fayiz2005/Kaze/internal/cleanup"
	"github.com/fayiz2005/Kaze/pkg/database"
	"github.com/fayiz2005/Kaze/pkg/logger"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	isDev := os.Getenv("ENV") == "development"
	if err := logger.Init(isDev); err != nil {
		panic(err)
	}
	defer logger.Sync()

	if len(os.Args) < 2 {
		fmt.Println("Usage: go run cmd/cleanup/main.go [expired|consumed|all]")
		fmt.Println("  expired  - cleanup expired invite and reset codes")
		fmt.Println("  consumed - cleanup consumed codes older than 24h")
		fmt.Println("  all      - run full cleanup (default)")
		os.Exit(1)
	}

	log := logger.L()
	cfg := config.LoadDB(log)

	db := database.ConnectDB(&cfg.DB.Config, log)
	defer database.CloseDB(db, log)

	cleanupSvc := cleanup.NewCleanupService(db, log)

	ctx := context.Background()

	switch os.Args[1] {
	case "expired":
		log.Info("running expired codes cleanup")
		if _, err := cleanupSvc.CleanupExpiredCodes(ctx); err != nil {
			log.Fatal("failed to cleanup expired codes", zap.Error(err))
		}
	case "consumed":
		log.Info("running consumed codes cleanup")
		if _, err := cleanupSvc.CleanupConsumedCodes(ctx); err != nil {
			log.Fatal("failed to cleanup consumed codes", zap.Error(err))
		}
	case "all":
		fallthrough
	default:
		log.Info("running full cleanup")
		if err := cleanupSvc.RunFullCleanup(ctx); err != nil {
			log.Fatal("failed to run full cleanup", zap.Error(err))
		}
	}

	log.Info("cleanup completed successfully")
}
