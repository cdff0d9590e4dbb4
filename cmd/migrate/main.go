package main

import (
	"context"
	"os"

	"github.com/fayiz2005/Kaze/config"
	"github.com/fayiz2005/Kaze/internal/hashing"
	"github.com/fayiz2005/Kaze/internal/migrate"
	"github.com/fayiz2005/Kaze/internal/repository"
	"github.com/fayiz2005/Kaze/internal/service"
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

	log := logger.L()

	cfg := config.LoadDB(log)
	admin := config.LoadAdmin()

	db := database.ConnectDBForMigration(&cfg.DB.Config, log)
	defer database.CloseDB(db, log)

	ctx := context.Background()
	opts := migrate.DefaultMigrateOptions()

	if err := migrate.MigrateStoreDB(ctx, db, log, opts); err != nil {
		log.Fatal("Ошибка при выполнении миграции", zap.Error(err))
	}

	log.Info("Миграция успешно завершена")

	if admin.SuperEmail == "" {
		log.Info("SUPERADMIN_EMAIL не задан, суперадмин не создаётся")
		return
	}

	repos := repository.New(db)
	authSvc := service.NewAuthService(repos.Users, repos.Invites, repos.PasswordReset, hashing.NewBcrypt(0), nil, nil, nil, service.AuthOptions{}, log)
	authSvc.SetTx(service.NewAuthTx(repos))

	created, err := authSvc.EnsureSuperAdmin(ctx, admin.SuperEmail, admin.SuperPassword)
	if err != nil {
		log.Fatal("Не удалось создать суперадмина", zap.Error(err))
	}
	if created {
		log.Info("Суперадмин создан", zap.String("email", admin.SuperEmail))
	} else {
		log.Info("Суперадмин уже существует", zap.String("email", admin.SuperEmail))
	}
}
