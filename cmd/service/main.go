package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fayiz2005/Kaze/config"
	"github.com/fayiz2005/Kaze/internal/cache"
	"github.com/fayiz2005/Kaze/internal/cleanup"
	"github.com/fayiz2005/Kaze/internal/hashing"
	"github.com/fayiz2005/Kaze/internal/notify"
	"github.com/fayiz2005/Kaze/internal/repository"
	"github.com/fayiz2005/Kaze/internal/service"
	"github.com/fayiz2005/Kaze/internal/token"
	httptransport "github.com/fayiz2005/Kaze/internal/transport/http"
	"github.com/fayiz2005/Kaze/pkg/database"
	"github.com/fayiz2005/Kaze/pkg/logger"
	"github.com/fayiz2005/Kaze/pkg/metrics"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
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

	cfg := config.Load(log)
	if !isDev {
		gin.SetMode(gin.ReleaseMode)
	}

	db := database.ConnectDB(&cfg.DB.Config, log)
	defer database.CloseDB(db, log)

	repos := repository.New(db)

	// интерфейс остаётся nil, если Redis выключен
	var cacheClient service.CacheClient
	if cfg.Redis.Enabled {
		redisClient, err := cache.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, log)
		if err != nil {
			log.Fatal("failed to create redis client", zap.Error(err))
		}
		defer redisClient.Close()
		cacheClient = redisClient
		log.Info("Redis cache enabled")
	} else {
		log.Info("Redis cache disabled")
	}

	notifier, closeNotifier, err := notify.New(cfg, log)
	if err != nil {
		log.Fatal("failed to create notifier", zap.Error(err))
	}
	defer func() {
		if err := closeNotifier(); err != nil {
			log.Warn("notifier close", zap.Error(err))
		}
	}()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	checkoutSvc := service.NewCheckoutService(
		service.NewCheckoutStore(repos),
		notifier,
		metrics.NewCheckoutMetrics(reg),
		service.CheckoutOptions{
			TxTimeout:     cfg.Checkout.TxTimeout,
			NotifyTimeout: cfg.Notify.Timeout,
		},
		log,
	)
	checkoutSvc.SetCache(cacheClient)
	catalogSvc := service.NewCatalogService(repos, cacheClient, time.Duration(cfg.Redis.TTLSeconds)*time.Second, log)
	orderSvc := service.NewOrderService(repos, log)

	tokens := token.NewHSProvider(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.Audience)
	authSvc := service.NewAuthService(
		repos.Users, repos.Invites, repos.PasswordReset,
		hashing.NewBcrypt(0), tokens,
		cacheClient, notifier,
		service.AuthOptions{
			AccessTTL: cfg.JWT.AccessExp,
			InviteTTL: cfg.Admin.InviteTTL,
			ResetTTL:  cfg.Admin.ResetTTL,
		},
		log,
	)
	authSvc.SetTx(service.NewAuthTx(repos))

	cleanupSvc := cleanup.NewCleanupService(db, log)
	scheduler := cleanup.NewScheduler(cleanupSvc, log)

	cleanupCtx, cleanupCancel := context.WithCancel(context.Background())
	defer cleanupCancel()
	scheduler.Start(cleanupCtx)

	handler := httptransport.NewHandler(checkoutSvc, catalogSvc, orderSvc, authSvc, log)
	router := httptransport.Router(httptransport.RouterDeps{
		Handler:  handler,
		Auth:     authSvc,
		Metrics:  metrics.NewServerMetrics(reg, "api"),
		Gatherer: reg,
		Origins:  cfg.Origins,
	}, log)

	srv := &http.Server{
		Addr:              cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Info("Starting HTTP server", zap.String("addr", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	<-quit
	log.Info("Shutting down HTTP server...")

	// Останавливаем планировщик
	scheduler.Stop()
	cleanupCancel()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("HTTP server shutdown", zap.Error(err))
	}

	// Ждём письма по уже созданным заказам
	checkoutSvc.Wait()
	log.Info("HTTP server stopped gracefully")
}
