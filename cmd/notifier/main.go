package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fayiz2005/Kaze/config"
	"github.com/fayiz2005/Kaze/internal/notify"
	"github.com/fayiz2005/Kaze/pkg/logger"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// notifier читает письма из Kafka (NOTIFY_MODE=kafka у сервиса) и
// отправляет их по SMTP.
func main() {
	_ = godotenv.Load()
	isDev := os.Getenv("ENV") == "development"
	if err := logger.Init(isDev); err != nil {
		panic(err)
	}

	defer logger.Sync()

	log := logger.L()

	kafkaCfg := config.LoadKafka()
	smtpCfg := config.LoadSMTP(log)

	if len(kafkaCfg.Brokers) == 0 {
		log.Fatal("no kafka brokers configured (KAFKA_BROKERS)")
	}

	sender := notify.NewBreakerNotifier(notify.NewEmailSender(smtpCfg), notify.BreakerSettings{Name: "smtp"}, log)
	cons := notify.NewKafkaEmailConsumer(kafkaCfg.Brokers, kafkaCfg.GroupID, kafkaCfg.Topic, sender, 30*time.Second, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := cons.Run(ctx); err != nil {
			log.Error("consumer stopped", zap.Error(err))
		}
	}()

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	log.Info("shutdown signal received")
	cancel()
	<-done
	_ = cons.Close()
}
