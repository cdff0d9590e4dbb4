// Package notify доставляет письма: напрямую по SMTP, через очередь Kafka
// или в лог для разработки.
package notify

import (
	"fmt"

	"github.com/fayiz2005/Kaze/config"
	"github.com/fayiz2005/Kaze/internal/service"

	"go.uber.org/zap"
)

const (
	ModeSMTP  = "smtp"
	ModeKafka = "kafka"
	ModeLog   = "log"
)

// New собирает Notifier по NOTIFY_MODE. closeFn освобождает ресурсы
// (writer Kafka) и всегда не nil.
func New(cfg *config.Config, log *zap.Logger) (n service.Notifier, closeFn func() error, err error) {
	noop := func() error { return nil }

	switch cfg.Notify.Mode {
	case ModeLog, "":
		return NewLogNotifier(log), noop, nil
	case ModeSMTP:
		sender := NewEmailSender(cfg.SMTP)
		return NewBreakerNotifier(sender, BreakerSettings{Name: "smtp"}, log), noop, nil
	case ModeKafka:
		producer := NewKafkaNotifier(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		return NewBreakerNotifier(producer, BreakerSettings{Name: "kafka"}, log), producer.Close, nil
	default:
		return nil, noop, fmt.Errorf("unknown NOTIFY_MODE %q", cfg.Notify.Mode)
	}
}
