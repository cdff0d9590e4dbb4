package notify

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/fayiz2005/Kaze/internal/service"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

type KafkaEmailConsumer struct {
	reader      messageReader
	sender      service.Notifier
	sendTimeout time.Duration
	log         *zap.Logger
}

func NewKafkaEmailConsumer(brokers []string, groupID, topic string, sender service.Notifier, sendTimeout time.Duration, log *zap.Logger) *KafkaEmailConsumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:           brokers,
		GroupID:           groupID,
		Topic:             topic,
		MinBytes:          10e3,
		MaxBytes:          10e6,
		CommitInterval:    time.Second,
		HeartbeatInterval: 3 * time.Second,
		SessionTimeout:    30 * time.Second,
	})
	return &KafkaEmailConsumer{reader: r, sender: sender, sendTimeout: sendTimeout, log: log}
}

func (c *KafkaEmailConsumer) Run(ctx context.Context) error {
	c.log.Info("kafka consumer запущен")
	for {
		m, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				return nil
			}
			c.log.Error("read message", zap.Error(err))
			continue
		}
		c.handle(ctx, m)
	}
}

// handle не возвращает ошибку: битое или недоставленное сообщение
// логируется и пропускается, очередь не стопорится.
func (c *KafkaEmailConsumer) handle(ctx context.Context, m kafka.Message) {
	var n service.Notification
	if err := json.Unmarshal(m.Value, &n); err != nil {
		c.log.Error("unmarshal email message", zap.ByteString("value", m.Value), zap.Error(err))
		return
	}
	if n.To == "" || n.Body == "" {
		c.log.Warn("invalid email message", zap.String("to", n.To), zap.String("subject", n.Subject))
		return
	}

	sctx, cancel := context.WithTimeout(ctx, c.sendTimeout)
	defer cancel()

	if err := c.sender.Notify(sctx, n); err != nil {
		c.log.Error("send email failed", zap.String("to", n.To), zap.String("subject", n.Subject), zap.Error(err))
		return
	}
	c.log.Info("email sent", zap.String("to", n.To), zap.String("subject", n.Subject))
}

func (c *KafkaEmailConsumer) Close() error { return c.reader.Close() }
