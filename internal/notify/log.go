package notify

import (
	"context"

	"github.com/fayiz2005/Kaze/internal/service"

	"go.uber.org/zap"
)

// LogNotifier: режим разработки: письмо только пишется в лог.
type LogNotifier struct {
	log *zap.Logger
}

func NewLogNotifier(log *zap.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (l *LogNotifier) Notify(ctx context.Context, n service.Notification) error {
	l.log.Info("письмо (NOTIFY_MODE=log)",
		zap.String("to", n.To),
		zap.String("subject", n.Subject),
		zap.String("body", n.Body))
	return nil
}
