package notify

import (
	"context"
	"time"

	"github.com/fayiz2005/Kaze/internal/service"

	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

type BreakerSettings struct {
	Name             string
	ConsecutiveFails uint32
	OpenTimeout      time.Duration
}

// BreakerNotifier размыкается после серии отказов и какое-то время
// отвечает ошибкой сразу, не дожидаясь таймаута SMTP/Kafka.
type BreakerNotifier struct {
	next service.Notifier
	cb   *gobreaker.CircuitBreaker[struct{}]
}

func NewBreakerNotifier(next service.Notifier, st BreakerSettings, log *zap.Logger) *BreakerNotifier {
	if st.ConsecutiveFails == 0 {
		st.ConsecutiveFails = 5
	}
	if st.OpenTimeout <= 0 {
		st.OpenTimeout = 30 * time.Second
	}

	cb := gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        st.Name,
		MaxRequests: 1,
		Timeout:     st.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= st.ConsecutiveFails
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker уведомлений сменил состояние",
				zap.String("name", name), zap.String("from", from.String()), zap.String("to", to.String()))
		},
	})
	return &BreakerNotifier{next: next, cb: cb}
}

func (b *BreakerNotifier) Notify(ctx context.Context, n service.Notification) error {
	_, err := b.cb.Execute(func() (struct{}, error) {
		return struct{}{}, b.next.Notify(ctx, n)
	})
	return err
}

func (b *BreakerNotifier) State() gobreaker.State {
	return b.cb.State()
}
