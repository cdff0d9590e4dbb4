package cleanup

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

type Scheduler struct {
	cleanup *CleanupService
	log     *zap.Logger

	expiredEvery  time.Duration
	consumedEvery time.Duration

	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

func NewScheduler(cleanup *CleanupService, log *zap.Logger) *Scheduler {
	return &Scheduler{
		cleanup:       cleanup,
		log:           log,
		expiredEvery:  30 * time.Minute,
		consumedEvery: 6 * time.Hour,
		stopCh:        make(chan struct{}),
	}
}

// Start запускает планировщик задач
func (s *Scheduler) Start(ctx context.Context) {
	s.log.Info("starting cleanup scheduler")

	s.wg.Add(2)
	go s.loop(ctx, "expired codes", s.expiredEvery, true, s.cleanup.CleanupExpiredCodes)
	go s.loop(ctx, "consumed codes", s.consumedEvery, false, s.cleanup.CleanupConsumedCodes)
}

// Stop останавливает планировщик и ждёт текущий проход.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		s.log.Info("stopping cleanup scheduler")
		close(s.stopCh)
	})
	s.wg.Wait()
}

func (s *Scheduler) loop(ctx context.Context, name string, every time.Duration, runNow bool, job func(context.Context) (int64, error)) {
	defer s.wg.Done()

	ticker := time.NewTicker(every)
	defer ticker.Stop()

	if runNow {
		if _, err := job(ctx); err != nil {
			s.log.Error("initial cleanup failed", zap.String("job", name), zap.Error(err))
		}
	}

	for {
		select {
		case <-ticker.C:
			if _, err := job(ctx); err != nil {
				s.log.Error("cleanup failed", zap.String("job", name), zap.Error(err))
			}
		case <-s.stopCh:
			s.log.Info("cleanup stopped", zap.String("job", name))
			return
		case <-ctx.Done():
			s.log.Info("cleanup cancelled", zap.String("job", name))
			return
		}
	}
}
