package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/bobby-s-dev/weather-storefront/internal/observability"
)

const maintenanceTimeout = 5 * time.Minute

// Maintainer is a store that needs periodic housekeeping.
type Maintainer interface {
	Maintain(ctx context.Context) error
}

// Scheduler runs store maintenance on a cron schedule.
type Scheduler struct {
	store    Maintainer
	metrics  *observability.Metrics
	logger   *zap.Logger
	schedule string
	cron     *cron.Cron
	entry    cron.EntryID

	mu      sync.Mutex
	running bool
	lastRun time.Time
	lastErr error
}

func NewScheduler(store Maintainer, schedule string, metrics *observability.Metrics, logger *zap.Logger) (*Scheduler, error) {
	cl := cronLogger{logger.Sugar()}
	s := &Scheduler{
		store:    store,
		metrics:  metrics,
		logger:   logger,
		schedule: schedule,
		cron: cron.New(
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
	}

	entry, err := s.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), maintenanceTimeout)
		defer cancel()
		_ = s.RunNow(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("schedule store maintenance %q: %w", schedule, err)
	}
	s.entry = entry
	return s, nil
}

func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.running = true
	s.cron.Start()

	s.logger.Info("Scheduler started",
		zap.String("schedule", s.schedule),
		zap.Time("next_run", s.cron.Entry(s.entry).Next))
}

// Stop halts the schedule and waits for a running job to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.mu.Unlock()

	s.logger.Info("Stopping scheduler")
	<-s.cron.Stop().Done()
}

// RunNow performs one maintenance pass immediately.
func (s *Scheduler) RunNow(ctx context.Context) error {
	start := time.Now()
	s.logger.Debug("Starting store maintenance")

	err := s.store.Maintain(ctx)

	s.mu.Lock()
	s.lastRun = start
	s.lastErr = err
	s.mu.Unlock()

	if err != nil {
		s.metrics.StoreMaintenance.WithLabelValues("error").Inc()
		s.logger.Error("Store maintenance failed",
			zap.Error(err),
			zap.Duration("duration", time.Since(start)))
		return err
	}
	s.metrics.StoreMaintenance.WithLabelValues("success").Inc()
	s.logger.Info("Store maintenance completed",
		zap.Duration("duration", time.Since(start)))
	return nil
}

func (s *Scheduler) GetStatus() map[string]interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := map[string]interface{}{
		"running":  s.running,
		"schedule": s.schedule,
		"last_run": s.lastRun,
	}
	if s.running {
		status["next_run"] = s.cron.Entry(s.entry).Next
	}
	if s.lastErr != nil {
		status["last_error"] = s.lastErr.Error()
	}
	return status
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct {
	log *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Errorw(msg, append(keysAndValues, "error", err)...)
}
