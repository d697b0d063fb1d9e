package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/bobby-s-dev/weather-storefront/internal/observability"
)

type countingStore struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (s *countingStore) Maintain(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.err
}

func TestNewScheduler_RejectsBadSchedule(t *testing.T) {
	_, err := NewScheduler(&countingStore{}, "every now and then", observability.NewMetricsForTesting(), zaptest.NewLogger(t))
	assert.Error(t, err)
}

func TestRunNow(t *testing.T) {
	store := &countingStore{}
	metrics := observability.NewMetricsForTesting()
	s, err := NewScheduler(store, "@every 30m", metrics, zaptest.NewLogger(t))
	require.NoError(t, err)

	require.NoError(t, s.RunNow(context.Background()))
	assert.Equal(t, 1, store.calls)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.StoreMaintenance.WithLabelValues("success")))

	store.err = errors.New("value log busy")
	assert.Error(t, s.RunNow(context.Background()))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.StoreMaintenance.WithLabelValues("error")))
	assert.Equal(t, "value log busy", s.GetStatus()["last_error"])
}

func TestStartStop(t *testing.T) {
	s, err := NewScheduler(&countingStore{}, "@every 30m", observability.NewMetricsForTesting(), zaptest.NewLogger(t))
	require.NoError(t, err)

	s.Start()
	s.Start()
	status := s.GetStatus()
	assert.Equal(t, true, status["running"])
	assert.Contains(t, status, "next_run")

	s.Stop()
	s.Stop()
	assert.Equal(t, false, s.GetStatus()["running"])
}
