package cleanup

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"

	"taxcalc/internal/tax/cache"
	"taxcalc/internal/tax/metrics"
)

type stubSweeper struct {
	calls     atomic.Int32
	removed   int
	remaining int
	err       error
}

func (s *stubSweeper) Cleanup(_ context.Context) (int, error) {
	s.calls.Add(1)
	return s.removed, s.err
}

func (s *stubSweeper) Len() int { return s.remaining }

type CleanupSuite struct {
	suite.Suite
	store *stubSweeper
}

func TestCleanupSuite(t *testing.T) {
	suite.Run(t, new(CleanupSuite))
}

func (s *CleanupSuite) SetupTest() {
	s.store = &stubSweeper{}
}

func (s *CleanupSuite) TestDefaults() {
	svc := New(s.store)
	s.Equal(DefaultInterval, svc.Interval())

	svc = New(s.store, WithInterval(-time.Second))
	s.Equal(DefaultInterval, svc.Interval(), "non-positive interval should be ignored")
}

func (s *CleanupSuite) TestRunOnceReportsCounts() {
	s.store.removed = 3
	s.store.remaining = 5
	m := metrics.NewWithRegistry(prometheus.NewRegistry())

	res, err := New(s.store, WithMetrics(m)).RunOnce(context.Background())
	s.Require().NoError(err)
	s.Equal(3, res.Removed)
	s.Equal(5, res.Remaining)
	s.Equal(3.0, testutil.ToFloat64(m.CacheSweptTotal))
	s.Equal(5.0, testutil.ToFloat64(m.CacheEntries))
}

func (s *CleanupSuite) TestRunOncePropagatesError() {
	s.store.err = errors.New("sweep failed")

	_, err := New(s.store).RunOnce(context.Background())
	s.ErrorIs(err, s.store.err)
}

func (s *CleanupSuite) TestStartSweepsUntilCancelled() {
	svc := New(s.store, WithInterval(10*time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- svc.Start(ctx) }()

	s.Eventually(func() bool { return s.store.calls.Load() >= 2 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		s.ErrorIs(err, context.Canceled)
	case <-time.After(time.Second):
		s.Fail("worker did not stop after cancellation")
	}
}

func (s *CleanupSuite) TestSweepsMemoryCache() {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	mem := cache.NewMemory(cache.WithClock(func() time.Time { return now }))
	ctx := context.Background()
	s.Require().NoError(mem.Set(ctx, "old", []byte("v"), time.Minute))
	s.Require().NoError(mem.Set(ctx, "fresh", []byte("v"), time.Hour))

	now = now.Add(10 * time.Minute)

	res, err := New(mem).RunOnce(ctx)
	s.Require().NoError(err)
	s.Equal(1, res.Removed)
	s.Equal(1, res.Remaining)
}
