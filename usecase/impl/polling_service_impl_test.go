package impl

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/ca-srg/usagemon/domain/entity"
	"github.com/ca-srg/usagemon/infrastructure/logging"
	usecase "github.com/ca-srg/usagemon/usecase/interface"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakeScraperService returns a canned result or error for every poll
type fakeScraperService struct {
	mu    sync.Mutex
	data  *entity.UsageData
	err   error
	calls int
}

func (f *fakeScraperService) PollOnce(ctx context.Context) (*entity.UsageData, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.data, f.err
}

func (f *fakeScraperService) PollOnceWithRetry(ctx context.Context) (*entity.UsageData, error) {
	return f.PollOnce(ctx)
}

func (f *fakeScraperService) Login(ctx context.Context) error { return nil }

func (f *fakeScraperService) CheckSession(ctx context.Context) (bool, error) { return true, nil }

func (f *fakeScraperService) pollCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// recordingSink captures emitted events for assertions
type recordingSink struct {
	mu     sync.Mutex
	events []recordedEvent
}

type recordedEvent struct {
	event   string
	payload interface{}
}

func (r *recordingSink) Emit(event string, payload interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, recordedEvent{event: event, payload: payload})
}

func (r *recordingSink) snapshot() []recordedEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]recordedEvent, len(r.events))
	copy(out, r.events)
	return out
}

func (r *recordingSink) waitForEvent(t *testing.T, event string, timeout time.Duration) recordedEvent {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		for _, ev := range r.snapshot() {
			if ev.event == event {
				return ev
			}
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("no %s event within %v", event, timeout)
	return recordedEvent{}
}

func newTestPollingService(scraperSvc usecase.ScraperService, sink usecase.EventSink) *PollingServiceImpl {
	return NewPollingServiceImpl(scraperSvc, sink, &logging.NoOpLogger{})
}

// stopAndDrain stops the service and gives an in-flight cycle time to wind
// down before goleak inspects the goroutines
func stopAndDrain(t *testing.T, svc *PollingServiceImpl) {
	t.Helper()
	if svc.IsRunning() {
		require.NoError(t, svc.Stop())
	}
	time.Sleep(50 * time.Millisecond)
}

func TestPollingServiceLifecycle(t *testing.T) {
	t.Run("starts stopped", func(t *testing.T) {
		svc := newTestPollingService(&fakeScraperService{}, &recordingSink{})

		assert.False(t, svc.IsRunning())
		assert.Nil(t, svc.LastData())
		assert.Nil(t, svc.LastPollTime())
	})

	t.Run("start flips to running", func(t *testing.T) {
		svc := newTestPollingService(&fakeScraperService{}, &recordingSink{})
		defer stopAndDrain(t, svc)

		require.NoError(t, svc.Start(time.Hour))
		assert.True(t, svc.IsRunning())
	})

	t.Run("double start fails with already_running", func(t *testing.T) {
		svc := newTestPollingService(&fakeScraperService{}, &recordingSink{})
		defer stopAndDrain(t, svc)

		require.NoError(t, svc.Start(time.Hour))

		err := svc.Start(time.Hour)
		require.Error(t, err)
		var svcErr *usecase.PollingServiceError
		require.ErrorAs(t, err, &svcErr)
		assert.Equal(t, usecase.ErrCodeAlreadyRunning, svcErr.Code)
	})

	t.Run("stop while stopped fails with not_running", func(t *testing.T) {
		svc := newTestPollingService(&fakeScraperService{}, &recordingSink{})

		err := svc.Stop()
		require.Error(t, err)
		var svcErr *usecase.PollingServiceError
		require.ErrorAs(t, err, &svcErr)
		assert.Equal(t, usecase.ErrCodeNotRunning, svcErr.Code)
	})

	t.Run("non-positive interval is rejected", func(t *testing.T) {
		svc := newTestPollingService(&fakeScraperService{}, &recordingSink{})

		assert.Error(t, svc.Start(0))
		assert.Error(t, svc.Start(-time.Second))
		assert.False(t, svc.IsRunning())
	})

	t.Run("restart after stop", func(t *testing.T) {
		svc := newTestPollingService(&fakeScraperService{}, &recordingSink{})
		defer stopAndDrain(t, svc)

		require.NoError(t, svc.Start(time.Hour))
		require.NoError(t, svc.Stop())
		assert.False(t, svc.IsRunning())

		require.NoError(t, svc.Start(time.Hour))
		assert.True(t, svc.IsRunning())
	})
}

func TestPollingServiceEmitsEvents(t *testing.T) {
	t.Run("successful poll emits usage-update and records state", func(t *testing.T) {
		data := &entity.UsageData{Status: "success", UsagePercent: 55.5}
		scraperSvc := &fakeScraperService{data: data}
		sink := &recordingSink{}
		svc := newTestPollingService(scraperSvc, sink)
		defer stopAndDrain(t, svc)

		require.NoError(t, svc.Start(20 * time.Millisecond))

		ev := sink.waitForEvent(t, usecase.EventUsageUpdate, 2*time.Second)
		assert.Same(t, data, ev.payload)

		assert.Eventually(t, func() bool {
			return svc.LastData() != nil && svc.LastPollTime() != nil
		}, time.Second, 5*time.Millisecond)
		assert.Equal(t, 55.5, svc.LastData().UsagePercent)
	})

	t.Run("failed poll emits usage-error and keeps running", func(t *testing.T) {
		scraperSvc := &fakeScraperService{err: errors.New("scraper exploded")}
		sink := &recordingSink{}
		svc := newTestPollingService(scraperSvc, sink)
		defer stopAndDrain(t, svc)

		require.NoError(t, svc.Start(20 * time.Millisecond))

		ev := sink.waitForEvent(t, usecase.EventUsageError, 2*time.Second)
		payload, ok := ev.payload.(usecase.ErrorPayload)
		require.True(t, ok)
		assert.Equal(t, "error", payload.Status)
		assert.Contains(t, payload.Message, "scraper exploded")

		assert.True(t, svc.IsRunning())
		assert.Nil(t, svc.LastData())
	})

	t.Run("no eager poll before the first period", func(t *testing.T) {
		scraperSvc := &fakeScraperService{data: &entity.UsageData{Status: "success"}}
		svc := newTestPollingService(scraperSvc, &recordingSink{})
		defer stopAndDrain(t, svc)

		require.NoError(t, svc.Start(time.Hour))
		time.Sleep(50 * time.Millisecond)

		assert.Equal(t, 0, scraperSvc.pollCalls())
	})

	t.Run("no events after stop settles", func(t *testing.T) {
		scraperSvc := &fakeScraperService{data: &entity.UsageData{Status: "success"}}
		sink := &recordingSink{}
		svc := newTestPollingService(scraperSvc, sink)

		require.NoError(t, svc.Start(10 * time.Millisecond))
		sink.waitForEvent(t, usecase.EventUsageUpdate, 2*time.Second)
		require.NoError(t, svc.Stop())

		// An in-flight cycle may still emit once; after it drains the
		// count must stay put.
		time.Sleep(50 * time.Millisecond)
		settled := len(sink.snapshot())
		time.Sleep(100 * time.Millisecond)
		assert.Equal(t, settled, len(sink.snapshot()))
	})
}
