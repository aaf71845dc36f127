package impl

import (
	"context"
	"sync"
	"time"

	"github.com/ca-srg/usagemon/domain"
	"github.com/ca-srg/usagemon/domain/entity"
	usecase "github.com/ca-srg/usagemon/usecase/interface"
)

// PollingServiceImpl implements the PollingService interface. One instance
// owns at most one background loop; the intended usage is a single instance
// per process, explicitly constructed and passed through application state.
type PollingServiceImpl struct {
	scraperService usecase.ScraperService
	sink           usecase.EventSink
	logger         domain.Logger

	// mu guards the lifecycle state only. The data slots below have their
	// own locks so readers of the last result never block Start/Stop.
	mu       sync.Mutex
	running  bool
	stopChan chan struct{}
	cancel   context.CancelFunc

	dataMu   sync.Mutex
	lastData *entity.UsageData

	timeMu       sync.Mutex
	lastPollTime *time.Time
}

// NewPollingServiceImpl creates a new polling service implementation
func NewPollingServiceImpl(
	scraperService usecase.ScraperService,
	sink usecase.EventSink,
	logger domain.Logger,
) *PollingServiceImpl {
	return &PollingServiceImpl{
		scraperService: scraperService,
		sink:           sink,
		logger:         logger,
	}
}

// Start implements PollingService
func (s *PollingServiceImpl) Start(interval time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return usecase.NewPollingServiceError(usecase.ErrCodeAlreadyRunning, "polling is already running")
	}
	if interval <= 0 {
		return domain.ErrInvalidInput("interval", "must be positive")
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.stopChan = make(chan struct{})
	s.cancel = cancel
	s.running = true

	go s.run(ctx, interval, s.stopChan)

	s.logger.Info(ctx, "polling started", domain.NewField("intervalSeconds", interval.Seconds()))
	return nil
}

// Stop implements PollingService. The flag flips synchronously; the loop
// winds down on its own. An in-flight invocation is aborted best effort and
// may still emit one final event.
func (s *PollingServiceImpl) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return usecase.NewPollingServiceError(usecase.ErrCodeNotRunning, "polling is not running")
	}

	s.running = false
	close(s.stopChan)
	s.cancel()

	s.logger.Info(context.Background(), "polling stopped")
	return nil
}

// IsRunning implements PollingService
func (s *PollingServiceImpl) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// LastData implements PollingService
func (s *PollingServiceImpl) LastData() *entity.UsageData {
	s.dataMu.Lock()
	defer s.dataMu.Unlock()
	return s.lastData
}

// LastPollTime implements PollingService
func (s *PollingServiceImpl) LastPollTime() *time.Time {
	s.timeMu.Lock()
	defer s.timeMu.Unlock()
	return s.lastPollTime
}

// run is the polling loop. The first poll happens after one full period;
// a missed tick is absorbed by the next timer fire (time.Ticker keeps at
// most one pending tick), so slow polls delay rather than burst. Cycles are
// strictly sequential: the loop does not wait for the next tick until the
// sink call of the current cycle has returned.
func (s *PollingServiceImpl) run(ctx context.Context, interval time.Duration, stopChan chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stopChan:
			return
		case <-ticker.C:
			// Re-check under the lifecycle lock to exit promptly when
			// Stop raced with the tick
			if !s.IsRunning() {
				return
			}
			s.pollAndEmit(ctx)
		}
	}
}

func (s *PollingServiceImpl) pollAndEmit(ctx context.Context) {
	data, err := s.scraperService.PollOnce(ctx)
	if err != nil {
		// A failed poll is one usage-error event, never fatal; the next
		// tick is the de facto retry.
		s.logger.Warn(ctx, "poll failed", domain.NewField("error", err.Error()))
		s.sink.Emit(usecase.EventUsageError, usecase.ErrorPayload{
			Status:  "error",
			Message: err.Error(),
		})
		return
	}

	now := time.Now()
	s.dataMu.Lock()
	s.lastData = data
	s.dataMu.Unlock()
	s.timeMu.Lock()
	s.lastPollTime = &now
	s.timeMu.Unlock()

	s.logger.Debug(ctx, "poll succeeded", domain.NewField("usagePercent", data.UsagePercent))
	s.sink.Emit(usecase.EventUsageUpdate, data)
}
