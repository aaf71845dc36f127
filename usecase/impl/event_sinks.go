package impl

import (
	"context"
	"fmt"

	"github.com/ca-srg/usagemon/domain"
	"github.com/ca-srg/usagemon/domain/entity"
	"github.com/ca-srg/usagemon/domain/repository"
	usecase "github.com/ca-srg/usagemon/usecase/interface"
)

// CompositeSink fans one event out to several sinks in registration order
type CompositeSink struct {
	sinks []usecase.EventSink
}

// NewCompositeSink creates a new CompositeSink
func NewCompositeSink(sinks ...usecase.EventSink) *CompositeSink {
	return &CompositeSink{sinks: sinks}
}

// Add appends a sink. Not safe for concurrent use with Emit; wire sinks up
// before starting the polling loop.
func (c *CompositeSink) Add(sink usecase.EventSink) {
	c.sinks = append(c.sinks, sink)
}

// Emit implements EventSink
func (c *CompositeSink) Emit(event string, payload interface{}) {
	for _, sink := range c.sinks {
		sink.Emit(event, payload)
	}
}

// LoggingSink writes every event to the logger
type LoggingSink struct {
	logger domain.Logger
}

// NewLoggingSink creates a new LoggingSink
func NewLoggingSink(logger domain.Logger) *LoggingSink {
	return &LoggingSink{logger: logger}
}

// Emit implements EventSink
func (s *LoggingSink) Emit(event string, payload interface{}) {
	ctx := context.Background()
	switch event {
	case usecase.EventUsageError:
		s.logger.Warn(ctx, "usage event",
			domain.NewField("event", event),
			domain.NewField("payload", fmt.Sprintf("%+v", payload)))
	default:
		s.logger.Info(ctx, "usage event",
			domain.NewField("event", event),
			domain.NewField("payload", fmt.Sprintf("%+v", payload)))
	}
}

// HistorySink persists every usage-update payload
type HistorySink struct {
	historyService usecase.HistoryService
	logger         domain.Logger
}

// NewHistorySink creates a new HistorySink
func NewHistorySink(historyService usecase.HistoryService, logger domain.Logger) *HistorySink {
	return &HistorySink{historyService: historyService, logger: logger}
}

// Emit implements EventSink. Persistence failures are logged, never
// propagated; an event must not fail the poll cycle that produced it.
func (s *HistorySink) Emit(event string, payload interface{}) {
	if event != usecase.EventUsageUpdate {
		return
	}
	data, ok := payload.(*entity.UsageData)
	if !ok {
		return
	}
	if err := s.historyService.RecordUsage(data); err != nil {
		s.logger.Error(context.Background(), "failed to record usage history",
			domain.NewField("error", err.Error()))
	}
}

// MetricsSink pushes every usage-update payload to the metrics backend
type MetricsSink struct {
	metricsRepo repository.MetricsRepository
	logger      domain.Logger
}

// NewMetricsSink creates a new MetricsSink
func NewMetricsSink(metricsRepo repository.MetricsRepository, logger domain.Logger) *MetricsSink {
	return &MetricsSink{metricsRepo: metricsRepo, logger: logger}
}

// Emit implements EventSink
func (s *MetricsSink) Emit(event string, payload interface{}) {
	if event != usecase.EventUsageUpdate {
		return
	}
	data, ok := payload.(*entity.UsageData)
	if !ok {
		return
	}
	ctx := context.Background()
	if err := s.metricsRepo.SendUsageMetrics(ctx, data); err != nil {
		s.logger.Warn(ctx, "failed to push usage metrics",
			domain.NewField("error", err.Error()))
	}
}
