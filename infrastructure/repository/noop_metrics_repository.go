package repository

import (
	"context"

	"github.com/ca-srg/usagemon/domain/entity"
	"github.com/ca-srg/usagemon/domain/repository"
)

// NoopMetricsRepository is used when no Remote Write endpoint is configured
type NoopMetricsRepository struct{}

// NewNoopMetricsRepository creates a new NoopMetricsRepository
func NewNoopMetricsRepository() repository.MetricsRepository {
	return &NoopMetricsRepository{}
}

// SendUsageMetrics implements MetricsRepository as a no-op
func (r *NoopMetricsRepository) SendUsageMetrics(ctx context.Context, data *entity.UsageData) error {
	return nil
}
