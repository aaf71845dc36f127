package repository

import (
	"context"

	"github.com/ca-srg/usagemon/domain/entity"
)

// MetricsRepository pushes usage gauges to a metrics backend
type MetricsRepository interface {
	// SendUsageMetrics pushes the gauges derived from one poll result
	SendUsageMetrics(ctx context.Context, data *entity.UsageData) error
}
