package repository

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/ca-srg/usagemon/domain"
	"github.com/ca-srg/usagemon/domain/entity"
	"github.com/ca-srg/usagemon/domain/repository"
	"github.com/ca-srg/usagemon/domain/valueobject"
	"github.com/ca-srg/usagemon/infrastructure/config"
	"github.com/ca-srg/usagemon/infrastructure/retry"
)

// PrometheusMetricsRepository implements MetricsRepository using Prometheus
// Remote Write
type PrometheusMetricsRepository struct {
	config      *config.PrometheusConfig
	rwClient    *RemoteWriteClient
	hostLabel   string
	retryPolicy valueobject.RetryPolicy
	logger      domain.Logger
}

// NewPrometheusMetricsRepository creates a new Prometheus metrics repository
func NewPrometheusMetricsRepository(cfg *config.PrometheusConfig, logger domain.Logger) (repository.MetricsRepository, error) {
	if cfg == nil {
		return nil, fmt.Errorf("prometheus config is nil")
	}
	if cfg.RemoteWriteURL == "" {
		return nil, fmt.Errorf("remote write url is empty")
	}

	// Use hostname if HostLabel is not specified
	hostLabel := cfg.HostLabel
	if hostLabel == "" {
		hostname, err := os.Hostname()
		if err != nil {
			hostLabel = "unknown"
		} else {
			hostLabel = hostname
		}
	}

	var authConfig *AuthConfig
	if cfg.RemoteWriteUsername != "" && cfg.RemoteWritePassword != "" {
		authConfig = &AuthConfig{
			Username: cfg.RemoteWriteUsername,
			Password: cfg.RemoteWritePassword,
		}
	}

	rwClient, err := NewRemoteWriteClient(
		cfg.RemoteWriteURL,
		time.Duration(cfg.TimeoutSec)*time.Second,
		authConfig,
	)
	if err != nil {
		return nil, err
	}

	return &PrometheusMetricsRepository{
		config:    cfg,
		rwClient:  rwClient,
		hostLabel: hostLabel,
		retryPolicy: valueobject.RetryPolicy{
			InitialDelay: time.Second,
			Multiplier:   2.0,
			MaxAttempts:  3,
			MaxDelay:     30 * time.Second,
		},
		logger: logger,
	}, nil
}

// SendUsageMetrics implements MetricsRepository. All gauges of one poll
// result go out in a single write request.
func (r *PrometheusMetricsRepository) SendUsageMetrics(ctx context.Context, data *entity.UsageData) error {
	if data == nil {
		return domain.ErrInvalidInput("data", "must not be nil")
	}

	hostLabels := map[string]string{"host": r.hostLabel}
	samples := []GaugeSample{
		{Name: "usagemon_usage_percent", Value: data.UsagePercent, Labels: hostLabels},
		{Name: "usagemon_tokens_used", Value: float64(data.TokensUsed), Labels: hostLabels},
		{Name: "usagemon_tokens_limit", Value: float64(data.TokensLimit), Labels: hostLabels},
		{Name: "usagemon_tokens_remaining", Value: float64(data.TokensRemaining), Labels: hostLabels},
	}
	for _, component := range data.Components {
		samples = append(samples, GaugeSample{
			Name:  "usagemon_component_percent",
			Value: component.Percent,
			Labels: map[string]string{
				"host":      r.hostLabel,
				"component": component.ComponentID,
			},
		})
	}

	sendCtx, cancel := context.WithTimeout(ctx, time.Duration(r.config.TimeoutSec)*time.Second)
	defer cancel()

	_, err := retry.Do(sendCtx, r.retryPolicy, r.logger, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, r.rwClient.SendGauges(ctx, samples)
	})
	if err != nil {
		return domain.ErrRepository("send usage metrics", err)
	}
	return nil
}
