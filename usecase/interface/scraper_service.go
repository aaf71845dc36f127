package usecase

import (
	"context"

	"github.com/ca-srg/usagemon/domain/entity"
)

// ScraperService runs single scraper invocations and decodes their output
type ScraperService interface {
	// PollOnce performs one invoke-and-decode cycle
	PollOnce(ctx context.Context) (*entity.UsageData, error)

	// PollOnceWithRetry wraps PollOnce with the configured backoff policy
	PollOnceWithRetry(ctx context.Context) (*entity.UsageData, error)

	// Login runs the interactive one-time authentication flow
	Login(ctx context.Context) error

	// CheckSession reports whether a valid scraper session exists
	CheckSession(ctx context.Context) (bool, error)
}
