package entity

import (
	"github.com/ca-srg/usagemon/domain"
)

// UsageData is the success payload reported by the scraper. Instances are
// immutable once constructed; the polling service holds the most recent one
// for external readers.
type UsageData struct {
	Status          string           `json:"status"`
	UsagePercent    float64          `json:"usage_percent"`
	TokensUsed      int64            `json:"tokens_used"`
	TokensLimit     int64            `json:"tokens_limit"`
	TokensRemaining int64            `json:"tokens_remaining"`
	ResetTime       *string          `json:"reset_time"`
	LastUpdated     string           `json:"last_updated"`
	Components      []UsageComponent `json:"components,omitempty"`
}

// UsageComponent is one entry of the component-style payload (current
// session, weekly all models, weekly opus). Newer scraper versions report
// these alongside or instead of the flat token counters.
type UsageComponent struct {
	ComponentID string  `json:"component_id"`
	Label       string  `json:"label,omitempty"`
	Percent     float64 `json:"percent"`
	ResetTime   *string `json:"reset_time,omitempty"`
}

// Validate checks the invariants of the payload. UsagePercent may exceed 100
// when the upstream source reports overage, but never goes negative, and all
// token counters are non-negative.
func (u *UsageData) Validate() error {
	if u.Status == "" {
		return domain.ErrProtocolViolation("missing required field: status")
	}
	if u.UsagePercent < 0 {
		return domain.ErrInvalidInput("usage_percent", "must not be negative")
	}
	if u.TokensUsed < 0 {
		return domain.ErrInvalidInput("tokens_used", "must not be negative")
	}
	if u.TokensLimit < 0 {
		return domain.ErrInvalidInput("tokens_limit", "must not be negative")
	}
	if u.TokensRemaining < 0 {
		return domain.ErrInvalidInput("tokens_remaining", "must not be negative")
	}
	return nil
}

// HasComponents reports whether the payload carries the component-style
// breakdown
func (u *UsageData) HasComponents() bool {
	return len(u.Components) > 0
}
