package impl

import (
	"fmt"
	"sync"

	"github.com/ca-srg/usagemon/domain/entity"
	usecase "github.com/ca-srg/usagemon/usecase/interface"
)

// Alert levels carried by usage-notification events
const (
	alertLevelNormal   = "normal"
	alertLevelWarning  = "warning"
	alertLevelCritical = "critical"
)

// AlertSink watches usage-update events and emits a usage-notification event
// when the usage percentage crosses the warning or critical threshold.
// Notifications are edge triggered: staying above a threshold does not
// re-notify until the level changes.
type AlertSink struct {
	warningThreshold  float64
	criticalThreshold float64
	out               usecase.EventSink

	mu        sync.Mutex
	lastLevel string
}

// NewAlertSink creates a new AlertSink that forwards notifications to out
func NewAlertSink(warningThreshold, criticalThreshold float64, out usecase.EventSink) *AlertSink {
	return &AlertSink{
		warningThreshold:  warningThreshold,
		criticalThreshold: criticalThreshold,
		out:               out,
		lastLevel:         alertLevelNormal,
	}
}

// Emit implements EventSink
func (s *AlertSink) Emit(event string, payload interface{}) {
	if event != usecase.EventUsageUpdate {
		return
	}
	data, ok := payload.(*entity.UsageData)
	if !ok {
		return
	}

	level := s.classify(data.UsagePercent)

	s.mu.Lock()
	changed := level != s.lastLevel
	s.lastLevel = level
	s.mu.Unlock()

	if !changed || level == alertLevelNormal {
		return
	}

	s.out.Emit(usecase.EventUsageNotification, usecase.NotificationPayload{
		Level:   level,
		Message: fmt.Sprintf("usage at %.1f%% of limit", data.UsagePercent),
	})
}

func (s *AlertSink) classify(usagePercent float64) string {
	switch {
	case usagePercent >= s.criticalThreshold:
		return alertLevelCritical
	case usagePercent >= s.warningThreshold:
		return alertLevelWarning
	default:
		return alertLevelNormal
	}
}
