package usecase

import (
	"github.com/ca-srg/usagemon/domain/entity"
)

// HistoryService exposes persisted poll results
type HistoryService interface {
	// RecordUsage persists one poll result
	RecordUsage(data *entity.UsageData) error

	// GetHistory returns the records of the last N hours, oldest first
	GetHistory(hours int) ([]entity.UsageHistoryRecord, error)

	// GetStatistics summarizes the records of the last N hours
	GetStatistics(hours int) (*entity.UsageStatistics, error)

	// RunCleanup removes records past the configured retention window and
	// returns the number of rows deleted
	RunCleanup() (int64, error)
}
