package repository

import (
	"github.com/ca-srg/usagemon/domain/entity"
)

// HistoryRepository persists poll results for later inspection
type HistoryRepository interface {
	// RecordUsage appends one poll result
	RecordUsage(data *entity.UsageData) error

	// GetHistory returns the records of the last N hours, oldest first
	GetHistory(hours int) ([]entity.UsageHistoryRecord, error)

	// GetStatistics summarizes the records of the last N hours
	GetStatistics(hours int) (*entity.UsageStatistics, error)

	// Cleanup removes records older than the retention window and returns
	// the number of rows deleted
	Cleanup(retentionDays int) (int64, error)

	// Close releases the underlying storage handle
	Close() error
}
