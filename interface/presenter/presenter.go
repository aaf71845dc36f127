package presenter

import (
	"github.com/ca-srg/usagemon/domain/entity"
)

// ConsolePresenter handles console output formatting
type ConsolePresenter interface {
	// Basic output
	PrintVersion()
	PrintError(err error)
	PrintSessionStatus(valid bool) error

	// Usage output
	PrintUsage(data *entity.UsageData) error
	PrintHistory(records []entity.UsageHistoryRecord) error
	PrintStatistics(stats *entity.UsageStatistics) error
}

// JSONPresenter handles JSON output formatting
type JSONPresenter interface {
	PrintSessionStatus(valid bool) error
	PrintUsage(data *entity.UsageData) error
	PrintHistory(records []entity.UsageHistoryRecord) error
	PrintStatistics(stats *entity.UsageStatistics) error
}
