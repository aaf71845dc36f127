package impl

import (
	"github.com/ca-srg/usagemon/domain/entity"
	"github.com/ca-srg/usagemon/domain/repository"
	usecase "github.com/ca-srg/usagemon/usecase/interface"
)

// HistoryServiceImpl implements the HistoryService interface
type HistoryServiceImpl struct {
	historyRepo   repository.HistoryRepository
	retentionDays int
}

// NewHistoryServiceImpl creates a new history service implementation
func NewHistoryServiceImpl(historyRepo repository.HistoryRepository, retentionDays int) usecase.HistoryService {
	return &HistoryServiceImpl{
		historyRepo:   historyRepo,
		retentionDays: retentionDays,
	}
}

// RecordUsage implements HistoryService
func (s *HistoryServiceImpl) RecordUsage(data *entity.UsageData) error {
	return s.historyRepo.RecordUsage(data)
}

// GetHistory implements HistoryService
func (s *HistoryServiceImpl) GetHistory(hours int) ([]entity.UsageHistoryRecord, error) {
	return s.historyRepo.GetHistory(hours)
}

// GetStatistics implements HistoryService
func (s *HistoryServiceImpl) GetStatistics(hours int) (*entity.UsageStatistics, error) {
	return s.historyRepo.GetStatistics(hours)
}

// RunCleanup implements HistoryService
func (s *HistoryServiceImpl) RunCleanup() (int64, error) {
	return s.historyRepo.Cleanup(s.retentionDays)
}
