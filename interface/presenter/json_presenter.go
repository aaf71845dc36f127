package presenter

import (
	"encoding/json"
	"io"
	"os"

	"github.com/ca-srg/usagemon/domain/entity"
)

// JSONPresenterImpl implements JSONPresenter for JSON output
type JSONPresenterImpl struct {
	writer  io.Writer
	encoder *json.Encoder
}

// NewJSONPresenter creates a new JSON presenter
func NewJSONPresenter() *JSONPresenterImpl {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")

	return &JSONPresenterImpl{
		writer:  os.Stdout,
		encoder: encoder,
	}
}

// PrintSessionStatus prints session validity as JSON
func (p *JSONPresenterImpl) PrintSessionStatus(valid bool) error {
	return p.encoder.Encode(map[string]bool{"session_valid": valid})
}

// PrintUsage prints one poll result as JSON
func (p *JSONPresenterImpl) PrintUsage(data *entity.UsageData) error {
	return p.encoder.Encode(data)
}

// PrintHistory prints persisted poll results as JSON
func (p *JSONPresenterImpl) PrintHistory(records []entity.UsageHistoryRecord) error {
	return p.encoder.Encode(records)
}

// PrintStatistics prints summary statistics as JSON
func (p *JSONPresenterImpl) PrintStatistics(stats *entity.UsageStatistics) error {
	return p.encoder.Encode(stats)
}
