package presenter

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/ca-srg/usagemon/domain/entity"
)

// ConsolePresenterImpl implements ConsolePresenter for terminal output
type ConsolePresenterImpl struct {
	writer io.Writer
}

// NewConsolePresenter creates a new console presenter
func NewConsolePresenter() *ConsolePresenterImpl {
	return &ConsolePresenterImpl{
		writer: os.Stdout,
	}
}

// PrintVersion prints version information
func (p *ConsolePresenterImpl) PrintVersion() {
	_, _ = fmt.Fprintln(p.writer, "usagemon version 1.0.0")
}

// PrintError prints an error message
func (p *ConsolePresenterImpl) PrintError(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
}

// PrintSessionStatus prints whether a valid scraper session exists
func (p *ConsolePresenterImpl) PrintSessionStatus(valid bool) error {
	if valid {
		_, _ = fmt.Fprintln(p.writer, "Session: valid")
	} else {
		_, _ = fmt.Fprintln(p.writer, "Session: not available (run with --login)")
	}
	return nil
}

// PrintUsage prints one poll result
func (p *ConsolePresenterImpl) PrintUsage(data *entity.UsageData) error {
	_, _ = fmt.Fprintf(p.writer, "Usage: %.1f%%\n", data.UsagePercent)
	if data.TokensLimit > 0 {
		_, _ = fmt.Fprintf(p.writer, "Tokens: %d / %d (%d remaining)\n",
			data.TokensUsed, data.TokensLimit, data.TokensRemaining)
	}
	if data.ResetTime != nil {
		_, _ = fmt.Fprintf(p.writer, "Resets: %s\n", *data.ResetTime)
	}
	for _, component := range data.Components {
		label := component.Label
		if label == "" {
			label = component.ComponentID
		}
		_, _ = fmt.Fprintf(p.writer, "  %s: %.1f%%\n", label, component.Percent)
	}
	return nil
}

// PrintHistory prints persisted poll results as a table
func (p *ConsolePresenterImpl) PrintHistory(records []entity.UsageHistoryRecord) error {
	if len(records) == 0 {
		_, _ = fmt.Fprintln(p.writer, "No history recorded")
		return nil
	}

	w := tabwriter.NewWriter(p.writer, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "TIME\tUSAGE\tUSED\tLIMIT\tREMAINING")
	for _, rec := range records {
		_, _ = fmt.Fprintf(w, "%s\t%.1f%%\t%d\t%d\t%d\n",
			time.Unix(rec.Timestamp, 0).Format("2006-01-02 15:04"),
			rec.UsagePercent, rec.TokensUsed, rec.TokensLimit, rec.TokensRemaining)
	}
	return w.Flush()
}

// PrintStatistics prints summary statistics
func (p *ConsolePresenterImpl) PrintStatistics(stats *entity.UsageStatistics) error {
	_, _ = fmt.Fprintf(p.writer, "Records: %d\n", stats.TotalRecords)
	if stats.TotalRecords > 0 {
		_, _ = fmt.Fprintf(p.writer, "Average: %.1f%%\n", stats.AverageUsage)
		_, _ = fmt.Fprintf(p.writer, "Peak:    %.1f%%\n", stats.PeakUsage)
		_, _ = fmt.Fprintf(p.writer, "Min:     %.1f%%\n", stats.MinUsage)
	}
	return nil
}
