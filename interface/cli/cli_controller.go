package cli

import (
	"context"
	"fmt"

	"github.com/ca-srg/usagemon/interface/presenter"
	usecase "github.com/ca-srg/usagemon/usecase/interface"
)

// CLIController handles command-line interface operations
type CLIController struct {
	scraperService   usecase.ScraperService
	historyService   usecase.HistoryService
	consolePresenter presenter.ConsolePresenter
	jsonPresenter    presenter.JSONPresenter
	jsonOutput       bool
}

// NewCLIController creates a new CLI controller
func NewCLIController(
	scraperService usecase.ScraperService,
	historyService usecase.HistoryService,
	consolePresenter presenter.ConsolePresenter,
	jsonPresenter presenter.JSONPresenter,
) *CLIController {
	return &CLIController{
		scraperService:   scraperService,
		historyService:   historyService,
		consolePresenter: consolePresenter,
		jsonPresenter:    jsonPresenter,
	}
}

// SetJSONOutput switches output to JSON format
func (c *CLIController) SetJSONOutput(enabled bool) {
	c.jsonOutput = enabled
}

// RunPoll performs one poll and prints the result. This is the manual
// refresh path, so transient failures are retried under the configured
// backoff policy.
func (c *CLIController) RunPoll(ctx context.Context) error {
	data, err := c.scraperService.PollOnceWithRetry(ctx)
	if err != nil {
		return err
	}
	if c.jsonOutput {
		return c.jsonPresenter.PrintUsage(data)
	}
	return c.consolePresenter.PrintUsage(data)
}

// RunLogin runs the interactive one-time authentication flow
func (c *CLIController) RunLogin(ctx context.Context) error {
	return c.scraperService.Login(ctx)
}

// RunCheckSession prints whether a valid scraper session exists
func (c *CLIController) RunCheckSession(ctx context.Context) error {
	valid, err := c.scraperService.CheckSession(ctx)
	if err != nil {
		return err
	}
	if c.jsonOutput {
		return c.jsonPresenter.PrintSessionStatus(valid)
	}
	return c.consolePresenter.PrintSessionStatus(valid)
}

// RunHistory prints the persisted poll results of the last N hours
func (c *CLIController) RunHistory(hours int) error {
	if c.historyService == nil {
		return fmt.Errorf("history database is not available")
	}
	records, err := c.historyService.GetHistory(hours)
	if err != nil {
		return err
	}
	if c.jsonOutput {
		return c.jsonPresenter.PrintHistory(records)
	}
	return c.consolePresenter.PrintHistory(records)
}

// RunStats prints summary statistics for the last N hours
func (c *CLIController) RunStats(hours int) error {
	if c.historyService == nil {
		return fmt.Errorf("history database is not available")
	}
	stats, err := c.historyService.GetStatistics(hours)
	if err != nil {
		return err
	}
	if c.jsonOutput {
		return c.jsonPresenter.PrintStatistics(stats)
	}
	return c.consolePresenter.PrintStatistics(stats)
}
