package controller

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/ca-srg/usagemon/domain"
	"github.com/ca-srg/usagemon/infrastructure/config"
	usecase "github.com/ca-srg/usagemon/usecase/interface"
)

// historyCleanupInterval is how often old history records are purged
const historyCleanupInterval = 24 * time.Hour

// DaemonController manages the daemon lifecycle: it starts the polling
// service, purges old history periodically, and shuts everything down on
// SIGINT/SIGTERM.
type DaemonController struct {
	config         *config.AppConfig
	pollingService usecase.PollingService
	historyService usecase.HistoryService

	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	logger  domain.Logger
	pidFile string
}

// NewDaemonController creates a new daemon controller
func NewDaemonController(
	cfg *config.AppConfig,
	pollingService usecase.PollingService,
	historyService usecase.HistoryService,
	logger domain.Logger,
) *DaemonController {
	return &DaemonController{
		config:         cfg,
		pollingService: pollingService,
		historyService: historyService,
		logger:         logger,
	}
}

// Run starts the daemon and blocks until it is stopped
func (d *DaemonController) Run() error {
	if err := d.start(); err != nil {
		return err
	}

	// Block until a shutdown signal arrives
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	d.Stop()
	return nil
}

func (d *DaemonController) start() error {
	d.ctx, d.cancel = context.WithCancel(context.Background())
	d.logger.Info(d.ctx, "Starting usagemon daemon...")

	if err := d.writePIDFile(); err != nil {
		return fmt.Errorf("failed to write PID file: %w", err)
	}

	interval := time.Duration(d.config.Polling.IntervalSeconds) * time.Second
	if err := d.pollingService.Start(interval); err != nil {
		_ = d.removePIDFile()
		return fmt.Errorf("failed to start polling: %w", err)
	}

	d.wg.Add(1)
	go d.runHistoryCleanup()

	d.logger.Info(d.ctx, "Daemon started successfully",
		domain.NewField("intervalSeconds", d.config.Polling.IntervalSeconds))
	return nil
}

// Stop stops the daemon gracefully
func (d *DaemonController) Stop() {
	d.logger.Info(d.ctx, "Stopping usagemon daemon...")

	if err := d.pollingService.Stop(); err != nil {
		d.logger.Warn(d.ctx, "Failed to stop polling", domain.NewField("error", err.Error()))
	}

	if d.cancel != nil {
		d.cancel()
	}
	d.wg.Wait()

	if err := d.removePIDFile(); err != nil {
		d.logger.Error(d.ctx, "Failed to remove PID file", domain.NewField("error", err.Error()))
	}

	d.logger.Info(d.ctx, "Daemon stopped successfully")
}

// runHistoryCleanup purges history past the retention window, once at
// startup and then daily
func (d *DaemonController) runHistoryCleanup() {
	defer d.wg.Done()

	d.cleanupHistory()

	ticker := time.NewTicker(historyCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-d.ctx.Done():
			return
		case <-ticker.C:
			d.cleanupHistory()
		}
	}
}

func (d *DaemonController) cleanupHistory() {
	if d.historyService == nil {
		return
	}
	deleted, err := d.historyService.RunCleanup()
	if err != nil {
		d.logger.Warn(d.ctx, "History cleanup failed", domain.NewField("error", err.Error()))
		return
	}
	if deleted > 0 {
		d.logger.Info(d.ctx, "History cleanup completed", domain.NewField("deleted", deleted))
	}
}

func (d *DaemonController) writePIDFile() error {
	pidFile := d.config.Daemon.PidFile
	if pidFile == "" {
		pidFile = "/tmp/usagemon.pid"
	}
	d.pidFile = pidFile

	pid := os.Getpid()
	return os.WriteFile(pidFile, []byte(strconv.Itoa(pid)), 0o644)
}

func (d *DaemonController) removePIDFile() error {
	if d.pidFile == "" {
		return nil
	}
	if err := os.Remove(d.pidFile); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
