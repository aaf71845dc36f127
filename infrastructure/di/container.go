package di

import (
	"context"
	"fmt"
	"time"

	"github.com/ca-srg/usagemon/domain"
	"github.com/ca-srg/usagemon/domain/repository"
	"github.com/ca-srg/usagemon/domain/valueobject"
	"github.com/ca-srg/usagemon/infrastructure/config"
	"github.com/ca-srg/usagemon/infrastructure/logging"
	infraRepo "github.com/ca-srg/usagemon/infrastructure/repository"
	"github.com/ca-srg/usagemon/infrastructure/scraper"
	"github.com/ca-srg/usagemon/interface/cli"
	"github.com/ca-srg/usagemon/interface/controller"
	"github.com/ca-srg/usagemon/interface/presenter"
	"github.com/ca-srg/usagemon/usecase/impl"
	usecase "github.com/ca-srg/usagemon/usecase/interface"
)

// Container is the dependency injection container
type Container struct {
	// Configuration
	config     *config.AppConfig
	configRepo repository.ConfigRepository

	// Repositories
	historyRepo repository.HistoryRepository
	metricsRepo repository.MetricsRepository

	// Scraper infrastructure
	pathResolver scraper.PathResolver
	invoker      scraper.ProcessInvoker

	// Use cases
	scraperService usecase.ScraperService
	historyService usecase.HistoryService
	pollingService usecase.PollingService
	eventSink      *impl.CompositeSink

	// Presenters
	consolePresenter presenter.ConsolePresenter
	jsonPresenter    presenter.JSONPresenter

	// Controllers
	cliController    *cli.CLIController
	daemonController *controller.DaemonController

	// Logging
	loggerFactory domain.LoggerFactory
	logger        domain.Logger

	// Options
	debugMode bool
}

// ContainerOption is a function that configures the container
type ContainerOption func(*Container)

// WithDebugMode sets the debug mode
func WithDebugMode(debug bool) ContainerOption {
	return func(c *Container) {
		c.debugMode = debug
	}
}

// NewContainer creates a new DI container
func NewContainer(opts ...ContainerOption) (*Container, error) {
	container := &Container{}

	// Apply options
	for _, opt := range opts {
		opt(container)
	}

	// Load configuration
	if err := container.initConfig(); err != nil {
		return nil, fmt.Errorf("failed to initialize config: %w", err)
	}

	// Initialize logging
	container.initLogging()

	// Initialize repositories
	container.initRepositories()

	// Initialize use cases
	if err := container.initUseCases(); err != nil {
		return nil, fmt.Errorf("failed to initialize use cases: %w", err)
	}

	// Initialize presenters and controllers
	container.initPresenters()
	container.initControllers()

	return container, nil
}

func (c *Container) initConfig() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	// Environment wins over the persisted file; the file fills the gaps
	c.configRepo = infraRepo.NewJSONConfigRepository()
	fileCfg, err := c.configRepo.Load()
	if err == nil && fileCfg != nil {
		cfg.MergeJSONConfig(fileCfg)
	}

	if c.debugMode {
		cfg.Logging.Debug = true
	}

	if err := cfg.Validate(); err != nil {
		return err
	}
	c.config = cfg
	return nil
}

func (c *Container) initLogging() {
	c.loggerFactory = logging.NewLoggerFactory(c.config.Logging)
	c.logger = c.loggerFactory.CreateLogger("app")
}

func (c *Container) initRepositories() {
	historyRepo, err := infraRepo.NewSQLiteHistoryRepository(c.config.History.DatabasePath)
	if err != nil {
		// History is a collaborator, not the core; run without it
		c.logger.Warn(context.Background(), "history database unavailable",
			domain.NewField("error", err.Error()))
	} else {
		c.historyRepo = historyRepo
	}

	if c.config.Prometheus.RemoteWriteURL != "" {
		metricsRepo, err := infraRepo.NewPrometheusMetricsRepository(
			c.config.Prometheus, c.loggerFactory.CreateLogger("metrics"))
		if err != nil {
			c.logger.Warn(context.Background(), "metrics push unavailable",
				domain.NewField("error", err.Error()))
			c.metricsRepo = infraRepo.NewNoopMetricsRepository()
		} else {
			c.metricsRepo = metricsRepo
		}
	} else {
		c.metricsRepo = infraRepo.NewNoopMetricsRepository()
	}
}

func (c *Container) initUseCases() error {
	c.pathResolver = scraper.NewDefaultPathResolver(c.config.Scraper)
	c.invoker = scraper.NewSubprocessInvoker(
		c.pathResolver,
		c.config.Scraper.PythonCommand,
		c.loggerFactory.CreateLogger("invoker"),
	)

	retryPolicy := valueobject.RetryPolicy{
		InitialDelay: time.Duration(c.config.Retry.InitialDelayMs) * time.Millisecond,
		Multiplier:   c.config.Retry.Multiplier,
		MaxAttempts:  c.config.Retry.MaxAttempts,
		MaxDelay:     time.Duration(c.config.Retry.MaxDelayMs) * time.Millisecond,
	}
	if err := retryPolicy.Validate(); err != nil {
		return err
	}

	c.scraperService = impl.NewScraperServiceImpl(
		c.invoker,
		time.Duration(c.config.Scraper.TimeoutSeconds)*time.Second,
		retryPolicy,
		c.loggerFactory.CreateLogger("scraper"),
	)

	if c.historyRepo != nil {
		c.historyService = impl.NewHistoryServiceImpl(c.historyRepo, c.config.History.RetentionDays)
	}

	c.eventSink = impl.NewCompositeSink()
	sinkLogger := c.loggerFactory.CreateLogger("events")
	c.eventSink.Add(impl.NewLoggingSink(sinkLogger))
	if c.historyService != nil {
		c.eventSink.Add(impl.NewHistorySink(c.historyService, sinkLogger))
	}
	c.eventSink.Add(impl.NewMetricsSink(c.metricsRepo, sinkLogger))
	c.eventSink.Add(impl.NewAlertSink(
		c.config.Notification.WarningThreshold,
		c.config.Notification.CriticalThreshold,
		c.eventSink,
	))

	c.pollingService = impl.NewPollingServiceImpl(
		c.scraperService,
		c.eventSink,
		c.loggerFactory.CreateLogger("polling"),
	)
	return nil
}

func (c *Container) initPresenters() {
	c.consolePresenter = presenter.NewConsolePresenter()
	c.jsonPresenter = presenter.NewJSONPresenter()
}

func (c *Container) initControllers() {
	c.cliController = cli.NewCLIController(
		c.scraperService,
		c.historyService,
		c.consolePresenter,
		c.jsonPresenter,
	)
	c.daemonController = controller.NewDaemonController(
		c.config,
		c.pollingService,
		c.historyService,
		c.loggerFactory.CreateLogger("daemon"),
	)
}

// GetConfig returns the effective configuration
func (c *Container) GetConfig() *config.AppConfig {
	return c.config
}

// GetConfigRepository returns the config repository
func (c *Container) GetConfigRepository() repository.ConfigRepository {
	return c.configRepo
}

// GetScraperService returns the scraper service
func (c *Container) GetScraperService() usecase.ScraperService {
	return c.scraperService
}

// GetPollingService returns the polling service
func (c *Container) GetPollingService() usecase.PollingService {
	return c.pollingService
}

// GetHistoryService returns the history service (nil when the history
// database is unavailable)
func (c *Container) GetHistoryService() usecase.HistoryService {
	return c.historyService
}

// GetEventSink returns the composite event sink
func (c *Container) GetEventSink() usecase.EventSink {
	return c.eventSink
}

// GetCLIController returns the CLI controller
func (c *Container) GetCLIController() *cli.CLIController {
	return c.cliController
}

// GetDaemonController returns the daemon controller
func (c *Container) GetDaemonController() *controller.DaemonController {
	return c.daemonController
}

// CreateLogger creates a component logger
func (c *Container) CreateLogger(component string) domain.Logger {
	return c.loggerFactory.CreateLogger(component)
}

// Close releases container-owned resources
func (c *Container) Close() {
	if c.historyRepo != nil {
		_ = c.historyRepo.Close()
	}
	if shutdowner, ok := c.logger.(interface{ Shutdown() error }); ok {
		_ = shutdowner.Shutdown()
	}
}
