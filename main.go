package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/ca-srg/usagemon/infrastructure/di"
	"github.com/ca-srg/usagemon/interface/presenter"
)

func main() {
	var (
		daemonMode   = flag.Bool("daemon", false, "Run as a background daemon with periodic polling")
		loginMode    = flag.Bool("login", false, "Run the interactive one-time authentication flow")
		checkSession = flag.Bool("check-session", false, "Check whether a valid scraper session exists")
		historyHours = flag.Int("history", 0, "Print persisted poll results for the last N hours")
		statsHours   = flag.Int("stats", 0, "Print usage statistics for the last N hours")
		jsonOutput   = flag.Bool("json", false, "Print results as JSON")
		debugMode    = flag.Bool("debug", false, "Enable debug logging")
		showVersion  = flag.Bool("version", false, "Show version information")
	)
	flag.Parse()

	console := presenter.NewConsolePresenter()
	if *showVersion {
		console.PrintVersion()
		os.Exit(0)
	}

	container, err := di.NewContainer(di.WithDebugMode(*debugMode))
	if err != nil {
		console.PrintError(fmt.Errorf("failed to initialize: %w", err))
		os.Exit(1)
	}
	defer container.Close()

	if err := run(container, *daemonMode, *loginMode, *checkSession, *historyHours, *statsHours, *jsonOutput); err != nil {
		console.PrintError(err)
		os.Exit(1)
	}
}

func run(container *di.Container, daemonMode, loginMode, checkSession bool, historyHours, statsHours int, jsonOutput bool) error {
	ctx := context.Background()
	cliController := container.GetCLIController()
	cliController.SetJSONOutput(jsonOutput)

	switch {
	case daemonMode:
		return container.GetDaemonController().Run()
	case loginMode:
		return cliController.RunLogin(ctx)
	case checkSession:
		return cliController.RunCheckSession(ctx)
	case historyHours > 0:
		return cliController.RunHistory(historyHours)
	case statsHours > 0:
		return cliController.RunStats(statsHours)
	default:
		// No mode flag: perform a single poll and print the result
		return cliController.RunPoll(ctx)
	}
}
