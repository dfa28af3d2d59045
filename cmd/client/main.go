package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/lmittmann/tint"

	"github.com/iudanet/deltasync/internal/client/api"
	"github.com/iudanet/deltasync/internal/client/auth"
	"github.com/iudanet/deltasync/internal/client/cli"
	"github.com/iudanet/deltasync/internal/client/data"
	"github.com/iudanet/deltasync/internal/client/iocli"
	"github.com/iudanet/deltasync/internal/client/netmon"
	"github.com/iudanet/deltasync/internal/client/storage/boltdb"
	syncer "github.com/iudanet/deltasync/internal/client/sync"
	"github.com/iudanet/deltasync/internal/models"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	serverURL := flag.String("server", "http://localhost:8080", "Server URL")
	dbPath := flag.String("db", "deltasync-client.db", "Path to local database")
	policyName := flag.String("policy", "default", "Conflict policy: default, local-first, remote-first, messaging")
	entities := flag.String("entities", "task", "Comma-separated entity types to pull")
	verbose := flag.Bool("v", false, "Verbose logging")

	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	args := flag.Args()
	if len(args) == 0 {
		cli.PrintUsage()
		os.Exit(1)
	}
	command := args[0]

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.TimeOnly,
	}))

	// watch работает до Ctrl+C, остальные команды завершаются сами
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := boltdb.New(ctx, *dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open database: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}()

	apiClient := api.NewClient(*serverURL)
	monitor := netmon.New(apiClient, 10*time.Second, logger)

	entityTypes := strings.Split(*entities, ",")
	for i := range entityTypes {
		entityTypes[i] = strings.TrimSpace(entityTypes[i])
	}

	orch := syncer.NewOrchestrator(
		apiClient,
		store, store, store, store, store,
		monitor,
		models.PolicyByName(*policyName),
		syncer.Config{EntityTypes: entityTypes},
		logger,
	)

	authService := auth.NewService(apiClient, store, logger)
	dataService := data.NewService(store, store, orch, logger)

	c := cli.New(iocli.NewStdio(), authService, dataService, orch, monitor, store, store)

	if err := c.Run(ctx, command, args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printVersion() {
	fmt.Printf("DeltaSync Client\n")
	fmt.Printf("Version:    %s\n", Version)
	fmt.Printf("Build Date: %s\n", BuildDate)
	fmt.Printf("Git Commit: %s\n", GitCommit)
}
