// Package main runs the terminal inventory tool.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/abgdnv/inventory/internal/config"
	"github.com/abgdnv/inventory/internal/inventory/app"
	"github.com/abgdnv/inventory/internal/platform/bootstrap"
)

func main() {
	flags := pflag.NewFlagSet(os.Args[0], pflag.ExitOnError)
	config.RegisterFlags(flags)
	_ = flags.Parse(os.Args[1:])

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, flags); err != nil {
		log.Printf("application run failed: %v", err)
		os.Exit(1)
	}
}

// run loads the configuration, opens the inventory and drives the shell until it ends or a signal arrives.
func run(ctx context.Context, flags *pflag.FlagSet) error {
	cfg, cfgErr := config.Load(flags)
	if cfgErr != nil {
		return fmt.Errorf("failed to load configuration: %w", cfgErr)
	}

	logOut, closeLog, err := bootstrap.OpenLogOutput(cfg.Log.File)
	if err != nil {
		return err
	}
	defer func() { _ = closeLog() }()
	logger := bootstrap.NewLogger(cfg.Log.Level, logOut)
	slog.SetDefault(logger)
	logger.Debug("Configuration loaded", "config", cfg.String())

	deps := app.SetupDependencies(ctx, cfg, logger)
	logger.Info("Inventory ready", "path", deps.Store.Path(), "products", deps.Inventory.Len())
	sh := app.SetupShell(deps, os.Stdin, os.Stdout)

	g, gCtx := errgroup.WithContext(ctx)

	// Run the shell; leaving it ends the program
	g.Go(func() error {
		if err := sh.Run(gCtx); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("shell failed: %w", err)
		}
		return nil
	})

	waitErr := make(chan error, 1)
	go func() { waitErr <- g.Wait() }()

	if err := awaitShell(ctx, waitErr, cfg.Shutdown.Timeout, logger); err != nil {
		return err
	}
	logger.Info("Inventory closed", "products", deps.Inventory.Len())
	return nil
}

// awaitShell returns the shell's result. Once ctx is cancelled it waits at most timeout
// for an in-flight command to finish and then abandons it.
func awaitShell(ctx context.Context, waitErr <-chan error, timeout time.Duration, logger *slog.Logger) error {
	select {
	case err := <-waitErr:
		return err
	case <-ctx.Done():
	}
	logger.Info("Shutting down...")
	select {
	case err := <-waitErr:
		return err
	case <-time.After(timeout):
		logger.Error("Shell did not stop in time, exiting", "timeout", timeout)
		return fmt.Errorf("shell did not stop within %s", timeout)
	}
}
