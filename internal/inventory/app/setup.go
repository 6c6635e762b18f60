// Package app contains the application setup for the inventory tool.
package app

import (
	"context"
	"io"
	"log/slog"

	"github.com/abgdnv/inventory/internal/config"
	"github.com/abgdnv/inventory/internal/inventory/service"
	"github.com/abgdnv/inventory/internal/inventory/shell"
	"github.com/abgdnv/inventory/internal/inventory/store"
)

type Dependencies struct {
	Inventory *service.Inventory
	Store     *store.FileStore
	Logger    *slog.Logger
}

// SetupDependencies opens the data file named in cfg and loads the inventory from it.
func SetupDependencies(ctx context.Context, cfg *config.Config, logger *slog.Logger) *Dependencies {
	fileStore := store.NewFileStore(cfg.Storage.Path, logger)
	return &Dependencies{
		Inventory: service.NewInventory(ctx, fileStore, logger),
		Store:     fileStore,
		Logger:    logger,
	}
}

// SetupShell creates the terminal front end on top of the inventory.
func SetupShell(deps *Dependencies, in io.Reader, out io.Writer) *shell.Shell {
	return shell.NewShell(deps.Inventory, in, out, deps.Logger)
}
