package app

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/abgdnv/inventory/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(path string) *config.Config {
	var cfg config.Config
	cfg.Storage.Path = path
	cfg.Log.Level = "debug"
	return &cfg
}

func TestSetup_LoadsExistingFile(t *testing.T) {
	// given
	path := filepath.Join(t.TempDir(), "products.json")
	require.NoError(t, os.WriteFile(path,
		[]byte(`[{"product_type":"Widget","quantity":5,"price_per_unit":10,"sales_tax":1,"total_price":51}]`), 0o644))
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	// when
	deps := SetupDependencies(context.Background(), testConfig(path), logger)
	// then
	assert.Equal(t, path, deps.Store.Path())
	assert.Equal(t, 1, deps.Inventory.Len())
}

func TestSetupShell_EndToEnd(t *testing.T) {
	// given
	path := filepath.Join(t.TempDir(), "products.json")
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	deps := SetupDependencies(context.Background(), testConfig(path), logger)
	var out bytes.Buffer
	sh := SetupShell(deps, strings.NewReader("add\nWidget\n5\n10.0\nlist\ndelete\n1\nlist\nq\n"), &out)
	// when
	require.NoError(t, sh.Run(context.Background()))
	// then
	assert.Contains(t, out.String(), "Total price: 51.00")
	assert.Contains(t, out.String(), "No products found")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(data))
}
