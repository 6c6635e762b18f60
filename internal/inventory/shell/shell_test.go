package shell

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"path/filepath"
	"strings"
	"testing"
	"time"

	perrors "github.com/abgdnv/inventory/internal/inventory/errors"
	"github.com/abgdnv/inventory/internal/inventory/service"
	"github.com/abgdnv/inventory/internal/inventory/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockInventoryService is a mock implementation of the InventoryService interface
type mockInventoryService struct {
	product   *service.ProductDto
	entries   []service.Entry
	addErr    error
	deleteErr error
	deleted   []string
}

func (m *mockInventoryService) Add(_ context.Context, _, _, _ string) (*service.ProductDto, error) {
	return m.product, m.addErr
}

func (m *mockInventoryService) List(_ context.Context) []service.Entry {
	return m.entries
}

func (m *mockInventoryService) Delete(_ context.Context, position string) error {
	m.deleted = append(m.deleted, position)
	return m.deleteErr
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// runScript feeds script to a new shell and returns everything it printed.
func runScript(t *testing.T, svc service.InventoryService, script string) string {
	t.Helper()
	var out bytes.Buffer
	sh := NewShell(svc, strings.NewReader(script), &out, discardLogger())
	sh.newID = func() string { return "test-command" }
	require.NoError(t, sh.Run(context.Background()))
	return out.String()
}

func newFileInventory(t *testing.T) (*service.Inventory, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "products.json")
	return service.NewInventory(context.Background(), store.NewFileStore(path, discardLogger()), discardLogger()), path
}

func Test_Shell_Add(t *testing.T) {
	testCases := []struct {
		name     string
		script   string
		expected string
		count    int
	}{
		{
			name:     "Success - product saved",
			script:   "add\nWidget\n5\n10.0\nquit\n",
			expected: "Product saved successfully",
			count:    1,
		},
		{
			name:     "Error - empty product type",
			script:   "add\n\n5\n10.0\nquit\n",
			expected: "Product type is empty",
		},
		{
			name:     "Error - zero quantity",
			script:   "a\nWidget\n0\n10.0\nq\n",
			expected: "Quantity cannot be zero",
		},
		{
			name:     "Error - unparsable quantity",
			script:   "save\nWidget\nmany\n10.0\nexit\n",
			expected: "Quantity cannot be zero",
		},
		{
			name:     "Error - invalid price",
			script:   "add\nWidget\n5\nfree\nquit\n",
			expected: "Price per unit must be greater than zero",
		},
		{
			name:     "Error - total overflows",
			script:   "add\nBig\n10\n1e308\nlist\nquit\n",
			expected: "Price per unit must be greater than zero",
		},
		{
			name:   "Input ends mid-form",
			script: "add\nWidget\n",
			count:  0,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			inventory, _ := newFileInventory(t)
			// when
			out := runScript(t, inventory, tc.script)
			// then
			assert.Contains(t, out, "Product Type: ")
			if tc.expected != "" {
				assert.Contains(t, out, tc.expected)
			}
			assert.Equal(t, tc.count, inventory.Len())
		})
	}
}

func Test_Shell_Add_PersistFailure(t *testing.T) {
	svc := &mockInventoryService{
		product: &service.ProductDto{ProductType: "Widget"},
		addErr:  fmt.Errorf("failed to save product at position 1: %w: disk full", perrors.ErrPersist),
	}

	out := runScript(t, svc, "add\nWidget\n1\n1\nquit\n")

	assert.Contains(t, out, "Error saving product: failed to save product at position 1")
	assert.Contains(t, out, "added to this session but is not on disk")
	assert.NotContains(t, out, "Product saved successfully")
}

func Test_Shell_List(t *testing.T) {
	testCases := []struct {
		name     string
		entries  []service.Entry
		expected []string
	}{
		{
			name:     "No products",
			entries:  []service.Entry{},
			expected: []string{"No products found"},
		},
		{
			name: "Products with positions",
			entries: []service.Entry{
				{Position: 1, Product: service.ProductDto{ProductType: "Widget", Quantity: 5, PricePerUnit: 10, SalesTax: 1, TotalPrice: 51}},
				{Position: 2, Product: service.ProductDto{ProductType: "Gadget", Quantity: 3, PricePerUnit: 0.1, SalesTax: 0.010000000000000002, TotalPrice: 0.31000000000000005}},
			},
			expected: []string{
				"Product ID: 1.\nItem: Widget\nQuantity: 5\nPrice: 10.00\nSales tax: 1.00\nTotal price: 51.00\n",
				"Product ID: 2.\nItem: Gadget\nQuantity: 3\nPrice: 0.10\nSales tax: 0.01\nTotal price: 0.31\n",
			},
		},
		{
			name: "Non-finite values",
			entries: []service.Entry{
				{Position: 1, Product: service.ProductDto{ProductType: "Big", Quantity: 10, PricePerUnit: math.NaN(), SalesTax: math.Inf(-1), TotalPrice: math.Inf(1)}},
			},
			expected: []string{"Price: NaN\nSales tax: -Inf\nTotal price: +Inf\n"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			out := runScript(t, &mockInventoryService{entries: tc.entries}, "list\nquit\n")

			for _, e := range tc.expected {
				assert.Contains(t, out, e)
			}
		})
	}
}

func Test_Shell_Delete(t *testing.T) {
	testCases := []struct {
		name        string
		deleteErr   error
		input       string
		expected    string
		notExpected string
	}{
		{name: "Success", input: "1", expected: "Product deleted successfully"},
		{name: "Empty id", input: "", deleteErr: perrors.ErrEmptyField, expected: "Id cannot be empty"},
		{name: "Out of range", input: "7", deleteErr: perrors.ErrOutOfRange, expected: "Invalid product ID"},
		{name: "Persist failure", input: "1", deleteErr: perrors.ErrPersist, expected: "Error deleting product"},
		{name: "Leading plus", input: "+1", expected: "Product deleted successfully"},
		{name: "Unparsable id is silent", input: "abc", notExpected: "Product deleted successfully"},
		{name: "Double plus is silent", input: "++1", notExpected: "Product deleted successfully"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			svc := &mockInventoryService{deleteErr: tc.deleteErr}
			// when
			out := runScript(t, svc, "delete\n"+tc.input+"\nquit\n")
			// then
			assert.Contains(t, out, "Enter Product Id to delete: ")
			assert.Equal(t, []string{tc.input}, svc.deleted)
			if tc.expected != "" {
				assert.Contains(t, out, tc.expected)
			}
			if tc.notExpected != "" {
				assert.NotContains(t, out, tc.notExpected)
			}
		})
	}
}

func Test_Shell_Session(t *testing.T) {
	// given
	inventory, path := newFileInventory(t)
	script := strings.Join([]string{
		"add", "A", "1", "1",
		"add", "B", "2", "2",
		"add", "C", "3", "3",
		"delete", "2",
		"list",
		"quit",
	}, "\n") + "\n"
	// when
	out := runScript(t, inventory, script)
	// then
	assert.Contains(t, out, "Product ID: 1.\nItem: A\n")
	assert.Contains(t, out, "Product ID: 2.\nItem: C\n")
	assert.NotContains(t, out, "Item: B")

	persisted := store.NewFileStore(path, discardLogger()).Load(context.Background())
	require.Len(t, persisted, 2)
	assert.Equal(t, "A", persisted[0].ProductType)
	assert.Equal(t, "C", persisted[1].ProductType)
}

func Test_Shell_Misc(t *testing.T) {
	out := runScript(t, &mockInventoryService{}, "\n  \nHELP\nfrobnicate\r\n")

	assert.True(t, strings.HasPrefix(out, "Inventory Store (0 products)\n"))
	assert.Equal(t, 2, strings.Count(out, "Commands:"), "banner and explicit help")
	assert.Contains(t, out, `Unknown command "frobnicate"`)
}

func Test_Shell_StopsOnCancel(t *testing.T) {
	// given
	pr, pw := io.Pipe()
	defer pw.Close()
	var out bytes.Buffer
	sh := NewShell(&mockInventoryService{}, pr, &out, discardLogger())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	// when
	go func() { done <- sh.Run(ctx) }()
	cancel()
	// then
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("shell did not stop after cancellation")
	}
}
