// Package shell provides a line-oriented terminal front end for the inventory.
package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	perrors "github.com/abgdnv/inventory/internal/inventory/errors"
	"github.com/abgdnv/inventory/internal/inventory/service"
	"github.com/abgdnv/inventory/internal/platform/contextkeys"
)

const title = "Inventory Store"

const helpText = `Commands:
  add     (save, a)      add a product
  list    (show, ls, l)  show all products
  delete  (del, d)       delete a product by its ID
  help    (h, ?)         show this help
  quit    (q, exit)      leave the program
`

// Shell reads commands from in, runs them against the inventory and writes results to out.
type Shell struct {
	service service.InventoryService
	in      io.Reader
	out     io.Writer
	logger  *slog.Logger
	newID   func() string

	lines <-chan string
	done  chan struct{}
}

// NewShell creates a Shell bound to the given input and output.
func NewShell(svc service.InventoryService, in io.Reader, out io.Writer, logger *slog.Logger) *Shell {
	return &Shell{
		service: svc,
		in:      in,
		out:     out,
		logger:  logger.With("component", "shell"),
		newID:   uuid.NewString,
	}
}

// Run executes commands until quit, end of input, or ctx cancellation.
// It returns ctx.Err() when cancelled and nil otherwise.
func (s *Shell) Run(ctx context.Context) error {
	s.done = make(chan struct{})
	defer close(s.done)
	s.lines = s.readLines(s.done)

	s.printf("%s (%d products)\n", title, len(s.service.List(ctx)))
	s.printf("%s", helpText)

	for {
		s.printf("> ")
		line, ok := s.next(ctx)
		if !ok {
			s.printf("\n")
			return ctx.Err()
		}
		cmd := strings.ToLower(strings.TrimSpace(line))
		if cmd == "" {
			continue
		}

		cmdCtx := contextkeys.WithCommandID(ctx, s.newID())
		s.logger.DebugContext(cmdCtx, "Received command", "command", cmd)
		switch cmd {
		case "add", "save", "a":
			s.add(cmdCtx)
		case "list", "show", "ls", "l":
			s.list(cmdCtx)
		case "delete", "del", "d":
			s.delete(cmdCtx)
		case "help", "h", "?":
			s.printf("%s", helpText)
		case "quit", "q", "exit":
			s.logger.InfoContext(cmdCtx, "Quit requested")
			return nil
		default:
			s.printf("Unknown command %q. Type 'help' for the list of commands.\n", cmd)
		}
	}
}

func (s *Shell) add(ctx context.Context) {
	productType, ok := s.prompt(ctx, "Product Type")
	if !ok {
		return
	}
	quantity, ok := s.prompt(ctx, "Quantity")
	if !ok {
		return
	}
	price, ok := s.prompt(ctx, "Price per unit")
	if !ok {
		return
	}

	created, err := s.service.Add(ctx, productType, quantity, price)
	switch {
	case err == nil:
		s.printf("Product saved successfully\n")
	case errors.Is(err, perrors.ErrEmptyField):
		s.printf("Empty product type: Product type is empty\n")
	case errors.Is(err, perrors.ErrInvalidQuantity):
		s.printf("Invalid quantity: Quantity cannot be zero\n")
	case errors.Is(err, perrors.ErrInvalidPrice):
		s.printf("Invalid price: Price per unit must be greater than zero\n")
	case errors.Is(err, perrors.ErrPersist) && created != nil:
		s.printf("Save Error: Error saving product: %v\n", err)
		s.printf("The product was added to this session but is not on disk.\n")
	default:
		s.logger.ErrorContext(ctx, "Unexpected error adding product", "error", err)
		s.printf("Error: %v\n", err)
	}
}

func (s *Shell) list(ctx context.Context) {
	entries := s.service.List(ctx)
	if len(entries) == 0 {
		s.printf("No products found\n")
		return
	}
	s.printf("All Products\n\n")
	for _, e := range entries {
		p := e.Product
		s.printf("Product ID: %d.\nItem: %s\nQuantity: %d\nPrice: %s\nSales tax: %s\nTotal price: %s\n\n",
			e.Position, p.ProductType, p.Quantity, money(p.PricePerUnit), money(p.SalesTax), money(p.TotalPrice))
	}
}

func (s *Shell) delete(ctx context.Context) {
	id, ok := s.prompt(ctx, "Enter Product Id to delete")
	if !ok {
		return
	}

	err := s.service.Delete(ctx, id)
	switch {
	case err == nil:
		// ids the inventory ignores get no confirmation
		if _, ok := service.ParsePosition(id); ok {
			s.printf("Product deleted successfully\n")
		}
	case errors.Is(err, perrors.ErrEmptyField):
		s.printf("Empty ID: Id cannot be empty\n")
	case errors.Is(err, perrors.ErrOutOfRange):
		s.printf("Invalid ID: Invalid product ID\n")
	case errors.Is(err, perrors.ErrPersist):
		s.printf("Delete Error: Error deleting product: %v\n", err)
		s.printf("The product was removed from this session but is still on disk.\n")
	default:
		s.logger.ErrorContext(ctx, "Unexpected error deleting product", "error", err)
		s.printf("Error: %v\n", err)
	}
}

// prompt writes label and returns the next input line with its line ending removed.
func (s *Shell) prompt(ctx context.Context, label string) (string, bool) {
	s.printf("%s: ", label)
	line, ok := s.next(ctx)
	if !ok {
		s.printf("\n")
	}
	return line, ok
}

// next blocks until a line arrives, input ends, or ctx is cancelled.
func (s *Shell) next(ctx context.Context) (string, bool) {
	select {
	case <-ctx.Done():
		return "", false
	case line, ok := <-s.lines:
		return line, ok
	}
}

// readLines feeds input lines to a channel so that Run can stop on cancellation while a read is pending.
func (s *Shell) readLines(done <-chan struct{}) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(s.in)
		for scanner.Scan() {
			select {
			case lines <- strings.TrimRight(scanner.Text(), "\r"):
			case <-done:
				return
			}
		}
		if err := scanner.Err(); err != nil {
			s.logger.Error("Error reading input", "error", err)
		}
	}()
	return lines
}

func (s *Shell) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(s.out, format, args...)
}

// money renders a stored float with two decimals. Non-finite values are printed unrounded.
func money(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return decimal.NewFromFloat(v).StringFixed(2)
}
