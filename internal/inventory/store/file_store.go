package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	perrors "github.com/abgdnv/inventory/internal/inventory/errors"
)

const filePerm = 0o644

// FileStore implements ProductStore on top of a single JSON file.
// Every Save rewrites the whole file.
type FileStore struct {
	path   string
	logger *slog.Logger
}

// NewFileStore creates a FileStore backed by the file at path.
func NewFileStore(path string, logger *slog.Logger) *FileStore {
	return &FileStore{
		path:   path,
		logger: logger.With("component", "file_store", "path", path),
	}
}

// Path returns the location of the backing file.
func (s *FileStore) Path() string {
	return s.path
}

// Load reads the collection from disk. A missing, unreadable or malformed file yields an empty collection.
func (s *FileStore) Load(ctx context.Context) []Product {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.logger.InfoContext(ctx, "Data file does not exist, starting with an empty inventory")
		} else {
			s.logger.WarnContext(ctx, "Unable to read data file, starting with an empty inventory", "error", err)
		}
		return []Product{}
	}

	var products []Product
	if err := json.Unmarshal(data, &products); err != nil {
		s.logger.WarnContext(ctx, "Data file is not a valid product list, starting with an empty inventory", "error", err)
		return []Product{}
	}
	if products == nil {
		// a literal `null` document
		return []Product{}
	}
	s.logger.DebugContext(ctx, "Products loaded", "count", len(products))
	return products
}

// Save writes the collection to a temporary file next to the target and renames it into place,
// so readers never observe a half-written document.
func (s *FileStore) Save(ctx context.Context, products []Product) error {
	if products == nil {
		products = []Product{}
	}
	data, err := json.Marshal(products)
	if err != nil {
		return fmt.Errorf("%w: encode: %w", perrors.ErrPersist, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: %w", perrors.ErrPersist, err)
	}
	tmpName := tmp.Name()
	// no-op once the rename succeeded
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%w: %w", perrors.ErrPersist, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%w: %w", perrors.ErrPersist, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: %w", perrors.ErrPersist, err)
	}
	if err := os.Chmod(tmpName, filePerm); err != nil {
		return fmt.Errorf("%w: %w", perrors.ErrPersist, err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("%w: %w", perrors.ErrPersist, err)
	}

	s.logger.DebugContext(ctx, "Products saved", "count", len(products), "bytes", len(data))
	return nil
}
