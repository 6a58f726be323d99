package fixtures

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"review_proxy/internal/adapters/observability"
	"review_proxy/internal/domain"
)

// Store serves fixture files from a directory, re-reading them on every call.
type Store struct{ dir string }

func New(dir string) *Store { return &Store{dir: dir} }

func (s *Store) Load(ctx context.Context, file string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	// fixture names are flat; reject anything that could leave dir
	if file == "" || file != filepath.Base(file) {
		return nil, fmt.Errorf("%w: invalid fixture name %q", domain.ErrFixture, file)
	}
	b, err := os.ReadFile(filepath.Join(s.dir, file))
	if errors.Is(err, fs.ErrNotExist) {
		observability.ObserveFixture("file", "miss")
		return nil, fmt.Errorf("fixture %s: %w", file, domain.ErrNotFound)
	}
	if err != nil {
		observability.ObserveFixture("file", "error")
		return nil, err
	}
	observability.ObserveFixture("file", "load")
	return b, nil
}
