package archive

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/lifocus/lifocus-server/internal/id"
)

// Scratch is a per-request temporary directory.
type Scratch struct {
	Dir string
}

// NewScratch creates a fresh directory under parent, or under the system
// temp directory when parent is empty. Callers defer Close.
func NewScratch(parent, kind string) (*Scratch, error) {
	if parent == "" {
		parent = os.TempDir()
	}
	dir := filepath.Join(parent, id.Scratch(kind))
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create scratch dir: %w", err)
	}
	return &Scratch{Dir: dir}, nil
}

// Path joins elem onto the scratch directory.
func (s *Scratch) Path(elem ...string) string {
	return filepath.Join(append([]string{s.Dir}, elem...)...)
}

// Close removes the directory and everything in it.
func (s *Scratch) Close() error {
	return os.RemoveAll(s.Dir)
}
