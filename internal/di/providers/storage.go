package providers

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/samber/do/v2"

	"github.com/lifocus/lifocus-server/internal/archive"
	"github.com/lifocus/lifocus-server/internal/config"
	"github.com/lifocus/lifocus-server/internal/logger"
	"github.com/lifocus/lifocus-server/internal/mirror"
)

// ScratchDir is the parent of per-request import and export directories.
type ScratchDir string

// ProvideScratchDir creates the scratch parent under the metadata path and
// clears anything left behind by a previous run.
func ProvideScratchDir(i do.Injector) (ScratchDir, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	dir := filepath.Join(cfg.Metadata.BasePath, "tmp")
	if err := os.RemoveAll(dir); err != nil {
		log.Warn("Failed to clear scratch directory", "path", dir, "error", err)
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("scratch dir: %w", err)
	}

	return ScratchDir(dir), nil
}

// ProvideMirror provides the on-disk note mirror. It returns nil when the
// mirror is disabled.
func ProvideMirror(i do.Injector) (*mirror.Mirror, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if !cfg.Mirror.Enabled {
		log.Info("Note mirror disabled by configuration")
		return nil, nil
	}

	if err := os.MkdirAll(cfg.Mirror.Root, 0o755); err != nil {
		return nil, fmt.Errorf("mirror root: %w", err)
	}

	log.Info("Note mirror enabled", "root", cfg.Mirror.Root)

	return mirror.New(cfg.Mirror.Root, log.Logger), nil
}

// ProvideExtractor provides the bounded zip extractor used by imports.
func ProvideExtractor(i do.Injector) (*archive.Extractor, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	limits := archive.DefaultLimits()
	limits.MaxTotalBytes = cfg.Import.MaxArchiveBytes

	return archive.NewExtractor(limits, log.Logger), nil
}
