//go:generate mockgen -destination=./mocks/fsutil.go . Extractor

package fsutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/glorpus-work/modpick/internal/logger"
	pkgerrors "github.com/glorpus-work/modpick/pkg/errors"
)

// Extractor unpacks an archive file on disk into a directory.
type Extractor interface {
	ExtractAll(ctx context.Context, archivePath, destDir string) error
}

// LocalFS is the filesystem capability backed by the local disk.
type LocalFS struct {
	extractor Extractor
	scratch   string
}

// NewLocalFS returns a LocalFS that unpacks archives with extractor. Scratch
// copies of downloaded archives go to os.TempDir.
func NewLocalFS(extractor Extractor) *LocalFS {
	return &LocalFS{extractor: extractor}
}

// WithScratchDir sets the directory for scratch archive copies.
func (l *LocalFS) WithScratchDir(dir string) *LocalFS {
	l.scratch = dir
	return l
}

// WriteFile creates or replaces path with data.
func (l *LocalFS) WriteFile(_ context.Context, path string, data []byte) error {
	if err := WriteFileAtomic(path, data, FileModeDefault); err != nil {
		return pkgerrors.Wrapf(pkgerrors.ErrWrite, "%v", err)
	}
	return nil
}

// DeleteFile removes path. A missing file is fine.
func (l *LocalFS) DeleteFile(_ context.Context, path string) error {
	if err := RemoveIfExists(path); err != nil {
		return pkgerrors.Wrapf(pkgerrors.ErrWrite, "%v", err)
	}
	return nil
}

// FileExists reports whether path exists.
func (l *LocalFS) FileExists(_ context.Context, path string) (bool, error) {
	return Exists(path)
}

// ExtractArchive writes data to a scratch file that keeps the extension of
// name, extracts it into destDir and removes the scratch file afterwards,
// whether or not extraction succeeded.
func (l *LocalFS) ExtractArchive(ctx context.Context, name string, data []byte, destDir string) error {
	if l.extractor == nil {
		return fmt.Errorf("%w: no extractor configured", pkgerrors.ErrArchive)
	}
	if err := EnsureDir(destDir); err != nil {
		return pkgerrors.Wrapf(pkgerrors.ErrWrite, "failed to create %s: %v", destDir, err)
	}

	scratchDir := l.scratch
	if scratchDir != "" {
		if err := os.MkdirAll(scratchDir, DirModePrivate); err != nil {
			return pkgerrors.Wrapf(pkgerrors.ErrWrite, "failed to create scratch directory: %v", err)
		}
	}

	tmp, err := os.CreateTemp(scratchDir, "modpick-*-"+scratchSuffix(name))
	if err != nil {
		return pkgerrors.Wrapf(pkgerrors.ErrWrite, "failed to create scratch file: %v", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if err := os.Remove(tmpPath); err != nil && !os.IsNotExist(err) {
			logger.Warn("Failed to remove scratch archive", logger.Fields{"path": tmpPath, "error": err})
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return pkgerrors.Wrapf(pkgerrors.ErrWrite, "failed to write scratch file: %v", err)
	}
	if err := tmp.Close(); err != nil {
		return pkgerrors.Wrapf(pkgerrors.ErrWrite, "failed to close scratch file: %v", err)
	}

	logger.Debug("Extracting archive", logger.Fields{"archive": name, "dest": destDir})
	if err := l.extractor.ExtractAll(ctx, tmpPath, destDir); err != nil {
		return fmt.Errorf("%w: %s: %w", pkgerrors.ErrArchive, name, err)
	}
	return nil
}

// scratchSuffix keeps the archive name usable in a temp file pattern.
// Archive detection relies on the extension, so it must survive.
func scratchSuffix(name string) string {
	base := filepath.Base(name)
	base = strings.ReplaceAll(base, "*", "_")
	if base == "." || base == string(filepath.Separator) || base == "" {
		return "archive"
	}
	return base
}
