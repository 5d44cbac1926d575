// Package cache inspects and cleans the modpick cache directory: archives
// staged for extraction and the browser log file.
package cache

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	pkgerrors "github.com/glorpus-work/modpick/pkg/errors"
	"github.com/glorpus-work/modpick/pkg/fsutil"
)

// ScratchDirName is the subdirectory holding archives staged for extraction.
const ScratchDirName = "scratch"

// ErrCacheDirectory is returned when the cache directory is unset.
var ErrCacheDirectory = errors.New("invalid cache directory")

// CleanOptions specifies what to clean from the cache.
// With neither flag set everything is cleaned.
type CleanOptions struct {
	Scratch bool
	Logs    bool
}

// CleanResult contains information about what was cleaned.
type CleanResult struct {
	TotalFreed   int64
	ScratchFreed int64
	LogsFreed    int64
}

// Info represents cache information.
type Info struct {
	Directory    string
	TotalSize    int64
	ScratchSize  int64
	ScratchFiles int
	LogSize      int64
}

// Manager operates on one cache directory.
type Manager struct {
	directory string
}

// NewManager creates a new cache manager.
func NewManager(directory string) *Manager {
	return &Manager{directory: directory}
}

// NewDefaultManager creates a cache manager for the platform cache directory.
func NewDefaultManager() (*Manager, error) {
	cacheDir, err := fsutil.GetCacheDir()
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to get user cache directory")
	}
	return NewManager(cacheDir), nil
}

// GetDirectory returns the cache directory path.
func (cm *Manager) GetDirectory() string {
	return cm.directory
}

// ScratchDir returns where archives are staged.
func (cm *Manager) ScratchDir() string {
	return filepath.Join(cm.directory, ScratchDirName)
}

// LogFile returns the browser log file path.
func (cm *Manager) LogFile() string {
	return filepath.Join(cm.directory, fsutil.LogFileName)
}

// Clean removes cached files according to options.
func (cm *Manager) Clean(options CleanOptions) (*CleanResult, error) {
	if cm.directory == "" {
		return nil, ErrCacheDirectory
	}
	if !options.Scratch && !options.Logs {
		options.Scratch = true
		options.Logs = true
	}

	result := &CleanResult{}
	if options.Scratch {
		size, err := cleanDirectory(cm.ScratchDir())
		if err != nil {
			return nil, pkgerrors.Wrapf(err, "failed to clean scratch directory")
		}
		result.ScratchFreed = size
		result.TotalFreed += size
	}
	if options.Logs {
		size, err := removeFile(cm.LogFile())
		if err != nil {
			return nil, pkgerrors.Wrapf(err, "failed to remove log file")
		}
		result.LogsFreed = size
		result.TotalFreed += size
	}
	return result, nil
}

// GetInfo returns information about the cache.
func (cm *Manager) GetInfo() (*Info, error) {
	if cm.directory == "" {
		return nil, ErrCacheDirectory
	}
	info := &Info{Directory: cm.directory}

	size, count, err := getDirSizeAndFiles(cm.ScratchDir())
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to get scratch directory info")
	}
	info.ScratchSize = size
	info.ScratchFiles = count

	stat, err := os.Stat(cm.LogFile())
	switch {
	case err == nil:
		info.LogSize = stat.Size()
	case !errors.Is(err, fs.ErrNotExist):
		return nil, pkgerrors.Wrapf(err, "failed to get log file info")
	}

	info.TotalSize = info.ScratchSize + info.LogSize
	return info, nil
}

// cleanDirectory empties dir and returns bytes freed. The directory itself is
// recreated so a running install can keep staging into it.
func cleanDirectory(dir string) (int64, error) {
	size, _, err := getDirSizeAndFiles(dir)
	if err != nil {
		return 0, err
	}
	if err := os.RemoveAll(dir); err != nil {
		return 0, pkgerrors.Wrapf(err, "failed to remove directory %s", dir)
	}
	if err := os.MkdirAll(dir, fsutil.DirModePrivate); err != nil {
		return size, pkgerrors.Wrapf(err, "failed to recreate directory %s", dir)
	}
	return size, nil
}

func removeFile(path string) (int64, error) {
	stat, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	if err := fsutil.RemoveIfExists(path); err != nil {
		return 0, err
	}
	return stat.Size(), nil
}

// getDirSizeAndFiles calculates directory size and file count.
// A missing directory counts as empty.
func getDirSizeAndFiles(dir string) (size int64, count int, err error) {
	if _, err = os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
		return 0, 0, nil
	}

	err = filepath.WalkDir(dir, func(_ string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		size += info.Size()
		count++
		return nil
	})
	if err != nil {
		err = pkgerrors.Wrapf(err, "error walking directory %s", dir)
	}
	return size, count, err
}
