package fsutil

import (
	"os"
	"path/filepath"
)

const (
	// AppName is the name of the application used in paths
	AppName = "modpick"

	// ConfigFileName is the default config file name inside ConfigDir.
	ConfigFileName = "config.yaml"

	// LogFileName is where the interactive browser writes its log records.
	LogFileName = "modpick.log"
)

// GetConfigDir returns the platform-specific config directory for the application
// On Linux: $XDG_CONFIG_HOME/modpick or ~/.config/modpick
// On macOS: ~/Library/Application Support/modpick
// On Windows: %AppData%\modpick
func GetConfigDir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, AppName), nil
}

// GetConfigPath returns the default config file location.
func GetConfigPath() (string, error) {
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ConfigFileName), nil
}

// GetCacheDir returns the platform-specific cache directory for the application
// On Linux: ~/.cache/modpick/
// On macOS: ~/Library/Caches/modpick/
// On Windows: %LOCALAPPDATA%\modpick\
func GetCacheDir() (string, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cacheDir, AppName), nil
}

// GetLogFilePath returns the browser log file inside cacheDir, creating the
// directory when needed.
func GetLogFilePath(cacheDir string) (string, error) {
	if err := os.MkdirAll(cacheDir, DirModePrivate); err != nil {
		return "", err
	}
	return filepath.Join(cacheDir, LogFileName), nil
}
