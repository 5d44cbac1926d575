// Package config provides configuration management for modpick. It loads
// settings from a YAML file, fills in defaults for anything left out and
// validates the result before the rest of the program sees it.
package config

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/glorpus-work/modpick/pkg/cache"
	"github.com/glorpus-work/modpick/pkg/errors"
	"github.com/glorpus-work/modpick/pkg/fsutil"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	Settings Settings `yaml:"settings"`
}

// Settings represents general application settings.
type Settings struct {
	// Catalog settings
	ManifestURL   string `yaml:"manifest_url"`
	ExcludeMarker string `yaml:"exclude_marker"`
	BrowseBaseURL string `yaml:"browse_base_url"`

	// Installation settings
	TargetDir         string   `yaml:"target_dir"`
	ArchiveExtensions []string `yaml:"archive_extensions,flow"`

	// Cache settings
	CacheDir string `yaml:"cache_dir,omitempty"`

	// Network settings
	HTTPTimeout time.Duration `yaml:"http_timeout"`
	UserAgent   string        `yaml:"user_agent"`

	// Interactive settings
	ErrorDelay time.Duration `yaml:"error_delay"`

	// Output settings
	LogLevel  string `yaml:"log_level"`  // debug, info, warn, error
	LogFormat string `yaml:"log_format"` // text, json
}

// Default configuration values.
const (
	// DefaultManifestURL serves the community mod list.
	DefaultManifestURL = "https://raw.githubusercontent.com/The-Graze/MonkeModInfo/refs/heads/master/modinfo.json"

	// DefaultExcludeMarker filters out the mod loader itself.
	DefaultExcludeMarker = "BepInEx"

	// DefaultBrowseBaseURL prefixes repository paths.
	DefaultBrowseBaseURL = "https://github.com/"

	// DefaultTargetDir is the loader's plugin folder, relative to the game directory.
	DefaultTargetDir = "BepInEx/plugins"

	// DefaultHTTPTimeout is the default timeout for HTTP requests.
	DefaultHTTPTimeout = 30 * time.Second

	// DefaultUserAgent identifies modpick to the manifest host.
	DefaultUserAgent = "modpick/1.0"

	// DefaultErrorDelay is how long error screens stay up in the browser.
	DefaultErrorDelay = time.Second

	// YAMLIndent is the number of spaces to use for YAML indentation.
	YAMLIndent = 2
)

// DefaultArchiveExtensions are installed by extraction. A bare ".gz" is not
// an archive of files and is left out on purpose.
func DefaultArchiveExtensions() []string {
	return []string{".zip", ".tar.gz", ".tgz", ".tar", ".7z"}
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	cacheDir, err := fsutil.GetCacheDir()
	if err != nil {
		// Fallback to the temp directory if we can't determine the user cache dir
		cacheDir = filepath.Join(os.TempDir(), fsutil.AppName)
	}

	return &Config{
		Settings: Settings{
			ManifestURL:       DefaultManifestURL,
			ExcludeMarker:     DefaultExcludeMarker,
			BrowseBaseURL:     DefaultBrowseBaseURL,
			TargetDir:         DefaultTargetDir,
			ArchiveExtensions: DefaultArchiveExtensions(),
			CacheDir:          cacheDir,
			HTTPTimeout:       DefaultHTTPTimeout,
			UserAgent:         DefaultUserAgent,
			ErrorDelay:        DefaultErrorDelay,
			LogLevel:          "info",
			LogFormat:         "text",
		},
	}
}

// LoadConfig loads configuration from a file. A missing file yields the defaults.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, errors.ErrEmptyConfigPath
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInvalidConfigPath, err.Error())
	}

	file, err := os.Open(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, errors.Wrapf(err, "failed to open config file: %s", path)
	}
	defer func() { _ = file.Close() }()

	return LoadConfigFromReader(file)
}

// LoadConfigFromReader loads configuration from an io.Reader.
func LoadConfigFromReader(reader io.Reader) (*Config, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config data")
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, errors.Wrap(errors.ErrConfigParse, err.Error())
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(errors.ErrConfigValidation, err.Error())
	}

	return &config, nil
}

// SaveConfig writes the configuration to path, replacing any existing file atomically.
func (c *Config) SaveConfig(path string) error {
	if path == "" {
		return errors.ErrEmptyConfigPath
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return errors.Wrap(errors.ErrInvalidConfigPath, err.Error())
	}

	if err := os.MkdirAll(filepath.Dir(absPath), fsutil.DirModeDefault); err != nil {
		return errors.Wrap(errors.ErrConfigDirectory, err.Error())
	}

	data, err := c.ToYAML()
	if err != nil {
		return err
	}

	if err := fsutil.WriteFileAtomic(absPath, data, fsutil.FileModeDefault); err != nil {
		return errors.Wrap(errors.ErrConfigFileRename, err.Error())
	}
	return nil
}

// ToYAML converts the config to YAML bytes.
func (c *Config) ToYAML() ([]byte, error) {
	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(YAMLIndent)
	if err := encoder.Encode(c); err != nil {
		return nil, errors.Wrap(errors.ErrConfigEncode, err.Error())
	}
	if err := encoder.Close(); err != nil {
		return nil, errors.Wrap(errors.ErrConfigEncode, err.Error())
	}
	return buf.Bytes(), nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c == nil {
		return errors.ErrConfigValidation
	}
	s := c.Settings
	if strings.TrimSpace(s.ManifestURL) == "" {
		return errors.ErrManifestURLEmpty
	}
	if strings.TrimSpace(s.TargetDir) == "" {
		return errors.ErrTargetDirEmpty
	}
	if s.HTTPTimeout < 0 {
		return errors.ErrHTTPTimeout
	}
	if s.ErrorDelay < 0 {
		return errors.ErrErrorDelay
	}
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(s.LogLevel)] {
		return errors.ErrInvalidLogLevelWithDetails(s.LogLevel)
	}
	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[s.LogFormat] {
		return errors.Wrapf(errors.ErrConfigValidation, "invalid log format: %s (must be text or json)", s.LogFormat)
	}
	for _, ext := range s.ArchiveExtensions {
		if !strings.HasPrefix(ext, ".") {
			return errors.Wrapf(errors.ErrConfigValidation, "archive extension %q must start with a dot", ext)
		}
	}
	return nil
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() (string, error) {
	path, err := fsutil.GetConfigPath()
	if err != nil {
		return "", errors.Wrap(err, "failed to get user config directory")
	}
	return path, nil
}

// GetLogFile returns the log file used while the interactive browser owns the terminal.
func (c *Config) GetLogFile() (string, error) {
	return fsutil.GetLogFilePath(c.Settings.CacheDir)
}

// GetScratchDir returns where downloaded archives are staged for extraction.
func (c *Config) GetScratchDir() string {
	return cache.NewManager(c.Settings.CacheDir).ScratchDir()
}

// applyDefaults fills in missing values with defaults.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()

	if c.Settings.ManifestURL == "" {
		c.Settings.ManifestURL = defaults.Settings.ManifestURL
	}
	if c.Settings.ExcludeMarker == "" {
		c.Settings.ExcludeMarker = defaults.Settings.ExcludeMarker
	}
	if c.Settings.BrowseBaseURL == "" {
		c.Settings.BrowseBaseURL = defaults.Settings.BrowseBaseURL
	}
	if c.Settings.TargetDir == "" {
		c.Settings.TargetDir = defaults.Settings.TargetDir
	}
	if len(c.Settings.ArchiveExtensions) == 0 {
		c.Settings.ArchiveExtensions = defaults.Settings.ArchiveExtensions
	}
	if c.Settings.CacheDir == "" {
		c.Settings.CacheDir = defaults.Settings.CacheDir
	}
	if c.Settings.HTTPTimeout == 0 {
		c.Settings.HTTPTimeout = defaults.Settings.HTTPTimeout
	}
	if c.Settings.UserAgent == "" {
		c.Settings.UserAgent = defaults.Settings.UserAgent
	}
	if c.Settings.ErrorDelay == 0 {
		c.Settings.ErrorDelay = defaults.Settings.ErrorDelay
	}
	if c.Settings.LogLevel == "" {
		c.Settings.LogLevel = defaults.Settings.LogLevel
	}
	if c.Settings.LogFormat == "" {
		c.Settings.LogFormat = defaults.Settings.LogFormat
	}
}
