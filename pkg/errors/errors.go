// Package errors holds the sentinel errors shared across modpick and small
// helpers for wrapping them with context.
package errors

import "fmt"

// Common error types.
var (
	// Config errors.
	ErrEmptyConfigPath   = fmt.Errorf("config file path cannot be empty")
	ErrInvalidConfigPath = fmt.Errorf("invalid config file path")
	ErrConfigParse       = fmt.Errorf("failed to parse config")
	ErrConfigValidation  = fmt.Errorf("invalid configuration")
	ErrConfigEncode      = fmt.Errorf("failed to encode config")
	ErrConfigDirectory   = fmt.Errorf("failed to create config directory")
	ErrConfigFileCreate  = fmt.Errorf("failed to create config file")
	ErrConfigFileRename  = fmt.Errorf("failed to rename temporary config file")
	ErrConfigFileExists  = fmt.Errorf("configuration file already exists")
	ErrUnknownConfigKey  = fmt.Errorf("unknown configuration key")
	ErrInvalidLogLevel   = fmt.Errorf("invalid log level")
	ErrHTTPTimeout       = fmt.Errorf("http_timeout cannot be negative")
	ErrErrorDelay        = fmt.Errorf("error_delay cannot be negative")
	ErrManifestURLEmpty  = fmt.Errorf("manifest_url cannot be empty")
	ErrTargetDirEmpty    = fmt.Errorf("target_dir cannot be empty")

	// Manifest errors.
	ErrManifestInvalid = fmt.Errorf("manifest must be a JSON array of objects")
	ErrFieldMissing    = fmt.Errorf("required field missing")

	// Transport errors.
	ErrStatus    = fmt.Errorf("unsuccessful response status")
	ErrEmptyBody = fmt.Errorf("empty response body")

	// Install errors.
	ErrFetchFailed        = fmt.Errorf("download failed")
	ErrArchive            = fmt.Errorf("archive extraction failed")
	ErrDependencyNotFound = fmt.Errorf("dependency not found")
	ErrWrite              = fmt.Errorf("write failed")
	ErrPackageNotFound    = fmt.Errorf("package not found")

	// CLI errors.
	ErrValidation = fmt.Errorf("validation failed")

	// Filesystem errors.
	ErrInvalidPath   = fmt.Errorf("invalid path")
	ErrPathTraversal = fmt.Errorf("archive entry escapes destination directory")
)

// Wrap wraps an error with additional context.
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// Wrapf wraps an error with additional formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// ErrInvalidLogLevelWithDetails wraps ErrInvalidLogLevel with the rejected value.
func ErrInvalidLogLevelWithDetails(level string) error {
	return fmt.Errorf("%w: '%s', must be one of: debug, info, warn, error", ErrInvalidLogLevel, level)
}

// ErrPackageNotFoundWithName wraps ErrPackageNotFound with the requested name.
func ErrPackageNotFoundWithName(name string) error {
	return fmt.Errorf("%w: %s", ErrPackageNotFound, name)
}
