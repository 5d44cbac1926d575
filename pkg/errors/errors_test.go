package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestWrap(t *testing.T) {
	if got := Wrap(nil, "loading config"); got != nil {
		t.Fatalf("Wrap(nil) = %v, want nil", got)
	}

	err := Wrap(ErrConfigParse, "loading /tmp/config.yaml")
	if err.Error() != "loading /tmp/config.yaml: failed to parse config" {
		t.Errorf("unexpected message %q", err.Error())
	}
	if !errors.Is(err, ErrConfigParse) {
		t.Errorf("wrapped error lost ErrConfigParse")
	}
}

func TestWrapf(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		format   string
		args     []interface{}
		expected string
	}{
		{
			name:     "nil error",
			format:   "fetching %s",
			args:     []interface{}{"modinfo.json"},
			expected: "",
		},
		{
			name:     "sentinel",
			err:      ErrEmptyBody,
			format:   "fetching %s",
			args:     []interface{}{"modinfo.json"},
			expected: "fetching modinfo.json: empty response body",
		},
		{
			name:     "already wrapped",
			err:      fmt.Errorf("%w: Map.zip", ErrArchive),
			format:   "installing %s (attempt %d)",
			args:     []interface{}{"Monke Map", 1},
			expected: "installing Monke Map (attempt 1): archive extraction failed: Map.zip",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Wrapf(tt.err, tt.format, tt.args...)
			if tt.err == nil {
				if result != nil {
					t.Errorf("Expected nil, got %v", result)
				}
				return
			}
			if result.Error() != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, result.Error())
			}
			if !errors.Is(result, tt.err) {
				t.Errorf("Expected %v in chain of %v", tt.err, result)
			}
		})
	}
}

func TestSentinelsAreDistinct(t *testing.T) {
	install := []error{ErrFetchFailed, ErrArchive, ErrDependencyNotFound, ErrWrite}
	for i, a := range install {
		for j, b := range install {
			if i != j && errors.Is(a, b) {
				t.Errorf("%v must not match %v", a, b)
			}
		}
	}
}

func TestDetailHelpers(t *testing.T) {
	err := ErrPackageNotFoundWithName("Utilla")
	if !errors.Is(err, ErrPackageNotFound) {
		t.Fatalf("expected ErrPackageNotFound, got %v", err)
	}
	if err.Error() != "package not found: Utilla" {
		t.Errorf("unexpected message %q", err.Error())
	}

	err = ErrInvalidLogLevelWithDetails("loud")
	if !errors.Is(err, ErrInvalidLogLevel) {
		t.Fatalf("expected ErrInvalidLogLevel, got %v", err)
	}
	if err.Error() != "invalid log level: 'loud', must be one of: debug, info, warn, error" {
		t.Errorf("unexpected message %q", err.Error())
	}
}
