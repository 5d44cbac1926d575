// Package catalog turns the remote manifest into a validated, sorted
// catalog snapshot and fetches that manifest over the transport.
package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/glorpus-work/modpick/pkg/errors"
	"github.com/glorpus-work/modpick/pkg/model"
)

// DefaultExcludeMarker identifies the host's own loader package, which is
// never offered for installation.
const DefaultExcludeMarker = "BepInEx"

// Manifest keys.
const (
	KeyName           = "name"
	KeyVersion        = "version"
	KeyCategory       = "group"
	KeyRepositoryPath = "git_path"
	KeyDownloadURL    = "download_url"
	KeyDevelopers     = "author"
	KeyDependencies   = "dependencies"
)

// FieldMissingError reports a manifest entry without a required string field.
type FieldMissingError struct {
	Index int
	Field string
}

func (e *FieldMissingError) Error() string {
	return fmt.Sprintf("manifest entry %d: required field %q missing or not a string", e.Index, e.Field)
}

// Unwrap lets errors.Is match ErrFieldMissing.
func (e *FieldMissingError) Unwrap() error {
	return errors.ErrFieldMissing
}

type parseOptions struct {
	excludeMarker string
}

// ParseOption customizes Parse.
type ParseOption func(*parseOptions)

// WithExcludeMarker replaces DefaultExcludeMarker. An empty marker disables filtering.
func WithExcludeMarker(marker string) ParseOption {
	return func(o *parseOptions) {
		o.excludeMarker = marker
	}
}

// Parse validates raw manifest bytes and returns the catalog snapshot.
// Any invalid entry fails the whole parse; no partial catalog is returned.
func Parse(raw []byte, opts ...ParseOption) (*model.Catalog, error) {
	options := parseOptions{excludeMarker: DefaultExcludeMarker}
	for _, opt := range opts {
		opt(&options)
	}

	var entries []map[string]json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, errors.Wrap(errors.ErrManifestInvalid, err.Error())
	}
	if entries == nil {
		// the literal "null"
		return nil, errors.ErrManifestInvalid
	}

	packages := make([]model.Package, 0, len(entries))
	for i, entry := range entries {
		if entry == nil {
			return nil, fmt.Errorf("manifest entry %d is not an object: %w", i, errors.ErrManifestInvalid)
		}
		pkg, err := parseEntry(i, entry)
		if err != nil {
			return nil, err
		}
		if options.excludeMarker != "" && strings.Contains(pkg.RepositoryPath, options.excludeMarker) {
			continue
		}
		packages = append(packages, pkg)
	}

	slices.SortStableFunc(packages, func(a, b model.Package) int {
		return strings.Compare(a.Category, b.Category)
	})

	return model.NewCatalog(packages), nil
}

func parseEntry(index int, entry map[string]json.RawMessage) (model.Package, error) {
	var pkg model.Package
	fields := []struct {
		key string
		dst *string
	}{
		{KeyName, &pkg.Name},
		{KeyVersion, &pkg.Version},
		{KeyCategory, &pkg.Category},
		{KeyRepositoryPath, &pkg.RepositoryPath},
		{KeyDownloadURL, &pkg.DownloadURL},
		{KeyDevelopers, &pkg.Developers},
	}
	for _, f := range fields {
		value, ok := requiredString(entry, f.key)
		if !ok {
			return model.Package{}, &FieldMissingError{Index: index, Field: f.key}
		}
		*f.dst = value
	}
	pkg.Dependencies = dependencies(entry[KeyDependencies])
	return pkg, nil
}

func requiredString(entry map[string]json.RawMessage, key string) (string, bool) {
	raw, ok := entry[key]
	if !ok {
		return "", false
	}
	var s string
	// json.Unmarshal accepts null into a string, so check the token first.
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '"' {
		return "", false
	}
	if err := json.Unmarshal(trimmed, &s); err != nil {
		return "", false
	}
	return s, true
}

// dependencies coerces the optional dependency list. Anything that is not an
// array yields an empty list; non-string elements keep their JSON text and
// null becomes the empty string.
func dependencies(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return []string{}
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil || items == nil {
		return []string{}
	}
	deps := make([]string, 0, len(items))
	for _, item := range items {
		deps = append(deps, coerce(item))
	}
	return deps
}

func coerce(item json.RawMessage) string {
	trimmed := bytes.TrimSpace(item)
	switch {
	case bytes.Equal(trimmed, []byte("null")):
		return ""
	case len(trimmed) > 0 && trimmed[0] == '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err == nil {
			return s
		}
	}
	var compact bytes.Buffer
	if err := json.Compact(&compact, trimmed); err != nil {
		return string(trimmed)
	}
	return compact.String()
}
