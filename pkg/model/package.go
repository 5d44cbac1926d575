// Package model provides the data structures shared by the catalog parser,
// the install orchestrator and the session controller.
package model

import (
	"fmt"
	"net/url"
	"path"
	"strings"
)

// DefaultBrowseBaseURL is prefixed to a repository path to build its browse link.
const DefaultBrowseBaseURL = "https://github.com/"

// Package describes one installable add-on as published in the manifest.
// Values are never modified after the parser produced them.
type Package struct {
	Name           string   `json:"name" yaml:"name"`
	Version        string   `json:"version" yaml:"version"`
	Category       string   `json:"group" yaml:"group"`
	RepositoryPath string   `json:"git_path" yaml:"git_path"`
	DownloadURL    string   `json:"download_url" yaml:"download_url"`
	Developers     string   `json:"author" yaml:"author"`
	Dependencies   []string `json:"dependencies" yaml:"dependencies"`
}

// Title renders the one-line heading shown for a package.
func (p Package) Title() string {
	return fmt.Sprintf("%s V%s (%s)", p.Name, p.Version, p.Category)
}

// FileName returns the final path segment of the download URL. Query strings
// and fragments are ignored. An unparsable URL falls back to the text after
// the last slash.
func (p Package) FileName() string {
	return FileNameFromURL(p.DownloadURL)
}

// Extension returns the lower-cased extension of FileName, including the dot.
func (p Package) Extension() string {
	return strings.ToLower(path.Ext(p.FileName()))
}

// HasExtension reports whether FileName ends with one of exts (case-insensitive).
// Multi-part extensions such as ".tar.gz" are supported.
func (p Package) HasExtension(exts []string) bool {
	name := strings.ToLower(p.FileName())
	for _, ext := range exts {
		if ext != "" && strings.HasSuffix(name, strings.ToLower(ext)) {
			return true
		}
	}
	return false
}

// BrowseURL returns the repository link for the package under base.
func (p Package) BrowseURL(base string) string {
	return BrowseURL(base, p.RepositoryPath)
}

// FileNameFromURL extracts the final path segment from a download URL.
func FileNameFromURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Path == "" {
		trimmed := raw
		if i := strings.IndexAny(trimmed, "?#"); i >= 0 {
			trimmed = trimmed[:i]
		}
		return path.Base(strings.ReplaceAll(trimmed, "\\", "/"))
	}
	return path.Base(u.Path)
}

// BrowseURL joins base and repositoryPath with exactly one slash between them.
func BrowseURL(base, repositoryPath string) string {
	if base == "" {
		base = DefaultBrowseBaseURL
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(repositoryPath, "/")
}
