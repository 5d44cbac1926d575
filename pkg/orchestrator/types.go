//go:generate mockgen -destination=./mocks/orchestrator.go . Transport,Filesystem

package orchestrator

import (
	"context"
	"fmt"
	"strings"

	"github.com/glorpus-work/modpick/pkg/errors"
)

// DefaultArchiveExtensions select the extract strategy when no list is configured.
var DefaultArchiveExtensions = []string{".zip", ".tar.gz", ".tgz", ".tar", ".7z"}

// Transport is the subset of the download client used by the orchestrator.
type Transport interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Filesystem is the set of disk operations an install performs.
type Filesystem interface {
	WriteFile(ctx context.Context, path string, data []byte) error
	DeleteFile(ctx context.Context, path string) error
	FileExists(ctx context.Context, path string) (bool, error)
	ExtractArchive(ctx context.Context, name string, data []byte, destDir string) error
}

// Orchestrator installs a package and its dependencies into TargetDir.
type Orchestrator struct {
	DL                Transport
	FS                Filesystem
	TargetDir         string
	ArchiveExtensions []string
	Hooks             Hooks // Hooks for progress and event notifications
}

// Event represents a simple progress notification.
type Event struct {
	Phase string // fetching|extracting|writing|dependency|done|error
	ID    string // package name
	Msg   string
}

// Hooks carries callbacks for progress events.
type Hooks struct {
	OnEvent func(Event)
}

// LineKind tells the presentation layer how to render a transcript line.
type LineKind int

// Transcript line kinds.
const (
	LineInfo LineKind = iota
	LineSuccess
	LineError
)

// Line is one transcript entry.
type Line struct {
	Kind LineKind
	Text string
}

// Report is the transcript of one install chain. It is returned with the
// error on failure so the caller can show how far the chain got.
type Report struct {
	Lines     []Line
	Installed []string // package names in completion order
}

// String joins the transcript lines.
func (r Report) String() string {
	var b strings.Builder
	for _, l := range r.Lines {
		b.WriteString(l.Text)
		b.WriteByte('\n')
	}
	return b.String()
}

func (r Report) with(kind LineKind, format string, args ...interface{}) Report {
	lines := make([]Line, len(r.Lines), len(r.Lines)+1)
	copy(lines, r.Lines)
	r.Lines = append(lines, Line{Kind: kind, Text: fmt.Sprintf(format, args...)})
	return r
}

func (r Report) installed(name string) Report {
	names := make([]string, len(r.Installed), len(r.Installed)+1)
	copy(names, r.Installed)
	r.Installed = append(names, name)
	return r
}

// Kind classifies an install failure.
type Kind int

// Install failure kinds.
const (
	KindFetchFailed Kind = iota
	KindArchive
	KindDependencyNotFound
	KindWrite
)

func (k Kind) String() string {
	switch k {
	case KindFetchFailed:
		return "fetch failed"
	case KindArchive:
		return "archive error"
	case KindDependencyNotFound:
		return "dependency not found"
	case KindWrite:
		return "write error"
	default:
		return "unknown"
	}
}

func (k Kind) sentinel() error {
	switch k {
	case KindFetchFailed:
		return errors.ErrFetchFailed
	case KindArchive:
		return errors.ErrArchive
	case KindDependencyNotFound:
		return errors.ErrDependencyNotFound
	default:
		return errors.ErrWrite
	}
}

// InstallError is the failure of an install chain. Package is the package
// being installed when the chain stopped; Dependency is set for
// KindDependencyNotFound.
type InstallError struct {
	Kind       Kind
	Package    string
	Dependency string
	Err        error
}

func (e *InstallError) Error() string {
	switch {
	case e.Kind == KindDependencyNotFound:
		return fmt.Sprintf("%s: could not find dependency %q of %s", e.Kind, e.Dependency, e.Package)
	case e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Package, e.Err)
	default:
		return fmt.Sprintf("%s: %s", e.Kind, e.Package)
	}
}

// Unwrap exposes both the kind sentinel and the underlying cause.
func (e *InstallError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind.sentinel()}
	}
	return []error{e.Kind.sentinel(), e.Err}
}
