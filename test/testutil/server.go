// Package testutil provides a manifest server and config helpers for tests
// that drive modpick end to end.
package testutil

import (
	"archive/zip"
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/glorpus-work/modpick/internal/logger"
	"github.com/glorpus-work/modpick/pkg/config"
)

// ManifestPath is where TestServer publishes the manifest.
const ManifestPath = "/modinfo.json"

// TestServer serves a manifest and the downloads it points to.
type TestServer struct {
	*httptest.Server

	mu       sync.Mutex
	manifest string
	files    map[string][]byte
	hits     map[string]int
}

// NewTestServer starts a server that is closed when the test ends.
func NewTestServer(t *testing.T) *TestServer {
	t.Helper()
	ts := &TestServer{files: make(map[string][]byte), hits: make(map[string]int)}
	ts.Server = httptest.NewServer(http.HandlerFunc(ts.serve))
	t.Cleanup(ts.Close)
	return ts
}

func (ts *TestServer) serve(w http.ResponseWriter, r *http.Request) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	ts.hits[r.URL.Path]++

	if r.URL.Path == ManifestPath {
		_, _ = fmt.Fprint(w, ts.manifest)
		logger.Debugf("Served manifest to %s", r.RemoteAddr)
		return
	}
	data, ok := ts.files[strings.TrimPrefix(r.URL.Path, "/")]
	if !ok {
		http.NotFound(w, r)
		return
	}
	_, _ = w.Write(data)
}

// SetManifest publishes a manifest. Every %[1]s in tmpl is replaced with
// the server URL so download links can point back at the server.
func (ts *TestServer) SetManifest(tmpl string) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	ts.manifest = fmt.Sprintf(tmpl, ts.URL)
}

// AddFile publishes data under /name.
func (ts *TestServer) AddFile(name string, data []byte) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	ts.files[name] = data
}

// ManifestURL returns the manifest location.
func (ts *TestServer) ManifestURL() string {
	return ts.URL + ManifestPath
}

// Hits returns how often path was requested.
func (ts *TestServer) Hits(path string) int {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return ts.hits[path]
}

// ZipBytes builds an in-memory zip archive.
func ZipBytes(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range files {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("Failed to add %s to zip: %v", name, err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatalf("Failed to write %s to zip: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("Failed to close zip: %v", err)
	}
	return buf.Bytes()
}

// SetupTestConfig writes a config file pointing at manifestURL and installing
// into targetDir. The cache lives in a temporary directory. It returns the
// config path.
func SetupTestConfig(t *testing.T, manifestURL, targetDir string) string {
	t.Helper()
	tempDir := t.TempDir()

	cfg := config.DefaultConfig()
	cfg.Settings.ManifestURL = manifestURL
	cfg.Settings.TargetDir = targetDir
	cfg.Settings.CacheDir = filepath.Join(tempDir, "cache")

	configPath := filepath.Join(tempDir, "config.yaml")
	if err := cfg.SaveConfig(configPath); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}
	return configPath
}
