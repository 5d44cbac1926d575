//go:build integration

package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/glorpus-work/modpick/test/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	output, err := run(t, "version")
	require.NoError(t, err, "version command should not return an error")
	assert.Contains(t, output, "modpick version")
}

func TestHelpCommand(t *testing.T) {
	output, err := run(t, "help")
	require.NoError(t, err, "help command should not return an error")
	assert.Contains(t, output, "modpick installs game mods listed in a remote manifest")
	assert.Contains(t, output, "Available Commands")
	for _, name := range []string{"browse", "list", "show", "install", "open", "config"} {
		assert.Contains(t, output, name)
	}
}

func TestInstallWithFlags(t *testing.T) {
	srv := testutil.NewTestServer(t)
	srv.SetManifest(`[{"name":"Utilla","version":"1.6.9","group":"Libraries","git_path":"iDevs/Utilla",
	  "download_url":"%[1]s/Utilla.dll","author":"iDevs"}]`)
	srv.AddFile("Utilla.dll", []byte("utilla"))

	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	target := filepath.Join(dir, "plugins")

	_, err := run(t, "--config", cfgPath, "config", "init")
	require.NoError(t, err)
	_, err = run(t, "--config", cfgPath, "config", "set", "manifest_url", srv.ManifestURL())
	require.NoError(t, err)

	output, err := run(t, "--config", cfgPath, "--target-dir", target, "install", "Utilla")
	require.NoError(t, err)
	assert.Contains(t, output, "Successfully Downloaded Utilla!")

	data, err := os.ReadFile(filepath.Join(target, "Utilla.dll"))
	require.NoError(t, err)
	assert.Equal(t, "utilla", string(data))

	output, err = run(t, "--config", cfgPath, "config", "get", "target_dir")
	require.NoError(t, err)
	assert.Equal(t, "BepInEx/plugins\n", output, "--target-dir is not persisted")
}

func TestListAgainstServer(t *testing.T) {
	srv := testutil.NewTestServer(t)
	srv.SetManifest(`[{"name":"Utilla","version":"1.6.9","group":"Libraries","git_path":"iDevs/Utilla",
	  "download_url":"%[1]s/Utilla.dll","author":"iDevs"}]`)
	cfgPath := testutil.SetupTestConfig(t, srv.ManifestURL(), t.TempDir())

	output, err := run(t, "--config", cfgPath, "list")
	require.NoError(t, err)
	assert.Contains(t, output, "Utilla")
	assert.Equal(t, 1, srv.Hits(testutil.ManifestPath))
}
