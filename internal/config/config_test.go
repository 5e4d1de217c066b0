package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
server:
  host: 0.0.0.0
  port: 9090
model:
  name: small
  language: zh
  dir: /var/lib/whisperd/models
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "0.0.0.0", cfg.Server.Host)
	require.Equal(t, 9090, cfg.Server.Port)
	require.Equal(t, "small", cfg.Model.Name)
	require.Equal(t, "zh", cfg.Model.Language)
	require.Equal(t, "/var/lib/whisperd/models", cfg.Model.Dir)
	require.Equal(t, "0.0.0.0:9090", cfg.Addr())
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
model:
  name: base
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "127.0.0.1", cfg.Server.Host)
	require.Equal(t, 8000, cfg.Server.Port)
	require.Equal(t, "en", cfg.Model.Language)
	require.Equal(t, "./models", cfg.Model.Dir)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoadMalformedFile(t *testing.T) {
	path := writeConfig(t, "server: [not: a: mapping")
	_, err := Load(path)
	require.Error(t, err)
}

func TestPortOverride(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
`)

	t.Setenv(PortOverrideEnv, "7070")
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 7070, cfg.Server.Port)
}

func TestPortOverrideUnparseableIgnored(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
`)

	t.Setenv(PortOverrideEnv, "not-a-port")
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 9090, cfg.Server.Port)
}
