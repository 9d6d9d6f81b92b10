package config

import (
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_EmptyPath(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "Admin", cfg.Sample.Name)
	assert.Equal(t, "admin@example.com", cfg.Sample.Email)
	assert.Equal(t, "secret123", cfg.Sample.Password)
}

func TestLoad_PartialOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "userkit.yaml")
	data := []byte("sample:\n  name: Root\nstorage:\n  url: sqlite://users.db\n")
	require.NoError(t, os.WriteFile(path, data, 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Root", cfg.Sample.Name)
	assert.Equal(t, "admin@example.com", cfg.Sample.Email)
	assert.Equal(t, "sqlite://users.db", cfg.Storage.URL)
	assert.Equal(t, ":8080", cfg.Server.Listen)
}

func TestLoad_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("sample: [unterminated"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "userkit.yaml")
	cfg := Default()
	cfg.Server.Listen = "127.0.0.1:9000"
	require.NoError(t, Save(path, cfg))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestDatabaseURL_IsPostgres(t *testing.T) {
	u, err := url.Parse(DatabaseURL)
	require.NoError(t, err)
	assert.Equal(t, "postgres", u.Scheme)
	assert.Equal(t, "localhost:5432", u.Host)
	assert.Equal(t, "/mydb", u.Path)
}
