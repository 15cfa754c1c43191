package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")
	want := Config{Backend: BackendFile, DataDir: "/tmp/data", WebEnabled: true, WebPort: 9000}

	require.NoError(t, Save(path, want))
	got, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestLoadRejectsBadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0o644))

	_, err := Load(path)
	require.ErrorContains(t, err, "parse config")
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("STUDYPLANNER_BACKEND", "file")
	t.Setenv("STUDYPLANNER_PORT", "9090")
	t.Setenv("STUDYPLANNER_DB", "")

	cfg := ApplyEnv(Config{Backend: BackendSQLite, DBPath: "keep.db", WebPort: 8080})
	require.Equal(t, BackendFile, cfg.Backend)
	require.Equal(t, 9090, cfg.WebPort)
	require.Equal(t, "keep.db", cfg.DBPath)
}

func TestResolveFillsPaths(t *testing.T) {
	cfgPath := filepath.Join("/etc", "studyplanner", "config.json")

	cfg, err := Resolve(Config{Backend: " SQLite "}, cfgPath)
	require.NoError(t, err)
	require.Equal(t, BackendSQLite, cfg.Backend)
	require.Equal(t, filepath.Join("/etc", "studyplanner", "studyplanner.db"), cfg.DBPath)
	require.Equal(t, filepath.Join("/etc", "studyplanner", "data"), cfg.DataDir)
	require.Equal(t, filepath.Join("/etc", "studyplanner", "tasks.html"), cfg.ExportPath)
	require.Equal(t, 8080, cfg.WebPort)

	_, err = Resolve(Config{Backend: "redis"}, cfgPath)
	require.Error(t, err)
}
