package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Missing(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, &ProjectConfig{}, cfg)
}

func TestLoad_Yml(t *testing.T) {
	dir := t.TempDir()
	data := []byte("reportPath: out/size.json\nmcpAddr: :9832\nwatch: true\ndebounceMs: 250\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sizelens.yml"), data, 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "out/size.json", cfg.ReportPath)
	assert.Equal(t, ":9832", cfg.MCPAddr)
	assert.True(t, cfg.Watch)
	assert.Equal(t, 250, cfg.DebounceMS)
}

func TestLoad_Invalid(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sizelens.yaml"), []byte("reportPath: [oops"), 0o644))

	_, err := Load(dir)
	assert.Error(t, err)
}
