package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefault(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadParsesProjectYAML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".naviscope"), 0o755))
	content := []byte("ignore:\n  - \"**/testdata/**\"\nasset_roots:\n  - /opt/libs\nschema_version_pin: 3\n")
	require.NoError(t, os.WriteFile(Path(dir), content, 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"**/testdata/**"}, cfg.Ignore)
	assert.Equal(t, []string{"/opt/libs"}, cfg.AssetRoots)
	assert.Equal(t, uint32(3), cfg.SchemaVersionPin)
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".naviscope"), 0o755))
	require.NoError(t, os.WriteFile(Path(dir), []byte(":::not yaml"), 0o644))

	_, err := Load(dir)
	assert.Error(t, err)
}
