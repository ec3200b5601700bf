package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomz197/starfield/internal/config"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		force = false
		rootCmd.SetArgs(nil)
	})
	err := rootCmd.Execute()
	return out.String(), err
}

func TestInitConfig_WritesLoadableDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "starfield.yaml")

	out, err := execute(t, "init-config", path)
	require.NoError(t, err)
	assert.Contains(t, out, path)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultConfig().Field.Variant, cfg.Field.Variant)
	assert.Equal(t, config.DefaultConfig().Web, cfg.Web)
}

func TestInitConfig_RefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "starfield.yaml")
	require.NoError(t, os.WriteFile(path, []byte("field:\n  count: 3\n"), 0o644))

	_, err := execute(t, "init-config", path)
	require.Error(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "field:\n  count: 3\n", string(data))

	_, err = execute(t, "init-config", "--force", path)
	require.NoError(t, err)
	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultConfig().Field.Count, cfg.Field.Count)
}

func TestVariants(t *testing.T) {
	out, err := execute(t, "variants")
	require.NoError(t, err)
	assert.Contains(t, out, "starfield")
	assert.Contains(t, out, "radar")
}
