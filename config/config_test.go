package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "campusvoice.toml")
	content := `
[[schools]]
name = "City College"
code = "city"

[[schools]]
name = "Hunter College"
code = "hunter"

[[categories]]
name = "Facilities"
icon = "X"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Len(t, cfg.Schools, 2)
	assert.Equal(t, "hunter", cfg.Schools[1].Code)
	assert.Len(t, cfg.Categories, 1)

	assert.True(t, cfg.HasSchool("city"))
	assert.False(t, cfg.HasSchool("nope"))
	assert.True(t, cfg.HasCategory("Facilities"))
	assert.False(t, cfg.HasCategory("Dining"))
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.NotEmpty(t, cfg.Schools)
	assert.NotEmpty(t, cfg.Categories)
	assert.True(t, cfg.HasSchool("hunter"))
	assert.True(t, cfg.HasCategory("Technology"))
}
