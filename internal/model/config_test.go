package model_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pshrestha/justsend/internal/model"
)

func TestLoadConfig_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := model.LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.NotEmpty(t, cfg.DataDir)
	assert.NotEmpty(t, cfg.AttachmentsDir)
	assert.Empty(t, cfg.Resend.BaseURL)
	assert.Equal(t, "default", cfg.Display.Theme)
	assert.Equal(t, filepath.Join(cfg.DataDir, "justsend.db"), cfg.DatabasePath())
}

func TestLoadConfig_ReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
data_dir: /tmp/justsend-test
attachments_dir: /tmp/justsend-test/files
resend:
  base_url: http://localhost:9999
display:
  theme: dark
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := model.LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/justsend-test", cfg.DataDir)
	assert.Equal(t, "/tmp/justsend-test/files", cfg.AttachmentsDir)
	assert.Equal(t, "http://localhost:9999", cfg.Resend.BaseURL)
	assert.Equal(t, "dark", cfg.Display.Theme)
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	want := &model.AppConfig{
		DataDir:        "/data",
		AttachmentsDir: "/data/attachments",
		Resend:         model.ResendConfig{BaseURL: "http://localhost:1234"},
		Display:        model.DisplayConfig{Theme: "dark"},
	}
	require.NoError(t, model.SaveConfig(path, want))

	got, err := model.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestValidEmailAddress(t *testing.T) {
	tests := []struct {
		addr string
		want bool
	}{
		{"hello@example.com", true},
		{"first.last+tag@sub.example.co", true},
		{"UPPER@EXAMPLE.COM", true},
		{"no-at-sign", false},
		{"missing@tld", false},
		{"two@@example.com", false},
		{"trailing@example.com ", false},
		{"", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, model.ValidEmailAddress(tt.addr), "addr %q", tt.addr)
	}
}
