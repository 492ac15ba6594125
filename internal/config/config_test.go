package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ubc-cpsc/canvasgrading/internal/config"
	"github.com/ubc-cpsc/canvasgrading/pkg/canvas"
)

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("CANVAS_TOKEN", "env-token")
	t.Setenv("CANVAS_BASE_URL", "https://lms.example.com/api/v1")

	cfg, err := config.Load()
	require.NoError(t, err)
	require.Equal(t, "env-token", cfg.Token)
	require.Equal(t, "https://lms.example.com/api/v1", cfg.BaseURL)
}

func TestLoadDefaultsBaseURL(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)
	require.Equal(t, canvas.DefaultBaseURL, cfg.BaseURL)
}

func TestResolveTokenFileWinsOverLiteral(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")
	require.NoError(t, os.WriteFile(path, []byte("file-token\n"), 0o600))

	cfg := config.Config{Token: "literal", TokenFile: path}
	require.NoError(t, cfg.Resolve())
	require.Equal(t, "file-token", cfg.Token)
}

func TestResolveFailsWithoutToken(t *testing.T) {
	cfg := config.Config{}
	require.Error(t, cfg.Resolve())
}

func TestResolveFailsOnMissingTokenFile(t *testing.T) {
	cfg := config.Config{TokenFile: filepath.Join(t.TempDir(), "absent")}
	require.Error(t, cfg.Resolve())
}
