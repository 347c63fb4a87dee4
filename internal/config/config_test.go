package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// clearEnv blanks every variable applyEnvOverrides reads.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{"API_KEY", "GOOGLE_API_KEY", "GEMINI_API_KEY", "RMA_MODEL", "RMA_TIMEOUT", "RMA_BASE_URL", "RMA_THEME"} {
		t.Setenv(name, "")
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultModel, cfg.Assistant.Model)
	assert.Equal(t, 30*time.Second, cfg.GetAssistantTimeout())
	assert.Equal(t, "auto", cfg.UI.Theme)
	assert.False(t, cfg.HasAPIKey())
	assert.False(t, cfg.Logging.DebugMode)
}

func TestLoadFile(t *testing.T) {
	clearEnv(t)
	ws := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(ws, Dir), 0755))
	content := `
assistant:
  api_key: file-key
  model: gemini-2.0-flash
  timeout: 5s
ui:
  theme: dark
logging:
  debug_mode: true
  level: debug
  categories:
    assistant: false
`
	require.NoError(t, os.WriteFile(Path(ws), []byte(content), 0644))

	cfg, err := Load(Path(ws))
	require.NoError(t, err)
	assert.Equal(t, "file-key", cfg.Assistant.APIKey)
	assert.Equal(t, "gemini-2.0-flash", cfg.GetModel())
	assert.Equal(t, 5*time.Second, cfg.GetAssistantTimeout())
	assert.Equal(t, "dark", cfg.UI.Theme)
	assert.True(t, cfg.UI.AltScreen, "unset keys keep defaults")
	assert.True(t, cfg.Logging.DebugMode)
	assert.Equal(t, map[string]bool{"assistant": false}, cfg.Logging.Categories)
}

func TestLoadBadYAML(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("assistant: [unclosed"), 0644))

	_, err := Load(path)
	assert.ErrorContains(t, err, "failed to parse config")
}

func TestEnvOverrides(t *testing.T) {
	t.Run("API_KEY alone", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("API_KEY", "plain")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()
		assert.Equal(t, "plain", cfg.Assistant.APIKey)
	})

	t.Run("Precedence: GEMINI over GOOGLE over API_KEY", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("API_KEY", "plain")
		t.Setenv("GOOGLE_API_KEY", "google")
		t.Setenv("GEMINI_API_KEY", "gemini")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()
		assert.Equal(t, "gemini", cfg.Assistant.APIKey)
	})

	t.Run("env beats file value", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("GOOGLE_API_KEY", "google")

		cfg := &Config{Assistant: AssistantConfig{APIKey: "file-key"}}
		cfg.applyEnvOverrides()
		assert.Equal(t, "google", cfg.Assistant.APIKey)
	})

	t.Run("model, timeout, base url and theme", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("RMA_MODEL", "gemini-x")
		t.Setenv("RMA_TIMEOUT", "2s")
		t.Setenv("RMA_BASE_URL", "http://127.0.0.1:9999")
		t.Setenv("RMA_THEME", "LIGHT")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()
		assert.Equal(t, "gemini-x", cfg.GetModel())
		assert.Equal(t, 2*time.Second, cfg.GetAssistantTimeout())
		assert.Equal(t, "http://127.0.0.1:9999", cfg.Assistant.BaseURL)
		assert.Equal(t, "light", cfg.UI.Theme)
	})
}

func TestTimeoutFallback(t *testing.T) {
	for _, v := range []string{"", "soon", "-3s", "0s"} {
		cfg := &Config{Assistant: AssistantConfig{Timeout: v}}
		assert.Equal(t, 30*time.Second, cfg.GetAssistantTimeout(), "timeout %q", v)
	}
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	ws := t.TempDir()
	require.NoError(t, LoadDotEnv(ws), "missing .env is fine")

	require.NoError(t, os.WriteFile(filepath.Join(ws, ".env"), []byte("RMA_MODEL=from-dotenv\n"), 0644))
	os.Unsetenv("RMA_MODEL")
	require.NoError(t, LoadDotEnv(ws))

	cfg, err := Load(Path(ws))
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", cfg.Assistant.Model)
}

func TestDotEnvDoesNotOverrideProcessEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("RMA_THEME", "dark")
	ws := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(ws, ".env"), []byte("RMA_THEME=light\n"), 0644))

	require.NoError(t, LoadDotEnv(ws))
	assert.Equal(t, "dark", os.Getenv("RMA_THEME"))
}

func TestLoadedKeyIsRedacted(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), FileName)

	cfg := DefaultConfig()
	cfg.Assistant.APIKey = "secret-abcd"
	data, err := yaml.Marshal(cfg)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0644))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "secret-abcd", loaded.Assistant.APIKey)

	red := loaded.Redacted()
	assert.Equal(t, "****abcd", red.Assistant.APIKey)
	assert.Equal(t, "secret-abcd", loaded.Assistant.APIKey)

	out, err := yaml.Marshal(red)
	require.NoError(t, err)
	assert.NotContains(t, string(out), "secret")
}

func TestMaskKey(t *testing.T) {
	assert.Equal(t, "", MaskKey(""))
	assert.Equal(t, "****", MaskKey("abc"))
	assert.Equal(t, "****6789", MaskKey("123456789"))
}
