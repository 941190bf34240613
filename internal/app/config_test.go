package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mapLookup(env map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}
}

func TestEnvConfig(t *testing.T) {
	cfg, err := EnvConfig(mapLookup(nil))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	cfg, err = EnvConfig(mapLookup(map[string]string{
		EnvLogLevel:      "DEBUG",
		EnvLogFormat:     "json",
		EnvFailFast:      "true",
		EnvOutputFormat:  "msgpack",
		EnvJSONCacheSize: " 16 ",
	}))
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.True(t, cfg.FailFast)
	assert.Equal(t, "msgpack", cfg.OutputFormat)
	assert.Equal(t, 16, cfg.JSONCacheSize)
}

func TestEnvConfig_Invalid(t *testing.T) {
	_, err := EnvConfig(mapLookup(map[string]string{EnvFailFast: "sometimes"}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), EnvFailFast)

	_, err = EnvConfig(mapLookup(map[string]string{EnvJSONCacheSize: "big"}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), EnvJSONCacheSize)
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("INGEST_LOG_FORMAT=json\n"), 0o600))

	t.Setenv(EnvLogFormat, "")
	require.NoError(t, os.Unsetenv(EnvLogFormat))

	require.NoError(t, LoadDotEnv(path))

	cfg, err := EnvConfig(nil)
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.LogFormat)

	assert.NoError(t, LoadDotEnv(filepath.Join(dir, "missing.env")))
}

func TestNewConfig(t *testing.T) {
	valid := DefaultConfig()
	valid.ManifestPath = "m.yaml"

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"valid", func(*Config) {}, ""},
		{"no manifest", func(c *Config) { c.ManifestPath = "" }, "manifest path is a required"},
		{"input format", func(c *Config) { c.InputFormat = "xml" }, `unsupported input format "xml"`},
		{"output format", func(c *Config) { c.OutputFormat = "yaml" }, `invalid output format "yaml": must be one of json, msgpack`},
		{"log level", func(c *Config) { c.LogLevel = "loud" }, `invalid log level "loud"`},
		{"log format", func(c *Config) { c.LogFormat = "xml" }, `invalid log format "xml"`},
		{"cache size", func(c *Config) { c.JSONCacheSize = -1 }, "invalid json cache size -1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)

			got, err := NewConfig(cfg)
			if tt.want == "" {
				require.NoError(t, err)
				assert.Equal(t, cfg, *got)

				return
			}

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestNewLogger(t *testing.T) {
	buf := &SafeBuffer{}

	logger := NewLogger("warn", "json", buf)
	logger.Info("hidden")
	logger.Warn("Shown", "key", "1")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"Shown"`)

	buf = &SafeBuffer{}
	logger = NewLogger("bogus", "text", buf)
	logger.Debug("hidden")
	logger.Info("Shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "msg=Shown")
}
