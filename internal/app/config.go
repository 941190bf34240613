package app

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"ingest-mapper/internal/entity"
	"ingest-mapper/internal/eval"
	"ingest-mapper/internal/rowsource"
)

// Environment variables read by EnvConfig.
const (
	EnvLogLevel      = "INGEST_LOG_LEVEL"
	EnvLogFormat     = "INGEST_LOG_FORMAT"
	EnvFailFast      = "INGEST_FAIL_FAST"
	EnvOutputFormat  = "INGEST_OUTPUT_FORMAT"
	EnvJSONCacheSize = "INGEST_JSON_CACHE_SIZE"
)

var (
	logLevels  = []string{"debug", "info", "warn", "error"}
	logFormats = []string{"text", "json"}
)

// Config holds everything one run needs.
type Config struct {
	ManifestPath string
	// InputPath is a file, or "-" for standard input.
	InputPath string
	// InputFormat is "csv" or "jsonl"; empty guesses from InputPath.
	InputFormat string
	// OutputFormat is "json" or "msgpack".
	OutputFormat string
	// ReportPath receives the error report; empty means the error writer.
	ReportPath string

	FailFast      bool
	LogLevel      string
	LogFormat     string
	JSONCacheSize int
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return Config{
		OutputFormat:  string(entity.FormatJSON),
		LogLevel:      "info",
		LogFormat:     "text",
		JSONCacheSize: eval.DefaultJSONCacheSize,
	}
}

// LoadDotEnv loads variables from the given .env files into the process
// environment. Missing files are ignored; variables already set win.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}

	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}

	return nil
}

// EnvConfig returns DefaultConfig overridden by the INGEST_* variables
// found through lookup. A nil lookup reads the process environment.
func EnvConfig(lookup func(string) (string, bool)) (Config, error) {
	if lookup == nil {
		lookup = os.LookupEnv
	}

	cfg := DefaultConfig()

	get := func(key string) (string, bool) {
		v, ok := lookup(key)
		v = strings.TrimSpace(v)

		return v, ok && v != ""
	}

	if v, ok := get(EnvLogLevel); ok {
		cfg.LogLevel = strings.ToLower(v)
	}

	if v, ok := get(EnvLogFormat); ok {
		cfg.LogFormat = strings.ToLower(v)
	}

	if v, ok := get(EnvOutputFormat); ok {
		cfg.OutputFormat = strings.ToLower(v)
	}

	if v, ok := get(EnvFailFast); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s %q: %w", EnvFailFast, v, err)
		}

		cfg.FailFast = b
	}

	if v, ok := get(EnvJSONCacheSize); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s %q: %w", EnvJSONCacheSize, v, err)
		}

		cfg.JSONCacheSize = n
	}

	return cfg, nil
}

// NewConfig validates cfg and returns a copy safe to hand to New.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.ManifestPath == "" {
		return nil, errors.New("manifest path is a required configuration field and cannot be empty")
	}

	if cfg.InputFormat != "" {
		if _, err := rowsource.ParseFormat(cfg.InputFormat); err != nil {
			return nil, err
		}
	}

	if !slices.Contains(entity.Formats, entity.Format(cfg.OutputFormat)) {
		return nil, fmt.Errorf("invalid output format %q: must be one of %s", cfg.OutputFormat, join(entity.Formats))
	}

	if !slices.Contains(logLevels, cfg.LogLevel) {
		return nil, fmt.Errorf("invalid log level %q: must be one of %s", cfg.LogLevel, strings.Join(logLevels, ", "))
	}

	if !slices.Contains(logFormats, cfg.LogFormat) {
		return nil, fmt.Errorf("invalid log format %q: must be 'text' or 'json'", cfg.LogFormat)
	}

	if cfg.JSONCacheSize < 0 {
		return nil, fmt.Errorf("invalid json cache size %d: must not be negative", cfg.JSONCacheSize)
	}

	return &cfg, nil
}

func join[T ~string](items []T) string {
	parts := make([]string, len(items))
	for i, it := range items {
		parts[i] = string(it)
	}

	return strings.Join(parts, ", ")
}
