package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultDetectorURL = "http://127.0.0.1:8000"
	defaultThreshold   = 0.5
	defaultTimeout     = 60 * time.Second
	defaultPort        = "8080"
)

// Cfg holds all runtime configuration.
type Cfg struct {
	// Detection service base URLs, tried in random order with failover.
	DetectorURLs []string
	// Default minimum confidence sent with /analyze, in [0,1].
	Threshold float64
	// Per-request timeout towards the detection service.
	Timeout time.Duration

	// Server
	ListenAddr string // e.g. :8080

	// Logging
	LogLevel slog.Level
	LogFile  string // empty = stderr

	// Hex secp256k1 key; empty disables export signatures.
	ExportSigningKey string
}

// fileCfg mirrors Cfg in the optional YAML file.
type fileCfg struct {
	DetectorURLs     []string `yaml:"detector_urls"`
	Threshold        *float64 `yaml:"threshold"`
	Timeout          string   `yaml:"timeout"`
	Port             string   `yaml:"port"`
	LogLevel         string   `yaml:"log_level"`
	LogFile          string   `yaml:"log_file"`
	ExportSigningKey string   `yaml:"export_signing_key"`
}

// Load reads .env (if present), then the optional YAML file at path, then
// environment variables. Environment variables win over the file.
func Load(path string) (*Cfg, error) {
	// Best-effort: load .env from current directory
	_ = godotenv.Load()

	var fc fileCfg
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, &fc); err != nil {
				return nil, fmt.Errorf("config: parse %s: %w", path, err)
			}
		}
	}

	cfg := &Cfg{
		DetectorURLs:     []string{defaultDetectorURL},
		Threshold:        defaultThreshold,
		Timeout:          defaultTimeout,
		LogLevel:         slog.LevelInfo,
		LogFile:          fc.LogFile,
		ExportSigningKey: fc.ExportSigningKey,
	}

	if urls := cleanURLs(fc.DetectorURLs); len(urls) > 0 {
		cfg.DetectorURLs = urls
	}
	if raw := env("PII_DETECTOR_URL"); raw != "" {
		if urls := cleanURLs(strings.Split(raw, ",")); len(urls) > 0 {
			cfg.DetectorURLs = urls
		}
	}

	if fc.Threshold != nil {
		cfg.Threshold = *fc.Threshold
	}
	if raw := env("PII_THRESHOLD"); raw != "" {
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("config: PII_THRESHOLD: %w", err)
		}
		cfg.Threshold = f
	}
	if cfg.Threshold < 0 || cfg.Threshold > 1 {
		return nil, fmt.Errorf("config: threshold %v outside [0,1]", cfg.Threshold)
	}

	timeout := fc.Timeout
	if raw := env("PII_TIMEOUT"); raw != "" {
		timeout = raw
	}
	if timeout != "" {
		d, err := time.ParseDuration(timeout)
		if err != nil {
			return nil, fmt.Errorf("config: timeout: %w", err)
		}
		if d <= 0 {
			return nil, fmt.Errorf("config: timeout must be positive, got %s", d)
		}
		cfg.Timeout = d
	}

	port := fc.Port
	if raw := env("PORT"); raw != "" {
		port = raw
	}
	if port == "" {
		port = defaultPort
	}
	cfg.ListenAddr = ":" + strings.TrimPrefix(port, ":")

	level := fc.LogLevel
	if raw := env("LOG_LEVEL"); raw != "" {
		level = raw
	}
	if level != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(level)); err != nil {
			return nil, fmt.Errorf("config: log level: %w", err)
		}
	}

	if raw := env("LOG_FILE"); raw != "" {
		cfg.LogFile = raw
	}
	if raw := env("EXPORT_SIGNING_KEY"); raw != "" {
		cfg.ExportSigningKey = raw
	}

	return cfg, nil
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func cleanURLs(in []string) []string {
	var out []string
	for _, u := range in {
		u = strings.TrimRight(strings.TrimSpace(u), "/")
		if u != "" {
			out = append(out, u)
		}
	}
	return out
}
