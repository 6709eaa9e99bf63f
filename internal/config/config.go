package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Server contains HTTP API settings.
type Server struct {
	Bind                   string   `toml:"bind"`
	APIKey                 string   `toml:"api_key"`
	MaxUploadMB            int      `toml:"max_upload_mb"`
	CORSOrigins            []string `toml:"cors_origins"`
	LockPath               string   `toml:"lock_path"`
	ShutdownTimeoutSeconds int      `toml:"shutdown_timeout_seconds"`
}

// OCR contains configuration for the Google Cloud Vision text detector.
type OCR struct {
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// LLM contains the OpenRouter connection settings used by the classifier.
type LLM struct {
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	Model          string `toml:"model"`
	Referer        string `toml:"referer"`
	Title          string `toml:"title"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	RetryAttempts  int    `toml:"retry_attempts"`
}

// TMDB contains configuration for The Movie Database API.
type TMDB struct {
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	Language       string `toml:"language"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Wikipedia contains configuration for the title search index.
type Wikipedia struct {
	BaseURL        string `toml:"base_url"`
	MaxCandidates  int    `toml:"max_candidates"`
	UserAgent      string `toml:"user_agent"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Books contains configuration for the Google Books catalog.
type Books struct {
	BaseURL        string `toml:"base_url"`
	APIKey         string `toml:"api_key"`
	MaxResults     int    `toml:"max_results"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Pipeline contains orchestration limits.
type Pipeline struct {
	Concurrency             int `toml:"concurrency"`
	CandidateTimeoutSeconds int `toml:"candidate_timeout_seconds"`
	MaxCandidates           int `toml:"max_candidates"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
	File   string `toml:"file"`
}

// Config encapsulates all configuration values for the extractor.
//
// Configuration sections by subsystem:
//   - Server: HTTP bind address, auth key, upload limit, CORS
//   - OCR: Google Cloud Vision text detection
//   - LLM: OpenRouter classifier model
//   - TMDB: movie and TV metadata
//   - Wikipedia: title canonicalization index
//   - Books: Google Books metadata
//   - Pipeline: candidate fan-out and timeouts
//   - Logging: log format, level, and optional file
type Config struct {
	Server    Server    `toml:"server"`
	OCR       OCR       `toml:"ocr"`
	LLM       LLM       `toml:"llm"`
	TMDB      TMDB      `toml:"tmdb"`
	Wikipedia Wikipedia `toml:"wikipedia"`
	Books     Books     `toml:"books"`
	Pipeline  Pipeline  `toml:"pipeline"`
	Logging   Logging   `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. A missing file is
// not an error; defaults and environment fallbacks apply.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			var strict *toml.StrictMissingError
			if errors.As(err, &strict) {
				return nil, "", false, fmt.Errorf("parse config: %s", strict.String())
			}
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs(projectConfigName)
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// MaxUploadBytes returns the upload limit in bytes.
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.Server.MaxUploadMB) << 20
}

// ShutdownTimeout returns how long the server waits for in-flight requests.
func (c *Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.Server.ShutdownTimeoutSeconds) * time.Second
}

// CandidateTimeout returns the per-candidate deadline for resolution.
func (c *Config) CandidateTimeout() time.Duration {
	return time.Duration(c.Pipeline.CandidateTimeoutSeconds) * time.Second
}

// LLM retry backoff bounds. The pipeline passes them to the LLM client so the
// request budget below matches what the client actually waits.
const (
	LLMRetryBaseDelay = 1 * time.Second
	LLMRetryMaxDelay  = 10 * time.Second
)

// RequestBudget is the longest a single extraction can take when every stage
// runs to its configured limit: the OCR call, every LLM attempt with the
// backoff between them, and the candidate fan-out in concurrency-sized waves.
func (c *Config) RequestBudget() time.Duration {
	seconds := func(n int) time.Duration { return time.Duration(n) * time.Second }

	attempts := max(c.LLM.RetryAttempts, 1)
	budget := seconds(c.OCR.TimeoutSeconds)
	budget += time.Duration(attempts) * seconds(c.LLM.TimeoutSeconds)
	budget += time.Duration(attempts-1) * LLMRetryMaxDelay

	concurrency := max(c.Pipeline.Concurrency, 1)
	waves := (max(c.Pipeline.MaxCandidates, 0) + concurrency - 1) / concurrency
	budget += time.Duration(waves) * c.CandidateTimeout()
	return budget
}

// AuthEnabled reports whether the HTTP API requires an API key.
func (c *Config) AuthEnabled() bool {
	return strings.TrimSpace(c.Server.APIKey) != ""
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
