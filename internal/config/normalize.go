package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizeServer(); err != nil {
		return err
	}
	c.normalizeOCR()
	c.normalizeLLM()
	c.normalizeTMDB()
	c.normalizeWikipedia()
	c.normalizeBooks()
	c.normalizePipeline()
	return c.normalizeLogging()
}

func (c *Config) normalizeServer() error {
	c.Server.Bind = strings.TrimSpace(c.Server.Bind)
	if c.Server.Bind == "" {
		c.Server.Bind = defaultBind
	}
	c.Server.APIKey = envFallback(c.Server.APIKey, "MEDIA_EXTRACTOR_API_KEY")
	if c.Server.MaxUploadMB == 0 {
		c.Server.MaxUploadMB = defaultMaxUploadMB
	}
	if c.Server.ShutdownTimeoutSeconds <= 0 {
		c.Server.ShutdownTimeoutSeconds = defaultShutdown
	}
	origins := make([]string, 0, len(c.Server.CORSOrigins))
	for _, origin := range c.Server.CORSOrigins {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	c.Server.CORSOrigins = origins
	if strings.TrimSpace(c.Server.LockPath) == "" {
		c.Server.LockPath = defaultLockPath
	}
	var err error
	if c.Server.LockPath, err = expandPath(strings.TrimSpace(c.Server.LockPath)); err != nil {
		return fmt.Errorf("server.lock_path: %w", err)
	}
	return nil
}

func (c *Config) normalizeOCR() {
	c.OCR.APIKey = envFallback(c.OCR.APIKey, "GOOGLE_VISION_API_KEY")
	c.OCR.BaseURL = stringDefault(c.OCR.BaseURL, defaultOCRBaseURL)
	c.OCR.TimeoutSeconds = positiveDefault(c.OCR.TimeoutSeconds, defaultOCRTimeout)
}

func (c *Config) normalizeLLM() {
	c.LLM.APIKey = envFallback(c.LLM.APIKey, "OPENROUTER_API_KEY")
	c.LLM.BaseURL = stringDefault(c.LLM.BaseURL, defaultLLMBaseURL)
	c.LLM.Model = stringDefault(c.LLM.Model, defaultLLMModel)
	c.LLM.Referer = strings.TrimSpace(c.LLM.Referer)
	c.LLM.Title = stringDefault(c.LLM.Title, defaultLLMTitle)
	c.LLM.TimeoutSeconds = positiveDefault(c.LLM.TimeoutSeconds, defaultLLMTimeout)
	c.LLM.RetryAttempts = positiveDefault(c.LLM.RetryAttempts, defaultLLMRetryAttempts)
}

func (c *Config) normalizeTMDB() {
	c.TMDB.APIKey = envFallback(c.TMDB.APIKey, "TMDB_API_KEY")
	c.TMDB.BaseURL = stringDefault(c.TMDB.BaseURL, defaultTMDBBaseURL)
	c.TMDB.Language = strings.TrimSpace(c.TMDB.Language)
	c.TMDB.TimeoutSeconds = positiveDefault(c.TMDB.TimeoutSeconds, defaultTMDBTimeout)
}

func (c *Config) normalizeWikipedia() {
	c.Wikipedia.BaseURL = stringDefault(c.Wikipedia.BaseURL, defaultWikipediaBaseURL)
	c.Wikipedia.UserAgent = stringDefault(c.Wikipedia.UserAgent, defaultWikipediaUserAgent)
	if c.Wikipedia.MaxCandidates == 0 {
		c.Wikipedia.MaxCandidates = defaultWikipediaMaxCandidates
	}
	c.Wikipedia.TimeoutSeconds = positiveDefault(c.Wikipedia.TimeoutSeconds, defaultWikipediaTimeout)
}

func (c *Config) normalizeBooks() {
	c.Books.APIKey = envFallback(c.Books.APIKey, "GOOGLE_BOOKS_API_KEY")
	c.Books.BaseURL = stringDefault(c.Books.BaseURL, defaultBooksBaseURL)
	if c.Books.MaxResults == 0 {
		c.Books.MaxResults = defaultBooksMaxResults
	}
	c.Books.TimeoutSeconds = positiveDefault(c.Books.TimeoutSeconds, defaultBooksTimeout)
}

func (c *Config) normalizePipeline() {
	if c.Pipeline.Concurrency == 0 {
		c.Pipeline.Concurrency = defaultConcurrency
	}
	c.Pipeline.CandidateTimeoutSeconds = positiveDefault(c.Pipeline.CandidateTimeoutSeconds, defaultCandidateTimeout)
	c.Pipeline.MaxCandidates = positiveDefault(c.Pipeline.MaxCandidates, defaultMaxCandidates)
}

func (c *Config) normalizeLogging() error {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if file := strings.TrimSpace(c.Logging.File); file != "" {
		expanded, err := expandPath(file)
		if err != nil {
			return fmt.Errorf("logging.file: %w", err)
		}
		c.Logging.File = expanded
	}
	return nil
}

// envFallback trims value and, when empty, falls back to the named
// environment variable.
func envFallback(value, envKey string) string {
	value = strings.TrimSpace(value)
	if value != "" {
		return value
	}
	if env, ok := os.LookupEnv(envKey); ok {
		return strings.TrimSpace(env)
	}
	return ""
}

func stringDefault(value, fallback string) string {
	if value = strings.TrimSpace(value); value != "" {
		return value
	}
	return fallback
}

func positiveDefault(value, fallback int) int {
	if value <= 0 {
		return fallback
	}
	return value
}
