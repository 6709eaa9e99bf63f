package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
)

// Validate ensures the configuration is usable. API keys are not checked
// here; each client reports a missing key when it is first used.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateEndpoints(); err != nil {
		return err
	}
	if err := c.validateLimits(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateServer() error {
	if _, _, err := net.SplitHostPort(c.Server.Bind); err != nil {
		return fmt.Errorf("server.bind %q: %w", c.Server.Bind, err)
	}
	if c.Server.MaxUploadMB < 1 || c.Server.MaxUploadMB > 100 {
		return errors.New("server.max_upload_mb must be between 1 and 100")
	}
	for _, origin := range c.Server.CORSOrigins {
		if origin == "*" {
			continue
		}
		if err := validateURL(origin); err != nil {
			return fmt.Errorf("server.cors_origins: %w", err)
		}
	}
	return nil
}

func (c *Config) validateEndpoints() error {
	endpoints := []struct {
		key   string
		value string
	}{
		{"ocr.base_url", c.OCR.BaseURL},
		{"llm.base_url", c.LLM.BaseURL},
		{"tmdb.base_url", c.TMDB.BaseURL},
		{"wikipedia.base_url", c.Wikipedia.BaseURL},
		{"books.base_url", c.Books.BaseURL},
	}
	for _, endpoint := range endpoints {
		if err := validateURL(endpoint.value); err != nil {
			return fmt.Errorf("%s: %w", endpoint.key, err)
		}
	}
	return nil
}

func (c *Config) validateLimits() error {
	if c.Pipeline.Concurrency < 1 || c.Pipeline.Concurrency > 32 {
		return errors.New("pipeline.concurrency must be between 1 and 32")
	}
	if c.Wikipedia.MaxCandidates < 1 || c.Wikipedia.MaxCandidates > 50 {
		return errors.New("wikipedia.max_candidates must be between 1 and 50")
	}
	if c.Books.MaxResults < 1 || c.Books.MaxResults > 40 {
		return errors.New("books.max_results must be between 1 and 40")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q (use console or json)", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}

func validateURL(value string) error {
	parsed, err := url.Parse(value)
	if err != nil {
		return fmt.Errorf("invalid url %q: %w", value, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("invalid url %q: scheme must be http or https", value)
	}
	if parsed.Host == "" {
		return fmt.Errorf("invalid url %q: missing host", value)
	}
	return nil
}
