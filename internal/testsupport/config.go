package testsupport

import (
	"path/filepath"
	"testing"

	"mediaextract/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config with placeholder API keys and a lock file in a
// per-test temp directory. Upstream URLs keep their defaults unless an option
// points them elsewhere.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.OCR.APIKey = "test"
	cfgVal.LLM.APIKey = "test"
	cfgVal.TMDB.APIKey = "test"
	cfgVal.Server.Bind = "127.0.0.1:0"
	cfgVal.Server.LockPath = filepath.Join(base, "mediaextract.lock")
	cfgVal.Logging.Level = "debug"

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithUpstream routes every outbound client at the fake upstream server.
func WithUpstream(u *Upstream) ConfigOption {
	return func(b *configBuilder) {
		u.Configure(b.cfg)
	}
}

// WithServerAPIKey enables API authentication on the test config.
func WithServerAPIKey(key string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Server.APIKey = key
	}
}

// WithoutKeys clears every upstream API key.
func WithoutKeys() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.OCR.APIKey = ""
		b.cfg.LLM.APIKey = ""
		b.cfg.TMDB.APIKey = ""
		b.cfg.Books.APIKey = ""
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Server.LockPath)
}
