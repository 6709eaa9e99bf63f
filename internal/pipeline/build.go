package pipeline

import (
	"fmt"
	"log/slog"
	"time"

	"mediaextract/internal/catalog/googlebooks"
	"mediaextract/internal/catalog/tmdb"
	"mediaextract/internal/catalog/wikipedia"
	"mediaextract/internal/classifier"
	"mediaextract/internal/config"
	"mediaextract/internal/media"
	"mediaextract/internal/metadata"
	"mediaextract/internal/resolver"
	"mediaextract/internal/services/llm"
	"mediaextract/internal/services/vision"
)

// Components holds every configured collaborator so commands can run a single
// stage on its own.
type Components struct {
	OCR        *vision.Client
	LLM        *llm.Client
	Classifier *classifier.Classifier
	Resolver   *resolver.Resolver
	Router     *metadata.Router
}

// NewComponents constructs every client from cfg. Missing API keys are not
// an error here; the affected client reports them when first called.
func NewComponents(cfg *config.Config, logger *slog.Logger) (*Components, error) {
	if cfg == nil {
		return nil, fmt.Errorf("pipeline: config is required")
	}
	ocr := vision.NewClient(vision.Config{
		APIKey:         cfg.OCR.APIKey,
		BaseURL:        cfg.OCR.BaseURL,
		TimeoutSeconds: cfg.OCR.TimeoutSeconds,
	})
	llmClient := llm.NewClient(llm.Config{
		APIKey:         cfg.LLM.APIKey,
		BaseURL:        cfg.LLM.BaseURL,
		Model:          cfg.LLM.Model,
		Referer:        cfg.LLM.Referer,
		Title:          cfg.LLM.Title,
		TimeoutSeconds: cfg.LLM.TimeoutSeconds,
	},
		llm.WithRetryMaxAttempts(cfg.LLM.RetryAttempts),
		llm.WithRetryBackoff(config.LLMRetryBaseDelay, config.LLMRetryMaxDelay),
	)

	tmdbClient, err := tmdb.New(cfg.TMDB.APIKey, cfg.TMDB.BaseURL, cfg.TMDB.Language,
		tmdb.WithTimeout(seconds(cfg.TMDB.TimeoutSeconds)))
	if err != nil {
		return nil, fmt.Errorf("tmdb client: %w", err)
	}
	wiki := wikipedia.New(cfg.Wikipedia.BaseURL, cfg.Wikipedia.UserAgent,
		wikipedia.WithTimeout(seconds(cfg.Wikipedia.TimeoutSeconds)))
	books := googlebooks.New(cfg.Books.APIKey, cfg.Books.BaseURL, cfg.Books.MaxResults,
		googlebooks.WithTimeout(seconds(cfg.Books.TimeoutSeconds)))

	titleResolver := resolver.New(wiki, cfg.Wikipedia.MaxCandidates, logger)
	router := metadata.NewRouter(titleResolver, map[media.Kind]metadata.Fetcher{
		media.KindMovie: metadata.NewMovieFetcher(tmdbClient, logger),
		media.KindTV:    metadata.NewTVFetcher(tmdbClient, logger),
		media.KindBook:  metadata.NewBookFetcher(books, logger),
	}, logger)

	return &Components{
		OCR:        ocr,
		LLM:        llmClient,
		Classifier: classifier.New(llmClient, logger),
		Resolver:   titleResolver,
		Router:     router,
	}, nil
}

// OptionsFromConfig maps the [pipeline] section onto Options.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Concurrency:      cfg.Pipeline.Concurrency,
		CandidateTimeout: cfg.CandidateTimeout(),
		MaxCandidates:    cfg.Pipeline.MaxCandidates,
	}
}

// NewFromConfig wires a complete Pipeline from configuration.
func NewFromConfig(cfg *config.Config, logger *slog.Logger) (*Pipeline, *Components, error) {
	components, err := NewComponents(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	p := New(components.OCR, components.Classifier, components.Router, OptionsFromConfig(cfg), logger)
	return p, components, nil
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}
