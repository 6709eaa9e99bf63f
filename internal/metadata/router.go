package metadata

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"mediaextract/internal/logging"
	"mediaextract/internal/media"
	"mediaextract/internal/services"
)

// TitleResolver canonicalizes a title before catalog lookup.
type TitleResolver interface {
	Resolve(ctx context.Context, title string, kind media.Kind) string
}

// LookupRequest is one candidate's lookup input.
type LookupRequest struct {
	Kind   media.Kind
	Title  string
	Year   int
	Author string
}

// Router dispatches lookups to the fetcher registered for each kind and
// normalizes whatever comes back into a complete media.Metadata.
type Router struct {
	resolver TitleResolver
	fetchers map[media.Kind]Fetcher
	logger   *slog.Logger
}

// NewRouter builds a Router. A nil resolver skips canonicalization.
func NewRouter(resolver TitleResolver, fetchers map[media.Kind]Fetcher, logger *slog.Logger) *Router {
	registered := make(map[media.Kind]Fetcher, len(fetchers))
	for kind, fetcher := range fetchers {
		if fetcher != nil {
			registered[kind] = fetcher
		}
	}
	return &Router{
		resolver: resolver,
		fetchers: registered,
		logger:   logging.NewComponentLogger(logger, "metadata"),
	}
}

// Lookup resolves the title and queries the matching catalog. It never fails:
// catalog errors and misses yield a record carrying the input title and empty
// catalog fields. Kinds without a fetcher make no outbound calls.
func (r *Router) Lookup(ctx context.Context, req LookupRequest) media.Metadata {
	fallback := media.Metadata{Title: req.Title, Type: req.Kind}
	fetcher, ok := r.fetchers[req.Kind]
	if !ok {
		logging.WithContext(ctx, r.logger).Debug("no fetcher for kind",
			logging.String("kind", req.Kind.String()),
			logging.String("title", req.Title),
		)
		return fallback.Normalized()
	}

	title := req.Title
	if r.resolver != nil {
		title = r.resolver.Resolve(ctx, req.Title, req.Kind)
	}

	found, err := fetcher.Fetch(ctx, Request{Title: title, Year: req.Year, Author: req.Author})
	if err != nil {
		r.logLookupFailure(ctx, req, title, err)
		found = media.Metadata{}
	}
	if strings.TrimSpace(found.Title) == "" {
		found.Title = req.Title
	}
	found.Type = req.Kind
	return found.Normalized()
}

func (r *Router) logLookupFailure(ctx context.Context, req LookupRequest, resolved string, err error) {
	logger := logging.WithContext(ctx, r.logger)
	if errors.Is(err, services.ErrNotFound) {
		logger.Info("no catalog match",
			logging.Args(append(logging.DecisionAttrs("catalog_match", "not_found", "catalog returned no results"),
				logging.String("kind", req.Kind.String()),
				logging.String("title", resolved),
			)...)...)
		return
	}
	logging.WarnWithContext(logger, "catalog lookup failed; treating as not found", "catalog_lookup_failed",
		logging.Error(err),
		logging.String("kind", req.Kind.String()),
		logging.String("title", resolved),
		logging.String(logging.FieldErrorHint, hintFor(err)),
		logging.String(logging.FieldImpact, "record keeps the candidate title with empty metadata"),
	)
}

func hintFor(err error) string {
	switch {
	case errors.Is(err, services.ErrConfiguration):
		return "set the catalog API key"
	case errors.Is(err, services.ErrTimeout):
		return "catalog timed out; raise its timeout_seconds"
	default:
		return "check catalog reachability"
	}
}
