package resolver

import (
	"context"
	"log/slog"
	"strings"

	"mediaextract/internal/logging"
	"mediaextract/internal/media"
	"mediaextract/internal/textutil"
)

const defaultMaxCandidates = 5

// Searcher returns encyclopedia page titles in relevance order.
type Searcher interface {
	Search(ctx context.Context, query string, limit int) ([]string, error)
}

// Resolver canonicalizes rough titles against an encyclopedic index.
type Resolver struct {
	searcher      Searcher
	maxCandidates int
	logger        *slog.Logger
}

// New builds a Resolver that considers up to maxCandidates search hits.
func New(searcher Searcher, maxCandidates int, logger *slog.Logger) *Resolver {
	if maxCandidates <= 0 {
		maxCandidates = defaultMaxCandidates
	}
	return &Resolver{
		searcher:      searcher,
		maxCandidates: maxCandidates,
		logger:        logging.NewComponentLogger(logger, "resolver"),
	}
}

// Query builds the search text for title, appending the kind's hint word.
func Query(title string, kind media.Kind) string {
	title = strings.TrimSpace(title)
	if hint := kind.SearchHint(); hint != "" {
		return title + " " + hint
	}
	return title
}

// Resolve returns the canonical form of title. It never fails: search errors
// and empty result sets return title unchanged.
func (r *Resolver) Resolve(ctx context.Context, title string, kind media.Kind) string {
	if r == nil || r.searcher == nil || strings.TrimSpace(title) == "" {
		return title
	}
	logger := logging.WithContext(ctx, r.logger)

	hits, err := r.searcher.Search(ctx, Query(title, kind), r.maxCandidates)
	if err != nil {
		logging.WarnWithContext(logger, "title search failed; keeping original title", "title_search_failed",
			logging.Error(err),
			logging.String("title", title),
			logging.String(logging.FieldErrorHint, "check Wikipedia reachability"),
			logging.String(logging.FieldImpact, "catalog lookup uses the unrefined title"),
		)
		return title
	}
	if len(hits) > r.maxCandidates {
		hits = hits[:r.maxCandidates]
	}

	best, score := Best(title, hits)
	if best == "" {
		logger.Debug("title canonicalization skipped",
			logging.Args(logging.DecisionAttrs("title_canonicalization", "original", "no search results")...)...)
		return title
	}
	resolved := textutil.StripParenthetical(best)
	attrs := logging.DecisionAttrs("title_canonicalization", "resolved", "best fuzzy match")
	attrs = append(attrs,
		logging.String("title", title),
		logging.String("match", best),
		logging.String("resolved", resolved),
		logging.Int("score", score),
		logging.Int("hits", len(hits)),
	)
	logger.Info("title canonicalized", logging.Args(attrs...)...)
	return resolved
}

// Best picks the hit with the highest token-sort ratio against title. Ties
// keep the earliest hit so the index's own ranking breaks them.
func Best(title string, hits []string) (string, int) {
	best, bestScore := "", -1
	for _, hit := range hits {
		if strings.TrimSpace(hit) == "" {
			continue
		}
		score := textutil.TokenSortRatio(title, hit)
		if score > bestScore {
			best, bestScore = hit, score
		}
	}
	if best == "" {
		return "", 0
	}
	return best, bestScore
}
