package metadata

import (
	"context"
	"log/slog"
	"strings"

	"mediaextract/internal/catalog/tmdb"
	"mediaextract/internal/logging"
	"mediaextract/internal/media"
	"mediaextract/internal/services"
)

type tmdbSearch func(ctx context.Context, query string, opts tmdb.SearchOptions) (*tmdb.Response, error)

// TMDBFetcher looks up movies or TV series and trusts TMDB's own ranking:
// the first result wins.
type TMDBFetcher struct {
	kind   media.Kind
	search tmdbSearch
	logger *slog.Logger
}

// NewMovieFetcher returns a fetcher backed by TMDB movie search.
func NewMovieFetcher(searcher tmdb.Searcher, logger *slog.Logger) *TMDBFetcher {
	return &TMDBFetcher{
		kind:   media.KindMovie,
		search: searcher.SearchMovie,
		logger: logging.NewComponentLogger(logger, "fetcher.movie"),
	}
}

// NewTVFetcher returns a fetcher backed by TMDB TV search.
func NewTVFetcher(searcher tmdb.Searcher, logger *slog.Logger) *TMDBFetcher {
	return &TMDBFetcher{
		kind:   media.KindTV,
		search: searcher.SearchTV,
		logger: logging.NewComponentLogger(logger, "fetcher.tv"),
	}
}

// Fetch searches by title with the year filter, retrying once without it
// when the filtered search is empty.
func (f *TMDBFetcher) Fetch(ctx context.Context, req Request) (media.Metadata, error) {
	req = req.trimmed()
	results, err := f.results(ctx, req.Title, tmdb.SearchOptions{Year: req.Year})
	if err != nil {
		return media.Metadata{}, err
	}
	if len(results) == 0 && req.Year > 0 {
		logging.WithContext(ctx, f.logger).Debug("year-filtered search empty; retrying without year",
			logging.String("title", req.Title),
			logging.Int("year", req.Year),
		)
		results, err = f.results(ctx, req.Title, tmdb.SearchOptions{})
		if err != nil {
			return media.Metadata{}, err
		}
	}
	if len(results) == 0 {
		return media.Metadata{}, services.Wrap(services.ErrNotFound, "tmdb", "search "+f.kind.String(),
			"no results for "+req.Title, nil)
	}
	return fromTMDB(results[0]), nil
}

func (f *TMDBFetcher) results(ctx context.Context, title string, opts tmdb.SearchOptions) ([]tmdb.Result, error) {
	resp, err := f.search(ctx, title, opts)
	if err != nil || resp == nil {
		return nil, err
	}
	return resp.Results, nil
}

// fromTMDB keeps TMDB's native date format for the year field.
func fromTMDB(result tmdb.Result) media.Metadata {
	date := strings.TrimSpace(result.ReleaseDate)
	if date == "" {
		date = strings.TrimSpace(result.FirstAirDate)
	}
	return media.Metadata{
		Title:       result.DisplayTitle(),
		Year:        date,
		Description: strings.TrimSpace(result.Overview),
	}
}
