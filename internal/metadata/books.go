package metadata

import (
	"context"
	"log/slog"
	"strings"

	"mediaextract/internal/catalog/googlebooks"
	"mediaextract/internal/logging"
	"mediaextract/internal/media"
	"mediaextract/internal/services"
	"mediaextract/internal/textutil"
)

// BookSearcher is the Google Books operation the book fetcher needs.
type BookSearcher interface {
	Search(ctx context.Context, query googlebooks.Query) ([]googlebooks.Volume, error)
}

// BookFetcher looks up books and re-ranks the catalog's results by fuzzy
// title similarity, since book search relevance is noisy.
type BookFetcher struct {
	search BookSearcher
	logger *slog.Logger
}

// NewBookFetcher returns a fetcher backed by searcher.
func NewBookFetcher(searcher BookSearcher, logger *slog.Logger) *BookFetcher {
	return &BookFetcher{
		search: searcher,
		logger: logging.NewComponentLogger(logger, "fetcher.book"),
	}
}

// Fetch searches by title with the author filter, retrying once without it
// when the filtered search is empty.
func (f *BookFetcher) Fetch(ctx context.Context, req Request) (media.Metadata, error) {
	req = req.trimmed()
	logger := logging.WithContext(ctx, f.logger)

	volumes, err := f.search.Search(ctx, googlebooks.Query{Title: req.Title, Author: req.Author})
	if err != nil {
		return media.Metadata{}, err
	}
	if len(volumes) == 0 && req.Author != "" {
		logger.Debug("author-filtered search empty; retrying without author",
			logging.String("title", req.Title),
			logging.String("author", req.Author),
		)
		volumes, err = f.search.Search(ctx, googlebooks.Query{Title: req.Title})
		if err != nil {
			return media.Metadata{}, err
		}
	}
	if len(volumes) == 0 {
		return media.Metadata{}, services.Wrap(services.ErrNotFound, "googlebooks", "search book",
			"no results for "+req.Title, nil)
	}

	index, score := BestVolume(req.Title, volumes)
	if len(volumes) > 1 {
		attrs := logging.DecisionAttrs("book_rerank", volumes[index].VolumeInfo.Title, "highest weighted title ratio")
		attrs = append(attrs,
			logging.String("title", req.Title),
			logging.Int("selected_index", index),
			logging.Int("score", score),
			logging.Int("results", len(volumes)),
		)
		logger.Debug("book result selected", logging.Args(attrs...)...)
	}
	return fromVolume(volumes[index]), nil
}

// BestVolume returns the index of the volume whose title scores highest
// against title. Ties keep the earliest volume.
func BestVolume(title string, volumes []googlebooks.Volume) (int, int) {
	best, bestScore := 0, -1
	for i, volume := range volumes {
		score := textutil.WeightedRatio(title, volume.VolumeInfo.Title)
		if score > bestScore {
			best, bestScore = i, score
		}
	}
	return best, bestScore
}

func fromVolume(volume googlebooks.Volume) media.Metadata {
	info := volume.VolumeInfo
	authors := make([]string, 0, len(info.Authors))
	for _, author := range info.Authors {
		if author = strings.TrimSpace(author); author != "" {
			authors = append(authors, author)
		}
	}
	return media.Metadata{
		Title:       strings.TrimSpace(info.Title),
		Author:      strings.Join(authors, ", "),
		Year:        strings.TrimSpace(info.PublishedDate),
		Description: textutil.StripHTML(info.Description),
	}
}
