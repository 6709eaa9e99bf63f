package metadata

import (
	"context"
	"strings"

	"mediaextract/internal/media"
)

// Request carries the title and optional hints for one catalog lookup.
type Request struct {
	Title string
	// Year filters movie and TV searches when positive.
	Year int
	// Author filters book searches when set.
	Author string
}

// Fetcher queries one catalog and returns whichever fields it provided. Type
// is left empty; the router fills it. A miss is reported as
// services.ErrNotFound.
type Fetcher interface {
	Fetch(ctx context.Context, req Request) (media.Metadata, error)
}

func (r Request) trimmed() Request {
	return Request{
		Title:  strings.TrimSpace(r.Title),
		Year:   r.Year,
		Author: strings.TrimSpace(r.Author),
	}
}
