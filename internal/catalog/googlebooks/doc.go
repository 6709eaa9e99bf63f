// Package googlebooks wraps the Google Books volumes search used by the book
// metadata fetcher. Queries are the title plus an optional inauthor:
// qualifier; results come back in Google's relevance order and are re-ranked
// by the caller.
package googlebooks
