// Package metadata fetches catalog records for classified candidates.
//
// TMDBFetcher serves movies and TV series and trusts TMDB's ranking.
// BookFetcher serves books from Google Books and re-ranks results with a
// weighted fuzzy title match. Router runs the title resolver, dispatches by
// kind, and guarantees every returned record has a title and type even when
// the catalog is unreachable or has no match.
package metadata
