// Package tmdb provides the minimal TMDB API client used by the movie and TV
// metadata fetchers.
//
// It authenticates requests with an api_key query parameter and exposes movie
// and TV search with an optional release-year filter. Responses are strongly
// typed; Result.DisplayTitle and Result.Year flatten the movie/TV field
// differences for callers.
package tmdb
