// Package config loads, normalizes, and validates extractor configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// OPENROUTER_API_KEY and TMDB_API_KEY. The Config type centralizes every knob
// the server and CLI need so credentials and limits are discovered in one
// pass and then handed to each component's constructor.
package config
