// Package logging assembles structured slog loggers and formatting helpers used
// across the extractor.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so pipeline code can tag log
// lines with request IDs, stages, and candidate indexes. The package also
// provides a no-op logger for tests and wiring code that cannot fail.
package logging
