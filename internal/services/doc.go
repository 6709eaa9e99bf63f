// Package services defines shared utilities consumed by the pipeline stages
// and their external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp request IDs, stage names, and candidate
//     indexes for logging and tracing.
//   - Structured error markers plus the Wrap helper so callers can classify
//     failures (upstream, configuration, not found) without string matching.
//   - HTTPStatus, which maps batch-fatal failures onto API status codes.
//
// Subpackages hold the upstream clients: llm talks to OpenRouter and vision to
// the Google Cloud Vision OCR endpoint.
package services
