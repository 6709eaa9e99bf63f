// Package api exposes the extraction pipeline over HTTP.
//
// NewRouter builds a gin engine with two public surfaces: GET /health and
// POST /extract (also mounted at /api/extract). Extraction accepts a
// multipart form with an optional "file" image and an optional "query" text
// field; at least one is required. Successful runs return a JSON array of
// media records. Batch-fatal pipeline failures return {"error", "raw"} with a
// 5xx status.
//
// Every request carries an X-Request-ID that is threaded into the request
// context so log lines from the pipeline share it. When an API key is
// configured, /extract requires it via X-API-Key or a bearer token.
//
// Server wraps the router with an http.Server, a flock-based single-instance
// lock, and graceful shutdown.
package api
