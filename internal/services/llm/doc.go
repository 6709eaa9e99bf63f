// Package llm provides an OpenRouter chat client used by the classifier to
// turn OCR text and free-form queries into media candidates.
//
// # Entry Points
//
// NewClient: construct client from Config.
// Client.Complete: send system/user prompts, receive the raw reply text.
// Client.CompleteJSON: same, but asks the provider for a JSON object.
// Client.HealthCheck: verify API key and model availability.
//
// # Retry Behaviour
//
// The client retries on HTTP 408/429/5xx errors, empty replies, and network
// timeouts with exponential backoff (base 1s, max 10s, 3 attempts by default).
// Retry-After headers are honoured up to the max delay. Context cancellation
// aborts retries immediately.
//
// Failures are tagged with services markers: missing keys and 401/403 replies
// are configuration errors, deadlines are timeouts, everything else is an
// external service error.
package llm
