// Package pipeline orchestrates a single extraction request.
//
// A run acquires text from the image (if any), merges it with the query,
// classifies the merged text, and resolves every candidate concurrently
// through the metadata router. OCR and classification failures are fatal to
// the whole run. Each candidate is resolved behind its own failure boundary
// with its own deadline, so one bad item never discards its siblings. Records
// come back in classifier order.
package pipeline
