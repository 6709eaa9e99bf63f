// Package media defines the records that flow through the extraction
// pipeline.
//
// Candidate is the validated form of one item emitted by the classifier,
// Metadata is the normalized record returned to callers, and PipelineError is
// the batch-fatal failure surfaced when text acquisition or classification
// cannot complete. ParseCandidate is the only way raw classifier output becomes
// a Candidate; anything it rejects is dropped by the orchestrator without
// aborting the batch.
package media
