// Package classifier asks a language model to list the movies, TV shows, and
// books mentioned in a text blob.
//
// The model reply is untrusted: it is fence-stripped and then decoded with a
// strict JSON parser. A reply that is not a JSON array fails the whole batch
// with a media.PipelineError carrying the raw text. Validation of the
// individual records is left to the caller so one bad record cannot discard
// the others.
package classifier
