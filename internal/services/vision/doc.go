// Package vision wraps the Google Cloud Vision images:annotate endpoint for
// text detection. The image is sent base64-encoded with a single
// TEXT_DETECTION feature and the first response's full text annotation is
// returned.
//
// Any upstream problem (transport failure, non-200 status, or an error object
// in the body) is returned as an error tagged with a services marker. When
// the service replied with a JSON body, the error carries it as APIError.Raw.
package vision
