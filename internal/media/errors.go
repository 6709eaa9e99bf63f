package media

import (
	"errors"
	"fmt"
)

const (
	StageOCR      = "ocr"
	StageClassify = "classify"
)

// PipelineError is a batch-fatal failure from text acquisition or
// classification. It serializes as {"error": ..., "raw": ...}.
type PipelineError struct {
	Stage   string `json:"-"`
	Message string `json:"error"`
	// Raw carries the upstream payload or unparsed model output for diagnostics.
	Raw any   `json:"raw,omitempty"`
	Err error `json:"-"`
}

// NewPipelineError builds a PipelineError for stage wrapping err.
func NewPipelineError(stage, message string, raw any, err error) *PipelineError {
	return &PipelineError{Stage: stage, Message: message, Raw: raw, Err: err}
}

func (e *PipelineError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Stage == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Stage, e.Message)
}

func (e *PipelineError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// AsPipelineError extracts a PipelineError from err's chain.
func AsPipelineError(err error) (*PipelineError, bool) {
	var perr *PipelineError
	if errors.As(err, &perr) && perr != nil {
		return perr, true
	}
	return nil, false
}
