package einvoice

import (
	"errors"
	"fmt"
)

var (
	ErrExtraction        = errors.New("bundle extraction failed")
	ErrMalformedDocument = errors.New("malformed document")
	ErrEnvelopeUnwrap    = errors.New("envelope could not be unwrapped")
)

// ExtractionError reports an upload that holds no usable structured document.
type ExtractionError struct {
	Reason string
	Err    error
}

func (e *ExtractionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("extraction: %s: %v", e.Reason, e.Err)
	}
	return "extraction: " + e.Reason
}

func (e *ExtractionError) Unwrap() error { return e.Err }

func (e *ExtractionError) Is(target error) bool { return target == ErrExtraction }

// MalformedDocumentError reports markup that could not be parsed.
type MalformedDocumentError struct {
	Line int
	Err  error
}

func (e *MalformedDocumentError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("malformed document (line %d): %v", e.Line, e.Err)
	}
	return fmt.Sprintf("malformed document: %v", e.Err)
}

func (e *MalformedDocumentError) Unwrap() error { return e.Err }

func (e *MalformedDocumentError) Is(target error) bool { return target == ErrMalformedDocument }

// EnvelopeUnwrapError reports an envelope whose embedded document is missing or
// unreadable. It never falls back to heuristic extraction.
type EnvelopeUnwrapError struct {
	Depth  int
	Reason string
	Err    error
}

func (e *EnvelopeUnwrapError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("envelope (depth %d): %s: %v", e.Depth, e.Reason, e.Err)
	}
	return fmt.Sprintf("envelope (depth %d): %s", e.Depth, e.Reason)
}

func (e *EnvelopeUnwrapError) Unwrap() error { return e.Err }

func (e *EnvelopeUnwrapError) Is(target error) bool { return target == ErrEnvelopeUnwrap }
