package model

import "errors"

// Sentinel errors for pipeline failures. Every stage wraps one of these with
// the offending identifier so callers can classify failures with errors.Is.
var (
	// ErrMalformedDocument indicates missing sentence elements or colliding IDs
	ErrMalformedDocument = errors.New("malformed document")

	// ErrBatchTooLarge indicates a sentence batch exceeding the token budget
	ErrBatchTooLarge = errors.New("batch exceeds token budget")

	// ErrBackendUnavailable indicates the completion backend failed after the
	// retry budget was exhausted
	ErrBackendUnavailable = errors.New("backend unavailable")

	// ErrUnparsableResponse indicates the backend output could not be decoded
	// into the expected record shape
	ErrUnparsableResponse = errors.New("unparsable backend response")

	// ErrUnknownReference indicates the backend referenced a sentence or group
	// absent from the input, or left an input uncovered
	ErrUnknownReference = errors.New("unknown reference")

	// ErrMergeConflict indicates an annotation target could not be located in
	// the document tree
	ErrMergeConflict = errors.New("merge conflict")

	// ErrPartialOutput indicates the XML/JSON output pair is inconsistent
	ErrPartialOutput = errors.New("partial output")

	// ErrMissingCredential indicates a required API key was not provided
	ErrMissingCredential = errors.New("missing credential")
)
