package types

import "errors"

// Error taxonomy for the plan/assemble stages. Stages wrap these with
// the offending file and field so main can exit with a message naming
// the artifact to regenerate.
var (
	// ErrMissingInput: a required file does not exist. Fatal, no
	// partial output is written.
	ErrMissingInput = errors.New("missing required input")

	// ErrMalformedInput: a required file exists but fails to parse or
	// lacks required keys. Fatal.
	ErrMalformedInput = errors.New("malformed input")

	// ErrInvalidTimeline: zero scenes, or non-monotonic/overlapping
	// scenes. Checked defensively at the plan-builder boundary. Fatal.
	ErrInvalidTimeline = errors.New("invalid timeline")

	// ErrEncodingFailure: the underlying encoder failed. Fatal; the
	// temp output is removed, never renamed into place.
	ErrEncodingFailure = errors.New("encoding failure")
)
