// Package domain holds the error taxonomy and artifact types shared by the
// frame-extraction pipeline stages.
package domain

import "errors"

// Kind classifies a pipeline failure by the stage that produced it.
type Kind string

const (
	KindValidation Kind = "validation"
	KindFetch      Kind = "fetch"
	KindExtraction Kind = "extraction"
	KindPublish    Kind = "publish"
)

// Error is a classified pipeline failure. Msg is a human-readable summary of
// the failed step; Err, when set, is the underlying cause and is appended to
// the message so callers always see the original detail.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Msg
	}
	return e.Msg + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// ErrVideoURLRequired is returned when a request carries no video URL.
var ErrVideoURLRequired = &Error{Kind: KindValidation, Msg: "videoUrl is required"}

// FetchError wraps cause as a KindFetch failure.
func FetchError(cause error) error {
	return &Error{Kind: KindFetch, Msg: "Failed to download video", Err: cause}
}

// ExtractionError wraps cause as a KindExtraction failure.
func ExtractionError(cause error) error {
	return &Error{Kind: KindExtraction, Msg: "Failed to extract screenshot", Err: cause}
}

// PublishError wraps cause as a KindPublish failure with no named backend.
func PublishError(cause error) error {
	return PublishErrorTo("", cause)
}

// PublishErrorTo wraps cause as a KindPublish failure naming the storage
// backend, e.g. "Failed to upload to Google Cloud Storage: <cause>".
func PublishErrorTo(backend string, cause error) error {
	msg := "Failed to upload image"
	if backend != "" {
		msg = "Failed to upload to " + backend
	}
	return &Error{Kind: KindPublish, Msg: msg, Err: cause}
}

// KindOf returns the Kind of the first *Error in err's chain, or "" when err
// is not a classified failure.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsKind reports whether err carries kind k.
func IsKind(err error, k Kind) bool {
	return err != nil && KindOf(err) == k
}
