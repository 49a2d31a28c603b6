// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "fmt"

// FailureKind classifies why a resolution produced no result.
type FailureKind string

const (
	// FailureNotFound is permanent: the page does not exist (HTTP 404).
	FailureNotFound FailureKind = "not_found"

	// FailureTransientNetwork covers timeouts, connection and body read errors.
	FailureTransientNetwork FailureKind = "transient_network"

	// FailureTransientHTTP covers HTTP error statuses other than 404.
	FailureTransientHTTP FailureKind = "transient_http"

	// FailureMarkupProcessing means neither parser accepted the page, or the
	// parsed page had no content container.
	FailureMarkupProcessing FailureKind = "markup_processing"

	// FailureMaxRetriesExceeded is terminal after the attempt budget is spent.
	FailureMaxRetriesExceeded FailureKind = "max_retries_exceeded"

	// FailureCancelled means the caller's context ended the resolution.
	FailureCancelled FailureKind = "cancelled"
)

// Failure is a typed resolution failure. It implements error so the fetch
// layer can return it directly; errors.Is matches on Kind.
type Failure struct {
	Kind   FailureKind `json:"kind" yaml:"kind"`
	Detail string      `json:"detail" yaml:"detail"`
}

// NewFailure returns a Failure with a formatted detail.
func NewFailure(kind FailureKind, format string, args ...any) *Failure {
	return &Failure{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

func (f *Failure) Error() string {
	if f.Detail == "" {
		return string(f.Kind)
	}
	return fmt.Sprintf("%s: %s", f.Kind, f.Detail)
}

// Is matches another *Failure with the same Kind, so callers can write
// errors.Is(err, &types.Failure{Kind: types.FailureNotFound}).
func (f *Failure) Is(target error) bool {
	t, ok := target.(*Failure)
	if !ok {
		return false
	}
	return t.Kind == f.Kind
}
