// Package domain holds sentinel errors shared by every layer of symcheck.
//
// The triage core itself (extraction and scoring) is total over its inputs
// and returns no errors; these sentinels cover the collaborator surfaces:
// knowledge-base loading, session storage, and upload handling.
package domain

import "errors"

var (
	// ErrSessionNotFound signals a missing assessment session.
	ErrSessionNotFound = errors.New("session not found")
	// ErrInvalidKB signals a structurally invalid knowledge base document.
	ErrInvalidKB = errors.New("invalid knowledge base")
	// ErrUnsupportedFormat signals a KB file extension with no codec.
	ErrUnsupportedFormat = errors.New("unsupported knowledge base format")
	// ErrUploadTooLarge signals an image upload over the configured cap.
	ErrUploadTooLarge = errors.New("upload too large")
	// ErrUploadType signals an image upload with a disallowed extension.
	ErrUploadType = errors.New("upload type not allowed")
)
