// Package errors provides structured CLI error types for greentic-dist.
//
// CLIError wraps resolver errors with user-facing messages, hints, and the
// exit codes of the distributor CLI contract.
package errors

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/greentic-ai/greentic-distributor-client/internal/dist"
	"github.com/greentic-ai/greentic-distributor-client/internal/oci"
	"github.com/greentic-ai/greentic-distributor-client/internal/refs"
)

// Exit codes for CLI errors.
const (
	ExitSuccess   = 0  // Successful execution
	ExitInvalid   = 2  // Invalid reference, invalid input, or bad JSON
	ExitCacheMiss = 3  // Artifact not found locally
	ExitOffline   = 4  // Offline mode forbade a remote fetch
	ExitAuth      = 5  // repo:// or store:// backend, auth not implemented
	ExitRuntime   = 10 // Any other I/O, HTTP, or OCI failure
)

// CLIError represents a user-facing CLI error with actionable guidance.
type CLIError struct {
	// Message is the primary error message shown to the user.
	Message string

	// Hint provides actionable guidance on how to fix the error.
	Hint string

	// Cause is the underlying error, if any.
	Cause error

	// Code is the exit code for the CLI.
	Code int
}

// Error implements the error interface.
func (e *CLIError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}

	return e.Message
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *CLIError) Unwrap() error {
	return e.Cause
}

// New creates a new CLIError with the given message and exit code.
func New(code int, message string) *CLIError {
	return &CLIError{
		Message: message,
		Code:    code,
	}
}

// WithHint adds a hint to the error.
func (e *CLIError) WithHint(hint string) *CLIError {
	e.Hint = hint
	return e
}

// As is a convenience function for errors.As with CLIError.
func As(err error, target **CLIError) bool {
	return errors.As(err, target)
}

// FromResolver maps a resolver error onto a CLIError with the contract's
// exit code and a condition-specific hint. Unrecognized errors map to the
// runtime code.
func FromResolver(err error) *CLIError {
	var cliErr *CLIError
	if errors.As(err, &cliErr) {
		return cliErr
	}

	var (
		invalidRef    *refs.InvalidReferenceError
		invalidOCIRef *oci.InvalidReferenceError
		invalidInput  *dist.InvalidInputError

		digestRequired *oci.DigestRequiredError
		offlineTagged  *oci.OfflineTaggedReferenceError
		offlineMissing *oci.OfflineMissingError
		offline        *dist.OfflineError

		cacheMiss *dist.CacheMissError
		auth      *dist.AuthRequiredError
		mismatch  *oci.DigestMismatchError
	)

	switch {
	case errors.As(err, &invalidRef), errors.As(err, &invalidOCIRef):
		return &CLIError{
			Message: err.Error(),
			Hint:    "Pass a digest, path, http(s) URL, or OCI reference like ghcr.io/org/name@sha256:...",
			Code:    ExitInvalid,
		}
	case errors.As(err, &invalidInput):
		return &CLIError{
			Message: err.Error(),
			Hint:    "Every lock entry needs a reference, ref, or digest field",
			Code:    ExitInvalid,
		}
	case errors.As(err, &cacheMiss):
		return &CLIError{
			Message: err.Error(),
			Hint:    "Run 'greentic-dist pull' for this reference first",
			Code:    ExitCacheMiss,
		}
	case errors.As(err, &digestRequired):
		return &CLIError{
			Message: err.Error(),
			Hint:    "Pin the reference with @sha256:... or enable tag references",
			Code:    ExitInvalid,
		}
	case errors.As(err, &offlineTagged), errors.As(err, &offlineMissing), errors.As(err, &offline):
		return &CLIError{
			Message: err.Error(),
			Hint:    "Re-run without --offline, or warm the cache while online",
			Code:    ExitOffline,
		}
	case errors.As(err, &auth):
		return &CLIError{
			Message: err.Error(),
			Hint:    "repo:// and store:// backends are not implemented yet",
			Code:    ExitAuth,
		}
	case errors.As(err, &mismatch):
		return &CLIError{
			Message: err.Error(),
			Hint:    "The registry served content that does not match the pinned digest; do not trust this artifact",
			Code:    ExitRuntime,
		}
	case isJSONError(err):
		return &CLIError{
			Message: err.Error(),
			Hint:    "The lockfile must be a JSON array of entries or an object with a components array",
			Code:    ExitInvalid,
		}
	default:
		return &CLIError{
			Message: err.Error(),
			Code:    ExitRuntime,
		}
	}
}

func isJSONError(err error) bool {
	var syntaxErr *json.SyntaxError

	var typeErr *json.UnmarshalTypeError

	return errors.As(err, &syntaxErr) || errors.As(err, &typeErr)
}
