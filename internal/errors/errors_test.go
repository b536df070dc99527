package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/greentic-ai/greentic-distributor-client/internal/dist"
	"github.com/greentic-ai/greentic-distributor-client/internal/lockfile"
	"github.com/greentic-ai/greentic-distributor-client/internal/oci"
	"github.com/greentic-ai/greentic-distributor-client/internal/refs"
)

func TestCLIErrorError(t *testing.T) {
	err := New(ExitInvalid, "bad reference")
	if err.Error() != "bad reference" {
		t.Errorf("Error() = %q", err.Error())
	}

	cause := stderrors.New("boom")
	wrapped := &CLIError{Message: "outer", Cause: cause, Code: ExitRuntime}

	if wrapped.Error() != "outer: boom" {
		t.Errorf("Error() = %q", wrapped.Error())
	}

	if !stderrors.Is(wrapped, cause) {
		t.Error("errors.Is() does not find the cause")
	}
}

func TestWithHint(t *testing.T) {
	err := New(ExitCacheMiss, "not cached").WithHint("pull it first")
	if err.Hint != "pull it first" {
		t.Errorf("Hint = %q", err.Hint)
	}
}

func TestFromResolverExitCodes(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"invalid reference", &refs.InvalidReferenceError{Reference: "x"}, ExitInvalid},
		{"invalid oci reference", &oci.InvalidReferenceError{Reference: "x", Reason: "y"}, ExitInvalid},
		{"invalid input", &dist.InvalidInputError{Msg: "lock entry missing ref"}, ExitInvalid},
		{"digest required", &oci.DigestRequiredError{Reference: "x"}, ExitInvalid},
		{"cache miss", &dist.CacheMissError{Reference: "x"}, ExitCacheMiss},
		{"offline", &dist.OfflineError{Reference: "x"}, ExitOffline},
		{"offline tagged", &oci.OfflineTaggedReferenceError{Reference: "x"}, ExitOffline},
		{"offline missing", &oci.OfflineMissingError{Reference: "x", Digest: "sha256:y"}, ExitOffline},
		{"auth required", &dist.AuthRequiredError{Target: "repo://x"}, ExitAuth},
		{"digest mismatch", &oci.DigestMismatchError{Reference: "x", Expected: "a", Actual: "b"}, ExitRuntime},
		{"pull failed", &oci.PullError{Reference: "x", Err: stderrors.New("conn refused")}, ExitRuntime},
		{"plain error", stderrors.New("disk full"), ExitRuntime},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FromResolver(tt.err)
			if got.Code != tt.code {
				t.Errorf("FromResolver(%v).Code = %d, want %d", tt.err, got.Code, tt.code)
			}
		})
	}
}

func TestFromResolverBadJSON(t *testing.T) {
	_, parseErr := lockfile.Parse([]byte("not json"))
	if parseErr == nil {
		t.Fatal("Parse() error = nil")
	}

	got := FromResolver(parseErr)
	if got.Code != ExitInvalid {
		t.Errorf("FromResolver(json error).Code = %d, want %d", got.Code, ExitInvalid)
	}
}

func TestFromResolverWrappedErrors(t *testing.T) {
	inner := &dist.CacheMissError{Reference: "sha256:abc"}
	wrapped := fmt.Errorf("while pulling lock: %w", inner)

	got := FromResolver(wrapped)
	if got.Code != ExitCacheMiss {
		t.Errorf("FromResolver(wrapped).Code = %d, want %d", got.Code, ExitCacheMiss)
	}
}

func TestFromResolverPassesThroughCLIError(t *testing.T) {
	original := New(ExitAuth, "already mapped")
	if got := FromResolver(original); got != original {
		t.Error("FromResolver() re-wrapped an existing CLIError")
	}
}
