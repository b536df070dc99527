// Package refs classifies user-supplied component references.
//
// A reference is an opaque string naming an artifact indirectly: a content
// digest, a URL, a local path, or an OCI registry reference. Classification
// is pure apart from a filesystem existence probe; it never touches the
// cache or the network.
package refs

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/google/go-containerregistry/pkg/name"

	"github.com/greentic-ai/greentic-distributor-client/internal/digest"
)

// Kind tags the classification of a reference.
type Kind int

const (
	// KindDigest is a canonical sha256 digest string.
	KindDigest Kind = iota
	// KindHTTP is an http:// or https:// URL.
	KindHTTP
	// KindFile is a local filesystem path (bare or file:// URL).
	KindFile
	// KindOCI is a registry reference, with any oci:// scheme stripped.
	KindOCI
	// KindRepo is a repo:// backend target (auth stub).
	KindRepo
	// KindStore is a store:// backend target (auth stub).
	KindStore
)

// String returns the kind's name for logs and error messages.
func (k Kind) String() string {
	switch k {
	case KindDigest:
		return "digest"
	case KindHTTP:
		return "http"
	case KindFile:
		return "file"
	case KindOCI:
		return "oci"
	case KindRepo:
		return "repo"
	case KindStore:
		return "store"
	default:
		return "unknown"
	}
}

// Ref is a classified reference. Value holds the normalized digest for
// KindDigest, the path for KindFile, the registry reference for KindOCI,
// and the original string otherwise.
type Ref struct {
	Kind  Kind
	Value string
}

// InvalidReferenceError reports a string that matches no reference form.
type InvalidReferenceError struct {
	Reference string
	Reason    string
}

func (e *InvalidReferenceError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("invalid reference %q: %s", e.Reference, e.Reason)
	}

	return fmt.Sprintf("invalid reference %q", e.Reference)
}

// Classify maps an input string to its reference kind.
//
// Tie-breaking order: digest form, recognized URL scheme, existing local
// path, OCI reference grammar. A string with an unrecognized URL scheme can
// still classify as a path or OCI reference.
func Classify(input string) (Ref, error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return Ref{}, &InvalidReferenceError{Reference: input, Reason: "empty reference"}
	}

	if digest.IsDigest(s) {
		return Ref{Kind: KindDigest, Value: digest.Normalize(s)}, nil
	}

	if u, err := url.Parse(s); err == nil {
		switch u.Scheme {
		case "http", "https":
			return Ref{Kind: KindHTTP, Value: s}, nil
		case "file":
			if u.Path != "" {
				return Ref{Kind: KindFile, Value: u.Path}, nil
			}
		case "oci":
			return Ref{Kind: KindOCI, Value: strings.TrimPrefix(s, "oci://")}, nil
		case "repo":
			return Ref{Kind: KindRepo, Value: s}, nil
		case "store":
			return Ref{Kind: KindStore, Value: s}, nil
		}
	}

	if _, err := os.Stat(s); err == nil {
		return Ref{Kind: KindFile, Value: s}, nil
	}

	if _, err := name.ParseReference(s); err == nil {
		return Ref{Kind: KindOCI, Value: s}, nil
	}

	return Ref{}, &InvalidReferenceError{
		Reference: input,
		Reason:    "not a digest, URL, existing path, or OCI reference",
	}
}
