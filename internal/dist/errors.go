package dist

import "fmt"

// OfflineError reports a remote fetch requested for an unpinned reference
// while offline.
type OfflineError struct {
	Reference string
}

func (e *OfflineError) Error() string {
	return fmt.Sprintf("offline mode forbids fetching %q", e.Reference)
}

// CacheMissError reports an artifact that could not be found locally.
type CacheMissError struct {
	Reference string
}

func (e *CacheMissError) Error() string {
	return fmt.Sprintf("reference %q is not cached", e.Reference)
}

// AuthRequiredError reports a repo:// or store:// backend, for which
// authentication is not implemented.
type AuthRequiredError struct {
	Target string
}

func (e *AuthRequiredError) Error() string {
	return fmt.Sprintf("auth not implemented for %q", e.Target)
}

// InvalidInputError reports structurally bad input, such as a lock entry
// without a reference.
type InvalidInputError struct {
	Msg string
}

func (e *InvalidInputError) Error() string {
	return "invalid input: " + e.Msg
}

// HTTPError wraps a transport failure while fetching an http(s) reference.
type HTTPError struct {
	URL string
	Err error
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("http fetch %q: %v", e.URL, e.Err)
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}
