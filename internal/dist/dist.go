// Package dist is the top-level component resolver: it classifies a
// reference, fetches from the matching source when needed, and serves
// everything through the content-addressed cache.
package dist

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/greentic-ai/greentic-distributor-client/internal/cache"
	"github.com/greentic-ai/greentic-distributor-client/internal/digest"
	"github.com/greentic-ai/greentic-distributor-client/internal/observability"
	"github.com/greentic-ai/greentic-distributor-client/internal/oci"
	"github.com/greentic-ai/greentic-distributor-client/internal/paths"
	"github.com/greentic-ai/greentic-distributor-client/internal/refs"
)

// EnvOffline defaults the client to offline mode when set to "1".
const EnvOffline = "GREENTIC_DIST_OFFLINE"

// Options configures a Client.
type Options struct {
	CacheDir  string
	AllowTags bool
	Offline   bool
}

// DefaultOptions returns options with the standard cache root, tags
// allowed, and offline taken from GREENTIC_DIST_OFFLINE.
func DefaultOptions() Options {
	return Options{
		CacheDir:  paths.ComponentCacheDir(),
		AllowTags: true,
		Offline:   os.Getenv(EnvOffline) == "1",
	}
}

// Source tags where a resolved artifact came from.
type Source struct {
	Kind  refs.Kind
	Value string
}

// ResolvedArtifact is the result of resolving a reference. CachePath is
// empty only for a digest-kind lookup that missed.
type ResolvedArtifact struct {
	Digest    string
	CachePath string
	Fetched   bool
	Source    Source
}

// Client resolves component references against the cache and remote
// sources.
type Client struct {
	cache *cache.Store
	oci   *oci.Resolver
	http  *http.Client
	opts  Options
}

// New creates a client with the default registry client.
func New(opts Options) *Client {
	return newClient(opts, oci.NewResolver(ociOptions(opts)))
}

// NewWithRegistryClient creates a client whose OCI pulls go through the
// given registry client. Tests use this to avoid the network.
func NewWithRegistryClient(opts Options, registryClient oci.RegistryClient) *Client {
	return newClient(opts, oci.NewResolverWithClient(registryClient, ociOptions(opts)))
}

func newClient(opts Options, resolver *oci.Resolver) *Client {
	// Proxies are deliberately not consulted: component fetches go
	// straight to the named host.
	transport := otelhttp.NewTransport(&http.Transport{})

	return &Client{
		cache: cache.New(opts.CacheDir),
		oci:   resolver,
		http:  &http.Client{Transport: transport},
		opts:  opts,
	}
}

func ociOptions(opts Options) oci.ResolveOptions {
	resolveOpts := oci.DefaultResolveOptions(opts.CacheDir)
	resolveOpts.AllowTags = opts.AllowTags
	resolveOpts.Offline = opts.Offline

	return resolveOpts
}

// ResolveRef classifies and resolves a single reference.
//
// Digest references report the cache state without fetching; missing from
// cache is not an error here, only EnsureCached distinguishes.
func (c *Client) ResolveRef(ctx context.Context, reference string) (*ResolvedArtifact, error) {
	classified, err := refs.Classify(reference)
	if err != nil {
		return nil, err
	}

	switch classified.Kind {
	case refs.KindDigest:
		artifact := &ResolvedArtifact{
			Digest: classified.Value,
			Source: Source{Kind: refs.KindDigest},
		}
		if path, ok := c.cache.ExistingComponent(classified.Value); ok {
			artifact.CachePath = path
		}

		return artifact, nil
	case refs.KindHTTP:
		return c.fetchHTTP(ctx, classified.Value)
	case refs.KindFile:
		return c.ingestFile(ctx, classified.Value)
	case refs.KindOCI:
		return c.pullOCI(ctx, classified.Value)
	case refs.KindRepo, refs.KindStore:
		return nil, &AuthRequiredError{Target: classified.Value}
	default:
		return nil, &refs.InvalidReferenceError{Reference: reference, Reason: "unhandled reference kind"}
	}
}

// EnsureCached resolves a reference and requires the artifact to be present
// in the cache afterwards.
func (c *Client) EnsureCached(ctx context.Context, reference string) (*ResolvedArtifact, error) {
	resolved, err := c.ResolveRef(ctx, reference)
	if err != nil {
		return nil, err
	}

	if resolved.CachePath != "" {
		if _, err := os.Stat(resolved.CachePath); err == nil {
			return resolved, nil
		}
	}

	return nil, &CacheMissError{Reference: reference}
}

// FetchDigest returns the cached artifact path for a digest, in canonical
// or bare-hex form.
func (c *Client) FetchDigest(dgst string) (string, error) {
	normalized := digest.Normalize(dgst)

	path, ok := c.cache.ExistingComponent(normalized)
	if !ok {
		return "", &CacheMissError{Reference: normalized}
	}

	return path, nil
}

// ListCache enumerates cached digests.
func (c *Client) ListCache() []string {
	return c.cache.ListDigests()
}

// RemoveCached deletes the cache entries for the given digests.
func (c *Client) RemoveCached(digests []string) error {
	return c.cache.Remove(digests)
}

// GC reclaims dangling cache entries and returns the removed digests.
func (c *Client) GC() ([]string, error) {
	return c.cache.GC()
}

func (c *Client) fetchHTTP(ctx context.Context, url string) (*ResolvedArtifact, error) {
	if c.opts.Offline {
		return nil, &OfflineError{Reference: url}
	}

	logger := observability.FromContext(ctx).With(
		slog.String("component", "dist"),
		slog.String("dist.url", url))
	logger.Info("fetching component over http", slog.String("event.type", "dist.fetch.http.start"))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &HTTPError{URL: url, Err: err}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &HTTPError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &HTTPError{URL: url, Err: fmt.Errorf("unexpected status %s", resp.Status)}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &HTTPError{URL: url, Err: err}
	}

	dgst := digest.ForBytes(data)

	path, err := c.cache.Write(dgst, data, url, resp.Header.Get("Content-Type"), "")
	if err != nil {
		return nil, err
	}

	logger.Info("component fetched",
		slog.String("event.type", "dist.fetch.http.ok"),
		slog.String("dist.digest", dgst))

	return &ResolvedArtifact{
		Digest:    dgst,
		CachePath: path,
		Fetched:   true,
		Source:    Source{Kind: refs.KindHTTP, Value: url},
	}, nil
}

func (c *Client) ingestFile(ctx context.Context, path string) (*ResolvedArtifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read component %q: %w", path, err)
	}

	dgst := digest.ForBytes(data)

	cached, err := c.cache.Write(dgst, data, path, "", "")
	if err != nil {
		return nil, err
	}

	observability.FromContext(ctx).Info("component ingested from file",
		slog.String("component", "dist"),
		slog.String("event.type", "dist.ingest.file.ok"),
		slog.String("dist.path", path),
		slog.String("dist.digest", dgst))

	return &ResolvedArtifact{
		Digest:    dgst,
		CachePath: cached,
		Fetched:   true,
		Source:    Source{Kind: refs.KindFile, Value: path},
	}, nil
}

// pullOCI delegates to the OCI resolver, which owns the offline policy:
// pinned digests already in cache hit without network, everything else is
// rejected before any pull.
func (c *Client) pullOCI(ctx context.Context, reference string) (*ResolvedArtifact, error) {
	results, err := c.oci.ResolveRefs(ctx, oci.Request{Refs: []string{reference}, Mode: oci.ModeEager})
	if err != nil {
		return nil, err
	}

	if len(results) == 0 {
		return nil, &refs.InvalidReferenceError{Reference: reference, Reason: "resolver returned no result"}
	}

	resolved := results[0]

	return &ResolvedArtifact{
		Digest:    resolved.ResolvedDigest,
		CachePath: resolved.Path,
		Fetched:   resolved.FetchedFromNetwork,
		Source:    Source{Kind: refs.KindOCI, Value: reference},
	}, nil
}
