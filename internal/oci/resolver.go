// Package oci resolves OCI registry references to verified, cached
// component artifacts.
//
// The resolver is parameterized over a narrow RegistryClient capability (one
// Pull operation) so tests can substitute an in-memory registry. Offline
// mode is a policy gate checked after classification and cache lookup but
// before any network call: pinned digests that are already cached always
// hit, everything else is rejected.
package oci

import (
	"context"
	"log/slog"

	"github.com/google/go-containerregistry/pkg/name"

	"github.com/greentic-ai/greentic-distributor-client/internal/cache"
	"github.com/greentic-ai/greentic-distributor-client/internal/digest"
	"github.com/greentic-ai/greentic-distributor-client/internal/observability"
)

// OCIArtifactManifestMediaType is the OCI v1 artifact manifest media type,
// which go-containerregistry's types package does not name.
const OCIArtifactManifestMediaType = "application/vnd.oci.artifact.manifest.v1+json"

// DefaultAcceptedManifestTypes lists the manifest media types the resolver
// accepts. The default registry client checks the fetched descriptor's media
// type against this list; it does not send the list as the Accept header of
// the manifest GET, which go-containerregistry sets itself.
var DefaultAcceptedManifestTypes = []string{
	OCIArtifactManifestMediaType,
	"application/vnd.oci.image.manifest.v1+json",
	"application/vnd.oci.image.index.v1+json",
	"application/vnd.docker.distribution.manifest.v2+json",
	"application/vnd.docker.distribution.manifest.list.v2+json",
}

// DefaultLayerMediaTypes is the preferred component layer media types, in
// priority order.
var DefaultLayerMediaTypes = []string{
	"application/vnd.wasm.component.v1+wasm",
	"application/vnd.module.wasm.content.layer.v1+wasm",
	"application/vnd.greentic.component.manifest+json",
	"application/wasm",
	"application/octet-stream",
}

// Mode selects how callers interpret a batch of component references.
type Mode string

const (
	// ModeEager resolves every reference up front.
	ModeEager Mode = "eager"
	// ModeLazy is recorded for callers but does not change resolution
	// semantics here; resolutions proceed fully.
	ModeLazy Mode = "lazy"
)

// Request is a batch of component references to resolve.
type Request struct {
	Refs []string
	Mode Mode
}

// ResolveOptions configures a Resolver.
type ResolveOptions struct {
	AllowTags             bool
	Offline               bool
	CacheDir              string
	AcceptedManifestTypes []string
	PreferredLayerTypes   []string
}

// DefaultResolveOptions returns resolver options with tags disallowed and
// the standard media type sets.
func DefaultResolveOptions(cacheDir string) ResolveOptions {
	return ResolveOptions{
		AllowTags:             false,
		Offline:               false,
		CacheDir:              cacheDir,
		AcceptedManifestTypes: DefaultAcceptedManifestTypes,
		PreferredLayerTypes:   DefaultLayerMediaTypes,
	}
}

// ResolvedComponent is the result of resolving a single reference.
type ResolvedComponent struct {
	OriginalReference  string
	ResolvedDigest     string
	MediaType          string
	Path               string
	FetchedFromNetwork bool
	ManifestDigest     string
}

// Resolver resolves component references against a registry, keeping a
// content-addressed cache of verified artifacts.
type Resolver struct {
	client RegistryClient
	opts   ResolveOptions
	store  *cache.Store
}

// NewResolver creates a resolver backed by the default anonymous HTTPS
// registry client.
func NewResolver(opts ResolveOptions) *Resolver {
	return NewResolverWithClient(NewRegistryClient(), opts)
}

// NewResolverWithClient creates a resolver with a custom registry client.
func NewResolverWithClient(client RegistryClient, opts ResolveOptions) *Resolver {
	if len(opts.AcceptedManifestTypes) == 0 {
		opts.AcceptedManifestTypes = DefaultAcceptedManifestTypes
	}

	if len(opts.PreferredLayerTypes) == 0 {
		opts.PreferredLayerTypes = DefaultLayerMediaTypes
	}

	return &Resolver{
		client: client,
		opts:   opts,
		store:  cache.New(opts.CacheDir),
	}
}

// ResolveRefs resolves each reference in the request sequentially, in order.
// The first failure aborts the batch.
func (r *Resolver) ResolveRefs(ctx context.Context, req Request) ([]ResolvedComponent, error) {
	logger := observability.FromContext(ctx).With(
		slog.String("component", "oci"),
		slog.String("oci.mode", string(req.Mode)),
	)

	results := make([]ResolvedComponent, 0, len(req.Refs))

	for _, reference := range req.Refs {
		resolved, err := r.resolveSingle(ctx, logger, reference)
		if err != nil {
			return nil, err
		}

		results = append(results, resolved)
	}

	return results, nil
}

func (r *Resolver) resolveSingle(ctx context.Context, logger *slog.Logger, reference string) (ResolvedComponent, error) {
	parsed, err := name.ParseReference(reference)
	if err != nil {
		return ResolvedComponent{}, &InvalidReferenceError{Reference: reference, Reason: err.Error()}
	}

	expected := pinnedDigest(parsed)

	if expected == "" && !r.opts.AllowTags {
		return ResolvedComponent{}, &DigestRequiredError{Reference: reference}
	}

	if expected != "" {
		if hit, ok := r.tryHit(expected, reference); ok {
			logger.Info("component cache hit",
				slog.String("event.type", "oci.cache.hit"),
				slog.String("oci.reference", reference),
				slog.String("oci.digest", expected))

			return hit, nil
		}

		if r.opts.Offline {
			return ResolvedComponent{}, &OfflineMissingError{Reference: reference, Digest: expected}
		}
	} else if r.opts.Offline {
		return ResolvedComponent{}, &OfflineTaggedReferenceError{Reference: reference}
	}

	logger.Info("pulling component",
		slog.String("event.type", "oci.pull.start"),
		slog.String("oci.reference", reference))

	image, err := r.client.Pull(ctx, parsed, r.opts.AcceptedManifestTypes)
	if err != nil {
		return ResolvedComponent{}, &PullError{Reference: reference, Err: err}
	}

	layer, err := selectLayer(image.Layers, r.opts.PreferredLayerTypes, reference)
	if err != nil {
		return ResolvedComponent{}, err
	}

	resolvedDigest := image.Digest
	if resolvedDigest == "" {
		resolvedDigest = layer.Digest
	}

	if resolvedDigest == "" {
		resolvedDigest = digest.ForBytes(layer.Data)
	}

	resolvedDigest = digest.Normalize(resolvedDigest)

	if expected != "" && expected != resolvedDigest {
		return ResolvedComponent{}, &DigestMismatchError{
			Reference: reference,
			Expected:  expected,
			Actual:    resolvedDigest,
		}
	}

	manifestDigest := ""
	if image.Digest != "" {
		manifestDigest = digest.Normalize(image.Digest)
	}

	path, err := r.store.Write(resolvedDigest, layer.Data, reference, layer.MediaType, manifestDigest)
	if err != nil {
		return ResolvedComponent{}, err
	}

	logger.Info("component pulled",
		slog.String("event.type", "oci.pull.ok"),
		slog.String("oci.reference", reference),
		slog.String("oci.digest", resolvedDigest),
		slog.String("oci.media_type", layer.MediaType))

	return ResolvedComponent{
		OriginalReference:  reference,
		ResolvedDigest:     resolvedDigest,
		MediaType:          layer.MediaType,
		Path:               path,
		FetchedFromNetwork: true,
		ManifestDigest:     manifestDigest,
	}, nil
}

// tryHit returns a cached resolution for a pinned digest. The sidecar is
// optional on read; a missing one falls back to the default media type.
func (r *Resolver) tryHit(dgst, reference string) (ResolvedComponent, bool) {
	path, ok := r.store.ExistingComponent(dgst)
	if !ok {
		return ResolvedComponent{}, false
	}

	mediaType := cache.DefaultMediaType
	manifestDigest := ""

	if meta, err := r.store.ReadMetadata(dgst); err == nil {
		if meta.MediaType != "" {
			mediaType = meta.MediaType
		}

		manifestDigest = meta.ManifestDigest
	}

	return ResolvedComponent{
		OriginalReference:  reference,
		ResolvedDigest:     dgst,
		MediaType:          mediaType,
		Path:               path,
		FetchedFromNetwork: false,
		ManifestDigest:     manifestDigest,
	}, true
}

// pinnedDigest extracts the normalized @sha256 pin from a parsed reference,
// or "" for tag references.
func pinnedDigest(ref name.Reference) string {
	if d, ok := ref.(name.Digest); ok {
		return digest.Normalize(d.DigestStr())
	}

	return ""
}

// selectLayer picks the layer whose media type matches the highest-priority
// preference; with no match it falls back to the first layer.
func selectLayer(layers []PulledLayer, preferred []string, reference string) (*PulledLayer, error) {
	if len(layers) == 0 {
		return nil, &MissingLayersError{Reference: reference}
	}

	for _, mediaType := range preferred {
		for i := range layers {
			if layers[i].MediaType == mediaType {
				return &layers[i], nil
			}
		}
	}

	return &layers[0], nil
}
