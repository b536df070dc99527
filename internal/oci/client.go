package oci

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/google/go-containerregistry/pkg/authn"
	"github.com/google/go-containerregistry/pkg/name"
	v1 "github.com/google/go-containerregistry/pkg/v1"
	"github.com/google/go-containerregistry/pkg/v1/remote"
	"github.com/google/go-containerregistry/pkg/v1/types"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// PulledLayer is one layer returned by a registry pull. Digest is empty when
// the registry did not report one; when present it is assumed to be sha256.
type PulledLayer struct {
	MediaType string
	Data      []byte
	Digest    string
}

// PulledImage is the result of pulling a manifest and its layers. Digest is
// the registry-reported manifest digest, empty if unknown.
type PulledImage struct {
	Digest string
	Layers []PulledLayer
}

// RegistryClient is the narrow capability the resolver depends on. Tests
// substitute an in-memory map; production uses anonymous HTTPS.
type RegistryClient interface {
	Pull(ctx context.Context, ref name.Reference, acceptedManifestTypes []string) (*PulledImage, error)
}

type registryClient struct {
	transport http.RoundTripper
}

// NewRegistryClient returns the default registry client: HTTPS transport,
// anonymous authentication, OTel-instrumented. go-containerregistry
// negotiates the standard manifest media types on the wire; the accepted
// set is enforced against the returned descriptor.
func NewRegistryClient() RegistryClient {
	return &registryClient{
		transport: otelhttp.NewTransport(remote.DefaultTransport),
	}
}

func (c *registryClient) Pull(ctx context.Context, ref name.Reference, acceptedManifestTypes []string) (*PulledImage, error) {
	desc, err := remote.Get(ref,
		remote.WithContext(ctx),
		remote.WithAuth(authn.Anonymous),
		remote.WithTransport(c.transport),
	)
	if err != nil {
		return nil, err
	}

	if !manifestTypeAccepted(desc.MediaType, acceptedManifestTypes) {
		return nil, fmt.Errorf("manifest media type %q not accepted", desc.MediaType)
	}

	img, err := descriptorImage(desc)
	if err != nil {
		return nil, err
	}

	layers, err := img.Layers()
	if err != nil {
		return nil, fmt.Errorf("read layers: %w", err)
	}

	pulled := &PulledImage{
		Digest: desc.Digest.String(),
		Layers: make([]PulledLayer, 0, len(layers)),
	}

	for _, layer := range layers {
		converted, err := convertLayer(layer)
		if err != nil {
			return nil, err
		}

		pulled.Layers = append(pulled.Layers, converted)
	}

	return pulled, nil
}

// descriptorImage resolves a descriptor to a single image, unwrapping an
// index to its first manifest. Component indexes carry no platform
// variants, so platform selection does not apply.
func descriptorImage(desc *remote.Descriptor) (v1.Image, error) {
	switch desc.MediaType {
	case types.OCIImageIndex, types.DockerManifestList:
		idx, err := desc.ImageIndex()
		if err != nil {
			return nil, fmt.Errorf("read image index: %w", err)
		}

		manifest, err := idx.IndexManifest()
		if err != nil {
			return nil, fmt.Errorf("read index manifest: %w", err)
		}

		if len(manifest.Manifests) == 0 {
			return nil, fmt.Errorf("image index has no manifests")
		}

		img, err := idx.Image(manifest.Manifests[0].Digest)
		if err != nil {
			return nil, fmt.Errorf("read indexed image: %w", err)
		}

		return img, nil
	default:
		img, err := desc.Image()
		if err != nil {
			return nil, fmt.Errorf("read image: %w", err)
		}

		return img, nil
	}
}

// convertLayer reads a layer's raw blob bytes. Compressed returns the blob
// exactly as stored, so its digest matches the manifest's layer digest even
// for non-tar wasm content.
func convertLayer(layer v1.Layer) (PulledLayer, error) {
	mediaType, err := layer.MediaType()
	if err != nil {
		return PulledLayer{}, fmt.Errorf("read layer media type: %w", err)
	}

	rc, err := layer.Compressed()
	if err != nil {
		return PulledLayer{}, fmt.Errorf("open layer blob: %w", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return PulledLayer{}, fmt.Errorf("read layer blob: %w", err)
	}

	layerDigest := ""
	if d, err := layer.Digest(); err == nil {
		layerDigest = d.String()
	}

	return PulledLayer{
		MediaType: string(mediaType),
		Data:      data,
		Digest:    layerDigest,
	}, nil
}

func manifestTypeAccepted(mediaType types.MediaType, accepted []string) bool {
	if len(accepted) == 0 {
		return true
	}

	for _, a := range accepted {
		if string(mediaType) == a {
			return true
		}
	}

	return false
}
