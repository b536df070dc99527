// Package cache implements the content-addressed component store.
//
// Each cached artifact lives in a directory named by the bare 64-hex digest
// under the store root, holding the artifact bytes as component.wasm and a
// metadata.json sidecar. A directory without component.wasm is dangling: it
// never satisfies a lookup and GC reclaims it.
package cache

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/greentic-ai/greentic-distributor-client/internal/digest"
)

const (
	// ComponentFileName is the fixed artifact file name inside a cache entry.
	ComponentFileName = "component.wasm"
	// MetadataFileName is the sidecar file name inside a cache entry.
	MetadataFileName = "metadata.json"

	// DefaultMediaType is assumed when a sidecar is missing or unreadable.
	DefaultMediaType = "application/octet-stream"
)

// Metadata is the JSON sidecar written next to every cached artifact.
type Metadata struct {
	OriginalReference    string `json:"original_reference"`
	ResolvedDigest       string `json:"resolved_digest"`
	MediaType            string `json:"media_type"`
	FetchedAtUnixSeconds uint64 `json:"fetched_at_unix_seconds"`
	SizeBytes            uint64 `json:"size_bytes"`
	ManifestDigest       string `json:"manifest_digest,omitempty"`
}

// Store is a directory-rooted content-addressed store.
type Store struct {
	root string
}

// New creates a store rooted at dir. The directory is created lazily on the
// first write.
func New(dir string) *Store {
	return &Store{root: dir}
}

// Root returns the store's root directory.
func (s *Store) Root() string {
	return s.root
}

// ComponentDir returns the entry directory for a digest. The digest may be
// given in canonical or bare-hex form.
func (s *Store) ComponentDir(dgst string) string {
	return filepath.Join(s.root, digest.TrimPrefix(digest.Normalize(dgst)))
}

// ComponentPath returns the artifact file path for a digest, whether or not
// it exists.
func (s *Store) ComponentPath(dgst string) string {
	return filepath.Join(s.ComponentDir(dgst), ComponentFileName)
}

// ExistingComponent returns the artifact path for a digest if the artifact
// file is present. A dangling directory does not count.
func (s *Store) ExistingComponent(dgst string) (string, bool) {
	path := s.ComponentPath(dgst)
	if _, err := os.Stat(path); err != nil {
		return "", false
	}

	return path, true
}

// Write stores data under dgst together with its metadata sidecar and
// returns the artifact path. Writing the same digest twice overwrites with
// identical content, so concurrent writers cannot corrupt an entry.
func (s *Store) Write(dgst string, data []byte, ref, mediaType, manifestDigest string) (string, error) {
	if mediaType == "" {
		mediaType = DefaultMediaType
	}

	dir := s.ComponentDir(dgst)
	if err := os.MkdirAll(dir, 0o755); err != nil { //nolint:gosec // G301: cache dirs are readable
		return "", fmt.Errorf("create cache entry for %q: %w", ref, err)
	}

	artifactPath := filepath.Join(dir, ComponentFileName)
	if err := os.WriteFile(artifactPath, data, 0o644); err != nil { //nolint:gosec // G306: cache files are readable
		return "", fmt.Errorf("write component for %q: %w", ref, err)
	}

	meta := Metadata{
		OriginalReference:    ref,
		ResolvedDigest:       digest.Normalize(dgst),
		MediaType:            mediaType,
		FetchedAtUnixSeconds: uint64(time.Now().Unix()), //nolint:gosec // G115: unix time is non-negative
		SizeBytes:            uint64(len(data)),
		ManifestDigest:       manifestDigest,
	}

	buf, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal cache metadata for %q: %w", ref, err)
	}

	if err := os.WriteFile(filepath.Join(dir, MetadataFileName), buf, 0o644); err != nil { //nolint:gosec // G306
		return "", fmt.Errorf("write cache metadata for %q: %w", ref, err)
	}

	return artifactPath, nil
}

// ReadMetadata loads the sidecar for a digest. Callers tolerate failure:
// a cache entry without a readable sidecar is still a valid artifact.
func (s *Store) ReadMetadata(dgst string) (*Metadata, error) {
	buf, err := os.ReadFile(filepath.Join(s.ComponentDir(dgst), MetadataFileName))
	if err != nil {
		return nil, fmt.Errorf("read cache metadata: %w", err)
	}

	var meta Metadata
	if err := json.Unmarshal(buf, &meta); err != nil {
		return nil, fmt.Errorf("parse cache metadata: %w", err)
	}

	return &meta, nil
}

// ListDigests enumerates every entry directory as a canonical digest.
// Non-directories and unreadable entries are skipped.
func (s *Store) ListDigests() []string {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil
	}

	digests := make([]string, 0, len(entries))

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		digests = append(digests, digest.Normalize(entry.Name()))
	}

	return digests
}

// Remove deletes the entries for the given digests. Missing entries are not
// errors.
func (s *Store) Remove(digests []string) error {
	for _, dgst := range digests {
		dir := s.ComponentDir(dgst)
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			continue
		}

		if err := os.RemoveAll(dir); err != nil {
			return fmt.Errorf("remove cache entry %s: %w", dgst, err)
		}
	}

	return nil
}

// GC removes dangling entries (directories without component.wasm) and
// returns the digests it reclaimed.
func (s *Store) GC() ([]string, error) {
	var removed []string

	for _, dgst := range s.ListDigests() {
		if _, ok := s.ExistingComponent(dgst); ok {
			continue
		}

		if err := os.RemoveAll(s.ComponentDir(dgst)); err != nil {
			slog.Default().Warn("failed to reclaim dangling cache entry",
				slog.String("component", "cache"),
				slog.String("cache.digest", dgst),
				slog.String("error", err.Error()))

			continue
		}

		removed = append(removed, dgst)
	}

	return removed, nil
}
