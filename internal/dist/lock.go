package dist

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/greentic-ai/greentic-distributor-client/internal/digest"
	"github.com/greentic-ai/greentic-distributor-client/internal/lockfile"
	"github.com/greentic-ai/greentic-distributor-client/internal/observability"
)

// PullLock resolves every entry of a lockfile, sequentially and in document
// order, failing fast on the first entry that cannot be resolved.
//
// An entry's explicit digest is authoritative: it overrides whatever the
// resolver computed, and it is the preferred cache key. When the digest
// key misses, the entry's reference is resolved as a fallback.
func (c *Client) PullLock(ctx context.Context, lockPath string) ([]ResolvedArtifact, error) {
	data, err := os.ReadFile(lockPath)
	if err != nil {
		return nil, fmt.Errorf("read lockfile %q: %w", lockPath, err)
	}

	entries, err := lockfile.Parse(data)
	if err != nil {
		return nil, err
	}

	logger := observability.FromContext(ctx).With(
		slog.String("component", "dist"),
		slog.String("dist.lockfile", lockPath))
	logger.Info("resolving lockfile",
		slog.String("event.type", "dist.lock.start"),
		slog.Int("dist.lock.entries", len(entries)))

	resolved := make([]ResolvedArtifact, 0, len(entries))

	for _, entry := range entries {
		if entry.Reference == "" {
			return nil, &InvalidInputError{Msg: "lock entry missing ref"}
		}

		authoritative := entry.Digest
		if authoritative == "" {
			if c.opts.Offline {
				return nil, &OfflineError{Reference: entry.Reference}
			}

			item, err := c.ResolveRef(ctx, entry.Reference)
			if err != nil {
				return nil, err
			}

			authoritative = item.Digest
		}

		cacheKey := entry.Digest
		if cacheKey == "" {
			cacheKey = entry.Reference
		}

		item, err := c.EnsureCached(ctx, cacheKey)
		if err != nil {
			item, err = c.EnsureCached(ctx, entry.Reference)
			if err != nil {
				return nil, err
			}
		}

		item.Digest = digest.Normalize(authoritative)
		resolved = append(resolved, *item)
	}

	logger.Info("lockfile resolved", slog.String("event.type", "dist.lock.ok"))

	return resolved, nil
}
