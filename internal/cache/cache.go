// Package cache is the portal's list cache. Reads are keyed by
// (resource kind, page); mutations invalidate a whole kind by bumping its
// generation. A fetch records the generation it started under and its fill
// is dropped when that generation has moved on, so a slow stale response
// can never overwrite the effect of a newer invalidation.
package cache

import (
	"context"
	"fmt"
)

// Kind is a cached resource kind. Invalidation is per kind: any mutation
// of a kind stales every cached page of it.
type Kind string

const (
	KindUsers    Kind = "users"
	KindProjects Kind = "projects"
)

// Key identifies one cached list page.
type Key struct {
	Kind Kind
	Page int
}

func (k Key) String() string {
	return fmt.Sprintf("%s:%d", k.Kind, k.Page)
}

// Store is the list-cache contract shared by the in-process and Redis
// backends.
type Store interface {
	// Generation returns the kind's current generation. Fetches call this
	// before going upstream and pass the value back to Set.
	Generation(ctx context.Context, kind Kind) (uint64, error)

	// Get returns the cached payload for key at the kind's current
	// generation. Entries filled before an invalidation never hit.
	Get(ctx context.Context, key Key) ([]byte, bool, error)

	// Set stores the payload fetched under gen. A stale gen is silently
	// dropped; the caller's result is still served to its own request.
	Set(ctx context.Context, key Key, gen uint64, data []byte) error

	// Invalidate stales every cached page of the kind.
	Invalidate(ctx context.Context, kind Kind) error
}
