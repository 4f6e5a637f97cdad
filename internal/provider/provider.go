// Package provider abstracts the external lineage data provider. The engine
// consumes it only through this contract: a payload fetch, a stats fetch,
// and a refresh trigger.
package provider

import (
	"context"

	"github.com/fabriclens/fabriclens/internal/graph"
)

// Source supplies the raw lineage dataset.
type Source interface {
	// Graph fetches the full raw payload.
	Graph(ctx context.Context) (*graph.Payload, error)
	// Stats fetches the provider-side summary counts.
	Stats(ctx context.Context) (*graph.Stats, error)
	// Refresh asks the provider to rebuild its dataset. On success the
	// caller must re-fetch Graph and Stats.
	Refresh(ctx context.Context) error
}
