package cas

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/redo/internal/core/ports"
)

// NodeID is the unique identifier for the hash store opener Graft node.
const NodeID graft.ID = "adapter.hash_store_opener"

func init() {
	graft.Register(graft.Node[ports.HashStoreOpener]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.HashStoreOpener, error) {
			return NewOpener(), nil
		},
	})
}
