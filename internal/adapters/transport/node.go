package transport

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/parcel/internal/core/ports"
)

// NodeID is the unique identifier for the transport factory Graft node.
const NodeID graft.ID = "adapter.transport"

func init() {
	graft.Register(graft.Node[ports.TransportFactory]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.TransportFactory, error) {
			return NewFactory(nil), nil
		},
	})
}
