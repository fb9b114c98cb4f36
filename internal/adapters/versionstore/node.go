package versionstore

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/parcel/internal/adapters/logger"
	"go.trai.ch/parcel/internal/core/ports"
)

// NodeID is the unique identifier for the version store factory Graft node.
const NodeID graft.ID = "adapter.version_store"

func init() {
	graft.Register(graft.Node[ports.VersionStoreFactory]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{logger.NodeID},
		Run: func(ctx context.Context) (ports.VersionStoreFactory, error) {
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return NewFactory(log), nil
		},
	})
}
