package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/parcel/internal/adapters/config"       //nolint:depguard // Wired in app layer
	"go.trai.ch/parcel/internal/adapters/fs"           //nolint:depguard // Wired in app layer
	"go.trai.ch/parcel/internal/adapters/logger"       //nolint:depguard // Wired in app layer
	"go.trai.ch/parcel/internal/adapters/metrics"      //nolint:depguard // Wired in app layer
	"go.trai.ch/parcel/internal/adapters/telemetry"    //nolint:depguard // Wired in app layer
	"go.trai.ch/parcel/internal/adapters/transport"    //nolint:depguard // Wired in app layer
	"go.trai.ch/parcel/internal/adapters/versionstore" //nolint:depguard // Wired in app layer
	"go.trai.ch/parcel/internal/core/ports"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the App components Graft node.
	ComponentsNodeID graft.ID = "app.components"
)

func init() {
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			logger.NodeID,
			telemetry.TracerNodeID,
			metrics.NodeID,
			fs.FileSystemNodeID,
			fs.HasherNodeID,
			versionstore.NodeID,
			transport.NodeID,
		},
		Run: runAppNode,
	})

	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			AppNodeID,
			logger.NodeID,
			config.NodeID,
			metrics.NodeID,
		},
		Run: runComponentsNode,
	})
}

func runAppNode(ctx context.Context) (*App, error) {
	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}

	tracer, err := graft.Dep[ports.Tracer](ctx)
	if err != nil {
		return nil, err
	}

	recorder, err := graft.Dep[*metrics.Recorder](ctx)
	if err != nil {
		return nil, err
	}

	files, err := graft.Dep[ports.FileSystem](ctx)
	if err != nil {
		return nil, err
	}

	hasher, err := graft.Dep[ports.FileHasher](ctx)
	if err != nil {
		return nil, err
	}

	stores, err := graft.Dep[ports.VersionStoreFactory](ctx)
	if err != nil {
		return nil, err
	}

	transports, err := graft.Dep[ports.TransportFactory](ctx)
	if err != nil {
		return nil, err
	}

	return New(log, tracer, recorder, files, hasher, stores, transports), nil
}

func runComponentsNode(ctx context.Context) (*Components, error) {
	app, err := graft.Dep[*App](ctx)
	if err != nil {
		return nil, err
	}

	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}

	loader, err := graft.Dep[ports.ConfigLoader](ctx)
	if err != nil {
		return nil, err
	}

	recorder, err := graft.Dep[*metrics.Recorder](ctx)
	if err != nil {
		return nil, err
	}

	return NewComponents(app, log, loader, recorder), nil
}
