package fs

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/parcel/internal/core/ports"
)

const (
	// FileSystemNodeID is the unique identifier for the file system Graft node.
	FileSystemNodeID graft.ID = "adapter.fs.filesystem"
	// HasherNodeID is the unique identifier for the hasher Graft node.
	HasherNodeID graft.ID = "adapter.fs.hasher"
)

func init() {
	graft.Register(graft.Node[ports.FileSystem]{
		ID:        FileSystemNodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.FileSystem, error) {
			return NewWalker(), nil
		},
	})

	graft.Register(graft.Node[ports.FileHasher]{
		ID:        HasherNodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.FileHasher, error) {
			return NewHasher(), nil
		},
	})
}
