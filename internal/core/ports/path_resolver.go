package ports

import "go.trai.ch/parcel/internal/core/domain"

//go:generate mockgen -source=path_resolver.go -destination=mocks/mock_path_resolver.go -package=mocks

// PathResolver maps records to the directories they are read from.
type PathResolver interface {
	// InstallDir is the writable directory downloads land in.
	InstallDir() string
	// Dir returns the directory record's file is read from.
	Dir(record domain.AssetRecord) string
}
