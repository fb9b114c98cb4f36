package ports

import "go.trai.ch/parcel/internal/core/domain"

// ConfigLoader defines the interface for loading runtime settings.
//
//go:generate mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load discovers parcel.yaml by walking up from cwd and returns the settings it describes.
	Load(cwd string) (domain.Settings, error)

	// LoadFile reads the settings from an explicit file path.
	LoadFile(path string) (domain.Settings, error)
}
