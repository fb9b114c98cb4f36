package app

import (
	"go.trai.ch/parcel/internal/adapters/metrics" //nolint:depguard // Wired in app layer
	"go.trai.ch/parcel/internal/core/ports"
)

// Components contains all the initialized application components.
// This struct provides controlled access to components needed by the CLI layer.
type Components struct {
	App          *App
	Logger       ports.Logger
	ConfigLoader ports.ConfigLoader
	Metrics      *metrics.Recorder
}

// NewComponents creates a new Components struct from dependencies.
func NewComponents(app *App, logger ports.Logger, loader ports.ConfigLoader, recorder *metrics.Recorder) *Components {
	return &Components{
		App:          app,
		Logger:       logger,
		ConfigLoader: loader,
		Metrics:      recorder,
	}
}
