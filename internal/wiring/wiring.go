// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/parcel/internal/adapters/config"
	_ "go.trai.ch/parcel/internal/adapters/fs"
	_ "go.trai.ch/parcel/internal/adapters/logger"
	_ "go.trai.ch/parcel/internal/adapters/metrics"
	_ "go.trai.ch/parcel/internal/adapters/telemetry"
	_ "go.trai.ch/parcel/internal/adapters/transport"
	_ "go.trai.ch/parcel/internal/adapters/versionstore"
	// Register app nodes.
	_ "go.trai.ch/parcel/internal/app"
)
