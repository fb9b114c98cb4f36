// Package config provides the configuration loader for parcel.
package config

import (
	"errors"
	"os"
	"path/filepath"

	"go.trai.ch/parcel/internal/core/domain"
	"go.trai.ch/parcel/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

var _ ports.ConfigLoader = (*Loader)(nil)

// Loader implements ports.ConfigLoader using a YAML file.
type Loader struct {
	Logger ports.Logger
}

// NewLoader creates a new Loader with the given logger.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{Logger: logger}
}

// Load finds parcel.yaml in cwd or one of its parents and reads it.
func (l *Loader) Load(cwd string) (domain.Settings, error) {
	configPath, err := findConfiguration(cwd)
	if err != nil {
		return domain.DefaultSettings(), err
	}
	return l.LoadFile(configPath)
}

// LoadFile reads the settings from configPath. Unset values keep their defaults
// and relative directories resolve against the directory holding the file.
func (l *Loader) LoadFile(configPath string) (domain.Settings, error) {
	settings := domain.DefaultSettings()

	var parcelfile Parcelfile
	if err := readAndUnmarshalYAML(configPath, &parcelfile); err != nil {
		return settings, zerr.With(err, "path", configPath)
	}

	if parcelfile.Version != "" && parcelfile.Version != "1" {
		l.Logger.Warn("unknown config version " + parcelfile.Version + " in " + configPath)
	}

	mode, err := domain.ParseMode(parcelfile.Mode)
	if err != nil {
		return settings, zerr.With(err, "path", configPath)
	}
	settings.Mode = mode

	configDir := filepath.Dir(configPath)
	settings.RemoteURL = parcelfile.Remote.URL
	settings.CatalogVersion = parcelfile.Remote.Catalog
	if parcelfile.Remote.Timeout > 0 {
		settings.TransferTimeout = parcelfile.Remote.Timeout
	}
	if parcelfile.Storage.Local != "" {
		settings.LocalDir = resolveDir(configDir, parcelfile.Storage.Local)
	} else {
		settings.LocalDir = resolveDir(configDir, settings.LocalDir)
	}
	if parcelfile.Storage.Shared != "" {
		settings.SharedDir = resolveDir(configDir, parcelfile.Storage.Shared)
	}
	if parcelfile.Transfers.MaxConcurrent > 0 {
		settings.MaxTransfers = parcelfile.Transfers.MaxConcurrent
	}
	if parcelfile.Reclaim.Cooldown > 0 {
		settings.ReclaimCooldown = parcelfile.Reclaim.Cooldown
	}

	return settings, nil
}

func findConfiguration(cwd string) (string, error) {
	currentDir := cwd
	for {
		candidate := filepath.Join(currentDir, domain.ConfigFileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			// Reached root
			break
		}
		currentDir = parentDir
	}

	return "", zerr.With(zerr.Wrap(domain.ErrConfigNotFound, "find configuration"), "cwd", cwd)
}

func resolveDir(base, dir string) string {
	if filepath.IsAbs(dir) {
		return filepath.Clean(dir)
	}
	return filepath.Clean(filepath.Join(base, dir))
}

// readAndUnmarshalYAML reads a YAML file and unmarshals it into the target struct.
func readAndUnmarshalYAML[T any](configPath string, target *T) error {
	// #nosec G304 -- configPath is validated by caller
	configFile, err := os.ReadFile(configPath)
	if err != nil {
		return errors.Join(domain.ErrConfigReadFailed, err)
	}

	if parseErr := yaml.Unmarshal(configFile, target); parseErr != nil {
		return errors.Join(domain.ErrConfigParseFailed, parseErr)
	}

	return nil
}
