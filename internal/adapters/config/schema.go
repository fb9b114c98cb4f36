package config

import "time"

// Parcelfile represents the structure of the parcel.yaml configuration file.
type Parcelfile struct {
	Version   string       `yaml:"version"`
	Remote    RemoteDTO    `yaml:"remote"`
	Storage   StorageDTO   `yaml:"storage"`
	Mode      string       `yaml:"mode"`
	Transfers TransfersDTO `yaml:"transfers"`
	Reclaim   ReclaimDTO   `yaml:"reclaim"`
}

// RemoteDTO describes where content is downloaded from.
type RemoteDTO struct {
	URL     string        `yaml:"url"`
	Catalog string        `yaml:"catalog"`
	Timeout time.Duration `yaml:"timeout"`
}

// StorageDTO describes the local directories.
type StorageDTO struct {
	Local  string `yaml:"local"`
	Shared string `yaml:"shared"`
}

// TransfersDTO bounds transfer concurrency.
type TransfersDTO struct {
	MaxConcurrent int `yaml:"max_concurrent"`
}

// ReclaimDTO configures automatic cleanup of unreferenced files.
type ReclaimDTO struct {
	Cooldown time.Duration `yaml:"cooldown"`
}
