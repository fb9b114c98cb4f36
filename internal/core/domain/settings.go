package domain

import (
	"time"

	"go.trai.ch/zerr"
)

// Mode selects how content is sourced.
type Mode string

const (
	// ModeNetworked downloads stale packages from the remote source.
	ModeNetworked Mode = "networked"
	// ModeLocal reads packages from the shared content directory and never downloads.
	ModeLocal Mode = "local"
	// ModeSimulated skips transfers and file checks and advances versions as if
	// every download succeeded.
	ModeSimulated Mode = "simulated"
)

// ParseMode validates a mode name. The empty string selects ModeNetworked.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModeNetworked:
		return ModeNetworked, nil
	case ModeLocal, ModeSimulated:
		return Mode(s), nil
	default:
		return "", zerr.With(zerr.Wrap(ErrInvalidMode, "parse mode"), "mode", s)
	}
}

// Settings is the resolved runtime configuration.
type Settings struct {
	RemoteURL       string
	CatalogVersion  string
	LocalDir        string
	SharedDir       string
	Mode            Mode
	MaxTransfers    int
	ReclaimCooldown time.Duration
	TransferTimeout time.Duration
}

// DefaultSettings returns the settings used when no config file exists.
func DefaultSettings() Settings {
	return Settings{
		LocalDir:        DefaultLocalDir(),
		Mode:            ModeNetworked,
		MaxTransfers:    DefaultMaxTransfers,
		ReclaimCooldown: DefaultReclaimCooldown,
		TransferTimeout: DefaultTransferTimeout,
	}
}

// FetchRequest names one physical file to transfer.
type FetchRequest struct {
	// Key is the package name or single-file key the transfer belongs to.
	Key string
	// FileName is the remote object name and the installed file name.
	FileName string
	// Size is the expected size, or zero when unknown.
	Size int64
}
