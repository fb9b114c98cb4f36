package app

import (
	"context"
	"time"

	"go.trai.ch/parcel/internal/core/domain"
)

// WithMode selects how content is sourced. It applies from the next Initialize.
func (a *App) WithMode(mode domain.Mode) *App {
	a.mu.Lock()
	defer a.mu.Unlock()
	if mode != "" {
		a.settings.Mode = mode
	}
	return a
}

// WithMaxTransfers bounds simultaneous transfers. It applies from the next Initialize.
func (a *App) WithMaxTransfers(n int) *App {
	a.mu.Lock()
	defer a.mu.Unlock()
	if n > 0 {
		a.settings.MaxTransfers = n
	}
	return a
}

// WithReclaimCooldown sets the minimum interval between automatic reclaim
// sweeps. It applies from the next Initialize.
func (a *App) WithReclaimCooldown(d time.Duration) *App {
	a.mu.Lock()
	defer a.mu.Unlock()
	if d >= 0 {
		a.settings.ReclaimCooldown = d
	}
	return a
}

// WithTransferTimeout bounds a single transfer. It applies from the next SetRemoteSource.
func (a *App) WithTransferTimeout(d time.Duration) *App {
	a.mu.Lock()
	defer a.mu.Unlock()
	if d >= 0 {
		a.settings.TransferTimeout = d
	}
	return a
}

// Settings returns the active settings.
func (a *App) Settings() domain.Settings {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.settings
}

// Configure applies settings, initializes the install directory and, when a
// remote URL is given, selects it as the remote source.
func (a *App) Configure(ctx context.Context, settings domain.Settings) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	a.WithMode(settings.Mode).
		WithMaxTransfers(settings.MaxTransfers).
		WithReclaimCooldown(settings.ReclaimCooldown).
		WithTransferTimeout(settings.TransferTimeout)

	a.mu.Lock()
	a.settings.RemoteURL = settings.RemoteURL
	a.settings.CatalogVersion = settings.CatalogVersion
	a.settings.LocalDir = settings.LocalDir
	a.settings.SharedDir = settings.SharedDir
	a.mu.Unlock()

	if err := a.Initialize(settings.LocalDir, settings.SharedDir); err != nil {
		return err
	}
	return a.SetRemoteSource(settings.RemoteURL, settings.CatalogVersion)
}
