package app

import (
	"go.trai.ch/parcel/internal/core/domain"
)

// CatalogInfo summarizes the current catalog.
type CatalogInfo struct {
	Version  string
	Hash     string
	Records  int
	Packages int
	// Cycles lists dependency cycles, each rendered as "A -> B -> A".
	Cycles []string
}

// CatalogInfo describes the current catalog.
func (a *App) CatalogInfo() (CatalogInfo, error) {
	idx, err := a.holder.Current()
	if err != nil {
		return CatalogInfo{}, err
	}
	c := idx.Catalog()
	return CatalogInfo{
		Version:  c.Version,
		Hash:     c.Hash,
		Records:  len(c.Records),
		Packages: len(idx.Packages()),
		Cycles:   idx.Resolver().Cycles(),
	}, nil
}

// Records returns every record of the current catalog, in catalog order.
func (a *App) Records() ([]domain.AssetRecord, error) {
	idx, err := a.holder.Current()
	if err != nil {
		return nil, err
	}
	return idx.Records(), nil
}
