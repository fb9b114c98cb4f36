package catalog

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.trai.ch/parcel/internal/core/domain"
	"go.trai.ch/parcel/internal/core/ports"
	"go.trai.ch/zerr"
)

// Refresher downloads catalog snapshots when the remote hash changes and
// falls back to the installed snapshot when the remote cannot be reached.
type Refresher struct {
	store      ports.VersionStore
	fs         ports.FileSystem
	logger     ports.Logger
	tracer     ports.Tracer
	holder     *Holder
	installDir string
}

// NewRefresher creates a Refresher installing snapshots into installDir.
func NewRefresher(
	store ports.VersionStore,
	fs ports.FileSystem,
	logger ports.Logger,
	tracer ports.Tracer,
	holder *Holder,
	installDir string,
) *Refresher {
	return &Refresher{
		store:      store,
		fs:         fs,
		logger:     logger,
		tracer:     tracer,
		holder:     holder,
		installDir: installDir,
	}
}

// Refresh makes the catalog for token current. A nil transport means the
// remote is unknown and only the installed snapshot is considered.
func (r *Refresher) Refresh(ctx context.Context, transport ports.Transport, token string) (*domain.Index, error) {
	ctx, span := r.tracer.Start(ctx, "catalog.refresh", ports.WithAttribute("token", token))
	defer span.End()

	c, err := r.resolve(ctx, transport, token)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	idx, err := domain.BuildIndex(ctx, c)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetAttribute("records", len(c.Records))

	r.holder.Set(idx)
	return idx, nil
}

func (r *Refresher) resolve(ctx context.Context, transport ports.Transport, token string) (*domain.Catalog, error) {
	fileName := domain.CatalogFileName(token)
	if transport == nil {
		return r.installed(fileName)
	}

	remoteHash, err := r.probe(ctx, transport, token)
	if err != nil {
		if domain.IsCancelled(err) {
			return nil, err
		}
		r.logger.Warn(fmt.Sprintf("catalog %s unreachable, using installed snapshot", token))
		c, installedErr := r.installed(fileName)
		if installedErr != nil {
			return nil, errors.Join(installedErr, err)
		}
		return c, nil
	}

	if r.isCurrent(fileName, remoteHash) {
		c, err := r.installed(fileName)
		if err == nil {
			return c, nil
		}
		r.logger.Warn(fmt.Sprintf("installed catalog %s is unreadable, downloading it again", token))
	}

	return r.download(ctx, transport, fileName, remoteHash)
}

// probe fetches the remote hash file into a scratch directory.
func (r *Refresher) probe(ctx context.Context, transport ports.Transport, token string) (string, error) {
	scratch, err := os.MkdirTemp("", "parcel-catalog-*")
	if err != nil {
		return "", errors.Join(domain.ErrStorageFailed, err)
	}
	defer func() { _ = os.RemoveAll(scratch) }()

	hashName := domain.CatalogHashName(token)
	req := domain.FetchRequest{Key: domain.CatalogFileName(token), FileName: hashName}
	if _, err := transport.Fetch(ctx, req, scratch, nil); err != nil {
		return "", err
	}

	data, err := os.ReadFile(filepath.Join(scratch, hashName)) //nolint:gosec // Scratch path is owned by this process
	if err != nil {
		return "", errors.Join(domain.ErrStorageFailed, err)
	}
	hash := strings.TrimSpace(string(data))
	if hash == "" {
		return "", zerr.With(zerr.Wrap(domain.ErrTransferFailed, "empty catalog hash"), "token", token)
	}
	return hash, nil
}

func (r *Refresher) isCurrent(fileName, remoteHash string) bool {
	installedHash, ok := r.store.Get(fileName)
	if !ok || installedHash != remoteHash {
		return false
	}
	exists, err := r.fs.Exists(r.installDir, fileName)
	return err == nil && exists
}

func (r *Refresher) download(ctx context.Context, transport ports.Transport, fileName, remoteHash string) (*domain.Catalog, error) {
	req := domain.FetchRequest{Key: fileName, FileName: fileName}
	if _, err := transport.Fetch(ctx, req, r.installDir, nil); err != nil {
		return nil, err
	}

	c, err := r.installed(fileName)
	if err != nil {
		return nil, err
	}
	if c.Hash != remoteHash {
		_ = os.Remove(filepath.Join(r.installDir, fileName))
		err := zerr.With(zerr.Wrap(domain.ErrIntegrityMismatch, "catalog hash differs from probe"), "expected", remoteHash)
		return nil, zerr.With(err, "actual", c.Hash)
	}

	if err := r.store.Set(fileName, remoteHash); err != nil {
		return nil, err
	}
	return c, nil
}

// installed reads the snapshot already present in the install directory.
func (r *Refresher) installed(fileName string) (*domain.Catalog, error) {
	data, err := os.ReadFile(filepath.Join(r.installDir, fileName)) //nolint:gosec // Install dir is configured by the host
	if err != nil {
		err = zerr.With(zerr.Wrap(err, "no installed catalog"), "file", fileName)
		return nil, errors.Join(domain.ErrCatalogUnavailable, err)
	}
	return domain.DecodeCatalog(data)
}
