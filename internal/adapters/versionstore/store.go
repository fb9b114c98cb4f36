// Package versionstore persists installed content hashes as sidecar files.
package versionstore

import (
	"errors"
	"fmt"
	iofs "io/fs"
	"maps"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"unicode/utf8"

	"go.trai.ch/parcel/internal/core/domain"
	"go.trai.ch/parcel/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.VersionStore = (*Store)(nil)

// Store implements ports.VersionStore with one "<file>.version" sidecar per
// installed file, holding the raw content hash.
type Store struct {
	dir    string
	logger ports.Logger

	mu      sync.RWMutex
	loaded  bool
	entries map[string]string
}

// New creates a store for the install directory dir. Nothing is read until first use.
func New(dir string, logger ports.Logger) *Store {
	return &Store{
		dir:     dir,
		logger:  logger,
		entries: make(map[string]string),
	}
}

// Load reads every sidecar in the install directory.
// A missing directory is an empty store. Sidecars that cannot be read, are
// empty or are not valid UTF-8 are deleted and skipped.
func (s *Store) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked()
}

func (s *Store) loadLocked() error {
	if s.loaded {
		return nil
	}

	dirEntries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, iofs.ErrNotExist) {
			s.loaded = true
			return nil
		}
		return zerr.With(zerr.Wrap(err, "failed to read install directory"), "dir", s.dir)
	}

	for _, entry := range dirEntries {
		name := entry.Name()
		if !entry.Type().IsRegular() || !domain.IsSidecar(name) {
			continue
		}

		fileName := strings.TrimSuffix(name, domain.VersionSuffix)
		path := filepath.Join(s.dir, name)
		data, err := os.ReadFile(path) //nolint:gosec // Path is built from the install directory listing
		if err != nil || len(data) == 0 || !utf8.Valid(data) {
			s.logger.Warn(fmt.Sprintf("discarding corrupt version entry for %s", fileName))
			_ = os.Remove(path)
			continue
		}
		s.entries[fileName] = string(data)
	}

	s.loaded = true
	return nil
}

// ensureLoaded loads lazily; a failed load leaves the store empty so every
// package reads as stale.
func (s *Store) ensureLoaded() {
	s.mu.RLock()
	loaded := s.loaded
	s.mu.RUnlock()
	if loaded {
		return
	}
	if err := s.Load(); err != nil {
		s.logger.Error(err)
	}
}

// Get returns the installed hash for fileName.
func (s *Store) Get(fileName string) (string, bool) {
	s.ensureLoaded()

	s.mu.RLock()
	defer s.mu.RUnlock()
	hash, ok := s.entries[fileName]
	return hash, ok
}

// Set writes the sidecar for fileName atomically, then records it in memory.
func (s *Store) Set(fileName, hash string) error {
	s.ensureLoaded()

	if err := atomicWriteFile(s.dir, domain.SidecarName(fileName), []byte(hash)); err != nil {
		err = zerr.With(zerr.Wrap(err, domain.ErrVersionWriteFailed.Error()), "file", fileName)
		return errors.Join(domain.ErrStorageFailed, err)
	}

	s.mu.Lock()
	s.entries[fileName] = hash
	s.mu.Unlock()
	return nil
}

// Remove deletes the sidecar for fileName. Removing an unknown file is not an error.
func (s *Store) Remove(fileName string) error {
	s.ensureLoaded()

	s.mu.Lock()
	delete(s.entries, fileName)
	s.mu.Unlock()

	return s.removeSidecar(fileName)
}

// Clear deletes every sidecar known to the store or present on disk.
func (s *Store) Clear() error {
	s.ensureLoaded()

	s.mu.Lock()
	names := make([]string, 0, len(s.entries))
	for name := range s.entries {
		names = append(names, name)
	}
	s.entries = make(map[string]string)
	s.mu.Unlock()

	if dirEntries, err := os.ReadDir(s.dir); err == nil {
		for _, entry := range dirEntries {
			if domain.IsSidecar(entry.Name()) {
				names = append(names, strings.TrimSuffix(entry.Name(), domain.VersionSuffix))
			}
		}
	}

	var errs []error
	for _, name := range names {
		if err := s.removeSidecar(name); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Entries returns a copy of every entry.
func (s *Store) Entries() map[string]string {
	s.ensureLoaded()

	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.entries)
}

func (s *Store) removeSidecar(fileName string) error {
	path := filepath.Join(s.dir, domain.SidecarName(fileName))
	if err := os.Remove(path); err != nil && !errors.Is(err, iofs.ErrNotExist) {
		err = zerr.With(zerr.Wrap(err, domain.ErrVersionRemoveFailed.Error()), "file", fileName)
		return errors.Join(domain.ErrStorageFailed, err)
	}
	return nil
}

// atomicWriteFile writes data to dir/name via a temp file and rename.
// The temp file carries the partial suffix so an interrupted write is reclaimed later.
func atomicWriteFile(dir, name string, data []byte) error {
	if err := os.MkdirAll(dir, domain.DirPerm); err != nil {
		return err
	}

	tmpFile, err := os.CreateTemp(dir, "."+name+"-*"+domain.PartialSuffix)
	if err != nil {
		return err
	}
	tmpName := tmpFile.Name()

	defer func() {
		if _, statErr := os.Stat(tmpName); statErr == nil {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		_ = tmpFile.Close()
		return err
	}
	if err := tmpFile.Sync(); err != nil {
		_ = tmpFile.Close()
		return err
	}
	if err := tmpFile.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, domain.FilePerm); err != nil {
		return err
	}

	return os.Rename(tmpName, filepath.Join(dir, name))
}

// Factory opens stores bound to a logger.
type Factory struct {
	logger ports.Logger
}

// NewFactory creates a Factory.
func NewFactory(logger ports.Logger) *Factory {
	return &Factory{logger: logger}
}

// Open returns a store for dir.
func (f *Factory) Open(dir string) ports.VersionStore {
	return New(dir, f.logger)
}
