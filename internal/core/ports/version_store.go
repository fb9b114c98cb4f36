package ports

//go:generate mockgen -source=version_store.go -destination=mocks/mock_version_store.go -package=mocks

// VersionStore records which content hash is installed for each file.
// Entries persist across process restarts.
type VersionStore interface {
	// Load reads every persisted entry. It is called lazily by the other methods
	// and is a no-op after the first successful call.
	Load() error
	// Get returns the installed hash for fileName.
	Get(fileName string) (string, bool)
	// Set durably records hash as installed for fileName.
	Set(fileName, hash string) error
	// Remove forgets fileName.
	Remove(fileName string) error
	// Clear forgets every entry.
	Clear() error
	// Entries returns a snapshot of every entry.
	Entries() map[string]string
}

// VersionStoreFactory opens the version store for an install directory.
type VersionStoreFactory interface {
	Open(dir string) VersionStore
}
