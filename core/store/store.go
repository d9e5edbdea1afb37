// Package store abstracts the archive's directory tree: a Store is a named
// directory of artifacts (byte streams) and sub-stores. Collections are
// stores whose sub-stores are books.
package store

import (
	"io"
)

// NoTime is returned by LastModified for absent artifacts.
const NoTime int64 = -1

// Store is a directory of named artifacts and named sub-stores.
// All operations are synchronous and local. Writes take effect
// immediately; there is no staging or rollback.
type Store interface {
	// Name returns the store's own name (its directory name).
	Name() string

	// Exists reports whether an artifact or sub-store with the name exists.
	Exists(name string) bool

	// List returns the names of the artifacts in the store, sorted.
	List() ([]string, error)

	// ListStores returns the names of the sub-stores, sorted.
	ListStores() ([]string, error)

	// Open opens an artifact for reading. It fails with a NotFoundError
	// when the artifact is absent.
	Open(name string) (io.ReadCloser, error)

	// Create opens an artifact for writing, creating or truncating it.
	// The content becomes visible when the writer is closed.
	Create(name string) (Writer, error)

	// LastModified returns the artifact's modification time in Unix
	// nanoseconds, or NoTime when it is absent.
	LastModified(name string) int64

	// Child returns the named sub-store. It may not exist yet; it is
	// created on first write.
	Child(name string) Store

	// Rename renames an artifact within the store.
	Rename(oldName, newName string) error

	// CopyTo copies an artifact into another store under the same name.
	CopyTo(name string, dst Store) error
}

// Writer is an artifact being written. Close publishes the content;
// Abort discards it and leaves any existing artifact untouched.
type Writer interface {
	io.WriteCloser
	Abort() error
}

// Locator is implemented by stores backed by real files, which external
// tools need to be pointed at.
type Locator interface {
	Locate(name string) string
}

// ReadAll reads an entire artifact.
func ReadAll(s Store, name string) ([]byte, error) {
	r, err := s.Open(name)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

// WriteAll replaces an artifact's content.
func WriteAll(s Store, name string, data []byte) error {
	w, err := s.Create(name)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		w.Abort()
		return err
	}
	return w.Close()
}
