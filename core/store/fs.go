package store

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/FocuswithJustin/RosaArchive/core/errors"
	"github.com/FocuswithJustin/RosaArchive/internal/validation"
)

// tempPrefix marks in-flight writes, which List never reports.
const tempPrefix = ".artifact-"

// osRename is a variable to allow testing of rename errors.
var osRename = os.Rename

// FS is a Store backed by a directory on the local filesystem.
type FS struct {
	dir string
}

// NewFS returns a store rooted at dir. The directory does not need to exist.
func NewFS(dir string) *FS {
	return &FS{dir: filepath.Clean(dir)}
}

// Dir returns the backing directory.
func (s *FS) Dir() string {
	return s.dir
}

func (s *FS) Name() string {
	return filepath.Base(s.dir)
}

// Locate returns the filesystem path of an artifact.
func (s *FS) Locate(name string) string {
	return filepath.Join(s.dir, name)
}

func (s *FS) Exists(name string) bool {
	if validation.ValidateName(name) != nil {
		return false
	}
	_, err := os.Stat(s.Locate(name))
	return err == nil
}

func (s *FS) List() ([]string, error) {
	return s.list(false)
}

func (s *FS) ListStores() ([]string, error) {
	return s.list(true)
}

func (s *FS) list(dirs bool) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &errors.NotFoundError{Resource: "store", ID: s.dir, Err: err}
		}
		return nil, errors.NewIO("list", s.dir, err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() != dirs {
			continue
		}
		if !dirs && (!e.Type().IsRegular() || strings.HasPrefix(e.Name(), tempPrefix)) {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

func (s *FS) Open(name string) (io.ReadCloser, error) {
	if err := validation.ValidateName(name); err != nil {
		return nil, errors.Wrapf(err, "open %s", name)
	}
	f, err := os.Open(s.Locate(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &errors.NotFoundError{Resource: "artifact", ID: name, Err: err}
		}
		return nil, errors.NewIO("open", name, err)
	}
	return f, nil
}

func (s *FS) Create(name string) (Writer, error) {
	if err := validation.ValidateName(name); err != nil {
		return nil, errors.Wrapf(err, "create %s", name)
	}
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return nil, errors.NewIO("create directory", s.dir, err)
	}

	// Write through a temp file so readers never observe a partial artifact
	tempFile, err := os.CreateTemp(s.dir, tempPrefix+"*")
	if err != nil {
		return nil, errors.NewIO("create temp file", s.dir, err)
	}
	return &atomicWriter{file: tempFile, final: s.Locate(name)}, nil
}

func (s *FS) LastModified(name string) int64 {
	if validation.ValidateName(name) != nil {
		return NoTime
	}
	info, err := os.Stat(s.Locate(name))
	if err != nil {
		return NoTime
	}
	return info.ModTime().UnixNano()
}

func (s *FS) Child(name string) Store {
	return &FS{dir: filepath.Join(s.dir, name)}
}

func (s *FS) Rename(oldName, newName string) error {
	if err := validation.ValidateName(oldName); err != nil {
		return errors.Wrapf(err, "rename %s", oldName)
	}
	if err := validation.ValidateName(newName); err != nil {
		return errors.Wrapf(err, "rename to %s", newName)
	}
	if !s.Exists(oldName) {
		return errors.NewNotFound("artifact", oldName)
	}
	if err := osRename(s.Locate(oldName), s.Locate(newName)); err != nil {
		return errors.NewIO("rename", oldName, err)
	}
	return nil
}

func (s *FS) CopyTo(name string, dst Store) error {
	in, err := s.Open(name)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := dst.Create(name)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Abort()
		return errors.NewIO("copy", name, err)
	}
	return out.Close()
}

// atomicWriter renames its temp file into place on Close and removes it
// on Abort.
type atomicWriter struct {
	file   *os.File
	final  string
	failed bool
	closed bool
}

func (w *atomicWriter) Write(p []byte) (int, error) {
	n, err := w.file.Write(p)
	if err != nil {
		w.failed = true
	}
	return n, err
}

func (w *atomicWriter) Abort() error {
	if w.closed {
		return nil
	}
	w.closed = true
	err := w.file.Close()
	if rerr := os.Remove(w.file.Name()); rerr != nil && err == nil {
		err = rerr
	}
	return err
}

func (w *atomicWriter) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	tempPath := w.file.Name()

	if err := w.file.Close(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if w.failed {
		os.Remove(tempPath)
		return fmt.Errorf("write to %s failed", filepath.Base(w.final))
	}
	if err := os.Chmod(tempPath, 0644); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := osRename(tempPath, w.final); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to rename artifact: %w", err)
	}
	return nil
}
