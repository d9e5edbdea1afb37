// Package archive bundles an artifact store subtree into a single
// compressed tar stream for transport or backup, and restores it.
package archive

import (
	"archive/tar"
	"bufio"
	"bytes"
	"compress/gzip"
	"io"
	"os"
	"path"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/ulikunitz/xz"

	"github.com/FocuswithJustin/RosaArchive/core/errors"
	"github.com/FocuswithJustin/RosaArchive/core/store"
	"github.com/FocuswithJustin/RosaArchive/internal/validation"
)

// CompressionType specifies the compression algorithm of a bundle.
type CompressionType string

const (
	// CompressionXZ uses XZ/LZMA2 compression (default, best ratio).
	CompressionXZ CompressionType = "xz"
	// CompressionGzip uses gzip compression (faster).
	CompressionGzip CompressionType = "gzip"
	// CompressionZstd uses zstd at the default level.
	CompressionZstd CompressionType = "zstd"
	// CompressionLZ4 uses the LZ4 frame format (fastest).
	CompressionLZ4 CompressionType = "lz4"
)

var (
	gzipMagic = []byte{0x1f, 0x8b}
	xzMagic   = []byte{0xfd, 0x37, 0x7a, 0x58, 0x5a, 0x00}
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
	lz4Magic  = []byte{0x04, 0x22, 0x4d, 0x18}
)

// ParseCompression maps a compression name to its type. The empty name
// selects XZ.
func ParseCompression(name string) (CompressionType, error) {
	switch t := CompressionType(strings.ToLower(name)); t {
	case "":
		return CompressionXZ, nil
	case CompressionXZ, CompressionGzip, CompressionZstd, CompressionLZ4:
		return t, nil
	}
	return "", errors.NewUnsupported("compression format", name)
}

// Options configures Bundle.
type Options struct {
	// Compression defaults to XZ.
	Compression CompressionType
	// Prefix is the directory the store's content is placed under inside
	// the bundle, e.g. "rose/Ludwig". Empty means the store's own name.
	Prefix string
}

// Bundle writes every artifact of s and its sub-stores to w as a
// compressed tar stream and returns the number of artifacts written.
// Entries are written in sorted order so equal trees give equal bundles.
func Bundle(s store.Store, w io.Writer, opts Options) (int, error) {
	prefix := opts.Prefix
	if prefix == "" {
		prefix = s.Name()
	}

	var cw io.WriteCloser
	var err error
	switch opts.Compression {
	case CompressionGzip:
		cw, err = gzip.NewWriterLevel(w, gzip.BestCompression)
	case CompressionZstd:
		cw, err = zstd.NewWriter(w)
	case CompressionLZ4:
		cw = lz4.NewWriter(w)
	case CompressionXZ, "":
		cw, err = xz.NewWriter(w)
	default:
		return 0, errors.NewUnsupported("compression format", string(opts.Compression))
	}
	if err != nil {
		return 0, errors.Wrap(err, "failed to create compressor")
	}

	tw := tar.NewWriter(cw)
	n, err := writeStore(tw, s, prefix)
	if err != nil {
		return n, err
	}
	if err := tw.Close(); err != nil {
		return n, errors.Wrap(err, "failed to finish tar stream")
	}
	if err := cw.Close(); err != nil {
		return n, errors.Wrap(err, "failed to finish compression")
	}
	return n, nil
}

// BundleFile bundles s into a new file at path.
func BundleFile(s store.Store, path string, opts Options) (int, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, errors.NewIO("create", path, err)
	}
	n, err := Bundle(s, f, opts)
	if cerr := f.Close(); err == nil && cerr != nil {
		err = errors.NewIO("close", path, cerr)
	}
	if err != nil {
		os.Remove(path)
	}
	return n, err
}

func writeStore(tw *tar.Writer, s store.Store, dir string) (int, error) {
	names, err := s.List()
	if err != nil {
		return 0, err
	}
	n := 0
	for _, name := range names {
		if err := writeArtifact(tw, s, name, path.Join(dir, name)); err != nil {
			return n, err
		}
		n++
	}
	children, err := s.ListStores()
	if err != nil {
		return n, err
	}
	for _, child := range children {
		m, err := writeStore(tw, s.Child(child), path.Join(dir, child))
		n += m
		if err != nil {
			return n, err
		}
	}
	return n, nil
}

func writeArtifact(tw *tar.Writer, s store.Store, name, entry string) error {
	data, err := store.ReadAll(s, name)
	if err != nil {
		return err
	}
	header := &tar.Header{
		Name:     entry,
		Mode:     0o644,
		Size:     int64(len(data)),
		Typeflag: tar.TypeReg,
	}
	if mod := s.LastModified(name); mod != store.NoTime {
		header.ModTime = time.Unix(0, mod)
	}
	if err := tw.WriteHeader(header); err != nil {
		return errors.Wrapf(err, "failed to write header for %s", entry)
	}
	if _, err := tw.Write(data); err != nil {
		return errors.Wrapf(err, "failed to write %s", entry)
	}
	return nil
}

// DetectCompression reports the compression of a bundle from its leading
// bytes without consuming them.
func DetectCompression(r *bufio.Reader) (CompressionType, error) {
	magic, err := r.Peek(len(xzMagic))
	if err != nil && len(magic) < len(gzipMagic) {
		return "", errors.NewIO("read magic bytes", "bundle", err)
	}
	switch {
	case bytes.HasPrefix(magic, gzipMagic):
		return CompressionGzip, nil
	case bytes.Equal(magic, xzMagic):
		return CompressionXZ, nil
	case bytes.HasPrefix(magic, zstdMagic):
		return CompressionZstd, nil
	case bytes.HasPrefix(magic, lz4Magic):
		return CompressionLZ4, nil
	}
	return "", errors.NewUnsupported("compression format", "unknown magic bytes")
}

// Unbundle extracts a bundle into dst and returns the names written,
// relative to dst. Compression is detected automatically. Entries whose
// path would leave dst, or whose parts are not valid store names, are
// skipped.
func Unbundle(r io.Reader, dst store.Store) ([]string, error) {
	br := bufio.NewReader(r)
	compression, err := DetectCompression(br)
	if err != nil {
		return nil, err
	}

	var dr io.Reader
	switch compression {
	case CompressionGzip:
		gz, err := gzip.NewReader(br)
		if err != nil {
			return nil, errors.Wrap(err, "failed to create gzip reader")
		}
		defer gz.Close()
		dr = gz
	case CompressionXZ:
		xr, err := xz.NewReader(br)
		if err != nil {
			return nil, errors.Wrap(err, "failed to create xz reader")
		}
		dr = xr
	case CompressionZstd:
		zr, err := zstd.NewReader(br)
		if err != nil {
			return nil, errors.Wrap(err, "failed to create zstd reader")
		}
		defer zr.Close()
		dr = zr
	case CompressionLZ4:
		dr = lz4.NewReader(br)
	}

	tr := tar.NewReader(dr)
	var written []string
	for {
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return written, errors.Wrap(err, "failed to read tar header")
		}
		if header.Typeflag != tar.TypeReg {
			continue
		}
		parts, ok := entryParts(header.Name)
		if !ok {
			continue
		}
		target := dst
		for _, dir := range parts[:len(parts)-1] {
			target = target.Child(dir)
		}
		if err := copyEntry(target, parts[len(parts)-1], tr); err != nil {
			return written, err
		}
		written = append(written, strings.Join(parts, "/"))
	}
	return written, nil
}

// UnbundleFile extracts the bundle at path into dst.
func UnbundleFile(path string, dst store.Store) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.NewIO("open", path, err)
	}
	defer f.Close()
	return Unbundle(f, dst)
}

// entryParts splits a tar entry name into validated store names.
func entryParts(name string) ([]string, bool) {
	clean := path.Clean(strings.TrimPrefix(name, "/"))
	if clean == "." || strings.HasPrefix(clean, "..") {
		return nil, false
	}
	parts := strings.Split(clean, "/")
	for _, p := range parts {
		if validation.ValidateName(p) != nil {
			return nil, false
		}
	}
	return parts, true
}

func copyEntry(s store.Store, name string, r io.Reader) error {
	w, err := s.Create(name)
	if err != nil {
		return err
	}
	if _, err := io.Copy(w, r); err != nil {
		w.Abort()
		return errors.NewIO("write", name, err)
	}
	return w.Close()
}
