package model

import "sort"

// Algorithm names a digest algorithm.
type Algorithm string

const (
	SHA1   Algorithm = "SHA1"
	SHA256 Algorithm = "SHA256"
	BLAKE3 Algorithm = "B3"
)

// Digest is a hex-encoded content hash.
type Digest struct {
	Algorithm Algorithm
	Hex       string
}

// DigestIndex maps artifact names to digests. It never holds an entry for
// its own persisted file.
type DigestIndex struct {
	Algorithm Algorithm
	entries   map[string]Digest
}

// NewDigestIndex creates an empty index for the given algorithm.
func NewDigestIndex(alg Algorithm) *DigestIndex {
	return &DigestIndex{Algorithm: alg, entries: make(map[string]Digest)}
}

// Get returns the digest recorded for name.
func (d *DigestIndex) Get(name string) (Digest, bool) {
	if d == nil {
		return Digest{}, false
	}
	v, ok := d.entries[name]
	return v, ok
}

// Set records the digest for name.
func (d *DigestIndex) Set(name string, digest Digest) {
	if d.entries == nil {
		d.entries = make(map[string]Digest)
	}
	d.entries[name] = digest
}

// Delete drops the entry for name.
func (d *DigestIndex) Delete(name string) {
	delete(d.entries, name)
}

// Names returns the recorded artifact names, sorted.
func (d *DigestIndex) Names() []string {
	if d == nil {
		return nil
	}
	out := make([]string, 0, len(d.entries))
	for name := range d.entries {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of entries.
func (d *DigestIndex) Len() int {
	if d == nil {
		return 0
	}
	return len(d.entries)
}

// FileName returns the conventional index file name for a scope id.
func (a Algorithm) FileName(id string) string {
	return id + "." + string(a) + "SUM"
}
