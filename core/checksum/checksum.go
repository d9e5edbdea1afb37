// Package checksum computes, refreshes and verifies the digest index of an
// archive store.
//
// Staleness is decided by modification time alone: an artifact is rehashed
// when its mtime is at or after the index file's mtime. An entry whose
// artifact was corrupted without its mtime moving is therefore kept as is
// until a forced refresh.
package checksum

import (
	"crypto/sha1"
	"crypto/sha256"
	"encoding/hex"
	"hash"
	"io"
	"log/slog"

	"github.com/zeebo/blake3"

	"github.com/FocuswithJustin/RosaArchive/core/errors"
	"github.com/FocuswithJustin/RosaArchive/core/model"
	"github.com/FocuswithJustin/RosaArchive/core/store"
	"github.com/FocuswithJustin/RosaArchive/internal/logging"
)

// DefaultHashers returns the hash constructors for every supported algorithm.
func DefaultHashers() map[model.Algorithm]func() hash.Hash {
	return map[model.Algorithm]func() hash.Hash{
		model.SHA1:   sha1.New,
		model.SHA256: sha256.New,
		model.BLAKE3: func() hash.Hash { return blake3.New() },
	}
}

// ParseAlgorithm maps a configuration name ("sha1", "sha256", "blake3") to
// an Algorithm.
func ParseAlgorithm(s string) (model.Algorithm, error) {
	switch s {
	case "", "sha1", "SHA1":
		return model.SHA1, nil
	case "sha256", "SHA256":
		return model.SHA256, nil
	case "blake3", "b3", "B3", "BLAKE3":
		return model.BLAKE3, nil
	}
	return "", errors.NewUnsupported("digest algorithm", s)
}

// Engine computes digests with one algorithm.
type Engine struct {
	alg     model.Algorithm
	hashers map[model.Algorithm]func() hash.Hash
	logger  *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithHashers replaces the available hash constructors.
func WithHashers(h map[model.Algorithm]func() hash.Hash) Option {
	return func(e *Engine) { e.hashers = h }
}

// WithLogger sets the logger used for refresh summaries.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// New creates an engine for alg.
func New(alg model.Algorithm, opts ...Option) *Engine {
	e := &Engine{alg: alg, hashers: DefaultHashers()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Algorithm returns the engine's digest algorithm.
func (e *Engine) Algorithm() model.Algorithm {
	return e.alg
}

// IndexName returns the name of the digest index file of s.
func (e *Engine) IndexName(s store.Store) string {
	return e.alg.FileName(s.Name())
}

// Digest hashes one artifact with alg.
func (e *Engine) Digest(s store.Store, name string, alg model.Algorithm) (model.Digest, error) {
	newHash, ok := e.hashers[alg]
	if !ok {
		return model.Digest{}, errors.NewUnsupported("digest algorithm", string(alg))
	}
	r, err := s.Open(name)
	if err != nil {
		return model.Digest{}, err
	}
	defer r.Close()

	h := newHash()
	if _, err := io.Copy(h, r); err != nil {
		return model.Digest{}, errors.NewIO("hash", name, err)
	}
	return model.Digest{Algorithm: alg, Hex: hex.EncodeToString(h.Sum(nil))}, nil
}

// Stats summarizes a refresh.
type Stats struct {
	Recomputed int
	Retained   int
	Dropped    int
	Failed     int
}

// Refresh brings existing up to date with the artifacts in s and returns
// the new index. existing is not modified and may be nil.
//
// An artifact is rehashed when force is set, when it has no entry, when
// its entry uses another algorithm, or when it was modified at or after
// the index file. Entries of artifacts that no longer exist are dropped.
// Artifacts that cannot be hashed are reported to errs and keep their
// previous entry, if any; ok is false when that happens.
func (e *Engine) Refresh(s store.Store, existing *model.DigestIndex, force bool, errs *errors.Collector) (index *model.DigestIndex, ok bool) {
	index, _, ok = e.refresh(s, existing, force, errs)
	return index, ok
}

// RefreshStats is Refresh that also returns the counts it logged.
func (e *Engine) RefreshStats(s store.Store, existing *model.DigestIndex, force bool, errs *errors.Collector) (*model.DigestIndex, Stats, bool) {
	return e.refresh(s, existing, force, errs)
}

func (e *Engine) refresh(s store.Store, existing *model.DigestIndex, force bool, errs *errors.Collector) (*model.DigestIndex, Stats, bool) {
	var stats Stats
	index := model.NewDigestIndex(e.alg)
	indexName := e.IndexName(s)

	artifacts, err := s.List()
	if err != nil {
		errs.Add(err)
		return index, stats, false
	}

	present := make(map[string]bool, len(artifacts))
	indexTime := s.LastModified(indexName)
	ok := true
	for _, name := range artifacts {
		if name == indexName {
			continue
		}
		present[name] = true

		prior, hasPrior := existing.Get(name)
		stale := force || !hasPrior || prior.Algorithm != e.alg || s.LastModified(name) >= indexTime
		if !stale {
			index.Set(name, prior)
			stats.Retained++
			continue
		}

		d, err := e.Digest(s, name, e.alg)
		if err != nil {
			ok = false
			stats.Failed++
			errs.Add(errors.Wrapf(err, "checksum %s", name))
			if hasPrior {
				index.Set(name, prior)
			}
			continue
		}
		index.Set(name, d)
		stats.Recomputed++
	}

	for _, name := range existing.Names() {
		if !present[name] {
			stats.Dropped++
		}
	}

	logging.ChecksumRefresh(e.logger, s.Name(), stats.Recomputed, stats.Retained, stats.Dropped, stats.Failed,
		"algorithm", string(e.alg), "force", force)
	return index, stats, ok
}

// Result is the verification outcome of one index entry.
type Result struct {
	Name     string
	Expected string
	// Actual is empty when the artifact could not be hashed.
	Actual string
	Err    error
}

// Match reports whether the artifact still has its recorded digest.
func (r Result) Match() bool {
	return r.Err == nil && r.Actual == r.Expected
}

// Mismatch returns the error describing a failed verification, or nil.
func (r Result) Mismatch() error {
	if r.Match() {
		return nil
	}
	return &errors.DigestMismatchError{Artifact: r.Name, Expected: r.Expected, Actual: r.Actual}
}

// Verify rehashes every entry of index and compares the hex text with the
// recorded value. Each entry is hashed with its own algorithm.
func (e *Engine) Verify(s store.Store, index *model.DigestIndex) []Result {
	names := index.Names()
	results := make([]Result, 0, len(names))
	for _, name := range names {
		recorded, _ := index.Get(name)
		res := Result{Name: name, Expected: recorded.Hex}
		d, err := e.Digest(s, name, recorded.Algorithm)
		if err != nil {
			res.Err = err
		} else {
			res.Actual = d.Hex
		}
		results = append(results, res)
	}
	return results
}
