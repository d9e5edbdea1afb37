// Package codec maps archive artifact kinds to the codecs that read and
// write them.
//
// A Kind is a typed token: looking a codec up by Kind is checked at compile
// time, and several kinds may share a model type (the manual and reduced
// narrative taggings are both *model.NarrativeTagging, stored differently).
// Looking up a kind that was never registered is a programming error and
// panics.
package codec

import (
	"bytes"
	"fmt"
	"io"

	"github.com/FocuswithJustin/RosaArchive/core/errors"
	"github.com/FocuswithJustin/RosaArchive/core/store"
)

// Codec reads and writes one artifact kind.
//
// Read never fails outright. Malformed input is reported to errs and Read
// returns a best-effort partial value, or the zero value when nothing could
// be salvaged. Write returns an error wrapping errors.ErrUnsupported for
// read-only kinds.
type Codec[T any] interface {
	Read(r io.Reader, errs *errors.Collector) T
	Write(v T, w io.Writer) error
}

// Kind identifies an artifact kind whose model type is T.
type Kind[T any] struct {
	name string
}

// NewKind creates a kind token. Names must be unique within a registry.
func NewKind[T any](name string) Kind[T] {
	return Kind[T]{name: name}
}

// Name returns the human-readable kind name used in diagnostics.
func (k Kind[T]) Name() string {
	return k.name
}

// Registry holds the codecs registered for each kind.
type Registry struct {
	codecs map[string]any
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		codecs: make(map[string]any),
	}
}

// Register registers c for kind k, replacing any previous codec.
func Register[T any](r *Registry, k Kind[T], c Codec[T]) {
	r.codecs[k.name] = c
}

// Registered reports whether a codec exists for k.
func Registered[T any](r *Registry, k Kind[T]) bool {
	_, ok := r.codecs[k.name].(Codec[T])
	return ok
}

// Lookup returns the codec for k. It panics when none is registered.
func Lookup[T any](r *Registry, k Kind[T]) Codec[T] {
	v, ok := r.codecs[k.name]
	if !ok {
		panic(fmt.Sprintf("codec: no codec registered for %s", k.name))
	}
	c, ok := v.(Codec[T])
	if !ok {
		panic(fmt.Sprintf("codec: codec registered for %s has type %T", k.name, v))
	}
	return c
}

// Load reads an optional artifact from s. ok is false when the artifact is
// absent, which is not reported as an error. Diagnostics raised while
// decoding are attributed to the artifact name.
func Load[T any](r *Registry, k Kind[T], s store.Store, name string, errs *errors.Collector) (v T, ok bool) {
	c := Lookup(r, k)
	if !s.Exists(name) {
		return v, false
	}
	rc, err := s.Open(name)
	if err != nil {
		errs.Add(err)
		return v, false
	}
	defer rc.Close()

	local := &errors.Collector{}
	v = c.Read(rc, local)
	errs.MergeArtifact(local, name)
	return v, true
}

// Save encodes v and replaces the artifact. Nothing is written when the
// codec refuses the value.
func Save[T any](r *Registry, k Kind[T], s store.Store, name string, v T) error {
	var buf bytes.Buffer
	if err := Lookup(r, k).Write(v, &buf); err != nil {
		return errors.Wrapf(err, "write %s", name)
	}
	return store.WriteAll(s, name, buf.Bytes())
}

func unsupportedWrite(kind string) error {
	return errors.NewUnsupported("write of "+kind, "artifact kind is read-only")
}

func readAll(r io.Reader, kind string, errs *errors.Collector) ([]byte, bool) {
	data, err := io.ReadAll(r)
	if err != nil {
		errs.Add(errors.NewIO("read", kind, err))
		return nil, false
	}
	return data, true
}
