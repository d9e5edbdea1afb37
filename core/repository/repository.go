// Package repository resolves the archive's collection and book directories
// into model objects and owns the operations that write derived artifacts
// back: image lists, crop outputs, checksum indexes and file renames.
//
// Loading is a pure read. It never writes to the store, reports malformed
// artifacts to the caller's collector and keeps going, and treats absent
// optional artifacts as nil fields rather than errors.
package repository

import (
	"context"
	"image"
	"log/slog"
	"time"

	"github.com/FocuswithJustin/RosaArchive/core/checksum"
	"github.com/FocuswithJustin/RosaArchive/core/codec"
	"github.com/FocuswithJustin/RosaArchive/core/errors"
	"github.com/FocuswithJustin/RosaArchive/core/model"
	"github.com/FocuswithJustin/RosaArchive/core/names"
	"github.com/FocuswithJustin/RosaArchive/core/store"
	"github.com/FocuswithJustin/RosaArchive/internal/tools"
)

// DefaultCropTimeout bounds a whole crop run.
const DefaultCropTimeout = 30 * time.Minute

// Prober reports the pixel dimensions of an image file.
type Prober interface {
	Probe(ctx context.Context, path string) (width, height int, err error)
}

// Cropper writes the rect region of the image at src to dst.
type Cropper interface {
	Crop(ctx context.Context, src, dst string, rect image.Rectangle) error
}

// Repository loads and maintains an archive rooted at one store whose
// sub-stores are collections.
type Repository struct {
	root        store.Store
	registry    *codec.Registry
	parser      *names.Parser
	order       model.ImageOrder
	engine      *checksum.Engine
	prober      Prober
	cropper     Cropper
	cropWorkers int
	cropTimeout time.Duration
	logger      *slog.Logger
}

// Option configures a Repository.
type Option func(*Repository)

// WithRegistry sets the codec registry. The default is
// codec.DefaultRegistry for the checksum engine's algorithm.
func WithRegistry(r *codec.Registry) Option {
	return func(repo *Repository) { repo.registry = r }
}

// WithParser sets the name parser.
func WithParser(p *names.Parser) Option {
	return func(repo *Repository) { repo.parser = p }
}

// WithChecksumEngine sets the digest engine.
func WithChecksumEngine(e *checksum.Engine) Option {
	return func(repo *Repository) { repo.engine = e }
}

// WithProber sets the image dimension probe. Without one, scanned images
// have unknown (zero) dimensions.
func WithProber(p Prober) Option {
	return func(repo *Repository) { repo.prober = p }
}

// WithCropper sets the image cropping tool.
func WithCropper(c Cropper) Option {
	return func(repo *Repository) { repo.cropper = c }
}

// WithCropWorkers sets the crop fan-out size.
func WithCropWorkers(n int) Option {
	return func(repo *Repository) { repo.cropWorkers = n }
}

// WithCropTimeout bounds a crop run.
func WithCropTimeout(d time.Duration) Option {
	return func(repo *Repository) { repo.cropTimeout = d }
}

// WithLogger sets the logger. The default is the global logger.
func WithLogger(l *slog.Logger) Option {
	return func(repo *Repository) { repo.logger = l }
}

// New creates a repository over root.
func New(root store.Store, opts ...Option) *Repository {
	r := &Repository{
		root:        root,
		cropWorkers: tools.DefaultWorkers,
		cropTimeout: DefaultCropTimeout,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.parser == nil {
		r.parser = names.DefaultParser()
	}
	if r.engine == nil {
		r.engine = checksum.New(model.SHA1, checksum.WithLogger(r.logger))
	}
	if r.registry == nil {
		r.registry = codec.DefaultRegistry(r.engine.Algorithm())
	}
	r.order = model.NewImageOrder(r.parser)
	return r
}

// Root returns the archive's root store.
func (r *Repository) Root() store.Store { return r.root }

// Registry returns the codec registry.
func (r *Repository) Registry() *codec.Registry { return r.registry }

// Parser returns the name parser.
func (r *Repository) Parser() *names.Parser { return r.parser }

// Order returns the structural image ordering.
func (r *Repository) Order() model.ImageOrder { return r.order }

// Checksums returns the digest engine.
func (r *Repository) Checksums() *checksum.Engine { return r.engine }

// CollectionStore returns the store of a collection.
func (r *Repository) CollectionStore(collection string) store.Store {
	return r.root.Child(collection)
}

// BookStore returns the store of a book.
func (r *Repository) BookStore(collection, book string) store.Store {
	return r.root.Child(collection).Child(book)
}

// ListCollections returns the collection ids, sorted.
func (r *Repository) ListCollections() ([]string, error) {
	return r.root.ListStores()
}

// ListBooks returns the book ids of a collection, sorted.
func (r *Repository) ListBooks(collection string) ([]string, error) {
	if !r.root.Exists(collection) {
		return nil, errors.NewNotFound("collection", collection)
	}
	return r.root.Child(collection).ListStores()
}

func (r *Repository) bookStore(collection, book string) (store.Store, error) {
	if !r.root.Exists(collection) {
		return nil, errors.NewNotFound("collection", collection)
	}
	cs := r.root.Child(collection)
	if !cs.Exists(book) {
		return nil, errors.NewNotFound("book", collection+"/"+book)
	}
	return cs.Child(book), nil
}
