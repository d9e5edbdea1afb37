package cache

import (
	"context"
	"strings"

	"github.com/FocuswithJustin/RosaArchive/core/errors"
	"github.com/FocuswithJustin/RosaArchive/core/model"
	"github.com/FocuswithJustin/RosaArchive/core/repository"
)

// loaded is a cached load result together with the diagnostics it
// produced, so a cache hit reports the same problems as a fresh load.
type loaded[T any] struct {
	value T
	diags []error
}

// CachedRepository memoizes collection and book loads of a Repository.
// Loaded objects are shared between callers and must be treated as
// read-only. Writes made through CachedRepository invalidate the affected
// entries; writes made any other way require an explicit Invalidate.
type CachedRepository struct {
	repo        *repository.Repository
	collections Cache[string, loaded[*model.Collection]]
	books       Cache[string, loaded[*model.Book]]
}

// NewCachedRepository wraps repo. The config bounds each of the collection
// and book caches separately.
func NewCachedRepository(repo *repository.Repository, config Config) *CachedRepository {
	return &CachedRepository{
		repo:        repo,
		collections: NewLRUCache[string, loaded[*model.Collection]](config),
		books:       NewLRUCache[string, loaded[*model.Book]](config),
	}
}

// Repository returns the wrapped repository.
func (c *CachedRepository) Repository() *repository.Repository {
	return c.repo
}

func bookKey(collection, book string) string {
	return collection + "/" + book
}

// LoadCollection returns the cached collection, loading it on a miss.
// Fatal load errors are not cached.
func (c *CachedRepository) LoadCollection(id string, errs *errors.Collector) (*model.Collection, error) {
	if hit, ok := c.collections.Get(id); ok {
		replay(errs, hit.diags)
		return hit.value, nil
	}
	diags := &errors.Collector{}
	col, err := c.repo.LoadCollection(id, diags)
	if err != nil {
		return nil, err
	}
	c.collections.Put(id, loaded[*model.Collection]{value: col, diags: diags.Errors()})
	errs.Merge(diags)
	return col, nil
}

// LoadBook returns the cached book, loading it on a miss.
func (c *CachedRepository) LoadBook(col *model.Collection, id string, errs *errors.Collector) (*model.Book, error) {
	key := bookKey(col.ID, id)
	if hit, ok := c.books.Get(key); ok {
		replay(errs, hit.diags)
		return hit.value, nil
	}
	diags := &errors.Collector{}
	book, err := c.repo.LoadBook(col, id, diags)
	if err != nil {
		return nil, err
	}
	c.books.Put(key, loaded[*model.Book]{value: book, diags: diags.Errors()})
	errs.Merge(diags)
	return book, nil
}

// Load returns a collection and one of its books.
func (c *CachedRepository) Load(collection, book string, errs *errors.Collector) (*model.Collection, *model.Book, error) {
	col, err := c.LoadCollection(collection, errs)
	if err != nil {
		return nil, nil, err
	}
	b, err := c.LoadBook(col, book, errs)
	if err != nil {
		return col, nil, err
	}
	return col, b, nil
}

// Invalidate drops cached entries. An empty book drops the collection and
// every book cached for it; an empty collection drops everything.
func (c *CachedRepository) Invalidate(collection, book string) {
	switch {
	case collection == "":
		c.collections.Clear()
		c.books.Clear()
	case book == "":
		c.collections.Remove(collection)
		prefix := collection + "/"
		c.books.RemoveIf(func(k string) bool { return strings.HasPrefix(k, prefix) })
	default:
		c.books.Remove(bookKey(collection, book))
	}
}

// Stats returns the statistics of the collection and book caches.
func (c *CachedRepository) Stats() (collections, books Stats) {
	return c.collections.Stats(), c.books.Stats()
}

// UpdateCollectionChecksum refreshes a collection's digest index.
func (c *CachedRepository) UpdateCollectionChecksum(collection string, force bool, errs *errors.Collector) (bool, error) {
	defer c.collections.Remove(collection)
	return c.repo.UpdateCollectionChecksum(collection, force, errs)
}

// UpdateBookChecksum refreshes a book's digest index.
func (c *CachedRepository) UpdateBookChecksum(collection, book string, force bool, errs *errors.Collector) (bool, error) {
	defer c.Invalidate(collection, book)
	return c.repo.UpdateBookChecksum(collection, book, force, errs)
}

// GenerateImageList writes a freshly scanned image list.
func (c *CachedRepository) GenerateImageList(ctx context.Context, col *model.Collection, book string, force bool, errs *errors.Collector) (*model.ImageList, error) {
	defer c.Invalidate(col.ID, book)
	return c.repo.GenerateImageList(ctx, col, book, force, errs)
}

// WriteCropInfo replaces a book's crop data.
func (c *CachedRepository) WriteCropInfo(collection, book string, info *model.CropInfo) error {
	defer c.Invalidate(collection, book)
	return c.repo.WriteCropInfo(collection, book, info)
}

// RenameImages applies a file map to a book.
func (c *CachedRepository) RenameImages(collection, book string, fm *model.FileMap, errs *errors.Collector) (*model.FileMap, error) {
	defer c.Invalidate(collection, book)
	return c.repo.RenameImages(collection, book, fm, errs)
}

// CropImages crops a book's images into its cropped store.
func (c *CachedRepository) CropImages(ctx context.Context, col *model.Collection, book string, force bool, errs *errors.Collector) (repository.CropStats, error) {
	defer c.Invalidate(col.ID, book)
	return c.repo.CropImages(ctx, col, book, force, errs)
}

func replay(errs *errors.Collector, diags []error) {
	for _, err := range diags {
		errs.Add(err)
	}
}
