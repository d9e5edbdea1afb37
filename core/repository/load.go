package repository

import (
	"github.com/FocuswithJustin/RosaArchive/core/codec"
	"github.com/FocuswithJustin/RosaArchive/core/errors"
	"github.com/FocuswithJustin/RosaArchive/core/model"
	"github.com/FocuswithJustin/RosaArchive/internal/logging"
)

// LoadCollection loads a collection's configuration, reference tables and
// digest index. Problems with present artifacts go to errs; the returned
// error is set only when the collection itself cannot be read.
func (r *Repository) LoadCollection(id string, errs *errors.Collector) (*model.Collection, error) {
	if !r.root.Exists(id) {
		return nil, errors.NewNotFound("collection", id)
	}
	s := r.root.Child(id)
	books, err := s.ListStores()
	if err != nil {
		return nil, errors.Wrapf(err, "list books of %s", id)
	}

	local := &errors.Collector{}
	col := &model.Collection{
		ID:      id,
		BookIDs: books,
		Config:  model.DefaultCollectionConfig(),
	}
	if cfg, ok := codec.Load(r.registry, codec.CollectionConfigKind, s, ConfigName, local); ok && cfg != nil {
		col.Config = *cfg
	}
	col.CharacterNames, _ = codec.Load(r.registry, codec.CharacterNamesKind, s, CharacterNamesName, local)
	col.IllustrationTitles, _ = codec.Load(r.registry, codec.IllustrationTitlesKind, s, IllustrationTitlesName, local)
	col.NarrativeSections, _ = codec.Load(r.registry, codec.NarrativeSectionsKind, s, NarrativeSectionsName, local)
	col.People, _ = codec.Load(r.registry, codec.ReferenceSheetKind, s, PeopleName, local)
	col.Locations, _ = codec.Load(r.registry, codec.ReferenceSheetKind, s, LocationsName, local)
	col.Books, _ = codec.Load(r.registry, codec.ReferenceSheetKind, s, BooksName, local)
	col.Checksums, _ = codec.Load(r.registry, codec.ChecksumKind, s, r.engine.IndexName(s), local)

	logging.CollectionLoaded(r.logger, id, len(books), local.Len())
	errs.Merge(local)
	return col, nil
}

// LoadBook loads every known artifact of a book in col. Images marked
// missing get the collection's placeholder dimensions.
func (r *Repository) LoadBook(col *model.Collection, id string, errs *errors.Collector) (*model.Book, error) {
	s, err := r.bookStore(col.ID, id)
	if err != nil {
		return nil, err
	}
	content, err := s.List()
	if err != nil {
		return nil, errors.Wrapf(err, "list artifacts of %s", id)
	}

	local := &errors.Collector{}
	book := &model.Book{
		ID:           id,
		CollectionID: col.ID,
		Content:      content,
		Metadata:     make(map[string]*model.BookMetadata),
		Permissions:  make(map[string]*model.Permission),
	}

	book.Images, _ = codec.Load(r.registry, codec.ImageListKind, s, id+ImagesSuffix, local)
	book.CroppedImages, _ = codec.Load(r.registry, codec.CroppedImageListKind, s, id+CroppedImagesSuffix, local)
	fillMissing(col, book.Images)
	fillMissing(col, book.CroppedImages)

	book.CropInfo, _ = codec.Load(r.registry, codec.CropInfoKind, s, id+CropInfoSuffix, local)
	book.Checksums, _ = codec.Load(r.registry, codec.ChecksumKind, s, r.engine.IndexName(s), local)
	book.IllustrationTagging, _ = codec.Load(r.registry, codec.IllustrationTaggingKind, s, id+IllustrationTagSuffix, local)
	book.NarrativeTagging, _ = codec.Load(r.registry, codec.NarrativeTaggingKind, s, id+NarrativeTagSuffix, local)
	book.ManualNarrativeTagging, _ = codec.Load(r.registry, codec.ManualNarrativeTaggingKind, s, id+ManualNarrativeTagSuffix, local)
	book.ReducedTagging, _ = codec.Load(r.registry, codec.ReducedTaggingKind, s, id+ReducedTaggingSuffix, local)
	book.Transcription, _ = codec.Load(r.registry, codec.TranscriptionKind, s, id+TranscriptionSuffix, local)
	book.FileMap, _ = codec.Load(r.registry, codec.FileMapKind, s, FileMapName, local)

	for _, lang := range col.Languages() {
		if md, ok := codec.Load(r.registry, codec.MetadataKind, s, DescriptionName(id, lang), local); ok && md != nil {
			book.Metadata[lang] = md
		}
		if perm, ok := codec.Load(r.registry, codec.PermissionKind, s, PermissionName(id, lang), local); ok && perm != nil {
			book.Permissions[lang] = perm
		}
	}

	for _, name := range content {
		page, ok := AnnotatedPageOf(id, name)
		if !ok {
			continue
		}
		ap, ok := codec.Load(r.registry, codec.AnnotatedPageKind, s, name, local)
		if !ok || ap == nil {
			continue
		}
		ap.ID = name
		if ap.Page == "" {
			ap.Page = page
		}
		book.AnnotatedPages = append(book.AnnotatedPages, ap)
	}

	logging.BookLoaded(r.logger, col.ID, id, book.Images.Len(), local.Len())
	errs.Merge(local)
	return book, nil
}

// Load loads a collection and then one of its books.
func (r *Repository) Load(collection, book string, errs *errors.Collector) (*model.Collection, *model.Book, error) {
	col, err := r.LoadCollection(collection, errs)
	if err != nil {
		return nil, nil, err
	}
	b, err := r.LoadBook(col, book, errs)
	if err != nil {
		return col, nil, err
	}
	return col, b, nil
}

func fillMissing(col *model.Collection, list *model.ImageList) {
	if list == nil {
		return
	}
	for i, img := range list.Images {
		if img.Missing {
			list.Images[i] = col.MissingImage(img.ID)
		}
	}
}
