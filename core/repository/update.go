package repository

import (
	"strings"

	"github.com/FocuswithJustin/RosaArchive/core/codec"
	"github.com/FocuswithJustin/RosaArchive/core/errors"
	"github.com/FocuswithJustin/RosaArchive/core/model"
	"github.com/FocuswithJustin/RosaArchive/core/store"
	"github.com/FocuswithJustin/RosaArchive/core/transcription"
)

// UpdateCollectionChecksum refreshes and rewrites the digest index of a
// collection's own artifacts. ok is false when some digest could not be
// computed; the index is written regardless.
func (r *Repository) UpdateCollectionChecksum(collection string, force bool, errs *errors.Collector) (bool, error) {
	if !r.root.Exists(collection) {
		return false, errors.NewNotFound("collection", collection)
	}
	return r.updateChecksum(r.root.Child(collection), force, errs)
}

// UpdateBookChecksum refreshes and rewrites the digest index of a book.
func (r *Repository) UpdateBookChecksum(collection, book string, force bool, errs *errors.Collector) (bool, error) {
	s, err := r.bookStore(collection, book)
	if err != nil {
		return false, err
	}
	return r.updateChecksum(s, force, errs)
}

func (r *Repository) updateChecksum(s store.Store, force bool, errs *errors.Collector) (bool, error) {
	name := r.engine.IndexName(s)
	existing, _ := codec.Load(r.registry, codec.ChecksumKind, s, name, errs)
	index, ok := r.engine.Refresh(s, existing, force, errs)
	if err := codec.Save(r.registry, codec.ChecksumKind, s, name, index); err != nil {
		return false, err
	}
	return ok, nil
}

// WriteCropInfo replaces a book's crop data.
func (r *Repository) WriteCropInfo(collection, book string, info *model.CropInfo) error {
	s, err := r.bookStore(collection, book)
	if err != nil {
		return err
	}
	for _, e := range info.Entries {
		if err := e.Validate(); err != nil {
			return errors.Wrapf(err, "crop of %s", e.ID)
		}
	}
	return codec.Save(r.registry, codec.CropInfoKind, s, book+CropInfoSuffix, info)
}

// RenameImages renames delivered files to their archive names and records
// the applied renames in the book's file map, merged with any earlier map.
// Entries whose source is absent or whose target already exists are
// reported to errs and skipped.
func (r *Repository) RenameImages(collection, book string, fm *model.FileMap, errs *errors.Collector) (*model.FileMap, error) {
	s, err := r.bookStore(collection, book)
	if err != nil {
		return nil, err
	}
	applied, _ := codec.Load(r.registry, codec.FileMapKind, s, FileMapName, errs)
	if applied == nil {
		applied = &model.FileMap{}
	}

	for _, e := range fm.Entries {
		switch {
		case e.Original == e.Archived:
			continue
		case strings.TrimSpace(e.Archived) == "":
			errs.Add(errors.NewInconsistency(e.Original, "no archive name given"))
			continue
		case !s.Exists(e.Original):
			errs.Add(errors.NewNotFound("artifact", e.Original))
			continue
		case s.Exists(e.Archived):
			errs.Add(errors.NewInconsistency(e.Archived, "rename of %s would overwrite an existing artifact", e.Original))
			continue
		}
		if err := s.Rename(e.Original, e.Archived); err != nil {
			errs.Add(err)
			continue
		}
		applied.Entries = append(applied.Entries, e)
	}

	if err := codec.Save(r.registry, codec.FileMapKind, s, FileMapName, applied); err != nil {
		return nil, err
	}
	return applied, nil
}

// SplitTranscription partitions a book's aggregated transcription into
// per page and column fragments.
func (r *Repository) SplitTranscription(collection, book string, errs *errors.Collector) ([]transcription.Fragment, error) {
	s, err := r.bookStore(collection, book)
	if err != nil {
		return nil, err
	}
	name := book + TranscriptionSuffix
	t, ok := codec.Load(r.registry, codec.TranscriptionKind, s, name, errs)
	if !ok || t == nil {
		return nil, errors.NewNotFound("artifact", name)
	}
	frags, err := transcription.Split(strings.NewReader(t.XML))
	if err != nil {
		return nil, errors.Wrapf(err, "split %s", name)
	}
	return frags, nil
}
