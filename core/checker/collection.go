package checker

import (
	"context"

	"github.com/FocuswithJustin/RosaArchive/core/model"
	"github.com/FocuswithJustin/RosaArchive/core/repository"
)

// CheckCollection checks a collection's own artifacts. Book contents are
// checked separately by CheckBook.
func (c *Checker) CheckCollection(ctx context.Context, col *model.Collection, bits bool) *Report {
	r := &Report{Subject: col.ID}
	s := c.repo.CollectionStore(col.ID)
	content, err := s.List()
	if err != nil {
		r.Errors = append(r.Errors, err)
		return r
	}
	has := make(map[string]bool, len(content))
	for _, name := range content {
		has[name] = true
	}

	if !has[repository.ConfigName] {
		r.warnf(col.ID, "no %s, using default configuration", repository.ConfigName)
	}
	if len(col.BookIDs) == 0 {
		r.warnf(col.ID, "collection has no books")
	}

	if col.CharacterNames != nil {
		langs := make(map[string]bool, len(col.CharacterNames.Languages))
		for _, l := range col.CharacterNames.Languages {
			langs[l] = true
		}
		for _, l := range col.Languages() {
			if !langs[l] {
				r.warnf(repository.CharacterNamesName, "no names for language %s", l)
			}
		}
		seen := make(map[string]bool)
		for _, ch := range col.CharacterNames.Characters {
			if seen[ch.ID] {
				r.errorf(repository.CharacterNamesName, "duplicate character %s", ch.ID)
			}
			seen[ch.ID] = true
		}
	}

	if col.NarrativeSections != nil {
		seen := make(map[string]bool)
		for _, sec := range col.NarrativeSections.Sections {
			if seen[sec.ID] {
				r.errorf(repository.NarrativeSectionsName, "duplicate section %s", sec.ID)
			}
			seen[sec.ID] = true
			if sec.LecoyStart > sec.LecoyEnd {
				r.errorf(repository.NarrativeSectionsName, "section %s ends at lecoy %d before it starts at %d", sec.ID, sec.LecoyEnd, sec.LecoyStart)
			}
		}
	}

	if col.IllustrationTitles != nil {
		seen := make(map[string]bool)
		for _, t := range col.IllustrationTitles.Titles {
			if seen[t.ID] {
				r.errorf(repository.IllustrationTitlesName, "duplicate title %s", t.ID)
			}
			seen[t.ID] = true
		}
	}

	if col.Books != nil {
		books := make(map[string]bool, len(col.BookIDs))
		for _, id := range col.BookIDs {
			books[id] = true
		}
		for _, e := range col.Books.Entries {
			if !books[e.Key] {
				r.warnf(repository.BooksName, "book %s has no directory", e.Key)
			}
		}
	}

	c.checkDigests(r, col.ID, s, col.Checksums, content, bits)
	return r
}
