// Package checker cross-validates loaded collections and books against
// each other and against their stores. Checking never modifies the
// archive; it only reports.
package checker

import (
	"context"

	"github.com/google/uuid"

	"github.com/FocuswithJustin/RosaArchive/core/errors"
	"github.com/FocuswithJustin/RosaArchive/core/model"
	"github.com/FocuswithJustin/RosaArchive/core/repository"
	"github.com/FocuswithJustin/RosaArchive/core/store"
	"github.com/FocuswithJustin/RosaArchive/core/xml"
	"github.com/FocuswithJustin/RosaArchive/internal/logging"
)

// Report holds the outcome of checking one collection or book.
type Report struct {
	RunID string
	// Subject is "collection" or "collection/book".
	Subject  string
	Errors   []error
	Warnings []error
}

// Pass reports whether the check found no errors. Warnings do not fail a
// check.
func (r *Report) Pass() bool {
	return len(r.Errors) == 0
}

func (r *Report) errorf(subject, format string, args ...any) {
	r.Errors = append(r.Errors, errors.NewInconsistency(subject, format, args...))
}

func (r *Report) warnf(subject, format string, args ...any) {
	r.Warnings = append(r.Warnings, errors.NewInconsistency(subject, format, args...))
}

// Loader loads collections and books. *repository.Repository and the
// caching layer both satisfy it.
type Loader interface {
	LoadCollection(id string, errs *errors.Collector) (*model.Collection, error)
	LoadBook(col *model.Collection, id string, errs *errors.Collector) (*model.Book, error)
}

// Checker runs consistency checks over a repository.
type Checker struct {
	repo      *repository.Repository
	loader    Loader
	validator xml.SchemaValidator
}

// Option configures a Checker.
type Option func(*Checker)

// WithValidator sets the validator for AoR annotation documents. The
// default only checks well-formedness.
func WithValidator(v xml.SchemaValidator) Option {
	return func(c *Checker) { c.validator = v }
}

// WithLoader makes Run load through l instead of the repository itself.
func WithLoader(l Loader) Option {
	return func(c *Checker) { c.loader = l }
}

// New creates a checker over repo.
func New(repo *repository.Repository, opts ...Option) *Checker {
	c := &Checker{repo: repo, loader: repo, validator: xml.WellFormed{}}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run loads and checks a collection and the named books, or every book
// when books is empty. Load diagnostics are reported verbatim as errors of
// the report they belong to. The first report is the collection's.
func (c *Checker) Run(ctx context.Context, collection string, books []string, bits bool) ([]*Report, error) {
	runID := uuid.New().String()
	ctx = logging.WithRunID(ctx, runID)

	loadErrs := &errors.Collector{}
	col, err := c.loader.LoadCollection(collection, loadErrs)
	if err != nil {
		return nil, err
	}
	colReport := c.CheckCollection(ctx, col, bits)
	colReport.RunID = runID
	colReport.Errors = append(loadErrs.Errors(), colReport.Errors...)
	reports := []*Report{colReport}

	if len(books) == 0 {
		books = col.BookIDs
	}
	for _, id := range books {
		if err := ctx.Err(); err != nil {
			return reports, err
		}
		bookErrs := &errors.Collector{}
		book, err := c.loader.LoadBook(col, id, bookErrs)
		if err != nil {
			reports = append(reports, &Report{RunID: runID, Subject: collection + "/" + id, Errors: []error{err}})
			continue
		}
		r := c.CheckBook(ctx, col, book, bits)
		r.RunID = runID
		r.Errors = append(bookErrs.Errors(), r.Errors...)
		reports = append(reports, r)
	}

	for _, r := range reports {
		logging.CheckCompleted(ctx, r.Subject, len(r.Errors), len(r.Warnings))
	}
	return reports, nil
}

// checkDigests compares a digest index against the artifacts in s. With
// bits set every entry is rehashed and compared.
func (c *Checker) checkDigests(r *Report, subject string, s store.Store, index *model.DigestIndex, content []string, bits bool) {
	indexName := c.repo.Checksums().IndexName(s)
	if index == nil {
		r.warnf(subject, "no checksum index %s", indexName)
		return
	}
	present := make(map[string]bool, len(content))
	for _, name := range content {
		present[name] = true
		if name == indexName {
			continue
		}
		if _, ok := index.Get(name); !ok {
			r.warnf(name, "not recorded in %s", indexName)
		}
	}
	for _, name := range index.Names() {
		if !present[name] {
			r.errorf(name, "recorded in %s but absent", indexName)
		}
	}
	if !bits {
		return
	}
	for _, res := range c.repo.Checksums().Verify(s, index) {
		if res.Match() || !present[res.Name] {
			continue
		}
		if res.Err != nil {
			r.Errors = append(r.Errors, res.Err)
			continue
		}
		r.Errors = append(r.Errors, res.Mismatch())
	}
}
