package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/FocuswithJustin/RosaArchive/core/codec"
	"github.com/FocuswithJustin/RosaArchive/core/errors"
	"github.com/FocuswithJustin/RosaArchive/core/model"
	"github.com/FocuswithJustin/RosaArchive/core/names"
	"github.com/FocuswithJustin/RosaArchive/core/store"
	"github.com/FocuswithJustin/RosaArchive/internal/validation"
)

// ErrExists is returned when a generated artifact would overwrite an
// existing one without force.
var ErrExists = errors.New("artifact already exists")

// requiredImages are the name tails every book is expected to have.
var requiredImages = []string{
	"binding.frontcover",
	"frontmatter.pastedown",
	"frontmatter.flyleaf.001r",
	"frontmatter.flyleaf.001v",
	"endmatter.pastedown",
	"binding.backcover",
}

// maxSkippedPerGap bounds the placeholders one pair of images can imply.
// Larger gaps are reported and left unfilled.
const maxSkippedPerGap = 1000

// GenerateImageList scans a book's images and writes its image list,
// refusing to replace an existing list unless force is set. Probe failures
// are reported to errs and leave the image's dimensions unknown.
func (r *Repository) GenerateImageList(ctx context.Context, col *model.Collection, book string, force bool, errs *errors.Collector) (*model.ImageList, error) {
	s, err := r.bookStore(col.ID, book)
	if err != nil {
		return nil, err
	}
	name := book + ImagesSuffix
	if s.Exists(name) && !force {
		return nil, fmt.Errorf("%s: %w", name, ErrExists)
	}
	list, err := r.BuildImageList(ctx, col, book, errs)
	if err != nil {
		return nil, err
	}
	if err := codec.Save(r.registry, codec.ImageListKind, s, name, list); err != nil {
		return nil, err
	}
	return list, nil
}

// BuildImageList computes a book's image list without writing it: the
// scanned images in structural order plus placeholders for the required
// images and for folios skipped inside a numbered run.
func (r *Repository) BuildImageList(ctx context.Context, col *model.Collection, book string, errs *errors.Collector) (*model.ImageList, error) {
	s, err := r.bookStore(col.ID, book)
	if err != nil {
		return nil, err
	}
	images, err := r.scanImages(ctx, s, errs)
	if err != nil {
		return nil, err
	}
	r.order.Sort(images)

	seen := make(map[string]bool, len(images))
	slots := make(map[string]bool, len(images))
	for _, img := range images {
		seen[img.ID] = true
		slots[r.parser.Parse(img.ID).Slot()] = true
	}
	var placeholders []model.BookImage
	add := func(id string) {
		if seen[id] {
			return
		}
		seen[id] = true
		placeholders = append(placeholders, col.MissingImage(id))
	}
	for _, tail := range requiredImages {
		id := book + r.parser.Delimiter() + joinParts(r.parser, tail) + ImageExt
		if slots[r.parser.Parse(id).Slot()] {
			continue
		}
		add(id)
	}
	for _, id := range r.skippedImages(images, errs) {
		add(id)
	}

	all := append(images, placeholders...)
	r.order.Sort(all)
	return &model.ImageList{Images: all}, nil
}

// GenerateAndWriteCroppedImageList scans the book's cropped images and
// writes the cropped image list.
func (r *Repository) GenerateAndWriteCroppedImageList(ctx context.Context, col *model.Collection, book string, errs *errors.Collector) (*model.ImageList, error) {
	s, err := r.bookStore(col.ID, book)
	if err != nil {
		return nil, err
	}
	images, err := r.scanImages(ctx, s.Child(CroppedDir), errs)
	if err != nil {
		return nil, err
	}
	r.order.Sort(images)
	list := &model.ImageList{Images: images}
	if err := codec.Save(r.registry, codec.CroppedImageListKind, s, book+CroppedImagesSuffix, list); err != nil {
		return nil, err
	}
	return list, nil
}

// scanImages lists the archive images in s and probes their dimensions.
func (r *Repository) scanImages(ctx context.Context, s store.Store, errs *errors.Collector) ([]model.BookImage, error) {
	content, err := s.List()
	if err != nil {
		return nil, err
	}
	loc, canLocate := s.(store.Locator)
	var images []model.BookImage
	for _, name := range content {
		if !validation.IsArchiveImage(name) {
			continue
		}
		img := model.BookImage{ID: name}
		if r.prober != nil && canLocate {
			w, h, err := r.prober.Probe(ctx, loc.Locate(name))
			if err != nil {
				errs.Add(err)
			} else {
				img.Width, img.Height = w, h
			}
		}
		images = append(images, img)
	}
	return images, nil
}

// skippedImages walks consecutive pairs of sorted images and returns the
// ids of folio sides implied between them. Two images belong to one run
// when their names have the same shape and differ only in the folio.
// Gaps wider than maxSkippedPerGap are reported to errs instead.
func (r *Repository) skippedImages(images []model.BookImage, errs *errors.Collector) []string {
	var out []string
	for i := 1; i < len(images); i++ {
		a, b := images[i-1].ID, images[i].ID
		fa, ia, ok := r.folio(a)
		if !ok {
			continue
		}
		fb, ib, ok := r.folio(b)
		if !ok || ia != ib || fa.Prefix != fb.Prefix || !sameRun(r.parser, a, b, ia) {
			continue
		}
		if gap := fb.Position() - fa.Position() - 1; gap > maxSkippedPerGap {
			errs.Add(errors.NewInconsistency(b, "%d folio sides skipped after %s, more than %d; gap not filled", gap, a, maxSkippedPerGap))
			continue
		}
		for pos := fa.Position() + 1; pos < fb.Position(); pos++ {
			if id, ok := r.parser.ReplacePage(a, fa.AtPosition(pos)); ok {
				out = append(out, id)
			}
		}
	}
	return out
}

func (r *Repository) folio(id string) (names.Folio, int, bool) {
	i, ok := r.parser.PageIndex(id)
	if !ok {
		return names.Folio{}, 0, false
	}
	f, _ := r.parser.Page(id)
	return f, i, true
}

// sameRun reports whether a and b have equal parts apart from the folio
// part at index page.
func sameRun(p *names.Parser, a, b string, page int) bool {
	pa, pb := splitName(p, a), splitName(p, b)
	if len(pa) != len(pb) {
		return false
	}
	for i := range pa {
		if i != page && pa[i] != pb[i] {
			return false
		}
	}
	return true
}

func splitName(p *names.Parser, name string) []string {
	return strings.Split(names.StripMissing(name), p.Delimiter())
}

// joinParts rewrites a dot separated tail with the parser's delimiter.
func joinParts(p *names.Parser, tail string) string {
	return strings.ReplaceAll(tail, ".", p.Delimiter())
}
