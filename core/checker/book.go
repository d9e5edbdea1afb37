package checker

import (
	"context"
	"strings"

	"github.com/FocuswithJustin/RosaArchive/core/model"
	"github.com/FocuswithJustin/RosaArchive/core/names"
	"github.com/FocuswithJustin/RosaArchive/core/repository"
	"github.com/FocuswithJustin/RosaArchive/core/store"
	"github.com/FocuswithJustin/RosaArchive/core/xml"
	"github.com/FocuswithJustin/RosaArchive/internal/validation"
)

// bookCheck carries the lookups shared by the checks of one book.
type bookCheck struct {
	*Report
	c       *Checker
	col     *model.Collection
	book    *model.Book
	s       store.Store
	parser  *names.Parser
	content map[string]bool
	// pages holds the page designators and image ids of the image list.
	pages map[string]bool
}

// CheckBook checks a loaded book against its store and its collection.
func (c *Checker) CheckBook(ctx context.Context, col *model.Collection, book *model.Book, bits bool) *Report {
	b := &bookCheck{
		Report:  &Report{Subject: col.ID + "/" + book.ID},
		c:       c,
		col:     col,
		book:    book,
		s:       c.repo.BookStore(col.ID, book.ID),
		parser:  c.repo.Parser(),
		content: make(map[string]bool, len(book.Content)),
		pages:   make(map[string]bool),
	}
	for _, name := range book.Content {
		b.content[name] = true
	}

	b.checkNames()
	b.checkImages()
	b.checkCrops()
	b.checkCroppedImages()
	b.checkIllustrations()
	b.checkNarrative(book.ID+repository.NarrativeTagSuffix, book.NarrativeTagging)
	b.checkNarrative(book.ID+repository.ManualNarrativeTagSuffix, book.ManualNarrativeTagging)
	b.checkNarrative(book.ID+repository.ReducedTaggingSuffix, book.ReducedTagging)
	b.checkAnnotatedPages()
	b.checkTranscription()
	b.checkLanguages()
	c.checkDigests(b.Report, b.Subject, b.s, book.Checksums, book.Content, bits)
	return b.Report
}

// checkNames flags artifacts that follow no archive naming convention.
func (b *bookCheck) checkNames() {
	id := b.book.ID
	suffixes := []string{
		repository.ImagesSuffix, repository.CroppedImagesSuffix, repository.CropInfoSuffix,
		repository.ReducedTaggingSuffix, repository.IllustrationTagSuffix, repository.NarrativeTagSuffix,
		repository.ManualNarrativeTagSuffix, repository.TranscriptionSuffix,
	}
	indexName := b.c.repo.Checksums().IndexName(b.s)

	for _, name := range b.book.Content {
		if name == repository.FileMapName || name == indexName {
			continue
		}
		if validation.IsArchiveImage(name) {
			if !strings.HasPrefix(name, id+b.parser.Delimiter()) {
				b.errorf(name, "image does not belong to book %s", id)
			} else if _, ok := b.parser.Location(name); !ok {
				b.warnf(name, "image name has no recognized location")
			}
			b.checkImageContent(name)
			continue
		}
		if _, ok := repository.AnnotatedPageOf(id, name); ok {
			continue
		}
		known := false
		for _, suffix := range suffixes {
			if name == id+suffix {
				known = true
				break
			}
		}
		if !known && (isLanguageArtifact(name, id+".description_", ".xml") || isLanguageArtifact(name, id+".permission_", ".html")) {
			known = true
		}
		if !known {
			b.warnf(name, "unexpected artifact")
		}
	}
}

// checkImageContent flags an image whose leading bytes do not match the
// encoding its extension names.
func (b *bookCheck) checkImageContent(name string) {
	r, err := b.s.Open(name)
	if err != nil {
		b.errorf(name, "cannot read image: %v", err)
		return
	}
	defer r.Close()
	if err := validation.ValidateImage(r, name); err != nil {
		b.errorf(name, "%v", err)
	}
}

func isLanguageArtifact(name, prefix, suffix string) bool {
	rest, ok := strings.CutPrefix(name, prefix)
	if !ok {
		return false
	}
	lang, ok := strings.CutSuffix(rest, suffix)
	return ok && lang != ""
}

// checkImages checks the image list against the store and against the
// structural ordering rules.
func (b *bookCheck) checkImages() {
	listName := b.book.ID + repository.ImagesSuffix
	list := b.book.Images
	if list == nil {
		b.errorf(listName, "image list missing")
		return
	}

	seen := make(map[string]bool, list.Len())
	for _, img := range list.Images {
		if seen[img.ID] {
			b.errorf(listName, "duplicate image %s", img.ID)
		}
		seen[img.ID] = true
		b.pages[img.ID] = true
		if f, ok := b.parser.Page(img.ID); ok {
			b.pages[f.String()] = true
		}
		if !img.Missing && !b.content[img.ID] {
			b.errorf(img.ID, "listed in %s but absent", listName)
		}
		if img.Missing && b.content[img.ID] {
			b.warnf(img.ID, "marked missing in %s but present", listName)
		}
	}
	if i := b.c.repo.Order().Sorted(list.Images); i >= 0 {
		b.errorf(listName, "image %s is out of order", list.Images[i].ID)
	}

	for _, name := range b.book.Content {
		if validation.IsArchiveImage(name) && !seen[name] {
			b.errorf(name, "image not in %s", listName)
		}
	}

	if list.Len() >= 2 {
		b.checkRequiredImages(seen)
	}
}

func (b *bookCheck) checkRequiredImages(seen map[string]bool) {
	type required struct {
		loc  names.Location
		role names.Role
		page string
	}
	want := []required{
		{names.Binding, names.FrontCover, ""},
		{names.FrontMatter, names.Pastedown, ""},
		{names.FrontMatter, names.Flyleaf, "001r"},
		{names.FrontMatter, names.Flyleaf, "001v"},
		{names.EndMatter, names.Pastedown, ""},
		{names.Binding, names.BackCover, ""},
	}
	for _, w := range want {
		found := false
		for id := range seen {
			c := b.parser.Parse(id)
			if !c.HasLocation || c.Location != w.loc || !c.HasRole || c.Role != w.role {
				continue
			}
			if w.page != "" && (!c.HasPage || c.Page.String() != w.page) {
				continue
			}
			found = true
			break
		}
		if !found {
			desc := w.loc.String() + " " + w.role.String()
			if w.page != "" {
				desc += " " + w.page
			}
			b.errorf(b.book.ID+repository.ImagesSuffix, "no %s image", desc)
		}
	}
}

// checkCrops requires crop data for every present image once a book has
// crop data at all.
func (b *bookCheck) checkCrops() {
	info := b.book.CropInfo
	name := b.book.ID + repository.CropInfoSuffix
	if info == nil {
		if b.book.Images.Len() > 0 {
			b.warnf(name, "no crop data")
		}
		return
	}
	for _, img := range imagesOf(b.book.Images) {
		if img.Missing {
			continue
		}
		if _, ok := info.Find(img.ID); !ok {
			b.errorf(img.ID, "no crop data in %s", name)
		}
	}
	for _, e := range info.Entries {
		if b.book.Images != nil && b.book.Images.Find(e.ID) < 0 {
			b.errorf(name, "crop data for unknown image %s", e.ID)
		}
	}
}

// checkCroppedImages requires the cropped list to be an ordered subset of
// the image list whose files exist in the cropped store.
func (b *bookCheck) checkCroppedImages() {
	cropped := b.book.CroppedImages
	if cropped == nil {
		return
	}
	name := b.book.ID + repository.CroppedImagesSuffix
	cs := b.s.Child(repository.CroppedDir)
	last := -1
	for _, img := range cropped.Images {
		i := b.book.Images.Find(img.ID)
		switch {
		case i < 0:
			b.errorf(name, "cropped image %s not in image list", img.ID)
			continue
		case i < last:
			b.errorf(name, "cropped image %s is out of order", img.ID)
		}
		last = max(last, i)
		if !img.Missing && !cs.Exists(img.ID) {
			b.errorf(img.ID, "listed in %s but absent from %s/", name, repository.CroppedDir)
		}
	}
}

func (b *bookCheck) checkIllustrations() {
	tagging := b.book.IllustrationTagging
	if tagging == nil {
		return
	}
	name := b.book.ID + repository.IllustrationTagSuffix
	seen := make(map[string]bool)
	for _, ill := range tagging.Illustrations {
		if seen[ill.ID] {
			b.errorf(name, "duplicate illustration %s", ill.ID)
		}
		seen[ill.ID] = true
		b.checkPage(name, ill.Page)
		if titles := b.col.IllustrationTitles; titles != nil {
			for _, t := range ill.Titles {
				if !titles.Has(t) {
					b.errorf(name, "illustration %s has unknown title %s", ill.ID, t)
				}
			}
		}
		if chars := b.col.CharacterNames; chars != nil {
			for _, ch := range ill.Characters {
				if !chars.Has(ch) {
					b.errorf(name, "illustration %s has unknown character %s", ill.ID, ch)
				}
			}
		}
	}
}

func (b *bookCheck) checkNarrative(name string, tagging *model.NarrativeTagging) {
	if tagging == nil {
		return
	}
	for _, scene := range tagging.Scenes {
		if sections := b.col.NarrativeSections; sections != nil && !sections.Has(scene.SectionID) {
			b.errorf(name, "unknown narrative section %s", scene.SectionID)
		}
		b.checkPage(name, scene.Start.Page)
		b.checkPage(name, scene.End.Page)
	}
}

// checkPage reports page references that match no image of the book.
func (b *bookCheck) checkPage(artifact, page string) {
	if page == "" || b.book.Images == nil {
		return
	}
	if !b.pages[page] {
		b.errorf(artifact, "unknown page %s", page)
	}
}

// checkAnnotatedPages validates every AoR document and resolves its page.
func (b *bookCheck) checkAnnotatedPages() {
	for _, ap := range b.book.AnnotatedPages {
		data, err := store.ReadAll(b.s, ap.ID)
		if err != nil {
			b.Errors = append(b.Errors, err)
			continue
		}
		if res := b.c.validator.Validate(data); !res.Valid {
			for _, msg := range res.Messages() {
				b.errorf(ap.ID, "%s", msg)
			}
		}
		b.checkPage(ap.ID, ap.Page)
	}
}

// checkTranscription resolves the page breaks of the transcription.
func (b *bookCheck) checkTranscription() {
	t := b.book.Transcription
	if t == nil {
		return
	}
	name := b.book.ID + repository.TranscriptionSuffix
	doc, err := xml.Parse([]byte(t.XML))
	if err != nil {
		// malformed transcriptions are already reported by the load
		return
	}
	breaks, err := doc.XPath("//pb")
	if err != nil {
		b.Errors = append(b.Errors, err)
		return
	}
	if len(breaks) == 0 {
		b.warnf(name, "transcription has no page breaks")
	}
	for _, pb := range breaks {
		if n := pb.Attr("n"); n != "" && b.book.Images != nil && !b.pages[n] {
			b.warnf(name, "page break %s matches no image", n)
		}
	}
}

func (b *bookCheck) checkLanguages() {
	for _, lang := range b.col.Languages() {
		if _, ok := b.book.Metadata[lang]; !ok {
			b.warnf(repository.DescriptionName(b.book.ID, lang), "no description for language %s", lang)
		}
		if _, ok := b.book.Permissions[lang]; !ok {
			b.warnf(repository.PermissionName(b.book.ID, lang), "no permission for language %s", lang)
		}
	}
}

func imagesOf(l *model.ImageList) []model.BookImage {
	if l == nil {
		return nil
	}
	return l.Images
}
