package repository

import "strings"

// Collection scoped artifact names.
const (
	ConfigName             = "config.properties"
	CharacterNamesName     = "character_names.csv"
	IllustrationTitlesName = "illustration_titles.csv"
	NarrativeSectionsName  = "narrative_sections.csv"
	PeopleName             = "people.csv"
	LocationsName          = "locations.csv"
	BooksName              = "books.csv"
)

// Book scoped artifact suffixes, appended to the book id.
const (
	ImagesSuffix             = ".images.csv"
	CroppedImagesSuffix      = ".images.crop.csv"
	CropInfoSuffix           = ".crop.txt"
	ReducedTaggingSuffix     = ".redtag.txt"
	IllustrationTagSuffix    = ".imagetag.csv"
	NarrativeTagSuffix       = ".nartag.csv"
	ManualNarrativeTagSuffix = ".nartag.txt"
	TranscriptionSuffix      = ".transcription.xml"
)

const (
	// FileMapName is the book's record of ingest renames.
	FileMapName = "filemap.csv"
	// CroppedDir is the book sub-store holding crop outputs.
	CroppedDir = "cropped"
	// ImageExt is the extension of archive images.
	ImageExt = ".tif"

	aorInfix  = ".aor."
	aorSuffix = ".xml"
)

// DescriptionName returns the per-language description artifact name.
func DescriptionName(book, lang string) string {
	return book + ".description_" + lang + ".xml"
}

// PermissionName returns the per-language permission artifact name.
func PermissionName(book, lang string) string {
	return book + ".permission_" + lang + ".html"
}

// AnnotatedPageName returns the AoR annotation artifact name for a page.
func AnnotatedPageName(book, page string) string {
	return book + aorInfix + page + aorSuffix
}

// AnnotatedPageOf reports whether name is an AoR annotation of book and
// returns the page part.
func AnnotatedPageOf(book, name string) (string, bool) {
	rest, ok := strings.CutPrefix(name, book+aorInfix)
	if !ok {
		return "", false
	}
	page, ok := strings.CutSuffix(rest, aorSuffix)
	if !ok || page == "" {
		return "", false
	}
	return page, true
}
