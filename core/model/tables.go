package model

// Character is a named character with one name per language.
type Character struct {
	ID    string
	Names map[string]string
}

// CharacterNames is the collection's character reference table.
type CharacterNames struct {
	// Languages lists the name columns in file order.
	Languages  []string
	Characters []Character
}

// Has reports whether a character id exists.
func (c *CharacterNames) Has(id string) bool {
	if c == nil {
		return false
	}
	for _, ch := range c.Characters {
		if ch.ID == id {
			return true
		}
	}
	return false
}

// IllustrationTitle is one row of the illustration titles table.
type IllustrationTitle struct {
	ID    string
	Title string
}

// IllustrationTitles is the collection's illustration title table.
type IllustrationTitles struct {
	Titles []IllustrationTitle
}

// Has reports whether a title id exists.
func (t *IllustrationTitles) Has(id string) bool {
	if t == nil {
		return false
	}
	for _, r := range t.Titles {
		if r.ID == id {
			return true
		}
	}
	return false
}

// NarrativeSection is a section of the narrative with its Lecoy line range.
type NarrativeSection struct {
	ID          string
	Description string
	LecoyStart  int
	LecoyEnd    int
}

// NarrativeSections is the collection's narrative section table.
type NarrativeSections struct {
	Sections []NarrativeSection
}

// Has reports whether a section id exists.
func (n *NarrativeSections) Has(id string) bool {
	if n == nil {
		return false
	}
	for _, s := range n.Sections {
		if s.ID == id {
			return true
		}
	}
	return false
}

// ReferenceEntry is a canonical name followed by its alternate spellings.
type ReferenceEntry struct {
	Key        string
	Alternates []string
}

// ReferenceSheet is a people, locations or books cross reference sheet.
type ReferenceSheet struct {
	Header  []string
	Entries []ReferenceEntry
}

// Illustration is one row of a book's illustration tagging.
type Illustration struct {
	ID           string
	Page         string
	Titles       []string
	Initials     string
	Characters   []string
	Costume      string
	Object       string
	Landscape    string
	Architecture string
	Other        string
}

// IllustrationTagging lists the illustrations of a book.
type IllustrationTagging struct {
	Illustrations []Illustration
}

// TextPosition locates a line of text on a page column.
type TextPosition struct {
	Page   string
	Column string
	Line   int
}

// NarrativeScene ties a narrative section to a span of the text.
type NarrativeScene struct {
	SectionID string
	Start     TextPosition
	End       TextPosition
}

// NarrativeTagging lists the scenes found in a book.
type NarrativeTagging struct {
	Scenes []NarrativeScene
}

// FileMapping records the name a file was delivered under.
type FileMapping struct {
	Original string
	Archived string
}

// FileMap lists the renames applied when a book was ingested.
type FileMap struct {
	Entries []FileMapping
}

// BookMetadata is the per-language description of a book.
type BookMetadata struct {
	Title            string
	Date             string
	DateStart        int
	DateEnd          int
	Origin           string
	Repository       string
	Shelfmark        string
	Type             string
	NumIllustrations int
	NumPages         int
}

// Permission is the per-language rights statement of a book.
type Permission struct {
	HTML string
}

// Transcription is the raw aggregated transcription markup of a book.
type Transcription struct {
	XML string
}

// Marginal is a marginal annotation on an AoR page.
type Marginal struct {
	Hand     string
	Position string
	Text     string
}

// Annotation is a non-marginal AoR mark (underline, symbol, numeral...).
type Annotation struct {
	Kind   string
	Text   string
	Method string
}

// AnnotatedPage is the AoR annotation record of one page.
type AnnotatedPage struct {
	// ID is the artifact name.
	ID          string
	Page        string
	Reader      string
	Pagination  string
	Marginalia  []Marginal
	Annotations []Annotation
}
