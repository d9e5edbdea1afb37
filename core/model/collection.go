// Package model defines the in-memory archive object graph.
//
// Collections and books are rebuilt on every load; nothing here is mutated
// behind the caller's back. A book names its collection by id only.
package model

const (
	DefaultMissingWidth  = 1000
	DefaultMissingHeight = 1500
)

// CollectionConfig is the content of a collection's config.properties.
type CollectionConfig struct {
	Languages     []string
	MissingWidth  int
	MissingHeight int
	Label         string
	Description   string
	Parent        string
	Children      []string
	Logo          string
}

// DefaultCollectionConfig returns the configuration used when a collection
// has no config.properties.
func DefaultCollectionConfig() CollectionConfig {
	return CollectionConfig{
		Languages:     []string{"en"},
		MissingWidth:  DefaultMissingWidth,
		MissingHeight: DefaultMissingHeight,
	}
}

// Collection is a set of books plus shared reference tables.
type Collection struct {
	ID      string
	BookIDs []string
	Config  CollectionConfig

	CharacterNames     *CharacterNames
	IllustrationTitles *IllustrationTitles
	NarrativeSections  *NarrativeSections
	People             *ReferenceSheet
	Locations          *ReferenceSheet
	Books              *ReferenceSheet
	Checksums          *DigestIndex
}

// Languages returns the supported language codes.
func (c *Collection) Languages() []string {
	return c.Config.Languages
}

// MissingImage returns the placeholder used for absent images.
func (c *Collection) MissingImage(id string) BookImage {
	return BookImage{
		ID:      id,
		Width:   c.Config.MissingWidth,
		Height:  c.Config.MissingHeight,
		Missing: true,
	}
}

// Book is one manuscript and everything the archive holds for it.
type Book struct {
	ID           string
	CollectionID string

	Images        *ImageList
	CroppedImages *ImageList
	CropInfo      *CropInfo
	Checksums     *DigestIndex

	IllustrationTagging    *IllustrationTagging
	NarrativeTagging       *NarrativeTagging
	ManualNarrativeTagging *NarrativeTagging
	ReducedTagging         *NarrativeTagging
	Transcription          *Transcription
	FileMap                *FileMap

	// Metadata and Permissions are keyed by language code.
	Metadata    map[string]*BookMetadata
	Permissions map[string]*Permission

	// Content lists every artifact name in the book's store.
	Content []string
	// AnnotatedPages holds only pages with an AoR annotation file.
	AnnotatedPages []*AnnotatedPage
}

// Pages returns the page designators of the book's images, in order.
func (b *Book) Pages(order ImageOrder) []string {
	if b.Images == nil {
		return nil
	}
	var out []string
	for _, img := range b.Images.Images {
		if f, ok := order.parser.Page(img.ID); ok {
			out = append(out, f.String())
		}
	}
	return out
}
