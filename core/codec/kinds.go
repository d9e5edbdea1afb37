package codec

import "github.com/FocuswithJustin/RosaArchive/core/model"

// Book scoped kinds.
var (
	ImageListKind              = NewKind[*model.ImageList]("image list")
	CroppedImageListKind       = NewKind[*model.ImageList]("cropped image list")
	CropInfoKind               = NewKind[*model.CropInfo]("crop info")
	ChecksumKind               = NewKind[*model.DigestIndex]("checksums")
	IllustrationTaggingKind    = NewKind[*model.IllustrationTagging]("illustration tagging")
	NarrativeTaggingKind       = NewKind[*model.NarrativeTagging]("narrative tagging")
	ManualNarrativeTaggingKind = NewKind[*model.NarrativeTagging]("manual narrative tagging")
	ReducedTaggingKind         = NewKind[*model.NarrativeTagging]("reduced narrative tagging")
	TranscriptionKind          = NewKind[*model.Transcription]("transcription")
	MetadataKind               = NewKind[*model.BookMetadata]("book metadata")
	PermissionKind             = NewKind[*model.Permission]("permission")
	AnnotatedPageKind          = NewKind[*model.AnnotatedPage]("annotated page")
	FileMapKind                = NewKind[*model.FileMap]("file map")
)

// Collection scoped kinds.
var (
	CollectionConfigKind   = NewKind[*model.CollectionConfig]("collection config")
	CharacterNamesKind     = NewKind[*model.CharacterNames]("character names")
	IllustrationTitlesKind = NewKind[*model.IllustrationTitles]("illustration titles")
	NarrativeSectionsKind  = NewKind[*model.NarrativeSections]("narrative sections")
	ReferenceSheetKind     = NewKind[*model.ReferenceSheet]("reference sheet")
)

// DefaultRegistry returns a registry with every archive codec. Digest
// indexes use alg.
func DefaultRegistry(alg model.Algorithm) *Registry {
	r := NewRegistry()

	// Tables
	Register(r, ImageListKind, ImageListCodec{Table: "images"})
	Register(r, CroppedImageListKind, ImageListCodec{Table: "cropped images"})
	Register(r, IllustrationTaggingKind, IllustrationTaggingCodec{})
	Register(r, NarrativeTaggingKind, NarrativeTaggingCodec{})
	Register(r, FileMapKind, FileMapCodec{})
	Register(r, CharacterNamesKind, CharacterNamesCodec{})
	Register(r, IllustrationTitlesKind, IllustrationTitlesCodec{})
	Register(r, NarrativeSectionsKind, NarrativeSectionsCodec{})
	Register(r, ReferenceSheetKind, ReferenceSheetCodec{})

	// Plain text
	Register(r, CropInfoKind, CropInfoCodec{})
	Register(r, ManualNarrativeTaggingKind, SceneListCodec{Table: "manual narrative tagging"})
	Register(r, ReducedTaggingKind, SceneListCodec{Table: "reduced narrative tagging"})
	Register(r, ChecksumKind, ChecksumCodec{Algorithm: alg})
	Register(r, CollectionConfigKind, PropertiesCodec{})

	// Markup
	Register(r, TranscriptionKind, TranscriptionCodec{})
	Register(r, MetadataKind, DescriptionCodec{})
	Register(r, PermissionKind, PermissionCodec{})
	Register(r, AnnotatedPageKind, AnnotatedPageCodec{})

	return r
}
