package model

import (
	"sort"
	"strings"

	"github.com/FocuswithJustin/RosaArchive/core/names"
)

// BookImage is one slot in a book's page ordering. Missing images keep
// their slot so ordering stays complete.
type BookImage struct {
	// ID is the image file name, without the missing marker.
	ID string
	// Width and Height are in pixels, 0 when unknown.
	Width  int
	Height int
	// Missing is true when the archive has no file for this slot.
	Missing bool
}

// ImageList is an ordered sequence of book images.
type ImageList struct {
	Images []BookImage
}

// Find returns the index of the image with the given id, or -1.
func (l *ImageList) Find(id string) int {
	if l == nil {
		return -1
	}
	for i, img := range l.Images {
		if img.ID == id {
			return i
		}
	}
	return -1
}

// Len returns the number of images.
func (l *ImageList) Len() int {
	if l == nil {
		return 0
	}
	return len(l.Images)
}

// ImageOrder orders image ids by manuscript structure:
// front cover < front pastedown < other front matter < body matter <
// end matter < end pastedown < back cover < other binding < misc.
// Ties are broken by case-insensitive id.
type ImageOrder struct {
	parser *names.Parser
}

// NewImageOrder returns an ordering that classifies ids with p.
func NewImageOrder(p *names.Parser) ImageOrder {
	return ImageOrder{parser: p}
}

// Rank returns the structural rank of an image id.
func (o ImageOrder) Rank(id string) int {
	loc, ok := o.parser.Location(id)
	if !ok {
		return 9
	}
	role, hasRole := o.parser.Role(id)
	switch loc {
	case Binding:
		if hasRole && role == names.FrontCover {
			return 0
		}
		if hasRole && role == names.BackCover {
			return 6
		}
		return 7
	case FrontMatter:
		if hasRole && role == names.Pastedown {
			return 1
		}
		return 2
	case BodyMatter:
		return 3
	case EndMatter:
		if hasRole && role == names.Pastedown {
			return 5
		}
		return 4
	case Misc:
		return 8
	}
	return 9
}

// Compare returns -1, 0 or 1.
func (o ImageOrder) Compare(a, b string) int {
	ra, rb := o.Rank(a), o.Rank(b)
	switch {
	case ra < rb:
		return -1
	case ra > rb:
		return 1
	}
	return strings.Compare(strings.ToLower(a), strings.ToLower(b))
}

// Sort orders images in place.
func (o ImageOrder) Sort(images []BookImage) {
	sort.SliceStable(images, func(i, j int) bool {
		return o.Compare(images[i].ID, images[j].ID) < 0
	})
}

// Sorted reports whether images are in non-decreasing structural order.
// It returns the index of the first out-of-order image, or -1.
func (o ImageOrder) Sorted(images []BookImage) int {
	for i := 1; i < len(images); i++ {
		if o.Compare(images[i-1].ID, images[i].ID) > 0 {
			return i
		}
	}
	return -1
}

// Location aliases keep callers from importing names for the common case.
const (
	Binding     = names.Binding
	FrontMatter = names.FrontMatter
	BodyMatter  = names.BodyMatter
	EndMatter   = names.EndMatter
	Misc        = names.Misc
)
