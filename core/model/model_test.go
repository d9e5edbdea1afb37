package model

import (
	"image"
	"reflect"
	"testing"

	"github.com/FocuswithJustin/RosaArchive/core/names"
)

func TestImageOrder(t *testing.T) {
	order := NewImageOrder(names.DefaultParser())
	ids := []string{
		"B.misc.Gamma.tif",
		"B.misc.beta.tif",
		"B.binding.backcover.tif",
		"B.endmatter.pastedown.tif",
		"B.endmatter.flyleaf.001r.tif",
		"B.002r.tif",
		"B.001v.tif",
		"B.001r.tif",
		"B.frontmatter.flyleaf.001v.tif",
		"B.frontmatter.flyleaf.001r.tif",
		"B.frontmatter.pastedown.tif",
		"B.binding.frontcover.tif",
		"B.binding.spine.tif",
		"unknown.txt",
	}
	images := make([]BookImage, len(ids))
	for i, id := range ids {
		images[i] = BookImage{ID: id}
	}
	order.Sort(images)

	var got []string
	for _, img := range images {
		got = append(got, img.ID)
	}
	want := []string{
		"B.binding.frontcover.tif",
		"B.frontmatter.pastedown.tif",
		"B.frontmatter.flyleaf.001r.tif",
		"B.frontmatter.flyleaf.001v.tif",
		"B.001r.tif",
		"B.001v.tif",
		"B.002r.tif",
		"B.endmatter.flyleaf.001r.tif",
		"B.endmatter.pastedown.tif",
		"B.binding.backcover.tif",
		"B.binding.spine.tif",
		"B.misc.beta.tif",
		"B.misc.Gamma.tif",
		"unknown.txt",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Sort() =\n%v\nwant\n%v", got, want)
	}
	if i := order.Sorted(images); i != -1 {
		t.Errorf("Sorted() = %d after Sort()", i)
	}

	images[0], images[1] = images[1], images[0]
	if i := order.Sorted(images); i != 1 {
		t.Errorf("Sorted() = %d, want 1", i)
	}
}

func TestImageListFind(t *testing.T) {
	l := &ImageList{Images: []BookImage{{ID: "a"}, {ID: "b"}}}
	if l.Find("b") != 1 || l.Find("c") != -1 {
		t.Error("Find() returned wrong index")
	}
	var nilList *ImageList
	if nilList.Find("a") != -1 || nilList.Len() != 0 {
		t.Error("nil list should be empty")
	}
}

func TestCropRect(t *testing.T) {
	c := CropData{ID: "a", Left: 0.1, Right: 0.2, Top: 0.05, Bottom: 0.15}
	if err := c.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	got := c.Rect(1000, 2000)
	want := image.Rect(100, 100, 800, 1700)
	if got != want {
		t.Errorf("Rect() = %v, want %v", got, want)
	}
}

func TestCropValidate(t *testing.T) {
	tests := []struct {
		name string
		crop CropData
	}{
		{"negative", CropData{Left: -0.1}},
		{"one", CropData{Top: 1}},
		{"horizontal overlap", CropData{Left: 0.5, Right: 0.5}},
		{"vertical overlap", CropData{Top: 0.6, Bottom: 0.5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.crop.Validate(); err == nil {
				t.Error("Validate() = nil, want error")
			}
		})
	}
}

func TestDigestIndex(t *testing.T) {
	d := NewDigestIndex(SHA1)
	d.Set("b", Digest{Algorithm: SHA1, Hex: "02"})
	d.Set("a", Digest{Algorithm: SHA1, Hex: "01"})
	if got := d.Names(); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("Names() = %v", got)
	}
	d.Delete("a")
	if _, ok := d.Get("a"); ok || d.Len() != 1 {
		t.Error("Delete() did not remove entry")
	}
	if got := SHA1.FileName("Ludwig"); got != "Ludwig.SHA1SUM" {
		t.Errorf("FileName() = %q", got)
	}
	if got := BLAKE3.FileName("Ludwig"); got != "Ludwig.B3SUM" {
		t.Errorf("FileName() = %q", got)
	}
}

func TestMissingImage(t *testing.T) {
	c := &Collection{Config: DefaultCollectionConfig()}
	img := c.MissingImage("B.001r.tif")
	if !img.Missing || img.Width != DefaultMissingWidth || img.Height != DefaultMissingHeight {
		t.Errorf("MissingImage() = %+v", img)
	}
}

func TestBookPages(t *testing.T) {
	order := NewImageOrder(names.DefaultParser())
	b := &Book{Images: &ImageList{Images: []BookImage{
		{ID: "B.binding.frontcover.tif"},
		{ID: "B.frontmatter.flyleaf.001r.tif"},
		{ID: "B.001r.tif"},
	}}}
	if got := b.Pages(order); !reflect.DeepEqual(got, []string{"001r", "001r"}) {
		t.Errorf("Pages() = %v", got)
	}
}
