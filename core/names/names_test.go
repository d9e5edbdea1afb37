package names

import (
	"strings"
	"testing"
)

func TestLocation(t *testing.T) {
	p := DefaultParser()
	tests := []struct {
		name   string
		want   Location
		wantOK bool
	}{
		{"Ludwig.binding.frontcover.tif", Binding, true},
		{"Ludwig.frontmatter.pastedown.tif", FrontMatter, true},
		{"Ludwig.frontmatter.flyleaf.001r.tif", FrontMatter, true},
		{"Ludwig.001r.tif", BodyMatter, true},
		{"Ludwig.fol12v.tif", BodyMatter, true},
		{"*Ludwig.002v.tif", BodyMatter, true},
		{"Ludwig.endmatter.pastedown.tif", EndMatter, true},
		{"Ludwig.misc.detail.tif", Misc, true},
		{"Ludwig.BINDING.backcover.tif", Binding, true},
		{"Ludwig.images.csv", 0, false},
		{"Ludwig.001r.extra.tif", 0, false},
		{"config.properties", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := p.Location(tt.name)
			if ok != tt.wantOK || (ok && got != tt.want) {
				t.Errorf("Location(%q) = %v, %v; want %v, %v", tt.name, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestRole(t *testing.T) {
	p := DefaultParser()
	tests := []struct {
		name   string
		want   Role
		wantOK bool
	}{
		{"Ludwig.binding.frontcover.tif", FrontCover, true},
		{"Ludwig.binding.backcover.tif", BackCover, true},
		{"Ludwig.frontmatter.flyleaf.001r.tif", Flyleaf, true},
		{"Ludwig.endmatter.pastedown.tif", Pastedown, true},
		{"Ludwig.001r.tif", 0, false},
		// a role token in a 3 part name is not a role
		{"Ludwig.pastedown.tif", 0, false},
		{"Ludwig.misc.detail.tif", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := p.Role(tt.name)
			if ok != tt.wantOK || (ok && got != tt.want) {
				t.Errorf("Role(%q) = %v, %v; want %v, %v", tt.name, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestPage(t *testing.T) {
	p := DefaultParser()
	tests := []struct {
		name    string
		want    string
		wantPos int
		wantOK  bool
	}{
		{"Ludwig.001r.tif", "001r", 2, true},
		{"Ludwig.001v.tif", "001v", 3, true},
		{"Ludwig.frontmatter.flyleaf.002v.tif", "002v", 5, true},
		{"Ludwig.fol12r.tif", "fol12r", 24, true},
		{"Ludwig.binding.frontcover.tif", "", 0, false},
		{"Ludwig.001x.tif", "", 0, false},
		{"001r.tif", "", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := p.Page(tt.name)
			if ok != tt.wantOK {
				t.Fatalf("Page(%q) ok = %v, want %v", tt.name, ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if got.String() != tt.want {
				t.Errorf("Page(%q) = %q, want %q", tt.name, got.String(), tt.want)
			}
			if got.Position() != tt.wantPos {
				t.Errorf("Page(%q).Position() = %d, want %d", tt.name, got.Position(), tt.wantPos)
			}
		})
	}
}

func TestIsMissing(t *testing.T) {
	p := DefaultParser()
	if !p.IsMissing("*Ludwig.001r.tif") {
		t.Error("IsMissing(*...) = false")
	}
	if p.IsMissing("Ludwig.001r.tif") {
		t.Error("IsMissing(...) = true")
	}
}

func TestParse(t *testing.T) {
	p := DefaultParser()
	c := p.Parse("*Ludwig.frontmatter.flyleaf.001v.tif")
	if c.BookID != "Ludwig" || !c.Missing {
		t.Errorf("Parse() book/missing = %q/%v", c.BookID, c.Missing)
	}
	if !c.HasLocation || c.Location != FrontMatter {
		t.Errorf("Parse() location = %v/%v", c.Location, c.HasLocation)
	}
	if !c.HasRole || c.Role != Flyleaf {
		t.Errorf("Parse() role = %v/%v", c.Role, c.HasRole)
	}
	if !c.HasPage || c.Page.String() != "001v" {
		t.Errorf("Parse() page = %v/%v", c.Page, c.HasPage)
	}

	short := p.Parse("filemap.csv")
	if short.HasLocation || short.HasRole || short.HasPage || short.BookID != "" {
		t.Errorf("Parse(short) = %+v, want all empty", short)
	}
}

func TestCustomDelimiter(t *testing.T) {
	p, err := NewParser("_", DefaultPagePattern)
	if err != nil {
		t.Fatal(err)
	}
	if loc, ok := p.Location("Ludwig_001r_tif"); !ok || loc != BodyMatter {
		t.Errorf("Location() = %v, %v", loc, ok)
	}
	if _, err := NewParser("", DefaultPagePattern); err == nil {
		t.Error("NewParser(\"\") should fail")
	}
	if _, err := NewParser(".", "("); err == nil {
		t.Error("NewParser() with bad pattern should fail")
	}
}

func TestReplacePage(t *testing.T) {
	p := DefaultParser()
	got, ok := p.ReplacePage("Ludwig.frontmatter.flyleaf.001r.tif", Folio{Number: 2, Width: 3, Verso: true})
	if !ok || got != "Ludwig.frontmatter.flyleaf.002v.tif" {
		t.Errorf("ReplacePage() = %q, %v", got, ok)
	}
	if _, ok := p.ReplacePage("Ludwig.binding.frontcover.tif", Folio{}); ok {
		t.Error("ReplacePage() without page should fail")
	}
}

func TestFolioAtPosition(t *testing.T) {
	f, err := ParseFolio("009v")
	if err != nil {
		t.Fatal(err)
	}
	next := f.AtPosition(f.Position() + 1)
	if next.String() != "010r" {
		t.Errorf("AtPosition() = %q, want 010r", next.String())
	}
	if _, err := ParseFolio("12x"); err == nil {
		t.Error("ParseFolio(12x) should fail")
	}
	for _, in := range []string{"99999999999999999999999r", "4611686018427387903v"} {
		if _, err := ParseFolio(in); err == nil {
			t.Errorf("ParseFolio(%s) should reject a leaf number past MaxFolioNumber", in)
		}
	}
	if f, err := ParseFolio("4611686018427387902v"); err != nil || f.Position() <= 0 {
		t.Errorf("ParseFolio(MaxFolioNumber) = %+v, %v", f, err)
	}
}

func TestComponentsSlot(t *testing.T) {
	p := DefaultParser()
	tests := []struct {
		a, b string
		same bool
	}{
		{"Ludwig.binding.frontcover.tif", "Ludwig.binding.frontcover.tiff", true},
		{"Ludwig.frontmatter.flyleaf.001r.tif", "Ludwig.frontmatter.flyleaf.01r.tif", true},
		{"Ludwig.frontmatter.flyleaf.001r.tif", "Ludwig.frontmatter.flyleaf.001v.tif", false},
		{"Ludwig.binding.frontcover.tif", "Ludwig.binding.backcover.tif", false},
		{"Ludwig.001r.tif", "Ludwig.misc.detail.001r.tif", false},
	}
	for _, tt := range tests {
		if got := p.Parse(tt.a).Slot() == p.Parse(tt.b).Slot(); got != tt.same {
			t.Errorf("Slot(%s) == Slot(%s) is %v, want %v", tt.a, tt.b, got, tt.same)
		}
	}
}

// The parser runs over arbitrary directory listings and must be total.
func TestParserTotal(t *testing.T) {
	p := DefaultParser()
	inputs := []string{
		"", ".", "..", "...", "*", "**", "*.*.*", "a..b", ".001r.",
		"x.001r", "x.999999999999999999999999r.tif", "\x00.\x00.\x00",
		strings.Repeat("a.", 1000), "é.001r.tif", "x.frontmatter.flyleaf.tif.tif.tif",
		"x.001r.001v.tif", "x.r.v", "x.1.1",
	}
	for _, in := range inputs {
		func() {
			defer func() {
				if r := recover(); r != nil {
					t.Errorf("parser panicked on %q: %v", in, r)
				}
			}()
			p.Location(in)
			p.Role(in)
			p.Page(in)
			p.IsMissing(in)
			p.Parse(in)
		}()
	}
}
