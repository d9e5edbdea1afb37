// Package names decomposes archive file names into their structural parts.
//
// Archive image names follow one of two shapes:
//
//	<bookId>.<page>.tif                          body matter
//	<bookId>.<location>[.<role>][.<page>].tif    everything else
//
// A leading '*' marks an image known to be missing from the archive.
// Every function here is total: arbitrary input yields a value or false,
// never a panic, since the parser runs over directory listings.
package names

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	// DefaultDelimiter separates name parts.
	DefaultDelimiter = "."
	// DefaultPagePattern matches a page designator part.
	DefaultPagePattern = `[a-zA-Z]*\d+[rv]`
	// MissingMarker prefixes names of missing images.
	MissingMarker = "*"
)

// Components is the parsed form of a name.
type Components struct {
	BookID      string
	Location    Location
	HasLocation bool
	Role        Role
	HasRole     bool
	Page        Folio
	HasPage     bool
	Missing     bool
}

// Slot identifies the structural place a name occupies: its location,
// role and folio side. Names differing only in extension or digit padding
// share a slot.
func (c Components) Slot() string {
	slot := "-"
	if c.HasLocation {
		slot = c.Location.String()
	}
	if c.HasRole {
		slot += "/" + c.Role.String()
	}
	if c.HasPage {
		slot += fmt.Sprintf("/%s%d%s", c.Page.Prefix, c.Page.Number, c.Page.Side())
	}
	return slot
}

// Parser splits names on a delimiter and recognizes page designators.
type Parser struct {
	delim string
	page  *regexp.Regexp
}

// NewParser creates a parser. The page pattern is anchored to whole parts.
func NewParser(delim, pagePattern string) (*Parser, error) {
	if delim == "" {
		return nil, fmt.Errorf("empty name delimiter")
	}
	re, err := regexp.Compile(`^(?:` + pagePattern + `)$`)
	if err != nil {
		return nil, fmt.Errorf("invalid page pattern: %w", err)
	}
	return &Parser{delim: delim, page: re}, nil
}

// DefaultParser returns a parser for the standard archive naming scheme.
func DefaultParser() *Parser {
	p, err := NewParser(DefaultDelimiter, DefaultPagePattern)
	if err != nil {
		panic(err)
	}
	return p
}

// Delimiter returns the part separator.
func (p *Parser) Delimiter() string {
	return p.delim
}

func (p *Parser) split(name string) []string {
	return strings.Split(strings.TrimPrefix(name, MissingMarker), p.delim)
}

// IsPage reports whether a single part is a page designator.
func (p *Parser) IsPage(part string) bool {
	return p.page.MatchString(part)
}

// IsMissing reports whether name carries the missing-image marker.
func (p *Parser) IsMissing(name string) bool {
	return strings.HasPrefix(name, MissingMarker)
}

// Location returns the structural location of name.
func (p *Parser) Location(name string) (Location, bool) {
	parts := p.split(name)
	if len(parts) < 3 {
		return 0, false
	}
	if loc, ok := lookupLocation(parts[1]); ok {
		return loc, true
	}
	if len(parts) == 3 && p.IsPage(parts[1]) {
		return BodyMatter, true
	}
	return 0, false
}

// Role returns the structural role of name. Roles only appear after an
// explicit location token, so fewer than four parts never carry one.
func (p *Parser) Role(name string) (Role, bool) {
	parts := p.split(name)
	if len(parts) < 4 {
		return 0, false
	}
	return lookupRole(parts[2])
}

// Page returns the first page designator found in name.
func (p *Parser) Page(name string) (Folio, bool) {
	_, f, ok := p.pageIndex(name)
	return f, ok
}

// PageIndex returns the index of the page designator part in name.
func (p *Parser) PageIndex(name string) (int, bool) {
	i, _, ok := p.pageIndex(name)
	return i, ok
}

func (p *Parser) pageIndex(name string) (int, Folio, bool) {
	parts := p.split(name)
	if len(parts) < 3 {
		return -1, Folio{}, false
	}
	for i, part := range parts {
		if !p.IsPage(part) {
			continue
		}
		f, err := ParseFolio(part)
		if err != nil {
			continue
		}
		return i, f, true
	}
	return -1, Folio{}, false
}

// Parse returns every component of name.
func (p *Parser) Parse(name string) Components {
	c := Components{Missing: p.IsMissing(name)}
	parts := p.split(name)
	if len(parts) < 3 {
		return c
	}
	c.BookID = parts[0]
	c.Location, c.HasLocation = p.Location(name)
	c.Role, c.HasRole = p.Role(name)
	c.Page, c.HasPage = p.Page(name)
	return c
}

// ReplacePage returns name with its page designator part replaced by f.
func (p *Parser) ReplacePage(name string, f Folio) (string, bool) {
	i, ok := p.PageIndex(name)
	if !ok {
		return "", false
	}
	parts := p.split(name)
	parts[i] = f.String()
	return strings.Join(parts, p.delim), true
}

// StripMissing removes the missing-image marker, if present.
func StripMissing(name string) string {
	return strings.TrimPrefix(name, MissingMarker)
}
