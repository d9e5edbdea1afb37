package transcription

import (
	"encoding/xml"
	"io"
	"strings"

	"github.com/FocuswithJustin/RosaArchive/core/encoding"
	"github.com/FocuswithJustin/RosaArchive/core/errors"
)

const xmlNamespace = "http://www.w3.org/XML/1998/namespace"

// Fragment is the markup of one page, or of one column of a page.
type Fragment struct {
	Page   string
	Column string
	XML    string
}

// splitter accumulates fragments while walking a token stream.
type splitter struct {
	frags []Fragment
	cur   *Fragment
	buf   strings.Builder
	// open holds elements started inside fragments and not yet ended.
	open       []xml.StartElement
	pending    bool
	hasContent bool
}

// Split walks aggregated transcription markup and cuts it at every pb and
// cb milestone. Content before the first pb is dropped. Elements left open
// at a cut are closed at the end of the fragment and reopened at the start
// of the next, so a couplet broken by a column yields two well-formed
// halves. Fragments with no content are omitted.
func Split(r io.Reader) ([]Fragment, error) {
	d := xml.NewDecoder(r)
	s := &splitter{}
	for {
		tok, err := d.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			line, _ := d.InputPos()
			pe := errors.NewParse(format, "", "Malformed transcription: "+err.Error())
			pe.Line = line
			pe.Err = err
			return nil, pe
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "pb":
				s.cut(attr(t, "n"), "")
				continue
			case "cb":
				// columns only cut inside a page
				if s.cur != nil {
					s.cut(s.cur.Page, attr(t, "n"))
				}
				continue
			}
			if s.cur == nil {
				continue
			}
			s.closePending()
			s.writeStart(t)
			s.pending = true
			s.hasContent = true
			s.open = append(s.open, t.Copy())
		case xml.EndElement:
			if t.Name.Local == "pb" || t.Name.Local == "cb" || s.cur == nil || len(s.open) == 0 {
				continue
			}
			s.open = s.open[:len(s.open)-1]
			if s.pending {
				s.buf.WriteString("/>")
				s.pending = false
				continue
			}
			s.writeEnd(t.Name.Local)
		case xml.CharData:
			if s.cur == nil {
				continue
			}
			s.closePending()
			text := string(t)
			if strings.TrimSpace(text) != "" {
				s.hasContent = true
			}
			s.buf.WriteString(encoding.EscapeXMLText(text))
		}
	}
	s.flush()
	return s.frags, nil
}

// cut ends the current fragment and starts a new one.
func (s *splitter) cut(page, column string) {
	s.flush()
	s.cur = &Fragment{Page: page, Column: column}
	for _, el := range s.open {
		s.writeStart(el)
		s.buf.WriteString(">")
	}
}

func (s *splitter) flush() {
	if s.cur == nil {
		return
	}
	s.closePending()
	for i := len(s.open) - 1; i >= 0; i-- {
		s.writeEnd(s.open[i].Name.Local)
	}
	if s.hasContent {
		s.cur.XML = strings.TrimSpace(s.buf.String())
		s.frags = append(s.frags, *s.cur)
	}
	s.cur = nil
	s.buf.Reset()
	s.hasContent = false
}

func (s *splitter) closePending() {
	if s.pending {
		s.buf.WriteString(">")
		s.pending = false
	}
}

// writeStart writes a start tag without its closing bracket. Namespace
// declarations are dropped; fragments are bare TEI.
func (s *splitter) writeStart(el xml.StartElement) {
	s.buf.WriteString("<")
	s.buf.WriteString(el.Name.Local)
	for _, a := range el.Attr {
		if a.Name.Space == "xmlns" || a.Name.Local == "xmlns" {
			continue
		}
		s.buf.WriteString(" ")
		if a.Name.Space == xmlNamespace {
			s.buf.WriteString("xml:")
		}
		s.buf.WriteString(a.Name.Local)
		s.buf.WriteString(`="`)
		s.buf.WriteString(encoding.EscapeXMLAttr(a.Value))
		s.buf.WriteString(`"`)
	}
}

func (s *splitter) writeEnd(name string) {
	s.buf.WriteString("</")
	s.buf.WriteString(name)
	s.buf.WriteString(">")
}

func attr(el xml.StartElement, name string) string {
	for _, a := range el.Attr {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}
