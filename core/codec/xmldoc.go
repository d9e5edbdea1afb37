package codec

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/FocuswithJustin/RosaArchive/core/errors"
	"github.com/FocuswithJustin/RosaArchive/core/model"
	"github.com/FocuswithJustin/RosaArchive/core/xml"
)

// TranscriptionCodec keeps the aggregated transcription markup verbatim.
// Markup that is not well-formed is reported but still returned, so the
// checker and splitter can point at the fault.
type TranscriptionCodec struct{}

const transcriptionTable = "transcription"

func (TranscriptionCodec) Read(r io.Reader, errs *errors.Collector) *model.Transcription {
	data, ok := readAll(r, transcriptionTable, errs)
	if !ok {
		return nil
	}
	reportInvalid(xml.Validate(data), transcriptionTable, errs)
	return &model.Transcription{XML: string(data)}
}

func (TranscriptionCodec) Write(t *model.Transcription, w io.Writer) error {
	if t == nil {
		return nil
	}
	if _, err := io.WriteString(w, t.XML); err != nil {
		return errors.NewIO("write", transcriptionTable, err)
	}
	return nil
}

func reportInvalid(res xml.ValidationResult, kind string, errs *errors.Collector) {
	for _, e := range res.Errors {
		errs.Add(&errors.ParseError{
			Format:  kind,
			Line:    e.Line,
			Message: fmt.Sprintf("Malformed %s: %s", kind, e),
		})
	}
}

// parseDocument validates and parses an XML artifact. It returns nil after
// reporting when the markup cannot be used.
func parseDocument(r io.Reader, kind string, errs *errors.Collector) *xml.Document {
	data, ok := readAll(r, kind, errs)
	if !ok {
		return nil
	}
	res := xml.Validate(data)
	if !res.Valid {
		reportInvalid(res, kind, errs)
		return nil
	}
	doc, err := xml.Parse(data)
	if err != nil {
		errs.Add(&errors.ParseError{Format: kind, Message: fmt.Sprintf("Malformed %s: %v", kind, err), Err: err})
		return nil
	}
	return doc
}

// DescriptionCodec extracts book metadata from a TEI msDesc description.
// Descriptions are produced upstream and are read-only here.
type DescriptionCodec struct{}

const descriptionTable = "description"

func (DescriptionCodec) Read(r io.Reader, errs *errors.Collector) *model.BookMetadata {
	doc := parseDocument(r, descriptionTable, errs)
	if doc == nil {
		return nil
	}
	text := func(expr string) string {
		s, err := doc.XPathString(expr)
		if err != nil {
			errs.Add(errors.Wrapf(err, "%s query %s", descriptionTable, expr))
		}
		return s
	}
	first := func(expr string) *xml.Node {
		n, err := doc.XPathFirst(expr)
		if err != nil {
			errs.Add(errors.Wrapf(err, "%s query %s", descriptionTable, expr))
		}
		return n
	}

	md := &model.BookMetadata{
		Title:      text("//msDesc/msContents/msItem/title"),
		Date:       text("//msDesc/history/origin/origDate"),
		Origin:     text("//msDesc/history/origin/origPlace"),
		Repository: text("//msDesc/msIdentifier/repository"),
		Shelfmark:  text("//msDesc/msIdentifier/idno"),
	}
	if md.Title == "" {
		md.Title = text("//titleStmt/title")
	}
	if n := first("//msDesc/history/origin/origDate"); n != nil {
		md.DateStart = atoiAttr(n, "notBefore", descriptionTable, errs)
		md.DateEnd = atoiAttr(n, "notAfter", descriptionTable, errs)
	}
	if n := first("//msDesc/physDesc/objectDesc"); n != nil {
		md.Type = n.Attr("form")
	}
	if n := first(`//msDesc/physDesc//extent/measure[@type="illustrations"]`); n != nil {
		md.NumIllustrations = atoiAttr(n, "quantity", descriptionTable, errs)
	}
	if n := first(`//msDesc/physDesc//extent/measure[@unit="folios"]`); n != nil {
		md.NumPages = atoiAttr(n, "quantity", descriptionTable, errs)
	}
	return md
}

func (DescriptionCodec) Write(*model.BookMetadata, io.Writer) error {
	return unsupportedWrite(descriptionTable)
}

func atoiAttr(n *xml.Node, attr, kind string, errs *errors.Collector) int {
	v := strings.TrimSpace(n.Attr(attr))
	if v == "" {
		return 0
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		errs.Add(&errors.ParseError{Format: kind, Message: fmt.Sprintf("Malformed %s: %s=%q is not a number", kind, attr, v)})
		return 0
	}
	return i
}

// PermissionCodec keeps a rights statement as raw HTML. Read-only.
type PermissionCodec struct{}

const permissionTable = "permission"

func (PermissionCodec) Read(r io.Reader, errs *errors.Collector) *model.Permission {
	data, ok := readAll(r, permissionTable, errs)
	if !ok {
		return nil
	}
	return &model.Permission{HTML: string(data)}
}

func (PermissionCodec) Write(*model.Permission, io.Writer) error {
	return unsupportedWrite(permissionTable)
}

// annotationKinds are the AoR annotation elements other than marginalia,
// with the attribute that carries their text.
var annotationKinds = []struct {
	element string
	text    string
}{
	{"underline", "text"},
	{"symbol", "name"},
	{"mark", "name"},
	{"numeral", "text"},
	{"errata", "amendedtext"},
	{"drawing", "name"},
}

// AnnotatedPageCodec reads an AoR annotation record. AoR files are
// maintained by the annotation project and are read-only here.
type AnnotatedPageCodec struct{}

const annotationTable = "annotated page"

func (AnnotatedPageCodec) Read(r io.Reader, errs *errors.Collector) *model.AnnotatedPage {
	doc := parseDocument(r, annotationTable, errs)
	if doc == nil {
		return nil
	}
	page := &model.AnnotatedPage{}
	pageNode, err := doc.XPathFirst("/transcription/page")
	if err != nil || pageNode == nil {
		errs.Add(&errors.ParseError{Format: annotationTable, Message: "Malformed annotated page: missing transcription/page"})
		return page
	}
	page.Page = pageNode.Attr("filename")
	page.Reader = pageNode.Attr("reader")
	page.Pagination = pageNode.Attr("pagination")

	marginalia, _ := doc.XPath("/transcription/annotation/marginalia")
	for _, m := range marginalia {
		marginal := model.Marginal{Hand: m.Attr("hand")}
		if positions, _ := m.XPath("position"); len(positions) > 0 {
			marginal.Position = positions[0].Attr("place")
		}
		var texts []string
		parts, _ := m.XPath(".//marginalia_text")
		for _, t := range parts {
			if s := strings.TrimSpace(t.InnerText()); s != "" {
				texts = append(texts, s)
			}
		}
		marginal.Text = strings.Join(texts, " ")
		page.Marginalia = append(page.Marginalia, marginal)
	}

	for _, kind := range annotationKinds {
		nodes, _ := doc.XPath("/transcription/annotation/" + kind.element)
		for _, n := range nodes {
			page.Annotations = append(page.Annotations, model.Annotation{
				Kind:   kind.element,
				Text:   n.Attr(kind.text),
				Method: n.Attr("method"),
			})
		}
	}
	return page
}

func (AnnotatedPageCodec) Write(*model.AnnotatedPage, io.Writer) error {
	return unsupportedWrite(annotationTable)
}
