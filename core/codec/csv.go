package codec

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/FocuswithJustin/RosaArchive/core/errors"
	"github.com/FocuswithJustin/RosaArchive/core/model"
	"github.com/FocuswithJustin/RosaArchive/core/names"
)

// listSeparator joins multi-valued cells such as the titles of an
// illustration.
const listSeparator = ";"

var (
	illustrationHeader = []string{
		"id", "page", "titles", "initials", "characters",
		"costume", "object", "landscape", "architecture", "other",
	}
	narrativeHeader = []string{
		"section", "start_page", "start_col", "start_line",
		"end_page", "end_col", "end_line",
	}
)

// record is one decoded CSV row and the line it started on.
type record struct {
	line  int
	cells []string
}

// readRecords decodes a CSV table. Cells are trimmed and NFC normalized.
// Rows may have any number of cells; the caller validates the shape.
func readRecords(r io.Reader, table string, errs *errors.Collector) []record {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var out []record
	for {
		cells, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			pe := &errors.ParseError{Format: table, Message: fmt.Sprintf("Malformed %s table: %v", table, err), Err: err}
			var csvErr *csv.ParseError
			if errors.As(err, &csvErr) {
				pe.Line = csvErr.Line
			}
			errs.Add(pe)
			break
		}
		line, _ := cr.FieldPos(0)
		for i, c := range cells {
			cells[i] = norm.NFC.String(strings.TrimSpace(c))
		}
		out = append(out, record{line: line, cells: cells})
	}
	return out
}

// writeRecords encodes rows as CSV.
func writeRecords(w io.Writer, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(rows); err != nil {
		return errors.NewIO("write", "csv", err)
	}
	return nil
}

// malformed reports a row with the wrong shape. Trailing empty cells are
// left out of the rendering.
func malformed(errs *errors.Collector, table string, rec record) {
	cells := rec.cells
	for len(cells) > 0 && cells[len(cells)-1] == "" {
		cells = cells[:len(cells)-1]
	}
	errs.Add(errors.NewMalformedRow(table, rec.line, cells))
}

// skipHeader drops the first record, returning it separately.
func skipHeader(recs []record) ([]string, []record) {
	if len(recs) == 0 {
		return nil, nil
	}
	return recs[0].cells, recs[1:]
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, listSeparator) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func joinList(values []string) string {
	return strings.Join(values, listSeparator)
}

// padCells extends cells with empty values up to n.
func padCells(cells []string, n int) []string {
	for len(cells) < n {
		cells = append(cells, "")
	}
	return cells
}

// ImageListCodec reads and writes images.csv style lists: id,width,height
// with the missing marker on the id of absent images.
type ImageListCodec struct {
	Table string
}

func (c ImageListCodec) Read(r io.Reader, errs *errors.Collector) *model.ImageList {
	list := &model.ImageList{}
	for _, rec := range readRecords(r, c.Table, errs) {
		if len(rec.cells) != 3 || rec.cells[0] == names.MissingMarker || rec.cells[0] == "" {
			malformed(errs, c.Table, rec)
			continue
		}
		width, werr := strconv.Atoi(rec.cells[1])
		height, herr := strconv.Atoi(rec.cells[2])
		if werr != nil || herr != nil || width < 0 || height < 0 {
			malformed(errs, c.Table, rec)
			continue
		}
		id := rec.cells[0]
		list.Images = append(list.Images, model.BookImage{
			ID:      names.StripMissing(id),
			Width:   width,
			Height:  height,
			Missing: strings.HasPrefix(id, names.MissingMarker),
		})
	}
	return list
}

func (c ImageListCodec) Write(list *model.ImageList, w io.Writer) error {
	rows := make([][]string, 0, list.Len())
	if list != nil {
		for _, img := range list.Images {
			id := img.ID
			if img.Missing {
				id = names.MissingMarker + id
			}
			rows = append(rows, []string{id, strconv.Itoa(img.Width), strconv.Itoa(img.Height)})
		}
	}
	return writeRecords(w, rows)
}

// IllustrationTaggingCodec reads and writes imagetag.csv.
type IllustrationTaggingCodec struct{}

const illustrationTable = "illustration tagging"

func (IllustrationTaggingCodec) Read(r io.Reader, errs *errors.Collector) *model.IllustrationTagging {
	_, recs := skipHeader(readRecords(r, illustrationTable, errs))
	tagging := &model.IllustrationTagging{}
	for _, rec := range recs {
		if len(rec.cells) < 2 || len(rec.cells) > len(illustrationHeader) || rec.cells[0] == "" {
			malformed(errs, illustrationTable, rec)
			continue
		}
		cells := padCells(rec.cells, len(illustrationHeader))
		tagging.Illustrations = append(tagging.Illustrations, model.Illustration{
			ID:           cells[0],
			Page:         cells[1],
			Titles:       splitList(cells[2]),
			Initials:     cells[3],
			Characters:   splitList(cells[4]),
			Costume:      cells[5],
			Object:       cells[6],
			Landscape:    cells[7],
			Architecture: cells[8],
			Other:        cells[9],
		})
	}
	return tagging
}

func (IllustrationTaggingCodec) Write(t *model.IllustrationTagging, w io.Writer) error {
	rows := [][]string{illustrationHeader}
	if t != nil {
		for _, ill := range t.Illustrations {
			rows = append(rows, []string{
				ill.ID, ill.Page, joinList(ill.Titles), ill.Initials, joinList(ill.Characters),
				ill.Costume, ill.Object, ill.Landscape, ill.Architecture, ill.Other,
			})
		}
	}
	return writeRecords(w, rows)
}

// NarrativeTaggingCodec reads and writes the automatic narrative tagging,
// nartag.csv.
type NarrativeTaggingCodec struct{}

const narrativeTable = "narrative tagging"

func (NarrativeTaggingCodec) Read(r io.Reader, errs *errors.Collector) *model.NarrativeTagging {
	_, recs := skipHeader(readRecords(r, narrativeTable, errs))
	tagging := &model.NarrativeTagging{}
	for _, rec := range recs {
		if len(rec.cells) != len(narrativeHeader) || rec.cells[0] == "" {
			malformed(errs, narrativeTable, rec)
			continue
		}
		startLine, serr := strconv.Atoi(rec.cells[3])
		endLine, eerr := strconv.Atoi(rec.cells[6])
		if serr != nil || eerr != nil {
			malformed(errs, narrativeTable, rec)
			continue
		}
		tagging.Scenes = append(tagging.Scenes, model.NarrativeScene{
			SectionID: rec.cells[0],
			Start:     model.TextPosition{Page: rec.cells[1], Column: rec.cells[2], Line: startLine},
			End:       model.TextPosition{Page: rec.cells[4], Column: rec.cells[5], Line: endLine},
		})
	}
	return tagging
}

func (NarrativeTaggingCodec) Write(t *model.NarrativeTagging, w io.Writer) error {
	rows := [][]string{narrativeHeader}
	if t != nil {
		for _, s := range t.Scenes {
			rows = append(rows, []string{
				s.SectionID,
				s.Start.Page, s.Start.Column, strconv.Itoa(s.Start.Line),
				s.End.Page, s.End.Column, strconv.Itoa(s.End.Line),
			})
		}
	}
	return writeRecords(w, rows)
}

// FileMapCodec reads and writes filemap.csv: original,archived.
type FileMapCodec struct{}

const fileMapTable = "file map"

func (FileMapCodec) Read(r io.Reader, errs *errors.Collector) *model.FileMap {
	fm := &model.FileMap{}
	for _, rec := range readRecords(r, fileMapTable, errs) {
		if len(rec.cells) != 2 || rec.cells[0] == "" || rec.cells[1] == "" {
			malformed(errs, fileMapTable, rec)
			continue
		}
		fm.Entries = append(fm.Entries, model.FileMapping{Original: rec.cells[0], Archived: rec.cells[1]})
	}
	return fm
}

func (FileMapCodec) Write(fm *model.FileMap, w io.Writer) error {
	var rows [][]string
	if fm != nil {
		for _, e := range fm.Entries {
			rows = append(rows, []string{e.Original, e.Archived})
		}
	}
	return writeRecords(w, rows)
}

// CharacterNamesCodec reads and writes character_names.csv. The header
// names the language of each column after the id.
type CharacterNamesCodec struct{}

const characterTable = "character names"

func (CharacterNamesCodec) Read(r io.Reader, errs *errors.Collector) *model.CharacterNames {
	header, recs := skipHeader(readRecords(r, characterTable, errs))
	if header == nil {
		return nil
	}
	cn := &model.CharacterNames{}
	if len(header) > 1 {
		cn.Languages = append(cn.Languages, header[1:]...)
	}
	for _, rec := range recs {
		if len(rec.cells) == 0 || rec.cells[0] == "" || len(rec.cells) > len(header) {
			malformed(errs, characterTable, rec)
			continue
		}
		ch := model.Character{ID: rec.cells[0], Names: make(map[string]string)}
		for i, name := range rec.cells[1:] {
			if name != "" {
				ch.Names[cn.Languages[i]] = name
			}
		}
		cn.Characters = append(cn.Characters, ch)
	}
	return cn
}

func (CharacterNamesCodec) Write(cn *model.CharacterNames, w io.Writer) error {
	if cn == nil {
		return writeRecords(w, nil)
	}
	rows := [][]string{append([]string{"id"}, cn.Languages...)}
	for _, ch := range cn.Characters {
		row := []string{ch.ID}
		for _, lang := range cn.Languages {
			row = append(row, ch.Names[lang])
		}
		rows = append(rows, row)
	}
	return writeRecords(w, rows)
}

// IllustrationTitlesCodec reads and writes illustration_titles.csv: id,title.
type IllustrationTitlesCodec struct{}

const titlesTable = "illustration titles"

func (IllustrationTitlesCodec) Read(r io.Reader, errs *errors.Collector) *model.IllustrationTitles {
	titles := &model.IllustrationTitles{}
	for _, rec := range readRecords(r, titlesTable, errs) {
		if len(rec.cells) != 2 || rec.cells[0] == "" {
			malformed(errs, titlesTable, rec)
			continue
		}
		titles.Titles = append(titles.Titles, model.IllustrationTitle{ID: rec.cells[0], Title: rec.cells[1]})
	}
	return titles
}

func (IllustrationTitlesCodec) Write(t *model.IllustrationTitles, w io.Writer) error {
	var rows [][]string
	if t != nil {
		for _, title := range t.Titles {
			rows = append(rows, []string{title.ID, title.Title})
		}
	}
	return writeRecords(w, rows)
}

// NarrativeSectionsCodec reads and writes narrative_sections.csv:
// id,description,lecoy_start,lecoy_end.
type NarrativeSectionsCodec struct{}

const sectionsTable = "narrative sections"

func (NarrativeSectionsCodec) Read(r io.Reader, errs *errors.Collector) *model.NarrativeSections {
	sections := &model.NarrativeSections{}
	for _, rec := range readRecords(r, sectionsTable, errs) {
		if len(rec.cells) != 4 || rec.cells[0] == "" {
			malformed(errs, sectionsTable, rec)
			continue
		}
		start, serr := strconv.Atoi(rec.cells[2])
		end, eerr := strconv.Atoi(rec.cells[3])
		if serr != nil || eerr != nil {
			malformed(errs, sectionsTable, rec)
			continue
		}
		sections.Sections = append(sections.Sections, model.NarrativeSection{
			ID:          rec.cells[0],
			Description: rec.cells[1],
			LecoyStart:  start,
			LecoyEnd:    end,
		})
	}
	return sections
}

func (NarrativeSectionsCodec) Write(n *model.NarrativeSections, w io.Writer) error {
	var rows [][]string
	if n != nil {
		for _, s := range n.Sections {
			rows = append(rows, []string{s.ID, s.Description, strconv.Itoa(s.LecoyStart), strconv.Itoa(s.LecoyEnd)})
		}
	}
	return writeRecords(w, rows)
}

// ReferenceSheetCodec reads and writes the people, locations and books
// sheets: a header row, then a key followed by its alternate spellings.
type ReferenceSheetCodec struct{}

const referenceTable = "reference sheet"

func (ReferenceSheetCodec) Read(r io.Reader, errs *errors.Collector) *model.ReferenceSheet {
	header, recs := skipHeader(readRecords(r, referenceTable, errs))
	if header == nil {
		return nil
	}
	sheet := &model.ReferenceSheet{Header: header}
	for _, rec := range recs {
		if len(rec.cells) == 0 || rec.cells[0] == "" {
			malformed(errs, referenceTable, rec)
			continue
		}
		entry := model.ReferenceEntry{Key: rec.cells[0]}
		for _, alt := range rec.cells[1:] {
			if alt != "" {
				entry.Alternates = append(entry.Alternates, alt)
			}
		}
		sheet.Entries = append(sheet.Entries, entry)
	}
	return sheet
}

func (ReferenceSheetCodec) Write(s *model.ReferenceSheet, w io.Writer) error {
	if s == nil {
		return writeRecords(w, nil)
	}
	rows := [][]string{s.Header}
	for _, e := range s.Entries {
		rows = append(rows, append([]string{e.Key}, e.Alternates...))
	}
	return writeRecords(w, rows)
}
