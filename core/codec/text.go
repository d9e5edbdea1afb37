package codec

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/FocuswithJustin/RosaArchive/core/errors"
	"github.com/FocuswithJustin/RosaArchive/core/model"
)

// commentPrefix starts a comment line in the plain text formats.
const commentPrefix = "#"

// textLine is one meaningful line of a plain text artifact.
type textLine struct {
	line   int
	fields []string
}

// readLines splits r into whitespace separated fields, skipping blank and
// comment lines.
func readLines(r io.Reader, kind string, errs *errors.Collector) []textLine {
	var out []textLine
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	n := 0
	for scanner.Scan() {
		n++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, commentPrefix) {
			continue
		}
		out = append(out, textLine{line: n, fields: strings.Fields(text)})
	}
	if err := scanner.Err(); err != nil {
		errs.Add(&errors.ParseError{Format: kind, Line: n + 1, Message: fmt.Sprintf("Malformed %s: %v", kind, err), Err: err})
	}
	return out
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// CropInfoCodec reads and writes crop.txt: "id left right top bottom".
type CropInfoCodec struct{}

const cropTable = "crop info"

func (CropInfoCodec) Read(r io.Reader, errs *errors.Collector) *model.CropInfo {
	info := &model.CropInfo{}
	for _, l := range readLines(r, cropTable, errs) {
		rec := record{line: l.line, cells: l.fields}
		if len(l.fields) != 5 {
			malformed(errs, cropTable, rec)
			continue
		}
		var values [4]float64
		ok := true
		for i := range values {
			v, err := strconv.ParseFloat(l.fields[i+1], 64)
			if err != nil {
				ok = false
				break
			}
			values[i] = v
		}
		if !ok {
			malformed(errs, cropTable, rec)
			continue
		}
		crop := model.CropData{ID: l.fields[0], Left: values[0], Right: values[1], Top: values[2], Bottom: values[3]}
		if err := crop.Validate(); err != nil {
			errs.Add(&errors.ParseError{
				Format:  cropTable,
				Line:    l.line,
				Message: fmt.Sprintf("Invalid crop for %s at line %d: %v", crop.ID, l.line, err),
			})
			continue
		}
		info.Entries = append(info.Entries, crop)
	}
	return info
}

func (CropInfoCodec) Write(info *model.CropInfo, w io.Writer) error {
	bw := bufio.NewWriter(w)
	if info != nil {
		for _, c := range info.Entries {
			fmt.Fprintf(bw, "%s %s %s %s %s\n", c.ID,
				formatFloat(c.Left), formatFloat(c.Right), formatFloat(c.Top), formatFloat(c.Bottom))
		}
	}
	return bw.Flush()
}

// SceneListCodec reads and writes the hand edited narrative taggings,
// nartag.txt and redtag.txt: "section page.col.line page.col.line".
// Comments are not preserved on write.
type SceneListCodec struct {
	Table string
}

func (c SceneListCodec) Read(r io.Reader, errs *errors.Collector) *model.NarrativeTagging {
	tagging := &model.NarrativeTagging{}
	for _, l := range readLines(r, c.Table, errs) {
		rec := record{line: l.line, cells: l.fields}
		if len(l.fields) != 3 {
			malformed(errs, c.Table, rec)
			continue
		}
		start, serr := parsePosition(l.fields[1])
		end, eerr := parsePosition(l.fields[2])
		if serr != nil || eerr != nil {
			malformed(errs, c.Table, rec)
			continue
		}
		tagging.Scenes = append(tagging.Scenes, model.NarrativeScene{SectionID: l.fields[0], Start: start, End: end})
	}
	return tagging
}

func (c SceneListCodec) Write(t *model.NarrativeTagging, w io.Writer) error {
	bw := bufio.NewWriter(w)
	if t != nil {
		for _, s := range t.Scenes {
			fmt.Fprintf(bw, "%s %s %s\n", s.SectionID, formatPosition(s.Start), formatPosition(s.End))
		}
	}
	return bw.Flush()
}

// parsePosition parses "page.column.line", e.g. "001r.a.12".
func parsePosition(s string) (model.TextPosition, error) {
	parts := strings.Split(s, ".")
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" {
		return model.TextPosition{}, fmt.Errorf("invalid text position %q", s)
	}
	line, err := strconv.Atoi(parts[2])
	if err != nil {
		return model.TextPosition{}, fmt.Errorf("invalid text position %q: %w", s, err)
	}
	return model.TextPosition{Page: parts[0], Column: parts[1], Line: line}, nil
}

func formatPosition(p model.TextPosition) string {
	return p.Page + "." + p.Column + "." + strconv.Itoa(p.Line)
}

// ChecksumCodec reads and writes digest index files: "<hex>  <name>" per
// line, sorted by name. A leading '*' on the name (binary mode in the
// coreutils format) is ignored.
type ChecksumCodec struct {
	Algorithm model.Algorithm
}

const (
	checksumTable = "checksums"
	binaryMarker  = "*"
)

func (c ChecksumCodec) Read(r io.Reader, errs *errors.Collector) *model.DigestIndex {
	index := model.NewDigestIndex(c.Algorithm)
	for _, l := range readLines(r, checksumTable, errs) {
		rec := record{line: l.line, cells: l.fields}
		if len(l.fields) < 2 || !isHex(l.fields[0]) {
			malformed(errs, checksumTable, rec)
			continue
		}
		name := strings.Join(l.fields[1:], " ")
		name = strings.TrimPrefix(name, binaryMarker)
		index.Set(name, model.Digest{Algorithm: c.Algorithm, Hex: l.fields[0]})
	}
	return index
}

func (c ChecksumCodec) Write(index *model.DigestIndex, w io.Writer) error {
	bw := bufio.NewWriter(w)
	for _, name := range index.Names() {
		d, _ := index.Get(name)
		fmt.Fprintf(bw, "%s  %s\n", d.Hex, name)
	}
	return bw.Flush()
}

func isHex(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'f', r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}
