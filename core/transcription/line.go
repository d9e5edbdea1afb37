// Package transcription converts per-page transcription notation into TEI
// markup and splits aggregated TEI back into page and column fragments.
package transcription

import (
	"regexp"
	"strconv"
	"strings"
)

// LineKind classifies one transcription line.
type LineKind int

const (
	Poetry LineKind = iota
	Rubric
	Catchphrase
	AbsentLines
	Illustration
	Annotation
	// Column is a column start marker, not a line of text.
	Column
)

func (k LineKind) String() string {
	switch k {
	case Poetry:
		return "poetry"
	case Rubric:
		return "rubric"
	case Catchphrase:
		return "catchphrase"
	case AbsentLines:
		return "absentlines"
	case Illustration:
		return "illustration"
	case Annotation:
		return "annotation"
	case Column:
		return "column"
	}
	return "unknown"
}

// Line is one parsed line of a page file.
type Line struct {
	Kind LineKind
	// Number is the 1-based line number in the page file.
	Number int
	// Text is the content with markers and any lecoy number removed.
	Text  string
	Attrs map[string]string
	// Lecoy is the explicit trailing lecoy number, 0 when absent.
	Lecoy       int
	LecoySuffix string
	// Anchors lists the types of inline anchors, in order of appearance.
	Anchors []string
}

var (
	wrappedTag = regexp.MustCompile(`^<(\w+)((?:\s+[\w:]+="[^"]*")*)\s*>(.*)</(\w+)>$`)
	emptyTag   = regexp.MustCompile(`^<(\w+)((?:\s+[\w:]+="[^"]*")*)\s*/>$`)
	attribute  = regexp.MustCompile(`([\w:]+)="([^"]*)"`)
	anchorTag  = regexp.MustCompile(`<anchor\s+type="([^"]*)"\s*/>`)
	lecoyTail  = regexp.MustCompile(`\s+(\d+)([a-z]?)$`)
)

var wrappedKinds = map[string]LineKind{
	"rubric":       Rubric,
	"catchphrase":  Catchphrase,
	"illustration": Illustration,
	"note":         Annotation,
}

// anchorPlaceholder stands in for an inline anchor inside Line.Text until
// the converter assigns it an id.
const anchorPlaceholder = "\x00"

// parseLine classifies a non-blank line. ok is false when the line uses a
// tag the notation does not define.
func parseLine(number int, raw string) (Line, bool) {
	s := strings.TrimSpace(raw)
	line := Line{Number: number}

	if m := emptyTag.FindStringSubmatch(s); m != nil && m[1] != "anchor" {
		line.Attrs = parseAttrs(m[2])
		switch m[1] {
		case "column":
			line.Kind = Column
		case "absentlines":
			line.Kind = AbsentLines
		default:
			return line, false
		}
		return line, true
	}

	if m := wrappedTag.FindStringSubmatch(s); m != nil && m[1] == m[4] {
		kind, ok := wrappedKinds[m[1]]
		if !ok {
			return line, false
		}
		line.Kind = kind
		line.Attrs = parseAttrs(m[2])
		line.Text, line.Anchors = extractAnchors(strings.TrimSpace(m[3]))
		return line, true
	}

	line.Kind = Poetry
	if m := lecoyTail.FindStringSubmatchIndex(s); m != nil {
		// a trailing 0 is text, not a line number
		n, err := strconv.Atoi(s[m[2]:m[3]])
		if err == nil && n > 0 {
			line.Lecoy = n
			line.LecoySuffix = s[m[4]:m[5]]
			s = s[:m[0]]
		}
	}
	line.Text, line.Anchors = extractAnchors(s)
	return line, true
}

func parseAttrs(s string) map[string]string {
	matches := attribute.FindAllStringSubmatch(s, -1)
	if len(matches) == 0 {
		return nil
	}
	attrs := make(map[string]string, len(matches))
	for _, m := range matches {
		attrs[m[1]] = m[2]
	}
	return attrs
}

func extractAnchors(s string) (string, []string) {
	var types []string
	text := anchorTag.ReplaceAllStringFunc(s, func(tag string) string {
		types = append(types, anchorTag.FindStringSubmatch(tag)[1])
		return anchorPlaceholder
	})
	return text, types
}
