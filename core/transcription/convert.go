package transcription

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/FocuswithJustin/RosaArchive/core/encoding"
	"github.com/FocuswithJustin/RosaArchive/core/errors"
)

const format = "transcription"

// Block is a run of non-blank lines. Column markers stay inside the block
// they interrupt.
type Block struct {
	Lines []Line
}

// PoetryCount returns the number of poetry lines in the block.
func (b Block) PoetryCount() int {
	n := 0
	for _, l := range b.Lines {
		if l.Kind == Poetry {
			n++
		}
	}
	return n
}

// Parse reads a page file into blocks. Blank lines separate blocks; lines
// with unknown tags are reported to errs and dropped.
func Parse(r io.Reader, errs *errors.Collector) ([]Block, error) {
	var blocks []Block
	var cur Block
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	n := 0
	for sc.Scan() {
		n++
		raw := sc.Text()
		if strings.TrimSpace(raw) == "" {
			if len(cur.Lines) > 0 {
				blocks = append(blocks, cur)
				cur = Block{}
			}
			continue
		}
		line, ok := parseLine(n, raw)
		if !ok {
			pe := errors.NewParse(format, "", fmt.Sprintf("Unknown tag on line %d: %s", n, strings.TrimSpace(raw)))
			pe.Line = n
			errs.Add(pe)
			continue
		}
		cur.Lines = append(cur.Lines, line)
	}
	if err := sc.Err(); err != nil {
		return nil, errors.NewIO("read", format, err)
	}
	if len(cur.Lines) > 0 {
		blocks = append(blocks, cur)
	}
	return blocks, nil
}

// MergeQuartets joins adjacent blocks whose poetry lines together form
// exactly one quartet.
func MergeQuartets(blocks []Block) []Block {
	var out []Block
	for i := 0; i < len(blocks); i++ {
		b := blocks[i]
		if i+1 < len(blocks) {
			next := blocks[i+1]
			pa, pb := b.PoetryCount(), next.PoetryCount()
			if pa > 0 && pb > 0 && pa+pb == 4 {
				merged := Block{Lines: make([]Line, 0, len(b.Lines)+len(next.Lines))}
				merged.Lines = append(merged.Lines, b.Lines...)
				merged.Lines = append(merged.Lines, next.Lines...)
				out = append(out, merged)
				i++
				continue
			}
		}
		out = append(out, b)
	}
	return out
}

// NumberLines assigns lecoy numbers to the poetry lines of a block from its
// explicit numbers. Lines before the first explicit number count back from
// it; lines after any explicit number count forward from the nearest one
// above. Blocks without an explicit number stay unnumbered. The returned
// slice holds one entry per line, "" for unnumbered lines.
func NumberLines(b Block) []string {
	out := make([]string, len(b.Lines))
	var poetry []int
	for i, l := range b.Lines {
		if l.Kind == Poetry {
			poetry = append(poetry, i)
		}
	}
	first := -1
	for j, i := range poetry {
		if b.Lines[i].Lecoy > 0 {
			first = j
			break
		}
	}
	if first < 0 {
		return out
	}

	base, baseAt := b.Lines[poetry[first]].Lecoy, first
	for j := first - 1; j >= 0; j-- {
		if n := base - (baseAt - j); n > 0 {
			out[poetry[j]] = strconv.Itoa(n)
		}
	}
	for j := first; j < len(poetry); j++ {
		l := b.Lines[poetry[j]]
		if l.Lecoy > 0 {
			base, baseAt = l.Lecoy, j
			out[poetry[j]] = strconv.Itoa(l.Lecoy) + l.LecoySuffix
			continue
		}
		out[poetry[j]] = strconv.Itoa(base + (j - baseAt))
	}
	return out
}

// Converter turns page files into TEI markup.
type Converter struct {
	// IDPrefix starts every generated anchor id.
	IDPrefix string
}

type anchorRef struct {
	typ  string
	id   string
	used bool
}

// Convert renders one page. Every note is tied to the nearest preceding
// unused anchor of its type on the page; a note with no such anchor is
// reported to errs and rendered without a target.
func (c Converter) Convert(page string, r io.Reader, errs *errors.Collector) ([]byte, error) {
	blocks, err := Parse(r, errs)
	if err != nil {
		return nil, err
	}
	blocks = MergeQuartets(blocks)

	prefix := c.IDPrefix
	if prefix == "" {
		prefix = "anchor"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "<pb n=\"%s\"/>\n", encoding.EscapeXMLAttr(page))

	var anchors []*anchorRef
	for bi, b := range blocks {
		if bi > 0 {
			sb.WriteString("<milestone unit=\"block\"/>\n")
		}
		numbers := NumberLines(b)
		inCouplet, coupletLines := false, 0
		closeCouplet := func() {
			if inCouplet {
				sb.WriteString("</lg>\n")
				inCouplet, coupletLines = false, 0
			}
		}

		for li, l := range b.Lines {
			switch l.Kind {
			case Column:
				fmt.Fprintf(&sb, "<cb n=\"%s\"/>\n", encoding.EscapeXMLAttr(l.Attrs["n"]))
				continue
			case Poetry:
				if !inCouplet {
					sb.WriteString("<lg type=\"couplet\">\n")
					inCouplet = true
				}
			default:
				closeCouplet()
			}

			text := renderText(l, func(typ string) string {
				id := fmt.Sprintf("%s.%s.%d", prefix, page, len(anchors)+1)
				anchors = append(anchors, &anchorRef{typ: typ, id: id})
				return id
			})

			switch l.Kind {
			case Poetry:
				if numbers[li] != "" {
					fmt.Fprintf(&sb, "<l n=\"%s\">%s</l>\n", numbers[li], text)
				} else {
					fmt.Fprintf(&sb, "<l>%s</l>\n", text)
				}
				coupletLines++
				if coupletLines == 2 {
					closeCouplet()
				}
			case Rubric, Catchphrase:
				fmt.Fprintf(&sb, "<l type=\"%s\">%s</l>\n", l.Kind, text)
			case AbsentLines:
				fmt.Fprintf(&sb, "<gap reason=\"absent\" unit=\"line\" quantity=\"%s\"/>\n", encoding.EscapeXMLAttr(l.Attrs["n"]))
			case Illustration:
				fmt.Fprintf(&sb, "<figure><figDesc>%s</figDesc></figure>\n", text)
			case Annotation:
				typ := l.Attrs["type"]
				target := resolveAnchor(anchors, typ)
				if target == "" {
					pe := errors.NewParse(format, "", fmt.Sprintf("No anchor of type %q before note on line %d", typ, l.Number))
					pe.Line = l.Number
					errs.Add(pe)
					fmt.Fprintf(&sb, "<note type=\"%s\">%s</note>\n", encoding.EscapeXMLAttr(typ), text)
					continue
				}
				fmt.Fprintf(&sb, "<note target=\"#%s\" type=\"%s\">%s</note>\n", encoding.EscapeXMLAttr(target), encoding.EscapeXMLAttr(typ), text)
			}
		}
		closeCouplet()
	}
	return []byte(sb.String()), nil
}

// renderText escapes a line's text and replaces anchor placeholders with
// anchor elements carrying ids from newID.
func renderText(l Line, newID func(typ string) string) string {
	parts := strings.Split(l.Text, anchorPlaceholder)
	var sb strings.Builder
	for i, part := range parts {
		if i > 0 && i-1 < len(l.Anchors) {
			id := newID(l.Anchors[i-1])
			fmt.Fprintf(&sb, "<anchor xml:id=\"%s\"/>", encoding.EscapeXMLAttr(id))
		}
		sb.WriteString(encoding.EscapeXMLText(part))
	}
	return strings.TrimSpace(sb.String())
}

func resolveAnchor(anchors []*anchorRef, typ string) string {
	for i := len(anchors) - 1; i >= 0; i-- {
		a := anchors[i]
		if a.typ == typ && !a.used {
			a.used = true
			return a.id
		}
	}
	return ""
}
