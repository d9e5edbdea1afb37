package names

import (
	"fmt"
	"math"
	"strconv"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// MaxFolioNumber is the largest leaf number whose side positions fit in
// an int.
const MaxFolioNumber = math.MaxInt/2 - 1

// Folio is a page designator such as "001r" or "fol12v".
type Folio struct {
	// Prefix is an optional alphabetic prefix (e.g. "fol", "A").
	Prefix string
	// Number is the leaf number.
	Number int
	// Width is the number of digits the number was written with.
	Width int
	// Verso is true for the back side of the leaf.
	Verso bool
}

// folioGrammar is the participle grammar for page designators.
// The side is lexed as Alpha and checked after parsing, since a prefix and
// a side are indistinguishable to the lexer.
//
//nolint:govet // participle grammar tags are not standard struct tags
type folioGrammar struct {
	Prefix string `@Alpha?`
	Number string `@Int`
	Side   string `@Alpha`
}

var folioLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Int", Pattern: `[0-9]+`},
	{Name: "Alpha", Pattern: `[a-zA-Z]+`},
})

var folioParser = participle.MustBuild[folioGrammar](
	participle.Lexer(folioLexer),
)

// ParseFolio parses a page designator.
func ParseFolio(s string) (Folio, error) {
	g, err := folioParser.ParseString("", s)
	if err != nil {
		return Folio{}, fmt.Errorf("invalid page designator %q: %w", s, err)
	}
	if g.Side != "r" && g.Side != "v" {
		return Folio{}, fmt.Errorf("invalid page designator %q: side must be r or v", s)
	}
	n, err := strconv.Atoi(g.Number)
	if err != nil {
		return Folio{}, fmt.Errorf("invalid page designator %q: %w", s, err)
	}
	if n > MaxFolioNumber {
		return Folio{}, fmt.Errorf("invalid page designator %q: leaf number too large", s)
	}
	return Folio{
		Prefix: g.Prefix,
		Number: n,
		Width:  len(g.Number),
		Verso:  g.Side == "v",
	}, nil
}

// Position orders sides of consecutive leaves: 1r < 1v < 2r.
func (f Folio) Position() int {
	p := f.Number * 2
	if f.Verso {
		p++
	}
	return p
}

// AtPosition returns the folio at the given position, written with the
// same prefix and digit width.
func (f Folio) AtPosition(pos int) Folio {
	return Folio{
		Prefix: f.Prefix,
		Number: pos / 2,
		Width:  f.Width,
		Verso:  pos%2 == 1,
	}
}

func (f Folio) Side() string {
	if f.Verso {
		return "v"
	}
	return "r"
}

func (f Folio) String() string {
	return fmt.Sprintf("%s%0*d%s", f.Prefix, f.Width, f.Number, f.Side())
}
