package xml

import (
	"strings"
	"testing"
)

const sampleTEI = `<?xml version="1.0" encoding="UTF-8"?>
<TEI xmlns:xi="http://www.w3.org/2001/XInclude">
  <teiHeader>
    <msDesc>
      <msIdentifier>
        <repository>Bibliotheque nationale</repository>
        <idno>Fr. 380</idno>
      </msIdentifier>
    </msDesc>
  </teiHeader>
  <text>
    <pb n="1r"/>
    <l n="1">Maintes genz dient que en songes</l>
    <l n="2">N'a se fables non et menconges</l>
  </text>
</TEI>`

func TestParseAndXPath(t *testing.T) {
	doc, err := Parse([]byte(sampleTEI))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if doc.Root() == nil || doc.Root().Name() != "TEI" {
		t.Fatalf("Root() = %v, want TEI", doc.Root())
	}

	lines, err := doc.XPath("//l")
	if err != nil {
		t.Fatalf("XPath() error = %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("XPath(//l) returned %d nodes, want 2", len(lines))
	}
	if got := lines[1].Attr("n"); got != "2" {
		t.Errorf("Attr(n) = %q, want 2", got)
	}

	repo, err := doc.XPathString("//msIdentifier/repository")
	if err != nil || repo != "Bibliotheque nationale" {
		t.Errorf("XPathString() = %q, %v", repo, err)
	}

	count, err := doc.XPathCount("count(//l)")
	if err != nil || count != 2 {
		t.Errorf("XPathCount() = %d, %v", count, err)
	}

	missing, err := doc.XPathFirst("//nothing")
	if err != nil || missing != nil {
		t.Errorf("XPathFirst(absent) = %v, %v", missing, err)
	}
}

func TestInvalidXPath(t *testing.T) {
	doc, err := Parse([]byte("<a/>"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := doc.XPath("//["); err == nil {
		t.Error("XPath() with invalid expression should fail")
	}
	if _, err := doc.XPathCount("//a"); err == nil {
		t.Error("XPathCount() of node set should fail")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantValid bool
	}{
		{"well formed", sampleTEI, true},
		{"unclosed", "<a><b></a>", false},
		{"empty", "", false},
		{"text only", "just text", false},
		{"entity", `<!DOCTYPE a [<!ENTITY x "y">]><a>&x;</a>`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Validate([]byte(tt.input))
			if got.Valid != tt.wantValid {
				t.Errorf("Validate() valid = %v, want %v (%v)", got.Valid, tt.wantValid, got.Messages())
			}
			if !got.Valid && len(got.Errors) == 0 {
				t.Error("invalid result carries no errors")
			}
		})
	}
}

func TestValidateReportsLine(t *testing.T) {
	got := Validate([]byte("<a>\n<b>\n</a>"))
	if got.Valid {
		t.Fatal("Validate() = valid")
	}
	if got.Errors[0].Line != 3 {
		t.Errorf("error line = %d, want 3", got.Errors[0].Line)
	}
	if !strings.HasPrefix(got.Messages()[0], "line 3:") {
		t.Errorf("message = %q", got.Messages()[0])
	}
}

func TestWellFormedValidator(t *testing.T) {
	var v SchemaValidator = WellFormed{}
	if !v.Validate([]byte("<a/>")).Valid {
		t.Error("WellFormed rejected valid XML")
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		name string
		in   string
		opts FormatOptions
		want string
	}{
		{
			name: "document",
			in:   `<a><b x="1">t</b><c/></a>`,
			want: "<?xml version=\"1.0\"?>\n<a>\n  <b x=\"1\">t</b>\n  <c/>\n</a>\n",
		},
		{
			name: "fragment of siblings",
			in:   `<l n="1">Maintes genz</l><l n="2">N'a se fables</l>`,
			opts: FormatOptions{Fragment: true},
			want: "<l n=\"1\">Maintes genz</l>\n<l n=\"2\">N'a se fables</l>\n",
		},
		{
			name: "fragment with leading text",
			in:   `songes<lg type="couplet"><l>Ci &amp; la</l></lg>`,
			opts: FormatOptions{Indent: "\t", Fragment: true},
			want: "songes\n<lg type=\"couplet\">\n\t<l>Ci &amp; la</l>\n</lg>\n",
		},
		{
			name: "fragment keeps xml:id",
			in:   `<anchor xml:id="a.1v.1"/>`,
			opts: FormatOptions{Fragment: true},
			want: "<anchor xml:id=\"a.1v.1\"/>\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Format([]byte(tt.in), tt.opts)
			if err != nil {
				t.Fatalf("Format() error = %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("Format() =\n%q\nwant\n%q", got, tt.want)
			}
		})
	}
	if _, err := Format([]byte("<a>"), FormatOptions{Fragment: true}); err == nil {
		t.Error("Format() of unclosed fragment should fail")
	}
}
