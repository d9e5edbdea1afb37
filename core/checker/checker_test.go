package checker

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/FocuswithJustin/RosaArchive/core/errors"
	"github.com/FocuswithJustin/RosaArchive/core/repository"
	"github.com/FocuswithJustin/RosaArchive/core/store"
	"github.com/FocuswithJustin/RosaArchive/core/xml"
)

const (
	testCollection = "rose"
	testBook       = "Ludwig"

	// tiffHeader is the little-endian TIFF signature.
	tiffHeader = "II*\x00"
)

var cleanImages = []string{
	"Ludwig.binding.frontcover.tif",
	"Ludwig.frontmatter.pastedown.tif",
	"Ludwig.frontmatter.flyleaf.001r.tif",
	"Ludwig.frontmatter.flyleaf.001v.tif",
	"Ludwig.001r.tif",
	"Ludwig.001v.tif",
	"Ludwig.endmatter.pastedown.tif",
	"Ludwig.binding.backcover.tif",
}

// writeArchive builds a consistent one-book archive and returns its root.
func writeArchive(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	write := func(rel, content string) {
		t.Helper()
		path := filepath.Join(root, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	col := func(name, content string) { write(filepath.Join(testCollection, name), content) }
	book := func(name, content string) { write(filepath.Join(testCollection, testBook, name), content) }

	col(repository.ConfigName, "languages = en\n")
	col(repository.IllustrationTitlesName, "Amant,The Lover\n")
	col(repository.CharacterNamesName, "id,en\nLover,The Lover\n")
	col(repository.NarrativeSectionsName, "Prologue,The dream,1,44\n")

	var list, crop strings.Builder
	for _, id := range cleanImages {
		book(id, tiffHeader+id)
		list.WriteString(id + ",2000,3000\n")
		crop.WriteString(id + " 0.1 0.1 0.05 0.05\n")
	}
	book(testBook+repository.ImagesSuffix, list.String())
	book(testBook+repository.CropInfoSuffix, crop.String())
	book(testBook+repository.IllustrationTagSuffix,
		"id,page,titles,initials,characters,costume,object,landscape,architecture,other\n"+
			"1,001r,Amant,,Lover,,,,,\n")
	book(testBook+repository.NarrativeTagSuffix,
		"section,start_page,start_col,start_line,end_page,end_col,end_line\n"+
			"Prologue,001r,a,1,001v,b,20\n")
	book(testBook+repository.TranscriptionSuffix, `<text><pb n="001r"/><l n="1">Maintes gens</l><pb n="001v"/></text>`)
	book(repository.DescriptionName(testBook, "en"), `<TEI><msDesc><msIdentifier><idno>Ludwig XV 7</idno></msIdentifier></msDesc></TEI>`)
	book(repository.PermissionName(testBook, "en"), "<p>Rights reserved</p>")
	book(repository.AnnotatedPageName(testBook, "001r"),
		`<transcription><page filename="Ludwig.001r.tif" reader="Harvey" pagination="1"/><annotation/></transcription>`)
	return root
}

func addFile(t *testing.T, root, name, content string) {
	t.Helper()
	path := filepath.Join(root, testCollection, testBook, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func checkBook(t *testing.T, root string, opts ...Option) *Report {
	t.Helper()
	repo := repository.New(store.NewFS(root))
	errs := &errors.Collector{}
	col, book, err := repo.Load(testCollection, testBook, errs)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if errs.Len() != 0 {
		t.Fatalf("Load() diagnostics = %v", errs.Strings())
	}
	return New(repo, opts...).CheckBook(context.Background(), col, book, false)
}

func messages(errs []error) string {
	out := make([]string, len(errs))
	for i, err := range errs {
		out[i] = err.Error()
	}
	return strings.Join(out, "\n")
}

func TestCheckCleanBook(t *testing.T) {
	root := writeArchive(t)
	r := checkBook(t, root)
	if !r.Pass() {
		t.Fatalf("clean book failed:\n%s", messages(r.Errors))
	}
	if r.Subject != "rose/Ludwig" {
		t.Errorf("Subject = %q", r.Subject)
	}
	// the only expected warning is the absent checksum index
	if len(r.Warnings) != 1 || !strings.Contains(r.Warnings[0].Error(), "no checksum index Ludwig.SHA1SUM") {
		t.Errorf("warnings:\n%s", messages(r.Warnings))
	}
}

func TestCheckBookInconsistencies(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(t *testing.T, root string)
		want   string
	}{
		{
			name: "missing crop entry",
			mutate: func(t *testing.T, root string) {
				addFile(t, root, testBook+repository.CropInfoSuffix, "Ludwig.001r.tif 0.1 0.1 0.05 0.05\n")
			},
			want: "Ludwig.001v.tif: no crop data in Ludwig.crop.txt",
		},
		{
			name: "out of order image list",
			mutate: func(t *testing.T, root string) {
				var b strings.Builder
				for _, id := range []string{cleanImages[0], cleanImages[5], cleanImages[4]} {
					b.WriteString(id + ",2000,3000\n")
				}
				for _, id := range cleanImages[1:4] {
					b.WriteString(id + ",2000,3000\n")
				}
				for _, id := range cleanImages[6:] {
					b.WriteString(id + ",2000,3000\n")
				}
				addFile(t, root, testBook+repository.ImagesSuffix, b.String())
			},
			want: "Ludwig.images.csv: image Ludwig.001r.tif is out of order",
		},
		{
			name: "image file not listed",
			mutate: func(t *testing.T, root string) {
				addFile(t, root, "Ludwig.002r.tif", tiffHeader)
			},
			want: "Ludwig.002r.tif: image not in Ludwig.images.csv",
		},
		{
			name: "listed image absent",
			mutate: func(t *testing.T, root string) {
				if err := os.Remove(filepath.Join(root, testCollection, testBook, "Ludwig.001v.tif")); err != nil {
					t.Fatal(err)
				}
			},
			want: "Ludwig.001v.tif: listed in Ludwig.images.csv but absent",
		},
		{
			name: "unknown illustration page",
			mutate: func(t *testing.T, root string) {
				addFile(t, root, testBook+repository.IllustrationTagSuffix,
					"id,page,titles,initials,characters,costume,object,landscape,architecture,other\n"+
						"1,099r,Amant,,Lover,,,,,\n")
			},
			want: "Ludwig.imagetag.csv: unknown page 099r",
		},
		{
			name: "unknown illustration character",
			mutate: func(t *testing.T, root string) {
				addFile(t, root, testBook+repository.IllustrationTagSuffix,
					"id,page,titles,initials,characters,costume,object,landscape,architecture,other\n"+
						"1,001r,Amant,,Jealousy,,,,,\n")
			},
			want: "illustration 1 has unknown character Jealousy",
		},
		{
			name: "unknown narrative section",
			mutate: func(t *testing.T, root string) {
				addFile(t, root, testBook+repository.ManualNarrativeTagSuffix, "Epilogue 001r.a.1 001r.a.4\n")
			},
			want: "Ludwig.nartag.txt: unknown narrative section Epilogue",
		},
		{
			name: "image content is not tiff",
			mutate: func(t *testing.T, root string) {
				addFile(t, root, "Ludwig.001v.tif", "\xff\xd8\xff\xe0 jpeg")
			},
			want: "Ludwig.001v.tif: image type mismatch: extension suggests tiff but content is jpeg",
		},
		{
			name: "image content unrecognized",
			mutate: func(t *testing.T, root string) {
				addFile(t, root, "Ludwig.001r.tif", "tiff")
			},
			want: "Ludwig.001r.tif: image type mismatch: extension suggests tiff but content is unrecognized",
		},
		{
			name: "cropped image without file",
			mutate: func(t *testing.T, root string) {
				addFile(t, root, testBook+repository.CroppedImagesSuffix, "Ludwig.001r.tif,1600,2700\n")
			},
			want: "Ludwig.001r.tif: listed in Ludwig.images.crop.csv but absent from cropped/",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := writeArchive(t)
			tt.mutate(t, root)
			r := checkBook(t, root)
			if r.Pass() {
				t.Fatal("inconsistent book passed")
			}
			got := messages(r.Errors)
			if !strings.Contains(got, tt.want) {
				t.Errorf("errors:\n%s\nwant %q", got, tt.want)
			}
			for _, err := range r.Errors {
				if !errors.Is(err, errors.ErrInconsistent) {
					t.Errorf("error %v is not an inconsistency", err)
				}
			}
		})
	}
}

func TestCheckBookWarnings(t *testing.T) {
	root := writeArchive(t)
	addFile(t, root, "Ludwig.notes.doc", "stray")
	if err := os.Remove(filepath.Join(root, testCollection, testBook, repository.PermissionName(testBook, "en"))); err != nil {
		t.Fatal(err)
	}
	r := checkBook(t, root)
	if !r.Pass() {
		t.Fatalf("warnings failed the check:\n%s", messages(r.Errors))
	}
	got := messages(r.Warnings)
	for _, want := range []string{
		"Ludwig.notes.doc: unexpected artifact",
		"Ludwig.permission_en.html: no permission for language en",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("warnings:\n%s\nwant %q", got, want)
		}
	}
}

type rejectAll struct{}

func (rejectAll) Validate([]byte) xml.ValidationResult {
	return xml.ValidationResult{Errors: []xml.ValidationError{{Line: 1, Message: "element page not allowed here"}}}
}

func TestCheckBookValidatesAnnotations(t *testing.T) {
	root := writeArchive(t)
	r := checkBook(t, root, WithValidator(rejectAll{}))
	want := "Ludwig.aor.001r.xml: line 1: element page not allowed here"
	if got := messages(r.Errors); !strings.Contains(got, want) {
		t.Errorf("errors:\n%s\nwant %q", got, want)
	}
}

func TestCheckBits(t *testing.T) {
	root := writeArchive(t)
	repo := repository.New(store.NewFS(root))
	if _, err := repo.UpdateBookChecksum(testCollection, testBook, true, nil); err != nil {
		t.Fatal(err)
	}
	addFile(t, root, testBook+repository.CropInfoSuffix, "Ludwig.001r.tif 0.2 0.2 0.05 0.05\n")

	col, book, err := repo.Load(testCollection, testBook, nil)
	if err != nil {
		t.Fatal(err)
	}
	c := New(repo)
	if r := c.CheckBook(context.Background(), col, book, false); strings.Contains(messages(r.Errors), "checksum") {
		t.Errorf("digests compared without bits:\n%s", messages(r.Errors))
	}

	r := c.CheckBook(context.Background(), col, book, true)
	var mismatches []string
	for _, err := range r.Errors {
		var dm *errors.DigestMismatchError
		if errors.As(err, &dm) {
			mismatches = append(mismatches, dm.Artifact)
		}
	}
	if len(mismatches) != 1 || mismatches[0] != testBook+repository.CropInfoSuffix {
		t.Errorf("mismatches = %v\nerrors:\n%s", mismatches, messages(r.Errors))
	}
}

func TestCheckDigestsReportsMissingArtifacts(t *testing.T) {
	root := writeArchive(t)
	addFile(t, root, testBook+".SHA1SUM", "da39a3ee5e6b4b0d3255bfef95601890afd80709  Ludwig.removed.csv\n")
	r := checkBook(t, root)
	if got := messages(r.Errors); !strings.Contains(got, "Ludwig.removed.csv: recorded in Ludwig.SHA1SUM but absent") {
		t.Errorf("errors:\n%s", got)
	}
	if got := messages(r.Warnings); !strings.Contains(got, "Ludwig.images.csv: not recorded in Ludwig.SHA1SUM") {
		t.Errorf("warnings:\n%s", got)
	}
}

func TestCheckCollection(t *testing.T) {
	root := writeArchive(t)
	colDir := filepath.Join(root, testCollection)
	write := func(name, content string) {
		if err := os.WriteFile(filepath.Join(colDir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	write(repository.NarrativeSectionsName, "Prologue,The dream,1,44\nPrologue,Again,50,40\n")
	write(repository.BooksName, "key,alternates\nLudwig,Getty\nDouce195,Oxford\n")
	write(repository.ConfigName, "languages = en,fr\n")

	repo := repository.New(store.NewFS(root))
	col, err := repo.LoadCollection(testCollection, nil)
	if err != nil {
		t.Fatal(err)
	}
	r := New(repo).CheckCollection(context.Background(), col, false)

	errs := messages(r.Errors)
	for _, want := range []string{
		"narrative_sections.csv: duplicate section Prologue",
		"narrative_sections.csv: section Prologue ends at lecoy 40 before it starts at 50",
	} {
		if !strings.Contains(errs, want) {
			t.Errorf("errors:\n%s\nwant %q", errs, want)
		}
	}
	warns := messages(r.Warnings)
	for _, want := range []string{
		"books.csv: book Douce195 has no directory",
		"character_names.csv: no names for language fr",
		"rose: no checksum index rose.SHA1SUM",
	} {
		if !strings.Contains(warns, want) {
			t.Errorf("warnings:\n%s\nwant %q", warns, want)
		}
	}
}

func TestRun(t *testing.T) {
	root := writeArchive(t)
	if err := os.WriteFile(filepath.Join(root, testCollection, repository.NarrativeSectionsName),
		[]byte("Prologue,The dream,1,44\nbroken\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	reports, err := New(repository.New(store.NewFS(root))).Run(context.Background(), testCollection, nil, false)
	if err != nil {
		t.Fatal(err)
	}
	if len(reports) != 2 || reports[0].Subject != testCollection || reports[1].Subject != "rose/Ludwig" {
		t.Fatalf("reports = %+v", reports)
	}
	if reports[0].RunID == "" || reports[0].RunID != reports[1].RunID {
		t.Errorf("run ids = %q, %q", reports[0].RunID, reports[1].RunID)
	}
	want := "Malformed row in narrative sections [2]: [broken]"
	if reports[0].Pass() || !strings.Contains(messages(reports[0].Errors), want) {
		t.Errorf("collection errors:\n%s\nwant %q", messages(reports[0].Errors), want)
	}
	if !reports[1].Pass() {
		t.Errorf("book errors:\n%s", messages(reports[1].Errors))
	}
}

func TestRunUnknownBook(t *testing.T) {
	root := writeArchive(t)
	reports, err := New(repository.New(store.NewFS(root))).Run(context.Background(), testCollection, []string{"Douce195"}, false)
	if err != nil {
		t.Fatal(err)
	}
	if len(reports) != 2 || !errors.Is(reports[1].Errors[0], errors.ErrNotFound) {
		t.Fatalf("reports = %+v", reports)
	}
	if _, err := New(repository.New(store.NewFS(root))).Run(context.Background(), "absent", nil, false); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("Run(absent) error = %v", err)
	}
}
