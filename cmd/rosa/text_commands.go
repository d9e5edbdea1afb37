package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/FocuswithJustin/RosaArchive/core/archive"
	"github.com/FocuswithJustin/RosaArchive/core/errors"
	"github.com/FocuswithJustin/RosaArchive/core/store"
	"github.com/FocuswithJustin/RosaArchive/core/transcription"
	"github.com/FocuswithJustin/RosaArchive/core/xml"
	"github.com/FocuswithJustin/RosaArchive/internal/config"
)

// ConvertCmd converts one page of line-oriented transcription to TEI.
type ConvertCmd struct {
	Path   string `arg:"" type:"existingfile" help:"Transcription page file"`
	Page   string `required:"" help:"Page (folio) the file transcribes, e.g. 001r"`
	Prefix string `help:"Prefix of generated anchor ids"`
	Out    string `short:"o" type:"path" help:"Output file (default: stdout)"`
	Indent string `help:"Pretty-print the output, indenting with this string"`
}

func (c *ConvertCmd) Run(env *Env, out io.Writer) error {
	if _, err := env.Config(); err != nil {
		return err
	}
	f, err := os.Open(c.Path)
	if err != nil {
		return errors.NewIO("open", c.Path, err)
	}
	defer f.Close()

	errs := &errors.Collector{}
	data, err := transcription.Converter{IDPrefix: c.Prefix}.Convert(c.Page, f, errs)
	if err != nil {
		return err
	}
	if data, err = pretty(data, c.Indent); err != nil {
		return err
	}
	if c.Out != "" {
		if err := os.WriteFile(c.Out, data, 0o644); err != nil {
			return errors.NewIO("write", c.Out, err)
		}
	} else if _, err := out.Write(data); err != nil {
		return err
	}
	printDiagnostics(os.Stderr, "warning", errs)
	return nil
}

// SplitCmd splits an aggregated transcription into fragments.
type SplitCmd struct {
	Collection string `arg:"" optional:"" help:"Collection of the book"`
	Book       string `arg:"" optional:"" help:"Book whose transcription is split"`
	File       string `type:"existingfile" help:"Split this transcription file instead of a book's"`
	Out        string `short:"o" type:"path" help:"Directory to write one file per fragment to"`
	Indent     string `help:"Pretty-print written fragments, indenting with this string"`
}

func (c *SplitCmd) Run(env *Env, out io.Writer) error {
	var frags []transcription.Fragment
	switch {
	case c.File != "":
		f, err := os.Open(c.File)
		if err != nil {
			return errors.NewIO("open", c.File, err)
		}
		defer f.Close()
		if frags, err = transcription.Split(f); err != nil {
			return errors.Wrapf(err, "split %s", c.File)
		}
	case c.Collection != "" && c.Book != "":
		repo, err := env.Repository()
		if err != nil {
			return err
		}
		errs := &errors.Collector{}
		if frags, err = repo.SplitTranscription(c.Collection, c.Book, errs); err != nil {
			return err
		}
		printDiagnostics(os.Stderr, "warning", errs)
	default:
		return fmt.Errorf("split needs a collection and book, or --file")
	}

	if c.Out != "" {
		if err := writeFragments(c.Out, frags, c.Indent); err != nil {
			return err
		}
	}
	rows := make([][]string, 0, len(frags))
	for _, f := range frags {
		rows = append(rows, []string{f.Page, f.Column, strconv.Itoa(len(f.XML))})
	}
	return printTable(out, []string{"Page", "Column", "Bytes"}, rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight})
}

// fragmentName is "<page>.xml", or "<page>.<column>.xml" for a column.
func fragmentName(f transcription.Fragment) string {
	parts := []string{f.Page}
	if f.Column != "" {
		parts = append(parts, f.Column)
	}
	return strings.Join(parts, ".") + ".xml"
}

func writeFragments(dir string, frags []transcription.Fragment, indent string) error {
	s := store.NewFS(dir)
	for _, f := range frags {
		data, err := pretty([]byte(f.XML), indent)
		if err != nil {
			return errors.Wrapf(err, "format %s", fragmentName(f))
		}
		if err := store.WriteAll(s, fragmentName(f), data); err != nil {
			return err
		}
	}
	return nil
}

// pretty reformats TEI markup when indent is set.
func pretty(data []byte, indent string) ([]byte, error) {
	if indent == "" {
		return data, nil
	}
	return xml.Format(data, xml.FormatOptions{Indent: indent, Fragment: true})
}

// BundleCmd packs a collection or a single book into a compressed tarball.
type BundleCmd struct {
	Collection string `arg:"" help:"Collection to bundle"`
	Book       string `arg:"" optional:"" help:"Bundle only this book"`
	Out        string `short:"o" required:"" type:"path" help:"Bundle file to write"`
	Compress   string `default:"xz" enum:"xz,gzip,zstd,lz4" help:"Compression (${enum})"`
}

func (c *BundleCmd) Run(env *Env, out io.Writer) error {
	repo, err := env.Repository()
	if err != nil {
		return err
	}
	s := repo.CollectionStore(c.Collection)
	prefix := c.Collection
	if c.Book != "" {
		s = repo.BookStore(c.Collection, c.Book)
		prefix = c.Collection + "/" + c.Book
	}
	if !repo.Root().Exists(c.Collection) {
		return errors.NewNotFound("collection", c.Collection)
	}

	compression, err := archive.ParseCompression(c.Compress)
	if err != nil {
		return err
	}
	n, err := archive.BundleFile(s, c.Out, archive.Options{Compression: compression, Prefix: prefix})
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(out, "bundled %d artifacts of %s into %s\n", n, prefix, c.Out)
	return err
}

// UnbundleCmd extracts a bundle into the archive root.
type UnbundleCmd struct {
	Path string `arg:"" type:"existingfile" help:"Bundle file to extract"`
}

func (c *UnbundleCmd) Run(env *Env, out io.Writer) error {
	repo, err := env.Repository()
	if err != nil {
		return err
	}
	names, err := archive.UnbundleFile(c.Path, repo.Root())
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(out, "extracted %d artifacts from %s\n", len(names), filepath.Base(c.Path))
	return err
}

// InitConfigCmd writes the sample configuration.
type InitConfigCmd struct {
	Path  string `arg:"" optional:"" type:"path" help:"Where to write the configuration (default: user config path)"`
	Force bool   `short:"f" help:"Overwrite an existing file"`
}

func (c *InitConfigCmd) Run(out io.Writer) error {
	path := c.Path
	if path == "" {
		var err error
		if path, err = config.DefaultConfigPath(); err != nil {
			return err
		}
	}
	if _, err := os.Stat(path); err == nil && !c.Force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}
	if err := config.CreateSample(path); err != nil {
		return err
	}
	_, err := fmt.Fprintf(out, "wrote %s\n", path)
	return err
}
