package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/FocuswithJustin/RosaArchive/core/checker"
	"github.com/FocuswithJustin/RosaArchive/core/errors"
	"github.com/FocuswithJustin/RosaArchive/core/model"
	"github.com/FocuswithJustin/RosaArchive/core/repository"
)

// loader returns the cache when enabled, otherwise the repository.
func (e *Env) loader() (checker.Loader, error) {
	cached, err := e.Cached()
	if err != nil {
		return nil, err
	}
	if cached != nil {
		return cached, nil
	}
	return e.Repository()
}

// ListCmd lists collections or books.
type ListCmd struct {
	Collection string `arg:"" optional:"" help:"Collection to list books of"`
}

func (c *ListCmd) Run(env *Env, out io.Writer) error {
	repo, err := env.Repository()
	if err != nil {
		return err
	}
	if c.Collection == "" {
		cols, err := repo.ListCollections()
		if err != nil {
			return err
		}
		rows := make([][]string, 0, len(cols))
		for _, id := range cols {
			books, err := repo.ListBooks(id)
			if err != nil {
				return err
			}
			rows = append(rows, []string{id, strconv.Itoa(len(books))})
		}
		return printTable(out, []string{"Collection", "Books"}, rows, []columnAlignment{alignLeft, alignRight})
	}

	loader, err := env.loader()
	if err != nil {
		return err
	}
	errs := &errors.Collector{}
	col, err := loader.LoadCollection(c.Collection, errs)
	if err != nil {
		return err
	}
	var rows [][]string
	for _, id := range col.BookIDs {
		book, err := loader.LoadBook(col, id, errs)
		if err != nil {
			errs.Add(err)
			continue
		}
		rows = append(rows, bookRow(book))
	}
	if err := printTable(out,
		[]string{"Book", "Images", "Missing", "Cropped", "Transcription", "AoR pages"},
		rows,
		[]columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignLeft, alignRight},
	); err != nil {
		return err
	}
	printDiagnostics(out, "warning", errs)
	return nil
}

func bookRow(b *model.Book) []string {
	missing := 0
	if b.Images != nil {
		for _, img := range b.Images.Images {
			if img.Missing {
				missing++
			}
		}
	}
	return []string{
		b.ID,
		strconv.Itoa(b.Images.Len()),
		strconv.Itoa(missing),
		strconv.Itoa(b.CroppedImages.Len()),
		yesNo(b.Transcription != nil),
		strconv.Itoa(len(b.AnnotatedPages)),
	}
}

// CheckCmd checks a collection and its books.
type CheckCmd struct {
	Collection string   `arg:"" help:"Collection to check"`
	Books      []string `arg:"" optional:"" help:"Books to check (default: all)"`
	Bits       bool     `help:"Rehash every artifact and compare with the checksum indexes"`
	Quiet      bool     `short:"q" help:"Only print the summary"`
}

func (c *CheckCmd) Run(env *Env, out io.Writer) error {
	repo, err := env.Repository()
	if err != nil {
		return err
	}
	loader, err := env.loader()
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reports, runErr := checker.New(repo, checker.WithLoader(loader)).Run(ctx, c.Collection, c.Books, c.Bits)
	if runErr != nil && len(reports) == 0 {
		return runErr
	}

	colorize := shouldColorize(out)
	failed := 0
	rows := make([][]string, 0, len(reports))
	for _, r := range reports {
		if !r.Pass() {
			failed++
		}
		rows = append(rows, []string{r.Subject, strconv.Itoa(len(r.Errors)), strconv.Itoa(len(r.Warnings)), status(r.Pass(), colorize)})
	}
	if !c.Quiet {
		for _, r := range reports {
			for _, e := range r.Errors {
				fmt.Fprintf(out, "error   %s: %v\n", r.Subject, e)
			}
			for _, w := range r.Warnings {
				fmt.Fprintf(out, "warning %s: %v\n", r.Subject, w)
			}
		}
	}
	if err := printTable(out, []string{"Subject", "Errors", "Warnings", "Status"}, rows,
		[]columnAlignment{alignLeft, alignRight, alignRight, alignLeft}); err != nil {
		return err
	}
	if runErr != nil {
		return runErr
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d checks failed (run %s)", failed, len(reports), reports[0].RunID)
	}
	return nil
}

// ChecksumCmd refreshes the checksum indexes of a collection and its books.
type ChecksumCmd struct {
	Collection string   `arg:"" help:"Collection to update"`
	Books      []string `arg:"" optional:"" help:"Books to update (default: all)"`
	Force      bool     `short:"f" help:"Rehash every artifact regardless of modification time"`
}

func (c *ChecksumCmd) Run(env *Env, out io.Writer) error {
	repo, err := env.Repository()
	if err != nil {
		return err
	}
	books := c.Books
	if len(books) == 0 {
		if books, err = repo.ListBooks(c.Collection); err != nil {
			return err
		}
	}

	errs := &errors.Collector{}
	var rows [][]string
	complete, err := repo.UpdateCollectionChecksum(c.Collection, c.Force, errs)
	if err != nil {
		return err
	}
	rows = append(rows, []string{c.Collection, yesNo(complete)})
	for _, book := range books {
		complete, err := repo.UpdateBookChecksum(c.Collection, book, c.Force, errs)
		if err != nil {
			errs.Add(err)
			rows = append(rows, []string{c.Collection + "/" + book, "error"})
			continue
		}
		rows = append(rows, []string{c.Collection + "/" + book, yesNo(complete)})
	}
	if err := printTable(out, []string{"Subject", "Complete"}, rows, nil); err != nil {
		return err
	}
	printDiagnostics(out, "error", errs)
	if errs.Len() > 0 {
		return fmt.Errorf("%d problems while updating checksums", errs.Len())
	}
	return nil
}

// ImageListCmd generates a book's image list from its image files.
type ImageListCmd struct {
	Collection string `arg:"" help:"Collection of the book"`
	Book       string `arg:"" help:"Book to scan"`
	Force      bool   `short:"f" help:"Replace an existing image list"`
	Cropped    bool   `help:"Scan the cropped images instead and write the cropped image list"`
}

func (c *ImageListCmd) Run(env *Env, out io.Writer) error {
	repo, err := env.Repository()
	if err != nil {
		return err
	}
	errs := &errors.Collector{}
	col, err := repo.LoadCollection(c.Collection, errs)
	if err != nil {
		return err
	}
	ctx := context.Background()
	var list *model.ImageList
	if c.Cropped {
		list, err = repo.GenerateAndWriteCroppedImageList(ctx, col, c.Book, errs)
	} else {
		list, err = repo.GenerateImageList(ctx, col, c.Book, c.Force, errs)
	}
	if err != nil {
		if errors.Is(err, repository.ErrExists) {
			return fmt.Errorf("%w (use --force to replace it)", err)
		}
		return err
	}
	rows := make([][]string, 0, list.Len())
	for _, img := range list.Images {
		rows = append(rows, []string{img.ID, strconv.Itoa(img.Width), strconv.Itoa(img.Height), yesNo(img.Missing)})
	}
	if err := printTable(out, []string{"Image", "Width", "Height", "Missing"}, rows,
		[]columnAlignment{alignLeft, alignRight, alignRight, alignLeft}); err != nil {
		return err
	}
	printDiagnostics(out, "warning", errs)
	return nil
}

// CropCmd crops a book's images into its cropped directory.
type CropCmd struct {
	Collection string `arg:"" help:"Collection of the book"`
	Book       string `arg:"" help:"Book to crop"`
	Force      bool   `short:"f" help:"Recrop images that already have a cropped file"`
}

func (c *CropCmd) Run(env *Env, out io.Writer) error {
	repo, err := env.Repository()
	if err != nil {
		return err
	}
	errs := &errors.Collector{}
	col, err := repo.LoadCollection(c.Collection, errs)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stats, err := repo.CropImages(ctx, col, c.Book, c.Force, errs)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "cropped %d, skipped %d, failed %d\n", stats.Cropped, stats.Skipped, stats.Failed)
	printDiagnostics(out, "error", errs)
	if stats.Failed > 0 {
		return fmt.Errorf("%d images failed to crop", stats.Failed)
	}
	return nil
}
