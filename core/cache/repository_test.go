package cache

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/FocuswithJustin/RosaArchive/core/checker"
	"github.com/FocuswithJustin/RosaArchive/core/errors"
	"github.com/FocuswithJustin/RosaArchive/core/model"
	"github.com/FocuswithJustin/RosaArchive/core/repository"
	"github.com/FocuswithJustin/RosaArchive/core/store"
)

func newCachedRepo(t *testing.T) (*CachedRepository, string) {
	t.Helper()
	root := t.TempDir()
	dir := filepath.Join(root, "rose", "Ludwig")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "Ludwig"+repository.ImagesSuffix), []byte("Ludwig.001r.tif,2000,x\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	return NewCachedRepository(repository.New(store.NewFS(root)), DefaultConfig()), dir
}

func TestCachedRepositoryReplaysDiagnostics(t *testing.T) {
	c, _ := newCachedRepo(t)

	first := &errors.Collector{}
	col, book, err := c.Load("rose", "Ludwig", first)
	if err != nil {
		t.Fatal(err)
	}
	second := &errors.Collector{}
	col2, book2, err := c.Load("rose", "Ludwig", second)
	if err != nil {
		t.Fatal(err)
	}
	if col2 != col || book2 != book {
		t.Error("second load was not served from the cache")
	}
	if first.Len() != 1 || second.Len() != first.Len() || second.Strings()[0] != first.Strings()[0] {
		t.Errorf("diagnostics = %v then %v", first.Strings(), second.Strings())
	}
	cols, books := c.Stats()
	if cols.Hits != 1 || books.Hits != 1 || books.Misses != 1 {
		t.Errorf("Stats() = %+v, %+v", cols, books)
	}
}

func TestCachedRepositoryInvalidate(t *testing.T) {
	c, dir := newCachedRepo(t)
	_, book, err := c.Load("rose", "Ludwig", nil)
	if err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(filepath.Join(dir, "Ludwig"+repository.ImagesSuffix), []byte("Ludwig.001r.tif,2000,3000\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, stale, _ := c.Load("rose", "Ludwig", nil)
	if stale != book {
		t.Fatal("external write should not be observed before Invalidate")
	}

	c.Invalidate("rose", "")
	errs := &errors.Collector{}
	_, fresh, err := c.Load("rose", "Ludwig", errs)
	if err != nil {
		t.Fatal(err)
	}
	if fresh == book || errs.Len() != 0 || fresh.Images.Len() != 1 {
		t.Errorf("reload after Invalidate = %+v, %v", fresh.Images, errs.Strings())
	}
}

func TestCachedRepositoryWritesInvalidate(t *testing.T) {
	c, _ := newCachedRepo(t)
	_, book, err := c.Load("rose", "Ludwig", nil)
	if err != nil {
		t.Fatal(err)
	}
	info := &model.CropInfo{Entries: []model.CropData{{ID: "Ludwig.001r.tif", Left: 0.1, Right: 0.1, Top: 0.1, Bottom: 0.1}}}
	if err := c.WriteCropInfo("rose", "Ludwig", info); err != nil {
		t.Fatal(err)
	}
	_, fresh, err := c.Load("rose", "Ludwig", nil)
	if err != nil {
		t.Fatal(err)
	}
	if fresh == book || fresh.CropInfo == nil {
		t.Errorf("crop info not visible after write: %+v", fresh.CropInfo)
	}
}

func TestCachedRepositoryDoesNotCacheFailures(t *testing.T) {
	c, _ := newCachedRepo(t)
	if _, err := c.LoadCollection("absent", nil); !errors.Is(err, errors.ErrNotFound) {
		t.Fatalf("error = %v", err)
	}
	if cols, _ := c.Stats(); cols.Size != 0 {
		t.Errorf("failed load cached: %+v", cols)
	}
}

func TestCachedRepositoryFeedsChecker(t *testing.T) {
	c, _ := newCachedRepo(t)
	chk := checker.New(c.Repository(), checker.WithLoader(c))
	for i := 0; i < 2; i++ {
		reports, err := chk.Run(context.Background(), "rose", nil, false)
		if err != nil {
			t.Fatal(err)
		}
		if len(reports) != 2 || reports[1].Pass() {
			t.Fatalf("run %d: reports = %+v", i, reports)
		}
	}
	if _, books := c.Stats(); books.Hits != 1 {
		t.Errorf("book cache hits = %d, want 1", books.Hits)
	}
}
