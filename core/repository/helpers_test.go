package repository

import (
	"context"
	"image"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/FocuswithJustin/RosaArchive/core/errors"
	"github.com/FocuswithJustin/RosaArchive/core/store"
)

const (
	testCollection = "rose"
	testBook       = "Ludwig"
)

// fixture is a temporary archive with one collection and one book.
type fixture struct {
	t    *testing.T
	root string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, testCollection, testBook), 0o755); err != nil {
		t.Fatal(err)
	}
	return &fixture{t: t, root: root}
}

func (f *fixture) bookDir() string {
	return filepath.Join(f.root, testCollection, testBook)
}

func (f *fixture) writeCollection(name, content string) {
	f.t.Helper()
	f.write(filepath.Join(f.root, testCollection, name), content)
}

func (f *fixture) writeBook(name, content string) {
	f.t.Helper()
	f.write(filepath.Join(f.bookDir(), name), content)
}

func (f *fixture) write(path, content string) {
	f.t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		f.t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		f.t.Fatal(err)
	}
}

func (f *fixture) readBook(name string) string {
	f.t.Helper()
	data, err := os.ReadFile(filepath.Join(f.bookDir(), name))
	if err != nil {
		f.t.Fatal(err)
	}
	return string(data)
}

func (f *fixture) repo(opts ...Option) *Repository {
	return New(store.NewFS(f.root), opts...)
}

// fakeProber reports dimensions by file name.
type fakeProber struct {
	dims map[string][2]int
}

func (p fakeProber) Probe(_ context.Context, path string) (int, int, error) {
	d, ok := p.dims[filepath.Base(path)]
	if !ok {
		return 0, 0, &errors.ToolError{Tool: "identify", Target: path, Err: errors.New("no decode delegate")}
	}
	return d[0], d[1], nil
}

// fakeCropper writes a marker file to dst and records each rectangle.
type fakeCropper struct {
	mu    sync.Mutex
	rects map[string]image.Rectangle
	fail  map[string]bool
	block bool
}

func (c *fakeCropper) Crop(ctx context.Context, src, dst string, rect image.Rectangle) error {
	if c.block {
		<-ctx.Done()
		return ctx.Err()
	}
	name := filepath.Base(src)
	if c.fail[name] {
		return &errors.ToolError{Tool: "convert", Target: src, Err: errors.New("exit status 1")}
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(dst, []byte("cropped"), 0o644); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.rects == nil {
		c.rects = make(map[string]image.Rectangle)
	}
	c.rects[name] = rect
	return nil
}
