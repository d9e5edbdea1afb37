package store

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	archerrors "github.com/FocuswithJustin/RosaArchive/core/errors"
)

func TestWriteAndRead(t *testing.T) {
	s := NewFS(filepath.Join(t.TempDir(), "Ludwig"))

	data := []byte("Ludwig.001r.tif,100,200\n")
	if err := WriteAll(s, "Ludwig.images.csv", data); err != nil {
		t.Fatalf("WriteAll() error = %v", err)
	}

	got, err := ReadAll(s, "Ludwig.images.csv")
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Errorf("ReadAll() = %q, want %q", got, data)
	}
	if !s.Exists("Ludwig.images.csv") {
		t.Error("Exists() = false after write")
	}
}

func TestOpenMissing(t *testing.T) {
	s := NewFS(t.TempDir())
	_, err := s.Open("nope.csv")
	if !errors.Is(err, archerrors.ErrNotFound) {
		t.Errorf("Open() error = %v, want ErrNotFound", err)
	}
	var nf *archerrors.NotFoundError
	if !errors.As(err, &nf) || nf.ID != "nope.csv" {
		t.Errorf("Open() error = %#v, want NotFoundError for nope.csv", err)
	}
}

func TestRejectsTraversal(t *testing.T) {
	s := NewFS(t.TempDir())
	if _, err := s.Open("../etc/passwd"); err == nil {
		t.Error("Open() with traversal should fail")
	}
	if _, err := s.Create("a/b"); err == nil {
		t.Error("Create() with separator should fail")
	}
	if s.Exists("..") {
		t.Error("Exists(\"..\") should be false")
	}
	if s.LastModified("../x") != NoTime {
		t.Error("LastModified() with traversal should be NoTime")
	}
}

func TestListSeparatesArtifactsAndStores(t *testing.T) {
	root := t.TempDir()
	s := NewFS(root)
	for _, name := range []string{"b.txt", "a.txt"} {
		if err := WriteAll(s, name, []byte(name)); err != nil {
			t.Fatal(err)
		}
	}
	for _, dir := range []string{"BookB", "BookA"} {
		if err := os.Mkdir(filepath.Join(root, dir), 0755); err != nil {
			t.Fatal(err)
		}
	}

	files, err := s.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if want := []string{"a.txt", "b.txt"}; !reflect.DeepEqual(files, want) {
		t.Errorf("List() = %v, want %v", files, want)
	}

	stores, err := s.ListStores()
	if err != nil {
		t.Fatalf("ListStores() error = %v", err)
	}
	if want := []string{"BookA", "BookB"}; !reflect.DeepEqual(stores, want) {
		t.Errorf("ListStores() = %v, want %v", stores, want)
	}
}

func TestListMissingStore(t *testing.T) {
	s := NewFS(filepath.Join(t.TempDir(), "absent"))
	if _, err := s.List(); !errors.Is(err, archerrors.ErrNotFound) {
		t.Errorf("List() error = %v, want ErrNotFound", err)
	}
}

func TestLastModified(t *testing.T) {
	s := NewFS(t.TempDir())
	if got := s.LastModified("x"); got != NoTime {
		t.Errorf("LastModified(absent) = %d, want %d", got, NoTime)
	}
	if err := WriteAll(s, "x", []byte("x")); err != nil {
		t.Fatal(err)
	}
	when := time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC)
	if err := os.Chtimes(s.Locate("x"), when, when); err != nil {
		t.Fatal(err)
	}
	if got := s.LastModified("x"); got != when.UnixNano() {
		t.Errorf("LastModified() = %d, want %d", got, when.UnixNano())
	}
}

func TestChildCreatedOnWrite(t *testing.T) {
	root := t.TempDir()
	s := NewFS(root)
	child := s.Child("cropped")
	if s.Exists("cropped") {
		t.Fatal("child should not exist before write")
	}
	if err := WriteAll(child, "a.tif", []byte("a")); err != nil {
		t.Fatalf("WriteAll() error = %v", err)
	}
	if !s.Exists("cropped") {
		t.Error("child should exist after write")
	}
	if child.Name() != "cropped" {
		t.Errorf("Name() = %q, want cropped", child.Name())
	}
}

func TestRenameAndCopy(t *testing.T) {
	root := t.TempDir()
	s := NewFS(filepath.Join(root, "a"))
	other := NewFS(filepath.Join(root, "b"))

	if err := WriteAll(s, "old.tif", []byte("img")); err != nil {
		t.Fatal(err)
	}
	if err := s.Rename("old.tif", "new.tif"); err != nil {
		t.Fatalf("Rename() error = %v", err)
	}
	if s.Exists("old.tif") || !s.Exists("new.tif") {
		t.Error("Rename() did not move the artifact")
	}
	if err := s.Rename("old.tif", "x.tif"); !errors.Is(err, archerrors.ErrNotFound) {
		t.Errorf("Rename(absent) error = %v, want ErrNotFound", err)
	}

	if err := s.CopyTo("new.tif", other); err != nil {
		t.Fatalf("CopyTo() error = %v", err)
	}
	got, err := ReadAll(other, "new.tif")
	if err != nil || string(got) != "img" {
		t.Errorf("copied content = %q, %v", got, err)
	}
}

func TestCreateFailedRenameLeavesNoTemp(t *testing.T) {
	dir := t.TempDir()
	s := NewFS(dir)

	orig := osRename
	osRename = func(string, string) error { return errors.New("rename failed") }
	defer func() { osRename = orig }()

	if err := WriteAll(s, "x.csv", []byte("x")); err == nil {
		t.Fatal("WriteAll() should fail when rename fails")
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("temp files left behind: %v", entries)
	}
}

func TestListSkipsTempFiles(t *testing.T) {
	s := NewFS(t.TempDir())
	w, err := s.Create("pending.csv")
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()
	if s.Exists("pending.csv") {
		t.Error("artifact visible before Close()")
	}
}

func TestAbortKeepsExistingArtifact(t *testing.T) {
	dir := t.TempDir()
	s := NewFS(dir)
	if err := WriteAll(s, "Ludwig.crop.txt", []byte("good")); err != nil {
		t.Fatal(err)
	}
	w, err := s.Create("Ludwig.crop.txt")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.Write([]byte("partial")); err != nil {
		t.Fatal(err)
	}
	if err := w.Abort(); err != nil {
		t.Fatalf("Abort() error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("Close() after Abort() error = %v", err)
	}

	data, err := ReadAll(s, "Ludwig.crop.txt")
	if err != nil || string(data) != "good" {
		t.Errorf("content = %q, %v; want %q", data, err, "good")
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("temp files left behind: %v", entries)
	}
}
