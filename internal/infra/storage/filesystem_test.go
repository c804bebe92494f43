package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	domain "github.com/bryanwahyu/procdoc/internal/domain/reports"
)

func writeString(s string) func(io.Writer) error {
	return func(w io.Writer) error {
		_, err := io.WriteString(w, s)
		return err
	}
}

func mustSave(t *testing.T, s *FileStore, name, content string) string {
	t.Helper()
	got, err := s.Save(context.Background(), name, writeString(content))
	if err != nil {
		t.Fatalf("Save(%s): %v", name, err)
	}
	return got
}

func setMtime(t *testing.T, s *FileStore, name string, at time.Time) {
	t.Helper()
	if err := os.Chtimes(filepath.Join(s.Dir(), name), at, at); err != nil {
		t.Fatal(err)
	}
}

func TestListMissingDirectoryIsEmpty(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "absent"), nil)
	list, err := s.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("List = %v, want empty", list)
	}
}

func TestListNewestFirstAndIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	s := NewFileStore(dir, nil)
	now := time.Now()

	mustSave(t, s, "old.docx", "o")
	mustSave(t, s, "mid.docx", "mm")
	mustSave(t, s, "new.docx", "nnn")
	setMtime(t, s, "old.docx", now.Add(-3*time.Hour))
	setMtime(t, s, "mid.docx", now.Add(-2*time.Hour))
	setMtime(t, s, "new.docx", now.Add(-1*time.Hour))

	for _, name := range []string{"notes.txt", ".procdoc-123.tmp"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "sub.docx"), 0o755); err != nil {
		t.Fatal(err)
	}

	list, err := s.List(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, r := range list {
		names = append(names, r.Filename)
	}
	if got := strings.Join(names, ","); got != "new.docx,mid.docx,old.docx" {
		t.Fatalf("order = %s", got)
	}
	if list[0].Size != 3 {
		t.Errorf("size = %d", list[0].Size)
	}

	// restartable: a second call sees the same listing
	again, err := s.List(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(list, again) {
		t.Fatalf("second List = %+v, want %+v", again, list)
	}
}

func TestListTieBreaksOnFilename(t *testing.T) {
	s := NewFileStore(t.TempDir(), nil)
	at := time.Now().Add(-time.Hour).Truncate(time.Second)
	for _, n := range []string{"a.docx", "c.docx", "b.docx"} {
		mustSave(t, s, n, "x")
		setMtime(t, s, n, at)
	}
	list, err := s.List(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if list[0].Filename != "c.docx" || list[2].Filename != "a.docx" {
		t.Fatalf("list = %v", list)
	}
}

func TestSaveNeverOverwrites(t *testing.T) {
	s := NewFileStore(t.TempDir(), nil)
	first := mustSave(t, s, "Report_X_20240101_000000.docx", "one")
	second := mustSave(t, s, "Report_X_20240101_000000.docx", "two")
	third := mustSave(t, s, "Report_X_20240101_000000.docx", "three")

	if first != "Report_X_20240101_000000.docx" {
		t.Errorf("first = %s", first)
	}
	if second != "Report_X_20240101_000000_2.docx" || third != "Report_X_20240101_000000_3.docx" {
		t.Errorf("second = %s, third = %s", second, third)
	}
	data, err := os.ReadFile(filepath.Join(s.Dir(), first))
	if err != nil || string(data) != "one" {
		t.Fatalf("first content = %q, %v", data, err)
	}
}

func TestSaveConcurrentSameName(t *testing.T) {
	s := NewFileStore(t.TempDir(), nil)
	const n = 8
	var wg sync.WaitGroup
	names := make(chan string, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := s.Save(context.Background(), "same.docx", writeString("x"))
			if err != nil {
				t.Error(err)
				return
			}
			names <- got
		}()
	}
	wg.Wait()
	close(names)

	seen := map[string]bool{}
	for name := range names {
		if seen[name] {
			t.Fatalf("duplicate name %s", name)
		}
		seen[name] = true
	}
	if len(seen) != n {
		t.Fatalf("saved %d files, want %d", len(seen), n)
	}
}

func TestSaveFailedWriteLeavesNothing(t *testing.T) {
	dir := t.TempDir()
	s := NewFileStore(dir, nil)
	_, err := s.Save(context.Background(), "broken.docx", func(w io.Writer) error {
		io.WriteString(w, "partial")
		return errors.New("boom")
	})
	if !errors.Is(err, domain.ErrStorage) {
		t.Fatalf("err = %v", err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Fatalf("directory not empty: %v", entries)
	}
}

func TestSaveRejectsUnsafeName(t *testing.T) {
	s := NewFileStore(t.TempDir(), nil)
	for _, name := range []string{"../escape.docx", "a/b.docx", "x.txt"} {
		if _, err := s.Save(context.Background(), name, writeString("x")); !errors.Is(err, domain.ErrInvalidInput) {
			t.Errorf("Save(%q) = %v", name, err)
		}
	}
}

func TestCleanupBoundary(t *testing.T) {
	s := NewFileStore(t.TempDir(), nil)
	now := time.Now()
	mustSave(t, s, "stale.docx", "x")
	mustSave(t, s, "fresh.docx", "x")
	mustSave(t, s, "edge.docx", "x")
	setMtime(t, s, "stale.docx", now.Add(-48*time.Hour))
	setMtime(t, s, "fresh.docx", now.Add(-1*time.Hour))
	cutoff := now.Add(-24 * time.Hour).Truncate(time.Second)
	setMtime(t, s, "edge.docx", cutoff)

	res, err := s.Cleanup(context.Background(), cutoff)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Deleted) != 1 || res.Deleted[0] != "stale.docx" {
		t.Fatalf("deleted = %v", res.Deleted)
	}
	if len(res.Failed) != 0 {
		t.Fatalf("failed = %v", res.Failed)
	}

	list, _ := s.List(context.Background())
	if len(list) != 2 {
		t.Fatalf("remaining = %v", list)
	}
}

func TestCleanupZeroAgeRemovesEverythingOlderThanNow(t *testing.T) {
	s := NewFileStore(t.TempDir(), nil)
	mustSave(t, s, "a.docx", "x")
	mustSave(t, s, "b.docx", "x")
	setMtime(t, s, "a.docx", time.Now().Add(-time.Second))
	setMtime(t, s, "b.docx", time.Now().Add(-time.Second))

	res, err := s.Cleanup(context.Background(), time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Deleted) != 2 {
		t.Fatalf("deleted = %v", res.Deleted)
	}
}

func TestCleanupMissingDirectory(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "absent"), nil)
	res, err := s.Cleanup(context.Background(), time.Now())
	if err != nil || len(res.Deleted) != 0 {
		t.Fatalf("Cleanup = %v, %v", res, err)
	}
}

func TestOpenAndDelete(t *testing.T) {
	s := NewFileStore(t.TempDir(), nil)
	name := mustSave(t, s, "r.docx", "payload")

	rc, info, err := s.Open(context.Background(), name)
	if err != nil {
		t.Fatal(err)
	}
	data, _ := io.ReadAll(rc)
	rc.Close()
	if string(data) != "payload" || info.Size != int64(len("payload")) {
		t.Fatalf("Open = %q, %+v", data, info)
	}

	if err := s.Delete(context.Background(), name); err != nil {
		t.Fatal(err)
	}
	if err := s.Delete(context.Background(), name); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("second Delete = %v", err)
	}
	if _, _, err := s.Open(context.Background(), name); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("Open after delete = %v", err)
	}
	if _, _, err := s.Open(context.Background(), "../r.docx"); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("Open traversal = %v", err)
	}
}

func TestCheckCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "out")
	s := NewFileStore(dir, nil)
	if err := s.Check(context.Background()); err != nil {
		t.Fatal(err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil || len(entries) != 0 {
		t.Fatalf("entries = %v, %v", entries, err)
	}
}
