package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	domain "github.com/bryanwahyu/procdoc/internal/domain/reports"
)

const tempPattern = ".procdoc-*.tmp"

// maxNameAttempts bounds the "_2", "_3", ... suffixes tried when a
// generated name is already taken.
const maxNameAttempts = 100

// FileStore keeps report artifacts in one flat directory. The directory
// listing is the only index.
type FileStore struct {
	dir    string
	logger *log.Logger
}

// NewFileStore returns a store rooted at dir. The directory is created
// lazily on first Save.
func NewFileStore(dir string, logger *log.Logger) *FileStore {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &FileStore{dir: dir, logger: logger}
}

// Dir returns the output directory.
func (s *FileStore) Dir() string { return s.dir }

// Save renders into a hidden temp file and then hard-links it under its
// final name, so readers never observe a partial artifact and an existing
// file is never overwritten.
func (s *FileStore) Save(ctx context.Context, name string, write func(io.Writer) error) (string, error) {
	if !domain.ValidFilename(name) {
		return "", fmt.Errorf("%w: invalid report filename", domain.ErrInvalidInput)
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("%w: create output directory: %v", domain.ErrStorage, err)
	}

	tmp, err := os.CreateTemp(s.dir, tempPattern)
	if err != nil {
		return "", fmt.Errorf("%w: create temp file: %v", domain.ErrStorage, err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if err := write(tmp); err != nil {
		tmp.Close()
		return "", fmt.Errorf("%w: render: %v", domain.ErrStorage, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return "", fmt.Errorf("%w: sync: %v", domain.ErrStorage, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("%w: close: %v", domain.ErrStorage, err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		return "", fmt.Errorf("%w: chmod: %v", domain.ErrStorage, err)
	}

	for attempt := 1; attempt <= maxNameAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		candidate := suffixed(name, attempt)
		err := os.Link(tmpPath, filepath.Join(s.dir, candidate))
		if err == nil {
			return candidate, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return "", fmt.Errorf("%w: publish: %v", domain.ErrStorage, err)
		}
	}
	return "", fmt.Errorf("%w: no free name for %s", domain.ErrStorage, name)
}

// suffixed returns name for attempt 1 and "<base>_<n><ext>" afterwards.
func suffixed(name string, attempt int) string {
	if attempt == 1 {
		return name
	}
	base := strings.TrimSuffix(name, domain.Extension)
	return base + "_" + strconv.Itoa(attempt) + domain.Extension
}

// List returns every report, newest modification first. A missing output
// directory yields an empty list.
func (s *FileStore) List(ctx context.Context) ([]domain.Report, error) {
	entries, err := s.reportEntries()
	if err != nil {
		return nil, err
	}
	out := make([]domain.Report, 0, len(entries))
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		info, err := e.Info()
		if err != nil {
			// removed between ReadDir and Info
			continue
		}
		out = append(out, describe(info))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].ModifiedAt.Equal(out[j].ModifiedAt) {
			return out[i].ModifiedAt.After(out[j].ModifiedAt)
		}
		return out[i].Filename > out[j].Filename
	})
	return out, nil
}

// Cleanup removes every report modified strictly before cutoff. Files that
// cannot be removed are reported in the result and the pass continues.
func (s *FileStore) Cleanup(ctx context.Context, cutoff time.Time) (domain.CleanupResult, error) {
	res := domain.CleanupResult{Failed: map[string]error{}}
	entries, err := s.reportEntries()
	if err != nil {
		return res, err
	}
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, e.Name())); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			res.Failed[e.Name()] = err
			s.logger.Printf("cleanup failed file=%s err=%v", e.Name(), err)
			continue
		}
		res.Deleted = append(res.Deleted, e.Name())
		s.logger.Printf("cleanup deleted file=%s modified=%s", e.Name(), info.ModTime().Format(time.RFC3339))
	}
	return res, nil
}

// Open returns a reader for the named report.
func (s *FileStore) Open(ctx context.Context, name string) (io.ReadCloser, domain.Report, error) {
	if !domain.ValidFilename(name) {
		return nil, domain.Report{}, fmt.Errorf("%w: invalid report filename", domain.ErrInvalidInput)
	}
	f, err := os.Open(filepath.Join(s.dir, name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, domain.Report{}, domain.ErrNotFound
		}
		return nil, domain.Report{}, fmt.Errorf("%w: open: %v", domain.ErrStorage, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, domain.Report{}, fmt.Errorf("%w: stat: %v", domain.ErrStorage, err)
	}
	if !info.Mode().IsRegular() {
		f.Close()
		return nil, domain.Report{}, domain.ErrNotFound
	}
	return f, describe(info), nil
}

// Delete removes the named report.
func (s *FileStore) Delete(ctx context.Context, name string) error {
	if !domain.ValidFilename(name) {
		return fmt.Errorf("%w: invalid report filename", domain.ErrInvalidInput)
	}
	if err := os.Remove(filepath.Join(s.dir, name)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("%w: delete: %v", domain.ErrStorage, err)
	}
	return nil
}

// Check verifies the output directory exists and is writable.
func (s *FileStore) Check(ctx context.Context) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(s.dir, tempPattern)
	if err != nil {
		return err
	}
	name := f.Name()
	f.Close()
	return os.Remove(name)
}

func (s *FileStore) reportEntries() ([]os.DirEntry, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: read output directory: %v", domain.ErrStorage, err)
	}
	out := entries[:0]
	for _, e := range entries {
		if e.Type().IsRegular() && domain.ValidFilename(e.Name()) {
			out = append(out, e)
		}
	}
	return out, nil
}

func describe(info os.FileInfo) domain.Report {
	return domain.Report{
		Filename:   info.Name(),
		Size:       info.Size(),
		CreatedAt:  createdAt(info),
		ModifiedAt: info.ModTime(),
	}
}
