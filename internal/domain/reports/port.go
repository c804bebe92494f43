package reports

import (
	"context"
	"io"
	"time"
)

// Store port for the report output directory.
type Store interface {
	// Save writes a new artifact named after name (or a suffixed variant
	// when name is taken) and returns the filename actually used. Either
	// the complete artifact becomes visible or nothing does.
	Save(ctx context.Context, name string, write func(io.Writer) error) (string, error)
	List(ctx context.Context) ([]Report, error)
	Cleanup(ctx context.Context, cutoff time.Time) (CleanupResult, error)
	Open(ctx context.Context, name string) (io.ReadCloser, Report, error)
	Delete(ctx context.Context, name string) error
}

// CleanupResult lists what an age-based cleanup pass removed and what it
// could not remove. A failed file never aborts the pass.
type CleanupResult struct {
	Deleted []string
	Failed  map[string]error
}

// Mirror port for an optional remote copy of every artifact.
type Mirror interface {
	Put(ctx context.Context, filename string, r io.Reader, size int64) (string, error)
	Remove(ctx context.Context, filename string) error
}
