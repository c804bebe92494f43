package reports

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bryanwahyu/procdoc/internal/application"
	"github.com/bryanwahyu/procdoc/internal/domain/document"
	"github.com/bryanwahyu/procdoc/internal/domain/history"
	domain "github.com/bryanwahyu/procdoc/internal/domain/reports"
)

const (
	DefaultPrefix       = "Process_Analysis"
	DefaultSubject      = "Process Analysis"
	DefaultCleanupHours = 24
)

// Recorder receives report lifecycle events (metrics).
type Recorder interface {
	Generated()
	Deleted(n int)
	Failed()
}

type nopRecorder struct{}

func (nopRecorder) Generated()  {}
func (nopRecorder) Deleted(int) {}
func (nopRecorder) Failed()     {}

// Service implements the report use-cases. Mirror, History and Metrics are
// optional. Service is safe for concurrent use.
type Service struct {
	Store    domain.Store
	Renderer document.Renderer
	Mirror   domain.Mirror
	History  history.Repository
	Metrics  Recorder
	Clock    application.Clock
	Logger   *log.Logger

	// Branding holds the configured defaults; requests merge over a copy.
	Branding            domain.Branding
	Prefix              string
	DefaultTemplate     string
	DefaultCleanupHours float64
}

func (s *Service) now() time.Time {
	if s.Clock == nil {
		return time.Now()
	}
	return s.Clock.Now()
}

func (s *Service) logf(format string, args ...any) {
	if s.Logger != nil {
		s.Logger.Printf(format, args...)
	}
}

func (s *Service) metrics() Recorder {
	if s.Metrics == nil {
		return nopRecorder{}
	}
	return s.Metrics
}

//
// ==== USE CASES ====
//

// GenerateCommand untuk bikin satu report
type GenerateCommand struct {
	AnalysisText string
	Subject      string
	Query        string
	Template     string
	Timestamp    time.Time
	Branding     *domain.Branding
}

type GenerateResult struct {
	Filename  string `json:"filename"`
	Size      int64  `json:"size"`
	MirrorURL string `json:"mirror_url,omitempty"`
	Template  string `json:"template"`
}

// Generate parses the analysis text, lays it out and writes the artifact.
// Nothing is written when the input is rejected.
func (s *Service) Generate(ctx context.Context, cmd GenerateCommand) (GenerateResult, error) {
	if strings.TrimSpace(cmd.AnalysisText) == "" {
		return GenerateResult{}, fmt.Errorf("%w: analysis text is required", domain.ErrInvalidInput)
	}

	name := cmd.Template
	if name == "" {
		name = s.DefaultTemplate
	}
	tmpl, err := domain.LookupTemplate(name)
	if err != nil {
		return GenerateResult{}, err
	}

	brand, err := s.branding(cmd.Branding)
	if err != nil {
		return GenerateResult{}, err
	}

	subject := strings.TrimSpace(cmd.Subject)
	if subject == "" {
		subject = DefaultSubject
	}
	at := cmd.Timestamp
	if at.IsZero() {
		at = s.now()
	}

	doc := document.Assemble(document.Input{
		Template: tmpl,
		Sections: tmpl.Parse(cmd.AnalysisText),
		Subject:  subject,
		Metadata: &domain.Metadata{
			GeneratedAt: at,
			Query:       cmd.Query,
			ReportType:  tmpl.ReportType,
		},
		Branding: brand,
	})

	prefix := s.Prefix
	if prefix == "" {
		prefix = DefaultPrefix
	}

	// rendered once into memory so the mirror upload can reuse the bytes
	var buf bytes.Buffer
	if err := s.Renderer.Render(&buf, doc); err != nil {
		s.metrics().Failed()
		return GenerateResult{}, fmt.Errorf("%w: render: %v", domain.ErrStorage, err)
	}
	filename, err := s.Store.Save(ctx, domain.Filename(prefix, subject, at), func(w io.Writer) error {
		_, err := w.Write(buf.Bytes())
		return err
	})
	if err != nil {
		s.metrics().Failed()
		return GenerateResult{}, err
	}
	s.metrics().Generated()
	s.logf("generated file=%s template=%s size=%d", filename, tmpl.Name, buf.Len())

	res := GenerateResult{Filename: filename, Size: int64(buf.Len()), Template: tmpl.Name}

	if s.Mirror != nil {
		url, err := s.Mirror.Put(ctx, filename, bytes.NewReader(buf.Bytes()), int64(buf.Len()))
		if err != nil {
			s.logf("mirror upload failed file=%s err=%v", filename, err)
		} else {
			res.MirrorURL = url
		}
	}

	if s.History != nil {
		rec := &history.Record{
			ID:        history.RecordID(uuid.New().String()),
			Filename:  filename,
			Subject:   subject,
			Template:  tmpl.Name,
			Query:     cmd.Query,
			Size:      res.Size,
			CreatedAt: s.now(),
		}
		if err := s.History.Save(ctx, rec); err != nil {
			s.logf("history save failed file=%s err=%v", filename, err)
		}
	}

	return res, nil
}

// branding merges request overrides over the configured defaults. A bad
// color rejects the request, an unusable logo is dropped.
func (s *Service) branding(override *domain.Branding) (domain.Branding, error) {
	b := s.Branding
	if override != nil {
		b = b.Merge(*override)
	}
	if err := domain.ValidateColor(b.Color); err != nil {
		return domain.Branding{}, err
	}
	if b.LogoPath != "" {
		if err := domain.ValidateLogo(b.LogoPath); err != nil {
			s.logf("logo skipped path=%s err=%v", b.LogoPath, err)
			b.LogoPath = ""
		}
	}
	return b, nil
}

// List semua report, terbaru duluan
func (s *Service) List(ctx context.Context) ([]domain.Report, error) {
	return s.Store.List(ctx)
}

type CleanupResult struct {
	DeletedCount int      `json:"deleted_count"`
	Deleted      []string `json:"deleted"`
	Failed       []string `json:"failed,omitempty"`
}

// Cleanup removes reports modified more than hours ago. Per-file failures
// are reported, not fatal.
func (s *Service) Cleanup(ctx context.Context, hours float64) (CleanupResult, error) {
	if hours < 0 {
		return CleanupResult{}, fmt.Errorf("%w: hours must not be negative", domain.ErrInvalidInput)
	}
	cutoff := s.now().Add(-time.Duration(hours * float64(time.Hour)))

	res, err := s.Store.Cleanup(ctx, cutoff)
	if err != nil {
		return CleanupResult{}, err
	}

	out := CleanupResult{
		DeletedCount: len(res.Deleted),
		Deleted:      res.Deleted,
	}
	if out.Deleted == nil {
		out.Deleted = []string{}
	}
	for name := range res.Failed {
		out.Failed = append(out.Failed, name)
	}
	sort.Strings(out.Failed)

	if n := len(res.Deleted); n > 0 {
		s.metrics().Deleted(n)
	}
	if s.Mirror != nil {
		for _, name := range res.Deleted {
			if err := s.Mirror.Remove(ctx, name); err != nil {
				s.logf("mirror remove failed file=%s err=%v", name, err)
			}
		}
	}
	s.logf("cleanup hours=%g deleted=%d failed=%d", hours, out.DeletedCount, len(out.Failed))
	return out, nil
}

// CleanupDefault runs Cleanup with the configured default age.
func (s *Service) CleanupDefault(ctx context.Context) (CleanupResult, error) {
	hours := s.DefaultCleanupHours
	if hours <= 0 {
		hours = DefaultCleanupHours
	}
	return s.Cleanup(ctx, hours)
}

// Open returns a reader for one report. The caller closes it.
func (s *Service) Open(ctx context.Context, filename string) (io.ReadCloser, domain.Report, error) {
	return s.Store.Open(ctx, filename)
}

// Delete removes one report and its mirrored copy.
func (s *Service) Delete(ctx context.Context, filename string) error {
	if err := s.Store.Delete(ctx, filename); err != nil {
		return err
	}
	s.metrics().Deleted(1)
	if s.Mirror != nil {
		if err := s.Mirror.Remove(ctx, filename); err != nil {
			s.logf("mirror remove failed file=%s err=%v", filename, err)
		}
	}
	s.logf("deleted file=%s", filename)
	return nil
}

// ListHistory pages through generation records. Empty when no database is
// configured.
func (s *Service) ListHistory(ctx context.Context, page, pageSize int) ([]*history.Record, error) {
	if s.History == nil {
		return []*history.Record{}, nil
	}
	recs, err := s.History.Paginate(ctx, page, pageSize)
	if err != nil {
		return nil, fmt.Errorf("%w: history: %v", domain.ErrStorage, err)
	}
	if recs == nil {
		recs = []*history.Record{}
	}
	return recs, nil
}

// PruneHistory deletes generation records older than the given age.
func (s *Service) PruneHistory(ctx context.Context, olderThan time.Duration) (int64, error) {
	if s.History == nil {
		return 0, nil
	}
	if olderThan < 0 {
		return 0, fmt.Errorf("%w: age must not be negative", domain.ErrInvalidInput)
	}
	n, err := s.History.DeleteBefore(ctx, s.now().Add(-olderThan))
	if err != nil {
		return 0, fmt.Errorf("%w: history: %v", domain.ErrStorage, err)
	}
	return n, nil
}

// RunCleanupLoop runs CleanupDefault every interval until ctx is done.
func (s *Service) RunCleanupLoop(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if _, err := s.CleanupDefault(ctx); err != nil {
				s.logf("scheduled cleanup failed err=%v", err)
			}
		}
	}
}
