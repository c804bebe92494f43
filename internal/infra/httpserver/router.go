package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	appai "github.com/bryanwahyu/procdoc/internal/application/ai"
	appreports "github.com/bryanwahyu/procdoc/internal/application/reports"
	domai "github.com/bryanwahyu/procdoc/internal/domain/ai"
	domain "github.com/bryanwahyu/procdoc/internal/domain/reports"
	"github.com/bryanwahyu/procdoc/internal/infra/ai/prompt"
	"github.com/bryanwahyu/procdoc/internal/middleware"
)

const (
	docxContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	maxBodyBytes    = 4 << 20
)

// Options wires the router. Only Reports is required.
type Options struct {
	Reports     *appreports.Service
	AI          *appai.Service
	Metrics     *middleware.Metrics
	RateLimiter *middleware.RateLimiter
	Health      map[string]middleware.HealthChecker
	APIKeys     map[string]string
	CORSOrigins []string
}

type Router struct {
	reportsSvc *appreports.Service
	aiSvc      *appai.Service
}

func NewRouter(opts Options) http.Handler {
	r := &Router{reportsSvc: opts.Reports, aiSvc: opts.AI}
	mux := chi.NewRouter()

	mux.Use(middleware.RequestID)
	mux.Use(middleware.LoggingMiddleware)
	if opts.Metrics != nil {
		mux.Use(opts.Metrics.Middleware)
	}
	if len(opts.CORSOrigins) > 0 {
		mux.Use(cors.Handler(cors.Options{
			AllowedOrigins:   opts.CORSOrigins,
			AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-API-Key", middleware.RequestIDHeader},
			ExposedHeaders:   []string{"Content-Disposition", middleware.RequestIDHeader},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}
	mux.Use(middleware.APIKeyAuth(opts.APIKeys))
	if opts.RateLimiter != nil {
		mux.Use(opts.RateLimiter.Middleware)
	}

	mux.Get("/health", middleware.LivenessHandler)
	mux.Get("/health/ready", middleware.HealthHandler(opts.Health))
	if opts.Metrics != nil {
		mux.Handle("/metrics", opts.Metrics.Handler())
	}

	mux.Route("/v1", func(rt chi.Router) {
		rt.Post("/reports", r.wrap(r.handleGenerate))
		rt.Get("/reports", r.wrap(r.handleList))
		rt.Post("/reports/cleanup", r.wrap(r.handleCleanup))
		rt.Get("/reports/history", r.wrap(r.handleHistory))
		rt.Get("/reports/{filename}", r.wrap(r.handleDownload))
		rt.Delete("/reports/{filename}", r.wrap(r.handleDelete))
		rt.Get("/templates", r.wrap(r.handleTemplates))
		rt.Post("/analyze", r.wrap(r.handleAnalyze))
		rt.Get("/prompts", r.wrap(r.handlePrompts))
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if err := h(w, req); err != nil {
			code, msg := statusFor(err)
			if code >= http.StatusInternalServerError {
				log.Printf("request failed method=%s path=%s request_id=%s err=%v",
					req.Method, req.URL.Path, middleware.GetRequestID(req.Context()), err)
			}
			writeJSON(w, code, map[string]string{"error": msg})
		}
	}
}

// statusFor maps an error to a status and a client-safe message. Storage
// errors never expose their cause.
func statusFor(err error) (int, string) {
	var maxErr *http.MaxBytesError
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, err.Error()
	case errors.As(err, &maxErr):
		return http.StatusRequestEntityTooLarge, "request body too large"
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "not found"
	case errors.Is(err, domai.ErrQuotaExceeded):
		return http.StatusTooManyRequests, "ai quota exceeded"
	case errors.Is(err, domai.ErrUnavailable):
		return http.StatusServiceUnavailable, "ai generator not configured"
	default:
		return http.StatusInternalServerError, "internal failure"
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	return json.NewEncoder(w).Encode(v)
}

var errEmptyBody = fmt.Errorf("%w: request body is required", domain.ErrInvalidInput)

func decode(w http.ResponseWriter, req *http.Request, v any) error {
	req.Body = http.MaxBytesReader(w, req.Body, maxBodyBytes)
	if err := json.NewDecoder(req.Body).Decode(v); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return err
		}
		if errors.Is(err, io.EOF) {
			return errEmptyBody
		}
		return fmt.Errorf("%w: malformed JSON body", domain.ErrInvalidInput)
	}
	return nil
}

// brandingBody is the per-request override. The logo path is configured
// server-side only.
type brandingBody struct {
	ProjectName string `json:"project_name"`
	CompanyName string `json:"company_name"`
	BrandColor  string `json:"brand_color"`
}

func (b *brandingBody) toDomain() (*domain.Branding, error) {
	if b == nil {
		return nil, nil
	}
	color := strings.TrimSpace(b.BrandColor)
	if err := middleware.ValidateHexColor(color); err != nil {
		return nil, err
	}
	return &domain.Branding{
		ProjectName: middleware.SanitizeString(b.ProjectName),
		CompanyName: middleware.SanitizeString(b.CompanyName),
		Color:       color,
	}, nil
}

func downloadURL(filename string) string {
	return "/v1/reports/" + url.PathEscape(filename)
}

// POST /v1/reports
func (r *Router) handleGenerate(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		AnalysisText string        `json:"analysis_text"`
		Subject      string        `json:"subject"`
		Query        string        `json:"query"`
		Template     string        `json:"template"`
		Timestamp    string        `json:"timestamp"`
		Branding     *brandingBody `json:"branding"`
	}
	if err := decode(w, req, &body); err != nil {
		return err
	}

	var at time.Time
	if body.Timestamp != "" {
		t, err := time.Parse(time.RFC3339, body.Timestamp)
		if err != nil {
			return fmt.Errorf("%w: timestamp must be RFC3339", domain.ErrInvalidInput)
		}
		at = t
	}
	brand, err := body.Branding.toDomain()
	if err != nil {
		return err
	}

	res, err := r.reportsSvc.Generate(req.Context(), appreports.GenerateCommand{
		AnalysisText: body.AnalysisText,
		Subject:      middleware.SanitizeString(body.Subject),
		Query:        middleware.SanitizeString(body.Query),
		Template:     body.Template,
		Timestamp:    at,
		Branding:     brand,
	})
	if err != nil {
		return err
	}

	return writeJSON(w, http.StatusCreated, map[string]any{
		"filename":     res.Filename,
		"download_url": downloadURL(res.Filename),
		"size":         res.Size,
		"template":     res.Template,
		"mirror_url":   res.MirrorURL,
	})
}

// GET /v1/reports
func (r *Router) handleList(w http.ResponseWriter, req *http.Request) error {
	list, err := r.reportsSvc.List(req.Context())
	if err != nil {
		return err
	}
	if list == nil {
		list = []domain.Report{}
	}
	return writeJSON(w, http.StatusOK, map[string]any{
		"reports": list,
		"count":   len(list),
	})
}

// POST /v1/reports/cleanup
// Body: {"hours": 24} (optional)
func (r *Router) handleCleanup(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		Hours *float64 `json:"hours"`
	}
	if err := decode(w, req, &body); err != nil && !errors.Is(err, errEmptyBody) {
		return err
	}

	var (
		res appreports.CleanupResult
		err error
	)
	if body.Hours == nil {
		res, err = r.reportsSvc.CleanupDefault(req.Context())
	} else {
		if verr := middleware.ValidateHours(*body.Hours); verr != nil {
			return verr
		}
		res, err = r.reportsSvc.Cleanup(req.Context(), *body.Hours)
	}
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, res)
}

// GET /v1/reports/history?page=&page_size=
func (r *Router) handleHistory(w http.ResponseWriter, req *http.Request) error {
	page, _ := strconv.Atoi(req.URL.Query().Get("page"))
	size, _ := strconv.Atoi(req.URL.Query().Get("page_size"))
	page = middleware.ValidatePage(page)
	size = middleware.ValidateLimit(size)

	recs, err := r.reportsSvc.ListHistory(req.Context(), page, size)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, map[string]any{
		"page":      page,
		"page_size": size,
		"records":   recs,
	})
}

// contentDisposition names the attachment with an ASCII filename and, for
// non-ASCII names, an RFC 5987 filename* carrying the UTF-8 original.
func contentDisposition(name string) string {
	fallback := strings.Map(func(r rune) rune {
		if r < 0x20 || r >= 0x7f {
			return '_'
		}
		return r
	}, name)
	v := mime.FormatMediaType("attachment", map[string]string{"filename": fallback})
	if v == "" {
		v = "attachment"
	}
	if fallback == name {
		return v
	}
	// FormatMediaType switches to filename*=utf-8''... for non-ASCII values
	ext := mime.FormatMediaType("attachment", map[string]string{"filename": name})
	return v + strings.TrimPrefix(ext, "attachment")
}

// GET /v1/reports/{filename}
func (r *Router) handleDownload(w http.ResponseWriter, req *http.Request) error {
	name := chi.URLParam(req, "filename")
	if err := middleware.ValidateReportFilename(name); err != nil {
		return err
	}
	rc, info, err := r.reportsSvc.Open(req.Context(), name)
	if err != nil {
		return err
	}
	defer rc.Close()

	w.Header().Set("Content-Type", docxContentType)
	w.Header().Set("Content-Disposition", contentDisposition(info.Filename))
	w.Header().Set("Content-Length", strconv.FormatInt(info.Size, 10))
	w.Header().Set("Last-Modified", info.ModifiedAt.UTC().Format(http.TimeFormat))
	if _, err := io.Copy(w, rc); err != nil {
		// headers already sent
		log.Printf("download interrupted file=%s err=%v", name, err)
	}
	return nil
}

// DELETE /v1/reports/{filename}
func (r *Router) handleDelete(w http.ResponseWriter, req *http.Request) error {
	name := chi.URLParam(req, "filename")
	if err := middleware.ValidateReportFilename(name); err != nil {
		return err
	}
	if err := r.reportsSvc.Delete(req.Context(), name); err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, map[string]any{"deleted": name})
}

// GET /v1/templates
func (r *Router) handleTemplates(w http.ResponseWriter, req *http.Request) error {
	type item struct {
		Name       string   `json:"name"`
		Title      string   `json:"title"`
		ReportType string   `json:"report_type"`
		Sections   []string `json:"sections"`
		Default    bool     `json:"default"`
	}
	def := r.reportsSvc.DefaultTemplate
	if def == "" {
		def = domain.DefaultTemplate
	}
	var out []item
	for _, t := range domain.Templates() {
		out = append(out, item{
			Name:       t.Name,
			Title:      t.Title,
			ReportType: t.ReportType,
			Sections:   t.Schema.Labels(),
			Default:    t.Name == def,
		})
	}
	return writeJSON(w, http.StatusOK, map[string]any{"templates": out})
}

// POST /v1/analyze
func (r *Router) handleAnalyze(w http.ResponseWriter, req *http.Request) error {
	if r.aiSvc == nil {
		return domai.ErrUnavailable
	}
	var body struct {
		Query          string        `json:"query"`
		Template       string        `json:"template"`
		PromptTemplate string        `json:"prompt_template"`
		CustomPrompt   string        `json:"custom_prompt"`
		GenerateReport bool          `json:"generate_report"`
		Subject        string        `json:"subject"`
		Branding       *brandingBody `json:"branding"`
	}
	if err := decode(w, req, &body); err != nil {
		return err
	}
	brand, err := body.Branding.toDomain()
	if err != nil {
		return err
	}

	res, err := r.aiSvc.AnalyzeAndGenerate(req.Context(), appai.AnalyzeCommand{
		Query:          middleware.SanitizeString(body.Query),
		Template:       body.Template,
		PromptTemplate: body.PromptTemplate,
		CustomPrompt:   body.CustomPrompt,
		GenerateReport: body.GenerateReport,
		Subject:        middleware.SanitizeString(body.Subject),
		Branding:       brand,
	})
	if err != nil {
		return err
	}

	resp := map[string]any{
		"template": res.Template,
		"analysis": res.Analysis,
	}
	if res.Report != nil {
		resp["filename"] = res.Report.Filename
		resp["download_url"] = downloadURL(res.Report.Filename)
	}
	return writeJSON(w, http.StatusOK, resp)
}

// GET /v1/prompts
func (r *Router) handlePrompts(w http.ResponseWriter, req *http.Request) error {
	type item struct {
		Name   string `json:"name"`
		Prompt string `json:"prompt"`
	}
	var out []item
	for _, name := range prompt.Names() {
		out = append(out, item{Name: name, Prompt: prompt.SystemPrompt(name, "")})
	}
	current := prompt.DefaultName
	if r.aiSvc != nil && r.aiSvc.PromptTemplate != "" {
		current = r.aiSvc.PromptTemplate
	}
	return writeJSON(w, http.StatusOK, map[string]any{
		"templates": out,
		"current":   current,
	})
}
