package ai

import (
	"context"
	"fmt"
	"strings"

	reportsapp "github.com/bryanwahyu/procdoc/internal/application/reports"
	"github.com/bryanwahyu/procdoc/internal/domain/ai"
	"github.com/bryanwahyu/procdoc/internal/domain/reports"
	"github.com/bryanwahyu/procdoc/internal/infra/ai/prompt"
)

// Service turns a free-text question into structured analysis text and,
// optionally, a report. Client may be nil when no generator is configured.
type Service struct {
	Client  ai.Client
	Reports *reportsapp.Service

	// configured defaults; a request may override both
	PromptTemplate string
	CustomPrompt   string
}

func NewService(client ai.Client, reports *reportsapp.Service, promptTemplate, customPrompt string) *Service {
	return &Service{Client: client, Reports: reports, PromptTemplate: promptTemplate, CustomPrompt: customPrompt}
}

type AnalyzeCommand struct {
	Query          string
	Template       string // empty: detected from the query
	PromptTemplate string
	CustomPrompt   string
	GenerateReport bool
	Subject        string
	Branding       *reports.Branding
}

type AnalyzeResult struct {
	Template string                     `json:"template"`
	Analysis string                     `json:"analysis"`
	Report   *reportsapp.GenerateResult `json:"report,omitempty"`
}

// Analyze asks the generator for a five-section analysis of the query.
func (s *Service) Analyze(ctx context.Context, cmd AnalyzeCommand) (AnalyzeResult, error) {
	if s.Client == nil {
		return AnalyzeResult{}, ai.ErrUnavailable
	}
	query := strings.TrimSpace(cmd.Query)
	if query == "" {
		return AnalyzeResult{}, fmt.Errorf("%w: query is required", reports.ErrInvalidInput)
	}

	name := cmd.Template
	if name == "" {
		name = reports.DetectTemplate(query)
	}
	tmpl, err := reports.LookupTemplate(name)
	if err != nil {
		return AnalyzeResult{}, err
	}

	promptName := cmd.PromptTemplate
	if promptName == "" {
		promptName = s.PromptTemplate
	} else if !prompt.Exists(promptName) {
		return AnalyzeResult{}, fmt.Errorf("%w: unknown prompt template %q", reports.ErrInvalidInput, promptName)
	}
	custom := cmd.CustomPrompt
	if custom == "" {
		custom = s.CustomPrompt
	}

	text, err := s.Client.Generate(ctx, ai.Prompt{
		System: prompt.SystemPrompt(promptName, custom),
		User:   prompt.UserPrompt(query, tmpl),
	})
	if err != nil {
		return AnalyzeResult{}, err
	}
	return AnalyzeResult{Template: tmpl.Name, Analysis: text}, nil
}

// AnalyzeAndGenerate runs Analyze and, when asked, feeds the answer straight
// into report generation.
func (s *Service) AnalyzeAndGenerate(ctx context.Context, cmd AnalyzeCommand) (AnalyzeResult, error) {
	res, err := s.Analyze(ctx, cmd)
	if err != nil || !cmd.GenerateReport {
		return res, err
	}
	if s.Reports == nil {
		return res, fmt.Errorf("%w: report generation is not configured", ai.ErrUnavailable)
	}
	subject := cmd.Subject
	if subject == "" {
		subject = cmd.Query
	}
	gen, err := s.Reports.Generate(ctx, reportsapp.GenerateCommand{
		AnalysisText: res.Analysis,
		Subject:      subject,
		Query:        cmd.Query,
		Template:     res.Template,
		Branding:     cmd.Branding,
	})
	if err != nil {
		return res, err
	}
	res.Report = &gen
	return res, nil
}
