package reports

import (
	"fmt"
	"sort"
	"strings"
)

// Template names.
const (
	TemplateSOXAudit       = "sox_audit"
	TemplateMLOpsWorkflow  = "mlops_workflow"
	TemplateDevOpsPipeline = "devops_pipeline"
	TemplateGeneric        = "generic"

	DefaultTemplate = TemplateSOXAudit
)

// Template couples a section schema with the titles printed around it.
type Template struct {
	Name       string `json:"name"`
	Title      string `json:"title"`
	ReportType string `json:"report_type"`
	Schema     Schema `json:"sections"`

	parser *Parser
}

// Parse splits text into this template's sections.
func (t *Template) Parse(text string) Sections {
	return t.parser.Parse(text)
}

func newTemplate(name, title, reportType string, schema Schema) *Template {
	return &Template{
		Name:       name,
		Title:      title,
		ReportType: reportType,
		Schema:     schema,
		parser:     NewParser(schema),
	}
}

var templates = map[string]*Template{
	TemplateSOXAudit: newTemplate(TemplateSOXAudit,
		"Process Analysis Report", "Process Analysis Documentation",
		Schema{
			{Label: "Control Objective"},
			{Label: "Risks Addressed"},
			{Label: "Testing Procedures"},
			{Label: "Test Results and Findings", Aliases: []string{"Results"}},
			{Label: "Conclusion and Recommendation", Aliases: []string{"Conclusion"}},
		}),
	TemplateMLOpsWorkflow: newTemplate(TemplateMLOpsWorkflow,
		"Model Workflow Report", "MLOps Workflow Documentation",
		Schema{
			{Label: "Model Overview"},
			{Label: "Data Pipeline"},
			{Label: "Training and Validation", Aliases: []string{"Training"}},
			{Label: "Evaluation Results", Aliases: []string{"Results"}},
			{Label: "Deployment Recommendation", Aliases: []string{"Recommendation"}},
		}),
	TemplateDevOpsPipeline: newTemplate(TemplateDevOpsPipeline,
		"Pipeline Analysis Report", "DevOps Pipeline Documentation",
		Schema{
			{Label: "Pipeline Overview"},
			{Label: "Build Steps"},
			{Label: "Test Stages"},
			{Label: "Deployment Results", Aliases: []string{"Results"}},
			{Label: "Recommendations"},
		}),
	TemplateGeneric: newTemplate(TemplateGeneric,
		"Analysis Report", "General Analysis Documentation",
		Schema{
			{Label: "Overview"},
			{Label: "Key Points"},
			{Label: "Details"},
			{Label: "Findings"},
			{Label: "Conclusion"},
		}),
}

// LookupTemplate returns the named template; an empty name selects the
// default one.
func LookupTemplate(name string) (*Template, error) {
	if name == "" {
		name = DefaultTemplate
	}
	t, ok := templates[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown template %q", ErrInvalidInput, name)
	}
	return t, nil
}

// Templates returns every template sorted by name.
func Templates() []*Template {
	out := make([]*Template, 0, len(templates))
	for _, t := range templates {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Parse splits text using the default template's schema.
func Parse(text string) Sections {
	return templates[DefaultTemplate].Parse(text)
}

// keyword lists are checked in order; the first hit wins
var detectOrder = []struct {
	template string
	keywords []string
}{
	{TemplateSOXAudit, []string{"sox control", "control analysis", "control objective",
		"testing procedure", "sox", "control test", "audit", "compliance", "internal control"}},
	{TemplateMLOpsWorkflow, []string{"model", "mlops", "machine learning", "training",
		"inference", "dataset", "ml pipeline", "model deployment", "feature engineering",
		"hyperparameter", "ml workflow"}},
	{TemplateDevOpsPipeline, []string{"pipeline", "ci/cd", "deployment", "build", "release",
		"devops", "kubernetes", "docker", "container", "jenkins", "gitlab ci", "github actions"}},
}

// DetectTemplate picks a template from keywords in a free-text query,
// falling back to the generic one.
func DetectTemplate(query string) string {
	q := strings.ToLower(query)
	for _, d := range detectOrder {
		for _, kw := range d.keywords {
			if strings.Contains(q, kw) {
				return d.template
			}
		}
	}
	return TemplateGeneric
}
