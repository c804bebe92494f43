package prompt

import (
	"fmt"
	"sort"
	"strings"

	"github.com/bryanwahyu/procdoc/internal/domain/reports"
)

const DefaultName = "default"

// System prompt templates selectable per request or via config.
var systemPrompts = map[string]string{
	"default": "You are a helpful AI assistant with access to reference documents " +
		"and repository information. Provide accurate, concise answers based on the " +
		"provided context. If the context doesn't contain relevant information, say so clearly.",
	"technical": "You are a senior technical documentation expert and software architect. " +
		"Analyze code, documentation, and technical processes with deep expertise. " +
		"Provide detailed technical insights, best practices, and architectural recommendations. " +
		"Use precise technical terminology. If information is missing, clearly state what " +
		"additional context would be helpful.",
	"auditor": "You are an experienced compliance auditor and risk assessment expert. " +
		"Focus on control effectiveness, risk mitigation, and regulatory compliance. " +
		"Identify gaps and recommend remediation actions. Structure responses with clear " +
		"findings, evidence, and actionable recommendations.",
	"developer": "You are an expert software developer and DevOps engineer. " +
		"Provide practical solutions, debugging assistance, and best practices. " +
		"Focus on code quality, performance, security, and maintainability.",
	"analyst": "You are a business analyst and process improvement consultant. " +
		"Analyze workflows, identify inefficiencies, and recommend optimizations. " +
		"Provide structured analysis with clear problem statements, root causes, " +
		"and actionable solutions.",
	"educator": "You are an experienced technical educator and mentor. " +
		"Explain concepts clearly and progressively, adapting to different knowledge levels. " +
		"Use examples and step-by-step breakdowns.",
}

// Names lists the available system prompt templates.
func Names() []string {
	out := make([]string, 0, len(systemPrompts))
	for k := range systemPrompts {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Exists reports whether name is a known template.
func Exists(name string) bool {
	_, ok := systemPrompts[name]
	return ok
}

// SystemPrompt resolves the system prompt. A custom prompt wins; an unknown
// name falls back to the default template.
func SystemPrompt(name, custom string) string {
	if strings.TrimSpace(custom) != "" {
		return custom
	}
	if p, ok := systemPrompts[name]; ok {
		return p
	}
	return systemPrompts[DefaultName]
}

// UserPrompt asks for an answer laid out in the template's five numbered
// sections, so the response parses without falling back.
func UserPrompt(query string, tmpl *reports.Template) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Structure your response with these %d sections, using the numbered headings exactly as shown:\n\n", reports.SectionCount)
	for i, label := range tmpl.Schema.Labels() {
		fmt.Fprintf(&b, "%d. %s\n", i+1, label)
	}
	b.WriteString("\nUse bullet points (\"- \") for lists. Do not use markdown headings or code fences.\n")
	fmt.Fprintf(&b, "\n=== QUESTION ===\n%s\n", strings.TrimSpace(query))
	return b.String()
}
