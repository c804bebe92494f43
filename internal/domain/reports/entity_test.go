package reports

import (
	"strings"
	"testing"
	"time"
)

func TestSlug(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"Q3 Audit / Review", "Q3_Audit_Review"},
		{"  spaced   out  ", "spaced_out"},
		{"keep-dash_and_underscore", "keep-dash_and_underscore"},
		{"../../etc/passwd", "etcpasswd"},
		{"", "Untitled"},
		{"!!!", "Untitled"},
		{"Zahlungsprüfung", "Zahlungsprüfung"},
	}
	for _, c := range cases {
		if got := Slug(c.in); got != c.want {
			t.Errorf("Slug(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestSlugIsBounded(t *testing.T) {
	got := Slug(strings.Repeat("a", 500))
	if n := len([]rune(got)); n != maxSlugRunes {
		t.Fatalf("slug length = %d", n)
	}
}

func TestFilename(t *testing.T) {
	at := time.Date(2024, 7, 1, 9, 5, 3, 0, time.UTC)
	got := Filename("Process_Analysis", "Q3 Audit / Review", at)
	want := "Process_Analysis_Q3_Audit_Review_20240701_090503.docx"
	if got != want {
		t.Fatalf("Filename = %q, want %q", got, want)
	}
	if strings.ContainsAny(got, `/\`) {
		t.Fatalf("unsafe characters in %q", got)
	}
	if !ValidFilename(got) {
		t.Fatalf("generated name %q is not valid", got)
	}
}

func TestValidFilename(t *testing.T) {
	cases := map[string]bool{
		"report.docx":         true,
		"Process_A_1.docx":    true,
		"":                    false,
		".docx":               false,
		".hidden.docx":        false,
		"../x.docx":           false,
		"a/b.docx":            false,
		`a\b.docx`:            false,
		"a..b.docx":           false,
		"report.pdf":          false,
		"report.docx.tmp":     false,
		"nul\x00byte.docx":    false,
	}
	for name, want := range cases {
		if got := ValidFilename(name); got != want {
			t.Errorf("ValidFilename(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestLookupTemplate(t *testing.T) {
	tmpl, err := LookupTemplate("")
	if err != nil || tmpl.Name != DefaultTemplate {
		t.Fatalf("default lookup = %v, %v", tmpl, err)
	}
	if _, err := LookupTemplate("nope"); err == nil {
		t.Fatal("expected error for unknown template")
	}
	for _, tm := range Templates() {
		if len(tm.Schema.Labels()) != SectionCount {
			t.Errorf("%s has %d sections", tm.Name, len(tm.Schema.Labels()))
		}
	}
}

func TestDetectTemplate(t *testing.T) {
	cases := map[string]string{
		"Analyze the SOX control for vendor payments": TemplateSOXAudit,
		"document our model training workflow":        TemplateMLOpsWorkflow,
		"explain the CI/CD pipeline":                  TemplateDevOpsPipeline,
		"summarize the onboarding process":            TemplateGeneric,
	}
	for q, want := range cases {
		if got := DetectTemplate(q); got != want {
			t.Errorf("DetectTemplate(%q) = %q, want %q", q, got, want)
		}
	}
}
