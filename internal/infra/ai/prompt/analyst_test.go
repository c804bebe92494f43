package prompt

import (
	"strings"
	"testing"

	"github.com/bryanwahyu/procdoc/internal/domain/reports"
)

func TestNamesSortedAndKnown(t *testing.T) {
	names := Names()
	if len(names) != 6 {
		t.Fatalf("names = %v", names)
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] > names[i] {
			t.Fatalf("not sorted: %v", names)
		}
	}
	for _, n := range names {
		if !Exists(n) {
			t.Errorf("%s does not exist", n)
		}
	}
	if Exists("pirate") {
		t.Error("unknown name reported as existing")
	}
}

func TestSystemPromptFallbacks(t *testing.T) {
	if got := SystemPrompt("technical", "  "); !strings.Contains(got, "technical documentation expert") {
		t.Errorf("technical = %q", got)
	}
	if got := SystemPrompt("nope", ""); got != systemPrompts[DefaultName] {
		t.Errorf("unknown name = %q", got)
	}
	if got := SystemPrompt("technical", "custom"); got != "custom" {
		t.Errorf("custom = %q", got)
	}
}

func TestUserPromptListsSectionsInOrder(t *testing.T) {
	tmpl, err := reports.LookupTemplate(reports.TemplateSOXAudit)
	if err != nil {
		t.Fatal(err)
	}
	got := UserPrompt("  how are journal entries approved?\n", tmpl)

	last := -1
	for i, label := range tmpl.Schema.Labels() {
		idx := strings.Index(got, string(rune('1'+i))+". "+label)
		if idx < 0 || idx < last {
			t.Fatalf("section %d %q missing or out of order in %q", i+1, label, got)
		}
		last = idx
	}
	if !strings.HasSuffix(got, "=== QUESTION ===\nhow are journal entries approved?\n") {
		t.Errorf("question block = %q", got)
	}
}
