package reports

import (
	"strings"
	"time"
	"unicode"
)

// SectionCount is fixed: every schema has exactly five sections.
const SectionCount = 5

// Extension of every report artifact written by the service.
const Extension = ".docx"

// Section is one heading of a schema. Label is what the document shows,
// Aliases are extra marker spellings accepted by the parser.
type Section struct {
	Label   string   `json:"label"`
	Aliases []string `json:"aliases,omitempty"`
}

// Schema is the ordered list of sections a report is rendered with.
type Schema [SectionCount]Section

// Labels returns the section labels in schema order.
func (s Schema) Labels() []string {
	out := make([]string, 0, SectionCount)
	for _, sec := range s {
		out = append(out, sec.Label)
	}
	return out
}

// Sections holds the extracted content per schema position. The array type
// keeps every section present even when its content is empty.
type Sections [SectionCount]string

// Empty reports whether no section has any content.
func (s Sections) Empty() bool {
	for _, c := range s {
		if c != "" {
			return false
		}
	}
	return true
}

// Metadata is the optional information block printed under the title.
type Metadata struct {
	GeneratedAt time.Time
	Query       string
	ReportType  string
}

// Report describes an artifact in the output directory.
type Report struct {
	Filename   string    `json:"filename"`
	Size       int64     `json:"size"`
	CreatedAt  time.Time `json:"created"`
	ModifiedAt time.Time `json:"modified"`
}

const (
	timestampLayout = "20060102_150405"
	maxSlugRunes    = 80
	emptySlug       = "Untitled"
)

// Filename builds "<prefix>_<slug>_<YYYYMMDD_HHMMSS>.docx" for a subject.
func Filename(prefix, subject string, at time.Time) string {
	return prefix + "_" + Slug(subject) + "_" + at.Format(timestampLayout) + Extension
}

// Slug keeps letters, digits, '_' and '-', drops everything else and joins
// the remaining words with a single underscore.
func Slug(subject string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '_', r == '-':
			return r
		case unicode.IsSpace(r):
			return ' '
		}
		return -1
	}, subject)

	slug := strings.Join(strings.Fields(cleaned), "_")
	if r := []rune(slug); len(r) > maxSlugRunes {
		slug = strings.TrimRight(string(r[:maxSlugRunes]), "_")
	}
	if slug == "" {
		return emptySlug
	}
	return slug
}

// ValidFilename reports whether name is a bare report filename that can be
// resolved inside the output directory.
func ValidFilename(name string) bool {
	if name == "" || strings.HasPrefix(name, ".") {
		return false
	}
	if strings.ContainsAny(name, `/\`+"\x00") || strings.Contains(name, "..") {
		return false
	}
	return strings.HasSuffix(name, Extension) && len(name) > len(Extension)
}
