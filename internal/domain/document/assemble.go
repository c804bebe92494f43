package document

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/bryanwahyu/procdoc/internal/domain/reports"
)

// PlaceholderText is rendered for sections without content.
const PlaceholderText = "[No content provided for this section]"

const (
	headerLabel    = "Process Documentation"
	confidential   = " | Confidential"
	metadataLayout = "2006-01-02 15:04:05"
	titleSize      = 18
	sectionSize    = 14
	headerSize     = 10
	footerSize     = 9
	footerColor    = "808080"
	notAvailable   = "N/A"
)

var numberedLine = regexp.MustCompile(`^\d+\.\s*`)

// Input is everything needed to lay out one report.
type Input struct {
	Template *reports.Template
	Sections reports.Sections
	Subject  string
	Metadata *reports.Metadata
	Branding reports.Branding
}

// Assemble maps parsed sections onto the fixed report layout: branded
// header, title and subject, optional metadata table, separator, the five
// numbered sections and a page-numbered footer.
func Assemble(in Input) *Document {
	accent := in.Branding.Hex()
	tmpl := in.Template

	created := time.Now()
	if in.Metadata != nil && !in.Metadata.GeneratedAt.IsZero() {
		created = in.Metadata.GeneratedAt
	}

	doc := &Document{
		Title:   tmpl.Title + ": " + in.Subject,
		Created: created,
		Accent:  accent,
		Header: Header{
			Text:     headerText(in.Branding),
			Align:    AlignRight,
			Color:    accent,
			Size:     headerSize,
			LogoPath: in.Branding.LogoPath,
		},
		Footer: Footer{
			Inlines: []Inline{
				{Text: "Page "},
				{Field: FieldPageNumber},
				{Text: confidential},
			},
			Align: AlignCenter,
			Color: footerColor,
			Size:  footerSize,
		},
	}

	body := []Block{
		Heading{Level: 0, Text: tmpl.Title, Align: AlignCenter, Color: accent, Size: titleSize},
		Heading{Level: 2, Text: in.Subject, Align: AlignCenter},
		Spacer{},
	}

	if m := in.Metadata; m != nil {
		body = append(body, metadataTable(m, tmpl), Spacer{})
	}
	body = append(body, Separator{}, Spacer{})

	list := 0
	for i, sec := range tmpl.Schema {
		body = append(body, Heading{
			Level: 1,
			Text:  fmt.Sprintf("%d. %s", i+1, sec.Label),
			Color: accent,
			Size:  sectionSize,
		})
		var blocks []Block
		blocks, list = contentBlocks(in.Sections[i], list)
		body = append(body, blocks...)
		body = append(body, Spacer{})
	}

	doc.Body = body
	return doc
}

func headerText(b reports.Branding) string {
	parts := make([]string, 0, 3)
	if b.CompanyName != "" {
		parts = append(parts, b.CompanyName)
	}
	if b.ProjectName != "" {
		parts = append(parts, b.ProjectName)
	}
	parts = append(parts, headerLabel)
	return strings.Join(parts, " | ")
}

func metadataTable(m *reports.Metadata, tmpl *reports.Template) Table {
	generated := m.GeneratedAt
	if generated.IsZero() {
		generated = time.Now()
	}
	query := strings.TrimSpace(m.Query)
	if query == "" {
		query = notAvailable
	}
	reportType := m.ReportType
	if reportType == "" {
		reportType = tmpl.ReportType
	}
	return Table{Rows: [][]string{
		{"Generated Date:", generated.Format(metadataLayout)},
		{"Analysis Query:", query},
		{"Report Type:", reportType},
	}}
}

// contentBlocks renders one section body. list is the last list id handed
// out; the updated value is returned.
func contentBlocks(content string, list int) ([]Block, int) {
	content = strings.TrimSpace(content)
	if content == "" {
		return []Block{Paragraph{Text: PlaceholderText, Style: StylePlaceholder}}, list
	}

	lines := strings.Split(content, "\n")
	if !hasListMarkers(lines) {
		return []Block{Paragraph{Text: content}}, list
	}

	var (
		out         []Block
		inList      bool
		lastOrdered bool
	)
	for _, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		text, ordered, ok := listItem(line)
		if !ok {
			out = append(out, Paragraph{Text: line})
			inList = false
			continue
		}
		if !inList || ordered != lastOrdered {
			list++
		}
		out = append(out, ListItem{Text: text, Ordered: ordered, List: list})
		inList, lastOrdered = true, ordered
	}
	return out, list
}

func hasListMarkers(lines []string) bool {
	for _, l := range lines {
		if _, _, ok := listItem(strings.TrimSpace(l)); ok {
			return true
		}
	}
	return false
}

func listItem(line string) (text string, ordered, ok bool) {
	switch {
	case strings.HasPrefix(line, "-"):
		return strings.TrimSpace(line[1:]), false, true
	case strings.HasPrefix(line, "•"):
		return strings.TrimSpace(strings.TrimPrefix(line, "•")), false, true
	case numberedLine.MatchString(line):
		return numberedLine.ReplaceAllString(line, ""), true, true
	}
	return "", false, false
}
