package reports

import (
	"fmt"
	"regexp"
	"strings"
)

// Parser locates the five numbered section markers of a schema in free text.
//
// Markers are searched strictly in ascending order, each one starting after
// the previous marker that was found. A section's content runs from the end of
// its marker to the start of the next marker found (or the end of the text).
// Sections whose marker is missing stay empty. If no section ends up with any
// content, the whole input is assigned to the first section.
type Parser struct {
	markers [SectionCount]*regexp.Regexp
}

// NewParser compiles the marker grammar for schema.
func NewParser(schema Schema) *Parser {
	p := &Parser{}
	for i, sec := range schema {
		p.markers[i] = regexp.MustCompile(markerPattern(i+1, sec))
	}
	return p
}

// markerPattern matches "<n>." followed by one of the section's labels and
// an optional run of colons/whitespace, case-insensitively.
func markerPattern(n int, sec Section) string {
	names := append([]string{sec.Label}, sec.Aliases...)
	alts := make([]string, 0, len(names))
	for _, name := range names {
		words := strings.Fields(name)
		for i, w := range words {
			words[i] = regexp.QuoteMeta(w)
		}
		alts = append(alts, strings.Join(words, `\s+`))
	}
	return fmt.Sprintf(`(?i)\b%d\.\s*(?:%s)[:\s]*`, n, strings.Join(alts, "|"))
}

type markerSpan struct {
	index      int
	start, end int
}

// Parse extracts the sections of text. It never fails.
func (p *Parser) Parse(text string) Sections {
	var out Sections

	found := make([]markerSpan, 0, SectionCount)
	cursor := 0
	for i, re := range p.markers {
		loc := re.FindStringIndex(text[cursor:])
		if loc == nil {
			continue
		}
		span := markerSpan{index: i, start: cursor + loc[0], end: cursor + loc[1]}
		found = append(found, span)
		cursor = span.end
	}

	for k, span := range found {
		stop := len(text)
		if k+1 < len(found) {
			stop = found[k+1].start
		}
		out[span.index] = strings.TrimSpace(text[span.end:stop])
	}

	if out.Empty() && strings.TrimSpace(text) != "" {
		out[0] = text
	}
	return out
}
