package document

import (
	"io"
	"time"
)

// Align is the horizontal alignment of a block.
type Align int

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

// Block is one body element of a document.
type Block interface {
	block()
}

// Heading is a styled heading. Level 0 is the document title.
type Heading struct {
	Level int
	Text  string
	Align Align
	// Color is "RRGGBB"; empty keeps the style color.
	Color string
	// Size in points; zero keeps the style size.
	Size int
}

// ParagraphStyle selects the paragraph style.
type ParagraphStyle int

const (
	StyleNormal ParagraphStyle = iota
	// StylePlaceholder marks a visually distinct "no content" paragraph.
	StylePlaceholder
)

// Paragraph is a run of text; embedded newlines become line breaks.
type Paragraph struct {
	Text  string
	Style ParagraphStyle
	Align Align
}

// ListItem is a bulleted or numbered item. Items sharing a List id form one
// list, and numbering restarts for every ordered list.
type ListItem struct {
	Text    string
	Ordered bool
	List    int
}

// Table is a key-value table; every row has the same number of cells.
type Table struct {
	Rows [][]string
}

// Separator is a horizontal rule.
type Separator struct{}

// Spacer is an empty paragraph.
type Spacer struct{}

func (Heading) block()   {}
func (Paragraph) block() {}
func (ListItem) block()  {}
func (Table) block()     {}
func (Separator) block() {}
func (Spacer) block()    {}

// Field is a value computed by the document reader.
type Field int

const (
	FieldNone Field = iota
	FieldPageNumber
)

// Inline is text or a field inside a header or footer line.
type Inline struct {
	Text  string
	Field Field
}

// Header is the running header repeated on every page.
type Header struct {
	Text     string
	Align    Align
	Color    string
	Size     int
	LogoPath string
}

// Footer is the running footer repeated on every page.
type Footer struct {
	Inlines []Inline
	Align   Align
	Color   string
	Size    int
}

// Document is the renderer-independent model of a report.
type Document struct {
	Title   string
	Created time.Time
	// Accent is the brand color as "RRGGBB".
	Accent string
	Header Header
	Footer Footer
	Body   []Block
}

// Renderer serialises a Document into a concrete file format.
type Renderer interface {
	Render(w io.Writer, doc *Document) error
}
