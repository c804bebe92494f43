// Package docx renders the report document model as an Office Open XML
// word-processing package. The body is built with godocx; the running
// header and footer are added to the package afterwards.
package docx

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/gomutex/godocx"
	gdocx "github.com/gomutex/godocx/docx"
	"github.com/gomutex/godocx/wml/stypes"

	"github.com/bryanwahyu/procdoc/internal/domain/document"
)

const (
	defaultAccent = "4A90E2"
	separatorRule = 80

	emuPerInch = 914400
	logoHeight = emuPerInch / 2
)

// Style ids from the godocx base template.
const (
	styleListBullet  = "ListBullet"
	styleListNumber  = "ListNumber"
	stylePlaceholder = "IntenseQuote"
	styleTable       = "LightList-Accent1"
)

// Writer implements document.Renderer.
type Writer struct{}

func NewWriter() *Writer { return &Writer{} }

type logo struct {
	target string // relative to word/
	ext    string
	data   []byte
	cx, cy int64
}

// Render writes doc as a .docx package to out.
func (w *Writer) Render(out io.Writer, doc *document.Document) error {
	rd, err := godocx.NewDocument()
	if err != nil {
		return fmt.Errorf("new document: %w", err)
	}
	accent := doc.Accent
	if accent == "" {
		accent = defaultAccent
	}
	if err := renderBody(rd, doc.Body, accent); err != nil {
		return err
	}

	var body bytes.Buffer
	if err := rd.Write(&body); err != nil {
		return fmt.Errorf("write document: %w", err)
	}
	return addHeaderFooter(out, body.Bytes(), doc, loadLogo(doc.Header.LogoPath))
}

func renderBody(rd *gdocx.RootDoc, blocks []document.Block, accent string) error {
	for _, blk := range blocks {
		switch v := blk.(type) {
		case document.Heading:
			p, err := rd.AddHeading("", uint(v.Level))
			if err != nil {
				return fmt.Errorf("heading %q: %w", v.Text, err)
			}
			align(p, v.Align)
			r := p.AddText(v.Text)
			if v.Color != "" {
				r.Color(v.Color)
			}
		case document.Paragraph:
			// one paragraph per line; godocx runs carry no line breaks
			for _, line := range strings.Split(v.Text, "\n") {
				line = strings.TrimRight(line, "\r")
				if v.Style != document.StylePlaceholder {
					align(rd.AddParagraph(line), v.Align)
					continue
				}
				p := rd.AddParagraph("")
				p.Style(stylePlaceholder)
				align(p, v.Align)
				r := p.AddText(line)
				r.Italic(true)
				r.Color(accent)
			}
		case document.ListItem:
			p := rd.AddParagraph(v.Text)
			if v.Ordered {
				p.Style(styleListNumber)
			} else {
				p.Style(styleListBullet)
			}
		case document.Table:
			if len(v.Rows) == 0 {
				continue
			}
			tbl := rd.AddTable()
			tbl.Style(styleTable)
			for _, row := range v.Rows {
				tr := tbl.AddRow()
				for _, cell := range row {
					tr.AddCell().AddParagraph(cell)
				}
			}
		case document.Separator:
			rd.AddParagraph(strings.Repeat("_", separatorRule))
		case document.Spacer:
			rd.AddParagraph("")
		}
	}
	return nil
}

func align(p *gdocx.Paragraph, a document.Align) {
	switch a {
	case document.AlignCenter:
		p.Justification(stypes.JustificationCenter)
	case document.AlignRight:
		p.Justification(stypes.JustificationRight)
	}
}

var sectionRefs = regexp.MustCompile(`<w:(header|footer)Reference[^>]*/>`)

// addHeaderFooter copies the godocx package to out, adding the header and
// footer parts, their relationships and content types, and pointing the
// section properties at them.
func addHeaderFooter(out io.Writer, pkg []byte, doc *document.Document, lg *logo) error {
	zr, err := zip.NewReader(bytes.NewReader(pkg), int64(len(pkg)))
	if err != nil {
		return fmt.Errorf("read package: %w", err)
	}

	parts := map[string][]byte{}
	var order []string
	for _, zf := range zr.File {
		rc, err := zf.Open()
		if err != nil {
			return fmt.Errorf("open %s: %w", zf.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return fmt.Errorf("read %s: %w", zf.Name, err)
		}
		parts[zf.Name] = data
		order = append(order, zf.Name)
	}

	for _, name := range []string{partContentTypes, partDocument, partDocumentRels} {
		if _, ok := parts[name]; !ok {
			return fmt.Errorf("package has no %s", name)
		}
	}

	docXML, err := withSectionRefs(string(parts[partDocument]))
	if err != nil {
		return err
	}
	parts[partDocument] = []byte(docXML)
	parts[partDocumentRels] = []byte(insertBefore(string(parts[partDocumentRels]), "</Relationships>", documentRelsExtra))
	parts[partContentTypes] = []byte(insertBefore(string(parts[partContentTypes]), "</Types>", contentTypesExtra(string(parts[partContentTypes]), lg)))

	added := []string{partHeader, partFooter}
	if core, ok := parts[partCore]; ok {
		parts[partCore] = []byte(withCoreProps(string(core), doc.Title, doc.Created))
	}

	parts[partHeader] = []byte(renderHeader(doc.Header, lg))
	parts[partFooter] = []byte(renderFooter(doc.Footer))
	if lg != nil {
		parts[partHeaderRels] = []byte(fmt.Sprintf(headerRelsFormat, lg.target))
		parts["word/"+lg.target] = lg.data
		added = append(added, partHeaderRels, "word/"+lg.target)
	}

	// content types first, the way Word writes packages
	names := []string{partContentTypes}
	for _, n := range append(order, added...) {
		if n != partContentTypes {
			names = append(names, n)
		}
	}

	zw := zip.NewWriter(out)
	for _, name := range names {
		fw, err := zw.Create(name)
		if err != nil {
			_ = zw.Close()
			return fmt.Errorf("create %s: %w", name, err)
		}
		if _, err := fw.Write(parts[name]); err != nil {
			_ = zw.Close()
			return fmt.Errorf("write %s: %w", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("close package: %w", err)
	}
	return nil
}

// withSectionRefs replaces any header/footer references of the final
// section with ours.
func withSectionRefs(s string) (string, error) {
	s = sectionRefs.ReplaceAllString(s, "")
	if !strings.Contains(s, `xmlns:r=`) {
		s = strings.Replace(s, "<w:document ", `<w:document xmlns:r="`+nsR+`" `, 1)
	}

	if i := strings.LastIndex(s, "<w:sectPr"); i >= 0 {
		end := strings.IndexByte(s[i:], '>')
		if end < 0 {
			return "", errors.New("malformed section properties")
		}
		end += i
		if s[end-1] == '/' {
			return s[:i] + s[i:end-1] + ">" + sectionRefsXML + "</w:sectPr>" + s[end+1:], nil
		}
		return s[:end+1] + sectionRefsXML + s[end+1:], nil
	}

	i := strings.LastIndex(s, "</w:body>")
	if i < 0 {
		return "", errors.New("document has no body")
	}
	return s[:i] + "<w:sectPr>" + sectionRefsXML + "</w:sectPr>" + s[i:], nil
}

var (
	coreTitle   = regexp.MustCompile(`<dc:title\s*/>|<dc:title>[^<]*</dc:title>`)
	coreCreated = regexp.MustCompile(`<dcterms:created[^>]*/>|<dcterms:created[^>]*>[^<]*</dcterms:created>`)
)

// withCoreProps sets the title and creation time in the core properties
// part, replacing whatever the template carried.
func withCoreProps(core, title string, created time.Time) string {
	titleXML := `<dc:title>` + escape(title) + `</dc:title>`
	if coreTitle.MatchString(core) {
		core = coreTitle.ReplaceAllLiteralString(core, titleXML)
	} else {
		core = insertBefore(core, "</cp:coreProperties>", titleXML)
	}
	if created.IsZero() {
		return core
	}
	createdXML := `<dcterms:created xsi:type="dcterms:W3CDTF">` + created.UTC().Format(time.RFC3339) + `</dcterms:created>`
	if coreCreated.MatchString(core) {
		return coreCreated.ReplaceAllLiteralString(core, createdXML)
	}
	if !strings.Contains(core, `xmlns:dcterms=`) || !strings.Contains(core, `xmlns:xsi=`) {
		return core
	}
	return insertBefore(core, "</cp:coreProperties>", createdXML)
}

func insertBefore(s, closing, extra string) string {
	i := strings.LastIndex(s, closing)
	if i < 0 {
		return s
	}
	return s[:i] + extra + s[i:]
}

func contentTypesExtra(existing string, lg *logo) string {
	extra := headerFooterOverrides
	if lg != nil && !strings.Contains(strings.ToLower(existing), `extension="`+lg.ext+`"`) {
		extra = fmt.Sprintf(`<Default Extension="%s" ContentType="%s"/>`, lg.ext, mimeFor(lg.ext)) + extra
	}
	return extra
}

func renderHeader(h document.Header, lg *logo) string {
	var b strings.Builder
	b.WriteString(xmlHeader)
	b.WriteString(`<w:hdr xmlns:w="` + nsW + `" xmlns:r="` + nsR + `" xmlns:wp="` + nsWP +
		`" xmlns:a="` + nsA + `" xmlns:pic="` + nsPic + `">`)
	b.WriteString(`<w:p>`)
	b.WriteString(pPr(h.Align))
	if lg != nil {
		fmt.Fprintf(&b, drawingFormat, lg.cx, lg.cy, escape(lg.target[strings.LastIndexByte(lg.target, '/')+1:]))
		b.WriteString(`<w:r><w:t xml:space="preserve">  </w:t></w:r>`)
	}
	run(&b, rPr(h.Color, h.Size), h.Text)
	b.WriteString(`</w:p></w:hdr>`)
	return b.String()
}

// renderFooter writes the footer line; a page-number inline becomes a PAGE
// field.
func renderFooter(f document.Footer) string {
	var b strings.Builder
	b.WriteString(xmlHeader)
	b.WriteString(`<w:ftr xmlns:w="` + nsW + `" xmlns:r="` + nsR + `">`)
	b.WriteString(`<w:p>`)
	b.WriteString(pPr(f.Align))
	props := rPr(f.Color, f.Size)
	for _, in := range f.Inlines {
		switch in.Field {
		case document.FieldPageNumber:
			b.WriteString(`<w:r>` + props + `<w:fldChar w:fldCharType="begin"/></w:r>`)
			b.WriteString(`<w:r>` + props + `<w:instrText xml:space="preserve"> PAGE </w:instrText></w:r>`)
			b.WriteString(`<w:r>` + props + `<w:fldChar w:fldCharType="separate"/></w:r>`)
			b.WriteString(`<w:r>` + props + `<w:t>1</w:t></w:r>`)
			b.WriteString(`<w:r>` + props + `<w:fldChar w:fldCharType="end"/></w:r>`)
		default:
			run(&b, props, in.Text)
		}
	}
	b.WriteString(`</w:p></w:ftr>`)
	return b.String()
}

func run(b *strings.Builder, rpr, text string) {
	if text == "" {
		return
	}
	b.WriteString(`<w:r>` + rpr + `<w:t xml:space="preserve">` + escape(text) + `</w:t></w:r>`)
}

func pPr(a document.Align) string {
	switch a {
	case document.AlignCenter:
		return `<w:pPr><w:jc w:val="center"/></w:pPr>`
	case document.AlignRight:
		return `<w:pPr><w:jc w:val="right"/></w:pPr>`
	}
	return ""
}

func rPr(color string, size int) string {
	var inner string
	if color != "" {
		inner += `<w:color w:val="` + color + `"/>`
	}
	if size > 0 {
		inner += fmt.Sprintf(`<w:sz w:val="%d"/><w:szCs w:val="%d"/>`, size*2, size*2)
	}
	if inner == "" {
		return ""
	}
	return `<w:rPr>` + inner + `</w:rPr>`
}

// loadLogo reads and measures the header logo. Missing or undecodable
// images are left out of the document.
func loadLogo(path string) *logo {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil
	}
	ext := format
	if ext == "jpeg" {
		ext = "jpg"
	}
	lg := &logo{
		target: "media/reportLogo." + ext,
		ext:    ext,
		data:   data,
		cy:     logoHeight,
		cx:     logoHeight,
	}
	if cfg.Height > 0 {
		lg.cx = int64(logoHeight) * int64(cfg.Width) / int64(cfg.Height)
	}
	return lg
}

func mimeFor(ext string) string {
	switch ext {
	case "jpg":
		return "image/jpeg"
	case "gif":
		return "image/gif"
	}
	return "image/png"
}
