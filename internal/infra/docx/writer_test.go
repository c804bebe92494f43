package docx

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bryanwahyu/procdoc/internal/domain/document"
	"github.com/bryanwahyu/procdoc/internal/domain/reports"
)

const fullyMarked = "1. Control Objective: Verify access.\n" +
	"2. Risks Addressed: Unauthorized access.\n" +
	"3. Testing Procedures: Sample 25 users.\n" +
	"4. Test Results and Findings: 25/25 passed.\n" +
	"5. Conclusion and Recommendation: Effective."

func renderZip(t *testing.T, doc *document.Document) map[string]string {
	t.Helper()
	var buf bytes.Buffer
	if err := NewWriter().Render(&buf, doc); err != nil {
		t.Fatalf("Render: %v", err)
	}
	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("open zip: %v", err)
	}
	out := map[string]string{}
	for i, f := range zr.File {
		if i == 0 && f.Name != partContentTypes {
			t.Errorf("first part = %s, want %s", f.Name, partContentTypes)
		}
		rc, err := f.Open()
		if err != nil {
			t.Fatal(err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatal(err)
		}
		out[f.Name] = string(data)
	}
	return out
}

func assembled(t *testing.T, text string, brand reports.Branding) *document.Document {
	t.Helper()
	tmpl, err := reports.LookupTemplate("")
	if err != nil {
		t.Fatal(err)
	}
	return document.Assemble(document.Input{
		Template: tmpl,
		Sections: tmpl.Parse(text),
		Subject:  "Vendor <Payments> & Co",
		Metadata: &reports.Metadata{GeneratedAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)},
		Branding: brand,
	})
}

func wellFormed(t *testing.T, name, data string) {
	t.Helper()
	dec := xml.NewDecoder(strings.NewReader(data))
	for {
		_, err := dec.Token()
		if err == io.EOF {
			return
		}
		if err != nil {
			t.Fatalf("%s is not well-formed XML: %v", name, err)
		}
	}
}

// paragraphs returns the text of every w:p in document order.
func paragraphs(t *testing.T, data string) []string {
	t.Helper()
	dec := xml.NewDecoder(strings.NewReader(data))
	var (
		out    []string
		cur    strings.Builder
		inText bool
	)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return out
		}
		if err != nil {
			t.Fatalf("decode document: %v", err)
		}
		switch v := tok.(type) {
		case xml.StartElement:
			switch v.Name.Local {
			case "p":
				cur.Reset()
			case "t":
				inText = true
			}
		case xml.EndElement:
			switch v.Name.Local {
			case "p":
				out = append(out, cur.String())
			case "t":
				inText = false
			}
		case xml.CharData:
			if inText {
				cur.Write(v)
			}
		}
	}
}

func TestRenderPackageParts(t *testing.T) {
	parts := renderZip(t, assembled(t, "", reports.Branding{}))

	for _, name := range []string{partContentTypes, partDocument, partDocumentRels, partHeader, partFooter} {
		data, ok := parts[name]
		if !ok {
			t.Errorf("missing part %s", name)
			continue
		}
		wellFormed(t, name, data)
	}
	if _, ok := parts[partHeaderRels]; ok {
		t.Error("header rels written without a logo")
	}
	if !strings.Contains(parts[partDocumentRels], `Id="`+relHeader+`"`) || !strings.Contains(parts[partDocumentRels], `Id="`+relFooter+`"`) {
		t.Errorf("document rels = %s", parts[partDocumentRels])
	}
	if !strings.Contains(parts[partContentTypes], "/"+partHeader) || !strings.Contains(parts[partContentTypes], "/"+partFooter) {
		t.Error("header/footer content types not declared")
	}
	body := parts[partDocument]
	if strings.Count(body, `r:id="`+relHeader+`"`) != 1 || strings.Count(body, `r:id="`+relFooter+`"`) != 1 {
		t.Error("section does not reference header and footer exactly once")
	}
}

func TestRenderFullyMarkedSectionsInOrder(t *testing.T) {
	parts := renderZip(t, assembled(t, fullyMarked, reports.Branding{}))
	body := parts[partDocument]

	if strings.Contains(body, document.PlaceholderText) {
		t.Fatal("placeholder rendered for a fully marked input")
	}

	paras := paragraphs(t, body)
	want := []struct{ heading, content string }{
		{"1. Control Objective", "Verify access."},
		{"2. Risks Addressed", "Unauthorized access."},
		{"3. Testing Procedures", "Sample 25 users."},
		{"4. Test Results and Findings", "25/25 passed."},
		{"5. Conclusion and Recommendation", "Effective."},
	}
	pos := 0
	for _, w := range want {
		i := pos
		for i < len(paras) && paras[i] != w.heading {
			i++
		}
		if i == len(paras) {
			t.Fatalf("heading %q not found after paragraph %d: %q", w.heading, pos, paras)
		}
		j := i + 1
		for j < len(paras) && paras[j] == "" {
			j++
		}
		if j == len(paras) || paras[j] != w.content {
			t.Fatalf("after %q got %q, want %q", w.heading, paras[j:], w.content)
		}
		pos = j + 1
	}
}

func TestRenderEmptySectionsShowPlaceholder(t *testing.T) {
	body := renderZip(t, assembled(t, "", reports.Branding{}))[partDocument]

	if n := strings.Count(body, escape(document.PlaceholderText)); n != reports.SectionCount {
		t.Fatalf("placeholder count = %d, want %d", n, reports.SectionCount)
	}
	if n := strings.Count(body, `"`+stylePlaceholder+`"`); n != reports.SectionCount {
		t.Errorf("placeholder style count = %d, want %d", n, reports.SectionCount)
	}
	for _, h := range []string{"1. Control Objective", "5. Conclusion and Recommendation"} {
		if !strings.Contains(body, h) {
			t.Errorf("heading %q missing", h)
		}
	}
	if !strings.Contains(body, "Vendor &lt;Payments&gt; &amp; Co") {
		t.Error("subject not escaped")
	}
	if !strings.Contains(body, "2024-01-02 03:04:05") {
		t.Error("metadata timestamp missing")
	}
	if !strings.Contains(body, strings.Repeat("_", separatorRule)) {
		t.Error("separator rule missing")
	}
}

func TestRenderListStyles(t *testing.T) {
	text := "1. Control Objective\n- a\n- b\n2. Risks Addressed\n1. first\n2. second\n3. Testing Procedures\n1. again"
	body := renderZip(t, assembled(t, text, reports.Branding{}))[partDocument]

	if n := strings.Count(body, `"`+styleListBullet+`"`); n != 2 {
		t.Errorf("bullet items = %d, want 2", n)
	}
	if n := strings.Count(body, `"`+styleListNumber+`"`); n != 3 {
		t.Errorf("numbered items = %d, want 3", n)
	}
}

func TestRenderFooterHasPageField(t *testing.T) {
	ftr := renderZip(t, assembled(t, "x", reports.Branding{}))[partFooter]
	if !strings.Contains(ftr, "PAGE") || !strings.Contains(ftr, `w:fldCharType="begin"`) {
		t.Fatalf("footer without page field: %s", ftr)
	}
	if !strings.Contains(ftr, "Confidential") {
		t.Error("footer text missing")
	}
}

func TestRenderBrandingColorAndHeader(t *testing.T) {
	parts := renderZip(t, assembled(t, "x", reports.Branding{CompanyName: "Acme", Color: "#123ABC"}))
	if !strings.Contains(parts[partDocument], "123ABC") {
		t.Error("accent color not applied to headings")
	}
	if !strings.Contains(parts[partHeader], "Acme | Process Documentation") {
		t.Errorf("header = %s", parts[partHeader])
	}
}

func TestRenderEmbedsLogo(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "logo.png")
	img := image.NewRGBA(image.Rect(0, 0, 40, 20))
	img.Set(1, 1, color.RGBA{R: 255, A: 255})
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
	f.Close()

	parts := renderZip(t, assembled(t, "x", reports.Branding{LogoPath: path}))
	if _, ok := parts["word/media/reportLogo.png"]; !ok {
		t.Fatal("logo media part missing")
	}
	if !strings.Contains(parts[partHeaderRels], "media/reportLogo.png") {
		t.Fatalf("header relationships = %q", parts[partHeaderRels])
	}
	if !strings.Contains(strings.ToLower(parts[partContentTypes]), `extension="png"`) {
		t.Error("png content type not declared")
	}
	wellFormed(t, partHeader, parts[partHeader])
	wellFormed(t, partContentTypes, parts[partContentTypes])
}

func TestRenderSkipsUnreadableLogo(t *testing.T) {
	parts := renderZip(t, assembled(t, "x", reports.Branding{LogoPath: "/does/not/exist.png"}))
	if _, ok := parts[partHeaderRels]; ok {
		t.Fatal("unexpected header rels")
	}
}

func TestWithSectionRefs(t *testing.T) {
	const open = `<w:document xmlns:w="` + nsW + `" xmlns:r="` + nsR + `"><w:body><w:p/>`
	cases := map[string]string{
		"open":         open + `<w:sectPr><w:pgSz w:w="11906"/></w:sectPr></w:body></w:document>`,
		"self-closing": open + `<w:sectPr/></w:body></w:document>`,
		"missing":      open + `</w:body></w:document>`,
		"replaced":     open + `<w:sectPr><w:headerReference w:type="default" r:id="rId9"/></w:sectPr></w:body></w:document>`,
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			out, err := withSectionRefs(in)
			if err != nil {
				t.Fatal(err)
			}
			wellFormed(t, name, out)
			if strings.Count(out, "<w:headerReference") != 1 || !strings.Contains(out, sectionRefsXML) {
				t.Fatalf("out = %s", out)
			}
			if strings.Contains(out, "rId9") {
				t.Error("stale header reference kept")
			}
		})
	}

	if _, err := withSectionRefs(`<w:document/>`); err == nil {
		t.Error("expected error for a document without a body")
	}
}

func TestWithCoreProps(t *testing.T) {
	core := `<cp:coreProperties xmlns:cp="c" xmlns:dc="d" xmlns:dcterms="t" xmlns:xsi="x">` +
		`<dc:title/><dcterms:created xsi:type="dcterms:W3CDTF">2000-01-01T00:00:00Z</dcterms:created></cp:coreProperties>`
	out := withCoreProps(core, "SOX <Report>", time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC))

	if !strings.Contains(out, "<dc:title>SOX &lt;Report&gt;</dc:title>") {
		t.Errorf("title not set: %s", out)
	}
	if !strings.Contains(out, "2024-01-02T03:04:05Z") || strings.Contains(out, "2000-01-01") {
		t.Errorf("created not replaced: %s", out)
	}
}
