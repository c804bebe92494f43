package docx

import (
	"bytes"
	"encoding/xml"
)

const xmlHeader = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n"

const (
	nsW   = `http://schemas.openxmlformats.org/wordprocessingml/2006/main`
	nsR   = `http://schemas.openxmlformats.org/officeDocument/2006/relationships`
	nsWP  = `http://schemas.openxmlformats.org/drawingml/2006/wordprocessingDrawing`
	nsA   = `http://schemas.openxmlformats.org/drawingml/2006/main`
	nsPic = `http://schemas.openxmlformats.org/drawingml/2006/picture`

	relBase = `http://schemas.openxmlformats.org/officeDocument/2006/relationships/`
)

// Part names. Header and footer names stay clear of anything the base
// template ships.
const (
	partContentTypes = "[Content_Types].xml"
	partDocument     = "word/document.xml"
	partDocumentRels = "word/_rels/document.xml.rels"
	partCore         = "docProps/core.xml"
	partHeader       = "word/reportHeader.xml"
	partHeaderRels   = "word/_rels/reportHeader.xml.rels"
	partFooter       = "word/reportFooter.xml"

	relHeader = "rIdReportHeader"
	relFooter = "rIdReportFooter"
)

const documentRelsExtra = `<Relationship Id="` + relHeader + `" Type="` + relBase + `header" Target="reportHeader.xml"/>` +
	`<Relationship Id="` + relFooter + `" Type="` + relBase + `footer" Target="reportFooter.xml"/>`

const headerFooterOverrides = `<Override PartName="/` + partHeader + `" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.header+xml"/>` +
	`<Override PartName="/` + partFooter + `" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.footer+xml"/>`

const sectionRefsXML = `<w:headerReference w:type="default" r:id="` + relHeader + `"/>` +
	`<w:footerReference w:type="default" r:id="` + relFooter + `"/>`

// headerRelsFormat takes the media target, e.g. "media/reportLogo.png".
const headerRelsFormat = xmlHeader + `<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
	`<Relationship Id="rId1" Type="` + relBase + `image" Target="%s"/>` +
	`</Relationships>`

// drawingFormat takes width and height in EMU (twice each) and the file name.
const drawingFormat = `<w:r><w:drawing><wp:inline distT="0" distB="0" distL="0" distR="0">` +
	`<wp:extent cx="%[1]d" cy="%[2]d"/><wp:docPr id="1001" name="Logo"/>` +
	`<wp:cNvGraphicFramePr><a:graphicFrameLocks noChangeAspect="1"/></wp:cNvGraphicFramePr>` +
	`<a:graphic><a:graphicData uri="` + nsPic + `"><pic:pic>` +
	`<pic:nvPicPr><pic:cNvPr id="0" name="%[3]s"/><pic:cNvPicPr/></pic:nvPicPr>` +
	`<pic:blipFill><a:blip r:embed="rId1"/><a:stretch><a:fillRect/></a:stretch></pic:blipFill>` +
	`<pic:spPr><a:xfrm><a:off x="0" y="0"/><a:ext cx="%[1]d" cy="%[2]d"/></a:xfrm><a:prstGeom prst="rect"><a:avLst/></a:prstGeom></pic:spPr>` +
	`</pic:pic></a:graphicData></a:graphic></wp:inline></w:drawing></w:r>`

func escape(s string) string {
	var b bytes.Buffer
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}
