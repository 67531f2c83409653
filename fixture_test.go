package slidedotnet

import (
	"archive/zip"
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

const (
	nsDecl  = `xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships" xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main"`
	nsChart = `xmlns:c="http://schemas.openxmlformats.org/drawingml/2006/chart" xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships"`
	xmlHead = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n"
)

// deck describes a one-slide presentation built in memory. Shape fields hold
// the children of each p:spTree.
type deck struct {
	SlideShapes      string
	LayoutShapes     string
	MasterShapes     string
	TxStyles         string
	DefaultTextStyle string
	// SlideRels holds extra <Relationship> elements of the slide; rId1 is
	// the layout.
	SlideRels string
	// Extra parts, keyed by package path.
	Extra map[string][]byte
	// Overrides adds content-type overrides as partName → type.
	Overrides map[string]string
}

func rel(id, relType, target string) string {
	return fmt.Sprintf(`<Relationship Id="%s" Type="%s" Target="%s"/>`, id, relType, target)
}

func rels(entries ...string) string {
	return xmlHead + `<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
		strings.Join(entries, "") + `</Relationships>`
}

func spTreeOf(shapes string) string {
	return `<p:cSld><p:spTree><p:nvGrpSpPr><p:cNvPr id="1" name=""/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr><p:grpSpPr/>` +
		shapes + `</p:spTree></p:cSld>`
}

func (d deck) parts() map[string][]byte {
	overrides := `<Override PartName="/ppt/presentation.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.presentation.main+xml"/>` +
		`<Override PartName="/ppt/slides/slide1.xml" ContentType="` + ctSlide + `"/>` +
		`<Override PartName="/ppt/slideLayouts/slideLayout1.xml" ContentType="` + ctSlideLayout + `"/>` +
		`<Override PartName="/ppt/slideMasters/slideMaster1.xml" ContentType="` + ctSlideMaster + `"/>` +
		`<Override PartName="/docProps/core.xml" ContentType="application/vnd.openxmlformats-package.core-properties+xml"/>`
	for name, ct := range d.Overrides {
		overrides += `<Override PartName="/` + name + `" ContentType="` + ct + `"/>`
	}

	defaultStyle := ""
	if d.DefaultTextStyle != "" {
		defaultStyle = `<p:defaultTextStyle>` + d.DefaultTextStyle + `</p:defaultTextStyle>`
	}
	txStyles := ""
	if d.TxStyles != "" {
		txStyles = `<p:txStyles>` + d.TxStyles + `</p:txStyles>`
	}

	parts := map[string]string{
		"[Content_Types].xml": xmlHead + `<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">` +
			`<Default Extension="rels" ContentType="` + ctRels + `"/><Default Extension="xml" ContentType="application/xml"/>` +
			`<Default Extension="png" ContentType="image/png"/><Default Extension="xlsx" ContentType="application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"/>` +
			overrides + `</Types>`,
		"_rels/.rels": rels(
			rel("rId1", relTypeOfficeDoc, "ppt/presentation.xml"),
			rel("rId2", relTypeCoreProps, "docProps/core.xml"),
		),
		"docProps/core.xml": xmlHead + `<cp:coreProperties xmlns:cp="http://schemas.openxmlformats.org/package/2006/metadata/core-properties" xmlns:dc="http://purl.org/dc/elements/1.1/" xmlns:dcterms="http://purl.org/dc/terms/" xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance">` +
			`<dc:title>Quarterly review</dc:title><dc:creator>Test</dc:creator><cp:revision>3</cp:revision>` +
			`<dcterms:created xsi:type="dcterms:W3CDTF">2024-03-01T10:00:00Z</dcterms:created></cp:coreProperties>`,
		"ppt/presentation.xml": xmlHead + `<p:presentation ` + nsDecl + `>` +
			`<p:sldMasterIdLst><p:sldMasterId id="2147483648" r:id="rId1"/></p:sldMasterIdLst>` +
			`<p:sldIdLst><p:sldId id="256" r:id="rId2"/></p:sldIdLst>` +
			`<p:sldSz cx="12192000" cy="6858000"/>` + defaultStyle + `</p:presentation>`,
		"ppt/_rels/presentation.xml.rels": rels(
			rel("rId1", relTypeSlideMaster, "slideMasters/slideMaster1.xml"),
			rel("rId2", relTypeSlide, "slides/slide1.xml"),
		),
		"ppt/slideMasters/slideMaster1.xml": xmlHead + `<p:sldMaster ` + nsDecl + `>` + spTreeOf(d.MasterShapes) +
			`<p:sldLayoutIdLst><p:sldLayoutId id="2147483649" r:id="rId1"/></p:sldLayoutIdLst>` + txStyles + `</p:sldMaster>`,
		"ppt/slideMasters/_rels/slideMaster1.xml.rels": rels(
			rel("rId1", relTypeSlideLayout, "../slideLayouts/slideLayout1.xml"),
		),
		"ppt/slideLayouts/slideLayout1.xml": xmlHead + `<p:sldLayout ` + nsDecl + `><p:cSld name="Title and Content"><p:spTree>` +
			`<p:nvGrpSpPr><p:cNvPr id="1" name=""/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr><p:grpSpPr/>` +
			d.LayoutShapes + `</p:spTree></p:cSld></p:sldLayout>`,
		"ppt/slideLayouts/_rels/slideLayout1.xml.rels": rels(
			rel("rId1", relTypeSlideMaster, "../slideMasters/slideMaster1.xml"),
		),
		"ppt/slides/slide1.xml": xmlHead + `<p:sld ` + nsDecl + `>` + spTreeOf(d.SlideShapes) + `</p:sld>`,
		"ppt/slides/_rels/slide1.xml.rels": rels(
			rel("rId1", relTypeSlideLayout, "../slideLayouts/slideLayout1.xml"),
		),
	}
	if d.SlideRels != "" {
		parts["ppt/slides/_rels/slide1.xml.rels"] = rels(
			rel("rId1", relTypeSlideLayout, "../slideLayouts/slideLayout1.xml"),
			d.SlideRels,
		)
	}

	out := make(map[string][]byte, len(parts)+len(d.Extra))
	for name, content := range parts {
		out[name] = []byte(content)
	}
	for name, content := range d.Extra {
		out[name] = content
	}
	return out
}

// zipParts writes parts into a PPTX archive.
func zipParts(t *testing.T, parts map[string][]byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range parts {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("zip create %s: %v", name, err)
		}
		if _, err := w.Write(content); err != nil {
			t.Fatalf("zip write %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip close: %v", err)
	}
	return buf.Bytes()
}

// openDeck builds d and opens it. The presentation is closed when the test
// ends.
func openDeck(t *testing.T, d deck) *Presentation {
	t.Helper()
	data := zipParts(t, d.parts())
	pres, err := ReadFrom(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("ReadFrom failed: %v", err)
	}
	t.Cleanup(func() { pres.Close() })
	return pres
}

// roundTrip writes the presentation to a buffer and reads it back.
func roundTrip(t *testing.T, p *Presentation) *Presentation {
	t.Helper()
	var buf bytes.Buffer
	if err := p.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo failed: %v", err)
	}
	data := buf.Bytes()
	pres, err := ReadFrom(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("ReadFrom failed: %v", err)
	}
	t.Cleanup(func() { pres.Close() })
	return pres
}

// firstSlideShapes returns the shapes of slide 1.
func firstSlideShapes(t *testing.T, p *Presentation) *Shapes {
	t.Helper()
	s, err := p.Slide(1)
	if err != nil {
		t.Fatalf("Slide(1): %v", err)
	}
	shapes, err := s.Shapes()
	if err != nil {
		t.Fatalf("Shapes: %v", err)
	}
	return shapes
}

// --- shape XML builders ---

func ph(typ string) string {
	if typ == "" {
		return ""
	}
	return `<p:ph type="` + typ + `"/>`
}

func phIdx(typ string, idx int) string {
	if typ == "" {
		return fmt.Sprintf(`<p:ph idx="%d"/>`, idx)
	}
	return fmt.Sprintf(`<p:ph type="%s" idx="%d"/>`, typ, idx)
}

// sp builds a p:sp. spPr and body are inner XML; body is usually a txBody.
func sp(id int, name, placeholder, spPr, body string) string {
	return fmt.Sprintf(`<p:sp><p:nvSpPr><p:cNvPr id="%d" name="%s"/><p:cNvSpPr/><p:nvPr>%s</p:nvPr></p:nvSpPr><p:spPr>%s</p:spPr>%s</p:sp>`,
		id, name, placeholder, spPr, body)
}

func xfrm(x, y, cx, cy int) string {
	return fmt.Sprintf(`<a:xfrm><a:off x="%d" y="%d"/><a:ext cx="%d" cy="%d"/></a:xfrm>`, x, y, cx, cy)
}

// txBody builds a p:txBody from a list style and paragraphs.
func txBody(lstStyle string, paragraphs ...string) string {
	return `<p:txBody><a:bodyPr/><a:lstStyle>` + lstStyle + `</a:lstStyle>` + strings.Join(paragraphs, "") + `</p:txBody>`
}

// para builds an a:p with one run per text.
func para(texts ...string) string {
	var sb strings.Builder
	sb.WriteString("<a:p>")
	for _, t := range texts {
		sb.WriteString(`<a:r><a:rPr lang="en-US"/><a:t>` + t + `</a:t></a:r>`)
	}
	sb.WriteString("</a:p>")
	return sb.String()
}

// lvlSize builds a list-style level with a default run size.
func lvlSize(level, size int) string {
	return fmt.Sprintf(`<a:lvl%dpPr><a:defRPr sz="%d"/></a:lvl%dpPr>`, level, size, level)
}

func graphicFrame(id int, name, uri, data string) string {
	return fmt.Sprintf(`<p:graphicFrame><p:nvGraphicFramePr><p:cNvPr id="%d" name="%s"/><p:cNvGraphicFramePr/><p:nvPr/></p:nvGraphicFramePr>`+
		`<p:xfrm><a:off x="100" y="200"/><a:ext cx="3000" cy="2000"/></p:xfrm>`+
		`<a:graphic><a:graphicData uri="%s">%s</a:graphicData></a:graphic></p:graphicFrame>`, id, name, uri, data)
}

// chartFrame references the chart part behind slide relationship rid.
func chartFrame(id int, rid string) string {
	return graphicFrame(id, fmt.Sprintf("Chart %d", id), uriChart,
		`<c:chart xmlns:c="http://schemas.openxmlformats.org/drawingml/2006/chart" r:id="`+rid+`"/>`)
}

// tableFrame builds a rows×cols table whose cells hold "r,c".
func tableFrame(id, rows, cols int) string {
	var sb strings.Builder
	sb.WriteString(`<a:tbl><a:tblPr/><a:tblGrid>`)
	for c := 0; c < cols; c++ {
		sb.WriteString(`<a:gridCol w="1000"/>`)
	}
	sb.WriteString(`</a:tblGrid>`)
	for r := 0; r < rows; r++ {
		sb.WriteString(`<a:tr h="370840">`)
		for c := 0; c < cols; c++ {
			fmt.Fprintf(&sb, `<a:tc><a:txBody><a:bodyPr/><a:lstStyle/><a:p><a:r><a:t>%d,%d</a:t></a:r></a:p></a:txBody><a:tcPr/></a:tc>`, r, c)
		}
		sb.WriteString(`</a:tr>`)
	}
	sb.WriteString(`</a:tbl>`)
	return graphicFrame(id, fmt.Sprintf("Table %d", id), uriTable, sb.String())
}

// chartDeck builds a deck whose slide holds one chart backed by chartXML
// and, when wb is non-nil, an embedded workbook.
func chartDeck(chartXML string, wb []byte) deck {
	d := deck{
		SlideShapes: chartFrame(4, "rId2"),
		SlideRels:   rel("rId2", relTypeChart, "../charts/chart1.xml"),
		Extra: map[string][]byte{
			"ppt/charts/chart1.xml": []byte(xmlHead + chartXML),
		},
		Overrides: map[string]string{"ppt/charts/chart1.xml": ctChart},
	}
	if wb != nil {
		d.Extra["ppt/charts/_rels/chart1.xml.rels"] = []byte(rels(
			rel("rId1", relTypePackage, "../embeddings/Microsoft_Excel_Worksheet1.xlsx"),
		))
		d.Extra["ppt/embeddings/Microsoft_Excel_Worksheet1.xlsx"] = wb
	}
	return d
}

// chartSpace wraps plot XML into a chart part with an external data link.
func chartSpace(plots string, withExternalData bool) string {
	ext := ""
	if withExternalData {
		ext = `<c:externalData r:id="rId1"><c:autoUpdate val="0"/></c:externalData>`
	}
	return `<c:chartSpace ` + nsChart + `><c:chart><c:plotArea><c:layout/>` + plots + `</c:plotArea></c:chart>` + ext + `</c:chartSpace>`
}

// buildWorkbook returns an xlsx holding cells on Sheet1 with the given
// declared dimension.
func buildWorkbook(t *testing.T, cells map[string]any, dimension string) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for cell, v := range cells {
		if err := f.SetCellValue("Sheet1", cell, v); err != nil {
			t.Fatalf("SetCellValue %s: %v", cell, err)
		}
	}
	if dimension != "" {
		if err := f.SetSheetDimension("Sheet1", dimension); err != nil {
			t.Fatalf("SetSheetDimension: %v", err)
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("WriteToBuffer: %v", err)
	}
	return buf.Bytes()
}

// testPNG returns a 1x1 RGB PNG.
func testPNG() []byte {
	return []byte{
		0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A,
		0x00, 0x00, 0x00, 0x0D, 0x49, 0x48, 0x44, 0x52,
		0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
		0x08, 0x02, 0x00, 0x00, 0x00, 0x90, 0x77, 0x53,
		0xDE, 0x00, 0x00, 0x00, 0x0C, 0x49, 0x44, 0x41,
		0x54, 0x08, 0xD7, 0x63, 0xF8, 0xCF, 0xC0, 0x00,
		0x00, 0x00, 0x02, 0x00, 0x01, 0xE2, 0x21, 0xBC,
		0x33, 0x00, 0x00, 0x00, 0x00, 0x49, 0x45, 0x4E,
		0x44, 0xAE, 0x42, 0x60, 0x82,
	}
}
