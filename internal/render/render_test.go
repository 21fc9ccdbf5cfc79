package render

import (
	"archive/zip"
	"bytes"
	"strings"
	"testing"

	"offergen/internal/fields"
	"offergen/internal/pptx"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const slideHeader = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
	`<p:sld xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main"` +
	` xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships"` +
	` xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main">` +
	`<p:cSld><p:spTree><p:nvGrpSpPr/><p:grpSpPr/>`

const slideFooter = `</p:spTree></p:cSld></p:sld>`

func textShape(paragraphs string) string {
	return `<p:sp><p:nvSpPr/><p:spPr/><p:txBody><a:bodyPr/>` + paragraphs + `</p:txBody></p:sp>`
}

func makePPTX(t *testing.T, shapes string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	parts := map[string]string{
		"[Content_Types].xml":   `<?xml version="1.0"?><Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"/>`,
		"ppt/presentation.xml":  `<?xml version="1.0"?><p:presentation xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main"/>`,
		"ppt/slides/slide1.xml": slideHeader + shapes + slideFooter,
	}
	for name, data := range parts {
		f, err := w.Create(name)
		require.NoError(t, err)
		_, err = f.Write([]byte(data))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

// paragraphTexts flattens every paragraph reachable in the document, in
// traversal order.
func paragraphTexts(t *testing.T, data []byte) []string {
	t.Helper()
	pkg, err := pptx.Open(data)
	require.NoError(t, err)

	var out []string
	var collect func(shapes []*pptx.Shape)
	collect = func(shapes []*pptx.Shape) {
		for _, sh := range shapes {
			switch sh.Kind {
			case pptx.KindText:
				for _, para := range sh.Text.Paragraphs {
					var b strings.Builder
					for _, r := range para.Runs {
						b.WriteString(r.Text())
					}
					for _, f := range para.Fields {
						b.WriteString(f.Text())
					}
					out = append(out, b.String())
				}
			case pptx.KindTable:
				for _, row := range sh.Table.Rows {
					for _, cell := range row {
						for _, para := range cell.Paragraphs {
							var b strings.Builder
							for _, r := range para.Runs {
								b.WriteString(r.Text())
							}
							out = append(out, b.String())
						}
					}
				}
			case pptx.KindGroup:
				collect(sh.Children)
			}
		}
	}
	for _, slide := range pkg.Slides() {
		collect(slide.Shapes)
	}
	return out
}

func TestPresentation_SplitRunToken(t *testing.T) {
	tmpl := makePPTX(t, textShape(`<a:p>`+
		`<a:r><a:rPr b="1"/><a:t>{X</a:t></a:r>`+
		`<a:r><a:t>XXXXX</a:t></a:r>`+
		`<a:r><a:t>}</a:t></a:r>`+
		`</a:p>`))

	out, err := Presentation(tmpl, fields.Mapping{"CANDIDATE_NAME": "Juan Perez"})
	require.NoError(t, err)

	texts := paragraphTexts(t, out)
	require.Len(t, texts, 1)
	assert.Equal(t, "Juan Perez", texts[0])
	assert.NotContains(t, texts[0], "X")

	// The first run absorbs the text; the others are blanked.
	pkg, err := pptx.Open(out)
	require.NoError(t, err)
	runs := pkg.Slides()[0].Shapes[0].Text.Paragraphs[0].Runs
	require.Len(t, runs, 3)
	assert.Equal(t, "Juan Perez", runs[0].Text())
	assert.Equal(t, "", runs[1].Text())
	assert.Equal(t, "", runs[2].Text())
}

func TestPresentation_NoOpKeepsText(t *testing.T) {
	tmpl := makePPTX(t, textShape(`<a:p><a:r><a:t>Estimado candidato,</a:t></a:r></a:p>`+
		`<a:p><a:r><a:t>saludos cordiales</a:t></a:r></a:p>`))

	out, err := Presentation(tmpl, fields.Mapping{})
	require.NoError(t, err)

	assert.Equal(t, paragraphTexts(t, tmpl), paragraphTexts(t, out))
}

func TestPresentation_UnknownTokenPassesThrough(t *testing.T) {
	tmpl := makePPTX(t, textShape(`<a:p><a:r><a:t>{{UNKNOWN}}</a:t></a:r></a:p>`))

	out, err := Presentation(tmpl, fields.Mapping{})
	require.NoError(t, err)
	assert.Equal(t, []string{"{{UNKNOWN}}"}, paragraphTexts(t, out))
}

func TestPresentation_TokenInTableInsideNestedGroups(t *testing.T) {
	table := `<p:graphicFrame><p:nvGraphicFramePr/><p:xfrm/>` +
		`<a:graphic><a:graphicData uri="http://schemas.openxmlformats.org/drawingml/2006/table">` +
		`<a:tbl><a:tblPr/><a:tblGrid/>` +
		`<a:tr><a:tc><a:txBody><a:bodyPr/><a:p><a:r><a:t>{{POSITION}}</a:t></a:r></a:p></a:txBody><a:tcPr/></a:tc></a:tr>` +
		`</a:tbl></a:graphicData></a:graphic></p:graphicFrame>`
	nested := `<p:grpSp><p:nvGrpSpPr/><p:grpSpPr/>` +
		`<p:grpSp><p:nvGrpSpPr/><p:grpSpPr/>` + table + `</p:grpSp>` +
		`</p:grpSp>`
	tmpl := makePPTX(t, nested)

	out, err := Presentation(tmpl, fields.Mapping{"POSITION": "Software Engineer"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Software Engineer"}, paragraphTexts(t, out))
}

func TestPresentation_FieldOnlyParagraph(t *testing.T) {
	tmpl := makePPTX(t, textShape(`<a:p><a:fld id="{0}" type="datetime1"><a:t>{{DATE}}</a:t></a:fld></a:p>`))

	out, err := Presentation(tmpl, fields.Mapping{"DATE": "8 de agosto de 2025"})
	require.NoError(t, err)
	assert.Equal(t, []string{"8 de agosto de 2025"}, paragraphTexts(t, out))
}

func TestPresentation_MalformedInput(t *testing.T) {
	_, err := Presentation([]byte("not a pptx at all"), fields.Mapping{})
	require.Error(t, err)

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	f, _ := w.Create("something.txt")
	f.Write([]byte("x"))
	w.Close()
	_, err = Presentation(buf.Bytes(), fields.Mapping{})
	require.Error(t, err)
}

func TestForFilename(t *testing.T) {
	_, err := ForFilename("template.pptx")
	assert.NoError(t, err)
	_, err = ForFilename("Template.PPTX")
	assert.NoError(t, err)
	_, err = ForFilename("letter.docx")
	assert.NoError(t, err)
	_, err = ForFilename("letter.pdf")
	assert.Error(t, err)
	_, err = ForFilename("letter")
	assert.Error(t, err)
}
