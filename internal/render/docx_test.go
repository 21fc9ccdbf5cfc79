package render

import (
	"bytes"
	"strings"
	"testing"

	"offergen/internal/fields"

	"github.com/fumiama/go-docx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func docxParagraphText(para *docx.Paragraph) string {
	var b strings.Builder
	for _, t := range docxTextNodes(para) {
		b.WriteString(t.Text)
	}
	return b.String()
}

func TestApplyDocxParagraph(t *testing.T) {
	doc := docx.New().WithDefaultTheme()
	para := doc.AddParagraph()
	para.AddText("Estimado {{CANDIDATE_NAME}},")

	applyDocxParagraph(para, fields.Mapping{"CANDIDATE_NAME": "Juan Perez"})
	assert.Equal(t, "Estimado Juan Perez,", docxParagraphText(para))
}

func TestApplyDocxParagraph_TokenSplitAcrossRuns(t *testing.T) {
	doc := docx.New().WithDefaultTheme()
	para := doc.AddParagraph()
	para.AddText("{{CANDID")
	para.AddText("ATE_NAME}}")

	applyDocxParagraph(para, fields.Mapping{"CANDIDATE_NAME": "Juan Perez"})

	texts := docxTextNodes(para)
	require.Len(t, texts, 2)
	assert.Equal(t, "Juan Perez", texts[0].Text)
	assert.Equal(t, "", texts[1].Text)
}

func TestApplyDocxParagraph_NoMatchLeavesRunsAlone(t *testing.T) {
	doc := docx.New().WithDefaultTheme()
	para := doc.AddParagraph()
	para.AddText("saludos ")
	para.AddText("cordiales")

	applyDocxParagraph(para, fields.Mapping{"CANDIDATE_NAME": "Juan Perez"})

	texts := docxTextNodes(para)
	require.Len(t, texts, 2)
	assert.Equal(t, "saludos ", texts[0].Text)
	assert.Equal(t, "cordiales", texts[1].Text)
}

func TestWordDocument_RoundTrip(t *testing.T) {
	doc := docx.New().WithDefaultTheme()
	doc.AddParagraph().AddText("Posicion: {{POSITION}}")

	var buf bytes.Buffer
	_, err := doc.WriteTo(&buf)
	require.NoError(t, err)

	out, err := WordDocument(buf.Bytes(), fields.Mapping{"POSITION": "Software Engineer"})
	require.NoError(t, err)

	parsed, err := docx.Parse(bytes.NewReader(out), int64(len(out)))
	require.NoError(t, err)

	var joined strings.Builder
	for _, item := range parsed.Document.Body.Items {
		if para, ok := item.(*docx.Paragraph); ok {
			joined.WriteString(docxParagraphText(para))
		}
	}
	assert.Equal(t, "Posicion: Software Engineer", joined.String())
}

func TestWordDocument_MalformedInput(t *testing.T) {
	_, err := WordDocument([]byte("not a docx"), fields.Mapping{})
	require.Error(t, err)
}
