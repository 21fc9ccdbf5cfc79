package render

import (
	"bytes"
	"fmt"
	"strings"

	"offergen/internal/fields"
	"offergen/internal/tokens"

	"github.com/fumiama/go-docx"
)

// WordDocument renders a docx template. Word fragments paragraph text across
// runs just like PowerPoint does, so the same flatten-resolve-absorb rule
// applies to each body and table-cell paragraph.
func WordDocument(data []byte, m fields.Mapping) ([]byte, error) {
	doc, err := docx.Parse(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("render docx: %w", err)
	}

	for _, item := range doc.Document.Body.Items {
		switch it := item.(type) {
		case *docx.Paragraph:
			applyDocxParagraph(it, m)
		case *docx.Table:
			applyDocxTable(it, m)
		}
	}

	var out bytes.Buffer
	if _, err := doc.WriteTo(&out); err != nil {
		return nil, fmt.Errorf("render docx: %w", err)
	}
	return out.Bytes(), nil
}

func applyDocxTable(tbl *docx.Table, m fields.Mapping) {
	for _, row := range tbl.TableRows {
		for _, cell := range row.TableCells {
			for _, para := range cell.Paragraphs {
				applyDocxParagraph(para, m)
			}
		}
	}
}

// applyDocxParagraph flattens the paragraph's text nodes, resolves the
// joined text and, if anything changed, writes the whole result into the
// first text node and blanks the rest.
func applyDocxParagraph(para *docx.Paragraph, m fields.Mapping) {
	texts := docxTextNodes(para)
	if len(texts) == 0 {
		return
	}
	var full strings.Builder
	for _, t := range texts {
		full.WriteString(t.Text)
	}
	flat := full.String()
	resolved := tokens.Resolve(flat, m)
	if resolved == flat {
		return
	}
	texts[0].Text = resolved
	for _, t := range texts[1:] {
		t.Text = ""
	}
}

func docxTextNodes(para *docx.Paragraph) []*docx.Text {
	var texts []*docx.Text
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		for _, rc := range run.Children {
			if t, ok := rc.(*docx.Text); ok {
				texts = append(texts, t)
			}
		}
	}
	return texts
}
