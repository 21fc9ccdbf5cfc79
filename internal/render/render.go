// Package render applies a field mapping to an offer-letter template and
// produces the rendered document bytes. The walk is depth-first over the
// slide shape tree; text substitution itself is delegated to the tokens
// package.
package render

import (
	"fmt"
	"path/filepath"
	"strings"

	"offergen/internal/fields"
	"offergen/internal/pptx"
	"offergen/internal/tokens"
)

// ForFilename picks the renderer for a template filename. Supported
// extensions are .pptx and .docx.
func ForFilename(filename string) (func([]byte, fields.Mapping) ([]byte, error), error) {
	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".pptx":
		return Presentation, nil
	case ".docx":
		return WordDocument, nil
	default:
		return nil, fmt.Errorf("unsupported template extension: %s", ext)
	}
}

// Presentation renders a pptx template. The input bytes are parsed fresh,
// mutated in memory and re-serialized; on any failure no output is produced
// and the input is untouched.
func Presentation(data []byte, m fields.Mapping) ([]byte, error) {
	pkg, err := pptx.Open(data)
	if err != nil {
		return nil, fmt.Errorf("render pptx: %w", err)
	}
	for _, slide := range pkg.Slides() {
		walkShapes(slide.Shapes, m)
	}
	out, err := pkg.Bytes()
	if err != nil {
		return nil, fmt.Errorf("render pptx: %w", err)
	}
	return out, nil
}

func walkShapes(shapes []*pptx.Shape, m fields.Mapping) {
	for _, sh := range shapes {
		switch sh.Kind {
		case pptx.KindText:
			applyTextBody(sh.Text, m)
		case pptx.KindTable:
			for _, row := range sh.Table.Rows {
				for _, cell := range row {
					applyTextBody(cell, m)
				}
			}
		case pptx.KindGroup:
			walkShapes(sh.Children, m)
		}
	}
}

// applyTextBody resolves tokens paragraph by paragraph. Runs are flattened
// first so a token split across formatting runs still matches; when a
// substitution happens the first run absorbs the whole resolved text and the
// remaining runs are blanked. Paragraphs without runs fall back to their
// field elements, resolved individually.
func applyTextBody(tb *pptx.TextBody, m fields.Mapping) {
	for _, para := range tb.Paragraphs {
		if len(para.Runs) == 0 {
			for _, f := range para.Fields {
				if resolved := tokens.Resolve(f.Text(), m); resolved != f.Text() {
					f.SetText(resolved)
				}
			}
			continue
		}

		var full strings.Builder
		for _, r := range para.Runs {
			full.WriteString(r.Text())
		}
		flat := full.String()
		resolved := tokens.Resolve(flat, m)
		if resolved == flat {
			continue
		}
		para.Runs[0].SetText(resolved)
		for _, r := range para.Runs[1:] {
			r.SetText("")
		}
	}
}
