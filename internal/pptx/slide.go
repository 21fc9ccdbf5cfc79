package pptx

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Slide is one parsed slide part. The shape tree indexes into the original
// XML bytes; Bytes splices edited run text back into them, so namespaces,
// attributes and element order survive untouched.
type Slide struct {
	src    []byte
	Shapes []*Shape

	// every captured a:t node in document order, for splicing.
	runs []*Run
}

type slideParser struct {
	dec   *xml.Decoder
	src   []byte
	slide *Slide
}

// next returns the following token along with its byte span in the source.
func (p *slideParser) next() (xml.Token, int64, int64, error) {
	start := p.dec.InputOffset()
	tok, err := p.dec.Token()
	return tok, start, p.dec.InputOffset(), err
}

func parseSlide(src []byte) (*Slide, error) {
	s := &Slide{src: src}
	p := &slideParser{dec: xml.NewDecoder(bytes.NewReader(src)), src: src, slide: s}

	for {
		tok, _, _, err := p.next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("slide xml: %w", err)
		}
		if se, ok := tok.(xml.StartElement); ok && se.Name.Local == "spTree" {
			shapes, err := p.parseShapes()
			if err != nil {
				return nil, err
			}
			s.Shapes = shapes
		}
	}
	return s, nil
}

// parseShapes consumes the children of an open spTree or grpSp element up to
// its end tag. Non-shape children (group properties) are skipped without
// producing a node; text-less shape kinds become KindOther.
func (p *slideParser) parseShapes() ([]*Shape, error) {
	var shapes []*Shape
	for {
		tok, _, _, err := p.next()
		if err != nil {
			return nil, fmt.Errorf("slide xml: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "sp":
				sh, err := p.parseSp()
				if err != nil {
					return nil, err
				}
				shapes = append(shapes, sh)
			case "graphicFrame":
				sh, err := p.parseGraphicFrame()
				if err != nil {
					return nil, err
				}
				shapes = append(shapes, sh)
			case "grpSp":
				children, err := p.parseShapes()
				if err != nil {
					return nil, err
				}
				shapes = append(shapes, &Shape{Kind: KindGroup, Children: children})
			case "pic", "cxnSp", "contentPart":
				if err := p.dec.Skip(); err != nil {
					return nil, fmt.Errorf("slide xml: %w", err)
				}
				shapes = append(shapes, &Shape{Kind: KindOther})
			default:
				if err := p.dec.Skip(); err != nil {
					return nil, fmt.Errorf("slide xml: %w", err)
				}
			}
		case xml.EndElement:
			return shapes, nil
		}
	}
}

// parseSp consumes a p:sp element. A shape without a text body degrades to
// KindOther.
func (p *slideParser) parseSp() (*Shape, error) {
	var body *TextBody
	for {
		tok, _, _, err := p.next()
		if err != nil {
			return nil, fmt.Errorf("slide xml: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "txBody" {
				tb, err := p.parseTextBody()
				if err != nil {
					return nil, err
				}
				body = tb
			} else if err := p.dec.Skip(); err != nil {
				return nil, fmt.Errorf("slide xml: %w", err)
			}
		case xml.EndElement:
			if body == nil {
				return &Shape{Kind: KindOther}, nil
			}
			return &Shape{Kind: KindText, Text: body}, nil
		}
	}
}

// parseGraphicFrame consumes a p:graphicFrame, descending through the
// a:graphic/a:graphicData wrappers to find a table. Frames holding charts or
// OLE objects instead of a table come back as KindOther.
func (p *slideParser) parseGraphicFrame() (*Shape, error) {
	var table *Table
	depth := 1
	for depth > 0 {
		tok, _, _, err := p.next()
		if err != nil {
			return nil, fmt.Errorf("slide xml: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "graphic", "graphicData":
				depth++
			case "tbl":
				tbl, err := p.parseTable()
				if err != nil {
					return nil, err
				}
				table = tbl
			default:
				if err := p.dec.Skip(); err != nil {
					return nil, fmt.Errorf("slide xml: %w", err)
				}
			}
		case xml.EndElement:
			depth--
		}
	}
	if table == nil {
		return &Shape{Kind: KindOther}, nil
	}
	return &Shape{Kind: KindTable, Table: table}, nil
}

func (p *slideParser) parseTable() (*Table, error) {
	tbl := &Table{}
	for {
		tok, _, _, err := p.next()
		if err != nil {
			return nil, fmt.Errorf("slide xml: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "tr" {
				row, err := p.parseTableRow()
				if err != nil {
					return nil, err
				}
				tbl.Rows = append(tbl.Rows, row)
			} else if err := p.dec.Skip(); err != nil {
				return nil, fmt.Errorf("slide xml: %w", err)
			}
		case xml.EndElement:
			return tbl, nil
		}
	}
}

func (p *slideParser) parseTableRow() ([]*TextBody, error) {
	var cells []*TextBody
	for {
		tok, _, _, err := p.next()
		if err != nil {
			return nil, fmt.Errorf("slide xml: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "tc" {
				cell, err := p.parseTableCell()
				if err != nil {
					return nil, err
				}
				cells = append(cells, cell)
			} else if err := p.dec.Skip(); err != nil {
				return nil, fmt.Errorf("slide xml: %w", err)
			}
		case xml.EndElement:
			return cells, nil
		}
	}
}

func (p *slideParser) parseTableCell() (*TextBody, error) {
	body := &TextBody{}
	for {
		tok, _, _, err := p.next()
		if err != nil {
			return nil, fmt.Errorf("slide xml: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "txBody" {
				tb, err := p.parseTextBody()
				if err != nil {
					return nil, err
				}
				body = tb
			} else if err := p.dec.Skip(); err != nil {
				return nil, fmt.Errorf("slide xml: %w", err)
			}
		case xml.EndElement:
			return body, nil
		}
	}
}

func (p *slideParser) parseTextBody() (*TextBody, error) {
	body := &TextBody{}
	for {
		tok, _, _, err := p.next()
		if err != nil {
			return nil, fmt.Errorf("slide xml: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "p" {
				para, err := p.parseParagraph()
				if err != nil {
					return nil, err
				}
				body.Paragraphs = append(body.Paragraphs, para)
			} else if err := p.dec.Skip(); err != nil {
				return nil, fmt.Errorf("slide xml: %w", err)
			}
		case xml.EndElement:
			return body, nil
		}
	}
}

func (p *slideParser) parseParagraph() (*Paragraph, error) {
	para := &Paragraph{}
	for {
		tok, _, _, err := p.next()
		if err != nil {
			return nil, fmt.Errorf("slide xml: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "r":
				run, err := p.parseRunText()
				if err != nil {
					return nil, err
				}
				if run != nil {
					para.Runs = append(para.Runs, run)
				}
			case "fld":
				run, err := p.parseRunText()
				if err != nil {
					return nil, err
				}
				if run != nil {
					para.Fields = append(para.Fields, run)
				}
			default:
				if err := p.dec.Skip(); err != nil {
					return nil, fmt.Errorf("slide xml: %w", err)
				}
			}
		case xml.EndElement:
			return para, nil
		}
	}
}

// parseRunText consumes an a:r or a:fld element and captures its a:t node,
// if any. Runs without a text element contribute nothing to the paragraph.
func (p *slideParser) parseRunText() (*Run, error) {
	var run *Run
	for {
		tok, start, end, err := p.next()
		if err != nil {
			return nil, fmt.Errorf("slide xml: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "t" && run == nil {
				r, err := p.parseTextNode(start, end)
				if err != nil {
					return nil, err
				}
				run = r
			} else if err := p.dec.Skip(); err != nil {
				return nil, fmt.Errorf("slide xml: %w", err)
			}
		case xml.EndElement:
			return run, nil
		}
	}
}

// parseTextNode captures one a:t element. elemStart/elemEnd span the start
// tag as it appeared in the source.
func (p *slideParser) parseTextNode(elemStart, elemEnd int64) (*Run, error) {
	run := &Run{
		contentStart: elemEnd,
		elemStart:    elemStart,
	}
	var text strings.Builder
	for {
		tok, start, end, err := p.next()
		if err != nil {
			return nil, fmt.Errorf("slide xml: %w", err)
		}
		switch t := tok.(type) {
		case xml.CharData:
			text.Write(t)
		case xml.EndElement:
			run.text = text.String()
			run.contentEnd = start
			run.elemEnd = end
			if run.contentEnd == run.contentStart && bytes.HasSuffix(p.src[elemStart:elemEnd], []byte("/>")) {
				run.selfClosing = true
				run.elemEnd = elemEnd
			}
			p.slide.runs = append(p.slide.runs, run)
			return run, nil
		}
	}
}

// Bytes re-serializes the slide, splicing edited run text into the original
// XML. A slide with no edits comes back byte-identical.
func (s *Slide) Bytes() []byte {
	edited := false
	for _, r := range s.runs {
		if r.dirty {
			edited = true
			break
		}
	}
	if !edited {
		return s.src
	}

	var out bytes.Buffer
	var prev int64
	for _, r := range s.runs {
		if !r.dirty {
			continue
		}
		if r.selfClosing {
			// <a:t/> has no content region; rewrite the whole element.
			out.Write(s.src[prev:r.elemStart])
			raw := string(s.src[r.elemStart:r.elemEnd])
			inner := strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(raw, "<"), "/>"))
			name := strings.Fields(inner)[0]
			out.WriteByte('<')
			out.WriteString(inner)
			out.WriteByte('>')
			xml.EscapeText(&out, []byte(r.newText))
			out.WriteString("</")
			out.WriteString(name)
			out.WriteByte('>')
			prev = r.elemEnd
			continue
		}
		out.Write(s.src[prev:r.contentStart])
		xml.EscapeText(&out, []byte(r.newText))
		prev = r.contentEnd
	}
	out.Write(s.src[prev:])
	return out.Bytes()
}
