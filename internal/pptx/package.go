// Package pptx reads a PresentationML (.pptx) archive into a mutable
// in-memory model scoped to one render call. Only the text of runs is
// editable; everything else in the archive (formatting, positioning,
// images, unknown parts) round-trips byte for byte.
package pptx

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
)

var slidePartPat = regexp.MustCompile(`^ppt/slides/slide(\d+)\.xml$`)

type part struct {
	name string
	data []byte
}

// Package is an opened pptx archive. Slide parts are parsed into shape
// trees; all other parts are carried through untouched.
type Package struct {
	parts  []part
	slides []*Slide
	// index into parts for each slide, parallel to slides.
	slideParts []int
}

// Open parses the archive. It fails if the bytes are not a zip or the
// package is missing ppt/presentation.xml.
func Open(data []byte) (*Package, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("read pptx archive: %w", err)
	}

	p := &Package{}
	hasPresentation := false
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open part %s: %w", f.Name, err)
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("read part %s: %w", f.Name, err)
		}
		if f.Name == "ppt/presentation.xml" {
			hasPresentation = true
		}
		p.parts = append(p.parts, part{name: f.Name, data: content})
	}
	if !hasPresentation {
		return nil, fmt.Errorf("not a valid pptx file: missing ppt/presentation.xml")
	}

	// Parse slide parts in slide order.
	type slideRef struct {
		partIdx int
		num     int
	}
	var refs []slideRef
	for i, pt := range p.parts {
		m := slidePartPat.FindStringSubmatch(pt.name)
		if m == nil {
			continue
		}
		n, _ := strconv.Atoi(m[1])
		refs = append(refs, slideRef{partIdx: i, num: n})
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].num < refs[j].num })

	for _, ref := range refs {
		slide, err := parseSlide(p.parts[ref.partIdx].data)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", p.parts[ref.partIdx].name, err)
		}
		p.slides = append(p.slides, slide)
		p.slideParts = append(p.slideParts, ref.partIdx)
	}

	return p, nil
}

// Slides returns the parsed slides in presentation order.
func (p *Package) Slides() []*Slide {
	return p.slides
}

// Bytes serializes the package back to a pptx archive, committing any
// run-text edits made on the slides.
func (p *Package) Bytes() ([]byte, error) {
	for i, s := range p.slides {
		p.parts[p.slideParts[i]].data = s.Bytes()
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, pt := range p.parts {
		w, err := zw.Create(pt.name)
		if err != nil {
			return nil, fmt.Errorf("write part %s: %w", pt.name, err)
		}
		if _, err := w.Write(pt.data); err != nil {
			return nil, fmt.Errorf("write part %s: %w", pt.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("finalize pptx archive: %w", err)
	}
	return buf.Bytes(), nil
}
