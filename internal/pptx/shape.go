package pptx

// ShapeKind tags the variants of the shape union. Traversal dispatches on
// the tag; KindOther shapes (pictures, connectors) carry no text and are
// skipped by callers.
type ShapeKind int

const (
	KindText ShapeKind = iota
	KindTable
	KindGroup
	KindOther
)

// Shape is one placeable element on a slide. Exactly one of Text, Table or
// Children is populated, matching Kind.
type Shape struct {
	Kind     ShapeKind
	Text     *TextBody // KindText
	Table    *Table    // KindTable
	Children []*Shape  // KindGroup; nesting is unbounded
}

// TextBody is an ordered sequence of paragraphs inside a text-bearing shape
// or table cell.
type TextBody struct {
	Paragraphs []*Paragraph
}

// Paragraph holds the formatting runs whose texts concatenate to the
// paragraph's visible text. Fields are a:fld elements (slide numbers,
// auto-dates); they only matter when a paragraph has no regular runs.
type Paragraph struct {
	Runs   []*Run
	Fields []*Run
}

// Table is a row-major grid of cell text bodies.
type Table struct {
	Rows [][]*TextBody
}

// Run is a single a:t text node. It remembers where its text lives in the
// slide XML so an edit can be spliced back without re-marshaling anything
// else.
type Run struct {
	text string

	// Byte offsets into the slide source. contentStart/contentEnd bound
	// the character data between the a:t tags; elemStart/elemEnd bound the
	// whole element, used when the original tag was self-closing.
	contentStart int64
	contentEnd   int64
	elemStart    int64
	elemEnd      int64
	selfClosing  bool

	dirty   bool
	newText string
}

// Text returns the run's current text.
func (r *Run) Text() string {
	if r.dirty {
		return r.newText
	}
	return r.text
}

// SetText replaces the run's text. Setting the text it already has is a
// no-op, which keeps untouched slides byte-identical on re-serialization.
func (r *Run) SetText(s string) {
	if !r.dirty && s == r.text {
		return
	}
	r.dirty = true
	r.newText = s
}
