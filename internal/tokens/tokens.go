// Package tokens substitutes placeholder tokens in template text.
//
// Two dialects are recognized. Curly tokens ({{KEY}}) are looked up in the
// field mapping by upper-cased key; unknown keys are left verbatim so missing
// data stays visible in the output. Legacy X-style tokens are fixed patterns
// of repeated literal X characters inherited from the original offer-letter
// template ({XXXXXX} for the name, eight bare X's for the position, a Spanish
// date skeleton, and X.XXX.XXX for the salary); those only substitute when
// the mapped value is non-empty.
package tokens

import (
	"fmt"
	"regexp"
	"strings"

	"offergen/internal/fields"
)

var (
	// {{ KEY }}; lowercase accepted in the key, upper-cased before lookup.
	curlyPat = regexp.MustCompile(`\{\{\s*([A-Za-z0-9_]+)\s*\}\}`)

	// XX de XXXXX de 2025, the "DD de <mes> de YYYY" skeleton.
	datePat = regexp.MustCompile(`\bX{2}\s+de\s+X{4,5}\s+de\s+\d{4}\b`)

	// X.XXX.XXX
	salaryPat = regexp.MustCompile(`\bX\.XXX\.XXX\b`)

	namePat = regexp.MustCompile(`\{X{6}\}`)
)

// cityLiteral is the trailing city line hard-coded in the legacy template.
// A paragraph that reduces to it becomes "<DATE>, <CITY>". Template-specific;
// new templates should carry explicit {{DATE}}/{{CITY}} tokens instead.
const cityLiteral = ", Buenos Aires"

// Resolve substitutes every recognized token in text using the mapping.
// Curly tokens are applied first so their output can feed the legacy pass.
// The input mapping is never modified.
func Resolve(text string, m fields.Mapping) string {
	out := curlyPat.ReplaceAllStringFunc(text, func(tok string) string {
		key := strings.ToUpper(curlyPat.FindStringSubmatch(tok)[1])
		if v, ok := m[key]; ok {
			return v
		}
		return tok
	})
	return applyXStyle(out, m)
}

// applyXStyle substitutes the four legacy patterns and the city line.
func applyXStyle(text string, m fields.Mapping) string {
	out := text
	if name := m["CANDIDATE_NAME"]; name != "" {
		out = namePat.ReplaceAllLiteralString(out, name)
	}
	if position := m["POSITION"]; position != "" {
		out = replacePositionRuns(out, position)
	}
	if joinDate := m["JOIN_DATE"]; joinDate != "" {
		out = datePat.ReplaceAllLiteralString(out, joinDate)
	}
	if salary := m["SALARY"]; salary != "" {
		out = salaryPat.ReplaceAllLiteralString(out, Thousands(salary))
	}

	if trimmed := strings.TrimSpace(out); trimmed == cityLiteral || strings.HasSuffix(trimmed, cityLiteral) {
		city, ok := m["CITY"]
		if !ok {
			city = "Buenos Aires"
		}
		if date := m["DATE"]; date != "" {
			return date + ", " + city
		}
		return city
	}
	return out
}

// replacePositionRuns replaces each occurrence of exactly eight consecutive
// X's that is not enclosed in braces. Within a longer run of X's, matching
// advances eight characters at a time from the left, so sixteen X's become
// two positions while seven or nine-in-braces stay untouched.
func replacePositionRuns(text, position string) string {
	var b strings.Builder
	n := len(text)
	prev := 0
	i := 0
	for i < n {
		if text[i] != 'X' {
			i++
			continue
		}
		runStart := i
		for i < n && text[i] == 'X' {
			i++
		}
		runEnd := i
		// Scan inside the maximal X-run the way a backtracking matcher
		// with (?<!\{)X{8}(?!\}) would.
		j := runStart
		for runEnd-j >= 8 {
			beforeOpenBrace := j == runStart && runStart > 0 && text[runStart-1] == '{'
			afterCloseBrace := j+8 == runEnd && runEnd < n && text[runEnd] == '}'
			if beforeOpenBrace || afterCloseBrace {
				j++
				continue
			}
			b.WriteString(text[prev:j])
			b.WriteString(position)
			j += 8
			prev = j
		}
	}
	if prev == 0 {
		return text
	}
	b.WriteString(text[prev:])
	return b.String()
}

// Thousands renders a numeric value with "." as the thousands separator
// (1500000 -> "1.500.000", the ARS convention the template uses). Every
// non-digit character is stripped first; if nothing remains the value is
// returned unchanged.
func Thousands(value any) string {
	s := fmt.Sprint(value)
	var digits strings.Builder
	for _, ch := range s {
		if ch >= '0' && ch <= '9' {
			digits.WriteRune(ch)
		}
	}
	if digits.Len() == 0 {
		return s
	}
	d := strings.TrimLeft(digits.String(), "0")
	if d == "" {
		d = "0"
	}
	return groupDots(d)
}

func groupDots(digits string) string {
	n := len(digits)
	if n <= 3 {
		return digits
	}
	var b strings.Builder
	head := n % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < n; i += 3 {
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
