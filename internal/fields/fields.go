// Package fields builds the key/value mapping that drives one offer-letter
// generation and owns the Spanish date and output-filename conventions.
package fields

import (
	"fmt"
	"strings"
	"time"
)

// Mapping is the field-name -> value dictionary for a single generation.
// Keys are upper-case. A key that is present with an empty value is a valid
// curly-token substitution; legacy tokens additionally require a non-empty
// value before they substitute.
type Mapping map[string]string

// Form carries the raw values collected from the caller (HTTP form, CLI
// flags). Dates are calendar dates; Build formats them.
type Form struct {
	CandidateName string
	Position      string
	Salary        string
	JoinDate      time.Time
	OfferDate     time.Time
	City          string

	// Extras are additional placeholder keys. Keys are upper-cased and
	// blank keys are dropped; extras are merged last, so a re-declared
	// named field takes the extra's value.
	Extras map[string]string
}

// Build assembles the mapping for one generation request.
func (f Form) Build() Mapping {
	m := Mapping{
		"CANDIDATE_NAME": f.CandidateName,
		"POSITION":       f.Position,
		"SALARY":         f.Salary,
		"JOIN_DATE":      SpanishDate(f.JoinDate),
		"DATE":           SpanishDate(f.OfferDate),
		"CITY":           f.City,
	}
	for k, v := range f.Extras {
		k = strings.ToUpper(strings.TrimSpace(k))
		if k == "" {
			continue
		}
		m[k] = strings.TrimSpace(v)
	}
	return m
}

var spanishMonths = [12]string{
	"enero", "febrero", "marzo", "abril", "mayo", "junio",
	"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre",
}

// SpanishDate renders d as "D de <mes> de YYYY". The zero time renders as
// the empty string so an unset date never substitutes a legacy token.
func SpanishDate(d time.Time) string {
	if d.IsZero() {
		return ""
	}
	return fmt.Sprintf("%d de %s de %d", d.Day(), spanishMonths[int(d.Month())-1], d.Year())
}

// Filename returns the suggested output filename for a rendered letter.
// Whitespace runs inside the candidate name are collapsed; an empty name
// yields the bare "Offer Letter" form. ext is passed without the dot.
func Filename(candidateName, ext string) string {
	name := strings.Join(strings.Fields(candidateName), " ")
	if name == "" {
		return "Offer Letter." + ext
	}
	return "Offer Letter - " + name + "." + ext
}
