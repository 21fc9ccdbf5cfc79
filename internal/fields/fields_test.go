package fields

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormBuild(t *testing.T) {
	f := Form{
		CandidateName: "Juan Perez",
		Position:      "Software Engineer",
		Salary:        "1500000",
		JoinDate:      time.Date(2025, time.August, 22, 0, 0, 0, 0, time.UTC),
		OfferDate:     time.Date(2025, time.August, 8, 0, 0, 0, 0, time.UTC),
		City:          "Buenos Aires",
		Extras: map[string]string{
			"manager": "Sofía",
			"  ":      "dropped",
			"team":    "  Platform  ",
		},
	}

	m := f.Build()

	assert.Equal(t, "Juan Perez", m["CANDIDATE_NAME"])
	assert.Equal(t, "Software Engineer", m["POSITION"])
	assert.Equal(t, "1500000", m["SALARY"])
	assert.Equal(t, "22 de agosto de 2025", m["JOIN_DATE"])
	assert.Equal(t, "8 de agosto de 2025", m["DATE"])
	assert.Equal(t, "Buenos Aires", m["CITY"])

	// Extras are upper-cased, trimmed and blank keys dropped.
	assert.Equal(t, "Sofía", m["MANAGER"])
	assert.Equal(t, "Platform", m["TEAM"])
	assert.NotContains(t, m, "")
	assert.NotContains(t, m, "manager")
}

func TestFormBuild_ExtrasOverrideNamedFields(t *testing.T) {
	f := Form{
		CandidateName: "Juan Perez",
		Extras:        map[string]string{"candidate_name": "Ana López"},
	}
	assert.Equal(t, "Ana López", f.Build()["CANDIDATE_NAME"])
}

func TestSpanishDate(t *testing.T) {
	tests := []struct {
		in   time.Time
		want string
	}{
		{time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC), "1 de enero de 2025"},
		{time.Date(2025, time.August, 22, 0, 0, 0, 0, time.UTC), "22 de agosto de 2025"},
		{time.Date(2024, time.December, 31, 0, 0, 0, 0, time.UTC), "31 de diciembre de 2024"},
		{time.Date(2026, time.September, 9, 0, 0, 0, 0, time.UTC), "9 de septiembre de 2026"},
		{time.Time{}, ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SpanishDate(tt.in))
	}
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "Offer Letter - Juan Perez.pptx", Filename("Juan Perez", "pptx"))
	assert.Equal(t, "Offer Letter - Juan Perez.pptx", Filename("  Juan   Perez ", "pptx"))
	assert.Equal(t, "Offer Letter.pptx", Filename("", "pptx"))
	assert.Equal(t, "Offer Letter.docx", Filename("   ", "docx"))
	assert.Equal(t, "Offer Letter - Ana.docx", Filename("Ana", "docx"))
}
