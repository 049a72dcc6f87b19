package scraper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"harvest/config"
)

func apuRules(t *testing.T) *Rules {
	t.Helper()
	r, err := NewRules(config.DefaultAPUSite().Rules)
	require.NoError(t, err)
	return r
}

func TestParseTitle(t *testing.T) {
	tests := []struct {
		title               string
		first, last, degree string
	}{
		{"Jane Doe, Ph.D.", "Jane", "Doe", "Ph.D."},
		{"Jane Q. Doe, Ph.D.", "Jane", "Doe", "Ph.D."},
		{"J. R. R. Tolkien, M.A.", "Tolkien", "Tolkien", "M.A."},
		{"Robert 'Bob' Smith, Ed.D., M.A.", "Robert", "Smith", "Ed.D.,M.A."},
		{"Maria (Lupe) Garcia, DMA", "Maria", "Garcia", "DMA"},
		{"Cher", "Cher", "Cher", ""},
		{"  Ann   Lee , MFA ", "Ann", "Lee", "MFA"},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			first, last, degree, err := ParseTitle(tt.title)
			require.NoError(t, err)
			assert.Equal(t, tt.first, first)
			assert.Equal(t, tt.last, last)
			assert.Equal(t, tt.degree, degree)
		})
	}
}

func TestParseTitle_Empty(t *testing.T) {
	_, _, _, err := ParseTitle(" , Ph.D.")
	assert.Error(t, err)
}

func TestDepartment(t *testing.T) {
	r := apuRules(t)

	tests := []struct {
		name     string
		texts    []string
		fallback []string
		want     string
	}{
		{
			name:  "middle line",
			texts: []string{"Professor", "Department of History and Political Science", "Azusa"},
			want:  "History and Political Science",
		},
		{
			name:  "last line",
			texts: []string{"Professor", "Department of Biology and Chemistry"},
			want:  "Biology and Chemistry",
		},
		{
			name:  "apostrophe prevents match",
			texts: []string{"Department of Children's Ministry"},
			want:  "",
		},
		{
			name:     "fallback when no match",
			texts:    []string{"Associate Professor"},
			fallback: []string{" Theology and Ethics "},
			want:     "Theology and Ethics",
		},
		{
			name: "nothing",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Department(tt.texts, tt.fallback))
		})
	}
}

func TestHighestEducation(t *testing.T) {
	r := apuRules(t)

	assert.Equal(t, "Ph.D., B", r.HighestEducation("Ph.D., B", "B.A., A"))
	assert.Equal(t, "Ph.D., B", r.HighestEducation("B.A., A", "Ph.D., B"))
	assert.Equal(t, "M.A., A", r.HighestEducation("M.A., A", "B.A., C"))
}

func TestParseEducation(t *testing.T) {
	r := apuRules(t)

	tests := []struct {
		line   string
		degree string
		school string
	}{
		{
			line:   "Ph.D. in History, University of California, Los Angeles, 2005",
			degree: "Ph.D.",
			school: "University of California, Los Angeles",
		},
		{
			line:   "Ph.D. - Theology - Fuller Theological Seminary, Pasadena, 2001",
			degree: "Ph.D.",
			school: "Fuller Theological Seminary, Pasadena",
		},
		{
			line:   "M.A., Biola University, 1999",
			degree: "M.A.",
			school: "Biola University",
		},
		{
			line:   "Ed.D., Educational Leadership, 2010",
			degree: "Ed.D.",
			school: "",
		},
		{
			line:   "MFA, Los Angeles, Otis College of Art and Design",
			degree: "MFA",
			school: "Otis College of Art and Design",
		},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			degree, school := r.ParseEducation(tt.line)
			assert.Equal(t, tt.degree, degree)
			assert.Equal(t, tt.school, school)
		})
	}
}

func TestNewRules_InvalidPattern(t *testing.T) {
	_, err := NewRules(config.SiteRules{DepartmentPattern: "("})
	assert.Error(t, err)
}

func TestRulePrecedence(t *testing.T) {
	var dept []string
	for _, r := range departmentRules {
		dept = append(dept, r.name)
	}
	assert.Equal(t, []string{"pattern below name", "department section"}, dept)

	var school []string
	for _, r := range schoolRules {
		school = append(school, r.name)
	}
	assert.Equal(t, []string{"skip years", "append location", "institution"}, school)
}
