package scraper

import (
	"fmt"
	"regexp"
	"strings"

	"harvest/config"
)

var (
	middleInitials = regexp.MustCompile(`([A-Z]\.)+ `)
	nickname       = regexp.MustCompile(`([\(']\w*[\)']) `)
	hasDigits      = regexp.MustCompile(`\d+`)
	specialization = regexp.MustCompile(`^.+- `)
)

// Rules holds the compiled heuristics for reading one site's profile text.
type Rules struct {
	department     *regexp.Regexp
	terminalDegree *regexp.Regexp
	institution    *regexp.Regexp
	locationWords  int
	separatorFix   bool
}

func NewRules(cfg config.SiteRules) (*Rules, error) {
	r := &Rules{
		locationWords: cfg.LocationMaxWords,
		separatorFix:  cfg.DegreeSeparatorFix,
	}

	var err error
	if cfg.DepartmentPattern != "" {
		if r.department, err = regexp.Compile(cfg.DepartmentPattern); err != nil {
			return nil, fmt.Errorf("department pattern: %w", err)
		}
	}
	if cfg.TerminalDegree != "" {
		if r.terminalDegree, err = regexp.Compile(cfg.TerminalDegree); err != nil {
			return nil, fmt.Errorf("terminal degree pattern: %w", err)
		}
	}
	if len(cfg.InstitutionWords) > 0 {
		words := make([]string, len(cfg.InstitutionWords))
		for i, w := range cfg.InstitutionWords {
			words[i] = regexp.QuoteMeta(w)
		}
		r.institution = regexp.MustCompile(strings.Join(words, "|"))
	}

	return r, nil
}

// splitTrim splits s on commas and trims each piece.
func splitTrim(s string) []string {
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// CleanName removes middle initials and quoted or parenthesised nicknames.
func CleanName(name string) string {
	name = middleInitials.ReplaceAllString(name, "")
	return nickname.ReplaceAllString(name, "")
}

// ParseTitle reads a profile heading of the form "Name, Degree[, Degree...]".
// The degree is every piece after the name, comma-joined.
func ParseTitle(title string) (first, last, degree string, err error) {
	parts := splitTrim(title)
	words := strings.Fields(CleanName(parts[0]))
	if len(words) == 0 {
		return "", "", "", fmt.Errorf("no name in title %q", title)
	}
	return words[0], words[len(words)-1], strings.Join(parts[1:], ","), nil
}

// departmentRule yields a department from the text below the profile name
// or from the fallback section, reporting whether it applied.
type departmentRule struct {
	name  string
	apply func(r *Rules, texts, fallback []string) (string, bool)
}

// departmentRules run in order; the first that applies wins.
var departmentRules = []departmentRule{
	{"pattern below name", func(r *Rules, texts, _ []string) (string, bool) {
		if r.department == nil || len(texts) == 0 {
			return "", false
		}
		// Trailing separator so the last segment can match a pattern anchored on "|".
		joined := strings.Join(texts, "|") + "|"
		if m := r.department.FindStringSubmatch(joined); len(m) > 1 {
			return strings.TrimSpace(m[1]), true
		}
		return "", false
	}},
	{"department section", func(_ *Rules, _, fallback []string) (string, bool) {
		if len(fallback) == 0 {
			return "", false
		}
		return strings.TrimSpace(fallback[0]), true
	}},
}

// Department extracts the department name from the text below the profile
// name. When the pattern does not match, the first fallback text is used.
func (r *Rules) Department(texts, fallback []string) string {
	for _, rule := range departmentRules {
		if dept, ok := rule.apply(r, texts, fallback); ok {
			return dept
		}
	}
	return ""
}

// HighestEducation picks the line describing the highest degree. Most
// profiles list education newest first; a terminal degree on the last line
// means the list is oldest first.
func (r *Rules) HighestEducation(first, last string) string {
	if r.terminalDegree != nil && r.terminalDegree.MatchString(last) {
		return last
	}
	return first
}

type schoolState struct {
	school string
	found  bool
}

// pieceRule inspects one comma piece of an education line. A rule that
// returns true ends evaluation for that piece.
type pieceRule struct {
	name  string
	apply func(r *Rules, st *schoolState, piece string) bool
}

// schoolRules run in order for every piece after the degree.
var schoolRules = []pieceRule{
	{"skip years", func(_ *Rules, _ *schoolState, piece string) bool {
		return hasDigits.MatchString(piece)
	}},
	{"append location", func(r *Rules, st *schoolState, piece string) bool {
		if st.found && len(strings.Fields(piece)) <= r.locationWords {
			st.school = st.school + ", " + piece
		}
		return false
	}},
	{"institution", func(r *Rules, st *schoolState, piece string) bool {
		if r.institution != nil && r.institution.MatchString(piece) {
			st.school = specialization.ReplaceAllString(piece, "")
			st.found = true
		}
		return false
	}},
}

// ParseEducation splits an education line into degree and school. The degree
// is the first word of the first comma piece. The school is the last piece
// naming an institution, with any specialization prefix removed and short
// location pieces that follow it appended.
func (r *Rules) ParseEducation(line string) (degree, school string) {
	if r.separatorFix {
		line = strings.ReplaceAll(line, ". - ", ". , ")
	}

	parts := splitTrim(line)
	if fields := strings.Fields(parts[0]); len(fields) > 0 {
		degree = fields[0]
	}

	var st schoolState
	for _, piece := range parts[1:] {
		for _, rule := range schoolRules {
			if rule.apply(r, &st, piece) {
				break
			}
		}
	}

	return degree, st.school
}
