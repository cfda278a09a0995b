package normalize

import (
	"regexp"
	"strings"

	"github.com/gyeh/billcheck/internal/model"
)

// Labels that commonly prefix a code on extracted bill text.
var codeLabels = []string{"CPT", "HCPCS", "CODE:", "PROCEDURE:"}

var (
	validCode     = regexp.MustCompile(`^[A-Z0-9]{4,5}$`)
	modifierToken = regexp.MustCompile(`^[A-Z0-9]{2}$`)

	// Everything except alphanumerics, hyphen, and space is stripped
	// before splitting.
	punctuation = regexp.MustCompile(`[^A-Z0-9\- ]`)
)

// salvagePatterns are tried in order when direct parsing fails: prefer a
// 5-character alphanumeric run, then a 4-character one. Each rule is a
// standalone pure pattern so the fallback chain stays testable per rule.
var salvagePatterns = []*regexp.Regexp{
	regexp.MustCompile(`[A-Z0-9]{5}`),
	regexp.MustCompile(`[A-Z0-9]{4}`),
}

// Code parses an arbitrarily messy billing code string into a structured
// (code, modifier) pair. It never fails: total failure is represented by
// an empty Code, and RawInput is always preserved.
func Code(raw string) model.NormalizedCode {
	nc := model.NormalizedCode{RawInput: raw}

	s := strings.ToUpper(strings.TrimSpace(raw))
	s = stripLabels(s)
	s = punctuation.ReplaceAllString(s, "")
	s = strings.TrimSpace(s)
	if s == "" {
		return nc
	}

	code, modifier := splitCodeModifier(s)
	if validCode.MatchString(code) {
		nc.Code = code
		nc.Modifier = modifier
		return nc
	}

	for _, p := range salvagePatterns {
		if m := p.FindString(s); m != "" {
			nc.Code = m
			return nc
		}
	}
	return nc
}

// IsValidBillableCode reports whether a normalized code is a plausible
// 4-5 character alphanumeric billing code.
func IsValidBillableCode(code string) bool {
	return validCode.MatchString(code)
}

// stripLabels removes leading label tokens ("CPT 99213", "CODE: 99213")
// repeatedly, so stacked labels ("HCPCS CODE: J1100") also resolve.
func stripLabels(s string) string {
	for {
		stripped := s
		for _, label := range codeLabels {
			if strings.HasPrefix(stripped, label) {
				stripped = strings.TrimSpace(strings.TrimPrefix(stripped, label))
			}
		}
		if stripped == s {
			return s
		}
		s = stripped
	}
}

// splitCodeModifier splits on hyphen first, else whitespace, treating a
// trailing 2-character alphanumeric token as the modifier.
func splitCodeModifier(s string) (string, string) {
	var parts []string
	if strings.Contains(s, "-") {
		for _, p := range strings.Split(s, "-") {
			if p = strings.TrimSpace(p); p != "" {
				parts = append(parts, p)
			}
		}
	} else {
		parts = strings.Fields(s)
	}
	if len(parts) == 0 {
		return "", ""
	}
	if len(parts) >= 2 {
		last := parts[len(parts)-1]
		if modifierToken.MatchString(last) {
			return strings.Join(parts[:len(parts)-1], ""), last
		}
	}
	return strings.Join(parts, ""), ""
}
