package sanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var policy = bluemonday.StrictPolicy()

// Text strips markup from free-form user input and normalizes whitespace
// within lines. Line breaks are kept.
func Text(s string) string {
	if s == "" {
		return s
	}

	cleaned := html.UnescapeString(policy.Sanitize(s))

	lines := strings.Split(cleaned, "\n")
	for i, line := range lines {
		lines[i] = strings.Join(strings.Fields(line), " ")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
