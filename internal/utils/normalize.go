package utils

import (
	"strings"
)

// NormalizeContent trims surrounding whitespace and converts CRLF line
// endings to LF. Edits are compared against the stored value after
// normalization, so a whitespace-only change is treated as no change.
func NormalizeContent(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, "\r\n", "\n"))
}

// CollapseWhitespace trims a title and folds internal runs of
// whitespace into single spaces before length validation.
func CollapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
