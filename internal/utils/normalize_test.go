package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeContent(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"hello", "hello"},
		{"  hello  ", "hello"},
		{"a\r\nb\r\nc", "a\nb\nc"},
		{"\r\n  mixed \r\n", "mixed"},
		{"", ""},
		{"   \r\n  ", ""},
		{"keeps\ninternal\nnewlines", "keeps\ninternal\nnewlines"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeContent(tt.in))
	}
}

func TestCollapseWhitespace(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"a   title", "a title"},
		{"  padded  title  ", "padded title"},
		{"tabs\tand\nnewlines", "tabs and newlines"},
		{"single", "single"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CollapseWhitespace(tt.in))
	}
}

// Two submissions that normalize identically must compare equal, since
// that comparison decides whether an edit consumes a revision.
func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{"body\r\ntext", "  body\ntext  ", "body\ntext"}
	for _, in := range inputs {
		assert.Equal(t, "body\ntext", NormalizeContent(in))
		assert.Equal(t, NormalizeContent(in), NormalizeContent(NormalizeContent(in)))
	}
}
