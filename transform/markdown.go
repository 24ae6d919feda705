package transform

import (
	"html"
	"strings"
)

// UnescapeHTML decodes HTML entities left in markdown by XML round trips.
func UnescapeHTML(s string) string {
	if !strings.Contains(s, "&") {
		return s
	}
	return html.UnescapeString(s)
}

// StructUnescapeHTML runs [UnescapeHTML] on every string field recursively.
func StructUnescapeHTML(v any) {
	stringFunc(v, UnescapeHTML)
}

// EscapeMarkdown flattens s onto one markdown line. Carriage returns become
// <br/> and newlines are dropped. With table set, pipes are escaped as
// &#124; so the text can sit inside a table cell.
func EscapeMarkdown(s string, table bool) string {
	s = strings.ReplaceAll(s, "\r", "<br/>")
	s = strings.ReplaceAll(s, "\n", "")
	if table {
		s = EscapePipe(s)
	}
	return s
}

// EscapePipe replaces | with its HTML entity.
func EscapePipe(s string) string {
	return strings.ReplaceAll(s, "|", "&#124;")
}
