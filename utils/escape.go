package utils

import "html"

// EscapeHTML escapes markup-significant characters so generated text can be
// delivered inline with HTML parse mode enabled.
func EscapeHTML(s string) string {
	return html.EscapeString(s)
}
