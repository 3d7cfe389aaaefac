package trivia

import (
	"strings"

	"golang.org/x/net/html"
)

// CleanText flattens upstream clue text to plain text: markup such as
// <i>Hamlet</i> is dropped, entities are decoded, backslash-escaped
// quotes are unescaped and whitespace is collapsed.
func CleanText(s string) string {
	if s == "" {
		return ""
	}

	var b strings.Builder
	z := html.NewTokenizer(strings.NewReader(s))
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			break
		}
		if tt == html.TextToken {
			b.Write(z.Text())
		}
	}

	out := strings.NewReplacer(`\'`, `'`, `\"`, `"`).Replace(b.String())
	return strings.Join(strings.Fields(out), " ")
}
