// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package textclean normalizes prose extracted from encyclopedia pages.
package textclean

import "strings"

// Clean collapses newlines to spaces, trims the text, and removes every
// bracketed span such as "[১]" or "[সম্পাদনা]". Spans are matched left to
// right: each "[" pairs with the first "]" after it. An opening bracket
// with no closing bracket after it ends the scan, and the rest of the text
// is kept as is.
//
// Clean is idempotent and its output never contains a "[" followed later
// by a "]".
func Clean(text string) string {
	text = strings.TrimSpace(strings.ReplaceAll(text, "\n", " "))
	if !strings.Contains(text, "[") {
		return text
	}
	return strings.TrimSpace(stripBrackets(text))
}

// stripBrackets makes one pass over text. Each iteration either removes a
// span or stops, so the loop runs at most once per "[".
func stripBrackets(text string) string {
	var b strings.Builder
	b.Grow(len(text))

	rest := text
	for {
		start := strings.IndexByte(rest, '[')
		if start < 0 {
			b.WriteString(rest)
			break
		}
		end := strings.IndexByte(rest[start:], ']')
		if end < 0 {
			b.WriteString(rest)
			break
		}
		b.WriteString(rest[:start])
		rest = rest[start+end+1:]
	}
	return b.String()
}
