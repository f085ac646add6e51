// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package slug turns titles and file names into lowercase ASCII slugs, so
// "Les Misérables" becomes "les-miserables". Cover names use them as a
// readable prefix.
package slug

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// From folds accents, lowercases and joins runs of anything other than
// [a-z0-9] with a single hyphen. Characters with no ASCII base, such as
// CJK, are treated as separators.
func From(s string) string {
	folded, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), s)
	if err != nil {
		folded = s
	}

	var b strings.Builder
	b.Grow(len(folded))
	pendingHyphen := false

	for _, r := range strings.ToLower(folded) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
			continue
		}
		pendingHyphen = true
	}
	return b.String()
}

// Truncate cuts a slug to at most maxLen bytes without leaving a trailing
// hyphen.
func Truncate(slug string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	if len(slug) > maxLen {
		slug = slug[:maxLen]
	}
	return strings.TrimRight(slug, "-")
}
