// Package textnorm cleans raw OCR output of a waybill scan: whitespace and
// line noise, Latin/Cyrillic homoglyph confusions, and a handful of
// contextual misreads. The correction tables live in tables.go as versioned
// data so they can be tuned without touching control flow.
package textnorm

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var blankLineRuns = regexp.MustCompile(`\n+`)

// Clean collapses blank-line and whitespace runs and strips characters that
// are near-universally OCR noise. It is also the measure the transcription
// selector ranks candidates by.
func Clean(s string) string {
	// Noise characters go first so the spaces they leave behind collapse.
	s = strings.ReplaceAll(s, "|", "")
	s = strings.ReplaceAll(s, "\\", "")
	s = blankLineRuns.ReplaceAllString(s, "\n")
	s = spaceRuns.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// Normalize runs the full correction sequence over raw OCR text. It never
// fails; text with nothing to correct passes through unchanged.
func Normalize(s string) string {
	s = Clean(s)
	for _, r := range keywordCorrections {
		s = r.apply(s)
	}
	s = homoglyphs.Replace(s)
	s = junkChars.ReplaceAllString(s, "")
	s = spaceRuns.ReplaceAllString(s, " ")
	for _, r := range contextualCorrections {
		s = r.Pattern.ReplaceAllString(s, r.Replace)
	}
	for _, r := range orgFormCorrections {
		s = r.apply(s)
	}
	return dropDebrisTokens(s)
}

// dropDebrisTokens removes one-character tokens unless they are on the
// allow-list of legitimate units and symbols.
func dropDebrisTokens(s string) string {
	words := strings.Fields(s)
	kept := words[:0]
	for _, w := range words {
		if utf8.RuneCountInString(w) > 1 || singleCharKeep[w] {
			kept = append(kept, w)
		}
	}
	return strings.TrimSpace(strings.Join(kept, " "))
}
