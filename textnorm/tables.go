package textnorm

import (
	"regexp"
	"strings"
)

// TablesVersion identifies the revision of the correction tables below. The
// tables are pure data tuned against scanned waybills; bump the version when
// entries change so recognition differences can be traced to a table edit.
const TablesVersion = 4

// Rule is one regex rewrite applied to the whole text.
type Rule struct {
	Pattern *regexp.Regexp
	Replace string
}

// wordRecase rewrites standalone occurrences of a word to its canonical
// casing. Boundaries are spelled out as non-letter groups because RE2 word
// boundaries only understand ASCII; since the trailing group consumes a
// character, apply rescans from that character so a single separator can
// bound two adjacent occurrences.
type wordRecase struct {
	re   *regexp.Regexp
	word string
}

func recaseRule(word, canonical string) wordRecase {
	return wordRecase{
		re:   regexp.MustCompile(`(?i)(^|[^\pL])` + word + `([^\pL]|$)`),
		word: canonical,
	}
}

func (w wordRecase) apply(s string) string {
	var b strings.Builder
	for {
		loc := w.re.FindStringSubmatchIndex(s)
		if loc == nil {
			b.WriteString(s)
			return b.String()
		}
		b.WriteString(s[:loc[0]])
		b.WriteString(s[loc[2]:loc[3]])
		b.WriteString(w.word)
		s = s[loc[4]:]
	}
}

// keywordCorrections restore the canonical casing of waybill keywords that
// OCR tends to mangle.
var keywordCorrections = []wordRecase{
	recaseRule("транспортная", "ТРАНСПОРТНАЯ"),
	recaseRule("накладная", "НАКЛАДНАЯ"),
	recaseRule("грузоотправитель", "Грузоотправитель"),
	recaseRule("бортовой", "Бортовой"),
}

// homoglyphs maps Latin characters that Cyrillic OCR commonly emits onto the
// letters actually printed on the document. Digraphs go first so they win
// over their single-letter prefixes.
var homoglyphs = strings.NewReplacer(
	"rn", "п",
	"rp", "р",
	"c", "с",
	"o", "о",
	"a", "а",
	"e", "е",
	"p", "р",
	"x", "х",
	"y", "у",
	"A", "А",
	"B", "В",
	"C", "С",
	"E", "Е",
	"H", "Н",
	"K", "К",
	"M", "М",
	"O", "О",
	"P", "Р",
	"T", "Т",
	"X", "Х",
	"Y", "У",
)

var (
	junkChars = regexp.MustCompile("[~`@#$%^&*=+\\[\\]{}]")
	spaceRuns = regexp.MustCompile(`\s+`)
)

// contextualCorrections fix misreads that are only unambiguous in context:
// the numero sign, the Б/В confusion in document-number suffixes, and
// lowercase homoglyphs directly in front of a vehicle-plate shape. The plate
// rules use Cyrillic lowercase because the homoglyph table has already run.
var contextualCorrections = []Rule{
	{regexp.MustCompile(`\bN[eе][\s:]`), "№ "},
	{regexp.MustCompile(`\bNo[\s:]`), "№ "},
	{regexp.MustCompile(`\bNо[\s:]`), "№ "},
	{regexp.MustCompile(`(\d+)/В(\s|$)`), "${1}/Б${2}"},
	{regexp.MustCompile(`(\d+)/в(\s|$)`), "${1}/Б${2}"},
	{regexp.MustCompile(`(^|\s)а(\d{3}[А-ЯЁ]{1,2}\d{2,3})(\s|$)`), "${1}А${2}${3}"},
	{regexp.MustCompile(`(^|\s)о(\d{3}[А-ЯЁ]{1,2}\d{2,3})(\s|$)`), "${1}О${2}${3}"},
}

// orgFormCorrections recase the legal-form abbreviations that introduce a
// supplier name.
var orgFormCorrections = []wordRecase{
	recaseRule("ооо", "ООО"),
	recaseRule("зао", "ЗАО"),
	recaseRule("оао", "ОАО"),
}

// singleCharKeep lists the one-character tokens that are legitimate units or
// symbols on a waybill; every other one-character token is OCR debris.
var singleCharKeep = map[string]bool{
	"№": true,
	"г": true,
	"д": true,
	"с": true,
	"м": true,
	"т": true,
}
