package ocr

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// typographic maps the punctuation OCR engines like to emit onto plain ASCII.
var typographic = strings.NewReplacer(
	"\u2018", "'", "\u2019", "'", "\u201a", "'", "\u201b", "'",
	"\u201c", `"`, "\u201d", `"`, "\u201e", `"`, "\u201f", `"`,
	"\u2010", "-", "\u2011", "-", "\u2012", "-", "\u2013", "-", "\u2014", "-",
	"\u00ad", "",
)

// PostProcess cleans recognized text: compatibility forms such as ligatures
// and full-width letters are decomposed (NFKC), typographic quotes and dashes
// become ASCII, and whitespace runs collapse to one space with the ends
// trimmed. When allowSpaces is false all spaces are removed.
func PostProcess(text string, allowSpaces bool) string {
	text = norm.NFKC.String(text)
	text = typographic.Replace(text)

	fields := strings.Fields(text)
	if allowSpaces {
		return strings.Join(fields, " ")
	}
	return strings.Join(fields, "")
}
