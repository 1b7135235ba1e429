package parser

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// typographyReplacer folds the typographic substitutions PDF producers
// commonly emit: ligature glyphs, curly quotes, dashes, ellipsis, exotic
// spaces, and soft hyphens. All targets are plain ASCII so a second pass
// is a no-op.
var typographyReplacer = strings.NewReplacer(
	// Latin ligatures (U+FB00..U+FB06).
	"ﬀ", "ff",
	"ﬁ", "fi",
	"ﬂ", "fl",
	"ﬃ", "ffi",
	"ﬄ", "ffl",
	"ﬅ", "ft",
	"ﬆ", "st",
	// Single quotes.
	"‘", "'",
	"’", "'",
	"‚", "'",
	"‛", "'",
	// Double quotes.
	"“", `"`,
	"”", `"`,
	"„", `"`,
	"‟", `"`,
	// Dashes (figure dash through horizontal bar).
	"‒", "-",
	"–", "-",
	"—", "-",
	"―", "-",
	// Ellipsis.
	"…", "...",
	// Space variants.
	" ", " ",
	" ", " ",
	" ", " ",
	" ", " ",
	" ", " ",
	" ", " ",
	" ", " ",
	" ", " ",
	" ", " ",
	" ", " ",
	" ", " ",
	" ", " ",
	" ", " ",
	" ", " ",
	" ", " ",
	"　", " ",
	// Soft hyphens are line-break artifacts, not content.
	"­", "",
)

// Normalize canonicalizes raw extracted PDF text: typographic substitutions
// first, then NFKC to fold remaining compatibility forms, then ASCII control
// stripping. Newlines survive because the chunker needs them for paragraph
// detection. Total: always returns a string, possibly empty.
func Normalize(raw string) string {
	s := typographyReplacer.Replace(raw)
	s = norm.NFKC.String(s)
	return strings.Map(dropControl, s)
}

func dropControl(r rune) rune {
	if r == '\n' {
		return r
	}
	if r < 0x20 || r == 0x7f {
		return -1
	}
	return r
}
