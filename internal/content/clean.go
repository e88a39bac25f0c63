package content

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	// charsPerMinute is tuned for Korean text density.
	charsPerMinute   = 500
	excerptMaxRunes  = 150
	truncationMarker = "..."
)

var (
	fencedCodeRe = regexp.MustCompile("```[\\s\\S]*?```")
	inlineCodeRe = regexp.MustCompile("`[^`]*`")
	linkRe       = regexp.MustCompile(`\[([^\]]*)\]\([^)]*\)`)
	punctRe      = regexp.MustCompile(`[#*_~>/\-|]`)
	htmlTagRe    = regexp.MustCompile(`<[^>]*>`)
	spaceRe      = regexp.MustCompile(`\s+`)
)

// stripMarkup applies the shared cleaning steps: fenced code, inline code,
// link syntax, markdown punctuation.
func stripMarkup(body string) string {
	s := fencedCodeRe.ReplaceAllString(body, "")
	s = inlineCodeRe.ReplaceAllString(s, "")
	s = linkRe.ReplaceAllString(s, "$1")
	return punctRe.ReplaceAllString(s, "")
}

// Clean returns the body with markup stripped and all whitespace removed.
// Its rune count is the document's character count.
func Clean(body string) string {
	return spaceRe.ReplaceAllString(stripMarkup(body), "")
}

// ExcerptText returns the body with markup and HTML tags stripped and
// whitespace runs collapsed to single spaces.
func ExcerptText(body string) string {
	s := htmlTagRe.ReplaceAllString(stripMarkup(body), "")
	return strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
}

// WordCount is the number of characters left after cleaning.
func WordCount(body string) int {
	return utf8.RuneCountInString(Clean(body))
}

// ReadingTime returns whole minutes at charsPerMinute, never less than 1.
func ReadingTime(body string) int {
	n := WordCount(body)
	minutes := (n + charsPerMinute - 1) / charsPerMinute
	if minutes < 1 {
		return 1
	}
	return minutes
}

// Excerpt derives a summary of at most excerptMaxRunes characters plus the
// truncation marker, cut back to the last space so words stay whole.
func Excerpt(body string) string {
	text := ExcerptText(body)
	runes := []rune(text)
	if len(runes) <= excerptMaxRunes {
		return text
	}
	truncated := string(runes[:excerptMaxRunes])
	if i := strings.LastIndex(truncated, " "); i > 0 {
		truncated = truncated[:i]
	}
	return truncated + truncationMarker
}
