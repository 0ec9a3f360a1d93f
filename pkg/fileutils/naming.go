package fileutils

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// AuthorSeparator splits the author block from the rest of a canonical
// filename. It is the only separator the filename parser accepts.
const AuthorSeparator = " — "

// AuthorJoiner joins several authors in a canonical filename.
const AuthorJoiner = " & "

// CanonicalNameOptions carries the Book attributes that make up a canonical
// filename.
type CanonicalNameOptions struct {
	Authors     []string
	SeriesName  string
	SeriesIndex float64
	Title       string
	Year        string
	Ext         string
}

var (
	invalidChars = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)
	yearPattern  = regexp.MustCompile(`^\d{4}$`)
)

// CanonicalName renders `<authors> — <series> <NN>-<title> (<year>).<ext>`.
// Series and year blocks are omitted when absent. ok is false when there is
// no author or no title to build a name from.
func CanonicalName(opts CanonicalNameOptions) (name string, ok bool) {
	var authors []string
	for _, a := range opts.Authors {
		if a = SanitizeComponent(a); a != "" {
			authors = append(authors, a)
		}
	}
	title := SanitizeComponent(opts.Title)
	if len(authors) == 0 || title == "" {
		return "", false
	}

	var b strings.Builder
	b.WriteString(strings.Join(authors, AuthorJoiner))
	b.WriteString(AuthorSeparator)
	if series := SanitizeComponent(opts.SeriesName); series != "" {
		b.WriteString(series)
		b.WriteString(" ")
		b.WriteString(FormatSeriesIndex(opts.SeriesIndex))
		b.WriteString("-")
	}
	b.WriteString(title)
	if yearPattern.MatchString(opts.Year) {
		b.WriteString(" (")
		b.WriteString(opts.Year)
		b.WriteString(")")
	}
	if ext := strings.TrimPrefix(strings.ToLower(opts.Ext), "."); ext != "" {
		b.WriteString(".")
		b.WriteString(ext)
	}

	return norm.NFC.String(b.String()), true
}

// RoundSeriesIndex rounds idx to the one decimal the filename can carry, so
// a stored index survives a rename round trip (12.25 -> 12.3).
func RoundSeriesIndex(idx float64) float64 {
	return math.Round(idx*10) / 10
}

// FormatSeriesIndex zero-pads whole indices to two digits (7 -> "07") and
// renders fractional ones as NNN.D (1.5 -> "001.5").
func FormatSeriesIndex(idx float64) string {
	if idx < 0 {
		idx = 0
	}
	idx = RoundSeriesIndex(idx)
	if idx == math.Trunc(idx) {
		return fmt.Sprintf("%02d", int(idx))
	}
	return fmt.Sprintf("%05.1f", idx)
}

// SanitizeComponent makes s safe as part of a filename: NFC normalization,
// no path or reserved characters, no em-dash (reserved for the author
// separator), single spaces and no leading or trailing dots.
func SanitizeComponent(s string) string {
	s = norm.NFC.String(s)
	s = strings.NewReplacer("“", "'", "”", "'", "„", "'", "—", "-").Replace(s)
	s = invalidChars.ReplaceAllString(s, "")
	s = strings.Join(strings.Fields(s), " ")
	s = strings.Trim(s, " .")

	if len(s) > 200 {
		s = strings.Trim(truncateRunes(s, 200), " .")
	}
	return s
}

// truncateRunes cuts s to at most n bytes without splitting a rune.
func truncateRunes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !isRuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}
