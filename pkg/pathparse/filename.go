// Package pathparse reads Book metadata out of a file's name and the folders
// it lives in.
package pathparse

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/bibliothek/bibliothek/pkg/fileutils"
	"github.com/bibliothek/bibliothek/pkg/mediafile"
	"github.com/bibliothek/bibliothek/pkg/personname"
	"golang.org/x/text/unicode/norm"
)

var (
	yearSuffix = regexp.MustCompile(`\s*\((\d{4})\)\s*$`)
	// "<series> <index>-<title>", where the index is the first numeric token
	// directly followed by a hyphen.
	seriesPattern = regexp.MustCompile(`^(.+?)\s(\d+(?:[.,]\d+)?)-(.+)$`)
	// Author list separators, tried in this order.
	authorSeparators = []string{" & ", " und ", " et ", " and ", "; "}
)

// ParseFilename parses `<authors> — <series> <idx>-<title> (<year>).<ext>`.
// A name without the em-dash separator yields no authors and the whole stem
// as title.
func ParseFilename(path string) mediafile.Fields {
	base := norm.NFC.String(filepath.Base(path))
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	fields := mediafile.Fields{
		mediafile.KeyExt: strings.ToLower(strings.TrimPrefix(ext, ".")),
	}

	authorPart, rest, ok := strings.Cut(stem, fileutils.AuthorSeparator)
	if !ok {
		fields[mediafile.KeyTitle] = strings.TrimSpace(stem)
		return fields
	}

	if authors := ParseAuthors(authorPart); len(authors) > 0 {
		fields[mediafile.KeyAuthors] = authors
	}

	if m := yearSuffix.FindStringSubmatch(rest); m != nil {
		rest = rest[:len(rest)-len(m[0])]
		if year := mediafile.NormalizeYear(m[1]); year != "" {
			fields[mediafile.KeyYear] = year
		}
	}

	title := strings.TrimSpace(rest)
	if m := seriesPattern.FindStringSubmatch(title); m != nil {
		idx, err := strconv.ParseFloat(strings.Replace(m[2], ",", ".", 1), 64)
		if err == nil && idx >= 0 {
			fields[mediafile.KeySeriesName] = strings.TrimSpace(m[1])
			fields[mediafile.KeySeriesIndex] = idx
			title = strings.TrimSpace(m[3])
		}
	}
	fields[mediafile.KeyTitle] = title

	return fields
}

// ParseAuthors splits an author block into names. Both "Firstname Lastname"
// and "Lastname, Firstname" are understood; a comma only separates authors
// when it can't be the inverted form.
func ParseAuthors(s string) []personname.Name {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	parts := []string{s}
	for _, sep := range authorSeparators {
		var next []string
		for _, p := range parts {
			next = append(next, strings.Split(p, sep)...)
		}
		parts = next
	}

	var names []personname.Name
	for _, p := range parts {
		for _, token := range splitCommaList(p) {
			if n := personname.Parse(token); !n.IsZero() {
				names = append(names, n)
			}
		}
	}
	return names
}

// splitCommaList keeps "King, Stephen" together, pairs
// "King, Stephen, Straub, Peter" into two inverted names and splits
// "Stephen King, Peter Straub".
func splitCommaList(s string) []string {
	s = strings.TrimSpace(s)
	if !strings.Contains(s, ",") {
		return []string{s}
	}
	pieces := strings.Split(s, ",")
	if len(pieces) == 2 {
		left, right := strings.TrimSpace(pieces[0]), strings.TrimSpace(pieces[1])
		if len(strings.Fields(left)) == 1 || len(strings.Fields(right)) == 1 {
			return []string{s}
		}
	}
	out := make([]string, 0, len(pieces))
	for _, p := range pieces {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) > 2 && len(out)%2 == 0 && allSingleWords(out) {
		paired := make([]string, 0, len(out)/2)
		for i := 0; i < len(out); i += 2 {
			paired = append(paired, out[i]+", "+out[i+1])
		}
		return paired
	}
	return out
}

func allSingleWords(pieces []string) bool {
	for _, p := range pieces {
		if len(strings.Fields(p)) != 1 {
			return false
		}
	}
	return true
}
