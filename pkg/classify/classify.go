// Package classify maps free-text keywords and descriptions onto a closed
// genre vocabulary and derives region tags.
package classify

import (
	"strings"

	"github.com/bibliothek/bibliothek/pkg/models"
)

// Unknown is the primary genre when no whitelisted term matched.
const Unknown = "Unknown"

// Label is a parsed rule label.
type Label struct {
	Core    string
	Details []string
}

// ParseLabel splits "Krimi (Regional/Alpen)" into its core and details.
func ParseLabel(s string) Label {
	s = strings.TrimSpace(s)
	open := strings.Index(s, "(")
	if open < 0 || !strings.HasSuffix(s, ")") {
		return Label{Core: s}
	}

	l := Label{Core: strings.TrimSpace(s[:open])}
	for _, d := range strings.Split(s[open+1:len(s)-1], "/") {
		if d = strings.TrimSpace(d); d != "" {
			l.Details = append(l.Details, d)
		}
	}
	return l
}

// IsWhitelisted reports whether core may serve as a primary genre.
func IsWhitelisted(core string) bool {
	for _, w := range Whitelist {
		if w == core {
			return true
		}
	}
	return false
}

// Corpus builds the lowercase search text from keywords and description.
func Corpus(keywords models.StringSet, description string) string {
	parts := append(keywords.Sorted(), description)
	return strings.ToLower(strings.Join(parts, " "))
}

// Classify returns the primary genre and the keywords the matched rules
// contribute.
func Classify(keywords models.StringSet, description string) (string, models.StringSet) {
	corpus := Corpus(keywords, description)
	primary := ""
	extras := models.StringSet{}

	for _, rule := range Rules {
		if !strings.Contains(corpus, rule.Term) {
			continue
		}
		label := ParseLabel(rule.Label)
		if !IsWhitelisted(label.Core) {
			extras.Add(label.Core)
			extras.Add(label.Details...)
			continue
		}

		if primary == "" {
			primary = label.Core
		} else if label.Core != primary {
			extras.Add(label.Core)
		}
		extras.Add(label.Details...)
	}

	if primary == "" {
		primary = Unknown
	}
	return primary, extras
}

// Regions returns the region tags whose terms occur in the corpus.
func Regions(keywords models.StringSet, description string) models.StringSet {
	corpus := Corpus(keywords, description)
	regions := models.StringSet{}
	for _, rule := range RegionTerms {
		if containsWord(corpus, rule.Term) {
			regions.Add(rule.Label)
		}
	}
	return regions
}

// containsWord matches term only at word boundaries so that short place
// names do not fire inside longer words.
func containsWord(corpus, term string) bool {
	for start := 0; ; {
		i := strings.Index(corpus[start:], term)
		if i < 0 {
			return false
		}
		i += start
		end := i + len(term)
		if (i == 0 || !isWordByte(corpus[i-1])) && (end == len(corpus) || !isWordByte(corpus[end])) {
			return true
		}
		start = i + 1
	}
}

func isWordByte(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= '0' && b <= '9' || b >= 0x80
}
