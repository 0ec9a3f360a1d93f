// Package slugify derives the natural keys used for authors, series and works.
package slugify

import (
	"regexp"
	"strings"

	"github.com/bibliothek/bibliothek/pkg/personname"
	"github.com/gosimple/slug"
)

// gosimple/slug would spell out "&" and "@"; here they are plain separators.
var substitutions = strings.NewReplacer(
	"ä", "ae", "ö", "oe", "ü", "ue",
	"Ä", "Ae", "Ö", "Oe", "Ü", "Ue",
	"ß", "ss",
	"&", " ", "@", " ",
)

var dashRuns = regexp.MustCompile(`-{2,}`)

// Make lower-cases s, expands German umlauts, collapses every run of
// non-alphanumerics into one hyphen and trims hyphens at both ends.
func Make(s string) string {
	out := slug.Make(substitutions.Replace(s))
	out = strings.ReplaceAll(out, "_", "-")
	out = dashRuns.ReplaceAllString(out, "-")
	return strings.Trim(out, "-")
}

// Author returns the slug of "Firstname Lastname".
func Author(n personname.Name) string {
	return Make(n.Full())
}
