// Package mediafile defines the field map every metadata source produces.
package mediafile

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/bibliothek/bibliothek/pkg/models"
	"github.com/bibliothek/bibliothek/pkg/personname"
)

// Field keys. Sources may only emit these.
const (
	KeyAuthors       = "authors"
	KeyTitle         = "title"
	KeySeriesName    = "series_name"
	KeySeriesIndex   = "series_index"
	KeyYear          = "year"
	KeyExt           = "ext"
	KeyLanguage      = "language"
	KeyGenre         = "genre"
	KeyRegions       = "regions"
	KeyKeywords      = "keywords"
	KeyISBN          = "isbn"
	KeyDescription   = "description"
	KeyNotes         = "notes"
	KeyImagePath     = "image_path"
	KeyRatingG       = "rating_g"
	KeyRatingGCount  = "rating_g_count"
	KeyRatingOL      = "rating_ol"
	KeyRatingOLCount = "rating_ol_count"
	// KeyRescuedPath is set by the extractor when a mislabelled file was
	// renamed on disk.
	KeyRescuedPath = "rescued_path"
)

// Fields is a partial set of Book attributes produced by one source. Values
// are string, float64, int, []personname.Name or models.StringSet.
type Fields map[string]any

func (f Fields) String(key string) string {
	switch v := f[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	}
	return ""
}

func (f Fields) Float(key string) float64 {
	switch v := f[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case string:
		n, _ := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(v), ",", "."), 64)
		return n
	}
	return 0
}

func (f Fields) Int(key string) int {
	return int(f.Float(key))
}

func (f Fields) Authors() []personname.Name {
	switch v := f[KeyAuthors].(type) {
	case []personname.Name:
		return v
	case personname.Name:
		return []personname.Name{v}
	case []string:
		out := make([]personname.Name, 0, len(v))
		for _, s := range v {
			if n := personname.Parse(s); !n.IsZero() {
				out = append(out, n)
			}
		}
		return out
	}
	return nil
}

// Set coerces the value under key into a StringSet. Strings are treated as
// comma-separated lists.
func (f Fields) Set(key string) models.StringSet {
	switch v := f[key].(type) {
	case models.StringSet:
		return v
	case []string:
		return models.NewStringSet(v...)
	case string:
		return models.ParseStringSet(v)
	}
	return models.StringSet{}
}

// Without returns a copy of f lacking keys.
func (f Fields) Without(keys ...string) Fields {
	out := make(Fields, len(f))
	for k, v := range f {
		out[k] = v
	}
	for _, k := range keys {
		delete(out, k)
	}
	return out
}

// Keys returns the populated keys in sorted order.
func (f Fields) Keys() []string {
	keys := make([]string, 0, len(f))
	for k, v := range f {
		if !IsEmptyValue(v) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

// IsEmptyValue implements the "empty" half of the merge rule: nil, empty
// strings, zero numbers, empty collections and placeholder author names all
// count as absent.
func IsEmptyValue(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		s := strings.TrimSpace(t)
		return s == "" || models.IsSentinelName(s)
	case float64:
		return t == 0
	case int:
		return t == 0
	case bool:
		return !t
	case models.StringSet:
		return len(t) == 0
	case []string:
		return len(t) == 0
	case personname.Name:
		return t.IsZero() || models.IsSentinelName(t.Full()) || models.IsSentinelName(t.Lastname)
	case []personname.Name:
		for _, n := range t {
			if !IsEmptyValue(n) {
				return false
			}
		}
		return true
	}
	return false
}

var yearPattern = regexp.MustCompile(`\b(\d{4})\b`)

// PlaceholderYear is what some tools write when the publication year is
// unknown. It is treated as absent.
const PlaceholderYear = "0101"

// NormalizeYear extracts the first four-digit year from s ("1997-06-26",
// "c. 1997"). Placeholder years yield "".
func NormalizeYear(s string) string {
	m := yearPattern.FindStringSubmatch(s)
	if m == nil || m[1] == PlaceholderYear || m[1] == "0000" {
		return ""
	}
	return m[1]
}
