package models

import "strings"

const (
	LanguageDE = "de"
	LanguageEN = "en"
	LanguageFR = "fr"
	LanguageIT = "it"
	LanguageES = "es"
)

// DefaultLanguage is what every language outside the supported set is
// coerced to.
const DefaultLanguage = LanguageDE

// Languages lists the supported languages in fallback order.
var Languages = []string{LanguageDE, LanguageEN, LanguageFR, LanguageES, LanguageIT}

var languageAliases = map[string]string{
	"de": LanguageDE, "deu": LanguageDE, "ger": LanguageDE, "german": LanguageDE, "deutsch": LanguageDE,
	"en": LanguageEN, "eng": LanguageEN, "english": LanguageEN, "englisch": LanguageEN,
	"fr": LanguageFR, "fra": LanguageFR, "franz": LanguageFR, "fre": LanguageFR, "french": LanguageFR, "französisch": LanguageFR, "franzoesisch": LanguageFR, "francais": LanguageFR, "français": LanguageFR,
	"it": LanguageIT, "ita": LanguageIT, "italien": LanguageIT, "italian": LanguageIT, "italienisch": LanguageIT, "italiano": LanguageIT,
	"es": LanguageES, "spa": LanguageES, "spanish": LanguageES, "spanisch": LanguageES, "español": LanguageES, "espanol": LanguageES,
}

// LookupLanguage maps a code or name ("en-US", "ger", "Deutsch") onto one of
// the supported languages. ok is false when nothing matches.
func LookupLanguage(s string) (string, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return "", false
	}
	if lang, ok := languageAliases[s]; ok {
		return lang, true
	}
	// Region-qualified tags such as en-US or pt_BR.
	if i := strings.IndexAny(s, "-_"); i > 0 {
		if lang, ok := languageAliases[s[:i]]; ok {
			return lang, true
		}
	}
	return "", false
}

// NormalizeLanguage coerces s into the supported set, falling back to
// DefaultLanguage.
func NormalizeLanguage(s string) string {
	if lang, ok := LookupLanguage(s); ok {
		return lang
	}
	return DefaultLanguage
}
