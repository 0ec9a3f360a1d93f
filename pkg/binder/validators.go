package binder

import (
	"net/url"
	"regexp"

	"github.com/bibliothek/bibliothek/pkg/identifiers"
	"github.com/bibliothek/bibliothek/pkg/models"
	"github.com/go-playground/validator/v10"
)

var yearRE = regexp.MustCompile(`^\d{4}$`)

// The validators below accept the empty string so that a payload can clear a
// value. Add `ne=` to the tag when the field must not be cleared.

// languageValidator accepts any spelling LookupLanguage understands ("de",
// "Deutsch", "ger").
func languageValidator(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	_, ok := models.LookupLanguage(value)
	return ok
}

func isbnValidator(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	return identifiers.DetectType(value) != identifiers.TypeUnknown
}

func yearValidator(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	return yearRE.MatchString(value)
}

func urlValidator(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	u, err := url.Parse(value)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
