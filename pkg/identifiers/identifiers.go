// Package identifiers normalizes and validates book identifiers.
package identifiers

import (
	"strings"
	"unicode"
)

// Type represents the type of identifier.
type Type string

const (
	TypeISBN10  Type = "isbn_10"
	TypeISBN13  Type = "isbn_13"
	TypeUnknown Type = ""
)

// DetectType classifies value as ISBN-10, ISBN-13 or unknown.
func DetectType(value string) Type {
	normalized := NormalizeISBN(value)
	switch {
	case len(normalized) == 13 && ValidateISBN13(normalized):
		return TypeISBN13
	case len(normalized) == 10 && ValidateISBN10(normalized):
		return TypeISBN10
	}
	return TypeUnknown
}

// NormalizeISBN removes hyphens, spaces, and common prefixes from an ISBN.
func NormalizeISBN(value string) string {
	value = strings.TrimPrefix(strings.ToUpper(strings.TrimSpace(value)), "URN:")
	value = strings.TrimPrefix(value, "ISBN:")
	value = strings.TrimPrefix(value, "ISBN")
	value = strings.TrimSpace(value)

	var result strings.Builder
	for _, r := range value {
		if unicode.IsDigit(r) || r == 'X' || r == 'x' {
			result.WriteRune(r)
		}
	}
	return strings.ToUpper(result.String())
}

// Canonical returns the ISBN-13 form of value, or "" if value is not a valid
// ISBN of either length.
func Canonical(value string) string {
	normalized := NormalizeISBN(value)
	switch DetectType(normalized) {
	case TypeISBN13:
		return normalized
	case TypeISBN10:
		return To13(normalized)
	}
	return ""
}

// Best picks the first candidate that is a valid ISBN-13, then the first
// valid ISBN-10 converted to 13 digits.
func Best(candidates ...string) string {
	for _, c := range candidates {
		if DetectType(c) == TypeISBN13 {
			return NormalizeISBN(c)
		}
	}
	for _, c := range candidates {
		if isbn := Canonical(c); isbn != "" {
			return isbn
		}
	}
	return ""
}

// To13 converts a valid ISBN-10 to ISBN-13 with the 978 prefix.
func To13(isbn10 string) string {
	isbn10 = NormalizeISBN(isbn10)
	if !ValidateISBN10(isbn10) {
		return ""
	}
	base := "978" + isbn10[:9]
	return base + string(rune('0'+isbn13CheckDigit(base)))
}

// To10 converts a 978-prefixed ISBN-13 back to ISBN-10.
func To10(isbn13 string) string {
	isbn13 = NormalizeISBN(isbn13)
	if !ValidateISBN13(isbn13) || !strings.HasPrefix(isbn13, "978") {
		return ""
	}
	base := isbn13[3:12]
	sum := 0
	for i, r := range base {
		sum += int(r-'0') * (10 - i)
	}
	check := (11 - sum%11) % 11
	if check == 10 {
		return base + "X"
	}
	return base + string(rune('0'+check))
}

func isbn13CheckDigit(first12 string) int {
	sum := 0
	for i, r := range first12 {
		digit := int(r - '0')
		if i%2 == 0 {
			sum += digit
		} else {
			sum += digit * 3
		}
	}
	return (10 - sum%10) % 10
}

// ValidateISBN10 validates an ISBN-10 checksum.
// ISBN-10 uses modulo 11 with weights 10,9,8,7,6,5,4,3,2,1.
func ValidateISBN10(isbn string) bool {
	if len(isbn) != 10 {
		return false
	}

	var sum int
	for i, r := range isbn {
		var digit int
		switch {
		case r == 'X' || r == 'x':
			if i != 9 {
				return false
			}
			digit = 10
		case unicode.IsDigit(r):
			digit = int(r - '0')
		default:
			return false
		}
		sum += digit * (10 - i)
	}
	return sum%11 == 0
}

// ValidateISBN13 validates an ISBN-13 checksum.
func ValidateISBN13(isbn string) bool {
	if len(isbn) != 13 {
		return false
	}
	for _, r := range isbn {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return isbn13CheckDigit(isbn[:12]) == int(isbn[12]-'0')
}
