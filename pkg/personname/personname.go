// Package personname splits author names into first and last name the way
// library catalogues do.
package personname

import (
	"strings"
)

// Name is an author's name split into its two stored halves.
type Name struct {
	Firstname string `json:"firstname"`
	Lastname  string `json:"lastname"`
}

// Full is "Firstname Lastname".
func (n Name) Full() string {
	return strings.TrimSpace(n.Firstname + " " + n.Lastname)
}

func (n Name) IsZero() bool {
	return n.Firstname == "" && n.Lastname == ""
}

// GenerationalSuffixes stay attached to the last name.
var GenerationalSuffixes = []string{
	"Jr.", "Jr", "Sr.", "Sr", "Junior", "Senior", "II", "III", "IV",
}

// AcademicSuffixes are dropped.
var AcademicSuffixes = []string{
	"PhD", "Ph.D", "Ph.D.", "MD", "M.D.", "Dr. phil.", "MBA", "M.A.", "B.A.", "Esq", "Esq.",
}

// Prefixes are honorifics that are dropped.
var Prefixes = []string{
	"Dr.", "Dr", "Prof.", "Prof", "Mr.", "Mrs.", "Ms.", "Sir", "Dame", "Lord", "Lady", "Herr", "Frau",
}

// Particles belong to the last name: "Ludwig van Beethoven" splits into
// "Ludwig" and "van Beethoven".
var Particles = []string{
	"van", "von", "vom", "zu", "de", "da", "di", "du", "del", "della", "der", "den", "la", "le", "el", "al", "bin", "ibn",
}

// Parse accepts both "Firstname Lastname" and the catalogue form
// "Lastname, Firstname".
func Parse(s string) Name {
	s = strings.Join(strings.Fields(s), " ")
	if strings.Count(s, ",") == 1 {
		parts := strings.SplitN(s, ",", 2)
		last, first := strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
		if last != "" && first != "" && !isGenerationalSuffix(first) {
			return FromSortForm(s)
		}
		s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	}
	return Split(s)
}

// FromSortForm parses "Lastname, Firstname [particles]".
func FromSortForm(s string) Name {
	parts := strings.SplitN(s, ",", 2)
	last := strings.TrimSpace(parts[0])
	if len(parts) == 1 {
		return Name{Lastname: last}
	}

	given := strings.Fields(parts[1])
	var particles []string
	for len(given) > 0 && isParticle(given[len(given)-1]) {
		particles = append([]string{given[len(given)-1]}, particles...)
		given = given[:len(given)-1]
	}
	if len(particles) > 0 {
		last = strings.Join(particles, " ") + " " + last
	}
	return Name{Firstname: strings.Join(given, " "), Lastname: last}
}

// Split parses "Firstname [particles] Lastname [suffix]".
func Split(full string) Name {
	parts := strings.Fields(full)
	if len(parts) == 0 {
		return Name{}
	}
	if len(parts) == 1 {
		return Name{Lastname: parts[0]}
	}

	for len(parts) > 1 && isPrefix(parts[0]) {
		parts = parts[1:]
	}

	var suffixes []string
	for len(parts) > 1 {
		last := parts[len(parts)-1]
		if isGenerationalSuffix(last) {
			suffixes = append([]string{strings.TrimSuffix(last, ",")}, suffixes...)
		} else if !isAcademicSuffix(last) {
			break
		}
		parts = parts[:len(parts)-1]
	}
	if len(parts) > 0 {
		parts[len(parts)-1] = strings.TrimSuffix(parts[len(parts)-1], ",")
	}

	lastParts := []string{parts[len(parts)-1]}
	given := parts[:len(parts)-1]
	for len(given) > 1 && isParticle(given[len(given)-1]) {
		lastParts = append([]string{given[len(given)-1]}, lastParts...)
		given = given[:len(given)-1]
	}
	lastParts = append(lastParts, suffixes...)

	return Name{
		Firstname: strings.Join(given, " "),
		Lastname:  strings.Join(lastParts, " "),
	}
}

func isPrefix(word string) bool {
	return containsFold(Prefixes, word)
}

func isGenerationalSuffix(word string) bool {
	return containsFold(GenerationalSuffixes, strings.TrimSuffix(word, ","))
}

func isAcademicSuffix(word string) bool {
	return containsFold(AcademicSuffixes, strings.TrimSuffix(word, ","))
}

// Particles are matched case-sensitively: "Van" at the start of a name is
// usually a first name.
func isParticle(word string) bool {
	for _, p := range Particles {
		if word == p {
			return true
		}
	}
	return false
}

func containsFold(list []string, word string) bool {
	for _, item := range list {
		if strings.EqualFold(item, word) {
			return true
		}
	}
	return false
}
