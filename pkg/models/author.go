package models

import (
	"strings"

	"github.com/uptrace/bun"
)

type Author struct {
	bun.BaseModel `bun:"table:authors,alias:a" tstype:"-"`

	ID         int    `bun:"id,pk,nullzero" json:"id"`
	Firstname  string `bun:"firstname" json:"firstname"`
	Lastname   string `bun:"lastname" json:"lastname"`
	Slug       string `bun:"slug,notnull" json:"slug"`
	Language   string `bun:"language" json:"language"`
	Country    string `bun:"country" json:"country"`
	BirthYear  int    `bun:"birth_year" json:"birth_year"`
	BirthPlace string `bun:"birth_place" json:"birth_place"`
	BirthDate  string `bun:"birth_date" json:"birth_date"`
	ImagePath  string `bun:"image_path" json:"image_path"`
	Vita       string `bun:"vita" json:"vita"`
	IsFavorite bool   `bun:"is_favorite" json:"is_favorite"`
	LinkDE     string `bun:"link_de" json:"link_de"`
	LinkEN     string `bun:"link_en" json:"link_en"`
	LinkFR     string `bun:"link_fr" json:"link_fr"`
	LinkIT     string `bun:"link_it" json:"link_it"`
	LinkES     string `bun:"link_es" json:"link_es"`
}

// Author sentinels used by sources that have no real author to offer.
var AuthorSentinels = []string{"Unknown", "Unbekannt", "Kein Autor"}

// FullName is "Firstname Lastname", or whichever half is present.
func (a *Author) FullName() string {
	return strings.TrimSpace(a.Firstname + " " + a.Lastname)
}

// IsSentinel reports whether the author is a placeholder such as "Unknown".
func (a *Author) IsSentinel() bool {
	return IsSentinelName(a.FullName()) || IsSentinelName(a.Lastname)
}

// IsSentinelName reports whether s is one of the placeholder author names.
func IsSentinelName(s string) bool {
	s = strings.TrimSpace(s)
	for _, sentinel := range AuthorSentinels {
		if strings.EqualFold(s, sentinel) {
			return true
		}
	}
	return false
}
