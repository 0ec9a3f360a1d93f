package models

import (
	"github.com/uptrace/bun"
)

type Series struct {
	bun.BaseModel `bun:"table:series,alias:s" tstype:"-"`

	ID     int    `bun:"id,pk,nullzero" json:"id"`
	Name   string `bun:"name,notnull" json:"name"`
	NameDE string `bun:"name_de" json:"name_de"`
	NameEN string `bun:"name_en" json:"name_en"`
	NameFR string `bun:"name_fr" json:"name_fr"`
	NameIT string `bun:"name_it" json:"name_it"`
	NameES string `bun:"name_es" json:"name_es"`
	Slug   string `bun:"slug,notnull" json:"slug"`
	Link   string `bun:"link" json:"link"`
	Notes  string `bun:"notes" json:"notes"`
}

// NameSlot returns the per-language name column for lang. Unknown or empty
// languages fall back to the English slot.
func (s *Series) NameSlot(lang string) *string {
	switch lang {
	case LanguageDE:
		return &s.NameDE
	case LanguageFR:
		return &s.NameFR
	case LanguageIT:
		return &s.NameIT
	case LanguageES:
		return &s.NameES
	}
	return &s.NameEN
}
