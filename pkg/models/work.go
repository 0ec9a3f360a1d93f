package models

import (
	"github.com/uptrace/bun"
)

type Work struct {
	bun.BaseModel `bun:"table:works,alias:w" tstype:"-"`

	ID          int       `bun:"id,pk,nullzero" json:"id"`
	SeriesID    *int      `bun:"series_id" json:"series_id,omitempty"`
	SeriesIndex float64   `bun:"series_index" json:"series_index"`
	Title       string    `bun:"title" json:"title"`
	TitleDE     string    `bun:"title_de" json:"title_de"`
	TitleEN     string    `bun:"title_en" json:"title_en"`
	TitleFR     string    `bun:"title_fr" json:"title_fr"`
	TitleIT     string    `bun:"title_it" json:"title_it"`
	TitleES     string    `bun:"title_es" json:"title_es"`
	Slug        string    `bun:"slug" json:"slug"`
	Genre       string    `bun:"genre" json:"genre"`
	Regions     StringSet `bun:"regions" json:"regions"`
	Keywords    StringSet `bun:"keywords" json:"keywords"`
	Description string    `bun:"description" json:"description"`
	Rating      float64   `bun:"rating" json:"rating"`
	Stars       int       `bun:"stars" json:"stars"`
	Notes       string    `bun:"notes" json:"notes"`
}

// TitleSlot returns a pointer to the per-language title column for lang, or
// nil when lang is not one of the supported languages.
func (w *Work) TitleSlot(lang string) *string {
	switch lang {
	case LanguageDE:
		return &w.TitleDE
	case LanguageEN:
		return &w.TitleEN
	case LanguageFR:
		return &w.TitleFR
	case LanguageIT:
		return &w.TitleIT
	case LanguageES:
		return &w.TitleES
	}
	return nil
}

// WorkToAuthor is the link table between Works and Authors. Link order is
// the rowid order, which the save path keeps equal to the author order.
type WorkToAuthor struct {
	bun.BaseModel `bun:"table:work_to_author,alias:wta" tstype:"-"`

	WorkID   int `bun:"work_id,pk" json:"work_id"`
	AuthorID int `bun:"author_id,pk" json:"author_id"`
}
