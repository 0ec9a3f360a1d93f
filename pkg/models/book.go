package models

import (
	"path/filepath"
	"strings"

	"github.com/uptrace/bun"
)

// MissingPathPrefix marks a Book whose file vanished from disk. The row keeps
// a unique placeholder path so that path stays non-empty and unique.
const MissingPathPrefix = "missing:"

type Book struct {
	bun.BaseModel `bun:"table:books,alias:b" tstype:"-"`

	ID                  int       `bun:"id,pk,nullzero" json:"id"`
	WorkID              *int      `bun:"work_id" json:"work_id,omitempty"`
	Path                string    `bun:"path,notnull" json:"path"`
	Ext                 string    `bun:"ext" json:"ext"`
	Title               string    `bun:"title" json:"title"`
	SeriesName          string    `bun:"series_name" json:"series_name"`
	SeriesNumber        float64   `bun:"series_number" json:"series_number"`
	Genre               string    `bun:"genre" json:"genre"`
	Regions             StringSet `bun:"regions" json:"regions"`
	Keywords            StringSet `bun:"keywords" json:"keywords"`
	Stars               int       `bun:"stars" json:"stars"`
	RatingOL            float64   `bun:"rating_ol" json:"rating_ol"`
	RatingOLCount       int       `bun:"rating_ol_count" json:"rating_ol_count"`
	RatingG             float64   `bun:"rating_g" json:"rating_g"`
	RatingGCount        int       `bun:"rating_g_count" json:"rating_g_count"`
	IsComplete          bool      `bun:"is_complete" json:"is_complete"`
	IsManualDescription bool      `bun:"is_manual_description" json:"is_manual_description"`
	ScannerVersion      string    `bun:"scanner_version" json:"scanner_version"`
	ISBN                string    `bun:"isbn" json:"isbn"`
	Language            string    `bun:"language" json:"language"`
	ImagePath           string    `bun:"image_path" json:"image_path"`
	Year                string    `bun:"year" json:"year"`
	IsRead              bool      `bun:"is_read" json:"is_read"`
	Notes               string    `bun:"notes" json:"notes"`
	Description         string    `bun:"description" json:"description"`
}

// IsMissing reports whether the Book's file was recorded as gone.
func (b *Book) IsMissing() bool {
	return strings.HasPrefix(b.Path, MissingPathPrefix)
}

// Filename returns the base name of the Book's file.
func (b *Book) Filename() string {
	return filepath.Base(b.Path)
}

// HasSeries reports whether the Book carries a series name.
func (b *Book) HasSeries() bool {
	return b.SeriesName != ""
}
