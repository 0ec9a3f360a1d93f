package library

import (
	"strings"

	"github.com/bibliothek/bibliothek/pkg/aggregate"
	"github.com/bibliothek/bibliothek/pkg/mediafile"
	"github.com/bibliothek/bibliothek/pkg/models"
	"github.com/bibliothek/bibliothek/pkg/personname"
)

// ApplyEdit enforces a user edit onto agg. Fields present in the payload
// overwrite whatever the scanners produced; a blank series name detaches the
// Book from its series.
func ApplyEdit(agg *aggregate.Aggregate, p UpdateBookPayload) {
	f := mediafile.Fields{}
	if p.Title != nil {
		f[mediafile.KeyTitle] = *p.Title
	}
	if len(p.Authors) > 0 {
		names := make([]personname.Name, 0, len(p.Authors))
		for _, a := range p.Authors {
			if n := personname.Parse(a); !n.IsZero() {
				names = append(names, n)
			}
		}
		f[mediafile.KeyAuthors] = names
	}
	if p.SeriesName != nil {
		if strings.TrimSpace(*p.SeriesName) == "" {
			agg.Book.SeriesName = ""
			agg.Book.SeriesNumber = 0
			agg.Series = nil
		} else {
			f[mediafile.KeySeriesName] = *p.SeriesName
		}
	}
	if p.SeriesNumber != nil {
		f[mediafile.KeySeriesIndex] = *p.SeriesNumber
	}
	if p.Year != nil {
		f[mediafile.KeyYear] = *p.Year
	}
	if p.Language != nil {
		f[mediafile.KeyLanguage] = *p.Language
	}
	if p.Genre != nil {
		f[mediafile.KeyGenre] = *p.Genre
	}
	agg.Enforce(f)

	b := agg.Book
	if p.Keywords != nil {
		b.Keywords = b.Keywords.Union(models.NewStringSet(p.Keywords...))
	}
	if p.Stars != nil {
		b.Stars = *p.Stars
	}
	if p.IsRead != nil {
		b.IsRead = *p.IsRead
	}
	if p.Notes != nil {
		b.Notes = strings.TrimSpace(*p.Notes)
	}
	if p.Description != nil {
		b.Description = strings.TrimSpace(*p.Description)
		b.IsManualDescription = b.Description != ""
	}
}
