package aggregate

import (
	"strings"

	"github.com/bibliothek/bibliothek/pkg/fileutils"
	"github.com/bibliothek/bibliothek/pkg/mediafile"
	"github.com/bibliothek/bibliothek/pkg/models"
)

// Merge overlays f onto the aggregate without overwriting: scalar fields are
// set only while empty, set-valued fields are unioned. Empty values in f are
// ignored, so merging an empty map is a no-op and merging the same map twice
// equals merging it once.
func (a *Aggregate) Merge(f mediafile.Fields) {
	a.apply(f, false)
}

// Enforce overlays f onto the aggregate, overwriting scalar fields with every
// non-empty value. Used for sources that have authority over others.
func (a *Aggregate) Enforce(f mediafile.Fields) {
	a.apply(f, true)
}

func (a *Aggregate) apply(f mediafile.Fields, force bool) {
	b := a.Book
	for _, key := range f.Keys() {
		switch key {
		case mediafile.KeyAuthors:
			if force || len(a.realAuthors()) == 0 {
				if names := f.Authors(); !mediafile.IsEmptyValue(names) {
					a.SetAuthors(names)
				}
			}
		case mediafile.KeyTitle:
			setString(&b.Title, f.String(key), force)
		case mediafile.KeySeriesName:
			setString(&b.SeriesName, f.String(key), force)
		case mediafile.KeySeriesIndex:
			setFloat(&b.SeriesNumber, fileutils.RoundSeriesIndex(f.Float(key)), force)
		case mediafile.KeyYear:
			setString(&b.Year, mediafile.NormalizeYear(f.String(key)), force)
		case mediafile.KeyExt:
			setString(&b.Ext, strings.ToLower(f.String(key)), force)
		case mediafile.KeyLanguage:
			if lang, ok := models.LookupLanguage(f.String(key)); ok {
				setString(&b.Language, lang, force)
			}
		case mediafile.KeyGenre:
			setString(&b.Genre, f.String(key), force)
		case mediafile.KeyRegions:
			b.Regions = b.Regions.Union(f.Set(key))
		case mediafile.KeyKeywords:
			b.Keywords = b.Keywords.Union(f.Set(key))
		case mediafile.KeyISBN:
			setString(&b.ISBN, f.String(key), force)
		case mediafile.KeyDescription:
			if !b.IsManualDescription {
				setString(&b.Description, f.String(key), force)
			}
		case mediafile.KeyNotes:
			b.Notes = AppendNote(b.Notes, f.String(key))
		case mediafile.KeyImagePath:
			setString(&b.ImagePath, f.String(key), force)
		case mediafile.KeyRatingG:
			setFloat(&b.RatingG, f.Float(key), force)
		case mediafile.KeyRatingGCount:
			setInt(&b.RatingGCount, f.Int(key), force)
		case mediafile.KeyRatingOL:
			setFloat(&b.RatingOL, f.Float(key), force)
		case mediafile.KeyRatingOLCount:
			setInt(&b.RatingOLCount, f.Int(key), force)
		}
	}
}

// NoteSeparator joins independent notes.
const NoteSeparator = " | "

// AppendNote adds note to notes unless it is already contained.
func AppendNote(notes, note string) string {
	note = strings.TrimSpace(note)
	switch {
	case note == "", strings.Contains(notes, note):
		return notes
	case strings.TrimSpace(notes) == "":
		return note
	}
	return notes + NoteSeparator + note
}

func setString(dst *string, v string, force bool) {
	if mediafile.IsEmptyValue(v) {
		return
	}
	if force || mediafile.IsEmptyValue(*dst) {
		*dst = strings.TrimSpace(v)
	}
}

func setFloat(dst *float64, v float64, force bool) {
	if v == 0 || v < 0 {
		return
	}
	if force || *dst == 0 {
		*dst = v
	}
}

func setInt(dst *int, v int, force bool) {
	if v <= 0 {
		return
	}
	if force || *dst == 0 {
		*dst = v
	}
}
