package aggregate

import (
	"sort"

	"github.com/bibliothek/bibliothek/pkg/mediafile"
	"github.com/bibliothek/bibliothek/pkg/models"
)

// Consolidate folds every Book of the Work into the Work: stars are averaged,
// the description is picked by language preference, keyword and region sets
// are unioned, notes are joined and the genre is filled. stored holds the
// Book rows already attached to the Work; the aggregate's own Book takes the
// place of its stored row.
func (a *Aggregate) Consolidate(stored []*models.Book) {
	a.PrepareWork()
	books := a.memberBooks(stored)
	w := a.Work

	sum, n := 0, 0
	for _, b := range books {
		if b.Stars > 0 {
			sum += b.Stars
			n++
		}
	}
	if n > 0 {
		w.Stars = sum / n
	}

	if mediafile.IsEmptyValue(w.Description) {
		w.Description = pickDescription(books, a.AuthorLanguage())
	}

	keywords := w.Keywords.Union(nil)
	regions := w.Regions.Union(nil)
	for _, b := range books {
		keywords = keywords.Union(b.Keywords)
		regions = regions.Union(b.Regions)
	}
	w.Keywords = keywords
	w.Regions = regions

	if mediafile.IsEmptyValue(w.Genre) && !mediafile.IsEmptyValue(a.Book.Genre) {
		w.Genre = a.Book.Genre
	}

	notes := ""
	for _, b := range books {
		notes = AppendNote(notes, b.Notes)
	}
	w.Notes = notes

	if rating := meanRating(books); rating > 0 {
		w.Rating = rating
	}
}

// memberBooks returns the stored Books with the current one swapped in, in
// id order. A Book not stored yet comes last.
func (a *Aggregate) memberBooks(stored []*models.Book) []*models.Book {
	books := make([]*models.Book, 0, len(stored)+1)
	for _, b := range stored {
		if a.Book.ID != 0 && b.ID == a.Book.ID {
			continue
		}
		books = append(books, b)
	}
	sort.SliceStable(books, func(i, j int) bool { return books[i].ID < books[j].ID })
	if a.Book.ID != 0 {
		i := sort.Search(len(books), func(i int) bool { return books[i].ID > a.Book.ID })
		books = append(books[:i], append([]*models.Book{a.Book}, books[i:]...)...)
	} else {
		books = append(books, a.Book)
	}
	return books
}

// pickDescription searches the author's language first, then the supported
// languages in their fixed order, then anything left.
func pickDescription(books []*models.Book, authorLang string) string {
	order := []string{}
	if authorLang != "" {
		order = append(order, authorLang)
	}
	for _, lang := range models.Languages {
		if lang != authorLang {
			order = append(order, lang)
		}
	}

	for _, lang := range order {
		for _, b := range books {
			if b.Language == lang && !mediafile.IsEmptyValue(b.Description) {
				return b.Description
			}
		}
	}
	for _, b := range books {
		if !mediafile.IsEmptyValue(b.Description) {
			return b.Description
		}
	}
	return ""
}

func meanRating(books []*models.Book) float64 {
	sum, n := 0.0, 0
	for _, b := range books {
		for _, r := range []float64{b.RatingG, b.RatingOL} {
			if r > 0 {
				sum += r
				n++
			}
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// SyncSeriesName copies the Book's series name into the Series record: into
// the slot of the Book's language, and into the canonical name when the Book
// is in the author's language and canonical is true.
func (a *Aggregate) SyncSeriesName(canonical bool) {
	if a.Series == nil || a.Book.SeriesName == "" {
		return
	}
	if canonical && a.Book.Language != "" && a.Book.Language == a.AuthorLanguage() {
		a.Series.Name = a.Book.SeriesName
	}
	*a.Series.NameSlot(a.Book.Language) = a.Book.SeriesName
}
