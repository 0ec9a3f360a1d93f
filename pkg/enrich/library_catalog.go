package enrich

import (
	"context"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/bibliothek/bibliothek/pkg/aggregate"
	"github.com/bibliothek/bibliothek/pkg/htmlutil"
	"github.com/bibliothek/bibliothek/pkg/identifiers"
	"github.com/bibliothek/bibliothek/pkg/mediafile"
	"github.com/bibliothek/bibliothek/pkg/models"
	"github.com/segmentio/encoding/json"
)

// NotePrefix marks notes taken from the library catalog.
const NotePrefix = "[OpenLibrary] "

// minDescriptionLength is where an existing description stops being a stub
// that a catalog description may simply replace.
const minDescriptionLength = 40

// LibraryCatalog queries an Open Library style books and search API.
type LibraryCatalog struct {
	client  *client
	baseURL string
}

func NewLibraryCatalog(baseURL string, opts ...Option) *LibraryCatalog {
	return &LibraryCatalog{client: applyOptions(opts), baseURL: baseURL}
}

func (l *LibraryCatalog) Name() string { return models.DataSourceLibraryCatalog }

// textValue accepts both "text" and {"type": "/type/text", "value": "text"}.
type textValue string

func (t *textValue) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*t = textValue(s)
		return nil
	}
	var obj struct {
		Value string `json:"value"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	*t = textValue(obj.Value)
	return nil
}

type bookData struct {
	Title       string    `json:"title"`
	Description textValue `json:"description"`
	Notes       textValue `json:"notes"`
	Ratings     struct {
		Summary struct {
			Average float64 `json:"average"`
			Count   int     `json:"count"`
		} `json:"summary"`
	} `json:"ratings"`
}

type searchResponse struct {
	NumFound int `json:"numFound"`
	Docs     []struct {
		Title          string   `json:"title"`
		ISBN           []string `json:"isbn"`
		RatingsAverage float64  `json:"ratings_average"`
		RatingsCount   int      `json:"ratings_count"`
	} `json:"docs"`
}

func (l *LibraryCatalog) Enrich(ctx context.Context, agg *aggregate.Aggregate) (mediafile.Fields, Diagnostic) {
	diag := Diagnostic{Provider: l.Name()}
	fields := mediafile.Fields{}

	isbn := identifiers.NormalizeISBN(agg.Book.ISBN)
	if isbn == "" {
		if agg.Book.Title == "" {
			return fields, diag
		}
		params := url.Values{"title": {agg.Book.Title}, "limit": {"5"}}
		if names := agg.AuthorNames(); len(names) > 0 {
			params.Set("author", names[0].Lastname)
		}

		var search searchResponse
		diag.Requests++
		if err := l.client.getJSON(ctx, l.baseURL+"/search.json?"+params.Encode(), &search); err != nil {
			diag.Err = err
			return mediafile.Fields{}, diag
		}
		for _, doc := range search.Docs {
			if isbn = identifiers.Best(doc.ISBN...); isbn != "" {
				fields[mediafile.KeyISBN] = isbn
				if doc.RatingsAverage > 0 {
					fields[mediafile.KeyRatingOL] = doc.RatingsAverage
					fields[mediafile.KeyRatingOLCount] = doc.RatingsCount
				}
				break
			}
		}
		if isbn == "" {
			return fields, diag
		}
	}

	bibkey := "ISBN:" + isbn
	params := url.Values{"bibkeys": {bibkey}, "format": {"json"}, "jscmd": {"data"}}
	var details map[string]bookData
	diag.Requests++
	if err := l.client.getJSON(ctx, l.baseURL+"/api/books?"+params.Encode(), &details); err != nil {
		// What the search found is dropped with the rest.
		diag.Err = err
		return mediafile.Fields{}, diag
	}
	data, ok := details[bibkey]
	if !ok {
		return fields, diag
	}
	diag.Found = true

	if data.Ratings.Summary.Average > 0 {
		fields[mediafile.KeyRatingOL] = data.Ratings.Summary.Average
		fields[mediafile.KeyRatingOLCount] = data.Ratings.Summary.Count
	}

	desc := htmlutil.StripTags(string(data.Description))
	if desc == "" {
		return fields, diag
	}
	if hasDescription(agg) {
		if isSubstantial(agg.Book.Description) && !strings.Contains(agg.Book.Description, desc) {
			fields[mediafile.KeyNotes] = NotePrefix + desc
		}
	} else {
		fields[mediafile.KeyDescription] = desc
	}

	stripProtected(agg, fields)
	return fields, diag
}

func isSubstantial(description string) bool {
	return utf8.RuneCountInString(strings.TrimSpace(description)) >= minDescriptionLength
}
