package enrich

import (
	"context"
	"net/url"

	"github.com/bibliothek/bibliothek/pkg/aggregate"
	"github.com/bibliothek/bibliothek/pkg/htmlutil"
	"github.com/bibliothek/bibliothek/pkg/identifiers"
	"github.com/bibliothek/bibliothek/pkg/mediafile"
	"github.com/bibliothek/bibliothek/pkg/models"
	"github.com/bibliothek/bibliothek/pkg/personname"
)

// VolumeCatalog queries a Google Books style volumes endpoint.
type VolumeCatalog struct {
	client  *client
	baseURL string
	apiKey  string
}

func NewVolumeCatalog(baseURL, apiKey string, opts ...Option) *VolumeCatalog {
	c := applyOptions(opts)
	return &VolumeCatalog{client: c, baseURL: baseURL, apiKey: apiKey}
}

func (v *VolumeCatalog) Name() string { return models.DataSourceVolumeCatalog }

type volumesResponse struct {
	TotalItems int `json:"totalItems"`
	Items      []struct {
		VolumeInfo struct {
			Title               string   `json:"title"`
			Authors             []string `json:"authors"`
			PublishedDate       string   `json:"publishedDate"`
			Description         string   `json:"description"`
			Language            string   `json:"language"`
			Categories          []string `json:"categories"`
			AverageRating       float64  `json:"averageRating"`
			RatingsCount        int      `json:"ratingsCount"`
			IndustryIdentifiers []struct {
				Type       string `json:"type"`
				Identifier string `json:"identifier"`
			} `json:"industryIdentifiers"`
		} `json:"volumeInfo"`
	} `json:"items"`
}

// Query returns the search expression for agg: an ISBN lookup when the
// ISBN is known, a title and author search otherwise. Empty means there is
// nothing to search for.
func (v *VolumeCatalog) Query(agg *aggregate.Aggregate) string {
	if agg.Book.ISBN != "" {
		return "isbn:" + identifiers.NormalizeISBN(agg.Book.ISBN)
	}
	if agg.Book.Title == "" {
		return ""
	}
	q := "intitle:" + agg.Book.Title
	if names := agg.AuthorNames(); len(names) > 0 {
		q += " inauthor:" + names[0].Lastname
	}
	return q
}

func (v *VolumeCatalog) Enrich(ctx context.Context, agg *aggregate.Aggregate) (mediafile.Fields, Diagnostic) {
	diag := Diagnostic{Provider: v.Name()}
	fields := mediafile.Fields{}

	q := v.Query(agg)
	if q == "" {
		return fields, diag
	}
	params := url.Values{"q": {q}}
	if v.apiKey != "" {
		params.Set("key", v.apiKey)
	}

	var resp volumesResponse
	diag.Requests++
	if err := v.client.getJSON(ctx, v.baseURL+"/volumes?"+params.Encode(), &resp); err != nil {
		diag.Err = err
		return mediafile.Fields{}, diag
	}
	if len(resp.Items) == 0 {
		return fields, diag
	}
	diag.Found = true
	info := resp.Items[0].VolumeInfo

	var isbn13, isbn10 string
	for _, id := range info.IndustryIdentifiers {
		switch id.Type {
		case "ISBN_13":
			isbn13 = id.Identifier
		case "ISBN_10":
			isbn10 = id.Identifier
		}
	}
	if isbn := identifiers.Best(isbn13, isbn10); isbn != "" {
		fields[mediafile.KeyISBN] = isbn
	}
	if info.AverageRating > 0 {
		fields[mediafile.KeyRatingG] = info.AverageRating
		fields[mediafile.KeyRatingGCount] = info.RatingsCount
	}
	if desc := htmlutil.StripTags(info.Description); desc != "" {
		fields[mediafile.KeyDescription] = desc
	}
	if year := mediafile.NormalizeYear(info.PublishedDate); year != "" {
		fields[mediafile.KeyYear] = year
	}
	if lang, ok := models.LookupLanguage(info.Language); ok {
		fields[mediafile.KeyLanguage] = lang
	}
	if len(info.Categories) > 0 {
		fields[mediafile.KeyKeywords] = models.NewStringSet(info.Categories...)
	}
	var authors []personname.Name
	for _, a := range info.Authors {
		if n := personname.Parse(a); !n.IsZero() {
			authors = append(authors, n)
		}
	}
	if len(authors) > 0 {
		fields[mediafile.KeyAuthors] = authors
	}

	stripProtected(agg, fields)
	return fields, diag
}
