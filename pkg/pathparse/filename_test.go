package pathparse

import (
	"testing"

	"github.com/bibliothek/bibliothek/pkg/mediafile"
	"github.com/bibliothek/bibliothek/pkg/personname"
	"github.com/stretchr/testify/assert"
)

func TestParseFilename(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		path     string
		expected mediafile.Fields
	}{
		{
			name: "full canonical name",
			path: "/lib/Deutsch/J.K. Rowling — Harry Potter 01-Der Stein der Weisen (1998).epub",
			expected: mediafile.Fields{
				mediafile.KeyExt:         "epub",
				mediafile.KeyAuthors:     []personname.Name{{Firstname: "J.K.", Lastname: "Rowling"}},
				mediafile.KeySeriesName:  "Harry Potter",
				mediafile.KeySeriesIndex: 1.0,
				mediafile.KeyTitle:       "Der Stein der Weisen",
				mediafile.KeyYear:        "1998",
			},
		},
		{
			name: "fractional series index",
			path: "Terry Pratchett — Scheibenwelt 01.5-Zwischenspiel.epub",
			expected: mediafile.Fields{
				mediafile.KeyExt:         "epub",
				mediafile.KeyAuthors:     []personname.Name{{Firstname: "Terry", Lastname: "Pratchett"}},
				mediafile.KeySeriesName:  "Scheibenwelt",
				mediafile.KeySeriesIndex: 1.5,
				mediafile.KeyTitle:       "Zwischenspiel",
			},
		},
		{
			name: "placeholder year is dropped but stripped from the title",
			path: "Stephen King — Es (0101).EPUB",
			expected: mediafile.Fields{
				mediafile.KeyExt:     "epub",
				mediafile.KeyAuthors: []personname.Name{{Firstname: "Stephen", Lastname: "King"}},
				mediafile.KeyTitle:   "Es",
			},
		},
		{
			name: "several authors",
			path: "Stephen King & Peter Straub — Der Talisman (1984).pdf",
			expected: mediafile.Fields{
				mediafile.KeyExt: "pdf",
				mediafile.KeyAuthors: []personname.Name{
					{Firstname: "Stephen", Lastname: "King"},
					{Firstname: "Peter", Lastname: "Straub"},
				},
				mediafile.KeyTitle: "Der Talisman",
				mediafile.KeyYear:  "1984",
			},
		},
		{
			name: "inverted author form",
			path: "King, Stephen — Es.epub",
			expected: mediafile.Fields{
				mediafile.KeyExt:     "epub",
				mediafile.KeyAuthors: []personname.Name{{Firstname: "Stephen", Lastname: "King"}},
				mediafile.KeyTitle:   "Es",
			},
		},
		{
			name: "no em-dash",
			path: "/lib/Stephen King - Es.epub",
			expected: mediafile.Fields{
				mediafile.KeyExt:   "epub",
				mediafile.KeyTitle: "Stephen King - Es",
			},
		},
		{
			name: "number without hyphen stays in the title",
			path: "Joseph Heller — Catch 22 (1961).epub",
			expected: mediafile.Fields{
				mediafile.KeyExt:     "epub",
				mediafile.KeyAuthors: []personname.Name{{Firstname: "Joseph", Lastname: "Heller"}},
				mediafile.KeyTitle:   "Catch 22",
				mediafile.KeyYear:    "1961",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, ParseFilename(tt.path))
		})
	}
}

func TestParseFilename_NFC(t *testing.T) {
	t.Parallel()

	fields := ParseFilename("Günter Grass — Die Blechtrommel.epub")
	assert.Equal(t, []personname.Name{{Firstname: "Günter", Lastname: "Grass"}}, fields.Authors())
}

func TestParseAuthors(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []personname.Name{
		{Firstname: "Stephen", Lastname: "King"},
		{Firstname: "Peter", Lastname: "Straub"},
	}, ParseAuthors("Stephen King, Peter Straub"))

	assert.Equal(t, []personname.Name{
		{Firstname: "J.K.", Lastname: "Rowling"},
		{Firstname: "Stephen", Lastname: "King"},
	}, ParseAuthors("Rowling, J.K. und King, Stephen"))

	assert.Equal(t, []personname.Name{
		{Firstname: "Stephen", Lastname: "King"},
		{Firstname: "Peter", Lastname: "Straub"},
	}, ParseAuthors("King, Stephen, Straub, Peter"))

	assert.Nil(t, ParseAuthors("  "))
}
