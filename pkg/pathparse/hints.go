package pathparse

import (
	"path/filepath"
	"strings"

	"github.com/bibliothek/bibliothek/pkg/mediafile"
	"github.com/bibliothek/bibliothek/pkg/models"
	"golang.org/x/text/unicode/norm"
)

// Folder markers recognised in a Book's directory path.
const (
	FolderBusiness   = "Business"
	FolderByGenre    = "_byGenre"
	FolderByRegion   = "_byRegion"
	FolderLanguage   = "_Sprache"
	FolderEasyReader = "_Easy Reader"
)

// Genres enforced by folder markers.
const (
	GenreBusiness = "Sachbuch"
	GenreLanguage = "Sprachbuch"
)

// ParsePathHints derives language, genre, region and keyword hints from the
// directories above the file. The outermost language folder wins.
func ParsePathHints(path string) mediafile.Fields {
	dir := norm.NFC.String(filepath.Dir(filepath.Clean(path)))
	segments := splitSegments(dir)

	fields := mediafile.Fields{}
	keywords := models.StringSet{}
	regions := models.StringSet{}

	for i, seg := range segments {
		next := ""
		if i+1 < len(segments) {
			next = segments[i+1]
		}

		if _, ok := fields[mediafile.KeyLanguage]; !ok {
			if lang, ok := models.LookupLanguage(seg); ok && len(seg) > 3 {
				fields[mediafile.KeyLanguage] = lang
				continue
			}
		}

		switch seg {
		case FolderBusiness:
			fields[mediafile.KeyGenre] = GenreBusiness
			keywords.Add(segments[i+1:]...)
		case FolderByGenre:
			if next != "" {
				fields[mediafile.KeyGenre] = next
				keywords.Add(next)
			}
		case FolderByRegion:
			regions.Add(next)
		case FolderLanguage:
			fields[mediafile.KeyGenre] = GenreLanguage
		case FolderEasyReader:
			keywords.Add(next)
		}
	}

	if len(keywords) > 0 {
		fields[mediafile.KeyKeywords] = keywords
	}
	if len(regions) > 0 {
		fields[mediafile.KeyRegions] = regions
	}
	return fields
}

// Parse combines ParseFilename and ParsePathHints.
func Parse(path string) (filename, hints mediafile.Fields) {
	return ParseFilename(path), ParsePathHints(path)
}

func splitSegments(dir string) []string {
	var out []string
	for _, seg := range strings.Split(filepath.ToSlash(dir), "/") {
		if seg != "" && seg != "." {
			out = append(out, seg)
		}
	}
	return out
}
