// Package epub reads metadata and the cover image out of EPUB containers.
package epub

import (
	"archive/zip"
	"encoding/xml"
	"io"
	"path"
	"strings"

	"github.com/bibliothek/bibliothek/pkg/htmlutil"
	"github.com/bibliothek/bibliothek/pkg/identifiers"
	"github.com/bibliothek/bibliothek/pkg/mediafile"
	"github.com/bibliothek/bibliothek/pkg/models"
	"github.com/bibliothek/bibliothek/pkg/personname"
	"github.com/pkg/errors"
)

const containerPath = "META-INF/container.xml"

// Book is what Parse found in an EPUB.
type Book struct {
	OPF       *OPF
	CoverData []byte
	// CoverExt is the cover's extension including the dot, e.g. ".jpg".
	CoverExt string
}

type container struct {
	Rootfiles []struct {
		FullPath  string `xml:"full-path,attr"`
		MediaType string `xml:"media-type,attr"`
	} `xml:"rootfiles>rootfile"`
}

// Parse opens the EPUB at filePath, locates its package document through
// META-INF/container.xml and reads the metadata and cover.
func Parse(filePath string) (*Book, error) {
	zr, err := zip.OpenReader(filePath)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer zr.Close()

	files := map[string]*zip.File{}
	for _, f := range zr.File {
		files[f.Name] = f
	}

	opfPath, err := findRootfile(files)
	if err != nil {
		return nil, err
	}

	rc, err := files[opfPath].Open()
	if err != nil {
		return nil, errors.WithStack(err)
	}
	opf, err := ParseOPF(opfPath, rc)
	rc.Close()
	if err != nil {
		return nil, err
	}

	book := &Book{OPF: opf}
	if cover, ok := files[opf.CoverFilepath]; ok && opf.CoverFilepath != "" {
		data, err := readZipFile(cover)
		if err != nil {
			return nil, err
		}
		book.CoverData = data
		book.CoverExt = strings.ToLower(path.Ext(opf.CoverFilepath))
		if book.CoverExt == "" {
			book.CoverExt = ".jpg"
		}
	}

	return book, nil
}

// findRootfile follows container.xml, falling back to the first .opf in the
// archive when the container document is missing or broken.
func findRootfile(files map[string]*zip.File) (string, error) {
	if f, ok := files[containerPath]; ok {
		data, err := readZipFile(f)
		if err != nil {
			return "", err
		}
		c := &container{}
		if err := xml.Unmarshal(data, c); err == nil {
			for _, rf := range c.Rootfiles {
				if _, ok := files[rf.FullPath]; ok {
					return rf.FullPath, nil
				}
			}
		}
	}

	for name := range files {
		if strings.EqualFold(path.Ext(name), ".opf") {
			return name, nil
		}
	}
	return "", errors.New("no opf file found")
}

func readZipFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	return data, errors.WithStack(err)
}

// Fields converts the container metadata into the shared field map.
func (b *Book) Fields() mediafile.Fields {
	opf := b.OPF
	fields := mediafile.Fields{
		mediafile.KeyTitle: opf.Title,
		mediafile.KeyExt:   "epub",
	}

	if authors := b.authors(); len(authors) > 0 {
		fields[mediafile.KeyAuthors] = authors
	}
	if lang, ok := models.LookupLanguage(opf.Language); ok {
		fields[mediafile.KeyLanguage] = lang
	}
	if year := mediafile.NormalizeYear(opf.Date); year != "" {
		fields[mediafile.KeyYear] = year
	}
	if desc := htmlutil.StripTags(opf.Description); desc != "" {
		fields[mediafile.KeyDescription] = desc
	}
	if len(opf.Subjects) > 0 {
		fields[mediafile.KeyKeywords] = models.NewStringSet(opf.Subjects...)
	}
	if isbn := identifiers.Best(opf.Identifiers...); isbn != "" {
		fields[mediafile.KeyISBN] = isbn
	}
	if opf.Series != "" {
		fields[mediafile.KeySeriesName] = opf.Series
		if opf.SeriesIndex != nil {
			fields[mediafile.KeySeriesIndex] = *opf.SeriesIndex
		}
	}

	return fields
}

// authors keeps creators with role "aut", or every creator when none
// carries a role.
func (b *Book) authors() []personname.Name {
	creators := b.OPF.Creators
	hasRoles := false
	for _, c := range creators {
		if c.Role != "" {
			hasRoles = true
			break
		}
	}

	var names []personname.Name
	for _, c := range creators {
		if hasRoles && c.Role != "aut" {
			continue
		}
		var n personname.Name
		if strings.Contains(c.FileAs, ",") {
			n = personname.FromSortForm(c.FileAs)
		} else {
			n = personname.Parse(c.Name)
		}
		if !n.IsZero() {
			names = append(names, n)
		}
	}
	return names
}
