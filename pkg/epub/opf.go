package epub

import (
	"encoding/xml"
	"io"
	"net/url"
	"path"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// OPF is the subset of an OPF package document that feeds Book metadata.
type OPF struct {
	Title         string
	Creators      []Creator
	Subjects      []string
	Description   string
	Language      string
	Date          string
	Identifiers   []string
	Series        string
	SeriesIndex   *float64
	CoverFilepath string
	CoverMimeType string
}

// Creator is a dc:creator entry.
type Creator struct {
	Name   string
	FileAs string
	Role   string
}

type Package struct {
	XMLName  xml.Name `xml:"package"`
	Version  string   `xml:"version,attr"`
	Metadata struct {
		Title []struct {
			Text string `xml:",chardata"`
			ID   string `xml:"id,attr"`
		} `xml:"title"`
		Creator []struct {
			Text   string `xml:",chardata"`
			ID     string `xml:"id,attr"`
			Role   string `xml:"role,attr"`
			FileAs string `xml:"file-as,attr"`
		} `xml:"creator"`
		Subject     []string `xml:"subject"`
		Description string   `xml:"description"`
		Identifier  []struct {
			Text   string `xml:",chardata"`
			ID     string `xml:"id,attr"`
			Scheme string `xml:"scheme,attr"`
		} `xml:"identifier"`
		Date     []string `xml:"date"`
		Language []string `xml:"language"`
		Meta     []struct {
			Text     string `xml:",chardata"`
			Name     string `xml:"name,attr"`
			Content  string `xml:"content,attr"`
			Refines  string `xml:"refines,attr"`
			Property string `xml:"property,attr"`
		} `xml:"meta"`
	} `xml:"metadata"`
	Manifest struct {
		Item []struct {
			ID         string `xml:"id,attr"`
			Href       string `xml:"href,attr"`
			MediaType  string `xml:"media-type,attr"`
			Properties string `xml:"properties,attr"`
		} `xml:"item"`
	} `xml:"manifest"`
}

// ParseOPF reads the package document found at filename inside the archive.
// Manifest hrefs are resolved relative to filename.
func ParseOPF(filename string, r io.Reader) (*OPF, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	pkg := &Package{}
	if err := xml.Unmarshal(b, pkg); err != nil {
		return nil, errors.WithStack(err)
	}

	basePath := path.Dir(filename)

	// EPUB3 refinements keyed by element id, EPUB2 name/content pairs by name.
	metaProperties := map[string]map[string]string{}
	metaContent := map[string]string{}
	for _, m := range pkg.Metadata.Meta {
		if m.Refines != "" {
			key := strings.TrimPrefix(m.Refines, "#")
			if _, ok := metaProperties[key]; !ok {
				metaProperties[key] = map[string]string{}
			}
			metaProperties[key][m.Property] = strings.TrimSpace(m.Text)
		} else if m.Name != "" {
			metaContent[m.Name] = strings.TrimSpace(m.Content)
		} else if m.Property != "" {
			metaContent[m.Property] = strings.TrimSpace(m.Text)
		}
	}

	opf := &OPF{
		Description: strings.TrimSpace(pkg.Metadata.Description),
	}

	for _, t := range pkg.Metadata.Title {
		if t.ID != "" && metaProperties[t.ID]["title-type"] == "main" {
			opf.Title = strings.TrimSpace(t.Text)
			break
		}
	}
	if opf.Title == "" && len(pkg.Metadata.Title) > 0 {
		opf.Title = strings.TrimSpace(pkg.Metadata.Title[0].Text)
	}

	for _, creator := range pkg.Metadata.Creator {
		c := Creator{
			Name:   strings.TrimSpace(creator.Text),
			FileAs: strings.TrimSpace(creator.FileAs),
			Role:   creator.Role,
		}
		if props := metaProperties[creator.ID]; creator.ID != "" && props != nil {
			if c.Role == "" {
				c.Role = props["role"]
			}
			if c.FileAs == "" {
				c.FileAs = props["file-as"]
			}
		}
		if c.Name != "" {
			opf.Creators = append(opf.Creators, c)
		}
	}

	for _, s := range pkg.Metadata.Subject {
		if s = strings.TrimSpace(s); s != "" {
			opf.Subjects = append(opf.Subjects, s)
		}
	}
	for _, id := range pkg.Metadata.Identifier {
		if v := strings.TrimSpace(id.Text); v != "" {
			opf.Identifiers = append(opf.Identifiers, v)
		}
	}
	if len(pkg.Metadata.Date) > 0 {
		opf.Date = strings.TrimSpace(pkg.Metadata.Date[0])
	}
	if len(pkg.Metadata.Language) > 0 {
		opf.Language = strings.TrimSpace(pkg.Metadata.Language[0])
	}

	opf.Series = metaContent["calibre:series"]
	if opf.Series == "" {
		opf.Series = metaContent["belongs-to-collection"]
	}
	if idx := metaContent["calibre:series_index"]; idx != "" {
		if num, err := strconv.ParseFloat(idx, 64); err == nil {
			opf.SeriesIndex = &num
		}
	}

	// The cover reference is a manifest id in well-formed files, but some
	// producers put the href there instead.
	coverRef := metaContent["cover"]
	for _, item := range pkg.Manifest.Item {
		matches := coverRef != "" && (item.ID == coverRef || item.Href == coverRef)
		if !matches && coverRef == "" {
			matches = hasProperty(item.Properties, "cover-image")
		}
		if matches {
			opf.CoverFilepath = resolveHref(basePath, item.Href)
			opf.CoverMimeType = item.MediaType
			break
		}
	}

	return opf, nil
}

func hasProperty(properties, want string) bool {
	for _, p := range strings.Fields(properties) {
		if p == want {
			return true
		}
	}
	return false
}

func resolveHref(basePath, href string) string {
	if unescaped, err := url.PathUnescape(href); err == nil {
		href = unescaped
	}
	if basePath == "." || basePath == "" {
		return path.Clean(href)
	}
	return path.Clean(path.Join(basePath, href))
}
