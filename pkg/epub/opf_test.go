package epub

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOPF_Identifiers(t *testing.T) {
	t.Parallel()
	opfXML := `<?xml version="1.0" encoding="UTF-8"?>
<package xmlns="http://www.idpf.org/2007/opf" version="3.0">
  <metadata xmlns:dc="http://purl.org/dc/elements/1.1/" xmlns:opf="http://www.idpf.org/2007/opf">
    <dc:title>Test Book</dc:title>
    <dc:identifier opf:scheme="ISBN">978-0-316-76948-8</dc:identifier>
    <dc:identifier opf:scheme="ASIN">B08N5WRWNW</dc:identifier>
    <dc:identifier>urn:uuid:a1b2c3d4-e5f6-7890-abcd-ef1234567890</dc:identifier>
  </metadata>
</package>`

	opf, err := ParseOPF("test.opf", strings.NewReader(opfXML))
	require.NoError(t, err)

	assert.Equal(t, []string{
		"978-0-316-76948-8",
		"B08N5WRWNW",
		"urn:uuid:a1b2c3d4-e5f6-7890-abcd-ef1234567890",
	}, opf.Identifiers)
}

func TestParseOPF_MainTitleByTitleType(t *testing.T) {
	t.Parallel()
	opfXML := `<?xml version="1.0" encoding="UTF-8"?>
<package xmlns="http://www.idpf.org/2007/opf" version="3.0">
  <metadata xmlns:dc="http://purl.org/dc/elements/1.1/">
    <dc:title id="title-sub">Book One of the Stormlight Archive</dc:title>
    <dc:title id="title-main">The Way of Kings</dc:title>
    <meta refines="#title-main" property="title-type">main</meta>
    <meta refines="#title-sub" property="title-type">subtitle</meta>
  </metadata>
</package>`

	opf, err := ParseOPF("test.opf", strings.NewReader(opfXML))
	require.NoError(t, err)

	assert.Equal(t, "The Way of Kings", opf.Title)
}

func TestParseOPF_Creators(t *testing.T) {
	t.Parallel()
	opfXML := `<?xml version="1.0" encoding="UTF-8"?>
<package xmlns="http://www.idpf.org/2007/opf" version="3.0">
  <metadata xmlns:dc="http://purl.org/dc/elements/1.1/" xmlns:opf="http://www.idpf.org/2007/opf">
    <dc:title>Good Omens</dc:title>
    <dc:creator opf:role="aut" opf:file-as="Pratchett, Terry">Terry Pratchett</dc:creator>
    <dc:creator id="c2">Neil Gaiman</dc:creator>
    <meta refines="#c2" property="role">aut</meta>
    <meta refines="#c2" property="file-as">Gaiman, Neil</meta>
    <dc:creator opf:role="ill">Some Illustrator</dc:creator>
  </metadata>
</package>`

	opf, err := ParseOPF("test.opf", strings.NewReader(opfXML))
	require.NoError(t, err)

	require.Len(t, opf.Creators, 3)
	assert.Equal(t, Creator{Name: "Terry Pratchett", FileAs: "Pratchett, Terry", Role: "aut"}, opf.Creators[0])
	assert.Equal(t, Creator{Name: "Neil Gaiman", FileAs: "Gaiman, Neil", Role: "aut"}, opf.Creators[1])
	assert.Equal(t, "ill", opf.Creators[2].Role)
}

func TestParseOPF_CalibreSeries(t *testing.T) {
	t.Parallel()
	opfXML := `<?xml version="1.0" encoding="UTF-8"?>
<package xmlns="http://www.idpf.org/2007/opf" version="2.0">
  <metadata xmlns:dc="http://purl.org/dc/elements/1.1/">
    <dc:title>Der Stein der Weisen</dc:title>
    <meta name="calibre:series" content="Harry Potter"/>
    <meta name="calibre:series_index" content="1.5"/>
  </metadata>
</package>`

	opf, err := ParseOPF("test.opf", strings.NewReader(opfXML))
	require.NoError(t, err)

	assert.Equal(t, "Harry Potter", opf.Series)
	require.NotNil(t, opf.SeriesIndex)
	assert.InDelta(t, 1.5, *opf.SeriesIndex, 0.0001)
}

func TestParseOPF_CoverByID(t *testing.T) {
	t.Parallel()
	opfXML := `<?xml version="1.0" encoding="UTF-8"?>
<package xmlns="http://www.idpf.org/2007/opf" version="2.0">
  <metadata xmlns:dc="http://purl.org/dc/elements/1.1/">
    <meta name="cover" content="cover-img"/>
  </metadata>
  <manifest>
    <item id="chapter" href="text/ch1.xhtml" media-type="application/xhtml+xml"/>
    <item id="cover-img" href="../images/My%20Cover.jpeg" media-type="image/jpeg"/>
  </manifest>
</package>`

	opf, err := ParseOPF("OEBPS/content.opf", strings.NewReader(opfXML))
	require.NoError(t, err)

	assert.Equal(t, "images/My Cover.jpeg", opf.CoverFilepath)
	assert.Equal(t, "image/jpeg", opf.CoverMimeType)
}

func TestParseOPF_CoverByHref(t *testing.T) {
	t.Parallel()
	opfXML := `<?xml version="1.0" encoding="UTF-8"?>
<package xmlns="http://www.idpf.org/2007/opf" version="2.0">
  <metadata xmlns:dc="http://purl.org/dc/elements/1.1/">
    <meta name="cover" content="cover.png"/>
  </metadata>
  <manifest>
    <item id="img1" href="cover.png" media-type="image/png"/>
  </manifest>
</package>`

	opf, err := ParseOPF("content.opf", strings.NewReader(opfXML))
	require.NoError(t, err)

	assert.Equal(t, "cover.png", opf.CoverFilepath)
}

func TestParseOPF_CoverImageProperty(t *testing.T) {
	t.Parallel()
	opfXML := `<?xml version="1.0" encoding="UTF-8"?>
<package xmlns="http://www.idpf.org/2007/opf" version="3.0">
  <metadata xmlns:dc="http://purl.org/dc/elements/1.1/"/>
  <manifest>
    <item id="c" href="c.jpg" media-type="image/jpeg" properties="cover-image"/>
  </manifest>
</package>`

	opf, err := ParseOPF("OPS/package.opf", strings.NewReader(opfXML))
	require.NoError(t, err)

	assert.Equal(t, "OPS/c.jpg", opf.CoverFilepath)
}

func TestParseOPF_Malformed(t *testing.T) {
	t.Parallel()

	_, err := ParseOPF("test.opf", strings.NewReader("<package><metadata>"))
	assert.Error(t, err)
}
