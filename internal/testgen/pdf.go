package testgen

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

// GeneratePDF writes a minimal, structurally valid PDF with blank pages.
func GeneratePDF(t *testing.T, dir, filename string, opts PDFOptions) string {
	t.Helper()

	path := filepath.Join(dir, filename)
	if err := os.WriteFile(path, PDFBytes(opts), 0600); err != nil {
		t.Fatalf("failed to write PDF file: %v", err)
	}
	return path
}

// PDFBytes builds the PDF document GeneratePDF writes. The cross-reference
// table carries real byte offsets so strict readers accept it.
func PDFBytes(opts PDFOptions) []byte {
	pages := opts.PageCount
	if pages <= 0 {
		pages = 1
	}

	// Object numbering: 1 catalog, 2 page tree, 3..3+pages-1 pages,
	// then one content stream per page.
	var objects []string
	objects = append(objects, "<< /Type /Catalog /Pages 2 0 R >>")

	kids := ""
	for i := 0; i < pages; i++ {
		kids += fmt.Sprintf("%d 0 R ", 3+i)
	}
	objects = append(objects, fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", kids, pages))

	for i := 0; i < pages; i++ {
		content := 3 + pages + i
		objects = append(objects, fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 200 300] /Contents %d 0 R /Resources << >> >>", content))
	}
	for i := 0; i < pages; i++ {
		stream := "0 0 1 rg 20 20 160 260 re f"
		objects = append(objects, fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(stream), stream))
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n%\xe2\xe3\xcf\xd3\n")

	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)

	return buf.Bytes()
}

// GenerateMislabelledPDF writes a PDF under a name carrying another
// extension, e.g. "foo.epub".
func GenerateMislabelledPDF(t *testing.T, dir, filename string) string {
	t.Helper()
	return GeneratePDF(t, dir, filename, PDFOptions{})
}
