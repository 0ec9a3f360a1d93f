package pdf

import (
	"bytes"
	"context"
	"image/png"
	"testing"

	"github.com/bibliothek/bibliothek/internal/testgen"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPageCount(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := testgen.GeneratePDF(t, dir, "book.pdf", testgen.PDFOptions{PageCount: 3})

	n, err := PageCount(path)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestPageCount_NotAPDF(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := testgen.WriteFile(t, dir, "book.pdf", []byte("PK\x03\x04 definitely a zip"))

	_, err := PageCount(path)
	assert.Error(t, err)
}

func TestRenderFirstPage(t *testing.T) {
	if testing.Short() {
		t.Skip("starts the pdfium runtime")
	}
	dir := t.TempDir()
	path := testgen.GeneratePDF(t, dir, "book.pdf", testgen.PDFOptions{})

	r := NewRenderer()
	t.Cleanup(func() { _ = r.Close() })

	data, err := r.RenderFirstPage(context.Background(), path)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	// 200x300pt media box at 144 DPI
	assert.Equal(t, 400, img.Bounds().Dx())
	assert.Equal(t, 600, img.Bounds().Dy())
}

func TestRenderFirstPage_Cancelled(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewRenderer().RenderFirstPage(ctx, "irrelevant.pdf")
	assert.ErrorIs(t, err, context.Canceled)
}
