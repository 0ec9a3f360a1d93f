package covers

import (
	"bytes"
	"image"
	"os"
	"path/filepath"
	"testing"

	"github.com/bibliothek/bibliothek/internal/testgen"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThumbnail_Downscales(t *testing.T) {
	t.Parallel()
	data := testgen.GenerateImage(t, "image/jpeg", 300, 900)

	out, ext, err := Thumbnail(data, 400)
	require.NoError(t, err)
	assert.Equal(t, ".jpg", ext)

	img, _, err := image.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 400, img.Bounds().Dy())
	assert.Equal(t, 133, img.Bounds().Dx())
}

func TestThumbnail_SmallImagePassesThrough(t *testing.T) {
	t.Parallel()
	data := testgen.GenerateImage(t, "image/png", 100, 150)

	out, ext, err := Thumbnail(data, 400)
	require.NoError(t, err)
	assert.Equal(t, ".png", ext)
	assert.Equal(t, data, out)
}

func TestThumbnail_DefaultHeight(t *testing.T) {
	t.Parallel()
	data := testgen.GenerateImage(t, "image/png", 500, 1000)

	out, _, err := Thumbnail(data, 0)
	require.NoError(t, err)

	img, _, err := image.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, DefaultMaxHeight, img.Bounds().Dy())
}

func TestThumbnail_NotAnImage(t *testing.T) {
	t.Parallel()

	_, _, err := Thumbnail([]byte("%PDF-1.4"), 400)
	assert.Error(t, err)
}

func TestWriteTemp(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	path, err := WriteTemp(dir, []byte("data"), ".png")
	require.NoError(t, err)

	assert.Equal(t, dir, filepath.Dir(path))
	assert.Equal(t, ".png", filepath.Ext(path))
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "data", string(content))
}
