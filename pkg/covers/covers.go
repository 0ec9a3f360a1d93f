// Package covers normalises cover images into bounded thumbnails.
package covers

import (
	"bytes"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"os"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/pkg/errors"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// DefaultMaxHeight bounds thumbnails when the caller passes no height.
const DefaultMaxHeight = 400

// Thumbnail returns data downscaled to at most maxHeight pixels high, and the
// extension (with dot) the result should be stored under. Images already
// small enough are passed through untouched. Formats other than JPEG and PNG
// are re-encoded as JPEG.
func Thumbnail(data []byte, maxHeight int) ([]byte, string, error) {
	if maxHeight <= 0 {
		maxHeight = DefaultMaxHeight
	}

	mime := mimetype.Detect(data)
	if !strings.HasPrefix(mime.String(), "image/") {
		return nil, "", errors.Errorf("not an image: %s", mime.String())
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", errors.WithStack(err)
	}

	ext := ".jpg"
	if mime.Is("image/png") {
		ext = ".png"
	}

	bounds := src.Bounds()
	if bounds.Dy() <= maxHeight {
		if mime.Is("image/jpeg") || mime.Is("image/png") {
			return data, ext, nil
		}
		out, err := encode(src, ext)
		return out, ext, err
	}

	width := bounds.Dx() * maxHeight / bounds.Dy()
	if width < 1 {
		width = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, width, maxHeight))
	draw.BiLinear.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)

	out, err := encode(dst, ext)
	return out, ext, err
}

func encode(img image.Image, ext string) ([]byte, error) {
	var buf bytes.Buffer
	var err error
	if ext == ".png" {
		err = png.Encode(&buf, img)
	} else {
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: 85})
	}
	return buf.Bytes(), errors.WithStack(err)
}

// WriteTemp stores data in a new temp file under dir (the system temp dir
// when empty) and returns its path. The caller owns the file.
func WriteTemp(dir string, data []byte, ext string) (string, error) {
	f, err := os.CreateTemp(dir, "cover-*"+ext)
	if err != nil {
		return "", errors.WithStack(err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", errors.WithStack(err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", errors.WithStack(err)
	}
	return f.Name(), nil
}
