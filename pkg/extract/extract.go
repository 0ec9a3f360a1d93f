// Package extract reads embedded metadata and a cover image out of ebook
// containers.
package extract

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/bibliothek/bibliothek/pkg/covers"
	"github.com/bibliothek/bibliothek/pkg/epub"
	"github.com/bibliothek/bibliothek/pkg/fileutils"
	"github.com/bibliothek/bibliothek/pkg/mediafile"
	"github.com/bibliothek/bibliothek/pkg/pdf"
	"github.com/robinjoseph08/golib/logger"
)

// Result is what an extraction produced. Fields is empty when the container
// could not be read. CoverPath, when set, is a temp file owned by the caller.
type Result struct {
	Fields    mediafile.Fields
	CoverPath string
}

// Cleanup removes the cover temp file.
func (r *Result) Cleanup() {
	if r.CoverPath != "" {
		os.Remove(r.CoverPath)
		r.CoverPath = ""
	}
}

// Rescued reports the new path when the file was renamed because its bytes
// contradicted its extension.
func (r *Result) Rescued() (string, bool) {
	p := r.Fields.String(mediafile.KeyRescuedPath)
	return p, p != ""
}

type Options struct {
	// Renderer renders PDF covers. PDFs get no cover when nil.
	Renderer pdf.Renderer
	// TempDir receives cover files. Empty means the system temp dir.
	TempDir         string
	ThumbnailHeight int
}

type Extractor struct {
	opts Options
}

func New(opts Options) *Extractor {
	return &Extractor{opts: opts}
}

// Extract never fails: unreadable containers produce an empty field map.
func (e *Extractor) Extract(ctx context.Context, path string) *Result {
	log := logger.FromContext(ctx).Data(logger.Data{"path": path})
	res := &Result{Fields: mediafile.Fields{}}

	switch strings.ToLower(strings.TrimPrefix(filepath.Ext(path), ".")) {
	case "epub":
		book, err := epub.Parse(path)
		if err == nil {
			res.Fields = book.Fields()
			if len(book.CoverData) > 0 {
				res.CoverPath = e.storeCover(ctx, book.CoverData)
			}
			return res
		}
		log.Err(err).Warn("unreadable epub")

		newPath, ok := e.rescue(ctx, path)
		if !ok {
			return res
		}
		res = e.extractPDF(ctx, newPath)
		res.Fields[mediafile.KeyRescuedPath] = newPath
		return res
	case "pdf":
		return e.extractPDF(ctx, path)
	}

	return res
}

// rescue renames a .epub whose bytes are really a PDF.
func (e *Extractor) rescue(ctx context.Context, path string) (string, bool) {
	log := logger.FromContext(ctx).Data(logger.Data{"path": path})

	kind, err := fileutils.SniffFile(path)
	if err != nil || kind != fileutils.KindPDF {
		return "", false
	}

	newPath, duplicate, err := fileutils.ChangeExtension(path, "pdf")
	if err != nil {
		log.Err(err).Error("rescue rename failed")
		return "", false
	}
	log.Info("renamed pdf masquerading as epub", logger.Data{"new_path": newPath, "duplicate": duplicate})
	return newPath, true
}

func (e *Extractor) extractPDF(ctx context.Context, path string) *Result {
	log := logger.FromContext(ctx).Data(logger.Data{"path": path})
	res := &Result{Fields: mediafile.Fields{mediafile.KeyExt: "pdf"}}

	if e.opts.Renderer == nil {
		return res
	}
	if _, err := pdf.PageCount(path); err != nil {
		log.Err(err).Warn("skipping pdf cover")
		return res
	}

	data, err := e.opts.Renderer.RenderFirstPage(ctx, path)
	if err != nil {
		log.Err(err).Warn("pdf cover render failed")
		return res
	}
	res.CoverPath = e.storeCover(ctx, data)
	return res
}

func (e *Extractor) storeCover(ctx context.Context, data []byte) string {
	log := logger.FromContext(ctx)

	thumb, ext, err := covers.Thumbnail(data, e.opts.ThumbnailHeight)
	if err != nil {
		log.Err(err).Warn("cover is not a usable image")
		return ""
	}
	path, err := covers.WriteTemp(e.opts.TempDir, thumb, ext)
	if err != nil {
		log.Err(err).Warn("failed to write cover")
		return ""
	}
	return path
}
