// Package pdf renders cover images from PDF files and checks that a file is
// a readable PDF document.
package pdf

import (
	"bytes"
	"context"
	"image/png"
	"os"
	"sync"
	"time"

	"github.com/klippa-app/go-pdfium"
	"github.com/klippa-app/go-pdfium/requests"
	"github.com/klippa-app/go-pdfium/webassembly"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pkg/errors"
)

// CoverDPI renders at twice the 72 DPI user-space resolution.
const CoverDPI = 144

const instanceTimeout = 30 * time.Second

// Renderer turns the first page of a PDF into a PNG image.
type Renderer interface {
	RenderFirstPage(ctx context.Context, path string) ([]byte, error)
	Close() error
}

// PdfiumRenderer renders through pdfium compiled to WebAssembly. The runtime
// is started on the first render.
type PdfiumRenderer struct {
	mu   sync.Mutex
	pool pdfium.Pool
}

func NewRenderer() *PdfiumRenderer {
	return &PdfiumRenderer{}
}

func (r *PdfiumRenderer) instance() (pdfium.Pdfium, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.pool == nil {
		pool, err := webassembly.Init(webassembly.Config{
			MinIdle:  1,
			MaxIdle:  1,
			MaxTotal: 1,
		})
		if err != nil {
			return nil, errors.Wrap(err, "failed to start pdfium")
		}
		r.pool = pool
	}

	instance, err := r.pool.GetInstance(instanceTimeout)
	return instance, errors.WithStack(err)
}

func (r *PdfiumRenderer) RenderFirstPage(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	instance, err := r.instance()
	if err != nil {
		return nil, err
	}
	defer instance.Close()

	doc, err := instance.OpenDocument(&requests.OpenDocument{File: &data})
	if err != nil {
		return nil, errors.Wrap(err, "failed to open pdf")
	}
	defer instance.FPDF_CloseDocument(&requests.FPDF_CloseDocument{Document: doc.Document}) //nolint:errcheck

	render, err := instance.RenderPageInDPI(&requests.RenderPageInDPI{
		DPI: CoverDPI,
		Page: requests.Page{
			ByIndex: &requests.PageByIndex{
				Document: doc.Document,
				Index:    0,
			},
		},
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to render first page")
	}
	defer render.Cleanup()

	var buf bytes.Buffer
	if err := png.Encode(&buf, render.Result.Image); err != nil {
		return nil, errors.WithStack(err)
	}
	return buf.Bytes(), nil
}

// Close shuts the WebAssembly runtime down if it was started.
func (r *PdfiumRenderer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.pool == nil {
		return nil
	}
	err := r.pool.Close()
	r.pool = nil
	return errors.WithStack(err)
}

// PageCount parses the document structure of the PDF at path and returns
// its number of pages. An error means the file is not a usable PDF.
func PageCount(path string) (int, error) {
	n, err := api.PageCountFile(path)
	if err != nil {
		return 0, errors.Wrapf(err, "unreadable pdf %s", path)
	}
	return n, nil
}
