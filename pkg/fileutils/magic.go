package fileutils

import (
	"bytes"
	"io"
	"os"

	"github.com/pkg/errors"
)

// Kind is a container format as identified by its leading bytes.
type Kind string

const (
	KindEPUB    Kind = "epub"
	KindPDF     Kind = "pdf"
	KindMOBI    Kind = "mobi"
	KindZIP     Kind = "zip"
	KindUnknown Kind = ""
)

// HeaderSize is how much of a file SniffFile reads.
const HeaderSize = 100

var (
	pdfMagic  = []byte("%PDF")
	zipMagic  = []byte("PK\x03\x04")
	epubMime  = []byte("application/epub+zip")
	mobiMagic = [][]byte{[]byte("BOOKMOBI"), []byte("TEXtREAd")}
)

// SniffHeader identifies the container format of header, which should hold
// the first HeaderSize bytes of a file.
func SniffHeader(header []byte) Kind {
	switch {
	case bytes.HasPrefix(header, pdfMagic):
		return KindPDF
	case bytes.HasPrefix(header, zipMagic):
		// EPUB requires an uncompressed "mimetype" entry first in the archive.
		if bytes.Contains(header, epubMime) {
			return KindEPUB
		}
		return KindZIP
	case isMOBI(header):
		return KindMOBI
	}
	return KindUnknown
}

// isMOBI looks for the Palm database type/creator in bytes 60 to 100.
func isMOBI(header []byte) bool {
	if len(header) <= 60 {
		return false
	}
	window := header[60:]
	if len(window) > HeaderSize-60 {
		window = window[:HeaderSize-60]
	}
	for _, magic := range mobiMagic {
		if bytes.Contains(window, magic) {
			return true
		}
	}
	return false
}

// SniffFile reads the first HeaderSize bytes of path and identifies them.
func SniffFile(path string) (Kind, error) {
	f, err := os.Open(path)
	if err != nil {
		return KindUnknown, errors.WithStack(err)
	}
	defer f.Close()

	header := make([]byte, HeaderSize)
	n, err := io.ReadFull(f, header)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return KindUnknown, errors.WithStack(err)
	}
	return SniffHeader(header[:n]), nil
}

// MatchesExtension reports whether a sniffed kind agrees with a file
// extension. A bare ZIP is accepted for .epub since some producers omit the
// mimetype entry.
func MatchesExtension(kind Kind, ext string) bool {
	switch ext {
	case "epub":
		return kind == KindEPUB || kind == KindZIP
	case "pdf":
		return kind == KindPDF
	case "mobi", "azw", "azw3":
		return kind == KindMOBI
	}
	return true
}
