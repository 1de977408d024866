// Package extract provides text extraction from uploaded document files.
package extract

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnsupportedFormat is returned when the declared format is not one of the
// supported extensions. It is reported before the buffer is inspected.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// ErrExtraction is returned when a supported format cannot be parsed
// (corrupt container, invalid encoding, unreadable pages).
var ErrExtraction = errors.New("text extraction failed")

// SupportedExtensions lists the file extensions the extractor accepts.
var SupportedExtensions = []string{".pdf", ".docx", ".txt"}

// Extractor extracts plain text from document buffers.
type Extractor struct{}

// NewExtractor returns a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// ExtractBytes extracts text from content based on the given extension.
// ext should include the leading dot (e.g. ".pdf") and is matched
// case-insensitively. Formats other than .pdf, .docx, and .txt fail with
// ErrUnsupportedFormat without touching the buffer. Layout, tables, and
// images are not preserved; only visible text is returned.
func (e *Extractor) ExtractBytes(content []byte, ext string) (string, error) {
	switch strings.ToLower(ext) {
	case ".pdf":
		return extractPDF(content)
	case ".docx":
		return extractDOCX(content)
	case ".txt":
		return extractPlain(content)
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

// Supported reports whether ext is a supported extension.
func Supported(ext string) bool {
	ext = strings.ToLower(ext)
	for _, s := range SupportedExtensions {
		if ext == s {
			return true
		}
	}
	return false
}
