package extract

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	"github.com/ledongthuc/pdf"
)

// extractPDF walks the page/text-run structure and concatenates every run's
// decoded string in page order then run order, separated by single spaces.
// The final result is trimmed.
func extractPDF(content []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("%w: open PDF: %v", ErrExtraction, err)
	}
	var parts []string
	numPages := r.NumPage()
	for i := 1; i <= numPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		for _, run := range page.Content().Text {
			s := decodeRun(run.S)
			if s == "" {
				continue
			}
			parts = append(parts, s)
		}
	}
	return strings.TrimSpace(strings.Join(parts, " ")), nil
}

// decodeRun percent-decodes a text run's string content. Malformed
// percent-encoding shows up in real PDFs, so decoding falls back in three
// tiers and never returns an error: strict unescape, then query unescape,
// then the raw string.
func decodeRun(s string) string {
	if decoded, err := url.PathUnescape(s); err == nil {
		return decoded
	}
	if decoded, err := url.QueryUnescape(s); err == nil {
		return decoded
	}
	return s
}
