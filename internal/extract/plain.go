package extract

import (
	"fmt"
	"unicode/utf8"
)

// extractPlain returns content as a string. Invalid UTF-8 is an extraction
// failure rather than a silent re-encode, so callers never index mojibake.
func extractPlain(content []byte) (string, error) {
	if !utf8.Valid(content) {
		return "", fmt.Errorf("%w: content is not valid UTF-8", ErrExtraction)
	}
	return string(content), nil
}
