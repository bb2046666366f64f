package extract

import (
	"strings"
	"unicode/utf8"

	dErrors "credanchor/pkg/domain-errors"
)

// Text converts an uploaded document into plain text for extraction.
//
// Only plain-text formats are handled here. Binary formats (pdf, docx) are the
// job of an external text extractor; requests carrying them get a typed
// validation error naming the supported set instead of a heuristic attempt at
// binary parsing.
func Text(data []byte, format string) (string, error) {
	switch strings.ToLower(strings.TrimPrefix(format, ".")) {
	case "txt", "md":
		if !utf8.Valid(data) {
			return "", dErrors.New(dErrors.CodeValidation, "document is not valid UTF-8 text")
		}
		return string(data), nil
	default:
		return "", dErrors.New(dErrors.CodeValidation, "unsupported document format (supported: txt, md)")
	}
}
