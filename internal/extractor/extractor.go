// Package extractor pulls literal text out of raw statement document bytes.
//
// It is a best-effort byte-stream extractor, not a PDF renderer: it scans for
// the string regions that text-showing operators reference and concatenates
// whatever it can recover. Statements whose text lives only in compressed
// content streams yield partial or empty output; downstream stages surface
// that as "no transactions found" rather than a hard failure here.
package extractor

import (
	"bytes"
	"strings"
)

// MediaType is the declared type of an uploaded statement document.
type MediaType string

const (
	MediaPDF         MediaType = "pdf"
	MediaSpreadsheet MediaType = "spreadsheet"
)

// Supported reports whether a media type is one the extractor understands.
func Supported(m MediaType) bool {
	return m == MediaPDF || m == MediaSpreadsheet
}

// Strategy is one way of recovering text from a document byte buffer.
// Extract never fails; it returns whatever text it could recover, possibly
// an empty string.
type Strategy interface {
	Name() string
	Extract(data []byte) string
}

// StrategiesFor picks the extraction order from the document signature.
// Three PDF shapes occur in practice: statements whose text sits in BT/ET
// text objects, statements with bare parenthesis literals outside any text
// object, and well-formed files the structured library can walk. Spreadsheet
// exports are plain text underneath and need only a permissive decode.
func StrategiesFor(data []byte, media MediaType) []Strategy {
	if media == MediaSpreadsheet {
		return []Strategy{&SpreadsheetStrategy{}}
	}

	if bytes.Contains(data, []byte("BT")) && bytes.Contains(data, []byte("Tj")) {
		return []Strategy{&TextObjectStrategy{}, &LiteralStrategy{}, &LibraryStrategy{}}
	}
	return []Strategy{&LiteralStrategy{}, &TextObjectStrategy{}, &LibraryStrategy{}}
}

// ExtractText runs the detected strategies in order and returns the first
// readable result. If no strategy produces readable text the longest
// candidate is returned anyway: the caller decides whether the yield is
// sufficient. The chosen strategy name is returned for diagnostics.
func ExtractText(data []byte, media MediaType) (string, string) {
	var bestText, bestName string
	for _, s := range StrategiesFor(data, media) {
		text := s.Extract(data)
		if IsReadable(text) {
			return text, s.Name()
		}
		if len(text) > len(bestText) {
			bestText, bestName = text, s.Name()
		}
	}
	return bestText, bestName
}

// decodePermissive converts raw bytes to a UTF-8 string without ever
// failing: invalid sequences become replacement characters and control
// bytes other than whitespace are dropped.
func decodePermissive(data []byte) string {
	s := strings.ToValidUTF8(string(data), "�")
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r == '\n' || r == '\r' || r == '\t' || r >= 0x20 {
			b.WriteRune(r)
		}
	}
	return b.String()
}
