package extractor

import "strings"

// SpreadsheetStrategy handles exported spreadsheet text (CSV/TSV and the
// tab-separated TXT files banks offer next to the PDF). The bytes are
// already text; all that is needed is a permissive decode and separator
// normalization so the segmenter sees plain whitespace-delimited tokens.
type SpreadsheetStrategy struct{}

func (s *SpreadsheetStrategy) Name() string { return "spreadsheet" }

func (s *SpreadsheetStrategy) Extract(data []byte) string {
	text := decodePermissive(data)
	text = strings.ReplaceAll(text, ";", " ")
	text = strings.ReplaceAll(text, "\t", " ")
	// Commas inside quoted cells are data (amount separators); bare commas
	// between cells are structure. Splitting on quote boundaries keeps the
	// amounts intact.
	var b strings.Builder
	inQuote := false
	for _, r := range text {
		switch {
		case r == '"':
			inQuote = !inQuote
			b.WriteRune(' ')
		case r == ',' && !inQuote:
			b.WriteRune(' ')
		default:
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}
