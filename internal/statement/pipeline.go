package statement

import (
	"strings"
	"time"

	"github.com/kasbuku/statement-recon/internal/extractor"
)

// minTextLen is the smallest decoded-text length worth segmenting. Below it
// the document is almost certainly image-only or encrypted.
const minTextLen = 50

// sectionKeywords are the labels whose presence or absence helps a caller
// tell a wrong file from a parser bug.
var sectionKeywords = []string{"PERIODE", "SALDO", "MUTASI", "TANGGAL", "KETERANGAN"}

// Parse runs the whole pipeline on one document: extraction, segmentation,
// record building and aggregation. It returns either a complete Summary or a
// typed *ParseError; there is no partial success, and a returned Summary
// always satisfies the totals invariant.
func Parse(doc RawDocument, currency string) (*Summary, error) {
	if !extractor.Supported(doc.MediaType) {
		return nil, parseErrorf(KindUnsupportedDocument, Diagnostics{},
			"media type %q is not supported; expected pdf or spreadsheet", doc.MediaType)
	}

	text, strategy := extractor.ExtractText(doc.Data, doc.MediaType)
	diag := Diagnostics{
		TextLength:   len(strings.TrimSpace(text)),
		TokenCount:   len(strings.Fields(text)),
		Strategy:     strategy,
		KeywordsSeen: keywordsSeen(text),
	}

	if diag.TextLength < minTextLen {
		return nil, parseErrorf(KindInsufficientText, diag,
			"decoded only %d characters of text; the document may be image-only or encrypted", diag.TextLength)
	}

	period := ResolvePeriod(text, time.Now())

	var records []Record
	for _, block := range Segment(text) {
		if rec, ok := BuildRecord(block, period.Year); ok {
			records = append(records, rec)
		}
	}
	if len(records) == 0 {
		return nil, parseErrorf(KindNoTransactions, diag,
			"no transaction blocks recognized in %d tokens; the statement layout may be unsupported", diag.TokenCount)
	}

	summary := Aggregate(text, period, currency, records)
	if err := summary.verifyTotals(); err != nil {
		return nil, &ParseError{Kind: KindInconsistentTotals, Message: "summary totals failed verification", Diagnostics: diag, Err: err}
	}
	return summary, nil
}

func keywordsSeen(text string) []string {
	upper := strings.ToUpper(text)
	var seen []string
	for _, kw := range sectionKeywords {
		if strings.Contains(upper, kw) {
			seen = append(seen, kw)
		}
	}
	return seen
}
