package extractor

import (
	"strings"
	"unicode"
)

// statementWords are tokens that appear in virtually every supported bank
// statement, in the statement language or English. Extracted text containing
// none of them is almost certainly garbage from an identity-encoded font.
var statementWords = []string{
	"saldo", "mutasi", "tanggal", "keterangan", "rekening", "periode",
	"bank", "account", "balance", "date", "statement", "credit", "debit",
	"transaction", "transfer", "opening", "closing",
}

// IsReadable reports whether extracted text is long enough and clean enough
// to hand to the segmenter: more than 50 characters, more than 60% basic
// readable ASCII, and at least one recognizable statement word.
func IsReadable(text string) bool {
	if len(strings.TrimSpace(text)) <= 50 {
		return false
	}
	if textQuality(text) <= 0.6 {
		return false
	}
	lower := strings.ToLower(text)
	for _, w := range statementWords {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}

// textQuality returns the ratio of basic readable characters to total. A
// strict ASCII check is used on purpose: unicode.IsLetter matches the
// accented garbage that identity-encoded fonts decode to.
func textQuality(text string) float64 {
	total, readable := 0, 0
	for _, r := range text {
		total++
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
			(r >= '0' && r <= '9') || unicode.IsSpace(r) ||
			strings.ContainsRune(".,-/:;()'\"%&@#!?+=*", r) {
			readable++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(readable) / float64(total)
}
