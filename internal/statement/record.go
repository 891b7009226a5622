package statement

import (
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kasbuku/statement-recon/internal/money"
)

var (
	// amountTokenRe finds numeric substrings made of digits and separators.
	amountTokenRe = regexp.MustCompile(`\d[\d.,]*`)
	// referenceRe matches transaction references like "1901/ATSCY/WS95051":
	// a 4-digit prefix followed by slash-delimited alphanumeric segments.
	referenceRe = regexp.MustCompile(`\b\d{4}/[A-Za-z0-9]+/[A-Za-z0-9]+\b`)
	// creditMarkerRe matches the standalone credit marker the statement
	// prints next to incoming amounts. Word boundaries keep merchant names
	// containing the letters (e.g. "CRN") from matching.
	creditMarkerRe = regexp.MustCompile(`(?i)\b(CR|CREDIT)\b`)
)

// amountCeiling excludes stray page numbers below and garbage concatenations
// above: retained amounts are in the open interval (0, 1e11).
var amountCeiling = decimal.New(1, 11)

// BuildRecord converts a retained block into a transaction record. The year
// comes from the statement period; day and month come from the block anchor.
// Returns false when the block holds no usable amount, in which case no
// record is emitted at all: a zero-value transaction is never produced.
func BuildRecord(b Block, year int) (Record, bool) {
	text := b.Text()
	reference := referenceRe.FindString(text)

	// Reference codes carry digit runs of their own; strip them before the
	// amount scan so "1901/ATSCY/WS95051" cannot masquerade as Rp 1.901.
	amountText := text
	if reference != "" {
		amountText = referenceRe.ReplaceAllString(text, " ")
	}

	var amounts []decimal.Decimal
	for _, tok := range amountTokenRe.FindAllString(amountText, -1) {
		v := money.Normalize(strings.Trim(tok, ".,"))
		if v.IsPositive() && v.LessThan(amountCeiling) {
			amounts = append(amounts, v)
		}
	}
	if len(amounts) == 0 {
		return Record{}, false
	}

	rec := Record{
		Date:        time.Date(year, time.Month(b.Month), b.Day, 0, 0, 0, 0, time.UTC),
		Description: truncate(text, MaxDescriptionLen),
	}

	if creditMarkerRe.MatchString(text) {
		rec.Credit = amounts[0]
	} else {
		rec.Debit = amounts[0]
	}

	// With two or more retained amounts the last one is the running balance
	// column; with a single amount the statement printed no balance.
	if len(amounts) > 1 {
		rec.Balance = decimal.NewNullDecimal(amounts[len(amounts)-1])
	}

	if reference != "" {
		rec.Reference = truncate(reference, MaxReferenceLen)
	}

	return rec, true
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
