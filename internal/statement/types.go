// Package statement implements the parsing pipeline that turns a raw bank
// statement document into a normalized sequence of transaction records plus
// a period summary.
//
// The pipeline is pure and synchronous: raw bytes go in, a complete Summary
// or a typed ParseError comes out. There is no partial success.
package statement

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/kasbuku/statement-recon/internal/extractor"
)

// Limits applied when building records.
const (
	MaxDescriptionLen = 500
	MaxReferenceLen   = 100
)

// RawDocument is an uploaded statement: an opaque byte buffer plus the
// declared media type. The caller owns the buffer for the duration of one
// Parse call.
type RawDocument struct {
	Data      []byte
	MediaType extractor.MediaType
}

// Record is a single normalized statement transaction. Exactly one of
// Debit/Credit is nonzero; a block that would produce a zero-value record
// is discarded before a Record is ever built. Records are immutable once
// emitted.
type Record struct {
	Date        time.Time           `json:"date"`
	Description string              `json:"description"`
	Reference   string              `json:"reference,omitempty"`
	Debit       decimal.Decimal     `json:"debitAmount"`
	Credit      decimal.Decimal     `json:"creditAmount"`
	Balance     decimal.NullDecimal `json:"balance,omitempty"`
}

// Summary is the complete result of parsing one statement document.
// TotalDebits and TotalCredits are summed from Transactions, never read
// from header text, so they agree with the records to the cent.
type Summary struct {
	Period         string          `json:"period"`
	StartDate      time.Time       `json:"startDate"`
	EndDate        time.Time       `json:"endDate"`
	OpeningBalance decimal.Decimal `json:"openingBalance"`
	ClosingBalance decimal.Decimal `json:"closingBalance"`
	TotalDebits    decimal.Decimal `json:"totalDebits"`
	TotalCredits   decimal.Decimal `json:"totalCredits"`
	Currency       string          `json:"currency"`
	Transactions   []Record        `json:"transactions"`
}
