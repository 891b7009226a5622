package statement

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kasbuku/statement-recon/internal/money"
)

// monthTable maps the statement-language month names printed in the PERIODE
// header to calendar months.
var monthTable = map[string]time.Month{
	"JANUARI":   time.January,
	"FEBRUARI":  time.February,
	"MARET":     time.March,
	"APRIL":     time.April,
	"MEI":       time.May,
	"JUNI":      time.June,
	"JULI":      time.July,
	"AGUSTUS":   time.August,
	"SEPTEMBER": time.September,
	"OKTOBER":   time.October,
	"NOVEMBER":  time.November,
	"DESEMBER":  time.December,
}

var (
	periodRe  = regexp.MustCompile(`(?i)PERIODE\s*:?\s*([A-Za-z]+)\s+(\d{4})`)
	openingRe = regexp.MustCompile(`(?i)SALDO\s+AWAL\s*:?\s*([\d.,]+)`)
	closingRe = regexp.MustCompile(`(?i)SALDO\s+AKHIR\s*:?\s*([\d.,]+)`)
)

// Period is the calendar month and year a statement covers.
type Period struct {
	Year  int
	Month time.Month
	Label string
}

// ResolvePeriod reads the statement-period header. When the header is absent
// or the month name is unknown it falls back to the current year and month 1.
// Multi-month statements are not distinguishable from the header alone; all
// transactions get the single resolved year.
func ResolvePeriod(text string, now time.Time) Period {
	m := periodRe.FindStringSubmatch(text)
	if m == nil {
		return Period{Year: now.Year(), Month: time.January}
	}

	name := strings.ToUpper(m[1])
	month, ok := monthTable[name]
	if !ok {
		return Period{Year: now.Year(), Month: time.January}
	}
	year, _ := strconv.Atoi(m[2])
	return Period{Year: year, Month: month, Label: fmt.Sprintf("%s %d", name, year)}
}

// Aggregate derives the statement summary: period boundaries, header
// balances and totals. Totals are summed from the records, never re-read
// from header text, so the summation invariant holds by construction and is
// re-verified by the pipeline before the summary leaves the package.
func Aggregate(text string, p Period, currency string, records []Record) *Summary {
	start := time.Date(p.Year, p.Month, 1, 0, 0, 0, 0, time.UTC)
	// Day zero of the following month is the last day of this one, which
	// handles leap Februaries without a day table.
	end := time.Date(p.Year, p.Month+1, 0, 0, 0, 0, 0, time.UTC)

	s := &Summary{
		Period:       p.Label,
		StartDate:    start,
		EndDate:      end,
		Currency:     currency,
		Transactions: records,
	}

	if m := openingRe.FindStringSubmatch(text); m != nil {
		s.OpeningBalance = money.Normalize(m[1])
	}
	if m := closingRe.FindStringSubmatch(text); m != nil {
		s.ClosingBalance = money.Normalize(m[1])
	}

	for _, rec := range records {
		s.TotalDebits = s.TotalDebits.Add(rec.Debit)
		s.TotalCredits = s.TotalCredits.Add(rec.Credit)
	}
	return s
}

// verifyTotals re-checks the summary invariants independently: each record
// carries exactly one nonzero side, and the totals equal the per-record sums
// to the cent. A violation is an internal-logic failure, never user input.
func (s *Summary) verifyTotals() error {
	debits, credits := decimal.Zero, decimal.Zero
	for i, rec := range s.Transactions {
		if rec.Debit.IsZero() == rec.Credit.IsZero() {
			return fmt.Errorf("transaction %d: exactly one of debit/credit must be nonzero", i)
		}
		if rec.Debit.IsNegative() || rec.Credit.IsNegative() {
			return fmt.Errorf("transaction %d: negative amount", i)
		}
		debits = debits.Add(rec.Debit)
		credits = credits.Add(rec.Credit)
	}
	if !s.TotalDebits.Equal(debits) {
		return fmt.Errorf("total debits %s != sum of records %s", s.TotalDebits, debits)
	}
	if !s.TotalCredits.Equal(credits) {
		return fmt.Errorf("total credits %s != sum of records %s", s.TotalCredits, credits)
	}
	return nil
}
