// Package writer renders parsed statement summaries for export.
package writer

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/shopspring/decimal"

	"github.com/kasbuku/statement-recon/internal/statement"
)

// CSVWriter writes a statement summary to CSV format.
type CSVWriter struct {
	IncludeHeader bool
}

// WriteToFile writes the summary to a CSV file at the given path.
func (w *CSVWriter) WriteToFile(path string, s *statement.Summary) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file %q: %w", path, err)
	}
	defer f.Close()

	return w.Write(f, s)
}

// Write writes the summary in CSV format to the given writer.
func (w *CSVWriter) Write(out io.Writer, s *statement.Summary) error {
	writer := csv.NewWriter(out)
	defer writer.Flush()

	if w.IncludeHeader {
		if s.Period != "" {
			writer.Write([]string{"# Statement Period", s.Period})
		}
		if s.Currency != "" {
			writer.Write([]string{"# Currency", s.Currency})
		}
		writer.Write([]string{"# Opening Balance", s.OpeningBalance.StringFixed(2)})
		writer.Write([]string{"# Closing Balance", s.ClosingBalance.StringFixed(2)})
		writer.Write([]string{"# Total Debits", s.TotalDebits.StringFixed(2)})
		writer.Write([]string{"# Total Credits", s.TotalCredits.StringFixed(2)})
	}

	header := []string{"Date", "Description", "Reference", "Debit", "Credit", "Balance"}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, rec := range s.Transactions {
		var balance string
		if rec.Balance.Valid {
			balance = rec.Balance.Decimal.StringFixed(2)
		}
		row := []string{
			rec.Date.Format("02/01/2006"),
			rec.Description,
			rec.Reference,
			formatAmount(rec.Debit),
			formatAmount(rec.Credit),
			balance,
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	return nil
}

// formatAmount renders a money value with two decimal places. The zero side
// of a transaction stays empty so the column reads like a bank ledger.
func formatAmount(amount decimal.Decimal) string {
	if amount.IsZero() {
		return ""
	}
	return amount.StringFixed(2)
}
