package writer

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kasbuku/statement-recon/internal/statement"
)

func sampleSummary() *statement.Summary {
	d := func(s string) decimal.Decimal { return decimal.RequireFromString(s) }
	return &statement.Summary{
		Period:         "FEBRUARI 2026",
		StartDate:      time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		EndDate:        time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC),
		OpeningBalance: d("8500000"),
		ClosingBalance: d("9750000"),
		TotalDebits:    d("250000"),
		TotalCredits:   d("1500000"),
		Currency:       "IDR",
		Transactions: []statement.Record{
			{
				Date:        time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
				Description: "TRANSFER FUNDS",
				Credit:      d("1500000"),
				Balance:     decimal.NewNullDecimal(d("10000000")),
			},
			{
				Date:        time.Date(2026, 2, 3, 0, 0, 0, 0, time.UTC),
				Description: "BIAYA ADM",
				Reference:   "1901/ATSCY/WS95051",
				Debit:       d("250000"),
			},
		},
	}
}

func TestCSVWriter_Write(t *testing.T) {
	var buf bytes.Buffer
	w := &CSVWriter{IncludeHeader: true}
	require.NoError(t, w.Write(&buf, sampleSummary()))

	output := buf.String()

	assert.Contains(t, output, "# Statement Period,FEBRUARI 2026")
	assert.Contains(t, output, "# Currency,IDR")
	assert.Contains(t, output, "# Total Credits,1500000.00")
	assert.Contains(t, output, "Date,Description,Reference,Debit,Credit,Balance")

	assert.Contains(t, output, "01/02/2026,TRANSFER FUNDS,,,1500000.00,10000000.00")
	assert.Contains(t, output, "03/02/2026,BIAYA ADM,1901/ATSCY/WS95051,250000.00,,")

	lines := strings.Split(strings.TrimSpace(output), "\n")
	// 6 metadata lines + 1 header + 2 transactions.
	assert.Len(t, lines, 9)
}

func TestCSVWriter_WriteNoHeader(t *testing.T) {
	var buf bytes.Buffer
	w := &CSVWriter{IncludeHeader: false}
	require.NoError(t, w.Write(&buf, sampleSummary()))

	output := buf.String()
	assert.NotContains(t, output, "# Statement Period")
	assert.Contains(t, output, "Date,Description,Reference,Debit,Credit,Balance")
}

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"25.99", "25.99"},
		{"1234.56", "1234.56"},
		{"0", ""},
		{"2500", "2500.00"},
	}

	for _, tt := range tests {
		got := formatAmount(decimal.RequireFromString(tt.input))
		assert.Equal(t, tt.expected, got, "formatAmount(%s)", tt.input)
	}
}
