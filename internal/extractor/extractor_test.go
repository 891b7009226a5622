package extractor

import (
	"bytes"
	"compress/zlib"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStrategiesFor(t *testing.T) {
	tests := []struct {
		name      string
		data      string
		media     MediaType
		wantFirst string
	}{
		{"spreadsheet always decodes directly", "a,b,c", MediaSpreadsheet, "spreadsheet"},
		{"text-object pdf", "%PDF-1.4 BT (x) Tj ET", MediaPDF, "textobject"},
		{"literal-only pdf", "%PDF-1.4 (text) no operators", MediaPDF, "literal"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			strategies := StrategiesFor([]byte(tt.data), tt.media)
			require.NotEmpty(t, strategies)
			assert.Equal(t, tt.wantFirst, strategies[0].Name())
		})
	}
}

func TestLiteralStrategyRecoversParenthesisText(t *testing.T) {
	data := []byte(`%PDF-1.4 1 0 obj << /Type /Page >> (SALDO AWAL statement) junk (TANGGAL \(01/02\) MUTASI) endobj`)

	text := (&LiteralStrategy{}).Extract(data)
	assert.Contains(t, text, "SALDO AWAL statement")
	assert.Contains(t, text, "TANGGAL (01/02) MUTASI")
	assert.NotContains(t, text, "/Type", "dictionary content must not leak into text")
}

func TestLiteralStrategySkipsUnterminatedRegions(t *testing.T) {
	text := (&LiteralStrategy{}).Extract([]byte("(never closed"))
	assert.Empty(t, text)
}

func TestUnescapeLiteral(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "TRANSFER", "TRANSFER"},
		{"escaped parens", `\(CR\)`, "(CR)"},
		{"newline and tab", `a\nb\tc`, "a\nb\tc"},
		{"octal", `\101\102\103`, "ABC"},
		{"backslash", `a\\b`, `a\b`},
		{"unknown escape keeps byte", `a\qb`, "aqb"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, UnescapeLiteral([]byte(tt.in)))
		})
	}
}

func TestDecodeHexStringUTF16(t *testing.T) {
	// "SALDO" in UTF-16BE.
	assert.Equal(t, "SALDO", DecodeHexString("0053 0041 004C 0044 004F"))
	assert.Empty(t, DecodeHexString("zz not hex"))
}

func TestTextObjectStrategyReadsCompressedStreams(t *testing.T) {
	content := "BT (PERIODE : FEBRUARI 2026) Tj " +
		"[(TRANSFER) -250 ( FUNDS 1.500.000,00)] TJ ET " +
		"BT (SALDO AKHIR : 10.000.000,00) Tj ET"

	var compressed bytes.Buffer
	w := zlib.NewWriter(&compressed)
	_, err := w.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	var doc bytes.Buffer
	doc.WriteString("%PDF-1.4\n1 0 obj\n<< /Filter /FlateDecode >>\nstream\n")
	doc.Write(compressed.Bytes())
	doc.WriteString("\nendstream\nendobj\n")

	text := (&TextObjectStrategy{}).Extract(doc.Bytes())
	assert.Contains(t, text, "PERIODE : FEBRUARI 2026")
	assert.Contains(t, text, "TRANSFER FUNDS 1.500.000,00")
	assert.Contains(t, text, "SALDO AKHIR : 10.000.000,00")
}

func TestTextObjectStrategyPreservesOperatorOrder(t *testing.T) {
	data := []byte("BT (first) Tj [(second)] TJ (third) Tj ET")
	text := (&TextObjectStrategy{}).Extract(data)
	assert.Equal(t, "first second third", text)
}

func TestSpreadsheetStrategyKeepsQuotedAmounts(t *testing.T) {
	data := []byte(`01/02,TRANSFER FUNDS,"1.500.000,00",CR,"10.000.000,00"`)
	text := (&SpreadsheetStrategy{}).Extract(data)

	assert.Contains(t, text, "1.500.000,00")
	assert.Contains(t, text, "10.000.000,00")
	assert.NotContains(t, text, `"`)
	// Structural commas become token boundaries.
	assert.Contains(t, strings.Fields(text), "01/02")
	assert.Contains(t, strings.Fields(text), "CR")
}

func TestIsReadable(t *testing.T) {
	readable := "PERIODE : FEBRUARI 2026 SALDO AWAL : 8.500.000,00 TANGGAL KETERANGAN MUTASI SALDO"
	assert.True(t, IsReadable(readable))

	assert.False(t, IsReadable("too short"))
	assert.False(t, IsReadable(strings.Repeat("ÿþý ", 50)), "binary noise is not readable")
	assert.False(t, IsReadable(strings.Repeat("lorem ipsum dolor sit amet ", 10)),
		"readable English without statement vocabulary is still not a statement")
}

func TestExtractTextFallsBackToLongestCandidate(t *testing.T) {
	// No strategy yields readable statement text here; the longest recovered
	// fragment should still come back with its strategy name.
	data := []byte("(just a few words, no banking vocabulary)")
	text, name := ExtractText(data, MediaPDF)
	assert.NotEmpty(t, text)
	assert.Equal(t, "literal", name)
}
