package statement

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSegmentSplitsOnDateAnchors(t *testing.T) {
	text := "01/02 TRANSFER FUNDS 1.500.000,00 CR 10.000.000,00 " +
		"03/02 BIAYA ADM 250.000,00 9.750.000,00"

	blocks := Segment(text)
	require.Len(t, blocks, 2)

	assert.Equal(t, 1, blocks[0].Day)
	assert.Equal(t, 2, blocks[0].Month)
	assert.Equal(t, "TRANSFER FUNDS 1.500.000,00 CR 10.000.000,00", blocks[0].Text())

	assert.Equal(t, 3, blocks[1].Day)
	assert.Equal(t, "BIAYA ADM 250.000,00 9.750.000,00", blocks[1].Text())
}

func TestSegmentRejectsImpossibleDates(t *testing.T) {
	blocks := Segment("32/02 NOT A DATE 100,00 45/13 ALSO NOT 200,00 00/05 NOR THIS 300,00")
	assert.Empty(t, blocks)
}

func TestSegmentIgnoresTextBeforeFirstAnchor(t *testing.T) {
	blocks := Segment("REKENING GIRO NOMOR 12345678 01/02 PEMBAYARAN GAJI 5.000.000,00")
	require.Len(t, blocks, 1)
	assert.Equal(t, "PEMBAYARAN GAJI 5.000.000,00", blocks[0].Text())
}

func TestSegmentCapsBlockLength(t *testing.T) {
	noise := strings.Repeat("x9 ", 200)
	blocks := Segment("01/02 PAYMENT 100,00 " + noise)
	require.Len(t, blocks, 1)
	assert.LessOrEqual(t, len(blocks[0].Tokens), maxBlockTokens)
}

func TestSegmentStopsBlockAtBoilerplateLabel(t *testing.T) {
	text := "01/02 TRANSFER FUNDS 1.500.000,00 CR 10.000.000,00 " +
		"SALDO AKHIR : 10.000.000,00 Bersambung ke halaman berikut"

	blocks := Segment(text)
	require.Len(t, blocks, 1)
	assert.Equal(t, "TRANSFER FUNDS 1.500.000,00 CR 10.000.000,00", blocks[0].Text())
}

func TestSegmentDiscardsBoilerplateAnchors(t *testing.T) {
	// An anchor directly followed by column headers yields nothing usable.
	blocks := Segment("01/02 TANGGAL KETERANGAN CBG MUTASI SALDO")
	assert.Empty(t, blocks)
}

func TestSegmentDiscardsTooShortBlocks(t *testing.T) {
	blocks := Segment("01/02 ab 03/02 TRANSFER 100,00")
	require.Len(t, blocks, 1)
	assert.Equal(t, 3, blocks[0].Day)
}
