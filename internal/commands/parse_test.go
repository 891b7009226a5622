package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleStatement = `REKENING TABUNGAN
PERIODE : FEBRUARI 2026
SALDO AWAL : 8.500.000,00
01/02 TRANSFER FUNDS 1.500.000,00 CR 10.000.000,00
03/02 BIAYA ADM 250.000,00 9.750.000,00
SALDO AKHIR : 9.750.000,00`

func writeSample(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mutasi-feb.txt")
	require.NoError(t, os.WriteFile(path, []byte(sampleStatement), 0o644))
	return path
}

func TestParseCommandWritesCSV(t *testing.T) {
	root := NewRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"parse", writeSample(t)})

	require.NoError(t, root.Execute())

	output := out.String()
	assert.Contains(t, output, "# Statement Period,FEBRUARI 2026")
	assert.Contains(t, output, "Date,Description,Reference,Debit,Credit,Balance")
	assert.Contains(t, output, "01/02/2026")
	assert.Contains(t, output, "1500000.00")
}

func TestParseCommandOutputFlag(t *testing.T) {
	outPath := filepath.Join(t.TempDir(), "out.csv")

	root := NewRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"parse", writeSample(t), "-o", outPath, "--no-header"})

	require.NoError(t, root.Execute())

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Date,Description,Reference,Debit,Credit,Balance")
	assert.NotContains(t, string(data), "# Statement Period")
	assert.Contains(t, out.String(), "Wrote 2 transactions")
}

func TestParseCommandRejectsUnknownExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "statement.docx")
	require.NoError(t, os.WriteFile(path, []byte(sampleStatement), 0o644))

	root := NewRootCommand()
	root.SetOut(new(bytes.Buffer))
	root.SetErr(new(bytes.Buffer))
	root.SetArgs([]string{"parse", path})

	assert.Error(t, root.Execute())
}

func TestImportCommandPersistsLines(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "statement-recon.yaml")
	dbPath := filepath.Join(dir, "test.db")
	require.NoError(t, os.WriteFile(cfgPath,
		[]byte("store:\n  path: "+dbPath+"\nlog_level: error\n"), 0o644))

	root := NewRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"import", writeSample(t), "--config", cfgPath})

	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "2 lines")
	assert.FileExists(t, dbPath)

	// Nothing in the ledger yet, so reconcile finds no suggestions.
	root = NewRootCommand()
	out.Reset()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"reconcile", "--config", cfgPath})

	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "No new suggestions.")
}
