package recon

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kasbuku/statement-recon/internal/ledger"
	"github.com/kasbuku/statement-recon/internal/statement"
)

func newTestService(t *testing.T) (*Service, *ledger.Store) {
	t.Helper()
	store, err := ledger.Open(":memory:", zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return NewService(store, NewMatcher(DefaultConfig()), zerolog.Nop()), store
}

func importLine(t *testing.T, store *ledger.Store) ledger.Line {
	t.Helper()
	d := decimal.RequireFromString("250000")
	_, err := store.ImportStatement(context.Background(), &statement.Summary{
		Period:      "FEBRUARI 2026",
		StartDate:   time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		EndDate:     time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC),
		TotalDebits: d,
		Currency:    "IDR",
		Transactions: []statement.Record{{
			Date:        time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC),
			Description: "BIAYA ADM BULANAN",
			Debit:       d,
		}},
	})
	require.NoError(t, err)
	lines, err := store.ListLines(context.Background(), ledger.StatusUnmatched)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	return lines[0]
}

func TestSuggestConfirmFlow(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	line := importLine(t, store)

	entryID, err := store.InsertEntry(ctx, ledger.Entry{
		Date:        line.Date,
		Amount:      line.Amount(),
		Direction:   ledger.DirectionExpense,
		Description: "BIAYA ADM BULANAN",
	})
	require.NoError(t, err)

	cand, ok, err := svc.Suggest(ctx, line.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, entryID, cand.EntryID)

	got, err := store.GetLine(ctx, line.ID)
	require.NoError(t, err)
	assert.Equal(t, ledger.StatusSuggested, got.Status)
	assert.Equal(t, entryID, got.MatchedEntryID)

	require.NoError(t, svc.Confirm(ctx, line.ID))
	got, err = store.GetLine(ctx, line.ID)
	require.NoError(t, err)
	assert.Equal(t, ledger.StatusMatched, got.Status)
	assert.Equal(t, entryID, got.MatchedEntryID)
}

func TestSuggestWithNoViableEntryLeavesLineUnmatched(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	line := importLine(t, store)

	_, err := store.InsertEntry(ctx, ledger.Entry{
		Date:        line.Date,
		Amount:      decimal.NewFromInt(999),
		Direction:   ledger.DirectionExpense,
		Description: "BIAYA ADM BULANAN",
	})
	require.NoError(t, err)

	_, ok, err := svc.Suggest(ctx, line.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	got, err := store.GetLine(ctx, line.ID)
	require.NoError(t, err)
	assert.Equal(t, ledger.StatusUnmatched, got.Status)
}

func TestRejectReleasesEntryForOtherLines(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	line := importLine(t, store)

	entryID, err := store.InsertEntry(ctx, ledger.Entry{
		Date:        line.Date,
		Amount:      line.Amount(),
		Direction:   ledger.DirectionExpense,
		Description: "BIAYA ADM BULANAN",
	})
	require.NoError(t, err)

	_, ok, err := svc.Suggest(ctx, line.ID)
	require.NoError(t, err)
	require.True(t, ok)

	// Suggested entries are off the candidate list until rejected.
	entries, err := store.AvailableEntries(ctx, line.Date.AddDate(0, 0, -7), line.Date.AddDate(0, 0, 7))
	require.NoError(t, err)
	assert.Empty(t, entries)

	require.NoError(t, svc.Reject(ctx, line.ID))

	got, err := store.GetLine(ctx, line.ID)
	require.NoError(t, err)
	assert.Equal(t, ledger.StatusUnmatched, got.Status)
	assert.Empty(t, got.MatchedEntryID)

	entries, err = store.AvailableEntries(ctx, line.Date.AddDate(0, 0, -7), line.Date.AddDate(0, 0, 7))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, entryID, entries[0].ID)
}

func TestRecordCreatesEntryFromLine(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	line := importLine(t, store)

	entryID, err := svc.Record(ctx, line.ID)
	require.NoError(t, err)

	entry, err := store.GetEntry(ctx, entryID)
	require.NoError(t, err)
	assert.Equal(t, ledger.DirectionExpense, entry.Direction)
	assert.True(t, entry.Amount.Equal(line.Amount()))
	assert.Equal(t, line.ID, entry.SourceLineID)

	got, err := store.GetLine(ctx, line.ID)
	require.NoError(t, err)
	assert.Equal(t, ledger.StatusRecorded, got.Status)

	// Recording twice is a stale transition, not a duplicate entry.
	_, err = svc.Record(ctx, line.ID)
	assert.ErrorIs(t, err, ledger.ErrStale)
}

func TestResetAfterRecordRemovesCreatedEntry(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	line := importLine(t, store)

	entryID, err := svc.Record(ctx, line.ID)
	require.NoError(t, err)

	require.NoError(t, svc.Reset(ctx, line.ID))

	got, err := store.GetLine(ctx, line.ID)
	require.NoError(t, err)
	assert.Equal(t, ledger.StatusUnmatched, got.Status)
	_, err = store.GetEntry(ctx, entryID)
	assert.ErrorIs(t, err, ledger.ErrNotFound)
}

func TestSuggestAllSkipsLinesWithoutCandidates(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	line := importLine(t, store)

	entryID, err := store.InsertEntry(ctx, ledger.Entry{
		Date:        line.Date,
		Amount:      line.Amount(),
		Direction:   ledger.DirectionExpense,
		Description: "BIAYA ADM BULANAN",
	})
	require.NoError(t, err)

	cands, err := svc.SuggestAll(ctx)
	require.NoError(t, err)
	require.Len(t, cands, 1)
	assert.Equal(t, entryID, cands[0].EntryID)

	// A second sweep finds nothing left to do.
	cands, err = svc.SuggestAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, cands)
}
