// Package ledger persists imported statement lines and ledger entries.
//
// Two properties drive the design. Imports are atomic: a statement summary
// and all of its lines commit in one transaction, so a declared line count
// can never disagree with the persisted rows. Status transitions are
// optimistic: every update is conditioned on the status observed at read
// time, so two operators racing on the same line cannot both win.
package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"github.com/kasbuku/statement-recon/internal/statement"
)

// Reconciliation states of a statement line.
type Status string

const (
	StatusUnmatched Status = "unmatched"
	StatusSuggested Status = "suggested"
	StatusMatched   Status = "matched"
	StatusRecorded  Status = "recorded"
)

// ValidStatus reports whether s is one of the four reconciliation states.
func ValidStatus(s Status) bool {
	switch s {
	case StatusUnmatched, StatusSuggested, StatusMatched, StatusRecorded:
		return true
	}
	return false
}

// Direction of a ledger entry.
type Direction string

const (
	DirectionExpense Direction = "expense"
	DirectionReceipt Direction = "receipt"
)

var (
	// ErrStale means the line's status changed since it was read; the
	// caller should re-read and decide again.
	ErrStale = errors.New("line status changed since read")
	// ErrNotFound means the requested row does not exist.
	ErrNotFound = errors.New("not found")
)

// Line is the persisted projection of a statement transaction record.
type Line struct {
	ID             string              `json:"id"`
	StatementID    string              `json:"statementId"`
	Seq            int                 `json:"seq"`
	Date           time.Time           `json:"transactionDate"`
	Description    string              `json:"description"`
	Reference      string              `json:"reference,omitempty"`
	Debit          decimal.Decimal     `json:"debitAmount"`
	Credit         decimal.Decimal     `json:"creditAmount"`
	Balance        decimal.NullDecimal `json:"runningBalance,omitempty"`
	Currency       string              `json:"currency"`
	Status         Status              `json:"reconciliationStatus"`
	MatchedEntryID string              `json:"matchedEntryId,omitempty"`
}

// Amount returns the line's single nonzero side.
func (l Line) Amount() decimal.Decimal {
	if l.Credit.IsPositive() {
		return l.Credit
	}
	return l.Debit
}

// Entry is a recorded expense or receipt in the ledger. SourceLineID is set
// when the entry was created from a statement line via RecordEntry.
type Entry struct {
	ID           string          `json:"id"`
	Date         time.Time       `json:"date"`
	Amount       decimal.Decimal `json:"amount"`
	Direction    Direction       `json:"direction"`
	Description  string          `json:"description"`
	SourceLineID string          `json:"sourceLineId,omitempty"`
	CreatedAt    time.Time       `json:"createdAt"`
}

const schema = `
CREATE TABLE IF NOT EXISTS statements (
	id              TEXT PRIMARY KEY,
	period_label    TEXT NOT NULL,
	start_date      TEXT NOT NULL,
	end_date        TEXT NOT NULL,
	opening_balance TEXT NOT NULL,
	closing_balance TEXT NOT NULL,
	total_debits    TEXT NOT NULL,
	total_credits   TEXT NOT NULL,
	currency        TEXT NOT NULL,
	line_count      INTEGER NOT NULL,
	imported_at     TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS statement_lines (
	id                    TEXT PRIMARY KEY,
	statement_id          TEXT NOT NULL,
	line_seq              INTEGER NOT NULL,
	transaction_date      TEXT NOT NULL,
	description           TEXT NOT NULL,
	reference             TEXT NOT NULL DEFAULT '',
	debit_amount          TEXT NOT NULL,
	credit_amount         TEXT NOT NULL,
	running_balance       TEXT,
	currency              TEXT NOT NULL,
	reconciliation_status TEXT NOT NULL DEFAULT 'unmatched',
	matched_entry_id      TEXT,
	UNIQUE (statement_id, line_seq)
);

CREATE TABLE IF NOT EXISTS ledger_entries (
	id             TEXT PRIMARY KEY,
	entry_date     TEXT NOT NULL,
	amount         TEXT NOT NULL,
	direction      TEXT NOT NULL,
	description    TEXT NOT NULL,
	source_line_id TEXT,
	created_at     TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_lines_status ON statement_lines (reconciliation_status);
CREATE INDEX IF NOT EXISTS idx_entries_date ON ledger_entries (entry_date);
`

const dateLayout = "2006-01-02"

// Store is the SQLite-backed ledger store.
type Store struct {
	db  *sql.DB
	log zerolog.Logger
}

// Open opens (creating if needed) the store at path. ":memory:" gives an
// ephemeral store for tests.
func Open(path string, log zerolog.Logger) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening ledger store: %w", err)
	}
	// The driver serializes writes; one connection avoids table-lock errors
	// under concurrent imports.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying ledger schema: %w", err)
	}
	return &Store{db: db, log: log}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// ImportStatement persists a parsed summary and all of its lines in a single
// transaction. Either everything commits or nothing does; a failure partway
// through leaves no trace. Returns the new statement ID.
func (s *Store) ImportStatement(ctx context.Context, sum *statement.Summary) (string, error) {
	id := uuid.NewString()
	if err := s.importWithID(ctx, id, sum); err != nil {
		return "", err
	}
	s.log.Info().
		Str("statement_id", id).
		Str("period", sum.Period).
		Int("lines", len(sum.Transactions)).
		Msg("statement imported")
	return id, nil
}

func (s *Store) importWithID(ctx context.Context, id string, sum *statement.Summary) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning import: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO statements
			(id, period_label, start_date, end_date, opening_balance, closing_balance,
			 total_debits, total_credits, currency, line_count, imported_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, sum.Period,
		sum.StartDate.Format(dateLayout), sum.EndDate.Format(dateLayout),
		sum.OpeningBalance.String(), sum.ClosingBalance.String(),
		sum.TotalDebits.String(), sum.TotalCredits.String(),
		sum.Currency, len(sum.Transactions),
		time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("inserting statement: %w", err)
	}

	for i, rec := range sum.Transactions {
		var balance sql.NullString
		if rec.Balance.Valid {
			balance = sql.NullString{String: rec.Balance.Decimal.String(), Valid: true}
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO statement_lines
				(id, statement_id, line_seq, transaction_date, description, reference,
				 debit_amount, credit_amount, running_balance, currency, reconciliation_status)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			uuid.NewString(), id, i,
			rec.Date.Format(dateLayout), rec.Description, rec.Reference,
			rec.Debit.String(), rec.Credit.String(), balance,
			sum.Currency, StatusUnmatched)
		if err != nil {
			return fmt.Errorf("inserting line %d: %w", i, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("committing import: %w", err)
	}
	return nil
}

const lineColumns = `id, statement_id, line_seq, transaction_date, description, reference,
	debit_amount, credit_amount, running_balance, currency, reconciliation_status,
	COALESCE(matched_entry_id, '')`

// GetLine fetches one statement line by ID.
func (s *Store) GetLine(ctx context.Context, id string) (Line, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+lineColumns+` FROM statement_lines WHERE id = ?`, id)
	return scanLine(row)
}

// ListLines returns lines, optionally filtered by status, ordered by
// statement and sequence.
func (s *Store) ListLines(ctx context.Context, status Status) ([]Line, error) {
	query := `SELECT ` + lineColumns + ` FROM statement_lines`
	args := []any{}
	if status != "" {
		query += ` WHERE reconciliation_status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY statement_id, line_seq`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing lines: %w", err)
	}
	defer rows.Close()

	var lines []Line
	for rows.Next() {
		line, err := scanLine(rows)
		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	return lines, rows.Err()
}

// UpdateLineStatus moves a line from one status to another. The write is a
// compare-and-swap on the status observed at read time: if the row has moved
// on, ErrStale is returned and nothing changes. An empty matchedEntryID
// clears the link.
func (s *Store) UpdateLineStatus(ctx context.Context, id string, from, to Status, matchedEntryID string) error {
	return s.casLineStatus(ctx, s.db, id, from, to, matchedEntryID)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *Store) casLineStatus(ctx context.Context, db execer, id string, from, to Status, matchedEntryID string) error {
	var matched sql.NullString
	if matchedEntryID != "" {
		matched = sql.NullString{String: matchedEntryID, Valid: true}
	}
	res, err := db.ExecContext(ctx, `
		UPDATE statement_lines
		SET reconciliation_status = ?, matched_entry_id = ?
		WHERE id = ? AND reconciliation_status = ?`,
		to, matched, id, from)
	if err != nil {
		return fmt.Errorf("updating line status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating line status: %w", err)
	}
	if n == 0 {
		// Distinguish a missing row from a concurrent transition. The check
		// must run on the same handle: inside a transaction the store's
		// single connection is already held.
		var exists int
		err := db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM statement_lines WHERE id = ?`, id).Scan(&exists)
		if err != nil {
			return fmt.Errorf("checking line existence: %w", err)
		}
		if exists == 0 {
			return fmt.Errorf("line %s: %w", id, ErrNotFound)
		}
		return fmt.Errorf("line %s: expected status %s: %w", id, from, ErrStale)
	}
	return nil
}

// InsertEntry stores a ledger entry supplied by the finance subsystem.
func (s *Store) InsertEntry(ctx context.Context, e Entry) (string, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO ledger_entries (id, entry_date, amount, direction, description, source_line_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Date.Format(dateLayout), e.Amount.String(), e.Direction,
		e.Description, nullable(e.SourceLineID), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return "", fmt.Errorf("inserting ledger entry: %w", err)
	}
	return e.ID, nil
}

// AvailableEntries returns ledger entries dated within [from, to] that no
// statement line currently links to. These are the matcher's candidates.
func (s *Store) AvailableEntries(ctx context.Context, from, to time.Time) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT e.id, e.entry_date, e.amount, e.direction, e.description,
		       COALESCE(e.source_line_id, ''), e.created_at
		FROM ledger_entries e
		WHERE e.entry_date >= ? AND e.entry_date <= ?
		  AND NOT EXISTS (
			SELECT 1 FROM statement_lines l WHERE l.matched_entry_id = e.id
		  )
		ORDER BY e.entry_date`,
		from.Format(dateLayout), to.Format(dateLayout))
	if err != nil {
		return nil, fmt.Errorf("listing available entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// GetEntry fetches one ledger entry by ID.
func (s *Store) GetEntry(ctx context.Context, id string) (Entry, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, entry_date, amount, direction, description,
		       COALESCE(source_line_id, ''), created_at
		FROM ledger_entries WHERE id = ?`, id)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, fmt.Errorf("entry %s: %w", id, ErrNotFound)
	}
	return e, err
}

// RecordEntry creates a new ledger entry derived from an unmatched statement
// line and marks the line recorded, as one atomic unit. If the line is no
// longer unmatched the entry insert is rolled back too, so a failed half
// never leaves an orphaned entry or a falsely recorded line.
func (s *Store) RecordEntry(ctx context.Context, lineID string, e Entry) (entryID string, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("beginning record: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	entryID = uuid.NewString()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO ledger_entries (id, entry_date, amount, direction, description, source_line_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entryID, e.Date.Format(dateLayout), e.Amount.String(), e.Direction,
		e.Description, lineID, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return "", fmt.Errorf("inserting recorded entry: %w", err)
	}

	if err = s.casLineStatus(ctx, tx, lineID, StatusUnmatched, StatusRecorded, entryID); err != nil {
		return "", err
	}

	if err = tx.Commit(); err != nil {
		return "", fmt.Errorf("committing record: %w", err)
	}
	s.log.Info().Str("line_id", lineID).Str("entry_id", entryID).Msg("ledger entry recorded from line")
	return entryID, nil
}

// ResetLine is the administrative escape hatch: it returns a matched or
// recorded line to unmatched. An entry that was created by RecordEntry for
// this line is deleted rather than left orphaned; a merely matched entry is
// pre-existing and only unlinked.
func (s *Store) ResetLine(ctx context.Context, lineID string) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning reset: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	var status Status
	var matched sql.NullString
	err = tx.QueryRowContext(ctx, `
		SELECT reconciliation_status, matched_entry_id
		FROM statement_lines WHERE id = ?`, lineID).Scan(&status, &matched)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("line %s: %w", lineID, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("reading line for reset: %w", err)
	}

	if status == StatusRecorded && matched.Valid {
		if _, err = tx.ExecContext(ctx, `
			DELETE FROM ledger_entries WHERE id = ? AND source_line_id = ?`,
			matched.String, lineID); err != nil {
			return fmt.Errorf("removing recorded entry: %w", err)
		}
	}

	if err = s.casLineStatus(ctx, tx, lineID, status, StatusUnmatched, ""); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("committing reset: %w", err)
	}
	s.log.Info().Str("line_id", lineID).Str("was", string(status)).Msg("line reset to unmatched")
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLine(r rowScanner) (Line, error) {
	var l Line
	var date string
	var debit, credit string
	var balance sql.NullString
	err := r.Scan(&l.ID, &l.StatementID, &l.Seq, &date, &l.Description, &l.Reference,
		&debit, &credit, &balance, &l.Currency, &l.Status, &l.MatchedEntryID)
	if errors.Is(err, sql.ErrNoRows) {
		return Line{}, ErrNotFound
	}
	if err != nil {
		return Line{}, fmt.Errorf("scanning line: %w", err)
	}
	if l.Date, err = time.Parse(dateLayout, date); err != nil {
		return Line{}, fmt.Errorf("parsing line date: %w", err)
	}
	if l.Debit, err = decimal.NewFromString(debit); err != nil {
		return Line{}, fmt.Errorf("parsing debit: %w", err)
	}
	if l.Credit, err = decimal.NewFromString(credit); err != nil {
		return Line{}, fmt.Errorf("parsing credit: %w", err)
	}
	if balance.Valid {
		d, err := decimal.NewFromString(balance.String)
		if err != nil {
			return Line{}, fmt.Errorf("parsing balance: %w", err)
		}
		l.Balance = decimal.NewNullDecimal(d)
	}
	return l, nil
}

func scanEntry(r rowScanner) (Entry, error) {
	var e Entry
	var date, amount, created string
	err := r.Scan(&e.ID, &date, &amount, &e.Direction, &e.Description, &e.SourceLineID, &created)
	if err != nil {
		return Entry{}, err
	}
	if e.Date, err = time.Parse(dateLayout, date); err != nil {
		return Entry{}, fmt.Errorf("parsing entry date: %w", err)
	}
	if e.Amount, err = decimal.NewFromString(amount); err != nil {
		return Entry{}, fmt.Errorf("parsing entry amount: %w", err)
	}
	if e.CreatedAt, err = time.Parse(time.RFC3339, created); err != nil {
		return Entry{}, fmt.Errorf("parsing entry created_at: %w", err)
	}
	return e, nil
}

func nullable(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
