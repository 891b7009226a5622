package recon

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/kasbuku/statement-recon/internal/ledger"
)

// Service drives lines through the reconciliation state machine:
//
//	unmatched -> suggested -> matched
//	unmatched -> recorded
//
// Every transition is a compare-and-swap against the state the caller read,
// so a concurrent operator working the same line gets ledger.ErrStale
// instead of a silent overwrite.
type Service struct {
	store   *ledger.Store
	matcher *Matcher
	log     zerolog.Logger
}

func NewService(store *ledger.Store, matcher *Matcher, log zerolog.Logger) *Service {
	return &Service{store: store, matcher: matcher, log: log}
}

// Suggest finds the best ledger entry for an unmatched line and moves the
// line to suggested with the proposed entry attached. When nothing clears
// the threshold the line stays unmatched and ok is false.
func (s *Service) Suggest(ctx context.Context, lineID string) (Candidate, bool, error) {
	line, err := s.store.GetLine(ctx, lineID)
	if err != nil {
		return Candidate{}, false, err
	}
	if line.Status != ledger.StatusUnmatched {
		return Candidate{}, false, fmt.Errorf("line %s is %s: %w", lineID, line.Status, ledger.ErrStale)
	}

	window := s.cfgWindow()
	entries, err := s.store.AvailableEntries(ctx,
		line.Date.AddDate(0, 0, -window), line.Date.AddDate(0, 0, window))
	if err != nil {
		return Candidate{}, false, err
	}

	best, ok := s.matcher.Best(line, entries)
	if !ok {
		return Candidate{}, false, nil
	}

	if err := s.store.UpdateLineStatus(ctx, lineID,
		ledger.StatusUnmatched, ledger.StatusSuggested, best.EntryID); err != nil {
		return Candidate{}, false, err
	}
	s.log.Info().
		Str("line_id", lineID).
		Str("entry_id", best.EntryID).
		Float64("confidence", best.Confidence).
		Msg("match suggested")
	return best, true, nil
}

// SuggestAll runs Suggest over every unmatched line and returns the accepted
// suggestions. Lines that race to another state mid-run are skipped, not
// treated as failures.
func (s *Service) SuggestAll(ctx context.Context) ([]Candidate, error) {
	lines, err := s.store.ListLines(ctx, ledger.StatusUnmatched)
	if err != nil {
		return nil, err
	}
	var out []Candidate
	for _, line := range lines {
		cand, ok, err := s.Suggest(ctx, line.ID)
		if err != nil {
			if isStale(err) {
				continue
			}
			return out, err
		}
		if ok {
			out = append(out, cand)
		}
	}
	return out, nil
}

// Confirm accepts a suggestion, moving the line from suggested to matched.
func (s *Service) Confirm(ctx context.Context, lineID string) error {
	line, err := s.store.GetLine(ctx, lineID)
	if err != nil {
		return err
	}
	if line.Status != ledger.StatusSuggested {
		return fmt.Errorf("line %s is %s, not suggested: %w", lineID, line.Status, ledger.ErrStale)
	}
	if err := s.store.UpdateLineStatus(ctx, lineID,
		ledger.StatusSuggested, ledger.StatusMatched, line.MatchedEntryID); err != nil {
		return err
	}
	s.log.Info().Str("line_id", lineID).Str("entry_id", line.MatchedEntryID).Msg("match confirmed")
	return nil
}

// Reject declines a suggestion, returning the line to unmatched with no
// entry attached. The suggested entry becomes available to other lines.
func (s *Service) Reject(ctx context.Context, lineID string) error {
	if err := s.store.UpdateLineStatus(ctx, lineID,
		ledger.StatusSuggested, ledger.StatusUnmatched, ""); err != nil {
		return err
	}
	s.log.Info().Str("line_id", lineID).Msg("suggestion rejected")
	return nil
}

// Record creates a brand-new ledger entry from an unmatched line, for money
// movements the ledger never saw, and marks the line recorded. The entry
// insert and the status flip commit together or not at all.
func (s *Service) Record(ctx context.Context, lineID string) (string, error) {
	line, err := s.store.GetLine(ctx, lineID)
	if err != nil {
		return "", err
	}
	entry := ledger.Entry{
		Date:        line.Date,
		Amount:      line.Amount(),
		Direction:   directionFor(line),
		Description: line.Description,
	}
	entryID, err := s.store.RecordEntry(ctx, lineID, entry)
	if err != nil {
		return "", err
	}
	return entryID, nil
}

// Reset returns a line in any state to unmatched, deleting the ledger entry
// if this line's Record created it.
func (s *Service) Reset(ctx context.Context, lineID string) error {
	return s.store.ResetLine(ctx, lineID)
}

func (s *Service) cfgWindow() int { return s.matcher.cfg.MaxDateDiffDays }

func isStale(err error) bool {
	return errors.Is(err, ledger.ErrStale)
}
