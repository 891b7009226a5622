// Package recon matches imported statement lines against ledger entries and
// drives each line through the reconciliation workflow.
package recon

import (
	"sort"
	"strings"
	"time"

	"github.com/kasbuku/statement-recon/internal/ledger"
)

// Config tunes the matcher. The zero value is unusable; use DefaultConfig.
type Config struct {
	// MaxDateDiffDays is the furthest apart, in days, a line and an entry
	// may be dated and still be considered.
	MaxDateDiffDays int `yaml:"max_date_diff_days"`
	// MinSimilarity is the least description overlap a candidate needs.
	MinSimilarity float64 `yaml:"min_similarity"`
	// SuggestThreshold is the least confidence worth surfacing to a user.
	SuggestThreshold float64 `yaml:"suggest_threshold"`
}

// DefaultConfig returns the thresholds used when the config file sets none.
func DefaultConfig() Config {
	return Config{
		MaxDateDiffDays:  7,
		MinSimilarity:    0.3,
		SuggestThreshold: 0.5,
	}
}

// Candidate is one proposed line/entry pairing with its score.
type Candidate struct {
	LineID     string  `json:"lineId"`
	EntryID    string  `json:"entryId"`
	Confidence float64 `json:"confidence"`

	dateDiff   int
	similarity float64
}

// Matcher scores ledger entries against a statement line. Amount equality is
// a hard requirement; date proximity and description similarity only rank
// the candidates that clear it.
type Matcher struct {
	cfg Config
}

func NewMatcher(cfg Config) *Matcher { return &Matcher{cfg: cfg} }

// directionFor maps a line's money flow to the entry direction it can match:
// credits are receipts, debits are expenses.
func directionFor(line ledger.Line) ledger.Direction {
	if line.Credit.IsPositive() {
		return ledger.DirectionReceipt
	}
	return ledger.DirectionExpense
}

// Candidates scores entries against line and returns the viable pairings,
// best first. Ties on confidence break toward the closer date, then the
// higher description similarity, so the ordering is deterministic.
func (m *Matcher) Candidates(line ledger.Line, entries []ledger.Entry) []Candidate {
	amount := line.Amount()
	wantDir := directionFor(line)

	var out []Candidate
	for _, e := range entries {
		if e.Direction != wantDir || !e.Amount.Equal(amount) {
			continue
		}
		diff := dateDiffDays(line.Date, e.Date)
		if diff > m.cfg.MaxDateDiffDays {
			continue
		}
		sim := descriptionSimilarity(line.Description, e.Description)
		if sim < m.cfg.MinSimilarity {
			continue
		}

		dateScore := 1 - float64(diff)/float64(m.cfg.MaxDateDiffDays+1)
		out = append(out, Candidate{
			LineID:     line.ID,
			EntryID:    e.ID,
			Confidence: 0.6*dateScore + 0.4*sim,
			dateDiff:   diff,
			similarity: sim,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Confidence != out[j].Confidence {
			return out[i].Confidence > out[j].Confidence
		}
		if out[i].dateDiff != out[j].dateDiff {
			return out[i].dateDiff < out[j].dateDiff
		}
		return out[i].similarity > out[j].similarity
	})
	return out
}

// Best returns the top candidate that clears the suggestion threshold.
func (m *Matcher) Best(line ledger.Line, entries []ledger.Entry) (Candidate, bool) {
	cands := m.Candidates(line, entries)
	if len(cands) == 0 || cands[0].Confidence < m.cfg.SuggestThreshold {
		return Candidate{}, false
	}
	return cands[0], true
}

func dateDiffDays(a, b time.Time) int {
	d := a.Sub(b)
	if d < 0 {
		d = -d
	}
	return int(d.Hours() / 24)
}

// descriptionSimilarity is the Dice coefficient over lowercased word sets:
// twice the shared-word count over the combined set sizes. Word order and
// repetition do not matter, which suits bank narration text where the same
// payee appears with shuffled qualifiers.
func descriptionSimilarity(a, b string) float64 {
	wa, wb := wordSet(a), wordSet(b)
	if len(wa) == 0 || len(wb) == 0 {
		return 0
	}
	shared := 0
	for w := range wa {
		if _, ok := wb[w]; ok {
			shared++
		}
	}
	return 2 * float64(shared) / float64(len(wa)+len(wb))
}

func wordSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.Fields(strings.ToLower(s)) {
		set[w] = struct{}{}
	}
	return set
}
