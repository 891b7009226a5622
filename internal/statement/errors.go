package statement

import "fmt"

// Kind classifies a parse failure so callers can react without matching on
// message text.
type Kind string

const (
	// KindUnsupportedDocument: the declared media type is not recognized.
	KindUnsupportedDocument Kind = "unsupported_document"
	// KindInsufficientText: extraction decoded too little text, which
	// usually means an image-only or encrypted document.
	KindInsufficientText Kind = "insufficient_text"
	// KindNoTransactions: segmentation produced zero records; the layout is
	// malformed or unsupported.
	KindNoTransactions Kind = "no_transactions"
	// KindInconsistentTotals: the aggregator's totals fail the summation
	// invariant. This is an internal assertion failure, not a user error.
	KindInconsistentTotals Kind = "inconsistent_totals"
	// KindPersistence: the atomic import or a status transition failed to
	// commit. Safe to retry; imports are all-or-nothing.
	KindPersistence Kind = "persistence_failure"
)

// Diagnostics carries enough detail to distinguish "wrong file" from "bug"
// without exposing internal state: how much text was decoded, by which
// strategy, and which expected section labels were present.
type Diagnostics struct {
	TextLength   int      `json:"textLength"`
	TokenCount   int      `json:"tokenCount"`
	Strategy     string   `json:"strategy,omitempty"`
	KeywordsSeen []string `json:"keywordsSeen,omitempty"`
}

// ParseError is the single failure type returned by the pipeline.
type ParseError struct {
	Kind        Kind
	Message     string
	Diagnostics Diagnostics
	Err         error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *ParseError) Unwrap() error { return e.Err }

func parseErrorf(kind Kind, diag Diagnostics, format string, args ...any) *ParseError {
	return &ParseError{Kind: kind, Message: fmt.Sprintf(format, args...), Diagnostics: diag}
}
