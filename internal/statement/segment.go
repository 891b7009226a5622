package statement

import (
	"regexp"
	"strconv"
	"strings"
)

// A transaction block opens at a DD/MM anchor token and runs until the next
// anchor or the lookahead cap, whichever comes first. The cap bounds the
// scan cost when extraction has produced garbled, date-free noise.
const (
	maxBlockTokens  = 40
	minBlockTextLen = 3
)

// Block is the raw token run belonging to one candidate transaction. The
// anchor token itself is held as Day/Month; Tokens is everything after it.
type Block struct {
	Day    int
	Month  int
	Tokens []string
}

// Text returns the block body joined by single spaces.
func (b Block) Text() string { return strings.Join(b.Tokens, " ") }

// headerKeywordRe matches the section labels a statement prints around the
// transaction table: date, description, branch, mutation and balance column
// headers, page markers and continuation notes. A block containing any of
// them is boilerplate, not a transaction, even when amount-shaped substrings
// are present.
var headerKeywordRe = regexp.MustCompile(
	`(?i)\b(tanggal|keterangan|cbg|mutasi|saldo|halaman|bersambung|page|continued)\b`)

var anchorRe = regexp.MustCompile(`^(\d{2})/(\d{2})$`)

// parseAnchor reports whether a token is a valid DD/MM date anchor.
func parseAnchor(tok string) (day, month int, ok bool) {
	m := anchorRe.FindStringSubmatch(tok)
	if m == nil {
		return 0, 0, false
	}
	day, _ = strconv.Atoi(m[1])
	month, _ = strconv.Atoi(m[2])
	if day < 1 || day > 31 || month < 1 || month > 12 {
		return 0, 0, false
	}
	return day, month, true
}

// tokenCursor is a forward-only cursor over the token sequence. Lookahead is
// explicit and bounded; there is no backtracking.
type tokenCursor struct {
	tokens []string
	pos    int
}

func (c *tokenCursor) next() (string, bool) {
	if c.pos >= len(c.tokens) {
		return "", false
	}
	tok := c.tokens[c.pos]
	c.pos++
	return tok, true
}

func (c *tokenCursor) peek() (string, bool) {
	if c.pos >= len(c.tokens) {
		return "", false
	}
	return c.tokens[c.pos], true
}

// Segment splits extracted text into date-anchored blocks. Blocks that are
// header/footer boilerplate or too short to mean anything are dropped here;
// the zero-amount discard happens in the record builder where amounts are
// actually parsed.
func Segment(text string) []Block {
	cur := &tokenCursor{tokens: strings.Fields(text)}
	var blocks []Block

	for {
		tok, ok := cur.next()
		if !ok {
			break
		}
		day, month, isAnchor := parseAnchor(tok)
		if !isAnchor {
			continue
		}

		var body []string
		for len(body) < maxBlockTokens {
			nxt, ok := cur.peek()
			if !ok {
				break
			}
			if _, _, anchorAhead := parseAnchor(nxt); anchorAhead {
				break
			}
			// Boilerplate labels end the block early so a footer that
			// follows the last transaction does not get swallowed into it.
			if headerKeywordRe.MatchString(nxt) {
				break
			}
			cur.next()
			body = append(body, nxt)
		}

		b := Block{Day: day, Month: month, Tokens: body}
		if retainBlock(b) {
			blocks = append(blocks, b)
		}
	}

	return blocks
}

func retainBlock(b Block) bool {
	text := strings.TrimSpace(b.Text())
	if len(text) < minBlockTextLen {
		return false
	}
	return !headerKeywordRe.MatchString(text)
}
