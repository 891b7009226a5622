package extractor

import (
	"encoding/hex"
	"strings"
	"unicode"
)

// LiteralStrategy scans the raw byte buffer for parenthesis-delimited string
// literals and angle-bracket hex strings, in encounter order. It does not
// interpret the surrounding operators at all, which makes it work on files
// whose structure is too damaged for the other strategies.
type LiteralStrategy struct{}

func (s *LiteralStrategy) Name() string { return "literal" }

func (s *LiteralStrategy) Extract(data []byte) string {
	var parts []string

	for i := 0; i < len(data); i++ {
		switch data[i] {
		case '(':
			lit, end := scanLiteral(data, i)
			if end > i {
				if t := cleanFragment(UnescapeLiteral(lit)); t != "" {
					parts = append(parts, t)
				}
				i = end
			}
		case '<':
			// "<<" opens a dictionary, not a hex string.
			if i+1 < len(data) && data[i+1] == '<' {
				i++
				continue
			}
			hexStr, end := scanHexString(data, i)
			if end > i {
				if t := cleanFragment(DecodeHexString(hexStr)); t != "" {
					parts = append(parts, t)
				}
				i = end
			}
		}
	}

	return strings.Join(parts, " ")
}

// scanLiteral reads a parenthesis-delimited literal starting at the '(' at
// data[start]. Parentheses nest when unescaped, so a depth counter tracks
// the matching close. Returns the raw inner bytes and the index of the
// closing ')', or (nil, start) if unterminated.
func scanLiteral(data []byte, start int) ([]byte, int) {
	depth := 1
	for i := start + 1; i < len(data); i++ {
		switch data[i] {
		case '\\':
			i++ // next byte is escaped, skip it
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return data[start+1 : i], i
			}
		}
	}
	return nil, start
}

// scanHexString reads an angle-bracket hex string starting at data[start].
// Returns the inner hex text and the index of '>', or ("", start) if the
// region is unterminated or contains non-hex bytes.
func scanHexString(data []byte, start int) (string, int) {
	for i := start + 1; i < len(data); i++ {
		c := data[i]
		if c == '>' {
			return string(data[start+1 : i]), i
		}
		if !isHexOrSpace(c) {
			return "", start
		}
	}
	return "", start
}

func isHexOrSpace(c byte) bool {
	return c >= '0' && c <= '9' ||
		c >= 'a' && c <= 'f' ||
		c >= 'A' && c <= 'F' ||
		c == ' ' || c == '\n' || c == '\r' || c == '\t'
}

// UnescapeLiteral decodes the backslash sequences of a literal string
// region: \n \r \t \\ \( \) plus up-to-three-digit octal codes. Unknown
// escapes keep the escaped byte as-is.
func UnescapeLiteral(raw []byte) string {
	var b strings.Builder
	b.Grow(len(raw))
	for i := 0; i < len(raw); i++ {
		if raw[i] != '\\' || i+1 >= len(raw) {
			b.WriteByte(raw[i])
			continue
		}
		i++
		switch raw[i] {
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case 't':
			b.WriteByte('\t')
		case '(':
			b.WriteByte('(')
		case ')':
			b.WriteByte(')')
		case '\\':
			b.WriteByte('\\')
		default:
			if raw[i] >= '0' && raw[i] <= '7' {
				val := int(raw[i] - '0')
				for j := 0; j < 2 && i+1 < len(raw) && raw[i+1] >= '0' && raw[i+1] <= '7'; j++ {
					i++
					val = val*8 + int(raw[i]-'0')
				}
				if val < 256 {
					b.WriteByte(byte(val))
				}
			} else {
				b.WriteByte(raw[i])
			}
		}
	}
	return b.String()
}

// DecodeHexString decodes an angle-bracket hex region. Even-length input is
// tried as UTF-16BE first (the common encoding for hex-written text), then
// as raw bytes.
func DecodeHexString(h string) string {
	h = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, h)
	if len(h)%2 != 0 {
		h += "0"
	}
	raw, err := hex.DecodeString(h)
	if err != nil {
		return ""
	}

	if len(raw) >= 2 && len(raw)%2 == 0 {
		var b strings.Builder
		printable := 0
		for i := 0; i+1 < len(raw); i += 2 {
			cp := rune(raw[i])<<8 | rune(raw[i+1])
			if unicode.IsPrint(cp) || cp == ' ' {
				b.WriteRune(cp)
				printable++
			}
		}
		if printable*2 >= len(raw) {
			return b.String()
		}
	}

	return decodePermissive(raw)
}

// mapPrintable keeps printable runes, folds recovered line breaks and tabs
// into spaces and drops everything else. Leading and trailing spaces are
// kept; they are significant inside TJ array fragments.
func mapPrintable(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsPrint(r) {
			return r
		}
		if r == '\n' || r == '\r' || r == '\t' {
			return ' '
		}
		return -1
	}, s)
}

// cleanFragment collapses a recovered fragment to trimmed printable text.
func cleanFragment(s string) string {
	return strings.TrimSpace(mapPrintable(s))
}
