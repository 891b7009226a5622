package extractor

import (
	"bytes"
	"compress/zlib"
	"io"
	"regexp"
	"sort"
	"strings"
)

// TextObjectStrategy walks the document's content streams and pulls text out
// of BT...ET text objects via the Tj, TJ and ' operators. Flate-compressed
// streams are attempted with zlib; streams using other filters stay opaque
// and contribute nothing, which is the documented best-effort limitation.
type TextObjectStrategy struct{}

func (s *TextObjectStrategy) Name() string { return "textobject" }

var (
	litShowRe   = regexp.MustCompile(`\(((?:\\.|[^\\)])*)\)\s*(?:Tj|')`)
	hexShowRe   = regexp.MustCompile(`<([0-9A-Fa-f \r\n\t]+)>\s*Tj`)
	showArrayRe = regexp.MustCompile(`\[((?:[^\[\]])*)\]\s*TJ`)
	litInArray  = regexp.MustCompile(`\(((?:\\.|[^\\)])*)\)`)
	hexInArray  = regexp.MustCompile(`<([0-9A-Fa-f \r\n\t]+)>`)
)

func (s *TextObjectStrategy) Extract(data []byte) string {
	var parts []string
	streams := contentStreams(data)
	if len(streams) == 0 {
		// Some generators inline the operators outside stream markers.
		streams = [][]byte{data}
	}

	for _, stream := range streams {
		content := decodePermissive(tryInflate(stream))
		if !strings.Contains(content, "Tj") && !strings.Contains(content, "TJ") {
			continue
		}
		for _, block := range textObjects(content) {
			parts = append(parts, showStrings(block)...)
		}
	}

	return strings.Join(parts, " ")
}

// contentStreams returns the raw bytes between each stream/endstream pair.
func contentStreams(data []byte) [][]byte {
	var streams [][]byte
	openMarker := []byte("stream")
	endMarker := []byte("endstream")

	offset := 0
	for offset < len(data) {
		idx := bytes.Index(data[offset:], openMarker)
		if idx < 0 {
			break
		}
		start := offset + idx + len(openMarker)
		if start < len(data) && data[start] == '\r' {
			start++
		}
		if start < len(data) && data[start] == '\n' {
			start++
		}
		endIdx := bytes.Index(data[start:], endMarker)
		if endIdx < 0 {
			break
		}
		if endIdx > 0 {
			streams = append(streams, data[start:start+endIdx])
		}
		offset = start + endIdx + len(endMarker)
	}
	return streams
}

// tryInflate attempts zlib decompression, returning the input unchanged when
// the stream is not deflate-compressed.
func tryInflate(data []byte) []byte {
	r, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return data
	}
	defer r.Close()

	out, err := io.ReadAll(r)
	if err != nil {
		return data
	}
	return out
}

// textObjects returns the content between each BT and ET operator pair. When
// no pairs exist the whole content is treated as one block so that files with
// stray operators still yield their literals.
func textObjects(content string) []string {
	var blocks []string
	rest := content
	for {
		bt := strings.Index(rest, "BT")
		if bt < 0 {
			break
		}
		et := strings.Index(rest[bt:], "ET")
		if et < 0 {
			break
		}
		blocks = append(blocks, rest[bt:bt+et+2])
		rest = rest[bt+et+2:]
	}
	if len(blocks) == 0 {
		return []string{content}
	}
	return blocks
}

// textSpan is a decoded string fragment tagged with its byte offset, so
// fragments found by different operator patterns can be re-ordered into
// encounter order.
type textSpan struct {
	pos  int
	text string
}

// showStrings collects the decoded arguments of the text-showing operators in
// a block, preserving encounter order. Span-returning regexp matches keep the
// scan stateless.
func showStrings(block string) []string {
	var spans []textSpan

	for _, idx := range litShowRe.FindAllStringSubmatchIndex(block, -1) {
		lit := block[idx[2]:idx[3]]
		if t := cleanFragment(UnescapeLiteral([]byte(lit))); t != "" {
			spans = append(spans, textSpan{idx[0], t})
		}
	}
	for _, idx := range hexShowRe.FindAllStringSubmatchIndex(block, -1) {
		if t := cleanFragment(DecodeHexString(block[idx[2]:idx[3]])); t != "" {
			spans = append(spans, textSpan{idx[0], t})
		}
	}
	for _, idx := range showArrayRe.FindAllStringSubmatchIndex(block, -1) {
		if t := decodeShowArray(block[idx[2]:idx[3]]); t != "" {
			spans = append(spans, textSpan{idx[0], t})
		}
	}

	sortSpans(spans)
	out := make([]string, 0, len(spans))
	for _, sp := range spans {
		out = append(out, sp.text)
	}
	return out
}

// decodeShowArray joins the string elements of a TJ array, ignoring the
// interleaved kerning numbers.
func decodeShowArray(arr string) string {
	var spans []textSpan

	// Word-internal spaces often live at fragment edges in TJ arrays, so the
	// per-fragment text keeps them and only the joined result is trimmed.
	for _, idx := range litInArray.FindAllStringSubmatchIndex(arr, -1) {
		if t := mapPrintable(UnescapeLiteral([]byte(arr[idx[2]:idx[3]]))); t != "" {
			spans = append(spans, textSpan{idx[0], t})
		}
	}
	for _, idx := range hexInArray.FindAllStringSubmatchIndex(arr, -1) {
		if t := mapPrintable(DecodeHexString(arr[idx[2]:idx[3]])); t != "" {
			spans = append(spans, textSpan{idx[0], t})
		}
	}

	sortSpans(spans)
	var b strings.Builder
	for _, sp := range spans {
		b.WriteString(sp.text)
	}
	return strings.TrimSpace(b.String())
}

func sortSpans(spans []textSpan) {
	sort.SliceStable(spans, func(i, j int) bool { return spans[i].pos < spans[j].pos })
}
