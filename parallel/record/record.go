// Package record processes a stream of records with parallel workers,
// where record boundaries come from a pluggable split function. The
// TagSplitter batches complete XML elements of one name up to an
// approximate byte size, so workers amortize decoder setup over many
// records.
package record

import (
	"bytes"
	"strings"
)

// TagSplitter is a bufio.SplitFunc provider that cuts an XML stream into
// batches of complete elements named Tag. A token holds one or more
// elements, newline separated, approximately MaxBytesApprox bytes. Data
// outside the elements is discarded.
type TagSplitter struct {
	Tag            string
	MaxBytesApprox uint
	batch          bytes.Buffer
}

func (s *TagSplitter) max() int {
	if s.MaxBytesApprox == 0 {
		return 1 << 20
	}
	return int(s.MaxBytesApprox)
}

// Split implements bufio.SplitFunc.
func (s *TagSplitter) Split(data []byte, atEOF bool) (advance int, token []byte, err error) {
	for {
		start, end := findFirstCompleteTag(string(data[advance:]), s.Tag)
		if start == -1 || end == -1 {
			break
		}
		s.batch.Write(data[advance+start : advance+end])
		s.batch.WriteByte('\n')
		advance += end
		if s.batch.Len() >= s.max() {
			return advance, s.take(), nil
		}
	}
	if atEOF {
		// Drop any incomplete trailing element.
		if s.batch.Len() > 0 {
			return len(data), s.take(), nil
		}
		return len(data), nil, nil
	}
	return advance, nil, nil
}

func (s *TagSplitter) take() []byte {
	token := make([]byte, s.batch.Len())
	copy(token, s.batch.Bytes())
	s.batch.Reset()
	return token
}

func isTagTerminator(c byte) bool {
	switch c {
	case '>', ' ', '/', '\n', '\t', '\r':
		return true
	}
	return false
}

// findFirstCompleteTag locates the first complete element of the given
// name, self-closing and same-name nesting included. Returns start and
// one past the end, or -1 when not found; end is -1 when an element
// starts but does not finish within input.
func findFirstCompleteTag(input, tagName string) (start, end int) {
	var (
		openTag  = "<" + tagName
		closeTag = "</" + tagName + ">"
	)
	for i := 0; i < len(input); {
		openStart := strings.Index(input[i:], openTag)
		if openStart == -1 {
			return -1, -1
		}
		openStart += i
		if nameEnd := openStart + len(openTag); nameEnd < len(input) && !isTagTerminator(input[nameEnd]) {
			i = openStart + 1
			continue
		}
		openEnd := strings.Index(input[openStart:], ">")
		if openEnd == -1 {
			return openStart, -1
		}
		openEnd += openStart
		if input[openEnd-1] == '/' {
			return openStart, openEnd + 1
		}
		depth := 1
		for j := openEnd + 1; j < len(input) && depth > 0; {
			var (
				nextOpen  = strings.Index(input[j:], openTag)
				nextClose = strings.Index(input[j:], closeTag)
			)
			if nextClose == -1 {
				return openStart, -1
			}
			if nextOpen != -1 && nextOpen < nextClose {
				nextOpen += j
				if nameEnd := nextOpen + len(openTag); nameEnd < len(input) && isTagTerminator(input[nameEnd]) {
					depth++
				}
				j = nextOpen + 1
				continue
			}
			nextClose += j
			depth--
			if depth == 0 {
				return openStart, nextClose + len(closeTag)
			}
			j = nextClose + len(closeTag)
		}
		i = openEnd + 1
	}
	return -1, -1
}
