// Copyright 2022 Daniel Erat.
// All rights reserved.

package imf

import "bytes"

// RawField is one header field as framed off the input, before grammar
// dispatch: the verbatim folded lines, the split name/value, and whether
// the name/value split itself succeeded (spec.md §4.6).
type RawField struct {
	Raw   []byte // the full field including fold CRLFs and trailing CRLF
	Name  []byte // empty if the split failed ("bad" field)
	Value []byte // unfolded value; empty/irrelevant if the split failed
	Bad   bool
}

// splitHeaderSection scans buf for the header/body boundary: a sequence of
// foldable lines terminated by a blank line, per spec.md §4.6. Grounded on
// derat-rendmail/message_reader.go's readFoldedLine, generalized from a
// single-line reader over a bufio.Reader to a whole-buffer byte scanner
// (the part-tree builder needs random access into already-framed
// regions, which a stream reader can't give back).
//
// Returns the list of raw fields and the index in buf where the body
// begins (just after the blank-line terminator). If no blank line is
// found, the entire buffer is treated as header with an empty body,
// matching the teacher's tolerant EOF handling in copyHeader.
func splitHeaderSection(buf []byte) (fields []RawField, bodyStart int) {
	s := newScanner(buf)
	for {
		if s.eof() {
			return fields, s.pos
		}
		start := s.pos
		unfolded, blank := readFoldedField(s)
		if blank {
			return fields, s.pos
		}
		raw := s.slice(start)
		name, value, ok := splitFieldNameValue(unfolded)
		if !ok {
			fields = append(fields, RawField{Raw: raw, Bad: true, Value: unfolded})
			continue
		}
		fields = append(fields, RawField{Raw: raw, Name: name, Value: value})
	}
}

// readFoldedField consumes one foldable line (and its continuations) from
// s and returns its unfolded content. blank is true if the very first line
// is empty (the header/body separator), in which case the caller should
// stop; s is left positioned just after the separator.
func readFoldedField(s *scanner) (unfolded []byte, blank bool) {
	firstStart := s.pos
	lineEnd := scanToEOL(s)
	first := s.buf[firstStart:lineEnd]
	if len(first) == 0 {
		return nil, true
	}
	// A single-line value stays a sub-slice of the input; the capacity limit
	// makes the first continuation's append copy rather than overwrite the
	// bytes that follow.
	unfolded = first[:len(first):len(first)]
	for {
		b, ok := s.peek()
		if !ok {
			return unfolded, false
		}
		if !isWSP(b) {
			return unfolded, false
		}
		contStart := s.pos
		contEnd := scanToEOL(s)
		unfolded = append(unfolded, s.buf[contStart:contEnd]...)
	}
}

// scanToEOL advances s past one line's content plus its CRLF terminator
// and returns the index of the line's content end (exclusive of the
// terminator). Accepts the permissive CRLF variants of spec.md §4.1.
func scanToEOL(s *scanner) int {
	for {
		if s.eof() {
			return s.pos
		}
		if n := s.isCRLFAt(0); n > 0 {
			contentEnd := s.pos
			s.pos += n
			return contentEnd
		}
		s.advance()
	}
}

// splitFieldNameValue splits an unfolded line at the first colon, per
// spec.md §4.6: name = 1*(%d33-57 / %d59-126) (printable ASCII excluding
// ':'). Grounded on derat-rendmail/message.go's parseHeaderField,
// generalized from string+textproto.CanonicalMIMEHeaderKey (which rejects
// bytes outside the strict token set) to a permissive []byte splitter:
// lines that fail are surfaced as "bad" fields instead of erroring out
// the whole parse.
func splitFieldNameValue(line []byte) (name, value []byte, ok bool) {
	idx := bytes.IndexByte(line, ':')
	if idx < 0 {
		return nil, nil, false
	}
	n := line[:idx]
	for _, b := range n {
		if !((b >= 33 && b <= 57) || (b >= 59 && b <= 126)) {
			return nil, nil, false
		}
	}
	if len(n) == 0 {
		return nil, nil, false
	}
	v := line[idx+1:]
	// RFC 5322 §3.2.2 FWS immediately after the colon is not semantically
	// part of the value; trim leading WSP the way the teacher's
	// parseHeaderField does (strings.TrimLeft(val, " \t")).
	for len(v) > 0 && isWSP(v[0]) {
		v = v[1:]
	}
	return n, v, true
}

// canonicalFieldName title-cases a field name the way mail headers are
// conventionally displayed ("content-type" -> "Content-Type"), for
// case-insensitive dispatch lookups and for printing fields whose name
// wasn't already canonical in the input raw bytes.
func canonicalFieldName(name []byte) string {
	out := make([]byte, len(name))
	copy(out, name)
	startOfWord := true
	for i, b := range out {
		switch {
		case b == '-':
			startOfWord = true
		case startOfWord:
			if b >= 'a' && b <= 'z' {
				out[i] = b - 'a' + 'A'
			}
			startOfWord = false
		default:
			if b >= 'A' && b <= 'Z' {
				out[i] = b - 'A' + 'a'
			}
		}
	}
	return string(out)
}
