// Copyright 2022 Daniel Erat.
// All rights reserved.

package imf

import "bytes"

// DefaultContext is the context-sensitive default MIME type the part-tree
// builder assumes for a region with no (or an unparseable) Content-Type,
// per spec.md §4.7/§9 ("a parameterized default-provider rather than a
// mutable flag").
type DefaultContext int

const (
	// DefaultGeneric is the ordinary default: text/plain; charset=us-ascii.
	DefaultGeneric DefaultContext = iota
	// DefaultDigestChild is the default inside multipart/digest: message/rfc822.
	DefaultDigestChild
)

// PartKind is the closed AnyPart tag, per spec.md §3.1.
type PartKind int

const (
	PartMultipart PartKind = iota
	PartMessage
	PartText
	PartBinary
)

// AnyPart is the tagged union of body-part shapes, per spec.md §3.1.
// Every part (including the top-level Message's body) carries its own
// ordered header field list (Fields) and the MIME data aggregated from it
// (MIME), following derat-rendmail/message.go's headerData per part.
type AnyPart struct {
	Kind PartKind

	Fields []ParsedField
	MIME   MIME

	// Multipart
	Preamble []byte
	Epilogue []byte
	Children []AnyPart

	// Message: one child plus the inner message's assembled envelope.
	InnerIMF    *IMF
	InnerIMFErr error
	Child       *AnyPart

	// Text / Binary leaf.
	Body []byte
}

// buildPart parses one part's header + body from region r of buf,
// interpreting the header under defaultCtx when no usable Content-Type is
// present, per spec.md §4.7. depth bounds recursion (spec.md §5/§7 failure
// class 7).
func buildPart(buf []byte, r region, defaultCtx DefaultContext, depth int) (AnyPart, error) {
	if depth > maxNesting {
		return AnyPart{}, &NestingError{Depth: depth}
	}

	header := r.slice(buf)
	rawFields, relBodyStart := splitHeaderSection(header)
	fields := make([]ParsedField, len(rawFields))
	for i, rf := range rawFields {
		fields[i] = dispatchField(rf)
	}
	mime := buildMIME(fields, header[:relBodyStart])
	bodyRegion := region{r.start + relBodyStart, r.end}

	effective := mime.Type
	if !hasExplicitContentType(fields) {
		switch defaultCtx {
		case DefaultDigestChild:
			effective = InterpretedType{Kind: KindMessage, MessageSub: MessageRFC822}
		default:
			effective = InterpretedType{Kind: KindText, TextSub: TextPlain, Charset: Inferred(CharsetUSASCII)}
		}
		mime.Type = effective
	}

	switch effective.Kind {
	case KindMultipart:
		return buildMultipart(buf, bodyRegion, fields, mime, effective, depth)
	case KindMessage:
		return buildMessagePart(buf, bodyRegion, fields, mime, depth)
	default:
		body := bodyRegion.slice(buf)
		kind := PartText
		if effective.Kind == KindBinary {
			kind = PartBinary
		}
		return AnyPart{Kind: kind, Fields: fields, MIME: mime, Body: body}, nil
	}
}

func hasExplicitContentType(fields []ParsedField) bool {
	for _, f := range fields {
		if f.Kind == FieldContentType && f.Err == nil {
			return true
		}
	}
	return false
}

// buildMultipart scans bodyRegion for the boundary delimiter and recurses
// into each child, per spec.md §4.7. Grounded on
// derat-rendmail/message.go's copyMessagePart/copyBody (preamble, child
// recursion, terminator-with-trailing-"--" check), generalized from
// copy-to-writer to build-a-tree-of-retained-slices.
func buildMultipart(buf []byte, bodyRegion region, fields []ParsedField, mime MIME, effective InterpretedType, depth int) (AnyPart, error) {
	delim := append([]byte("--"), effective.Boundary...)
	body := bodyRegion.slice(buf)

	firstIdx := findBoundaryLineStart(body, delim)
	if firstIdx < 0 {
		// No boundary found at all: treat the whole region as preamble
		// with no children and no epilogue (spec.md §7 failure class 5:
		// "no data is discarded; bytes go into the epilogue region" — here
		// there's no delimiter at all, so everything is preamble).
		return AnyPart{Kind: PartMultipart, Fields: fields, MIME: mime, Preamble: body}, nil
	}

	// The line break before a delimiter belongs to the delimiter, not to
	// the preamble or child body that precedes it.
	bodyEnd := func(idx, floor int) int {
		if idx > floor && body[idx-1] == '\n' {
			idx--
			for n := 0; n < 2 && idx > floor && body[idx-1] == '\r'; n++ {
				idx--
			}
		}
		return idx
	}
	preamble := body[:bodyEnd(firstIdx, 0)]
	pos := firstIdx
	var children []AnyPart
	for {
		lineEnd, isTerm, ok := consumeBoundaryLine(body, pos, delim)
		if !ok {
			// Malformed/truncated boundary line; stop scanning here and
			// treat the remainder as epilogue.
			return AnyPart{
				Kind: PartMultipart, Fields: fields, MIME: mime,
				Preamble: preamble, Children: children, Epilogue: body[pos:],
			}, nil
		}
		if isTerm {
			return AnyPart{
				Kind: PartMultipart, Fields: fields, MIME: mime,
				Preamble: preamble, Children: children, Epilogue: body[lineEnd:],
			}, nil
		}
		nextIdx := findBoundaryLineStart(body[lineEnd:], delim)
		var childEnd int
		if nextIdx < 0 {
			// No terminator found: the rest of the region becomes one
			// final child, closed implicitly (spec.md §4.7 failure
			// recovery).
			childEnd = len(body)
		} else {
			childEnd = lineEnd + nextIdx
		}
		childCtx := DefaultGeneric
		if effective.MultipartSub == MultipartDigest {
			childCtx = DefaultDigestChild
		}
		childBodyEnd := childEnd
		if nextIdx >= 0 {
			childBodyEnd = bodyEnd(childEnd, lineEnd)
		}
		childAbsRegion := region{bodyRegion.start + lineEnd, bodyRegion.start + childBodyEnd}
		child, err := buildPart(buf, childAbsRegion, childCtx, depth+1)
		if err != nil {
			return AnyPart{}, err
		}
		children = append(children, child)
		if nextIdx < 0 {
			return AnyPart{
				Kind: PartMultipart, Fields: fields, MIME: mime,
				Preamble: preamble, Children: children,
			}, nil
		}
		pos = childEnd
	}
}

// findBoundaryLineStart finds the offset of the first occurrence of delim
// that starts a line (either at offset 0 or immediately following a CRLF),
// per spec.md §4.7 ("anchored at start-of-line"). Returns -1 if not found.
func findBoundaryLineStart(body, delim []byte) int {
	from := 0
	for {
		idx := bytes.Index(body[from:], delim)
		if idx < 0 {
			return -1
		}
		abs := from + idx
		if abs == 0 || precededByCRLF(body, abs) {
			return abs
		}
		from = abs + 1
	}
}

func precededByCRLF(body []byte, idx int) bool {
	if idx >= 1 && body[idx-1] == '\n' {
		return true
	}
	return false
}

// consumeBoundaryLine parses the delimiter line starting at pos (which
// must equal the start of delim), returning the offset just past the
// line's terminating CRLF, whether it was the closing "--" terminator, and
// whether parsing succeeded. A CRLF preceding the boundary is considered
// part of the delimiter, not the preceding body (spec.md §4.7); that CRLF
// is already excluded from pos by findBoundaryLineStart's caller (pos
// points at "--boundary", not at the preceding CRLF).
func consumeBoundaryLine(body []byte, pos int, delim []byte) (lineEnd int, isTerm bool, ok bool) {
	if pos+len(delim) > len(body) {
		return 0, false, false
	}
	i := pos + len(delim)
	if i+1 < len(body) && body[i] == '-' && body[i+1] == '-' {
		isTerm = true
		i += 2
	}
	// Optional trailing whitespace before the line's CRLF is tolerated.
	for i < len(body) && isWSP(body[i]) {
		i++
	}
	s := &scanner{buf: body, pos: i}
	if n := s.isCRLFAt(0); n > 0 {
		i += n
	} else if i < len(body) {
		// Trailing garbage on the delimiter line that isn't CRLF: still
		// accept the line (tolerant parsing), ending at end-of-line.
		for i < len(body) && body[i] != '\n' {
			i++
		}
		if i < len(body) {
			i++
		}
	}
	return i, isTerm, true
}

// buildMessagePart parses the "message/*" body: inner headers, a fresh
// default context, and recursion, per spec.md §4.7.
func buildMessagePart(buf []byte, bodyRegion region, fields []ParsedField, mime MIME, depth int) (AnyPart, error) {
	child, err := buildPart(buf, bodyRegion, DefaultGeneric, depth+1)
	if err != nil {
		return AnyPart{}, err
	}
	// child.Fields is the inner message's own header field list, already
	// parsed by the buildPart call above; reuse it rather than re-framing
	// the header section a second time.
	innerIMF, imfErr := AssembleIMF(child.Fields)
	cp := child
	return AnyPart{
		Kind: PartMessage, Fields: fields, MIME: mime,
		InnerIMF: &innerIMF, InnerIMFErr: imfErr, Child: &cp,
	}, nil
}
