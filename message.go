// Copyright 2022 Daniel Erat.
// All rights reserved.

// Package imf parses and prints Internet Message Format messages
// (RFC 5322) together with their MIME structure (RFC 2045-2049), per
// spec.md. Parsed values retain slices of the original input buffer
// rather than copying (spec.md §3 Invariant 1): callers that need to
// keep a Message alive past the lifetime of the buffer they fed to
// Parse should not mutate or discard that buffer first.
package imf

// Message is a fully parsed email message: its body-part tree and its
// assembled IMF envelope, both built from the same retained input
// buffer, per spec.md §3.1. This mirrors derat-rendmail/message.go's
// top-level message type, generalized from "one rewritable MIME tree"
// to "body-part tree plus a separately assembled header-field record",
// since spec.md models the envelope and the body-part tree as two
// distinct views over the same header field list.
type Message struct {
	// Input is the original byte buffer Parse was called with. Raw field
	// bytes, part bodies, preambles and epilogues are sub-slices of Input,
	// as are the values of fields written on one line and the tokens parsed
	// from them. A value unfolded from several lines, quoted-string text and
	// collected whitespace are copies.
	Input []byte

	// Top is the root body part: its own Fields is the message's header
	// field list, and its Kind/body/children describe the MIME
	// structure, per spec.md §3.1.
	Top AnyPart

	// IMF is the envelope assembled from Top.Fields, per spec.md §3.2.
	IMF IMF
}

// Parse parses data as a complete message: its MIME body-part tree
// (§4.7) and, from the same header fields, its IMF envelope (§3.2),
// per spec.md §6's parse_message operation. Parse fails only if the
// header's mandatory Date/From fields are missing or malformed in a
// way that blocks finalization (§3.2 Invariants 3-4), or if a part
// nests deeper than the recursion cap (§7 failure class 7); every
// other malformed field or part is retained in best-effort form rather
// than causing Parse to fail, per spec.md §7's tolerant-by-default
// design.
func Parse(data []byte) (*Message, error) {
	top, err := buildPart(data, region{0, len(data)}, DefaultGeneric, 0)
	if err != nil {
		return nil, err
	}
	envelope, err := AssembleIMF(top.Fields)
	if err != nil {
		return nil, err
	}
	return &Message{Input: data, Top: top, IMF: envelope}, nil
}

// ParseIMF parses only data's header section into an IMF envelope,
// ignoring any body, per spec.md §6's parse_imf operation. Useful when
// a caller only needs the envelope (e.g. a mail filter inspecting
// From/Subject) and wants to skip the cost of building the full
// body-part tree.
func ParseIMF(data []byte) (IMF, error) {
	fields, _ := splitHeaderSection(data)
	parsed := make([]ParsedField, len(fields))
	for i, rf := range fields {
		parsed[i] = dispatchField(rf)
	}
	return AssembleIMF(parsed)
}

// Print re-serializes msg into a byte stream, per spec.md §6's
// print_message operation. See the package-level Print function in
// print.go for the seed parameter's meaning.
func (m *Message) Print(seed *uint64) ([]byte, error) {
	return Print(m, seed)
}
