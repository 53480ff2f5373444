// Copyright 2022 Daniel Erat.
// All rights reserved.

package imf

import (
	"bytes"
	"fmt"
	"regexp"

	"github.com/derat/imf/boundarygen"
)

// Print re-serializes msg to a valid RFC 5322/2045-compliant byte stream,
// regenerating fresh multipart boundaries, per spec.md §4.8/§6. If seed is
// non-nil it deterministically seeds the boundary generator (used by
// tests and by callers wanting reproducible output); a nil seed draws
// from OS randomness.
func Print(msg *Message, seed *uint64) ([]byte, error) {
	gen, err := boundarygen.New(seed)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	printPart(&buf, msg.Top, gen)
	return buf.Bytes(), nil
}

// printPart writes one part's header block, blank line and body to buf,
// recursing into children/inner messages as needed, per spec.md §4.8.
func printPart(buf *bytes.Buffer, part AnyPart, gen *boundarygen.Generator) {
	var newBoundary string
	if part.Kind == PartMultipart {
		newBoundary = gen.Next()
	}
	printFields(buf, part.Fields, newBoundary)
	buf.WriteString("\r\n")

	switch part.Kind {
	case PartText, PartBinary:
		buf.Write(part.Body)
	case PartMultipart:
		buf.Write(part.Preamble)
		delim := "--" + newBoundary
		for _, child := range part.Children {
			buf.WriteString("\r\n")
			buf.WriteString(delim)
			buf.WriteString("\r\n")
			printPart(buf, child, gen)
		}
		buf.WriteString("\r\n")
		buf.WriteString(delim)
		buf.WriteString("--\r\n")
		buf.Write(part.Epilogue)
	case PartMessage:
		if part.Child != nil {
			printPart(buf, *part.Child, gen)
		}
	}
}

// printFields writes every field in part.Fields, in original order
// (spec.md §8 P5), folding each at 78 columns. If newBoundary is
// non-empty, the Content-Type field (if present) has its boundary=
// parameter replaced with newBoundary rather than the original.
func printFields(buf *bytes.Buffer, fields []ParsedField, newBoundary string) {
	for _, f := range fields {
		line, verbatim := renderField(f, newBoundary)
		if line == "" {
			continue
		}
		if verbatim {
			// Already exactly as it appeared in the input, folding and
			// all; re-folding it as a flat string would sweep its
			// embedded CRLFs into ordinary text.
			buf.WriteString(line)
			continue
		}
		for _, folded := range foldField(line) {
			buf.WriteString(folded)
		}
	}
}

// renderField renders one field as a single unfolded "Name: value\r\n"
// logical line for the caller to fold, unless verbatim is true, in
// which case line is already exactly as framed off the input (fields
// that failed to parse, or whose grammar is unrecognized, are rendered
// straight from their retained raw bytes rather than being
// reconstructed from a typed value that failed to capture them
// faithfully, per spec.md §7).
func renderField(f ParsedField, newBoundary string) (line string, verbatim bool) {
	if f.Kind == FieldBad || f.Err != nil || f.Kind == FieldUnknown {
		return string(f.Raw.Raw), true
	}
	switch f.Kind {
	case FieldDate:
		line = "Date: " + formatDateTime(f.Date)
	case FieldFrom:
		line = "From: " + formatMailboxList(f.Mailboxes)
	case FieldSender:
		line = "Sender: " + formatMailbox(f.Mailbox)
	case FieldReplyTo:
		line = "Reply-To: " + formatAddressList(f.Addresses)
	case FieldTo:
		line = "To: " + formatAddressList(f.Addresses)
	case FieldCc:
		line = "Cc: " + formatAddressList(f.Addresses)
	case FieldBcc:
		line = "Bcc: " + formatAddressList(f.Addresses)
	case FieldMessageID:
		line = "Message-ID: " + formatMessageID(f.MessageIDVal)
	case FieldInReplyTo:
		line = "In-Reply-To: " + formatMessageIDList(f.MessageIDs)
	case FieldReferences:
		line = "References: " + formatMessageIDList(f.MessageIDs)
	case FieldSubject:
		line = "Subject: " + f.Text.String()
	case FieldComments:
		line = "Comments: " + f.Text.String()
	case FieldKeywords:
		line = "Keywords: " + formatPhraseList(f.Phrases)
	case FieldReturnPath:
		line = "Return-Path: " + formatReturnPath(f.ReturnPath)
	case FieldReceived:
		line = "Received: " + formatReceived(f.Received)
	case FieldMIMEVersion:
		line = fmt.Sprintf("MIME-Version: %d.%d", f.VersionMajor, f.VersionMinor)
	case FieldContentType:
		line = "Content-Type: " + formatNaiveType(f.Naive, newBoundary)
	case FieldContentTransferEncoding:
		line = "Content-Transfer-Encoding: " + formatMechanism(f.Mechanism)
	case FieldContentID:
		line = "Content-ID: " + formatMessageID(f.MessageIDVal)
	case FieldContentDescription:
		line = "Content-Description: " + f.Text.String()
	case FieldContentDisposition:
		line = "Content-Disposition: " + formatNaiveType(f.Naive, "")
	default:
		line = f.Name + ": " + string(f.Raw.Value)
	}
	return line + "\r\n", false
}

func formatDateTime(d DateTime) string {
	return d.T.Format("Mon, 2 Jan 2006 15:04:05 -0700")
}

func formatWord(w Word) string {
	switch w.Kind {
	case WordQuoted:
		return formatQuoted(w.Quoted)
	case WordEncoded:
		return string(w.Encoded.Raw)
	default:
		return string(w.Atom)
	}
}

func formatQuoted(chunks []QuotedChunk) string {
	var buf bytes.Buffer
	buf.WriteByte('"')
	for i, c := range chunks {
		if i > 0 {
			buf.WriteByte(' ')
		}
		for _, b := range c.Text {
			if b == '"' || b == '\\' {
				buf.WriteByte('\\')
			}
			buf.WriteByte(b)
		}
	}
	buf.WriteByte('"')
	return buf.String()
}

func formatPhrase(p Phrase) string {
	var buf bytes.Buffer
	for i, w := range p {
		if i > 0 {
			buf.WriteByte(' ')
		}
		buf.WriteString(formatWord(w))
	}
	return buf.String()
}

func formatPhraseList(ps []Phrase) string {
	var parts []string
	for _, p := range ps {
		parts = append(parts, formatPhrase(p))
	}
	return joinComma(parts)
}

func formatAddrSpec(a AddrSpec) string {
	var buf bytes.Buffer
	for _, t := range a.LocalPart {
		if t.Kind == LocalPartDot {
			buf.WriteByte('.')
			continue
		}
		buf.WriteString(formatWord(t.Word))
	}
	buf.WriteByte('@')
	buf.Write(rawDomainBytes(a.Domain))
	return buf.String()
}

func formatMailbox(m MailboxRef) string {
	if len(m.Display) == 0 {
		return formatAddrSpec(m.Addr)
	}
	return formatPhrase(m.Display) + " <" + formatAddrSpec(m.Addr) + ">"
}

func formatMailboxList(ms []MailboxRef) string {
	var parts []string
	for _, m := range ms {
		parts = append(parts, formatMailbox(m))
	}
	return joinComma(parts)
}

func formatGroup(g GroupRef) string {
	var parts []string
	for _, m := range g.Mailboxes {
		parts = append(parts, formatMailbox(m))
	}
	return formatPhrase(g.Name) + ": " + joinComma(parts) + ";"
}

func formatAddress(a AddressRef) string {
	if a.Kind == AddressMany {
		return formatGroup(a.Group)
	}
	return formatMailbox(a.Box)
}

func formatAddressList(as []AddressRef) string {
	var parts []string
	for _, a := range as {
		parts = append(parts, formatAddress(a))
	}
	return joinComma(parts)
}

func formatMessageID(id MessageID) string {
	if id.RightKind == MessageIDRightLiteral {
		return "<" + string(id.Left) + "@[" + string(id.Right) + "]>"
	}
	if len(id.Right) == 0 {
		return "<" + string(id.Left) + ">"
	}
	return "<" + string(id.Left) + "@" + string(id.Right) + ">"
}

func formatMessageIDList(ids []MessageID) string {
	var buf bytes.Buffer
	for i, id := range ids {
		if i > 0 {
			buf.WriteByte(' ')
		}
		buf.WriteString(formatMessageID(id))
	}
	return buf.String()
}

func formatReturnPath(addr *AddrSpec) string {
	if addr == nil {
		return "<>"
	}
	return "<" + formatAddrSpec(*addr) + ">"
}

func formatReceived(r ReceivedLog) string {
	var buf bytes.Buffer
	for i, t := range r.Tokens {
		if i > 0 {
			buf.WriteByte(' ')
		}
		switch t.Kind {
		case ReceivedAddr:
			buf.WriteString("<" + formatAddrSpec(t.Addr) + ">")
		case ReceivedDomain:
			buf.Write(rawDomainBytes(t.Domain))
		default:
			buf.WriteString(formatWord(t.Word))
		}
	}
	buf.WriteString("; ")
	buf.WriteString(formatDateTime(r.Date))
	return buf.String()
}

func formatMIMEWord(m MIMEWord) string {
	if m.Quoted {
		return formatQuoted(m.Chunks)
	}
	return string(m.Token)
}

func formatNaiveType(n NaiveType, newBoundary string) string {
	var buf bytes.Buffer
	buf.Write(n.Main)
	buf.WriteByte('/')
	buf.Write(n.Sub)
	for _, p := range n.Params {
		buf.WriteString("; ")
		buf.Write(p.Name)
		if newBoundary != "" && bytes.EqualFold(p.Name, []byte("boundary")) {
			buf.WriteString(`="` + newBoundary + `"`)
			continue
		}
		if len(p.Value.Token) > 0 || len(p.Value.Chunks) > 0 || p.Value.Quoted {
			buf.WriteByte('=')
			buf.WriteString(formatMIMEWord(p.Value))
		}
	}
	return buf.String()
}

func formatMechanism(m Mechanism) string {
	switch m.Kind {
	case Mechanism7Bit:
		return "7bit"
	case Mechanism8Bit:
		return "8bit"
	case MechanismBinary:
		return "binary"
	case MechanismQuotedPrintable:
		return "quoted-printable"
	case MechanismBase64:
		return "base64"
	default:
		return string(m.Other)
	}
}

func joinComma(parts []string) string {
	var buf bytes.Buffer
	for i, p := range parts {
		if i > 0 {
			buf.WriteString(", ")
		}
		buf.WriteString(p)
	}
	return buf.String()
}

// foldRegexp matches a run of leading WSP plus one or more non-WSP bytes,
// i.e. one "word" together with the whitespace that precedes it. Grounded
// verbatim on derat-rendmail/message.go's foldHeaderField/foldRegexp.
var foldRegexp = regexp.MustCompile(`[ \t]*[^ \t]+`)

// foldField wraps an unfolded "Name: value\r\n" logical line across
// multiple physical lines, each ending in "\r\n", at a 78-column soft
// limit, per spec.md §4.8. Grounded directly on derat-rendmail's
// foldHeaderField: tokens are packed greedily onto the current line;
// a token that would push the line past 78 columns starts a new one
// instead. A fold consisting only of whitespace is never emitted alone
// (RFC 5322 §2.2.3); the greedy-pack algorithm already guarantees this
// since every token (except possibly the first) carries its own leading
// whitespace, so a lone whitespace-only line can't arise. When a single
// token exceeds 78 columns on its own, it is emitted over-long rather
// than split mid-token, since RFC 5322 allows unfoldable overlength
// lines.
func foldField(unfolded string) []string {
	const term = "\r\n"
	trimmed := unfolded
	for len(trimmed) > 0 && (trimmed[len(trimmed)-1] == '\n' || trimmed[len(trimmed)-1] == '\r') {
		trimmed = trimmed[:len(trimmed)-1]
	}
	var folded []string
	for _, p := range foldRegexp.FindAllString(trimmed, -1) {
		if len(folded) == 0 {
			folded = append(folded, p)
		} else if len(folded[len(folded)-1])+len(p) <= 78 {
			folded[len(folded)-1] += p
		} else {
			folded[len(folded)-1] += term
			folded = append(folded, p)
		}
	}
	if len(folded) > 0 {
		folded[len(folded)-1] += term
	}
	return folded
}
