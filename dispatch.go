// Copyright 2022 Daniel Erat.
// All rights reserved.

package imf

// FieldKind is the closed set of recognized header field grammars, per
// spec.md §4.6's dispatch table.
type FieldKind int

const (
	FieldDate FieldKind = iota
	FieldFrom
	FieldSender
	FieldReplyTo
	FieldTo
	FieldCc
	FieldBcc
	FieldMessageID
	FieldInReplyTo
	FieldReferences
	FieldSubject
	FieldComments
	FieldKeywords
	FieldReturnPath
	FieldReceived
	FieldMIMEVersion
	FieldContentType
	FieldContentTransferEncoding
	FieldContentID
	FieldContentDescription
	FieldContentDisposition
	FieldUnknown // recognized grammar bucket: "other", printed under its original name
	FieldBad     // name/value split itself failed
)

// grammarOf maps a lower-cased canonical field name to its FieldKind, per
// spec.md §4.6. Grounded on
// other_examples/6b1b91f8_wttw-orderedheaders__generate.go.go's
// HeaderSyntax map, adapted from a code-generation input table into a
// runtime dispatch table.
var grammarOf = map[string]FieldKind{
	"date":                      FieldDate,
	"from":                      FieldFrom,
	"sender":                    FieldSender,
	"reply-to":                  FieldReplyTo,
	"to":                        FieldTo,
	"cc":                        FieldCc,
	"bcc":                       FieldBcc,
	"message-id":                FieldMessageID,
	"in-reply-to":               FieldInReplyTo,
	"references":                FieldReferences,
	"subject":                   FieldSubject,
	"comments":                  FieldComments,
	"keywords":                  FieldKeywords,
	"return-path":               FieldReturnPath,
	"received":                  FieldReceived,
	"mime-version":              FieldMIMEVersion,
	"content-type":              FieldContentType,
	"content-transfer-encoding": FieldContentTransferEncoding,
	"content-id":                FieldContentID,
	"content-description":       FieldContentDescription,
	"content-disposition":       FieldContentDisposition,
}

// ParsedField is a single header field after grammar dispatch, per
// spec.md §4.6/§4.9. Exactly one of the value fields is meaningful,
// selected by Kind; if Err is non-nil the field's typed value is invalid
// and the field should be treated as an unstructured "bad" retention
// (spec.md §7, failure classes 1-2).
type ParsedField struct {
	Kind FieldKind
	Name string // canonical field name, e.g. "Content-Type"
	Raw  RawField
	Err  error

	Date          DateTime
	Mailboxes     []MailboxRef
	Mailbox       MailboxRef
	Addresses     []AddressRef
	MessageIDVal  MessageID
	MessageIDs    []MessageID
	Text          Unstructured
	Phrases       []Phrase
	ReturnPath    *AddrSpec
	Received      ReceivedLog
	VersionMajor  int
	VersionMinor  int
	Naive         NaiveType
	Mechanism     Mechanism
}

// dispatchField routes a RawField's value slice to its grammar and
// returns the typed result. A bad name/value split or a grammar failure
// never aborts the overall parse (spec.md §4.6): the field comes back
// with Kind set appropriately and Err populated so the caller can retain
// it as unstructured.
func dispatchField(rf RawField) ParsedField {
	if rf.Bad {
		return ParsedField{Kind: FieldBad, Raw: rf, Text: scanUnstructured(rf.Value)}
	}
	name := canonicalFieldName(rf.Name)
	kind, known := grammarOf[lowerASCII(name)]
	if !known {
		return ParsedField{Kind: FieldUnknown, Name: name, Raw: rf, Text: scanUnstructured(rf.Value)}
	}

	pf := ParsedField{Kind: kind, Name: name, Raw: rf}
	switch kind {
	case FieldDate:
		dt, err := ParseDateTime(rf.Value)
		pf.Date, pf.Err = dt, err
	case FieldFrom:
		mbs, err := ParseMailboxList(rf.Value)
		pf.Mailboxes, pf.Err = mbs, err
	case FieldSender:
		mb, ok := scanMailbox(newScanner(rf.Value))
		if !ok {
			pf.Err = &FieldError{Name: name, Text: "malformed mailbox"}
		}
		pf.Mailbox = mb
	case FieldReplyTo, FieldTo, FieldCc:
		addrs, err := ParseAddressList(rf.Value)
		pf.Addresses, pf.Err = addrs, err
	case FieldBcc:
		addrs, err := ParseNullableAddressList(rf.Value)
		pf.Addresses, pf.Err = addrs, err
	case FieldMessageID:
		id, err := ParseMessageID(rf.Value)
		pf.MessageIDVal, pf.Err = id, err
	case FieldInReplyTo, FieldReferences:
		ids, err := ParseMessageIDList(rf.Value)
		pf.MessageIDs, pf.Err = ids, err
	case FieldSubject, FieldComments:
		pf.Text = scanUnstructured(rf.Value)
	case FieldKeywords:
		phrases, err := parsePhraseList(rf.Value)
		pf.Phrases, pf.Err = phrases, err
	case FieldReturnPath:
		addr, err := ParseReturnPath(rf.Value)
		pf.ReturnPath, pf.Err = addr, err
	case FieldReceived:
		rl, err := ParseReceived(rf.Value)
		pf.Received, pf.Err = rl, err
	case FieldMIMEVersion:
		maj, min, err := parseMIMEVersion(rf.Value)
		pf.VersionMajor, pf.VersionMinor, pf.Err = maj, min, err
	case FieldContentType:
		nt, err := ParseNaiveType(rf.Value)
		pf.Naive, pf.Err = nt, err
	case FieldContentTransferEncoding:
		pf.Mechanism = ParseMechanism(rf.Value)
	case FieldContentID:
		id, err := ParseMessageID(rf.Value)
		pf.MessageIDVal, pf.Err = id, err
	case FieldContentDescription:
		pf.Text = scanUnstructured(rf.Value)
	case FieldContentDisposition:
		nt, err := ParseNaiveType(rf.Value)
		pf.Naive, pf.Err = nt, err
	}

	if pf.Err != nil {
		// Grammar failure: retain as unstructured for re-emission, per
		// spec.md §7 failure class 2, but keep Kind/Name so the printer
		// still knows which field this was.
		pf.Text = scanUnstructured(rf.Value)
	}
	return pf
}

// parsePhraseList parses a comma-separated list of phrases, used for
// Keywords (spec.md §4.6: "phrase-list").
func parsePhraseList(value []byte) ([]Phrase, error) {
	s := newScanner(value)
	var out []Phrase
	for {
		s.skipCFWS()
		if s.eof() {
			break
		}
		ph, ok := scanPhrase(s)
		if !ok {
			return nil, &FieldError{Name: "Keywords", Text: "malformed phrase"}
		}
		out = append(out, ph)
		s.skipCFWS()
		if b, ok := s.peek(); ok && b == ',' {
			s.advance()
			continue
		}
		break
	}
	if len(out) == 0 {
		return nil, &FieldError{Name: "Keywords", Text: "empty phrase list"}
	}
	return out, nil
}

// parseMIMEVersion parses "D.D" with optional surrounding CFWS, per
// spec.md §4.6.
func parseMIMEVersion(value []byte) (major, minor int, err error) {
	s := newScanner(value)
	s.skipCFWS()
	maj, ok := s.scanDigits(1, 9)
	if !ok {
		return 0, 0, &FieldError{Name: "MIME-Version", Text: "missing major version"}
	}
	s.skipCFWS()
	if b, ok := s.peek(); !ok || b != '.' {
		return 0, 0, &FieldError{Name: "MIME-Version", Text: "missing '.'"}
	}
	s.advance()
	s.skipCFWS()
	min, ok := s.scanDigits(1, 9)
	if !ok {
		return 0, 0, &FieldError{Name: "MIME-Version", Text: "missing minor version"}
	}
	return maj, min, nil
}

func lowerASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c - 'A' + 'a'
		}
	}
	return string(b)
}
