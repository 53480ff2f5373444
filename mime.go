// Copyright 2022 Daniel Erat.
// All rights reserved.

package imf

import "bytes"

// Param is one "name=value" pair from a naïve Content-Type, in input
// order (spec.md §3.1).
type Param struct {
	Name  []byte
	Value MIMEWord
}

// NaiveType is the raw Content-Type as parsed, before context-sensitive
// interpretation: {main atom, sub atom, ordered parameter list}, per
// spec.md §3.1/§4.5. Grounded on derat-rendmail/message.go's use of
// mime.ParseMediaType for the overall main/sub/params shape, but
// hand-written so malformed parameter quoting degrades gracefully instead
// of rejecting the whole header.
type NaiveType struct {
	Main   []byte
	Sub    []byte
	Params []Param
}

// ParseNaiveType parses "main/sub;param=value;...", per spec.md §4.5.
func ParseNaiveType(value []byte) (NaiveType, error) {
	s := newScanner(value)
	s.skipCFWS()
	main := s.scanMIMEToken()
	if len(main) == 0 {
		return NaiveType{}, &FieldError{Name: "Content-Type", Text: "missing main type"}
	}
	s.skipCFWS()
	if b, ok := s.peek(); !ok || b != '/' {
		return NaiveType{}, &FieldError{Name: "Content-Type", Text: "missing '/'"}
	}
	s.advance()
	s.skipCFWS()
	sub := s.scanMIMEToken()
	if len(sub) == 0 {
		return NaiveType{}, &FieldError{Name: "Content-Type", Text: "missing subtype"}
	}
	nt := NaiveType{Main: main, Sub: sub}
	for {
		s.skipCFWS()
		if b, ok := s.peek(); !ok || b != ';' {
			break
		}
		s.advance()
		s.skipCFWS()
		name := s.scanMIMEToken()
		if len(name) == 0 {
			break
		}
		s.skipCFWS()
		if b, ok := s.peek(); !ok || b != '=' {
			nt.Params = append(nt.Params, Param{Name: name})
			continue
		}
		s.advance()
		s.skipCFWS()
		val, ok := scanMIMEWord(s)
		if !ok {
			continue
		}
		nt.Params = append(nt.Params, Param{Name: name, Value: val})
	}
	return nt, nil
}

// Param looks up a parameter by case-insensitive name, returning the
// first match (the interpretation layer always wants "first boundary=",
// "first charset=").
func (n NaiveType) Param(name string) (MIMEWord, bool) {
	for _, p := range n.Params {
		if bytes.EqualFold(p.Name, []byte(name)) {
			return p.Value, true
		}
	}
	return MIMEWord{}, false
}

func (n NaiveType) mainCI() string { return string(bytes.ToLower(n.Main)) }
func (n NaiveType) subCI() string  { return string(bytes.ToLower(n.Sub)) }

// InterpretedKind is the closed set of interpreted Content-Type variants,
// per spec.md §3.1.
type InterpretedKind int

const (
	KindMultipart InterpretedKind = iota
	KindMessage
	KindText
	KindBinary
)

type MultipartSubtype int

const (
	MultipartAlternative MultipartSubtype = iota
	MultipartMixed
	MultipartDigest
	MultipartParallel
	MultipartReport
	MultipartUnknown
)

type MessageSubtype int

const (
	MessageRFC822 MessageSubtype = iota
	MessagePartial
	MessageExternal
	MessageUnknown
)

type TextSubtype int

const (
	TextPlain TextSubtype = iota
	TextHTML
	TextUnknown
)

// Deductible is either Inferred or Explicit(T), per spec.md §3.1, used for
// fields whose value is computed from context when absent.
type Deductible[T any] struct {
	Explicit bool
	Value    T
}

func Inferred[T any](v T) Deductible[T]  { return Deductible[T]{Value: v} }
func ExplicitOf[T any](v T) Deductible[T] { return Deductible[T]{Explicit: true, Value: v} }

// InterpretedType is the context-sensitive interpretation of a NaiveType,
// per spec.md §3.1/§4.5.
type InterpretedType struct {
	Kind InterpretedKind

	MultipartSub MultipartSubtype
	MultipartUnk []byte
	Boundary     []byte

	MessageSub MessageSubtype
	MessageUnk []byte

	TextSub  TextSubtype
	TextUnk  []byte
	Charset  Deductible[Charset]
	RawLabel []byte // the charset= label as written, when Explicit
}

// Interpret applies spec.md §4.5's context-sensitive rules to turn a
// NaiveType into an InterpretedType:
//  1. multipart: locate boundary=; absent boundary demotes to
//     Text{Plain, Inferred US-ASCII}.
//  2. message: subtype in {rfc822, partial, external, Unknown}.
//  3. text: locate charset= (default US-ASCII, Inferred).
//  4. otherwise: Binary.
func Interpret(n NaiveType) InterpretedType {
	switch n.mainCI() {
	case "multipart":
		if b, ok := n.Param("boundary"); ok {
			bnd := b.Decoded()
			if len(bnd) > 0 {
				return InterpretedType{
					Kind:         KindMultipart,
					MultipartSub: multipartSubtypeOf(n.subCI()),
					MultipartUnk: n.Sub,
					Boundary:     bnd,
				}
			}
		}
		// No boundary parameter: demote to text/plain, per spec.md §4.5/S6.
		return InterpretedType{Kind: KindText, TextSub: TextPlain, Charset: Inferred(CharsetUSASCII)}
	case "message":
		return InterpretedType{Kind: KindMessage, MessageSub: messageSubtypeOf(n.subCI()), MessageUnk: n.Sub}
	case "text":
		charset := Inferred(CharsetUSASCII)
		var rawLabel []byte
		if c, ok := n.Param("charset"); ok {
			label := c.Decoded()
			charset = ExplicitOf(LookupCharset(label))
			rawLabel = label
		}
		return InterpretedType{Kind: KindText, TextSub: textSubtypeOf(n.subCI()), TextUnk: n.Sub, Charset: charset, RawLabel: rawLabel}
	default:
		return InterpretedType{Kind: KindBinary}
	}
}

func multipartSubtypeOf(sub string) MultipartSubtype {
	switch sub {
	case "alternative":
		return MultipartAlternative
	case "mixed":
		return MultipartMixed
	case "digest":
		return MultipartDigest
	case "parallel":
		return MultipartParallel
	case "report":
		return MultipartReport
	default:
		return MultipartUnknown
	}
}

func messageSubtypeOf(sub string) MessageSubtype {
	switch sub {
	case "rfc822":
		return MessageRFC822
	case "partial":
		return MessagePartial
	case "external-body":
		return MessageExternal
	default:
		return MessageUnknown
	}
}

func textSubtypeOf(sub string) TextSubtype {
	switch sub {
	case "plain":
		return TextPlain
	case "html":
		return TextHTML
	default:
		return TextUnknown
	}
}

// Mechanism is the Content-Transfer-Encoding value, per spec.md §3.1.
type Mechanism struct {
	Kind  MechanismKind
	Other []byte // populated when Kind == MechanismOther, preserved verbatim
}

type MechanismKind int

const (
	Mechanism7Bit MechanismKind = iota
	Mechanism8Bit
	MechanismBinary
	MechanismQuotedPrintable
	MechanismBase64
	MechanismOther
)

// ParseMechanism parses a Content-Transfer-Encoding value, case-
// insensitively; unknown values are preserved verbatim, per spec.md §4.5.
func ParseMechanism(value []byte) Mechanism {
	s := newScanner(value)
	s.skipCFWS()
	tok := s.scanMIMEToken()
	switch string(bytes.ToLower(tok)) {
	case "7bit":
		return Mechanism{Kind: Mechanism7Bit}
	case "8bit":
		return Mechanism{Kind: Mechanism8Bit}
	case "binary":
		return Mechanism{Kind: MechanismBinary}
	case "quoted-printable":
		return Mechanism{Kind: MechanismQuotedPrintable}
	case "base64":
		return Mechanism{Kind: MechanismBase64}
	default:
		return Mechanism{Kind: MechanismOther, Other: tok}
	}
}

// MIME holds the common MIME header data attached to a message or part,
// per spec.md §3.1.
type MIME struct {
	Type              InterpretedType
	Naive             NaiveType
	TransferEncoding  Mechanism
	ID                *MessageID
	Description       Unstructured
	HasDescription    bool
	Disposition       *NaiveType // Content-Disposition, reusing the naive token grammar
	RawHeader         []byte     // the full raw header block this MIME data came from
	FieldOrder        []string   // original field order, for faithful re-emission
}
