// Copyright 2022 Daniel Erat.
// All rights reserved.

package imf

// ReceivedTokenKind distinguishes the three ReceivedLogToken forms, per
// spec.md §3.1.
type ReceivedTokenKind int

const (
	ReceivedWord ReceivedTokenKind = iota
	ReceivedAddr
	ReceivedDomain
)

// ReceivedLogToken is one token of a Received field's log-token sequence,
// per spec.md §3.1.
type ReceivedLogToken struct {
	Kind   ReceivedTokenKind
	Word   Word
	Addr   AddrSpec
	Domain Domain
}

// ReceivedLog is {token sequence, DateTime}, per spec.md §3.1.
type ReceivedLog struct {
	Tokens []ReceivedLogToken
	Date   DateTime
}

// ParseReceived parses a Received field: a log-token sequence terminated
// by ";" date, per spec.md §4.3(trace)/§4.6.
func ParseReceived(value []byte) (ReceivedLog, error) {
	s := newScanner(value)
	var toks []ReceivedLogToken
	for {
		s.skipCFWS()
		if s.eof() {
			return ReceivedLog{}, &FieldError{Name: "Received", Text: "missing ';' date"}
		}
		if b, ok := s.peek(); ok && b == ';' {
			s.advance()
			break
		}
		save := s.pos
		if addr, ok := scanAngleAddr(s); ok {
			toks = append(toks, ReceivedLogToken{Kind: ReceivedAddr, Addr: addr})
			continue
		}
		s.pos = save
		if dom, ok := scanDomain(s); ok {
			// A bare domain token (no preceding local-part/@) only counts
			// as a domain if it isn't actually the start of an addr-spec.
			save2 := s.pos
			s.skipCFWS()
			if b, ok := s.peek(); ok && b == '@' {
				s.pos = save
			} else {
				s.pos = save2
				toks = append(toks, ReceivedLogToken{Kind: ReceivedDomain, Domain: dom})
				continue
			}
		}
		s.pos = save
		w, ok := scanWord(s)
		if !ok {
			return ReceivedLog{}, &FieldError{Name: "Received", Text: "unparsable token"}
		}
		toks = append(toks, ReceivedLogToken{Kind: ReceivedWord, Word: w})
	}
	s.skipCFWS()
	dt, err := ParseDateTime(s.buf[s.pos:])
	if err != nil {
		return ReceivedLog{}, err
	}
	return ReceivedLog{Tokens: toks, Date: dt}, nil
}

// ParseReturnPath parses a Return-Path field; an empty "<>" is valid and
// yields (nil, nil), per spec.md §3.1.
func ParseReturnPath(value []byte) (*AddrSpec, error) {
	s := newScanner(value)
	s.skipCFWS()
	if b, ok := s.peek(); !ok || b != '<' {
		return nil, &FieldError{Name: "Return-Path", Text: "missing '<'"}
	}
	s.advance()
	s.skipCFWS()
	if b, ok := s.peek(); ok && b == '>' {
		s.advance()
		return nil, nil
	}
	addr, ok := scanAddrSpec(s)
	if !ok {
		return nil, &FieldError{Name: "Return-Path", Text: "malformed addr-spec"}
	}
	s.skipCFWS()
	if b, ok := s.peek(); !ok || b != '>' {
		return nil, &FieldError{Name: "Return-Path", Text: "missing '>'"}
	}
	return &addr, nil
}

// TraceBlock is {optional ReturnPath, non-empty list of ReceivedLog}, per
// spec.md §3.1. A trace block with zero Received entries is dropped on
// finalization (spec.md §3.2 Invariant 5).
type TraceBlock struct {
	ReturnPath    *AddrSpec
	HasReturnPath bool
	Received      []ReceivedLog
}
