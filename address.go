// Copyright 2022 Daniel Erat.
// All rights reserved.

package imf

import "bytes"

// LocalPartTokenKind distinguishes the two token forms admitted by the
// tolerant obs-local-part superset (spec.md §3.1).
type LocalPartTokenKind int

const (
	LocalPartDot LocalPartTokenKind = iota
	LocalPartWord
)

// LocalPartToken is one element of an AddrSpec's local part.
type LocalPartToken struct {
	Kind LocalPartTokenKind
	Word Word // populated when Kind == LocalPartWord
}

// DomainKind distinguishes dot-atom domains from bracketed domain literals.
type DomainKind int

const (
	DomainAtoms DomainKind = iota
	DomainLiteral
)

// Domain is either a dot-separated atom list or a bracketed literal list
// of FWS-separated text chunks, per spec.md §3.1.
type Domain struct {
	Kind    DomainKind
	Atoms   [][]byte // DomainAtoms: one entry per '.'-separated label
	Literal [][]byte // DomainLiteral: FWS-separated dtext chunks inside [...]
}

// AddrSpec is {LocalPart, Domain}, per spec.md §3.1. Trailing "@domain"
// segments beyond the first are accepted (observed in the Enron corpus)
// and discarded semantically; their bytes survive only in the field's
// raw slice and are not modeled here.
type AddrSpec struct {
	LocalPart []LocalPartToken
	Domain    Domain
}

// MailboxRef is {AddrSpec, optional display Phrase}, per spec.md §3.1.
type MailboxRef struct {
	Addr    AddrSpec
	Display Phrase // nil if no display name
}

// GroupRef is {Phrase name, list of MailboxRef}, per spec.md §3.1.
type GroupRef struct {
	Name      Phrase
	Mailboxes []MailboxRef
}

// AddressRefKind distinguishes Single from Many (group) address entries.
type AddressRefKind int

const (
	AddressSingle AddressRefKind = iota
	AddressMany
)

// AddressRef is either Single(MailboxRef) or Many(GroupRef), per
// spec.md §3.1.
type AddressRef struct {
	Kind  AddressRefKind
	Box   MailboxRef
	Group GroupRef
}

// scanLocalPart scans the tolerant obs-local-part superset:
// *( "." / word ), admitting multi-dot and leading/trailing dot locals
// observed in real corpora (spec.md §4.3).
func scanLocalPart(s *scanner) ([]LocalPartToken, bool) {
	var toks []LocalPartToken
	for {
		s.skipCFWS()
		if b, ok := s.peek(); ok && b == '.' {
			s.advance()
			toks = append(toks, LocalPartToken{Kind: LocalPartDot})
			continue
		}
		save := s.pos
		w, ok := scanWord(s)
		if !ok {
			s.pos = save
			break
		}
		toks = append(toks, LocalPartToken{Kind: LocalPartWord, Word: w})
	}
	if len(toks) == 0 {
		return nil, false
	}
	return toks, true
}

// scanDomain scans obs-domain: an atom-dot-list or a bracketed literal
// (domain-literal), per spec.md §4.3.
func scanDomain(s *scanner) (Domain, bool) {
	s.skipCFWS()
	if b, ok := s.peek(); ok && b == '[' {
		s.advance()
		var chunks [][]byte
		for {
			s.skipFWS()
			start := s.pos
			for {
				b, ok := s.peek()
				if !ok {
					return Domain{}, false
				}
				if b == ']' || isWSP(b) || s.isCRLFAt(0) > 0 {
					break
				}
				if b == '\\' {
					s.advance()
				}
				s.advance()
			}
			if s.pos > start {
				chunks = append(chunks, s.slice(start))
			}
			b, ok := s.peek()
			if !ok {
				return Domain{}, false
			}
			if b == ']' {
				s.advance()
				s.skipCFWS()
				return Domain{Kind: DomainLiteral, Literal: chunks}, true
			}
		}
	}
	var atoms [][]byte
	for {
		a := s.scanAtom()
		if len(a) == 0 {
			break
		}
		atoms = append(atoms, a)
		if b, ok := s.peek(); ok && b == '.' {
			s.advance()
			continue
		}
		break
	}
	s.skipCFWS()
	if len(atoms) == 0 {
		return Domain{}, false
	}
	return Domain{Kind: DomainAtoms, Atoms: atoms}, true
}

// scanAddrSpec scans addr-spec = obs-local-part "@" obs-domain
// *( "@" obs-domain ), per spec.md §4.3. Trailing "@domain" repeats are
// accepted and discarded.
func scanAddrSpec(s *scanner) (AddrSpec, bool) {
	lp, ok := scanLocalPart(s)
	if !ok {
		return AddrSpec{}, false
	}
	s.skipCFWS()
	if b, ok := s.peek(); !ok || b != '@' {
		return AddrSpec{}, false
	}
	s.advance()
	dom, ok := scanDomain(s)
	if !ok {
		return AddrSpec{}, false
	}
	for {
		save := s.pos
		s.skipCFWS()
		if b, ok := s.peek(); ok && b == '@' {
			s.advance()
			if _, ok := scanDomain(s); ok {
				continue
			}
		}
		s.pos = save
		break
	}
	return AddrSpec{LocalPart: lp, Domain: dom}, true
}

// scanObsRoute scans and discards an obsolete route prefix inside angle
// brackets ("@domain,@domain:"), per spec.md §4.3 ("parsed and dropped").
func scanObsRoute(s *scanner) bool {
	save := s.pos
	s.skipCFWS()
	if b, ok := s.peek(); !ok || b != '@' {
		s.pos = save
		return false
	}
	for {
		if b, ok := s.peek(); !ok || b != '@' {
			break
		}
		s.advance()
		if _, ok := scanDomain(s); !ok {
			s.pos = save
			return false
		}
		s.skipCFWS()
		if b, ok := s.peek(); ok && b == ',' {
			s.advance()
			s.skipCFWS()
			continue
		}
		break
	}
	s.skipCFWS()
	if b, ok := s.peek(); ok && b == ':' {
		s.advance()
		return true
	}
	s.pos = save
	return false
}

// scanAngleAddr scans "<" [obs-route] addr-spec ">".
func scanAngleAddr(s *scanner) (AddrSpec, bool) {
	save := s.pos
	s.skipCFWS()
	if b, ok := s.peek(); !ok || b != '<' {
		s.pos = save
		return AddrSpec{}, false
	}
	s.advance()
	scanObsRoute(s)
	addr, ok := scanAddrSpec(s)
	if !ok {
		s.pos = save
		return AddrSpec{}, false
	}
	s.skipCFWS()
	if b, ok := s.peek(); !ok || b != '>' {
		s.pos = save
		return AddrSpec{}, false
	}
	s.advance()
	return addr, true
}

// scanMailbox scans mailbox = [phrase] "<" [obs-route] addr-spec ">" |
// addr-spec, per spec.md §4.3. mailbox (with angle-addr) wins the tie
// against a bare addr-spec prefix match.
func scanMailbox(s *scanner) (MailboxRef, bool) {
	save := s.pos
	var display Phrase
	if addr, ok := scanAngleAddr(s); ok {
		return MailboxRef{Addr: addr}, true
	}
	s.pos = save
	if ph, ok := scanPhrase(s); ok {
		if addr, ok := scanAngleAddr(s); ok {
			display = ph
			return MailboxRef{Addr: addr, Display: display}, true
		}
	}
	s.pos = save
	if addr, ok := scanAddrSpec(s); ok {
		return MailboxRef{Addr: addr}, true
	}
	s.pos = save
	return MailboxRef{}, false
}

// scanGroup scans group = phrase ":" [group-list] ";".
func scanGroup(s *scanner) (GroupRef, bool) {
	save := s.pos
	ph, ok := scanPhrase(s)
	if !ok {
		s.pos = save
		return GroupRef{}, false
	}
	s.skipCFWS()
	if b, ok := s.peek(); !ok || b != ':' {
		s.pos = save
		return GroupRef{}, false
	}
	s.advance()
	var boxes []MailboxRef
	s.skipCFWS()
	if b, ok := s.peek(); !ok || b != ';' {
		for {
			mb, ok := scanMailbox(s)
			if !ok {
				break
			}
			boxes = append(boxes, mb)
			s.skipCFWS()
			if b, ok := s.peek(); ok && b == ',' {
				s.advance()
				continue
			}
			break
		}
	}
	s.skipCFWS()
	if b, ok := s.peek(); !ok || b != ';' {
		s.pos = save
		return GroupRef{}, false
	}
	s.advance()
	return GroupRef{Name: ph, Mailboxes: boxes}, true
}

// scanAddress scans address = mailbox | group.
func scanAddress(s *scanner) (AddressRef, bool) {
	save := s.pos
	if g, ok := scanGroup(s); ok {
		return AddressRef{Kind: AddressMany, Group: g}, true
	}
	s.pos = save
	if mb, ok := scanMailbox(s); ok {
		return AddressRef{Kind: AddressSingle, Box: mb}, true
	}
	s.pos = save
	return AddressRef{}, false
}

// ParseMailboxList parses a comma-separated mailbox-list, used for the
// From field (spec.md §4.6).
func ParseMailboxList(value []byte) ([]MailboxRef, error) {
	s := newScanner(value)
	var out []MailboxRef
	for {
		s.skipCFWS()
		if s.eof() {
			break
		}
		mb, ok := scanMailbox(s)
		if !ok {
			return nil, &FieldError{Text: "malformed mailbox in mailbox-list"}
		}
		out = append(out, mb)
		s.skipCFWS()
		if b, ok := s.peek(); ok && b == ',' {
			s.advance()
			continue
		}
		break
	}
	s.skipCFWS()
	if !s.eof() {
		return nil, &FieldError{Text: "trailing data after mailbox-list"}
	}
	if len(out) == 0 {
		return nil, &FieldError{Text: "empty mailbox-list"}
	}
	return out, nil
}

// ParseAddressList parses a comma-separated address-list, used for
// Reply-To/To/Cc (spec.md §4.6).
func ParseAddressList(value []byte) ([]AddressRef, error) {
	s := newScanner(value)
	var out []AddressRef
	for {
		s.skipCFWS()
		if s.eof() {
			break
		}
		addr, ok := scanAddress(s)
		if !ok {
			return nil, &FieldError{Text: "malformed address in address-list"}
		}
		out = append(out, addr)
		s.skipCFWS()
		if b, ok := s.peek(); ok && b == ',' {
			s.advance()
			continue
		}
		break
	}
	s.skipCFWS()
	if !s.eof() {
		return nil, &FieldError{Text: "trailing data after address-list"}
	}
	if len(out) == 0 {
		return nil, &FieldError{Text: "empty address-list"}
	}
	return out, nil
}

// ParseNullableAddressList parses a possibly-empty or CFWS-only
// address-list, used for Bcc (spec.md §3.1/§4.6: "nullable address-list").
func ParseNullableAddressList(value []byte) ([]AddressRef, error) {
	s := newScanner(value)
	s.skipCFWS()
	if s.eof() {
		return nil, nil
	}
	return ParseAddressList(value)
}

// rawDomainBytes returns the domain's raw printed form for callers that
// need to reproduce it verbatim without re-deriving it from the Domain
// struct (e.g. diagnostic dumps).
func rawDomainBytes(d Domain) []byte {
	switch d.Kind {
	case DomainLiteral:
		var buf bytes.Buffer
		buf.WriteByte('[')
		for i, c := range d.Literal {
			if i > 0 {
				buf.WriteByte(' ')
			}
			buf.Write(c)
		}
		buf.WriteByte(']')
		return buf.Bytes()
	default:
		return bytes.Join(d.Atoms, []byte("."))
	}
}
