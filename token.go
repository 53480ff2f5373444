// Copyright 2022 Daniel Erat.
// All rights reserved.

package imf

import "bytes"

// WordKind distinguishes the closed set of Word forms, per spec.md §3.1.
type WordKind int

const (
	WordAtom WordKind = iota
	WordQuoted
	WordEncoded
)

// Word is one of {Atom(bytes), Quoted(chunks), Encoded(word)}, per
// spec.md §3.1. Only one of the fields matching Kind is populated.
type Word struct {
	Kind    WordKind
	Atom    []byte
	Quoted  []QuotedChunk
	Encoded *EncodedWord
}

// Decoded returns the word's decoded text form.
func (w Word) Decoded() []byte {
	switch w.Kind {
	case WordAtom:
		return w.Atom
	case WordQuoted:
		return decodedQuotedString(w.Quoted)
	case WordEncoded:
		return w.Encoded.Decoded()
	}
	return nil
}

// scanWord attempts to scan a single Word (atom, quoted-string or
// encoded-word) at s.pos, skipping no surrounding CFWS itself (callers do
// that). Returns false if none of the three forms match.
func scanWord(s *scanner) (Word, bool) {
	if b, ok := s.peek(); ok && b == '=' {
		if ew, ok := tryScanEncodedWordAt(s); ok {
			return Word{Kind: WordEncoded, Encoded: ew}, true
		}
	}
	if b, ok := s.peek(); ok && b == '"' {
		chunks, ok := s.scanQuotedString()
		if !ok {
			return Word{}, false
		}
		return Word{Kind: WordQuoted, Quoted: chunks}, true
	}
	atom := s.scanAtom()
	if len(atom) == 0 {
		return Word{}, false
	}
	return Word{Kind: WordAtom, Atom: atom}, true
}

// Phrase is a non-empty sequence of Words, per spec.md §3.1.
type Phrase []Word

// scanPhrase scans a non-empty sequence of CFWS-separated words.
func scanPhrase(s *scanner) (Phrase, bool) {
	var ph Phrase
	for {
		s.skipCFWS()
		save := s.pos
		w, ok := scanWord(s)
		if !ok {
			s.pos = save
			break
		}
		ph = append(ph, w)
	}
	if len(ph) == 0 {
		return nil, false
	}
	return ph, true
}

// String renders the phrase's decoded form by space-joining words, except
// that two adjacent Encoded words are concatenated without an intervening
// space, per RFC 2047 §6.2 (spec.md §3.1).
func (p Phrase) String() string {
	var buf bytes.Buffer
	for i, w := range p {
		if i > 0 && !(p[i-1].Kind == WordEncoded && w.Kind == WordEncoded) {
			buf.WriteByte(' ')
		}
		buf.Write(w.Decoded())
	}
	return buf.String()
}

// UnstructuredTokenKind distinguishes the three Unstructured token forms:
// plain text, whitespace and encoded-word.
type UnstructuredTokenKind int

const (
	UnstructuredText UnstructuredTokenKind = iota
	UnstructuredFWS
	UnstructuredEncodedTok
)

// UnstructuredToken is one element of an Unstructured field value.
type UnstructuredToken struct {
	Kind    UnstructuredTokenKind
	Text    []byte
	Encoded *EncodedWord
}

// Unstructured is an ordered token sequence for free-text fields such as
// Subject and Comments, per spec.md §3.1. Printing preserves inter-token
// whitespace kind; the decoded form collapses FWS runs to single spaces
// per the RFC 2047 concatenation rule (adjacent encoded words merge
// without a space).
type Unstructured []UnstructuredToken

// scanUnstructured consumes the remainder of a field value (already
// CRLF-unfolded by the header layer) as an Unstructured token sequence.
func scanUnstructured(value []byte) Unstructured {
	s := newScanner(value)
	var toks Unstructured
	for !s.eof() {
		if ws := s.skipFWS(); len(ws) > 0 {
			toks = append(toks, UnstructuredToken{Kind: UnstructuredFWS, Text: ws})
			continue
		}
		if b, ok := s.peek(); ok && b == '=' {
			if ew, ok := tryScanEncodedWordAt(s); ok {
				toks = append(toks, UnstructuredToken{Kind: UnstructuredEncodedTok, Encoded: ew})
				continue
			}
		}
		start := s.pos
		for {
			b, ok := s.peek()
			if !ok || isWSP(b) || s.isCRLFAt(0) > 0 {
				break
			}
			if b == '=' {
				if save := s.pos; true {
					if _, ok := tryScanEncodedWordAt(s); ok {
						s.pos = save
						break
					}
				}
			}
			s.advance()
		}
		if s.pos == start {
			s.advance() // avoid an infinite loop on a stray byte
		}
		toks = append(toks, UnstructuredToken{Kind: UnstructuredText, Text: s.slice(start)})
	}
	return toks
}

// String renders the decoded form: FWS runs collapse to a single space,
// and two adjacent encoded-word tokens concatenate without a space
// (RFC 2047 §6.2), consistent with Phrase.String.
func (u Unstructured) String() string {
	var buf bytes.Buffer
	pendingSpace := false
	havePrev := false
	prevEncoded := false
	for _, t := range u {
		switch t.Kind {
		case UnstructuredFWS:
			if havePrev {
				pendingSpace = true
			}
		case UnstructuredText:
			if pendingSpace {
				buf.WriteByte(' ')
			}
			pendingSpace = false
			buf.Write(t.Text)
			havePrev, prevEncoded = true, false
		case UnstructuredEncodedTok:
			if pendingSpace && !prevEncoded {
				buf.WriteByte(' ')
			}
			pendingSpace = false
			buf.Write(t.Encoded.Decoded())
			havePrev, prevEncoded = true, true
		}
	}
	return buf.String()
}

// MIMEWord is a Content-Type/Content-Disposition parameter value: either a
// bare token/atom or a quoted string (spec.md §3.1). It does not admit
// encoded-words (those only appear in structured address/phrase contexts).
type MIMEWord struct {
	Quoted bool
	Chunks []QuotedChunk // used when Quoted
	Token  []byte        // used when !Quoted
}

func (m MIMEWord) Decoded() []byte {
	if m.Quoted {
		return decodedQuotedString(m.Chunks)
	}
	return m.Token
}

func scanMIMEWord(s *scanner) (MIMEWord, bool) {
	if b, ok := s.peek(); ok && b == '"' {
		chunks, ok := s.scanQuotedString()
		if !ok {
			return MIMEWord{}, false
		}
		return MIMEWord{Quoted: true, Chunks: chunks}, true
	}
	tok := s.scanMIMEToken()
	if len(tok) == 0 {
		return MIMEWord{}, false
	}
	return MIMEWord{Token: tok}, true
}
