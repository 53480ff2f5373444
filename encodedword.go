// Copyright 2022 Daniel Erat.
// All rights reserved.

package imf

import (
	"bytes"
	"encoding/base64"
)

// EncodedWord is a decoded RFC 2047 "=?charset?Q/B?text?=" token.
type EncodedWord struct {
	Raw     []byte  // the full "=?charset?enc?text?=" token, verbatim
	Charset Charset
	Label   []byte // the charset label as written, for round-tripping an exact match
	B64     bool   // true for "B" encoding, false for "Q"
	decoded []byte // lazily computed by Decoded
}

// Decoded returns the decoded, charset-converted text. Computed on demand
// rather than stored at parse time, matching spec.md §3's "decoded form is
// produced on demand by a to_string accessor, never stored" rule; Go's
// lack of lifetimes means the struct simply caches it after first call
// instead of recomputing, which is observationally the same to callers.
func (w *EncodedWord) Decoded() []byte {
	if w.decoded == nil {
		w.decoded = decodeCharset(w.Charset, w.rawPayload())
		if w.decoded == nil {
			w.decoded = []byte{}
		}
	}
	return w.decoded
}

// rawPayload extracts and decodes the Q/B text of w.Raw without applying
// the charset conversion.
func (w *EncodedWord) rawPayload() []byte {
	body, ok := encodedWordBody(w.Raw)
	if !ok {
		return nil
	}
	if w.B64 {
		return decodeB64Loose(body)
	}
	return decodeQ(body)
}

// encodedWordBody extracts the text field (4th '?'-delimited segment) from
// a raw "=?charset?enc?text?=" token.
func encodedWordBody(raw []byte) ([]byte, bool) {
	parts := bytes.SplitN(raw, []byte("?"), 4)
	if len(parts) != 4 {
		return nil, false
	}
	text := parts[3]
	text = bytes.TrimSuffix(text, []byte("?="))
	return text, true
}

// decodeQ decodes an RFC 2047 "Q" encoded-word body: '_' is a space, "=HH"
// is a single byte given as two hex digits, everything else is literal.
func decodeQ(body []byte) []byte {
	out := make([]byte, 0, len(body))
	for i := 0; i < len(body); i++ {
		switch body[i] {
		case '_':
			out = append(out, ' ')
		case '=':
			if i+2 < len(body) {
				if hi, ok := hexVal(body[i+1]); ok {
					if lo, ok := hexVal(body[i+2]); ok {
						out = append(out, hi<<4|lo)
						i += 2
						continue
					}
				}
			}
			out = append(out, '=')
		default:
			out = append(out, body[i])
		}
	}
	return out
}

func hexVal(b byte) (byte, bool) {
	switch {
	case b >= '0' && b <= '9':
		return b - '0', true
	case b >= 'A' && b <= 'F':
		return b - 'A' + 10, true
	case b >= 'a' && b <= 'f':
		return b - 'a' + 10, true
	}
	return 0, false
}

// decodeB64Loose decodes base64 without requiring padding to already be
// present or internal whitespace to be absent, per spec.md §4.2 ("base64
// without internal whitespace and without required padding; padding
// characters after the body are consumed before ?=").
func decodeB64Loose(body []byte) []byte {
	clean := make([]byte, 0, len(body))
	for _, b := range body {
		if b == ' ' || b == '\t' || b == '\r' || b == '\n' {
			continue
		}
		clean = append(clean, b)
	}
	for len(clean)%4 != 0 {
		clean = append(clean, '=')
	}
	out, err := base64.StdEncoding.DecodeString(string(clean))
	if err != nil {
		// Fall back to ignoring undecodable trailing bytes rather than
		// losing the whole word: trim back to the last multiple of 4 that
		// does decode.
		for len(clean) >= 4 {
			clean = clean[:len(clean)-4]
			if len(clean) == 0 {
				return nil
			}
			if out, err = base64.StdEncoding.DecodeString(string(clean)); err == nil {
				return out
			}
		}
		return nil
	}
	return out
}

// tryScanEncodedWordAt attempts to scan an encoded-word starting at
// s.pos (which must be '='). On success it advances s past the token and
// returns the parsed EncodedWord; otherwise s is left unmoved.
func tryScanEncodedWordAt(s *scanner) (*EncodedWord, bool) {
	start := s.pos
	if !s.consumeLiteral("=?") {
		return nil, false
	}
	labelStart := s.pos
	for {
		b, ok := s.peek()
		if !ok {
			s.pos = start
			return nil, false
		}
		if b == '?' {
			break
		}
		if b <= 0x20 || b >= 0x7f {
			s.pos = start
			return nil, false
		}
		s.advance()
	}
	label := s.slice(labelStart)
	s.advance() // consume '?'
	encByte, ok := s.peek()
	if !ok {
		s.pos = start
		return nil, false
	}
	var b64 bool
	switch encByte {
	case 'Q', 'q':
		b64 = false
	case 'B', 'b':
		b64 = true
	default:
		s.pos = start
		return nil, false
	}
	s.advance()
	if !s.consumeLiteral("?") {
		s.pos = start
		return nil, false
	}
	textStart := s.pos
	for {
		b, ok := s.peek()
		if !ok {
			s.pos = start
			return nil, false
		}
		if b == '?' {
			if nb, ok := s.byteAt(1); ok && nb == '=' {
				break
			}
		}
		if b <= 0x20 {
			s.pos = start
			return nil, false
		}
		s.advance()
	}
	_ = textStart
	s.advance() // '?'
	s.advance() // '='
	raw := s.slice(start)
	return &EncodedWord{
		Raw:     raw,
		Charset: LookupCharset(label),
		Label:   label,
		B64:     b64,
	}, true
}

func (s *scanner) consumeLiteral(lit string) bool {
	for i := 0; i < len(lit); i++ {
		b, ok := s.byteAt(i)
		if !ok || b != lit[i] {
			return false
		}
	}
	s.pos += len(lit)
	return true
}
