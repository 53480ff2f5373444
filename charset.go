// Copyright 2022 Daniel Erat.
// All rights reserved.

package imf

import (
	"bytes"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Charset is a nominal enum over the IANA labels this package can decode,
// per spec.md §4.2/§6. Unknown labels route through decodeBestEffort and
// print back as "UTF-8" (spec.md §3.1).
type Charset int

const (
	CharsetUSASCII Charset = iota
	CharsetUTF8
	CharsetISO88591
	CharsetISO88592
	CharsetISO88593
	CharsetISO88594
	CharsetISO88595
	CharsetISO88596
	CharsetISO88597
	CharsetISO88598
	CharsetISO88599
	CharsetISO885910
	CharsetShiftJIS
	CharsetEUCJP
	CharsetEUCKR
	CharsetISO2022JP
	CharsetISO2022JP2
	CharsetISO2022KR
	CharsetGB2312
	CharsetBig5
	CharsetKOI8R
	CharsetUnknown
)

// String returns the canonical label used when printing the charset back
// out (spec.md §3.1: "Unknown prints back as UTF-8").
func (c Charset) String() string {
	switch c {
	case CharsetUSASCII:
		return "US-ASCII"
	case CharsetUTF8:
		return "UTF-8"
	case CharsetISO88591:
		return "ISO-8859-1"
	case CharsetISO88592:
		return "ISO-8859-2"
	case CharsetISO88593:
		return "ISO-8859-3"
	case CharsetISO88594:
		return "ISO-8859-4"
	case CharsetISO88595:
		return "ISO-8859-5"
	case CharsetISO88596:
		return "ISO-8859-6"
	case CharsetISO88597:
		return "ISO-8859-7"
	case CharsetISO88598:
		return "ISO-8859-8"
	case CharsetISO88599:
		return "ISO-8859-9"
	case CharsetISO885910:
		return "ISO-8859-10"
	case CharsetShiftJIS:
		return "Shift_JIS"
	case CharsetEUCJP:
		return "EUC-JP"
	case CharsetEUCKR:
		return "EUC-KR"
	case CharsetISO2022JP:
		return "ISO-2022-JP"
	case CharsetISO2022JP2:
		return "ISO-2022-JP-2"
	case CharsetISO2022KR:
		return "ISO-2022-KR"
	case CharsetGB2312:
		return "GB2312"
	case CharsetBig5:
		return "Big5"
	case CharsetKOI8R:
		return "KOI8-R"
	default:
		return "UTF-8"
	}
}

// charsetLabels maps case-insensitive IANA labels (and common aliases seen
// in the wild) to the Charset enum, per spec.md §4.2's table.
var charsetLabels = map[string]Charset{
	"US-ASCII":      CharsetUSASCII,
	"ASCII":         CharsetUSASCII,
	"UTF-8":         CharsetUTF8,
	"UTF8":          CharsetUTF8,
	"ISO-8859-1":    CharsetISO88591,
	"LATIN1":        CharsetISO88591,
	"ISO-8859-2":    CharsetISO88592,
	"ISO-8859-3":    CharsetISO88593,
	"ISO-8859-4":    CharsetISO88594,
	"ISO-8859-5":    CharsetISO88595,
	"ISO-8859-6":    CharsetISO88596,
	"ISO-8859-7":    CharsetISO88597,
	"ISO-8859-8":    CharsetISO88598,
	"ISO-8859-9":    CharsetISO88599,
	"ISO-8859-10":   CharsetISO885910,
	"ISO-8859-6-E":  CharsetISO88596,
	"ISO-8859-6-I":  CharsetISO88596,
	"ISO-8859-8-E":  CharsetISO88598,
	"ISO-8859-8-I":  CharsetISO88598,
	"SHIFT_JIS":     CharsetShiftJIS,
	"SHIFT-JIS":     CharsetShiftJIS,
	"EUC-JP":        CharsetEUCJP,
	"EUC-KR":        CharsetEUCKR,
	"ISO-2022-JP":   CharsetISO2022JP,
	"ISO-2022-JP-2": CharsetISO2022JP2,
	"ISO-2022-KR":   CharsetISO2022KR,
	"GB2312":        CharsetGB2312,
	"BIG5":          CharsetBig5,
	"KOI8-R":        CharsetKOI8R,
}

// LookupCharset resolves a Content-Type "charset=" label (case-insensitive)
// to a Charset, returning CharsetUnknown with the original label preserved
// by the caller for round-tripping when there's no exact match.
func LookupCharset(label []byte) Charset {
	if c, ok := charsetLabels[strings.ToUpper(string(label))]; ok {
		return c
	}
	return CharsetUnknown
}

// decoderFor returns the x/text decoder for the legacy multi-byte and
// 8-bit charsets. US-ASCII/UTF-8/Unknown are handled separately by
// decodeCharset since they don't need a transform.Transformer.
//
// ISO-8859-1 decodes through Windows-1252 rather than strict Latin-1,
// matching
// derat-rendmail/message.go's own charmap.Windows1252 choice: most mail
// clients in the wild emit Windows-1252 bytes (curly quotes, em-dashes at
// 0x91-0x97) under an ISO-8859-1 label. This is a deliberate, documented
// divergence from strict RFC/IANA charset semantics (spec.md §9 OQ1), not
// a bug; a strict decoder can be swapped in behind a future flag if a
// caller needs exact ISO-8859-1 fidelity instead of best-effort MUA parity.
func decoderFor(c Charset) encoding.Encoding {
	switch c {
	case CharsetISO88591:
		return charmap.Windows1252
	case CharsetISO88592:
		return charmap.ISO8859_2
	case CharsetISO88593:
		return charmap.ISO8859_3
	case CharsetISO88594:
		return charmap.ISO8859_4
	case CharsetISO88595:
		return charmap.ISO8859_5
	case CharsetISO88596:
		return charmap.ISO8859_6
	case CharsetISO88597:
		return charmap.ISO8859_7
	case CharsetISO88598:
		return charmap.ISO8859_8
	case CharsetISO88599:
		return charmap.ISO8859_9
	case CharsetISO885910:
		return charmap.ISO8859_10
	case CharsetShiftJIS:
		return japanese.ShiftJIS
	case CharsetEUCJP:
		return japanese.EUCJP
	case CharsetISO2022JP, CharsetISO2022JP2:
		return japanese.ISO2022JP
	case CharsetEUCKR:
		return korean.EUCKR
	case CharsetISO2022KR:
		// x/text has no dedicated ISO-2022-KR decoder; EUC-KR is the closest
		// available decoder and recovers the common case (ASCII + Hangul).
		return korean.EUCKR
	case CharsetGB2312:
		return simplifiedchinese.GBK
	case CharsetBig5:
		return traditionalchinese.Big5
	case CharsetKOI8R:
		return charmap.KOI8R
	default:
		return nil
	}
}

// decodeCharset decodes raw bytes under the named charset into UTF-8,
// never returning an error, since the decoder registry exists to extract
// as much structure as possible from tolerant input (spec.md §1).
// US-ASCII and UTF-8 bytes are returned unchanged, invalid sequences
// included; for the other charsets undecodable bytes are replaced rather
// than rejected.
func decodeCharset(c Charset, raw []byte) []byte {
	switch c {
	case CharsetUSASCII, CharsetUTF8:
		return decodeLegacyTransform(raw)
	}
	enc := decoderFor(c)
	if enc == nil {
		return decodeBestEffort(raw)
	}
	out, _, err := transform.Bytes(enc.NewDecoder(), raw)
	if err != nil {
		return decodeBestEffort(raw)
	}
	return out
}

// decodeBestEffort handles an unrecognized charset label by treating the
// bytes as UTF-8, replacing invalid sequences, per spec.md §4.2's "other"
// row ("UTF-8 best-effort with replacement").
func decodeBestEffort(raw []byte) []byte {
	if utf8.Valid(raw) {
		return raw
	}
	return bytes.ToValidUTF8(raw, string(unicode.ReplacementChar))
}

func decodeLegacyTransform(raw []byte) []byte {
	return raw
}

// asciiFoldChain mirrors derat-rendmail/message.go's headerTransformChain
// exactly (NFD decompose, drop nonspacing marks, NFC recompose). The core
// decode path never calls it (doing so would silently drop accents from
// otherwise-faithful decoded text, which the spec's fidelity mandate
// forbids); it is exposed as FoldToASCII for callers that explicitly want
// the teacher's "best-effort 7-bit pager gateway" transliteration.
var asciiFoldChain = transform.Chain(
	norm.NFD,
	runes.Remove(runes.In(unicode.Mn)),
	norm.NFC,
)

// FoldToASCII removes accents from decoded text by canonical
// decomposition followed by dropping combining marks and recomposing,
// then stripping anything left outside the printable-ASCII+WSP range.
// Not used internally; callers needing a 7-bit-safe approximation (e.g. a
// legacy gateway) can opt into it explicitly.
func FoldToASCII(decoded []byte) []byte {
	out, _, err := transform.Bytes(asciiFoldChain, decoded)
	if err != nil {
		out = decoded
	}
	return runesKeepPrintableASCII(out)
}

func runesKeepPrintableASCII(b []byte) []byte {
	keep := func(r rune) bool { return (r >= 32 && r <= 126) || r == 9 }
	out, _, err := transform.Bytes(runes.Remove(runes.Predicate(func(r rune) bool { return !keep(r) })), b)
	if err != nil {
		return b
	}
	return out
}
