// Copyright 2022 Daniel Erat.
// All rights reserved.

package imf

import (
	"strconv"
	"time"
)

// DateTime wraps a timezone-aware instant with a fixed-minute offset, per
// spec.md §3.1/§3.2 Invariant 2. The offset is always representable as
// ±HHMM with a zero seconds component.
type DateTime struct {
	T time.Time
}

var monthNames = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March,
	"apr": time.April, "may": time.May, "jun": time.June,
	"jul": time.July, "aug": time.August, "sep": time.September,
	"oct": time.October, "nov": time.November, "dec": time.December,
}

var dayNames = map[string]bool{
	"mon": true, "tue": true, "wed": true, "thu": true, "fri": true, "sat": true, "sun": true,
}

// zoneOffsets maps obsolete alphabetic zone names to an offset in minutes,
// per spec.md §4.4.
var zoneOffsets = map[string]int{
	"UT": 0, "UTC": 0, "GMT": 0, "Z": 0,
	"EDT": -4 * 60, "EST": -5 * 60,
	"CDT": -5 * 60, "CST": -6 * 60,
	"MDT": -6 * 60, "MST": -7 * 60,
	"PDT": -7 * 60, "PST": -8 * 60,
}

// militaryZoneOffsets maps single-letter military zones to an offset in
// minutes. "J" is intentionally absent (not a zone), per spec.md §4.4.
var militaryZoneOffsets = map[byte]int{
	'A': 1 * 60, 'B': 2 * 60, 'C': 3 * 60, 'D': 4 * 60, 'E': 5 * 60,
	'F': 6 * 60, 'G': 7 * 60, 'H': 8 * 60, 'I': 9 * 60,
	'K': 10 * 60, 'L': 11 * 60, 'M': 12 * 60,
	'N': -1 * 60, 'O': -2 * 60, 'P': -3 * 60, 'Q': -4 * 60, 'R': -5 * 60,
	'S': -6 * 60, 'T': -7 * 60, 'U': -8 * 60, 'V': -9 * 60, 'W': -10 * 60,
	'X': -11 * 60, 'Y': -12 * 60,
}

// ParseDateTime parses a Date field value in a single pass that accepts
// both the strict and the obsolete forms (optional day-of-week, 2- and
// 3-digit years, alphabetic zones), per spec.md §4.4. It returns a
// FieldError (not a panic) for any input that doesn't yield a valid
// instant.
func ParseDateTime(value []byte) (DateTime, error) {
	s := newScanner(value)
	s.skipCFWS()
	// Optional "day-of-week ','".
	save := s.pos
	if tok := s.scanAtomCI(); tok != "" && dayNames[tok] {
		s.skipCFWS()
		if b, ok := s.peek(); ok && b == ',' {
			s.advance()
		} else {
			s.pos = save
		}
	} else {
		s.pos = save
	}
	s.skipCFWS()

	day, ok := s.scanDigits(1, 2)
	if !ok {
		return DateTime{}, &FieldError{Name: "Date", Text: "missing day"}
	}
	s.skipCFWS()
	monthTok := s.scanAtomCI()
	month, ok := monthNames[monthTok]
	if !ok {
		return DateTime{}, &FieldError{Name: "Date", Text: "unrecognized month"}
	}
	s.skipCFWS()
	yearDigits, ok := s.scanDigits(2, 4)
	if !ok {
		return DateTime{}, &FieldError{Name: "Date", Text: "missing year"}
	}
	year := normalizeYear(yearDigits)
	s.skipCFWS()

	hour, ok := s.scanDigits(2, 2)
	if !ok {
		return DateTime{}, &FieldError{Name: "Date", Text: "missing hour"}
	}
	if b, ok := s.peek(); !ok || b != ':' {
		return DateTime{}, &FieldError{Name: "Date", Text: "missing time separator"}
	}
	s.advance()
	minute, ok := s.scanDigits(2, 2)
	if !ok {
		return DateTime{}, &FieldError{Name: "Date", Text: "missing minute"}
	}
	second := 0
	if b, ok := s.peek(); ok && b == ':' {
		s.advance()
		sec, ok := s.scanDigits(2, 2)
		if !ok {
			return DateTime{}, &FieldError{Name: "Date", Text: "malformed seconds"}
		}
		second = sec
	}
	s.skipCFWS()

	offsetMin, ok := scanZone(s)
	if !ok {
		return DateTime{}, &FieldError{Name: "Date", Text: "unrecognized zone"}
	}

	loc := time.FixedZone("", offsetMin*60)
	t := time.Date(year, month, day, hour, minute, second, 0, loc)
	// Reject impossible dates (e.g. Feb 30) rather than letting time.Date
	// normalize them silently, per spec.md §4.4 ("returns None when the
	// combined date+time+zone is semantically invalid").
	if t.Day() != day || t.Month() != month || t.Year() != year {
		return DateTime{}, &FieldError{Name: "Date", Text: "impossible calendar date"}
	}
	return DateTime{T: t}, nil
}

// scanZone scans either a numeric "±HHMM" zone or an alphabetic obsolete
// zone (named or military single-letter), per spec.md §4.4. Unknown
// alphanumeric runs recover as +0000 rather than failing outright.
func scanZone(s *scanner) (int, bool) {
	b, ok := s.peek()
	if !ok {
		return 0, false
	}
	if b == '+' || b == '-' {
		sign := 1
		if b == '-' {
			sign = -1
		}
		s.advance()
		digits, ok := s.scanDigits(4, 4)
		if !ok {
			return 0, false
		}
		hh := digits / 100
		mm := digits % 100
		// "-0000" is treated as "+0000" (spec.md §9 OQ3: documented
		// divergence, not preserved as a distinct "unknown zone" marker).
		return sign * (hh*60 + mm), true
	}
	tok := s.scanAtomCI()
	if tok == "" {
		return 0, false
	}
	upper := toUpperASCII(tok)
	if off, ok := zoneOffsets[upper]; ok {
		return off, true
	}
	if len(upper) == 1 {
		if off, ok := militaryZoneOffsets[upper[0]]; ok {
			return off, true
		}
	}
	// Unknown zone: best-effort recovery per spec.md §4.4.
	return 0, true
}

func toUpperASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'a' && c <= 'z' {
			b[i] = c - 'a' + 'A'
		}
	}
	return string(b)
}

// scanAtomCI scans a run of ASCII letters (case-insensitive token use,
// e.g. month/day/zone names) and returns it lower-cased.
func (s *scanner) scanAtomCI() string {
	start := s.pos
	for {
		b, ok := s.peek()
		if !ok || !((b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')) {
			break
		}
		s.advance()
	}
	tok := s.slice(start)
	out := make([]byte, len(tok))
	for i, c := range tok {
		if c >= 'A' && c <= 'Z' {
			c = c - 'A' + 'a'
		}
		out[i] = c
	}
	return string(out)
}

// scanDigits scans between min and max decimal digits and returns their
// integer value.
func (s *scanner) scanDigits(min, max int) (int, bool) {
	start := s.pos
	for s.pos-start < max {
		b, ok := s.peek()
		if !ok || b < '0' || b > '9' {
			break
		}
		s.advance()
	}
	n := s.pos - start
	if n < min {
		s.pos = start
		return 0, false
	}
	v, err := strconv.Atoi(string(s.slice(start)))
	if err != nil {
		return 0, false
	}
	return v, true
}

// normalizeYear applies the RFC 2822 §4.3 year heuristics: 4+ digits are
// literal; 2 digits add 1900 for 50-99 or 2000 for 00-49; 3 digits add
// 1900, per spec.md §4.4.
func normalizeYear(digits int) int {
	switch {
	case digits >= 1000:
		return digits
	case digits >= 100:
		return digits + 1900
	case digits >= 50:
		return digits + 1900
	default:
		return digits + 2000
	}
}
