// Copyright 2022 Daniel Erat.
// All rights reserved.

package imf

import "testing"

func TestIsCRLFAt(t *testing.T) {
	for _, tc := range []struct {
		in   string
		want int
	}{
		{"\r\n", 2},
		{"\r\r\n", 3},
		{"\r", 1},
		{"\n", 1},
		{"x", 0},
		{"", 0},
	} {
		s := newScanner([]byte(tc.in))
		if got := s.isCRLFAt(0); got != tc.want {
			t.Errorf("isCRLFAt(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestSkipFWS(t *testing.T) {
	for _, tc := range []struct {
		in   string
		want string
		rest string
	}{
		{"   abc", "   ", "abc"},
		{"\t\r\n abc", "\t ", "abc"}, // CRLF fold dropped from retained bytes
		{"abc", "", "abc"},
	} {
		s := newScanner([]byte(tc.in))
		got := s.skipFWS()
		if string(got) != tc.want {
			t.Errorf("skipFWS(%q) ws = %q, want %q", tc.in, got, tc.want)
		}
		if string(s.buf[s.pos:]) != tc.rest {
			t.Errorf("skipFWS(%q) left rest %q, want %q", tc.in, s.buf[s.pos:], tc.rest)
		}
	}
}

func TestSkipComment(t *testing.T) {
	for _, tc := range []struct {
		in   string
		want bool
		rest string
	}{
		{"(simple) x", true, " x"},
		{"(nested (comment)) x", true, " x"},
		{"(unterminated", false, ""},
		{`(a \) b) x`, true, " x"},
	} {
		s := newScanner([]byte(tc.in))
		if got := s.skipComment(); got != tc.want {
			t.Errorf("skipComment(%q) = %v, want %v", tc.in, got, tc.want)
			continue
		}
		if tc.want && string(s.buf[s.pos:]) != tc.rest {
			t.Errorf("skipComment(%q) left rest %q, want %q", tc.in, s.buf[s.pos:], tc.rest)
		}
	}
}

func TestScanQuotedString(t *testing.T) {
	s := newScanner([]byte(`"hello \"world\""`))
	chunks, ok := s.scanQuotedString()
	if !ok {
		t.Fatal("scanQuotedString failed")
	}
	got := string(decodedQuotedString(chunks))
	want := `hello "world"`
	if got != want {
		t.Errorf("decodedQuotedString = %q, want %q", got, want)
	}
}

func TestScanDotAtom(t *testing.T) {
	for _, tc := range []struct {
		in   string
		want string
	}{
		{"foo.bar.baz", "foo.bar.baz"},
		{"foo.bar ", "foo.bar"},
		{"foo..bar", "foo"}, // trailing ".." doesn't extend past the first empty label
	} {
		s := newScanner([]byte(tc.in))
		if got := string(s.scanDotAtom()); got != tc.want {
			t.Errorf("scanDotAtom(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
