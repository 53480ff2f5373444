// Copyright 2022 Daniel Erat.
// All rights reserved.

package imf

import "testing"

func TestUnstructuredStringAdjacentEncodedWordsConcatenate(t *testing.T) {
	// Mirrors the teacher's own TestDecodeHeaderValue case:
	// "(=?ISO-8859-1?Q?a?= =?ISO-8859-1?Q?b?=)" decodes to "(ab)", per
	// RFC 2047 section 6.2: adjacent encoded words separated only by FWS
	// concatenate without a space.
	toks := scanUnstructured([]byte("(=?ISO-8859-1?Q?a?= =?ISO-8859-1?Q?b?=)"))
	if got, want := toks.String(), "(ab)"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestUnstructuredStringEncodedWordFollowedByPlainTextKeepsSpace(t *testing.T) {
	toks := scanUnstructured([]byte("=?UTF-8?Q?Hello?= world"))
	if got, want := toks.String(), "Hello world"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestUnstructuredStringPlainTextFollowedByEncodedWordKeepsSpace(t *testing.T) {
	toks := scanUnstructured([]byte("say =?UTF-8?Q?Hello?="))
	if got, want := toks.String(), "say Hello"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestUnstructuredStringThreeAdjacentEncodedWords(t *testing.T) {
	toks := scanUnstructured([]byte("=?UTF-8?Q?a?= =?UTF-8?Q?b?= =?UTF-8?Q?c?="))
	if got, want := toks.String(), "abc"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestUnstructuredStringLeadingAndTrailingFWSIgnored(t *testing.T) {
	toks := scanUnstructured([]byte("  hello  "))
	if got, want := toks.String(), "hello"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestPhraseStringAdjacentEncodedWordsConcatenate(t *testing.T) {
	s := newScanner([]byte("=?UTF-8?Q?a?= =?UTF-8?Q?b?="))
	ph, ok := scanPhrase(s)
	if !ok {
		t.Fatal("scanPhrase failed")
	}
	if got, want := ph.String(), "ab"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
