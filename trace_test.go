// Copyright 2022 Daniel Erat.
// All rights reserved.

package imf

import "testing"

func TestParseReceivedSimple(t *testing.T) {
	log, err := ParseReceived([]byte("from mail.example.com by smtp.example.org; Fri, 21 Nov 1997 09:55:06 -0600"))
	if err != nil {
		t.Fatalf("ParseReceived failed: %v", err)
	}
	if len(log.Tokens) == 0 {
		t.Fatal("ParseReceived returned no tokens")
	}
	if log.Date.T.Year() != 1997 {
		t.Errorf("Date = %+v, want year 1997", log.Date)
	}
}

func TestParseReceivedMissingDateFails(t *testing.T) {
	if _, err := ParseReceived([]byte("from mail.example.com")); err == nil {
		t.Fatal("ParseReceived succeeded without a trailing ';' date, want error")
	}
}

func TestParseReturnPathEmpty(t *testing.T) {
	addr, err := ParseReturnPath([]byte("<>"))
	if err != nil {
		t.Fatalf("ParseReturnPath(<>) failed: %v", err)
	}
	if addr != nil {
		t.Errorf("ParseReturnPath(<>) = %+v, want nil", addr)
	}
}

func TestParseReturnPathAddr(t *testing.T) {
	addr, err := ParseReturnPath([]byte("<jane@example.com>"))
	if err != nil {
		t.Fatalf("ParseReturnPath failed: %v", err)
	}
	if addr == nil {
		t.Fatal("ParseReturnPath returned nil addr, want non-nil")
	}
	if string(addr.Domain.Atoms[0]) != "example" {
		t.Errorf("addr.Domain = %+v, want example.com", addr.Domain)
	}
}

func TestParseReturnPathMissingBracketsFails(t *testing.T) {
	if _, err := ParseReturnPath([]byte("jane@example.com")); err == nil {
		t.Fatal("ParseReturnPath succeeded without angle brackets, want error")
	}
}
