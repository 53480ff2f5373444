// Copyright 2022 Daniel Erat.
// All rights reserved.

package imf

import "testing"

// requiredFields returns extra followed by a Date and a From field. The
// extra fields come first so that trace fields among them form the leading
// run of the header, the only place AssembleIMF accepts them.
func requiredFields(extra ...ParsedField) []ParsedField {
	base := []ParsedField{
		{Kind: FieldDate, Date: mustParseDateTime("Fri, 21 Nov 1997 09:55:06 -0600")},
		{Kind: FieldFrom, Mailboxes: mustParseMailboxList("jane@example.com")},
	}
	return append(append([]ParsedField{}, extra...), base...)
}

func mustParseDateTime(s string) DateTime {
	dt, err := ParseDateTime([]byte(s))
	if err != nil {
		panic(err)
	}
	return dt
}

func mustParseMailboxList(s string) []MailboxRef {
	mbs, err := ParseMailboxList([]byte(s))
	if err != nil {
		panic(err)
	}
	return mbs
}

func TestAssembleIMFTraceBlockDroppedWithoutReceived(t *testing.T) {
	fields := requiredFields(
		ParsedField{Kind: FieldReturnPath, ReturnPath: nil},
	)
	imf, err := AssembleIMF(fields)
	if err != nil {
		t.Fatalf("AssembleIMF failed: %v", err)
	}
	if len(imf.Trace) != 0 {
		t.Errorf("Trace = %+v, want empty (Return-Path with no Received dropped)", imf.Trace)
	}
}

func TestAssembleIMFTraceBlockKeptWithReceived(t *testing.T) {
	rl, err := ParseReceived([]byte("by smtp.example.org; Fri, 21 Nov 1997 09:55:06 -0600"))
	if err != nil {
		t.Fatalf("ParseReceived failed: %v", err)
	}
	fields := requiredFields(
		ParsedField{Kind: FieldReturnPath, ReturnPath: nil},
		ParsedField{Kind: FieldReceived, Received: rl},
	)
	imf, err := AssembleIMF(fields)
	if err != nil {
		t.Fatalf("AssembleIMF failed: %v", err)
	}
	if len(imf.Trace) != 1 || len(imf.Trace[0].Received) != 1 {
		t.Errorf("Trace = %+v, want one block with one Received", imf.Trace)
	}
}

func TestAssembleIMFTraceLatchesOnNonTraceField(t *testing.T) {
	rl, err := ParseReceived([]byte("by smtp.example.org; Fri, 21 Nov 1997 09:55:06 -0600"))
	if err != nil {
		t.Fatalf("ParseReceived failed: %v", err)
	}
	// A Received field appearing after a non-trace field (Subject) must not
	// join any trace block: trace fields are only recognized in the
	// contiguous run at the top of the header.
	fields := requiredFields(
		ParsedField{Kind: FieldReceived, Received: rl},
		ParsedField{Kind: FieldSubject, Text: scanUnstructured([]byte("hi"))},
		ParsedField{Kind: FieldReceived, Received: rl},
	)
	imf, err := AssembleIMF(fields)
	if err != nil {
		t.Fatalf("AssembleIMF failed: %v", err)
	}
	if len(imf.Trace) != 1 {
		t.Fatalf("Trace = %+v, want exactly 1 block (the post-Subject Received dropped)", imf.Trace)
	}
	if len(imf.Trace[0].Received) != 1 {
		t.Errorf("Trace[0].Received = %+v, want 1 entry", imf.Trace[0].Received)
	}
}

func TestAssembleIMFMissingDateFails(t *testing.T) {
	fields := []ParsedField{
		{Kind: FieldFrom, Mailboxes: mustParseMailboxList("jane@example.com")},
	}
	if _, err := AssembleIMF(fields); err == nil {
		t.Fatal("AssembleIMF succeeded without Date, want error")
	}
}

func TestAssembleIMFToCcAppend(t *testing.T) {
	addrs1, err := ParseAddressList([]byte("a@example.com"))
	if err != nil {
		t.Fatalf("ParseAddressList failed: %v", err)
	}
	addrs2, err := ParseAddressList([]byte("b@example.com"))
	if err != nil {
		t.Fatalf("ParseAddressList failed: %v", err)
	}
	fields := requiredFields(
		ParsedField{Kind: FieldTo, Addresses: addrs1},
		ParsedField{Kind: FieldTo, Addresses: addrs2},
	)
	imf, err := AssembleIMF(fields)
	if err != nil {
		t.Fatalf("AssembleIMF failed: %v", err)
	}
	if len(imf.To) != 2 {
		t.Errorf("To = %+v, want 2 entries (appended, not overwritten)", imf.To)
	}
}
