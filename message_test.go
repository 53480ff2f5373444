// Copyright 2022 Daniel Erat.
// All rights reserved.

package imf

import (
	"bytes"
	"strings"
	"testing"
)

const simpleMessage = "Date: Fri, 21 Nov 1997 09:55:06 -0600\r\n" +
	"From: Jane Doe <jane@example.com>\r\n" +
	"To: John Smith <john@example.org>\r\n" +
	"Subject: Hello there\r\n" +
	"Message-ID: <abc123@example.com>\r\n" +
	"\r\n" +
	"This is the body.\r\n"

func TestParseSimpleMessage(t *testing.T) {
	msg, err := Parse([]byte(simpleMessage))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if msg.IMF.Subject == nil || msg.IMF.Subject.String() != "Hello there" {
		t.Errorf("Subject = %v, want %q", msg.IMF.Subject, "Hello there")
	}
	if msg.IMF.From.Kind != FromSingle {
		t.Fatalf("From.Kind = %v, want FromSingle", msg.IMF.From.Kind)
	}
	if string(msg.IMF.From.Single.Addr.Domain.Atoms[0]) != "example" {
		t.Errorf("From domain first label = %q, want example", msg.IMF.From.Single.Addr.Domain.Atoms[0])
	}
	if msg.Top.Kind != PartText {
		t.Fatalf("Top.Kind = %v, want PartText", msg.Top.Kind)
	}
	if string(msg.Top.Body) != "This is the body.\r\n" {
		t.Errorf("Top.Body = %q", msg.Top.Body)
	}
}

func TestParseMissingDateFails(t *testing.T) {
	const in = "From: jane@example.com\r\n\r\nbody\r\n"
	if _, err := Parse([]byte(in)); err == nil {
		t.Fatal("Parse succeeded with missing Date, want error")
	}
}

func TestParseMultipleFromRequiresSender(t *testing.T) {
	const in = "Date: Fri, 21 Nov 1997 09:55:06 -0600\r\n" +
		"From: a@example.com, b@example.com\r\n" +
		"\r\n" +
		"body\r\n"
	if _, err := Parse([]byte(in)); err == nil {
		t.Fatal("Parse succeeded with multi-From and no Sender, want error")
	}

	const withSender = "Date: Fri, 21 Nov 1997 09:55:06 -0600\r\n" +
		"From: a@example.com, b@example.com\r\n" +
		"Sender: a@example.com\r\n" +
		"\r\n" +
		"body\r\n"
	msg, err := Parse([]byte(withSender))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if msg.IMF.From.Kind != FromMultiple {
		t.Errorf("From.Kind = %v, want FromMultiple", msg.IMF.From.Kind)
	}
}

func TestParseIMFHeaderOnly(t *testing.T) {
	env, err := ParseIMF([]byte(simpleMessage))
	if err != nil {
		t.Fatalf("ParseIMF failed: %v", err)
	}
	if env.Subject == nil || env.Subject.String() != "Hello there" {
		t.Errorf("Subject = %v", env.Subject)
	}
}

func TestPrintRoundTripsFields(t *testing.T) {
	msg, err := Parse([]byte(simpleMessage))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	seed := uint64(0)
	out, err := Print(msg, &seed)
	if err != nil {
		t.Fatalf("Print failed: %v", err)
	}
	if !bytes.Contains(out, []byte("jane@example.com")) {
		t.Errorf("output missing From address:\n%s", out)
	}
	if !bytes.Contains(out, []byte("Hello there")) {
		t.Errorf("output missing Subject:\n%s", out)
	}
	if !strings.HasSuffix(string(out), "This is the body.\r\n") {
		t.Errorf("output body mismatch:\n%s", out)
	}

	// The re-printed bytes should parse back to an equivalent envelope.
	reparsed, err := Parse(out)
	if err != nil {
		t.Fatalf("re-Parse failed: %v\n%s", err, out)
	}
	if reparsed.IMF.Subject == nil || reparsed.IMF.Subject.String() != "Hello there" {
		t.Errorf("re-parsed Subject = %v", reparsed.IMF.Subject)
	}
}

func TestPrintRegeneratesBoundary(t *testing.T) {
	msg, err := Parse([]byte(multipartMessage))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	seed := uint64(42)
	out, err := Print(msg, &seed)
	if err != nil {
		t.Fatalf("Print failed: %v", err)
	}
	if bytes.Contains(out, []byte("BOUNDARY")) {
		t.Errorf("output still contains original boundary:\n%s", out)
	}
	reparsed, err := Parse(out)
	if err != nil {
		t.Fatalf("re-Parse failed: %v\n%s", err, out)
	}
	if reparsed.Top.Kind != PartMultipart || len(reparsed.Top.Children) != 2 {
		t.Fatalf("re-parsed top = %+v, want multipart with 2 children", reparsed.Top)
	}
}
