// Copyright 2022 Daniel Erat.
// All rights reserved.

package imf

import (
	"bytes"
	"strings"
	"testing"
)

// TestFoldField ports derat-rendmail/message_test.go's TestFoldHeaderField
// boundary-exactness cases onto foldField (P6: every printed header line is
// CRLF-terminated and, unless a single token forces it over, at most 78
// bytes excluding the terminator). The teacher's cases use a caller-chosen
// terminator string; foldField always uses "\r\n", so each "\n" in the
// teacher's "want" column below is a "\r\n" here.
func TestFoldField(t *testing.T) {
	var (
		a38 = strings.Repeat("a", 38)
		a69 = strings.Repeat("a", 69) // 78 chars when preceded by "Subject: "
		a70 = strings.Repeat("a", 70) // 79 chars when preceded by "Subject: "
		a78 = strings.Repeat("a", 78) // always exceeds the limit
	)

	for _, tc := range []struct {
		unfolded string
		want     []string
	}{
		{"", nil},  // an empty value folds to nothing
		{" ", nil}, // whitespace-only folds to nothing
		{"From: me", []string{"From: me\r\n"}},
		{"Subject: Some words", []string{"Subject: Some words\r\n"}},
		{"Subject: " + a69, []string{"Subject: " + a69 + "\r\n"}},
		{"Subject: " + a70, []string{"Subject:\r\n", " " + a70 + "\r\n"}},
		{"Subject: " + a69 + "\t" + a38 + " " + a38 + " " + a38,
			[]string{"Subject: " + a69 + "\r\n", "\t" + a38 + " " + a38 + "\r\n", " " + a38 + "\r\n"}},
		{"Subject: " + a78 + " " + a78,
			[]string{"Subject:\r\n", " " + a78 + "\r\n", " " + a78 + "\r\n"}},
	} {
		got := foldField(tc.unfolded)
		if len(got) != len(tc.want) {
			t.Errorf("foldField(%q) = %q, want %q", tc.unfolded, got, tc.want)
			continue
		}
		for i := range got {
			if got[i] != tc.want[i] {
				t.Errorf("foldField(%q)[%d] = %q, want %q", tc.unfolded, i, got[i], tc.want[i])
			}
		}
	}
}

// TestFoldFieldLineLengthInvariant checks P6 directly: every physical line
// foldField produces ends in "\r\n" and, unless it's a single over-long
// token with no room to break, is at most 78 bytes before the terminator.
func TestFoldFieldLineLengthInvariant(t *testing.T) {
	long := strings.Repeat("word ", 40) // plenty of break points
	for _, line := range foldField("Subject: " + long) {
		if !strings.HasSuffix(line, "\r\n") {
			t.Fatalf("line %q does not end in CRLF", line)
		}
		content := strings.TrimSuffix(line, "\r\n")
		if len(content) > 78 {
			t.Errorf("line %q is %d bytes, want <= 78", content, len(content))
		}
	}
}

// TestP1SliceContainment exercises the zero-copy invariant: every retained
// raw byte slice aliases the original input buffer rather than copying it,
// by mutating the input in place and observing the mutation through a
// parsed field's slice.
func TestP1SliceContainment(t *testing.T) {
	data := []byte("Date: Fri, 21 Nov 1997 09:55:06 -0600\r\nFrom: jane@example.com\r\n\r\nthe body\r\n")
	msg, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	domain := msg.IMF.From.Single.Addr.Domain.Atoms[0]
	if string(domain) != "example" {
		t.Fatalf("domain = %q, want example", domain)
	}
	idx := bytes.Index(data, []byte("example"))
	if idx < 0 {
		t.Fatal("could not locate 'example' in input buffer")
	}
	data[idx] = 'E'
	if domain[0] != 'E' {
		t.Error("From domain atom did not alias the original input buffer")
	}

	body := msg.Top.Body
	bidx := bytes.Index(data, []byte("the body"))
	if bidx < 0 {
		t.Fatal("could not locate body text in input buffer")
	}
	data[bidx] = 'T'
	if body[0] != 'T' {
		t.Error("Top.Body did not alias the original input buffer")
	}
}

// TestP4MultipartPreambleChildrenEpilogueReconstructOuter checks that
// preamble, concatenated with each child's reconstructed raw span
// (its header fields' retained raw bytes, the blank-line separator and its
// body) bracketed by the boundary delimiter lines, plus the epilogue,
// reconstructs the parent body region byte for byte.
func TestP4MultipartPreambleChildrenEpilogueReconstructOuter(t *testing.T) {
	buf := []byte(multipartMessage)
	_, bodyStart := splitHeaderSection(buf)
	outer := buf[bodyStart:]

	top, err := buildPart(buf, region{0, len(buf)}, DefaultGeneric, 0)
	if err != nil {
		t.Fatalf("buildPart failed: %v", err)
	}
	if top.Kind != PartMultipart || len(top.Children) != 2 {
		t.Fatalf("top = %+v, want multipart with 2 children", top)
	}

	var reconstructed bytes.Buffer
	reconstructed.Write(top.Preamble)
	for _, child := range top.Children {
		reconstructed.WriteString("\r\n--BOUNDARY\r\n")
		for _, f := range child.Fields {
			reconstructed.Write(f.Raw.Raw)
		}
		reconstructed.WriteString("\r\n")
		reconstructed.Write(child.Body)
	}
	reconstructed.WriteString("\r\n--BOUNDARY--\r\n")
	reconstructed.Write(top.Epilogue)

	if !bytes.Equal(reconstructed.Bytes(), outer) {
		t.Errorf("preamble+children+epilogue != outer body:\ngot:  %q\nwant: %q", reconstructed.Bytes(), outer)
	}
}

// TestP3ParsePrintStability exercises parse(print(parse(x))) stability
// directly: printing a parsed message twice with the same seed (once from
// the original parse, once from a reparse of the first printed output)
// must yield byte-identical results.
func TestP3ParsePrintStability(t *testing.T) {
	msg1, err := Parse([]byte(simpleMessage))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	seed := uint64(5)
	out1, err := Print(msg1, &seed)
	if err != nil {
		t.Fatalf("Print failed: %v", err)
	}

	msg2, err := Parse(out1)
	if err != nil {
		t.Fatalf("re-Parse failed: %v\n%s", err, out1)
	}
	seed2 := uint64(5)
	out2, err := Print(msg2, &seed2)
	if err != nil {
		t.Fatalf("second Print failed: %v", err)
	}

	if !bytes.Equal(out1, out2) {
		t.Errorf("print(parse(print(parse(x)))) != print(parse(x)):\n%s\n---\n%s", out1, out2)
	}
}
