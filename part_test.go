// Copyright 2022 Daniel Erat.
// All rights reserved.

package imf

import "testing"

const multipartMessage = "Date: Fri, 21 Nov 1997 09:55:06 -0600\r\n" +
	"From: jane@example.com\r\n" +
	"Content-Type: multipart/mixed; boundary=\"BOUNDARY\"\r\n" +
	"\r\n" +
	"preamble text\r\n" +
	"--BOUNDARY\r\n" +
	"Content-Type: text/plain\r\n" +
	"\r\n" +
	"first part\r\n" +
	"--BOUNDARY\r\n" +
	"Content-Type: text/html\r\n" +
	"\r\n" +
	"<p>second part</p>\r\n" +
	"--BOUNDARY--\r\n" +
	"epilogue text\r\n"

func TestBuildMultipart(t *testing.T) {
	buf := []byte(multipartMessage)
	top, err := buildPart(buf, region{0, len(buf)}, DefaultGeneric, 0)
	if err != nil {
		t.Fatalf("buildPart failed: %v", err)
	}
	if top.Kind != PartMultipart {
		t.Fatalf("Kind = %v, want PartMultipart", top.Kind)
	}
	if len(top.Children) != 2 {
		t.Fatalf("got %d children, want 2", len(top.Children))
	}
	if string(top.Preamble) != "preamble text" {
		t.Errorf("Preamble = %q", top.Preamble)
	}
	if string(top.Epilogue) != "epilogue text\r\n" {
		t.Errorf("Epilogue = %q", top.Epilogue)
	}
	if top.Children[0].Kind != PartText || top.Children[0].MIME.Type.TextSub != TextPlain {
		t.Errorf("child[0] = %+v, want text/plain", top.Children[0].MIME.Type)
	}
	if string(top.Children[0].Body) != "first part" {
		t.Errorf("child[0].Body = %q", top.Children[0].Body)
	}
	if top.Children[1].MIME.Type.TextSub != TextHTML {
		t.Errorf("child[1] type = %+v, want text/html", top.Children[1].MIME.Type)
	}
}

func TestBuildPartNestingCap(t *testing.T) {
	_, err := buildPart([]byte("Date: x\r\n\r\n"), region{0, 11}, DefaultGeneric, maxNesting+1)
	if err == nil {
		t.Fatal("buildPart at excessive depth succeeded, want NestingError")
	}
	if _, ok := err.(*NestingError); !ok {
		t.Errorf("got error %T, want *NestingError", err)
	}
}

func TestBuildMultipartNoBoundaryFound(t *testing.T) {
	buf := []byte("Content-Type: multipart/mixed; boundary=\"X\"\r\n\r\nno boundary line here\r\n")
	top, err := buildPart(buf, region{0, len(buf)}, DefaultGeneric, 0)
	if err != nil {
		t.Fatalf("buildPart failed: %v", err)
	}
	if top.Kind != PartMultipart {
		t.Fatalf("Kind = %v, want PartMultipart", top.Kind)
	}
	if len(top.Children) != 0 {
		t.Errorf("got %d children, want 0", len(top.Children))
	}
	if string(top.Preamble) != "no boundary line here\r\n" {
		t.Errorf("Preamble = %q", top.Preamble)
	}
}
