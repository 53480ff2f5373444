// Copyright 2022 Daniel Erat.
// All rights reserved.

// Command imfdump reads an email message from stdin, parses it, prints a
// structural dump of its envelope and MIME part tree to stderr, and
// re-serializes it to stdout.
package main

import (
	"flag"
	"fmt"
	"io"
	"io/ioutil"
	"os"

	"github.com/derat/imf"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flag]...\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Reads an email message from stdin, dumps its structure to stderr, and re-serializes it to stdout.\n\n")
		flag.PrintDefaults()
	}
	seed := flag.Uint64("seed", 0, "Deterministic seed for regenerated multipart boundaries (0 uses OS randomness)")
	quiet := flag.Bool("quiet", false, "Suppress the structural dump on stderr")
	imfOnly := flag.Bool("imf-only", false, "Parse only the header section, skipping the MIME part tree")
	flag.Parse()

	os.Exit(func() int {
		data, err := ioutil.ReadAll(os.Stdin)
		if err != nil {
			fmt.Fprintln(os.Stderr, "Failed reading stdin:", err)
			return 1
		}

		if *imfOnly {
			envelope, err := imf.ParseIMF(data)
			if err != nil {
				fmt.Fprintln(os.Stderr, "Failed parsing message:", err)
				return 1
			}
			if !*quiet {
				dumpIMF(os.Stderr, envelope)
			}
			return 0
		}

		msg, err := imf.Parse(data)
		if err != nil {
			fmt.Fprintln(os.Stderr, "Failed parsing message:", err)
			return 1
		}
		if !*quiet {
			dumpIMF(os.Stderr, msg.IMF)
			fmt.Fprintln(os.Stderr, "---")
			dumpPart(os.Stderr, msg.Top, "")
			fmt.Fprintln(os.Stderr, "---")
		}

		var seedPtr *uint64
		if *seed != 0 {
			v := *seed
			seedPtr = &v
		}
		out, err := imf.Print(msg, seedPtr)
		if err != nil {
			fmt.Fprintln(os.Stderr, "Failed printing message:", err)
			return 1
		}
		if _, err := os.Stdout.Write(out); err != nil {
			fmt.Fprintln(os.Stderr, "Failed writing stdout:", err)
			return 1
		}
		return 0
	}())
}

func dumpIMF(w io.Writer, env imf.IMF) {
	fmt.Fprintf(w, "Date: %v\n", env.Date.T)
	fmt.Fprintf(w, "From: %v\n", env.From.Sender())
	fmt.Fprintf(w, "To: %d address(es)\n", len(env.To))
	fmt.Fprintf(w, "Cc: %d address(es)\n", len(env.Cc))
	if env.HasBcc {
		fmt.Fprintf(w, "Bcc: %d address(es)\n", len(env.Bcc))
	}
	if env.Subject != nil {
		fmt.Fprintf(w, "Subject: %s\n", env.Subject.String())
	}
	if env.MessageID != nil {
		fmt.Fprintf(w, "Message-ID: %s@%s\n", env.MessageID.Left, env.MessageID.Right)
	}
	fmt.Fprintf(w, "Trace blocks: %d\n", len(env.Trace))
}

func dumpPart(w io.Writer, p imf.AnyPart, indent string) {
	switch p.Kind {
	case imf.PartMultipart:
		fmt.Fprintf(w, "%smultipart/%v: %d preamble byte(s), %d child(ren), %d epilogue byte(s)\n",
			indent, p.MIME.Type.MultipartSub, len(p.Preamble), len(p.Children), len(p.Epilogue))
		for _, c := range p.Children {
			dumpPart(w, c, indent+"  ")
		}
	case imf.PartMessage:
		fmt.Fprintf(w, "%smessage: inner parse error=%v\n", indent, p.InnerIMFErr)
		if p.Child != nil {
			dumpPart(w, *p.Child, indent+"  ")
		}
	case imf.PartText:
		fmt.Fprintf(w, "%stext/%v: %d byte(s)\n", indent, p.MIME.Type.TextSub, len(p.Body))
	case imf.PartBinary:
		fmt.Fprintf(w, "%sbinary: %d byte(s)\n", indent, len(p.Body))
	}
}
