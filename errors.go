// Copyright 2022 Daniel Erat.
// All rights reserved.

package imf

import "fmt"

// FieldError describes a header field that could not be parsed according to
// its grammar. The field is retained as an unstructured value; FieldError is
// informational, not fatal to message parsing (spec.md §7, failure class 1-2).
type FieldError struct {
	Name string // canonical field name, e.g. "Date"
	Text string // human-readable description
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("field %q: %s", e.Name, e.Text)
}

// FinalizeError is returned by IMF assembly when a mandatory field is
// missing or a cardinality rule is violated (spec.md §3.2 Invariants 3-4,
// §7 failure class 4).
type FinalizeError struct {
	Text string
}

func (e *FinalizeError) Error() string { return "finalize: " + e.Text }

// NestingError is returned by the part-tree builder when recursion exceeds
// maxNesting (spec.md §5, §7 failure class 7).
type NestingError struct {
	Depth int
}

func (e *NestingError) Error() string {
	return fmt.Sprintf("part nesting exceeds limit of %d levels", maxNesting)
}

// maxNesting bounds both comment nesting (lex.go) and MIME part recursion
// (part.go) to defeat adversarial input, per spec.md §5.
const maxNesting = 100
