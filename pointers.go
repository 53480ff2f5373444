// Copyright 2022 Daniel Erat.
// All rights reserved.

package imf

// This file implements the slice-pointer helpers of spec.md §3.1/§4.1:
// deriving sub-slices and complements from outer/inner byte regions for
// zero-copy raw-part exposure. Grounded on original_source/src/pointers.rs;
// Go slices already carry pointer+len+cap, so no raw pointer arithmetic is
// needed, only bounds-checked index derivation.

// region is an offset range within some outer buffer, used internally by
// the part-tree builder to track a child's body extent before slicing it
// out of the shared input buffer.
type region struct {
	start, end int
}

func (r region) len() int { return r.end - r.start }

func (r region) slice(buf []byte) []byte { return buf[r.start:r.end] }

// splitAt returns the regions before and from idx (idx is an absolute
// offset into the same outer buffer as r, and must lie within r).
func (r region) splitAt(idx int) (before, after region) {
	if idx < r.start {
		idx = r.start
	}
	if idx > r.end {
		idx = r.end
	}
	return region{r.start, idx}, region{idx, r.end}
}

// complementPrefixSuffix returns the parts of outer before and after inner,
// assuming inner is fully nested within outer (used to derive a
// preamble/epilogue pair given an outer multipart region and the inner
// boundary-delimited region), per spec.md Invariant 8
// ("preamble ⧺ inner ⧺ epilogue = outer").
func complementPrefixSuffix(outer, inner region) (prefix, suffix region) {
	prefix = region{outer.start, inner.start}
	suffix = region{inner.end, outer.end}
	return
}
