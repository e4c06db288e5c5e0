// Package span defines source locations and the diagnostic rendering shared
// by every stage of the Hades pipeline (lexer, parser, registry, walker,
// codegen).
package span

import "fmt"

// Span is a half-open byte range [Start, End) within a single source file.
type Span struct {
	File  string
	Start int
	End   int
}

// New creates a Span. It panics if start > end, since every Span in the
// pipeline is derived from already-validated byte offsets.
func New(file string, start, end int) Span {
	if start > end {
		panic(fmt.Sprintf("span: invalid range [%d, %d)", start, end))
	}
	return Span{File: file, Start: start, End: end}
}

// Dummy returns an empty span at offset 0, for diagnostics that have no
// source text to point at (such as a program with no main function).
func Dummy(file string) Span {
	return Span{File: file, Start: 0, End: 0}
}

// To merges two spans in the same file into the smallest span containing
// both.
func (s Span) To(other Span) Span {
	start := s.Start
	if other.Start < start {
		start = other.Start
	}
	end := s.End
	if other.End > end {
		end = other.End
	}
	return Span{File: s.File, Start: start, End: end}
}

// ShrinkToLo returns a zero-length span at the start of s.
func (s Span) ShrinkToLo() Span {
	return Span{File: s.File, Start: s.Start, End: s.Start}
}

// ShrinkToHi returns a zero-length span at the end of s.
func (s Span) ShrinkToHi() Span {
	return Span{File: s.File, Start: s.End, End: s.End}
}

// Contains reports whether the byte offset pos lies within s.
func (s Span) Contains(pos int) bool {
	return s.Start <= pos && pos < s.End
}

// IsEmpty reports whether s covers zero bytes.
func (s Span) IsEmpty() bool {
	return s.Start == s.End
}

// Len returns the number of bytes s covers.
func (s Span) Len() int {
	return s.End - s.Start
}

func (s Span) String() string {
	return fmt.Sprintf("%s:%d:%d", s.File, s.Start, s.End)
}
