package ast

import "github.com/hades-lang/hades/internal/span"

// Ident is a name together with the span where it was first lexed.
// Equality and map-keying use the name only, so an Ident can be used
// directly as a map key even though two Idents referring to the "same"
// name but different source occurrences carry different spans.
type Ident struct {
	Name string
	Span span.Span
}

// NewIdent builds an Ident.
func NewIdent(name string, sp span.Span) Ident {
	return Ident{Name: name, Span: sp}
}

func (i Ident) String() string {
	return i.Name
}
